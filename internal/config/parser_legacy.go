package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// legacySetters maps flat config keys to field assignments. Durations are
// expressed in milliseconds on the wire.
var legacySetters = map[string]func(cfg *Config, value string) error{
	"recognizer.grpc": func(cfg *Config, v string) error {
		cfg.Recognizer.GRPC = v
		return nil
	},
	"recognizer.health_timeout_ms": durationSetter(func(cfg *Config, d time.Duration) { cfg.Recognizer.HealthTimeout = d }),

	"server.listen": func(cfg *Config, v string) error {
		cfg.Server.Listen = v
		return nil
	},
	"server.metrics": boolSetter(func(cfg *Config, b bool) { cfg.Server.Metrics = b }),

	"timing.debounce_ms":             durationSetter(func(cfg *Config, d time.Duration) { cfg.Timing.Debounce = d }),
	"timing.respond_delay_ms":        durationSetter(func(cfg *Config, d time.Duration) { cfg.Timing.RespondDelay = d }),
	"timing.synthesize_delay_ms":     durationSetter(func(cfg *Config, d time.Duration) { cfg.Timing.SynthesizeDelay = d }),
	"timing.play_delay_ms":           durationSetter(func(cfg *Config, d time.Duration) { cfg.Timing.PlayDelay = d }),
	"timing.very_short_buffer_ms":    durationSetter(func(cfg *Config, d time.Duration) { cfg.Timing.VeryShortBuffer = d }),
	"timing.short_buffer_ms":         durationSetter(func(cfg *Config, d time.Duration) { cfg.Timing.ShortBuffer = d }),
	"timing.very_short_words":        intSetter(func(cfg *Config, n int) { cfg.Timing.VeryShortWords = n }),
	"timing.short_words":             intSetter(func(cfg *Config, n int) { cfg.Timing.ShortWords = n }),
	"timing.vad_poll_ms":             durationSetter(func(cfg *Config, d time.Duration) { cfg.Timing.VadPoll = d }),
	"timing.vad_silence_ms":          durationSetter(func(cfg *Config, d time.Duration) { cfg.Timing.VadSilence = d }),
	"timing.vad_max_wait_ms":         durationSetter(func(cfg *Config, d time.Duration) { cfg.Timing.VadMaxWait = d }),
	"timing.confirm_window_ms":       durationSetter(func(cfg *Config, d time.Duration) { cfg.Timing.ConfirmWindow = d }),
	"timing.min_utterance_ms":        durationSetter(func(cfg *Config, d time.Duration) { cfg.Timing.MinUtterance = d }),
	"timing.cache_poll_ms":           durationSetter(func(cfg *Config, d time.Duration) { cfg.Timing.CachePoll = d }),
	"timing.cache_wait_ms":           durationSetter(func(cfg *Config, d time.Duration) { cfg.Timing.CacheWait = d }),

	"echo.decay_ms":     durationSetter(func(cfg *Config, d time.Duration) { cfg.Echo.Decay = d }),
	"echo.short_chars":  intSetter(func(cfg *Config, n int) { cfg.Echo.ShortChars = n }),
	"echo.short_words":  intSetter(func(cfg *Config, n int) { cfg.Echo.ShortWords = n }),
	"echo.prefix_chars": intSetter(func(cfg *Config, n int) { cfg.Echo.PrefixChars = n }),

	"generation.timeout_ms": durationSetter(func(cfg *Config, d time.Duration) { cfg.Generation.Timeout = d }),

	"debug.verbose": boolSetter(func(cfg *Config, b bool) { cfg.Debug.Verbose = b }),
}

// parseLegacy reads `key = value` lines with #-comments.
func parseLegacy(content string, base Config) (Config, []Warning, error) {
	cfg := base

	for i, rawLine := range strings.Split(content, "\n") {
		lineNo := i + 1
		line := strings.TrimSpace(rawLine)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			return Config{}, nil, fmt.Errorf("line %d: expected key = value, got %q", lineNo, line)
		}

		key = strings.TrimSpace(key)
		value = unquoteValue(strings.TrimSpace(value))

		setter, ok := legacySetters[key]
		if !ok {
			return Config{}, nil, fmt.Errorf("line %d: unknown key %q", lineNo, key)
		}
		if err := setter(&cfg, value); err != nil {
			return Config{}, nil, fmt.Errorf("line %d: %s: %w", lineNo, key, err)
		}
	}

	warnings, err := Validate(cfg)
	if err != nil {
		return Config{}, nil, err
	}
	return cfg, warnings, nil
}

func durationSetter(assign func(*Config, time.Duration)) func(*Config, string) error {
	return func(cfg *Config, value string) error {
		ms, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("expected integer milliseconds, got %q", value)
		}
		if ms < 0 {
			return fmt.Errorf("milliseconds must be >= 0, got %d", ms)
		}
		assign(cfg, time.Duration(ms)*time.Millisecond)
		return nil
	}
}

func intSetter(assign func(*Config, int)) func(*Config, string) error {
	return func(cfg *Config, value string) error {
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("expected integer, got %q", value)
		}
		assign(cfg, n)
		return nil
	}
}

func boolSetter(assign func(*Config, bool)) func(*Config, string) error {
	return func(cfg *Config, value string) error {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("expected boolean, got %q", value)
		}
		assign(cfg, b)
		return nil
	}
}

func unquoteValue(value string) string {
	if len(value) >= 2 && value[0] == '"' && value[len(value)-1] == '"' {
		if unquoted, err := strconv.Unquote(value); err == nil {
			return unquoted
		}
	}
	return value
}
