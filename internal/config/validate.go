package config

import (
	"fmt"
	"strings"
)

// Validate enforces config invariants and returns non-fatal warnings.
func Validate(cfg Config) ([]Warning, error) {
	warnings := make([]Warning, 0)

	if strings.TrimSpace(cfg.Recognizer.GRPC) == "" {
		return nil, fmt.Errorf("recognizer.grpc must not be empty")
	}
	if cfg.Recognizer.HealthTimeout <= 0 {
		return nil, fmt.Errorf("recognizer.health_timeout_ms must be > 0")
	}
	if strings.TrimSpace(cfg.Server.Listen) == "" {
		return nil, fmt.Errorf("server.listen must not be empty")
	}

	t := cfg.Timing
	if t.RespondDelay <= 0 {
		return nil, fmt.Errorf("timing.respond_delay_ms must be > 0")
	}
	if t.SynthesizeDelay <= t.RespondDelay {
		return nil, fmt.Errorf("timing.synthesize_delay_ms must be > timing.respond_delay_ms")
	}
	if t.PlayDelay <= t.SynthesizeDelay {
		return nil, fmt.Errorf("timing.play_delay_ms must be > timing.synthesize_delay_ms")
	}
	if t.VadPoll <= 0 {
		return nil, fmt.Errorf("timing.vad_poll_ms must be > 0")
	}
	if t.VadSilence <= 0 {
		return nil, fmt.Errorf("timing.vad_silence_ms must be > 0")
	}
	if t.VadMaxWait < t.VadSilence {
		return nil, fmt.Errorf("timing.vad_max_wait_ms must be >= timing.vad_silence_ms")
	}
	if t.ConfirmWindow <= 0 {
		return nil, fmt.Errorf("timing.confirm_window_ms must be > 0")
	}
	if t.CachePoll <= 0 {
		return nil, fmt.Errorf("timing.cache_poll_ms must be > 0")
	}
	if t.CacheWait < t.CachePoll {
		return nil, fmt.Errorf("timing.cache_wait_ms must be >= timing.cache_poll_ms")
	}
	if t.VeryShortWords < 0 || t.ShortWords < 0 {
		return nil, fmt.Errorf("timing word thresholds must be >= 0")
	}
	if t.VeryShortWords > t.ShortWords {
		return nil, fmt.Errorf("timing.very_short_words must be <= timing.short_words")
	}

	if cfg.Echo.Decay <= 0 {
		return nil, fmt.Errorf("echo.decay_ms must be > 0")
	}
	if cfg.Echo.ShortChars <= 0 || cfg.Echo.ShortWords <= 0 {
		return nil, fmt.Errorf("echo short thresholds must be > 0")
	}
	if cfg.Echo.PrefixChars < 0 {
		return nil, fmt.Errorf("echo.prefix_chars must be >= 0")
	}
	if cfg.Echo.PrefixChars > cfg.Echo.ShortChars {
		warnings = append(warnings, Warning{Message: fmt.Sprintf("echo.prefix_chars %d exceeds echo.short_chars %d; every short fragment will require a prefix match", cfg.Echo.PrefixChars, cfg.Echo.ShortChars)})
	}

	if cfg.Generation.Timeout <= 0 {
		return nil, fmt.Errorf("generation.timeout_ms must be > 0")
	}
	if cfg.Generation.Timeout > cfg.Timing.CacheWait {
		warnings = append(warnings, Warning{Message: fmt.Sprintf("generation.timeout_ms %s exceeds timing.cache_wait_ms %s; slow generations will be abandoned by the play stage first", cfg.Generation.Timeout, cfg.Timing.CacheWait)})
	}

	return warnings, nil
}
