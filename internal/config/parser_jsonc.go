package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

type jsoncConfig struct {
	Recognizer *jsoncRecognizer `json:"recognizer"`
	Server     *jsoncServer     `json:"server"`
	Timing     *jsoncTiming     `json:"timing"`
	Echo       *jsoncEcho       `json:"echo"`
	Generation *jsoncGeneration `json:"generation"`
	Debug      *jsoncDebug      `json:"debug"`
}

type jsoncRecognizer struct {
	GRPC            *string `json:"grpc"`
	HealthTimeoutMS *int    `json:"health_timeout_ms"`
}

type jsoncServer struct {
	Listen  *string `json:"listen"`
	Metrics *bool   `json:"metrics"`
}

type jsoncTiming struct {
	DebounceMS        *int `json:"debounce_ms"`
	RespondDelayMS    *int `json:"respond_delay_ms"`
	SynthesizeDelayMS *int `json:"synthesize_delay_ms"`
	PlayDelayMS       *int `json:"play_delay_ms"`

	VeryShortBufferMS *int `json:"very_short_buffer_ms"`
	ShortBufferMS     *int `json:"short_buffer_ms"`
	VeryShortWords    *int `json:"very_short_words"`
	ShortWords        *int `json:"short_words"`

	VadPollMS    *int `json:"vad_poll_ms"`
	VadSilenceMS *int `json:"vad_silence_ms"`
	VadMaxWaitMS *int `json:"vad_max_wait_ms"`

	ConfirmWindowMS *int `json:"confirm_window_ms"`
	MinUtteranceMS  *int `json:"min_utterance_ms"`

	CachePollMS *int `json:"cache_poll_ms"`
	CacheWaitMS *int `json:"cache_wait_ms"`
}

type jsoncEcho struct {
	DecayMS     *int `json:"decay_ms"`
	ShortChars  *int `json:"short_chars"`
	ShortWords  *int `json:"short_words"`
	PrefixChars *int `json:"prefix_chars"`
}

type jsoncGeneration struct {
	TimeoutMS *int `json:"timeout_ms"`
}

type jsoncDebug struct {
	Verbose *bool `json:"verbose"`
}

func parseJSONC(content string, base Config) (Config, []Warning, error) {
	normalized, err := normalizeJSONC(content)
	if err != nil {
		return Config{}, nil, err
	}

	decoder := json.NewDecoder(strings.NewReader(normalized))
	decoder.DisallowUnknownFields()

	var payload jsoncConfig
	if err := decoder.Decode(&payload); err != nil {
		return Config{}, nil, wrapJSONDecodeError(normalized, err)
	}
	if err := ensureSingleJSONValue(decoder); err != nil {
		return Config{}, nil, wrapJSONDecodeError(normalized, err)
	}

	cfg := base
	if err := payload.applyTo(&cfg); err != nil {
		return Config{}, nil, err
	}

	warnings, err := Validate(cfg)
	if err != nil {
		return Config{}, nil, err
	}
	return cfg, warnings, nil
}

func (payload jsoncConfig) applyTo(cfg *Config) error {
	if payload.Recognizer != nil {
		if payload.Recognizer.GRPC != nil {
			cfg.Recognizer.GRPC = *payload.Recognizer.GRPC
		}
		if err := applyMS(payload.Recognizer.HealthTimeoutMS, "recognizer.health_timeout_ms", &cfg.Recognizer.HealthTimeout); err != nil {
			return err
		}
	}

	if payload.Server != nil {
		if payload.Server.Listen != nil {
			cfg.Server.Listen = strings.TrimSpace(*payload.Server.Listen)
		}
		if payload.Server.Metrics != nil {
			cfg.Server.Metrics = *payload.Server.Metrics
		}
	}

	if payload.Timing != nil {
		t := payload.Timing
		fields := []struct {
			src *int
			key string
			dst *time.Duration
		}{
			{t.DebounceMS, "timing.debounce_ms", &cfg.Timing.Debounce},
			{t.RespondDelayMS, "timing.respond_delay_ms", &cfg.Timing.RespondDelay},
			{t.SynthesizeDelayMS, "timing.synthesize_delay_ms", &cfg.Timing.SynthesizeDelay},
			{t.PlayDelayMS, "timing.play_delay_ms", &cfg.Timing.PlayDelay},
			{t.VeryShortBufferMS, "timing.very_short_buffer_ms", &cfg.Timing.VeryShortBuffer},
			{t.ShortBufferMS, "timing.short_buffer_ms", &cfg.Timing.ShortBuffer},
			{t.VadPollMS, "timing.vad_poll_ms", &cfg.Timing.VadPoll},
			{t.VadSilenceMS, "timing.vad_silence_ms", &cfg.Timing.VadSilence},
			{t.VadMaxWaitMS, "timing.vad_max_wait_ms", &cfg.Timing.VadMaxWait},
			{t.ConfirmWindowMS, "timing.confirm_window_ms", &cfg.Timing.ConfirmWindow},
			{t.MinUtteranceMS, "timing.min_utterance_ms", &cfg.Timing.MinUtterance},
			{t.CachePollMS, "timing.cache_poll_ms", &cfg.Timing.CachePoll},
			{t.CacheWaitMS, "timing.cache_wait_ms", &cfg.Timing.CacheWait},
		}
		for _, f := range fields {
			if err := applyMS(f.src, f.key, f.dst); err != nil {
				return err
			}
		}
		if t.VeryShortWords != nil {
			cfg.Timing.VeryShortWords = *t.VeryShortWords
		}
		if t.ShortWords != nil {
			cfg.Timing.ShortWords = *t.ShortWords
		}
	}

	if payload.Echo != nil {
		if err := applyMS(payload.Echo.DecayMS, "echo.decay_ms", &cfg.Echo.Decay); err != nil {
			return err
		}
		if payload.Echo.ShortChars != nil {
			cfg.Echo.ShortChars = *payload.Echo.ShortChars
		}
		if payload.Echo.ShortWords != nil {
			cfg.Echo.ShortWords = *payload.Echo.ShortWords
		}
		if payload.Echo.PrefixChars != nil {
			cfg.Echo.PrefixChars = *payload.Echo.PrefixChars
		}
	}

	if payload.Generation != nil {
		if err := applyMS(payload.Generation.TimeoutMS, "generation.timeout_ms", &cfg.Generation.Timeout); err != nil {
			return err
		}
	}

	if payload.Debug != nil && payload.Debug.Verbose != nil {
		cfg.Debug.Verbose = *payload.Debug.Verbose
	}

	return nil
}

func applyMS(src *int, key string, dst *time.Duration) error {
	if src == nil {
		return nil
	}
	if *src < 0 {
		return fmt.Errorf("%s must be >= 0, got %d", key, *src)
	}
	*dst = time.Duration(*src) * time.Millisecond
	return nil
}

func normalizeJSONC(content string) (string, error) {
	withoutComments, err := stripJSONCComments(content)
	if err != nil {
		return "", err
	}
	return stripJSONCTrailingCommas(withoutComments), nil
}

func stripJSONCComments(content string) (string, error) {
	var out strings.Builder
	out.Grow(len(content))

	inString := false
	escape := false
	lineComment := false
	blockComment := false

	for i := 0; i < len(content); i++ {
		ch := content[i]

		if lineComment {
			if ch == '\n' || ch == '\r' {
				lineComment = false
				out.WriteByte(ch)
				continue
			}
			out.WriteByte(' ')
			continue
		}

		if blockComment {
			if ch == '*' && i+1 < len(content) && content[i+1] == '/' {
				blockComment = false
				out.WriteString("  ")
				i++
				continue
			}
			if ch == '\n' || ch == '\r' || ch == '\t' {
				out.WriteByte(ch)
			} else {
				out.WriteByte(' ')
			}
			continue
		}

		if inString {
			out.WriteByte(ch)
			if escape {
				escape = false
				continue
			}
			if ch == '\\' {
				escape = true
				continue
			}
			if ch == '"' {
				inString = false
			}
			continue
		}

		if ch == '"' {
			inString = true
			out.WriteByte(ch)
			continue
		}

		if ch == '/' && i+1 < len(content) {
			next := content[i+1]
			if next == '/' {
				lineComment = true
				out.WriteString("  ")
				i++
				continue
			}
			if next == '*' {
				blockComment = true
				out.WriteString("  ")
				i++
				continue
			}
		}

		out.WriteByte(ch)
	}

	if blockComment {
		return "", fmt.Errorf("unterminated block comment in JSONC")
	}

	return out.String(), nil
}

func stripJSONCTrailingCommas(content string) string {
	var out strings.Builder
	out.Grow(len(content))

	inString := false
	escape := false

	for i := 0; i < len(content); i++ {
		ch := content[i]

		if inString {
			out.WriteByte(ch)
			if escape {
				escape = false
				continue
			}
			if ch == '\\' {
				escape = true
				continue
			}
			if ch == '"' {
				inString = false
			}
			continue
		}

		if ch == '"' {
			inString = true
			out.WriteByte(ch)
			continue
		}

		if ch == ',' {
			j := i + 1
			for j < len(content) && isJSONWhitespace(content[j]) {
				j++
			}
			if j < len(content) && (content[j] == '}' || content[j] == ']') {
				continue
			}
		}

		out.WriteByte(ch)
	}

	return out.String()
}

func isJSONWhitespace(ch byte) bool {
	switch ch {
	case ' ', '\n', '\r', '\t':
		return true
	default:
		return false
	}
}

func ensureSingleJSONValue(decoder *json.Decoder) error {
	var extra struct{}
	err := decoder.Decode(&extra)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err == nil {
		return fmt.Errorf("multiple JSON values are not allowed")
	}
	return err
}

func wrapJSONDecodeError(content string, err error) error {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		line, col := offsetToLineCol(content, syntaxErr.Offset)
		return fmt.Errorf("line %d column %d: %w", line, col, err)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		line, col := offsetToLineCol(content, typeErr.Offset)
		return fmt.Errorf("line %d column %d: %w", line, col, err)
	}

	return err
}

func offsetToLineCol(content string, offset int64) (int, int) {
	if offset <= 0 {
		return 1, 1
	}

	limit := int(offset)
	if limit > len(content) {
		limit = len(content)
	}

	line := 1
	col := 1
	for i := 0; i < limit-1; i++ {
		if content[i] == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return line, col
}
