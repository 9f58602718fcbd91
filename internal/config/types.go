// Package config resolves, parses, validates, and defaults bubblevoice configuration.
package config

import "time"

// Config is the fully materialized runtime configuration used by bubblevoice.
type Config struct {
	Recognizer RecognizerConfig
	Server     ServerConfig
	Timing     TimingConfig
	Echo       EchoConfig
	Generation GenerationConfig
	Debug      DebugConfig
}

// RecognizerConfig locates the recognition collaborator for diagnostics.
type RecognizerConfig struct {
	GRPC          string
	HealthTimeout time.Duration
}

// ServerConfig controls the websocket event bridge in serve mode.
type ServerConfig struct {
	Listen  string
	Metrics bool
}

// TimingConfig holds the cascade scheduling constants. The short-utterance
// thresholds are empirically tuned and deliberately configurable.
type TimingConfig struct {
	Debounce        time.Duration
	RespondDelay    time.Duration
	SynthesizeDelay time.Duration
	PlayDelay       time.Duration

	VeryShortBuffer time.Duration
	ShortBuffer     time.Duration
	VeryShortWords  int
	ShortWords      int

	VadPoll    time.Duration
	VadSilence time.Duration
	VadMaxWait time.Duration

	ConfirmWindow time.Duration
	MinUtterance  time.Duration

	CachePoll time.Duration
	CacheWait time.Duration
}

// EchoConfig holds the echo classification thresholds.
type EchoConfig struct {
	Decay       time.Duration
	ShortChars  int
	ShortWords  int
	PrefixChars int
}

// GenerationConfig bounds the response-generation collaborator call.
type GenerationConfig struct {
	Timeout time.Duration
}

// DebugConfig controls optional verbose diagnostics.
type DebugConfig struct {
	Verbose bool
}

// Warning is a non-fatal parse/validation message.
type Warning struct {
	Line    int
	Message string
}
