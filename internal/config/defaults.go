package config

import "time"

// Default returns the canonical runtime configuration used when no file is present.
func Default() Config {
	return Config{
		Recognizer: RecognizerConfig{
			GRPC:          "127.0.0.1:50051",
			HealthTimeout: 2 * time.Second,
		},
		Server: ServerConfig{
			Listen:  "127.0.0.1:8190",
			Metrics: true,
		},
		Timing: TimingConfig{
			Debounce:        100 * time.Millisecond,
			RespondDelay:    1200 * time.Millisecond,
			SynthesizeDelay: 2200 * time.Millisecond,
			PlayDelay:       3200 * time.Millisecond,

			VeryShortBuffer: 600 * time.Millisecond,
			ShortBuffer:     300 * time.Millisecond,
			VeryShortWords:  3,
			ShortWords:      6,

			VadPoll:    50 * time.Millisecond,
			VadSilence: 500 * time.Millisecond,
			VadMaxWait: 3 * time.Second,

			ConfirmWindow: 800 * time.Millisecond,
			MinUtterance:  1800 * time.Millisecond,

			CachePoll: 50 * time.Millisecond,
			CacheWait: 8 * time.Second,
		},
		Echo: EchoConfig{
			Decay:       15 * time.Second,
			ShortChars:  18,
			ShortWords:  5,
			PrefixChars: 8,
		},
		Generation: GenerationConfig{
			Timeout: 8 * time.Second,
		},
		Debug: DebugConfig{},
	}
}
