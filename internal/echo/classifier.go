// Package echo classifies transcription fragments that are acoustic pickup of
// the system's own synthesized speech rather than new user input.
package echo

import (
	"strings"
	"time"

	"github.com/buildngrowsv/bubblevoice/internal/transcript"
)

// Config holds the tunable classification thresholds.
type Config struct {
	// DecayWindow is how long after the system last spoke a fragment can
	// still be attributed to echo.
	DecayWindow time.Duration
	// ShortChars and ShortWords bound the "short fragment" substring rule.
	ShortChars int
	ShortWords int
	// PrefixChars bounds the stricter prefix-only rule for very short fragments.
	PrefixChars int
}

// Classifier applies the echo heuristics against the last-spoken text.
type Classifier struct {
	cfg Config
	now func() time.Time
}

// New constructs a classifier. A zero now func defaults to time.Now.
func New(cfg Config) *Classifier {
	return &Classifier{cfg: cfg, now: time.Now}
}

// IsEcho reports whether fragment is feedback from the system's own output.
//
// The short-fragment rules cover the common case: the system's own speech
// trailing off or a single echoed word. Full containment is a cheap backstop
// for a late-arriving long echo chunk.
func (c *Classifier) IsEcho(fragment, lastSpokenText string, lastSpokenAt time.Time, systemIsSpeaking bool) bool {
	if !systemIsSpeaking {
		return false
	}
	if strings.TrimSpace(fragment) == "" {
		return true
	}
	if lastSpokenAt.IsZero() || c.now().Sub(lastSpokenAt) > c.cfg.DecayWindow {
		return false
	}

	frag := transcript.Normalize(fragment)
	spoken := transcript.Normalize(lastSpokenText)
	if frag == "" {
		return true
	}
	if spoken == "" {
		return false
	}

	if len(frag) <= c.cfg.ShortChars || transcript.WordCount(frag) <= c.cfg.ShortWords {
		if len(frag) <= c.cfg.PrefixChars {
			return strings.HasPrefix(spoken, frag)
		}
		return strings.Contains(spoken, frag)
	}

	return strings.Contains(spoken, frag)
}
