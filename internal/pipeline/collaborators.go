package pipeline

import (
	"context"
	"errors"

	"github.com/buildngrowsv/bubblevoice/internal/events"
)

var (
	// ErrGeneratorUnavailable indicates runtime generator wiring is missing.
	ErrGeneratorUnavailable = errors.New("response generator not wired")
	// ErrGenerationTimeout indicates the play stage gave up waiting for a response.
	ErrGenerationTimeout = errors.New("response generation timed out")
)

// Commander emits control commands to the recognition and synthesis collaborators.
type Commander interface {
	ResetRecognition(context.Context)
	CancelPendingOutput(context.Context)
	StopSpeaking(context.Context)
	Speak(context.Context, events.Speak)
}

// noopCommander preserves pipeline flow when no transport is wired.
type noopCommander struct{}

func (noopCommander) ResetRecognition(context.Context)      {}
func (noopCommander) CancelPendingOutput(context.Context)   {}
func (noopCommander) StopSpeaking(context.Context)          {}
func (noopCommander) Speak(context.Context, events.Speak)   {}

// Generator produces the system's spoken reply for one committed utterance.
// It is the one collaborator call expected to take non-trivial wall-clock time.
type Generator interface {
	Generate(ctx context.Context, utterance string) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, utterance string) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, utterance string) (string, error) {
	return f(ctx, utterance)
}

// PlaceholderGenerator is a no-op placeholder used in tests/fallback wiring.
type PlaceholderGenerator struct{}

func (PlaceholderGenerator) Generate(context.Context, string) (string, error) {
	return "", ErrGeneratorUnavailable
}

// Notifier surfaces user-visible failure notices.
type Notifier interface {
	NotifyFailure(context.Context, string)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(context.Context, string)

func (f NotifierFunc) NotifyFailure(ctx context.Context, message string) {
	f(ctx, message)
}

// noopNotifier preserves pipeline flow when no notifier is wired.
type noopNotifier struct{}

func (noopNotifier) NotifyFailure(context.Context, string) {}
