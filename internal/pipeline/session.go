package pipeline

import (
	"context"
	"time"

	"github.com/buildngrowsv/bubblevoice/internal/transcript"
)

// timerKind identifies which scheduled stage a timer callback belongs to.
type timerKind int

const (
	kindDebounce timerKind = iota
	kindRespond
	kindVadGate
	kindConfirm
	kindSynthesize
	kindPlay
	kindCachePoll
)

func (k timerKind) String() string {
	switch k {
	case kindDebounce:
		return "debounce"
	case kindRespond:
		return "respond"
	case kindVadGate:
		return "vad_gate"
	case kindConfirm:
		return "confirm"
	case kindSynthesize:
		return "synthesize"
	case kindPlay:
		return "play"
	case kindCachePoll:
		return "cache_poll"
	default:
		return "unknown"
	}
}

// timerSet holds the pending timers for one cascade so teardown can stop them
// all. Slots are only touched from the controller loop.
type timerSet struct {
	debounce   *time.Timer
	respond    *time.Timer
	vadGate    *time.Timer
	confirm    *time.Timer
	synthesize *time.Timer
	play       *time.Timer
	cachePoll  *time.Timer
}

func (ts *timerSet) slot(kind timerKind) **time.Timer {
	switch kind {
	case kindDebounce:
		return &ts.debounce
	case kindRespond:
		return &ts.respond
	case kindVadGate:
		return &ts.vadGate
	case kindConfirm:
		return &ts.confirm
	case kindSynthesize:
		return &ts.synthesize
	case kindPlay:
		return &ts.play
	default:
		return &ts.cachePoll
	}
}

func (ts *timerSet) set(kind timerKind, t *time.Timer) {
	slot := ts.slot(kind)
	if *slot != nil {
		(*slot).Stop()
	}
	*slot = t
}

func (ts *timerSet) stop(kind timerKind) {
	slot := ts.slot(kind)
	if *slot != nil {
		(*slot).Stop()
		*slot = nil
	}
}

func (ts *timerSet) stopAll() {
	for _, kind := range []timerKind{
		kindDebounce, kindRespond, kindVadGate, kindConfirm,
		kindSynthesize, kindPlay, kindCachePoll,
	} {
		ts.stop(kind)
	}
}

// session is the mutable per-conversation state owned exclusively by the
// controller loop goroutine. No locks: every mutation happens on the loop.
type session struct {
	// epoch invalidates in-flight timer callbacks. Any message carrying an
	// older epoch is stale and must be dropped.
	epoch uint64

	turn int

	utterance          transcript.Utterance
	utteranceStartedAt time.Time
	lastFragmentAt     time.Time

	// lastVadHeartbeatAt is acoustic state, not turn state. It survives
	// teardown so the gate after an interruption still sees recent energy.
	lastVadHeartbeatAt time.Time

	lastSpokenText string
	lastSpokenAt   time.Time

	timers timerSet

	inResponsePipeline bool
	processingResponse bool
	ttsPlaying         bool

	vadGateDeadline   time.Time
	cachePollDeadline time.Time
	pendingUtterance  string

	genCancel context.CancelFunc
}

func newSession(epoch uint64) *session {
	return &session{epoch: epoch}
}

// busy reports whether the system is committed to producing or playing a
// response. A non-echo fragment arriving while busy is an interruption.
func (s *session) busy() bool {
	return s.inResponsePipeline || s.processingResponse || s.ttsPlaying
}

// cancelGeneration releases the per-turn generation context, if any.
func (s *session) cancelGeneration() {
	if s.genCancel != nil {
		s.genCancel()
		s.genCancel = nil
	}
}
