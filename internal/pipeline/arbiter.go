package pipeline

import (
	"context"
	"time"

	"github.com/buildngrowsv/bubblevoice/internal/fsm"
)

// interrupt tears down the in-flight response because the user spoke while
// the system was committed to responding or already playing audio.
func (c *Controller) interrupt(ctx context.Context) {
	wasSpeaking := c.sess.ttsPlaying
	c.teardown(ctx, wasSpeaking)
	c.transition(fsm.EventInterrupt)
	c.metrics.Interruptions.Inc()
	c.logger.Info("user interruption", "was_speaking", wasSpeaking)
}

// teardown cancels every pending stage of the current turn. It is idempotent:
// a second call finds nothing armed and issues only the always-safe commands.
// stopSpeaking is passed by the caller because only the caller knows whether
// audio was actually playing when the decision was made.
func (c *Controller) teardown(ctx context.Context, stopSpeaking bool) {
	c.invalidate()
	c.sess.cancelGeneration()
	c.cache.Clear()
	c.clearTurnState()

	if stopSpeaking {
		c.cmd.StopSpeaking(ctx)
	}
	c.cmd.CancelPendingOutput(ctx)
	c.cmd.ResetRecognition(ctx)
}

// clearTurnState drops everything tied to the current turn. The VAD heartbeat
// and last-spoken record survive: the first is acoustic state, the second is
// still needed to classify trailing echo of the speech just cut off.
func (c *Controller) clearTurnState() {
	c.sess.utterance.Reset()
	c.sess.utteranceStartedAt = time.Time{}
	c.sess.lastFragmentAt = time.Time{}
	c.sess.pendingUtterance = ""
	c.sess.vadGateDeadline = time.Time{}
	c.sess.cachePollDeadline = time.Time{}
	c.sess.inResponsePipeline = false
	c.sess.processingResponse = false
	c.sess.ttsPlaying = false
}

// handleEnergySilence reacts to acoustic energy that stopped without yielding
// a transcription. If text is already pending with no cascade running, the
// silence is the cue the debounce never got.
func (c *Controller) handleEnergySilence(ctx context.Context) {
	if c.State() != fsm.StateIdle || c.sess.utterance.Empty() {
		return
	}
	if !c.transition(fsm.EventActivity) {
		return
	}
	c.invalidate()
	c.schedule(kindDebounce, c.cfg.Timing.Debounce)
	c.logger.Debug("energy silence kick, restarting cascade")
}

// handleSpeechEnded closes out a completed turn. A stale event arriving after
// an interruption already cleared ttsPlaying must not wipe the next turn.
func (c *Controller) handleSpeechEnded(ctx context.Context) {
	if !c.sess.ttsPlaying {
		return
	}
	c.sess.ttsPlaying = false

	if !c.transition(fsm.EventSpeechEnd) {
		return
	}

	c.completeTurn()
	c.invalidate()
	c.sess.utterance.Reset()
	c.sess.utteranceStartedAt = time.Time{}
	c.sess.lastFragmentAt = time.Time{}
	c.sess.pendingUtterance = ""

	// Discard whatever the recognizer heard of the system's own speech so
	// the next turn starts from a clean buffer.
	c.cmd.ResetRecognition(ctx)
	c.logger.Info("turn complete", "turn", c.sess.turn, "turns_total", c.Turns())
}
