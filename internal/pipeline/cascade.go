package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/buildngrowsv/bubblevoice/internal/events"
	"github.com/buildngrowsv/bubblevoice/internal/fsm"
	"github.com/buildngrowsv/bubblevoice/internal/transcript"
)

// handleTranscription folds one recognition fragment into the current turn.
// Every accepted fragment restarts the debounce window and invalidates any
// cascade already in flight.
func (c *Controller) handleTranscription(ctx context.Context, up events.TranscriptionUpdate) {
	// Whitespace-only fragments carry no user speech and must never reach
	// the interruption arbiter.
	if strings.TrimSpace(up.Text) == "" {
		return
	}

	speaking := up.SystemIsSpeaking || c.sess.ttsPlaying
	if c.echo.IsEcho(up.Text, c.sess.lastSpokenText, c.sess.lastSpokenAt, speaking) {
		c.metrics.EchoSuppressed.Inc()
		c.logger.Debug("suppressing echo fragment", "text", up.Text)
		return
	}

	if c.sess.busy() {
		c.interrupt(ctx)
	}

	merged := c.sess.utterance.Merge(up.Text, up.IsFinal)
	if merged == "" {
		return
	}

	now := time.Now()
	if c.sess.utteranceStartedAt.IsZero() {
		c.sess.utteranceStartedAt = now
	}
	c.sess.lastFragmentAt = now

	if !c.transition(fsm.EventActivity) {
		return
	}

	c.invalidate()
	c.schedule(kindDebounce, c.cfg.Timing.Debounce)
	c.logger.Debug("fragment merged",
		"final", up.IsFinal,
		"words", transcript.WordCount(merged))
}

// startCascade fires after the debounce window closes with no new fragments.
// It arms the respond stage timer, stretched for short utterances where the
// recognizer is most likely mid-sentence.
func (c *Controller) startCascade(ctx context.Context) {
	text := c.sess.utterance.Text()
	if text == "" {
		c.transition(fsm.EventAbort)
		return
	}

	words := transcript.WordCount(text)
	var extra time.Duration
	switch {
	case words <= c.cfg.Timing.VeryShortWords:
		extra = c.cfg.Timing.VeryShortBuffer
	case words <= c.cfg.Timing.ShortWords:
		extra = c.cfg.Timing.ShortBuffer
	}

	c.schedule(kindRespond, c.cfg.Timing.RespondDelay+extra)
	c.logger.Debug("cascade armed", "words", words, "stretch_ms", extra.Milliseconds())
}

// startVadGate begins the pre-response silence gate when the respond timer
// fires. The gate holds the cascade while acoustic energy is still present,
// bounded by a safety valve so a noisy room cannot mute the system forever.
func (c *Controller) startVadGate(ctx context.Context) {
	c.sess.vadGateDeadline = time.Now().Add(c.cfg.Timing.VadMaxWait)
	c.pollVadGate(ctx)
}

func (c *Controller) pollVadGate(ctx context.Context) {
	now := time.Now()
	hb := c.sess.lastVadHeartbeatAt
	silent := hb.IsZero() || now.Sub(hb) >= c.cfg.Timing.VadSilence

	if !silent {
		if now.Before(c.sess.vadGateDeadline) {
			c.schedule(kindVadGate, c.cfg.Timing.VadPoll)
			return
		}
		c.metrics.VadGateTimeouts.Inc()
		c.logger.Warn("vad gate wait limit reached, proceeding anyway")
	}

	c.gatePassed(ctx)
}

// gatePassed routes a gate-cleared utterance either straight into the
// response pipeline or through the short-utterance confirmation window.
func (c *Controller) gatePassed(ctx context.Context) {
	text := c.sess.utterance.Text()
	words := transcript.WordCount(text)
	duration := time.Since(c.sess.utteranceStartedAt)

	if words < c.cfg.Timing.ShortWords || duration < c.cfg.Timing.MinUtterance {
		if !c.transition(fsm.EventConfirm) {
			return
		}
		c.schedule(kindConfirm, c.cfg.Timing.ConfirmWindow)
		c.logger.Debug("holding short utterance for confirmation",
			"words", words, "duration_ms", duration.Milliseconds())
		return
	}

	c.proceed(ctx)
}

// confirmElapsed commits a short utterance after its confirmation window
// passed without further speech. The duration floor is re-checked at commit
// time; an utterance still younger than the minimum goes back to idle.
func (c *Controller) confirmElapsed(ctx context.Context) {
	if time.Since(c.sess.utteranceStartedAt) < c.cfg.Timing.MinUtterance {
		c.transition(fsm.EventAbort)
		c.logger.Debug("utterance still below duration floor at confirm time")
		return
	}
	c.proceed(ctx)
}

// proceed commits the utterance: the turn is numbered, the cache armed,
// generation started, and the remaining stage timers armed relative to the
// commit. From here on new user speech is an interruption.
func (c *Controller) proceed(ctx context.Context) {
	if !c.transition(fsm.EventProceed) {
		return
	}

	c.sess.inResponsePipeline = true
	c.turnSeq++
	c.sess.turn = c.turnSeq
	c.sess.pendingUtterance = c.sess.utterance.Text()

	c.cache.Arm(c.sess.turn)
	c.launchGeneration(c.sess.turn, c.sess.pendingUtterance)

	c.schedule(kindSynthesize, c.cfg.Timing.SynthesizeDelay-c.cfg.Timing.RespondDelay)
	c.schedule(kindPlay, c.cfg.Timing.PlayDelay-c.cfg.Timing.RespondDelay)

	c.logger.Info("utterance committed",
		"turn", c.sess.turn,
		"words", transcript.WordCount(c.sess.pendingUtterance))
}

// synthesizeStage marks the synthesis preparation phase. Generation is
// already running; the marker widens the busy window that interruption
// arbitration keys on.
func (c *Controller) synthesizeStage(ctx context.Context) {
	if !c.sess.inResponsePipeline {
		return
	}
	c.sess.processingResponse = true
	c.logger.Debug("synthesize stage reached", "turn", c.sess.turn)
}

// playStage begins polling the response cache. Playback cannot start before
// this stage even when generation finished early.
func (c *Controller) playStage(ctx context.Context) {
	if !c.sess.inResponsePipeline {
		return
	}
	c.sess.cachePollDeadline = time.Now().Add(c.cfg.Timing.CacheWait)
	c.pollCache(ctx)
}

func (c *Controller) pollCache(ctx context.Context) {
	resp, ok, err := c.cache.Poll()
	switch {
	case err != nil:
		c.abandonTurn(ctx, err)
	case ok:
		c.emitSpeak(ctx, resp)
	case time.Now().After(c.sess.cachePollDeadline):
		c.abandonTurn(ctx, ErrGenerationTimeout)
	default:
		c.schedule(kindCachePoll, c.cfg.Timing.CachePoll)
	}
}

// emitSpeak starts playback. Recognition is reset first so the recognizer
// enters the speaking window with no residue of the user's utterance that
// could resurface as a phantom interruption.
func (c *Controller) emitSpeak(ctx context.Context, resp Response) {
	if !c.transition(fsm.EventSpeak) {
		return
	}

	c.cmd.ResetRecognition(ctx)

	c.sess.inResponsePipeline = false
	c.sess.processingResponse = false
	c.sess.ttsPlaying = true
	c.sess.lastSpokenText = resp.Text
	c.sess.lastSpokenAt = time.Now()

	c.cmd.Speak(ctx, events.Speak{Text: resp.Text, TurnID: resp.ID})
	c.logger.Info("speaking response", "turn", resp.Turn, "chars", len(resp.Text))
}

// launchGeneration runs the generator off-loop. The goroutine communicates
// only through the turn-armed cache, so a result outliving its turn is
// silently discarded rather than replayed into a later one.
func (c *Controller) launchGeneration(turn int, utterance string) {
	genCtx, cancel := context.WithTimeout(c.runCtx, c.cfg.Generation.Timeout)
	c.sess.genCancel = cancel
	c.genWG.Add(1)

	go func() {
		defer c.genWG.Done()
		defer cancel()

		text, err := c.gen.Generate(genCtx, utterance)
		if err != nil {
			c.cache.Fail(turn, err)
			return
		}
		c.cache.Put(Response{
			ID:              uuid.NewString(),
			Turn:            turn,
			Text:            text,
			SourceUtterance: utterance,
		})
	}()
}

// abandonTurn gives up on the committed utterance after a generation failure
// or timeout and returns the pipeline to idle, ready for the next turn.
func (c *Controller) abandonTurn(ctx context.Context, cause error) {
	c.metrics.GenerationFailures.Inc()
	c.logger.Error("abandoning turn", "turn", c.sess.turn, "error", cause)
	c.notify.NotifyFailure(ctx, "I lost my train of thought, could you say that again?")

	c.invalidate()
	c.sess.cancelGeneration()
	c.cache.Clear()
	c.clearTurnState()

	if !c.transition(fsm.EventAbort) {
		c.transition(fsm.EventFail)
	}
}
