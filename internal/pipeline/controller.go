// Package pipeline coordinates turn-taking: it aggregates recognition
// fragments, schedules the adaptive response cascade, arbitrates
// interruptions, and hands committed utterances to response generation.
package pipeline

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/buildngrowsv/bubblevoice/internal/config"
	"github.com/buildngrowsv/bubblevoice/internal/echo"
	"github.com/buildngrowsv/bubblevoice/internal/events"
	"github.com/buildngrowsv/bubblevoice/internal/fsm"
	"github.com/buildngrowsv/bubblevoice/internal/metrics"
)

// message is one unit of work for the controller loop. Timer callbacks never
// touch session state directly; they post a message back onto the loop.
type message interface{ isMessage() }

type eventMsg struct{ ev events.Event }

type timerMsg struct {
	kind  timerKind
	epoch uint64
}

type resetMsg struct{ done chan struct{} }

func (eventMsg) isMessage() {}
func (timerMsg) isMessage() {}
func (resetMsg) isMessage() {}

// Controller owns the turn-taking loop. All session state is confined to the
// single goroutine started by Run; external callers interact through Submit,
// Reset, and the read-only snapshots.
type Controller struct {
	cfg    config.Config
	logger *slog.Logger

	cmd     Commander
	gen     Generator
	notify  Notifier
	echo    *echo.Classifier
	cache   *ResponseCache
	metrics *metrics.Metrics

	msgs chan message
	done chan struct{}

	mu    sync.RWMutex
	state fsm.State
	turns int

	// loop-owned, never touched outside the Run goroutine after start
	sess    *session
	turnSeq int
	runCtx  context.Context
	genWG   sync.WaitGroup
}

// NewController constructs a turn-taking controller with safe default fallbacks.
func NewController(
	logger *slog.Logger,
	cfg config.Config,
	commander Commander,
	generator Generator,
	notifier Notifier,
	m *metrics.Metrics,
) *Controller {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if commander == nil {
		commander = noopCommander{}
	}
	if generator == nil {
		generator = PlaceholderGenerator{}
	}
	if notifier == nil {
		notifier = noopNotifier{}
	}
	if m == nil {
		m = metrics.New()
	}

	return &Controller{
		cfg:    cfg,
		logger: logger,
		cmd:    commander,
		gen:    generator,
		notify: notifier,
		echo: echo.New(echo.Config{
			DecayWindow: cfg.Echo.Decay,
			ShortChars:  cfg.Echo.ShortChars,
			ShortWords:  cfg.Echo.ShortWords,
			PrefixChars: cfg.Echo.PrefixChars,
		}),
		cache:   NewResponseCache(),
		metrics: m,
		msgs:    make(chan message, 128),
		done:    make(chan struct{}),
		state:   fsm.StateIdle,
		sess:    newSession(1),
	}
}

// State returns the current FSM state snapshot.
func (c *Controller) State() fsm.State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Turns returns the number of completed utterance/response cycles.
func (c *Controller) Turns() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.turns
}

func (c *Controller) setState(s fsm.State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func (c *Controller) completeTurn() {
	c.mu.Lock()
	c.turns++
	c.mu.Unlock()
	c.metrics.TurnsCompleted.Inc()
}

// transition applies one FSM event, logging and ignoring invalid transitions.
// Out-of-order collaborator events are routine, not faults.
func (c *Controller) transition(event fsm.Event) bool {
	next, err := fsm.Transition(c.State(), event)
	if err != nil {
		c.logger.Warn("ignoring invalid transition", "event", string(event), "state", string(c.State()))
		return false
	}
	c.setState(next)
	return true
}

// Submit posts one collaborator event onto the controller loop. Events
// submitted after the loop has stopped are dropped.
func (c *Controller) Submit(ev events.Event) {
	select {
	case c.msgs <- eventMsg{ev: ev}:
	case <-c.done:
	}
}

// Reset tears down all in-flight work and returns the controller to idle.
// It blocks until the loop has processed the reset.
func (c *Controller) Reset() {
	done := make(chan struct{})
	select {
	case c.msgs <- resetMsg{done: done}:
	case <-c.done:
		return
	}
	select {
	case <-done:
	case <-c.done:
	}
}

// Run processes messages until ctx is cancelled. It must be called exactly once.
func (c *Controller) Run(ctx context.Context) {
	c.runCtx = ctx
	defer close(c.done)
	defer func() {
		c.sess.timers.stopAll()
		c.sess.cancelGeneration()
		c.genWG.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-c.msgs:
			c.dispatch(ctx, msg)
		}
	}
}

func (c *Controller) dispatch(ctx context.Context, msg message) {
	switch m := msg.(type) {
	case eventMsg:
		c.handleEvent(ctx, m.ev)
	case timerMsg:
		if m.epoch != c.sess.epoch {
			c.metrics.StaleTimerDrops.Inc()
			c.logger.Debug("dropping stale timer", "kind", m.kind.String(),
				"timer_epoch", m.epoch, "session_epoch", c.sess.epoch)
			return
		}
		c.handleTimer(ctx, m.kind)
	case resetMsg:
		c.hardReset(ctx)
		close(m.done)
	}
}

func (c *Controller) handleEvent(ctx context.Context, ev events.Event) {
	switch e := ev.(type) {
	case events.TranscriptionUpdate:
		c.handleTranscription(ctx, e)
	case events.VadSpeechActive:
		c.sess.lastVadHeartbeatAt = time.Now()
	case events.SpeechEnergySilence:
		c.handleEnergySilence(ctx)
	case events.SpeechStarted:
		c.sess.ttsPlaying = true
	case events.SpeechEnded:
		c.handleSpeechEnded(ctx)
	}
}

func (c *Controller) handleTimer(ctx context.Context, kind timerKind) {
	switch kind {
	case kindDebounce:
		c.startCascade(ctx)
	case kindRespond:
		c.startVadGate(ctx)
	case kindVadGate:
		c.pollVadGate(ctx)
	case kindConfirm:
		c.confirmElapsed(ctx)
	case kindSynthesize:
		c.synthesizeStage(ctx)
	case kindPlay:
		c.playStage(ctx)
	case kindCachePoll:
		c.pollCache(ctx)
	}
}

// schedule arms one timer slot. The callback carries the current epoch so a
// later teardown invalidates it without racing against the timer goroutine.
func (c *Controller) schedule(kind timerKind, delay time.Duration) {
	epoch := c.sess.epoch
	c.sess.timers.set(kind, time.AfterFunc(delay, func() {
		select {
		case c.msgs <- timerMsg{kind: kind, epoch: epoch}:
		case <-c.done:
		}
	}))
}

// invalidate advances the session epoch, making every scheduled timer stale,
// and stops the underlying timers so they do not fire pointlessly.
func (c *Controller) invalidate() {
	c.sess.epoch++
	c.sess.timers.stopAll()
}

// hardReset is the operator-initiated full teardown, including speaking state.
func (c *Controller) hardReset(ctx context.Context) {
	wasSpeaking := c.sess.ttsPlaying
	c.teardown(ctx, wasSpeaking)
	c.setState(fsm.StateIdle)
	c.logger.Info("pipeline reset")
}
