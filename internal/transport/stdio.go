package transport

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/buildngrowsv/bubblevoice/internal/events"
)

// Stdio speaks the line protocol over a reader/writer pair, usually the
// recognizer process's stdout and stdin. It implements pipeline.Commander on
// the write side.
type Stdio struct {
	logger *slog.Logger

	mu  sync.Mutex
	out io.Writer
}

// NewStdio constructs a stdio bridge writing commands to out.
func NewStdio(logger *slog.Logger, out io.Writer) *Stdio {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Stdio{logger: logger, out: out}
}

// Pump reads JSON lines from in and submits decoded events to sink until EOF
// or context cancellation. Malformed lines are logged and skipped so one bad
// message cannot wedge the stream.
func (s *Stdio) Pump(ctx context.Context, in io.Reader, sink Sink) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		ev, err := events.DecodeEvent([]byte(line))
		if err != nil {
			s.logger.Warn("skipping malformed event line", "error", err)
			continue
		}
		sink.Submit(ev)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read event stream: %w", err)
	}
	return nil
}

func (s *Stdio) write(cmd events.Command) {
	payload, err := events.EncodeCommand(cmd)
	if err != nil {
		s.logger.Error("encode command", "type", cmd.Type(), "error", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.out.Write(append(payload, '\n')); err != nil {
		s.logger.Error("write command", "type", cmd.Type(), "error", err)
	}
}

func (s *Stdio) ResetRecognition(context.Context)    { s.write(events.ResetRecognition{}) }
func (s *Stdio) CancelPendingOutput(context.Context) { s.write(events.CancelPendingOutput{}) }
func (s *Stdio) StopSpeaking(context.Context)        { s.write(events.StopSpeaking{}) }

func (s *Stdio) Speak(_ context.Context, cmd events.Speak) { s.write(cmd) }
