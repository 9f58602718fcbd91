// Package app wires configuration, logging, transports, and the pipeline
// controller into the bubblevoice command surface.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/buildngrowsv/bubblevoice/internal/cli"
	"github.com/buildngrowsv/bubblevoice/internal/config"
	"github.com/buildngrowsv/bubblevoice/internal/doctor"
	"github.com/buildngrowsv/bubblevoice/internal/events"
	"github.com/buildngrowsv/bubblevoice/internal/ipc"
	"github.com/buildngrowsv/bubblevoice/internal/logging"
	"github.com/buildngrowsv/bubblevoice/internal/metrics"
	"github.com/buildngrowsv/bubblevoice/internal/pipeline"
	"github.com/buildngrowsv/bubblevoice/internal/transport"
	"github.com/buildngrowsv/bubblevoice/internal/version"
)

type Runner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	// Generator overrides the default response generator when set.
	Generator pipeline.Generator
}

func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	r := Runner{Stdout: stdout, Stderr: stderr}
	return r.Execute(ctx, args)
}

func (r Runner) Execute(ctx context.Context, args []string) int {
	parsed, err := cli.Parse(args)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n\n", err)
		fmt.Fprint(r.Stderr, cli.HelpText("bubblevoice"))
		return 2
	}

	if parsed.ShowHelp {
		fmt.Fprint(r.Stdout, cli.HelpText("bubblevoice"))
		return 0
	}

	if parsed.Command == cli.CommandVersion {
		fmt.Fprintln(r.Stdout, version.String())
		return 0
	}

	cfgLoaded, err := config.Load(parsed.ConfigPath)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	for _, w := range cfgLoaded.Warnings {
		msg := w.Message
		if w.Line > 0 {
			msg = fmt.Sprintf("line %d: %s", w.Line, w.Message)
		}
		fmt.Fprintf(r.Stderr, "warning: %s\n", msg)
	}

	level := slog.LevelInfo
	if cfgLoaded.Config.Debug.Verbose {
		level = slog.LevelDebug
	}
	logRuntime, err := logging.New(level)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: setup logging: %v\n", err)
		return 1
	}
	defer func() { _ = logRuntime.Close() }()

	logger := r.Logger
	if logger == nil {
		logger = logRuntime.Logger
	}

	logger.Info("command start",
		"command", parsed.Command,
		"config", cfgLoaded.Path,
		"log", logRuntime.Path,
	)

	switch parsed.Command {
	case cli.CommandDoctor:
		report := doctor.Run(ctx, cfgLoaded)
		fmt.Fprintln(r.Stdout, report.String())
		if report.OK() {
			return 0
		}
		return 1
	case cli.CommandStatus:
		return r.commandStatus(ctx)
	case cli.CommandReset:
		return r.forwardOrFail(ctx, ipc.CommandReset)
	case cli.CommandRun:
		return r.commandRun(ctx, cfgLoaded.Config, logger)
	case cli.CommandServe:
		return r.commandServe(ctx, cfgLoaded.Config, logger)
	default:
		fmt.Fprintf(r.Stderr, "error: unsupported command %q\n", parsed.Command)
		return 2
	}
}

func (r Runner) commandStatus(ctx context.Context) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintln(r.Stdout, "idle")
		return 0
	}

	resp, handled, err := tryForward(ctx, socketPath, ipc.CommandStatus)
	if handled {
		if err != nil {
			fmt.Fprintf(r.Stderr, "error: %v\n", err)
			return 1
		}
		if resp.State == "" {
			resp.State = "idle"
		}
		fmt.Fprintf(r.Stdout, "%s (%d turns)\n", resp.State, resp.Turns)
		return 0
	}

	fmt.Fprintln(r.Stdout, "idle")
	return 0
}

func (r Runner) forwardOrFail(ctx context.Context, command string) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	resp, handled, err := tryForward(ctx, socketPath, command)
	if !handled {
		fmt.Fprintf(r.Stderr, "error: no running pipeline\n")
		return 1
	}
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if resp.Message != "" {
		fmt.Fprintln(r.Stdout, resp.Message)
	}
	return 0
}

// commandRun drives the pipeline against stdio collaborators: events in on
// stdin, commands out on stdout. The process exits when stdin closes.
func (r Runner) commandRun(ctx context.Context, cfg config.Config, logger *slog.Logger) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	listener, err := ipc.Acquire(ctx, socketPath, 180*time.Millisecond, 8)
	if err != nil {
		if errors.Is(err, ipc.ErrAlreadyRunning) {
			fmt.Fprintln(r.Stderr, "error: another pipeline is already running")
			return 1
		}
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	defer func() {
		_ = listener.Close()
		_ = os.Remove(socketPath)
	}()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := metrics.New()
	bridge := transport.NewStdio(logger, r.Stdout)
	ctrl := pipeline.NewController(logger, cfg, bridge, r.generator(), failureNotifier(logger), m)

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- ipc.Serve(runCtx, listener, controlHandler(ctrl, cancel))
	}()
	go ctrl.Run(runCtx)

	stdin := r.Stdin
	if stdin == nil {
		stdin = os.Stdin
	}
	pumpErr := bridge.Pump(runCtx, stdin, ctrl)
	cancel()

	if serveErr := <-serverErrCh; serveErr != nil {
		fmt.Fprintf(r.Stderr, "error: control server failed: %v\n", serveErr)
		return 1
	}
	if pumpErr != nil && !errors.Is(pumpErr, context.Canceled) {
		fmt.Fprintf(r.Stderr, "error: %v\n", pumpErr)
		return 1
	}
	return 0
}

// commandServe drives the pipeline behind a websocket bridge with an
// optional Prometheus endpoint on the same listener.
func (r Runner) commandServe(ctx context.Context, cfg config.Config, logger *slog.Logger) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	listener, err := ipc.Acquire(ctx, socketPath, 180*time.Millisecond, 8)
	if err != nil {
		if errors.Is(err, ipc.ErrAlreadyRunning) {
			fmt.Fprintln(r.Stderr, "error: another pipeline is already running")
			return 1
		}
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	defer func() {
		_ = listener.Close()
		_ = os.Remove(socketPath)
	}()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := metrics.New()

	// The bridge needs the controller as sink and the controller needs the
	// bridge as commander; the closure breaks the cycle.
	var ctrl *pipeline.Controller
	bridge := transport.NewWebSocket(logger, transport.SinkFunc(func(ev events.Event) {
		ctrl.Submit(ev)
	}))
	ctrl = pipeline.NewController(logger, cfg, bridge, r.generator(), failureNotifier(logger), m)

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- ipc.Serve(runCtx, listener, controlHandler(ctrl, cancel))
	}()
	go ctrl.Run(runCtx)

	mux := http.NewServeMux()
	mux.Handle("/ws", bridge.Handler())
	if cfg.Server.Metrics {
		mux.Handle("/metrics", m.Handler())
	}

	httpServer := &http.Server{Addr: cfg.Server.Listen, Handler: mux}
	go func() {
		<-runCtx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer shutdownCancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("serving", "listen", cfg.Server.Listen, "metrics", cfg.Server.Metrics)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	cancel()

	if serveErr := <-serverErrCh; serveErr != nil {
		fmt.Fprintf(r.Stderr, "error: control server failed: %v\n", serveErr)
		return 1
	}
	return 0
}

// generator returns the configured response generator. The default produces
// a spoken acknowledgment so the pipeline is exercisable without an external
// generator wired in.
func (r Runner) generator() pipeline.Generator {
	if r.Generator != nil {
		return r.Generator
	}
	return pipeline.GeneratorFunc(func(_ context.Context, utterance string) (string, error) {
		return fmt.Sprintf("I heard you say: %s", utterance), nil
	})
}

// failureNotifier surfaces abandoned turns in the log.
func failureNotifier(logger *slog.Logger) pipeline.Notifier {
	return pipeline.NotifierFunc(func(_ context.Context, message string) {
		logger.Warn("user-facing failure notice", "message", message)
	})
}

// controlHandler serves the local control socket against a live controller.
func controlHandler(ctrl *pipeline.Controller, shutdown context.CancelFunc) ipc.HandlerFunc {
	return func(_ context.Context, req ipc.Request) ipc.Response {
		switch req.Command {
		case ipc.CommandStatus:
			return ipc.Response{OK: true, State: string(ctrl.State()), Turns: ctrl.Turns()}
		case ipc.CommandReset:
			ctrl.Reset()
			return ipc.Response{OK: true, State: string(ctrl.State()), Message: "pipeline reset"}
		case ipc.CommandShutdown:
			shutdown()
			return ipc.Response{OK: true, Message: "shutting down"}
		default:
			return ipc.Response{OK: false, Error: fmt.Sprintf("unknown command %q", req.Command)}
		}
	}
}

func tryForward(ctx context.Context, socketPath string, command string) (ipc.Response, bool, error) {
	resp, err := ipc.Send(ctx, socketPath, ipc.Request{Command: command}, 220*time.Millisecond)
	if err == nil {
		if resp.OK {
			return resp, true, nil
		}
		return resp, true, errors.New(resp.Error)
	}

	if isSocketMissing(err) || isConnectionRefused(err) {
		return ipc.Response{}, false, nil
	}

	return ipc.Response{}, true, fmt.Errorf("forward command %q: %w", command, err)
}

func isSocketMissing(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, os.ErrNotExist) ||
		strings.Contains(err.Error(), "no such file or directory")
}

func isConnectionRefused(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, syscall.ECONNREFUSED)
}
