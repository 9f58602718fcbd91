// Package doctor runs runtime readiness diagnostics for config, the control
// socket, the serve listener, and the recognizer gRPC endpoint.
package doctor

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/connectivity"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/buildngrowsv/bubblevoice/internal/config"
	"github.com/buildngrowsv/bubblevoice/internal/ipc"
)

// Check is one doctor assertion result.
type Check struct {
	Name    string
	Pass    bool
	Message string
}

// Report is the full doctor output contract.
type Report struct {
	Checks []Check
}

// OK returns true when all checks pass.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

// String renders the report as user-facing text output.
func (r Report) String() string {
	var b strings.Builder
	for _, check := range r.Checks {
		status := "OK"
		if !check.Pass {
			status = "FAIL"
		}
		b.WriteString(fmt.Sprintf("[%s] %s: %s\n", status, check.Name, check.Message))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Run executes environment/config/runtime checks for a loaded config.
func Run(ctx context.Context, cfg config.Loaded) Report {
	checks := []Check{}

	checks = append(checks, Check{
		Name:    "config",
		Pass:    true,
		Message: fmt.Sprintf("loaded %q", cfg.Path),
	})
	for _, warning := range cfg.Warnings {
		checks = append(checks, Check{
			Name:    "config.warning",
			Pass:    true,
			Message: warning.Message,
		})
	}

	checks = append(checks, checkControlSocket(ctx))
	checks = append(checks, checkServeAddr(cfg.Config))
	checks = append(checks, checkRecognizer(ctx, cfg.Config))

	return Report{Checks: checks}
}

// checkControlSocket reports whether a pipeline is already running.
func checkControlSocket(ctx context.Context) Check {
	path, err := ipc.RuntimeSocketPath()
	if err != nil {
		return Check{Name: "control.socket", Pass: false, Message: err.Error()}
	}

	alive, probeErr := ipc.Probe(ctx, path, 500*time.Millisecond)
	if probeErr != nil {
		return Check{Name: "control.socket", Pass: false, Message: probeErr.Error()}
	}
	if alive {
		return Check{Name: "control.socket", Pass: true, Message: fmt.Sprintf("pipeline responding on %s", path)}
	}
	return Check{Name: "control.socket", Pass: true, Message: fmt.Sprintf("%s is free", path)}
}

// checkServeAddr validates the serve listen address without holding it.
func checkServeAddr(cfg config.Config) Check {
	addr := strings.TrimSpace(cfg.Server.Listen)
	if addr == "" {
		return Check{Name: "server.listen", Pass: false, Message: "server listen address is empty"}
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		if strings.Contains(err.Error(), "address already in use") {
			return Check{Name: "server.listen", Pass: true, Message: fmt.Sprintf("%s in use (serve mode already up?)", addr)}
		}
		return Check{Name: "server.listen", Pass: false, Message: fmt.Sprintf("cannot listen on %s: %v", addr, err)}
	}
	_ = listener.Close()
	return Check{Name: "server.listen", Pass: true, Message: fmt.Sprintf("%s is available", addr)}
}

// checkRecognizer probes the recognizer's standard gRPC health service.
func checkRecognizer(ctx context.Context, cfg config.Config) Check {
	target := strings.TrimSpace(cfg.Recognizer.GRPC)
	if target == "" {
		return Check{Name: "recognizer.grpc", Pass: false, Message: "recognizer grpc address is empty"}
	}

	conn, err := grpc.NewClient(
		target,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return Check{Name: "recognizer.grpc", Pass: false, Message: fmt.Sprintf("dial %s: %v", target, err)}
	}
	defer conn.Close()

	probeCtx, cancel := context.WithTimeout(ctx, cfg.Recognizer.HealthTimeout)
	defer cancel()

	conn.Connect()
	if err := waitForReady(probeCtx, conn); err != nil {
		return Check{Name: "recognizer.grpc", Pass: false, Message: fmt.Sprintf("connect %s: %v", target, err)}
	}

	resp, err := healthpb.NewHealthClient(conn).Check(probeCtx, &healthpb.HealthCheckRequest{})
	if err != nil {
		return Check{Name: "recognizer.grpc", Pass: false, Message: fmt.Sprintf("health check: %v", err)}
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return Check{Name: "recognizer.grpc", Pass: false, Message: fmt.Sprintf("health status %s", resp.GetStatus())}
	}
	return Check{Name: "recognizer.grpc", Pass: true, Message: fmt.Sprintf("%s serving", target)}
}

// waitForReady blocks until the gRPC connection enters Ready or fails.
func waitForReady(ctx context.Context, conn *grpc.ClientConn) error {
	for {
		state := conn.GetState()
		switch state {
		case connectivity.Ready:
			return nil
		case connectivity.Shutdown:
			return fmt.Errorf("grpc connection entered shutdown state")
		}

		if !conn.WaitForStateChange(ctx, state) {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("grpc readiness wait timed out in state %s", state.String())
		}
	}
}
