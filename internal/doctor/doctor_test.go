package doctor

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/buildngrowsv/bubblevoice/internal/config"
)

func TestReportOKAndString(t *testing.T) {
	report := Report{Checks: []Check{
		{Name: "one", Pass: true, Message: "good"},
		{Name: "two", Pass: false, Message: "bad"},
	}}

	require.False(t, report.OK())
	text := report.String()
	require.Contains(t, text, "[OK] one: good")
	require.Contains(t, text, "[FAIL] two: bad")
}

func TestCheckServeAddrAvailable(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Server.Listen = "127.0.0.1:0"

	check := checkServeAddr(cfg)
	require.True(t, check.Pass)
	require.Contains(t, check.Message, "available")
}

func TestCheckServeAddrEmpty(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Server.Listen = ""

	check := checkServeAddr(cfg)
	require.False(t, check.Pass)
	require.Contains(t, check.Message, "empty")
}

func TestCheckRecognizerEmptyAddress(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Recognizer.GRPC = ""

	check := checkRecognizer(context.Background(), cfg)
	require.False(t, check.Pass)
	require.Contains(t, check.Message, "empty")
}

func TestCheckRecognizerUnreachable(t *testing.T) {
	t.Parallel()

	// Reserve a port and close it so nothing is listening there.
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	cfg := config.Default()
	cfg.Recognizer.GRPC = addr
	cfg.Recognizer.HealthTimeout = 300 * time.Millisecond

	check := checkRecognizer(context.Background(), cfg)
	require.False(t, check.Pass)
}

func TestRunReportsConfigPath(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())

	loaded := config.Loaded{
		Path:   "/tmp/bubblevoice/config.conf",
		Config: config.Default(),
		Warnings: []config.Warning{
			{Message: "legacy key=value config is deprecated"},
		},
	}
	loaded.Config.Recognizer.HealthTimeout = 200 * time.Millisecond

	report := Run(context.Background(), loaded)
	require.NotEmpty(t, report.Checks)
	require.Equal(t, "config", report.Checks[0].Name)
	require.Contains(t, report.Checks[0].Message, "/tmp/bubblevoice/config.conf")
	require.Equal(t, "config.warning", report.Checks[1].Name)
}
