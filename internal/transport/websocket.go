package transport

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/buildngrowsv/bubblevoice/internal/events"
)

const (
	wsWriteWait      = 5 * time.Second
	wsMaxMessageSize = 256 * 1024
)

// WebSocket accepts collaborator connections over HTTP and bridges their
// messages to the pipeline. Commands fan out to every connected client; the
// recognizer and synthesizer may share one connection or use separate ones.
type WebSocket struct {
	logger   *slog.Logger
	sink     Sink
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

// NewWebSocket constructs a websocket bridge feeding sink.
func NewWebSocket(logger *slog.Logger, sink Sink) *WebSocket {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &WebSocket{
		logger: logger,
		sink:   sink,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
		conns: make(map[*websocket.Conn]struct{}),
	}
}

// Handler upgrades each request and pumps its messages until the peer closes.
func (w *WebSocket) Handler() http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		conn, err := w.upgrader.Upgrade(rw, req, nil)
		if err != nil {
			w.logger.Warn("websocket upgrade failed", "remote", req.RemoteAddr, "error", err)
			return
		}
		conn.SetReadLimit(wsMaxMessageSize)

		w.register(conn)
		defer w.unregister(conn)

		w.logger.Info("collaborator connected", "remote", req.RemoteAddr)
		for {
			_, payload, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					w.logger.Warn("collaborator connection lost", "remote", req.RemoteAddr, "error", err)
				}
				return
			}

			ev, decodeErr := events.DecodeEvent(payload)
			if decodeErr != nil {
				w.logger.Warn("skipping malformed event message", "error", decodeErr)
				continue
			}
			w.sink.Submit(ev)
		}
	})
}

func (w *WebSocket) register(conn *websocket.Conn) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.conns[conn] = struct{}{}
}

func (w *WebSocket) unregister(conn *websocket.Conn) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.conns, conn)
	_ = conn.Close()
}

// broadcast writes one command to every connected client. The connection
// mutex doubles as the per-conn write serializer required by gorilla.
func (w *WebSocket) broadcast(cmd events.Command) {
	payload, err := events.EncodeCommand(cmd)
	if err != nil {
		w.logger.Error("encode command", "type", cmd.Type(), "error", err)
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	for conn := range w.conns {
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			w.logger.Warn("dropping unwritable connection", "error", err)
			delete(w.conns, conn)
			_ = conn.Close()
		}
	}
}

func (w *WebSocket) ResetRecognition(context.Context)    { w.broadcast(events.ResetRecognition{}) }
func (w *WebSocket) CancelPendingOutput(context.Context) { w.broadcast(events.CancelPendingOutput{}) }
func (w *WebSocket) StopSpeaking(context.Context)        { w.broadcast(events.StopSpeaking{}) }

func (w *WebSocket) Speak(_ context.Context, cmd events.Speak) { w.broadcast(cmd) }
