// Package ipc provides the local control socket for a running pipeline:
// newline-delimited JSON request/response over a unix socket.
package ipc

// Supported control commands.
//
// status reports the pipeline's conversational state without touching it.
// reset abandons any in-flight turn and returns the pipeline to idle,
// cutting off generation and playback the same way an interruption does.
// shutdown stops the pipeline loop and releases the socket.
const (
	CommandStatus   = "status"
	CommandReset    = "reset"
	CommandShutdown = "shutdown"
)

type Request struct {
	Command string `json:"command"`
}

// Response carries the outcome of one control command. State is the
// lifecycle state snapshot (idle, cascading, confirming, responding,
// speaking, error) and Turns counts responses spoken to completion since the
// pipeline started; both are populated only for status.
type Response struct {
	OK      bool   `json:"ok"`
	State   string `json:"state,omitempty"`
	Turns   int    `json:"turns,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}
