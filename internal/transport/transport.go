// Package transport bridges collaborator processes to the pipeline: inbound
// recognition/synthesis events and outbound control commands, as
// newline-delimited JSON over stdio or as websocket messages.
package transport

import "github.com/buildngrowsv/bubblevoice/internal/events"

// Sink consumes decoded collaborator events, typically the pipeline controller.
type Sink interface {
	Submit(ev events.Event)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ev events.Event)

func (f SinkFunc) Submit(ev events.Event) { f(ev) }
