package events

import (
	"encoding/json"
	"fmt"
)

// envelope is the wire framing shared by events and commands: one JSON object
// per line with a type tag and an optional payload.
type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// DecodeEvent parses one wire line into its typed event.
func DecodeEvent(line []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(line, &env); err != nil {
		return nil, fmt.Errorf("decode event envelope: %w", err)
	}

	switch env.Type {
	case TypeTranscriptionUpdate:
		var ev TranscriptionUpdate
		if len(env.Data) > 0 {
			if err := json.Unmarshal(env.Data, &ev); err != nil {
				return nil, fmt.Errorf("decode %s payload: %w", env.Type, err)
			}
		}
		return ev, nil
	case TypeVadSpeechActive:
		return VadSpeechActive{}, nil
	case TypeSpeechEnergySilence:
		return SpeechEnergySilence{}, nil
	case TypeSpeechStarted:
		return SpeechStarted{}, nil
	case TypeSpeechEnded:
		return SpeechEnded{}, nil
	default:
		return nil, fmt.Errorf("unknown event type %q", env.Type)
	}
}

// EncodeCommand serializes one command into its wire line (without newline).
func EncodeCommand(cmd Command) ([]byte, error) {
	env := envelope{Type: cmd.Type()}

	switch c := cmd.(type) {
	case ResetRecognition, CancelPendingOutput, StopSpeaking:
		// no payload
	case Speak:
		data, err := json.Marshal(c)
		if err != nil {
			return nil, fmt.Errorf("encode %s payload: %w", env.Type, err)
		}
		env.Data = data
	default:
		return nil, fmt.Errorf("unknown command type %T", cmd)
	}

	line, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encode command envelope: %w", err)
	}
	return line, nil
}
