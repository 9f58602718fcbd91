// Package events defines the inbound recognition/synthesis event stream and
// the outbound command vocabulary exchanged with pipeline collaborators.
package events

// Event is one inbound signal from the recognition or synthesis collaborator.
type Event interface {
	isEvent()
	Type() string
}

// TranscriptionUpdate carries one recognition fragment. A final fragment is a
// committed segment; a non-final fragment is a volatile re-guess of the still
// open tail of the utterance.
type TranscriptionUpdate struct {
	Text             string `json:"text"`
	IsFinal          bool   `json:"isFinal"`
	SystemIsSpeaking bool   `json:"isSpeaking"`
}

// VadSpeechActive is the heartbeat emitted while acoustic speech energy is
// present, independent of whether any recognized text has arrived.
type VadSpeechActive struct{}

// SpeechEnergySilence reports that acoustic energy was seen and then stopped
// without producing a transcription.
type SpeechEnergySilence struct{}

// SpeechStarted reports that the synthesis collaborator began audio output.
type SpeechStarted struct{}

// SpeechEnded reports that the synthesis collaborator finished audio output.
type SpeechEnded struct{}

func (TranscriptionUpdate) isEvent() {}
func (VadSpeechActive) isEvent()     {}
func (SpeechEnergySilence) isEvent() {}
func (SpeechStarted) isEvent()       {}
func (SpeechEnded) isEvent()         {}

func (TranscriptionUpdate) Type() string { return TypeTranscriptionUpdate }
func (VadSpeechActive) Type() string     { return TypeVadSpeechActive }
func (SpeechEnergySilence) Type() string { return TypeSpeechEnergySilence }
func (SpeechStarted) Type() string       { return TypeSpeechStarted }
func (SpeechEnded) Type() string         { return TypeSpeechEnded }

// Command is one outbound control instruction to a collaborator.
type Command interface {
	isCommand()
	Type() string
}

// ResetRecognition tells the recognizer to discard internal state and start clean.
type ResetRecognition struct{}

// CancelPendingOutput tells the synthesis side to discard in-flight buffers.
type CancelPendingOutput struct{}

// StopSpeaking halts audio output immediately.
type StopSpeaking struct{}

// Speak begins synthesizing and playing the given text.
type Speak struct {
	Text   string `json:"text"`
	TurnID string `json:"turnId,omitempty"`
}

func (ResetRecognition) isCommand()    {}
func (CancelPendingOutput) isCommand() {}
func (StopSpeaking) isCommand()        {}
func (Speak) isCommand()               {}

func (ResetRecognition) Type() string    { return TypeResetRecognition }
func (CancelPendingOutput) Type() string { return TypeCancelPendingOutput }
func (StopSpeaking) Type() string        { return TypeStopSpeaking }
func (Speak) Type() string               { return TypeSpeak }

// Wire type names shared by every transport.
const (
	TypeTranscriptionUpdate = "transcription_update"
	TypeVadSpeechActive     = "vad_speech_active"
	TypeSpeechEnergySilence = "speech_energy_then_silence"
	TypeSpeechStarted       = "speech_started"
	TypeSpeechEnded         = "speech_ended"

	TypeResetRecognition    = "reset_recognition"
	TypeCancelPendingOutput = "cancel_pending_output"
	TypeStopSpeaking        = "stop_speaking"
	TypeSpeak               = "speak"
)
