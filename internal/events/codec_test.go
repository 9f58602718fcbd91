package events

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeEventTranscriptionUpdate(t *testing.T) {
	t.Parallel()

	line := []byte(`{"type":"transcription_update","data":{"text":"hello there","isFinal":true,"isSpeaking":false}}`)
	ev, err := DecodeEvent(line)
	require.NoError(t, err)

	update, ok := ev.(TranscriptionUpdate)
	require.True(t, ok)
	require.Equal(t, "hello there", update.Text)
	require.True(t, update.IsFinal)
	require.False(t, update.SystemIsSpeaking)
}

func TestDecodeEventPayloadFreeVariants(t *testing.T) {
	t.Parallel()

	tests := []struct {
		line string
		want Event
	}{
		{line: `{"type":"vad_speech_active"}`, want: VadSpeechActive{}},
		{line: `{"type":"speech_energy_then_silence"}`, want: SpeechEnergySilence{}},
		{line: `{"type":"speech_started"}`, want: SpeechStarted{}},
		{line: `{"type":"speech_ended","data":{}}`, want: SpeechEnded{}},
	}

	for _, tc := range tests {
		ev, err := DecodeEvent([]byte(tc.line))
		require.NoError(t, err)
		require.Equal(t, tc.want, ev)
	}
}

func TestDecodeEventUnknownType(t *testing.T) {
	t.Parallel()

	_, err := DecodeEvent([]byte(`{"type":"start_listening"}`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown event type")
}

func TestDecodeEventMalformedJSON(t *testing.T) {
	t.Parallel()

	_, err := DecodeEvent([]byte(`{"type":`))
	require.Error(t, err)
}

func TestEncodeCommandSpeakCarriesPayload(t *testing.T) {
	t.Parallel()

	line, err := EncodeCommand(Speak{Text: "glad to hear it", TurnID: "turn-7"})
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"speak","data":{"text":"glad to hear it","turnId":"turn-7"}}`, string(line))
}

func TestEncodeCommandPayloadFreeVariants(t *testing.T) {
	t.Parallel()

	tests := []struct {
		cmd  Command
		want string
	}{
		{cmd: ResetRecognition{}, want: `{"type":"reset_recognition"}`},
		{cmd: CancelPendingOutput{}, want: `{"type":"cancel_pending_output"}`},
		{cmd: StopSpeaking{}, want: `{"type":"stop_speaking"}`},
	}

	for _, tc := range tests {
		line, err := EncodeCommand(tc.cmd)
		require.NoError(t, err)
		require.JSONEq(t, tc.want, string(line))
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	t.Parallel()

	line, err := EncodeCommand(Speak{Text: "one moment"})
	require.NoError(t, err)
	require.Contains(t, string(line), `"speak"`)
	require.NotContains(t, string(line), "turnId")
}
