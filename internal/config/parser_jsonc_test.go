package config

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseJSONCAppliesOverrides(t *testing.T) {
	input := `
{
  // endpoint of the speech helper
  "recognizer": {
    "grpc": "127.0.0.1:50052",
  },
  "timing": {
    "respond_delay_ms": 1000,
    "synthesize_delay_ms": 2000,
    "play_delay_ms": 3000,
    "short_words": 4, /* tuned down */
  },
  "echo": {
    "decay_ms": 10000,
  },
  "generation": {
    "timeout_ms": 5000,
  },
}
`

	cfg, _, err := Parse(input, Default())
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:50052", cfg.Recognizer.GRPC)
	require.Equal(t, time.Second, cfg.Timing.RespondDelay)
	require.Equal(t, 2*time.Second, cfg.Timing.SynthesizeDelay)
	require.Equal(t, 3*time.Second, cfg.Timing.PlayDelay)
	require.Equal(t, 4, cfg.Timing.ShortWords)
	require.Equal(t, 10*time.Second, cfg.Echo.Decay)
	require.Equal(t, 5*time.Second, cfg.Generation.Timeout)

	// untouched sections keep defaults
	require.Equal(t, Default().Timing.ConfirmWindow, cfg.Timing.ConfirmWindow)
	require.Equal(t, Default().Echo.ShortChars, cfg.Echo.ShortChars)
}

func TestParseJSONCUnknownFieldFails(t *testing.T) {
	_, _, err := Parse(`{"cascade":{"llm_delay_ms":1200}}`, Default())
	require.Error(t, err)
}

func TestParseJSONCNegativeDurationFails(t *testing.T) {
	_, _, err := Parse(`{"timing":{"debounce_ms":-1}}`, Default())
	require.Error(t, err)
	require.Contains(t, err.Error(), "timing.debounce_ms")
}

func TestNormalizeJSONCRemovesCommentsAndTrailingCommas(t *testing.T) {
	input := `
{
  // line comment
  "items": [
    "one", /* block comment */
    "two",
  ],
  "nested": {
    "enabled": true,
  },
}
`

	normalized, err := normalizeJSONC(input)
	require.NoError(t, err)
	require.NotContains(t, normalized, "//")
	require.NotContains(t, normalized, "/*")
	require.NotContains(t, normalized, ",]")
	require.NotContains(t, normalized, ",}")
}

func TestNormalizeJSONCRetainsCommentLikeTextInsideStrings(t *testing.T) {
	input := `{"value":"contains // and /* comment-like */ text",}`
	normalized, err := normalizeJSONC(input)
	require.NoError(t, err)
	require.Contains(t, normalized, "// and /* comment-like */")
}

func TestNormalizeJSONCUnterminatedBlockCommentFails(t *testing.T) {
	_, err := normalizeJSONC("{ /* unterminated ")
	require.Error(t, err)
	require.Contains(t, err.Error(), "unterminated block comment")
}

func TestEnsureSingleJSONValueRejectsExtraPayload(t *testing.T) {
	decoder := json.NewDecoder(strings.NewReader(`{"one":1}{"two":2}`))
	var payload map[string]any
	require.NoError(t, decoder.Decode(&payload))

	err := ensureSingleJSONValue(decoder)
	require.Error(t, err)
	require.Contains(t, err.Error(), "multiple JSON values")
}

func TestOffsetToLineCol(t *testing.T) {
	content := "line1\nline2\nline3"
	line, col := offsetToLineCol(content, 1)
	require.Equal(t, 1, line)
	require.Equal(t, 1, col)

	line, col = offsetToLineCol(content, 8) // line2, col2
	require.Equal(t, 2, line)
	require.Equal(t, 2, col)

	line, col = offsetToLineCol(content, 999)
	require.Equal(t, 3, line)
	require.Equal(t, 5, col)
}
