package transcript

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMergeVolatileReplacesWholesale(t *testing.T) {
	t.Parallel()

	var u Utterance
	require.Equal(t, "First", u.Merge("First", false))
	require.Equal(t, "First I woke", u.Merge("First I woke", false))
	require.Equal(t, "First I woke up early.", u.Merge("First I woke up early.", false))
}

func TestMergeFinalCommitsAndClearsVolatile(t *testing.T) {
	t.Parallel()

	var u Utterance
	u.Merge("First", false)
	u.Merge("First I woke", false)
	got := u.Merge("First I woke up early.", true)
	require.Equal(t, "First I woke up early.", got)
	require.Equal(t, "First I woke up early.", u.Text())
}

func TestMergeFinalThenVolatileAppends(t *testing.T) {
	t.Parallel()

	var u Utterance
	u.Merge("I woke up early.", true)
	got := u.Merge("Then I", false)
	require.Equal(t, "I woke up early. Then I", got)

	got = u.Merge("Then I had coffee.", true)
	require.Equal(t, "I woke up early. Then I had coffee.", got)
}

func TestMergeEmptyFragmentIsIgnored(t *testing.T) {
	t.Parallel()

	var u Utterance
	u.Merge("hello", false)
	require.Equal(t, "hello", u.Merge("", false))
	require.Equal(t, "hello", u.Merge("   ", true))
}

func TestMergeNormalizesFragmentWhitespace(t *testing.T) {
	t.Parallel()

	var u Utterance
	require.Equal(t, "hello there", u.Merge("  hello\t there \n", false))
}

func TestResetClearsEverything(t *testing.T) {
	t.Parallel()

	var u Utterance
	u.Merge("committed", true)
	u.Merge("tail", false)
	u.Reset()
	require.True(t, u.Empty())
	require.Equal(t, "", u.Text())
}

func TestWordCount(t *testing.T) {
	t.Parallel()

	require.Equal(t, 0, WordCount(""))
	require.Equal(t, 1, WordCount("yes"))
	require.Equal(t, 5, WordCount("I understand what you mean"))
}

func TestNormalizeStripsCaseAndPunctuation(t *testing.T) {
	t.Parallel()

	require.Equal(t, "how are you feeling today", Normalize("How are you feeling today?"))
	require.Equal(t, "im doing great", Normalize("  I'm   doing GREAT!! "))
	require.Equal(t, "", Normalize("... !!"))
}
