// Package transcript merges volatile and final recognition fragments into one
// running utterance and normalizes text for comparison.
package transcript

import "strings"

// Utterance accumulates recognition fragments for the current user turn.
// Final fragments are committed segments; the volatile tail is a progressive
// re-guess of the still-open segment and never survives past a final boundary.
type Utterance struct {
	finalized string
	volatile  string
}

// Merge folds one fragment into the utterance and returns the merged text.
// Empty fragments are ignored and return the unchanged utterance.
func (u *Utterance) Merge(fragment string, isFinal bool) string {
	fragment = cleanFragment(fragment)
	if fragment == "" {
		return u.Text()
	}

	if isFinal {
		if u.finalized == "" {
			u.finalized = fragment
		} else {
			u.finalized = u.finalized + " " + fragment
		}
		u.volatile = ""
		return u.Text()
	}

	u.volatile = fragment
	return u.Text()
}

// Text returns the displayed utterance: committed segments plus volatile tail.
func (u Utterance) Text() string {
	return strings.TrimSpace(strings.TrimSpace(u.finalized) + " " + u.volatile)
}

// Reset discards all accumulated text for a clean next turn.
func (u *Utterance) Reset() {
	u.finalized = ""
	u.volatile = ""
}

// Empty reports whether no usable text has accumulated.
func (u Utterance) Empty() bool {
	return u.Text() == ""
}

// cleanFragment normalizes fragment whitespace.
func cleanFragment(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	return strings.Join(strings.Fields(raw), " ")
}

// WordCount counts whitespace-delimited words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}
