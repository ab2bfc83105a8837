// Package host adapts an editing surface to the metrics pipeline. The
// file watcher turns successive revisions of a watched document into
// edit deltas with approximate cursor context.
package host

import (
	"strings"
	"time"

	"github.com/alexanderramin/muse/internal/domain"
)

// Edit is one observed content change plus the cursor context the
// metrics engine needs for pause classification.
type Edit struct {
	Delta    domain.EditDelta
	FullText string
	LineText string
	// Offset is the rune offset of the cursor within LineText,
	// approximated as the end of the changed region.
	Offset int
}

// Diff computes the single contiguous change between two revisions by
// trimming the common prefix and suffix. Good enough for keystroke and
// save granularity; a move shows up as one remove-plus-insert.
func Diff(oldText, newText string, at time.Time) domain.EditDelta {
	oldRunes := []rune(oldText)
	newRunes := []rune(newText)

	prefix := 0
	for prefix < len(oldRunes) && prefix < len(newRunes) && oldRunes[prefix] == newRunes[prefix] {
		prefix++
	}
	suffix := 0
	for suffix < len(oldRunes)-prefix && suffix < len(newRunes)-prefix &&
		oldRunes[len(oldRunes)-1-suffix] == newRunes[len(newRunes)-1-suffix] {
		suffix++
	}

	return domain.EditDelta{
		Timestamp: at,
		Removed:   string(oldRunes[prefix : len(oldRunes)-suffix]),
		Inserted:  string(newRunes[prefix : len(newRunes)-suffix]),
	}
}

// NewEdit builds the full edit observation for a revision change,
// placing the cursor at the end of the changed region.
func NewEdit(oldText, newText string, at time.Time) Edit {
	delta := Diff(oldText, newText, at)

	newRunes := []rune(newText)
	prefix := 0
	oldRunes := []rune(oldText)
	for prefix < len(oldRunes) && prefix < len(newRunes) && oldRunes[prefix] == newRunes[prefix] {
		prefix++
	}
	cursor := prefix + len([]rune(delta.Inserted))
	if cursor > len(newRunes) {
		cursor = len(newRunes)
	}

	lineText, offset := lineContext(newText, cursor)
	return Edit{
		Delta:    delta,
		FullText: newText,
		LineText: lineText,
		Offset:   offset,
	}
}

// lineContext returns the line containing the given rune position and
// the cursor's rune offset within it.
func lineContext(text string, pos int) (string, int) {
	runes := []rune(text)
	if pos < 0 {
		pos = 0
	}
	if pos > len(runes) {
		pos = len(runes)
	}
	start := pos
	for start > 0 && runes[start-1] != '\n' {
		start--
	}
	end := pos
	for end < len(runes) && runes[end] != '\n' {
		end++
	}
	line := strings.TrimSuffix(string(runes[start:end]), "\r")
	offset := pos - start
	if offset > len([]rune(line)) {
		offset = len([]rune(line))
	}
	return line, offset
}
