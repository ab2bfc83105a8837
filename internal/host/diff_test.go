package host

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDiff(t *testing.T) {
	at := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		name     string
		oldText  string
		newText  string
		inserted string
		removed  string
	}{
		{"append", "hello", "hello world", " world", ""},
		{"prepend", "world", "hello world", "hello ", ""},
		{"delete tail", "hello world", "hello", "", " world"},
		{"replace middle", "the red fox", "the quick fox", "quick", "red"},
		{"no change", "same", "same", "", ""},
		{"from empty", "", "first words", "first words", ""},
		{"to empty", "gone", "", "", "gone"},
		{"multibyte", "春眠", "春眠不覚暁", "不覚暁", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			delta := Diff(tt.oldText, tt.newText, at)
			assert.Equal(t, tt.inserted, delta.Inserted)
			assert.Equal(t, tt.removed, delta.Removed)
			assert.Equal(t, at, delta.Timestamp)
		})
	}
}

func TestNewEdit_CursorContext(t *testing.T) {
	at := time.Now()

	edit := NewEdit("first line\nsecond", "first line\nsecond line", at)
	assert.Equal(t, " line", edit.Delta.Inserted)
	assert.Equal(t, "second line", edit.LineText)
	assert.Equal(t, 11, edit.Offset, "cursor at end of changed region")

	edit = NewEdit("", "a", at)
	assert.Equal(t, "a", edit.LineText)
	assert.Equal(t, 1, edit.Offset)

	// Deletion: cursor sits where the removed text was. The common
	// prefix absorbs the leading "t" of "tail", so the removed run is
	// "his t".
	edit = NewEdit("keep this tail", "keep tail", at)
	assert.Equal(t, "his t", edit.Delta.Removed)
	assert.Equal(t, "keep tail", edit.LineText)
	assert.Equal(t, 6, edit.Offset)
}
