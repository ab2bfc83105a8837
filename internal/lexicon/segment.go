package lexicon

import (
	"strings"
	"unicode"
)

// Segmenter splits a run of logographic text into words. Implementations
// may wrap an external segmentation capability; errors trigger the
// whitespace fallback and are never surfaced to the user.
type Segmenter interface {
	Segment(run string) ([]string, error)
}

// IsLogographic reports whether the rune belongs to a script with no
// whitespace-delimited words.
func IsLogographic(r rune) bool {
	return unicode.Is(unicode.Han, r) ||
		unicode.Is(unicode.Hiragana, r) ||
		unicode.Is(unicode.Katakana, r)
}

// Tokenize splits text into word tokens, script-aware. Whitespace-
// delimited fields are tokens as-is; fields containing logographic runs
// are handed to the segmenter when one is present. Any segmentation
// failure falls back to the raw whitespace token.
func Tokenize(text string, seg Segmenter) []string {
	fields := strings.Fields(text)
	if seg == nil {
		return fields
	}
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if !containsLogographic(f) {
			out = append(out, f)
			continue
		}
		words, err := seg.Segment(f)
		if err != nil || len(words) == 0 {
			out = append(out, f)
			continue
		}
		out = append(out, words...)
	}
	return out
}

func containsLogographic(s string) bool {
	for _, r := range s {
		if IsLogographic(r) {
			return true
		}
	}
	return false
}
