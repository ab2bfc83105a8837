package metrics

import (
	"strings"

	"github.com/alexanderramin/muse/internal/domain"
	"github.com/alexanderramin/muse/internal/lexicon"
)

// CountWords measures text in words, script-aware: whitespace-delimited
// tokens count 1 each, logographic characters count 0.5 each, combined
// additively. This yields a defensible unit even in mixed-script text.
func CountWords(text string) float64 {
	var logographic int
	var rest strings.Builder
	for _, r := range text {
		if lexicon.IsLogographic(r) {
			logographic++
			rest.WriteByte(' ')
			continue
		}
		rest.WriteRune(r)
	}
	words := float64(len(strings.Fields(rest.String())))
	return words + 0.5*float64(logographic)
}

var sentenceTerminators = map[rune]bool{
	'.': true, '!': true, '?': true, '…': true,
	'。': true, '！': true, '？': true,
}

func endsSentence(s string) bool {
	trimmed := strings.TrimRight(s, " \t\"')]}»")
	runes := []rune(trimmed)
	if len(runes) == 0 {
		return false
	}
	return sentenceTerminators[runes[len(runes)-1]]
}

// splitSentences breaks text into sentence fragments at terminator runes.
func splitSentences(text string) []string {
	var out []string
	var cur strings.Builder
	for _, r := range text {
		cur.WriteRune(r)
		if sentenceTerminators[r] {
			out = append(out, cur.String())
			cur.Reset()
		}
	}
	if strings.TrimSpace(cur.String()) != "" {
		out = append(out, cur.String())
	}
	return out
}

// averageSentenceLength is the mean word count across non-empty
// sentences, 0 for empty text.
func averageSentenceLength(text string) float64 {
	var total float64
	var count int
	for _, s := range splitSentences(text) {
		if strings.TrimSpace(s) == "" {
			continue
		}
		total += CountWords(s)
		count++
	}
	if count == 0 {
		return 0
	}
	return total / float64(count)
}

// paragraphs splits text on blank lines, dropping empty segments.
func paragraphs(text string) []string {
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	parts := strings.Split(normalized, "\n\n")
	out := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}

// ClassifyPause derives the pause location from cursor context: the
// full document text, the text of the cursor's line, and the rune
// offset of the cursor within that line.
func ClassifyPause(fullText, lineText string, offset int) domain.PauseLocation {
	line := []rune(lineText)
	if offset < 0 {
		offset = 0
	}
	if offset > len(line) {
		offset = len(line)
	}
	lineSoFar := string(line[:offset])

	if strings.TrimSpace(lineSoFar) == "" {
		return domain.PauseStart
	}
	if endsSentence(lineSoFar) {
		return domain.PauseEndSentence
	}
	if offset == len(line) {
		if followedByBlankLine(fullText, lineText) {
			return domain.PauseEndParagraph
		}
		return domain.PauseEndSentence
	}
	return domain.PauseMidSentence
}

// followedByBlankLine reports whether the first occurrence of line in
// text is immediately followed by an empty line.
func followedByBlankLine(text, line string) bool {
	if line == "" {
		return false
	}
	idx := strings.Index(text, line)
	if idx < 0 {
		return false
	}
	rest := text[idx+len(line):]
	rest = strings.TrimPrefix(rest, "\r")
	if !strings.HasPrefix(rest, "\n") {
		return false
	}
	rest = rest[1:]
	nl := strings.IndexByte(rest, '\n')
	if nl < 0 {
		nl = len(rest)
	}
	return strings.TrimSpace(rest[:nl]) == ""
}
