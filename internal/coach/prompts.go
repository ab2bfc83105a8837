package coach

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/muse/internal/domain"
	"github.com/alexanderramin/muse/internal/llm"
)

const (
	// methodologyCharLimit caps methodology text for prompt use; longer
	// text is truncated with a visible marker.
	methodologyCharLimit = 10000
	truncationMarker     = "\n[... methodology truncated ...]"
	// contextWordLimit is how many trailing document words accompany an
	// advisory request.
	contextWordLimit = 500
)

// PromptBuilder assembles backend requests from methodology text, rule
// guidance, metrics, and recent document text.
type PromptBuilder struct {
	methodology string
}

// NewPromptBuilder creates a builder over the given methodology text.
func NewPromptBuilder(methodology string) *PromptBuilder {
	return &PromptBuilder{methodology: methodology}
}

// SetMethodology swaps the methodology text on a config hot-reload.
func (b *PromptBuilder) SetMethodology(text string) {
	b.methodology = text
}

// SystemContext combines methodology, rule guidance, and mode guidance
// into the system prompt of a backend request.
func (b *PromptBuilder) SystemContext(rule *domain.TriggerRule, mode *domain.WritingMode) string {
	var sb strings.Builder
	sb.WriteString("You are a supportive writing coach observing a writer in real time. " +
		"Reply with one short, concrete, encouraging note. Never rewrite the text for them.\n")
	if m := truncateMethodology(b.methodology); m != "" {
		sb.WriteString("\nCoaching methodology:\n")
		sb.WriteString(m)
		sb.WriteString("\n")
	}
	if rule != nil && rule.PromptGuidance != "" {
		sb.WriteString("\nGuidance for this situation:\n")
		sb.WriteString(rule.PromptGuidance)
		sb.WriteString("\n")
	}
	if mode != nil && mode.GuidanceText != "" {
		fmt.Fprintf(&sb, "\nThe writer is working in %q mode: %s\n", mode.ID, mode.GuidanceText)
	}
	return sb.String()
}

// AdvisoryRequest builds the single-shot advisory request for a fired
// trigger: system context plus one user message carrying metrics and
// the last words of the document.
func (b *PromptBuilder) AdvisoryRequest(tr domain.TriggerResult, docText string, mode *domain.WritingMode) llm.ChatRequest {
	return llm.ChatRequest{
		System: b.SystemContext(&tr.Rule, mode),
		Messages: []llm.ChatMessage{
			{Role: "user", Content: observationMessage(tr, docText)},
		},
	}
}

// OpeningRequest builds the first exchange of a conversational session.
func (b *PromptBuilder) OpeningRequest(tr domain.TriggerResult, docText string, mode *domain.WritingMode) llm.ChatRequest {
	req := b.AdvisoryRequest(tr, docText, mode)
	req.System += "\nOpen a brief conversation: end with one gentle question inviting the writer to respond.\n"
	return req
}

// FollowUpRequest builds a conversation continuation from the full turn
// history.
func (b *PromptBuilder) FollowUpRequest(rule *domain.TriggerRule, turns []domain.Turn) llm.ChatRequest {
	messages := make([]llm.ChatMessage, 0, len(turns))
	for _, t := range turns {
		role := "user"
		if t.Role == domain.RoleAssistant {
			role = "assistant"
		}
		messages = append(messages, llm.ChatMessage{Role: role, Content: t.Text})
	}
	return llm.ChatRequest{
		System:   b.SystemContext(rule, nil),
		Messages: messages,
	}
}

func observationMessage(tr domain.TriggerResult, docText string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Observed trigger: %s", tr.Rule.Name)
	if tr.Rule.Description != "" {
		fmt.Fprintf(&sb, " (%s)", tr.Rule.Description)
	}
	sb.WriteString("\n\nCurrent writing metrics:\n")
	sb.WriteString(metricsSummary(tr.Metrics))
	if recent := LastWords(docText, contextWordLimit); recent != "" {
		sb.WriteString("\nThe writer's most recent text:\n---\n")
		sb.WriteString(recent)
		sb.WriteString("\n---\n")
	}
	return sb.String()
}

func metricsSummary(m domain.WritingMetrics) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "- speed: %.1f words/minute (%s)\n", m.WordsPerMinute, m.WpmTrend)
	fmt.Fprintf(&sb, "- total words: %d, session: %.1f minutes\n", m.TotalWords, m.SessionDurationMinutes)
	fmt.Fprintf(&sb, "- pause: %.0f seconds at %s\n", m.PauseDurationSeconds, m.PauseLocation)
	fmt.Fprintf(&sb, "- lexical ratios: adjectives %.2f, verbs %.2f, abstract nouns %.2f\n",
		m.AdjectiveRatio, m.VerbRatio, m.AbstractNounRatio)
	fmt.Fprintf(&sb, "- avg sentence length: %.1f words, deletion ratio: %.2f\n",
		m.AverageSentenceLength, m.DeletionRatio)
	return sb.String()
}

// LastWords returns the trailing n whitespace-delimited words of text.
func LastWords(text string, n int) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	if len(fields) > n {
		fields = fields[len(fields)-n:]
	}
	return strings.Join(fields, " ")
}

func truncateMethodology(text string) string {
	runes := []rune(text)
	if len(runes) <= methodologyCharLimit {
		return text
	}
	return string(runes[:methodologyCharLimit]) + truncationMarker
}
