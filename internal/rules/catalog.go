// Package rules loads the trigger-rule catalog, writing-mode catalog,
// and methodology text, validates them, and hot-reloads on change. The
// core consumes only the validated, immutable Catalog values produced
// here.
package rules

import "github.com/alexanderramin/muse/internal/domain"

// Catalog is one immutable configuration snapshot. Reloads swap the
// whole value; readers never observe a half-updated rule set.
type Catalog struct {
	Methodology string
	Modes       []domain.WritingMode
	Rules       []domain.TriggerRule
}

// Mode looks up a writing mode by ID, nil if absent.
func (c Catalog) Mode(id string) *domain.WritingMode {
	for i := range c.Modes {
		if c.Modes[i].ID == id {
			return &c.Modes[i]
		}
	}
	return nil
}

// DefaultCatalog is the built-in fallback used when no configuration
// exists or loading fails.
func DefaultCatalog() Catalog {
	return Catalog{
		Methodology: "Coach with curiosity, not criticism. Celebrate momentum, " +
			"name one concrete observation at a time, and trust the writer to " +
			"make their own choices.",
		Modes: []domain.WritingMode{
			{
				ID:    "scene",
				Label: "Scene drafting",
				GuidanceText: "The writer is drafting narrative scenes. Favor notes " +
					"about pacing, concreteness, and sensory grounding.",
			},
			{
				ID:    "reflection",
				Label: "Reflective writing",
				GuidanceText: "The writer is journaling or reflecting. Favor gentle, " +
					"open-ended observations over craft advice.",
			},
			{
				ID:    "freewrite",
				Label: "Freewriting",
				GuidanceText: "The writer wants uninterrupted flow. Only the most " +
					"valuable interventions are welcome.",
			},
		},
		Rules: []domain.TriggerRule{
			{
				Name:        "fast_flat_prose",
				Description: "High speed with very few adjectives suggests bare prose",
				Conditions: map[domain.MetricKey]string{
					domain.KeyWordsPerMinute: "> 40",
					domain.KeyAdjectiveRatio: "< 0.05",
				},
				AppliesToModes: []string{"scene"},
				Priority:       domain.PriorityMedium,
				DelaySeconds:   30,
				PromptGuidance: "The writer is moving fast but the prose is bare. " +
					"Suggest one way to ground the current moment in sensory detail.",
			},
			{
				Name:        "long_stall",
				Description: "A long pause mid-draft often means the writer is stuck",
				Conditions: map[domain.MetricKey]string{
					domain.KeyPauseDurationSeconds: "> 180",
				},
				Priority:             domain.PriorityHigh,
				RequiresConversation: true,
				PromptGuidance: "The writer has been silent for a while. Ask one " +
					"gentle question about what is blocking them.",
				OpeningMessage: "You've been quiet for a few minutes. Want to talk " +
					"through what's in the way?",
			},
			{
				Name:        "heavy_deletion",
				Description: "Deleting more than writing signals second-guessing",
				Conditions: map[domain.MetricKey]string{
					domain.KeyDeletionRatio:          "> 1.5",
					domain.KeySessionDurationMinutes: "> 5",
				},
				Priority: domain.PriorityMedium,
				PromptGuidance: "The writer is deleting more than they keep. " +
					"Encourage them to draft forward and revise later.",
			},
			{
				Name:        "flagging_momentum",
				Description: "A falling speed trend late in a session",
				Conditions: map[domain.MetricKey]string{
					domain.KeyWpmTrend:               "decreasing",
					domain.KeySessionDurationMinutes: "> 20",
				},
				Priority: domain.PriorityLow,
				PromptGuidance: "Energy seems to be fading. Offer one small, " +
					"finishable next step.",
			},
		},
	}
}
