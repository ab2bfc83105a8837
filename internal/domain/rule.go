package domain

import "time"

// TriggerRule is one declarative coaching rule. Rules are immutable once
// loaded; a reload replaces the whole catalog, never patches in place.
type TriggerRule struct {
	Name        string
	Description string

	// Conditions maps metric keys to condition expressions, all of which
	// must hold for the rule to match.
	Conditions map[MetricKey]string

	// AppliesToModes lists writing-mode IDs the rule is scoped to.
	// Empty means the rule applies in every mode.
	AppliesToModes []string

	Priority             Priority
	RequiresConversation bool

	// DelaySeconds is the dwell time: how long the conditions must hold
	// continuously before the rule may fire. Zero fires on first match.
	DelaySeconds int

	// PromptGuidance is injected into the advisory prompt when the rule
	// fires.
	PromptGuidance string

	// OpeningMessage optionally seeds a conversational session in place
	// of a generated first message.
	OpeningMessage string
}

// AppliesTo reports whether the rule is applicable in the given writing
// mode.
func (r TriggerRule) AppliesTo(mode string) bool {
	if len(r.AppliesToModes) == 0 {
		return true
	}
	for _, m := range r.AppliesToModes {
		if m == mode {
			return true
		}
	}
	return false
}

// TriggerEvent is the historical record of one rule firing.
type TriggerEvent struct {
	ID          string
	RuleName    string
	WritingMode string
	Timestamp   time.Time
	Metrics     WritingMetrics
}

// TriggerResult is emitted when the scheduler fires a rule; at most one
// per evaluation tick.
type TriggerResult struct {
	Rule        TriggerRule
	Metrics     WritingMetrics
	WritingMode string
	FiredAt     time.Time
}

// WritingMode is one entry of the user-selectable mode catalog.
type WritingMode struct {
	ID                     string
	Label                  string
	ApplicableTriggerNames []string
	GuidanceText           string
}

// Turn is a single exchange entry in a coaching conversation.
type Turn struct {
	Role      TurnRole
	Text      string
	Timestamp time.Time
}
