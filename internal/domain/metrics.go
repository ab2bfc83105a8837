package domain

import (
	"fmt"
	"strings"
	"time"
)

// EditDelta is one raw change reported by the host editing surface.
// Ephemeral: the metrics engine retains deltas only inside a bounded
// recent-history window.
type EditDelta struct {
	Timestamp time.Time
	Inserted  string
	Removed   string
}

// Empty reports whether the delta carries no content change.
func (d EditDelta) Empty() bool {
	return d.Inserted == "" && d.Removed == ""
}

// Trivial reports whether the delta is whitespace-only insertion noise.
// Non-trivial deltas count as resumed writing for session auto-close.
func (d EditDelta) Trivial() bool {
	return strings.TrimSpace(d.Inserted) == "" && d.Removed == ""
}

// WritingMetrics is a derived, immutable snapshot of writing behavior.
// Snapshots are recomputed wholesale; callers never see a partially
// updated value.
type WritingMetrics struct {
	WordsPerMinute              float64
	TotalWords                  int
	SessionDurationMinutes      float64
	AdjectiveRatio              float64
	VerbRatio                   float64
	AbstractNounRatio           float64
	AverageSentenceLength       float64
	PauseDurationSeconds        float64
	PauseLocation               PauseLocation
	DeletionRatio               float64
	WpmTrend                    WpmTrend
	RecentWpmReadings           []float64 // last 10, oldest first
	CurrentParagraphLength      int
	ParagraphsSinceLastAdvisory int
	ComputedAt                  time.Time
}

// MetricKey identifies one field of WritingMetrics for rule conditions.
// The set is closed: an unknown key is a configuration defect, never a
// silent zero.
type MetricKey string

const (
	KeyWordsPerMinute              MetricKey = "wordsPerMinute"
	KeyTotalWords                  MetricKey = "totalWords"
	KeySessionDurationMinutes      MetricKey = "sessionDurationMinutes"
	KeyAdjectiveRatio              MetricKey = "adjectiveRatio"
	KeyVerbRatio                   MetricKey = "verbRatio"
	KeyAbstractNounRatio           MetricKey = "abstractNounRatio"
	KeyAverageSentenceLength       MetricKey = "averageSentenceLength"
	KeyPauseDurationSeconds        MetricKey = "pauseDurationSeconds"
	KeyPauseLocation               MetricKey = "pauseLocation"
	KeyDeletionRatio               MetricKey = "deletionRatio"
	KeyWpmTrend                    MetricKey = "wpmTrend"
	KeyCurrentParagraphLength      MetricKey = "currentParagraphLength"
	KeyParagraphsSinceLastAdvisory MetricKey = "paragraphsSinceLastAdvisory"
)

// ValidMetricKeys is the canonical set of accepted condition keys.
var ValidMetricKeys = map[MetricKey]bool{
	KeyWordsPerMinute:              true,
	KeyTotalWords:                  true,
	KeySessionDurationMinutes:      true,
	KeyAdjectiveRatio:              true,
	KeyVerbRatio:                   true,
	KeyAbstractNounRatio:           true,
	KeyAverageSentenceLength:       true,
	KeyPauseDurationSeconds:        true,
	KeyPauseLocation:               true,
	KeyDeletionRatio:               true,
	KeyWpmTrend:                    true,
	KeyCurrentParagraphLength:      true,
	KeyParagraphsSinceLastAdvisory: true,
}

// MetricValue is the typed value of one metric field: either a number
// or a keyword (trend / pause-location name).
type MetricValue struct {
	Number  float64
	Keyword string
	IsWord  bool
}

func numberValue(f float64) MetricValue { return MetricValue{Number: f} }

func keywordValue(s string) MetricValue { return MetricValue{Keyword: s, IsWord: true} }

// Value resolves one metric key against the snapshot. Unknown keys fail
// loudly so malformed rules surface as configuration defects instead of
// silently matching zero.
func (m WritingMetrics) Value(key MetricKey) (MetricValue, error) {
	switch key {
	case KeyWordsPerMinute:
		return numberValue(m.WordsPerMinute), nil
	case KeyTotalWords:
		return numberValue(float64(m.TotalWords)), nil
	case KeySessionDurationMinutes:
		return numberValue(m.SessionDurationMinutes), nil
	case KeyAdjectiveRatio:
		return numberValue(m.AdjectiveRatio), nil
	case KeyVerbRatio:
		return numberValue(m.VerbRatio), nil
	case KeyAbstractNounRatio:
		return numberValue(m.AbstractNounRatio), nil
	case KeyAverageSentenceLength:
		return numberValue(m.AverageSentenceLength), nil
	case KeyPauseDurationSeconds:
		return numberValue(m.PauseDurationSeconds), nil
	case KeyPauseLocation:
		return keywordValue(string(m.PauseLocation)), nil
	case KeyDeletionRatio:
		return numberValue(m.DeletionRatio), nil
	case KeyWpmTrend:
		return keywordValue(string(m.WpmTrend)), nil
	case KeyCurrentParagraphLength:
		return numberValue(float64(m.CurrentParagraphLength)), nil
	case KeyParagraphsSinceLastAdvisory:
		return numberValue(float64(m.ParagraphsSinceLastAdvisory)), nil
	default:
		return MetricValue{}, fmt.Errorf("unknown metric key %q", key)
	}
}
