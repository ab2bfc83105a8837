package formatter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/alexanderramin/muse/internal/domain"
	"github.com/alexanderramin/muse/internal/rules"
	"github.com/alexanderramin/muse/internal/store"
)

func TestFormatMetrics_IncludesCoreReadings(t *testing.T) {
	m := domain.WritingMetrics{
		WordsPerMinute:         28,
		TotalWords:             412,
		SessionDurationMinutes: 14.7,
		DeletionRatio:          0.62,
		PauseDurationSeconds:   95,
		PauseLocation:          domain.PauseMidSentence,
		AverageSentenceLength:  17.3,
		CurrentParagraphLength: 88,
		WpmTrend:               domain.TrendDecreasing,
	}

	out := FormatMetrics(m)
	assert.Contains(t, out, "28 wpm")
	assert.Contains(t, out, "412 words")
	assert.Contains(t, out, "62%")
	assert.Contains(t, out, "mid_sentence")
	assert.Contains(t, out, "17.3 words/sentence")
}

func TestFormatEvents(t *testing.T) {
	assert.Contains(t, FormatEvents(nil), "No trigger events")

	events := []store.EventRecord{
		{
			RuleName:      "heavy_deletion",
			WritingMode:   "scene",
			FiredAt:       time.Date(2026, 3, 9, 21, 15, 0, 0, time.UTC),
			WPM:           12,
			PauseSeconds:  40,
			DeletionRatio: 0.7,
		},
	}
	out := FormatEvents(events)
	assert.Contains(t, out, "heavy_deletion")
	assert.Contains(t, out, "scene")
	assert.Contains(t, out, "70%")
}

func TestFormatSummary(t *testing.T) {
	assert.Contains(t, FormatSummary(store.Summary{}), "No speed samples")

	out := FormatSummary(store.Summary{
		SampleCount:  40,
		AvgWPM:       23.4,
		PeakWPM:      41.9,
		TriggerCount: 3,
		ByRule:       map[string]int{"long_stall": 2, "fast_flat_prose": 1},
	})
	assert.Contains(t, out, "avg 23 wpm")
	assert.Contains(t, out, "peak 42 wpm")
	assert.Contains(t, out, "3 fired")
	assert.Contains(t, out, "2× long_stall")
}

func TestFormatCatalog(t *testing.T) {
	out := FormatCatalog(rules.DefaultCatalog())
	assert.Contains(t, out, "fast_flat_prose")
	assert.Contains(t, out, "conversation")
	assert.Contains(t, out, "scene")
	assert.Contains(t, out, "wordsPerMinute")
}
