package formatter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/alexanderramin/muse/internal/domain"
	"github.com/alexanderramin/muse/internal/rules"
	"github.com/alexanderramin/muse/internal/store"
)

const speedGaugeWidth = 12

// FormatMetrics renders a writing metrics snapshot as a compact block.
func FormatMetrics(m domain.WritingMetrics) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s\n", SpeedGauge(m.WordsPerMinute, speedGaugeWidth), TrendArrow(m.WpmTrend))
	fmt.Fprintf(&b, "%s %d words in %.1f min\n",
		Dim("words"), m.TotalWords, m.SessionDurationMinutes)
	fmt.Fprintf(&b, "%s %s (deletion %s)\n",
		Dim("churn"), Ratio(m.DeletionRatio, 0.5), Dim("last 5 min"))
	fmt.Fprintf(&b, "%s %.0fs at %s\n",
		Dim("pause"), m.PauseDurationSeconds, string(m.PauseLocation))
	fmt.Fprintf(&b, "%s %.1f words/sentence, paragraph %d words",
		Dim("prose"), m.AverageSentenceLength, m.CurrentParagraphLength)

	return b.String()
}

// FormatEvents renders stored trigger events as a table, newest first.
func FormatEvents(events []store.EventRecord) string {
	if len(events) == 0 {
		return Dim("No trigger events recorded.")
	}

	headers := []string{"WHEN", "RULE", "MODE", "WPM", "PAUSE", "DELETION"}
	rows := make([][]string, 0, len(events))
	for _, e := range events {
		rows = append(rows, []string{
			e.FiredAt.Local().Format("Jan 02 15:04"),
			Bold(e.RuleName),
			e.WritingMode,
			fmt.Sprintf("%.0f", e.WPM),
			fmt.Sprintf("%.0fs", e.PauseSeconds),
			fmt.Sprintf("%.0f%%", e.DeletionRatio*100),
		})
	}
	return RenderTable(headers, rows)
}

// FormatSummary renders an aggregate session summary.
func FormatSummary(s store.Summary) string {
	var b strings.Builder
	b.WriteString(Header("writing summary"))
	b.WriteString("\n")

	if s.SampleCount == 0 {
		b.WriteString(Dim("No speed samples in this window."))
		return b.String()
	}

	fmt.Fprintf(&b, "%s avg %.0f wpm, peak %.0f wpm (%d samples)\n",
		Dim("speed"), s.AvgWPM, s.PeakWPM, s.SampleCount)
	fmt.Fprintf(&b, "%s %d fired", Dim("triggers"), s.TriggerCount)

	if len(s.ByRule) > 0 {
		names := make([]string, 0, len(s.ByRule))
		for name := range s.ByRule {
			names = append(names, name)
		}
		sort.Strings(names)
		b.WriteString("\n")
		for _, name := range names {
			fmt.Fprintf(&b, "  %s %d× %s\n", Dim("·"), s.ByRule[name], name)
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

// FormatCatalog renders the loaded rule catalog for inspection.
func FormatCatalog(cat rules.Catalog) string {
	var b strings.Builder
	b.WriteString(Header("trigger rules"))
	b.WriteString("\n")

	headers := []string{"RULE", "PRIORITY", "MODES", "KIND", "CONDITIONS"}
	rows := make([][]string, 0, len(cat.Rules))
	for _, r := range cat.Rules {
		modes := "all"
		if len(r.AppliesToModes) > 0 {
			modes = strings.Join(r.AppliesToModes, ",")
		}
		kind := "advisory"
		if r.RequiresConversation {
			kind = "conversation"
		}
		rows = append(rows, []string{
			Bold(r.Name),
			PriorityIndicator(r.Priority),
			modes,
			kind,
			conditionSummary(r.Conditions),
		})
	}
	b.WriteString(RenderTable(headers, rows))

	modeNames := make([]string, 0, len(cat.Modes))
	for _, m := range cat.Modes {
		modeNames = append(modeNames, m.ID)
	}
	fmt.Fprintf(&b, "\n%s %s", Dim("modes"), strings.Join(modeNames, ", "))

	return b.String()
}

func conditionSummary(conds map[domain.MetricKey]string) string {
	keys := make([]string, 0, len(conds))
	for k := range conds {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+conds[domain.MetricKey(k)])
	}
	return strings.Join(parts, " ∧ ")
}
