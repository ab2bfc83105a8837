package formatter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpeedGauge(t *testing.T) {
	full := SpeedGauge(90, 10)
	assert.Contains(t, full, "90 wpm")
	assert.Equal(t, 10, strings.Count(full, filledBlock))
	assert.Zero(t, strings.Count(full, emptyBlock))

	empty := SpeedGauge(0, 10)
	assert.Contains(t, empty, "0 wpm")
	assert.Equal(t, 10, strings.Count(empty, emptyBlock))

	clamped := SpeedGauge(-5, 10)
	assert.Contains(t, clamped, "0 wpm")
}

func TestRenderTable_PadsColumns(t *testing.T) {
	out := RenderTable(
		[]string{"RULE", "WPM"},
		[][]string{{"long_stall", "12"}, {"x", "7"}},
	)
	assert.Contains(t, out, "RULE")
	assert.Contains(t, out, "long_stall")
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 4)
}
