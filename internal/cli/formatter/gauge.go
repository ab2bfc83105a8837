package formatter

import (
	"fmt"
	"strings"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"

	// gaugeCeilingWpm is the speed at which the gauge reads full.
	gaugeCeilingWpm = 60.0
)

// SpeedGauge renders a words-per-minute gauge like [████░░░░] 32 wpm.
// Color follows the reading: green above two thirds of the ceiling,
// yellow in the middle band, red below one third.
func SpeedGauge(wpm float64, width int) string {
	if wpm < 0 {
		wpm = 0
	}
	if width < 2 {
		width = 2
	}

	frac := wpm / gaugeCeilingWpm
	if frac > 1 {
		frac = 1
	}

	filled := int(frac * float64(width))
	if filled > width {
		filled = width
	}
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, width-filled)

	style := StyleGreen
	if frac < 0.33 {
		style = StyleRed
	} else if frac < 0.66 {
		style = StyleYellow
	}

	return fmt.Sprintf("[%s] %.0f wpm", style.Render(bar), wpm)
}

// Ratio renders a 0..1 ratio as a percentage with a warning color above
// the given threshold.
func Ratio(value, warnAbove float64) string {
	text := fmt.Sprintf("%.0f%%", value*100)
	if value > warnAbove {
		return StyleRed.Render(text)
	}
	return StyleFg.Render(text)
}
