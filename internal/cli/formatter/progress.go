package formatter

import (
	"fmt"
	"strings"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

func clampBar(pct float64, width int) (float64, int) {
	pct = min(max(pct, 0), 1)
	return pct, max(width, 2)
}

// RenderProgress renders a bar like [████░░░░] 45%. Fuller bars are
// greener; use RenderLoad when fuller means worse.
func RenderProgress(pct float64, width int) string {
	pct, width = clampBar(pct, width)
	style := StyleGreen
	if pct < 0.33 {
		style = StyleRed
	} else if pct < 0.66 {
		style = StyleYellow
	}
	return renderBar(pct, width, style.Render)
}

// RenderLoad renders used against capacity; near or over capacity is red.
func RenderLoad(used, capacity float64, width int) string {
	pct := 0.0
	if capacity > 0 {
		pct = used / capacity
	}
	style := StyleGreen
	if pct >= 1 {
		style = StyleRed
	} else if pct >= 0.8 {
		style = StyleYellow
	}
	pct, width = clampBar(pct, width)
	return renderBar(pct, width, style.Render)
}

func renderBar(pct float64, width int, paint func(...string) string) string {
	filled := min(int(pct*float64(width)), width)
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, width-filled)
	return fmt.Sprintf("[%s] %3.0f%%", paint(bar), pct*100)
}
