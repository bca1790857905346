package formatter

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/alexanderramin/polylearner/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		PaddingLeft(2).
		PaddingRight(2).
		PaddingTop(1).
		PaddingBottom(1)

	if title != "" {
		titleRendered := StyleHeader.Render(strings.ToUpper(title))
		return boxStyle.Render(titleRendered + "\n\n" + content)
	}
	return boxStyle.Render(content)
}

// FormatHours renders fractional hours as "1h 30m".
func FormatHours(h float64) string {
	min := int(math.Round(h * 60))
	if min <= 0 {
		return "0m"
	}
	hours, rest := min/60, min%60
	switch {
	case hours > 0 && rest > 0:
		return fmt.Sprintf("%dh %dm", hours, rest)
	case hours > 0:
		return fmt.Sprintf("%dh", hours)
	default:
		return fmt.Sprintf("%dm", rest)
	}
}

// PriorityPill colors priorities: 8 and above red, 5 to 7 yellow.
func PriorityPill(p int) string {
	label := fmt.Sprintf("P%d", p)
	switch {
	case p >= 8:
		return StyleRed.Render(label)
	case p >= 5:
		return StyleYellow.Render(label)
	default:
		return StyleDim.Render(label)
	}
}

// SchedulingPill summarizes a task's last calendar run.
func SchedulingPill(cs *domain.CalendarScheduling) string {
	switch {
	case cs == nil:
		return StyleDim.Render("○ Not scheduled")
	case cs.Scheduled:
		return StyleGreen.Render(fmt.Sprintf("● %d event(s)", len(cs.Events)))
	case cs.ErrorCode != "":
		return StyleRed.Render("✖ " + strings.ReplaceAll(cs.ErrorCode, "_", " "))
	default:
		return StyleYellow.Render("○ Unplaced")
	}
}

// TimeRange renders "Mon Jan 6 09:00-11:00" in the block's own zone.
func TimeRange(start, end time.Time) string {
	if start.Year() == end.Year() && start.YearDay() == end.YearDay() {
		return fmt.Sprintf("%s-%s", start.Format("Mon Jan 2 15:04"), end.Format("15:04"))
	}
	return fmt.Sprintf("%s - %s", start.Format("Mon Jan 2 15:04"), end.Format("Mon Jan 2 15:04"))
}

// Truncate shortens s to n visible runes with an ellipsis.
func Truncate(s string, n int) string {
	r := []rune(s)
	if n <= 1 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
