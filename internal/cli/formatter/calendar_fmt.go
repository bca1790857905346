package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/polylearner/internal/domain"
	"github.com/alexanderramin/polylearner/internal/service"
)

// OutcomePill colors a scheduling run outcome.
func OutcomePill(outcome string) string {
	switch outcome {
	case domain.RunOutcomeOK:
		return StyleGreen.Render("● ok")
	case domain.RunOutcomePartial:
		return StyleYellow.Render("◐ partial")
	case domain.RunOutcomePermissionDenied:
		return StyleRed.Render("✖ permission denied")
	case domain.RunOutcomeNoAccess:
		return StyleRed.Render("✖ no calendar access")
	default:
		return StyleDim.Render(outcome)
	}
}

func FormatAutoSchedule(r *service.AutoScheduleResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %d placed, %d unplaced", OutcomePill(r.Outcome), len(r.Placed), len(r.Unplaced))
	if r.RunID != "" {
		fmt.Fprintf(&b, "  %s", Dim("run "+r.RunID[:min(8, len(r.RunID))]))
	}
	b.WriteString("\n")
	for _, ev := range r.Placed {
		fmt.Fprintf(&b, "  %s #%d %s  %s\n", StyleGreen.Render("✔"), ev.TaskID, TimeRange(ev.Start, ev.End), ev.Title)
	}
	for _, u := range r.Unplaced {
		fmt.Fprintf(&b, "  %s #%d %s\n", StyleYellow.Render("○"), u.TaskID, Dim(string(u.Reason)))
	}
	if r.Message != "" {
		b.WriteString(StyleYellow.Render(r.Message) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func FormatRuns(runs []domain.SchedulingRun) string {
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			r.StartedAt.Local().Format("Jan 2 15:04"),
			r.Trigger,
			OutcomePill(r.Outcome),
			strconv.Itoa(r.Placed),
			strconv.Itoa(r.Unplaced),
			Dim(r.RunID[:min(8, len(r.RunID))]),
		})
	}
	return RenderTable([]string{"STARTED", "TRIGGER", "OUTCOME", "PLACED", "UNPLACED", "RUN"}, rows)
}
