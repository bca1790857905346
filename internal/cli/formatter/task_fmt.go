package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/polylearner/internal/domain"
)

func FormatTaskList(tasks []domain.Task) string {
	rows := make([][]string, 0, len(tasks))
	var total float64
	for _, t := range tasks {
		total += t.TimeHours
		rows = append(rows, []string{
			Dim(strconv.Itoa(t.ID)),
			Bold(Truncate(t.Title, 40)),
			CategoryBadge(t.Category),
			FormatHours(t.TimeHours),
			PriorityPill(t.Priority),
			SchedulingPill(t.CalendarScheduling),
		})
	}
	table := RenderTable([]string{"ID", "TITLE", "CATEGORY", "TIME", "PRI", "CALENDAR"}, rows)
	return table + Dim(fmt.Sprintf("%d task(s), %s total", len(tasks), FormatHours(total)))
}

func FormatTask(t *domain.Task) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n\n", Bold(t.Title), Dim(fmt.Sprintf("#%d", t.ID)))
	fmt.Fprintf(&b, "Category   %s\n", CategoryBadge(t.Category))
	fmt.Fprintf(&b, "Goal       %s\n", t.Goal)
	fmt.Fprintf(&b, "Artifact   %s\n", t.Artifact)
	fmt.Fprintf(&b, "Time       %s\n", FormatHours(t.TimeHours))
	fmt.Fprintf(&b, "Priority   %s\n", PriorityPill(t.Priority))
	if t.WeeklyGoalID != nil {
		fmt.Fprintf(&b, "Week goal  #%d\n", *t.WeeklyGoalID)
	}
	fmt.Fprintf(&b, "Calendar   %s\n", SchedulingPill(t.CalendarScheduling))
	if cs := t.CalendarScheduling; cs != nil {
		for _, ev := range cs.Events {
			fmt.Fprintf(&b, "           %s\n", TimeRange(ev.Start, ev.End))
		}
		if cs.Reason != "" {
			fmt.Fprintf(&b, "           %s\n", Dim(cs.Reason))
		}
	}
	if r := t.Review; r != nil {
		b.WriteString("\n" + FormatReview(*r))
	}
	return RenderBox("Task", strings.TrimRight(b.String(), "\n"))
}

func FormatReview(r domain.Review) string {
	onTime := StyleGreen.Render("yes")
	if r.DoneOnTime == domain.DoneOnTimeNo {
		onTime = StyleRed.Render("no")
	}
	s := fmt.Sprintf("Focus %s  On time %s", RenderProgress(float64(r.FocusRate)/10, 10), onTime)
	if r.Notes != "" {
		s += "\n" + Dim(r.Notes)
	}
	return s
}
