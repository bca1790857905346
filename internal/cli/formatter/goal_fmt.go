package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/polylearner/internal/domain"
)

func FormatWeeklyGoals(goals []domain.WeeklyGoal) string {
	rows := make([][]string, 0, len(goals))
	for _, g := range goals {
		review := Dim("--")
		if g.WeeklyReview != nil {
			review = fmt.Sprintf("focus %d/10", g.WeeklyReview.FocusRate)
		}
		rows = append(rows, []string{
			Dim(strconv.Itoa(g.ID)),
			fmt.Sprintf("W%d", g.WeekNumber),
			Bold(Truncate(g.Goal, 50)),
			strconv.Itoa(len(g.TaskIDs)),
			review,
		})
	}
	return RenderTable([]string{"ID", "WEEK", "GOAL", "TASKS", "REVIEW"}, rows)
}

// FormatGoalValidation renders the SMART checklist and refined versions.
func FormatGoalValidation(og *domain.OnboardingGoal) string {
	v := og.Validation
	var b strings.Builder
	verdict := StyleGreen.Render("✔ SMART")
	if !v.IsValid {
		verdict = StyleYellow.Render("△ Needs work")
	}
	fmt.Fprintf(&b, "%s  %s\n\n", verdict, Dim("("+v.Source+")"))
	check := func(label string, ok bool) {
		mark := StyleGreen.Render("✔")
		if !ok {
			mark = StyleRed.Render("✖")
		}
		fmt.Fprintf(&b, "  %s %s\n", mark, label)
	}
	check("Specific", v.IsSpecific)
	check("Measurable", v.IsMeasurable)
	check("Achievable", v.IsAchievable)
	check("Relevant", v.IsRelevant)
	check("Time-bound", v.IsTimeBound)

	if v.Feedback != "" {
		fmt.Fprintf(&b, "\n%s\n", v.Feedback)
	}
	if len(v.Suggestions) > 0 {
		b.WriteString("\n" + Header("Suggestions") + "\n")
		for _, s := range v.Suggestions {
			fmt.Fprintf(&b, "  • %s\n", s)
		}
	}
	if len(v.RefinedVersions) > 0 {
		b.WriteString("\n" + Header("Refined versions") + "\n")
		for i, r := range v.RefinedVersions {
			fmt.Fprintf(&b, "  %d. %s\n     %s\n", i+1, Bold(r.Goal), Dim(r.Improvement))
		}
	}
	return RenderBox(og.Goal, strings.TrimRight(b.String(), "\n"))
}
