package formatter

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/alexanderramin/polylearner/internal/domain"
	"github.com/alexanderramin/polylearner/internal/intelligence"
	"github.com/alexanderramin/polylearner/internal/scheduler"
	"github.com/alexanderramin/polylearner/internal/service"
)

func FormatPatterns(p *intelligence.PatternAnalysis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d task(s), %s total, avg %s at priority %.1f\n\n",
		p.TotalTasks, FormatHours(p.TotalHours), FormatHours(p.AverageTaskDuration), p.AveragePriority)

	cats := make([]domain.Category, 0, len(p.CategoryDistribution))
	for c := range p.CategoryDistribution {
		cats = append(cats, c)
	}
	slices.Sort(cats)
	rows := make([][]string, 0, len(cats))
	for _, c := range cats {
		st := p.CategoryDistribution[c]
		share := 0.0
		if p.TotalHours > 0 {
			share = st.TotalHours / p.TotalHours
		}
		rows = append(rows, []string{CategoryBadge(c), strconv.Itoa(st.Count), FormatHours(st.TotalHours), RenderProgress(share, 10)})
	}
	b.WriteString(RenderTable([]string{"CATEGORY", "TASKS", "TIME", "SHARE"}, rows))
	if p.Analysis != "" {
		b.WriteString("\n" + p.Analysis + "\n")
	}
	if p.AIInsights != "" {
		b.WriteString("\n" + Header("Insights") + "\n" + p.AIInsights + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func FormatLoadRisk(r *scheduler.LoadRiskResult, maxDaily float64) string {
	return strings.Join([]string{
		RiskIndicator(r.Level),
		fmt.Sprintf("%s remaining over %d workday(s)", FormatHours(r.RemainingHours), r.WorkdaysLeft),
		fmt.Sprintf("Needs %s/day of %s  %s", FormatHours(r.RequiredDailyHours), FormatHours(maxDaily), RenderLoad(r.RequiredDailyHours, maxDaily, 12)),
		Dim(fmt.Sprintf("Slack %.2fh per day", r.SlackHoursPerDay)),
	}, "\n")
}

func FormatGroups(res *service.GroupsResult) string {
	if len(res.Groups) == 0 {
		return Dim("No tasks to group.")
	}
	var b strings.Builder
	for _, g := range res.Groups {
		fmt.Fprintf(&b, "%s  %s\n", Bold(g.Name), Dim(fmt.Sprintf("%d task(s), %s", g.TaskCount, FormatHours(g.TotalHours))))
		if g.Description != "" {
			fmt.Fprintf(&b, "  %s\n", Dim(g.Description))
		}
		ids := make([]string, len(g.TaskIDs))
		for i, id := range g.TaskIDs {
			ids[i] = "#" + strconv.Itoa(id)
		}
		fmt.Fprintf(&b, "  %s\n", strings.Join(ids, " "))
	}
	return strings.TrimRight(b.String(), "\n")
}

func FormatEmbeddings(res *service.EmbeddingsResult) string {
	ids := make([]int, 0, len(res.Vectors))
	for id := range res.Vectors {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	rows := make([][]string, 0, len(ids))
	for _, id := range ids {
		v := res.Vectors[id]
		head := make([]string, 0, service.EmbeddingSampleDims)
		for _, x := range v[:min(service.EmbeddingSampleDims, len(v))] {
			head = append(head, fmt.Sprintf("%.3f", x))
		}
		rows = append(rows, []string{Dim(strconv.Itoa(id)), strings.Join(head, " ") + Dim(" …")})
	}
	return RenderTable([]string{"TASK", "VECTOR"}, rows) +
		Dim(fmt.Sprintf("%d task(s), %d dims from %s", res.TotalTasks, res.Dimension, res.Source))
}

func FormatQuery(r *intelligence.QueryResult) string {
	var b strings.Builder
	b.WriteString(Bold(r.Answer) + "\n")
	if r.Explanation != "" {
		b.WriteString(Dim(r.Explanation) + "\n")
	}
	for _, t := range r.Titles {
		fmt.Fprintf(&b, "  • %s\n", t)
	}
	for _, c := range r.Categories {
		fmt.Fprintf(&b, "  %s %d task(s), %s\n", CategoryBadge(c.Category), c.Count, FormatHours(c.TotalHours))
	}
	if r.Error != "" {
		b.WriteString(StyleYellow.Render(r.Error) + "\n")
	}
	b.WriteString(Dim(fmt.Sprintf("%d result(s) via %s", r.Count, r.Source)))
	return b.String()
}

// FormatSuggestions numbers suggestions so they can be picked by index.
func FormatSuggestions(res intelligence.SuggestionResult) string {
	if res.Error != "" && len(res.Tasks) == 0 {
		return StyleYellow.Render(res.Error)
	}
	rows := make([][]string, 0, len(res.Tasks))
	for i, t := range res.Tasks {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			Bold(Truncate(t.Title, 40)),
			CategoryBadge(t.Category),
			FormatHours(t.TimeHours),
			PriorityPill(t.Priority),
			t.EnergyLevel,
		})
	}
	out := RenderTable([]string{"#", "TITLE", "CATEGORY", "TIME", "PRI", "ENERGY"}, rows)
	out += Dim(fmt.Sprintf("%s estimated", FormatHours(res.EstimatedTotalHours)))
	if res.Recovered {
		out += "\n" + StyleYellow.Render("Recovered from a truncated model answer; review before creating.")
	}
	if res.SchedulingStrategy != "" {
		out += "\n\n" + res.SchedulingStrategy
	}
	return out
}
