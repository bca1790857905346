package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/polylearner/internal/domain"
	"github.com/alexanderramin/polylearner/internal/intelligence"
	"github.com/alexanderramin/polylearner/internal/scheduler"
	"github.com/alexanderramin/polylearner/internal/service"
)

// FormatBlocks lists blocks under a header per day.
func FormatBlocks(blocks []domain.ScheduledBlock) string {
	if len(blocks) == 0 {
		return Dim("Nothing scheduled.")
	}
	var b strings.Builder
	day := ""
	for _, blk := range blocks {
		if d := blk.Start.Format("Monday, Jan 2"); d != day {
			if day != "" {
				b.WriteString("\n")
			}
			day = d
			b.WriteString(StyleHeader.Render(d) + "\n")
		}
		fmt.Fprintf(&b, "  %s-%s  %-12s %s",
			blk.Start.Format("15:04"), blk.End.Format("15:04"),
			CategoryBadge(blk.Category), Bold(blk.Title))
		if blk.Reason != "" {
			fmt.Fprintf(&b, "  %s", Dim(Truncate(blk.Reason, 50)))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func FormatMetrics(m scheduler.CognitiveMetrics) string {
	return fmt.Sprintf("Cognitive tax %.3f %s  switches %d  avg block %s  fragmentation %.3f",
		m.CognitiveTaxScore, BandIndicator(m.Band), m.ContextSwitches,
		FormatHours(m.AverageBlockDuration), m.FragmentationScore)
}

func FormatRecommendations(recs []intelligence.Recommendation) string {
	if len(recs) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(Header("Recommendations") + "\n")
	for _, r := range recs {
		fmt.Fprintf(&b, "  %s %s\n    %s\n", PriorityPill(r.Priority), Bold(r.Suggestion), Dim(r.Reason))
	}
	return strings.TrimRight(b.String(), "\n")
}

func FormatOptimized(s *service.OptimizedSchedule) string {
	parts := []string{
		Header("Week of " + s.WeekStart.Format("Jan 2, 2006")),
		FormatBlocks(s.Blocks),
		Dim(fmt.Sprintf("%s of work, switch ratio %.3f", FormatHours(s.TotalHours), s.CognitiveTaxScore)),
	}
	if r := FormatRecommendations(s.Recommendations); r != "" {
		parts = append(parts, r)
	}
	return strings.Join(parts, "\n\n")
}

func FormatIntelligent(s *service.IntelligentSchedule) string {
	parts := []string{
		Header("Week of " + s.WeekStart.Format("Jan 2, 2006")),
		FormatBlocks(s.Plan.Blocks),
		FormatMetrics(s.Metrics),
		Dim(fmt.Sprintf("%s scheduled, plan from %s", FormatHours(s.TotalHours), s.Plan.Source)),
	}
	if s.Plan.Notes != "" {
		parts = append(parts, s.Plan.Notes)
	}
	if rep := s.Plan.Report; rep != nil {
		dropped := rep.DroppedRestWindow + rep.DroppedUnknown + rep.DroppedInvalid + rep.DroppedOverlap
		if dropped > 0 || len(rep.Repacked) > 0 {
			parts = append(parts, StyleYellow.Render(fmt.Sprintf(
				"Validator dropped %d block(s) and repacked %d task(s)", dropped, len(rep.Repacked))))
		}
	}
	if len(s.EmbeddingSamples) > 0 {
		parts = append(parts, Dim(fmt.Sprintf("%d embedding sample(s), %d dims from %s",
			len(s.EmbeddingSamples), s.EmbeddingDimension, s.EmbeddingSource)))
	}
	if r := FormatRecommendations(s.Recommendations); r != "" {
		parts = append(parts, r)
	}
	return strings.Join(parts, "\n\n")
}

func FormatComparison(c *service.TaxComparison) string {
	rows := [][]string{
		{"Basic", fmt.Sprintf("%.3f", c.Basic.Metrics.CognitiveTaxScore), BandIndicator(c.Basic.Metrics.Band),
			fmt.Sprint(c.Basic.Metrics.ContextSwitches), fmt.Sprint(c.Basic.Blocks)},
		{"Intelligent", fmt.Sprintf("%.3f", c.Intelligent.Metrics.CognitiveTaxScore), BandIndicator(c.Intelligent.Metrics.Band),
			fmt.Sprint(c.Intelligent.Metrics.ContextSwitches), fmt.Sprint(c.Intelligent.Blocks)},
	}
	improvement := fmt.Sprintf("Improvement %.3f (%.1f%%)", c.Improvement.Absolute, c.Improvement.Percent)
	if c.Improvement.Absolute > 0 {
		improvement = StyleGreen.Render(improvement)
	} else {
		improvement = Dim(improvement)
	}
	return RenderTable([]string{"SCHEDULE", "TAX", "BAND", "SWITCHES", "BLOCKS"}, rows) +
		"\n" + improvement + "\n" + Bold(c.Recommendation)
}

func FormatCommit(r *service.CommitResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %d created, %d failed\n", OutcomePill(r.Outcome), len(r.Created), len(r.Failed))
	for _, ev := range r.Created {
		fmt.Fprintf(&b, "  %s %s  %s\n", StyleGreen.Render("✔"), TimeRange(ev.Start, ev.End), ev.Title)
	}
	for _, f := range r.Failed {
		fmt.Fprintf(&b, "  %s %s  %s %s\n", StyleRed.Render("✖"), f.Start.Format("Mon Jan 2 15:04"), f.Title, Dim(f.Error))
	}
	b.WriteString(FormatMetrics(r.Metrics))
	if r.Message != "" {
		b.WriteString("\n" + StyleYellow.Render(r.Message))
	}
	return b.String()
}
