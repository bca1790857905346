package formatter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/alexanderramin/polylearner/internal/domain"
	"github.com/alexanderramin/polylearner/internal/intelligence"
	"github.com/alexanderramin/polylearner/internal/scheduler"
	"github.com/alexanderramin/polylearner/internal/service"
)

var monday9 = time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)

func TestFormatTaskList(t *testing.T) {
	out := FormatTaskList([]domain.Task{
		{ID: 1, Title: "Read paper", Category: domain.CategoryResearch, TimeHours: 1.5, Priority: 8},
		{ID: 2, Title: "Fix parser", Category: domain.CategoryCoding, TimeHours: 2, Priority: 5,
			CalendarScheduling: &domain.CalendarScheduling{Scheduled: true, Events: []domain.CommittedEvent{{}}}},
	})
	assert.Contains(t, out, "Read paper")
	assert.Contains(t, out, "Research")
	assert.Contains(t, out, "1 event(s)")
	assert.Contains(t, out, "2 task(s), 3h 30m total")
}

func TestFormatTask(t *testing.T) {
	goal := 4
	out := FormatTask(&domain.Task{
		ID: 3, Title: "Write notes", Category: domain.CategoryAdmin, Goal: "Summarize",
		Artifact: domain.ArtifactNotes, TimeHours: 1, Priority: 5, WeeklyGoalID: &goal,
		CalendarScheduling: &domain.CalendarScheduling{Reason: "No free slot found within working hours"},
		Review:             &domain.Review{FocusRate: 7, DoneOnTime: domain.DoneOnTimeNo, Notes: "tired"},
	})
	assert.Contains(t, out, "Write notes")
	assert.Contains(t, out, "#4")
	assert.Contains(t, out, "No free slot")
	assert.Contains(t, out, "70%")
	assert.Contains(t, out, "tired")
}

func TestFormatBlocks_GroupsByDay(t *testing.T) {
	out := FormatBlocks([]domain.ScheduledBlock{
		{TaskID: 1, Title: "A", Category: domain.CategoryCoding, Start: monday9, End: monday9.Add(time.Hour)},
		{TaskID: 2, Title: "B", Category: domain.CategoryCoding, Start: monday9.AddDate(0, 0, 1), End: monday9.AddDate(0, 0, 1).Add(time.Hour)},
	})
	assert.Contains(t, out, "Monday, Jan 6")
	assert.Contains(t, out, "Tuesday, Jan 7")
	assert.Contains(t, out, "09:00-10:00")
	assert.Equal(t, "Nothing scheduled.", stripped(FormatBlocks(nil)))
}

func TestFormatComparison(t *testing.T) {
	out := FormatComparison(&service.TaxComparison{
		Basic:          service.ScheduleSummary{Metrics: scheduler.CognitiveMetrics{CognitiveTaxScore: 0.5, Band: scheduler.BandFair}, Blocks: 4},
		Intelligent:    service.ScheduleSummary{Metrics: scheduler.CognitiveMetrics{CognitiveTaxScore: 0.2, Band: scheduler.BandGood}, Blocks: 3},
		Improvement:    scheduler.Improvement{Absolute: 0.3, Percent: 60},
		Recommendation: "Use intelligent scheduling",
	})
	assert.Contains(t, out, "0.500")
	assert.Contains(t, out, "Good")
	assert.Contains(t, out, "60.0%")
	assert.Contains(t, out, "Use intelligent scheduling")
}

func TestFormatAutoSchedule(t *testing.T) {
	out := FormatAutoSchedule(&service.AutoScheduleResult{
		RunID:    "0123456789abcdef",
		Outcome:  domain.RunOutcomePartial,
		Placed:   []domain.CommittedEvent{{TaskID: 1, Title: "A", Start: monday9, End: monday9.Add(time.Hour)}},
		Unplaced: []scheduler.UnplacedTask{{TaskID: 2, Reason: scheduler.ReasonNoSlot}},
	})
	assert.Contains(t, out, "partial")
	assert.Contains(t, out, "1 placed, 1 unplaced")
	assert.Contains(t, out, "run 01234567")
	assert.Contains(t, out, "no_slot")
}

func TestFormatGoalValidation(t *testing.T) {
	out := FormatGoalValidation(&domain.OnboardingGoal{
		Goal:       "Learn Go",
		Validation: intelligence.BasicGoalValidation("Learn Go"),
	})
	assert.Contains(t, out, "Needs work")
	assert.Contains(t, out, "Measurable")
	assert.Contains(t, out, "Refined versions")
}

func TestFormatLoadRisk(t *testing.T) {
	out := FormatLoadRisk(&scheduler.LoadRiskResult{
		Level: domain.RiskCritical, WorkdaysLeft: 2, RemainingHours: 14, RequiredDailyHours: 7, SlackHoursPerDay: -1,
	}, 6)
	assert.Contains(t, out, "CRITICAL")
	assert.Contains(t, out, "14h remaining over 2 workday(s)")
	assert.Contains(t, out, "100%")
}

func TestFormatSuggestions(t *testing.T) {
	assert.Contains(t, FormatSuggestions(intelligence.SuggestionResult{Error: "LLM not available"}), "LLM not available")

	out := FormatSuggestions(intelligence.SuggestionResult{
		Tasks:               []intelligence.SuggestedTask{{Title: "Survey papers", Category: domain.CategoryResearch, TimeHours: 2, Priority: 7, EnergyLevel: "high"}},
		EstimatedTotalHours: 2,
		Recovered:           true,
	})
	assert.Contains(t, out, "Survey papers")
	assert.Contains(t, out, "2h estimated")
	assert.Contains(t, out, "truncated")
}

func TestFormatQuery(t *testing.T) {
	v := 3.0
	out := FormatQuery(&intelligence.QueryResult{
		Answer: "3 tasks", Count: 3, Value: &v, Source: "keyword",
		Titles: []string{"A", "B", "C"},
	})
	assert.Contains(t, out, "3 tasks")
	assert.Contains(t, out, "• B")
	assert.Contains(t, out, "via keyword")
}

func TestFormatEmbeddings(t *testing.T) {
	out := FormatEmbeddings(&service.EmbeddingsResult{
		TotalTasks: 1, Dimension: 7, Source: "hash",
		Vectors: map[int][]float64{5: {0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7}},
	})
	assert.Contains(t, out, "0.500")
	assert.NotContains(t, out, "0.600")
	assert.Contains(t, out, "7 dims from hash")
}

// stripped drops ANSI styling for exact comparisons.
func stripped(s string) string {
	out := make([]rune, 0, len(s))
	esc := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			esc = true
		case esc && r == 'm':
			esc = false
		case !esc:
			out = append(out, r)
		}
	}
	return string(out)
}
