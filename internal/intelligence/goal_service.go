package intelligence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/alexanderramin/polylearner/internal/domain"
	"github.com/alexanderramin/polylearner/internal/llm"
)

// MinRefinedVersions is how many refined goals a validation always carries.
const MinRefinedVersions = 3

// GoalService turns a free-text goal into a SMART assessment and a task
// breakdown. Both operations degrade instead of failing.
type GoalService interface {
	// ValidateGoal never fails; without a usable model answer it falls
	// back to a keyword check.
	ValidateGoal(ctx context.Context, goal string) domain.GoalValidation

	// SuggestTasks reports problems in SuggestionResult.Error.
	SuggestTasks(ctx context.Context, goal string) SuggestionResult
}

type goalService struct {
	client llm.LLMClient
	log    *slog.Logger
	now    func() time.Time
}

func NewGoalService(client llm.LLMClient, log *slog.Logger) GoalService {
	return &goalService{client: client, log: log, now: time.Now}
}

type smartAnswer struct {
	IsValid bool `json:"is_valid"`
	Details struct {
		Specific   bool `json:"specific"`
		Measurable bool `json:"measurable"`
		Achievable bool `json:"achievable"`
		Relevant   bool `json:"relevant"`
		TimeBound  bool `json:"time_bound"`
	} `json:"validation_details"`
	Feedback        string               `json:"feedback"`
	Suggestions     []string             `json:"suggestions"`
	RefinedVersions []domain.RefinedGoal `json:"refined_versions"`
}

func (s *goalService) ValidateGoal(ctx context.Context, goal string) domain.GoalValidation {
	today := s.now().Format("January 2, 2006")
	resp, err := s.client.Generate(ctx, llm.GenerateRequest{
		Task:         llm.TaskGoalValidation,
		SystemPrompt: fmt.Sprintf(goalValidationSystemPrompt, today),
		UserPrompt:   fmt.Sprintf(goalValidationPrompt, today, goal),
		JSONMode:     true,
	})
	if err != nil {
		s.log.Warn("goal validation falling back to basic check", "error", err)
		return BasicGoalValidation(goal)
	}

	answer, err := llm.ExtractJSON[smartAnswer](resp.Text, nil)
	if err != nil {
		s.log.Warn("goal validation output unusable", "error", err)
		return BasicGoalValidation(goal)
	}

	v := domain.GoalValidation{
		IsValid:      answer.IsValid,
		IsSpecific:   answer.Details.Specific,
		IsMeasurable: answer.Details.Measurable,
		IsAchievable: answer.Details.Achievable,
		IsRelevant:   answer.Details.Relevant,
		IsTimeBound:  answer.Details.TimeBound,
		Feedback:     answer.Feedback,
		Suggestions:  answer.Suggestions,
		Source:       "llm",
	}
	for _, r := range answer.RefinedVersions {
		if strings.TrimSpace(r.Goal) != "" {
			v.RefinedVersions = append(v.RefinedVersions, r)
		}
	}
	v.RefinedVersions = PadRefinedVersions(goal, v.RefinedVersions)
	return v
}

var measurableHint = regexp.MustCompile(`(?i)\d+|deadline|by|until|complete`)

// BasicGoalValidation is the keyword check used without a model: more than
// three words counts as specific, and digits or deadline words count as
// measurable and time-bound.
func BasicGoalValidation(goal string) domain.GoalValidation {
	specific := len(strings.Fields(goal)) > 3
	measurable := measurableHint.MatchString(goal)

	suggestions := []string{"Good level of specificity", "Has measurable elements", "Well defined"}
	if !specific {
		suggestions[0] = "Make the goal more specific with concrete outcomes"
	}
	if !measurable {
		suggestions[1] = "Add measurable criteria (numbers, deadlines, concrete deliverables)"
		suggestions[2] = "Consider including a timeframe (e.g., 'within 8 weeks', 'by March 1st')"
	}

	refined := []domain.RefinedGoal{{
		Goal:        goal,
		Improvement: "Original goal",
		WhyBetter:   "Your original phrasing",
	}}
	return domain.GoalValidation{
		IsValid:         specific && measurable,
		IsSpecific:      specific,
		IsMeasurable:    measurable,
		IsAchievable:    true,
		IsRelevant:      true,
		IsTimeBound:     measurable,
		Feedback:        "Goal validated using basic criteria. LLM validation recommended for better accuracy.",
		Suggestions:     suggestions,
		RefinedVersions: PadRefinedVersions(goal, refined),
		Source:          "basic",
	}
}

// PadRefinedVersions appends template refinements of goal until there are
// MinRefinedVersions entries.
func PadRefinedVersions(goal string, versions []domain.RefinedGoal) []domain.RefinedGoal {
	for len(versions) < MinRefinedVersions {
		switch len(versions) {
		case 0:
			versions = append(versions, domain.RefinedGoal{
				Goal:        goal,
				Improvement: "Your original goal",
				WhyBetter:   "Start with your original phrasing and refine as you progress",
			})
		case 1:
			versions = append(versions, domain.RefinedGoal{
				Goal:        goal + " with clear milestones and measurable outcomes",
				Improvement: "Added structure and measurability",
				WhyBetter:   "Makes progress tracking easier and success criteria clearer",
			})
		default:
			versions = append(versions, domain.RefinedGoal{
				Goal:        goal + " - completed within 8 weeks with weekly checkpoints",
				Improvement: "Added timeframe and accountability",
				WhyBetter:   "Creates urgency and allows for regular progress reviews",
			})
		}
	}
	return versions
}

// SuggestedTask is one task of a goal breakdown.
type SuggestedTask struct {
	Title        string          `json:"title"`
	Category     domain.Category `json:"category"`
	TimeHours    float64         `json:"time_hours"`
	Goal         string          `json:"goal"`
	Artifact     domain.Artifact `json:"artifact"`
	Priority     int             `json:"priority"`
	EnergyLevel  string          `json:"energy_level"`
	BatchGroup   string          `json:"batch_group"`
	Dependencies []any           `json:"dependencies"`
}

// Task converts the suggestion into a task ready for creation.
func (s SuggestedTask) Task() domain.Task {
	return domain.Task{
		Title:     s.Title,
		Category:  s.Category,
		Goal:      s.Goal,
		Artifact:  s.Artifact,
		TimeHours: s.TimeHours,
		Priority:  s.Priority,
	}
}

type EnergyAllocation struct {
	High   float64 `json:"high_energy_hours"`
	Medium float64 `json:"medium_energy_hours"`
	Low    float64 `json:"low_energy_hours"`
}

type SuggestionResult struct {
	Tasks                   []SuggestedTask  `json:"suggested_tasks"`
	SchedulingStrategy      string           `json:"scheduling_strategy,omitempty"`
	EstimatedTotalHours     float64          `json:"estimated_total_hours"`
	EnergyAllocation        EnergyAllocation `json:"energy_allocation"`
	BatchingRecommendations string           `json:"batching_recommendations,omitempty"`
	WeeklyBreakdown         string           `json:"weekly_breakdown,omitempty"`
	// Recovered is set when tasks were salvaged from a truncated answer.
	Recovered bool   `json:"recovered,omitempty"`
	Error     string `json:"error,omitempty"`
}

func (s *goalService) SuggestTasks(ctx context.Context, goal string) SuggestionResult {
	today := s.now().Format("January 2, 2006")
	resp, err := s.client.Generate(ctx, llm.GenerateRequest{
		Task:         llm.TaskSuggestTasks,
		SystemPrompt: fmt.Sprintf(suggestTasksSystemPrompt, today),
		UserPrompt:   fmt.Sprintf(suggestTasksPrompt, today, goal),
		JSONMode:     true,
	})
	if errors.Is(err, llm.ErrUnavailable) {
		s.log.Warn("task suggestions need an LLM", "error", err)
		return SuggestionResult{Tasks: []SuggestedTask{}, Error: "LLM not available"}
	}
	if err != nil {
		s.log.Warn("task suggestion call failed", "error", err)
		return SuggestionResult{Tasks: []SuggestedTask{}, Error: fmt.Sprintf("Failed to generate tasks: %v", err)}
	}

	result, err := llm.ExtractJSON[SuggestionResult](resp.Text, func(r SuggestionResult) error {
		if len(r.Tasks) == 0 {
			return errors.New("no suggested_tasks")
		}
		return nil
	})
	if err != nil {
		s.log.Warn("task suggestion output malformed, recovering complete tasks", "error", err, "length", len(resp.Text))
		result = recoverSuggestions(resp.Text)
	}

	result.Tasks = s.sanitize(result.Tasks)
	if len(result.Tasks) == 0 {
		return SuggestionResult{Tasks: []SuggestedTask{}, Error: "Failed to generate tasks - JSON parsing error"}
	}
	if result.EstimatedTotalHours <= 0 {
		result.EstimatedTotalHours = totalHours(result.Tasks)
	}
	s.log.Info("suggested tasks for goal", "count", len(result.Tasks), "recovered", result.Recovered)
	return result
}

// recoverSuggestions salvages every complete task object that carries a
// title, category and time_hours, filling defaults for the rest.
func recoverSuggestions(raw string) SuggestionResult {
	var tasks []SuggestedTask
	for _, obj := range llm.RecoverObjects(raw, "suggested_tasks") {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(obj, &fields); err != nil {
			continue
		}
		if fields["title"] == nil || fields["category"] == nil || fields["time_hours"] == nil {
			continue
		}
		t := SuggestedTask{
			Goal:         "Task goal",
			Artifact:     domain.ArtifactNotes,
			Priority:     domain.DefaultPriority,
			EnergyLevel:  "medium",
			BatchGroup:   "General",
			Dependencies: []any{},
		}
		if err := json.Unmarshal(obj, &t); err != nil {
			continue
		}
		tasks = append(tasks, t)
	}
	if len(tasks) == 0 {
		return SuggestionResult{}
	}

	res := SuggestionResult{
		Tasks:                   tasks,
		SchedulingStrategy:      "Tasks generated successfully. Review and adjust as needed.",
		EstimatedTotalHours:     totalHours(tasks),
		BatchingRecommendations: "Group similar tasks to minimize context switching",
		WeeklyBreakdown:         fmt.Sprintf("Total %d tasks over available weeks", len(tasks)),
		Recovered:               true,
	}
	for _, t := range tasks {
		switch t.EnergyLevel {
		case "high":
			res.EnergyAllocation.High += t.TimeHours
		case "medium":
			res.EnergyAllocation.Medium += t.TimeHours
		case "low":
			res.EnergyAllocation.Low += t.TimeHours
		}
	}
	return res
}

// sanitize drops suggestions that could never become tasks and clamps the
// fields a model tends to get slightly wrong.
func (s *goalService) sanitize(in []SuggestedTask) []SuggestedTask {
	out := make([]SuggestedTask, 0, len(in))
	for _, t := range in {
		c, err := domain.ParseCategory(string(t.Category))
		if err != nil || strings.TrimSpace(t.Title) == "" || !(t.TimeHours > 0) {
			s.log.Warn("dropping unusable suggestion", "title", t.Title, "category", t.Category, "time_hours", t.TimeHours)
			continue
		}
		t.Category = c
		if !domain.ValidArtifacts[t.Artifact] {
			t.Artifact = domain.ArtifactNotes
		}
		if t.Priority == 0 {
			t.Priority = domain.DefaultPriority
		}
		t.Priority = min(max(t.Priority, domain.MinPriority), domain.MaxPriority)
		if t.Goal == "" {
			t.Goal = "Task goal"
		}
		if t.EnergyLevel == "" {
			t.EnergyLevel = "medium"
		}
		if t.BatchGroup == "" {
			t.BatchGroup = "General"
		}
		if t.Dependencies == nil {
			t.Dependencies = []any{}
		}
		out = append(out, t)
	}
	return out
}

func totalHours(tasks []SuggestedTask) float64 {
	var sum float64
	for _, t := range tasks {
		sum += t.TimeHours
	}
	return sum
}
