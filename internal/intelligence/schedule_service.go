package intelligence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alexanderramin/polylearner/internal/domain"
	"github.com/alexanderramin/polylearner/internal/llm"
	"github.com/alexanderramin/polylearner/internal/scheduler"
)

// Preferences shape the model's proposal. They are advisory; the
// validator only enforces the rest window.
type Preferences struct {
	PeakHours          string  `json:"peak_hours" yaml:"peak_hours" toml:"peak_hours"`
	BreakMinutes       int     `json:"break_duration_minutes" yaml:"break_duration_minutes" toml:"break_duration_minutes"`
	MaxContinuousHours float64 `json:"max_continuous_hours" yaml:"max_continuous_hours" toml:"max_continuous_hours"`
}

func DefaultPreferences() Preferences {
	return Preferences{PeakHours: "9-12", BreakMinutes: 15, MaxContinuousHours: 2}
}

func (p Preferences) withDefaults() Preferences {
	d := DefaultPreferences()
	if p.PeakHours == "" {
		p.PeakHours = d.PeakHours
	}
	if p.BreakMinutes <= 0 {
		p.BreakMinutes = d.BreakMinutes
	}
	if p.MaxContinuousHours <= 0 {
		p.MaxContinuousHours = d.MaxContinuousHours
	}
	return p
}

// Schedule sources.
const (
	SourceLLM       = "llm"
	SourceRuleBased = "rule_based"
)

// SchedulePlan is a week of blocks plus how it was produced.
type SchedulePlan struct {
	Blocks []domain.ScheduledBlock     `json:"blocks"`
	Notes  string                      `json:"scheduling_notes,omitempty"`
	Source string                      `json:"source"`
	Groups []TaskGroup                 `json:"groups,omitempty"`
	Report *scheduler.ValidationReport `json:"validation,omitempty"`
}

type ScheduleService interface {
	// Plan asks the model for a schedule and validates it. Any model
	// failure yields the capped rule-based schedule instead. The only
	// error is an unusable daily window or task list.
	Plan(ctx context.Context, tasks []domain.Task, weekStart time.Time, dailyStart, dailyEnd int, prefs Preferences) (*SchedulePlan, error)
}

type scheduleService struct {
	client    llm.LLMClient
	grouping  GroupingService
	validator *scheduler.ScheduleValidator
	log       *slog.Logger
}

func NewScheduleService(client llm.LLMClient, grouping GroupingService, validator *scheduler.ScheduleValidator, log *slog.Logger) ScheduleService {
	return &scheduleService{client: client, grouping: grouping, validator: validator, log: log}
}

type proposedSlot struct {
	TaskID        int     `json:"task_id"`
	DayOfWeek     string  `json:"day_of_week"`
	StartHour     int     `json:"start_hour"`
	StartMinute   int     `json:"start_minute"`
	DurationHours float64 `json:"duration_hours"`
	Reason        string  `json:"reason"`
}

type scheduleAnswer struct {
	Schedule []proposedSlot `json:"schedule"`
	Notes    string         `json:"scheduling_notes"`
}

func (s *scheduleService) Plan(ctx context.Context, tasks []domain.Task, weekStart time.Time, dailyStart, dailyEnd int, prefs Preferences) (*SchedulePlan, error) {
	if err := scheduler.ValidateWindow(dailyStart, dailyEnd); err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return &SchedulePlan{Blocks: []domain.ScheduledBlock{}, Source: SourceRuleBased}, nil
	}

	groups := s.grouping.GroupTasks(ctx, tasks)
	answer, err := s.propose(ctx, tasks, groups, weekStart, dailyStart, dailyEnd, prefs.withDefaults())
	if err != nil {
		s.log.Warn("intelligent schedule falling back to rule-based packing", "error", err)
		blocks, packErr := scheduler.PackSequential(tasks, weekStart, dailyStart, dailyEnd, scheduler.CappedPack())
		if packErr != nil {
			return nil, packErr
		}
		return &SchedulePlan{Blocks: blocks, Source: SourceRuleBased, Groups: groups}, nil
	}

	proposed := proposedBlocks(answer.Schedule, weekStart)
	blocks, report, err := s.validator.ValidateAndComplete(proposed, tasks, weekStart, dailyStart, dailyEnd)
	if err != nil {
		return nil, err
	}
	s.log.Info("intelligent schedule generated", "blocks", len(blocks), "proposed", len(proposed), "repacked", len(report.Repacked))
	return &SchedulePlan{Blocks: blocks, Notes: answer.Notes, Source: SourceLLM, Groups: groups, Report: &report}, nil
}

func (s *scheduleService) propose(ctx context.Context, tasks []domain.Task, groups []TaskGroup, weekStart time.Time, dailyStart, dailyEnd int, prefs Preferences) (scheduleAnswer, error) {
	byID := make(map[int]domain.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}
	type groupInfo struct {
		Name       string  `json:"name"`
		TaskIDs    []int   `json:"task_ids"`
		TotalHours float64 `json:"total_hours"`
	}
	infos := make([]groupInfo, len(groups))
	for i, g := range groups {
		infos[i] = groupInfo{Name: g.Name, TaskIDs: g.TaskIDs, TotalHours: g.TotalHours(byID)}
	}

	taskJSON, err := json.MarshalIndent(summarize(tasks), "", "  ")
	if err != nil {
		return scheduleAnswer{}, err
	}
	groupJSON, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return scheduleAnswer{}, err
	}

	resp, err := s.client.Generate(ctx, llm.GenerateRequest{
		Task:         llm.TaskSchedule,
		SystemPrompt: scheduleSystemPrompt,
		UserPrompt: fmt.Sprintf(schedulePrompt, taskJSON, groupJSON,
			weekStart.Format("2006-01-02 Monday"), dailyStart, dailyEnd,
			prefs.PeakHours, prefs.BreakMinutes, prefs.MaxContinuousHours),
		JSONMode: true,
	})
	if err != nil {
		return scheduleAnswer{}, err
	}
	return llm.ExtractJSON[scheduleAnswer](resp.Text, func(a scheduleAnswer) error {
		if len(a.Schedule) == 0 {
			return errors.New("empty schedule")
		}
		return nil
	})
}

var dayOffsets = map[string]int{
	"monday": 0, "tuesday": 1, "wednesday": 2, "thursday": 3,
	"friday": 4, "saturday": 5, "sunday": 6,
}

// proposedBlocks anchors model slots to weekStart. Unknown day names fall
// on the first day of the week.
func proposedBlocks(slots []proposedSlot, weekStart time.Time) []scheduler.ProposedBlock {
	out := make([]scheduler.ProposedBlock, 0, len(slots))
	for _, slot := range slots {
		day := weekStart.AddDate(0, 0, dayOffsets[strings.ToLower(strings.TrimSpace(slot.DayOfWeek))])
		start := time.Date(day.Year(), day.Month(), day.Day(), slot.StartHour, slot.StartMinute, 0, 0, day.Location())
		out = append(out, scheduler.ProposedBlock{
			TaskID: slot.TaskID,
			Start:  start,
			End:    start.Add(domain.HoursToDuration(slot.DurationHours)),
			Reason: slot.Reason,
		})
	}
	return out
}
