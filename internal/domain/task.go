package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

type Task struct {
	ID                 int                 `json:"id"`
	Title              string              `json:"title"`
	Category           Category            `json:"category"`
	Goal               string              `json:"goal"`
	Artifact           Artifact            `json:"artifact"`
	TimeHours          float64             `json:"time_hours"`
	Priority           int                 `json:"priority"`
	WeeklyGoalID       *int                `json:"weekly_goal_id,omitempty"`
	Review             *Review             `json:"review,omitempty"`
	CalendarScheduling *CalendarScheduling `json:"calendar_scheduling,omitempty"`
	CreatedAt          time.Time           `json:"created_at"`
}

// Duration converts TimeHours to a wall-clock duration, rounded to the second.
func (t Task) Duration() time.Duration {
	return HoursToDuration(t.TimeHours)
}

// Validate checks the fields every scheduling component relies on.
func (t *Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidTask)
	}
	if !ValidCategories[t.Category] {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidTask, t.Category)
	}
	if t.Artifact != "" && !ValidArtifacts[t.Artifact] {
		return fmt.Errorf("%w: unknown artifact %q", ErrInvalidTask, t.Artifact)
	}
	if !(t.TimeHours > 0) || math.IsInf(t.TimeHours, 0) {
		return fmt.Errorf("%w: time_hours must be positive, got %v", ErrInvalidTask, t.TimeHours)
	}
	if t.Duration() <= 0 {
		return fmt.Errorf("%w: time_hours %v is shorter than one second", ErrInvalidTask, t.TimeHours)
	}
	if t.Priority < MinPriority || t.Priority > MaxPriority {
		return fmt.Errorf("%w: priority must be between %d and %d, got %d", ErrInvalidTask, MinPriority, MaxPriority, t.Priority)
	}
	return nil
}

// IsScheduled reports whether the last calendar run placed this task.
func (t Task) IsScheduled() bool {
	return t.CalendarScheduling != nil && t.CalendarScheduling.Scheduled
}

// Review is the post-hoc self assessment attached to a task or weekly goal.
type Review struct {
	FocusRate  int        `json:"focus_rate"`
	DoneOnTime DoneOnTime `json:"done_on_time"`
	Notes      string     `json:"notes,omitempty"`
}

func (r Review) Validate() error {
	if r.FocusRate < 1 || r.FocusRate > 10 {
		return fmt.Errorf("%w: focus_rate must be between 1 and 10, got %d", ErrInvalidReview, r.FocusRate)
	}
	if r.DoneOnTime != DoneOnTimeYes && r.DoneOnTime != DoneOnTimeNo {
		return fmt.Errorf("%w: done_on_time must be yes or no, got %q", ErrInvalidReview, r.DoneOnTime)
	}
	return nil
}

// CalendarScheduling records the outcome of the most recent calendar run for a task.
type CalendarScheduling struct {
	Scheduled   bool             `json:"scheduled"`
	Events      []CommittedEvent `json:"events,omitempty"`
	Reason      string           `json:"reason,omitempty"`
	ErrorCode   string           `json:"error_code,omitempty"`
	RunID       string           `json:"run_id,omitempty"`
	AttemptedAt time.Time        `json:"attempted_at"`
}

// HoursToDuration converts fractional hours to a duration rounded to the second.
func HoursToDuration(h float64) time.Duration {
	return time.Duration(math.Round(h*3600)) * time.Second
}
