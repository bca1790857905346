package testutil

import (
	"time"

	"github.com/alexanderramin/polylearner/internal/domain"
)

// Task options
type TaskOption func(*domain.Task)

func WithID(id int) TaskOption {
	return func(t *domain.Task) { t.ID = id }
}

func WithCategory(c domain.Category) TaskOption {
	return func(t *domain.Task) { t.Category = c }
}

func WithHours(h float64) TaskOption {
	return func(t *domain.Task) { t.TimeHours = h }
}

func WithPriority(p int) TaskOption {
	return func(t *domain.Task) { t.Priority = p }
}

func WithGoal(goal string) TaskOption {
	return func(t *domain.Task) { t.Goal = goal }
}

func WithArtifact(a domain.Artifact) TaskOption {
	return func(t *domain.Task) { t.Artifact = a }
}

func WithWeeklyGoal(id int) TaskOption {
	return func(t *domain.Task) { t.WeeklyGoalID = &id }
}

func WithScheduling(cs domain.CalendarScheduling) TaskOption {
	return func(t *domain.Task) { t.CalendarScheduling = &cs }
}

// NewTestTask returns a valid one-hour coding task at default priority.
func NewTestTask(title string, opts ...TaskOption) *domain.Task {
	t := &domain.Task{
		Title:     title,
		Category:  domain.CategoryCoding,
		Goal:      "Test goal",
		Artifact:  domain.ArtifactNotes,
		TimeHours: 1,
		Priority:  domain.DefaultPriority,
		CreatedAt: time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func NewTestWeeklyGoal(week int, goal string) *domain.WeeklyGoal {
	return &domain.WeeklyGoal{
		WeekNumber: week,
		Goal:       goal,
		TaskIDs:    []int{},
		CreatedAt:  time.Now().UTC(),
	}
}

// Monday is a fixed Monday 00:00 UTC used as a week start in tests.
var Monday = time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)

// At returns day at hh:mm in day's location.
func At(day time.Time, hh, mm int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hh, mm, 0, 0, day.Location())
}
