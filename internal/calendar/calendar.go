// Package calendar talks to the user's external calendar: listing busy
// time, creating the events a scheduling run commits, and removing them.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/polylearner/internal/domain"
)

// Event is a calendar entry as the scheduling code sees it.
type Event struct {
	ID          string    `json:"id"`
	Summary     string    `json:"summary"`
	Description string    `json:"description,omitempty"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	HTMLLink    string    `json:"html_link,omitempty"`
	AllDay      bool      `json:"all_day,omitempty"`
}

func (e Event) Interval() domain.Interval {
	return domain.Interval{Start: e.Start, End: e.End}
}

// EventInput is the writable part of an event.
type EventInput struct {
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
}

func (in EventInput) validate() error {
	if !in.End.After(in.Start) {
		return fmt.Errorf("event %q ends before it starts", in.Summary)
	}
	return nil
}

// Client is bound to one calendar id at construction.
type Client interface {
	ListEvents(ctx context.Context, timeMin, timeMax time.Time, maxResults int) ([]Event, error)
	CreateEvent(ctx context.Context, in EventInput) (Event, error)
	UpdateEvent(ctx context.Context, eventID string, in EventInput) (Event, error)
	DeleteEvent(ctx context.Context, eventID string) error
}

// CalendarInfo describes one calendar the account can see.
type CalendarInfo struct {
	ID       string `json:"id"`
	Summary  string `json:"summary"`
	Primary  bool   `json:"primary"`
	TimeZone string `json:"time_zone,omitempty"`
}

// CalendarLister is implemented by clients that can enumerate calendars.
type CalendarLister interface {
	ListCalendars(ctx context.Context) ([]CalendarInfo, error)
}

// DefaultListLimit matches the page size used for a week of events.
const DefaultListLimit = 100

// BusyIntervals converts events to the intervals a scheduling run must avoid.
// All-day events mark the date rather than occupy it and are skipped.
func BusyIntervals(events []Event) []domain.Interval {
	out := make([]domain.Interval, 0, len(events))
	for _, e := range events {
		if e.AllDay {
			continue
		}
		if e.End.After(e.Start) {
			out = append(out, e.Interval())
		}
	}
	return out
}

// IsPermissionDenied reports whether err means the calendar refused access.
func IsPermissionDenied(err error) bool {
	return errors.Is(err, domain.ErrCalendarPermissionDenied)
}

// TaskDescription renders the event body written for a scheduled task.
func TaskDescription(t domain.Task) string {
	goal := t.Goal
	if goal == "" {
		goal = "N/A"
	}
	artifact := string(t.Artifact)
	if artifact == "" {
		artifact = "N/A"
	}
	return fmt.Sprintf("Category: %s\nGoal: %s\nArtifact: %s\nPriority: %d",
		t.Category, goal, artifact, t.Priority)
}

// CategoryFromDescription reads the "Category: x" line written by
// TaskDescription. Unknown or missing categories are admin.
func CategoryFromDescription(desc string) domain.Category {
	for _, line := range strings.Split(desc, "\n") {
		name, value, ok := strings.Cut(strings.TrimSpace(line), ":")
		if !ok || !strings.EqualFold(strings.TrimSpace(name), "category") {
			continue
		}
		if c, err := domain.ParseCategory(strings.TrimSpace(value)); err == nil {
			return c
		}
	}
	return domain.CategoryAdmin
}

// EventBlock maps a calendar event onto a schedule block for display.
func EventBlock(e Event) domain.ScheduledBlock {
	task := domain.Task{Title: e.Summary, Category: CategoryFromDescription(e.Description)}
	return domain.NewBlock(task, e.Start, e.End)
}
