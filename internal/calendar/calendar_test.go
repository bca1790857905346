package calendar

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alexanderramin/polylearner/internal/domain"
	"github.com/alexanderramin/polylearner/internal/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var monday = time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)

func TestTaskDescription(t *testing.T) {
	got := TaskDescription(domain.Task{Category: domain.CategoryCoding, Goal: "Ship v1", Artifact: domain.ArtifactCode, Priority: 8})
	assert.Equal(t, "Category: coding\nGoal: Ship v1\nArtifact: code\nPriority: 8", got)

	got = TaskDescription(domain.Task{Category: domain.CategoryAdmin, Priority: 3})
	assert.Equal(t, "Category: admin\nGoal: N/A\nArtifact: N/A\nPriority: 3", got)
}

func TestCategoryFromDescription(t *testing.T) {
	assert.Equal(t, domain.CategoryResearch, CategoryFromDescription("Category: research\nGoal: x"))
	assert.Equal(t, domain.CategoryCoding, CategoryFromDescription("notes\n  category : Coding"))
	assert.Equal(t, domain.CategoryAdmin, CategoryFromDescription("Category: gardening"))
	assert.Equal(t, domain.CategoryAdmin, CategoryFromDescription(""))
}

func TestBusyIntervals_SkipsEmpty(t *testing.T) {
	events := []Event{
		{ID: "a", Start: monday.Add(9 * time.Hour), End: monday.Add(10 * time.Hour)},
		{ID: "b", Start: monday.Add(11 * time.Hour), End: monday.Add(11 * time.Hour)},
	}

	busy := BusyIntervals(events)

	require.Len(t, busy, 1)
	assert.Equal(t, monday.Add(9*time.Hour), busy[0].Start)
}

func TestBusyIntervals_SkipsAllDay(t *testing.T) {
	events := []Event{
		{ID: "holiday", Start: monday, End: monday.AddDate(0, 0, 1), AllDay: true},
		{ID: "standup", Start: monday.Add(9 * time.Hour), End: monday.Add(9*time.Hour + 30*time.Minute)},
	}

	busy := BusyIntervals(events)

	require.Len(t, busy, 1)
	assert.Equal(t, monday.Add(9*time.Hour), busy[0].Start)
	assert.Equal(t, monday.Add(9*time.Hour+30*time.Minute), busy[0].End)
}

func TestEventBlock(t *testing.T) {
	b := EventBlock(Event{Summary: "Paper", Description: "Category: research", Start: monday, End: monday.Add(90 * time.Minute)})

	assert.Equal(t, domain.CategoryResearch, b.Category)
	assert.Equal(t, "Paper", b.Title)
	assert.InDelta(t, 1.5, b.DurationHours, 1e-9)
}

func TestMemoryCalendar_CRUD(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryCalendar(Event{Summary: "seed", Start: monday.Add(8 * time.Hour), End: monday.Add(9 * time.Hour)})

	created, err := m.CreateEvent(ctx, EventInput{Summary: "new", Start: monday.Add(10 * time.Hour), End: monday.Add(11 * time.Hour)})
	require.NoError(t, err)
	assert.NotEmpty(t, created.HTMLLink)

	list, err := m.ListEvents(ctx, monday, monday.AddDate(0, 0, 1), 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "seed", list[0].Summary)

	updated, err := m.UpdateEvent(ctx, created.ID, EventInput{Summary: "moved", Start: monday.Add(12 * time.Hour), End: monday.Add(13 * time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, "moved", updated.Summary)

	require.NoError(t, m.DeleteEvent(ctx, created.ID))
	assert.ErrorIs(t, m.DeleteEvent(ctx, created.ID), domain.ErrNotFound)
	_, err = m.UpdateEvent(ctx, created.ID, EventInput{Summary: "x", Start: monday, End: monday.Add(time.Hour)})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Len(t, m.Events(), 1)
}

func TestMemoryCalendar_ListWindowAndLimit(t *testing.T) {
	m := NewMemoryCalendar(
		Event{Start: monday.Add(9 * time.Hour), End: monday.Add(10 * time.Hour)},
		Event{Start: monday.Add(11 * time.Hour), End: monday.Add(12 * time.Hour)},
		Event{Start: monday.AddDate(0, 0, 8), End: monday.AddDate(0, 0, 8).Add(time.Hour)},
	)

	week, err := m.ListEvents(context.Background(), monday, monday.AddDate(0, 0, 7), 0)
	require.NoError(t, err)
	assert.Len(t, week, 2)

	one, err := m.ListEvents(context.Background(), monday, monday.AddDate(0, 0, 7), 1)
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, monday.Add(9*time.Hour), one[0].Start)
}

func TestMemoryCalendar_FailureHooks(t *testing.T) {
	m := NewMemoryCalendar()
	m.FailList = domain.ErrCalendarPermissionDenied
	m.FailCreate = func(in EventInput) error {
		if in.Summary == "bad" {
			return errors.New("boom")
		}
		return nil
	}

	_, err := m.ListEvents(context.Background(), monday, monday.AddDate(0, 0, 1), 0)
	assert.True(t, IsPermissionDenied(err))

	_, err = m.CreateEvent(context.Background(), EventInput{Summary: "bad", Start: monday, End: monday.Add(time.Hour)})
	assert.EqualError(t, err, "boom")
	_, err = m.CreateEvent(context.Background(), EventInput{Summary: "good", Start: monday, End: monday.Add(time.Hour)})
	assert.NoError(t, err)
}

func TestDryRun_MergesSourceAndPreview(t *testing.T) {
	source := NewMemoryCalendar(Event{Summary: "real", Start: monday.Add(9 * time.Hour), End: monday.Add(10 * time.Hour)})
	d := NewDryRun(source)
	ctx := context.Background()

	_, err := d.CreateEvent(ctx, EventInput{Summary: "preview", Start: monday.Add(8 * time.Hour), End: monday.Add(9 * time.Hour)})
	require.NoError(t, err)

	all, err := d.ListEvents(ctx, monday, monday.AddDate(0, 0, 1), 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "preview", all[0].Summary)
	assert.Len(t, source.Events(), 1)
}

func TestCommitter_CreateEvent(t *testing.T) {
	cal := NewMemoryCalendar()
	c := NewCommitter(cal, slog.New(slog.NewTextHandler(io.Discard, nil)))
	task := domain.Task{ID: 4, Title: "Read paper", Category: domain.CategoryResearch, Priority: 6}

	ev, err := c.CreateEvent(context.Background(), scheduler.EventRequest{
		Task:  task,
		Start: monday.Add(9 * time.Hour),
		End:   monday.Add(11 * time.Hour),
	})

	require.NoError(t, err)
	assert.Equal(t, 4, ev.TaskID)
	assert.Equal(t, "Read paper", ev.Title)
	stored := cal.Events()
	require.Len(t, stored, 1)
	assert.Equal(t, TaskDescription(task), stored[0].Description)
}

func TestCommitter_PropagatesPermissionDenied(t *testing.T) {
	cal := NewMemoryCalendar()
	cal.FailCreate = func(EventInput) error { return domain.ErrCalendarPermissionDenied }
	c := NewCommitter(cal, slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := c.CreateEvent(context.Background(), scheduler.EventRequest{
		Task:  domain.Task{ID: 1, Title: "x"},
		Start: monday,
		End:   monday.Add(time.Hour),
	})

	assert.True(t, IsPermissionDenied(err))
}
