package calendar

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/alexanderramin/polylearner/internal/domain"
)

// MemoryCalendar is an in-process Client used for dry runs and tests.
type MemoryCalendar struct {
	mu     sync.Mutex
	events map[string]Event
	seq    int

	// FailCreate, when set, is consulted before each create.
	FailCreate func(in EventInput) error
	// FailList, when set, is returned by ListEvents.
	FailList error
}

func NewMemoryCalendar(seed ...Event) *MemoryCalendar {
	m := &MemoryCalendar{events: make(map[string]Event)}
	for _, e := range seed {
		if e.ID == "" {
			e.ID = m.nextID()
		}
		m.events[e.ID] = e
	}
	return m
}

func (m *MemoryCalendar) nextID() string {
	m.seq++
	return fmt.Sprintf("mem-%d", m.seq)
}

// ListEvents returns events overlapping [timeMin, timeMax) ordered by start.
func (m *MemoryCalendar) ListEvents(_ context.Context, timeMin, timeMax time.Time, maxResults int) ([]Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailList != nil {
		return nil, m.FailList
	}
	window := domain.Interval{Start: timeMin, End: timeMax}
	var out []Event
	for _, e := range m.events {
		if e.Interval().Overlaps(window) {
			out = append(out, e)
		}
	}
	slices.SortFunc(out, func(a, b Event) int { return a.Start.Compare(b.Start) })
	if maxResults > 0 && len(out) > maxResults {
		out = out[:maxResults]
	}
	return out, nil
}

func (m *MemoryCalendar) CreateEvent(_ context.Context, in EventInput) (Event, error) {
	if err := in.validate(); err != nil {
		return Event{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailCreate != nil {
		if err := m.FailCreate(in); err != nil {
			return Event{}, err
		}
	}
	id := m.nextID()
	e := Event{
		ID:          id,
		Summary:     in.Summary,
		Description: in.Description,
		Start:       in.Start,
		End:         in.End,
		HTMLLink:    "memory://event/" + id,
	}
	m.events[id] = e
	return e, nil
}

func (m *MemoryCalendar) UpdateEvent(_ context.Context, eventID string, in EventInput) (Event, error) {
	if err := in.validate(); err != nil {
		return Event{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[eventID]
	if !ok {
		return Event{}, fmt.Errorf("event %s: %w", eventID, domain.ErrNotFound)
	}
	e.Summary, e.Description, e.Start, e.End = in.Summary, in.Description, in.Start, in.End
	m.events[eventID] = e
	return e, nil
}

func (m *MemoryCalendar) DeleteEvent(_ context.Context, eventID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.events[eventID]; !ok {
		return fmt.Errorf("event %s: %w", eventID, domain.ErrNotFound)
	}
	delete(m.events, eventID)
	return nil
}

// Events returns every stored event ordered by start.
func (m *MemoryCalendar) Events() []Event {
	all, _ := m.ListEvents(context.Background(), time.Time{}, time.Unix(1<<40, 0), 0)
	return all
}

// DryRun reads busy time from a real calendar but writes into memory, so a
// run can be previewed without touching the user's calendar.
type DryRun struct {
	*MemoryCalendar
	source Client
}

func NewDryRun(source Client) *DryRun {
	return &DryRun{MemoryCalendar: NewMemoryCalendar(), source: source}
}

// ListEvents merges the source calendar's events with previewed ones.
func (d *DryRun) ListEvents(ctx context.Context, timeMin, timeMax time.Time, maxResults int) ([]Event, error) {
	real, err := d.source.ListEvents(ctx, timeMin, timeMax, maxResults)
	if err != nil {
		return nil, err
	}
	preview, err := d.MemoryCalendar.ListEvents(ctx, timeMin, timeMax, 0)
	if err != nil {
		return nil, err
	}
	out := append(real, preview...)
	slices.SortStableFunc(out, func(a, b Event) int { return a.Start.Compare(b.Start) })
	return out, nil
}

var (
	_ Client = (*MemoryCalendar)(nil)
	_ Client = (*DryRun)(nil)
)
