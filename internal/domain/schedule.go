package domain

import (
	"sort"
	"time"
)

// ScheduledBlock is one contiguous slice of work on a single task.
type ScheduledBlock struct {
	TaskID        int       `json:"task_id"`
	Title         string    `json:"title"`
	Category      Category  `json:"category"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	DurationHours float64   `json:"duration_hours"`
	Reason        string    `json:"reason,omitempty"`
}

// NewBlock builds a block for task; DurationHours is derived from the interval.
func NewBlock(task Task, start, end time.Time) ScheduledBlock {
	return ScheduledBlock{
		TaskID:        task.ID,
		Title:         task.Title,
		Category:      task.Category,
		Start:         start,
		End:           end,
		DurationHours: end.Sub(start).Hours(),
	}
}

func (b ScheduledBlock) Interval() Interval {
	return Interval{Start: b.Start, End: b.End}
}

func (b ScheduledBlock) Duration() time.Duration {
	return b.End.Sub(b.Start)
}

// SortBlocksByStart orders blocks by start time, keeping input order for ties.
func SortBlocksByStart(blocks []ScheduledBlock) {
	sort.SliceStable(blocks, func(i, j int) bool {
		return blocks[i].Start.Before(blocks[j].Start)
	})
}

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Overlaps reports whether the half-open ranges share any instant.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start.Before(o.End) && i.End.After(o.Start)
}

// CommittedEvent is an event the calendar provider accepted.
type CommittedEvent struct {
	TaskID   int       `json:"task_id"`
	EventID  string    `json:"event_id"`
	Title    string    `json:"title"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	HTMLLink string    `json:"html_link,omitempty"`
}
