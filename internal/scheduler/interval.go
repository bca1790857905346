package scheduler

import (
	"sort"
	"time"

	"github.com/alexanderramin/polylearner/internal/domain"
)

// IntervalSet is an ordered collection of busy intervals for one scheduling run.
type IntervalSet struct {
	items []domain.Interval
}

// NewIntervalSet copies the given intervals into a set ordered by start time.
// Empty or inverted intervals are ignored.
func NewIntervalSet(intervals ...domain.Interval) *IntervalSet {
	s := &IntervalSet{items: make([]domain.Interval, 0, len(intervals))}
	for _, iv := range intervals {
		s.Add(iv)
	}
	return s
}

// Add inserts iv keeping the set ordered by start.
func (s *IntervalSet) Add(iv domain.Interval) {
	if !iv.End.After(iv.Start) {
		return
	}
	i := sort.Search(len(s.items), func(i int) bool {
		return s.items[i].Start.After(iv.Start)
	})
	s.items = append(s.items, domain.Interval{})
	copy(s.items[i+1:], s.items[i:])
	s.items[i] = iv
}

// IsFree reports whether [start, end) overlaps no interval in the set.
func (s *IntervalSet) IsFree(start, end time.Time) bool {
	want := domain.Interval{Start: start, End: end}
	for _, iv := range s.items {
		if !iv.Start.Before(end) {
			break
		}
		if want.Overlaps(iv) {
			return false
		}
	}
	return true
}

// Containing returns the interval covering t, if any.
func (s *IntervalSet) Containing(t time.Time) (domain.Interval, bool) {
	for _, iv := range s.items {
		if iv.Start.After(t) {
			break
		}
		if t.Before(iv.End) {
			return iv, true
		}
	}
	return domain.Interval{}, false
}

// NextStartAfter returns the earliest interval start strictly after t.
func (s *IntervalSet) NextStartAfter(t time.Time) (time.Time, bool) {
	for _, iv := range s.items {
		if iv.Start.After(t) {
			return iv.Start, true
		}
	}
	return time.Time{}, false
}

func (s *IntervalSet) Len() int { return len(s.items) }

// Intervals returns a copy of the ordered intervals.
func (s *IntervalSet) Intervals() []domain.Interval {
	out := make([]domain.Interval, len(s.items))
	copy(out, s.items)
	return out
}
