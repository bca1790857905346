package scheduler

import (
	"fmt"
	"time"

	"github.com/alexanderramin/polylearner/internal/domain"
)

const (
	// RestWindowStartHour and RestWindowEndHour bound the nightly window
	// [00:00, 06:00) in which no work is ever placed.
	RestWindowStartHour = 0
	RestWindowEndHour   = 6

	// eveningHour is the hour after which a block is never allowed to run past midnight.
	eveningHour = 18

	// CappedBlockLimit is the maximum block length of the capped packer variant.
	CappedBlockLimit = 2 * time.Hour
)

// PackOptions selects the packer variant.
type PackOptions struct {
	// MaxBlock caps each emitted block. Zero means uncapped.
	MaxBlock time.Duration

	// Busy intervals the packer must route around. Empty for a plain pack.
	Busy []domain.Interval
}

// PlainPack is the uncapped variant used for the weekly schedule and ICS export.
func PlainPack() PackOptions { return PackOptions{} }

// CappedPack is the variant used when an intelligent schedule falls back or
// needs completing: no block runs longer than two hours.
func CappedPack() PackOptions { return PackOptions{MaxBlock: CappedBlockLimit} }

// ValidateWindow checks that dailyStart and dailyEnd describe a usable day.
func ValidateWindow(dailyStart, dailyEnd int) error {
	if dailyStart < 0 || dailyEnd > 24 || dailyStart >= dailyEnd {
		return fmt.Errorf("%w: daily_start=%d daily_end=%d", domain.ErrInvalidWindow, dailyStart, dailyEnd)
	}
	// The usable part of the day begins once the rest window has ended.
	if max(dailyStart, RestWindowEndHour) >= dailyEnd {
		return fmt.Errorf("%w: daily_start=%d daily_end=%d leaves no hours outside the rest window", domain.ErrInvalidWindow, dailyStart, dailyEnd)
	}
	return nil
}

// PackSequential lays tasks end-to-end onto weekday working windows starting
// at weekStart's date, splitting a task across days when it does not fit.
// It is a pure function of its arguments.
func PackSequential(tasks []domain.Task, weekStart time.Time, dailyStart, dailyEnd int, opts PackOptions) ([]domain.ScheduledBlock, error) {
	if err := ValidateWindow(dailyStart, dailyEnd); err != nil {
		return nil, err
	}
	for _, t := range tasks {
		if !(t.TimeHours > 0) {
			return nil, fmt.Errorf("%w: task %d has non-positive time_hours %v", domain.ErrInvalidTask, t.ID, t.TimeHours)
		}
		if t.Duration() <= 0 {
			return nil, fmt.Errorf("%w: task %d time_hours %v rounds to zero duration", domain.ErrInvalidTask, t.ID, t.TimeHours)
		}
	}

	blocks := []domain.ScheduledBlock{}
	if len(tasks) == 0 {
		return blocks, nil
	}

	ordered := make([]domain.Task, len(tasks))
	copy(ordered, tasks)
	PackingSort(ordered)

	p := &packer{
		dailyStart: dailyStart,
		dailyEnd:   dailyEnd,
		maxBlock:   opts.MaxBlock,
		busy:       NewIntervalSet(opts.Busy...),
		cursor:     atHour(weekStart, dailyStart),
	}

	for _, task := range ordered {
		remaining := task.Duration()
		for remaining > 0 {
			length, ok := p.nextSlot(remaining)
			if !ok {
				continue
			}
			end := p.cursor.Add(length)
			blocks = append(blocks, domain.NewBlock(task, p.cursor, end))
			p.cursor = end
			remaining -= length
		}
	}

	return blocks, nil
}

type packer struct {
	dailyStart int
	dailyEnd   int
	maxBlock   time.Duration
	busy       *IntervalSet
	cursor     time.Time
}

// nextSlot either advances the cursor to a better position and reports
// false, or returns the length of the block that can start at the cursor.
// Every false return moves the cursor strictly forward.
func (p *packer) nextSlot(remaining time.Duration) (time.Duration, bool) {
	hour := hourOf(p.cursor)

	switch {
	case hour < RestWindowEndHour:
		p.cursor = atHour(p.cursor, RestWindowEndHour)
		return 0, false
	case isWeekend(p.cursor):
		p.cursor = nextDayAt(p.cursor, p.dailyStart)
		return 0, false
	case hour >= float64(p.dailyEnd):
		p.cursor = nextDayAt(p.cursor, p.dailyStart)
		return 0, false
	case hour < float64(p.dailyStart):
		p.cursor = atHour(p.cursor, p.dailyStart)
		return 0, false
	}

	if iv, busy := p.busy.Containing(p.cursor); busy {
		p.cursor = iv.End
		return 0, false
	}

	available := windowEnd(p.cursor, p.dailyEnd).Sub(p.cursor)
	if hour >= eveningHour {
		available = minDuration(available, nextDayAt(p.cursor, 0).Sub(p.cursor))
	}
	if next, ok := p.busy.NextStartAfter(p.cursor); ok {
		available = minDuration(available, next.Sub(p.cursor))
	}

	length := minDuration(available, remaining)
	if p.maxBlock > 0 {
		length = minDuration(length, p.maxBlock)
	}
	return length, true
}

// windowEnd returns dailyEnd on t's date; 24 maps to the following midnight.
func windowEnd(t time.Time, dailyEnd int) time.Time {
	if dailyEnd >= 24 {
		return nextDayAt(t, 0)
	}
	return atHour(t, dailyEnd)
}
