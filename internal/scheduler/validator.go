package scheduler

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/alexanderramin/polylearner/internal/domain"
)

// ProposedBlock is an externally produced block awaiting validation.
type ProposedBlock struct {
	TaskID int
	Start  time.Time
	End    time.Time
	Reason string
}

// ValidationReport lists what the validator removed and what it added.
type ValidationReport struct {
	DroppedRestWindow int   `json:"dropped_rest_window"`
	DroppedUnknown    int   `json:"dropped_unknown"`
	DroppedInvalid    int   `json:"dropped_invalid"`
	DroppedOverlap    int   `json:"dropped_overlap"`
	Repacked          []int `json:"repacked"`
}

// ScheduleValidator enforces the nightly rest window on a proposed schedule
// and completes it so every task keeps at least one block.
type ScheduleValidator struct {
	log *slog.Logger
}

func NewScheduleValidator(log *slog.Logger) *ScheduleValidator {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &ScheduleValidator{log: log}
}

// ValidateAndComplete drops proposed blocks that touch the rest window,
// reference unknown tasks, have no length, or overlap an earlier block.
// Tasks left with no block are packed with the capped packer around the
// surviving blocks and appended. Tasks with zero hours are ignored.
func (v *ScheduleValidator) ValidateAndComplete(
	proposed []ProposedBlock,
	tasks []domain.Task,
	weekStart time.Time,
	dailyStart, dailyEnd int,
) ([]domain.ScheduledBlock, ValidationReport, error) {
	report := ValidationReport{}
	if err := ValidateWindow(dailyStart, dailyEnd); err != nil {
		return nil, report, err
	}

	byID := make(map[int]domain.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}

	accepted := make([]domain.ScheduledBlock, 0, len(proposed))
	kept := NewIntervalSet()
	covered := map[int]bool{}

	for _, p := range proposed {
		task, ok := byID[p.TaskID]
		switch {
		case !ok:
			report.DroppedUnknown++
			continue
		case !p.End.After(p.Start):
			report.DroppedInvalid++
			continue
		case TouchesRestWindow(p.Start, p.End):
			report.DroppedRestWindow++
			v.log.Warn("dropping block in rest window",
				slog.Int("task_id", p.TaskID),
				slog.Time("start", p.Start),
				slog.Time("end", p.End))
			continue
		case !kept.IsFree(p.Start, p.End):
			report.DroppedOverlap++
			continue
		}
		block := domain.NewBlock(task, p.Start, p.End)
		block.Reason = p.Reason
		accepted = append(accepted, block)
		kept.Add(block.Interval())
		covered[task.ID] = true
	}

	var missing []domain.Task
	for _, t := range tasks {
		if !covered[t.ID] && t.Duration() > 0 {
			missing = append(missing, t)
		}
	}
	if len(missing) == 0 {
		return accepted, report, nil
	}

	opts := CappedPack()
	opts.Busy = kept.Intervals()
	extra, err := PackSequential(missing, weekStart, dailyStart, dailyEnd, opts)
	if err != nil {
		return nil, report, fmt.Errorf("packing unscheduled tasks: %w", err)
	}
	for _, t := range missing {
		report.Repacked = append(report.Repacked, t.ID)
	}
	v.log.Info("completed schedule with sequential packing",
		slog.Int("tasks", len(missing)),
		slog.Int("blocks", len(extra)))

	return append(accepted, extra...), report, nil
}

// TouchesRestWindow reports whether a block starts in [00:00, 06:00), ends
// with an hour in (0, 6], or shares any instant with the rest window of a
// day it spans.
func TouchesRestWindow(start, end time.Time) bool {
	if h := start.Hour(); h >= RestWindowStartHour && h < RestWindowEndHour {
		return true
	}
	if h := end.Hour(); h > RestWindowStartHour && h <= RestWindowEndHour {
		return true
	}
	for day := atHour(start, 0); day.Before(end); day = nextDayAt(day, 0) {
		rest := domain.Interval{Start: day, End: atHour(day, RestWindowEndHour)}
		if rest.Overlaps(domain.Interval{Start: start, End: end}) {
			return true
		}
	}
	return false
}
