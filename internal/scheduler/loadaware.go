package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alexanderramin/polylearner/internal/domain"
)

// LoadConfig bounds how much work the calendar scheduler puts on one day and
// how far it searches for a free slot.
type LoadConfig struct {
	MaxDailyHours  float64
	MaxTasksPerDay int
	WorkStartHour  int
	WorkEndHour    int
	Step           time.Duration
	MaxAttempts    int
	MinSlot        time.Duration
	Spacing        time.Duration

	// SpreadAfterTasks moves a task to the next day once the cursor's day
	// already holds this many tasks. Zero disables spreading.
	SpreadAfterTasks int

	// HorizonDays bounds day-to-day advances for a single task.
	HorizonDays int
}

// DefaultLoadConfig returns the standard working-day limits.
func DefaultLoadConfig() LoadConfig {
	return LoadConfig{
		MaxDailyHours:    6,
		MaxTasksPerDay:   4,
		WorkStartHour:    9,
		WorkEndHour:      17,
		Step:             30 * time.Minute,
		MaxAttempts:      60,
		MinSlot:          30 * time.Minute,
		Spacing:          30 * time.Minute,
		SpreadAfterTasks: 2,
		HorizonDays:      14,
	}
}

func (c LoadConfig) Validate() error {
	if err := ValidateWindow(c.WorkStartHour, c.WorkEndHour); err != nil {
		return err
	}
	if c.MaxDailyHours <= 0 || c.MaxTasksPerDay <= 0 {
		return fmt.Errorf("%w: daily limits must be positive", domain.ErrInvalidWindow)
	}
	if c.Step <= 0 || c.MaxAttempts <= 0 || c.HorizonDays <= 0 {
		return fmt.Errorf("%w: search bounds must be positive", domain.ErrInvalidWindow)
	}
	return nil
}

// EventRequest is the block the scheduler asks the calendar to commit.
type EventRequest struct {
	Task  domain.Task
	Start time.Time
	End   time.Time
}

// EventCommitter persists one block on the user's calendar.
type EventCommitter interface {
	CreateEvent(ctx context.Context, req EventRequest) (domain.CommittedEvent, error)
}

type UnplacedReason string

const (
	ReasonNoSlot       UnplacedReason = "no_slot"
	ReasonCommitFailed UnplacedReason = "commit_failed"
	ReasonAborted      UnplacedReason = "aborted"
)

type UnplacedTask struct {
	TaskID int            `json:"task_id"`
	Reason UnplacedReason `json:"reason"`
	Err    string         `json:"error,omitempty"`
}

// CalendarScheduleResult is the outcome of one scheduling run. Err is set
// only for run-fatal failures such as a calendar permission denial.
type CalendarScheduleResult struct {
	Placed   []domain.CommittedEvent `json:"placed"`
	Unplaced []UnplacedTask          `json:"unplaced"`
	Err      error                   `json:"-"`
}

// PermissionDenied reports whether the run aborted on a calendar 403.
func (r CalendarScheduleResult) PermissionDenied() bool {
	return errors.Is(r.Err, domain.ErrCalendarPermissionDenied)
}

// dayLoad tracks hours and task counts committed during this run only.
type dayLoad struct {
	hours map[string]float64
	count map[string]int
}

func newDayLoad() *dayLoad {
	return &dayLoad{hours: map[string]float64{}, count: map[string]int{}}
}

func (l *dayLoad) hasCapacity(cfg LoadConfig, day string, hours float64) bool {
	return l.hours[day]+hours <= cfg.MaxDailyHours && l.count[day] < cfg.MaxTasksPerDay
}

func (l *dayLoad) add(day string, hours float64) {
	l.hours[day] += hours
	l.count[day]++
}

// CalendarScheduler places whole tasks into free calendar time while
// keeping each day's load bounded.
type CalendarScheduler struct {
	cfg       LoadConfig
	committer EventCommitter
	log       *slog.Logger
}

func NewCalendarScheduler(cfg LoadConfig, committer EventCommitter, log *slog.Logger) *CalendarScheduler {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &CalendarScheduler{cfg: cfg, committer: committer, log: log}
}

// StartCursor returns today's work start, or tomorrow's if it has passed.
func (s *CalendarScheduler) StartCursor(now time.Time) time.Time {
	start := atHour(now, s.cfg.WorkStartHour)
	if start.Before(now) {
		start = nextDayAt(now, s.cfg.WorkStartHour)
	}
	return start
}

// Schedule places each task, highest priority first, into the earliest
// weekday slot that is free of busy intervals and fits the day's budget,
// committing every placement through the EventCommitter.
func (s *CalendarScheduler) Schedule(ctx context.Context, tasks []domain.Task, busy []domain.Interval, now time.Time) CalendarScheduleResult {
	result := CalendarScheduleResult{
		Placed:   []domain.CommittedEvent{},
		Unplaced: []UnplacedTask{},
	}
	if err := s.cfg.Validate(); err != nil {
		result.Err = err
		return result
	}

	ordered := make([]domain.Task, len(tasks))
	copy(ordered, tasks)
	PrioritySort(ordered)

	occupied := NewIntervalSet(busy...)
	load := newDayLoad()
	cursor := s.StartCursor(now)

	for i, task := range ordered {
		if err := ctx.Err(); err != nil {
			result.Err = err
			result.Unplaced = appendAborted(result.Unplaced, ordered[i:], err)
			return result
		}

		from := cursor
		if i > 0 && s.cfg.SpreadAfterTasks > 0 && load.count[DayKey(cursor)] >= s.cfg.SpreadAfterTasks {
			from = nextDayAt(cursor, s.cfg.WorkStartHour)
		}

		start, end, ok := s.findSlot(from, task.Duration(), occupied, load)
		if !ok {
			s.log.Info("no slot for task",
				slog.Int("task_id", task.ID),
				slog.Float64("time_hours", task.TimeHours))
			result.Unplaced = append(result.Unplaced, UnplacedTask{TaskID: task.ID, Reason: ReasonNoSlot})
			continue
		}

		event, err := s.committer.CreateEvent(ctx, EventRequest{Task: task, Start: start, End: end})
		if err != nil {
			if errors.Is(err, domain.ErrCalendarPermissionDenied) {
				s.log.Error("calendar permission denied; aborting run", slog.Int("task_id", task.ID), slog.Any("err", err))
				result.Err = err
				result.Unplaced = appendAborted(result.Unplaced, ordered[i:], err)
				return result
			}
			s.log.Error("creating calendar event failed",
				slog.Int("task_id", task.ID),
				slog.Time("start", start),
				slog.Any("err", err))
			result.Unplaced = append(result.Unplaced, UnplacedTask{TaskID: task.ID, Reason: ReasonCommitFailed, Err: err.Error()})
			continue
		}

		day := DayKey(start)
		occupied.Add(domain.Interval{Start: start, End: end})
		load.add(day, end.Sub(start).Hours())
		cursor = end.Add(s.cfg.Spacing)
		result.Placed = append(result.Placed, event)

		s.log.Info("task placed",
			slog.Int("task_id", task.ID),
			slog.String("day", day),
			slog.Time("start", start),
			slog.Time("end", end),
			slog.Float64("hours_used", load.hours[day]),
			slog.Int("task_count", load.count[day]))
	}

	return result
}

// findSlot searches forward from t for a slot of length d. Only busy
// collisions count as attempts; day changes are bounded by HorizonDays.
func (s *CalendarScheduler) findSlot(t time.Time, d time.Duration, occupied *IntervalSet, load *dayLoad) (time.Time, time.Time, bool) {
	cfg := s.cfg
	hours := d.Hours()
	attempts, dayAdvances := 0, 0

	nextDay := func() bool {
		t = nextDayAt(t, cfg.WorkStartHour)
		dayAdvances++
		return dayAdvances <= cfg.HorizonDays
	}

	for attempts < cfg.MaxAttempts {
		hour := hourOf(t)
		switch {
		case isWeekend(t), hour >= float64(cfg.WorkEndHour):
			if !nextDay() {
				return time.Time{}, time.Time{}, false
			}
			continue
		case hour < float64(cfg.WorkStartHour):
			t = atHour(t, cfg.WorkStartHour)
			continue
		}

		if !load.hasCapacity(cfg, DayKey(t), hours) {
			if !nextDay() {
				return time.Time{}, time.Time{}, false
			}
			continue
		}

		end := t.Add(d)
		if dayEnd := atHour(t, cfg.WorkEndHour); end.After(dayEnd) {
			end = dayEnd
			if end.Sub(t) < cfg.MinSlot {
				if !nextDay() {
					return time.Time{}, time.Time{}, false
				}
				continue
			}
		}

		if occupied.IsFree(t, end) {
			return t, end, true
		}
		t = t.Add(cfg.Step)
		attempts++
	}
	return time.Time{}, time.Time{}, false
}

func appendAborted(out []UnplacedTask, tasks []domain.Task, err error) []UnplacedTask {
	for _, t := range tasks {
		out = append(out, UnplacedTask{TaskID: t.ID, Reason: ReasonAborted, Err: err.Error()})
	}
	return out
}
