package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/polylearner/internal/calendar"
	"github.com/alexanderramin/polylearner/internal/db"
	"github.com/alexanderramin/polylearner/internal/docstore"
	"github.com/alexanderramin/polylearner/internal/domain"
	"github.com/alexanderramin/polylearner/internal/scheduler"
)

const (
	permissionDeniedMessage = "Calendar permission denied. Re-authenticate with `polylearner calendar auth` and try again."
	noAccessMessage         = "No calendar access configured. Run `polylearner calendar auth` to connect a calendar."
	noSlotMessage           = "No free slot found within working hours"
)

type calendarService struct {
	store    docstore.Store
	uow      db.UnitOfWork
	client   calendar.Client
	settings CalendarSettings
	log      *slog.Logger
	observer UseCaseObserver
	now      func() time.Time
}

// NewCalendarService builds the calendar use cases. client may be nil when
// no calendar is connected; runs then record a no-access outcome.
func NewCalendarService(
	store docstore.Store,
	uow db.UnitOfWork,
	client calendar.Client,
	settings CalendarSettings,
	log *slog.Logger,
	observers ...UseCaseObserver,
) CalendarService {
	if settings.Location == nil {
		settings.Location = time.Local
	}
	if settings.LookaheadDays <= 0 {
		settings.LookaheadDays = 7
	}
	return &calendarService{
		store:    store,
		uow:      uow,
		client:   client,
		settings: settings,
		log:      loggerOrDiscard(log),
		observer: useCaseObserverOrNoop(observers),
		now:      time.Now,
	}
}

func (s *calendarService) ListWeekEvents(ctx context.Context, from, to time.Time) ([]domain.ScheduledBlock, error) {
	if s.client == nil {
		return nil, domain.ErrNoCalendarAccess
	}
	if from.IsZero() {
		from = scheduler.WeekStart(s.now().In(s.settings.Location))
	}
	if to.IsZero() {
		to = from.AddDate(0, 0, 7)
	}
	events, err := s.client.ListEvents(ctx, from, to, calendar.DefaultListLimit)
	if err != nil {
		return nil, fmt.Errorf("listing calendar events: %w", err)
	}
	blocks := make([]domain.ScheduledBlock, 0, len(events))
	for _, e := range events {
		blocks = append(blocks, calendar.EventBlock(e))
	}
	return blocks, nil
}

func (s *calendarService) ScheduleUnscheduled(ctx context.Context, trigger string) (*AutoScheduleResult, error) {
	tasks, err := reposFor(s.store).tasks.ListUnscheduled(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing unscheduled tasks: %w", err)
	}
	return s.AutoSchedule(ctx, taskIDs(tasks), trigger)
}

func (s *calendarService) ListRuns(ctx context.Context, limit int) ([]domain.SchedulingRun, error) {
	return reposFor(s.store).runs.ListRecent(ctx, limit)
}

func (s *calendarService) AutoSchedule(ctx context.Context, ids []int, trigger string) (result *AutoScheduleResult, err error) {
	startedAt := time.Now()
	fields := map[string]any{"trigger": trigger, "task_count": len(ids)}
	defer func() {
		if result != nil {
			fields["outcome"] = result.Outcome
			fields["placed"] = len(result.Placed)
			fields["unplaced"] = len(result.Unplaced)
		}
		observe(ctx, s.observer, "calendar.auto_schedule", startedAt, &err, fields)
	}()

	result = &AutoScheduleResult{
		RunID:    uuid.NewString(),
		Placed:   []domain.CommittedEvent{},
		Unplaced: []scheduler.UnplacedTask{},
	}
	if len(ids) == 0 {
		result.Outcome = domain.RunOutcomeOK
		return result, nil
	}

	tasks, err := reposFor(s.store).tasks.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("loading tasks to schedule: %w", err)
	}
	log := s.log.With(slog.String("run_id", result.RunID), slog.String("trigger", trigger))
	now := s.now().In(s.settings.Location)
	run := &domain.SchedulingRun{
		RunID:     result.RunID,
		Trigger:   trigger,
		TaskIDs:   taskIDs(tasks),
		StartedAt: now,
	}

	var sched scheduler.CalendarScheduleResult
	switch {
	case s.client == nil:
		sched.Err = domain.ErrNoCalendarAccess
		sched.Unplaced = abortAll(tasks, sched.Err)
	default:
		busy, listErr := s.busy(ctx, now, log)
		if listErr != nil {
			sched.Err = listErr
			sched.Unplaced = abortAll(tasks, listErr)
			break
		}
		cs := scheduler.NewCalendarScheduler(s.settings.Load, calendar.NewCommitter(s.client, log), log)
		sched = cs.Schedule(ctx, tasks, busy, now)
	}

	if sched.Err != nil && !calendar.IsPermissionDenied(sched.Err) && !errors.Is(sched.Err, domain.ErrNoCalendarAccess) {
		return nil, fmt.Errorf("scheduling tasks: %w", sched.Err)
	}

	result.Placed = append(result.Placed, sched.Placed...)
	result.Unplaced = append(result.Unplaced, sched.Unplaced...)
	switch {
	case sched.PermissionDenied():
		result.Outcome = domain.RunOutcomePermissionDenied
		result.Message = permissionDeniedMessage
	case errors.Is(sched.Err, domain.ErrNoCalendarAccess):
		result.Outcome = domain.RunOutcomeNoAccess
		result.Message = noAccessMessage
	case len(result.Unplaced) > 0:
		result.Outcome = domain.RunOutcomePartial
	default:
		result.Outcome = domain.RunOutcomeOK
	}

	run.Placed = len(result.Placed)
	run.Unplaced = len(result.Unplaced)
	run.Outcome = result.Outcome
	run.FinishedAt = s.now().In(s.settings.Location)

	err = withinTx(ctx, s.uow, func(ctx context.Context, r repos) error {
		for id, cs := range outcomes(result, now) {
			if err := r.tasks.SetCalendarScheduling(ctx, id, cs); err != nil {
				return fmt.Errorf("recording scheduling outcome for task %d: %w", id, err)
			}
		}
		return r.runs.Create(ctx, run)
	})
	if err != nil {
		return nil, err
	}

	log.Info("auto-schedule finished",
		slog.String("outcome", result.Outcome),
		slog.Int("placed", run.Placed),
		slog.Int("unplaced", run.Unplaced))
	return result, nil
}

// busy lists the lookahead window. Permission denial is returned; any other
// listing failure degrades to an empty busy set.
func (s *calendarService) busy(ctx context.Context, now time.Time, log *slog.Logger) ([]domain.Interval, error) {
	events, err := s.client.ListEvents(ctx, now, now.AddDate(0, 0, s.busyWindowDays()), calendar.DefaultListLimit)
	if err != nil {
		if calendar.IsPermissionDenied(err) {
			log.Error("calendar permission denied while listing events", slog.Any("err", err))
			return nil, err
		}
		log.Warn("listing calendar events failed; scheduling without busy times", slog.Any("err", err))
		return nil, nil
	}
	return calendar.BusyIntervals(events), nil
}

// busyWindowDays covers every day the load-aware scheduler may advance to,
// including the full last day of its horizon.
func (s *calendarService) busyWindowDays() int {
	return max(s.settings.LookaheadDays, s.settings.Load.HorizonDays+1)
}

func abortAll(tasks []domain.Task, err error) []scheduler.UnplacedTask {
	out := make([]scheduler.UnplacedTask, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, scheduler.UnplacedTask{TaskID: t.ID, Reason: scheduler.ReasonAborted, Err: err.Error()})
	}
	return out
}

// outcomes maps each task touched by the run to the record stored on it.
func outcomes(result *AutoScheduleResult, at time.Time) map[int]domain.CalendarScheduling {
	out := map[int]domain.CalendarScheduling{}
	for _, ev := range result.Placed {
		cs := out[ev.TaskID]
		cs.Scheduled = true
		cs.Events = append(cs.Events, ev)
		cs.RunID = result.RunID
		cs.AttemptedAt = at
		out[ev.TaskID] = cs
	}
	for _, u := range result.Unplaced {
		cs := domain.CalendarScheduling{RunID: result.RunID, AttemptedAt: at}
		switch {
		case result.Outcome == domain.RunOutcomePermissionDenied:
			cs.Reason = permissionDeniedMessage
			cs.ErrorCode = domain.RunOutcomePermissionDenied
		case result.Outcome == domain.RunOutcomeNoAccess:
			cs.Reason = noAccessMessage
			cs.ErrorCode = domain.RunOutcomeNoAccess
		case u.Reason == scheduler.ReasonNoSlot:
			cs.Reason = noSlotMessage
			cs.ErrorCode = string(u.Reason)
		default:
			cs.Reason = u.Err
			cs.ErrorCode = string(u.Reason)
		}
		out[u.TaskID] = cs
	}
	return out
}
