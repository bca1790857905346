package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alexanderramin/polylearner/internal/db"
	"github.com/alexanderramin/polylearner/internal/docstore"
	"github.com/alexanderramin/polylearner/internal/domain"
)

// AutoScheduler places stored tasks on the calendar.
type AutoScheduler interface {
	AutoSchedule(ctx context.Context, taskIDs []int, trigger string) (*AutoScheduleResult, error)
}

type taskService struct {
	store     docstore.Store
	uow       db.UnitOfWork
	scheduler AutoScheduler
	log       *slog.Logger
	observer  UseCaseObserver
}

// NewTaskService builds the task use cases. scheduler may be nil, in which
// case auto-scheduling requests are ignored.
func NewTaskService(store docstore.Store, uow db.UnitOfWork, scheduler AutoScheduler, log *slog.Logger, observers ...UseCaseObserver) TaskService {
	return &taskService{
		store:     store,
		uow:       uow,
		scheduler: scheduler,
		log:       loggerOrDiscard(log),
		observer:  useCaseObserverOrNoop(observers),
	}
}

func (s *taskService) Create(ctx context.Context, t *domain.Task, autoSchedule bool) (created *domain.Task, err error) {
	startedAt := time.Now()
	fields := map[string]any{"auto_schedule": autoSchedule}
	defer func() {
		if created != nil {
			fields["task_id"] = created.ID
		}
		observe(ctx, s.observer, "task.create", startedAt, &err, fields)
	}()

	applyTaskDefaults(t)
	if err := t.Validate(); err != nil {
		return nil, err
	}

	err = withinTx(ctx, s.uow, func(ctx context.Context, r repos) error {
		return createTask(ctx, r, t)
	})
	if err != nil {
		return nil, err
	}

	if autoSchedule && s.scheduler != nil {
		if _, err := s.scheduler.AutoSchedule(ctx, []int{t.ID}, TriggerTaskCreate); err != nil {
			// The task is stored; a failed run leaves it unscheduled.
			s.log.Warn("auto-scheduling new task failed", slog.Int("task_id", t.ID), slog.Any("err", err))
		}
		return s.GetByID(ctx, t.ID)
	}
	return t, nil
}

func applyTaskDefaults(t *domain.Task) {
	if t.Priority == 0 {
		t.Priority = domain.DefaultPriority
	}
	if t.Artifact == "" {
		t.Artifact = domain.ArtifactNotes
	}
}

// createTask inserts t and registers it under its weekly goal.
func createTask(ctx context.Context, r repos, t *domain.Task) error {
	if t.WeeklyGoalID != nil {
		if _, err := r.goals.GetByID(ctx, *t.WeeklyGoalID); err != nil {
			return fmt.Errorf("weekly goal %d: %w", *t.WeeklyGoalID, err)
		}
	}
	if err := r.tasks.Create(ctx, t); err != nil {
		return fmt.Errorf("creating task: %w", err)
	}
	if t.WeeklyGoalID != nil {
		if err := r.goals.AddTask(ctx, *t.WeeklyGoalID, t.ID); err != nil {
			return fmt.Errorf("linking task to weekly goal: %w", err)
		}
	}
	return nil
}

func (s *taskService) GetByID(ctx context.Context, id int) (*domain.Task, error) {
	return reposFor(s.store).tasks.GetByID(ctx, id)
}

func (s *taskService) List(ctx context.Context) ([]domain.Task, error) {
	return reposFor(s.store).tasks.List(ctx)
}

func (s *taskService) Delete(ctx context.Context, id int) (err error) {
	startedAt := time.Now()
	defer observe(ctx, s.observer, "task.delete", startedAt, &err, map[string]any{"task_id": id})
	return reposFor(s.store).tasks.Delete(ctx, id)
}

func (s *taskService) AddReview(ctx context.Context, id int, review domain.Review) (task *domain.Task, err error) {
	startedAt := time.Now()
	defer observe(ctx, s.observer, "task.review", startedAt, &err, map[string]any{"task_id": id})

	if err := review.Validate(); err != nil {
		return nil, err
	}
	err = withinTx(ctx, s.uow, func(ctx context.Context, r repos) error {
		if err := r.tasks.SetReview(ctx, id, review); err != nil {
			return err
		}
		var getErr error
		task, getErr = r.tasks.GetByID(ctx, id)
		return getErr
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}
