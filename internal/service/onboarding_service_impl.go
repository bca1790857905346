package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alexanderramin/polylearner/internal/db"
	"github.com/alexanderramin/polylearner/internal/docstore"
	"github.com/alexanderramin/polylearner/internal/domain"
	"github.com/alexanderramin/polylearner/internal/intelligence"
)

// ErrEmptyGoal is returned when an onboarding goal is blank.
var ErrEmptyGoal = errors.New("goal is required")

type onboardingService struct {
	store     docstore.Store
	uow       db.UnitOfWork
	goals     intelligence.GoalService
	scheduler AutoScheduler
	log       *slog.Logger
	observer  UseCaseObserver
}

func NewOnboardingService(
	store docstore.Store,
	uow db.UnitOfWork,
	goals intelligence.GoalService,
	scheduler AutoScheduler,
	log *slog.Logger,
	observers ...UseCaseObserver,
) OnboardingService {
	return &onboardingService{
		store:     store,
		uow:       uow,
		goals:     goals,
		scheduler: scheduler,
		log:       loggerOrDiscard(log),
		observer:  useCaseObserverOrNoop(observers),
	}
}

func (s *onboardingService) ValidateGoal(ctx context.Context, goal string) (og *domain.OnboardingGoal, err error) {
	startedAt := time.Now()
	fields := map[string]any{}
	defer func() {
		if og != nil {
			fields["source"] = og.Validation.Source
		}
		observe(ctx, s.observer, "onboarding.validate_goal", startedAt, &err, fields)
	}()

	goal = strings.TrimSpace(goal)
	if goal == "" {
		return nil, ErrEmptyGoal
	}
	og = &domain.OnboardingGoal{Goal: goal, Validation: s.goals.ValidateGoal(ctx, goal)}
	if err := reposFor(s.store).onboarding.Create(ctx, og); err != nil {
		return nil, fmt.Errorf("storing onboarding goal: %w", err)
	}
	return og, nil
}

func (s *onboardingService) SuggestTasks(ctx context.Context, goal string) intelligence.SuggestionResult {
	return s.goals.SuggestTasks(ctx, strings.TrimSpace(goal))
}

// CreateTasks stores every valid suggestion in one transaction and, when
// asked, places the whole batch in a single calendar run.
func (s *onboardingService) CreateTasks(
	ctx context.Context,
	goal string,
	suggestions []intelligence.SuggestedTask,
	autoSchedule bool,
) (res *BatchCreateResult, err error) {
	startedAt := time.Now()
	fields := map[string]any{"suggestions": len(suggestions), "auto_schedule": autoSchedule}
	defer func() {
		if res != nil {
			fields["created"] = len(res.Tasks)
		}
		observe(ctx, s.observer, "onboarding.create_tasks", startedAt, &err, fields)
	}()

	res = &BatchCreateResult{Tasks: []domain.Task{}}
	err = withinTx(ctx, s.uow, func(ctx context.Context, r repos) error {
		for i, sug := range suggestions {
			t := sug.Task()
			if t.Goal == "" {
				t.Goal = goal
			}
			applyTaskDefaults(&t)
			if err := t.Validate(); err != nil {
				s.log.Warn("skipping invalid suggestion", slog.Int("index", i), slog.Any("err", err))
				continue
			}
			if err := createTask(ctx, r, &t); err != nil {
				return err
			}
			res.Tasks = append(res.Tasks, t)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !autoSchedule || s.scheduler == nil || len(res.Tasks) == 0 {
		return res, nil
	}
	run, schedErr := s.scheduler.AutoSchedule(ctx, taskIDs(res.Tasks), TriggerOnboarding)
	if schedErr != nil {
		s.log.Warn("auto-scheduling onboarding tasks failed", slog.Any("err", schedErr))
		return res, nil
	}
	res.Scheduling = run

	refreshed, err := reposFor(s.store).tasks.ListByIDs(ctx, taskIDs(res.Tasks))
	if err != nil {
		return nil, fmt.Errorf("reloading scheduled tasks: %w", err)
	}
	res.Tasks = refreshed
	return res, nil
}

func (s *onboardingService) List(ctx context.Context) ([]domain.OnboardingGoal, error) {
	return reposFor(s.store).onboarding.List(ctx)
}
