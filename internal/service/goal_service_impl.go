package service

import (
	"context"
	"strings"
	"time"

	"github.com/alexanderramin/polylearner/internal/db"
	"github.com/alexanderramin/polylearner/internal/docstore"
	"github.com/alexanderramin/polylearner/internal/domain"
)

type weeklyGoalService struct {
	store    docstore.Store
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewWeeklyGoalService(store docstore.Store, uow db.UnitOfWork, observers ...UseCaseObserver) WeeklyGoalService {
	return &weeklyGoalService{store: store, uow: uow, observer: useCaseObserverOrNoop(observers)}
}

func (s *weeklyGoalService) Create(ctx context.Context, weekNumber int, goal string) (g *domain.WeeklyGoal, err error) {
	startedAt := time.Now()
	defer observe(ctx, s.observer, "weekly_goal.create", startedAt, &err, map[string]any{"week_number": weekNumber})

	g = &domain.WeeklyGoal{WeekNumber: weekNumber, Goal: strings.TrimSpace(goal)}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	if err := reposFor(s.store).goals.Create(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *weeklyGoalService) List(ctx context.Context) ([]domain.WeeklyGoal, error) {
	return reposFor(s.store).goals.List(ctx)
}

// AddReview stores the review on the goal and keeps a standalone copy.
func (s *weeklyGoalService) AddReview(ctx context.Context, goalID int, review domain.Review) (g *domain.WeeklyGoal, err error) {
	startedAt := time.Now()
	defer observe(ctx, s.observer, "weekly_goal.review", startedAt, &err, map[string]any{"weekly_goal_id": goalID})

	if err := review.Validate(); err != nil {
		return nil, err
	}
	err = withinTx(ctx, s.uow, func(ctx context.Context, r repos) error {
		if err := r.goals.SetReview(ctx, goalID, review); err != nil {
			return err
		}
		if err := r.reviews.Create(ctx, &domain.WeeklyReviewRecord{WeeklyGoalID: goalID, Review: review}); err != nil {
			return err
		}
		var getErr error
		g, getErr = r.goals.GetByID(ctx, goalID)
		return getErr
	})
	if err != nil {
		return nil, err
	}
	return g, nil
}
