package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/alexanderramin/polylearner/internal/db"
	"github.com/alexanderramin/polylearner/internal/docstore"
	"github.com/alexanderramin/polylearner/internal/domain"
	"github.com/alexanderramin/polylearner/internal/repository"
	"github.com/alexanderramin/polylearner/internal/scheduler"
)

// repos bundles the repositories of one store so a use case reads and
// writes through the same connection or transaction.
type repos struct {
	tasks      repository.TaskRepo
	goals      repository.WeeklyGoalRepo
	reviews    repository.WeeklyReviewRepo
	onboarding repository.OnboardingGoalRepo
	runs       repository.SchedulingRunRepo
}

func reposFor(store docstore.Store) repos {
	return repos{
		tasks:      repository.NewTaskRepo(store),
		goals:      repository.NewWeeklyGoalRepo(store),
		reviews:    repository.NewWeeklyReviewRepo(store),
		onboarding: repository.NewOnboardingGoalRepo(store),
		runs:       repository.NewSchedulingRunRepo(store),
	}
}

// withinTx runs fn with repositories bound to a single transaction.
func withinTx(ctx context.Context, uow db.UnitOfWork, fn func(ctx context.Context, r repos) error) error {
	return uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return fn(ctx, reposFor(docstore.NewSQLiteStore(tx)))
	})
}

func loggerOrDiscard(log *slog.Logger) *slog.Logger {
	if log == nil {
		return slog.New(slog.DiscardHandler)
	}
	return log
}

// resolveWeekStart returns weekStart, or Monday 00:00 of now's week when
// weekStart is zero.
func resolveWeekStart(weekStart, now time.Time) time.Time {
	if weekStart.IsZero() {
		return scheduler.WeekStart(now)
	}
	return weekStart
}

func totalTaskHours(tasks []domain.Task) float64 {
	var sum float64
	for _, t := range tasks {
		sum += t.TimeHours
	}
	return sum
}

func totalBlockHours(blocks []domain.ScheduledBlock) float64 {
	var sum float64
	for _, b := range blocks {
		sum += b.DurationHours
	}
	return sum
}

func taskIDs(tasks []domain.Task) []int {
	ids := make([]int, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	return ids
}
