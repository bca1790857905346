package repository

import (
	"context"

	"github.com/alexanderramin/polylearner/internal/docstore"
	"github.com/alexanderramin/polylearner/internal/domain"
)

// Collection names in the document store.
const (
	CollectionTasks           = "tasks"
	CollectionWeeklyGoals     = "weekly_goals"
	CollectionWeeklyReviews   = "weekly_reviews"
	CollectionOnboardingGoals = "onboarding_goals"
	CollectionSchedulingRuns  = "scheduling_runs"
)

type TaskRepo interface {
	// Create assigns the next id when t.ID is zero.
	Create(ctx context.Context, t *domain.Task) error
	GetByID(ctx context.Context, id int) (*domain.Task, error)
	List(ctx context.Context) ([]domain.Task, error)
	ListByIDs(ctx context.Context, ids []int) ([]domain.Task, error)
	// ListUnscheduled returns tasks whose last calendar run did not place them.
	ListUnscheduled(ctx context.Context) ([]domain.Task, error)
	Find(ctx context.Context, filter docstore.Filter, opts docstore.FindOptions) ([]domain.Task, error)
	SetReview(ctx context.Context, id int, r domain.Review) error
	SetCalendarScheduling(ctx context.Context, id int, cs domain.CalendarScheduling) error
	Delete(ctx context.Context, id int) error
}

type WeeklyGoalRepo interface {
	Create(ctx context.Context, g *domain.WeeklyGoal) error
	GetByID(ctx context.Context, id int) (*domain.WeeklyGoal, error)
	List(ctx context.Context) ([]domain.WeeklyGoal, error)
	AddTask(ctx context.Context, goalID, taskID int) error
	SetReview(ctx context.Context, goalID int, r domain.Review) error
}

type WeeklyReviewRepo interface {
	Create(ctx context.Context, r *domain.WeeklyReviewRecord) error
	ListByGoal(ctx context.Context, goalID int) ([]domain.WeeklyReviewRecord, error)
}

type OnboardingGoalRepo interface {
	Create(ctx context.Context, g *domain.OnboardingGoal) error
	List(ctx context.Context) ([]domain.OnboardingGoal, error)
}

type SchedulingRunRepo interface {
	Create(ctx context.Context, r *domain.SchedulingRun) error
	ListRecent(ctx context.Context, limit int) ([]domain.SchedulingRun, error)
}
