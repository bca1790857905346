package repository

import (
	"context"
	"fmt"

	"github.com/alexanderramin/polylearner/internal/docstore"
	"github.com/alexanderramin/polylearner/internal/domain"
)

type DocWeeklyGoalRepo struct {
	store docstore.Store
}

func NewWeeklyGoalRepo(store docstore.Store) *DocWeeklyGoalRepo {
	return &DocWeeklyGoalRepo{store: store}
}

func (r *DocWeeklyGoalRepo) Create(ctx context.Context, g *domain.WeeklyGoal) error {
	nowIfZero(&g.CreatedAt)
	if g.TaskIDs == nil {
		g.TaskIDs = []int{}
	}
	return insert(ctx, r.store, CollectionWeeklyGoals, &g.ID, g)
}

func (r *DocWeeklyGoalRepo) GetByID(ctx context.Context, id int) (*domain.WeeklyGoal, error) {
	return getOne[domain.WeeklyGoal](ctx, r.store, CollectionWeeklyGoals, id)
}

func (r *DocWeeklyGoalRepo) List(ctx context.Context) ([]domain.WeeklyGoal, error) {
	docs, err := r.store.Find(ctx, CollectionWeeklyGoals, nil, docstore.FindOptions{
		Sort: []docstore.SortKey{docstore.Asc("week_number")},
	})
	if err != nil {
		return nil, fmt.Errorf("listing weekly goals: %w", err)
	}
	return fromDocs[domain.WeeklyGoal](docs)
}

func (r *DocWeeklyGoalRepo) AddTask(ctx context.Context, goalID, taskID int) error {
	return updateOne(ctx, r.store, CollectionWeeklyGoals, goalID, docstore.AddToSet("task_ids", taskID))
}

func (r *DocWeeklyGoalRepo) SetReview(ctx context.Context, goalID int, review domain.Review) error {
	return updateOne(ctx, r.store, CollectionWeeklyGoals, goalID, docstore.Set("weekly_review", review))
}

type DocWeeklyReviewRepo struct {
	store docstore.Store
}

func NewWeeklyReviewRepo(store docstore.Store) *DocWeeklyReviewRepo {
	return &DocWeeklyReviewRepo{store: store}
}

func (r *DocWeeklyReviewRepo) Create(ctx context.Context, rec *domain.WeeklyReviewRecord) error {
	nowIfZero(&rec.CreatedAt)
	return insert(ctx, r.store, CollectionWeeklyReviews, &rec.ID, rec)
}

func (r *DocWeeklyReviewRepo) ListByGoal(ctx context.Context, goalID int) ([]domain.WeeklyReviewRecord, error) {
	docs, err := r.store.Find(ctx, CollectionWeeklyReviews,
		docstore.Where(docstore.Eq("weekly_goal_id", goalID)), docstore.FindOptions{})
	if err != nil {
		return nil, fmt.Errorf("listing weekly reviews: %w", err)
	}
	return fromDocs[domain.WeeklyReviewRecord](docs)
}

type DocOnboardingGoalRepo struct {
	store docstore.Store
}

func NewOnboardingGoalRepo(store docstore.Store) *DocOnboardingGoalRepo {
	return &DocOnboardingGoalRepo{store: store}
}

func (r *DocOnboardingGoalRepo) Create(ctx context.Context, g *domain.OnboardingGoal) error {
	nowIfZero(&g.CreatedAt)
	return insert(ctx, r.store, CollectionOnboardingGoals, &g.ID, g)
}

func (r *DocOnboardingGoalRepo) List(ctx context.Context) ([]domain.OnboardingGoal, error) {
	docs, err := r.store.Find(ctx, CollectionOnboardingGoals, nil, docstore.FindOptions{
		Sort: []docstore.SortKey{docstore.Desc("created_at")},
	})
	if err != nil {
		return nil, fmt.Errorf("listing onboarding goals: %w", err)
	}
	return fromDocs[domain.OnboardingGoal](docs)
}

type DocSchedulingRunRepo struct {
	store docstore.Store
}

func NewSchedulingRunRepo(store docstore.Store) *DocSchedulingRunRepo {
	return &DocSchedulingRunRepo{store: store}
}

func (r *DocSchedulingRunRepo) Create(ctx context.Context, run *domain.SchedulingRun) error {
	nowIfZero(&run.StartedAt)
	return insert(ctx, r.store, CollectionSchedulingRuns, &run.ID, run)
}

// ListRecent returns the newest runs first.
func (r *DocSchedulingRunRepo) ListRecent(ctx context.Context, limit int) ([]domain.SchedulingRun, error) {
	docs, err := r.store.Find(ctx, CollectionSchedulingRuns, nil, docstore.FindOptions{
		Sort:  []docstore.SortKey{docstore.Desc(docstore.IDField)},
		Limit: limit,
	})
	if err != nil {
		return nil, fmt.Errorf("listing scheduling runs: %w", err)
	}
	return fromDocs[domain.SchedulingRun](docs)
}

var (
	_ TaskRepo           = (*DocTaskRepo)(nil)
	_ WeeklyGoalRepo     = (*DocWeeklyGoalRepo)(nil)
	_ WeeklyReviewRepo   = (*DocWeeklyReviewRepo)(nil)
	_ OnboardingGoalRepo = (*DocOnboardingGoalRepo)(nil)
	_ SchedulingRunRepo  = (*DocSchedulingRunRepo)(nil)
)
