package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/polylearner/internal/docstore"
	"github.com/alexanderramin/polylearner/internal/domain"
	"github.com/alexanderramin/polylearner/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func forEachStore(t *testing.T, fn func(t *testing.T, store docstore.Store)) {
	t.Run("memory", func(t *testing.T) { fn(t, docstore.NewMemoryStore()) })
	t.Run("sqlite", func(t *testing.T) {
		store, _ := testutil.NewTestStore(t)
		fn(t, store)
	})
}

func TestTaskRepo_CreateAssignsSequentialIDs(t *testing.T) {
	forEachStore(t, func(t *testing.T, store docstore.Store) {
		ctx := context.Background()
		repo := NewTaskRepo(store)

		a := testutil.NewTestTask("first")
		b := testutil.NewTestTask("second", testutil.WithCategory(domain.CategoryResearch), testutil.WithHours(2.5))
		require.NoError(t, repo.Create(ctx, a))
		require.NoError(t, repo.Create(ctx, b))

		assert.Equal(t, 1, a.ID)
		assert.Equal(t, 2, b.ID)

		got, err := repo.GetByID(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, "second", got.Title)
		assert.Equal(t, domain.CategoryResearch, got.Category)
		assert.Equal(t, 2.5, got.TimeHours)
		assert.True(t, b.CreatedAt.Equal(got.CreatedAt))
	})
}

func TestTaskRepo_GetByID_NotFound(t *testing.T) {
	forEachStore(t, func(t *testing.T, store docstore.Store) {
		_, err := NewTaskRepo(store).GetByID(context.Background(), 99)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestTaskRepo_ListByIDsAndFind(t *testing.T) {
	forEachStore(t, func(t *testing.T, store docstore.Store) {
		ctx := context.Background()
		repo := NewTaskRepo(store)
		for i, p := range []int{3, 9, 7} {
			task := testutil.NewTestTask("t", testutil.WithPriority(p), testutil.WithHours(float64(i+1)))
			require.NoError(t, repo.Create(ctx, task))
		}

		some, err := repo.ListByIDs(ctx, []int{1, 3})
		require.NoError(t, err)
		require.Len(t, some, 2)
		assert.Equal(t, 1, some[0].ID)
		assert.Equal(t, 3, some[1].ID)

		none, err := repo.ListByIDs(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, none)

		important, err := repo.Find(ctx,
			docstore.Where(docstore.Gte("priority", 7)),
			docstore.FindOptions{Sort: []docstore.SortKey{docstore.Desc("priority")}})
		require.NoError(t, err)
		require.Len(t, important, 2)
		assert.Equal(t, 9, important[0].Priority)
		assert.Equal(t, 7, important[1].Priority)
	})
}

func TestTaskRepo_SchedulingAndReview(t *testing.T) {
	forEachStore(t, func(t *testing.T, store docstore.Store) {
		ctx := context.Background()
		repo := NewTaskRepo(store)
		placed := testutil.NewTestTask("placed")
		open := testutil.NewTestTask("open")
		require.NoError(t, repo.Create(ctx, placed))
		require.NoError(t, repo.Create(ctx, open))

		start := testutil.At(testutil.Monday, 9, 0)
		require.NoError(t, repo.SetCalendarScheduling(ctx, placed.ID, domain.CalendarScheduling{
			Scheduled:   true,
			Events:      []domain.CommittedEvent{{TaskID: placed.ID, EventID: "e1", Start: start, End: start.Add(time.Hour)}},
			RunID:       "run-1",
			AttemptedAt: start,
		}))
		require.NoError(t, repo.SetCalendarScheduling(ctx, open.ID, domain.CalendarScheduling{
			Reason:    "no slot",
			ErrorCode: "no_slot",
		}))

		unscheduled, err := repo.ListUnscheduled(ctx)
		require.NoError(t, err)
		require.Len(t, unscheduled, 1)
		assert.Equal(t, open.ID, unscheduled[0].ID)

		got, err := repo.GetByID(ctx, placed.ID)
		require.NoError(t, err)
		require.NotNil(t, got.CalendarScheduling)
		assert.Equal(t, "e1", got.CalendarScheduling.Events[0].EventID)
		assert.True(t, start.Equal(got.CalendarScheduling.Events[0].Start))

		review := domain.Review{FocusRate: 8, DoneOnTime: domain.DoneOnTimeYes}
		require.NoError(t, repo.SetReview(ctx, open.ID, review))
		got, err = repo.GetByID(ctx, open.ID)
		require.NoError(t, err)
		assert.Equal(t, &review, got.Review)

		assert.ErrorIs(t, repo.SetReview(ctx, 42, review), domain.ErrNotFound)
	})
}

func TestTaskRepo_Delete(t *testing.T) {
	forEachStore(t, func(t *testing.T, store docstore.Store) {
		ctx := context.Background()
		repo := NewTaskRepo(store)
		task := testutil.NewTestTask("gone")
		require.NoError(t, repo.Create(ctx, task))

		require.NoError(t, repo.Delete(ctx, task.ID))
		assert.ErrorIs(t, repo.Delete(ctx, task.ID), domain.ErrNotFound)
	})
}

func TestWeeklyGoalRepo_AddTaskIsIdempotent(t *testing.T) {
	forEachStore(t, func(t *testing.T, store docstore.Store) {
		ctx := context.Background()
		repo := NewWeeklyGoalRepo(store)
		goal := testutil.NewTestWeeklyGoal(3, "Finish the parser")
		require.NoError(t, repo.Create(ctx, goal))

		require.NoError(t, repo.AddTask(ctx, goal.ID, 5))
		require.NoError(t, repo.AddTask(ctx, goal.ID, 5))
		require.NoError(t, repo.AddTask(ctx, goal.ID, 6))

		got, err := repo.GetByID(ctx, goal.ID)
		require.NoError(t, err)
		assert.Equal(t, []int{5, 6}, got.TaskIDs)
		assert.ErrorIs(t, repo.AddTask(ctx, 77, 1), domain.ErrNotFound)
	})
}

func TestWeeklyGoalRepo_ListOrderedByWeek(t *testing.T) {
	forEachStore(t, func(t *testing.T, store docstore.Store) {
		ctx := context.Background()
		repo := NewWeeklyGoalRepo(store)
		require.NoError(t, repo.Create(ctx, testutil.NewTestWeeklyGoal(10, "later")))
		require.NoError(t, repo.Create(ctx, testutil.NewTestWeeklyGoal(2, "earlier")))

		goals, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, goals, 2)
		assert.Equal(t, 2, goals[0].WeekNumber)
		assert.Equal(t, 10, goals[1].WeekNumber)
	})
}

func TestWeeklyReviews(t *testing.T) {
	forEachStore(t, func(t *testing.T, store docstore.Store) {
		ctx := context.Background()
		goals := NewWeeklyGoalRepo(store)
		reviews := NewWeeklyReviewRepo(store)
		goal := testutil.NewTestWeeklyGoal(1, "g")
		require.NoError(t, goals.Create(ctx, goal))

		review := domain.Review{FocusRate: 6, DoneOnTime: domain.DoneOnTimeNo, Notes: "slow start"}
		require.NoError(t, goals.SetReview(ctx, goal.ID, review))
		require.NoError(t, reviews.Create(ctx, &domain.WeeklyReviewRecord{WeeklyGoalID: goal.ID, Review: review}))
		require.NoError(t, reviews.Create(ctx, &domain.WeeklyReviewRecord{WeeklyGoalID: goal.ID + 1, Review: review}))

		got, err := goals.GetByID(ctx, goal.ID)
		require.NoError(t, err)
		assert.Equal(t, &review, got.WeeklyReview)

		history, err := reviews.ListByGoal(ctx, goal.ID)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, "slow start", history[0].Review.Notes)
	})
}

func TestOnboardingGoals_NewestFirst(t *testing.T) {
	forEachStore(t, func(t *testing.T, store docstore.Store) {
		ctx := context.Background()
		repo := NewOnboardingGoalRepo(store)
		older := &domain.OnboardingGoal{Goal: "old", CreatedAt: testutil.Monday}
		newer := &domain.OnboardingGoal{
			Goal:       "new",
			CreatedAt:  testutil.Monday.Add(time.Hour),
			Validation: domain.GoalValidation{IsSpecific: true, Source: "basic", RefinedVersions: []domain.RefinedGoal{{Goal: "new"}}},
		}
		require.NoError(t, repo.Create(ctx, older))
		require.NoError(t, repo.Create(ctx, newer))

		list, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "new", list[0].Goal)
		assert.True(t, list[0].Validation.IsSpecific)
		assert.Equal(t, "new", list[0].Validation.RefinedVersions[0].Goal)
	})
}

func TestSchedulingRuns_ListRecent(t *testing.T) {
	forEachStore(t, func(t *testing.T, store docstore.Store) {
		ctx := context.Background()
		repo := NewSchedulingRunRepo(store)
		for i := 0; i < 3; i++ {
			require.NoError(t, repo.Create(ctx, &domain.SchedulingRun{
				RunID:   string(rune('a' + i)),
				TaskIDs: []int{i},
				Outcome: domain.RunOutcomeOK,
			}))
		}

		runs, err := repo.ListRecent(ctx, 2)
		require.NoError(t, err)
		require.Len(t, runs, 2)
		assert.Equal(t, "c", runs[0].RunID)
		assert.Equal(t, "b", runs[1].RunID)
		assert.False(t, runs[0].StartedAt.IsZero())
	})
}
