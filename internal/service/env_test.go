package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/polylearner/internal/calendar"
	"github.com/alexanderramin/polylearner/internal/db"
	"github.com/alexanderramin/polylearner/internal/docstore"
	"github.com/alexanderramin/polylearner/internal/domain"
	"github.com/alexanderramin/polylearner/internal/intelligence"
	"github.com/alexanderramin/polylearner/internal/scheduler"
	"github.com/alexanderramin/polylearner/internal/testutil"
)

// monday8am is before the working day starts, so runs begin at 09:00.
var monday8am = testutil.At(testutil.Monday, 8, 0)

type testEnv struct {
	store    *docstore.SQLiteStore
	uow      db.UnitOfWork
	cal      *calendar.MemoryCalendar
	llm      *testutil.FakeLLM
	calendar CalendarService
	tasks    TaskService
	goals    WeeklyGoalService
	onboard  OnboardingService
	schedule ScheduleService
	analysis AnalyticsService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store, database := testutil.NewTestStore(t)
	e := &testEnv{
		store: store,
		uow:   testutil.NewTestUoW(database),
		cal:   calendar.NewMemoryCalendar(),
		llm:   testutil.NewFakeLLM(),
	}
	e.build(e.cal)
	return e
}

// build wires every service around client, which may be nil.
func (e *testEnv) build(client calendar.Client) {
	log := testutil.DiscardLogger()
	settings := DefaultCalendarSettings()
	settings.Location = time.UTC

	cal := NewCalendarService(e.store, e.uow, client, settings, log)
	cal.(*calendarService).now = func() time.Time { return monday8am }
	e.calendar = cal

	grouping := intelligence.NewGroupingService(e.llm, log)
	recommend := intelligence.NewRecommendationService(e.llm, log)
	embeddings := intelligence.NewEmbeddingService(e.llm, log)
	planner := intelligence.NewScheduleService(e.llm, grouping, scheduler.NewScheduleValidator(log), log)

	e.tasks = NewTaskService(e.store, e.uow, cal, log)
	e.goals = NewWeeklyGoalService(e.store, e.uow)
	e.onboard = NewOnboardingService(e.store, e.uow, intelligence.NewGoalService(e.llm, log), cal, log)

	sched := NewScheduleService(e.store, planner, recommend, embeddings, client, time.UTC, log)
	sched.(*scheduleService).now = func() time.Time { return monday8am }
	e.schedule = sched

	analysis := NewAnalyticsService(e.store,
		intelligence.NewInsightsService(e.llm, log),
		grouping,
		embeddings,
		intelligence.NewQueryService(e.llm, e.store, log),
		settings)
	analysis.(*analyticsService).now = func() time.Time { return monday8am }
	e.analysis = analysis
}

// seed stores tasks directly, bypassing the service.
func (e *testEnv) seed(t *testing.T, tasks ...*domain.Task) []int {
	t.Helper()
	r := reposFor(e.store)
	ids := make([]int, 0, len(tasks))
	for _, task := range tasks {
		require.NoError(t, r.tasks.Create(context.Background(), task))
		ids = append(ids, task.ID)
	}
	return ids
}

func (e *testEnv) task(t *testing.T, id int) *domain.Task {
	t.Helper()
	task, err := reposFor(e.store).tasks.GetByID(context.Background(), id)
	require.NoError(t, err)
	return task
}

// recordingObserver keeps every use-case event.
type recordingObserver struct {
	events []UseCaseEvent
}

func (o *recordingObserver) ObserveUseCase(_ context.Context, ev UseCaseEvent) {
	o.events = append(o.events, ev)
}
