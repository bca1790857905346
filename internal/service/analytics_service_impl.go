package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/polylearner/internal/docstore"
	"github.com/alexanderramin/polylearner/internal/domain"
	"github.com/alexanderramin/polylearner/internal/intelligence"
	"github.com/alexanderramin/polylearner/internal/scheduler"
)

// ErrEmptyQuestion is returned for a blank analytics query.
var ErrEmptyQuestion = errors.New("question is required")

type analyticsService struct {
	store      docstore.Store
	insights   intelligence.InsightsService
	grouping   intelligence.GroupingService
	embeddings intelligence.EmbeddingService
	query      intelligence.QueryService
	load       scheduler.LoadConfig
	location   *time.Location
	observer   UseCaseObserver
	now        func() time.Time
}

func NewAnalyticsService(
	store docstore.Store,
	insights intelligence.InsightsService,
	grouping intelligence.GroupingService,
	embeddings intelligence.EmbeddingService,
	query intelligence.QueryService,
	settings CalendarSettings,
	observers ...UseCaseObserver,
) AnalyticsService {
	if settings.Location == nil {
		settings.Location = time.Local
	}
	return &analyticsService{
		store:      store,
		insights:   insights,
		grouping:   grouping,
		embeddings: embeddings,
		query:      query,
		load:       settings.Load,
		location:   settings.Location,
		observer:   useCaseObserverOrNoop(observers),
		now:        time.Now,
	}
}

func (s *analyticsService) tasks(ctx context.Context) ([]domain.Task, error) {
	tasks, err := reposFor(s.store).tasks.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading tasks: %w", err)
	}
	return tasks, nil
}

func (s *analyticsService) Patterns(ctx context.Context) (out *intelligence.PatternAnalysis, err error) {
	startedAt := time.Now()
	defer observe(ctx, s.observer, "analytics.patterns", startedAt, &err, nil)

	tasks, err := s.tasks(ctx)
	if err != nil {
		return nil, err
	}
	analysis := s.insights.AnalyzePatterns(ctx, tasks)
	return &analysis, nil
}

// LoadRisk compares the hours of tasks not yet placed on the calendar with
// the weekday capacity left in the week.
func (s *analyticsService) LoadRisk(ctx context.Context, weekStart time.Time) (*scheduler.LoadRiskResult, error) {
	tasks, err := s.tasks(ctx)
	if err != nil {
		return nil, err
	}
	var pending float64
	for _, t := range tasks {
		if !t.IsScheduled() {
			pending += t.TimeHours
		}
	}
	now := s.now().In(s.location)
	risk := scheduler.ComputeLoadRisk(scheduler.LoadRiskInput{
		Now:           now,
		WeekStart:     resolveWeekStart(weekStart, now),
		PlannedHours:  pending,
		MaxDailyHours: s.load.MaxDailyHours,
	})
	return &risk, nil
}

func (s *analyticsService) Groups(ctx context.Context) (out *GroupsResult, err error) {
	startedAt := time.Now()
	defer observe(ctx, s.observer, "analytics.groups", startedAt, &err, nil)

	tasks, err := s.tasks(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[int]domain.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}
	out = &GroupsResult{Groups: []GroupSummary{}}
	if len(tasks) == 0 {
		return out, nil
	}
	for _, g := range s.grouping.GroupTasks(ctx, tasks) {
		out.Groups = append(out.Groups, GroupSummary{
			TaskGroup:  g,
			TotalHours: round2(g.TotalHours(byID)),
			TaskCount:  len(g.TaskIDs),
		})
	}
	return out, nil
}

func (s *analyticsService) Embeddings(ctx context.Context) (out *EmbeddingsResult, err error) {
	startedAt := time.Now()
	defer observe(ctx, s.observer, "analytics.embeddings", startedAt, &err, nil)

	tasks, err := s.tasks(ctx)
	if err != nil {
		return nil, err
	}
	out = &EmbeddingsResult{TotalTasks: len(tasks), Vectors: map[int][]float64{}}
	if len(tasks) == 0 {
		return out, nil
	}
	out.Vectors, out.Source = s.embeddings.Embed(ctx, tasks)
	for _, v := range out.Vectors {
		out.Dimension = len(v)
		break
	}
	return out, nil
}

func (s *analyticsService) Query(ctx context.Context, question string) (out *intelligence.QueryResult, err error) {
	startedAt := time.Now()
	fields := map[string]any{}
	defer func() {
		if out != nil {
			fields["source"] = out.Source
		}
		observe(ctx, s.observer, "analytics.query", startedAt, &err, fields)
	}()

	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}
	return s.query.Ask(ctx, question)
}
