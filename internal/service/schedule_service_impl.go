package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/alexanderramin/polylearner/internal/calendar"
	"github.com/alexanderramin/polylearner/internal/docstore"
	"github.com/alexanderramin/polylearner/internal/domain"
	"github.com/alexanderramin/polylearner/internal/export"
	"github.com/alexanderramin/polylearner/internal/intelligence"
	"github.com/alexanderramin/polylearner/internal/scheduler"
)

// ErrNoTasks is returned when a use case needs at least one stored task.
var ErrNoTasks = errors.New("no tasks found to schedule")

const (
	recommendIntelligent = "Use intelligent scheduling"
	recommendSimilar     = "Schedules are similar"
)

type scheduleService struct {
	store      docstore.Store
	planner    intelligence.ScheduleService
	recommend  intelligence.RecommendationService
	embeddings intelligence.EmbeddingService
	client     calendar.Client
	location   *time.Location
	log        *slog.Logger
	observer   UseCaseObserver
	now        func() time.Time
}

// NewScheduleService builds the weekly schedule use cases. client may be
// nil; committing events then fails with domain.ErrNoCalendarAccess.
func NewScheduleService(
	store docstore.Store,
	planner intelligence.ScheduleService,
	recommend intelligence.RecommendationService,
	embeddings intelligence.EmbeddingService,
	client calendar.Client,
	location *time.Location,
	log *slog.Logger,
	observers ...UseCaseObserver,
) ScheduleService {
	if location == nil {
		location = time.Local
	}
	return &scheduleService{
		store:      store,
		planner:    planner,
		recommend:  recommend,
		embeddings: embeddings,
		client:     client,
		location:   location,
		log:        loggerOrDiscard(log),
		observer:   useCaseObserverOrNoop(observers),
		now:        time.Now,
	}
}

func (s *scheduleService) weekStart(req ScheduleRequest) time.Time {
	return resolveWeekStart(req.WeekStart, s.now().In(s.location))
}

func (s *scheduleService) tasks(ctx context.Context) ([]domain.Task, error) {
	tasks, err := reposFor(s.store).tasks.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading tasks: %w", err)
	}
	return tasks, nil
}

func (s *scheduleService) basic(ctx context.Context, req ScheduleRequest) ([]domain.Task, []domain.ScheduledBlock, time.Time, error) {
	tasks, err := s.tasks(ctx)
	if err != nil {
		return nil, nil, time.Time{}, err
	}
	week := s.weekStart(req)
	blocks, err := scheduler.PackSequential(tasks, week, req.DailyStart, req.DailyEnd, scheduler.PlainPack())
	if err != nil {
		return nil, nil, time.Time{}, err
	}
	return tasks, blocks, week, nil
}

// Optimized packs every task sequentially and scores it with the legacy
// switch ratio.
func (s *scheduleService) Optimized(ctx context.Context, req ScheduleRequest) (out *OptimizedSchedule, err error) {
	startedAt := time.Now()
	defer observe(ctx, s.observer, "schedule.optimized", startedAt, &err, nil)

	tasks, blocks, week, err := s.basic(ctx, req)
	if err != nil {
		return nil, err
	}
	return &OptimizedSchedule{
		WeekStart:         week,
		Blocks:            blocks,
		Recommendations:   s.recommend.Recommend(ctx, tasks),
		TotalHours:        totalTaskHours(tasks),
		CognitiveTaxScore: scheduler.SwitchRatio(blocks),
	}, nil
}

func (s *scheduleService) plan(ctx context.Context, req IntelligentRequest) ([]domain.Task, *intelligence.SchedulePlan, time.Time, error) {
	tasks, err := s.tasks(ctx)
	if err != nil {
		return nil, nil, time.Time{}, err
	}
	week := s.weekStart(req.ScheduleRequest)
	plan, err := s.planner.Plan(ctx, tasks, week, req.DailyStart, req.DailyEnd, req.Preferences)
	if err != nil {
		return nil, nil, time.Time{}, err
	}
	return tasks, plan, week, nil
}

func (s *scheduleService) Intelligent(ctx context.Context, req IntelligentRequest) (out *IntelligentSchedule, err error) {
	startedAt := time.Now()
	fields := map[string]any{}
	defer func() {
		if out != nil {
			fields["source"] = out.Plan.Source
			fields["blocks"] = len(out.Plan.Blocks)
		}
		observe(ctx, s.observer, "schedule.intelligent", startedAt, &err, fields)
	}()

	tasks, plan, week, err := s.plan(ctx, req)
	if err != nil {
		return nil, err
	}
	out = &IntelligentSchedule{
		WeekStart:       week,
		Plan:            plan,
		Metrics:         scheduler.CognitiveTax(plan.Blocks).Rounded(),
		TotalHours:      round2(totalBlockHours(plan.Blocks)),
		Recommendations: s.recommend.Recommend(ctx, tasks),
	}
	if req.IncludeEmbeddings && len(tasks) > 0 {
		vectors, source := s.embeddings.Embed(ctx, tasks)
		out.EmbeddingSource = source
		out.EmbeddingSamples = embeddingSamples(plan.Blocks, vectors)
		for _, v := range vectors {
			out.EmbeddingDimension = len(v)
			break
		}
	}
	return out, nil
}

// embeddingSamples keeps one sample per scheduled task, in block order.
func embeddingSamples(blocks []domain.ScheduledBlock, vectors map[int][]float64) []EmbeddingSample {
	var out []EmbeddingSample
	seen := map[int]bool{}
	for _, b := range blocks {
		v, ok := vectors[b.TaskID]
		if !ok || seen[b.TaskID] {
			continue
		}
		seen[b.TaskID] = true
		n := min(EmbeddingSampleDims, len(v))
		out = append(out, EmbeddingSample{TaskID: b.TaskID, Vector: append([]float64(nil), v[:n]...)})
	}
	return out
}

func (s *scheduleService) CompareCognitiveTax(ctx context.Context, req IntelligentRequest) (out *TaxComparison, err error) {
	startedAt := time.Now()
	defer observe(ctx, s.observer, "schedule.compare", startedAt, &err, nil)

	_, basic, _, err := s.basic(ctx, req.ScheduleRequest)
	if err != nil {
		return nil, err
	}
	_, plan, _, err := s.plan(ctx, req)
	if err != nil {
		return nil, err
	}

	basicMetrics := scheduler.CognitiveTax(basic)
	smartMetrics := scheduler.CognitiveTax(plan.Blocks)
	imp := scheduler.CompareTax(basicMetrics, smartMetrics)

	out = &TaxComparison{
		Basic:          ScheduleSummary{Metrics: basicMetrics.Rounded(), Blocks: len(basic)},
		Intelligent:    ScheduleSummary{Metrics: smartMetrics.Rounded(), Blocks: len(plan.Blocks)},
		Improvement:    scheduler.Improvement{Absolute: roundTo(imp.Absolute, 3), Percent: roundTo(imp.Percent, 1)},
		Recommendation: recommendSimilar,
	}
	if imp.Absolute > 0 {
		out.Recommendation = recommendIntelligent
	}
	return out, nil
}

func (s *scheduleService) ExportICS(ctx context.Context, req ScheduleRequest) (_ []byte, err error) {
	startedAt := time.Now()
	defer observe(ctx, s.observer, "schedule.export_ics", startedAt, &err, nil)

	_, blocks, _, err := s.basic(ctx, req)
	if err != nil {
		return nil, err
	}
	return export.ICS(blocks, s.now()), nil
}

// CommitIntelligent plans the week and creates one calendar event per
// block. A failed block is recorded and the rest continue, except on a
// permission denial, which stops the run.
func (s *scheduleService) CommitIntelligent(ctx context.Context, req IntelligentRequest) (out *CommitResult, err error) {
	startedAt := time.Now()
	fields := map[string]any{}
	defer func() {
		if out != nil {
			fields["created"] = len(out.Created)
			fields["failed"] = len(out.Failed)
			fields["outcome"] = out.Outcome
		}
		observe(ctx, s.observer, "schedule.commit_intelligent", startedAt, &err, fields)
	}()

	if s.client == nil {
		return nil, domain.ErrNoCalendarAccess
	}
	tasks, plan, week, err := s.plan(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, ErrNoTasks
	}

	byID := make(map[int]domain.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}
	committer := calendar.NewCommitter(s.client, s.log)

	out = &CommitResult{
		WeekStart:  week,
		Outcome:    domain.RunOutcomeOK,
		Metrics:    scheduler.CognitiveTax(plan.Blocks).Rounded(),
		TotalHours: round2(totalBlockHours(plan.Blocks)),
		Created:    []domain.CommittedEvent{},
		Failed:     []FailedBlock{},
	}
	for _, b := range plan.Blocks {
		ev, cerr := committer.CreateEvent(ctx, scheduler.EventRequest{Task: byID[b.TaskID], Start: b.Start, End: b.End})
		if cerr == nil {
			out.Created = append(out.Created, ev)
			continue
		}
		out.Failed = append(out.Failed, FailedBlock{TaskID: b.TaskID, Title: b.Title, Start: b.Start, Error: cerr.Error()})
		if calendar.IsPermissionDenied(cerr) {
			s.log.Error("calendar permission denied; stopping event creation", slog.Any("err", cerr))
			out.Outcome = domain.RunOutcomePermissionDenied
			out.Message = permissionDeniedMessage
			return out, nil
		}
		s.log.Error("creating calendar event failed", slog.Int("task_id", b.TaskID), slog.Any("err", cerr))
	}
	if len(out.Failed) > 0 {
		out.Outcome = domain.RunOutcomePartial
	}
	return out, nil
}

func round2(v float64) float64 { return roundTo(v, 2) }

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
