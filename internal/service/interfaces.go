package service

import (
	"context"
	"time"

	"github.com/alexanderramin/polylearner/internal/domain"
	"github.com/alexanderramin/polylearner/internal/intelligence"
	"github.com/alexanderramin/polylearner/internal/scheduler"
)

type TaskService interface {
	// Create validates and stores t. With autoSchedule set the task is
	// placed on the calendar and the returned task carries the outcome.
	Create(ctx context.Context, t *domain.Task, autoSchedule bool) (*domain.Task, error)
	GetByID(ctx context.Context, id int) (*domain.Task, error)
	List(ctx context.Context) ([]domain.Task, error)
	Delete(ctx context.Context, id int) error
	AddReview(ctx context.Context, id int, r domain.Review) (*domain.Task, error)
}

type WeeklyGoalService interface {
	Create(ctx context.Context, weekNumber int, goal string) (*domain.WeeklyGoal, error)
	List(ctx context.Context) ([]domain.WeeklyGoal, error)
	AddReview(ctx context.Context, goalID int, r domain.Review) (*domain.WeeklyGoal, error)
}

type OnboardingService interface {
	ValidateGoal(ctx context.Context, goal string) (*domain.OnboardingGoal, error)
	SuggestTasks(ctx context.Context, goal string) intelligence.SuggestionResult
	CreateTasks(ctx context.Context, goal string, suggestions []intelligence.SuggestedTask, autoSchedule bool) (*BatchCreateResult, error)
	List(ctx context.Context) ([]domain.OnboardingGoal, error)
}

type ScheduleService interface {
	Optimized(ctx context.Context, req ScheduleRequest) (*OptimizedSchedule, error)
	Intelligent(ctx context.Context, req IntelligentRequest) (*IntelligentSchedule, error)
	CompareCognitiveTax(ctx context.Context, req IntelligentRequest) (*TaxComparison, error)
	ExportICS(ctx context.Context, req ScheduleRequest) ([]byte, error)
	CommitIntelligent(ctx context.Context, req IntelligentRequest) (*CommitResult, error)
}

type CalendarService interface {
	// ListWeekEvents returns the events between from and to. Zero bounds
	// default to the current week.
	ListWeekEvents(ctx context.Context, from, to time.Time) ([]domain.ScheduledBlock, error)
	AutoSchedule(ctx context.Context, taskIDs []int, trigger string) (*AutoScheduleResult, error)
	// ScheduleUnscheduled runs AutoSchedule over every task the last run
	// did not place.
	ScheduleUnscheduled(ctx context.Context, trigger string) (*AutoScheduleResult, error)
	ListRuns(ctx context.Context, limit int) ([]domain.SchedulingRun, error)
}

type AnalyticsService interface {
	Patterns(ctx context.Context) (*intelligence.PatternAnalysis, error)
	LoadRisk(ctx context.Context, weekStart time.Time) (*scheduler.LoadRiskResult, error)
	Groups(ctx context.Context) (*GroupsResult, error)
	Embeddings(ctx context.Context) (*EmbeddingsResult, error)
	Query(ctx context.Context, question string) (*intelligence.QueryResult, error)
}

// Auto-schedule triggers recorded on each run.
const (
	TriggerTaskCreate = "task_create"
	TriggerOnboarding = "onboarding"
	TriggerManual     = "manual"
	TriggerDaemon     = "daemon"
)

// AutoScheduleResult is the outcome of one calendar run.
type AutoScheduleResult struct {
	RunID    string                   `json:"run_id"`
	Outcome  string                   `json:"outcome"`
	Placed   []domain.CommittedEvent  `json:"placed"`
	Unplaced []scheduler.UnplacedTask `json:"unplaced"`
	Message  string                   `json:"message,omitempty"`
}

type BatchCreateResult struct {
	Tasks      []domain.Task       `json:"tasks"`
	Scheduling *AutoScheduleResult `json:"scheduling,omitempty"`
}

// ScheduleRequest selects a week and daily window. A zero WeekStart means
// the current week.
type ScheduleRequest struct {
	WeekStart  time.Time
	DailyStart int
	DailyEnd   int
}

type IntelligentRequest struct {
	ScheduleRequest
	Preferences       intelligence.Preferences
	IncludeEmbeddings bool
}

type OptimizedSchedule struct {
	WeekStart         time.Time                     `json:"week_start"`
	Blocks            []domain.ScheduledBlock       `json:"schedule"`
	Recommendations   []intelligence.Recommendation `json:"recommendations"`
	TotalHours        float64                       `json:"total_hours"`
	CognitiveTaxScore float64                       `json:"cognitive_tax_score"`
}

// EmbeddingSample is the head of a task's vector attached to its block.
type EmbeddingSample struct {
	TaskID int       `json:"task_id"`
	Vector []float64 `json:"embedding_sample"`
}

// EmbeddingSampleDims is how many leading dimensions a sample keeps.
const EmbeddingSampleDims = 5

type IntelligentSchedule struct {
	WeekStart          time.Time                     `json:"week_start"`
	Plan               *intelligence.SchedulePlan    `json:"plan"`
	Metrics            scheduler.CognitiveMetrics    `json:"cognitive_metrics"`
	TotalHours         float64                       `json:"total_hours"`
	Recommendations    []intelligence.Recommendation `json:"recommendations"`
	EmbeddingSamples   []EmbeddingSample             `json:"embedding_samples,omitempty"`
	EmbeddingSource    string                        `json:"embedding_source,omitempty"`
	EmbeddingDimension int                           `json:"embedding_dimension"`
}

type ScheduleSummary struct {
	Metrics scheduler.CognitiveMetrics `json:"metrics"`
	Blocks  int                        `json:"blocks"`
}

type TaxComparison struct {
	Basic          ScheduleSummary       `json:"basic_schedule"`
	Intelligent    ScheduleSummary       `json:"intelligent_schedule"`
	Improvement    scheduler.Improvement `json:"improvement"`
	Recommendation string                `json:"recommendation"`
}

// FailedBlock is a block the calendar refused.
type FailedBlock struct {
	TaskID int       `json:"task_id"`
	Title  string    `json:"title"`
	Start  time.Time `json:"start"`
	Error  string    `json:"error"`
}

type CommitResult struct {
	WeekStart  time.Time                  `json:"week_start"`
	Outcome    string                     `json:"outcome"`
	Metrics    scheduler.CognitiveMetrics `json:"cognitive_metrics"`
	TotalHours float64                    `json:"total_hours"`
	Created    []domain.CommittedEvent    `json:"created"`
	Failed     []FailedBlock              `json:"failed"`
	Message    string                     `json:"message,omitempty"`
}

type GroupsResult struct {
	Groups []GroupSummary `json:"groups"`
}

type GroupSummary struct {
	intelligence.TaskGroup
	TotalHours float64 `json:"total_hours"`
	TaskCount  int     `json:"task_count"`
}

type EmbeddingsResult struct {
	TotalTasks int               `json:"total_tasks"`
	Dimension  int               `json:"embedding_dimension"`
	Source     string            `json:"source"`
	Vectors    map[int][]float64 `json:"embeddings"`
}

// CalendarSettings configures calendar runs.
type CalendarSettings struct {
	Load scheduler.LoadConfig
	// Location is the zone working hours are interpreted in.
	Location *time.Location
	// LookaheadDays is the minimum span of the busy-time listing. The listing
	// widens to cover Load.HorizonDays when that reaches further.
	LookaheadDays int
}

func DefaultCalendarSettings() CalendarSettings {
	return CalendarSettings{
		Load:          scheduler.DefaultLoadConfig(),
		Location:      time.Local,
		LookaheadDays: 7,
	}
}
