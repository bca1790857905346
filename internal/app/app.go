// Package app assembles polylearner's services from a Config. The CLI and
// the daemon both start here.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alexanderramin/polylearner/internal/calendar"
	"github.com/alexanderramin/polylearner/internal/config"
	"github.com/alexanderramin/polylearner/internal/db"
	"github.com/alexanderramin/polylearner/internal/docstore"
	"github.com/alexanderramin/polylearner/internal/domain"
	"github.com/alexanderramin/polylearner/internal/intelligence"
	"github.com/alexanderramin/polylearner/internal/llm"
	"github.com/alexanderramin/polylearner/internal/scheduler"
	"github.com/alexanderramin/polylearner/internal/service"
)

// App holds every use case the commands need.
type App struct {
	Config config.Config
	Log    *slog.Logger

	Tasks      service.TaskService
	Goals      service.WeeklyGoalService
	Onboarding service.OnboardingService
	Schedule   service.ScheduleService
	Calendar   service.CalendarService
	Analytics  service.AnalyticsService

	// CalendarClient is nil when no calendar is connected.
	CalendarClient calendar.Client

	store    docstore.Store
	uow      db.UnitOfWork
	llm      llm.LLMClient
	observer service.UseCaseObserver
	database *sql.DB
	ownsDB   bool
}

// Options replace pieces New would otherwise build from the config.
type Options struct {
	// DB is used instead of opening cfg.DBPath; the caller keeps ownership.
	DB *sql.DB
	// LLM is used instead of the configured provider.
	LLM llm.LLMClient
	// Calendar is used instead of connecting to Google Calendar.
	Calendar calendar.Client
	// Authorizer, when set, lets New run the OAuth flow for a missing token.
	Authorizer calendar.Authorizer
	Observers  []service.UseCaseObserver
}

func New(ctx context.Context, cfg config.Config, log *slog.Logger, opts Options) (*App, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	a := &App{Config: cfg, Log: log, database: opts.DB}

	if a.database == nil {
		database, err := db.OpenDB(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		a.database, a.ownsDB = database, true
	}
	a.store = docstore.NewSQLiteStore(a.database)
	a.uow = db.NewSQLiteUnitOfWork(a.database)

	a.llm = opts.LLM
	if a.llm == nil {
		client, err := NewLLMClient(cfg.LLM, log)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.llm = client
	}

	a.CalendarClient = opts.Calendar
	if a.CalendarClient == nil {
		client, err := ConnectCalendar(ctx, cfg, opts.Authorizer, log)
		switch {
		case errors.Is(err, ErrCalendarDisabled):
		case errors.Is(err, domain.ErrNoCalendarAccess):
			log.Warn("calendar not connected, scheduling runs will record no access", "error", err)
		case err != nil:
			a.Close()
			return nil, err
		default:
			a.CalendarClient = client
		}
	}

	a.observer = service.NewLogUseCaseObserver(log)
	if len(opts.Observers) > 0 {
		a.observer = service.MultiObserver(append([]service.UseCaseObserver{a.observer}, opts.Observers...))
	}
	if err := a.wire(cfg); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) wire(cfg config.Config) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	settings := CalendarSettings(cfg)

	grouping := intelligence.NewGroupingService(a.llm, a.Log)
	embeddings := intelligence.NewEmbeddingService(a.llm, a.Log)
	planner := intelligence.NewScheduleService(a.llm, grouping, scheduler.NewScheduleValidator(a.Log), a.Log)

	a.Calendar = a.NewCalendar(settings)
	a.Tasks = service.NewTaskService(a.store, a.uow, a.Calendar, a.Log, a.observer)
	a.Goals = service.NewWeeklyGoalService(a.store, a.uow, a.observer)
	a.Onboarding = service.NewOnboardingService(a.store, a.uow,
		intelligence.NewGoalService(a.llm, a.Log), a.Calendar, a.Log, a.observer)
	a.Schedule = service.NewScheduleService(a.store, planner,
		intelligence.NewRecommendationService(a.llm, a.Log), embeddings,
		a.CalendarClient, loc, a.Log, a.observer)
	a.Analytics = service.NewAnalyticsService(a.store,
		intelligence.NewInsightsService(a.llm, a.Log),
		grouping,
		embeddings,
		intelligence.NewQueryService(a.llm, a.store, a.Log),
		settings, a.observer)
	return nil
}

// NewCalendar builds a calendar service over the app's store and client.
// The daemon calls it again whenever reloaded settings change.
func (a *App) NewCalendar(settings service.CalendarSettings) service.CalendarService {
	return service.NewCalendarService(a.store, a.uow, a.CalendarClient, settings, a.Log, a.observer)
}

// NewDaemon builds the cron-driven auto-scheduler from the current config.
func (a *App) NewDaemon() (*service.Daemon, error) {
	return service.NewDaemon(DaemonSettings(a.Config), a.NewCalendar, a.Log)
}

// LLMAvailable reports whether the configured model answers.
func (a *App) LLMAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return a.llm.Available(ctx)
}

func (a *App) Close() error {
	if a.ownsDB && a.database != nil {
		return a.database.Close()
	}
	return nil
}

// CalendarSettings converts the config into calendar run settings.
func CalendarSettings(cfg config.Config) service.CalendarSettings {
	s := service.DefaultCalendarSettings()
	s.Load = cfg.AutoSchedule.LoadConfig()
	if loc, err := cfg.Location(); err == nil {
		s.Location = loc
	}
	if cfg.AutoSchedule.LookaheadDays > 0 {
		s.LookaheadDays = cfg.AutoSchedule.LookaheadDays
	}
	return s
}

func DaemonSettings(cfg config.Config) service.DaemonSettings {
	return service.DaemonSettings{Spec: cfg.Daemon.Cron, Calendar: CalendarSettings(cfg)}
}

// DaemonUpdates converts reloaded configs into daemon settings until ctx
// is done.
func DaemonUpdates(ctx context.Context, configs <-chan config.Config) <-chan service.DaemonSettings {
	out := make(chan service.DaemonSettings)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case cfg, ok := <-configs:
				if !ok {
					return
				}
				select {
				case out <- DaemonSettings(cfg):
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}
