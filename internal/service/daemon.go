package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultDaemonSpec runs auto-scheduling at 07:00 on weekdays.
const DefaultDaemonSpec = "0 7 * * 1-5"

// DaemonSettings is the reloadable part of the daemon's configuration.
type DaemonSettings struct {
	Spec     string
	Calendar CalendarSettings
}

// Daemon periodically places every unscheduled task on the calendar.
type Daemon struct {
	log         *slog.Logger
	newCalendar func(CalendarSettings) CalendarService
	parser      cron.Parser

	mu       sync.Mutex
	settings DaemonSettings
	calendar CalendarService
	c        *cron.Cron
	runs     int
}

// NewDaemon validates the cron spec. newCalendar is called again whenever
// reloaded settings change the calendar configuration.
func NewDaemon(settings DaemonSettings, newCalendar func(CalendarSettings) CalendarService, log *slog.Logger) (*Daemon, error) {
	d := &Daemon{
		log:         loggerOrDiscard(log),
		newCalendar: newCalendar,
		parser:      cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
	}
	if settings.Spec == "" {
		settings.Spec = DefaultDaemonSpec
	}
	if _, err := d.parser.Parse(settings.Spec); err != nil {
		return nil, fmt.Errorf("parsing cron spec %q: %w", settings.Spec, err)
	}
	d.settings = settings
	d.calendar = newCalendar(settings.Calendar)
	return d, nil
}

// RunOnce schedules every task the last run left unplaced.
func (d *Daemon) RunOnce(ctx context.Context) (*AutoScheduleResult, error) {
	d.mu.Lock()
	cal := d.calendar
	d.runs++
	d.mu.Unlock()

	res, err := cal.ScheduleUnscheduled(ctx, TriggerDaemon)
	if err != nil {
		d.log.Error("daemon run failed", slog.Any("err", err))
		return nil, err
	}
	d.log.Info("daemon run finished",
		slog.String("run_id", res.RunID),
		slog.String("outcome", res.Outcome),
		slog.Int("placed", len(res.Placed)),
		slog.Int("unplaced", len(res.Unplaced)))
	return res, nil
}

// Runs reports how many ticks have started.
func (d *Daemon) Runs() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.runs
}

// Spec returns the active cron expression.
func (d *Daemon) Spec() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.settings.Spec
}

// Run starts the cron loop and applies settings from updates until ctx is
// done. A tick that is still running when the next one fires is skipped.
func (d *Daemon) Run(ctx context.Context, updates <-chan DaemonSettings) error {
	d.mu.Lock()
	if err := d.startLocked(ctx); err != nil {
		d.mu.Unlock()
		return err
	}
	d.mu.Unlock()

	for {
		select {
		case <-ctx.Done():
			d.stop()
			return nil
		case s, ok := <-updates:
			if !ok {
				updates = nil
				continue
			}
			if err := d.Apply(ctx, s); err != nil {
				d.log.Warn("ignoring daemon settings", slog.Any("err", err))
			}
		}
	}
}

// Apply swaps in new settings, restarting the cron loop when the spec or
// timezone changed.
func (d *Daemon) Apply(ctx context.Context, s DaemonSettings) error {
	if s.Spec == "" {
		s.Spec = DefaultDaemonSpec
	}
	if _, err := d.parser.Parse(s.Spec); err != nil {
		return fmt.Errorf("parsing cron spec %q: %w", s.Spec, err)
	}

	d.mu.Lock()
	restart := s.Spec != d.settings.Spec || location(s.Calendar) != location(d.settings.Calendar)
	d.settings = s
	d.calendar = d.newCalendar(s.Calendar)
	old := d.c
	if restart {
		d.c = nil
	}
	d.mu.Unlock()
	d.log.Info("daemon settings applied", slog.String("spec", s.Spec), slog.Bool("restart", restart))

	if !restart || old == nil {
		return nil
	}
	// Stop outside the lock; a running tick needs it to finish.
	<-old.Stop().Done()
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.startLocked(ctx)
}

func (d *Daemon) startLocked(ctx context.Context) error {
	logger := cron.PrintfLogger(slog.NewLogLogger(d.log.Handler(), slog.LevelDebug))
	d.c = cron.New(
		cron.WithParser(d.parser),
		cron.WithLocation(location(d.settings.Calendar)),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	if _, err := d.c.AddFunc(d.settings.Spec, func() { _, _ = d.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("registering cron job: %w", err)
	}
	d.c.Start()
	d.log.Info("daemon started", slog.String("spec", d.settings.Spec), slog.String("tz", location(d.settings.Calendar).String()))
	return nil
}

func (d *Daemon) stop() {
	d.mu.Lock()
	c := d.c
	d.c = nil
	d.mu.Unlock()
	if c != nil {
		<-c.Stop().Done()
	}
	d.log.Info("daemon stopped")
}

func location(s CalendarSettings) *time.Location {
	if s.Location == nil {
		return time.Local
	}
	return s.Location
}
