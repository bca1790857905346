package service

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/alexanderramin/polylearner/internal/domain"
)

// UseCaseEvent is the telemetry of one finished use case.
type UseCaseEvent struct {
	Name      string
	StartedAt time.Time
	Duration  time.Duration
	Err       error
	// Fields carries use-case specific attributes such as "outcome",
	// "placed" or "source".
	Fields map[string]any
}

func (e UseCaseEvent) Success() bool { return e.Err == nil }

// Degraded reports a run that finished without error but could not place
// everything on the calendar.
func (e UseCaseEvent) Degraded() bool {
	outcome, _ := e.Fields["outcome"].(string)
	return outcome != "" && outcome != domain.RunOutcomeOK
}

type UseCaseObserver interface {
	ObserveUseCase(ctx context.Context, event UseCaseEvent)
}

type NoopUseCaseObserver struct{}

func (NoopUseCaseObserver) ObserveUseCase(context.Context, UseCaseEvent) {}

// MultiObserver fans one event out to every observer in order.
type MultiObserver []UseCaseObserver

func (m MultiObserver) ObserveUseCase(ctx context.Context, event UseCaseEvent) {
	for _, o := range m {
		o.ObserveUseCase(ctx, event)
	}
}

type logUseCaseObserver struct {
	log *slog.Logger
}

// NewLogUseCaseObserver writes one "service_use_case" record per event:
// ERROR on failure, WARN for a degraded calendar outcome, INFO otherwise.
func NewLogUseCaseObserver(log *slog.Logger) UseCaseObserver {
	if log == nil {
		return NoopUseCaseObserver{}
	}
	return &logUseCaseObserver{log: log}
}

func (o *logUseCaseObserver) ObserveUseCase(ctx context.Context, event UseCaseEvent) {
	attrs := []slog.Attr{
		slog.String("use_case", event.Name),
		slog.Int64("duration_ms", event.Duration.Milliseconds()),
		slog.Bool("success", event.Success()),
	}
	keys := make([]string, 0, len(event.Fields))
	for k := range event.Fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		attrs = append(attrs, slog.Any(k, event.Fields[k]))
	}

	level := slog.LevelInfo
	switch {
	case event.Err != nil:
		level = slog.LevelError
		attrs = append(attrs, slog.String("error", event.Err.Error()))
	case event.Degraded():
		level = slog.LevelWarn
	}
	o.log.LogAttrs(ctx, level, "service_use_case", attrs...)
}

// useCaseObserverOrNoop combines the non-nil observers.
func useCaseObserverOrNoop(observers []UseCaseObserver) UseCaseObserver {
	var live MultiObserver
	for _, obs := range observers {
		if obs != nil {
			live = append(live, obs)
		}
	}
	switch len(live) {
	case 0:
		return NoopUseCaseObserver{}
	case 1:
		return live[0]
	}
	return live
}

// observe reports one finished use case. Defer it with a pointer to the
// named error result.
func observe(ctx context.Context, obs UseCaseObserver, name string, startedAt time.Time, err *error, fields map[string]any) {
	var e error
	if err != nil {
		e = *err
	}
	obs.ObserveUseCase(ctx, UseCaseEvent{
		Name:      name,
		StartedAt: startedAt,
		Duration:  time.Since(startedAt),
		Err:       e,
		Fields:    fields,
	})
}
