package llm

import "log/slog"

// LLMCallEvent records metadata about a single LLM invocation.
type LLMCallEvent struct {
	Task      TaskType
	Model     string
	LatencyMs int64
	Success   bool
	ErrorCode string
}

// Observer receives events about LLM calls for logging and metrics.
type Observer interface {
	OnCallComplete(event LLMCallEvent)
}

// SlogObserver writes LLM call events as structured log records.
type SlogObserver struct {
	log *slog.Logger
}

// NewSlogObserver creates an Observer that logs events to log.
func NewSlogObserver(log *slog.Logger) *SlogObserver {
	return &SlogObserver{log: log}
}

func (o *SlogObserver) OnCallComplete(event LLMCallEvent) {
	attrs := []any{
		"task", string(event.Task),
		"model", event.Model,
		"latency_ms", event.LatencyMs,
	}
	if event.Success {
		o.log.Info("llm_call", attrs...)
		return
	}
	o.log.Warn("llm_call", append(attrs, "error_code", event.ErrorCode)...)
}

// NoopObserver discards all events. Useful for tests.
type NoopObserver struct{}

func (NoopObserver) OnCallComplete(LLMCallEvent) {}
