package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// UseCaseEvent describes one completed lifecycle or browser call.
type UseCaseEvent struct {
	Name      string
	Duration  time.Duration
	Success   bool
	Err       error
	Fields    map[string]any
	StartedAt time.Time
}

// outcome classifies the event as ok, notice (a condition shown to the user
// as an informational message) or error.
func (e UseCaseEvent) outcome() string {
	switch {
	case e.Err == nil:
		return "ok"
	case IsInformational(e.Err) || errors.Is(e.Err, ErrFormClosed):
		return "notice"
	default:
		return "error"
	}
}

// UseCaseObserver receives use-case execution events.
type UseCaseObserver interface {
	ObserveUseCase(ctx context.Context, event UseCaseEvent)
}

// NoopUseCaseObserver ignores all events.
type NoopUseCaseObserver struct{}

func (NoopUseCaseObserver) ObserveUseCase(context.Context, UseCaseEvent) {}

// MultiUseCaseObserver fans events out to several observers.
type MultiUseCaseObserver []UseCaseObserver

func (m MultiUseCaseObserver) ObserveUseCase(ctx context.Context, event UseCaseEvent) {
	for _, o := range m {
		if o != nil {
			o.ObserveUseCase(ctx, event)
		}
	}
}

type logUseCaseObserver struct {
	logger *slog.Logger
}

// NewLogUseCaseObserver writes use-case events to w. Notices are logged at
// warn level, failures at error level.
func NewLogUseCaseObserver(w io.Writer) UseCaseObserver {
	if w == nil {
		return NoopUseCaseObserver{}
	}
	return &logUseCaseObserver{
		logger: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})),
	}
}

func (o *logUseCaseObserver) ObserveUseCase(ctx context.Context, event UseCaseEvent) {
	attrs := make([]any, 0, 8+len(event.Fields)*2)
	attrs = append(attrs,
		"use_case", event.Name,
		"duration_ms", event.Duration.Milliseconds(),
		"outcome", event.outcome(),
	)
	for k, v := range event.Fields {
		attrs = append(attrs, k, v)
	}
	if event.Err != nil {
		attrs = append(attrs, "error", event.Err.Error())
	}

	level := slog.LevelInfo
	switch event.outcome() {
	case "notice":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	o.logger.Log(ctx, level, "timesheet_use_case", attrs...)
}

// MetricsUseCaseObserver counts use cases by name and outcome.
type MetricsUseCaseObserver struct {
	total *prometheus.CounterVec
}

// NewMetricsUseCaseObserver registers the use-case counter on reg.
func NewMetricsUseCaseObserver(reg prometheus.Registerer) (*MetricsUseCaseObserver, error) {
	m := &MetricsUseCaseObserver{
		total: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "timesheet",
			Subsystem: "service",
			Name:      "use_cases_total",
			Help:      "Entry lifecycle and browser use cases by name and outcome.",
		}, []string{"use_case", "outcome"}),
	}
	if err := reg.Register(m.total); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *MetricsUseCaseObserver) ObserveUseCase(_ context.Context, event UseCaseEvent) {
	m.total.WithLabelValues(event.Name, event.outcome()).Inc()
}

func useCaseObserverOrNoop(observers []UseCaseObserver) UseCaseObserver {
	live := make(MultiUseCaseObserver, 0, len(observers))
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
