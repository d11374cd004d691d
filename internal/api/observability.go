package api

import (
	"context"
	"io"
	"log/slog"
)

// Operation names an API call for logs and metrics.
type Operation string

const (
	OpCreate       Operation = "create_entries"
	OpUpdate       Operation = "update_entry"
	OpSubmit       Operation = "submit_entries"
	OpListUsers    Operation = "list_users"
	OpListEntries  Operation = "list_entries"
	OpListProjects Operation = "list_projects"
)

// CallEvent records metadata about a single API call.
type CallEvent struct {
	Op        Operation
	Method    string
	Path      string
	Status    int
	RequestID string
	LatencyMs int64
	Success   bool
	ErrorCode string
}

// Observer receives events about API calls for logging and metrics.
type Observer interface {
	OnCallComplete(event CallEvent)
}

// LogObserver writes API call events through slog.
type LogObserver struct {
	logger *slog.Logger
}

// NewLogObserver creates an Observer that logs events to w.
func NewLogObserver(w io.Writer) *LogObserver {
	return &LogObserver{
		logger: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})),
	}
}

func (o *LogObserver) OnCallComplete(event CallEvent) {
	attrs := []any{
		"op", string(event.Op),
		"method", event.Method,
		"path", event.Path,
		"status", event.Status,
		"request_id", event.RequestID,
		"latency_ms", event.LatencyMs,
	}
	if !event.Success {
		attrs = append(attrs, "error_code", event.ErrorCode)
		o.logger.ErrorContext(context.Background(), "api_call", attrs...)
		return
	}
	o.logger.InfoContext(context.Background(), "api_call", attrs...)
}

// NoopObserver discards all events. Useful for tests.
type NoopObserver struct{}

func (NoopObserver) OnCallComplete(CallEvent) {}

// MultiObserver fans events out to several observers.
type MultiObserver []Observer

func (m MultiObserver) OnCallComplete(event CallEvent) {
	for _, o := range m {
		if o != nil {
			o.OnCallComplete(event)
		}
	}
}
