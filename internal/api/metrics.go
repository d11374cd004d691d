package api

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsObserver records API calls as Prometheus metrics.
type MetricsObserver struct {
	calls   *prometheus.CounterVec
	latency *prometheus.HistogramVec
}

// NewMetricsObserver registers the client metrics on reg.
func NewMetricsObserver(reg prometheus.Registerer) (*MetricsObserver, error) {
	m := &MetricsObserver{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "timesheet",
			Subsystem: "client",
			Name:      "api_calls_total",
			Help:      "Timesheet API calls by operation, status code and outcome.",
		}, []string{"op", "status", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "timesheet",
			Subsystem: "client",
			Name:      "api_call_duration_seconds",
			Help:      "Timesheet API call latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
	}
	for _, c := range []prometheus.Collector{m.calls, m.latency} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *MetricsObserver) OnCallComplete(event CallEvent) {
	outcome := "ok"
	if !event.Success {
		outcome = event.ErrorCode
	}
	m.calls.WithLabelValues(string(event.Op), strconv.Itoa(event.Status), outcome).Inc()
	m.latency.WithLabelValues(string(event.Op)).Observe(float64(event.LatencyMs) / 1000)
}

// WriteMetricsFile dumps every metric gathered by g to path in the text
// exposition format, for pickup by a node exporter textfile collector.
func WriteMetricsFile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}
