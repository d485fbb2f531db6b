package prometheus

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/slok/dashstatus/internal/metrics"
)

const prefix = "dashstatus"

// Config is the Prometheus recorder configuration.
type Config struct {
	// Registry is the Prometheus registerer, by default prometheus.DefaultRegisterer.
	Registry prometheus.Registerer
	// Buckets are the duration histogram buckets, by default prometheus.DefBuckets.
	Buckets []float64
}

func (c *Config) defaults() {
	if c.Registry == nil {
		c.Registry = prometheus.DefaultRegisterer
	}

	if len(c.Buckets) == 0 {
		c.Buckets = prometheus.DefBuckets
	}
}

// Recorder is the Prometheus metrics.Recorder implementation.
type Recorder struct {
	operationsStarted   *prometheus.CounterVec
	operationsCompleted *prometheus.CounterVec
	operationDuration   *prometheus.HistogramVec
	connectionChecks    *prometheus.CounterVec
	connectionDuration  prometheus.Histogram
	backendRequests     *prometheus.CounterVec
	backendDuration     *prometheus.HistogramVec
}

var _ metrics.Recorder = &Recorder{}

// NewRecorder returns a new Prometheus recorder registered on the configured registry.
func NewRecorder(cfg Config) *Recorder {
	cfg.defaults()

	r := &Recorder{
		operationsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: prefix,
			Subsystem: "operation",
			Name:      "started_total",
			Help:      "The total number of started operations.",
		}, []string{"operation"}),

		operationsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: prefix,
			Subsystem: "operation",
			Name:      "completed_total",
			Help:      "The total number of completed operations.",
		}, []string{"operation", "success"}),

		operationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: prefix,
			Subsystem: "operation",
			Name:      "duration_seconds",
			Help:      "The duration of the operations from start to completion.",
			Buckets:   cfg.Buckets,
		}, []string{"operation", "success"}),

		connectionChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: prefix,
			Subsystem: "connection",
			Name:      "checks_total",
			Help:      "The total number of backend connection checks.",
		}, []string{"online"}),

		connectionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: prefix,
			Subsystem: "connection",
			Name:      "check_duration_seconds",
			Help:      "The duration of the backend connection checks.",
			Buckets:   cfg.Buckets,
		}),

		backendRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: prefix,
			Subsystem: "backend",
			Name:      "requests_total",
			Help:      "The total number of requests made to the dashboard backend.",
		}, []string{"path", "failed"}),

		backendDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: prefix,
			Subsystem: "backend",
			Name:      "request_duration_seconds",
			Help:      "The duration of the requests made to the dashboard backend.",
			Buckets:   cfg.Buckets,
		}, []string{"path"}),
	}

	cfg.Registry.MustRegister(
		r.operationsStarted,
		r.operationsCompleted,
		r.operationDuration,
		r.connectionChecks,
		r.connectionDuration,
		r.backendRequests,
		r.backendDuration,
	)

	return r
}

func (r *Recorder) OperationStarted(_ context.Context, operationID string) {
	r.operationsStarted.WithLabelValues(operationID).Inc()
}

func (r *Recorder) OperationCompleted(_ context.Context, operationID string, success bool, duration time.Duration) {
	s := strconv.FormatBool(success)
	r.operationsCompleted.WithLabelValues(operationID, s).Inc()
	r.operationDuration.WithLabelValues(operationID, s).Observe(duration.Seconds())
}

func (r *Recorder) ConnectionChecked(_ context.Context, online bool, duration time.Duration) {
	r.connectionChecks.WithLabelValues(strconv.FormatBool(online)).Inc()
	r.connectionDuration.Observe(duration.Seconds())
}

func (r *Recorder) BackendRequest(_ context.Context, path string, failed bool, duration time.Duration) {
	r.backendRequests.WithLabelValues(path, strconv.FormatBool(failed)).Inc()
	r.backendDuration.WithLabelValues(path).Observe(duration.Seconds())
}
