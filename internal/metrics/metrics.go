package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dshills/geolog-mcp/pkg/types"
)

const namespace = "geolog"

// Metrics records cascade outcomes on a private registry. It satisfies
// cascade.Observer.
type Metrics struct {
	registry   *prometheus.Registry
	cascades   *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	collisions *prometheus.CounterVec
}

// New creates the collectors and registers them with Go runtime metrics
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		cascades: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cascades_total",
			Help:      "Cascades run, by operation and outcome.",
		}, []string{"op", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cascade_duration_seconds",
			Help:      "Time spent inside the cascade transaction.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}, []string{"op"}),
		collisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "id_collisions_total",
			Help:      "Identifier candidates rejected because they were taken.",
		}, []string{"prefix"}),
	}
	m.registry.MustRegister(
		m.cascades,
		m.duration,
		m.collisions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// CascadeFinished counts one cascade and observes its duration
func (m *Metrics) CascadeFinished(op string, elapsed time.Duration, err error) {
	m.cascades.WithLabelValues(op, Outcome(err)).Inc()
	m.duration.WithLabelValues(op).Observe(elapsed.Seconds())
}

// IDCollision counts a rejected identifier candidate
func (m *Metrics) IDCollision(prefix string) {
	m.collisions.WithLabelValues(prefix).Inc()
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Outcome maps an error to the result label of cascades_total
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, types.ErrRecordNotFound):
		return "not_found"
	case errors.Is(err, types.ErrDuplicateIdentifier):
		return "duplicate"
	case errors.Is(err, types.ErrLinkedRecordProtected):
		return "protected"
	case errors.Is(err, types.ErrInvalidInterval), errors.Is(err, types.ErrInvalidValue):
		return "invalid"
	case errors.Is(err, types.ErrIdGenerationExhausted):
		return "id_exhausted"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	case errors.Is(err, types.ErrStorageFailure):
		return "storage_failure"
	default:
		return "error"
	}
}
