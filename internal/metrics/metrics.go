package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "payment_links"

// Metrics holds the service's prometheus collectors.
type Metrics struct {
	LinksCreated         *prometheus.CounterVec
	Notifications        *prometheus.CounterVec
	ProcessorDuration    *prometheus.HistogramVec
	OrphanedPreferences  prometheus.Counter
	EventPublishFailures prometheus.Counter
}

// New registers every collector on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		LinksCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "created_total",
			Help:      "Link creation attempts by outcome.",
		}, []string{"outcome"}),
		Notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_notifications_total",
			Help:      "Processed webhook notifications by mode and outcome.",
		}, []string{"mode", "outcome"}),
		ProcessorDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "processor_request_duration_seconds",
			Help:      "Latency of payment processor calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "outcome"}),
		OrphanedPreferences: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orphaned_preferences_total",
			Help:      "Checkout preferences created at the processor whose record could not be stored.",
		}),
		EventPublishFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_publish_failures_total",
			Help:      "Status change events that could not be published.",
		}),
	}
}

// NewNop returns metrics bound to a private registry.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}

// ObserveProcessor records a processor call started at start.
func (m *Metrics) ObserveProcessor(operation string, start time.Time, err error) {
	m.ProcessorDuration.WithLabelValues(operation, outcome(err)).Observe(time.Since(start).Seconds())
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
