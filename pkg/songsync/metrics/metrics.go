// Package metrics exposes handler activity as Prometheus metrics.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tendant/simple-song-sync/pkg/songsync"
)

// Sink implements songsync.EventSink with Prometheus collectors.
type Sink struct {
	events   *prometheus.CounterVec
	requests *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Sink, error) {
	s := &Sink{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "songsync",
			Name:      "events_total",
			Help:      "Storage notifications handled, by event kind and outcome",
		}, []string{"kind", "outcome"}),
		requests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "songsync",
			Name:      "library_request_duration_seconds",
			Help:      "Latency of library requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "result"}),
	}

	for _, c := range []prometheus.Collector{s.events, s.requests} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// EventHandled counts a handled record
func (s *Sink) EventHandled(ctx context.Context, record songsync.NotificationRecord, outcome songsync.Outcome) {
	kind := record.Kind
	if kind == "" {
		kind = songsync.EventOther
	}
	s.events.WithLabelValues(string(kind), string(outcome)).Inc()
}

// NotifyCompleted observes a library request
func (s *Sink) NotifyCompleted(ctx context.Context, method string, elapsed time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	s.requests.WithLabelValues(method, result).Observe(elapsed.Seconds())
}
