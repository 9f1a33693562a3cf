package sinks

import (
	"context"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusSink exports build lifecycle metrics. It owns all collectors for
// builds started/finished/running and per-bundle durations.
type PrometheusSink struct {
	buildsStarted  *prometheus.CounterVec
	buildsFinished *prometheus.CounterVec
	buildsRunning  prometheus.Gauge
	buildDuration  *prometheus.HistogramVec

	tracker *runTracker
}

// NewPrometheusSink registers the collectors against the provided registry.
func NewPrometheusSink(reg prometheus.Registerer) (*PrometheusSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PrometheusSink{
		buildsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "buildbar_builds_started_total",
			Help: "Total builds that have started, partitioned by bundle.",
		}, []string{"bundle"}),
		buildsFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "buildbar_builds_finished_total",
			Help: "Total builds completed, partitioned by bundle.",
		}, []string{"bundle"}),
		buildsRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "buildbar_builds_running",
			Help: "Current number of running builds.",
		}),
		buildDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "buildbar_build_duration_seconds",
			Help:    "Wall time per completed build, partitioned by bundle.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		}, []string{"bundle"}),
		tracker: newRunTracker(),
	}
	for _, collector := range []prometheus.Collector{
		s.buildsStarted,
		s.buildsFinished,
		s.buildsRunning,
		s.buildDuration,
	} {
		if err := reg.Register(collector); err != nil {
			return nil, fmt.Errorf("register build collector: %w", err)
		}
	}
	return s, nil
}

// Notify updates the collectors for one lifecycle transition. Safe for
// concurrent use.
func (s *PrometheusSink) Notify(_ context.Context, n Notice) error {
	switch n.Kind {
	case KindStarted:
		s.buildsStarted.WithLabelValues(n.Bundle).Inc()
		if s.tracker.start(n.Bundle) {
			s.buildsRunning.Inc()
		}
	case KindFinished:
		s.buildsFinished.WithLabelValues(n.Bundle).Inc()
		if n.Elapsed > 0 {
			s.buildDuration.WithLabelValues(n.Bundle).Observe(n.Elapsed.Seconds())
		}
		if s.tracker.finish(n.Bundle) {
			s.buildsRunning.Dec()
		}
	}
	return nil
}

// Close implements the Sink interface; it performs no action.
func (s *PrometheusSink) Close(context.Context) error {
	return nil
}

// runTracker keeps the running gauge honest across duplicate notices.
type runTracker struct {
	mu      sync.Mutex
	running map[string]struct{}
}

func newRunTracker() *runTracker {
	return &runTracker{running: make(map[string]struct{})}
}

func (t *runTracker) start(bundle string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.running[bundle]; ok {
		return false
	}
	t.running[bundle] = struct{}{}
	return true
}

func (t *runTracker) finish(bundle string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.running[bundle]; !ok {
		return false
	}
	delete(t.running, bundle)
	return true
}
