// Package metrics exposes Prometheus collectors for analysis runs. All
// methods are safe to call on a nil *Manager, which records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithNamespace sets the namespace for all metrics.
func WithNamespace(ns string) Option {
	return func(m *Manager) {
		if ns != "" {
			m.namespace = ns
		}
	}
}

// WithRegistry registers collectors on reg instead of a fresh registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(m *Manager) {
		if reg != nil {
			m.registry = reg
		}
	}
}

type Manager struct {
	namespace string
	registry  *prometheus.Registry

	limiterAdmitted  *prometheus.CounterVec
	limiterWaits     *prometheus.CounterVec
	limiterWaitTime  *prometheus.HistogramVec
	limiterBackoffs  *prometheus.CounterVec
	stageDuration    *prometheus.HistogramVec
	runs             *prometheus.CounterVec
	profilesResolved *prometheus.CounterVec
	fallbacks        *prometheus.CounterVec
	llmRequests      *prometheus.CounterVec
}

// NewManager creates a Manager with its own registry unless WithRegistry is
// given.
func NewManager(opts ...Option) *Manager {
	m := &Manager{namespace: "hackmix"}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}

	auto := promauto.With(m.registry)
	m.limiterAdmitted = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "ratelimit",
		Name:      "admissions_total",
		Help:      "Calls admitted by a rate limiter.",
	}, []string{"limiter"})
	m.limiterWaits = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "ratelimit",
		Name:      "waits_total",
		Help:      "Times a caller had to sleep for admission.",
	}, []string{"limiter"})
	m.limiterWaitTime = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "ratelimit",
		Name:      "wait_seconds",
		Help:      "Sleep durations spent waiting for admission.",
		Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60},
	}, []string{"limiter"})
	m.limiterBackoffs = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "ratelimit",
		Name:      "backoffs_total",
		Help:      "Explicit upstream rate-limit signals honoured.",
	}, []string{"limiter"})
	m.stageDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "pipeline",
		Name:      "stage_duration_seconds",
		Help:      "Wall time per pipeline stage.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"stage"})
	m.runs = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "pipeline",
		Name:      "runs_total",
		Help:      "Analysis runs by outcome.",
	}, []string{"outcome"})
	m.profilesResolved = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "profile",
		Name:      "resolved_total",
		Help:      "Profile lookups by the strategy that answered (none when nothing did).",
	}, []string{"strategy"})
	m.fallbacks = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "pipeline",
		Name:      "fallbacks_total",
		Help:      "Deterministic fallbacks substituted for text-generation output.",
	}, []string{"component"})
	m.llmRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "llm",
		Name:      "requests_total",
		Help:      "Text-generation requests by component and status.",
	}, []string{"component", "status"})
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Manager) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveStage records how long a pipeline stage took.
func (m *Manager) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// RecordRun counts a finished run; outcome is "ok", "invalid" or "error".
func (m *Manager) RecordRun(outcome string) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(outcome).Inc()
}

// RecordProfile counts a profile lookup answered by strategy.
func (m *Manager) RecordProfile(strategy string) {
	if m == nil {
		return
	}
	m.profilesResolved.WithLabelValues(strategy).Inc()
}

// RecordFallback counts a deterministic fallback taken by component.
func (m *Manager) RecordFallback(component string) {
	if m == nil {
		return
	}
	m.fallbacks.WithLabelValues(component).Inc()
}

// RecordLLM counts a text-generation request.
func (m *Manager) RecordLLM(component string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.llmRequests.WithLabelValues(component, status).Inc()
}

// Limiter returns a ratelimit observer labelled with name. It returns nil
// for a nil Manager.
func (m *Manager) Limiter(name string) *LimiterObserver {
	if m == nil {
		return nil
	}
	return &LimiterObserver{m: m, name: name}
}

// LimiterObserver adapts Manager to ratelimit.Observer.
type LimiterObserver struct {
	m    *Manager
	name string
}

func (o *LimiterObserver) Admitted() {
	if o == nil {
		return
	}
	o.m.limiterAdmitted.WithLabelValues(o.name).Inc()
}

func (o *LimiterObserver) Waited(d time.Duration) {
	if o == nil {
		return
	}
	o.m.limiterWaits.WithLabelValues(o.name).Inc()
	o.m.limiterWaitTime.WithLabelValues(o.name).Observe(d.Seconds())
}

func (o *LimiterObserver) BackedOff(time.Duration) {
	if o == nil {
		return
	}
	o.m.limiterBackoffs.WithLabelValues(o.name).Inc()
}
