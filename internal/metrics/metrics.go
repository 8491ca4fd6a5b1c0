// Package metrics instruments the multipart upload lifecycle with Prometheus
// collectors. A nil *Metrics is valid and records nothing.
package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	mperrors "github.com/input-output-hk/catalyst-forge-libs/multipart/errors"
)

// Metrics holds the lifecycle collectors.
type Metrics struct {
	transitions *prometheus.CounterVec   // labels: backend, transition
	ops         *prometheus.CounterVec   // labels: backend, op, code
	latency     *prometheus.HistogramVec // labels: backend, op
	parts       *prometheus.HistogramVec // labels: backend
}

// Lifecycle transitions counted by Transition.
const (
	TransitionInitialized        = "initialized"
	TransitionCompletionPrepared = "completion_prepared"
	TransitionAborted            = "aborted"
	TransitionAbortFailed        = "abort_failed"
)

// New registers the multipart collectors on reg. A nil registerer yields a
// nil *Metrics. Registration fails when reg already holds an incompatible
// collector under one of the multipart metric names.
func New(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		return nil, nil
	}

	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "multipart",
		Subsystem: "uploads",
		Name:      "transitions_total",
		Help:      "Upload lifecycle transitions by backend.",
	}, []string{"backend", "transition"})
	ops := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "multipart",
		Subsystem: "backend",
		Name:      "ops_total",
		Help:      "Backend operations by result code.",
	}, []string{"backend", "op", "code"}) // code = "OK" or an error code
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "multipart",
		Subsystem: "backend",
		Name:      "op_duration_seconds",
		Help:      "Histogram of manager operation durations in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"backend", "op"})
	parts := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "multipart",
		Subsystem: "uploads",
		Name:      "planned_parts",
		Help:      "Number of parts planned per initialized upload.",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
	}, []string{"backend"})

	var err error
	if transitions, err = register(reg, transitions); err != nil {
		return nil, err
	}
	if ops, err = register(reg, ops); err != nil {
		return nil, err
	}
	if latency, err = register(reg, latency); err != nil {
		return nil, err
	}
	if parts, err = register(reg, parts); err != nil {
		return nil, err
	}

	return &Metrics{
		transitions: transitions,
		ops:         ops,
		latency:     latency,
		parts:       parts,
	}, nil
}

// register adds c to reg, reusing the collector already registered under the
// same descriptor so several managers can share one registry.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing, nil
		}
	}
	return c, fmt.Errorf("register metrics: %w", err)
}

// Observe records the outcome and duration of one manager operation.
func (m *Metrics) Observe(backend, op string, err error, dur time.Duration) {
	if m == nil {
		return
	}
	code := "OK"
	if err != nil {
		code = string(mperrors.CodeOf(err))
	}
	m.ops.WithLabelValues(backend, op, code).Inc()
	m.latency.WithLabelValues(backend, op).Observe(dur.Seconds())
}

// Transition counts one lifecycle transition.
func (m *Metrics) Transition(backend, transition string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(backend, transition).Inc()
}

// PlannedParts records the size of an upload plan.
func (m *Metrics) PlannedParts(backend string, n int) {
	if m == nil {
		return
	}
	m.parts.WithLabelValues(backend).Observe(float64(n))
}
