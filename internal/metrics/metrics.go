// Package metrics exposes bootstrap counters for prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the bootstrap collectors. All methods are safe on a nil
// receiver so callers never need to check whether metrics are enabled.
type Metrics struct {
	registry *prometheus.Registry

	BootstrapOutcome  *prometheus.CounterVec
	RaceDiscarded     *prometheus.CounterVec
	CookiePrimes      *prometheus.CounterVec
	PendingSeeks      *prometheus.CounterVec
	BootstrapDuration prometheus.Histogram
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		BootstrapOutcome: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rpconsole_bootstrap_outcome_total",
				Help: "Committed bootstrap outcomes",
			},
			[]string{"source", "reason"},
		),
		RaceDiscarded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rpconsole_race_discarded_total",
				Help: "Race producers that lost to an earlier commit",
			},
			[]string{"producer"},
		),
		CookiePrimes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rpconsole_cookie_prime_total",
				Help: "Cookie priming results",
			},
			[]string{"result"},
		),
		PendingSeeks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rpconsole_pending_seek_total",
				Help: "Pending start-offset seeks released on load",
			},
			[]string{"result"},
		),
		BootstrapDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "rpconsole_bootstrap_duration_seconds",
				Help:    "Time from bootstrap start to committed outcome",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
			},
		),
	}
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Outcome records a committed bootstrap outcome.
func (m *Metrics) Outcome(source, reason string) {
	if m == nil {
		return
	}
	m.BootstrapOutcome.WithLabelValues(source, reason).Inc()
}

// Discarded records a producer whose result arrived after the commit.
func (m *Metrics) Discarded(producer string) {
	if m == nil {
		return
	}
	m.RaceDiscarded.WithLabelValues(producer).Inc()
}

// CookiePrime records a cookie priming result.
func (m *Metrics) CookiePrime(result string) {
	if m == nil {
		return
	}
	m.CookiePrimes.WithLabelValues(result).Inc()
}

// PendingSeek records what happened to a pending seek.
func (m *Metrics) PendingSeek(result string) {
	if m == nil {
		return
	}
	m.PendingSeeks.WithLabelValues(result).Inc()
}

// ObserveBootstrap records the time to commit.
func (m *Metrics) ObserveBootstrap(d time.Duration) {
	if m == nil {
		return
	}
	m.BootstrapDuration.Observe(d.Seconds())
}
