// Package metrics exposes Prometheus instrumentation for the tape
// lifecycle engine: API call and retry counters, gateway resolution
// probes, and per-outcome deletion counts.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/cloudvtl/tapekeeper/pkg/vtl"
)

// Collector registers and records all tapekeeper metrics. It implements
// the observer interfaces of the gateway client, the directory, and the
// engine, so wiring it in is a matter of passing it to each constructor.
type Collector struct {
	registry *prometheus.Registry

	apiCalls   *prometheus.CounterVec
	apiRetries *prometheus.CounterVec
	probes     *prometheus.CounterVec
	outcomes   *prometheus.CounterVec
}

// NewCollector creates a collector registered against registry. A nil
// registry gets a fresh private one.
func NewCollector(namespace string, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if namespace == "" {
		namespace = "tapekeeper"
	}

	c := &Collector{
		registry: registry,

		apiCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_calls_total",
				Help:      "Total Storage Gateway API calls by operation and result",
			},
			[]string{"operation", "result"},
		),

		apiRetries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_retries_total",
				Help:      "Retry attempts spent on throttled API calls",
			},
			[]string{"operation"},
		),

		probes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "gateway_resolution_probes_total",
				Help:      "Gateway probes made during tape-to-gateway resolution",
			},
			[]string{"result"},
		),

		outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tape_outcomes_total",
				Help:      "Per-tape outcomes by workflow mode and action",
			},
			[]string{"mode", "action"},
		),
	}

	registry.MustRegister(c.apiCalls, c.apiRetries, c.probes, c.outcomes)
	return c
}

// Registry returns the underlying registry, for the /metrics handler.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// ObserveCall records one finished API call and any retries it consumed.
func (c *Collector) ObserveCall(operation string, attempts int, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.apiCalls.WithLabelValues(operation, result).Inc()
	if attempts > 1 {
		c.apiRetries.WithLabelValues(operation).Add(float64(attempts - 1))
	}
}

// ObserveResolutionProbe records one trial-discovery probe.
func (c *Collector) ObserveResolutionProbe(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	c.probes.WithLabelValues(result).Inc()
}

// ObserveOutcome records one per-tape deletion outcome.
func (c *Collector) ObserveOutcome(mode vtl.Mode, action vtl.Action) {
	c.outcomes.WithLabelValues(string(mode), string(action)).Inc()
}
