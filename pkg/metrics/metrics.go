// Package metrics exports runtime instrumentation as Prometheus metrics.
//
// A Collector observes one or more runtimes and trees:
//
//	reg := prometheus.NewRegistry()
//	m := metrics.NewCollector(reg)
//	rt := reactive.NewRuntime(reactive.WithObserver(m))
//	root, err := core.Mount(app, container, core.WithRuntime(rt), core.WithObserver(m))
//
// All operations are safe for concurrent use.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/go-drift/filament/pkg/core"
	"github.com/go-drift/filament/pkg/errors"
	"github.com/go-drift/filament/pkg/reactive"
)

const namespace = "filament"

const (
	reactiveSubsystem = "reactive"
	coreSubsystem     = "core"
)

// Outcome label values for RenderErrorsTotal.
const (
	OutcomeCaptured   = "captured"
	OutcomeUncaptured = "uncaptured"
)

// Collector holds the runtime metrics.
type Collector struct {
	// ScopeRunsTotal counts scope body evaluations.
	ScopeRunsTotal prometheus.Counter

	// FlushesTotal counts flushes that ran at least one scope.
	FlushesTotal prometheus.Counter

	// FlushDurationSeconds measures wall time per flush.
	FlushDurationSeconds prometheus.Histogram

	// NodesMountedTotal counts nodes that were attached.
	NodesMountedTotal prometheus.Counter

	// NodesUnmountedTotal counts nodes that were torn down.
	NodesUnmountedTotal prometheus.Counter

	// LiveNodes tracks mounted nodes across every observed tree.
	LiveNodes prometheus.Gauge

	// RenderErrorsTotal counts render failures.
	// Labels: phase (mount, update, fallback), outcome (captured, uncaptured)
	RenderErrorsTotal *prometheus.CounterVec
}

var (
	_ reactive.Observer = (*Collector)(nil)
	_ core.Observer     = (*Collector)(nil)
)

// NewCollector creates the metrics and registers them with reg. A nil reg
// leaves them unregistered. Registering twice with the same registry
// panics.
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		ScopeRunsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: reactiveSubsystem,
			Name:      "scope_runs_total",
			Help:      "Total number of reactive scope evaluations",
		}),
		FlushesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: reactiveSubsystem,
			Name:      "flushes_total",
			Help:      "Total number of flushes that ran at least one scope",
		}),
		FlushDurationSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: reactiveSubsystem,
			Name:      "flush_duration_seconds",
			Help:      "Flush duration in seconds",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),
		NodesMountedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: coreSubsystem,
			Name:      "nodes_mounted_total",
			Help:      "Total number of nodes attached to a host tree",
		}),
		NodesUnmountedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: coreSubsystem,
			Name:      "nodes_unmounted_total",
			Help:      "Total number of nodes torn down",
		}),
		LiveNodes: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: coreSubsystem,
			Name:      "live_nodes",
			Help:      "Number of currently mounted nodes",
		}),
		RenderErrorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: coreSubsystem,
			Name:      "render_errors_total",
			Help:      "Total render failures by phase and outcome",
		}, []string{"phase", "outcome"}),
	}
}

// ScopeRan implements reactive.Observer.
func (c *Collector) ScopeRan() {
	c.ScopeRunsTotal.Inc()
}

// Flushed implements reactive.Observer.
func (c *Collector) Flushed(_ int, elapsed time.Duration) {
	c.FlushesTotal.Inc()
	c.FlushDurationSeconds.Observe(elapsed.Seconds())
}

// NodeMounted implements core.Observer.
func (c *Collector) NodeMounted() {
	c.NodesMountedTotal.Inc()
	c.LiveNodes.Inc()
}

// NodeUnmounted implements core.Observer.
func (c *Collector) NodeUnmounted() {
	c.NodesUnmountedTotal.Inc()
	c.LiveNodes.Dec()
}

// RenderFailed implements core.Observer.
func (c *Collector) RenderFailed(phase errors.Phase, captured bool) {
	outcome := OutcomeUncaptured
	if captured {
		outcome = OutcomeCaptured
	}
	c.RenderErrorsTotal.WithLabelValues(string(phase), outcome).Inc()
}
