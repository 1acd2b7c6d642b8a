package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tokenpulse/internal/contracts"
)

// Collectors holds the Prometheus instruments fed from frozen cycle
// metrics. Everything is observed once per cycle at freeze time, so
// counters move in cycle-sized increments.
type Collectors struct {
	CyclesTotal      prometheus.Counter
	EmptyCyclesTotal prometheus.Counter
	CycleDuration    prometheus.Histogram

	Discovered prometheus.Gauge
	AfterDedup prometheus.Gauge

	SweepPagesOK     prometheus.Counter
	SweepPagesFailed prometheus.Counter
	SweepTokensAdded prometheus.Counter

	AcceptedTotal   *prometheus.CounterVec
	RejectionsTotal *prometheus.CounterVec
	EmittedTotal    prometheus.Counter
	SuppressedTotal prometheus.Counter
}

// NewCollectors registers all instruments on the default registry.
func NewCollectors(namespace string) *Collectors {
	if namespace == "" {
		namespace = "tokenpulse"
	}

	return &Collectors{
		CyclesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "cycles_total",
			Help:      "Total number of completed scan cycles",
		}),
		EmptyCyclesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "empty_cycles_total",
			Help:      "Total number of cycles where every source came back empty",
		}),
		CycleDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "cycle_duration_seconds",
			Help:      "Scan cycle duration in seconds",
			Buckets:   []float64{1, 2, 5, 10, 20, 30, 60, 120},
		}),
		Discovered: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "discovery",
			Name:      "candidates_discovered",
			Help:      "Raw discovery records in the most recent cycle",
		}),
		AfterDedup: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "discovery",
			Name:      "candidates_after_dedup",
			Help:      "Unique candidates processed in the most recent cycle",
		}),
		SweepPagesOK: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "discovery",
			Name:      "sweep_pages_ok_total",
			Help:      "Total sweep pages fetched successfully",
		}),
		SweepPagesFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "discovery",
			Name:      "sweep_pages_failed_total",
			Help:      "Total sweep pages that failed or timed out",
		}),
		SweepTokensAdded: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "discovery",
			Name:      "sweep_tokens_added_total",
			Help:      "Total candidates contributed by the overflow sweep",
		}),
		AcceptedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gate",
			Name:      "accepted_total",
			Help:      "Total accepted candidates by gate path",
		}, []string{"path"}),
		RejectionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gate",
			Name:      "rejections_total",
			Help:      "Total rejections by first failed guard",
		}, []string{"reason"}),
		EmittedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "emission",
			Name:      "signals_emitted_total",
			Help:      "Total signals emitted to the sinks",
		}),
		SuppressedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "emission",
			Name:      "signals_suppressed_total",
			Help:      "Total accepted candidates suppressed by the dedup window",
		}),
	}
}

// Observe folds one frozen cycle into the instruments.
func (c *Collectors) Observe(m contracts.CycleMetrics) {
	c.CyclesTotal.Inc()
	if m.EmptyCycle {
		c.EmptyCyclesTotal.Inc()
	}
	c.CycleDuration.Observe(float64(m.DurationMs) / 1000)

	c.Discovered.Set(float64(m.Discovered))
	c.AfterDedup.Set(float64(m.AfterDedup))

	c.SweepPagesOK.Add(float64(m.SweepPagesOK))
	c.SweepPagesFailed.Add(float64(m.SweepPagesFailed))
	c.SweepTokensAdded.Add(float64(m.SweepTokensAdded))

	strict := m.Accepted - m.AcceptedRelaxed
	c.AcceptedTotal.WithLabelValues(string(contracts.PathStrict)).Add(float64(strict))
	c.AcceptedTotal.WithLabelValues(string(contracts.PathRelaxed)).Add(float64(m.AcceptedRelaxed))

	// Every reason gets a sample each cycle so the series exist even at
	// zero, which keeps dashboard queries simple.
	for _, reason := range contracts.AllRejectionReasons() {
		c.RejectionsTotal.WithLabelValues(string(reason)).Add(float64(m.Rejections[reason]))
	}

	c.EmittedTotal.Add(float64(m.Emitted))
	c.SuppressedTotal.Add(float64(m.Suppressed))
}

// Handler returns the HTTP handler for the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
