// Package observability exposes the Prometheus metrics of the globe pipeline.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and gauges for the globe pipeline.
type Metrics struct {
	Rebuilds           *prometheus.CounterVec // labels: outcome={ok,error}
	ArcsDropped        prometheus.Counter
	ColorsRejected     prometheus.Counter
	PointsProjected    prometheus.Gauge
	CoordinatesClamped prometheus.Counter
	RingTicks          *prometheus.CounterVec // labels: outcome={ok,skipped,idle}
	BoundaryTrips      prometheus.Counter
	SurfaceReady       prometheus.Gauge
	LiveUpdates        prometheus.Counter
}

func newMetrics() *Metrics {
	return &Metrics{
		Rebuilds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "arc_globe",
			Name:      "rebuilds_total",
			Help:      "Complete sanitize, project and bind passes by outcome.",
		}, []string{"outcome"}),
		ArcsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "arc_globe",
			Name:      "arcs_dropped_total",
			Help:      "Arcs discarded because a numeric field was not finite.",
		}),
		ColorsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "arc_globe",
			Name:      "colors_rejected_total",
			Help:      "Arcs whose endpoints were skipped because the color did not parse.",
		}),
		PointsProjected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "arc_globe",
			Name:      "points",
			Help:      "Deduplicated endpoint markers in the current data version.",
		}),
		CoordinatesClamped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "arc_globe",
			Name:      "coordinates_clamped_total",
			Help:      "Non-finite polygon coordinates replaced with 0.",
		}),
		RingTicks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "arc_globe",
			Name:      "ring_ticks_total",
			Help:      "Ring scheduler ticks by outcome.",
		}, []string{"outcome"}),
		BoundaryTrips: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "arc_globe",
			Name:      "boundary_trips_total",
			Help:      "Panics contained by a fault boundary.",
		}),
		SurfaceReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "arc_globe",
			Name:      "surface_ready",
			Help:      "1 once the rendering surface has loaded, 0 otherwise.",
		}),
		LiveUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "arc_globe",
			Name:      "live_updates_total",
			Help:      "Arc lists received from the live feed.",
		}),
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.Rebuilds,
		m.ArcsDropped,
		m.ColorsRejected,
		m.PointsProjected,
		m.CoordinatesClamped,
		m.RingTicks,
		m.BoundaryTrips,
		m.SurfaceReady,
		m.LiveUpdates,
	)
	return m
}

// NewMetricsForTesting creates Metrics that are not registered anywhere, so
// tests can build as many as they like.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}
