package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "routeguard_requests_total",
		Help: "Total HTTP requests by route and status",
	}, []string{"route", "status"})
	RequestDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "routeguard_request_duration_ms",
		Help:    "HTTP request duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
	}, []string{"route"})
	PositionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "routeguard_positions_total",
		Help: "Total accepted position reports",
	})
	OffRouteSamplesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "routeguard_off_route_samples_total",
		Help: "Total accepted position reports classified off-route",
	})
	AlertsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "routeguard_alerts_total",
		Help: "Total alerts published by kind",
	}, []string{"kind"})
	AlertsDroppedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "routeguard_alerts_dropped_total",
		Help: "Alerts a subscriber could not accept because its buffer was full",
	}, []string{"subscriber"})
	TrackedSubjects = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "routeguard_tracked_subjects",
		Help: "Number of subjects with tracking state",
	})
	RealtimeClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "routeguard_realtime_clients",
		Help: "Connected websocket alert subscribers",
	})
	SweepDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "routeguard_sweep_duration_ms",
		Help:    "Background sweep duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
	})
)

func init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(RequestDurationMs)
	prometheus.MustRegister(PositionsTotal)
	prometheus.MustRegister(OffRouteSamplesTotal)
	prometheus.MustRegister(AlertsTotal)
	prometheus.MustRegister(AlertsDroppedTotal)
	prometheus.MustRegister(TrackedSubjects)
	prometheus.MustRegister(RealtimeClients)
	prometheus.MustRegister(SweepDurationMs)
}

// Handler exposes the registered metrics for Prometheus scraping
func Handler() http.Handler { return promhttp.Handler() }
