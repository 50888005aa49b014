package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the service.
type Metrics struct {
	ActiveInterviews prometheus.Gauge
	InterviewEvents  *prometheus.CounterVec
	OracleRequests   *prometheus.CounterVec
	OracleLatency    prometheus.Histogram
	WSMessages       *prometheus.CounterVec
}

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		ActiveInterviews: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_interviews",
			Help:      "Number of interview sessions not yet concluded.",
		}),
		InterviewEvents: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "interview_events_total",
			Help:      "Interview lifecycle events by type.",
		}, []string{"event"}),
		OracleRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "oracle_requests_total",
			Help:      "Oracle calls by operation and outcome.",
		}, []string{"op", "outcome"}),
		OracleLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "oracle_latency_ms",
			Help:      "Oracle round-trip latency in milliseconds.",
			Buckets:   []float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000},
		}),
		WSMessages: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ws_messages_total",
			Help:      "WebSocket messages by direction and type.",
		}, []string{"direction", "type"}),
	}
}

func (m *Metrics) ObserveOracleLatency(d time.Duration) {
	m.OracleLatency.Observe(float64(d.Milliseconds()))
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
