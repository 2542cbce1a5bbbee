package interceptors

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func InterceptWithDefaultMetrics(reg prometheus.Registerer, handler http.Handler) http.Handler {
	inFlightGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "filedrop_http_in_flight_requests",
		Help: "Current number of in-flight HTTP requests",
	})
	requestCount := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "filedrop_http_requests_total",
		Help: "Total HTTP requests processed, labeled by status code and method",
	}, []string{"code", "method"})
	requestLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name: "filedrop_http_request_duration_seconds",
		Help: "Histogram of HTTP request durations in seconds",
	}, []string{"method"})

	reg.MustRegister(inFlightGauge, requestCount, requestLatency)

	return promhttp.InstrumentHandlerInFlight(inFlightGauge,
		promhttp.InstrumentHandlerDuration(requestLatency,
			promhttp.InstrumentHandlerCounter(requestCount, handler),
		),
	)
}

// Metrics holds the domain counters. A nil *Metrics is valid and records nothing, which keeps it optional for
// components under test.
type Metrics struct {
	ingestTotal *prometheus.CounterVec
	fetchTotal  *prometheus.CounterVec
	driftTotal  prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ingestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "filedrop_ingest_total",
			Help: "Total uploads processed, labeled by outcome",
		}, []string{"outcome"}),
		fetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "filedrop_fetch_total",
			Help: "Total file fetches processed, labeled by outcome",
		}, []string{"outcome"}),
		driftTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "filedrop_content_drift_total",
			Help: "Cataloged objects removed or renamed on disk behind the service's back",
		}),
	}
	reg.MustRegister(m.ingestTotal, m.fetchTotal, m.driftTotal)

	return m
}

func (m *Metrics) IngestOutcome(outcome string) {
	if m == nil {
		return
	}
	m.ingestTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) FetchOutcome(outcome string) {
	if m == nil {
		return
	}
	m.fetchTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ContentDrift() {
	if m == nil {
		return
	}
	m.driftTotal.Inc()
}
