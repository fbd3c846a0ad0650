package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	stagesTotal     *prometheus.CounterVec
	directivesTotal *prometheus.CounterVec
	requestsTotal   *prometheus.CounterVec
	latencyMs       *prometheus.HistogramVec
}

func New() *Metrics {
	r := prometheus.NewRegistry()
	m := &Metrics{
		registry: r,
		stagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agiml_stages_total",
			Help: "Total number of conversations processed, per middleware stage.",
		}, []string{"stage"}),
		directivesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agiml_directives_total",
			Help: "Total number of image directives found in responses, per outcome.",
		}, []string{"outcome"}),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agiml_http_requests_total",
			Help: "Total number of requests served by the sidecar.",
		}, []string{"route", "status"}),
		latencyMs: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "agiml_http_request_latency_ms",
			Help:    "Sidecar request latency in milliseconds.",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500},
		}, []string{"route", "status"}),
	}
	r.MustRegister(m.stagesTotal, m.directivesTotal, m.requestsTotal, m.latencyMs)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveStage(stage string) {
	m.stagesTotal.WithLabelValues(stage).Inc()
}

func (m *Metrics) ObserveDirective(outcome string) {
	m.directivesTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveRequest(route string, status int, dur time.Duration) {
	s := strconv.Itoa(status)
	m.requestsTotal.WithLabelValues(route, s).Inc()
	m.latencyMs.WithLabelValues(route, s).Observe(float64(dur.Microseconds()) / 1000)
}
