// Package metrics owns the Prometheus registry of the service and the
// per-route instrumentation applied to every API handler.
package metrics

import (
	"log/slog"
	"net/http"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/expfmt"
)

// TextContentType is the Content-Type of the /metrics route on the API port.
const TextContentType = "text/plain; charset=utf-8"

// Metrics holds a private registry and the request instruments.
// Every series is labelled with the route it was recorded for.
type Metrics struct {
	Registry *prom.Registry

	requests   *prom.CounterVec
	inProgress *prom.GaugeVec
	duration   *prom.SummaryVec

	// Per method and status code, filled in by promhttp.
	httpRequests *prom.CounterVec
	httpDuration *prom.HistogramVec
}

// New creates and registers the request metrics, the app_info gauge and
// the Go runtime and process collectors on a fresh registry.
func New(version string) *Metrics {
	reg := prom.NewRegistry()
	m := &Metrics{
		Registry: reg,
		requests: prom.NewCounterVec(prom.CounterOpts{
			Name: "request_count_total",
			Help: "Number of requests processed",
		}, []string{"endpoint"}),
		inProgress: prom.NewGaugeVec(prom.GaugeOpts{
			Name: "inprogress_requests",
			Help: "Number of requests in progress",
		}, []string{"endpoint"}),
		duration: prom.NewSummaryVec(prom.SummaryOpts{
			Name: "request_processing_seconds",
			Help: "Time spent processing request",
		}, []string{"endpoint"}),
		httpRequests: prom.NewCounterVec(prom.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests by method and status code",
		}, []string{"method", "code"}),
		httpDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration by route, method and status code",
			Buckets: prom.DefBuckets,
		}, []string{"endpoint", "method", "code"}),
	}
	info := prom.NewGauge(prom.GaugeOpts{
		Name:        "app_info",
		Help:        "Application info",
		ConstLabels: prom.Labels{"version": version},
	})
	info.Set(1)

	reg.MustRegister(
		m.requests,
		m.inProgress,
		m.duration,
		m.httpRequests,
		m.httpDuration,
		info,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Instrument wraps next so that each call counts a request, holds the
// in-progress gauge for its duration and observes its processing time,
// all under the given endpoint label. The response status and method are
// recorded by the promhttp counter and histogram.
func (m *Metrics) Instrument(endpoint string, next http.Handler) http.Handler {
	requests := m.requests.WithLabelValues(endpoint)
	inProgress := m.inProgress.WithLabelValues(endpoint)
	duration := m.duration.WithLabelValues(endpoint)

	next = promhttp.InstrumentHandlerCounter(m.httpRequests,
		promhttp.InstrumentHandlerDuration(
			m.httpDuration.MustCurryWith(prom.Labels{"endpoint": endpoint}),
			next,
		),
	)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Inc()
		inProgress.Inc()
		defer inProgress.Dec()

		timer := prom.NewTimer(duration)
		defer timer.ObserveDuration()

		next.ServeHTTP(w, r)
	})
}

// Handler serves the registry for the standalone metrics listener,
// negotiating the exposition format with the scraper.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{
		Registry: m.Registry,
	})
}

// TextHandler serves the registry in the text exposition format with a
// fixed text/plain content type, regardless of the Accept header.
func (m *Metrics) TextHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		families, err := m.Registry.Gather()
		if err != nil {
			// Gather returns what it could collect alongside the error.
			slog.Error("gathering metrics", slog.String("error", err.Error()))
		}

		w.Header().Set("Content-Type", TextContentType)
		w.WriteHeader(http.StatusOK)
		for _, mf := range families {
			if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
				slog.Error("writing metrics", slog.String("error", err.Error()))
				return
			}
		}
	})
}
