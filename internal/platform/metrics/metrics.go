// Package metrics registra las métricas Prometheus del servicio.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	Registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec

	reminderDecisions *prometheus.CounterVec
	upstreamErrors    *prometheus.CounterVec
	cacheLookups      *prometheus.CounterVec
}

// New crea un registro propio (no el global) para que los tests puedan
// instanciar varios routers.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "saludhogar_http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "saludhogar_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		reminderDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "saludhogar_reminder_decisions_total",
			Help: "Reminder decisions by type and outcome (sent, duplicate, failed).",
		}, []string{"type", "outcome"}),
		upstreamErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "saludhogar_upstream_errors_total",
			Help: "Failed calls to the SaludHogar API by operation.",
		}, []string{"operation"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "saludhogar_query_cache_lookups_total",
			Help: "Query cache lookups by result (hit, miss).",
		}, []string{"result"}),
	}
	reg.MustRegister(
		m.httpRequests,
		m.httpLatency,
		m.reminderDecisions,
		m.upstreamErrors,
		m.cacheLookups,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// Los métodos aceptan receptor nil para que los componentes no dependan de
// que alguien configure métricas.

func (m *Metrics) ReminderDecision(kind, outcome string) {
	if m == nil {
		return
	}
	m.reminderDecisions.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) UpstreamError(operation string) {
	if m == nil {
		return
	}
	m.upstreamErrors.WithLabelValues(operation).Inc()
}

func (m *Metrics) CacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// Middleware mide cada request usando el patrón de ruta de chi (no el path
// crudo) para no explotar la cardinalidad.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		m.httpRequests.WithLabelValues(route, r.Method, strconv.Itoa(sw.status)).Inc()
		m.httpLatency.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
