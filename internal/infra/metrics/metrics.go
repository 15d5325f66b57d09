package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	reg *prometheus.Registry

	NumbersIssued     *prometheus.CounterVec
	NumberingFailures *prometheus.CounterVec
	DocumentsCreated  *prometheus.CounterVec
	StockMovements    *prometheus.CounterVec
	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		NumbersIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "erp_numbers_issued_total",
			Help: "Document numbers issued by prefix.",
		}, []string{"prefix"}),
		NumberingFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "erp_numbering_failures_total",
			Help: "Failed atomic counter increments by prefix.",
		}, []string{"prefix"}),
		DocumentsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "erp_documents_created_total",
			Help: "Documents created by kind.",
		}, []string{"kind"}),
		StockMovements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "erp_stock_movements_total",
			Help: "Posted warehouse transaction items by direction.",
		}, []string{"direction"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "erp_http_requests_total",
			Help: "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "erp_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}
	m.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.NumbersIssued, m.NumberingFailures, m.DocumentsCreated, m.StockMovements,
		m.httpRequests, m.httpDuration,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware считает запросы. route берётся из r.Pattern, чтобы не плодить метки по id.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		m.httpRequests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		m.httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}
