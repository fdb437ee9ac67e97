package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fieldpilot/dispatch-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation and provides lightweight snapshots for API consumption.
type MetricsService struct {
	registry          *prometheus.Registry
	handler           http.Handler
	requestDuration   *prometheus.HistogramVec
	requestTotal      *prometheus.CounterVec
	evaluationTotal   *prometheus.CounterVec
	marketplaceCalls  *prometheus.HistogramVec
	dedupeHits        prometheus.Counter
	slotSearchMisses  prometheus.Counter
	dbQueryDuration   *prometheus.HistogramVec

	requestCount         uint64
	requestDurationTotal uint64
	evaluationCount      uint64
	requestedCount       uint64
	counteredCount       uint64
	skippedCount         uint64
	dedupeHitCount       uint64
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	evaluationTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_evaluations_total",
		Help: "Work-order evaluations by resulting action",
	}, []string{"action"})

	marketplaceCalls := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "marketplace_call_duration_seconds",
		Help:    "Duration of outbound marketplace API calls",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint", "status"})

	dedupeHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dispatch_dedupe_hits_total",
		Help: "Work orders skipped because they were already evaluated recently",
	})

	slotSearchMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dispatch_slot_search_exhausted_total",
		Help: "Slot searches that gave up without finding a free window",
	})

	dbQueryDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of database queries",
		Buckets: prometheus.DefBuckets,
	}, []string{"query"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, evaluationTotal, marketplaceCalls, dedupeHits, slotSearchMisses, dbQueryDuration, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:         registry,
		handler:          handler,
		requestDuration:  requestDuration,
		requestTotal:     requestTotal,
		evaluationTotal:  evaluationTotal,
		marketplaceCalls: marketplaceCalls,
		dedupeHits:       dedupeHits,
		slotSearchMisses: slotSearchMisses,
		dbQueryDuration:  dbQueryDuration,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics and aggregates simple stats for snapshots.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordEvaluation counts one work-order decision by its action.
func (m *MetricsService) RecordEvaluation(action models.EvaluationAction) {
	if m == nil {
		return
	}
	m.evaluationTotal.WithLabelValues(string(action)).Inc()
	atomic.AddUint64(&m.evaluationCount, 1)
	switch action {
	case models.ActionRequested:
		atomic.AddUint64(&m.requestedCount, 1)
	case models.ActionCountered:
		atomic.AddUint64(&m.counteredCount, 1)
	case models.ActionSkipped:
		atomic.AddUint64(&m.skippedCount, 1)
	}
}

// RecordMarketplaceCall records timing for one outbound marketplace request.
// A zero status means the call failed before a response arrived.
func (m *MetricsService) RecordMarketplaceCall(endpoint string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.marketplaceCalls.WithLabelValues(endpoint, fmt.Sprintf("%d", status)).Observe(elapsed.Seconds())
}

// RecordDedupeHit counts a work order short-circuited by the dedupe cache.
func (m *MetricsService) RecordDedupeHit() {
	if m == nil {
		return
	}
	m.dedupeHits.Inc()
	atomic.AddUint64(&m.dedupeHitCount, 1)
}

// RecordSlotSearchExhausted counts a slot search that hit its iteration cap.
func (m *MetricsService) RecordSlotSearchExhausted() {
	if m == nil {
		return
	}
	m.slotSearchMisses.Inc()
}

// ObserveDBQuery records database query timing.
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbQueryDuration.WithLabelValues(label).Observe(duration.Seconds())
}

// Snapshot returns aggregated dispatch counters for the admin API.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)

	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	return models.SystemMetrics{
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		EvaluationsTotal:         atomic.LoadUint64(&m.evaluationCount),
		Requested:                atomic.LoadUint64(&m.requestedCount),
		Countered:                atomic.LoadUint64(&m.counteredCount),
		Skipped:                  atomic.LoadUint64(&m.skippedCount),
		DedupeHits:               atomic.LoadUint64(&m.dedupeHitCount),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
