package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/training-attendance-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation. A nil receiver is a no-op.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
	cacheWrite      prometheus.Observer

	rosterFallbacks   prometheus.Counter
	loadDegraded      *prometheus.CounterVec
	sessionSaves      *prometheus.CounterVec
	attendanceWrites  *prometheus.CounterVec
	dailyLogsCreated  prometheus.Counter
	saveBatchDuration prometheus.Histogram
}

// NewMetricsService registers the HTTP, cache and attendance session collectors.
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

	cacheLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_lookups_total",
		Help: "Cache lookups by result",
	}, []string{"result"})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache set operations",
		Buckets: prometheus.DefBuckets,
	})

	rosterFallbacks := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "roster_course_fallback_total",
		Help: "Rosters returned unfiltered because no student matched the selected course",
	})

	loadDegraded := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "session_load_degraded_total",
		Help: "Session load sources that failed and were treated as empty",
	}, []string{"source"})

	sessionSaves := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "session_saves_total",
		Help: "Attendance session saves by result",
	}, []string{"result"})

	attendanceWrites := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "attendance_record_writes_total",
		Help: "Attendance record writes issued by kind",
	}, []string{"kind"})

	dailyLogsCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "daily_log_entries_created_total",
		Help: "Daily log entries created by session saves",
	})

	saveBatchDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "session_save_batch_seconds",
		Help:    "Wall time of the concurrent write batch issued by a save",
		Buckets: prometheus.DefBuckets,
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLookups, cacheWrite,
		rosterFallbacks, loadDegraded, sessionSaves, attendanceWrites, dailyLogsCreated, saveBatchDuration, goroutines)

	return &MetricsService{
		registry:          registry,
		handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:   requestDuration,
		requestTotal:      requestTotal,
		cacheLookups:      cacheLookups,
		cacheWrite:        cacheWrite,
		rosterFallbacks:   rosterFallbacks,
		loadDegraded:      loadDegraded,
		sessionSaves:      sessionSaves,
		attendanceWrites:  attendanceWrites,
		dailyLogsCreated:  dailyLogsCreated,
		saveBatchDuration: saveBatchDuration,
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
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

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheLookup counts a cache hit or miss.
func (m *MetricsService) RecordCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// RecordRosterFallback counts a course filter that fell back to the full roster.
func (m *MetricsService) RecordRosterFallback() {
	if m == nil {
		return
	}
	m.rosterFallbacks.Inc()
}

// RecordLoadDegraded counts a load source that failed.
func (m *MetricsService) RecordLoadDegraded(source models.LoadSource) {
	if m == nil {
		return
	}
	m.loadDegraded.WithLabelValues(string(source)).Inc()
}

// RecordSave records the outcome and write counts of a save batch.
func (m *MetricsService) RecordSave(success bool, summary models.SaveSummary, duration time.Duration) {
	if m == nil {
		return
	}
	result := "failed"
	if success {
		result = "ok"
	}
	m.sessionSaves.WithLabelValues(result).Inc()
	m.attendanceWrites.WithLabelValues(string(models.AttendanceOperationCreate)).Add(float64(summary.Created))
	m.attendanceWrites.WithLabelValues(string(models.AttendanceOperationUpdate)).Add(float64(summary.Updated))
	m.dailyLogsCreated.Add(float64(summary.LogsCreated))
	m.saveBatchDuration.Observe(duration.Seconds())
}
