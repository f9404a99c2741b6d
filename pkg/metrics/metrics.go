package metrics

import (
	"database/sql"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	metricPrefix = "maintenance_"

	ResultSuccess = "success"
	ResultError   = "error"
)

var (
	registerOnce sync.Once

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec

	loginAttempts *prometheus.CounterVec

	reportExportTotal   *prometheus.CounterVec
	reportExportLatency *prometheus.HistogramVec

	cascadeDeletes *prometheus.CounterVec
)

// Init registers the service metrics. db may be nil; when set its pool
// statistics are exported too.
func Init(db *sql.DB) {
	registerOnce.Do(func() {
		httpRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "http_requests_total",
				Help: "Total HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		)
		httpLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		)
		loginAttempts = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "login_attempts_total",
				Help: "Login attempts by result",
			},
			[]string{"result"},
		)
		reportExportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "report_export_total",
				Help: "Report exports by report, format and result",
			},
			[]string{"report", "format", "result"},
		)
		reportExportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "report_export_latency_seconds",
				Help:    "Report export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"report", "format"},
		)
		cascadeDeletes = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "cascade_deletes_total",
				Help: "Deletes with dependent-row handling by entity and result",
			},
			[]string{"entity", "result"},
		)

		prometheus.MustRegister(
			httpRequests,
			httpLatency,
			loginAttempts,
			reportExportTotal,
			reportExportLatency,
			cascadeDeletes,
		)
		if db != nil {
			prometheus.MustRegister(collectors.NewDBStatsCollector(db, "maintenance"))
		}
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request count and latency per matched route, so
// path parameters do not blow up label cardinality.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		ObserveHTTP(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}

func ObserveHTTP(method, route string, status int, duration time.Duration) {
	if httpRequests != nil {
		httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	}
	if httpLatency != nil {
		httpLatency.WithLabelValues(method, route).Observe(duration.Seconds())
	}
}

// IncLogin counts a login attempt. result is success, failure or limited.
func IncLogin(result string) {
	if result == "" {
		result = "unknown"
	}
	if loginAttempts != nil {
		loginAttempts.WithLabelValues(result).Inc()
	}
}

func ObserveExport(report, format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = ResultSuccess
	}
	if reportExportTotal != nil {
		reportExportTotal.WithLabelValues(report, format, result).Inc()
	}
	if reportExportLatency != nil {
		reportExportLatency.WithLabelValues(report, format).Observe(duration.Seconds())
	}
}

func IncCascadeDelete(entity, result string) {
	if result == "" {
		result = ResultSuccess
	}
	if cascadeDeletes != nil {
		cascadeDeletes.WithLabelValues(entity, result).Inc()
	}
}
