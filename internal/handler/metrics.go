package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	clogRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "counterlog_requests_total",
		Help: "Total HTTP requests by method, path, and response status.",
	}, []string{"method", "path", "status"})

	clogRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "counterlog_request_duration_seconds",
		Help:    "Request duration in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	clogRecordsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "counterlog_records_appended_total",
		Help: "Total ledger records appended by kind.",
	}, []string{"kind"})

	clogRejectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "counterlog_rejections_total",
		Help: "Total business rejections by reason.",
	}, []string{"reason"})

	clogVerifyRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "counterlog_verify_runs_total",
		Help: "Total ledger verification runs by outcome.",
	}, []string{"outcome"})

	clogLoginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "counterlog_admin_logins_total",
		Help: "Total admin login attempts by result.",
	}, []string{"result"})
)

// PrometheusMiddleware returns a Gin middleware that records per-request metrics.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())
		method := c.Request.Method
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		clogRequestsTotal.WithLabelValues(method, path, status).Inc()
		clogRequestDuration.WithLabelValues(method, path).Observe(duration)
	}
}

// MetricsHandler returns a Gin handler that serves Prometheus metrics.
func MetricsHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

func recordAppended(kind string) {
	clogRecordsTotal.WithLabelValues(kind).Inc()
}

func recordRejection(reason string) {
	clogRejectionsTotal.WithLabelValues(reason).Inc()
}

func recordVerifyRun(valid bool) {
	if valid {
		clogVerifyRunsTotal.WithLabelValues("valid").Inc()
	} else {
		clogVerifyRunsTotal.WithLabelValues("invalid").Inc()
	}
}

func recordLogin(success bool) {
	if success {
		clogLoginsTotal.WithLabelValues("success").Inc()
	} else {
		clogLoginsTotal.WithLabelValues("failure").Inc()
	}
}
