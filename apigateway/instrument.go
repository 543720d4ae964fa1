package gateway

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

func registerCounterVec(cv *prometheus.CounterVec) *prometheus.CounterVec {
	if err := prometheus.Register(cv); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(*prometheus.CounterVec)
		}
	}
	return cv
}

func registerHistogram(h prometheus.Histogram) prometheus.Histogram {
	if err := prometheus.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(prometheus.Histogram)
		}
	}
	return h
}

func registerSummary(s prometheus.Summary) prometheus.Summary {
	if err := prometheus.Register(s); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(prometheus.Summary)
		}
	}
	return s
}

// Instrumentation counts and times every request per endpoint. Metrics are
// registered once; rebuilding the engine reuses the existing collectors.
func Instrumentation() gin.HandlerFunc {
	counterVec := registerCounterVec(prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sanctra",
		Subsystem: "request",
		Name:      "requests_count",
		Help:      "Number of requests per each endpoint",
	}, []string{"code", "method", "handler", "host", "url"}))

	resTime := registerHistogram(prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "sanctra",
		Subsystem: "response",
		Name:      "response_time_hist",
		Help:      "sanctra response duration",
	}))

	resSize := registerHistogram(prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "sanctra",
		Subsystem: "response",
		Name:      "size_histogram",
		Help:      "sanctra response size",
	}))

	reqSize := registerHistogram(prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "sanctra",
		Subsystem: "request",
		Name:      "size_hist",
		Help:      "Request size instrumenter",
	}))

	resTimeSum := registerSummary(prometheus.NewSummary(prometheus.SummaryOpts{
		Namespace: "sanctra",
		Subsystem: "response",
		Name:      "latency_summary",
		Help:      "Computes responses latency",
	}))

	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		duration := float64(time.Since(start)) * 1e-6 // to millisecond

		status := strconv.Itoa(c.Writer.Status())
		counterVec.WithLabelValues(status, c.Request.Method, c.HandlerName(), c.Request.Host, c.Request.URL.Path).Inc()
		resTime.Observe(duration)
		resSize.Observe(float64(c.Writer.Size()))
		reqSize.Observe(float64(c.Request.ContentLength))
		resTimeSum.Observe(duration)
	}
}
