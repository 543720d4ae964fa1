package render

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

var log = logrus.New()

var renderMetricsOnce sync.Once

var (
	rendersTotal    *prometheus.CounterVec
	renderDuration  *prometheus.HistogramVec
	renderWAVBytes  prometheus.Histogram
	renderCacheHits prometheus.Counter
)

func registerRenderCounterVec(c *prometheus.CounterVec) *prometheus.CounterVec {
	if err := prometheus.Register(c); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing
			}
		}
		log.Printf("prometheus counter register failed: %v", err)
	}
	return c
}

func registerRenderHistogramVec(c *prometheus.HistogramVec) *prometheus.HistogramVec {
	if err := prometheus.Register(c); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := already.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing
			}
		}
		log.Printf("prometheus histogram register failed: %v", err)
	}
	return c
}

func registerRenderHistogram(c prometheus.Histogram) prometheus.Histogram {
	if err := prometheus.Register(c); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := already.ExistingCollector.(prometheus.Histogram); ok {
				return existing
			}
		}
		log.Printf("prometheus histogram register failed: %v", err)
	}
	return c
}

func registerRenderCounter(c prometheus.Counter) prometheus.Counter {
	if err := prometheus.Register(c); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := already.ExistingCollector.(prometheus.Counter); ok {
				return existing
			}
		}
		log.Printf("prometheus counter register failed: %v", err)
	}
	return c
}

func initRenderMetrics() {
	renderMetricsOnce.Do(func() {
		rendersTotal = registerRenderCounterVec(prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sanctra",
			Subsystem: "render",
			Name:      "renders_total",
			Help:      "Total number of impulse response renders.",
		}, []string{"site", "result"}))

		renderDuration = registerRenderHistogramVec(prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "sanctra",
			Subsystem: "render",
			Name:      "duration_seconds",
			Help:      "Wall time spent synthesising impulse responses.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"result"}))

		renderWAVBytes = registerRenderHistogram(prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "sanctra",
			Subsystem: "render",
			Name:      "wav_size_bytes",
			Help:      "Size of encoded WAV payloads.",
			Buckets:   []float64{10_000, 50_000, 100_000, 250_000, 500_000, 1_000_000, 2_000_000, 5_000_000},
		}))

		renderCacheHits = registerRenderCounter(prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sanctra",
			Subsystem: "render",
			Name:      "cache_hits_total",
			Help:      "Renders served from the in-process cache.",
		}))
	})
}

func recordRenderMetrics(site string, err error, wavBytes int, duration time.Duration) {
	if rendersTotal == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}

	rendersTotal.WithLabelValues(site, result).Inc()
	renderDuration.WithLabelValues(result).Observe(duration.Seconds())
	if err == nil {
		renderWAVBytes.Observe(float64(wavBytes))
	}
}
