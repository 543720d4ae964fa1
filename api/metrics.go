package api

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

var log = logrus.New()

var apiMetricsOnce sync.Once

// apiRequests counts catalog and fingerprint requests by outcome, so
// unknown-site and bad-band traffic shows up without log digging.
var apiRequests *prometheus.CounterVec

func registerAPICounterVec(c *prometheus.CounterVec) *prometheus.CounterVec {
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

func initAPIMetrics() {
	apiMetricsOnce.Do(func() {
		apiRequests = registerAPICounterVec(prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sanctra",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Catalog and fingerprint requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}))
	})
}
