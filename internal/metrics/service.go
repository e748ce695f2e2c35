package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "custody_signer"

const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Service holds the signer's Prometheus collectors.
type Service struct {
	Registry *prometheus.Registry

	SignRequests *prometheus.CounterVec
	SignDuration *prometheus.HistogramVec
	ConfigSwaps  prometheus.Counter
}

// NewService registers the collectors with registry. A nil registry uses a fresh
// prometheus.Registry so tests and multiple servers never collide.
func NewService(registry *prometheus.Registry) *Service {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	factory := promauto.With(registry)

	return &Service{
		Registry: registry,
		SignRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sign_requests_total",
			Help:      "The total number of sign requests by backend and result",
		}, []string{"backend", "result"}),
		SignDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sign_duration_seconds",
			Help:      "Time spent signing, including backend polling",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}, []string{"backend"}),
		ConfigSwaps: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "config_swaps_total",
			Help:      "The total number of strategy configuration replacements",
		}),
	}
}

// ObserveSign records one finished sign call.
func (s *Service) ObserveSign(backend string, took time.Duration, err error) {
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}

	s.SignRequests.WithLabelValues(backend, result).Inc()
	s.SignDuration.WithLabelValues(backend).Observe(took.Seconds())
}
