package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PromCollector records Redis cache latencies and results.
type PromCollector struct {
	hist *prometheus.HistogramVec
	cnt  *prometheus.CounterVec
}

func NewPromCollector(reg prometheus.Registerer, serviceName string) *PromCollector {
	hist := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: serviceName,
			Name:      "cache_operation_duration_seconds",
			Help:      "Cache operation latencies",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
		},
		[]string{"operation"},
	)
	cnt := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: serviceName,
			Name:      "cache_operations_total",
			Help:      "Cache operation counts",
		},
		[]string{"operation", "result"},
	)
	reg.MustRegister(hist, cnt)
	return &PromCollector{hist: hist, cnt: cnt}
}

func (p *PromCollector) ObserveLatency(op string, d time.Duration) {
	p.hist.WithLabelValues(op).Observe(d.Seconds())
}

func (p *PromCollector) IncrementCounter(op, result string) {
	p.cnt.WithLabelValues(op, result).Inc()
}
