package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/4rinababan/chatfinance/internal/cache"
)

// PrometheusCollector implements Collector for Prometheus.
type PrometheusCollector struct {
	namespace string

	replies          *prometheus.CounterVec
	replyLatency     *prometheus.HistogramVec
	classifications  *prometheus.CounterVec
	fallbackFailures *prometheus.CounterVec
	storeErrors      *prometheus.CounterVec
	circuitState     *prometheus.GaugeVec
}

func NewPrometheusCollector(namespace string) *PrometheusCollector {
	return &PrometheusCollector{
		namespace: namespace,
		replies: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "chat_replies_total",
				Help:      "Total number of chat replies per route",
			},
			[]string{"route"},
		),
		replyLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "chat_reply_duration_seconds",
				Help:      "Time to produce a chat reply per route",
				Buckets:   []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"route"},
		),
		classifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "classifier_predictions_total",
				Help:      "Total number of classifier predictions per label and gate outcome",
			},
			[]string{"label", "confident"},
		),
		fallbackFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fallback_failures_total",
				Help:      "Total number of failed fallback calls per reason",
			},
			[]string{"reason"},
		),
		storeErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ledger_errors_total",
				Help:      "Total number of ledger store errors per operation",
			},
			[]string{"operation"},
		),
		circuitState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "circuit_state",
				Help:      "Current circuit breaker state (0=closed, 1=open, 2=half-open)",
			},
			[]string{"breaker"},
		),
	}
}

// Register adds all collectors to reg.
func (pc *PrometheusCollector) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		pc.replies,
		pc.replyLatency,
		pc.classifications,
		pc.fallbackFailures,
		pc.storeErrors,
		pc.circuitState,
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// RegisterCache exposes a cache's counters under the given name.
func (pc *PrometheusCollector) RegisterCache(reg prometheus.Registerer, name string, stats func() cache.Stats) error {
	labels := prometheus.Labels{"cache": name}
	collectors := []prometheus.Collector{
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace:   pc.namespace,
			Name:        "cache_hits_total",
			Help:        "Total number of cache hits",
			ConstLabels: labels,
		}, func() float64 { return float64(stats().Hits) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace:   pc.namespace,
			Name:        "cache_misses_total",
			Help:        "Total number of cache misses",
			ConstLabels: labels,
		}, func() float64 { return float64(stats().Misses) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace:   pc.namespace,
			Name:        "cache_evictions_total",
			Help:        "Total number of cache evictions",
			ConstLabels: labels,
		}, func() float64 { return float64(stats().Evictions) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace:   pc.namespace,
			Name:        "cache_entries",
			Help:        "Current number of cache entries",
			ConstLabels: labels,
		}, func() float64 { return float64(stats().Size) }),
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (pc *PrometheusCollector) RecordReply(route string, duration time.Duration) {
	pc.replies.WithLabelValues(route).Inc()
	pc.replyLatency.WithLabelValues(route).Observe(duration.Seconds())
}

func (pc *PrometheusCollector) RecordClassification(label string, confident bool) {
	outcome := "false"
	if confident {
		outcome = "true"
	}
	pc.classifications.WithLabelValues(label, outcome).Inc()
}

func (pc *PrometheusCollector) RecordFallbackFailure(reason string) {
	pc.fallbackFailures.WithLabelValues(reason).Inc()
}

func (pc *PrometheusCollector) RecordStoreError(operation string) {
	pc.storeErrors.WithLabelValues(operation).Inc()
}

func (pc *PrometheusCollector) RecordCircuitState(name string, state CircuitState) {
	pc.circuitState.WithLabelValues(name).Set(float64(state))
}

var _ Collector = (*PrometheusCollector)(nil)
