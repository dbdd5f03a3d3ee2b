package host

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	txLatency = prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name: "gopstake_tx_latency",
			Help: "Staking transaction latency (seconds).",
		},
		[]string{"method"},
	)
	txSuccesses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gopstake_tx_successes",
			Help: "Number of successful staking transactions.",
		},
		[]string{"method"},
	)
	txFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gopstake_tx_failures",
			Help: "Number of failed staking transactions.",
		},
		[]string{"method"},
	)
	txInstructions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gopstake_instructions",
			Help: "Number of dispatched instructions.",
		},
		[]string{"kind"},
	)
	eventSubscriptions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gopstake_event_subscriptions",
			Help: "Number of staking event subscriptions.",
		},
	)

	hostCollectors = []prometheus.Collector{
		txLatency,
		txSuccesses,
		txFailures,
		txInstructions,
		eventSubscriptions,
	}

	metricsOnce sync.Once
)

// initMetrics registers the metrics collectors.
func initMetrics() {
	metricsOnce.Do(func() {
		prometheus.MustRegister(hostCollectors...)
	})
}
