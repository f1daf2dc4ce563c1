// Package metrics exposes Prometheus counters and gauges for the
// transport layer wrapping the core engine. The engine package itself
// stays free of this import — these are updated from internal/transport
// after each call into the engine, keeping the matching loop free of
// observability concerns.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles every counter/gauge limitbook exports. Construct it via
// New; a nil *Metrics has no usable fields, and internal/transport treats
// a nil bundle as metrics disabled.
type Metrics struct {
	OrdersSubmitted *prometheus.CounterVec
	OrdersCancelled *prometheus.CounterVec
	OrdersRejected  *prometheus.CounterVec
	TradesExecuted  prometheus.Counter
	TradedQuantity  prometheus.Counter
	DepthRequests   *prometheus.CounterVec
	BookDepthLevels *prometheus.GaugeVec
}

// New registers limitbook's metrics against reg and returns the bundle.
// Pass prometheus.DefaultRegisterer unless the caller needs isolation
// (e.g. for parallel tests).
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		OrdersSubmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "limitbook",
			Name:      "orders_submitted_total",
			Help:      "Number of orders submitted, by symbol and side.",
		}, []string{"symbol", "side"}),
		OrdersCancelled: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "limitbook",
			Name:      "orders_cancelled_total",
			Help:      "Number of orders successfully cancelled, by symbol.",
		}, []string{"symbol"}),
		OrdersRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "limitbook",
			Name:      "orders_rejected_total",
			Help:      "Number of rejected submissions, by symbol and reason.",
		}, []string{"symbol", "reason"}),
		TradesExecuted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "limitbook",
			Name:      "trades_executed_total",
			Help:      "Number of trades emitted across all symbols.",
		}),
		TradedQuantity: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "limitbook",
			Name:      "traded_quantity_total",
			Help:      "Sum of matched quantity across all trades.",
		}),
		DepthRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "limitbook",
			Name:      "depth_requests_total",
			Help:      "Number of depth snapshot reads, by symbol.",
		}, []string{"symbol"}),
		BookDepthLevels: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "limitbook",
			Name:      "book_depth_levels",
			Help:      "Distinct live price levels, by symbol and side, as of the last depth read.",
		}, []string{"symbol", "side"}),
	}
}
