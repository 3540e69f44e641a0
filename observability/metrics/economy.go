package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type EconomyMetrics struct {
	itemsMinted     *prometheus.CounterVec
	tradesListed    *prometheus.CounterVec
	tradesSettled   *prometheus.CounterVec
	tradesCancelled *prometheus.CounterVec
	rpcRequests     *prometheus.CounterVec
	rpcErrors       *prometheus.CounterVec
}

var (
	economyOnce     sync.Once
	economyRegistry *EconomyMetrics
)

func Economy() *EconomyMetrics {
	economyOnce.Do(func() {
		economyRegistry = &EconomyMetrics{
			itemsMinted: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "economy_items_minted_total",
				Help: "Count of items minted per collection.",
			}, []string{"collection"}),
			tradesListed: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "economy_trades_listed_total",
				Help: "Count of trades opened by kind.",
			}, []string{"kind"}),
			tradesSettled: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "economy_trades_settled_total",
				Help: "Count of trades settled by kind.",
			}, []string{"kind"}),
			tradesCancelled: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "economy_trades_cancelled_total",
				Help: "Count of trades cancelled by kind.",
			}, []string{"kind"}),
			rpcRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "economy_rpc_requests_total",
				Help: "Count of JSON-RPC requests by method.",
			}, []string{"method"}),
			rpcErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "economy_rpc_errors_total",
				Help: "Count of JSON-RPC error responses by method.",
			}, []string{"method"}),
		}
		prometheus.MustRegister(
			economyRegistry.itemsMinted,
			economyRegistry.tradesListed,
			economyRegistry.tradesSettled,
			economyRegistry.tradesCancelled,
			economyRegistry.rpcRequests,
			economyRegistry.rpcErrors,
		)
	})
	return economyRegistry
}

func (m *EconomyMetrics) ObserveMint(collection string, count int) {
	if m == nil || count <= 0 {
		return
	}
	m.itemsMinted.WithLabelValues(collection).Add(float64(count))
}

func (m *EconomyMetrics) ObserveTradeListed(kind string) {
	if m == nil {
		return
	}
	m.tradesListed.WithLabelValues(kind).Inc()
}

func (m *EconomyMetrics) ObserveTradeSettled(kind string) {
	if m == nil {
		return
	}
	m.tradesSettled.WithLabelValues(kind).Inc()
}

func (m *EconomyMetrics) ObserveTradeCancelled(kind string) {
	if m == nil {
		return
	}
	m.tradesCancelled.WithLabelValues(kind).Inc()
}

func (m *EconomyMetrics) ObserveRPCRequest(method string) {
	if m == nil {
		return
	}
	if method == "" {
		method = "unknown"
	}
	m.rpcRequests.WithLabelValues(method).Inc()
}

func (m *EconomyMetrics) ObserveRPCError(method string) {
	if m == nil {
		return
	}
	if method == "" {
		method = "unknown"
	}
	m.rpcErrors.WithLabelValues(method).Inc()
}
