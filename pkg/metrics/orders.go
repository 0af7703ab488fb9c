package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

const (
	OrderOutcomePlaced            = "placed"
	OrderOutcomeInsufficientStock = "insufficient_stock"
	OrderOutcomeProductNotFound   = "product_not_found"
	OrderOutcomeInvalid           = "invalid"
	OrderOutcomeError             = "error"
)

// OrderMetrics records order placement outcomes.
type OrderMetrics struct {
	attempts *prometheus.CounterVec
	revenue  prometheus.Counter
	items    prometheus.Histogram
}

func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	attempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_order_attempts_total",
		Help: "Order placement attempts by outcome.",
	}, []string{"outcome"})
	revenue := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "storefront_order_revenue_total",
		Help: "Sum of placed order totals.",
	})
	items := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "storefront_order_items",
		Help:    "Number of units per placed order.",
		Buckets: []float64{1, 2, 5, 10, 25, 50, 100},
	})
	reg.MustRegister(attempts, revenue, items)
	return &OrderMetrics{attempts: attempts, revenue: revenue, items: items}
}

func (o *OrderMetrics) ObservePlaced(total decimal.Decimal, units int) {
	if o == nil || o.attempts == nil {
		return
	}
	o.attempts.WithLabelValues(OrderOutcomePlaced).Inc()
	if total.IsPositive() {
		o.revenue.Add(total.InexactFloat64())
	}
	o.items.Observe(float64(units))
}

func (o *OrderMetrics) ObserveRejected(outcome string) {
	if o == nil || o.attempts == nil {
		return
	}
	o.attempts.WithLabelValues(outcome).Inc()
}
