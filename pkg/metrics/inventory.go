package metrics

import "github.com/prometheus/client_golang/prometheus"

// InventoryMetrics exposes the latest low-stock scan results.
type InventoryMetrics struct {
	lowStock   prometheus.Gauge
	outOfStock prometheus.Gauge
}

func NewInventoryMetrics(reg prometheus.Registerer) *InventoryMetrics {
	if reg == nil {
		return &InventoryMetrics{}
	}
	lowStock := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "inventory_low_stock_products",
		Help: "Products with stock between 1 and the low-stock threshold.",
	})
	outOfStock := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "inventory_out_of_stock_products",
		Help: "Products with no stock left.",
	})
	reg.MustRegister(lowStock, outOfStock)
	return &InventoryMetrics{lowStock: lowStock, outOfStock: outOfStock}
}

func (i *InventoryMetrics) SetStockCounts(low, out int64) {
	if i == nil || i.lowStock == nil {
		return
	}
	i.lowStock.Set(float64(low))
	i.outOfStock.Set(float64(out))
}
