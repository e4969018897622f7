package app

import (
	"github.com/marketskt/marketskt/internal/inventory"
	"github.com/marketskt/marketskt/internal/model"
	"github.com/marketskt/marketskt/pkg/metrics"
)

// observeInventory keeps the inventory gauges in step after every change.
func observeInventory(e *inventory.Engine, c inventory.Change) {
	if c.Kind != inventory.Reloaded {
		metrics.Mutations.WithLabelValues(string(c.Kind)).Inc()
	}
	st := e.Stats()
	metrics.Products.Set(float64(st.TotalProducts))
	metrics.Stock.Set(float64(st.TotalStock))
	metrics.StockValue.Set(st.TotalValue)
	metrics.ProductsByStatus.WithLabelValues(string(model.StatusGood)).Set(float64(st.Status.Good))
	metrics.ProductsByStatus.WithLabelValues(string(model.StatusWarning)).Set(float64(st.Status.Warning))
	metrics.ProductsByStatus.WithLabelValues(string(model.StatusExpired)).Set(float64(st.Status.Expired))
}
