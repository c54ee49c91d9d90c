package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockledger-api/internal/domain/entity"
)

// EvaluateAlerts calcula las alertas a partir de cantidad y umbrales (función pura).
// Precedencia: sin stock > stock bajo > sobre stock, así exactamente un estado aplica.
func EvaluateAlerts(quantity decimal.Decimal, t entity.Thresholds) entity.Alerts {
	var a entity.Alerts
	a.OutOfStock = quantity.IsZero()
	a.LowStock = !a.OutOfStock && quantity.LessThanOrEqual(t.ReorderPoint)
	a.Overstock = !a.OutOfStock && !a.LowStock && quantity.GreaterThanOrEqual(t.MaxStockLevel)
	return a
}

// SuggestedReorderQuantity cantidad sugerida de pedido para ítems en stock bajo o sin stock:
// el mayor entre ReorderQuantity y lo que falta para volver al punto de reorden.
func SuggestedReorderQuantity(quantity decimal.Decimal, t entity.Thresholds) decimal.Decimal {
	a := EvaluateAlerts(quantity, t)
	if !a.LowStock && !a.OutOfStock {
		return decimal.Zero
	}
	deficit := t.ReorderPoint.Sub(quantity)
	return decimal.Max(t.ReorderQuantity, deficit)
}
