package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// CostLayer lote de compra no consumido. Quantity es lo que queda y nunca es negativo.
type CostLayer struct {
	LayerID    string          `json:"layer_id"`
	LotID      string          `json:"lot_id,omitempty"`
	Sequence   int64           `json:"sequence"` // movimiento que creó la capa
	Quantity   decimal.Decimal `json:"quantity"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
	ReceivedAt time.Time       `json:"received_at"`
}

// TotalCost Quantity * UnitCost.
func (l CostLayer) TotalCost() decimal.Decimal {
	return l.Quantity.Mul(l.UnitCost)
}

// CostState estado de valoración de un ítem.
// Métodos por capas usan Layers; promedio ponderado usa el pool (PoolQuantity, PoolCost).
type CostState struct {
	Layers          []CostLayer     `json:"layers,omitempty"`
	PoolQuantity    decimal.Decimal `json:"pool_quantity"`
	PoolCost        decimal.Decimal `json:"pool_cost"`
	AverageUnitCost decimal.Decimal `json:"average_unit_cost"` // último promedio calculado
}

// Clone copia el slice de capas.
func (s CostState) Clone() CostState {
	c := s
	if s.Layers != nil {
		c.Layers = make([]CostLayer, len(s.Layers))
		copy(c.Layers, s.Layers)
	}
	return c
}

// Quantity cantidad cubierta por el estado de costo.
func (s CostState) Quantity() decimal.Decimal {
	if len(s.Layers) == 0 {
		return s.PoolQuantity
	}
	total := decimal.Zero
	for _, l := range s.Layers {
		total = total.Add(l.Quantity)
	}
	return total
}

// Value valor total del inventario.
func (s CostState) Value() decimal.Decimal {
	if len(s.Layers) == 0 {
		return s.PoolCost
	}
	total := decimal.Zero
	for _, l := range s.Layers {
		total = total.Add(l.TotalCost())
	}
	return total
}
