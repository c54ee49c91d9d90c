package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementType tipo de movimiento del kardex.
type MovementType string

const (
	MovementPurchase   MovementType = "purchase"   // entrada
	MovementSale       MovementType = "sale"       // salida
	MovementAdjustment MovementType = "adjustment" // ajuste; el signo viene en la cantidad
	MovementTransfer   MovementType = "transfer"   // traslado de salida
	MovementReturn     MovementType = "return"     // devolución (entrada)
)

// IsValid indica si el tipo es uno de los soportados.
func (t MovementType) IsValid() bool {
	switch t {
	case MovementPurchase, MovementSale, MovementAdjustment, MovementTransfer, MovementReturn:
		return true
	}
	return false
}

// SignedDelta devuelve el delta con signo para la cantidad recibida.
// Purchase/return suman, sale/transfer restan; adjustment conserva el signo de entrada.
func (t MovementType) SignedDelta(quantity decimal.Decimal) decimal.Decimal {
	switch t {
	case MovementSale, MovementTransfer:
		return quantity.Abs().Neg()
	case MovementPurchase, MovementReturn:
		return quantity.Abs()
	}
	return quantity
}

// RequiresUnitCost purchase y return deben traer costo unitario.
func (t MovementType) RequiresUnitCost() bool {
	return t == MovementPurchase || t == MovementReturn
}

// StockMovement movimiento inmutable del kardex (append-only). Las correcciones son
// movimientos compensatorios, nunca ediciones.
type StockMovement struct {
	ID         string
	ItemID     string
	Sequence   int64 // consecutivo por ítem, estrictamente creciente
	Type       MovementType
	Quantity   decimal.Decimal // delta con signo
	UnitCost   decimal.Decimal // costo unitario de entrada o costo promedio consumido
	TotalCost  decimal.Decimal // positivo en entradas, negativo en salidas
	LotID      string
	Reference  string // factura, orden, nota de ajuste, etc.
	Reason     string
	Actor      string // UserID
	OccurredAt time.Time
}

// IsInbound true si el movimiento suma cantidad.
func (m *StockMovement) IsInbound() bool {
	return m.Quantity.IsPositive()
}
