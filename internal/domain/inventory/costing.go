package inventory

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockledger-api/internal/domain/entity"
)

// DefaultMoneyScale decimales de los montos consumidos al costo promedio.
const DefaultMoneyScale int32 = 2

var (
	// ErrInsufficientLayers las capas no cubren la salida (el kardex quedó inconsistente).
	ErrInsufficientLayers = errors.New("capas de costo insuficientes para la salida")
	// ErrLotRequired identificación específica exige lote explícito en salidas.
	ErrLotRequired = errors.New("se requiere lote para identificación específica")
	// ErrDuplicateLot ya existe una capa viva con ese lote.
	ErrDuplicateLot = errors.New("el lote ya existe con saldo")
	// ErrUnknownMethod método de costeo no soportado.
	ErrUnknownMethod = errors.New("método de costeo desconocido")
)

// Receipt entrada de costo (compra, devolución o ajuste positivo).
type Receipt struct {
	MovementID string
	Sequence   int64
	Quantity   decimal.Decimal // positiva
	UnitCost   decimal.Decimal
	LotID      string
	ReceivedAt time.Time
}

// Issue salida de costo (venta, traslado o ajuste negativo).
type Issue struct {
	Quantity decimal.Decimal // positiva
	LotID    string
}

// LayerDraw parte de una capa consumida por una salida.
type LayerDraw struct {
	LayerID  string
	LotID    string
	Quantity decimal.Decimal
	UnitCost decimal.Decimal
}

// Consumption resultado de una salida.
type Consumption struct {
	Quantity  decimal.Decimal
	TotalCost decimal.Decimal
	Draws     []LayerDraw
}

// UnitCost costo unitario efectivo de la salida.
func (c Consumption) UnitCost() decimal.Decimal {
	if c.Quantity.IsZero() {
		return decimal.Zero
	}
	return c.TotalCost.Div(c.Quantity)
}

// Costing estrategia de valoración. Las implementaciones son puras: reciben un estado y
// devuelven uno nuevo sin tocar el original, así el llamador publica todo o nada.
type Costing interface {
	Method() entity.CostingMethod
	Receive(state entity.CostState, in Receipt) (entity.CostState, error)
	Issue(state entity.CostState, out Issue) (entity.CostState, Consumption, error)
}

// CostingFor devuelve la estrategia del método. Se resuelve una vez por operación a partir
// del método fijo del ítem.
func CostingFor(method entity.CostingMethod, moneyScale int32) (Costing, error) {
	switch method {
	case entity.CostingFIFO:
		return layeredCosting{method: method}, nil
	case entity.CostingLIFO:
		return layeredCosting{method: method, newestFirst: true}, nil
	case entity.CostingWeightedAverage:
		return averageCosting{moneyScale: moneyScale}, nil
	case entity.CostingSpecificID:
		return specificCosting{strict: true}, nil
	}
	return nil, ErrUnknownMethod
}
