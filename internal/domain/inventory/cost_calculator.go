package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockledger-api/internal/domain/entity"
)

// CostCalculator implementa la lógica de costo promedio ponderado (servicio de dominio).
// NuevoCosto = (CostoPool + (CantEntrada * CostoEntrada)) / (CantPool + CantEntrada)
func CostCalculator(cantPool, costoPool, cantEntrada, costoEntrada decimal.Decimal) decimal.Decimal {
	sum := cantPool.Add(cantEntrada)
	if sum.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	num := costoPool.Add(cantEntrada.Mul(costoEntrada))
	return num.Div(sum)
}

// averageCosting promedio ponderado móvil. El promedio solo se recalcula en entradas;
// las salidas retiran cantidad * promedio vigente.
type averageCosting struct {
	moneyScale int32
}

func (c averageCosting) Method() entity.CostingMethod { return entity.CostingWeightedAverage }

func (c averageCosting) Receive(state entity.CostState, in Receipt) (entity.CostState, error) {
	next := state.Clone()
	next.AverageUnitCost = CostCalculator(state.PoolQuantity, state.PoolCost, in.Quantity, in.UnitCost)
	next.PoolQuantity = state.PoolQuantity.Add(in.Quantity)
	next.PoolCost = state.PoolCost.Add(in.Quantity.Mul(in.UnitCost))
	return next, nil
}

func (c averageCosting) Issue(state entity.CostState, out Issue) (entity.CostState, Consumption, error) {
	if out.Quantity.GreaterThan(state.PoolQuantity) {
		return state, Consumption{}, ErrInsufficientLayers
	}
	next := state.Clone()
	next.PoolQuantity = state.PoolQuantity.Sub(out.Quantity)
	// el saldo siempre vale cantidad * promedio redondeado; la salida se lleva la diferencia,
	// así el redondeo no se acumula entre ventas y al vaciar el pool sale el costo restante exacto
	next.PoolCost = decimal.Zero
	if !next.PoolQuantity.IsZero() {
		next.PoolCost = next.PoolQuantity.Mul(state.AverageUnitCost).Round(c.moneyScale)
		if next.PoolCost.GreaterThan(state.PoolCost) {
			next.PoolCost = state.PoolCost
		}
	}
	cost := state.PoolCost.Sub(next.PoolCost)
	return next, Consumption{
		Quantity:  out.Quantity,
		TotalCost: cost,
		Draws: []LayerDraw{{
			Quantity: out.Quantity,
			UnitCost: state.AverageUnitCost,
		}},
	}, nil
}
