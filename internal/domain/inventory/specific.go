package inventory

import (
	"github.com/jhoicas/stockledger-api/internal/domain"
	"github.com/jhoicas/stockledger-api/internal/domain/entity"
)

// specificCosting identificación específica: cada salida debita exactamente el lote indicado.
// strict=false solo se usa en simulaciones: un lote repetido en una entrada toma el id del
// movimiento y una salida sin lote, con lote desconocido o sin saldo suficiente consume en orden FIFO.
type specificCosting struct {
	strict bool
}

func (c specificCosting) Method() entity.CostingMethod { return entity.CostingSpecificID }

func (c specificCosting) Receive(state entity.CostState, in Receipt) (entity.CostState, error) {
	if in.LotID == "" {
		if c.strict {
			return state, ErrLotRequired
		}
		in.LotID = in.MovementID
	}
	if hasLot(state.Layers, in.LotID) {
		if c.strict || hasLot(state.Layers, in.MovementID) {
			return state, ErrDuplicateLot
		}
		in.LotID = in.MovementID
	}
	return pushLayer(state, in), nil
}

func hasLot(layers []entity.CostLayer, lotID string) bool {
	for _, l := range layers {
		if l.LotID == lotID {
			return true
		}
	}
	return false
}

func (c specificCosting) Issue(state entity.CostState, out Issue) (entity.CostState, Consumption, error) {
	if out.LotID == "" && c.strict {
		return state, Consumption{}, ErrLotRequired
	}
	next := state.Clone()

	idx := -1
	if out.LotID != "" {
		for i, l := range next.Layers {
			if l.LotID == out.LotID {
				idx = i
				break
			}
		}
	}
	var order []int
	switch {
	case idx >= 0 && next.Layers[idx].Quantity.GreaterThanOrEqual(out.Quantity):
		order = []int{idx}
	case c.strict && idx < 0:
		return state, Consumption{}, domain.ErrLotNotFound
	case c.strict:
		return state, Consumption{}, domain.ErrLotInsufficientQuantity
	default:
		order = make([]int, len(next.Layers))
		for i := range order {
			order[i] = i
		}
	}

	cons, err := drawInOrder(next.Layers, order, out.Quantity)
	if err != nil {
		return state, Consumption{}, err
	}
	next.Layers = dropEmptyLayers(next.Layers)
	return next, cons, nil
}
