package inventory

import (
	"fmt"

	"github.com/jhoicas/stockledger-api/internal/domain/entity"
)

// Replay reconstruye el estado de costo aplicando el historial completo bajo method.
// Es una simulación pura: no depende de ni modifica el estado cacheado del ítem.
// En identificación específica las salidas sin lote consumen en orden FIFO.
func Replay(method entity.CostingMethod, movements []*entity.StockMovement, moneyScale int32) (entity.CostState, error) {
	costing, err := replayCosting(method, moneyScale)
	if err != nil {
		return entity.CostState{}, err
	}
	state := entity.CostState{}
	for _, m := range movements {
		if m.Quantity.IsZero() {
			continue
		}
		if m.IsInbound() {
			in := Receipt{
				MovementID: m.ID,
				Sequence:   m.Sequence,
				Quantity:   m.Quantity,
				UnitCost:   m.UnitCost,
				ReceivedAt: m.OccurredAt,
			}
			if method == entity.CostingSpecificID {
				in.LotID = m.LotID
			}
			state, err = costing.Receive(state, in)
		} else {
			out := Issue{Quantity: m.Quantity.Neg()}
			if method == entity.CostingSpecificID {
				out.LotID = m.LotID
			}
			state, _, err = costing.Issue(state, out)
		}
		if err != nil {
			return entity.CostState{}, fmt.Errorf("replay %s secuencia %d: %w", method, m.Sequence, err)
		}
	}
	return state, nil
}

func replayCosting(method entity.CostingMethod, moneyScale int32) (Costing, error) {
	if method == entity.CostingSpecificID {
		return specificCosting{strict: false}, nil
	}
	return CostingFor(method, moneyScale)
}
