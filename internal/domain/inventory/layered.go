package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockledger-api/internal/domain/entity"
)

// layeredCosting FIFO y LIFO: mismas capas en orden de llegada, distinta dirección de recorrido.
type layeredCosting struct {
	method      entity.CostingMethod
	newestFirst bool
}

func (c layeredCosting) Method() entity.CostingMethod { return c.method }

func (c layeredCosting) Receive(state entity.CostState, in Receipt) (entity.CostState, error) {
	return pushLayer(state, in), nil
}

func (c layeredCosting) Issue(state entity.CostState, out Issue) (entity.CostState, Consumption, error) {
	next := state.Clone()
	order := make([]int, len(next.Layers))
	for i := range order {
		if c.newestFirst {
			order[i] = len(next.Layers) - 1 - i
		} else {
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

// pushLayer agrega una capa al final (orden de creación).
func pushLayer(state entity.CostState, in Receipt) entity.CostState {
	next := state.Clone()
	next.Layers = append(next.Layers, entity.CostLayer{
		LayerID:    in.MovementID,
		LotID:      in.LotID,
		Sequence:   in.Sequence,
		Quantity:   in.Quantity,
		UnitCost:   in.UnitCost,
		ReceivedAt: in.ReceivedAt,
	})
	return next
}

// drawInOrder consume qty de las capas en el orden de índices dado. Modifica layers.
func drawInOrder(layers []entity.CostLayer, order []int, qty decimal.Decimal) (Consumption, error) {
	remaining := qty
	cons := Consumption{Quantity: qty, TotalCost: decimal.Zero}
	for _, idx := range order {
		if !remaining.IsPositive() {
			break
		}
		layer := &layers[idx]
		if !layer.Quantity.IsPositive() {
			continue
		}
		take := decimal.Min(layer.Quantity, remaining)
		layer.Quantity = layer.Quantity.Sub(take)
		remaining = remaining.Sub(take)
		cons.TotalCost = cons.TotalCost.Add(take.Mul(layer.UnitCost))
		cons.Draws = append(cons.Draws, LayerDraw{
			LayerID:  layer.LayerID,
			LotID:    layer.LotID,
			Quantity: take,
			UnitCost: layer.UnitCost,
		})
	}
	if remaining.IsPositive() {
		return Consumption{}, ErrInsufficientLayers
	}
	return cons, nil
}

func dropEmptyLayers(layers []entity.CostLayer) []entity.CostLayer {
	out := layers[:0]
	for _, l := range layers {
		if l.Quantity.IsPositive() {
			out = append(out, l)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
