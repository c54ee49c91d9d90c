package inventory

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockledger-api/internal/domain"
	"github.com/jhoicas/stockledger-api/internal/domain/entity"
	"github.com/jhoicas/stockledger-api/internal/domain/inventory"
	"github.com/jhoicas/stockledger-api/internal/domain/repository"
)

// ValuationSnapshot valoración del ítem bajo un método.
type ValuationSnapshot struct {
	ItemID          string
	Method          entity.CostingMethod
	Quantity        decimal.Decimal
	TotalValue      decimal.Decimal
	AverageUnitCost *decimal.Decimal // nil si la cantidad es cero
	Layers          []entity.CostLayer
	Simulated       bool // true si se obtuvo por replay con un método distinto al del ítem
}

// ValuationUseCase consultas de valoración. Nunca modifica el estado del ítem.
type ValuationUseCase struct {
	txRunner   TxRunner
	log        zerolog.Logger
	moneyScale int32
}

// NewValuationUseCase construye el caso de uso.
func NewValuationUseCase(txRunner TxRunner, log zerolog.Logger, moneyScale int32) *ValuationUseCase {
	if moneyScale <= 0 {
		moneyScale = inventory.DefaultMoneyScale
	}
	return &ValuationUseCase{txRunner: txRunner, log: log, moneyScale: moneyScale}
}

// GetValuation devuelve la valoración vigente. Con method vacío o igual al del ítem se usa el
// estado cacheado; con otro método se simula con el historial completo.
func (uc *ValuationUseCase) GetValuation(ctx context.Context, itemID string, method entity.CostingMethod) (*ValuationSnapshot, error) {
	const op = "GetValuation"
	if method != "" && !method.IsValid() {
		return nil, domain.Validation(op, itemID, "método de costeo desconocido %q", method)
	}
	item, history, err := uc.load(ctx, op, itemID, method != "")
	if err != nil {
		return nil, err
	}
	if method == "" || method == item.CostingMethod {
		return snapshot(item.ID, item.CostingMethod, item.Cost, false), nil
	}
	state, err := inventory.Replay(method, history, uc.moneyScale)
	if err != nil {
		return nil, domain.NewError(domain.ErrLedgerInconsistency, op, itemID, "%v", err)
	}
	return snapshot(item.ID, method, state, true), nil
}

// CompareMethods reconstruye la valoración bajo cada método a partir del historial. Es una
// simulación pura: no altera el método ni las capas del ítem.
func (uc *ValuationUseCase) CompareMethods(ctx context.Context, itemID string) ([]*ValuationSnapshot, error) {
	const op = "CompareMethods"
	item, history, err := uc.load(ctx, op, itemID, true)
	if err != nil {
		return nil, err
	}
	out := make([]*ValuationSnapshot, 0, len(entity.CostingMethods))
	for _, method := range entity.CostingMethods {
		state, err := inventory.Replay(method, history, uc.moneyScale)
		if err != nil {
			return nil, domain.NewError(domain.ErrLedgerInconsistency, op, itemID, "%v", err)
		}
		snap := snapshot(item.ID, method, state, method != item.CostingMethod)
		if method == item.CostingMethod && lastSequence(history) == item.LastSequence && !snap.TotalValue.Equal(item.Valuation) {
			uc.log.Error().
				Str("item_id", item.ID).
				Str("cached_valuation", item.Valuation.String()).
				Str("replayed_valuation", snap.TotalValue.String()).
				Msg("la valoración cacheada no coincide con el replay del kardex")
		}
		out = append(out, snap)
	}
	return out, nil
}

func (uc *ValuationUseCase) load(ctx context.Context, op, itemID string, withHistory bool) (*entity.InventoryItem, []*entity.StockMovement, error) {
	var (
		item    *entity.InventoryItem
		history []*entity.StockMovement
	)
	err := uc.txRunner.Run(ctx, func(items repository.ItemRepository, movements repository.StockMovementRepository) error {
		var err error
		item, err = items.GetByID(ctx, itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.NewError(domain.ErrItemNotFound, op, itemID, "")
		}
		if !withHistory {
			return nil
		}
		history, err = movements.ListByItem(ctx, itemID, 0, 0)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return item, history, nil
}

func snapshot(itemID string, method entity.CostingMethod, state entity.CostState, simulated bool) *ValuationSnapshot {
	s := &ValuationSnapshot{
		ItemID:     itemID,
		Method:     method,
		Quantity:   state.Quantity(),
		TotalValue: state.Value(),
		Layers:     state.Clone().Layers,
		Simulated:  simulated,
	}
	if !s.Quantity.IsZero() {
		avg := s.TotalValue.Div(s.Quantity)
		if method == entity.CostingWeightedAverage {
			avg = state.AverageUnitCost
		}
		s.AverageUnitCost = &avg
	}
	return s
}

func lastSequence(history []*entity.StockMovement) int64 {
	if len(history) == 0 {
		return 0
	}
	return history[len(history)-1].Sequence
}
