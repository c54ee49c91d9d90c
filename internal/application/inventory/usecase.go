package inventory

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockledger-api/internal/domain"
	"github.com/jhoicas/stockledger-api/internal/domain/entity"
	"github.com/jhoicas/stockledger-api/internal/domain/inventory"
	"github.com/jhoicas/stockledger-api/internal/domain/repository"
)

// unitCostScale decimales del costo unitario derivado (salidas y ajustes sin costo).
const unitCostScale int32 = 6

// RegisterMovementUseCase registra movimientos del kardex de forma transaccional: bloqueo por ítem
// con espera acotada, SELECT FOR UPDATE y Commit/Rollback. Cantidad, valoración y alertas se
// publican juntas o no se publican.
type RegisterMovementUseCase struct {
	txRunner   TxRunner
	locker     Locker
	publisher  EventPublisher
	metrics    Metrics
	log        zerolog.Logger
	moneyScale int32
	now        func() time.Time
}

// NewRegisterMovementUseCase construye el caso de uso. moneyScale <= 0 usa inventory.DefaultMoneyScale.
func NewRegisterMovementUseCase(
	txRunner TxRunner,
	locker Locker,
	publisher EventPublisher,
	metrics Metrics,
	log zerolog.Logger,
	moneyScale int32,
) *RegisterMovementUseCase {
	if moneyScale <= 0 {
		moneyScale = inventory.DefaultMoneyScale
	}
	return &RegisterMovementUseCase{
		txRunner:   txRunner,
		locker:     locker,
		publisher:  publisher,
		metrics:    metrics,
		log:        log,
		moneyScale: moneyScale,
		now:        time.Now,
	}
}

// MovementInput entrada para registrar un movimiento.
// Quantity es positiva salvo en adjustment, donde el signo indica la dirección.
// UnitCost es obligatorio en purchase y return; en ajustes positivos sin costo se usa el promedio vigente.
// LotID es obligatorio en salidas de ítems con identificación específica; en otros métodos se ignora.
type MovementInput struct {
	ItemID     string
	Type       entity.MovementType
	Quantity   decimal.Decimal
	UnitCost   *decimal.Decimal
	LotID      string
	Reference  string
	Reason     string
	Actor      string
	OccurredAt time.Time
}

// MovementResult foto posterior al movimiento.
type MovementResult struct {
	Movement     *entity.StockMovement
	NewQuantity  decimal.Decimal
	NewValuation decimal.Decimal
	Alerts       entity.Alerts
}

// RecordMovement aplica un movimiento al ítem. Si falla, no queda ningún cambio:
// ni movimiento en el kardex ni cambios en cantidad, capas o alertas.
func (uc *RegisterMovementUseCase) RecordMovement(ctx context.Context, in MovementInput) (*MovementResult, error) {
	const op = "RecordMovement"
	result, err := uc.record(ctx, op, in)
	if err != nil {
		uc.metrics.MovementRejected(string(in.Type), domain.Code(err))
		ev := uc.log.Warn()
		if domain.IsFatal(err) {
			ev = uc.log.Error()
		}
		ev.Err(err).Str("item_id", in.ItemID).Str("movement_type", string(in.Type)).Str("quantity", in.Quantity.String()).Msg("movimiento rechazado")
		return nil, err
	}
	uc.metrics.MovementRecorded(string(in.Type))
	uc.log.Info().
		Str("item_id", in.ItemID).
		Str("movement_id", result.Movement.ID).
		Int64("sequence", result.Movement.Sequence).
		Str("movement_type", string(result.Movement.Type)).
		Str("quantity", result.Movement.Quantity.String()).
		Str("new_quantity", result.NewQuantity.String()).
		Str("new_valuation", result.NewValuation.String()).
		Msg("movimiento registrado")
	return result, nil
}

func (uc *RegisterMovementUseCase) record(ctx context.Context, op string, in MovementInput) (*MovementResult, error) {
	if err := validateMovement(op, in); err != nil {
		return nil, err
	}
	at := in.OccurredAt
	if at.IsZero() {
		at = uc.now()
	}
	at = at.UTC()

	var (
		item     *entity.InventoryItem
		movement *entity.StockMovement
		before   entity.Alerts
	)
	err := withItemLock(ctx, uc.locker, uc.metrics, op, in.ItemID, func() error {
		return uc.txRunner.Run(ctx, func(items repository.ItemRepository, movements repository.StockMovementRepository) error {
			current, err := loadLive(ctx, items, op, in.ItemID)
			if err != nil {
				return err
			}
			if !in.Quantity.Round(current.QuantityScale).Equal(in.Quantity) {
				return domain.Validation(op, in.ItemID, "quantity %s excede %d decimales", in.Quantity, current.QuantityScale)
			}
			before = current.Alerts

			m, next, err := uc.apply(op, current, in, at)
			if err != nil {
				return err
			}
			if err := movements.Append(ctx, m); err != nil {
				return err
			}
			if err := items.Update(ctx, next); err != nil {
				return err
			}
			item, movement = next, m
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	events := []Event{newMovementRecorded(item, movement)}
	if ev := alertChange(item, before, at); ev != nil {
		events = append(events, ev)
	}
	if err := uc.publisher.Publish(ctx, events...); err != nil {
		uc.log.Error().Err(err).Str("item_id", item.ID).Str("movement_id", movement.ID).Msg("publicar movimiento registrado")
	}

	return &MovementResult{
		Movement:     movement,
		NewQuantity:  item.Quantity,
		NewValuation: item.Valuation,
		Alerts:       item.Alerts,
	}, nil
}

// apply calcula el movimiento y el nuevo estado del ítem sin efectos secundarios.
func (uc *RegisterMovementUseCase) apply(op string, item *entity.InventoryItem, in MovementInput, at time.Time) (*entity.StockMovement, *entity.InventoryItem, error) {
	delta := in.Type.SignedDelta(in.Quantity)
	newQty := item.Quantity.Add(delta)
	if newQty.IsNegative() {
		return nil, nil, domain.NewError(domain.ErrInsufficientStock, op, item.ID,
			"disponible %s, solicitado %s", item.Quantity, delta.Abs())
	}

	costing, err := inventory.CostingFor(item.CostingMethod, uc.moneyScale)
	if err != nil {
		return nil, nil, domain.NewError(domain.ErrLedgerInconsistency, op, item.ID, "%v", err)
	}

	m := &entity.StockMovement{
		ID:         uuid.New().String(),
		ItemID:     item.ID,
		Sequence:   item.LastSequence + 1,
		Type:       in.Type,
		Quantity:   delta,
		Reference:  in.Reference,
		Reason:     in.Reason,
		Actor:      in.Actor,
		OccurredAt: at,
	}

	// el lote solo forma parte del kardex en identificación específica
	if item.CostingMethod == entity.CostingSpecificID {
		m.LotID = strings.TrimSpace(in.LotID)
	}

	var state entity.CostState
	if delta.IsPositive() {
		unitCost := uc.inboundUnitCost(item, in)
		if m.LotID == "" && item.CostingMethod == entity.CostingSpecificID {
			m.LotID = m.ID
		}
		state, err = costing.Receive(item.Cost, inventory.Receipt{
			MovementID: m.ID,
			Sequence:   m.Sequence,
			Quantity:   delta,
			UnitCost:   unitCost,
			LotID:      m.LotID,
			ReceivedAt: at,
		})
		if err != nil {
			return nil, nil, costingError(op, item.ID, err)
		}
		m.UnitCost = unitCost
		m.TotalCost = delta.Mul(unitCost)
	} else {
		var used inventory.Consumption
		state, used, err = costing.Issue(item.Cost, inventory.Issue{Quantity: delta.Neg(), LotID: m.LotID})
		if err != nil {
			return nil, nil, costingError(op, item.ID, err)
		}
		m.UnitCost = used.UnitCost().Round(unitCostScale)
		m.TotalCost = used.TotalCost.Neg()
	}

	if !state.Quantity().Equal(newQty) {
		return nil, nil, domain.NewError(domain.ErrLedgerInconsistency, op, item.ID,
			"capas suman %s, cantidad esperada %s", state.Quantity(), newQty)
	}

	next := item.Clone()
	next.Quantity = newQty
	next.Cost = state
	next.Valuation = state.Value()
	next.Alerts = inventory.EvaluateAlerts(newQty, next.Thresholds)
	next.LastSequence = m.Sequence
	next.UpdatedAt = at
	return m, next, nil
}

// inboundUnitCost costo de la entrada: el informado o, en ajustes sin costo, el promedio vigente.
func (uc *RegisterMovementUseCase) inboundUnitCost(item *entity.InventoryItem, in MovementInput) decimal.Decimal {
	if in.UnitCost != nil {
		return *in.UnitCost
	}
	if item.CostingMethod == entity.CostingWeightedAverage {
		return item.Cost.AverageUnitCost
	}
	if avg := item.AverageUnitCost(); avg != nil {
		return avg.Round(unitCostScale)
	}
	return decimal.Zero
}

func costingError(op, itemID string, err error) error {
	switch {
	case errors.Is(err, domain.ErrLotNotFound):
		return domain.NewError(domain.ErrLotNotFound, op, itemID, "%v", err)
	case errors.Is(err, domain.ErrLotInsufficientQuantity):
		return domain.NewError(domain.ErrLotInsufficientQuantity, op, itemID, "%v", err)
	case errors.Is(err, inventory.ErrLotRequired), errors.Is(err, inventory.ErrDuplicateLot):
		return domain.Validation(op, itemID, "%v", err)
	case errors.Is(err, inventory.ErrInsufficientLayers):
		return domain.NewError(domain.ErrLedgerInconsistency, op, itemID, "%v", err)
	}
	return err
}

func validateMovement(op string, in MovementInput) error {
	if strings.TrimSpace(in.ItemID) == "" {
		return domain.Validation(op, "", "item_id es requerido")
	}
	if !in.Type.IsValid() {
		return domain.Validation(op, in.ItemID, "tipo de movimiento desconocido %q", in.Type)
	}
	if in.Quantity.IsZero() {
		return domain.Validation(op, in.ItemID, "quantity no puede ser cero")
	}
	if in.Type != entity.MovementAdjustment && in.Quantity.IsNegative() {
		return domain.Validation(op, in.ItemID, "quantity debe ser positiva para %s", in.Type)
	}
	if in.Type.RequiresUnitCost() && in.UnitCost == nil {
		return domain.Validation(op, in.ItemID, "unit_cost es requerido para %s", in.Type)
	}
	if in.UnitCost != nil && in.UnitCost.IsNegative() {
		return domain.Validation(op, in.ItemID, "unit_cost no puede ser negativo")
	}
	return nil
}

// ListMovements devuelve una página del kardex del ítem en orden de secuencia y el total de
// movimientos. Disponible también para archivados.
func (uc *RegisterMovementUseCase) ListMovements(ctx context.Context, itemID string, limit, offset int) ([]*entity.StockMovement, int, error) {
	var (
		out   []*entity.StockMovement
		total int
	)
	err := uc.txRunner.Run(ctx, func(items repository.ItemRepository, movements repository.StockMovementRepository) error {
		item, err := items.GetByID(ctx, itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.NewError(domain.ErrItemNotFound, "ListMovements", itemID, "")
		}
		if total, err = movements.CountByItem(ctx, itemID); err != nil {
			return err
		}
		out, err = movements.ListByItem(ctx, itemID, limit, offset)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
