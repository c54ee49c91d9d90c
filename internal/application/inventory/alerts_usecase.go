package inventory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockledger-api/internal/domain"
	"github.com/jhoicas/stockledger-api/internal/domain/entity"
	"github.com/jhoicas/stockledger-api/internal/domain/inventory"
	"github.com/jhoicas/stockledger-api/internal/domain/repository"
)

// AlertFilter criterios de consulta de alertas. States vacío = cualquier estado distinto de normal.
type AlertFilter struct {
	States   []entity.AlertState
	Category string
}

// AlertedItem ítem con alerta activa y la cantidad sugerida de pedido.
type AlertedItem struct {
	Item                *entity.InventoryItem
	Alerts              entity.Alerts
	State               entity.AlertState
	SuggestedReorderQty decimal.Decimal
}

// AlertsUseCase lista los ítems que requieren atención (reposición o exceso).
type AlertsUseCase struct {
	items repository.ItemRepository
}

// NewAlertsUseCase construye el caso de uso.
func NewAlertsUseCase(items repository.ItemRepository) *AlertsUseCase {
	return &AlertsUseCase{items: items}
}

// ListAlerts devuelve los ítems no archivados con alerta, priorizando sin stock, luego stock bajo
// (mayor déficit primero) y al final sobre stock. Las alertas se recalculan con la cantidad vigente.
func (uc *AlertsUseCase) ListAlerts(ctx context.Context, filter AlertFilter) ([]AlertedItem, error) {
	for _, s := range filter.States {
		if !s.IsValid() || s == entity.AlertNormal {
			return nil, domain.Validation("ListAlerts", "", "estado de alerta inválido %q", s)
		}
	}
	items, err := uc.items.List(ctx, repository.ItemFilter{Category: filter.Category})
	if err != nil {
		return nil, err
	}

	out := make([]AlertedItem, 0)
	for _, item := range items {
		if item.Status == entity.StatusArchived {
			continue
		}
		alerts := inventory.EvaluateAlerts(item.Quantity, item.Thresholds)
		state := alerts.State()
		if state == entity.AlertNormal || !wanted(filter.States, state) {
			continue
		}
		out = append(out, AlertedItem{
			Item:                item,
			Alerts:              alerts,
			State:               state,
			SuggestedReorderQty: inventory.SuggestedReorderQuantity(item.Quantity, item.Thresholds),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if statePriority(a.State) != statePriority(b.State) {
			return statePriority(a.State) < statePriority(b.State)
		}
		defA := a.Item.Thresholds.ReorderPoint.Sub(a.Item.Quantity)
		defB := b.Item.Thresholds.ReorderPoint.Sub(b.Item.Quantity)
		if !defA.Equal(defB) {
			return defA.GreaterThan(defB)
		}
		return a.Item.SKU < b.Item.SKU
	})
	return out, nil
}

func wanted(states []entity.AlertState, s entity.AlertState) bool {
	if len(states) == 0 {
		return true
	}
	for _, w := range states {
		if w == s {
			return true
		}
	}
	return false
}

func statePriority(s entity.AlertState) int {
	switch s {
	case entity.AlertOutOfStock:
		return 0
	case entity.AlertLowStock:
		return 1
	}
	return 2
}
