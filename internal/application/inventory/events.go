package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockledger-api/internal/domain/entity"
)

// Tipos de evento publicados.
const (
	EventTypeItemCreated           = "inventory.item.created"
	EventTypeItemStatusChanged     = "inventory.item.status_changed"
	EventTypeThresholdsUpdated     = "inventory.item.thresholds_updated"
	EventTypeStockMovementRecorded = "inventory.stock.movement_recorded"
	EventTypeAlertStateChanged     = "inventory.stock.alert_state_changed"
)

// Event evento de dominio. La clave de partición es el ítem para conservar el orden por ítem.
type Event interface {
	EventType() string
	PartitionKey() string
}

// BaseEvent campos comunes de todos los eventos.
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	Type      string    `json:"event_type"`
	ItemID    string    `json:"item_id"`
	SKU       string    `json:"sku"`
	Timestamp time.Time `json:"timestamp"`
}

func newBase(eventType string, item *entity.InventoryItem, at time.Time) BaseEvent {
	return BaseEvent{
		EventID:   uuid.New().String(),
		Type:      eventType,
		ItemID:    item.ID,
		SKU:       item.SKU,
		Timestamp: at,
	}
}

func (e BaseEvent) EventType() string    { return e.Type }
func (e BaseEvent) PartitionKey() string { return e.ItemID }

// ItemCreatedEvent publicado al crear un ítem.
type ItemCreatedEvent struct {
	BaseEvent
	CostingMethod entity.CostingMethod `json:"costing_method"`
}

// ItemStatusChangedEvent publicado al descontinuar o archivar.
type ItemStatusChangedEvent struct {
	BaseEvent
	From entity.ItemStatus `json:"from"`
	To   entity.ItemStatus `json:"to"`
}

// ThresholdsUpdatedEvent publicado al cambiar umbrales.
type ThresholdsUpdatedEvent struct {
	BaseEvent
	MinStockLevel   decimal.Decimal `json:"min_stock_level"`
	MaxStockLevel   decimal.Decimal `json:"max_stock_level"`
	ReorderPoint    decimal.Decimal `json:"reorder_point"`
	ReorderQuantity decimal.Decimal `json:"reorder_quantity"`
	Actor           string          `json:"actor"`
}

// StockMovementRecordedEvent movimiento aceptado; lo consume la integración contable.
type StockMovementRecordedEvent struct {
	BaseEvent
	MovementID    string               `json:"movement_id"`
	Sequence      int64                `json:"sequence"`
	MovementType  entity.MovementType  `json:"movement_type"`
	Quantity      decimal.Decimal      `json:"quantity"`
	UnitCost      decimal.Decimal      `json:"unit_cost"`
	TotalCost     decimal.Decimal      `json:"total_cost"`
	LotID         string               `json:"lot_id,omitempty"`
	Reference     string               `json:"reference,omitempty"`
	Reason        string               `json:"reason,omitempty"`
	Actor         string               `json:"actor"`
	CostingMethod entity.CostingMethod `json:"costing_method"`
	NewQuantity   decimal.Decimal      `json:"new_quantity"`
	NewValuation  decimal.Decimal      `json:"new_valuation"`
}

// AlertStateChangedEvent el estado de alerta del ítem cambió.
type AlertStateChangedEvent struct {
	BaseEvent
	From     entity.AlertState `json:"from"`
	To       entity.AlertState `json:"to"`
	Quantity decimal.Decimal   `json:"quantity"`
}

func newMovementRecorded(item *entity.InventoryItem, m *entity.StockMovement) *StockMovementRecordedEvent {
	return &StockMovementRecordedEvent{
		BaseEvent:     newBase(EventTypeStockMovementRecorded, item, m.OccurredAt),
		MovementID:    m.ID,
		Sequence:      m.Sequence,
		MovementType:  m.Type,
		Quantity:      m.Quantity,
		UnitCost:      m.UnitCost,
		TotalCost:     m.TotalCost,
		LotID:         m.LotID,
		Reference:     m.Reference,
		Reason:        m.Reason,
		Actor:         m.Actor,
		CostingMethod: item.CostingMethod,
		NewQuantity:   item.Quantity,
		NewValuation:  item.Valuation,
	}
}

// alertChange devuelve el evento si el estado de alerta cambió.
func alertChange(item *entity.InventoryItem, before entity.Alerts, at time.Time) *AlertStateChangedEvent {
	if before.State() == item.Alerts.State() {
		return nil
	}
	return &AlertStateChangedEvent{
		BaseEvent: newBase(EventTypeAlertStateChanged, item, at),
		From:      before.State(),
		To:        item.Alerts.State(),
		Quantity:  item.Quantity,
	}
}
