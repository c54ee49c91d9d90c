package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ThresholdsRequest umbrales de stock. Reglas: todos >= 0, min <= reorder_point <= max.
type ThresholdsRequest struct {
	MinStockLevel   decimal.Decimal `json:"min_stock_level"`
	MaxStockLevel   decimal.Decimal `json:"max_stock_level"`
	ReorderPoint    decimal.Decimal `json:"reorder_point"`
	ReorderQuantity decimal.Decimal `json:"reorder_quantity"`
}

// CreateItemRequest body para POST /api/items.
type CreateItemRequest struct {
	SKU           string            `json:"sku"`
	Name          string            `json:"name"`
	Category      string            `json:"category"`
	Subcategory   string            `json:"subcategory"`
	UnitOfMeasure string            `json:"unit_of_measure"`
	QuantityScale int32             `json:"quantity_scale"`
	CostingMethod string            `json:"costing_method"` // fifo | lifo | weighted_average | specific_identification
	Thresholds    ThresholdsRequest `json:"thresholds"`
}

// UpdateItemRequest body para PUT /api/items/:id (campos omitidos no cambian).
type UpdateItemRequest struct {
	Name          *string `json:"name,omitempty"`
	Category      *string `json:"category,omitempty"`
	Subcategory   *string `json:"subcategory,omitempty"`
	UnitOfMeasure *string `json:"unit_of_measure,omitempty"`
}

// RecordMovementRequest body para POST /api/items/:id/movements.
type RecordMovementRequest struct {
	Type       string           `json:"type"` // purchase | sale | adjustment | transfer | return
	Quantity   decimal.Decimal  `json:"quantity"`
	UnitCost   *decimal.Decimal `json:"unit_cost,omitempty"`
	LotID      string           `json:"lot_id,omitempty"`
	Reference  string           `json:"reference,omitempty"`
	Reason     string           `json:"reason,omitempty"`
	OccurredAt *time.Time       `json:"occurred_at,omitempty"`
}

// AlertsResponse banderas derivadas más el estado único.
type AlertsResponse struct {
	LowStock   bool   `json:"low_stock"`
	Overstock  bool   `json:"overstock"`
	OutOfStock bool   `json:"out_of_stock"`
	State      string `json:"state"`
}

// ItemResponse representación del ítem.
type ItemResponse struct {
	ID              string            `json:"id"`
	SKU             string            `json:"sku"`
	Name            string            `json:"name"`
	Category        string            `json:"category"`
	Subcategory     string            `json:"subcategory,omitempty"`
	UnitOfMeasure   string            `json:"unit_of_measure"`
	QuantityScale   int32             `json:"quantity_scale"`
	CostingMethod   string            `json:"costing_method"`
	Status          string            `json:"status"`
	Thresholds      ThresholdsRequest `json:"thresholds"`
	Quantity        decimal.Decimal   `json:"quantity"`
	TotalValue      decimal.Decimal   `json:"total_value"`
	AverageUnitCost *decimal.Decimal  `json:"average_unit_cost"`
	Alerts          AlertsResponse    `json:"alerts"`
	LastSequence    int64             `json:"last_sequence"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
	ArchivedAt      *time.Time        `json:"archived_at,omitempty"`
}

// ItemListResponse listado paginado de ítems.
type ItemListResponse struct {
	Items []ItemResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// MovementResponse movimiento del kardex.
type MovementResponse struct {
	ID         string          `json:"id"`
	ItemID     string          `json:"item_id"`
	Sequence   int64           `json:"sequence"`
	Type       string          `json:"type"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
	TotalCost  decimal.Decimal `json:"total_cost"`
	LotID      string          `json:"lot_id,omitempty"`
	Reference  string          `json:"reference,omitempty"`
	Reason     string          `json:"reason,omitempty"`
	Actor      string          `json:"actor,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// MovementResultResponse respuesta de POST movements: el movimiento y la foto resultante.
type MovementResultResponse struct {
	Movement     MovementResponse `json:"movement"`
	NewQuantity  decimal.Decimal  `json:"new_quantity"`
	NewValuation decimal.Decimal  `json:"new_valuation"`
	Alerts       AlertsResponse   `json:"alerts"`
}

// MovementListResponse kardex paginado.
type MovementListResponse struct {
	Movements []MovementResponse `json:"movements"`
	Page      PageResponse       `json:"page"`
}

// CostLayerResponse capa de costo viva.
type CostLayerResponse struct {
	LayerID    string          `json:"layer_id"`
	LotID      string          `json:"lot_id,omitempty"`
	Sequence   int64           `json:"sequence"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
	TotalCost  decimal.Decimal `json:"total_cost"`
	ReceivedAt time.Time       `json:"received_at"`
}

// ValuationResponse valoración bajo un método.
type ValuationResponse struct {
	ItemID          string              `json:"item_id"`
	Method          string              `json:"method"`
	Quantity        decimal.Decimal     `json:"quantity"`
	TotalValue      decimal.Decimal     `json:"total_value"`
	AverageUnitCost *decimal.Decimal    `json:"average_unit_cost"`
	Layers          []CostLayerResponse `json:"layers"`
	Simulated       bool                `json:"simulated"`
}

// CompareMethodsResponse valoración simulada bajo cada método.
type CompareMethodsResponse struct {
	ItemID        string              `json:"item_id"`
	CurrentMethod string              `json:"current_method"`
	Valuations    []ValuationResponse `json:"valuations"`
}

// AlertedItemResponse ítem con alerta activa.
type AlertedItemResponse struct {
	ItemID              string          `json:"item_id"`
	SKU                 string          `json:"sku"`
	Name                string          `json:"name"`
	Category            string          `json:"category"`
	Quantity            decimal.Decimal `json:"quantity"`
	ReorderPoint        decimal.Decimal `json:"reorder_point"`
	MaxStockLevel       decimal.Decimal `json:"max_stock_level"`
	Alerts              AlertsResponse  `json:"alerts"`
	SuggestedReorderQty decimal.Decimal `json:"suggested_reorder_qty"`
}

// AlertListResponse listado de alertas.
type AlertListResponse struct {
	Total  int                   `json:"total"`
	Alerts []AlertedItemResponse `json:"alerts"`
}
