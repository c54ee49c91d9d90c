package http

import (
	"github.com/jhoicas/stockledger-api/internal/application/dto"
	"github.com/jhoicas/stockledger-api/internal/application/inventory"
	"github.com/jhoicas/stockledger-api/internal/domain/entity"
)

func toThresholds(t entity.Thresholds) dto.ThresholdsRequest {
	return dto.ThresholdsRequest{
		MinStockLevel:   t.MinStockLevel,
		MaxStockLevel:   t.MaxStockLevel,
		ReorderPoint:    t.ReorderPoint,
		ReorderQuantity: t.ReorderQuantity,
	}
}

func fromThresholds(t dto.ThresholdsRequest) entity.Thresholds {
	return entity.Thresholds{
		MinStockLevel:   t.MinStockLevel,
		MaxStockLevel:   t.MaxStockLevel,
		ReorderPoint:    t.ReorderPoint,
		ReorderQuantity: t.ReorderQuantity,
	}
}

func toAlerts(a entity.Alerts) dto.AlertsResponse {
	return dto.AlertsResponse{
		LowStock:   a.LowStock,
		Overstock:  a.Overstock,
		OutOfStock: a.OutOfStock,
		State:      string(a.State()),
	}
}

func toItem(it *entity.InventoryItem) dto.ItemResponse {
	return dto.ItemResponse{
		ID:              it.ID,
		SKU:             it.SKU,
		Name:            it.Name,
		Category:        it.Category,
		Subcategory:     it.Subcategory,
		UnitOfMeasure:   it.UnitOfMeasure,
		QuantityScale:   it.QuantityScale,
		CostingMethod:   string(it.CostingMethod),
		Status:          string(it.Status),
		Thresholds:      toThresholds(it.Thresholds),
		Quantity:        it.Quantity,
		TotalValue:      it.Valuation,
		AverageUnitCost: it.AverageUnitCost(),
		Alerts:          toAlerts(it.Alerts),
		LastSequence:    it.LastSequence,
		CreatedAt:       it.CreatedAt,
		UpdatedAt:       it.UpdatedAt,
		ArchivedAt:      it.ArchivedAt,
	}
}

func toMovement(m *entity.StockMovement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:         m.ID,
		ItemID:     m.ItemID,
		Sequence:   m.Sequence,
		Type:       string(m.Type),
		Quantity:   m.Quantity,
		UnitCost:   m.UnitCost,
		TotalCost:  m.TotalCost,
		LotID:      m.LotID,
		Reference:  m.Reference,
		Reason:     m.Reason,
		Actor:      m.Actor,
		OccurredAt: m.OccurredAt,
	}
}

func toValuation(s *inventory.ValuationSnapshot) dto.ValuationResponse {
	layers := make([]dto.CostLayerResponse, 0, len(s.Layers))
	for _, l := range s.Layers {
		layers = append(layers, dto.CostLayerResponse{
			LayerID:    l.LayerID,
			LotID:      l.LotID,
			Sequence:   l.Sequence,
			Quantity:   l.Quantity,
			UnitCost:   l.UnitCost,
			TotalCost:  l.TotalCost(),
			ReceivedAt: l.ReceivedAt,
		})
	}
	return dto.ValuationResponse{
		ItemID:          s.ItemID,
		Method:          string(s.Method),
		Quantity:        s.Quantity,
		TotalValue:      s.TotalValue,
		AverageUnitCost: s.AverageUnitCost,
		Layers:          layers,
		Simulated:       s.Simulated,
	}
}
