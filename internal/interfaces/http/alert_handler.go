package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/stockledger-api/internal/application/dto"
	"github.com/jhoicas/stockledger-api/internal/application/inventory"
	"github.com/jhoicas/stockledger-api/internal/domain/entity"
)

// AlertHandler ítems que requieren reposición o tienen exceso (protegido).
type AlertHandler struct {
	uc  *inventory.AlertsUseCase
	log zerolog.Logger
}

// NewAlertHandler construye el handler.
func NewAlertHandler(uc *inventory.AlertsUseCase, log zerolog.Logger) *AlertHandler {
	return &AlertHandler{uc: uc, log: log}
}

// List godoc
// @Summary      Ítems con alerta
// @Description  Sin stock primero, luego stock bajo (mayor déficit primero) y sobre stock.
// @Tags         alerts
// @Security     Bearer
// @Produce      json
// @Param        kind      query     string  false  "low_stock,overstock,out_of_stock (separados por coma)"
// @Param        category  query     string  false  "Categoría"
// @Success      200       {object}  dto.AlertListResponse
// @Failure      400       {object}  dto.ErrorResponse
// @Router       /api/alerts [get]
func (h *AlertHandler) List(c *fiber.Ctx) error {
	filter := inventory.AlertFilter{Category: c.Query("category")}
	for _, k := range strings.Split(c.Query("kind"), ",") {
		if k = strings.TrimSpace(k); k != "" {
			filter.States = append(filter.States, entity.AlertState(k))
		}
	}
	list, err := h.uc.ListAlerts(c.UserContext(), filter)
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := make([]dto.AlertedItemResponse, 0, len(list))
	for _, a := range list {
		out = append(out, dto.AlertedItemResponse{
			ItemID:              a.Item.ID,
			SKU:                 a.Item.SKU,
			Name:                a.Item.Name,
			Category:            a.Item.Category,
			Quantity:            a.Item.Quantity,
			ReorderPoint:        a.Item.Thresholds.ReorderPoint,
			MaxStockLevel:       a.Item.Thresholds.MaxStockLevel,
			Alerts:              toAlerts(a.Alerts),
			SuggestedReorderQty: a.SuggestedReorderQty,
		})
	}
	return c.JSON(dto.AlertListResponse{Total: len(out), Alerts: out})
}
