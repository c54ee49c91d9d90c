package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/stockledger-api/internal/application/dto"
	"github.com/jhoicas/stockledger-api/internal/application/inventory"
	"github.com/jhoicas/stockledger-api/internal/domain/entity"
)

// InventoryHandler maneja el kardex: registro y consulta de movimientos (protegido).
type InventoryHandler struct {
	uc  *inventory.RegisterMovementUseCase
	log zerolog.Logger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.RegisterMovementUseCase, log zerolog.Logger) *InventoryHandler {
	return &InventoryHandler{uc: uc, log: log}
}

// RecordMovement godoc
// @Summary      Registrar movimiento
// @Description  purchase/return requieren unit_cost; adjustment lleva el signo en quantity;
// @Description  en identificación específica las salidas requieren lot_id.
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string                     true  "ID del ítem"
// @Param        body  body      dto.RecordMovementRequest  true  "type, quantity, unit_cost, lot_id"
// @Success      201   {object}  dto.MovementResultResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse  "stock insuficiente o modificación concurrente (Retry-After)"
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /api/items/{id}/movements [post]
func (h *InventoryHandler) RecordMovement(c *fiber.Ctx) error {
	var in dto.RecordMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	input := inventory.MovementInput{
		ItemID:    c.Params("id"),
		Type:      entity.MovementType(in.Type),
		Quantity:  in.Quantity,
		UnitCost:  in.UnitCost,
		LotID:     in.LotID,
		Reference: in.Reference,
		Reason:    in.Reason,
		Actor:     GetUserID(c),
	}
	if in.OccurredAt != nil {
		input.OccurredAt = *in.OccurredAt
	}
	res, err := h.uc.RecordMovement(c.UserContext(), input)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.MovementResultResponse{
		Movement:     toMovement(res.Movement),
		NewQuantity:  res.NewQuantity,
		NewValuation: res.NewValuation,
		Alerts:       toAlerts(res.Alerts),
	})
}

// ListMovements godoc
// @Summary      Kardex del ítem
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        id      path      string  true   "ID del ítem"
// @Param        limit   query     int     false  "Límite (default 20)"
// @Param        offset  query     int     false  "Desplazamiento"
// @Success      200     {object}  dto.MovementListResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Router       /api/items/{id}/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badBody(c)
	}
	page.DefaultPage()
	list, total, err := h.uc.ListMovements(c.UserContext(), c.Params("id"), page.Limit, page.Offset)
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, toMovement(m))
	}
	return c.JSON(dto.MovementListResponse{
		Movements: out,
		Page:      dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	})
}
