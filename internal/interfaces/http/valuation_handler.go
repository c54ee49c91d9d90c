package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/stockledger-api/internal/application/dto"
	"github.com/jhoicas/stockledger-api/internal/application/inventory"
	"github.com/jhoicas/stockledger-api/internal/domain/entity"
)

// ValuationHandler consultas de valoración (protegido, solo lectura).
type ValuationHandler struct {
	uc      *inventory.ValuationUseCase
	catalog *inventory.CatalogUseCase
	log     zerolog.Logger
}

// NewValuationHandler construye el handler.
func NewValuationHandler(uc *inventory.ValuationUseCase, catalog *inventory.CatalogUseCase, log zerolog.Logger) *ValuationHandler {
	return &ValuationHandler{uc: uc, catalog: catalog, log: log}
}

// Get godoc
// @Summary      Valoración del ítem
// @Description  Sin method usa el método del ítem; con otro método devuelve una simulación (simulated=true).
// @Tags         valuation
// @Security     Bearer
// @Produce      json
// @Param        id      path      string  true   "ID del ítem"
// @Param        method  query     string  false  "fifo | lifo | weighted_average | specific_identification"
// @Success      200     {object}  dto.ValuationResponse
// @Failure      400     {object}  dto.ErrorResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Router       /api/items/{id}/valuation [get]
func (h *ValuationHandler) Get(c *fiber.Ctx) error {
	snap, err := h.uc.GetValuation(c.UserContext(), c.Params("id"), entity.CostingMethod(c.Query("method")))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toValuation(snap))
}

// Compare godoc
// @Summary      Comparar métodos de valoración
// @Description  Reconstruye la valoración bajo cada método a partir del kardex. No modifica el ítem.
// @Tags         valuation
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del ítem"
// @Success      200  {object}  dto.CompareMethodsResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/items/{id}/valuation/compare [get]
func (h *ValuationHandler) Compare(c *fiber.Ctx) error {
	id := c.Params("id")
	item, err := h.catalog.GetItem(c.UserContext(), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	snaps, err := h.uc.CompareMethods(c.UserContext(), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := make([]dto.ValuationResponse, 0, len(snaps))
	for _, s := range snaps {
		out = append(out, toValuation(s))
	}
	return c.JSON(dto.CompareMethodsResponse{
		ItemID:        id,
		CurrentMethod: string(item.CostingMethod),
		Valuations:    out,
	})
}
