package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/stockledger-api/internal/application/dto"
	"github.com/jhoicas/stockledger-api/internal/application/inventory"
	"github.com/jhoicas/stockledger-api/internal/domain/entity"
	"github.com/jhoicas/stockledger-api/internal/domain/repository"
)

// ItemHandler maneja el catálogo de ítems (protegido).
type ItemHandler struct {
	uc  *inventory.CatalogUseCase
	log zerolog.Logger
}

// NewItemHandler construye el handler.
func NewItemHandler(uc *inventory.CatalogUseCase, log zerolog.Logger) *ItemHandler {
	return &ItemHandler{uc: uc, log: log}
}

// Create godoc
// @Summary      Crear ítem
// @Description  Crea un ítem con cantidad 0. El método de costeo queda fijo.
// @Tags         items
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateItemRequest  true  "sku, name, costing_method, thresholds"
// @Success      201   {object}  dto.ItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/items [post]
func (h *ItemHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateItemRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	item, err := h.uc.CreateItem(c.UserContext(), inventory.CreateItemInput{
		SKU:           in.SKU,
		Name:          in.Name,
		Category:      in.Category,
		Subcategory:   in.Subcategory,
		UnitOfMeasure: in.UnitOfMeasure,
		QuantityScale: in.QuantityScale,
		CostingMethod: entity.CostingMethod(in.CostingMethod),
		Thresholds:    fromThresholds(in.Thresholds),
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toItem(item))
}

// GetByID godoc
// @Summary      Obtener ítem
// @Description  Cantidad, valoración y alertas vigentes. Los archivados siguen siendo legibles.
// @Tags         items
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del ítem"
// @Success      200  {object}  dto.ItemResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/items/{id} [get]
func (h *ItemHandler) GetByID(c *fiber.Ctx) error {
	item, err := h.uc.GetItem(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toItem(item))
}

// List godoc
// @Summary      Listar ítems
// @Tags         items
// @Security     Bearer
// @Produce      json
// @Param        status    query     string  false  "active | discontinued | archived"
// @Param        category  query     string  false  "Categoría"
// @Param        limit     query     int     false  "Límite (default 20)"
// @Param        offset    query     int     false  "Desplazamiento"
// @Success      200       {object}  dto.ItemListResponse
// @Router       /api/items [get]
func (h *ItemHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badBody(c)
	}
	page.DefaultPage()
	items, total, err := h.uc.ListItems(c.UserContext(), repository.ItemFilter{
		Status:   entity.ItemStatus(c.Query("status")),
		Category: c.Query("category"),
		Limit:    page.Limit,
		Offset:   page.Offset,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := make([]dto.ItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, toItem(it))
	}
	return c.JSON(dto.ItemListResponse{
		Items: out,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	})
}

// Update godoc
// @Summary      Editar datos descriptivos
// @Description  Nombre, categoría, subcategoría y unidad. SKU y método de costeo no se editan.
// @Tags         items
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string                 true  "ID del ítem"
// @Param        body  body      dto.UpdateItemRequest  true  "campos a cambiar"
// @Success      200   {object}  dto.ItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/items/{id} [put]
func (h *ItemHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateItemRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	item, err := h.uc.UpdateDetails(c.UserContext(), c.Params("id"), inventory.UpdateItemInput{
		Name:          in.Name,
		Category:      in.Category,
		Subcategory:   in.Subcategory,
		UnitOfMeasure: in.UnitOfMeasure,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toItem(item))
}

// UpdateThresholds godoc
// @Summary      Actualizar umbrales
// @Description  Recalcula alertas con la cantidad vigente.
// @Tags         items
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string                 true  "ID del ítem"
// @Param        body  body      dto.ThresholdsRequest  true  "min, max, reorder_point, reorder_quantity"
// @Success      200   {object}  dto.ItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/items/{id}/thresholds [put]
func (h *ItemHandler) UpdateThresholds(c *fiber.Ctx) error {
	var in dto.ThresholdsRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	item, err := h.uc.UpdateThresholds(c.UserContext(), c.Params("id"), fromThresholds(in), GetUserID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toItem(item))
}

// Discontinue godoc
// @Summary      Descontinuar ítem
// @Tags         items
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del ítem"
// @Success      200  {object}  dto.ItemResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/items/{id}/discontinue [post]
func (h *ItemHandler) Discontinue(c *fiber.Ctx) error {
	item, err := h.uc.DiscontinueItem(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toItem(item))
}

// Archive godoc
// @Summary      Archivar ítem
// @Description  Exige cantidad 0. El ítem deja de aceptar movimientos pero su kardex se conserva.
// @Tags         items
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del ítem"
// @Success      200  {object}  dto.ItemResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/items/{id}/archive [post]
func (h *ItemHandler) Archive(c *fiber.Ctx) error {
	item, err := h.uc.ArchiveItem(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toItem(item))
}
