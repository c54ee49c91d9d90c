package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/stockledger-api/internal/application/inventory"
	"github.com/jhoicas/stockledger-api/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Catalog   *inventory.CatalogUseCase
	Movements *inventory.RegisterMovementUseCase
	Valuation *inventory.ValuationUseCase
	Alerts    *inventory.AlertsUseCase
	JWTSecret string
	Log       zerolog.Logger
}

// Router registra las rutas de la API. Todas requieren Bearer Token; escribir exige
// admin u operator y archivar solo admin.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	anyRole := RequireRole(jwt.RoleAdmin, jwt.RoleOperator, jwt.RoleViewer)
	writers := RequireRole(jwt.RoleAdmin, jwt.RoleOperator)
	adminOnly := RequireRole(jwt.RoleAdmin)

	itemHandler := NewItemHandler(deps.Catalog, deps.Log)
	inventoryHandler := NewInventoryHandler(deps.Movements, deps.Log)
	valuationHandler := NewValuationHandler(deps.Valuation, deps.Catalog, deps.Log)
	alertHandler := NewAlertHandler(deps.Alerts, deps.Log)

	items := api.Group("/items")
	items.Post("/", writers, itemHandler.Create)
	items.Get("/", anyRole, itemHandler.List)
	items.Get("/:id", anyRole, itemHandler.GetByID)
	items.Put("/:id", writers, itemHandler.Update)
	items.Put("/:id/thresholds", writers, itemHandler.UpdateThresholds)
	items.Post("/:id/discontinue", writers, itemHandler.Discontinue)
	items.Post("/:id/archive", adminOnly, itemHandler.Archive)

	items.Post("/:id/movements", writers, inventoryHandler.RecordMovement)
	items.Get("/:id/movements", anyRole, inventoryHandler.ListMovements)

	items.Get("/:id/valuation", anyRole, valuationHandler.Get)
	items.Get("/:id/valuation/compare", anyRole, valuationHandler.Compare)

	api.Get("/alerts", anyRole, alertHandler.List)
}
