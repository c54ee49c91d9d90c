package inventory

import (
	"context"
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

// CatalogUseCase administra el maestro de ítems: alta, umbrales, datos descriptivos y ciclo de vida.
// Cantidad y valoración nunca se editan aquí; solo cambian vía movimientos.
type CatalogUseCase struct {
	items     repository.ItemRepository
	txRunner  TxRunner
	locker    Locker
	publisher EventPublisher
	metrics   Metrics
	log       zerolog.Logger
	now       func() time.Time
}

// NewCatalogUseCase construye el caso de uso.
func NewCatalogUseCase(
	items repository.ItemRepository,
	txRunner TxRunner,
	locker Locker,
	publisher EventPublisher,
	metrics Metrics,
	log zerolog.Logger,
) *CatalogUseCase {
	return &CatalogUseCase{
		items:     items,
		txRunner:  txRunner,
		locker:    locker,
		publisher: publisher,
		metrics:   metrics,
		log:       log,
		now:       time.Now,
	}
}

// CreateItemInput datos para crear un ítem.
type CreateItemInput struct {
	SKU           string
	Name          string
	Category      string
	Subcategory   string
	UnitOfMeasure string
	QuantityScale int32
	CostingMethod entity.CostingMethod
	Thresholds    entity.Thresholds
}

// UpdateItemInput campos editables del maestro (nil = sin cambio). SKU y método de costeo no se editan.
type UpdateItemInput struct {
	Name          *string
	Category      *string
	Subcategory   *string
	UnitOfMeasure *string
}

// CreateItem crea un ítem con cantidad 0. Falla con ErrDuplicateSKU si el SKU (sin distinguir
// mayúsculas) ya existe y con ErrValidation si faltan datos o los umbrales no son coherentes.
func (uc *CatalogUseCase) CreateItem(ctx context.Context, in CreateItemInput) (*entity.InventoryItem, error) {
	const op = "CreateItem"
	sku := strings.TrimSpace(in.SKU)
	name := strings.TrimSpace(in.Name)
	if sku == "" || name == "" {
		return nil, domain.Validation(op, "", "sku y name son requeridos")
	}
	if !in.CostingMethod.IsValid() {
		return nil, domain.Validation(op, "", "método de costeo desconocido %q", in.CostingMethod)
	}
	if in.QuantityScale < 0 || in.QuantityScale > entity.MaxQuantityScale {
		return nil, domain.Validation(op, "", "quantity_scale debe estar entre 0 y %d", entity.MaxQuantityScale)
	}
	if err := in.Thresholds.Validate(); err != nil {
		return nil, domain.Validation(op, "", "%s", err.Error())
	}

	existing, err := uc.items.GetBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.NewError(domain.ErrDuplicateSKU, op, existing.ID, "sku %q", sku)
	}

	now := uc.now().UTC()
	unit := strings.TrimSpace(in.UnitOfMeasure)
	if unit == "" {
		unit = "unit"
	}
	item := &entity.InventoryItem{
		ID:            uuid.New().String(),
		SKU:           sku,
		Name:          name,
		Category:      strings.TrimSpace(in.Category),
		Subcategory:   strings.TrimSpace(in.Subcategory),
		UnitOfMeasure: unit,
		QuantityScale: in.QuantityScale,
		CostingMethod: in.CostingMethod,
		Thresholds:    in.Thresholds,
		Status:        entity.StatusActive,
		Quantity:      decimal.Zero,
		Valuation:     decimal.Zero,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	item.Alerts = inventory.EvaluateAlerts(item.Quantity, item.Thresholds)

	if err := uc.items.Create(ctx, item); err != nil {
		return nil, err
	}
	uc.log.Info().Str("item_id", item.ID).Str("sku", item.SKU).Str("costing_method", item.CostingMethod.String()).Msg("ítem creado")
	uc.publish(ctx, &ItemCreatedEvent{
		BaseEvent:     newBase(EventTypeItemCreated, item, now),
		CostingMethod: item.CostingMethod,
	})
	return item.Clone(), nil
}

// GetItem devuelve la foto del ítem con cantidad, valoración y alertas cacheadas.
func (uc *CatalogUseCase) GetItem(ctx context.Context, itemID string) (*entity.InventoryItem, error) {
	item, err := uc.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.NewError(domain.ErrItemNotFound, "GetItem", itemID, "")
	}
	return item, nil
}

// ListItems lista una página del catálogo ordenada por SKU y el total que cumple el filtro.
func (uc *CatalogUseCase) ListItems(ctx context.Context, filter repository.ItemFilter) ([]*entity.InventoryItem, int, error) {
	total, err := uc.items.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	items, err := uc.items.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// UpdateThresholds cambia los umbrales y recalcula alertas con la cantidad vigente.
// Las alertas pueden cambiar sin que exista un movimiento.
func (uc *CatalogUseCase) UpdateThresholds(ctx context.Context, itemID string, t entity.Thresholds, actor string) (*entity.InventoryItem, error) {
	const op = "UpdateThresholds"
	if err := t.Validate(); err != nil {
		return nil, domain.Validation(op, itemID, "%s", err.Error())
	}
	var (
		updated *entity.InventoryItem
		before  entity.Alerts
	)
	err := withItemLock(ctx, uc.locker, uc.metrics, op, itemID, func() error {
		return uc.txRunner.Run(ctx, func(items repository.ItemRepository, _ repository.StockMovementRepository) error {
			item, err := loadLive(ctx, items, op, itemID)
			if err != nil {
				return err
			}
			before = item.Alerts
			item.Thresholds = t
			item.Alerts = inventory.EvaluateAlerts(item.Quantity, t)
			item.UpdatedAt = uc.now().UTC()
			if err := items.Update(ctx, item); err != nil {
				return err
			}
			updated = item
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("item_id", itemID).Str("actor", actor).Str("alert_state", string(updated.Alerts.State())).Msg("umbrales actualizados")
	events := []Event{&ThresholdsUpdatedEvent{
		BaseEvent:       newBase(EventTypeThresholdsUpdated, updated, updated.UpdatedAt),
		MinStockLevel:   t.MinStockLevel,
		MaxStockLevel:   t.MaxStockLevel,
		ReorderPoint:    t.ReorderPoint,
		ReorderQuantity: t.ReorderQuantity,
		Actor:           actor,
	}}
	if ev := alertChange(updated, before, updated.UpdatedAt); ev != nil {
		events = append(events, ev)
	}
	uc.publish(ctx, events...)
	return updated.Clone(), nil
}

// UpdateDetails edita nombre, categoría, subcategoría y unidad.
func (uc *CatalogUseCase) UpdateDetails(ctx context.Context, itemID string, in UpdateItemInput) (*entity.InventoryItem, error) {
	const op = "UpdateDetails"
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, domain.Validation(op, itemID, "name no puede ser vacío")
	}
	var updated *entity.InventoryItem
	err := withItemLock(ctx, uc.locker, uc.metrics, op, itemID, func() error {
		return uc.txRunner.Run(ctx, func(items repository.ItemRepository, _ repository.StockMovementRepository) error {
			item, err := loadLive(ctx, items, op, itemID)
			if err != nil {
				return err
			}
			if in.Name != nil {
				item.Name = strings.TrimSpace(*in.Name)
			}
			if in.Category != nil {
				item.Category = strings.TrimSpace(*in.Category)
			}
			if in.Subcategory != nil {
				item.Subcategory = strings.TrimSpace(*in.Subcategory)
			}
			if in.UnitOfMeasure != nil && strings.TrimSpace(*in.UnitOfMeasure) != "" {
				item.UnitOfMeasure = strings.TrimSpace(*in.UnitOfMeasure)
			}
			item.UpdatedAt = uc.now().UTC()
			if err := items.Update(ctx, item); err != nil {
				return err
			}
			updated = item
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return updated.Clone(), nil
}

// DiscontinueItem active → discontinued. El ítem sigue aceptando movimientos.
func (uc *CatalogUseCase) DiscontinueItem(ctx context.Context, itemID string) (*entity.InventoryItem, error) {
	return uc.transition(ctx, "DiscontinueItem", itemID, entity.StatusDiscontinued)
}

// ArchiveItem active/discontinued → archived. Exige cantidad en cero: primero se debe
// dejar el stock en cero con movimientos. Los ítems nunca se eliminan.
func (uc *CatalogUseCase) ArchiveItem(ctx context.Context, itemID string) (*entity.InventoryItem, error) {
	return uc.transition(ctx, "ArchiveItem", itemID, entity.StatusArchived)
}

func (uc *CatalogUseCase) transition(ctx context.Context, op, itemID string, next entity.ItemStatus) (*entity.InventoryItem, error) {
	var (
		updated *entity.InventoryItem
		from    entity.ItemStatus
	)
	err := withItemLock(ctx, uc.locker, uc.metrics, op, itemID, func() error {
		return uc.txRunner.Run(ctx, func(items repository.ItemRepository, _ repository.StockMovementRepository) error {
			item, err := items.GetForUpdate(ctx, itemID)
			if err != nil {
				return err
			}
			if item == nil {
				return domain.NewError(domain.ErrItemNotFound, op, itemID, "")
			}
			if !item.Status.CanTransitionTo(next) {
				return domain.NewError(domain.ErrInvalidStateTransition, op, itemID, "%s → %s", item.Status, next)
			}
			if next == entity.StatusArchived && !item.Quantity.IsZero() {
				return domain.NewError(domain.ErrInvalidStateTransition, op, itemID, "cantidad actual %s, debe ser 0 para archivar", item.Quantity)
			}
			from = item.Status
			now := uc.now().UTC()
			item.Status = next
			item.UpdatedAt = now
			if next == entity.StatusArchived {
				item.ArchivedAt = &now
			}
			if err := items.Update(ctx, item); err != nil {
				return err
			}
			updated = item
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("item_id", itemID).Str("from", string(from)).Str("to", string(next)).Msg("estado del ítem actualizado")
	uc.publish(ctx, &ItemStatusChangedEvent{
		BaseEvent: newBase(EventTypeItemStatusChanged, updated, updated.UpdatedAt),
		From:      from,
		To:        next,
	})
	return updated.Clone(), nil
}

func (uc *CatalogUseCase) publish(ctx context.Context, events ...Event) {
	if err := uc.publisher.Publish(ctx, events...); err != nil {
		uc.log.Error().Err(err).Int("events", len(events)).Msg("publicar eventos de catálogo")
	}
}

// loadLive obtiene el ítem con bloqueo; archivado equivale a inexistente para escrituras.
func loadLive(ctx context.Context, items repository.ItemRepository, op, itemID string) (*entity.InventoryItem, error) {
	item, err := items.GetForUpdate(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.NewError(domain.ErrItemNotFound, op, itemID, "")
	}
	if item.Status == entity.StatusArchived {
		return nil, domain.NewError(domain.ErrItemNotFound, op, itemID, "ítem archivado")
	}
	return item, nil
}
