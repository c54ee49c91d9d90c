package repository

import (
	"context"

	"github.com/jhoicas/stockledger-api/internal/domain/entity"
)

// ItemFilter criterios de listado del catálogo.
type ItemFilter struct {
	Status   entity.ItemStatus // vacío = todos
	Category string
	Limit    int // 0 = sin límite
	Offset   int
}

// ItemRepository define el puerto de persistencia para ítems de inventario (DIP).
// Las implementaciones devuelven copias: ningún llamador retiene una referencia mutable al estado interno.
// Update reemplaza el registro completo, así cantidad, valoración y alertas se publican juntas.
type ItemRepository interface {
	Create(ctx context.Context, item *entity.InventoryItem) error
	GetByID(ctx context.Context, id string) (*entity.InventoryItem, error)
	// GetForUpdate bloquea el registro hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.InventoryItem, error)
	GetBySKU(ctx context.Context, sku string) (*entity.InventoryItem, error)
	Update(ctx context.Context, item *entity.InventoryItem) error
	List(ctx context.Context, filter ItemFilter) ([]*entity.InventoryItem, error)
	// Count ignora Limit y Offset del filtro.
	Count(ctx context.Context, filter ItemFilter) (int, error)
}
