package memory

import (
	"context"

	"github.com/jhoicas/stockledger-api/internal/domain"
	"github.com/jhoicas/stockledger-api/internal/domain/entity"
	"github.com/jhoicas/stockledger-api/internal/domain/repository"
)

// ItemRepository implementación en memoria. Fuera de una transacción escribe directo al Store.
type ItemRepository struct {
	store *Store
	tx    *writes
}

// NewItemRepository repositorio sin transacción.
func NewItemRepository(store *Store) *ItemRepository {
	return &ItemRepository{store: store}
}

// Create inserta el ítem; ErrDuplicateSKU si el SKU normalizado ya existe.
func (r *ItemRepository) Create(_ context.Context, item *entity.InventoryItem) error {
	c := item.Clone()
	if r.tx == nil {
		return r.store.commit(&writes{created: []*entity.InventoryItem{c}})
	}
	for _, it := range r.tx.created {
		if entity.FoldSKU(it.SKU) == entity.FoldSKU(c.SKU) {
			return domain.NewError(domain.ErrDuplicateSKU, "memory.Create", c.ID, "sku %q", c.SKU)
		}
	}
	r.tx.created = append(r.tx.created, c)
	return nil
}

// GetByID devuelve una copia o nil si no existe.
func (r *ItemRepository) GetByID(_ context.Context, id string) (*entity.InventoryItem, error) {
	if r.tx != nil {
		if it, ok := r.tx.updated[id]; ok {
			return it.Clone(), nil
		}
		if it := r.tx.createdByID(id); it != nil {
			return it.Clone(), nil
		}
	}
	return r.store.getItem(id), nil
}

// GetForUpdate igual que GetByID; la exclusión por ítem la da el Locker.
func (r *ItemRepository) GetForUpdate(ctx context.Context, id string) (*entity.InventoryItem, error) {
	return r.GetByID(ctx, id)
}

// GetBySKU busca sin distinguir mayúsculas.
func (r *ItemRepository) GetBySKU(_ context.Context, sku string) (*entity.InventoryItem, error) {
	if r.tx != nil {
		for _, it := range r.tx.created {
			if entity.FoldSKU(it.SKU) == entity.FoldSKU(sku) {
				return it.Clone(), nil
			}
		}
	}
	return r.store.getItemBySKU(sku), nil
}

// Update reemplaza el registro completo.
func (r *ItemRepository) Update(_ context.Context, item *entity.InventoryItem) error {
	c := item.Clone()
	w := r.tx
	if w == nil {
		w = &writes{updated: make(map[string]*entity.InventoryItem)}
	}
	if _, seen := w.updated[c.ID]; !seen {
		w.updateOrder = append(w.updateOrder, c.ID)
	}
	w.updated[c.ID] = c
	if r.tx == nil {
		return r.store.commit(w)
	}
	return nil
}

// List ítems ordenados por SKU.
func (r *ItemRepository) List(_ context.Context, filter repository.ItemFilter) ([]*entity.InventoryItem, error) {
	return r.store.listItems(filter), nil
}

// Count ítems que cumplen el filtro.
func (r *ItemRepository) Count(_ context.Context, filter repository.ItemFilter) (int, error) {
	return r.store.countItems(filter), nil
}
