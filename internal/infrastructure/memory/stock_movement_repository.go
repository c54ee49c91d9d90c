package memory

import (
	"context"

	"github.com/jhoicas/stockledger-api/internal/domain/entity"
)

// StockMovementRepository kardex en memoria (append-only).
type StockMovementRepository struct {
	store *Store
	tx    *writes
}

// NewStockMovementRepository repositorio sin transacción.
func NewStockMovementRepository(store *Store) *StockMovementRepository {
	return &StockMovementRepository{store: store}
}

// Append agrega el movimiento al final del kardex del ítem.
func (r *StockMovementRepository) Append(_ context.Context, m *entity.StockMovement) error {
	c := *m
	if r.tx == nil {
		return r.store.commit(&writes{appended: []*entity.StockMovement{&c}})
	}
	r.tx.appended = append(r.tx.appended, &c)
	return nil
}

// ListByItem movimientos confirmados en orden de secuencia.
func (r *StockMovementRepository) ListByItem(_ context.Context, itemID string, limit, offset int) ([]*entity.StockMovement, error) {
	return r.store.listMovements(itemID, limit, offset), nil
}

// CountByItem total de movimientos confirmados del ítem.
func (r *StockMovementRepository) CountByItem(_ context.Context, itemID string) (int, error) {
	return r.store.countMovements(itemID), nil
}
