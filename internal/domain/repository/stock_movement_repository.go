package repository

import (
	"context"

	"github.com/jhoicas/stockledger-api/internal/domain/entity"
)

// StockMovementRepository define el puerto del kardex append-only (DIP).
// No existen Update ni Delete: los movimientos son inmutables.
type StockMovementRepository interface {
	Append(ctx context.Context, movement *entity.StockMovement) error
	// ListByItem devuelve los movimientos del ítem en orden de secuencia; limit 0 = todos.
	ListByItem(ctx context.Context, itemID string, limit, offset int) ([]*entity.StockMovement, error)
	CountByItem(ctx context.Context, itemID string) (int, error)
}
