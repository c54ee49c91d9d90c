package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/stockledger-api/internal/domain"
	"github.com/jhoicas/stockledger-api/internal/domain/entity"
	"github.com/jhoicas/stockledger-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo kardex sobre PostgreSQL (usable con pool o tx). Solo inserta y lee.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Append persiste un movimiento. La restricción (item_id, sequence) rechaza secuencias repetidas.
func (r *StockMovementRepo) Append(ctx context.Context, m *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (id, item_id, sequence, type, quantity, unit_cost, total_cost, lot_id, reference, reason, actor, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.ItemID, m.Sequence, string(m.Type), m.Quantity, m.UnitCost, m.TotalCost,
		m.LotID, m.Reference, m.Reason, m.Actor, m.OccurredAt,
	)
	if err != nil {
		if c, ok := uniqueViolation(err); ok && c == constraintSequence {
			return domain.NewError(domain.ErrConcurrentModification, "postgres.AppendMovement", m.ItemID, "secuencia %d ya registrada", m.Sequence)
		}
		return fmt.Errorf("append stock movement: %w", err)
	}
	return nil
}

// ListByItem movimientos del ítem en orden de secuencia; limit 0 = todos.
func (r *StockMovementRepo) ListByItem(ctx context.Context, itemID string, limit, offset int) ([]*entity.StockMovement, error) {
	query := `
		SELECT id, item_id, sequence, type, quantity, unit_cost, total_cost, lot_id, reference, reason, actor, occurred_at
		FROM stock_movements WHERE item_id = $1
		ORDER BY sequence
		OFFSET $2`
	args := []any{itemID, offset}
	if limit > 0 {
		query += ` LIMIT $3`
		args = append(args, limit)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	defer rows.Close()

	var out []*entity.StockMovement
	for rows.Next() {
		var (
			m   entity.StockMovement
			typ string
		)
		if err := rows.Scan(&m.ID, &m.ItemID, &m.Sequence, &typ, &m.Quantity, &m.UnitCost, &m.TotalCost,
			&m.LotID, &m.Reference, &m.Reason, &m.Actor, &m.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		m.Type = entity.MovementType(typ)
		out = append(out, &m)
	}
	return out, rows.Err()
}

// CountByItem total de movimientos del ítem.
func (r *StockMovementRepo) CountByItem(ctx context.Context, itemID string) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM stock_movements WHERE item_id = $1`, itemID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count stock movements: %w", err)
	}
	return n, nil
}
