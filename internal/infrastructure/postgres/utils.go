package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Restricciones únicas del esquema que se traducen a errores de dominio.
const (
	constraintSKU      = "inventory_items_sku_folded_key"
	constraintSequence = "stock_movements_item_id_sequence_key"
)

// uniqueViolation devuelve la restricción violada si err es un unique_violation (23505).
func uniqueViolation(err error) (constraint string, ok bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return pgErr.ConstraintName, true
	}
	return "", false
}
