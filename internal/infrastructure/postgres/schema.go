package postgres

import (
	"context"
	"fmt"
)

// schema crea las tablas del catálogo y del kardex. NUMERIC sin precisión fija conserva
// exactamente los decimales de cantidades y costos.
const schema = `
CREATE TABLE IF NOT EXISTS inventory_items (
	id               UUID PRIMARY KEY,
	sku              TEXT NOT NULL,
	sku_folded       TEXT NOT NULL,
	name             TEXT NOT NULL,
	category         TEXT NOT NULL DEFAULT '',
	subcategory      TEXT NOT NULL DEFAULT '',
	unit_of_measure  TEXT NOT NULL,
	quantity_scale   INTEGER NOT NULL DEFAULT 0,
	costing_method   TEXT NOT NULL,
	min_stock_level  NUMERIC NOT NULL DEFAULT 0,
	max_stock_level  NUMERIC NOT NULL DEFAULT 0,
	reorder_point    NUMERIC NOT NULL DEFAULT 0,
	reorder_quantity NUMERIC NOT NULL DEFAULT 0,
	status           TEXT NOT NULL,
	quantity         NUMERIC NOT NULL DEFAULT 0 CHECK (quantity >= 0),
	valuation        NUMERIC NOT NULL DEFAULT 0,
	low_stock        BOOLEAN NOT NULL DEFAULT FALSE,
	overstock        BOOLEAN NOT NULL DEFAULT FALSE,
	out_of_stock     BOOLEAN NOT NULL DEFAULT TRUE,
	cost_state       JSONB NOT NULL DEFAULT '{}'::jsonb,
	last_sequence    BIGINT NOT NULL DEFAULT 0,
	created_at       TIMESTAMPTZ NOT NULL,
	updated_at       TIMESTAMPTZ NOT NULL,
	archived_at      TIMESTAMPTZ
);
CREATE UNIQUE INDEX IF NOT EXISTS inventory_items_sku_folded_key ON inventory_items (sku_folded);
CREATE INDEX IF NOT EXISTS inventory_items_category_idx ON inventory_items (category);

CREATE TABLE IF NOT EXISTS stock_movements (
	id          UUID PRIMARY KEY,
	item_id     UUID NOT NULL REFERENCES inventory_items (id),
	sequence    BIGINT NOT NULL,
	type        TEXT NOT NULL,
	quantity    NUMERIC NOT NULL,
	unit_cost   NUMERIC NOT NULL,
	total_cost  NUMERIC NOT NULL,
	lot_id      TEXT NOT NULL DEFAULT '',
	reference   TEXT NOT NULL DEFAULT '',
	reason      TEXT NOT NULL DEFAULT '',
	actor       TEXT NOT NULL DEFAULT '',
	occurred_at TIMESTAMPTZ NOT NULL,
	UNIQUE (item_id, sequence)
);
`

// Migrate aplica el esquema (idempotente).
func Migrate(ctx context.Context, q Querier) error {
	if _, err := q.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}
