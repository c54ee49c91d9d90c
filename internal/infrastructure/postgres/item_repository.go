package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stockledger-api/internal/domain"
	"github.com/jhoicas/stockledger-api/internal/domain/entity"
	"github.com/jhoicas/stockledger-api/internal/domain/repository"
)

var _ repository.ItemRepository = (*ItemRepo)(nil)

// ItemRepo implementación de ItemRepository sobre PostgreSQL (usable con pool o tx).
type ItemRepo struct {
	q Querier
}

// NewItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewItemRepository(q Querier) *ItemRepo {
	return &ItemRepo{q: q}
}

const itemColumns = `id, sku, name, category, subcategory, unit_of_measure, quantity_scale, costing_method,
	min_stock_level, max_stock_level, reorder_point, reorder_quantity, status, quantity, valuation,
	low_stock, overstock, out_of_stock, cost_state, last_sequence, created_at, updated_at, archived_at`

// Create inserta el ítem. Devuelve domain.ErrDuplicateSKU si el SKU normalizado ya existe.
func (r *ItemRepo) Create(ctx context.Context, item *entity.InventoryItem) error {
	cost, err := json.Marshal(item.Cost)
	if err != nil {
		return fmt.Errorf("encode cost state: %w", err)
	}
	query := `
		INSERT INTO inventory_items (id, sku, sku_folded, name, category, subcategory, unit_of_measure, quantity_scale,
			costing_method, min_stock_level, max_stock_level, reorder_point, reorder_quantity, status, quantity, valuation,
			low_stock, overstock, out_of_stock, cost_state, last_sequence, created_at, updated_at, archived_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)`
	_, err = r.q.Exec(ctx, query,
		item.ID, item.SKU, entity.FoldSKU(item.SKU), item.Name, item.Category, item.Subcategory, item.UnitOfMeasure,
		item.QuantityScale, string(item.CostingMethod),
		item.Thresholds.MinStockLevel, item.Thresholds.MaxStockLevel, item.Thresholds.ReorderPoint, item.Thresholds.ReorderQuantity,
		string(item.Status), item.Quantity, item.Valuation,
		item.Alerts.LowStock, item.Alerts.Overstock, item.Alerts.OutOfStock, cost, item.LastSequence,
		item.CreatedAt, item.UpdatedAt, item.ArchivedAt,
	)
	if err != nil {
		if c, ok := uniqueViolation(err); ok && (c == constraintSKU || c == "") {
			return domain.NewError(domain.ErrDuplicateSKU, "postgres.CreateItem", item.ID, "sku %q", item.SKU)
		}
		return fmt.Errorf("create item: %w", err)
	}
	return nil
}

// GetByID obtiene el ítem; nil si no existe.
func (r *ItemRepo) GetByID(ctx context.Context, id string) (*entity.InventoryItem, error) {
	return r.getOne(ctx, `SELECT `+itemColumns+` FROM inventory_items WHERE id = $1`, id)
}

// GetForUpdate obtiene el ítem y bloquea la fila (SELECT FOR UPDATE) hasta el fin de la transacción.
func (r *ItemRepo) GetForUpdate(ctx context.Context, id string) (*entity.InventoryItem, error) {
	return r.getOne(ctx, `SELECT `+itemColumns+` FROM inventory_items WHERE id = $1 FOR UPDATE`, id)
}

// GetBySKU busca por SKU sin distinguir mayúsculas.
func (r *ItemRepo) GetBySKU(ctx context.Context, sku string) (*entity.InventoryItem, error) {
	return r.getOne(ctx, `SELECT `+itemColumns+` FROM inventory_items WHERE sku_folded = $1`, entity.FoldSKU(sku))
}

// Update reemplaza el estado mutable del ítem en una sola sentencia: cantidad, valoración,
// capas y alertas quedan visibles juntas al confirmar.
func (r *ItemRepo) Update(ctx context.Context, item *entity.InventoryItem) error {
	cost, err := json.Marshal(item.Cost)
	if err != nil {
		return fmt.Errorf("encode cost state: %w", err)
	}
	query := `
		UPDATE inventory_items SET
			name = $2, category = $3, subcategory = $4, unit_of_measure = $5,
			min_stock_level = $6, max_stock_level = $7, reorder_point = $8, reorder_quantity = $9,
			status = $10, quantity = $11, valuation = $12,
			low_stock = $13, overstock = $14, out_of_stock = $15,
			cost_state = $16, last_sequence = $17, updated_at = $18, archived_at = $19
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		item.ID, item.Name, item.Category, item.Subcategory, item.UnitOfMeasure,
		item.Thresholds.MinStockLevel, item.Thresholds.MaxStockLevel, item.Thresholds.ReorderPoint, item.Thresholds.ReorderQuantity,
		string(item.Status), item.Quantity, item.Valuation,
		item.Alerts.LowStock, item.Alerts.Overstock, item.Alerts.OutOfStock,
		cost, item.LastSequence, item.UpdatedAt, item.ArchivedAt,
	)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewError(domain.ErrItemNotFound, "postgres.UpdateItem", item.ID, "")
	}
	return nil
}

// itemWhere arma la cláusula WHERE del filtro y sus argumentos.
func itemWhere(filter repository.ItemFilter) (string, []any) {
	var (
		where []string
		args  []any
	)
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		where = append(where, fmt.Sprintf("category = $%d", len(args)))
	}
	if len(where) == 0 {
		return "", nil
	}
	return ` WHERE ` + strings.Join(where, " AND "), args
}

// List ítems ordenados por SKU con filtros opcionales.
func (r *ItemRepo) List(ctx context.Context, filter repository.ItemFilter) ([]*entity.InventoryItem, error) {
	where, args := itemWhere(filter)
	query := `SELECT ` + itemColumns + ` FROM inventory_items` + where + ` ORDER BY sku_folded`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()
	var out []*entity.InventoryItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// Count ítems que cumplen el filtro, sin paginar.
func (r *ItemRepo) Count(ctx context.Context, filter repository.ItemFilter) (int, error) {
	where, args := itemWhere(filter)
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM inventory_items`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return n, nil
}

func (r *ItemRepo) getOne(ctx context.Context, query string, arg any) (*entity.InventoryItem, error) {
	it, err := scanItem(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return it, nil
}

func scanItem(row pgx.Row) (*entity.InventoryItem, error) {
	var (
		it     entity.InventoryItem
		method string
		status string
		cost   []byte
	)
	err := row.Scan(
		&it.ID, &it.SKU, &it.Name, &it.Category, &it.Subcategory, &it.UnitOfMeasure, &it.QuantityScale, &method,
		&it.Thresholds.MinStockLevel, &it.Thresholds.MaxStockLevel, &it.Thresholds.ReorderPoint, &it.Thresholds.ReorderQuantity,
		&status, &it.Quantity, &it.Valuation,
		&it.Alerts.LowStock, &it.Alerts.Overstock, &it.Alerts.OutOfStock,
		&cost, &it.LastSequence, &it.CreatedAt, &it.UpdatedAt, &it.ArchivedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan item: %w", err)
	}
	it.CostingMethod = entity.CostingMethod(method)
	it.Status = entity.ItemStatus(status)
	if len(cost) > 0 {
		if err := json.Unmarshal(cost, &it.Cost); err != nil {
			return nil, fmt.Errorf("decode cost state: %w", err)
		}
	}
	return &it, nil
}
