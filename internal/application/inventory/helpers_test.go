package inventory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stockledger-api/internal/application/inventory"
	"github.com/jhoicas/stockledger-api/internal/domain/entity"
	"github.com/jhoicas/stockledger-api/internal/infrastructure/memory"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

// recordingPublisher guarda los eventos publicados.
type recordingPublisher struct {
	mu     sync.Mutex
	events []inventory.Event
}

func (p *recordingPublisher) Publish(_ context.Context, events ...inventory.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

type testEnv struct {
	locker    *memory.KeyedLocker
	publisher *recordingPublisher
	catalog   *inventory.CatalogUseCase
	movements *inventory.RegisterMovementUseCase
	valuation *inventory.ValuationUseCase
	alerts    *inventory.AlertsUseCase
}

func newEnv(t *testing.T, lockTimeout time.Duration) *testEnv {
	t.Helper()
	store := memory.NewStore()
	tx := memory.NewTxRunner(store)
	items := memory.NewItemRepository(store)
	locker := memory.NewKeyedLocker(lockTimeout)
	pub := &recordingPublisher{}
	log := zerolog.Nop()
	return &testEnv{
		locker:    locker,
		publisher: pub,
		catalog:   inventory.NewCatalogUseCase(items, tx, locker, pub, inventory.NoopMetrics{}, log),
		movements: inventory.NewRegisterMovementUseCase(tx, locker, pub, inventory.NoopMetrics{}, log, 2),
		valuation: inventory.NewValuationUseCase(tx, log, 2),
		alerts:    inventory.NewAlertsUseCase(items),
	}
}

func defaultThresholds() entity.Thresholds {
	return entity.Thresholds{
		MinStockLevel:   d("10"),
		ReorderPoint:    d("15"),
		MaxStockLevel:   d("50"),
		ReorderQuantity: d("20"),
	}
}

func (e *testEnv) createItem(t *testing.T, sku string, method entity.CostingMethod) *entity.InventoryItem {
	t.Helper()
	item, err := e.catalog.CreateItem(context.Background(), inventory.CreateItemInput{
		SKU:           sku,
		Name:          "Ítem " + sku,
		Category:      "ferretería",
		QuantityScale: 2,
		CostingMethod: method,
		Thresholds:    defaultThresholds(),
	})
	require.NoError(t, err)
	return item
}

func (e *testEnv) purchase(t *testing.T, itemID, qty, cost string) *inventory.MovementResult {
	t.Helper()
	res, err := e.movements.RecordMovement(context.Background(), inventory.MovementInput{
		ItemID:   itemID,
		Type:     entity.MovementPurchase,
		Quantity: d(qty),
		UnitCost: dp(cost),
	})
	require.NoError(t, err)
	return res
}

func (e *testEnv) sale(itemID, qty string) (*inventory.MovementResult, error) {
	return e.movements.RecordMovement(context.Background(), inventory.MovementInput{
		ItemID:   itemID,
		Type:     entity.MovementSale,
		Quantity: d(qty),
	})
}
