package inventory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stockledger-api/internal/application/inventory"
	"github.com/jhoicas/stockledger-api/internal/domain"
	"github.com/jhoicas/stockledger-api/internal/domain/entity"
)

func TestRecordMovement_ComprasYVentaFIFO(t *testing.T) {
	env := newEnv(t, time.Second)
	item := env.createItem(t, "TAL-001", entity.CostingFIFO)

	res := env.purchase(t, item.ID, "20", "85000")
	assert.True(t, res.NewQuantity.Equal(d("20")))
	assert.True(t, res.NewValuation.Equal(d("1700000")))
	assert.False(t, res.Alerts.LowStock)
	assert.False(t, res.Alerts.OutOfStock)
	assert.Equal(t, int64(1), res.Movement.Sequence)

	res = env.purchase(t, item.ID, "5", "85000")
	assert.True(t, res.NewQuantity.Equal(d("25")))
	assert.True(t, res.NewValuation.Equal(d("2125000")))

	res, err := env.sale(item.ID, "22")
	require.NoError(t, err)
	assert.True(t, res.NewQuantity.Equal(d("3")))
	assert.True(t, res.NewValuation.Equal(d("255000")))
	assert.True(t, res.Alerts.LowStock)
	assert.False(t, res.Alerts.OutOfStock)
	assert.True(t, res.Movement.Quantity.Equal(d("-22")), "el delta de la salida es negativo")
	assert.True(t, res.Movement.UnitCost.Equal(d("85000")))
	assert.True(t, res.Movement.TotalCost.Equal(d("-1870000")))

	got, err := env.catalog.GetItem(context.Background(), item.ID)
	require.NoError(t, err)
	assert.True(t, got.Quantity.Equal(d("3")))
	assert.True(t, got.Valuation.Equal(d("255000")))
	assert.True(t, got.Cost.Quantity().Equal(got.Quantity), "las capas suman la cantidad")
}

func TestRecordMovement_StockInsuficienteNoCambiaNada(t *testing.T) {
	env := newEnv(t, time.Second)
	ctx := context.Background()
	item := env.createItem(t, "TAL-002", entity.CostingFIFO)
	env.purchase(t, item.ID, "3", "85000")

	_, err := env.sale(item.ID, "10")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	var de *domain.Error
	require.ErrorAs(t, err, &de)
	assert.Contains(t, de.Detail, "disponible 3")

	got, err := env.catalog.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, got.Quantity.Equal(d("3")))
	assert.True(t, got.Valuation.Equal(d("255000")))
	assert.Equal(t, int64(1), got.LastSequence)

	history, total, err := env.movements.ListMovements(ctx, item.ID, 0, 0)
	require.NoError(t, err)
	assert.Len(t, history, 1, "el movimiento rechazado no queda en el kardex")
	assert.Equal(t, 1, total)
}

func TestRecordMovement_VenderTodoDejaSinStock(t *testing.T) {
	env := newEnv(t, time.Second)
	item := env.createItem(t, "TAL-003", entity.CostingLIFO)
	env.purchase(t, item.ID, "4", "10")

	res, err := env.sale(item.ID, "4")
	require.NoError(t, err)
	assert.True(t, res.NewQuantity.IsZero())
	assert.True(t, res.NewValuation.IsZero())
	assert.True(t, res.Alerts.OutOfStock)
	assert.False(t, res.Alerts.LowStock)
}

func TestRecordMovement_PromedioPonderado(t *testing.T) {
	env := newEnv(t, time.Second)
	ctx := context.Background()
	item := env.createItem(t, "PP-001", entity.CostingWeightedAverage)
	env.purchase(t, item.ID, "20", "100")
	res := env.purchase(t, item.ID, "20", "120")
	assert.True(t, res.NewValuation.Equal(d("4400")))

	v, err := env.valuation.GetValuation(ctx, item.ID, "")
	require.NoError(t, err)
	require.NotNil(t, v.AverageUnitCost)
	assert.True(t, v.AverageUnitCost.Equal(d("110")))

	res, err = env.sale(item.ID, "10")
	require.NoError(t, err)
	assert.True(t, res.NewQuantity.Equal(d("30")))
	assert.True(t, res.NewValuation.Equal(d("3300")))
	assert.True(t, res.Movement.UnitCost.Equal(d("110")))

	v, err = env.valuation.GetValuation(ctx, item.ID, "")
	require.NoError(t, err)
	assert.True(t, v.AverageUnitCost.Equal(d("110")))
	assert.False(t, v.Simulated)
}

func TestRecordMovement_IdentificacionEspecifica(t *testing.T) {
	env := newEnv(t, time.Second)
	ctx := context.Background()
	item := env.createItem(t, "SID-001", entity.CostingSpecificID)

	_, err := env.movements.RecordMovement(ctx, inventory.MovementInput{
		ItemID: item.ID, Type: entity.MovementPurchase, Quantity: d("5"), UnitCost: dp("10"), LotID: "L-A",
	})
	require.NoError(t, err)
	sinLote := env.purchase(t, item.ID, "5", "30")
	assert.Equal(t, sinLote.Movement.ID, sinLote.Movement.LotID, "el lote por defecto es el id del movimiento")

	_, err = env.sale(item.ID, "1")
	assert.ErrorIs(t, err, domain.ErrValidation, "salida sin lote")

	_, err = env.movements.RecordMovement(ctx, inventory.MovementInput{
		ItemID: item.ID, Type: entity.MovementSale, Quantity: d("1"), LotID: "L-X",
	})
	assert.ErrorIs(t, err, domain.ErrLotNotFound)

	_, err = env.movements.RecordMovement(ctx, inventory.MovementInput{
		ItemID: item.ID, Type: entity.MovementSale, Quantity: d("6"), LotID: "L-A",
	})
	assert.ErrorIs(t, err, domain.ErrLotInsufficientQuantity)

	res, err := env.movements.RecordMovement(ctx, inventory.MovementInput{
		ItemID: item.ID, Type: entity.MovementSale, Quantity: d("2"), LotID: sinLote.Movement.LotID,
	})
	require.NoError(t, err)
	assert.True(t, res.NewQuantity.Equal(d("8")))
	assert.True(t, res.NewValuation.Equal(d("140")))
}

func TestRecordMovement_AjustesYTraslados(t *testing.T) {
	env := newEnv(t, time.Second)
	item := env.createItem(t, "AJ-001", entity.CostingFIFO)
	env.purchase(t, item.ID, "10", "20")

	res, err := env.movements.RecordMovement(context.Background(), inventory.MovementInput{
		ItemID: item.ID, Type: entity.MovementAdjustment, Quantity: d("2"), Reason: "conteo físico",
	})
	require.NoError(t, err)
	assert.True(t, res.NewQuantity.Equal(d("12")))
	assert.True(t, res.Movement.UnitCost.Equal(d("20")), "ajuste sin costo usa el promedio vigente")
	assert.True(t, res.NewValuation.Equal(d("240")))

	res, err = env.movements.RecordMovement(context.Background(), inventory.MovementInput{
		ItemID: item.ID, Type: entity.MovementAdjustment, Quantity: d("-3"), Reason: "merma",
	})
	require.NoError(t, err)
	assert.True(t, res.NewQuantity.Equal(d("9")))

	res, err = env.movements.RecordMovement(context.Background(), inventory.MovementInput{
		ItemID: item.ID, Type: entity.MovementTransfer, Quantity: d("4"), Reference: "bodega-2",
	})
	require.NoError(t, err)
	assert.True(t, res.NewQuantity.Equal(d("5")))

	res, err = env.movements.RecordMovement(context.Background(), inventory.MovementInput{
		ItemID: item.ID, Type: entity.MovementReturn, Quantity: d("1"), UnitCost: dp("20"),
	})
	require.NoError(t, err)
	assert.True(t, res.NewQuantity.Equal(d("6")))
	assert.True(t, res.NewValuation.Equal(d("120")))
}

func TestRecordMovement_Validaciones(t *testing.T) {
	env := newEnv(t, time.Second)
	item := env.createItem(t, "VAL-001", entity.CostingFIFO)
	cases := []struct {
		name string
		in   inventory.MovementInput
	}{
		{"sin item", inventory.MovementInput{Type: entity.MovementPurchase, Quantity: d("1"), UnitCost: dp("1")}},
		{"tipo desconocido", inventory.MovementInput{ItemID: item.ID, Type: "regalo", Quantity: d("1")}},
		{"cantidad cero", inventory.MovementInput{ItemID: item.ID, Type: entity.MovementPurchase, Quantity: d("0"), UnitCost: dp("1")}},
		{"venta negativa", inventory.MovementInput{ItemID: item.ID, Type: entity.MovementSale, Quantity: d("-1")}},
		{"compra sin costo", inventory.MovementInput{ItemID: item.ID, Type: entity.MovementPurchase, Quantity: d("1")}},
		{"costo negativo", inventory.MovementInput{ItemID: item.ID, Type: entity.MovementPurchase, Quantity: d("1"), UnitCost: dp("-1")}},
		{"demasiados decimales", inventory.MovementInput{ItemID: item.ID, Type: entity.MovementPurchase, Quantity: d("1.001"), UnitCost: dp("1")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.movements.RecordMovement(context.Background(), tc.in)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}

	_, err := env.sale("no-existe", "1")
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
}

func TestRecordMovement_ConservacionDeCantidad(t *testing.T) {
	env := newEnv(t, time.Second)
	ctx := context.Background()
	item := env.createItem(t, "CONS-01", entity.CostingLIFO)
	env.purchase(t, item.ID, "30", "7.5")
	env.purchase(t, item.ID, "12.25", "8")
	_, err := env.sale(item.ID, "17.5")
	require.NoError(t, err)
	_, err = env.sale(item.ID, "100")
	require.Error(t, err)

	history, _, err := env.movements.ListMovements(ctx, item.ID, 0, 0)
	require.NoError(t, err)
	sum := d("0")
	for i, m := range history {
		assert.Equal(t, int64(i+1), m.Sequence, "secuencia consecutiva")
		sum = sum.Add(m.Quantity)
	}
	got, err := env.catalog.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, got.Quantity.Equal(sum), "cantidad %s, suma del kardex %s", got.Quantity, sum)
	assert.True(t, got.Cost.Quantity().Equal(got.Quantity))
}

func TestRecordMovement_ConcurrenciaSobreElMismoItem(t *testing.T) {
	env := newEnv(t, 5*time.Second)
	item := env.createItem(t, "CONC-01", entity.CostingFIFO)
	env.purchase(t, item.ID, "50", "10")

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for _, qty := range []string{"10", "15"} {
		wg.Add(1)
		go func(q string) {
			defer wg.Done()
			_, err := env.movements.RecordMovement(context.Background(), inventory.MovementInput{
				ItemID: item.ID, Type: entity.MovementPurchase, Quantity: d(q), UnitCost: dp("10"),
			})
			errs <- err
		}(qty)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got, err := env.catalog.GetItem(context.Background(), item.ID)
	require.NoError(t, err)
	assert.True(t, got.Quantity.Equal(d("75")), "no se pierde ninguna actualización")
	assert.True(t, got.Valuation.Equal(d("750")))
}

func TestRecordMovement_MuchasGoroutinesNuncaNegativo(t *testing.T) {
	env := newEnv(t, 5*time.Second)
	ctx := context.Background()
	item := env.createItem(t, "CONC-02", entity.CostingWeightedAverage)
	env.purchase(t, item.ID, "20", "5")

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := env.sale(item.ID, "1"); err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, domain.ErrInsufficientStock)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, ok, "solo se despachan las unidades existentes")
	got, err := env.catalog.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, got.Quantity.IsZero())
	assert.True(t, got.Valuation.IsZero())
	assert.True(t, got.Alerts.OutOfStock)
	assert.Equal(t, int64(21), got.LastSequence)
}

func TestRecordMovement_BloqueoAgotado(t *testing.T) {
	env := newEnv(t, 50*time.Millisecond)
	ctx := context.Background()
	item := env.createItem(t, "LOCK-01", entity.CostingFIFO)

	release, err := env.locker.Acquire(ctx, item.ID)
	require.NoError(t, err)

	_, err = env.movements.RecordMovement(ctx, inventory.MovementInput{
		ItemID: item.ID, Type: entity.MovementPurchase, Quantity: d("1"), UnitCost: dp("1"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConcurrentModification)
	assert.True(t, domain.IsRetryable(err))

	release()
	res := env.purchase(t, item.ID, "1", "1")
	assert.Equal(t, int64(1), res.Movement.Sequence, "el intento rechazado no consumió secuencia")
}

func TestRecordMovement_PublicaEventos(t *testing.T) {
	env := newEnv(t, time.Second)
	item := env.createItem(t, "EV-01", entity.CostingFIFO)
	env.purchase(t, item.ID, "20", "1")

	assert.Equal(t, []string{
		inventory.EventTypeItemCreated,
		inventory.EventTypeStockMovementRecorded,
		inventory.EventTypeAlertStateChanged,
	}, env.publisher.types(), "de sin stock a normal cambia el estado de alerta")

	_, err := env.sale(item.ID, "100")
	require.Error(t, err)
	assert.Len(t, env.publisher.types(), 3, "un rechazo no publica eventos")
}

func TestListMovements_Paginado(t *testing.T) {
	env := newEnv(t, time.Second)
	item := env.createItem(t, "PAG-01", entity.CostingFIFO)
	for i := 0; i < 5; i++ {
		env.purchase(t, item.ID, "1", "1")
	}
	page, total, err := env.movements.ListMovements(context.Background(), item.ID, 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, int64(3), page[0].Sequence)
	assert.Equal(t, 5, total, "el total es el del kardex, no el de la página")

	_, _, err = env.movements.ListMovements(context.Background(), "nada", 0, 0)
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
}
