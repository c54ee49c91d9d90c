package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stockledger-api/internal/application/inventory"
	"github.com/jhoicas/stockledger-api/internal/domain"
	"github.com/jhoicas/stockledger-api/internal/domain/entity"
)

func TestGetValuation_CacheYSimulacion(t *testing.T) {
	env := newEnv(t, time.Second)
	ctx := context.Background()
	item := env.createItem(t, "VAL-01", entity.CostingFIFO)
	env.purchase(t, item.ID, "10", "100")
	env.purchase(t, item.ID, "10", "150")
	_, err := env.sale(item.ID, "12")
	require.NoError(t, err)

	v, err := env.valuation.GetValuation(ctx, item.ID, "")
	require.NoError(t, err)
	assert.Equal(t, entity.CostingFIFO, v.Method)
	assert.False(t, v.Simulated)
	assert.True(t, v.TotalValue.Equal(d("1200")))
	require.Len(t, v.Layers, 1)

	lifo, err := env.valuation.GetValuation(ctx, item.ID, entity.CostingLIFO)
	require.NoError(t, err)
	assert.True(t, lifo.Simulated)
	assert.True(t, lifo.TotalValue.Equal(d("800")))

	_, err = env.valuation.GetValuation(ctx, item.ID, "otro")
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = env.valuation.GetValuation(ctx, "no-existe", "")
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
}

func TestGetValuation_SinCantidadNoHayPromedio(t *testing.T) {
	env := newEnv(t, time.Second)
	item := env.createItem(t, "VAL-02", entity.CostingWeightedAverage)
	v, err := env.valuation.GetValuation(context.Background(), item.ID, "")
	require.NoError(t, err)
	assert.Nil(t, v.AverageUnitCost)
	assert.True(t, v.TotalValue.IsZero())
}

func TestCompareMethods_EsSimulacionPura(t *testing.T) {
	env := newEnv(t, time.Second)
	ctx := context.Background()
	item := env.createItem(t, "CMP-01", entity.CostingLIFO)
	env.purchase(t, item.ID, "10", "100")
	env.purchase(t, item.ID, "10", "150")
	_, err := env.sale(item.ID, "12")
	require.NoError(t, err)

	before, err := env.catalog.GetItem(ctx, item.ID)
	require.NoError(t, err)

	snaps, err := env.valuation.CompareMethods(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, snaps, len(entity.CostingMethods))

	values := map[entity.CostingMethod]string{}
	for _, s := range snaps {
		assert.True(t, s.Quantity.Equal(d("8")), "%s", s.Method)
		assert.Equal(t, s.Method != entity.CostingLIFO, s.Simulated)
		values[s.Method] = s.TotalValue.String()
	}
	assert.Equal(t, "1200", values[entity.CostingFIFO])
	assert.Equal(t, "800", values[entity.CostingLIFO])
	assert.Equal(t, "1000", values[entity.CostingWeightedAverage])

	after, err := env.catalog.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, before.CostingMethod, after.CostingMethod)
	assert.True(t, before.Valuation.Equal(after.Valuation))
	assert.Equal(t, before.Cost.Layers, after.Cost.Layers, "las capas no cambian")
	assert.Equal(t, before.LastSequence, after.LastSequence)
}

func TestCompareMethods_ItemFIFOConLotesInformados(t *testing.T) {
	env := newEnv(t, time.Second)
	ctx := context.Background()
	item := env.createItem(t, "CMP-LOT", entity.CostingFIFO)
	for _, cost := range []string{"10", "12"} {
		res, err := env.movements.RecordMovement(ctx, inventory.MovementInput{
			ItemID:   item.ID,
			Type:     entity.MovementPurchase,
			Quantity: d("5"),
			UnitCost: dp(cost),
			LotID:    "BATCH-A",
		})
		require.NoError(t, err)
		assert.Empty(t, res.Movement.LotID, "FIFO no registra lotes")
	}
	_, err := env.movements.RecordMovement(ctx, inventory.MovementInput{
		ItemID:   item.ID,
		Type:     entity.MovementSale,
		Quantity: d("3"),
		LotID:    "BATCH-Z",
	})
	require.NoError(t, err)

	snaps, err := env.valuation.CompareMethods(ctx, item.ID)
	require.NoError(t, err)
	values := map[entity.CostingMethod]string{}
	for _, s := range snaps {
		values[s.Method] = s.TotalValue.String()
	}
	assert.Equal(t, "80", values[entity.CostingFIFO])
	assert.Equal(t, "80", values[entity.CostingSpecificID])
	assert.Equal(t, "74", values[entity.CostingLIFO])

	sid, err := env.valuation.GetValuation(ctx, item.ID, entity.CostingSpecificID)
	require.NoError(t, err)
	assert.True(t, sid.Simulated)
	assert.True(t, sid.TotalValue.Equal(d("80")))
}
