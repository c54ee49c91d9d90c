package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stockledger-api/internal/domain/entity"
	"github.com/jhoicas/stockledger-api/internal/domain/inventory"
)

func history() []*entity.StockMovement {
	return []*entity.StockMovement{
		{ID: "m1", Sequence: 1, Type: entity.MovementPurchase, Quantity: d("10"), UnitCost: d("100"), LotID: "A"},
		{ID: "m2", Sequence: 2, Type: entity.MovementPurchase, Quantity: d("10"), UnitCost: d("150"), LotID: "B"},
		{ID: "m3", Sequence: 3, Type: entity.MovementSale, Quantity: d("-12"), LotID: ""},
	}
}

func TestReplay_CadaMetodo(t *testing.T) {
	cases := map[entity.CostingMethod]string{
		entity.CostingFIFO:            "1200",
		entity.CostingLIFO:            "800",
		entity.CostingWeightedAverage: "1000",
		entity.CostingSpecificID:      "1200", // salida sin lote: orden FIFO
	}
	for method, want := range cases {
		t.Run(string(method), func(t *testing.T) {
			s, err := inventory.Replay(method, history(), inventory.DefaultMoneyScale)
			require.NoError(t, err)
			assert.True(t, s.Quantity().Equal(d("8")))
			assert.True(t, s.Value().Equal(d(want)), "%s: valor %s", method, s.Value())
		})
	}
}

func TestReplay_EspecificaRespetaLote(t *testing.T) {
	h := history()
	h[2].LotID = "B"
	s, err := inventory.Replay(entity.CostingSpecificID, h[:2], inventory.DefaultMoneyScale)
	require.NoError(t, err)
	require.Len(t, s.Layers, 2)

	h[2].Quantity = d("-8")
	s, err = inventory.Replay(entity.CostingSpecificID, h, inventory.DefaultMoneyScale)
	require.NoError(t, err)
	assert.True(t, s.Value().Equal(d("1300")), "quedan 10 de A y 2 de B")
}

func TestReplay_NoModificaElHistorial(t *testing.T) {
	h := history()
	_, err := inventory.Replay(entity.CostingLIFO, h, inventory.DefaultMoneyScale)
	require.NoError(t, err)
	assert.True(t, h[0].Quantity.Equal(d("10")))
	assert.True(t, h[2].Quantity.Equal(d("-12")))
}

func TestReplay_HistorialInconsistente(t *testing.T) {
	h := []*entity.StockMovement{
		{ID: "m1", Sequence: 1, Type: entity.MovementSale, Quantity: d("-1")},
	}
	_, err := inventory.Replay(entity.CostingFIFO, h, inventory.DefaultMoneyScale)
	assert.ErrorIs(t, err, inventory.ErrInsufficientLayers)
}

func TestReplay_EspecificaToleraLotesAjenos(t *testing.T) {
	// historial de un ítem FIFO: los lotes se repiten y la salida nombra un lote que no existe
	h := []*entity.StockMovement{
		{ID: "m1", Sequence: 1, Type: entity.MovementPurchase, Quantity: d("5"), UnitCost: d("10"), LotID: "BATCH-A"},
		{ID: "m2", Sequence: 2, Type: entity.MovementPurchase, Quantity: d("5"), UnitCost: d("12"), LotID: "BATCH-A"},
		{ID: "m3", Sequence: 3, Type: entity.MovementSale, Quantity: d("-3"), LotID: "BATCH-Z"},
	}
	s, err := inventory.Replay(entity.CostingSpecificID, h, inventory.DefaultMoneyScale)
	require.NoError(t, err)
	require.Len(t, s.Layers, 2)
	assert.Equal(t, "BATCH-A", s.Layers[0].LotID)
	assert.Equal(t, "m2", s.Layers[1].LotID, "lote repetido toma el id del movimiento")
	assert.True(t, s.Value().Equal(d("80")), "la salida con lote desconocido consume FIFO: 2*10 + 5*12")
}

func TestReplay_EspecificaLoteSinSaldoConsumeFIFO(t *testing.T) {
	h := history()
	h[2].LotID = "A" // pide 12 y A solo tiene 10
	s, err := inventory.Replay(entity.CostingSpecificID, h, inventory.DefaultMoneyScale)
	require.NoError(t, err)
	assert.True(t, s.Quantity().Equal(d("8")))
	assert.True(t, s.Value().Equal(d("1200")))
}
