package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stockledger-api/internal/application/dto"
	"github.com/jhoicas/stockledger-api/internal/application/inventory"
	"github.com/jhoicas/stockledger-api/internal/infrastructure/memory"
	"github.com/jhoicas/stockledger-api/internal/infrastructure/metrics"
	apphttp "github.com/jhoicas/stockledger-api/internal/interfaces/http"
)

type testServer struct {
	app    *fiber.App
	locker *memory.KeyedLocker
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memory.NewStore()
	tx := memory.NewTxRunner(store)
	items := memory.NewItemRepository(store)
	locker := memory.NewKeyedLocker(50 * time.Millisecond)
	log := zerolog.Nop()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	app := apphttp.NewServer(apphttp.ServerConfig{AppName: "stockledger-test", Metrics: m, Gatherer: reg}, apphttp.RouterDeps{
		Catalog:   inventory.NewCatalogUseCase(items, tx, locker, inventory.NoopPublisher{}, m, log),
		Movements: inventory.NewRegisterMovementUseCase(tx, locker, inventory.NoopPublisher{}, m, log, 2),
		Valuation: inventory.NewValuationUseCase(tx, log, 2),
		Alerts:    inventory.NewAlertsUseCase(items),
		JWTSecret: testJWTSecret,
		Log:       log,
	})
	return &testServer{app: app, locker: locker}
}

func (s *testServer) do(t *testing.T, method, path, role string, body any) *http.Response {
	t.Helper()
	var auth string
	if role != "" {
		auth = tokenForRole(t, role)
	}
	return s.doWithHeader(t, method, path, auth, body)
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func (s *testServer) createItem(t *testing.T, sku, method string) dto.ItemResponse {
	t.Helper()
	resp := s.do(t, http.MethodPost, "/api/items", "admin", map[string]any{
		"sku":            sku,
		"name":           "Tornillo " + sku,
		"costing_method": method,
		"thresholds": map[string]any{
			"min_stock_level":  10,
			"reorder_point":    15,
			"max_stock_level":  50,
			"reorder_quantity": 20,
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[dto.ItemResponse](t, resp)
}

func TestHandlers_FlujoCompletoFIFO(t *testing.T) {
	s := newTestServer(t)
	item := s.createItem(t, "TOR-01", "fifo")
	assert.True(t, item.Alerts.OutOfStock)
	assert.Equal(t, "out_of_stock", item.Alerts.State)

	path := "/api/items/" + item.ID + "/movements"
	resp := s.do(t, http.MethodPost, path, "operator", map[string]any{"type": "purchase", "quantity": 20, "unit_cost": 85000})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	res := decode[dto.MovementResultResponse](t, resp)
	assert.True(t, res.NewValuation.Equal(decimal.NewFromInt(1700000)))
	assert.Equal(t, testUserID, res.Movement.Actor)

	resp = s.do(t, http.MethodPost, path, "operator", map[string]any{"type": "purchase", "quantity": "5", "unit_cost": "85000"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = s.do(t, http.MethodPost, path, "operator", map[string]any{"type": "sale", "quantity": 22})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	res = decode[dto.MovementResultResponse](t, resp)
	assert.True(t, res.NewQuantity.Equal(decimal.NewFromInt(3)))
	assert.True(t, res.NewValuation.Equal(decimal.NewFromInt(255000)))
	assert.True(t, res.Alerts.LowStock)

	resp = s.do(t, http.MethodPost, path, "operator", map[string]any{"type": "sale", "quantity": 10})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	errBody := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "INSUFFICIENT_STOCK", errBody.Code)
	assert.Equal(t, item.ID, errBody.Details["item_id"])

	resp = s.do(t, http.MethodGet, path, "viewer", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[dto.MovementListResponse](t, resp)
	assert.Len(t, list.Movements, 3)
	assert.Equal(t, 3, list.Page.Total)

	resp = s.do(t, http.MethodGet, path+"?limit=1&offset=1", "viewer", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list = decode[dto.MovementListResponse](t, resp)
	assert.Len(t, list.Movements, 1)
	assert.Equal(t, 3, list.Page.Total, "total del kardex, no de la página")

	resp = s.do(t, http.MethodGet, "/api/items/"+item.ID+"/valuation/compare", "viewer", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cmp := decode[dto.CompareMethodsResponse](t, resp)
	assert.Equal(t, "fifo", cmp.CurrentMethod)
	assert.Len(t, cmp.Valuations, 4)

	resp = s.do(t, http.MethodGet, "/api/alerts?kind=low_stock", "viewer", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	alerts := decode[dto.AlertListResponse](t, resp)
	require.Equal(t, 1, alerts.Total)
	assert.Equal(t, item.ID, alerts.Alerts[0].ItemID)
}

func TestHandlers_ErroresDeDominio(t *testing.T) {
	s := newTestServer(t)
	item := s.createItem(t, "ERR-01", "weighted_average")

	resp := s.do(t, http.MethodPost, "/api/items", "admin", map[string]any{"sku": "err-01", "name": "x", "costing_method": "fifo"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode, "SKU duplicado")
	assert.Equal(t, "DUPLICATE_SKU", decode[dto.ErrorResponse](t, resp).Code)

	resp = s.do(t, http.MethodGet, "/api/items/no-existe", "viewer", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = s.do(t, http.MethodPost, "/api/items/"+item.ID+"/movements", "operator", map[string]any{"type": "purchase", "quantity": 1})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "compra sin unit_cost")
	assert.Equal(t, "VALIDATION_ERROR", decode[dto.ErrorResponse](t, resp).Code)

	resp = s.do(t, http.MethodPost, "/api/items/"+item.ID+"/archive", "operator", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "archivar es solo admin")
	resp.Body.Close()

	resp = s.do(t, http.MethodPost, "/api/items/"+item.ID+"/movements", "viewer", map[string]any{"type": "purchase", "quantity": 1, "unit_cost": 1})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "viewer no escribe")
	resp.Body.Close()
}

func TestHandlers_ConflictoDeBloqueoIncluyeRetryAfter(t *testing.T) {
	s := newTestServer(t)
	item := s.createItem(t, "LCK-01", "lifo")

	release, err := s.locker.Acquire(context.Background(), item.ID)
	require.NoError(t, err)
	defer release()

	resp := s.do(t, http.MethodPost, "/api/items/"+item.ID+"/movements", "operator", map[string]any{"type": "purchase", "quantity": 1, "unit_cost": 1})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "1", resp.Header.Get("Retry-After"))
	assert.Equal(t, "CONCURRENT_MODIFICATION", decode[dto.ErrorResponse](t, resp).Code)
}

func TestHandlers_ArchivarYUmbrales(t *testing.T) {
	s := newTestServer(t)
	item := s.createItem(t, "ARC-01", "fifo")

	resp := s.do(t, http.MethodPut, "/api/items/"+item.ID+"/thresholds", "operator", map[string]any{
		"min_stock_level": 0, "reorder_point": 0, "max_stock_level": 10,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decode[dto.ItemResponse](t, resp)
	assert.True(t, updated.Alerts.OutOfStock)

	resp = s.do(t, http.MethodPost, "/api/items/"+item.ID+"/archive", "admin", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	archived := decode[dto.ItemResponse](t, resp)
	assert.Equal(t, "archived", archived.Status)

	resp = s.do(t, http.MethodPost, "/api/items/"+item.ID+"/archive", "admin", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INVALID_STATE_TRANSITION", decode[dto.ErrorResponse](t, resp).Code)

	resp = s.do(t, http.MethodGet, "/api/items/"+item.ID, "viewer", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode, "archivado sigue legible")
	resp.Body.Close()
}

func TestServer_HealthYMetrics(t *testing.T) {
	s := newTestServer(t)
	resp := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = s.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = s.do(t, http.MethodGet, "/api/items", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}
