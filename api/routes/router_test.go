package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/greencart/internal/cartsync"
	"github.com/angelmondragon/greencart/internal/persistence"
	"github.com/angelmondragon/greencart/internal/remote"
	"github.com/angelmondragon/greencart/internal/remote/remotetest"
	"github.com/angelmondragon/greencart/pkg/config"
	"github.com/angelmondragon/greencart/pkg/logger"
	"github.com/angelmondragon/greencart/pkg/metrics"
)

type bridge struct {
	handler http.Handler
	engine  *cartsync.Engine
	fake    *remotetest.Server
}

func newBridge(t *testing.T) *bridge {
	t.Helper()
	fake := remotetest.New()
	backend := httptest.NewServer(fake)
	t.Cleanup(backend.Close)

	conn := remote.NewSwitch(true)
	client, err := remote.NewClient(backend.URL, "guest-user", remote.WithConnectivity(conn), remote.WithTimeout(time.Second))
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	engine, err := cartsync.New(cartsync.Params{
		Store:        persistence.NewMemoryStore(),
		Remote:       client,
		Connectivity: conn,
		Metrics:      metrics.NewSyncMetrics(reg),
		UserID:       "guest-user",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = engine.Close() })

	cfg := &config.Config{App: config.AppConfig{Env: "dev", CORSOrigins: []string{"http://localhost:3000"}}}
	return &bridge{
		handler: NewRouter(cfg, logger.Nop(), engine, conn, reg, nil),
		engine:  engine,
		fake:    fake,
	}
}

func (b *bridge) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	resp := httptest.NewRecorder()
	b.handler.ServeHTTP(resp, req)
	return resp
}

func TestBridgeCartFlow(t *testing.T) {
	b := newBridge(t)

	resp := b.do(t, http.MethodPost, "/v1/cart/items",
		`{"productId":"mock-2","quantity":2,"product":{"name":"Organic Cotton T-Shirt","price":29.99,"carbonFootprint":5,"sustainabilityScore":95}}`)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.NotEmpty(t, resp.Header().Get("X-Request-Id"))

	b.engine.WaitIdle()
	assert.Equal(t, 2, b.fake.Quantity("guest-user", "mock-2"))

	resp = b.do(t, http.MethodPost, "/v1/cart/carbon-offset/toggle", "")
	require.Equal(t, http.StatusOK, resp.Code)
	b.engine.WaitIdle()

	resp = b.do(t, http.MethodPost, "/v1/cart/sync", "")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var synced struct {
		Data struct {
			TotalItems      int     `json:"totalItemCount"`
			CarbonOffset    bool    `json:"carbonOffset"`
			CarbonFootprint float64 `json:"carbonFootprint"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&synced))
	assert.Equal(t, 2, synced.Data.TotalItems)
	assert.True(t, synced.Data.CarbonOffset)
	assert.InDelta(t, 2.5, synced.Data.CarbonFootprint, 1e-9)

	resp = b.do(t, http.MethodPost, "/v1/checkout", "")
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	assert.True(t, b.engine.State().IsEmpty())
	assert.Equal(t, 2, b.fake.Purchases("mock-2"))
}

func TestBridgeOfflineCheckoutIsRefused(t *testing.T) {
	b := newBridge(t)

	resp := b.do(t, http.MethodPut, "/v1/connectivity", `{"online":false}`)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = b.do(t, http.MethodPost, "/v1/cart/items", `{"productId":"mock-4","product":{"name":"Recycled Paper Notebook","price":12.99,"carbonFootprint":3,"sustainabilityScore":84}}`)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = b.do(t, http.MethodPost, "/v1/checkout", "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
	assert.Contains(t, resp.Body.String(), "BACKEND_UNAVAILABLE")
	assert.Zero(t, b.fake.TotalCalls())

	resp = b.do(t, http.MethodGet, "/v1/cart", "")
	assert.Contains(t, resp.Body.String(), "Cannot checkout while offline")
}

func TestBridgeHealthAndMetrics(t *testing.T) {
	b := newBridge(t)

	resp := b.do(t, http.MethodGet, "/health/live", "")
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = b.do(t, http.MethodGet, "/health/ready", "")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"status":"available"`)

	b.fake.SetDown(true)
	_, err := b.engine.FetchCart(context.Background(), false)
	require.Error(t, err)

	resp = b.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, resp.Code)
	body := resp.Body.String()
	assert.Contains(t, body, "cart_gate_available 0")
	assert.Contains(t, body, `cart_remote_calls_total{operation="fetch",outcome="connectivity"} 1`)
}

func TestBridgeCORSPreflight(t *testing.T) {
	b := newBridge(t)
	req := httptest.NewRequest(http.MethodOptions, "/v1/cart/items", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp := httptest.NewRecorder()
	b.handler.ServeHTTP(resp, req)
	assert.Equal(t, "http://localhost:3000", resp.Header().Get("Access-Control-Allow-Origin"))
}
