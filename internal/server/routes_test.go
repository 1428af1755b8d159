package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"planets-api/internal/middleware"
	"planets-api/internal/planet"
	"planets-api/internal/shared/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, rateLimit config.RateLimitConfig) *httptest.Server {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := planet.NewMemoryStore(logger)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	cfg := &config.Config{
		Storage:   config.StorageConfig{Driver: config.StorageDriverMemory},
		Frontend:  config.FrontendConfig{URL: "http://localhost:3000"},
		RateLimit: rateLimit,
	}
	limiter := middleware.NewLocalLimiter(ctx, rateLimit.RequestsPerSecond, rateLimit.BurstSize)

	routes := NewRoutes(cfg, planet.NewService(store, logger), store, limiter, logger)
	srv := httptest.NewServer(routes.Setup())
	t.Cleanup(srv.Close)
	return srv
}

func TestRoutesPlanetLifecycle(t *testing.T) {
	srv := newTestServer(t, config.RateLimitConfig{Enabled: false, RequestsPerSecond: 1, BurstSize: 1})

	resp, err := http.Post(srv.URL+"/planets", "application/json",
		strings.NewReader(`{"name": "Mars", "description": "red", "moon": 2}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(middleware.RequestIDHeader))

	var created planet.Planet
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.Equal(t, 1, created.ID)

	get, err := http.Get(srv.URL + "/planets/1")
	require.NoError(t, err)
	defer get.Body.Close()
	assert.Equal(t, http.StatusOK, get.StatusCode)

	health, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer health.Body.Close()
	assert.Equal(t, http.StatusOK, health.StatusCode)
}

func TestRoutesCORSPreflight(t *testing.T) {
	srv := newTestServer(t, config.RateLimitConfig{Enabled: false, RequestsPerSecond: 1, BurstSize: 1})

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/planets", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestRoutesRateLimited(t *testing.T) {
	srv := newTestServer(t, config.RateLimitConfig{Enabled: true, RequestsPerSecond: 0.001, BurstSize: 1})

	first, err := http.Get(srv.URL + "/planets")
	require.NoError(t, err)
	first.Body.Close()
	assert.Equal(t, http.StatusOK, first.StatusCode)

	second, err := http.Get(srv.URL + "/planets")
	require.NoError(t, err)
	defer second.Body.Close()

	assert.Equal(t, http.StatusTooManyRequests, second.StatusCode)
	assert.Equal(t, "application/json", second.Header.Get("Content-Type"))
}

func TestRoutesUnroutedRequestsAnswerJSON(t *testing.T) {
	srv := newTestServer(t, config.RateLimitConfig{Enabled: false, RequestsPerSecond: 1, BurstSize: 1})

	tests := []struct {
		name      string
		method    string
		path      string
		wantCode  int
		wantBody  string
		wantAllow string
	}{
		{"patch planet", http.MethodPatch, "/planets/1", http.StatusMethodNotAllowed, `{"message": "method PATCH not allowed"}`, "GET, PUT, DELETE"},
		{"delete collection", http.MethodDelete, "/planets", http.StatusMethodNotAllowed, `{"message": "method DELETE not allowed"}`, "GET, POST"},
		{"post health", http.MethodPost, "/health", http.StatusMethodNotAllowed, `{"message": "method POST not allowed"}`, "GET"},
		{"unknown path", http.MethodGet, "/moons", http.StatusNotFound, `{"message": "/moons not found"}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, srv.URL+tt.path, nil)
			require.NoError(t, err)

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)

			assert.Equal(t, tt.wantCode, resp.StatusCode)
			assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
			assert.Equal(t, tt.wantAllow, resp.Header.Get("Allow"))
			assert.JSONEq(t, tt.wantBody, string(body))
		})
	}
}
