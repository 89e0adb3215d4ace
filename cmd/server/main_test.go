package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/assetledger/internal/infrastructure/config"
)

func memoryConfig() *config.Config {
	return &config.Config{
		StorageBackend: config.BackendMemory,
		DefaultAsset:   "GEM",
		RepairInterval: time.Second,
		IdempotencyTTL: time.Hour,
		RateLimitRPS:   0,
	}
}

func TestBuildApp_MemoryBackendServesLedger(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := buildApp(context.Background(), memoryConfig(), zerolog.Nop(), reg)
	require.NoError(t, err)
	defer a.close()

	assert.Nil(t, a.rateLimiter)
	require.NotNil(t, a.worker)

	post := func(path, body string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		a.handler.ServeHTTP(rec, req)
		return rec
	}

	rec := post("/api/v1/init", `{"asset":"GEM","uid":"alice"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = post("/api/v1/fund", `{"asset":"GEM","to":"alice","amount":25}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = httptest.NewRecorder()
	a.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/balance?asset=GEM&uid=alice&account=ASSET", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total":"25"`)

	rec = httptest.NewRecorder()
	a.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	a.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "assetledger_operations_total")
}

func TestBuildApp_EnablesRateLimiter(t *testing.T) {
	cfg := memoryConfig()
	cfg.RateLimitRPS = 5
	cfg.RateLimitBurst = 10

	a, err := buildApp(context.Background(), cfg, zerolog.Nop(), prometheus.NewRegistry())
	require.NoError(t, err)
	defer a.close()

	assert.NotNil(t, a.rateLimiter)
}

func TestBuildApp_UnreachableRedisFails(t *testing.T) {
	cfg := memoryConfig()
	cfg.RedisURL = "redis://127.0.0.1:1/0"

	_, err := buildApp(context.Background(), cfg, zerolog.Nop(), prometheus.NewRegistry())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect to redis")
}

func TestBuildApp_InvalidDatabaseURLFails(t *testing.T) {
	cfg := memoryConfig()
	cfg.StorageBackend = config.BackendPostgres
	cfg.RunMigrations = false
	cfg.DatabaseURL = "not-a-url"

	_, err := buildApp(context.Background(), cfg, zerolog.Nop(), prometheus.NewRegistry())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect to postgres")
}
