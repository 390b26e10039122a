package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/auth"
	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/internal/handlers"
	"storefront/internal/middleware"
	"storefront/internal/repositories"
	"storefront/internal/services"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	os.Exit(m.Run())
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	v := viper.New()
	config.SetDefaults(v)
	v.Set("ADMIN_TOKEN", "main-test-key")
	v.Set("DATABASE_DSN", memoryDSN)
	cfg, err := config.FromViper(v)
	require.NoError(t, err)
	return cfg
}

func buildApp(t *testing.T, dsn string) *fiber.App {
	t.Helper()
	ctx := context.Background()
	cfg := testConfig(t)

	repo, connector, err := openStore(ctx, dsn)
	require.NoError(t, err)
	checks := map[string]handlers.Pinger{}
	if connector != nil {
		t.Cleanup(func() { _ = connector.Disconnect() })
		checks["database"] = connector
	}
	_, err = repositories.Seed(ctx, repo, repositories.SampleProducts())
	require.NoError(t, err)

	pages, err := openPageCache(ctx, cfg.Redis)
	require.NoError(t, err)
	checks["cache"] = pages

	checker, err := auth.FromConfig(cfg.Admin)
	require.NoError(t, err)

	return newApp(cfg,
		services.NewProductService(repo, pages, nil),
		services.NewInsightService(repo, pages),
		checker,
		handlers.NewHealthHandler(checks),
	)
}

func TestOpenStoreMemory(t *testing.T) {
	repo, connector, err := openStore(context.Background(), memoryDSN)
	require.NoError(t, err)
	assert.Nil(t, connector)
	assert.IsType(t, &repositories.MockProductRepository{}, repo)
}

func TestOpenPageCacheDefaultsToMemory(t *testing.T) {
	pages, err := openPageCache(context.Background(), config.RedisConfig{})
	require.NoError(t, err)
	assert.IsType(t, &cache.MemoryPageCache{}, pages)
}

func TestHealthCheck(t *testing.T) {
	for _, dsn := range []string{memoryDSN, "file::memory:"} {
		t.Run(dsn, func(t *testing.T) {
			app := buildApp(t, dsn)

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.NotEmpty(t, resp.Header.Get(middleware.RequestIDHeader))

			var body map[string]any
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, "healthy", body["status"])
		})
	}
}

func TestRoutesAndErrorEnvelope(t *testing.T) {
	app := buildApp(t, memoryDSN)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/products", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/unknown", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, false, body["success"])

	req := httptest.NewRequest(http.MethodDelete, "/api/products/the-art-of-code", nil)
	req.Header.Set(middleware.AdminKeyHeader, "main-test-key")
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAppAgainstPostgres(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if !strings.HasPrefix(dsn, "postgres") && !strings.Contains(dsn, "host=") {
		t.Skip("TEST_DATABASE_DSN not set to a PostgreSQL DSN")
	}
	app := buildApp(t, dsn)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/stats", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
