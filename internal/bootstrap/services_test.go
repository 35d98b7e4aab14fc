package bootstrap

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/educonnect/educonnect-web/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(t *testing.T) *config.AppConfig {
	t.Helper()
	cfg := &config.AppConfig{}
	cfg.HTTP.Addr = "127.0.0.1:0"
	cfg.Storage.Backend = config.StorageBackendMemory
	cfg.API.BaseURL = "https://api.example.com"
	cfg.Sanitize()
	return cfg
}

func testServices(t *testing.T, cfg *config.AppConfig) ServiceContainer {
	t.Helper()
	storage, err := OpenStorage(context.Background(), cfg, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, storage.Close()) })

	services, err := NewServices(&ServiceDeps{Config: cfg, Storage: storage, Logger: testLogger()})
	require.NoError(t, err)
	return services
}

func TestOpenStorage_Memory(t *testing.T) {
	cfg := testConfig(t)
	storage, err := OpenStorage(context.Background(), cfg, testLogger())
	require.NoError(t, err)

	assert.Equal(t, config.StorageBackendMemory, storage.Backend)
	assert.Nil(t, storage.Sweeper)
	require.NoError(t, storage.Devices.Ping(context.Background()))
	assert.NoError(t, storage.Close())
}

func TestOpenStorage_RequiresConfig(t *testing.T) {
	_, err := OpenStorage(context.Background(), nil, nil)
	require.Error(t, err)
}

func TestStorage_CloseNil(t *testing.T) {
	var s *Storage
	assert.NoError(t, s.Close())
	assert.Nil(t, s.sweeper())
}

func TestNewServices(t *testing.T) {
	t.Run("requires config and storage", func(t *testing.T) {
		_, err := NewServices(nil)
		require.Error(t, err)
		_, err = NewServices(&ServiceDeps{Config: testConfig(t)})
		require.Error(t, err)
	})

	t.Run("rejects an invalid api url", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.API.BaseURL = "ftp://api.example.com"
		storage, err := OpenStorage(context.Background(), cfg, testLogger())
		require.NoError(t, err)

		_, err = NewServices(&ServiceDeps{Config: cfg, Storage: storage})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "api client")
	})

	t.Run("wires metrics", func(t *testing.T) {
		cfg := testConfig(t)
		storage, err := OpenStorage(context.Background(), cfg, testLogger())
		require.NoError(t, err)
		metrics := NewMetricsClient(config.MetricsConfig{Prefix: "test"}, testLogger())

		services, err := NewServices(&ServiceDeps{Config: cfg, Storage: storage, Metrics: metrics, Logger: testLogger()})
		require.NoError(t, err)
		assert.NotNil(t, services.Auth)
		assert.NotNil(t, services.API)
		assert.Same(t, metrics, services.Metrics)
	})
}

func TestNewHTTPServer_ServesHealthAndPages(t *testing.T) {
	cfg := testConfig(t)
	services := testServices(t, cfg)

	server, err := NewHTTPServer(&HTTPServerConfig{Config: cfg, Services: services, Logger: testLogger()})
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:0", server.Addr)
	assert.Equal(t, 10*time.Second, server.ReadHeaderTimeout)

	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/about", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "About EduConnect")

	rec = httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/css/app.css", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNewHTTPServer_RequiresServices(t *testing.T) {
	_, err := NewHTTPServer(nil)
	require.Error(t, err)
	_, err = NewHTTPServer(&HTTPServerConfig{Config: testConfig(t)})
	require.Error(t, err)
}

func TestNewServer_DefaultsAddr(t *testing.T) {
	assert.Equal(t, ":8080", newServer(http.NotFoundHandler(), "").Addr)
}

func TestShutdownHTTPServer_NilServer(t *testing.T) {
	assert.NoError(t, ShutdownHTTPServer(ShutdownConfig{}))
}

func TestRunServicesWithShutdown_StopsOnCancel(t *testing.T) {
	cfg := testConfig(t)
	services := testServices(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- RunServicesWithShutdown(ctx, &ServiceOrchestrationConfig{
			Config:   cfg,
			Services: services,
			Logger:   testLogger(),
		})
	}()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("services did not stop after cancellation")
	}
}

func TestRunServicesWithShutdown_RequiresConfig(t *testing.T) {
	require.Error(t, RunServicesWithShutdown(context.Background(), nil))
}
