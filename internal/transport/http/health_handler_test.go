package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shoplens/internal/dataset"
	"shoplens/internal/services"
)

func healthHandler(t *testing.T, ds *dataset.Dataset) *HealthHandler {
	t.Helper()
	logger := slog.Default()
	return NewHealthHandler(services.NewHealthService("test", t.TempDir(), ds, logger), logger)
}

func TestHealthCheck(t *testing.T) {
	h := healthHandler(t, handlerDataset())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.HealthCheck(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var status services.HealthStatus
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&status))
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, "test", status.Version)
}

func TestReadinessCheck(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		h := healthHandler(t, handlerDataset())

		req := httptest.NewRequest(http.MethodGet, "/ready", nil)
		rec := httptest.NewRecorder()
		h.ReadinessCheck(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("not ready", func(t *testing.T) {
		h := healthHandler(t, &dataset.Dataset{})

		req := httptest.NewRequest(http.MethodGet, "/ready", nil)
		rec := httptest.NewRecorder()
		h.ReadinessCheck(rec, req)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestLivenessCheck(t *testing.T) {
	h := healthHandler(t, handlerDataset())

	req := httptest.NewRequest(http.MethodGet, "/live", nil)
	rec := httptest.NewRecorder()
	h.LivenessCheck(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var status services.HealthStatus
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&status))
	assert.Equal(t, "alive", status.Status)
}

func TestVersion(t *testing.T) {
	h := healthHandler(t, handlerDataset())

	req := httptest.NewRequest(http.MethodGet, "/version", nil)
	rec := httptest.NewRecorder()
	h.Version(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var info map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&info))
	assert.Equal(t, "test", info["version"])
	assert.Contains(t, info, "go_version")
}

func TestHealthRoutes(t *testing.T) {
	h := healthHandler(t, handlerDataset())
	srv := httptest.NewServer(h.Routes())
	defer srv.Close()

	for _, path := range []string{"/", "/ready", "/live"} {
		resp, err := srv.Client().Get(srv.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}
