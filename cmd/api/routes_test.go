package main

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaxiero/service/internal/metrics"
)

// newTestRouter wires zero-value handlers; only routes that never reach an
// entity handler may be exercised.
func newTestRouter(t *testing.T, localRoot string) http.Handler {
	t.Helper()
	reg := prometheus.NewRegistry()
	observer, err := metrics.NewHTTPObserver(reg)
	require.NoError(t, err)
	return newRouter(routerConfig{
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		http:      observer,
		gatherer:  reg,
		jwtSecret: "test-secret",
		localRoot: localRoot,
	}, handlers{})
}

func get(h http.Handler, path string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_Health(t *testing.T) {
	rec := get(newTestRouter(t, ""), "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRouter_AdminRoutesRequireToken(t *testing.T) {
	r := newTestRouter(t, "")
	for _, path := range []string{
		"/aaxiero/admin/categories",
		"/aaxiero/admin/subcategories",
		"/aaxiero/admin/gallery",
		"/aaxiero/admin/project",
		"/aaxiero/admin/icons",
		"/aaxiero/admin/service",
	} {
		assert.Equal(t, http.StatusUnauthorized, get(r, path).Code, path)
		assert.Equal(t, http.StatusUnauthorized, get(r, path, "Authorization", "Bearer nope").Code, path)
	}
}

func TestRouter_MetricsCountRequests(t *testing.T) {
	r := newTestRouter(t, "")
	get(r, "/health")
	get(r, "/aaxiero/admin/icons")

	rec := get(r, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `aaxiero_http_requests_total{method="GET",route="/health",status="200"} 1`)
	assert.Contains(t, body, `status="401"`)
}

func TestRouter_ServesLocalUploads(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "gallery"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "gallery", "a.txt"), []byte("hello"), 0o644))

	rec := get(newTestRouter(t, root), "/uploads/gallery/a.txt")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello", rec.Body.String())

	assert.Equal(t, http.StatusNotFound, get(newTestRouter(t, ""), "/uploads/gallery/a.txt").Code)
}

func TestRouter_SwaggerDoc(t *testing.T) {
	rec := get(newTestRouter(t, ""), "/swagger/doc.json")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"/admin/project/{id}/images/{slot}"`)
}
