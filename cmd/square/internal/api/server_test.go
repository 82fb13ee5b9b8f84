package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hasirciogluhq/xsquare/cmd/square/internal/metrics"
)

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthServerRoutes(t *testing.T) {
	hs := NewHealthServer("127.0.0.1:0")
	h := hs.Handler()

	rec := get(h, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = get(h, "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	hs.SetReady(true)
	rec = get(h, "/ready")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ready", rec.Body.String())
}

func TestHealthServerMetrics(t *testing.T) {
	metrics.Register()
	metrics.Replies.WithLabelValues("ok").Inc()

	rec := get(NewHealthServer("127.0.0.1:0").Handler(), "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "square_replies_total")
}
