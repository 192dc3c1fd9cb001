package logger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMiddleware_RequestID(t *testing.T) {
	require.NoError(t, InitLogger("debug", "test", "tenant-svc"))

	var scoped *zap.Logger
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scoped = FromContext(r.Context())
		w.WriteHeader(http.StatusCreated)
	}))

	t.Run("generated", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Len(t, rec.Header().Get(RequestIDHeader), 36)
		assert.NotSame(t, GetLogger(), scoped)
	})

	t.Run("propagated", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/health", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
	})
}

func TestFromContext_FallsBackToGlobal(t *testing.T) {
	assert.Same(t, GetLogger(), FromContext(context.Background()))
}
