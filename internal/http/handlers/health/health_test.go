package health

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) PingContext(ctx context.Context) error { return f(ctx) }

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestHealthHandler(t *testing.T) {
	t.Run("up", func(t *testing.T) {
		w := httptest.NewRecorder()
		New(newNoopLogger(), pingerFunc(func(context.Context) error { return nil })).
			ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"ok"`)
	})

	t.Run("database down", func(t *testing.T) {
		w := httptest.NewRecorder()
		New(newNoopLogger(), pingerFunc(func(context.Context) error { return errors.New("connection refused") })).
			ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}
