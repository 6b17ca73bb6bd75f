package middlewarectx_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/tipsgolbr/tipsgol/internal/http/middlewarectx"
	"github.com/tipsgolbr/tipsgol/internal/lib/jwt"
)

type TokenParserMock struct {
	mock.Mock
}

func (m *TokenParserMock) ParseToken(tokenStr string) (*jwt.CustomClaims, error) {
	args := m.Called(tokenStr)
	claims, _ := args.Get(0).(*jwt.CustomClaims)
	return claims, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestJWTMiddleware(t *testing.T) {
	logger := newNoopLogger()

	tests := []struct {
		name           string
		authHeader     string
		claims         *jwt.CustomClaims
		parseErr       error
		wantStatusCode int
		wantCalled     bool
	}{
		{
			name:           "missing Authorization header",
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "invalid Authorization header prefix",
			authHeader:     "Basic sometoken",
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "token rejected",
			authHeader:     "Bearer expired",
			parseErr:       errors.New("token is expired"),
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "valid token",
			authHeader:     "Bearer validtoken",
			claims:         &jwt.CustomClaims{Username: "testuser", Role: "user", UserUID: "uid-1"},
			wantStatusCode: http.StatusOK,
			wantCalled:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := new(TokenParserMock)
			if tt.claims != nil || tt.parseErr != nil {
				parser.On("ParseToken", strings.TrimPrefix(tt.authHeader, "Bearer ")).
					Return(tt.claims, tt.parseErr).Once()
			}

			handlerCalled := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true
				assert.Equal(t, "testuser", r.Context().Value(middlewarectx.User))
				assert.Equal(t, "user", r.Context().Value(middlewarectx.Role))
				assert.Equal(t, "uid-1", r.Context().Value(middlewarectx.UserUID))
				username, ok := middlewarectx.Username(r.Context())
				assert.True(t, ok)
				assert.Equal(t, "testuser", username)
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/somepath", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()

			middlewarectx.JWTMiddleware(parser, logger)(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			assert.Equal(t, tt.wantCalled, handlerCalled)
			parser.AssertExpectations(t)
		})
	}
}

func TestJWTMiddleware_RealToken(t *testing.T) {
	maker := jwt.NewJWTMaker("secret", time.Hour)
	token, err := maker.GenerateToken("admin", "admin", "uid-9")
	assert.NoError(t, err)

	var gotRole any
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRole = r.Context().Value(middlewarectx.Role)
	})
	h := middlewarectx.JWTMiddleware(maker, newNoopLogger())(middlewarectx.RequireAdmin(newNoopLogger())(next))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/tips", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin", gotRole)
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name       string
		role       any
		wantStatus int
	}{
		{name: "admin", role: "admin", wantStatus: http.StatusOK},
		{name: "regular user", role: "user", wantStatus: http.StatusForbidden},
		{name: "no role", role: nil, wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.role != nil {
				req = req.WithContext(context.WithValue(req.Context(), middlewarectx.Role, tt.role))
			}
			rec := httptest.NewRecorder()

			middlewarectx.RequireAdmin(newNoopLogger())(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
