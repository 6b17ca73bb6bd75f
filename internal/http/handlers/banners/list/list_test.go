package list

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/tipsgolbr/tipsgol/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Active(ctx context.Context) ([]models.Banner, error) {
	args := m.Called(ctx)
	banners, _ := args.Get(0).([]models.Banner)
	return banners, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestListHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name       string
		banners    []models.Banner
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "active banners",
			banners:    []models.Banner{{ID: 3, ImageURL: "https://cdn.example.com/b.png", LinkURL: "/planos", IsActive: true}},
			wantStatus: http.StatusOK,
			wantBody:   `"link_url":"/planos"`,
		},
		{name: "empty carousel", wantStatus: http.StatusOK, wantBody: `"data":[]`},
		{name: "failure", err: errors.New("db down"), wantStatus: http.StatusInternalServerError, wantBody: "could not list banners"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			svc.On("Active", mock.Anything).Return(tt.banners, tt.err).Once()
			w := httptest.NewRecorder()

			New(newNoopLogger(), svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/banners", nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
			svc.AssertExpectations(t)
		})
	}
}
