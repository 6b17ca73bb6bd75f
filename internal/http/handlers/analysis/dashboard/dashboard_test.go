package dashboard

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/tipsgolbr/tipsgol/internal/lib/settlement"
	"github.com/tipsgolbr/tipsgol/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Dashboard(ctx context.Context) (settlement.Result, error) {
	args := m.Called(ctx)
	return args.Get(0).(settlement.Result), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestDashboardHandler_ServeHTTP(t *testing.T) {
	result := settlement.Result{
		Methods: []settlement.MethodSummary{{
			Method:     models.MethodLay0x1,
			MethodName: "LAY 0x1",
			TotalStake: decimal.NewFromInt(150),
			NetProfit:  decimal.NewFromInt(30),
			Bets:       2, Wins: 1, Losses: 1,
			Yield: decimal.NewFromInt(20),
		}},
		TotalStake: decimal.NewFromInt(150),
		NetProfit:  decimal.NewFromInt(30),
	}

	t.Run("ok", func(t *testing.T) {
		svc := new(ServiceMock)
		svc.On("Dashboard", mock.Anything).Return(result, nil).Once()
		w := httptest.NewRecorder()

		New(newNoopLogger(), svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/analysis/dashboard", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"method_code":"LAY0X1"`)
		assert.Contains(t, w.Body.String(), `"yield_percent":"20"`)
		svc.AssertExpectations(t)
	})

	t.Run("failure", func(t *testing.T) {
		svc := new(ServiceMock)
		svc.On("Dashboard", mock.Anything).Return(settlement.Result{}, errors.New("db down")).Once()
		w := httptest.NewRecorder()

		New(newNoopLogger(), svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/analysis/dashboard", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
