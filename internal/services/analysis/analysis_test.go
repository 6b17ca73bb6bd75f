package analysis_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tipsgolbr/tipsgol/internal/cache"
	"github.com/tipsgolbr/tipsgol/internal/models"
	"github.com/tipsgolbr/tipsgol/internal/services/analysis"
)

type RepoMock struct {
	mock.Mock
}

func (m *RepoMock) ListSettledTips(ctx context.Context) ([]models.Tip, error) {
	args := m.Called(ctx)
	tips, _ := args.Get(0).([]models.Tip)
	return tips, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func newCache(t *testing.T) *cache.Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	return &cache.Cache{Db: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
}

func tip(status models.Status, stake, profit, loss string, date time.Time) models.Tip {
	return models.Tip{
		Method:       models.MethodLay0x1,
		MatchDate:    date,
		Status:       status,
		Stake:        decimal.RequireFromString(stake),
		ProfitAmount: decimal.RequireFromString(profit),
		LossAmount:   decimal.RequireFromString(loss),
	}
}

func TestService_Dashboard_ComputesAndCaches(t *testing.T) {
	repo := new(RepoMock)
	c := newCache(t)
	svc := analysis.New(repo, c, newNoopLogger(), time.UTC, time.Minute)

	repo.On("ListSettledTips", mock.Anything).Return([]models.Tip{
		tip(models.StatusWin, "100", "80", "0", time.Date(2025, 1, 5, 18, 0, 0, 0, time.UTC)),
		tip(models.StatusLoss, "50", "0", "50", time.Date(2025, 1, 9, 18, 0, 0, 0, time.UTC)),
	}, nil).Once()

	first, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	second, err := svc.Dashboard(context.Background())
	require.NoError(t, err)

	require.Len(t, first.Methods, 1)
	assert.True(t, first.NetProfit.Equal(decimal.NewFromInt(30)))
	assert.True(t, first.Methods[0].Yield.Equal(decimal.NewFromInt(20)))
	assert.True(t, second.NetProfit.Equal(first.NetProfit))
	assert.Equal(t, first.Methods[0].Bets, second.Methods[0].Bets)
	repo.AssertNumberOfCalls(t, "ListSettledTips", 1)

	require.NoError(t, c.Invalidate(context.Background(), cache.KeyDashboard))
	repo.On("ListSettledTips", mock.Anything).Return([]models.Tip{}, nil).Once()
	third, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Empty(t, third.Methods)
}

func TestService_Dashboard_GroupsMonthsInSiteTimezone(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)
	repo := new(RepoMock)
	svc := analysis.New(repo, newCache(t), newNoopLogger(), loc, time.Minute)

	// 01:30 UTC on Feb 1st is still January 31st in Sao Paulo.
	repo.On("ListSettledTips", mock.Anything).Return([]models.Tip{
		tip(models.StatusWin, "100", "10", "0", time.Date(2025, 2, 1, 1, 30, 0, 0, time.UTC)),
	}, nil).Once()

	res, err := svc.Dashboard(context.Background())

	require.NoError(t, err)
	require.Len(t, res.Monthly, 1)
	assert.Equal(t, time.January, res.Monthly[0].Month)
}

func TestService_Dashboard_RepositoryError(t *testing.T) {
	repo := new(RepoMock)
	svc := analysis.New(repo, newCache(t), newNoopLogger(), time.UTC, time.Minute)
	repo.On("ListSettledTips", mock.Anything).Return(nil, errors.New("db down")).Once()

	_, err := svc.Dashboard(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "analysis.Dashboard")
}
