package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tipsgolbr/tipsgol/internal/config"
	"github.com/tipsgolbr/tipsgol/internal/metrics"
)

type ServicesMock struct {
	mock.Mock
}

func (m *ServicesMock) PublishExpiring(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *ServicesMock) SweepExpired(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *ServicesMock) Extract(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *ServicesMock) Purge(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestJobs_CountRuns(t *testing.T) {
	svc := new(ServicesMock)
	m := metrics.New(prometheus.NewRegistry())
	jobs := NewJobs(context.Background(), svc, svc, svc, m, newNoopLogger())

	svc.On("PublishExpiring", mock.Anything).Return(3, nil).Once()
	svc.On("SweepExpired", mock.Anything).Return(0, errors.New("db down")).Once()
	svc.On("Extract", mock.Anything).Return(5, nil).Once()
	svc.On("Purge", mock.Anything).Return(int64(2), nil).Once()

	jobs.PublishExpiring()
	jobs.SweepPremium()
	jobs.ExtractNews()
	jobs.PurgeNews()

	svc.AssertExpectations(t)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.JobRuns.WithLabelValues("premium_expiring", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.JobRuns.WithLabelValues("premium_sweep", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.JobRuns.WithLabelValues("news_extract", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.JobRuns.WithLabelValues("news_purge", "ok")))
}

func TestJobs_RunGetsDeadline(t *testing.T) {
	svc := new(ServicesMock)
	jobs := NewJobs(context.Background(), svc, svc, svc, nil, newNoopLogger())

	svc.On("SweepExpired", mock.MatchedBy(func(ctx context.Context) bool {
		_, ok := ctx.Deadline()
		return ok
	})).Return(1, nil).Once()

	jobs.SweepPremium()

	svc.AssertExpectations(t)
}

func TestSchedule(t *testing.T) {
	jobs := NewJobs(context.Background(), nil, nil, nil, nil, newNoopLogger())
	specs := config.Scheduler{
		NewsSpec:     "*/30 * * * *",
		PurgeSpec:    "15 3 * * *",
		SweepSpec:    "5 0 * * *",
		ExpiringSpec: "0 9 * * *",
	}

	c := cron.New()
	require.NoError(t, Schedule(c, specs, jobs))
	assert.Len(t, c.Entries(), 4)

	specs.PurgeSpec = "every night"
	err := Schedule(cron.New(), specs, jobs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "news_purge")
}
