package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/tipsgolbr/tipsgol/internal/migrations"
	"github.com/tipsgolbr/tipsgol/internal/models"
)

// setupTestDatabase starts PostgreSQL in a container and migrates it.
func setupTestDatabase(t *testing.T) *Storage {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start container")

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	var storage *Storage
	for range 10 {
		storage, err = New(dsn)
		if err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	require.NoError(t, err, "failed to create storage after retries")

	root, err := filepath.Abs("../..")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(storage.DB, filepath.Join(root, "migrations")))

	t.Cleanup(func() {
		_ = storage.Close()
		_ = pgContainer.Terminate(ctx)
	})
	return storage
}

type testDataFactory struct {
	storage *Storage
}

func (f *testDataFactory) createUser(t *testing.T, username string) *models.User {
	t.Helper()
	ctx := context.Background()
	uid, err := f.storage.CreateUser(ctx, models.User{
		Email:        username + "@example.com",
		Username:     username,
		PasswordHash: "hash",
		Role:         models.RoleUser,
	})
	require.NoError(t, err)
	u, err := f.storage.GetUser(ctx, uid)
	require.NoError(t, err)
	return u
}

func (f *testDataFactory) createTip(t *testing.T, method models.Method, status models.Status,
	stake, profit, loss string, access models.AccessLevel, matchDate time.Time) int64 {
	t.Helper()
	ctx := context.Background()
	id, err := f.storage.CreateTip(ctx, models.Tip{
		MatchTitle:  "Flamengo x Palmeiras",
		League:      "Brasileirão",
		MatchDate:   matchDate,
		Method:      method,
		Odds:        decimal.RequireFromString("1.80"),
		Stake:       decimal.RequireFromString(stake),
		Status:      models.StatusPending,
		AccessLevel: access,
		IsActive:    true,
	})
	require.NoError(t, err)
	if status != models.StatusPending {
		require.NoError(t, f.storage.SettleTip(ctx, id, status,
			decimal.RequireFromString(profit), decimal.RequireFromString(loss), nil))
	}
	return id
}
