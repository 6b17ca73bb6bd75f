package storage

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tipsgolbr/tipsgol/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestStorage_Users(t *testing.T) {
	storage := setupTestDatabase(t)
	factory := &testDataFactory{storage: storage}
	ctx := context.Background()

	u := factory.createUser(t, "ana")
	assert.False(t, u.IsPremium)
	assert.Nil(t, u.PremiumExpiration)

	_, err := storage.CreateUser(ctx, models.User{Email: "other@example.com", Username: "ana", PasswordHash: "x", Role: "user"})
	assert.ErrorIs(t, err, ErrUserExists)

	_, err = storage.GetUserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)

	exp := date(2025, time.June, 30)
	require.NoError(t, storage.UpdatePremium(ctx, u.UUID, true, &exp))

	got, err := storage.GetUserByUsername(ctx, "ana")
	require.NoError(t, err)
	assert.True(t, got.IsPremium)
	require.NotNil(t, got.PremiumExpiration)
	assert.Equal(t, exp, *got.PremiumExpiration)

	require.NoError(t, storage.UpdatePremium(ctx, u.UUID, false, nil))
	got, err = storage.GetUser(ctx, u.UUID)
	require.NoError(t, err)
	assert.False(t, got.IsPremium)
	assert.Nil(t, got.PremiumExpiration)

	err = storage.UpdatePremium(ctx, "00000000-0000-0000-0000-000000000000", true, &exp)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestStorage_FindStalePremiumAndExpiring(t *testing.T) {
	storage := setupTestDatabase(t)
	factory := &testDataFactory{storage: storage}
	ctx := context.Background()
	today := date(2025, time.May, 20)

	stale := factory.createUser(t, "stale")
	fresh := factory.createUser(t, "fresh")
	ending := factory.createUser(t, "ending")
	factory.createUser(t, "free")

	yesterday := today.AddDate(0, 0, -1)
	tomorrow := today.AddDate(0, 0, 1)
	nextMonth := today.AddDate(0, 1, 0)
	require.NoError(t, storage.UpdatePremium(ctx, stale.UUID, true, &yesterday))
	require.NoError(t, storage.UpdatePremium(ctx, fresh.UUID, true, &nextMonth))
	require.NoError(t, storage.UpdatePremium(ctx, ending.UUID, true, &tomorrow))

	users, err := storage.FindStalePremium(ctx, today)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "stale", users[0].Username)

	notices, err := storage.FindPremiumExpiringOn(ctx, tomorrow)
	require.NoError(t, err)
	require.Len(t, notices, 1)
	assert.Equal(t, "ending", notices[0].Username)
	assert.Equal(t, "ending@example.com", notices[0].Email)
	assert.Equal(t, tomorrow, notices[0].ExpirationDate)
}

func TestStorage_UpsertSubscription(t *testing.T) {
	storage := setupTestDatabase(t)
	factory := &testDataFactory{storage: storage}
	ctx := context.Background()
	u := factory.createUser(t, "bruno")

	_, err := storage.GetSubscriptionByUser(ctx, u.UUID)
	assert.ErrorIs(t, err, ErrSubscriptionNotFound)

	first, err := storage.UpsertSubscription(ctx, u.UUID, true)
	require.NoError(t, err)
	assert.True(t, first.IsActive)

	second, err := storage.UpsertSubscription(ctx, u.UUID, false)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.False(t, second.IsActive)
	assert.Equal(t, first.StartDate, second.StartDate)

	got, err := storage.GetSubscriptionByUser(ctx, u.UUID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}

func TestStorage_WithinTxRollsBack(t *testing.T) {
	storage := setupTestDatabase(t)
	factory := &testDataFactory{storage: storage}
	ctx := context.Background()
	u := factory.createUser(t, "carla")
	exp := date(2030, time.January, 1)
	boom := errors.New("boom")

	err := storage.WithinTx(ctx, func(ctx context.Context) error {
		if err := storage.UpdatePremium(ctx, u.UUID, true, &exp); err != nil {
			return err
		}
		if _, err := storage.UpsertSubscription(ctx, u.UUID, true); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := storage.GetUser(ctx, u.UUID)
	require.NoError(t, err)
	assert.False(t, got.IsPremium)
	assert.Nil(t, got.PremiumExpiration)
	_, err = storage.GetSubscriptionByUser(ctx, u.UUID)
	assert.ErrorIs(t, err, ErrSubscriptionNotFound)
}

func TestStorage_ForUpdateSerialisesWriters(t *testing.T) {
	storage := setupTestDatabase(t)
	factory := &testDataFactory{storage: storage}
	ctx := context.Background()
	factory.createUser(t, "duda")
	base := date(2030, time.January, 1)

	var wg sync.WaitGroup
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := storage.WithinTx(ctx, func(ctx context.Context) error {
				u, err := storage.GetUserByUsernameForUpdate(ctx, "duda")
				if err != nil {
					return err
				}
				next := base
				if u.PremiumExpiration != nil {
					next = *u.PremiumExpiration
				}
				next = next.AddDate(0, 0, 30)
				return storage.UpdatePremium(ctx, u.UUID, true, &next)
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := storage.GetUserByUsername(ctx, "duda")
	require.NoError(t, err)
	require.NotNil(t, got.PremiumExpiration)
	assert.Equal(t, base.AddDate(0, 0, 150), *got.PremiumExpiration)
}

func TestStorage_Tips(t *testing.T) {
	storage := setupTestDatabase(t)
	factory := &testDataFactory{storage: storage}
	ctx := context.Background()
	match := time.Date(2025, time.March, 2, 19, 0, 0, 0, time.UTC)

	winID := factory.createTip(t, models.MethodLay0x1, models.StatusWin, "100", "80", "0", models.AccessFree, match)
	factory.createTip(t, models.MethodLay0x1, models.StatusLoss, "50", "0", "50", models.AccessPremium, match.Add(time.Hour))
	factory.createTip(t, models.MethodBackC, models.StatusVoid, "30", "0", "0", models.AccessFree, match)
	pendingID := factory.createTip(t, models.MethodBackC, models.StatusPending, "30", "0", "0", models.AccessFree, match.AddDate(0, 0, 1))

	settled, err := storage.ListSettledTips(ctx)
	require.NoError(t, err)
	require.Len(t, settled, 2)
	assert.True(t, settled[0].ProfitAmount.Equal(decimal.NewFromInt(80)))
	assert.Equal(t, models.StatusLoss, settled[1].Status)

	free, err := storage.ListVisibleTips(ctx, models.AccessFree, 10)
	require.NoError(t, err)
	assert.Len(t, free, 3)
	assert.Equal(t, pendingID, free[0].ID)

	require.NoError(t, storage.SetTipActive(ctx, winID, false))
	free, err = storage.ListVisibleTips(ctx, models.AccessFree, 10)
	require.NoError(t, err)
	assert.Len(t, free, 2)

	settled, err = storage.ListSettledTips(ctx)
	require.NoError(t, err)
	assert.Len(t, settled, 2, "hidden tips stay in analytics")

	result := "2x0"
	require.NoError(t, storage.SettleTip(ctx, pendingID, models.StatusWin,
		decimal.RequireFromString("24.50"), decimal.Zero, &result))
	tip, err := storage.GetTip(ctx, pendingID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusWin, tip.Status)
	require.NotNil(t, tip.FinalResult)
	assert.Equal(t, "2x0", *tip.FinalResult)

	_, err = storage.GetTip(ctx, 9999)
	assert.ErrorIs(t, err, ErrTipNotFound)
	assert.ErrorIs(t, storage.SetTipActive(ctx, 9999, false), ErrTipNotFound)
}

func TestStorage_NewsAndBanners(t *testing.T) {
	storage := setupTestDatabase(t)
	ctx := context.Background()
	now := time.Now().UTC()

	id, err := storage.CreateNews(ctx, models.News{Title: "Gol de placa", SourceURL: "https://ge.globo.com/1", PublishedAt: now})
	require.NoError(t, err)
	assert.NotZero(t, id)

	id, err = storage.CreateNews(ctx, models.News{Title: "Gol de placa", SourceURL: "https://ge.globo.com/2", PublishedAt: now})
	require.NoError(t, err)
	assert.Zero(t, id)

	_, err = storage.CreateNews(ctx, models.News{Title: "Antiga", SourceURL: "https://ge.globo.com/3", PublishedAt: now.AddDate(0, 0, -10)})
	require.NoError(t, err)

	exists, err := storage.NewsExists(ctx, "Gol de placa")
	require.NoError(t, err)
	assert.True(t, exists)

	latest, err := storage.LatestNews(ctx, 12)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, "Gol de placa", latest[0].Title)

	removed, err := storage.DeleteNewsBefore(ctx, now.AddDate(0, 0, -7))
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	title := "Bônus"
	_, err = storage.CreateBanner(ctx, models.Banner{Title: &title, ImageURL: "https://cdn/b.png", LinkURL: "https://casa", IsActive: true, DisplayOrder: 2})
	require.NoError(t, err)
	_, err = storage.CreateBanner(ctx, models.Banner{ImageURL: "https://cdn/a.png", LinkURL: "https://casa", IsActive: true, DisplayOrder: 1})
	require.NoError(t, err)
	_, err = storage.CreateBanner(ctx, models.Banner{ImageURL: "https://cdn/off.png", LinkURL: "https://casa", IsActive: false})
	require.NoError(t, err)

	banners, err := storage.ActiveBanners(ctx)
	require.NoError(t, err)
	require.Len(t, banners, 2)
	assert.Equal(t, 1, banners[0].DisplayOrder)
	assert.Nil(t, banners[0].Title)
	require.NotNil(t, banners[1].Title)
	assert.Equal(t, "Bônus", *banners[1].Title)
}

func TestStorage_RecordTransaction(t *testing.T) {
	storage := setupTestDatabase(t)
	ctx := context.Background()

	first, err := storage.RecordTransaction(ctx, "TX-1", "ana", 90)
	require.NoError(t, err)
	assert.True(t, first)

	again, err := storage.RecordTransaction(ctx, "TX-1", "ana", 90)
	require.NoError(t, err)
	assert.False(t, again)

	err = storage.WithinTx(ctx, func(ctx context.Context) error {
		applied, err := storage.RecordTransaction(ctx, "TX-2", "ana", 30)
		require.NoError(t, err)
		require.True(t, applied)
		return errors.New("confirmation failed")
	})
	require.Error(t, err)

	retried, err := storage.RecordTransaction(ctx, "TX-2", "ana", 30)
	require.NoError(t, err)
	assert.True(t, retried, "rolled back code must be applicable again")
}
