package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tipsgolbr/tipsgol/internal/models"
)

// UpsertSubscription creates the subscription of a user or updates its active flag.
func (s *Storage) UpsertSubscription(ctx context.Context, userUID string, active bool) (models.Subscription, error) {
	const op = "storage.UpsertSubscription"
	if err := checkCtx(ctx, op); err != nil {
		return models.Subscription{}, err
	}

	query := `INSERT INTO subscriptions (user_uid, is_active)
			  VALUES ($1, $2)
			  ON CONFLICT (user_uid) DO UPDATE
			  SET is_active = EXCLUDED.is_active, updated_at = NOW()
			  RETURNING id, user_uid, is_active, start_date, updated_at`
	var sub models.Subscription
	if err := s.conn(ctx).QueryRowContext(ctx, query, userUID, active).Scan(
		&sub.ID, &sub.UserUID, &sub.IsActive, &sub.StartDate, &sub.UpdatedAt); err != nil {
		return models.Subscription{}, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

// GetSubscriptionByUser returns the subscription of a user.
func (s *Storage) GetSubscriptionByUser(ctx context.Context, userUID string) (*models.Subscription, error) {
	const op = "storage.GetSubscriptionByUser"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT id, user_uid, is_active, start_date, updated_at
			  FROM subscriptions
			  WHERE user_uid = $1`
	var sub models.Subscription
	err := s.conn(ctx).QueryRowContext(ctx, query, userUID).Scan(
		&sub.ID, &sub.UserUID, &sub.IsActive, &sub.StartDate, &sub.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrSubscriptionNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &sub, nil
}
