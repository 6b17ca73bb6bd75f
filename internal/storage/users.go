package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tipsgolbr/tipsgol/internal/models"
)

const userColumns = `uid, email, username, password_hash, role, is_premium_member,
	premium_expiration_date, created_at`

func scanUser(row scanner) (*models.User, error) {
	u := &models.User{}
	var expiration sql.NullTime
	if err := row.Scan(&u.UUID, &u.Email, &u.Username, &u.PasswordHash, &u.Role,
		&u.IsPremium, &expiration, &u.CreatedAt); err != nil {
		return nil, err
	}
	if expiration.Valid {
		exp := dateOf(expiration.Time)
		u.PremiumExpiration = &exp
	}
	return u, nil
}

// dateOf normalises a DATE column to midnight UTC regardless of the session time zone.
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func nullDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return dateOf(*t).Format(time.DateOnly)
}

// CreateUser inserts a user and returns its uid.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.CreateUser"
	if err := checkCtx(ctx, op); err != nil {
		return "", err
	}

	query := `INSERT INTO users (email, username, password_hash, role)
			  VALUES ($1, $2, $3, $4)
			  RETURNING uid`
	var uid string
	if err := s.conn(ctx).QueryRowContext(ctx, query,
		user.Email, user.Username, user.PasswordHash, user.Role).Scan(&uid); err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("%s: %w", op, ErrUserExists)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return uid, nil
}

func (s *Storage) getUser(ctx context.Context, op, where string, arg any) (*models.User, error) {
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + where
	u, err := scanUser(s.conn(ctx).QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUserByUsername returns the user with the given username.
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getUser(ctx, "storage.GetUserByUsername", "username = $1", username)
}

// GetUser returns the user with the given uid.
func (s *Storage) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	return s.getUser(ctx, "storage.GetUser", "uid = $1", userUID)
}

// GetUserByUsernameForUpdate reads and row-locks a user until the running transaction ends.
func (s *Storage) GetUserByUsernameForUpdate(ctx context.Context, username string) (*models.User, error) {
	return s.getUser(ctx, "storage.GetUserByUsernameForUpdate", "username = $1 FOR UPDATE", username)
}

// GetUserForUpdate reads and row-locks a user until the running transaction ends.
func (s *Storage) GetUserForUpdate(ctx context.Context, userUID string) (*models.User, error) {
	return s.getUser(ctx, "storage.GetUserForUpdate", "uid = $1 FOR UPDATE", userUID)
}

// UpdatePremium writes the premium flag and expiration date of a user. No other column is touched.
func (s *Storage) UpdatePremium(ctx context.Context, userUID string, isPremium bool, expiration *time.Time) error {
	const op = "storage.UpdatePremium"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	query := `UPDATE users
			  SET is_premium_member = $1, premium_expiration_date = $2
			  WHERE uid = $3`
	res, err := s.conn(ctx).ExecContext(ctx, query, isPremium, nullDate(expiration), userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	return nil
}

// FindPremiumExpiringOn lists premium users whose access ends on date.
func (s *Storage) FindPremiumExpiringOn(ctx context.Context, date time.Time) ([]models.PremiumNotice, error) {
	const op = "storage.FindPremiumExpiringOn"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT email, username, premium_expiration_date
			  FROM users
			  WHERE is_premium_member = TRUE AND premium_expiration_date = $1
			  ORDER BY username`
	rows, err := s.conn(ctx).QueryContext(ctx, query, nullDate(&date))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.PremiumNotice
	for rows.Next() {
		var n models.PremiumNotice
		if err = rows.Scan(&n.Email, &n.Username, &n.ExpirationDate); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		n.ExpirationDate = dateOf(n.ExpirationDate)
		result = append(result, n)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// FindStalePremium lists users whose stored flag disagrees with their expiration date on today.
func (s *Storage) FindStalePremium(ctx context.Context, today time.Time) ([]*models.User, error) {
	const op = "storage.FindStalePremium"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE is_premium_member <>
			      (premium_expiration_date IS NOT NULL AND premium_expiration_date >= $1::date)`
	rows, err := s.conn(ctx).QueryContext(ctx, query, nullDate(&today))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
