// Package premium keeps the premium state of users in line with their
// subscriptions and payments.
//
// Every write of the premium flag goes through the rule in lib/premium: the
// flag is true exactly when the expiration date is today or later, and an
// inactive subscription clears the date.
package premium

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	rule "github.com/tipsgolbr/tipsgol/internal/lib/premium"
	"github.com/tipsgolbr/tipsgol/internal/lib/sl"
	"github.com/tipsgolbr/tipsgol/internal/models"
	"github.com/tipsgolbr/tipsgol/internal/storage"
)

// ErrUserNotFound is returned when the user referenced by a subscription or payment does not exist.
var ErrUserNotFound = errors.New("user not found")

// Repository is the persistence used by the service.
type Repository interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserForUpdate(ctx context.Context, userUID string) (*models.User, error)
	GetUserByUsernameForUpdate(ctx context.Context, username string) (*models.User, error)
	UpdatePremium(ctx context.Context, userUID string, isPremium bool, expiration *time.Time) error
	UpsertSubscription(ctx context.Context, userUID string, active bool) (models.Subscription, error)
	FindStalePremium(ctx context.Context, today time.Time) ([]*models.User, error)
}

// TxManager runs fn in a transaction carried by the context. Nested calls join the outer transaction.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service owns every write of the premium flag.
type Service struct {
	repo Repository
	tx   TxManager
	log  *slog.Logger
	loc  *time.Location
	now  func() time.Time
}

// New returns a service that takes "today" in loc.
func New(repo Repository, tx TxManager, log *slog.Logger, loc *time.Location) *Service {
	return &Service{
		repo: repo,
		tx:   tx,
		log:  log,
		loc:  loc,
		now:  time.Now,
	}
}

// WithClock replaces the clock, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) today() time.Time {
	return rule.Today(s.now(), s.loc)
}

// OnSubscriptionSaved recomputes the premium state of the subscription's user.
// It must run in the transaction that saved sub; a missing user is an
// integrity fault that rolls the transaction back.
func (s *Service) OnSubscriptionSaved(ctx context.Context, sub models.Subscription) error {
	const op = "premium.OnSubscriptionSaved"

	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		user, err := s.repo.GetUserForUpdate(ctx, sub.UserUID)
		if errors.Is(err, storage.ErrUserNotFound) {
			s.log.Error("integrity fault: subscription references a missing user",
				slog.String("op", op),
				slog.Int64("subscription_id", sub.ID),
				slog.String("user_uid", sub.UserUID))
			return fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		isPremium, exp := rule.Apply(user.PremiumExpiration, sub.IsActive, s.today())
		if err := s.repo.UpdatePremium(ctx, user.UUID, isPremium, exp); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		s.log.Debug("premium state synced",
			slog.String("user_uid", user.UUID),
			slog.Bool("subscription_active", sub.IsActive),
			slog.Bool("is_premium", isPremium))
		return nil
	})
}

// ConfirmPayment extends the user's premium by planDays (30 when planDays <= 0)
// from the later of today and the current expiration, activates the
// subscription and syncs the user. All writes commit together or not at all.
func (s *Service) ConfirmPayment(ctx context.Context, username string, planDays int) (*models.User, error) {
	const op = "premium.ConfirmPayment"

	var result *models.User
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		user, err := s.lockUser(ctx, username)
		if err != nil {
			return err
		}

		today := s.today()
		exp := rule.Extend(user.PremiumExpiration, today, planDays)
		isPremium, newExp := rule.Apply(&exp, true, today)
		if err := s.repo.UpdatePremium(ctx, user.UUID, isPremium, newExp); err != nil {
			return err
		}

		sub, err := s.repo.UpsertSubscription(ctx, user.UUID, true)
		if err != nil {
			return err
		}
		if err := s.OnSubscriptionSaved(ctx, sub); err != nil {
			return err
		}

		result, err = s.repo.GetUser(ctx, user.UUID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("payment confirmed",
		slog.String("username", username),
		slog.Int("plan_days", planDays),
		slog.Any("premium_expiration", result.PremiumExpiration))
	return result, nil
}

// SetSubscriptionActive saves the subscription flag of a user and syncs the user.
func (s *Service) SetSubscriptionActive(ctx context.Context, username string, active bool) (*models.User, error) {
	const op = "premium.SetSubscriptionActive"

	var result *models.User
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		user, err := s.lockUser(ctx, username)
		if err != nil {
			return err
		}
		sub, err := s.repo.UpsertSubscription(ctx, user.UUID, active)
		if err != nil {
			return err
		}
		if err := s.OnSubscriptionSaved(ctx, sub); err != nil {
			return err
		}
		result, err = s.repo.GetUser(ctx, user.UUID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("subscription updated", slog.String("username", username), slog.Bool("active", active))
	return result, nil
}

// CancelSubscription deactivates the subscription, which clears the user's premium.
func (s *Service) CancelSubscription(ctx context.Context, username string) error {
	_, err := s.SetSubscriptionActive(ctx, username, false)
	return err
}

// RefreshAccess returns the user with the premium flag recomputed for today.
// A stale flag is corrected from the row re-read under lock, so a payment
// committed in between is never overwritten.
func (s *Service) RefreshAccess(ctx context.Context, username string) (*models.User, error) {
	const op = "premium.RefreshAccess"

	user, err := s.repo.GetUserByUsername(ctx, username)
	if errors.Is(err, storage.ErrUserNotFound) {
		return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if rule.Active(user.PremiumExpiration, s.today()) == user.IsPremium {
		return user, nil
	}

	var corrected bool
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		locked, err := s.lockUser(ctx, username)
		if err != nil {
			return err
		}
		corrected, err = s.correct(ctx, locked)
		user = locked
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if corrected {
		s.log.Info("stale premium flag corrected",
			slog.String("username", username),
			slog.Bool("is_premium", user.IsPremium))
	}
	return user, nil
}

// SweepExpired corrects every user whose stored flag disagrees with the date and
// returns how many were updated. A failing user is logged and skipped.
func (s *Service) SweepExpired(ctx context.Context) (int, error) {
	const op = "premium.SweepExpired"

	stale, err := s.repo.FindStalePremium(ctx, s.today())
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	updated := 0
	for _, u := range stale {
		if err := ctx.Err(); err != nil {
			return updated, fmt.Errorf("%s: %w", op, err)
		}
		var corrected bool
		err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
			locked, err := s.repo.GetUserForUpdate(ctx, u.UUID)
			if err != nil {
				return err
			}
			corrected, err = s.correct(ctx, locked)
			return err
		})
		if err != nil {
			s.log.Error("failed to sweep user", slog.String("user_uid", u.UUID), sl.Err(err))
			continue
		}
		if corrected {
			updated++
		}
	}
	s.log.Info("premium sweep finished", slog.Int("stale", len(stale)), slog.Int("updated", updated))
	return updated, nil
}

// correct recomputes the flag of a locked user and persists it when it changed.
// The expiration written back is the one read under the lock.
func (s *Service) correct(ctx context.Context, user *models.User) (bool, error) {
	isPremium := rule.Active(user.PremiumExpiration, s.today())
	if isPremium == user.IsPremium {
		return false, nil
	}
	if err := s.repo.UpdatePremium(ctx, user.UUID, isPremium, user.PremiumExpiration); err != nil {
		return false, err
	}
	user.IsPremium = isPremium
	return true, nil
}

func (s *Service) lockUser(ctx context.Context, username string) (*models.User, error) {
	user, err := s.repo.GetUserByUsernameForUpdate(ctx, username)
	if errors.Is(err, storage.ErrUserNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}
