// Package tips publishes, settles and hides betting tips.
package tips

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tipsgolbr/tipsgol/internal/cache"
	"github.com/tipsgolbr/tipsgol/internal/lib/sl"
	"github.com/tipsgolbr/tipsgol/internal/models"
)

var (
	// ErrInvalidTip is returned for a tip payload that cannot be published.
	ErrInvalidTip = errors.New("invalid tip")
	// ErrInvalidSettlement is returned when the outcome lacks the amount it needs.
	ErrInvalidSettlement = errors.New("invalid settlement")
	// ErrNegativeAmount is returned for negative stakes or settlement amounts.
	ErrNegativeAmount = errors.New("amounts must not be negative")
)

// DefaultStake is used when a tip is published without a stake.
var DefaultStake = decimal.NewFromInt(100)

// ListLimit caps the tips returned by a listing.
const ListLimit = 50

var matchDateLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02 15:04"}

// Repository is the tip storage.
type Repository interface {
	CreateTip(ctx context.Context, tip models.Tip) (int64, error)
	GetTip(ctx context.Context, id int64) (*models.Tip, error)
	ListVisibleTips(ctx context.Context, access models.AccessLevel, limit int) ([]models.Tip, error)
	SettleTip(ctx context.Context, id int64, status models.Status, profit, loss decimal.Decimal, finalResult *string) error
	SetTipActive(ctx context.Context, id int64, active bool) error
}

// Cache holds the free tips listing and the dashboard derived from tips.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}

// Service manages tips.
type Service struct {
	repo  Repository
	cache Cache
	log   *slog.Logger
	loc   *time.Location
	ttl   time.Duration
}

// New returns a tips service. Match dates without an offset are read in loc.
func New(repo Repository, cache Cache, log *slog.Logger, loc *time.Location, ttl time.Duration) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		log:   log,
		loc:   loc,
		ttl:   ttl,
	}
}

// Create publishes a pending, visible tip.
func (s *Service) Create(ctx context.Context, in models.DummyTip) (int64, error) {
	const op = "tips.Create"

	tip, err := s.parse(in)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	id, err := s.repo.CreateTip(ctx, tip)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx, cache.KeyFreeTips)
	s.log.Info("tip published", slog.Int64("id", id), slog.String("method", string(tip.Method)))
	return id, nil
}

func (s *Service) parse(in models.DummyTip) (models.Tip, error) {
	method := models.Method(strings.ToUpper(in.Method))
	if !method.Valid() {
		return models.Tip{}, fmt.Errorf("%w: unknown method %q", ErrInvalidTip, in.Method)
	}

	matchDate, err := s.parseMatchDate(in.MatchDate)
	if err != nil {
		return models.Tip{}, err
	}

	odds, err := decimal.NewFromString(in.Odds)
	if err != nil || odds.LessThanOrEqual(decimal.NewFromInt(1)) {
		return models.Tip{}, fmt.Errorf("%w: odds must be a decimal greater than 1", ErrInvalidTip)
	}

	stake := DefaultStake
	if in.Stake != "" {
		if stake, err = decimal.NewFromString(in.Stake); err != nil {
			return models.Tip{}, fmt.Errorf("%w: stake %q", ErrInvalidTip, in.Stake)
		}
		if stake.IsNegative() {
			return models.Tip{}, ErrNegativeAmount
		}
	}

	tip := models.Tip{
		MatchTitle:  in.MatchTitle,
		League:      in.League,
		MatchDate:   matchDate,
		Method:      method,
		Odds:        odds,
		Stake:       stake,
		Status:      models.StatusPending,
		AccessLevel: models.AccessLevel(in.AccessLevel),
		IsActive:    true,
	}
	if in.BetLink != "" {
		link := in.BetLink
		tip.BetLink = &link
	}
	return tip, nil
}

func (s *Service) parseMatchDate(v string) (time.Time, error) {
	for _, layout := range matchDateLayouts {
		if t, err := time.ParseInLocation(layout, v, s.loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: match_date %q", ErrInvalidTip, v)
}

// Settle records the outcome of a tip. A win needs the profit, a loss needs the
// loss; the other amount is zeroed. A void zeroes both.
func (s *Service) Settle(ctx context.Context, id int64, in models.Settlement) error {
	const op = "tips.Settle"

	status, profit, loss, err := settlementAmounts(in)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	var finalResult *string
	if in.FinalResult != "" {
		fr := in.FinalResult
		finalResult = &fr
	}

	if err := s.repo.SettleTip(ctx, id, status, profit, loss, finalResult); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx, cache.KeyDashboard, cache.KeyFreeTips)
	s.log.Info("tip settled", slog.Int64("id", id), slog.String("status", string(status)))
	return nil
}

func settlementAmounts(in models.Settlement) (models.Status, decimal.Decimal, decimal.Decimal, error) {
	status := models.Status(strings.ToUpper(in.Status))
	parse := func(field, v string) (decimal.Decimal, error) {
		if v == "" {
			return decimal.Zero, fmt.Errorf("%w: %s amount is required for %s", ErrInvalidSettlement, field, status)
		}
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero, fmt.Errorf("%w: %s amount %q", ErrInvalidSettlement, field, v)
		}
		if d.IsNegative() {
			return decimal.Zero, ErrNegativeAmount
		}
		return d, nil
	}

	switch status {
	case models.StatusWin:
		profit, err := parse("profit", in.Profit)
		return status, profit, decimal.Zero, err
	case models.StatusLoss:
		loss, err := parse("loss", in.Loss)
		return status, decimal.Zero, loss, err
	case models.StatusVoid:
		return status, decimal.Zero, decimal.Zero, nil
	default:
		return status, decimal.Zero, decimal.Zero, fmt.Errorf("%w: status %q", ErrInvalidSettlement, in.Status)
	}
}

// Deactivate hides a tip from listings. It stays in the analytics.
func (s *Service) Deactivate(ctx context.Context, id int64) error {
	const op = "tips.Deactivate"
	if err := s.repo.SetTipActive(ctx, id, false); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx, cache.KeyFreeTips)
	s.log.Info("tip hidden", slog.Int64("id", id))
	return nil
}

// Get returns a tip by id.
func (s *Service) Get(ctx context.Context, id int64) (*models.Tip, error) {
	const op = "tips.Get"
	tip, err := s.repo.GetTip(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return tip, nil
}

// ListFree returns the visible free tips, newest match first.
func (s *Service) ListFree(ctx context.Context) ([]models.Tip, error) {
	const op = "tips.ListFree"

	var cached []models.Tip
	found, err := s.cache.Get(ctx, cache.KeyFreeTips, &cached)
	if err != nil {
		s.log.Warn("free tips cache read failed", sl.Err(err))
	}
	if found {
		return cached, nil
	}

	list, err := s.repo.ListVisibleTips(ctx, models.AccessFree, ListLimit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.cache.Set(ctx, cache.KeyFreeTips, list, s.ttl); err != nil {
		s.log.Warn("free tips cache write failed", sl.Err(err))
	}
	return list, nil
}

// ListPremium returns the visible premium tips. Callers check access first.
func (s *Service) ListPremium(ctx context.Context) ([]models.Tip, error) {
	const op = "tips.ListPremium"
	list, err := s.repo.ListVisibleTips(ctx, models.AccessPremium, ListLimit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}

func (s *Service) invalidate(ctx context.Context, keys ...string) {
	if err := s.cache.Invalidate(ctx, keys...); err != nil {
		s.log.Warn("cache invalidation failed", slog.Any("keys", keys), sl.Err(err))
	}
}
