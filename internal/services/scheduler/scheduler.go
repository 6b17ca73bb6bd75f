// Package scheduler finds users whose premium access is about to end and
// queues a reminder for each of them.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	rule "github.com/tipsgolbr/tipsgol/internal/lib/premium"
	"github.com/tipsgolbr/tipsgol/internal/lib/rabbitmq"
	"github.com/tipsgolbr/tipsgol/internal/lib/sl"
	"github.com/tipsgolbr/tipsgol/internal/models"
)

// Repository finds expiring users.
type Repository interface {
	FindPremiumExpiringOn(ctx context.Context, date time.Time) ([]models.PremiumNotice, error)
}

// Publisher queues messages.
type Publisher interface {
	Publish(routingKey string, message any) error
}

// Service publishes premium-expiring notices.
type Service struct {
	repo Repository
	pub  Publisher
	log  *slog.Logger
	loc  *time.Location
	now  func() time.Time
}

// New returns a scheduler service that takes dates in loc.
func New(repo Repository, pub Publisher, log *slog.Logger, loc *time.Location) *Service {
	return &Service{
		repo: repo,
		pub:  pub,
		log:  log,
		loc:  loc,
		now:  time.Now,
	}
}

// PublishExpiring queues a notice for every premium user whose access ends
// tomorrow and returns how many were queued. A failed publish is logged and skipped.
func (s *Service) PublishExpiring(ctx context.Context) (int, error) {
	const op = "scheduler.PublishExpiring"

	tomorrow := rule.Today(s.now(), s.loc).AddDate(0, 0, 1)
	notices, err := s.repo.FindPremiumExpiringOn(ctx, tomorrow)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if len(notices) == 0 {
		s.log.Info("no premium access expiring tomorrow")
		return 0, nil
	}

	published := 0
	for _, n := range notices {
		if err := s.pub.Publish(rabbitmq.PremiumExpiringKey, n); err != nil {
			s.log.Error("failed to publish notice", slog.String("username", n.Username), sl.Err(err))
			continue
		}
		published++
	}
	s.log.Info("premium expiring notices published", slog.Int("found", len(notices)), slog.Int("published", published))
	return published, nil
}
