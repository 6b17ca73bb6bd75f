// Package payment turns PagSeguro notifications into premium confirmations
// and builds checkout links for the plans page.
package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	rule "github.com/tipsgolbr/tipsgol/internal/lib/premium"
	"github.com/tipsgolbr/tipsgol/internal/metrics"
	"github.com/tipsgolbr/tipsgol/internal/models"
	"github.com/tipsgolbr/tipsgol/internal/paymentprovider"
)

var (
	// ErrInvalidNotification is returned for notifications that cannot be processed.
	ErrInvalidNotification = errors.New("invalid notification")
	// ErrUnknownPlan is returned for plan ids that are not offered.
	ErrUnknownPlan = errors.New("unknown plan")
)

// Outcome is what a notification did.
type Outcome string

const (
	OutcomeConfirmed Outcome = "confirmed"
	OutcomeCancelled Outcome = "cancelled"
	OutcomeIgnored   Outcome = "ignored"
	OutcomeDuplicate Outcome = "duplicate"
)

const referenceSep = "|"

// Gateway resolves notification codes.
type Gateway interface {
	GetTransaction(ctx context.Context, notificationCode string) (*paymentprovider.Transaction, error)
}

// Premium applies payments to users.
type Premium interface {
	ConfirmPayment(ctx context.Context, username string, planDays int) (*models.User, error)
	CancelSubscription(ctx context.Context, username string) error
}

// Ledger remembers which gateway transactions were already applied.
type Ledger interface {
	RecordTransaction(ctx context.Context, code, username string, planDays int) (bool, error)
}

// TxManager runs fn in a transaction carried by the context.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service processes gateway notifications.
type Service struct {
	gateway      Gateway
	premium      Premium
	ledger       Ledger
	tx           TxManager
	checkoutURLs map[int]string
	metrics      *metrics.Metrics
	log          *slog.Logger
}

// New returns a payment service. checkoutURLs maps plan ids to gateway checkout pages.
func New(gateway Gateway, premium Premium, ledger Ledger, tx TxManager, checkoutURLs map[int]string, m *metrics.Metrics, log *slog.Logger) *Service {
	return &Service{
		gateway:      gateway,
		premium:      premium,
		ledger:       ledger,
		tx:           tx,
		checkoutURLs: checkoutURLs,
		metrics:      m,
		log:          log,
	}
}

// HandleNotification fetches the transaction behind code and applies it:
// paid or available confirms the payment once per transaction, cancelled ends
// the subscription, every other status is acknowledged without changes.
func (s *Service) HandleNotification(ctx context.Context, code, notificationType string) (Outcome, error) {
	const op = "payment.HandleNotification"

	if code == "" || notificationType != "transaction" {
		s.metrics.PaymentNotification("invalid")
		return "", fmt.Errorf("%s: %w: code=%q type=%q", op, ErrInvalidNotification, code, notificationType)
	}

	tx, err := s.gateway.GetTransaction(ctx, code)
	if err != nil {
		s.metrics.PaymentNotification("gateway_error")
		return "", fmt.Errorf("%s: %w", op, err)
	}
	log := s.log.With(
		slog.String("op", op),
		slog.String("transaction", tx.Code),
		slog.Int("status", tx.Status),
	)

	if !tx.Confirmed() && !tx.Cancelled() {
		log.Info("notification ignored")
		s.metrics.PaymentNotification(string(OutcomeIgnored))
		return OutcomeIgnored, nil
	}

	username, planDays, err := ParseReference(tx.Reference)
	if err != nil {
		s.metrics.PaymentNotification("invalid")
		return "", fmt.Errorf("%s: %w", op, err)
	}

	outcome := OutcomeConfirmed
	if tx.Confirmed() {
		txCode := tx.Code
		if txCode == "" {
			txCode = code
		}
		outcome, err = s.confirmOnce(ctx, txCode, username, planDays)
	} else {
		outcome = OutcomeCancelled
		err = s.premium.CancelSubscription(ctx, username)
	}
	if err != nil {
		s.metrics.PaymentNotification("failed")
		return "", fmt.Errorf("%s: %w", op, err)
	}

	log.Info("notification applied", slog.String("username", username), slog.String("outcome", string(outcome)))
	s.metrics.PaymentNotification(string(outcome))
	return outcome, nil
}

// confirmOnce records the transaction and confirms the payment in one
// transaction. A code seen before is not applied again.
func (s *Service) confirmOnce(ctx context.Context, code, username string, planDays int) (Outcome, error) {
	outcome := OutcomeConfirmed
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		fresh, err := s.ledger.RecordTransaction(ctx, code, username, planDays)
		if err != nil {
			return err
		}
		if !fresh {
			outcome = OutcomeDuplicate
			return nil
		}
		_, err = s.premium.ConfirmPayment(ctx, username, planDays)
		return err
	})
	return outcome, err
}

// ParseReference splits a transaction reference "username" or "username|planID"
// into the username and the days the plan grants. The plan id follows the last separator.
func ParseReference(ref string) (string, int, error) {
	ref = strings.TrimSpace(ref)
	i := strings.LastIndex(ref, referenceSep)
	if i < 0 {
		if ref == "" {
			return "", 0, fmt.Errorf("%w: empty reference", ErrInvalidNotification)
		}
		return ref, rule.DefaultPlanDays, nil
	}
	username, planPart := ref[:i], ref[i+len(referenceSep):]
	if username == "" {
		return "", 0, fmt.Errorf("%w: empty reference", ErrInvalidNotification)
	}
	planID, err := strconv.Atoi(planPart)
	if err != nil {
		return "", 0, fmt.Errorf("%w: reference %q", ErrInvalidNotification, ref)
	}
	plan, ok := models.PlanByID(planID)
	if !ok {
		return "", 0, fmt.Errorf("%w: reference %q: %w", ErrInvalidNotification, ref, ErrUnknownPlan)
	}
	return username, plan.Days, nil
}

// Plans lists the offered plans with their checkout links.
func (s *Service) Plans() []models.Plan {
	return models.Plans(s.checkoutURLs)
}

// CheckoutURL returns the gateway checkout link of planID tagged with the buyer's reference.
func (s *Service) CheckoutURL(username string, planID int) (string, error) {
	const op = "payment.CheckoutURL"

	if _, ok := models.PlanByID(planID); !ok {
		return "", fmt.Errorf("%s: %w", op, ErrUnknownPlan)
	}
	raw := s.checkoutURLs[planID]
	if raw == "" {
		return "", fmt.Errorf("%s: plan %d has no checkout link: %w", op, planID, ErrUnknownPlan)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	q := u.Query()
	q.Set("reference", username+referenceSep+strconv.Itoa(planID))
	u.RawQuery = q.Encode()
	return u.String(), nil
}
