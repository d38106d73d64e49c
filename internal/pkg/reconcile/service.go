package reconcile

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/flinkpay/payhook/app/models"
	"github.com/flinkpay/payhook/app/repository"
)

// Service applies classified payment transitions to the store. Every
// operation is idempotent under at-least-once delivery: the safety comes from
// per-record conditional writes in the repositories, not from locks, so
// concurrent deliveries for the same identity resolve at the row level.
type Service struct {
	accounts      repository.AccountRepository
	subscriptions repository.SubscriptionRepository
	failures      repository.PaymentFailureRepository
}

// NewService creates a reconciler from injected repositories.
func NewService(repos *repository.Repositories) *Service {
	return &Service{
		accounts:      repos.Account,
		subscriptions: repos.Subscription,
		failures:      repos.PaymentFailure,
	}
}

// ApplyPaymentCompleted conditionally marks the account paid. A redelivery
// with identical values and an out-of-order delivery with an older paid_at
// are both successful no-ops.
func (s *Service) ApplyPaymentCompleted(ctx context.Context, email, stripeCustomerID string, amountCents int64, occurredAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return &ReconciliationFailure{Op: "payment_completed", Err: err}
	}

	err := s.accounts.MarkPaid(ctx, email, stripeCustomerID, amountCents, occurredAt)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrStale):
		return nil
	case errors.Is(err, repository.ErrNotFound):
		// The store owns account creation; a payment for an unknown identity
		// is acknowledged so the provider stops redelivering it.
		log.Printf("reconcile: payment completed for unknown account %s, skipping", email)
		return nil
	default:
		return &ReconciliationFailure{Op: "payment_completed", Err: err}
	}
}

// ApplySubscriptionUpdated upserts the subscription unless the stored record
// is newer or terminal.
func (s *Service) ApplySubscriptionUpdated(ctx context.Context, email, subscriptionID, status string, periodEnd *time.Time) error {
	if err := ctx.Err(); err != nil {
		return &ReconciliationFailure{Op: "subscription_updated", Err: err}
	}

	sub := &models.Subscription{
		Email:                email,
		StripeSubscriptionID: subscriptionID,
		Status:               models.NormalizeSubscriptionStatus(status),
		CurrentPeriodEnd:     periodEnd,
	}
	err := s.subscriptions.UpsertIfNewer(ctx, sub)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrStale):
		return nil
	case errors.Is(err, repository.ErrConflict):
		// Lost an insert race; the stored row already decided.
		return nil
	default:
		return &ReconciliationFailure{Op: "subscription_updated", Err: err}
	}
}

// ApplySubscriptionCanceled marks the subscription canceled and revokes the
// account's access flag. Cancellation is terminal and wins over any prior or
// later non-terminal update for the same subscription id.
func (s *Service) ApplySubscriptionCanceled(ctx context.Context, email, subscriptionID string) error {
	if err := ctx.Err(); err != nil {
		return &ReconciliationFailure{Op: "subscription_canceled", Err: err}
	}

	if err := s.subscriptions.MarkCanceled(ctx, email, subscriptionID); err != nil &&
		!errors.Is(err, repository.ErrConflict) {
		return &ReconciliationFailure{Op: "subscription_canceled", Err: err}
	}

	// Secondary access-flag write is best effort; the canceled subscription
	// row above is the durable source of truth.
	if err := s.accounts.RevokeAccess(ctx, email); err != nil && !errors.Is(err, repository.ErrNotFound) {
		log.Printf("reconcile: access revoke for %s failed: %v", email, err)
	}
	return nil
}

// ApplyChargeFailed appends to the failure log, deduplicating on charge id.
func (s *Service) ApplyChargeFailed(ctx context.Context, email, chargeID, reason string, occurredAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return &ReconciliationFailure{Op: "charge_failed", Err: err}
	}

	created, err := s.failures.CreateIfAbsent(ctx, &models.PaymentFailure{
		Email:          email,
		StripeChargeID: chargeID,
		Reason:         reason,
		FailedAt:       occurredAt,
	})
	if err != nil {
		return &ReconciliationFailure{Op: "charge_failed", Err: err}
	}
	if !created {
		log.Printf("reconcile: duplicate charge failure %s ignored", chargeID)
	}
	return nil
}
