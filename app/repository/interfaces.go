package repository

import (
	"context"
	"time"

	"github.com/flinkpay/payhook/app/models"
)

// AccountRepository defines the conditional account-record operations the
// reconciler is allowed to perform. The store owns the records; this layer
// never creates accounts on behalf of payment events.
type AccountRepository interface {
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	// MarkPaid conditionally flips the account to paid. Refused with ErrStale
	// when the account is already paid with an equal-or-later paid_at, so
	// redelivered or out-of-order events cannot regress state.
	MarkPaid(ctx context.Context, email, stripeCustomerID string, amountCents int64, paidAt time.Time) error
	// RevokeAccess drops the paid access flag and marks the account canceled.
	// Cancellation is terminal; the write carries no ordering guard.
	RevokeAccess(ctx context.Context, email string) error
}

// SubscriptionRepository defines subscription-record operations keyed by the
// provider subscription id.
type SubscriptionRepository interface {
	GetByStripeID(ctx context.Context, stripeSubscriptionID string) (*models.Subscription, error)
	// UpsertIfNewer creates the record or overwrites status/period end, but
	// only when the incoming period end is equal or later than the stored one
	// and the stored status is not terminal. An incoming nil period end never
	// overwrites a stored one. Refused writes return ErrStale.
	UpsertIfNewer(ctx context.Context, sub *models.Subscription) error
	// MarkCanceled forces the terminal canceled status, creating a tombstone
	// row when no record exists yet so later stale updates cannot resurrect it.
	MarkCanceled(ctx context.Context, email, stripeSubscriptionID string) error
}

// PaymentFailureRepository appends to the failure log.
type PaymentFailureRepository interface {
	// CreateIfAbsent inserts the failure unless the charge id was already
	// logged. Returns false with nil error on a duplicate.
	CreateIfAbsent(ctx context.Context, failure *models.PaymentFailure) (bool, error)
	ListByEmail(ctx context.Context, email string, limit int) ([]models.PaymentFailure, error)
}

// WebhookEventRepository persists webhook deliveries for dedup and audit.
type WebhookEventRepository interface {
	CreateIfAbsent(ctx context.Context, event *models.WebhookEvent) (bool, *models.WebhookEvent, error)
	MarkProcessed(ctx context.Context, id uint, processingError string) error
}
