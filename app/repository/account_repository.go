package repository

import (
	"context"
	"strings"
	"time"

	"github.com/flinkpay/payhook/app/models"
	"gorm.io/gorm"
)

// accountRepository implements AccountRepository on GORM.
type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new account repository instance.
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	var account models.Account
	err := r.db.WithContext(ctx).Where("email = ?", strings.TrimSpace(email)).First(&account).Error
	if err != nil {
		return nil, classify(err)
	}
	return &account, nil
}

// MarkPaid performs a single guarded UPDATE. The WHERE clause carries the
// ordering guard, so concurrent redeliveries race safely at the row level
// without an application lock.
func (r *accountRepository) MarkPaid(ctx context.Context, email, stripeCustomerID string, amountCents int64, paidAt time.Time) error {
	email = strings.TrimSpace(email)

	tx := r.db.WithContext(ctx).Model(&models.Account{}).
		Where("email = ?", email).
		Where("payment_status <> ? OR paid_at IS NULL OR paid_at <= ?", models.PaymentStatusPaid, paidAt).
		Updates(map[string]interface{}{
			"stripe_customer_id": stripeCustomerID,
			"payment_status":     models.PaymentStatusPaid,
			"has_access":         true,
			"paid_at":            paidAt,
			"amount_paid_cents":  amountCents,
		})
	if tx.Error != nil {
		return classify(tx.Error)
	}
	if tx.RowsAffected > 0 {
		return nil
	}

	// Guard refused or no such account; look once to tell the two apart.
	if _, err := r.GetByEmail(ctx, email); err != nil {
		return err
	}
	return ErrStale
}

func (r *accountRepository) RevokeAccess(ctx context.Context, email string) error {
	tx := r.db.WithContext(ctx).Model(&models.Account{}).
		Where("email = ?", strings.TrimSpace(email)).
		Updates(map[string]interface{}{
			"has_access":     false,
			"payment_status": models.PaymentStatusCanceled,
		})
	if tx.Error != nil {
		return classify(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
