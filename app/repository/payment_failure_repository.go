package repository

import (
	"context"
	"strings"

	"github.com/flinkpay/payhook/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// paymentFailureRepository implements PaymentFailureRepository on GORM.
type paymentFailureRepository struct {
	db *gorm.DB
}

// NewPaymentFailureRepository creates a new payment failure repository instance.
func NewPaymentFailureRepository(db *gorm.DB) PaymentFailureRepository {
	return &paymentFailureRepository{db: db}
}

// CreateIfAbsent appends the failure unless the charge id was already logged.
// The unique index on stripe_charge_id makes the second delivery a no-op.
func (r *paymentFailureRepository) CreateIfAbsent(ctx context.Context, failure *models.PaymentFailure) (bool, error) {
	failure.Email = strings.TrimSpace(failure.Email)
	failure.StripeChargeID = strings.TrimSpace(failure.StripeChargeID)

	tx := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "stripe_charge_id"}},
		DoNothing: true,
	}).Create(failure)
	if tx.Error != nil {
		return false, classify(tx.Error)
	}
	return tx.RowsAffected > 0, nil
}

func (r *paymentFailureRepository) ListByEmail(ctx context.Context, email string, limit int) ([]models.PaymentFailure, error) {
	if limit <= 0 {
		limit = 50
	}
	var failures []models.PaymentFailure
	err := r.db.WithContext(ctx).Where("email = ?", strings.TrimSpace(email)).
		Order("failed_at DESC").
		Limit(limit).
		Find(&failures).Error
	if err != nil {
		return nil, classify(err)
	}
	return failures, nil
}
