package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/flinkpay/payhook/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// subscriptionRepository implements SubscriptionRepository on GORM.
type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates a new subscription repository instance.
func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) GetByStripeID(ctx context.Context, stripeSubscriptionID string) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.WithContext(ctx).Where("stripe_subscription_id = ?", strings.TrimSpace(stripeSubscriptionID)).First(&sub).Error
	if err != nil {
		return nil, classify(err)
	}
	return &sub, nil
}

// UpsertIfNewer writes through a guarded UPDATE first; only when no row
// exists does it INSERT. The guard refuses writes that would move the period
// end backwards or overwrite a terminal status, which makes redelivery and
// reordering safe without locks.
func (r *subscriptionRepository) UpsertIfNewer(ctx context.Context, sub *models.Subscription) error {
	subID := strings.TrimSpace(sub.StripeSubscriptionID)

	updates := map[string]interface{}{
		"email":  strings.TrimSpace(sub.Email),
		"status": sub.Status,
	}
	query := r.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("stripe_subscription_id = ?", subID).
		Where("status <> ?", models.SubscriptionStatusCanceled)
	if sub.CurrentPeriodEnd != nil {
		query = query.Where("current_period_end IS NULL OR current_period_end <= ?", *sub.CurrentPeriodEnd)
		updates["current_period_end"] = sub.CurrentPeriodEnd
	} else {
		// A delivery without a period end cannot prove it is newer than the
		// stored row. It may only touch rows that never carried one; a stored
		// period end wins and the write is refused as stale below.
		query = query.Where("current_period_end IS NULL")
	}
	tx := query.Updates(updates)
	if tx.Error != nil {
		return classify(tx.Error)
	}
	if tx.RowsAffected > 0 {
		return nil
	}

	if _, err := r.GetByStripeID(ctx, subID); err == nil {
		// Row exists but the guard refused the write: stale or terminal.
		return ErrStale
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}

	// First sighting of this subscription id. A concurrent insert of the same
	// id loses the race on the unique index; the stored row then decides.
	tx = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "stripe_subscription_id"}},
		DoNothing: true,
	}).Create(sub)
	if tx.Error != nil {
		return classify(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return ErrStale
	}
	return nil
}

func (r *subscriptionRepository) MarkCanceled(ctx context.Context, email, stripeSubscriptionID string) error {
	subID := strings.TrimSpace(stripeSubscriptionID)

	tx := r.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("stripe_subscription_id = ?", subID).
		Update("status", models.SubscriptionStatusCanceled)
	if tx.Error != nil {
		return classify(tx.Error)
	}
	if tx.RowsAffected > 0 {
		return nil
	}

	// Cancellation may arrive before any update created the row. Persist a
	// tombstone so a later stale update cannot resurrect the subscription.
	tombstone := &models.Subscription{
		Email:                strings.TrimSpace(email),
		StripeSubscriptionID: subID,
		Status:               models.SubscriptionStatusCanceled,
	}
	tx = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "stripe_subscription_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"status": models.SubscriptionStatusCanceled}),
	}).Create(tombstone)
	return classify(tx.Error)
}
