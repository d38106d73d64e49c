package models

import (
	"strings"
	"time"
)

// Subscription status values as reported by the provider, constrained to the
// set we know how to interpret.
const (
	SubscriptionStatusActive     = "active"
	SubscriptionStatusTrialing   = "trialing"
	SubscriptionStatusPastDue    = "past_due"
	SubscriptionStatusCanceled   = "canceled"
	SubscriptionStatusIncomplete = "incomplete"
	SubscriptionStatusUnpaid     = "unpaid"
	SubscriptionStatusPaused     = "paused"
)

// Subscription mirrors a provider subscription for an account. CurrentPeriodEnd
// is monotonically non-decreasing across updates for the same
// StripeSubscriptionID except on cancellation, which is terminal.
type Subscription struct {
	ID                   uint       `gorm:"primaryKey" json:"id"`
	Email                string     `gorm:"type:varchar(200);not null;index" json:"email"`
	StripeSubscriptionID string     `gorm:"type:varchar(191);not null;uniqueIndex:ux_subscriptions_stripe_id" json:"stripe_subscription_id"`
	Status               string     `gorm:"type:varchar(32);not null;default:'active';index" json:"status"`
	CurrentPeriodEnd     *time.Time `gorm:"type:timestamp;default:null" json:"current_period_end,omitempty"`
	CreatedAt            time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// NormalizeSubscriptionStatus maps an arbitrary provider status string onto
// the known set; unknown values degrade to incomplete rather than failing.
func NormalizeSubscriptionStatus(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case SubscriptionStatusActive:
		return SubscriptionStatusActive
	case SubscriptionStatusTrialing:
		return SubscriptionStatusTrialing
	case SubscriptionStatusPastDue:
		return SubscriptionStatusPastDue
	case SubscriptionStatusCanceled:
		return SubscriptionStatusCanceled
	case SubscriptionStatusUnpaid:
		return SubscriptionStatusUnpaid
	case SubscriptionStatusPaused:
		return SubscriptionStatusPaused
	default:
		return SubscriptionStatusIncomplete
	}
}

// IsTerminalStatus reports whether a status can no longer be overwritten by
// non-terminal updates for the same subscription.
func IsTerminalStatus(status string) bool {
	return status == SubscriptionStatusCanceled
}
