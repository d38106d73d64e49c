package models

import "time"

// PaymentFailure is an append-only log entry for a failed charge. Rows are
// never updated after creation; redeliveries of the same charge id are
// deduplicated on insert.
type PaymentFailure struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Email          string    `gorm:"type:varchar(200);not null;index" json:"email"`
	StripeChargeID string    `gorm:"type:varchar(191);not null;uniqueIndex:ux_payment_failures_charge_id" json:"stripe_charge_id"`
	Reason         string    `gorm:"type:text" json:"reason"`
	FailedAt       time.Time `gorm:"type:timestamp;not null" json:"failed_at"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}
