package models

import "time"

// Payment status values an account can be in. Status transitions are driven
// exclusively by verified provider events, never by client input.
const (
	PaymentStatusUnpaid   = "unpaid"
	PaymentStatusPaid     = "paid"
	PaymentStatusPastDue  = "past_due"
	PaymentStatusCanceled = "canceled"
)

// Account is the application-side view of a paying customer, joined to the
// provider by email. StripeCustomerID is set on the first successful payment.
type Account struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	Email            string     `gorm:"type:varchar(200);not null;uniqueIndex:ux_accounts_email" json:"email"`
	StripeCustomerID *string    `gorm:"type:varchar(191);default:null;index" json:"stripe_customer_id,omitempty"`
	PaymentStatus    string     `gorm:"type:varchar(20);not null;default:'unpaid';index" json:"payment_status"`
	HasAccess        bool       `gorm:"default:false" json:"has_access"`
	PaidAt           *time.Time `gorm:"type:timestamp;default:null" json:"paid_at,omitempty"`
	AmountPaidCents  *int64     `gorm:"default:null" json:"amount_paid_cents,omitempty"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsPaid reports whether the account currently holds a completed payment.
func (a *Account) IsPaid() bool {
	return a.PaymentStatus == PaymentStatusPaid
}
