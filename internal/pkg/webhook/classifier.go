package webhook

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/flinkpay/payhook/app/models"
)

// Transition is the closed set of semantic state changes a verified event can
// map to. Adding a provider event type means adding a variant here and a case
// in Classify; there is deliberately no open-ended string dispatch downstream.
type Transition interface {
	isTransition()
}

// PaymentCompleted marks an account paid after a finished checkout.
type PaymentCompleted struct {
	Email            string
	StripeCustomerID string
	AmountCents      int64
	OccurredAt       time.Time
}

// SubscriptionUpdated carries a renewal or plan change.
type SubscriptionUpdated struct {
	Email          string
	SubscriptionID string
	Status         string
	PeriodEnd      *time.Time
}

// SubscriptionCanceled ends a subscription; terminal.
type SubscriptionCanceled struct {
	Email          string
	SubscriptionID string
}

// ChargeFailed logs a failed charge.
type ChargeFailed struct {
	Email      string
	ChargeID   string
	Reason     string
	OccurredAt time.Time
}

// Unrecognized is an event type this system intentionally does not handle.
// It is acknowledged successfully so the provider stops redelivering it.
type Unrecognized struct {
	Type string
}

func (PaymentCompleted) isTransition()     {}
func (SubscriptionUpdated) isTransition()  {}
func (SubscriptionCanceled) isTransition() {}
func (ChargeFailed) isTransition()         {}
func (Unrecognized) isTransition()         {}

// Wire shapes of the provider objects we extract from. Kept local and minimal
// instead of binding the classifier to the SDK's full object structs.
type checkoutSessionObject struct {
	ID            string `json:"id"`
	Customer      string `json:"customer"`
	CustomerEmail string `json:"customer_email"`
	AmountTotal   int64  `json:"amount_total"`
	CustomerInfo  struct {
		Email string `json:"email"`
	} `json:"customer_details"`
	Metadata map[string]string `json:"metadata"`
}

type subscriptionObject struct {
	ID               string            `json:"id"`
	Status           string            `json:"status"`
	CurrentPeriodEnd int64             `json:"current_period_end"`
	Metadata         map[string]string `json:"metadata"`
}

type chargeObject struct {
	ID             string            `json:"id"`
	FailureMessage string            `json:"failure_message"`
	Metadata       map[string]string `json:"metadata"`
}

// Classify maps a verified event onto the transition set. Unknown event types
// yield Unrecognized; a known type with a missing required field yields a
// MalformedEventError instead.
func Classify(event *Event) (Transition, error) {
	switch event.Type {
	case "checkout.session.completed":
		return classifyCheckoutCompleted(event)
	case "customer.subscription.updated":
		return classifySubscriptionUpdated(event)
	case "customer.subscription.deleted":
		return classifySubscriptionCanceled(event)
	case "charge.failed":
		return classifyChargeFailed(event)
	default:
		return Unrecognized{Type: event.Type}, nil
	}
}

func classifyCheckoutCompleted(event *Event) (Transition, error) {
	var obj checkoutSessionObject
	if err := json.Unmarshal(event.Object, &obj); err != nil {
		return nil, &MalformedEventError{EventType: event.Type, Reason: "undecodable object payload"}
	}

	email := firstNonEmpty(obj.CustomerEmail, obj.CustomerInfo.Email, obj.Metadata["email"])
	if email == "" {
		return nil, &MalformedEventError{EventType: event.Type, Field: "customer_email"}
	}
	if strings.TrimSpace(obj.Customer) == "" {
		return nil, &MalformedEventError{EventType: event.Type, Field: "customer"}
	}

	return PaymentCompleted{
		Email:            email,
		StripeCustomerID: strings.TrimSpace(obj.Customer),
		AmountCents:      obj.AmountTotal,
		OccurredAt:       event.OccurredAt,
	}, nil
}

func classifySubscriptionUpdated(event *Event) (Transition, error) {
	var obj subscriptionObject
	if err := json.Unmarshal(event.Object, &obj); err != nil {
		return nil, &MalformedEventError{EventType: event.Type, Reason: "undecodable object payload"}
	}
	if strings.TrimSpace(obj.ID) == "" {
		return nil, &MalformedEventError{EventType: event.Type, Field: "id"}
	}
	email := strings.TrimSpace(obj.Metadata["email"])
	if email == "" {
		return nil, &MalformedEventError{EventType: event.Type, Field: "metadata.email"}
	}

	var periodEnd *time.Time
	if obj.CurrentPeriodEnd > 0 {
		t := time.Unix(obj.CurrentPeriodEnd, 0).UTC()
		periodEnd = &t
	}
	return SubscriptionUpdated{
		Email:          email,
		SubscriptionID: strings.TrimSpace(obj.ID),
		Status:         models.NormalizeSubscriptionStatus(obj.Status),
		PeriodEnd:      periodEnd,
	}, nil
}

func classifySubscriptionCanceled(event *Event) (Transition, error) {
	var obj subscriptionObject
	if err := json.Unmarshal(event.Object, &obj); err != nil {
		return nil, &MalformedEventError{EventType: event.Type, Reason: "undecodable object payload"}
	}
	if strings.TrimSpace(obj.ID) == "" {
		return nil, &MalformedEventError{EventType: event.Type, Field: "id"}
	}
	email := strings.TrimSpace(obj.Metadata["email"])
	if email == "" {
		return nil, &MalformedEventError{EventType: event.Type, Field: "metadata.email"}
	}
	return SubscriptionCanceled{
		Email:          email,
		SubscriptionID: strings.TrimSpace(obj.ID),
	}, nil
}

func classifyChargeFailed(event *Event) (Transition, error) {
	var obj chargeObject
	if err := json.Unmarshal(event.Object, &obj); err != nil {
		return nil, &MalformedEventError{EventType: event.Type, Reason: "undecodable object payload"}
	}
	if strings.TrimSpace(obj.ID) == "" {
		return nil, &MalformedEventError{EventType: event.Type, Field: "id"}
	}
	email := strings.TrimSpace(obj.Metadata["email"])
	if email == "" {
		return nil, &MalformedEventError{EventType: event.Type, Field: "metadata.email"}
	}
	return ChargeFailed{
		Email:      email,
		ChargeID:   strings.TrimSpace(obj.ID),
		Reason:     strings.TrimSpace(obj.FailureMessage),
		OccurredAt: event.OccurredAt,
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
