package webhook

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flinkpay/payhook/app/models"
)

func TestParseEvent(t *testing.T) {
	payload := []byte(`{
		"id": "evt_123",
		"type": "checkout.session.completed",
		"created": 1700000000,
		"data": {"object": {"id": "cs_1"}}
	}`)

	event, err := ParseEvent(payload)
	require.NoError(t, err)
	assert.Equal(t, "evt_123", event.ID)
	assert.Equal(t, "checkout.session.completed", event.Type)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), event.OccurredAt)
	assert.NotEmpty(t, event.Object)
}

func TestParseEventInvalidJSON(t *testing.T) {
	_, err := ParseEvent([]byte(`{"id": "evt_1", "type":`))
	require.Error(t, err)
	assert.IsType(t, &MalformedEventError{}, err)
}

func TestParseEventMissingType(t *testing.T) {
	_, err := ParseEvent([]byte(`{"id": "evt_1", "data": {"object": {}}}`))
	require.Error(t, err)
	assert.IsType(t, &MalformedEventError{}, err)
}

func TestClassifyCheckoutCompleted(t *testing.T) {
	event := &Event{
		ID:         "evt_1",
		Type:       "checkout.session.completed",
		OccurredAt: time.Unix(1700000000, 0).UTC(),
		Object: []byte(`{
			"id": "cs_1",
			"customer": "cus_42",
			"customer_email": "buyer@example.com",
			"amount_total": 4900
		}`),
	}

	transition, err := Classify(event)
	require.NoError(t, err)

	payment, ok := transition.(PaymentCompleted)
	require.True(t, ok, "expected PaymentCompleted, got %T", transition)
	assert.Equal(t, "buyer@example.com", payment.Email)
	assert.Equal(t, "cus_42", payment.StripeCustomerID)
	assert.Equal(t, int64(4900), payment.AmountCents)
	assert.Equal(t, event.OccurredAt, payment.OccurredAt)
}

func TestClassifyCheckoutEmailFallbacks(t *testing.T) {
	tests := []struct {
		name   string
		object string
		email  string
	}{
		{
			"customer_details email",
			`{"id":"cs_1","customer":"cus_1","customer_details":{"email":"details@example.com"}}`,
			"details@example.com",
		},
		{
			"metadata email",
			`{"id":"cs_1","customer":"cus_1","metadata":{"email":"meta@example.com"}}`,
			"meta@example.com",
		},
		{
			"top level wins over metadata",
			`{"id":"cs_1","customer":"cus_1","customer_email":"top@example.com","metadata":{"email":"meta@example.com"}}`,
			"top@example.com",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			transition, err := Classify(&Event{Type: "checkout.session.completed", Object: []byte(tc.object)})
			require.NoError(t, err)
			payment, ok := transition.(PaymentCompleted)
			require.True(t, ok)
			assert.Equal(t, tc.email, payment.Email)
		})
	}
}

func TestClassifyCheckoutMissingFields(t *testing.T) {
	tests := []struct {
		name   string
		object string
		field  string
	}{
		{"no email anywhere", `{"id":"cs_1","customer":"cus_1"}`, "customer_email"},
		{"no customer id", `{"id":"cs_1","customer_email":"a@b.com"}`, "customer"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Classify(&Event{Type: "checkout.session.completed", Object: []byte(tc.object)})
			require.Error(t, err)
			malformed, ok := err.(*MalformedEventError)
			require.True(t, ok, "expected *MalformedEventError, got %T", err)
			assert.Equal(t, tc.field, malformed.Field)
		})
	}
}

func TestClassifySubscriptionUpdated(t *testing.T) {
	transition, err := Classify(&Event{
		Type: "customer.subscription.updated",
		Object: []byte(`{
			"id": "sub_9",
			"status": "ACTIVE",
			"current_period_end": 1701000000,
			"metadata": {"email": "sub@example.com"}
		}`),
	})
	require.NoError(t, err)

	updated, ok := transition.(SubscriptionUpdated)
	require.True(t, ok, "expected SubscriptionUpdated, got %T", transition)
	assert.Equal(t, "sub@example.com", updated.Email)
	assert.Equal(t, "sub_9", updated.SubscriptionID)
	assert.Equal(t, models.SubscriptionStatusActive, updated.Status)
	require.NotNil(t, updated.PeriodEnd)
	assert.Equal(t, time.Unix(1701000000, 0).UTC(), *updated.PeriodEnd)
}

func TestClassifySubscriptionUpdatedUnknownStatus(t *testing.T) {
	transition, err := Classify(&Event{
		Type:   "customer.subscription.updated",
		Object: []byte(`{"id":"sub_9","status":"weird","metadata":{"email":"a@b.com"}}`),
	})
	require.NoError(t, err)

	updated := transition.(SubscriptionUpdated)
	assert.Equal(t, models.SubscriptionStatusIncomplete, updated.Status)
	assert.Nil(t, updated.PeriodEnd)
}

func TestClassifySubscriptionRequiresMetadataEmail(t *testing.T) {
	for _, eventType := range []string{"customer.subscription.updated", "customer.subscription.deleted"} {
		t.Run(eventType, func(t *testing.T) {
			_, err := Classify(&Event{Type: eventType, Object: []byte(`{"id":"sub_9","status":"active"}`)})
			require.Error(t, err)
			malformed, ok := err.(*MalformedEventError)
			require.True(t, ok)
			assert.Equal(t, "metadata.email", malformed.Field)
		})
	}
}

func TestClassifySubscriptionCanceled(t *testing.T) {
	transition, err := Classify(&Event{
		Type:   "customer.subscription.deleted",
		Object: []byte(`{"id":"sub_9","metadata":{"email":"gone@example.com"}}`),
	})
	require.NoError(t, err)

	canceled, ok := transition.(SubscriptionCanceled)
	require.True(t, ok, "expected SubscriptionCanceled, got %T", transition)
	assert.Equal(t, "gone@example.com", canceled.Email)
	assert.Equal(t, "sub_9", canceled.SubscriptionID)
}

func TestClassifyChargeFailed(t *testing.T) {
	occurred := time.Unix(1700000000, 0).UTC()
	transition, err := Classify(&Event{
		Type:       "charge.failed",
		OccurredAt: occurred,
		Object:     []byte(`{"id":"ch_1","failure_message":"card_declined","metadata":{"email":"fail@example.com"}}`),
	})
	require.NoError(t, err)

	failed, ok := transition.(ChargeFailed)
	require.True(t, ok, "expected ChargeFailed, got %T", transition)
	assert.Equal(t, "fail@example.com", failed.Email)
	assert.Equal(t, "ch_1", failed.ChargeID)
	assert.Equal(t, "card_declined", failed.Reason)
	assert.Equal(t, occurred, failed.OccurredAt)
}

func TestClassifyUnrecognizedType(t *testing.T) {
	transition, err := Classify(&Event{Type: "invoice.finalized", Object: []byte(`{}`)})
	require.NoError(t, err)

	unrecognized, ok := transition.(Unrecognized)
	require.True(t, ok, "expected Unrecognized, got %T", transition)
	assert.Equal(t, "invoice.finalized", unrecognized.Type)
}

func TestClassifyUndecodableObject(t *testing.T) {
	for _, eventType := range []string{
		"checkout.session.completed",
		"customer.subscription.updated",
		"customer.subscription.deleted",
		"charge.failed",
	} {
		t.Run(eventType, func(t *testing.T) {
			_, err := Classify(&Event{Type: eventType, Object: []byte(`"not an object"`)})
			require.Error(t, err)
			assert.IsType(t, &MalformedEventError{}, err)
		})
	}
}
