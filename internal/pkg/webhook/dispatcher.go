package webhook

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log"
	"time"

	"github.com/flinkpay/payhook/app/models"
	"github.com/flinkpay/payhook/app/repository"
	"github.com/flinkpay/payhook/internal/pkg/cache"
	"github.com/flinkpay/payhook/internal/pkg/reconcile"
)

// Outcome is the terminal state of one dispatch pass.
type Outcome int

const (
	// OutcomeAcknowledged tells the provider to stop redelivering. Covers
	// applied transitions, duplicates and intentionally ignored event types.
	OutcomeAcknowledged Outcome = iota
	// OutcomeRejectedAuth is a failed signature check (client error).
	OutcomeRejectedAuth
	// OutcomeRejectedMalformed is a verified but unparsable event (client error).
	OutcomeRejectedMalformed
	// OutcomeFailed is a store-level failure (server error); the provider's
	// redelivery mechanism is the retry strategy.
	OutcomeFailed
)

// Result describes how a delivery was handled.
type Result struct {
	Outcome   Outcome
	EventType string
	Ignored   bool
	Duplicate bool
	Err       error
}

const duplicateMarkerTTL = 24 * time.Hour

// Dispatcher runs one inbound delivery through verification, classification
// and reconciliation. It holds no mutable state of its own; concurrent
// deliveries share nothing but the store, which the repositories protect with
// conditional writes.
type Dispatcher struct {
	secret     string
	tolerance  time.Duration
	timeout    time.Duration
	reconciler *reconcile.Service
	events     repository.WebhookEventRepository
}

// NewDispatcher creates a dispatcher with the webhook secret and the injected
// reconciler and event log.
func NewDispatcher(secret string, tolerance, timeout time.Duration, reconciler *reconcile.Service, events repository.WebhookEventRepository) *Dispatcher {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Dispatcher{
		secret:     secret,
		tolerance:  tolerance,
		timeout:    timeout,
		reconciler: reconciler,
		events:     events,
	}
}

// Dispatch processes one delivery to a terminal outcome. The payload must be
// the exact request bytes; the signature is computed over them, not over a
// re-serialized form.
func (d *Dispatcher) Dispatch(ctx context.Context, rawPayload []byte, signatureHeader string) Result {
	if err := VerifySignature(rawPayload, signatureHeader, d.secret, d.tolerance); err != nil {
		log.Printf("webhook: rejected delivery: %v", err)
		return Result{Outcome: OutcomeRejectedAuth, Err: err}
	}

	event, err := ParseEvent(rawPayload)
	if err != nil {
		return Result{Outcome: OutcomeRejectedMalformed, Err: err}
	}

	eventID := event.ID
	if eventID == "" {
		sum := sha256.Sum256(rawPayload)
		eventID = "hash:" + hex.EncodeToString(sum[:])
	}

	// Fast path for redeliveries we already finished. Best effort only; the
	// reconciler's conditional writes keep duplicates safe without it.
	cacheKey := "webhook:processed:" + eventID
	if val, cacheErr := cache.Get(cacheKey); cacheErr == nil && val != "" {
		return Result{Outcome: OutcomeAcknowledged, EventType: event.Type, Duplicate: true}
	}

	// Every store interaction for this delivery runs under one deadline; an
	// exceeded timeout surfaces as a failed outcome and the provider redelivers.
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	stored := d.recordDelivery(ctx, eventID, event.Type, rawPayload)
	if stored != nil && stored.ProcessedAt != nil && stored.ProcessingError == "" {
		return Result{Outcome: OutcomeAcknowledged, EventType: event.Type, Duplicate: true}
	}

	transition, err := Classify(event)
	if err != nil {
		d.markProcessed(ctx, stored, err)
		return Result{Outcome: OutcomeRejectedMalformed, EventType: event.Type, Err: err}
	}

	switch t := transition.(type) {
	case Unrecognized:
		log.Printf("webhook: unhandled event type %s acknowledged", t.Type)
		d.markProcessed(ctx, stored, nil)
		return Result{Outcome: OutcomeAcknowledged, EventType: event.Type, Ignored: true}
	case PaymentCompleted:
		err = d.reconciler.ApplyPaymentCompleted(ctx, t.Email, t.StripeCustomerID, t.AmountCents, t.OccurredAt)
	case SubscriptionUpdated:
		err = d.reconciler.ApplySubscriptionUpdated(ctx, t.Email, t.SubscriptionID, t.Status, t.PeriodEnd)
	case SubscriptionCanceled:
		err = d.reconciler.ApplySubscriptionCanceled(ctx, t.Email, t.SubscriptionID)
	case ChargeFailed:
		err = d.reconciler.ApplyChargeFailed(ctx, t.Email, t.ChargeID, t.Reason, t.OccurredAt)
	}

	d.markProcessed(ctx, stored, err)
	if err != nil {
		var failure *reconcile.ReconciliationFailure
		if !errors.As(err, &failure) {
			err = &reconcile.ReconciliationFailure{Op: "dispatch", Err: err}
		}
		return Result{Outcome: OutcomeFailed, EventType: event.Type, Err: err}
	}

	_ = cache.Set(cacheKey, "1", duplicateMarkerTTL)
	return Result{Outcome: OutcomeAcknowledged, EventType: event.Type}
}

// recordDelivery writes the durable dedup/audit row. A failure here is not
// fatal: idempotence must hold even without the log, so processing continues.
func (d *Dispatcher) recordDelivery(ctx context.Context, eventID, eventType string, rawPayload []byte) *models.WebhookEvent {
	_, stored, err := d.events.CreateIfAbsent(ctx, &models.WebhookEvent{
		ProviderEventID: eventID,
		EventType:       eventType,
		PayloadJSON:     string(rawPayload),
		SignatureValid:  true,
	})
	if err != nil {
		log.Printf("webhook: recording delivery %s failed: %v", eventID, err)
		return nil
	}
	return stored
}

func (d *Dispatcher) markProcessed(ctx context.Context, stored *models.WebhookEvent, processingErr error) {
	if stored == nil {
		return
	}
	errMsg := ""
	if processingErr != nil {
		errMsg = processingErr.Error()
	}
	if err := d.events.MarkProcessed(ctx, stored.ID, errMsg); err != nil {
		log.Printf("webhook: marking delivery %d processed failed: %v", stored.ID, err)
	}
}
