package repository

import (
	"context"
	"testing"
	"time"

	"github.com/flinkpay/payhook/app/models"
)

func TestPaymentFailureCreateIfAbsent(t *testing.T) {
	ctx := context.Background()
	repo := NewPaymentFailureRepository(newTestDB(t))

	failedAt := time.Unix(1700000000, 0).UTC()
	created, err := repo.CreateIfAbsent(ctx, &models.PaymentFailure{
		Email:          "a@b.com",
		StripeChargeID: "ch_1",
		Reason:         "card_declined",
		FailedAt:       failedAt,
	})
	if err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if !created {
		t.Fatalf("expected the first charge id to create a row")
	}

	created, err = repo.CreateIfAbsent(ctx, &models.PaymentFailure{
		Email:          "a@b.com",
		StripeChargeID: "ch_1",
		Reason:         "card_declined",
		FailedAt:       failedAt,
	})
	if err != nil {
		t.Fatalf("redelivery: %v", err)
	}
	if created {
		t.Fatalf("duplicate charge id must not create a second row")
	}

	failures, err := repo.ListByEmail(ctx, "a@b.com", 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(failures) != 1 {
		t.Fatalf("expected exactly one logged failure, got %d", len(failures))
	}
	if failures[0].Reason != "card_declined" {
		t.Fatalf("unexpected row: %+v", failures[0])
	}
}

func TestPaymentFailureListOrdersNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewPaymentFailureRepository(newTestDB(t))

	older := time.Unix(1700000000, 0).UTC()
	newer := older.Add(time.Hour)
	for id, at := range map[string]time.Time{"ch_old": older, "ch_new": newer} {
		if _, err := repo.CreateIfAbsent(ctx, &models.PaymentFailure{
			Email: "a@b.com", StripeChargeID: id, Reason: "card_declined", FailedAt: at,
		}); err != nil {
			t.Fatalf("insert %s: %v", id, err)
		}
	}

	failures, err := repo.ListByEmail(ctx, "a@b.com", 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(failures) != 2 || failures[0].StripeChargeID != "ch_new" {
		t.Fatalf("expected newest first, got %+v", failures)
	}
}
