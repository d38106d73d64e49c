package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"
)

const testSecret = "whsec_test_secret"

func hmacHex(payload []byte, secret string, ts time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", ts.Unix())
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func signPayload(t *testing.T, payload []byte, secret string, ts time.Time) string {
	t.Helper()
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hmacHex(payload, secret, ts))
}

func TestVerifySignatureValid(t *testing.T) {
	now := time.Unix(1700000000, 0)
	payload := []byte(`{"id":"evt_1","type":"charge.failed"}`)
	header := signPayload(t, payload, testSecret, now)

	if err := verifySignatureAt(payload, header, testSecret, DefaultTolerance, now); err != nil {
		t.Fatalf("expected valid signature, got %v", err)
	}
}

func TestVerifySignatureMultipleCandidates(t *testing.T) {
	now := time.Unix(1700000000, 0)
	payload := []byte(`{"id":"evt_2"}`)

	// First v1 is from a rotated-out secret, second one matches.
	header := fmt.Sprintf("t=%d,v1=%s,v1=%s", now.Unix(),
		hmacHex(payload, "whsec_old", now), hmacHex(payload, testSecret, now))

	if err := verifySignatureAt(payload, header, testSecret, DefaultTolerance, now); err != nil {
		t.Fatalf("expected one matching candidate to verify, got %v", err)
	}
}

func TestVerifySignatureRejections(t *testing.T) {
	now := time.Unix(1700000000, 0)
	payload := []byte(`{"id":"evt_3"}`)
	header := signPayload(t, payload, testSecret, now)

	tests := []struct {
		name    string
		payload []byte
		header  string
		secret  string
		now     time.Time
	}{
		{"tampered payload", []byte(`{"id":"evt_3","amount":999}`), header, testSecret, now},
		{"wrong secret", payload, header, "whsec_other", now},
		{"expired timestamp", payload, header, testSecret, now.Add(6 * time.Minute)},
		{"future timestamp", payload, header, testSecret, now.Add(-6 * time.Minute)},
		{"missing header", payload, "", testSecret, now},
		{"missing secret", payload, header, "", now},
		{"header without timestamp", payload, "v1=deadbeef", testSecret, now},
		{"header without signature", payload, fmt.Sprintf("t=%d", now.Unix()), testSecret, now},
		{"garbage timestamp", payload, "t=abc,v1=deadbeef", testSecret, now},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := verifySignatureAt(tc.payload, tc.header, tc.secret, DefaultTolerance, tc.now)
			if err == nil {
				t.Fatalf("expected rejection")
			}
			if _, ok := err.(*AuthError); !ok {
				t.Fatalf("expected *AuthError, got %T", err)
			}
		})
	}
}

func TestVerifySignatureSkipsUnknownSchemes(t *testing.T) {
	now := time.Unix(1700000000, 0)
	payload := []byte(`{"id":"evt_4"}`)
	header := "v0=ignored," + signPayload(t, payload, testSecret, now)

	if err := verifySignatureAt(payload, header, testSecret, DefaultTolerance, now); err != nil {
		t.Fatalf("expected v0 entries to be skipped, got %v", err)
	}
}

func TestVerifySignatureWithinTolerance(t *testing.T) {
	now := time.Unix(1700000000, 0)
	payload := []byte(`{"id":"evt_5"}`)
	header := signPayload(t, payload, testSecret, now)

	// 4 minutes old is inside the default 5 minute window.
	if err := verifySignatureAt(payload, header, testSecret, DefaultTolerance, now.Add(4*time.Minute)); err != nil {
		t.Fatalf("expected signature within tolerance to verify, got %v", err)
	}
}
