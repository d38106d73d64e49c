package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// DefaultTolerance bounds the age of a signed payload. Stripe signs the
// timestamp into the digest, so replaying an old delivery with a valid
// signature fails the tolerance check instead of the digest check.
const DefaultTolerance = 5 * time.Minute

// VerifySignature authenticates payload against a Stripe-Signature header
// ("t=<unix>,v1=<hex>[,v1=<hex>...]"). The digest is HMAC-SHA256 over
// "<t>.<payload>" keyed with secret; every v1 candidate is compared in
// constant time so providers can rotate secrets without dropping deliveries.
func VerifySignature(payload []byte, header, secret string, tolerance time.Duration) error {
	return verifySignatureAt(payload, header, secret, tolerance, time.Now())
}

func verifySignatureAt(payload []byte, header, secret string, tolerance time.Duration, now time.Time) error {
	if strings.TrimSpace(secret) == "" {
		return &AuthError{Reason: "webhook secret is not configured"}
	}
	if strings.TrimSpace(header) == "" {
		return &AuthError{Reason: "missing signature header"}
	}
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}

	timestamp, candidates, err := parseSignatureHeader(header)
	if err != nil {
		return err
	}

	age := now.Sub(time.Unix(timestamp, 0))
	if age > tolerance || age < -tolerance {
		return &AuthError{Reason: "signature timestamp outside tolerance"}
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(timestamp, 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := mac.Sum(nil)

	for _, candidate := range candidates {
		if hmac.Equal(expected, candidate) {
			return nil
		}
	}
	return &AuthError{Reason: "no matching signature"}
}

// parseSignatureHeader splits "t=...,v1=...,v1=..." into the signed timestamp
// and the decoded v1 signatures. Unknown schemes (v0) are skipped.
func parseSignatureHeader(header string) (int64, [][]byte, error) {
	var timestamp int64 = -1
	var candidates [][]byte

	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			ts, err := strconv.ParseInt(kv[1], 10, 64)
			if err != nil {
				return 0, nil, &AuthError{Reason: "malformed signature timestamp"}
			}
			timestamp = ts
		case "v1":
			sig, err := hex.DecodeString(kv[1])
			if err != nil {
				continue
			}
			candidates = append(candidates, sig)
		}
	}

	if timestamp < 0 {
		return 0, nil, &AuthError{Reason: "signature header missing timestamp"}
	}
	if len(candidates) == 0 {
		return 0, nil, &AuthError{Reason: "signature header missing v1 signature"}
	}
	return timestamp, candidates, nil
}
