package webhook

import "fmt"

// AuthError reports a missing, malformed, expired or mismatched signature.
// It is an authentication failure and is acknowledged as a client error so
// the provider does not change its payload and retry blindly.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return "webhook authentication failed: " + e.Reason
}

// MalformedEventError reports a payload that passed signature verification
// but cannot be interpreted: invalid JSON or a known event type missing a
// required field. Distinct from an unrecognized event type, which is
// acknowledged successfully without mutation.
type MalformedEventError struct {
	EventType string
	Field     string
	Reason    string
}

func (e *MalformedEventError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("malformed %s event: missing %s", e.EventType, e.Field)
	}
	return fmt.Sprintf("malformed event: %s", e.Reason)
}
