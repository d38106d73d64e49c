package payments

import "context"

// SessionParams describes an outbound checkout session request at the
// provider boundary. All validation happens before this point.
type SessionParams struct {
	PriceID       string
	CustomerEmail string
	Mode          string
	SuccessURL    string
	CancelURL     string
	Metadata      map[string]string
}

// Session is the provider-issued handle the client is redirected to.
type Session struct {
	ID  string
	URL string
}

// Provider is the session-creation side of the payment provider. Constructed
// once at process start and injected; handlers never reach for SDK globals.
type Provider interface {
	CreateCheckoutSession(ctx context.Context, params SessionParams) (*Session, error)
}

// RejectionError is a structured provider rejection of the request itself
// (e.g. an invalid price reference). Callers surface it as user-correctable
// feedback; any other error from the provider is transient infrastructure.
type RejectionError struct {
	Code    string
	Message string
}

func (e *RejectionError) Error() string {
	return "provider rejected request: " + e.Message
}
