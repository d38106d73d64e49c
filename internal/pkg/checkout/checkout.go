package checkout

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/flinkpay/payhook/internal/pkg/payments"
)

// Checkout modes the initiator accepts.
const (
	ModePayment      = "payment"
	ModeSubscription = "subscription"
)

// Request is the client-originated purchase request.
type Request struct {
	PriceReference string `json:"priceReference" validate:"required"`
	CustomerEmail  string `json:"customerEmail" validate:"required"`
	Mode           string `json:"mode" validate:"omitempty,oneof=payment subscription"`
}

// Initiator validates purchase requests and opens provider-side checkout
// sessions. The provider client is injected once at startup.
type Initiator struct {
	provider payments.Provider
	siteURL  string
	validate *validator.Validate
}

// NewInitiator creates a checkout initiator. siteURL is the base for the
// success and cancellation redirect targets.
func NewInitiator(provider payments.Provider, siteURL string) *Initiator {
	return &Initiator{
		provider: provider,
		siteURL:  strings.TrimRight(siteURL, "/"),
		validate: validator.New(),
	}
}

// CreateSession validates the request and opens a provider session. No
// provider call is made when validation fails.
func (i *Initiator) CreateSession(ctx context.Context, req Request) (*payments.Session, error) {
	req.PriceReference = strings.TrimSpace(req.PriceReference)
	req.CustomerEmail = strings.TrimSpace(req.CustomerEmail)
	req.Mode = strings.TrimSpace(req.Mode)
	if req.Mode == "" {
		req.Mode = ModeSubscription
	}

	if err := i.validate.Struct(req); err != nil {
		return nil, translateValidationError(err)
	}
	if !isEmailShaped(req.CustomerEmail) {
		return nil, &ValidationError{Field: "customerEmail", Message: "invalid email"}
	}

	session, err := i.provider.CreateCheckoutSession(ctx, payments.SessionParams{
		PriceID:       req.PriceReference,
		CustomerEmail: req.CustomerEmail,
		Mode:          req.Mode,
		SuccessURL:    i.siteURL + "/dashboard?success=true",
		CancelURL:     i.siteURL + "/?canceled=true",
		Metadata: map[string]string{
			"email":     req.CustomerEmail,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		var rejection *payments.RejectionError
		if errors.As(err, &rejection) {
			return nil, &ValidationError{Field: "priceReference", Message: rejection.Message}
		}
		return nil, &ProviderError{Detail: err.Error()}
	}
	return session, nil
}

func translateValidationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		switch fieldErrs[0].Field() {
		case "PriceReference":
			return &ValidationError{Field: "priceReference", Message: "missing priceReference"}
		case "CustomerEmail":
			return &ValidationError{Field: "customerEmail", Message: "missing customerEmail"}
		case "Mode":
			return &ValidationError{Field: "mode", Message: "invalid mode"}
		}
	}
	return &ValidationError{Field: "", Message: "invalid request"}
}

// isEmailShaped is a conservative shape check, not deliverability
// verification: exactly one @, non-empty local and domain parts, and at
// least one dot inside the domain.
func isEmailShaped(email string) bool {
	at := strings.Index(email, "@")
	if at <= 0 || at != strings.LastIndex(email, "@") {
		return false
	}
	domain := email[at+1:]
	if domain == "" || strings.ContainsAny(email, " \t") {
		return false
	}
	dot := strings.Index(domain, ".")
	return dot > 0 && dot < len(domain)-1
}
