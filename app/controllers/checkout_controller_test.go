package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flinkpay/payhook/internal/pkg/checkout"
	"github.com/flinkpay/payhook/internal/pkg/payments"
)

type stubProvider struct {
	calls   int
	session *payments.Session
	err     error
}

func (s *stubProvider) CreateCheckoutSession(ctx context.Context, params payments.SessionParams) (*payments.Session, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.session, nil
}

func newCheckoutTestApp(provider payments.Provider) *fiber.App {
	app := fiber.New()
	controller := NewCheckoutController(checkout.NewInitiator(provider, "https://app.example.com"))
	app.Post("/api/v1/checkout/sessions", controller.HandleCreateSession)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(fiber.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestHandleCreateSession(t *testing.T) {
	provider := &stubProvider{session: &payments.Session{ID: "cs_1", URL: "https://checkout.example/cs_1"}}
	app := newCheckoutTestApp(provider)

	resp := postJSON(t, app, "/api/v1/checkout/sessions", fiber.Map{
		"priceReference": "price_123",
		"customerEmail":  "a@b.com",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "cs_1", body["sessionId"])
	assert.Equal(t, "https://checkout.example/cs_1", body["url"])
}

func TestHandleCreateSessionValidationError(t *testing.T) {
	provider := &stubProvider{}
	app := newCheckoutTestApp(provider)

	resp := postJSON(t, app, "/api/v1/checkout/sessions", fiber.Map{
		"customerEmail": "a@b.com",
	})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "missing priceReference", body["error"])
	assert.Equal(t, "priceReference", body["field"])
	assert.Equal(t, 0, provider.calls)
}

func TestHandleCreateSessionInvalidBody(t *testing.T) {
	app := newCheckoutTestApp(&stubProvider{})

	req := httptest.NewRequest(fiber.MethodPost, "/api/v1/checkout/sessions", bytes.NewReader([]byte("{not json")))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHandleCreateSessionProviderFailure(t *testing.T) {
	provider := &stubProvider{err: errors.New("api timeout")}
	app := newCheckoutTestApp(provider)

	resp := postJSON(t, app, "/api/v1/checkout/sessions", fiber.Map{
		"priceReference": "price_123",
		"customerEmail":  "a@b.com",
	})
	require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "failed to create checkout session", body["error"])
	assert.NotContains(t, body, "message", "provider detail is hidden outside dev")
}

func TestHandleCreateSessionProviderRejection(t *testing.T) {
	provider := &stubProvider{err: &payments.RejectionError{Code: "resource_missing", Message: "No such price: price_x"}}
	app := newCheckoutTestApp(provider)

	resp := postJSON(t, app, "/api/v1/checkout/sessions", fiber.Map{
		"priceReference": "price_x",
		"customerEmail":  "a@b.com",
	})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "priceReference", body["field"])
}
