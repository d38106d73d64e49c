package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/flinkpay/payhook/internal/pkg/webhook"
)

// WebhookController exposes the provider webhook endpoint. The route accepts
// POST only; the raw request bytes go into signature verification untouched,
// never a re-serialized body.
type WebhookController struct {
	dispatcher *webhook.Dispatcher
}

// NewWebhookController creates a webhook controller with an injected dispatcher.
func NewWebhookController(dispatcher *webhook.Dispatcher) *WebhookController {
	return &WebhookController{dispatcher: dispatcher}
}

// HandleStripeWebhook processes one inbound event delivery.
func (wc *WebhookController) HandleStripeWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)
	signature := c.Get("Stripe-Signature")

	result := wc.dispatcher.Dispatch(c.UserContext(), rawBody, signature)
	switch result.Outcome {
	case webhook.OutcomeRejectedAuth:
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid_signature"})
	case webhook.OutcomeRejectedMalformed:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_payload"})
	case webhook.OutcomeFailed:
		// Non-2xx makes the provider redeliver; that is the retry strategy.
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "webhook_processing_failed"})
	}

	resp := fiber.Map{"received": true}
	if result.Duplicate {
		resp["duplicate"] = true
	}
	if result.Ignored {
		resp["ignored"] = true
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}
