package controllers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/flinkpay/payhook/internal/pkg/checkout"
	"github.com/flinkpay/payhook/internal/pkg/env"
)

// CheckoutController exposes the client-facing session creation endpoint.
type CheckoutController struct {
	initiator *checkout.Initiator
}

// NewCheckoutController creates a checkout controller with an injected initiator.
func NewCheckoutController(initiator *checkout.Initiator) *CheckoutController {
	return &CheckoutController{initiator: initiator}
}

// HandleCreateSession validates the purchase request and returns the
// provider session handle.
func (cc *CheckoutController) HandleCreateSession(c *fiber.Ctx) error {
	var req checkout.Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON body"})
	}

	session, err := cc.initiator.CreateSession(c.UserContext(), req)
	if err != nil {
		var validationErr *checkout.ValidationError
		if errors.As(err, &validationErr) {
			resp := fiber.Map{"error": validationErr.Message}
			if validationErr.Field != "" {
				resp["field"] = validationErr.Field
			}
			return c.Status(fiber.StatusBadRequest).JSON(resp)
		}

		var providerErr *checkout.ProviderError
		if errors.As(err, &providerErr) {
			log.Printf("checkout: session creation failed: %s", providerErr.Detail)
			resp := fiber.Map{"error": "failed to create checkout session"}
			if env.IsDev() {
				resp["message"] = providerErr.Detail
			}
			return c.Status(fiber.StatusInternalServerError).JSON(resp)
		}

		log.Printf("checkout: unexpected error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create checkout session"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"sessionId": session.ID,
		"url":       session.URL,
	})
}
