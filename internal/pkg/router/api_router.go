package router

import (
	"net"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	redisstorage "github.com/gofiber/storage/redis"

	"github.com/flinkpay/payhook/app/controllers"
	"github.com/flinkpay/payhook/internal/pkg/cache"
	"github.com/flinkpay/payhook/internal/pkg/env"
)

// ApiRouter installs the JSON API routes.
type ApiRouter struct {
	webhook  *controllers.WebhookController
	checkout *controllers.CheckoutController
}

// NewApiRouter creates the API router with injected controllers.
func NewApiRouter(webhook *controllers.WebhookController, checkout *controllers.CheckoutController) *ApiRouter {
	return &ApiRouter{webhook: webhook, checkout: checkout}
}

func (h *ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api")
	v1 := api.Group("/v1")

	v1.Get("/ping", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ping": "pong"})
	})

	// The webhook route is deliberately outside the limiter: the provider
	// bursts redeliveries and authenticates via signature instead.
	v1.Post("/webhooks/stripe", h.webhook.HandleStripeWebhook)

	checkoutGroup := v1.Group("/checkout", limiter.New(limiter.Config{
		Max:        30,
		Expiration: 1 * time.Minute,
		Storage:    newLimiterStorage(),
	}))
	checkoutGroup.Post("/sessions", h.checkout.HandleCreateSession)
}

// newLimiterStorage backs the rate limiter with the shared Redis instance so
// limits hold across replicas. Reuses the cache client's address (cache uses
// DB 0, limiter DB 1).
func newLimiterStorage() fiber.Storage {
	client := cache.GetClient()

	host := "localhost"
	port := 6379
	if h, p, err := net.SplitHostPort(client.Options().Addr); err == nil {
		host = h
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}
	return redisstorage.New(redisstorage.Config{
		Host:     host,
		Port:     port,
		Password: env.GetEnv("CACHE_PASSWORD", ""),
		Database: 1,
		Reset:    false,
	})
}
