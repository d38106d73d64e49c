package main

import (
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/flinkpay/payhook/app/controllers"
	"github.com/flinkpay/payhook/app/repository"
	"github.com/flinkpay/payhook/internal/pkg/cache"
	"github.com/flinkpay/payhook/internal/pkg/checkout"
	"github.com/flinkpay/payhook/internal/pkg/database"
	"github.com/flinkpay/payhook/internal/pkg/env"
	"github.com/flinkpay/payhook/internal/pkg/payments"
	"github.com/flinkpay/payhook/internal/pkg/reconcile"
	"github.com/flinkpay/payhook/internal/pkg/router"
	"github.com/flinkpay/payhook/internal/pkg/webhook"
)

func main() {
	app := NewApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

// NewApplication builds the Fiber app with all dependencies constructed once
// and injected. The provider SDK and store clients live here, not in ambient
// package state.
func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()

	repository.InitializeFactory(database.GetDB())
	repos := repository.GetGlobalRepositories()

	reconciler := reconcile.NewService(repos)
	dispatcher := webhook.NewDispatcher(
		env.GetEnv("STRIPE_WEBHOOK_SECRET", ""),
		envSeconds("STRIPE_WEBHOOK_TOLERANCE_SECONDS", 300),
		envSeconds("WEBHOOK_TIMEOUT_SECONDS", 15),
		reconciler,
		repos.WebhookEvent,
	)

	provider := payments.NewStripeProvider(env.GetEnv("STRIPE_SECRET_KEY", ""))
	initiator := checkout.NewInitiator(provider, env.GetEnv("SITE_URL", "http://localhost:3000"))

	app := fiber.New(fiber.Config{
		BodyLimit: 1 << 20, // webhook and checkout payloads are small JSON
	})
	app.Use(recover.New(), logger.New())
	app.Get("/metrics", monitor.New())

	// SWAGGER / OPENAPI
	openAPICfg := swagger.Config{
		BasePath: "/docs/api/",
		FilePath: "./public/docs/v1/openapi.yml",
		Path:     "v1",
	}
	app.Use(swagger.New(openAPICfg))

	// ROUTER
	router.InstallRouter(app, router.NewApiRouter(
		controllers.NewWebhookController(dispatcher),
		controllers.NewCheckoutController(initiator),
	))

	return app
}

func envSeconds(key string, def int) time.Duration {
	raw := env.GetEnv(key, "")
	if raw == "" {
		return time.Duration(def) * time.Second
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		log.Printf("invalid %s=%q, using %ds", key, raw, def)
		return time.Duration(def) * time.Second
	}
	return time.Duration(v) * time.Second
}
