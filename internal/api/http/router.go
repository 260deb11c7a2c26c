package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/mangoesafterplay/customer-onboarding/internal/api/http/handlers"
)

// TokenRouteConfig bundles dependencies for the token authority routes.
type TokenRouteConfig struct {
	Health *handlers.HealthHandler
	Tokens *handlers.TokensHandler
}

// RegisterTokenRoutes wires the token authority HTTP surface.
func RegisterTokenRoutes(app *fiber.App, cfg TokenRouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	tokens := app.Group("/tokens")
	tokens.Post("/generate", cfg.Tokens.Generate)
	tokens.Post("/validate", cfg.Tokens.Validate)
	tokens.Post("/mark-used", cfg.Tokens.MarkUsed)
	tokens.Get("/stats", cfg.Tokens.Stats)
}

// CustomerRouteConfig bundles dependencies for the coordinator routes.
type CustomerRouteConfig struct {
	Health     *handlers.HealthHandler
	Customers  *handlers.CustomersHandler
	Parameters *handlers.ParametersHandler
}

// RegisterCustomerRoutes wires the registration coordinator HTTP surface.
func RegisterCustomerRoutes(app *fiber.App, cfg CustomerRouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	customers := app.Group("/customers")
	customers.Post("/register", cfg.Customers.Register)
	customers.Get("/:id", cfg.Customers.Get)
	customers.Get("/", cfg.Customers.List)

	app.Put("/parameters/:key", cfg.Parameters.Update)
}

// MailerRouteConfig bundles dependencies for the mailer worker routes.
type MailerRouteConfig struct {
	Health *handlers.HealthHandler
	Emails *handlers.EmailsHandler
}

// RegisterMailerRoutes wires the mailer worker's read-only HTTP surface.
func RegisterMailerRoutes(app *fiber.App, cfg MailerRouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	emails := app.Group("/emails")
	emails.Get("/history", cfg.Emails.History)
	emails.Get("/stats", cfg.Emails.Stats)
}
