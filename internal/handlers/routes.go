package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storefront/internal/auth"
	"storefront/internal/middleware"
	"storefront/internal/services"
)

// Mount registers the API routes under /api.
func Mount(app *fiber.App, products *services.ProductService, insights *services.InsightService, checker auth.CredentialChecker) {
	api := app.Group("/api")

	NewInsightHandler(insights).RegisterRoutes(api)
	NewProductHandler(products).RegisterRoutes(api, middleware.AdminRequired(checker))
}
