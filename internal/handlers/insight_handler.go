package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storefront/internal/services"
)

// InsightHandler serves the read-only catalog views.
type InsightHandler struct {
	service *services.InsightService
}

// NewInsightHandler creates a new InsightHandler.
func NewInsightHandler(service *services.InsightService) *InsightHandler {
	return &InsightHandler{service: service}
}

// RegisterRoutes registers the view routes.
func (h *InsightHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/stats", h.HandleStats)
	router.Get("/dashboard", h.HandleDashboard)
	router.Get("/recommendations", h.HandleRecommendations)
	router.Get("/home", h.HandleHome)
	router.Get("/products/:slug/page", h.HandleProductPage)
}

func (h *InsightHandler) HandleStats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": stats})
}

func (h *InsightHandler) HandleDashboard(c *fiber.Ctx) error {
	dashboard, err := h.service.Dashboard(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": dashboard})
}

func (h *InsightHandler) HandleRecommendations(c *fiber.Ctx) error {
	recs, err := h.service.Recommendations(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": recs})
}

func (h *InsightHandler) HandleHome(c *fiber.Ctx) error {
	home, err := h.service.HomePage(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": home})
}

func (h *InsightHandler) HandleProductPage(c *fiber.Ctx) error {
	page, err := h.service.ProductPage(c.UserContext(), c.Params("slug"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": page})
}
