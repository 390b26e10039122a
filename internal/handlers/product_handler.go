package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/apperrors"
	"storefront/internal/models"
	"storefront/internal/services"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service *services.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service: service,
	}
}

// RegisterRoutes registers the product routes. Mutations go through admin.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, admin fiber.Handler) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleListProducts)
	productRoutes.Get("/:slug", h.HandleGetProduct)
	productRoutes.Post("/", admin, h.HandleCreateProduct)
	productRoutes.Put("/:slug", admin, h.HandleUpdateProduct)
	productRoutes.Delete("/:slug", admin, h.HandleDeleteProduct)
	productRoutes.Post("/:slug/revalidate", admin, h.HandleRevalidate)
}

// HandleListProducts lists products, optionally filtered by category and
// search text and capped by limit.
func (h *ProductHandler) HandleListProducts(c *fiber.Ctx) error {
	query := models.ProductQuery{
		Category: models.Category(c.Query("category")),
		Search:   c.Query("q"),
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return apperrors.NewValidationError("Invalid query", map[string]string{
				"limit": "limit must be a non-negative integer",
			})
		}
		query.Limit = limit
	}

	products, err := h.service.ListProducts(c.UserContext(), query)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    products,
		"count":   len(products),
	})
}

// HandleGetProduct returns one product by slug or id.
func (h *ProductHandler) HandleGetProduct(c *fiber.Ctx) error {
	product, err := h.service.GetProduct(c.UserContext(), c.Params("slug"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": product})
}

// HandleCreateProduct creates a product.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var input models.ProductInput
	if err := c.BodyParser(&input); err != nil {
		return errBadBody(err)
	}

	product, err := h.service.CreateProduct(c.UserContext(), input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": product})
}

// HandleUpdateProduct applies a partial update to the product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var patch models.ProductPatch
	if err := c.BodyParser(&patch); err != nil {
		return errBadBody(err)
	}

	product, err := h.service.UpdateProduct(c.UserContext(), c.Params("slug"), patch)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": product})
}

// HandleDeleteProduct deletes the product.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	if err := h.service.DeleteProduct(c.UserContext(), c.Params("slug")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "message": "Product deleted successfully"})
}

// HandleRevalidate drops the cached pages of the product.
func (h *ProductHandler) HandleRevalidate(c *fiber.Ctx) error {
	if err := h.service.Revalidate(c.UserContext(), c.Params("slug")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "message": "Revalidation triggered"})
}
