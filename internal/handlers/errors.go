package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"storefront/internal/apperrors"
)

// ErrorHandler is the Fiber error handler. It maps error kinds to status
// codes and writes the {"success": false, "error": ...} envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code, message := classify(err)

	event := log.Warn()
	if code >= fiber.StatusInternalServerError {
		event = log.Error()
	}
	event.Err(err).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Int("status", code).
		Msg("request failed")

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

func classify(err error) (int, string) {
	var validationErr *apperrors.ValidationError
	var fiberErr *fiber.Error

	switch {
	case errors.As(err, &validationErr):
		return fiber.StatusBadRequest, validationErr.Error()
	case errors.Is(err, apperrors.ErrUnauthorized):
		return fiber.StatusUnauthorized, "Unauthorized"
	case errors.Is(err, apperrors.ErrNotFound):
		return fiber.StatusNotFound, "Product not found"
	case errors.Is(err, apperrors.ErrDuplicateSlug):
		return fiber.StatusConflict, "Product with this slug already exists"
	case errors.As(err, &fiberErr):
		return fiberErr.Code, fiberErr.Message
	default:
		return fiber.StatusInternalServerError, "Internal server error"
	}
}

func errBadBody(err error) error {
	log.Debug().Err(err).Msg("invalid request body")
	return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
}
