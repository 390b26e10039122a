package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"storefront/internal/apperrors"
	"storefront/internal/auth"
)

// AdminKeyHeader carries the shared admin credential.
const AdminKeyHeader = "x-admin-key"

// AdminRequired is a Fiber middleware that rejects requests whose admin key
// the checker does not accept.
func AdminRequired(checker auth.CredentialChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !checker.Check(c.Get(AdminKeyHeader)) {
			log.Debug().Str("path", c.Path()).Str("method", c.Method()).Msg("admin key rejected")
			return apperrors.ErrUnauthorized
		}
		return c.Next()
	}
}
