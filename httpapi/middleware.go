package httpapi

import (
	"strings"
	"time"

	"decryptzone/identity"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

const bearerPrefix = "Bearer "

// identityMiddleware resolves the caller. A request without an Authorization header
// is anonymous; a header that does not verify is rejected with 401.
func identityMiddleware(verifier TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return c.Next()
		}

		if !strings.HasPrefix(header, bearerPrefix) {
			return fiber.NewError(fiber.StatusUnauthorized, "authorization header must use the Bearer scheme")
		}

		who, err := verifier.Verify(strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix)))
		if err != nil {
			log.WithFields(log.Fields{
				"requestID": requestID(c),
				"error":     err,
			}).Debug("Rejected bearer token")
			return fiber.NewError(fiber.StatusUnauthorized, "invalid session token")
		}

		c.SetUserContext(identity.WithIdentity(c.UserContext(), who))
		return c.Next()
	}
}

func accessLog() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else if status < fiber.StatusBadRequest {
				status = fiber.StatusInternalServerError
			}
		}

		log.WithFields(log.Fields{
			"requestID":   requestID(c),
			"method":      c.Method(),
			"path":        c.Path(),
			"status":      status,
			"duration_ms": time.Since(start).Milliseconds(),
		}).Info("HTTP request")
		return err
	}
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return ""
}

func caller(c *fiber.Ctx) *identity.Identity {
	return identity.FromContext(c.UserContext())
}
