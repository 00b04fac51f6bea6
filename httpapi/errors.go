package httpapi

import (
	"errors"

	"decryptzone/service"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

var errBadBody = errors.New("invalid request body")

// errorHandler maps ledger errors onto HTTP status codes
func errorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := "internal server error"

	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		status = fe.Code
		message = fe.Message
	case errors.Is(err, service.ErrUnauthorized):
		status, message = fiber.StatusUnauthorized, "sign in to submit solves"
	case errors.Is(err, service.ErrUserNotFound):
		status, message = fiber.StatusNotFound, "user not found"
	case errors.Is(err, service.ErrInvalidPoints),
		errors.Is(err, service.ErrUnknownChallenge),
		errors.Is(err, service.ErrPointsMismatch),
		errors.Is(err, errBadBody):
		status, message = fiber.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrIntegrityViolation):
		log.WithFields(log.Fields{
			"requestID": requestID(c),
			"path":      c.Path(),
			"error":     err,
		}).Error("Duplicate user records for one subject")
	default:
		log.WithFields(log.Fields{
			"requestID": requestID(c),
			"path":      c.Path(),
			"error":     err,
		}).Error("Request failed")
	}

	return c.Status(status).JSON(fiber.Map{"error": message})
}
