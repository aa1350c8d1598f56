package middleware

import (
	"errors"

	"go-doc-ledger/internal/logger"
	"go-doc-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ErrorHandler maps ledger error kinds onto HTTP statuses and keeps 500s sanitized.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}

	status := StatusFor(err)
	body := fiber.Map{"error": err.Error()}

	var le *service.LedgerError
	if errors.As(err, &le) {
		body["kind"] = le.Kind.Error()
		if le.Field != "" {
			body["field"] = le.Field
		}
		if le.DocumentID != uuid.Nil {
			body["document_id"] = le.DocumentID
		}
	}

	if status == fiber.StatusInternalServerError {
		logger.LogError("middleware", "ErrorHandler", c.Method()+" "+c.Path(), body, err)
		if le == nil || !errors.Is(err, service.ErrConsistency) {
			body = fiber.Map{"error": "internal server error"}
		}
	}
	return c.Status(status).JSON(body)
}

// StatusFor returns the HTTP status for an error returned by the services.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrConfiguration):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, service.ErrConflict):
		return fiber.StatusConflict
	case errors.Is(err, service.ErrForbidden), errors.Is(err, service.ErrTenantInactive):
		return fiber.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}
