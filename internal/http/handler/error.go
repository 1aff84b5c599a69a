package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"campusapi/internal/http/middleware"
	"campusapi/internal/pkg/logger"
	"campusapi/internal/repository"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "INVALID_ID", "NOT_FOUND", "PROCESSING_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	res := errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	}
	return c.Status(status).JSON(res)
}

// writeRepoError maps the repository taxonomy onto HTTP. The messages of
// NotFoundError and ProcessingError name the table and the key only, so
// they are returned as is.
func writeRepoError(c *fiber.Ctx, err error) error {
	var nf *repository.NotFoundError
	var pe *repository.ProcessingError

	switch {
	case errors.As(err, &nf):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", nf.Error())
	case errors.As(err, &pe) && pe.Kind == repository.StoreFailure:
		return writeError(c, fiber.StatusServiceUnavailable, "STORE_UNAVAILABLE", pe.Error())
	case errors.As(err, &pe):
		return writeError(c, fiber.StatusUnprocessableEntity, "PROCESSING_ERROR", pe.Error())
	default:
		logger.WithComponent("http").Error().
			Str("request_id", requestIDFromCtx(c)).
			Err(err).
			Msg("unmapped repository error")
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "BODY_TOO_LARGE", "request body too large")
		case fiber.StatusUnprocessableEntity:
			return writeError(c, status, "PROCESSING_ERROR", "request could not be processed")
		case fiber.StatusServiceUnavailable:
			return writeError(c, status, "SERVICE_UNAVAILABLE", "dependency unavailable")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
