package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"fileapi/internal/http/middleware"
	"fileapi/internal/service"
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
	if v, ok := c.Locals(middleware.RequestIDLocalKey).(string); ok {
		return v
	}
	return ""
}

// writeError writes a standardized JSON error response without leaking internal errors.
// code is machine-readable (e.g. "INVALID_ID", "NOT_FOUND"); message is safe for clients.
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	})
}

type errorMapping struct {
	err     error
	status  int
	code    string
	message string
}

// serviceErrors is matched in order; the first errors.Is hit wins.
var serviceErrors = []errorMapping{
	{service.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND", "file not found"},
	{service.ErrOwnerNotFound, fiber.StatusNotFound, "OWNER_NOT_FOUND", "owner not found"},
	{service.ErrOwnerNotPersisted, fiber.StatusNotFound, "OWNER_NOT_FOUND", "owner not found"},
	{service.ErrOwnerExists, fiber.StatusConflict, "OWNER_EXISTS", "owner already exists"},
	{service.ErrOwnerRequired, fiber.StatusBadRequest, "OWNER_REQUIRED", "owner kind and id are required"},
	{service.ErrSourceRequired, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required"},
	{service.ErrSourceTooLarge, fiber.StatusRequestEntityTooLarge, "SOURCE_TOO_LARGE", "file is too large"},
	{service.ErrSourceNotFound, fiber.StatusUnprocessableEntity, "SOURCE_UNREADABLE", "file could not be read"},
	{service.ErrSourceUnreadable, fiber.StatusUnprocessableEntity, "SOURCE_UNREADABLE", "file could not be read"},
	{service.ErrStoreVetoed, fiber.StatusUnprocessableEntity, "STORE_VETOED", "file was rejected"},
	{service.ErrStoreFailed, fiber.StatusBadGateway, "STORE_FAILED", "storage unavailable"},
	{service.ErrUniquenessViolation, fiber.StatusConflict, "CONFLICT", "file already exists"},
	{service.ErrCascadeDeleteFailed, fiber.StatusBadGateway, "CASCADE_DELETE_FAILED", "owner files could not be deleted"},
}

// writeServiceError maps service errors onto the HTTP error envelope.
func writeServiceError(c *fiber.Ctx, err error) error {
	for _, m := range serviceErrors {
		if errors.Is(err, m.err) {
			return writeError(c, m.status, m.code, m.message)
		}
	}
	return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "SOURCE_TOO_LARGE", "request body too large")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
