package server

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/internal/common"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// JSON writes v with the given status.
func JSON(c *fiber.Ctx, status int, v any) error {
	return c.Status(status).JSON(v)
}

// Error writes an ErrorResponse with the given status.
func Error(c *fiber.Ctx, status int, message string) error {
	return JSON(c, status, ErrorResponse{Message: message, RequestID: requestID(c)})
}

// StatusFor maps an application error to an HTTP status and a client-safe message.
func StatusFor(err error) (int, string) {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code, fe.Message
	}
	switch {
	case common.IsClientError(err):
		return fiber.StatusBadRequest, common.RejectionMessage(err)
	case errors.Is(err, common.ErrReformatterMissing):
		return fiber.StatusServiceUnavailable, "reformatter not configured"
	case errors.Is(err, common.ErrNotFound):
		return fiber.StatusNotFound, "not found"
	}
	var ae *common.AppError
	if errors.As(err, &ae) && ae.Code == common.CodeUnavailable {
		return fiber.StatusBadGateway, ae.Message
	}
	return fiber.StatusInternalServerError, "internal error"
}

// ErrorHandler is the fiber.Config ErrorHandler; it keeps every error body in ErrorResponse form.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status, msg := StatusFor(err)
	return Error(c, status, msg)
}
