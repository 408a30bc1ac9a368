// FILE: internal/pkg/serverutils/response.go
package serverutils

import (
	"errors"

	"rentora-be/internal/dto"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

type APIResponse[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data,omitempty"`
}

type APIError struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func SuccessResponse[T any](message string, data T) APIResponse[T] {
	return APIResponse[T]{
		Success: true,
		Message: message,
		Data:    data,
	}
}

func ErrorResponse(code int, message string) APIError {
	return APIError{
		Success: false,
		Code:    code,
		Message: message,
	}
}

// ValidateRequest runs struct-tag validation on a request body.
func ValidateRequest(req interface{}) error {
	return validate.Struct(req)
}

// ErrorStatus maps service errors onto HTTP status codes. Unknown errors
// fall through to 500.
func ErrorStatus(err error) int {
	var (
		notFound  *dto.NotFoundError
		invalid   *dto.InvalidStateError
		invariant *dto.InvariantViolationError
		quota     *dto.QuotaExceededError
		valErr    *dto.ValidationError
		upstream  *dto.UpstreamFailureError
	)
	switch {
	case errors.As(err, &notFound):
		return fiber.StatusNotFound
	case errors.As(err, &valErr):
		return fiber.StatusBadRequest
	case errors.As(err, &invalid), errors.As(err, &invariant):
		return fiber.StatusConflict
	case errors.As(err, &quota):
		return fiber.StatusForbidden
	case errors.As(err, &upstream):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// HandleServiceError renders a service error with its mapped status.
func HandleServiceError(ctx *fiber.Ctx, err error) error {
	status := ErrorStatus(err)
	return ctx.Status(status).JSON(ErrorResponse(status, err.Error()))
}
