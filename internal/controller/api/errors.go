package api

import (
	"errors"
	"strings"

	"github.com/Freeeeeet/mytrackly_booking/internal/service"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Коды ошибок в теле ответа
const (
	codeValidation        = "validation_error"
	codeUnauthenticated   = "unauthenticated"
	codeForbidden         = "forbidden"
	codeNotFound          = "not_found"
	codeInvalidTransition = "invalid_transition"
	codeSlotConflict      = "slot_conflict"
	codeInternal          = "internal_error"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func writeUnauthenticated(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(errorResponse{Error: codeUnauthenticated, Message: message})
}

func writeBadRequest(c *fiber.Ctx, field, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: codeValidation, Field: field, Message: message})
}

// writeRequestError ответ на ошибку валидатора тела запроса
func writeRequestError(c *fiber.Ctx, err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		fe := validationErrs[0]
		return writeBadRequest(c, fieldPath(fe.Namespace()), "failed on '"+fe.Tag()+"' rule")
	}
	return writeBadRequest(c, "", err.Error())
}

// fieldPath убирает имя структуры: createReservationRequest.startDateTime -> startDateTime
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

// writeServiceError переводит ошибку сервиса в HTTP статус
func writeServiceError(c *fiber.Ctx, logger *zap.Logger, err error) error {
	var validationErr *service.ValidationError

	switch {
	case errors.As(err, &validationErr):
		return writeBadRequest(c, validationErr.Path(), validationErr.Reason)
	case errors.Is(err, service.ErrValidation):
		return writeBadRequest(c, "", err.Error())
	case errors.Is(err, service.ErrUnauthenticated):
		return writeUnauthenticated(c, err.Error())
	case errors.Is(err, service.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(errorResponse{Error: codeForbidden, Message: err.Error()})
	case errors.Is(err, service.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(errorResponse{Error: codeNotFound, Message: err.Error()})
	case errors.Is(err, service.ErrInvalidTransition):
		return c.Status(fiber.StatusConflict).JSON(errorResponse{Error: codeInvalidTransition, Message: err.Error()})
	case errors.Is(err, service.ErrSlotConflict):
		return c.Status(fiber.StatusConflict).JSON(errorResponse{Error: codeSlotConflict, Message: err.Error()})
	}

	logger.Error("Request failed",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err))

	return c.Status(fiber.StatusInternalServerError).JSON(errorResponse{Error: codeInternal, Message: "internal server error"})
}
