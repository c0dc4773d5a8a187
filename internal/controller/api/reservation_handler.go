package api

import (
	"strings"
	"time"

	"github.com/Freeeeeet/mytrackly_booking/internal/model"
	"github.com/Freeeeeet/mytrackly_booking/internal/service"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ReservationHandler struct {
	reservations *service.ReservationService
	validate     *validator.Validate
	logger       *zap.Logger
}

func NewReservationHandler(reservations *service.ReservationService, logger *zap.Logger) *ReservationHandler {
	return &ReservationHandler{
		reservations: reservations,
		validate:     newValidator(),
		logger:       logger,
	}
}

type createReservationRequest struct {
	StartDateTime time.Time `json:"startDateTime" validate:"required"`
	EndDateTime   time.Time `json:"endDateTime" validate:"required,gtfield=StartDateTime"`
	SessionType   string    `json:"sessionType" validate:"required,max=50"`
	Notes         *string   `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

type rescheduleRequest struct {
	StartDateTime time.Time `json:"startDateTime" validate:"required"`
	EndDateTime   time.Time `json:"endDateTime" validate:"required,gtfield=StartDateTime"`
}

// reservationResponse бронь и, при частичном успехе, описание сбоя внешнего сервиса
type reservationResponse struct {
	*model.Reservation
	Degraded string `json:"degraded,omitempty"`
}

func newReservationResponse(result *service.TransitionResult) reservationResponse {
	response := reservationResponse{Reservation: result.Reservation}
	if result.Degraded != nil {
		response.Degraded = result.Degraded.Error()
	}
	return response
}

// List GET /api/reservations?status=pending,confirmed
func (h *ReservationHandler) List(c *fiber.Ctx) error {
	var statuses []model.ReservationStatus
	if raw := c.Query("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			statuses = append(statuses, model.ReservationStatus(strings.TrimSpace(s)))
		}
	}

	reservations, err := h.reservations.List(c.UserContext(), sessionFrom(c), statuses)
	if err != nil {
		return writeServiceError(c, h.logger, err)
	}

	return c.Status(fiber.StatusOK).JSON(reservations)
}

// Create POST /api/reservations
func (h *ReservationHandler) Create(c *fiber.Ctx) error {
	var request createReservationRequest
	if err := c.BodyParser(&request); err != nil {
		return writeBadRequest(c, "", "Cannot parse JSON")
	}

	if err := h.validate.Struct(&request); err != nil {
		return writeRequestError(c, err)
	}

	result, err := h.reservations.Create(c.UserContext(), sessionFrom(c), service.CreateReservationInput{
		StartDateTime: request.StartDateTime,
		EndDateTime:   request.EndDateTime,
		SessionType:   request.SessionType,
		Notes:         request.Notes,
	})
	if err != nil {
		return writeServiceError(c, h.logger, err)
	}

	return c.Status(fiber.StatusCreated).JSON(newReservationResponse(result))
}

// Get GET /api/reservations/:id
func (h *ReservationHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return writeBadRequest(c, "id", "Invalid reservation ID format")
	}

	reservation, err := h.reservations.Get(c.UserContext(), sessionFrom(c), id)
	if err != nil {
		return writeServiceError(c, h.logger, err)
	}

	return c.Status(fiber.StatusOK).JSON(reservation)
}

// Reschedule POST /api/reservations/:id/reschedule
func (h *ReservationHandler) Reschedule(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return writeBadRequest(c, "id", "Invalid reservation ID format")
	}

	var request rescheduleRequest
	if err := c.BodyParser(&request); err != nil {
		return writeBadRequest(c, "", "Cannot parse JSON")
	}

	if err := h.validate.Struct(&request); err != nil {
		return writeRequestError(c, err)
	}

	result, err := h.reservations.Reschedule(c.UserContext(), sessionFrom(c), id, request.StartDateTime, request.EndDateTime)
	if err != nil {
		return writeServiceError(c, h.logger, err)
	}

	return c.Status(fiber.StatusOK).JSON(newReservationResponse(result))
}

type transitionFunc func(svc *service.ReservationService, c *fiber.Ctx, id uuid.UUID) (*service.TransitionResult, error)

// transition общий обработчик accept/refuse/cancel/remind
func (h *ReservationHandler) transition(action transitionFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return writeBadRequest(c, "id", "Invalid reservation ID format")
		}

		result, err := action(h.reservations, c, id)
		if err != nil {
			return writeServiceError(c, h.logger, err)
		}

		return c.Status(fiber.StatusOK).JSON(newReservationResponse(result))
	}
}

func (h *ReservationHandler) Accept() fiber.Handler {
	return h.transition(func(svc *service.ReservationService, c *fiber.Ctx, id uuid.UUID) (*service.TransitionResult, error) {
		return svc.Accept(c.UserContext(), sessionFrom(c), id)
	})
}

func (h *ReservationHandler) Refuse() fiber.Handler {
	return h.transition(func(svc *service.ReservationService, c *fiber.Ctx, id uuid.UUID) (*service.TransitionResult, error) {
		return svc.Refuse(c.UserContext(), sessionFrom(c), id)
	})
}

func (h *ReservationHandler) Cancel() fiber.Handler {
	return h.transition(func(svc *service.ReservationService, c *fiber.Ctx, id uuid.UUID) (*service.TransitionResult, error) {
		return svc.Cancel(c.UserContext(), sessionFrom(c), id)
	})
}

func (h *ReservationHandler) Remind() fiber.Handler {
	return h.transition(func(svc *service.ReservationService, c *fiber.Ctx, id uuid.UUID) (*service.TransitionResult, error) {
		return svc.SendReminder(c.UserContext(), sessionFrom(c), id)
	})
}
