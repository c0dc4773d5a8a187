package api

import (
	"github.com/Freeeeeet/mytrackly_booking/internal/model"
	"github.com/Freeeeeet/mytrackly_booking/internal/service"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AvailabilityHandler struct {
	availability *service.AvailabilityService
	slots        *service.SlotService
	validate     *validator.Validate
	logger       *zap.Logger
}

func NewAvailabilityHandler(availability *service.AvailabilityService, slots *service.SlotService, logger *zap.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{
		availability: availability,
		slots:        slots,
		validate:     newValidator(),
		logger:       logger,
	}
}

type availabilitySlotRequest struct {
	DayOfWeek int    `json:"dayOfWeek" validate:"min=0,max=6"`
	StartTime string `json:"startTime" validate:"required"`
	EndTime   string `json:"endTime" validate:"required"`
	IsActive  *bool  `json:"isActive,omitempty"`
}

type replaceAvailabilityRequest struct {
	Availabilities []availabilitySlotRequest `json:"availabilities" validate:"dive"`
	SlotDuration   int                       `json:"slotDuration" validate:"required,min=1"`
}

type applyTemplateRequest struct {
	SlotDuration int `json:"slotDuration" validate:"omitempty,min=1"`
}

// GetAvailability GET /api/coach/availability
func (h *AvailabilityHandler) GetAvailability(c *fiber.Ctx) error {
	session := sessionFrom(c)

	cfg, err := h.availability.Get(c.UserContext(), session, session.UserID)
	if err != nil {
		return writeServiceError(c, h.logger, err)
	}

	return c.Status(fiber.StatusOK).JSON(cfg)
}

// ReplaceAvailability PUT /api/coach/availability
func (h *AvailabilityHandler) ReplaceAvailability(c *fiber.Ctx) error {
	session := sessionFrom(c)

	var request replaceAvailabilityRequest
	if err := c.BodyParser(&request); err != nil {
		return writeBadRequest(c, "", "Cannot parse JSON")
	}

	if err := h.validate.Struct(&request); err != nil {
		return writeRequestError(c, err)
	}

	slots := make([]model.AvailabilitySlot, 0, len(request.Availabilities))
	for _, s := range request.Availabilities {
		slots = append(slots, model.AvailabilitySlot{
			DayOfWeek: s.DayOfWeek,
			StartTime: s.StartTime,
			EndTime:   s.EndTime,
			IsActive:  s.IsActive,
		})
	}

	cfg, err := h.availability.Replace(c.UserContext(), session, session.UserID, slots, request.SlotDuration)
	if err != nil {
		return writeServiceError(c, h.logger, err)
	}

	return c.Status(fiber.StatusOK).JSON(cfg)
}

// ApplyTemplate POST /api/coach/availability/templates/:name
func (h *AvailabilityHandler) ApplyTemplate(c *fiber.Ctx) error {
	session := sessionFrom(c)

	var request applyTemplateRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&request); err != nil {
			return writeBadRequest(c, "", "Cannot parse JSON")
		}
		if err := h.validate.Struct(&request); err != nil {
			return writeRequestError(c, err)
		}
	}

	cfg, err := h.availability.ApplyTemplate(c.UserContext(), session, session.UserID, c.Params("name"), request.SlotDuration)
	if err != nil {
		return writeServiceError(c, h.logger, err)
	}

	return c.Status(fiber.StatusOK).JSON(cfg)
}

// ListSlots GET /api/coaches/:coachId/slots?date=YYYY-MM-DD
func (h *AvailabilityHandler) ListSlots(c *fiber.Ctx) error {
	coachID, err := uuid.Parse(c.Params("coachId"))
	if err != nil {
		return writeBadRequest(c, "coachId", "Invalid coach ID format")
	}

	date := c.Query("date")
	if date == "" {
		return writeBadRequest(c, "date", "date query parameter is required")
	}

	slots, err := h.slots.AvailableSlots(c.UserContext(), sessionFrom(c), coachID, date)
	if err != nil {
		return writeServiceError(c, h.logger, err)
	}

	return c.Status(fiber.StatusOK).JSON(slots)
}
