package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Freeeeeet/mytrackly_booking/internal/availability"
	"github.com/Freeeeeet/mytrackly_booking/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AvailabilityService struct {
	users        UserRepository
	availability AvailabilityRepository
	logger       *zap.Logger
}

func NewAvailabilityService(users UserRepository, availability AvailabilityRepository, logger *zap.Logger) *AvailabilityService {
	return &AvailabilityService{
		users:        users,
		availability: availability,
		logger:       logger,
	}
}

// Get возвращает конфигурацию коуча или пустую по умолчанию. Читать может только сам коуч,
// ученики видят доступность только через вычисленные слоты.
func (s *AvailabilityService) Get(ctx context.Context, session *model.Session, coachID uuid.UUID) (*model.AvailabilityConfig, error) {
	if err := s.authorizeCoach(ctx, session, coachID); err != nil {
		return nil, err
	}

	return s.configFor(ctx, coachID)
}

// Replace полностью заменяет список правил и длительность слота.
// Все правила проверяются до записи, документ возвращается как сохранён.
func (s *AvailabilityService) Replace(ctx context.Context, session *model.Session, coachID uuid.UUID, slots []model.AvailabilitySlot, slotDuration int) (*model.AvailabilityConfig, error) {
	if err := s.authorizeCoach(ctx, session, coachID); err != nil {
		return nil, err
	}

	if err := validateConfig(slots, slotDuration); err != nil {
		return nil, err
	}

	if slots == nil {
		slots = []model.AvailabilitySlot{}
	}

	cfg := &model.AvailabilityConfig{
		CoachID:        coachID,
		Availabilities: slots,
		SlotDuration:   slotDuration,
	}

	if err := s.availability.Replace(ctx, cfg); err != nil {
		s.logger.Error("Failed to replace availability",
			zap.String("coach_id", coachID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("replace availability: %w", err)
	}

	s.logger.Info("Availability replaced",
		zap.String("coach_id", coachID.String()),
		zap.Int("slots_count", len(slots)),
		zap.Int("slot_duration", slotDuration),
	)

	return cfg, nil
}

// ApplyTemplate строит список из шаблона и выполняет обычный Replace.
// slotDuration <= 0 сохраняет текущую длительность.
func (s *AvailabilityService) ApplyTemplate(ctx context.Context, session *model.Session, coachID uuid.UUID, name string, slotDuration int) (*model.AvailabilityConfig, error) {
	slots, err := availability.Template(name)
	if err != nil {
		return nil, newFieldError("template", err.Error())
	}

	if slotDuration <= 0 {
		current, err := s.Get(ctx, session, coachID)
		if err != nil {
			return nil, err
		}
		slotDuration = current.SlotDuration
	}

	return s.Replace(ctx, session, coachID, slots, slotDuration)
}

func (s *AvailabilityService) authorizeCoach(ctx context.Context, session *model.Session, coachID uuid.UUID) error {
	if err := requireSession(session); err != nil {
		return err
	}

	if session.UserID != coachID || session.Role != model.RoleCoach {
		return fmt.Errorf("availability of coach %s: %w", coachID, ErrForbidden)
	}

	_, err := getCoach(ctx, s.users, coachID)
	return err
}

// configFor без проверки прав, для вычисления слотов
func (s *AvailabilityService) configFor(ctx context.Context, coachID uuid.UUID) (*model.AvailabilityConfig, error) {
	cfg, err := s.availability.GetByCoachID(ctx, coachID)
	if err != nil {
		return nil, fmt.Errorf("get availability: %w", err)
	}

	if cfg == nil {
		return model.DefaultAvailabilityConfig(coachID), nil
	}

	return cfg, nil
}

func validateConfig(slots []model.AvailabilitySlot, slotDuration int) error {
	if err := availability.ValidateSlots(slots); err != nil {
		var slotErr *availability.SlotError
		if errors.As(err, &slotErr) {
			return &ValidationError{Index: slotErr.Index, Field: slotErr.Field, Reason: slotErr.Err.Error()}
		}
		return newFieldError("availabilities", err.Error())
	}

	if slotDuration < 1 {
		return newFieldError("slotDuration", "must be a positive number of minutes")
	}

	return nil
}
