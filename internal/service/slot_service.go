package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/mytrackly_booking/internal/availability"
	"github.com/Freeeeeet/mytrackly_booking/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

type SlotService struct {
	users           UserRepository
	availability    AvailabilityRepository
	reservations    ReservationRepository
	defaultLocation *time.Location
	now             func() time.Time
	logger          *zap.Logger
}

func NewSlotService(
	users UserRepository,
	availabilityRepo AvailabilityRepository,
	reservations ReservationRepository,
	defaultLocation *time.Location,
	logger *zap.Logger,
) *SlotService {
	if defaultLocation == nil {
		defaultLocation = time.UTC
	}
	return &SlotService{
		users:           users,
		availability:    availabilityRepo,
		reservations:    reservations,
		defaultLocation: defaultLocation,
		now:             time.Now,
		logger:          logger,
	}
}

// AvailableSlots возвращает свободные окна коуча на дату YYYY-MM-DD в часовом поясе коуча.
// Смотреть может сам коуч или его ученик.
func (s *SlotService) AvailableSlots(ctx context.Context, session *model.Session, coachID uuid.UUID, date string) ([]model.TimeSlot, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}

	// Проверка доступа до поиска коуча, иначе 404 выдаёт какие id принадлежат коучам
	if err := s.authorizeViewer(ctx, session, coachID); err != nil {
		return nil, err
	}

	coach, err := getCoach(ctx, s.users, coachID)
	if err != nil {
		return nil, err
	}

	loc := locationFor(coach, s.defaultLocation)
	day, err := time.ParseInLocation(dateLayout, date, loc)
	if err != nil {
		return nil, newFieldError("date", "expected YYYY-MM-DD")
	}

	slots, err := s.derive(ctx, coachID, day, loc, true)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Slots derived",
		zap.String("coach_id", coachID.String()),
		zap.String("date", date),
		zap.Int("slots_count", len(slots)),
	)

	return slots, nil
}

func (s *SlotService) authorizeViewer(ctx context.Context, session *model.Session, coachID uuid.UUID) error {
	if session.UserID == coachID {
		return nil
	}

	if session.Role != model.RoleStudent {
		return fmt.Errorf("slots of coach %s: %w", coachID, ErrForbidden)
	}

	viewer, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		return fmt.Errorf("get viewer: %w", err)
	}

	if viewer == nil || !viewer.HasCoach(coachID) {
		return fmt.Errorf("slots of coach %s: %w", coachID, ErrForbidden)
	}

	return nil
}

// derive вычисляет окна на локальный день day (полночь в loc).
// withBusy=false пропускает фильтр по активным броням.
func (s *SlotService) derive(ctx context.Context, coachID uuid.UUID, day time.Time, loc *time.Location, withBusy bool) ([]model.TimeSlot, error) {
	now := s.now().In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	if day.Before(today) {
		return []model.TimeSlot{}, nil
	}

	earliest := 0
	if day.Equal(today) {
		earliest = now.Hour()*60 + now.Minute() + 1
	}

	cfg, err := s.availability.GetByCoachID(ctx, coachID)
	if err != nil {
		return nil, fmt.Errorf("get availability: %w", err)
	}
	if cfg == nil {
		cfg = model.DefaultAvailabilityConfig(coachID)
	}

	var busy []availability.Interval
	if withBusy {
		dayEnd := day.AddDate(0, 0, 1)
		reservations, err := s.reservations.ListActiveByCoachBetween(ctx, coachID, day, dayEnd)
		if err != nil {
			return nil, fmt.Errorf("list active reservations: %w", err)
		}
		busy = busyIntervals(reservations, day, dayEnd, loc)
	}

	slots, err := availability.DeriveSlots(cfg.Availabilities, cfg.SlotDuration, day.Weekday(), busy, earliest)
	if err != nil {
		return nil, fmt.Errorf("derive slots: %w", err)
	}

	return slots, nil
}

// busyIntervals переводит брони в минуты локального дня, с обрезкой по границам дня
func busyIntervals(reservations []*model.Reservation, dayStart, dayEnd time.Time, loc *time.Location) []availability.Interval {
	busy := make([]availability.Interval, 0, len(reservations))
	for _, r := range reservations {
		start := 0
		if r.StartDateTime.After(dayStart) {
			t := r.StartDateTime.In(loc)
			start = t.Hour()*60 + t.Minute()
		}

		end := availability.MinutesPerDay
		if r.EndDateTime.Before(dayEnd) {
			t := r.EndDateTime.In(loc)
			end = t.Hour()*60 + t.Minute()
			if t.Second() > 0 || t.Nanosecond() > 0 {
				end++
			}
		}

		if end > start {
			busy = append(busy, availability.Interval{Start: start, End: end})
		}
	}
	return busy
}
