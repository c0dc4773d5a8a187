package service

import (
	"context"
	"time"

	"github.com/Freeeeeet/mytrackly_booking/internal/model"
	"github.com/google/uuid"
)

// UserRepository см. repository.UserRepository
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

// AvailabilityRepository см. repository.AvailabilityRepository
type AvailabilityRepository interface {
	GetByCoachID(ctx context.Context, coachID uuid.UUID) (*model.AvailabilityConfig, error)
	Replace(ctx context.Context, cfg *model.AvailabilityConfig) error
}

// ReservationRepository см. repository.ReservationRepository
type ReservationRepository interface {
	Create(ctx context.Context, reservation *model.Reservation) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Reservation, error)
	ListByCoach(ctx context.Context, coachID uuid.UUID, statuses []model.ReservationStatus) ([]*model.Reservation, error)
	ListByStudent(ctx context.Context, studentID uuid.UUID, statuses []model.ReservationStatus) ([]*model.Reservation, error)
	ListActiveByCoachBetween(ctx context.Context, coachID uuid.UUID, from, to time.Time) ([]*model.Reservation, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from []model.ReservationStatus, to model.ReservationStatus) (*model.Reservation, error)
	Reschedule(ctx context.Context, id uuid.UUID, from []model.ReservationStatus, start, end time.Time) (*model.Reservation, error)
	SetCalendarSync(ctx context.Context, id uuid.UUID, expected model.ReservationVersion, eventID *string, pending bool) (bool, error)
	FlagCalendarSync(ctx context.Context, id uuid.UUID, eventID *string) error
	ListCalendarSyncPending(ctx context.Context, limit int) ([]*model.Reservation, error)
}
