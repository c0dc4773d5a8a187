// Package memstore in-memory реализация репозиториев с той же семантикой,
// что у Postgres: проверка пересечения броней и запись выполняются под одной блокировкой.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Freeeeeet/mytrackly_booking/internal/model"
	"github.com/Freeeeeet/mytrackly_booking/internal/repository/base"
	"github.com/google/uuid"
)

type UserStore struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*model.User
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[uuid.UUID]*model.User)}
}

// Add добавляет или заменяет пользователя
func (s *UserStore) Add(user *model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *user
	s.users[user.ID] = &cp
}

func (s *UserStore) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *user
	return &cp, nil
}

type AvailabilityStore struct {
	mu      sync.RWMutex
	configs map[uuid.UUID]*model.AvailabilityConfig
	now     func() time.Time
}

func NewAvailabilityStore() *AvailabilityStore {
	return &AvailabilityStore{
		configs: make(map[uuid.UUID]*model.AvailabilityConfig),
		now:     time.Now,
	}
}

func (s *AvailabilityStore) GetByCoachID(_ context.Context, coachID uuid.UUID) (*model.AvailabilityConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cfg, ok := s.configs[coachID]
	if !ok {
		return nil, nil
	}
	return copyConfig(cfg), nil
}

func (s *AvailabilityStore) Replace(_ context.Context, cfg *model.AvailabilityConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg.UpdatedAt = s.now()
	s.configs[cfg.CoachID] = copyConfig(cfg)
	return nil
}

func copyConfig(cfg *model.AvailabilityConfig) *model.AvailabilityConfig {
	cp := *cfg
	cp.Availabilities = make([]model.AvailabilitySlot, len(cfg.Availabilities))
	copy(cp.Availabilities, cfg.Availabilities)
	return &cp
}

type ReservationStore struct {
	mu           sync.Mutex
	reservations map[uuid.UUID]*model.Reservation
	now          func() time.Time
}

func NewReservationStore() *ReservationStore {
	return &ReservationStore{
		reservations: make(map[uuid.UUID]*model.Reservation),
		now:          time.Now,
	}
}

func (s *ReservationStore) Create(_ context.Context, reservation *model.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if reservation.Status.IsActive() && s.conflictsLocked(reservation.CoachID, uuid.Nil, reservation.StartDateTime, reservation.EndDateTime) {
		return base.ErrConflict
	}

	if reservation.ID == uuid.Nil {
		reservation.ID = uuid.New()
	}
	now := s.now()
	reservation.CreatedAt = now
	reservation.UpdatedAt = now

	cp := *reservation
	s.reservations[reservation.ID] = &cp
	return nil
}

func (s *ReservationStore) GetByID(_ context.Context, id uuid.UUID) (*model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reservation, ok := s.reservations[id]
	if !ok {
		return nil, nil
	}
	cp := *reservation
	return &cp, nil
}

func (s *ReservationStore) ListByCoach(_ context.Context, coachID uuid.UUID, statuses []model.ReservationStatus) ([]*model.Reservation, error) {
	return s.list(func(r *model.Reservation) bool {
		return r.CoachID == coachID && statusIn(r.Status, statuses, true)
	}), nil
}

func (s *ReservationStore) ListByStudent(_ context.Context, studentID uuid.UUID, statuses []model.ReservationStatus) ([]*model.Reservation, error) {
	return s.list(func(r *model.Reservation) bool {
		return r.StudentID == studentID && statusIn(r.Status, statuses, true)
	}), nil
}

func (s *ReservationStore) ListActiveByCoachBetween(_ context.Context, coachID uuid.UUID, from, to time.Time) ([]*model.Reservation, error) {
	return s.list(func(r *model.Reservation) bool {
		return r.CoachID == coachID && r.Status.IsActive() && r.Overlaps(from, to)
	}), nil
}

func (s *ReservationStore) UpdateStatus(_ context.Context, id uuid.UUID, from []model.ReservationStatus, to model.ReservationStatus) (*model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reservation, ok := s.reservations[id]
	if !ok || !statusIn(reservation.Status, from, false) {
		return nil, nil
	}

	reservation.Status = to
	reservation.UpdatedAt = s.now()
	cp := *reservation
	return &cp, nil
}

func (s *ReservationStore) Reschedule(_ context.Context, id uuid.UUID, from []model.ReservationStatus, start, end time.Time) (*model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reservation, ok := s.reservations[id]
	if !ok || !statusIn(reservation.Status, from, false) {
		return nil, nil
	}

	if reservation.Status.IsActive() && s.conflictsLocked(reservation.CoachID, id, start, end) {
		return nil, base.ErrConflict
	}

	reservation.StartDateTime = start
	reservation.EndDateTime = end
	reservation.UpdatedAt = s.now()
	cp := *reservation
	return &cp, nil
}

func (s *ReservationStore) SetCalendarSync(_ context.Context, id uuid.UUID, expected model.ReservationVersion, eventID *string, pending bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reservation, ok := s.reservations[id]
	if !ok || !reservation.Version().Matches(expected) {
		return false, nil
	}

	reservation.GoogleEventID = copyString(eventID)
	reservation.CalendarSyncPending = pending
	return true, nil
}

func (s *ReservationStore) FlagCalendarSync(_ context.Context, id uuid.UUID, eventID *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reservation, ok := s.reservations[id]
	if !ok {
		return base.ErrNotFound
	}

	if eventID != nil {
		reservation.GoogleEventID = copyString(eventID)
	}
	reservation.CalendarSyncPending = true
	return nil
}

func copyString(v *string) *string {
	if v == nil {
		return nil
	}
	cp := *v
	return &cp
}

func (s *ReservationStore) ListCalendarSyncPending(_ context.Context, limit int) ([]*model.Reservation, error) {
	pending := s.list(func(r *model.Reservation) bool { return r.CalendarSyncPending })
	if limit > 0 && len(pending) > limit {
		pending = pending[:limit]
	}
	return pending, nil
}

func (s *ReservationStore) conflictsLocked(coachID, exclude uuid.UUID, start, end time.Time) bool {
	for _, r := range s.reservations {
		if r.ID == exclude || r.CoachID != coachID || !r.Status.IsActive() {
			continue
		}
		if r.Overlaps(start, end) {
			return true
		}
	}
	return false
}

func (s *ReservationStore) list(match func(*model.Reservation) bool) []*model.Reservation {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*model.Reservation
	for _, r := range s.reservations {
		if match(r) {
			cp := *r
			out = append(out, &cp)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].StartDateTime.Before(out[j].StartDateTime) })
	return out
}

func statusIn(status model.ReservationStatus, statuses []model.ReservationStatus, emptyMatchesAll bool) bool {
	if len(statuses) == 0 {
		return emptyMatchesAll
	}
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}
