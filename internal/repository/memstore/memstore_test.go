package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/Freeeeeet/mytrackly_booking/internal/model"
	"github.com/Freeeeeet/mytrackly_booking/internal/repository/base"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reservationAt(coachID uuid.UUID, start time.Time, status model.ReservationStatus) *model.Reservation {
	return &model.Reservation{
		CoachID:       coachID,
		StudentID:     uuid.New(),
		StartDateTime: start,
		EndDateTime:   start.Add(time.Hour),
		SessionType:   model.SessionTypeCardio,
		Status:        status,
	}
}

func TestReservationStore_CreateConflicts(t *testing.T) {
	ctx := context.Background()
	store := NewReservationStore()
	coachID := uuid.New()
	nine := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

	first := reservationAt(coachID, nine, model.ReservationStatusPending)
	require.NoError(t, store.Create(ctx, first))
	assert.NotEqual(t, uuid.Nil, first.ID)

	// пересечение с активной бронью того же коуча
	err := store.Create(ctx, reservationAt(coachID, nine.Add(30*time.Minute), model.ReservationStatusPending))
	assert.ErrorIs(t, err, base.ErrConflict)

	// касание границы не пересечение
	require.NoError(t, store.Create(ctx, reservationAt(coachID, nine.Add(time.Hour), model.ReservationStatusPending)))

	// другой коуч
	require.NoError(t, store.Create(ctx, reservationAt(uuid.New(), nine, model.ReservationStatusPending)))

	// неактивная бронь не занимает время
	_, err = store.UpdateStatus(ctx, first.ID, model.ActiveStatuses, model.ReservationStatusCancelled)
	require.NoError(t, err)
	require.NoError(t, store.Create(ctx, reservationAt(coachID, nine, model.ReservationStatusPending)))
}

func TestReservationStore_ConditionalUpdate(t *testing.T) {
	ctx := context.Background()
	store := NewReservationStore()
	r := reservationAt(uuid.New(), time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC), model.ReservationStatusPending)
	require.NoError(t, store.Create(ctx, r))

	updated, err := store.UpdateStatus(ctx, r.ID, []model.ReservationStatus{model.ReservationStatusPending}, model.ReservationStatusConfirmed)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, model.ReservationStatusConfirmed, updated.Status)

	updated, err = store.UpdateStatus(ctx, r.ID, []model.ReservationStatus{model.ReservationStatusPending}, model.ReservationStatusRefused)
	require.NoError(t, err)
	assert.Nil(t, updated)

	updated, err = store.UpdateStatus(ctx, uuid.New(), model.ActiveStatuses, model.ReservationStatusCancelled)
	require.NoError(t, err)
	assert.Nil(t, updated)

	assert.ErrorIs(t, store.FlagCalendarSync(ctx, uuid.New(), nil), base.ErrNotFound)
}

func TestReservationStore_SetCalendarSyncRequiresSameVersion(t *testing.T) {
	ctx := context.Background()
	store := NewReservationStore()

	r := reservationAt(uuid.New(), time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC), model.ReservationStatusConfirmed)
	require.NoError(t, store.Create(ctx, r))
	seen := r.Version()

	eventID := "evt-1"
	stored, err := store.SetCalendarSync(ctx, r.ID, seen, &eventID, false)
	require.NoError(t, err)
	assert.True(t, stored)

	_, err = store.UpdateStatus(ctx, r.ID, model.ActiveStatuses, model.ReservationStatusCancelled)
	require.NoError(t, err)

	stored, err = store.SetCalendarSync(ctx, r.ID, seen, nil, false)
	require.NoError(t, err)
	assert.False(t, stored)

	got, err := store.GetByID(ctx, r.ID)
	require.NoError(t, err)
	require.NotNil(t, got.GoogleEventID)
	assert.Equal(t, "evt-1", *got.GoogleEventID)

	require.NoError(t, store.FlagCalendarSync(ctx, r.ID, nil))
	got, err = store.GetByID(ctx, r.ID)
	require.NoError(t, err)
	assert.True(t, got.CalendarSyncPending)
	assert.Equal(t, "evt-1", *got.GoogleEventID)

	stored, err = store.SetCalendarSync(ctx, uuid.New(), seen, nil, false)
	require.NoError(t, err)
	assert.False(t, stored)
}

func TestReservationStore_RescheduleExcludesItself(t *testing.T) {
	ctx := context.Background()
	store := NewReservationStore()
	coachID := uuid.New()
	nine := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

	r := reservationAt(coachID, nine, model.ReservationStatusConfirmed)
	require.NoError(t, store.Create(ctx, r))
	other := reservationAt(coachID, nine.Add(2*time.Hour), model.ReservationStatusPending)
	require.NoError(t, store.Create(ctx, other))

	moved, err := store.Reschedule(ctx, r.ID, model.ActiveStatuses, nine.Add(30*time.Minute), nine.Add(90*time.Minute))
	require.NoError(t, err)
	require.NotNil(t, moved)

	_, err = store.Reschedule(ctx, r.ID, model.ActiveStatuses, nine.Add(2*time.Hour), nine.Add(3*time.Hour))
	assert.ErrorIs(t, err, base.ErrConflict)

	stored, err := store.GetByID(ctx, r.ID)
	require.NoError(t, err)
	assert.True(t, stored.StartDateTime.Equal(nine.Add(30*time.Minute)))
}

func TestAvailabilityStore_ReplaceIsolatesCopies(t *testing.T) {
	ctx := context.Background()
	store := NewAvailabilityStore()
	coachID := uuid.New()

	slots := []model.AvailabilitySlot{{DayOfWeek: 1, StartTime: "09:00", EndTime: "12:00"}}
	require.NoError(t, store.Replace(ctx, &model.AvailabilityConfig{CoachID: coachID, Availabilities: slots, SlotDuration: 60}))

	slots[0].StartTime = "10:00"

	cfg, err := store.GetByCoachID(ctx, coachID)
	require.NoError(t, err)
	assert.Equal(t, "09:00", cfg.Availabilities[0].StartTime)

	missing, err := store.GetByCoachID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}
