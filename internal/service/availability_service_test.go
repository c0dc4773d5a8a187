package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Freeeeeet/mytrackly_booking/internal/availability"
	"github.com/Freeeeeet/mytrackly_booking/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvailabilityService_GetDefault(t *testing.T) {
	f := newFixture(t)

	cfg, err := f.availabilitySvc.Get(context.Background(), sessionOf(f.otherCoach), f.otherCoach.ID)
	require.NoError(t, err)
	assert.Empty(t, cfg.Availabilities)
	assert.NotNil(t, cfg.Availabilities)
	assert.Equal(t, 60, cfg.SlotDuration)
}

func TestAvailabilityService_GetAccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.availabilitySvc.Get(ctx, nil, f.coach.ID)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = f.availabilitySvc.Get(ctx, sessionOf(f.student), f.coach.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.availabilitySvc.Get(ctx, sessionOf(f.otherCoach), f.coach.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	ghost := &model.Session{UserID: uuid.New(), Role: model.RoleCoach}
	_, err = f.availabilitySvc.Get(ctx, ghost, ghost.UserID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAvailabilityService_ReplaceKeepsOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	slots := []model.AvailabilitySlot{
		{DayOfWeek: 3, StartTime: "14:00", EndTime: "18:00"},
		{DayOfWeek: 1, StartTime: "09:00", EndTime: "12:00"},
	}

	saved, err := f.availabilitySvc.Replace(ctx, sessionOf(f.coach), f.coach.ID, slots, 45)
	require.NoError(t, err)
	assert.Equal(t, slots, saved.Availabilities)
	assert.Equal(t, 45, saved.SlotDuration)

	got, err := f.availabilitySvc.Get(ctx, sessionOf(f.coach), f.coach.ID)
	require.NoError(t, err)
	assert.Equal(t, slots, got.Availabilities)
	assert.Equal(t, 45, got.SlotDuration)
}

func TestAvailabilityService_ReplaceValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		slots    []model.AvailabilitySlot
		duration int
		path     string
	}{
		{
			name: "bad start time in second slot",
			slots: []model.AvailabilitySlot{
				{DayOfWeek: 1, StartTime: "09:00", EndTime: "10:00"},
				{DayOfWeek: 2, StartTime: "9:00", EndTime: "10:00"},
			},
			duration: 60,
			path:     "availabilities[1].startTime",
		},
		{
			name:     "day of week out of range",
			slots:    []model.AvailabilitySlot{{DayOfWeek: 7, StartTime: "09:00", EndTime: "10:00"}},
			duration: 60,
			path:     "availabilities[0].dayOfWeek",
		},
		{
			name:     "zero slot duration",
			slots:    []model.AvailabilitySlot{{DayOfWeek: 1, StartTime: "09:00", EndTime: "10:00"}},
			duration: 0,
			path:     "slotDuration",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.availabilitySvc.Replace(ctx, sessionOf(f.coach), f.coach.ID, tt.slots, tt.duration)
			require.ErrorIs(t, err, ErrValidation)

			var validationErr *ValidationError
			require.True(t, errors.As(err, &validationErr))
			assert.Equal(t, tt.path, validationErr.Path())
		})
	}

	// документ не изменился
	cfg, err := f.availabilitySvc.Get(ctx, sessionOf(f.coach), f.coach.ID)
	require.NoError(t, err)
	assert.Len(t, cfg.Availabilities, 1)
}

func TestAvailabilityService_ApplyTemplate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.availabilitySvc.Replace(ctx, sessionOf(f.coach), f.coach.ID, nil, 30)
	require.NoError(t, err)

	cfg, err := f.availabilitySvc.ApplyTemplate(ctx, sessionOf(f.coach), f.coach.ID, availability.TemplateStandard, 0)
	require.NoError(t, err)
	assert.Len(t, cfg.Availabilities, 10)
	assert.Equal(t, 30, cfg.SlotDuration)

	cfg, err = f.availabilitySvc.ApplyTemplate(ctx, sessionOf(f.coach), f.coach.ID, availability.TemplateClear, 60)
	require.NoError(t, err)
	assert.Empty(t, cfg.Availabilities)
	assert.Equal(t, 60, cfg.SlotDuration)

	_, err = f.availabilitySvc.ApplyTemplate(ctx, sessionOf(f.coach), f.coach.ID, "night-shift", 60)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAvailabilityService_ReplaceAffectsSlots(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.availabilitySvc.Replace(ctx, sessionOf(f.coach), f.coach.ID, []model.AvailabilitySlot{
		{DayOfWeek: int(time.Monday), StartTime: "09:00", EndTime: "11:00"},
	}, 45)
	require.NoError(t, err)

	slots, err := f.slotSvc.AvailableSlots(ctx, sessionOf(f.coach), f.coach.ID, "2025-06-02")
	require.NoError(t, err)
	assert.Equal(t, []model.TimeSlot{{Start: "09:00", End: "09:45"}, {Start: "09:45", End: "10:30"}}, slots)
}

func TestAvailabilityService_ReplaceIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	slots := []model.AvailabilitySlot{
		{DayOfWeek: int(time.Monday), StartTime: "09:00", EndTime: "11:00"},
		{DayOfWeek: int(time.Monday), StartTime: "10:00", EndTime: "12:00"},
	}

	var derived [][]model.TimeSlot
	for i := 0; i < 2; i++ {
		_, err := f.availabilitySvc.Replace(ctx, sessionOf(f.coach), f.coach.ID, slots, 60)
		require.NoError(t, err)

		got, err := f.slotSvc.AvailableSlots(ctx, sessionOf(f.coach), f.coach.ID, "2025-06-02")
		require.NoError(t, err)
		derived = append(derived, got)
	}

	assert.Equal(t, derived[0], derived[1])
	assert.Equal(t, []model.TimeSlot{
		{Start: "09:00", End: "10:00"},
		{Start: "10:00", End: "11:00"},
		{Start: "11:00", End: "12:00"},
	}, derived[0])
}
