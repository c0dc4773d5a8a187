package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/Freeeeeet/mytrackly_booking/internal/calendar"
	"github.com/Freeeeeet/mytrackly_booking/internal/model"
	"github.com/Freeeeeet/mytrackly_booking/internal/repository/memstore"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeCalendar struct {
	mu      sync.Mutex
	err     error
	created []calendar.Event
	updated []string
	deleted []string

	// Если задан, CreateEvent сообщает о входе в entered и ждёт release
	entered chan struct{}
	release chan struct{}
}

func (c *fakeCalendar) CreateEvent(_ context.Context, event calendar.Event) (string, error) {
	c.mu.Lock()
	entered, release := c.entered, c.release
	c.mu.Unlock()
	if entered != nil {
		entered <- struct{}{}
		<-release
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return "", c.err
	}
	c.created = append(c.created, event)
	return "evt-" + event.ReservationID.String(), nil
}

func (c *fakeCalendar) UpdateEvent(_ context.Context, externalID string, _ calendar.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.updated = append(c.updated, externalID)
	return nil
}

func (c *fakeCalendar) DeleteEvent(_ context.Context, externalID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.deleted = append(c.deleted, externalID)
	return nil
}

func (c *fakeCalendar) fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
}

// holdCreate задерживает следующий CreateEvent до закрытия release
func (c *fakeCalendar) holdCreate() (entered chan struct{}, release chan struct{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entered = make(chan struct{}, 1)
	c.release = make(chan struct{})
	return c.entered, c.release
}

type recordingNotifier struct {
	mu   sync.Mutex
	err  error
	sent []model.Notification
}

func (n *recordingNotifier) Notify(_ context.Context, notification model.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, notification)
	return nil
}

func (n *recordingNotifier) last() model.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.sent[len(n.sent)-1]
}

type fixture struct {
	paris *time.Location

	users        *memstore.UserStore
	availability *memstore.AvailabilityStore
	reservations *memstore.ReservationStore

	availabilitySvc *AvailabilityService
	slotSvc         *SlotService
	reservationSvc  *ReservationService

	calendar *fakeCalendar
	notifier *recordingNotifier

	coach        *model.User
	student      *model.User
	otherStudent *model.User
	otherCoach   *model.User
}

// newFixture: коуч в Europe/Paris с правилом пн 09:00-12:00, "сейчас" - воскресенье 01.06.2025 10:00
func newFixture(t *testing.T) *fixture {
	t.Helper()

	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)

	f := &fixture{
		paris:        paris,
		users:        memstore.NewUserStore(),
		availability: memstore.NewAvailabilityStore(),
		reservations: memstore.NewReservationStore(),
		calendar:     &fakeCalendar{},
		notifier:     &recordingNotifier{},
	}

	f.coach = &model.User{ID: uuid.New(), Email: "coach@mytrackly.fr", FirstName: "Claire", Role: model.RoleCoach, Timezone: "Europe/Paris"}
	f.otherCoach = &model.User{ID: uuid.New(), Email: "other@mytrackly.fr", Role: model.RoleCoach}
	f.student = &model.User{ID: uuid.New(), Email: "eleve@mytrackly.fr", FirstName: "Louis", LastName: "Martin", Role: model.RoleStudent, CoachID: &f.coach.ID}
	f.otherStudent = &model.User{ID: uuid.New(), Email: "eleve2@mytrackly.fr", Role: model.RoleStudent, CoachID: &f.otherCoach.ID}
	for _, u := range []*model.User{f.coach, f.otherCoach, f.student, f.otherStudent} {
		f.users.Add(u)
	}

	require.NoError(t, f.availability.Replace(context.Background(), &model.AvailabilityConfig{
		CoachID: f.coach.ID,
		Availabilities: []model.AvailabilitySlot{
			{DayOfWeek: int(time.Monday), StartTime: "09:00", EndTime: "12:00"},
		},
		SlotDuration: 60,
	}))

	logger := zap.NewNop()
	f.availabilitySvc = NewAvailabilityService(f.users, f.availability, logger)
	f.slotSvc = NewSlotService(f.users, f.availability, f.reservations, time.UTC, logger)
	f.setNow(time.Date(2025, 6, 1, 10, 0, 0, 0, paris))
	f.reservationSvc = NewReservationService(f.users, f.reservations, f.slotSvc, f.calendar, f.notifier, logger)

	return f
}

func (f *fixture) setNow(now time.Time) {
	f.slotSvc.now = func() time.Time { return now }
}

func (f *fixture) at(hour int) time.Time {
	return time.Date(2025, 6, 2, hour, 0, 0, 0, f.paris)
}

func sessionOf(u *model.User) *model.Session {
	return &model.Session{UserID: u.ID, Role: u.Role}
}

// book создаёт pending бронь ученика на понедельник 02.06.2025
func (f *fixture) book(t *testing.T, hour int) *model.Reservation {
	t.Helper()

	result, err := f.reservationSvc.Create(context.Background(), sessionOf(f.student), CreateReservationInput{
		StartDateTime: f.at(hour),
		EndDateTime:   f.at(hour + 1),
		SessionType:   model.SessionTypeMuscu,
	})
	require.NoError(t, err)
	require.NoError(t, result.Degraded)
	return result.Reservation
}

var errCalendarDown = errors.New("calendar unavailable")
