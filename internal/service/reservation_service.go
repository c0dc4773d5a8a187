package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/mytrackly_booking/internal/availability"
	"github.com/Freeeeeet/mytrackly_booking/internal/calendar"
	"github.com/Freeeeeet/mytrackly_booking/internal/model"
	"github.com/Freeeeeet/mytrackly_booking/internal/notify"
	"github.com/Freeeeeet/mytrackly_booking/internal/repository/base"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateReservationInput запрос ученика на бронь
type CreateReservationInput struct {
	StartDateTime time.Time
	EndDateTime   time.Time
	SessionType   string
	Notes         *string
}

// TransitionResult результат перехода. Degraded не nil если локальное изменение сохранено,
// но внешний календарь или уведомления не отработали.
type TransitionResult struct {
	Reservation *model.Reservation
	Degraded    error
}

type ReservationService struct {
	users        UserRepository
	reservations ReservationRepository
	slots        *SlotService
	calendar     calendar.Provider
	notifier     notify.Notifier
	logger       *zap.Logger
}

func NewReservationService(
	users UserRepository,
	reservations ReservationRepository,
	slots *SlotService,
	calendarProvider calendar.Provider,
	notifier notify.Notifier,
	logger *zap.Logger,
) *ReservationService {
	if calendarProvider == nil {
		calendarProvider = calendar.Disabled{}
	}
	if notifier == nil {
		notifier = notify.Fanout{}
	}
	return &ReservationService{
		users:        users,
		reservations: reservations,
		slots:        slots,
		calendar:     calendarProvider,
		notifier:     notifier,
		logger:       logger,
	}
}

// Create создаёт бронь в статусе pending у коуча ученика.
// Окно должно совпадать с одним из слотов доступности коуча и не пересекаться с активными бронями.
func (s *ReservationService) Create(ctx context.Context, session *model.Session, input CreateReservationInput) (*TransitionResult, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}

	if session.Role != model.RoleStudent {
		return nil, fmt.Errorf("create reservation as %s: %w", session.Role, ErrForbidden)
	}

	student, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("get student: %w", err)
	}
	if student == nil {
		return nil, fmt.Errorf("student %s: %w", session.UserID, ErrUnauthenticated)
	}
	if student.CoachID == nil {
		return nil, fmt.Errorf("student %s has no coach: %w", student.ID, ErrForbidden)
	}

	coach, err := getCoach(ctx, s.users, *student.CoachID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(input.SessionType) == "" {
		return nil, newFieldError("sessionType", "must not be empty")
	}
	if !input.EndDateTime.After(input.StartDateTime) {
		return nil, newFieldError("endDateTime", "must be after startDateTime")
	}

	if err := s.matchSlot(ctx, coach, input.StartDateTime, input.EndDateTime); err != nil {
		return nil, err
	}

	overlapping, err := s.reservations.ListActiveByCoachBetween(ctx, coach.ID, input.StartDateTime, input.EndDateTime)
	if err != nil {
		return nil, fmt.Errorf("list active reservations: %w", err)
	}
	if len(overlapping) > 0 {
		return nil, fmt.Errorf("reservation %s-%s: %w",
			input.StartDateTime.Format(time.RFC3339), input.EndDateTime.Format(time.RFC3339), ErrSlotConflict)
	}

	reservation := &model.Reservation{
		CoachID:       coach.ID,
		StudentID:     student.ID,
		StartDateTime: input.StartDateTime,
		EndDateTime:   input.EndDateTime,
		SessionType:   input.SessionType,
		Notes:         input.Notes,
		Status:        model.ReservationStatusPending,
	}

	if err := s.reservations.Create(ctx, reservation); err != nil {
		if errors.Is(err, base.ErrConflict) {
			return nil, fmt.Errorf("create reservation: %w", ErrSlotConflict)
		}
		s.logger.Error("Failed to create reservation",
			zap.String("coach_id", coach.ID.String()),
			zap.String("student_id", student.ID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("create reservation: %w", err)
	}

	s.logger.Info("Reservation created",
		zap.String("reservation_id", reservation.ID.String()),
		zap.String("coach_id", coach.ID.String()),
		zap.String("student_id", student.ID.String()),
		zap.Time("start", reservation.StartDateTime),
	)

	result := &TransitionResult{Reservation: reservation}
	s.notify(ctx, result, model.NotificationReservationCreated, coach.ID)
	return result, nil
}

// matchSlot проверяет что окно является слотом доступности без учёта занятости
func (s *ReservationService) matchSlot(ctx context.Context, coach *model.User, start, end time.Time) error {
	loc := locationFor(coach, s.slots.defaultLocation)
	localStart := start.In(loc)
	localEnd := end.In(loc)

	day := time.Date(localStart.Year(), localStart.Month(), localStart.Day(), 0, 0, 0, 0, loc)
	if localEnd.After(day.AddDate(0, 0, 1)) {
		return newFieldError("endDateTime", "must be on the same day as startDateTime")
	}

	windows, err := s.slots.derive(ctx, coach.ID, day, loc, false)
	if err != nil {
		return err
	}

	if localStart.Second() != 0 || localStart.Nanosecond() != 0 || localEnd.Second() != 0 || localEnd.Nanosecond() != 0 {
		return newFieldError("startDateTime", "does not match an available slot")
	}

	startHHMM, err := availability.ToHHMM(localStart.Hour()*60 + localStart.Minute())
	if err != nil {
		return newFieldError("startDateTime", err.Error())
	}
	endHHMM, err := availability.ToHHMM(localEnd.Hour()*60 + localEnd.Minute())
	if err != nil {
		return newFieldError("endDateTime", err.Error())
	}

	for _, w := range windows {
		if w.Start == startHHMM && w.End == endHHMM {
			return nil
		}
	}

	return newFieldError("startDateTime", "does not match an available slot")
}

// Accept коуч подтверждает pending бронь и создаёт событие календаря
func (s *ReservationService) Accept(ctx context.Context, session *model.Session, id uuid.UUID) (*TransitionResult, error) {
	if _, err := s.loadForCoach(ctx, session, id); err != nil {
		return nil, err
	}

	reservation, err := s.transition(ctx, id, []model.ReservationStatus{model.ReservationStatusPending}, model.ReservationStatusConfirmed)
	if err != nil {
		return nil, err
	}

	result := &TransitionResult{Reservation: reservation}

	eventID, err := s.calendar.CreateEvent(ctx, s.eventFor(ctx, reservation))
	if err != nil {
		s.markCalendarFailure(ctx, result, "create", err)
	} else {
		s.storeEventID(ctx, result, eventID)
	}

	s.notify(ctx, result, model.NotificationReservationAccepted, reservation.StudentID)
	return result, nil
}

// Refuse коуч отклоняет pending бронь
func (s *ReservationService) Refuse(ctx context.Context, session *model.Session, id uuid.UUID) (*TransitionResult, error) {
	if _, err := s.loadForCoach(ctx, session, id); err != nil {
		return nil, err
	}

	reservation, err := s.transition(ctx, id, []model.ReservationStatus{model.ReservationStatusPending}, model.ReservationStatusRefused)
	if err != nil {
		return nil, err
	}

	result := &TransitionResult{Reservation: reservation}
	s.notify(ctx, result, model.NotificationReservationRefused, reservation.StudentID)
	return result, nil
}

// Reschedule коуч переносит активную бронь, статус не меняется
func (s *ReservationService) Reschedule(ctx context.Context, session *model.Session, id uuid.UUID, start, end time.Time) (*TransitionResult, error) {
	if _, err := s.loadForCoach(ctx, session, id); err != nil {
		return nil, err
	}

	if !end.After(start) {
		return nil, newFieldError("endDateTime", "must be after startDateTime")
	}

	reservation, err := s.reservations.Reschedule(ctx, id, model.ActiveStatuses, start, end)
	if err != nil {
		if errors.Is(err, base.ErrConflict) {
			return nil, fmt.Errorf("reschedule reservation %s: %w", id, ErrSlotConflict)
		}
		return nil, fmt.Errorf("reschedule reservation: %w", err)
	}
	if reservation == nil {
		return nil, fmt.Errorf("reschedule reservation %s: %w", id, ErrInvalidTransition)
	}

	s.logger.Info("Reservation rescheduled",
		zap.String("reservation_id", id.String()),
		zap.Time("start", start),
		zap.Time("end", end),
	)

	result := &TransitionResult{Reservation: reservation}

	if reservation.HasCalendarEvent() {
		if err := s.calendar.UpdateEvent(ctx, *reservation.GoogleEventID, s.eventFor(ctx, reservation)); err != nil {
			s.markCalendarFailure(ctx, result, "update", err)
		}
	}

	s.notify(ctx, result, model.NotificationReservationRescheduled, reservation.StudentID)
	return result, nil
}

// Cancel отменяет активную бронь. Может ученик-владелец или коуч брони.
func (s *ReservationService) Cancel(ctx context.Context, session *model.Session, id uuid.UUID) (*TransitionResult, error) {
	current, err := s.loadForParticipant(ctx, session, id)
	if err != nil {
		return nil, err
	}

	reservation, err := s.transition(ctx, id, model.ActiveStatuses, model.ReservationStatusCancelled)
	if err != nil {
		return nil, err
	}

	result := &TransitionResult{Reservation: reservation}

	if reservation.HasCalendarEvent() {
		if err := s.calendar.DeleteEvent(ctx, *reservation.GoogleEventID); err != nil {
			s.markCalendarFailure(ctx, result, "delete", err)
		} else {
			s.storeEventID(ctx, result, "")
		}
	}

	recipient := current.CoachID
	if session.UserID == current.CoachID {
		recipient = current.StudentID
	}
	s.notify(ctx, result, model.NotificationReservationCancelled, recipient)
	return result, nil
}

// SendReminder напоминание ученику о подтверждённой брони, состояние не меняется
func (s *ReservationService) SendReminder(ctx context.Context, session *model.Session, id uuid.UUID) (*TransitionResult, error) {
	reservation, err := s.loadForCoach(ctx, session, id)
	if err != nil {
		return nil, err
	}

	if reservation.Status != model.ReservationStatusConfirmed {
		return nil, fmt.Errorf("remind reservation %s in status %s: %w", id, reservation.Status, ErrInvalidTransition)
	}

	result := &TransitionResult{Reservation: reservation}
	s.notify(ctx, result, model.NotificationReservationReminder, reservation.StudentID)
	return result, nil
}

// Get бронь видна только её участникам
func (s *ReservationService) Get(ctx context.Context, session *model.Session, id uuid.UUID) (*model.Reservation, error) {
	return s.loadForParticipant(ctx, session, id)
}

// List брони коуча или ученика, statuses пустой значит все
func (s *ReservationService) List(ctx context.Context, session *model.Session, statuses []model.ReservationStatus) ([]*model.Reservation, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}

	for _, status := range statuses {
		if !status.Valid() {
			return nil, newFieldError("status", fmt.Sprintf("unknown status %q", status))
		}
	}

	var (
		reservations []*model.Reservation
		err          error
	)
	switch session.Role {
	case model.RoleCoach:
		reservations, err = s.reservations.ListByCoach(ctx, session.UserID, statuses)
	default:
		reservations, err = s.reservations.ListByStudent(ctx, session.UserID, statuses)
	}
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}

	if reservations == nil {
		reservations = []*model.Reservation{}
	}
	return reservations, nil
}

// SyncPendingCalendarEvents повторяет операции календаря для броней с флагом calendar_sync_pending.
// Возвращает количество успешно синхронизированных броней.
func (s *ReservationService) SyncPendingCalendarEvents(ctx context.Context, limit int) (int, error) {
	pending, err := s.reservations.ListCalendarSyncPending(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("list calendar sync pending: %w", err)
	}

	synced := 0
	for _, reservation := range pending {
		if err := ctx.Err(); err != nil {
			return synced, err
		}

		eventID, err := s.syncOne(ctx, reservation)
		if err != nil {
			s.logger.Warn("Calendar sync failed",
				zap.String("reservation_id", reservation.ID.String()),
				zap.String("status", string(reservation.Status)),
				zap.Error(err))
			continue
		}

		stored, err := s.reservations.SetCalendarSync(ctx, reservation.ID, reservation.Version(), eventID, false)
		if err != nil {
			s.logger.Error("Failed to clear calendar sync flag",
				zap.String("reservation_id", reservation.ID.String()),
				zap.Error(err))
			continue
		}
		if !stored {
			// Бронь изменилась во время синхронизации, созданное событие разберёт следующий проход
			s.keepForSync(ctx, reservation.ID, eventID)
			continue
		}
		synced++
	}

	if len(pending) > 0 {
		s.logger.Info("Calendar sync completed",
			zap.Int("pending", len(pending)),
			zap.Int("synced", synced),
		)
	}

	return synced, nil
}

// syncOne возвращает id события, которое должно остаться у брони
func (s *ReservationService) syncOne(ctx context.Context, r *model.Reservation) (*string, error) {
	switch {
	case r.Status.IsTerminal() && r.HasCalendarEvent():
		if err := s.calendar.DeleteEvent(ctx, *r.GoogleEventID); err != nil {
			return nil, err
		}
		return nil, nil
	case r.Status.IsActive() && r.HasCalendarEvent():
		if err := s.calendar.UpdateEvent(ctx, *r.GoogleEventID, s.eventFor(ctx, r)); err != nil {
			return nil, err
		}
		return r.GoogleEventID, nil
	case r.Status == model.ReservationStatusConfirmed:
		eventID, err := s.calendar.CreateEvent(ctx, s.eventFor(ctx, r))
		if err != nil {
			return nil, err
		}
		if eventID == "" {
			return nil, nil
		}
		return &eventID, nil
	default:
		return r.GoogleEventID, nil
	}
}

func (s *ReservationService) load(ctx context.Context, session *model.Session, id uuid.UUID) (*model.Reservation, error) {
	if err := requireSession(session); err != nil {
		return nil, err
	}

	reservation, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get reservation: %w", err)
	}
	if reservation == nil {
		return nil, fmt.Errorf("reservation %s: %w", id, ErrNotFound)
	}

	return reservation, nil
}

func (s *ReservationService) loadForCoach(ctx context.Context, session *model.Session, id uuid.UUID) (*model.Reservation, error) {
	reservation, err := s.load(ctx, session, id)
	if err != nil {
		return nil, err
	}

	if session.Role != model.RoleCoach || reservation.CoachID != session.UserID {
		return nil, fmt.Errorf("reservation %s: %w", id, ErrForbidden)
	}

	return reservation, nil
}

func (s *ReservationService) loadForParticipant(ctx context.Context, session *model.Session, id uuid.UUID) (*model.Reservation, error) {
	reservation, err := s.load(ctx, session, id)
	if err != nil {
		return nil, err
	}

	if reservation.StudentID != session.UserID && reservation.CoachID != session.UserID {
		return nil, fmt.Errorf("reservation %s: %w", id, ErrForbidden)
	}

	return reservation, nil
}

// transition условное обновление статуса, проигранная гонка даёт ErrInvalidTransition
func (s *ReservationService) transition(ctx context.Context, id uuid.UUID, from []model.ReservationStatus, to model.ReservationStatus) (*model.Reservation, error) {
	reservation, err := s.reservations.UpdateStatus(ctx, id, from, to)
	if err != nil {
		s.logger.Error("Failed to update reservation status",
			zap.String("reservation_id", id.String()),
			zap.String("to", string(to)),
			zap.Error(err))
		return nil, fmt.Errorf("update reservation status: %w", err)
	}

	if reservation == nil {
		return nil, fmt.Errorf("reservation %s to %s: %w", id, to, ErrInvalidTransition)
	}

	s.logger.Info("Reservation status changed",
		zap.String("reservation_id", id.String()),
		zap.String("status", string(to)),
	)

	return reservation, nil
}

// storeEventID сохраняет событие только для того состояния брони, по которому оно создано
func (s *ReservationService) storeEventID(ctx context.Context, result *TransitionResult, eventID string) {
	r := result.Reservation

	var ref *string
	if eventID != "" {
		ref = &eventID
	}

	stored, err := s.reservations.SetCalendarSync(ctx, r.ID, r.Version(), ref, false)
	if err != nil {
		s.logger.Error("Failed to store calendar event id",
			zap.String("reservation_id", r.ID.String()),
			zap.Error(err))
		result.Degraded = errors.Join(result.Degraded, fmt.Errorf("store calendar event: %w", ErrCollaboratorFailure))
		return
	}

	if !stored {
		s.logger.Warn("Reservation changed during calendar call, flagged for sync",
			zap.String("reservation_id", r.ID.String()),
			zap.String("status", string(r.Status)))
		if s.keepForSync(ctx, r.ID, ref) {
			if ref != nil {
				r.GoogleEventID = ref
			}
			r.CalendarSyncPending = true
		}
		return
	}

	r.GoogleEventID = ref
	r.CalendarSyncPending = false
}

// markCalendarFailure оставляет локальное состояние и ставит флаг для повторной синхронизации
func (s *ReservationService) markCalendarFailure(ctx context.Context, result *TransitionResult, op string, cause error) {
	r := result.Reservation

	s.logger.Warn("Calendar operation failed, reservation flagged for sync",
		zap.String("reservation_id", r.ID.String()),
		zap.String("operation", op),
		zap.Error(cause))

	if s.keepForSync(ctx, r.ID, nil) {
		r.CalendarSyncPending = true
	}

	result.Degraded = errors.Join(result.Degraded, fmt.Errorf("calendar %s event: %w: %w", op, ErrCollaboratorFailure, cause))
}

// keepForSync ставит флаг calendar_sync_pending. eventID не nil сохраняется, чтобы синхронизация
// удалила или перенесла уже созданное событие.
func (s *ReservationService) keepForSync(ctx context.Context, id uuid.UUID, eventID *string) bool {
	if err := s.reservations.FlagCalendarSync(ctx, id, eventID); err != nil {
		s.logger.Error("Failed to flag reservation for calendar sync",
			zap.String("reservation_id", id.String()),
			zap.Error(err))
		return false
	}
	return true
}

func (s *ReservationService) notify(ctx context.Context, result *TransitionResult, kind model.NotificationKind, recipient uuid.UUID) {
	err := s.notifier.Notify(ctx, model.Notification{
		Kind:        kind,
		RecipientID: recipient,
		Reservation: result.Reservation,
	})
	if err == nil {
		return
	}

	s.logger.Warn("Failed to deliver notification",
		zap.String("reservation_id", result.Reservation.ID.String()),
		zap.String("kind", string(kind)),
		zap.String("recipient_id", recipient.String()),
		zap.Error(err))

	result.Degraded = errors.Join(result.Degraded, fmt.Errorf("notify %s: %w: %w", kind, ErrCollaboratorFailure, err))
}

func (s *ReservationService) eventFor(ctx context.Context, r *model.Reservation) calendar.Event {
	summary := fmt.Sprintf("Séance %s", r.SessionType)

	student, err := s.users.GetByID(ctx, r.StudentID)
	if err == nil && student != nil {
		summary = fmt.Sprintf("%s - %s", summary, student.DisplayName())
	}

	var description string
	if r.Notes != nil {
		description = *r.Notes
	}

	return calendar.Event{
		ReservationID: r.ID,
		Summary:       summary,
		Description:   description,
		Start:         r.StartDateTime,
		End:           r.EndDateTime,
	}
}
