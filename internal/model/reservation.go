package model

import (
	"time"

	"github.com/google/uuid"
)

type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "pending"   // Ожидает ответа коуча
	ReservationStatusConfirmed ReservationStatus = "confirmed" // Подтверждено
	ReservationStatusCancelled ReservationStatus = "cancelled" // Отменено
	ReservationStatusRefused   ReservationStatus = "refused"   // Отклонено коучем
)

// ActiveStatuses статусы, которые занимают время коуча
var ActiveStatuses = []ReservationStatus{ReservationStatusPending, ReservationStatusConfirmed}

// Valid проверяет что статус известен
func (s ReservationStatus) Valid() bool {
	switch s {
	case ReservationStatusPending, ReservationStatusConfirmed, ReservationStatusCancelled, ReservationStatusRefused:
		return true
	}
	return false
}

// IsActive pending и confirmed занимают слот
func (s ReservationStatus) IsActive() bool {
	return s == ReservationStatusPending || s == ReservationStatusConfirmed
}

// IsTerminal из cancelled и refused переходов нет
func (s ReservationStatus) IsTerminal() bool {
	return s == ReservationStatusCancelled || s == ReservationStatusRefused
}

// Типы сессий, встречающиеся в клиенте. Набор открытый
const (
	SessionTypeMuscu  = "muscu"
	SessionTypeYoga   = "yoga"
	SessionTypeCardio = "cardio"
	SessionTypeOther  = "autre"
)

type Reservation struct {
	ID            uuid.UUID         `json:"id"`
	CoachID       uuid.UUID         `json:"coachId"`
	StudentID     uuid.UUID         `json:"studentId"`
	StartDateTime time.Time         `json:"startDateTime"`
	EndDateTime   time.Time         `json:"endDateTime"`
	SessionType   string            `json:"sessionType"`
	Notes         *string           `json:"notes,omitempty"`
	Status        ReservationStatus `json:"status"`
	GoogleEventID *string           `json:"googleEventId,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`

	// Внешний календарь не синхронизирован, нужен повтор
	CalendarSyncPending bool `json:"-"`
}

// HasCalendarEvent проверяет что бронь отражена во внешнем календаре
func (r *Reservation) HasCalendarEvent() bool {
	return r.GoogleEventID != nil && *r.GoogleEventID != ""
}

// Overlaps проверяет пересечение полуоткрытых интервалов [start, end)
func (r *Reservation) Overlaps(start, end time.Time) bool {
	return r.StartDateTime.Before(end) && start.Before(r.EndDateTime)
}

// ReservationVersion состояние брони, от которого зависит событие календаря
type ReservationVersion struct {
	Status ReservationStatus
	Start  time.Time
	End    time.Time
}

// Version снимок статуса и времени брони
func (r *Reservation) Version() ReservationVersion {
	return ReservationVersion{Status: r.Status, Start: r.StartDateTime, End: r.EndDateTime}
}

// Matches сравнивает моменты времени без учёта локации
func (v ReservationVersion) Matches(other ReservationVersion) bool {
	return v.Status == other.Status && v.Start.Equal(other.Start) && v.End.Equal(other.End)
}
