package model

import "github.com/google/uuid"

type NotificationKind string

const (
	NotificationReservationCreated     NotificationKind = "reservation.created"
	NotificationReservationAccepted    NotificationKind = "reservation.accepted"
	NotificationReservationRefused     NotificationKind = "reservation.refused"
	NotificationReservationRescheduled NotificationKind = "reservation.rescheduled"
	NotificationReservationCancelled   NotificationKind = "reservation.cancelled"
	NotificationReservationReminder    NotificationKind = "reservation.reminder"
)

// Notification запрос на уведомление одного получателя о событии брони
type Notification struct {
	Kind        NotificationKind
	RecipientID uuid.UUID
	Reservation *Reservation
}
