package notify

import (
	"fmt"
	"time"

	"github.com/Freeeeeet/mytrackly_booking/internal/model"
)

// FormatDateTime форматирует дату и время
func FormatDateTime(t time.Time) string {
	return t.Format("02/01/2006 15:04")
}

// FormatTimeRange форматирует диапазон времени
func FormatTimeRange(start, end time.Time) string {
	return fmt.Sprintf("%s-%s", start.Format("15:04"), end.Format("15:04"))
}

// GetWeekdayName возвращает название дня недели на французском
func GetWeekdayName(weekday time.Weekday) string {
	names := []string{
		"dimanche",
		"lundi",
		"mardi",
		"mercredi",
		"jeudi",
		"vendredi",
		"samedi",
	}
	return names[weekday]
}

// MessageText текст уведомления в часовом поясе получателя
func MessageText(kind model.NotificationKind, r *model.Reservation, loc *time.Location) string {
	start := r.StartDateTime.In(loc)
	end := r.EndDateTime.In(loc)
	when := fmt.Sprintf("%s %s, %s", GetWeekdayName(start.Weekday()), start.Format("02/01/2006"), FormatTimeRange(start, end))

	switch kind {
	case model.NotificationReservationCreated:
		return fmt.Sprintf("📥 Nouvelle demande de séance %s le %s", r.SessionType, when)
	case model.NotificationReservationAccepted:
		return fmt.Sprintf("✅ Votre séance %s du %s est confirmée", r.SessionType, when)
	case model.NotificationReservationRefused:
		return fmt.Sprintf("❌ Votre demande de séance %s du %s a été refusée", r.SessionType, when)
	case model.NotificationReservationRescheduled:
		return fmt.Sprintf("🔄 Votre séance %s a été déplacée au %s", r.SessionType, when)
	case model.NotificationReservationCancelled:
		return fmt.Sprintf("🚫 La séance %s du %s a été annulée", r.SessionType, when)
	case model.NotificationReservationReminder:
		return fmt.Sprintf("⏰ Rappel : séance %s le %s", r.SessionType, when)
	default:
		return fmt.Sprintf("Séance %s le %s", r.SessionType, FormatDateTime(start))
	}
}
