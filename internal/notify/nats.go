package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Freeeeeet/mytrackly_booking/internal/model"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// ReservationEvent публикуется в NATS на subject, равный виду уведомления
type ReservationEvent struct {
	EventType     string    `json:"event_type"`
	RecipientID   uuid.UUID `json:"recipient_id"`
	ReservationID uuid.UUID `json:"reservation_id"`
	CoachID       uuid.UUID `json:"coach_id"`
	StudentID     uuid.UUID `json:"student_id"`
	Status        string    `json:"status"`
	StartAt       time.Time `json:"start_at"`
	EndAt         time.Time `json:"end_at"`
	SessionType   string    `json:"session_type"`
}

// NewReservationEvent собирает событие из уведомления
func NewReservationEvent(n model.Notification) ReservationEvent {
	r := n.Reservation
	return ReservationEvent{
		EventType:     string(n.Kind),
		RecipientID:   n.RecipientID,
		ReservationID: r.ID,
		CoachID:       r.CoachID,
		StudentID:     r.StudentID,
		Status:        string(r.Status),
		StartAt:       r.StartDateTime,
		EndAt:         r.EndDateTime,
		SessionType:   r.SessionType,
	}
}

type publisher interface {
	Publish(subject string, data []byte) error
}

type NatsNotifier struct {
	conn publisher
}

// NewNatsNotifier подключается к NATS
func NewNatsNotifier(natsURL string) (*NatsNotifier, *nats.Conn, error) {
	nc, err := nats.Connect(natsURL, nats.Name("mytrackly-booking"))
	if err != nil {
		return nil, nil, fmt.Errorf("connect nats: %w", err)
	}
	return &NatsNotifier{conn: nc}, nc, nil
}

func (p *NatsNotifier) Notify(_ context.Context, n model.Notification) error {
	payload, err := json.Marshal(NewReservationEvent(n))
	if err != nil {
		return fmt.Errorf("marshal reservation event: %w", err)
	}

	if err := p.conn.Publish(string(n.Kind), payload); err != nil {
		return fmt.Errorf("publish %s: %w", n.Kind, err)
	}

	return nil
}
