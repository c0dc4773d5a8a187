package calendar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const reservationIDKey = "reservationId"

// GoogleProvider пишет события в один календарь Google
type GoogleProvider struct {
	service    *gcal.Service
	calendarID string
}

func NewGoogleProvider(ctx context.Context, calendarID string, opts ...option.ClientOption) (*GoogleProvider, error) {
	service, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create google calendar service: %w", err)
	}

	if calendarID == "" {
		calendarID = "primary"
	}

	return &GoogleProvider{service: service, calendarID: calendarID}, nil
}

func (p *GoogleProvider) CreateEvent(ctx context.Context, event Event) (string, error) {
	created, err := p.service.Events.Insert(p.calendarID, toGoogleEvent(event)).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("insert event: %w", classify(err))
	}
	return created.Id, nil
}

func (p *GoogleProvider) UpdateEvent(ctx context.Context, externalID string, event Event) error {
	_, err := p.service.Events.Patch(p.calendarID, externalID, toGoogleEvent(event)).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("patch event %s: %w", externalID, classify(err))
	}
	return nil
}

func (p *GoogleProvider) DeleteEvent(ctx context.Context, externalID string) error {
	err := p.service.Events.Delete(p.calendarID, externalID).Context(ctx).Do()
	if err != nil {
		// Событие уже удалено
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && (apiErr.Code == http.StatusNotFound || apiErr.Code == http.StatusGone) {
			return nil
		}
		return fmt.Errorf("delete event %s: %w", externalID, classify(err))
	}
	return nil
}

func toGoogleEvent(event Event) *gcal.Event {
	return &gcal.Event{
		Summary:     event.Summary,
		Description: event.Description,
		Start:       &gcal.EventDateTime{DateTime: event.Start.UTC().Format(time.RFC3339)},
		End:         &gcal.EventDateTime{DateTime: event.End.UTC().Format(time.RFC3339)},
		ExtendedProperties: &gcal.EventExtendedProperties{
			Private: map[string]string{reservationIDKey: event.ReservationID.String()},
		},
	}
}

// classify помечает 4xx (кроме 429) как постоянные ошибки
func classify(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code >= 400 && apiErr.Code < 500 && apiErr.Code != http.StatusTooManyRequests {
		return fmt.Errorf("%w: %w", ErrPermanent, err)
	}
	return err
}
