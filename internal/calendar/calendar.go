// Package calendar отражает брони во внешнем календаре.
package calendar

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrPermanent ошибка провайдера, которую бессмысленно повторять
var ErrPermanent = errors.New("calendar provider rejected the request")

// Event событие внешнего календаря для одной брони
type Event struct {
	ReservationID uuid.UUID
	Summary       string
	Description   string
	Start         time.Time
	End           time.Time
}

// Provider контракт внешнего календаря
type Provider interface {
	CreateEvent(ctx context.Context, event Event) (string, error)
	UpdateEvent(ctx context.Context, externalID string, event Event) error
	DeleteEvent(ctx context.Context, externalID string) error
}

// Disabled используется когда календарь не настроен: события не создаются
type Disabled struct{}

func (Disabled) CreateEvent(context.Context, Event) (string, error) { return "", nil }

func (Disabled) UpdateEvent(context.Context, string, Event) error { return nil }

func (Disabled) DeleteEvent(context.Context, string) error { return nil }
