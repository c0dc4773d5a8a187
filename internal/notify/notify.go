// Package notify доставляет уведомления участникам брони.
package notify

import (
	"context"
	"errors"

	"github.com/Freeeeeet/mytrackly_booking/internal/model"
)

// Notifier отправляет одно уведомление
type Notifier interface {
	Notify(ctx context.Context, n model.Notification) error
}

// Fanout рассылает уведомление во все каналы, ошибки объединяются
type Fanout []Notifier

func (f Fanout) Notify(ctx context.Context, n model.Notification) error {
	var errs []error
	for _, notifier := range f {
		if err := notifier.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
