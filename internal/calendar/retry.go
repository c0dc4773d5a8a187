package calendar

import (
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

// Retrying повторяет временные ошибки провайдера с экспоненциальной задержкой
type Retrying struct {
	next       Provider
	maxRetries uint64
	base       time.Duration
	logger     *zap.Logger
}

func NewRetrying(next Provider, maxRetries uint64, base time.Duration, logger *zap.Logger) *Retrying {
	return &Retrying{
		next:       next,
		maxRetries: maxRetries,
		base:       base,
		logger:     logger,
	}
}

func (r *Retrying) CreateEvent(ctx context.Context, event Event) (string, error) {
	var id string
	err := r.do(ctx, "create", func(ctx context.Context) error {
		var err error
		id, err = r.next.CreateEvent(ctx, event)
		return err
	})
	return id, err
}

func (r *Retrying) UpdateEvent(ctx context.Context, externalID string, event Event) error {
	return r.do(ctx, "update", func(ctx context.Context) error {
		return r.next.UpdateEvent(ctx, externalID, event)
	})
}

func (r *Retrying) DeleteEvent(ctx context.Context, externalID string) error {
	return r.do(ctx, "delete", func(ctx context.Context) error {
		return r.next.DeleteEvent(ctx, externalID)
	})
}

func (r *Retrying) do(ctx context.Context, op string, f func(context.Context) error) error {
	backoff := retry.WithMaxRetries(r.maxRetries, retry.NewExponential(r.base))

	attempt := 0
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		err := f(ctx)
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrPermanent) {
			return err
		}

		r.logger.Warn("Calendar call failed, retrying",
			zap.String("operation", op),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		return retry.RetryableError(err)
	})
}
