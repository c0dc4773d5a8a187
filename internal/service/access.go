package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/mytrackly_booking/internal/model"
	"github.com/google/uuid"
)

func requireSession(session *model.Session) error {
	if !session.Authenticated() {
		return ErrUnauthenticated
	}
	return nil
}

// getCoach возвращает ErrNotFound если аккаунта нет или он не коуч
func getCoach(ctx context.Context, users UserRepository, coachID uuid.UUID) (*model.User, error) {
	coach, err := users.GetByID(ctx, coachID)
	if err != nil {
		return nil, fmt.Errorf("get coach: %w", err)
	}

	if coach == nil || !coach.IsCoach() {
		return nil, fmt.Errorf("coach %s: %w", coachID, ErrNotFound)
	}

	return coach, nil
}

// locationFor часовой пояс пользователя или fallback
func locationFor(user *model.User, fallback *time.Location) *time.Location {
	if user.Timezone == "" {
		return fallback
	}
	loc, err := time.LoadLocation(user.Timezone)
	if err != nil {
		return fallback
	}
	return loc
}
