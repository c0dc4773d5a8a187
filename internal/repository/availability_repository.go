package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/mytrackly_booking/internal/model"
	"github.com/Freeeeeet/mytrackly_booking/internal/repository/base"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AvailabilityRepository хранит документ доступности коуча одной строкой
type AvailabilityRepository struct {
	*base.Repository
}

func NewAvailabilityRepository(pool *pgxpool.Pool) *AvailabilityRepository {
	return &AvailabilityRepository{Repository: base.NewRepository(pool)}
}

// GetByCoachID получает документ, nil если коуч ещё ничего не сохранял
func (r *AvailabilityRepository) GetByCoachID(ctx context.Context, coachID uuid.UUID) (*model.AvailabilityConfig, error) {
	query := `
		SELECT coach_id, availabilities, slot_duration, updated_at
		FROM coach_availabilities
		WHERE coach_id = $1
	`

	var cfg model.AvailabilityConfig
	err := r.QueryRow(ctx, query, coachID).Scan(
		&cfg.CoachID,
		&cfg.Availabilities,
		&cfg.SlotDuration,
		&cfg.UpdatedAt,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get availability by coach: %w", err)
	}

	if cfg.Availabilities == nil {
		cfg.Availabilities = []model.AvailabilitySlot{}
	}

	return &cfg, nil
}

// Replace целиком заменяет документ одним upsert, последняя запись выигрывает
func (r *AvailabilityRepository) Replace(ctx context.Context, cfg *model.AvailabilityConfig) error {
	query := `
		INSERT INTO coach_availabilities (coach_id, availabilities, slot_duration, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (coach_id) DO UPDATE
		SET availabilities = EXCLUDED.availabilities,
		    slot_duration = EXCLUDED.slot_duration,
		    updated_at = EXCLUDED.updated_at
		RETURNING updated_at
	`

	err := r.QueryRow(ctx, query, cfg.CoachID, cfg.Availabilities, cfg.SlotDuration).Scan(&cfg.UpdatedAt)
	if err != nil {
		return fmt.Errorf("replace availability: %w", err)
	}

	return nil
}
