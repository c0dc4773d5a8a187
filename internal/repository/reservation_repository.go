package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/mytrackly_booking/internal/model"
	"github.com/Freeeeeet/mytrackly_booking/internal/repository/base"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const reservationColumns = `id, coach_id, student_id, start_at, end_at, session_type, notes, status,
		google_event_id, calendar_sync_pending, created_at, updated_at`

type ReservationRepository struct {
	*base.Repository
}

func NewReservationRepository(pool *pgxpool.Pool) *ReservationRepository {
	return &ReservationRepository{Repository: base.NewRepository(pool)}
}

// Create создаёт бронь. Пересечение с активной бронью того же коуча отсекается
// exclusion constraint в той же команде INSERT, возвращается base.ErrConflict.
func (r *ReservationRepository) Create(ctx context.Context, reservation *model.Reservation) error {
	if reservation.ID == uuid.Nil {
		reservation.ID = uuid.New()
	}

	query := `
		INSERT INTO calendar_reservations (id, coach_id, student_id, start_at, end_at, session_type, notes, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`

	err := r.QueryRow(
		ctx, query,
		reservation.ID,
		reservation.CoachID,
		reservation.StudentID,
		reservation.StartDateTime,
		reservation.EndDateTime,
		reservation.SessionType,
		reservation.Notes,
		reservation.Status,
	).Scan(&reservation.CreatedAt, &reservation.UpdatedAt)

	if err != nil {
		if base.IsConflict(err) {
			return base.ErrConflict
		}
		return fmt.Errorf("create reservation: %w", err)
	}

	return nil
}

// GetByID получает бронь по ID
func (r *ReservationRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM calendar_reservations WHERE id = $1`

	reservation, err := scanReservation(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get reservation by id: %w", err)
	}

	return reservation, nil
}

// ListByCoach получает брони коуча, пустой statuses - все статусы
func (r *ReservationRepository) ListByCoach(ctx context.Context, coachID uuid.UUID, statuses []model.ReservationStatus) ([]*model.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM calendar_reservations
		WHERE coach_id = $1 AND (cardinality($2::text[]) = 0 OR status = ANY($2))
		ORDER BY start_at
	`

	rows, err := r.Query(ctx, query, coachID, statusStrings(statuses))
	if err != nil {
		return nil, fmt.Errorf("list reservations by coach: %w", err)
	}

	return collectReservations(rows)
}

// ListByStudent получает брони ученика
func (r *ReservationRepository) ListByStudent(ctx context.Context, studentID uuid.UUID, statuses []model.ReservationStatus) ([]*model.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM calendar_reservations
		WHERE student_id = $1 AND (cardinality($2::text[]) = 0 OR status = ANY($2))
		ORDER BY start_at
	`

	rows, err := r.Query(ctx, query, studentID, statusStrings(statuses))
	if err != nil {
		return nil, fmt.Errorf("list reservations by student: %w", err)
	}

	return collectReservations(rows)
}

// ListActiveByCoachBetween активные брони коуча, пересекающие [from, to)
func (r *ReservationRepository) ListActiveByCoachBetween(ctx context.Context, coachID uuid.UUID, from, to time.Time) ([]*model.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM calendar_reservations
		WHERE coach_id = $1
		  AND status IN ('pending', 'confirmed')
		  AND start_at < $3
		  AND end_at > $2
		ORDER BY start_at
	`

	rows, err := r.Query(ctx, query, coachID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list active reservations by coach: %w", err)
	}

	return collectReservations(rows)
}

// UpdateStatus меняет статус только если текущий входит в from.
// nil без ошибки - строка не подошла под условие.
func (r *ReservationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from []model.ReservationStatus, to model.ReservationStatus) (*model.Reservation, error) {
	query := `
		UPDATE calendar_reservations
		SET status = $2, updated_at = now()
		WHERE id = $1 AND status = ANY($3)
		RETURNING ` + reservationColumns

	reservation, err := scanReservation(r.QueryRow(ctx, query, id, to, statusStrings(from)))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("update reservation status: %w", err)
	}

	return reservation, nil
}

// Reschedule переносит бронь. Конфликт с другой активной бронью - base.ErrConflict,
// строка при этом не меняется.
func (r *ReservationRepository) Reschedule(ctx context.Context, id uuid.UUID, from []model.ReservationStatus, start, end time.Time) (*model.Reservation, error) {
	query := `
		UPDATE calendar_reservations
		SET start_at = $2, end_at = $3, updated_at = now()
		WHERE id = $1 AND status = ANY($4)
		RETURNING ` + reservationColumns

	reservation, err := scanReservation(r.QueryRow(ctx, query, id, start, end, statusStrings(from)))
	if err != nil {
		if base.IsConflict(err) {
			return nil, base.ErrConflict
		}
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reschedule reservation: %w", err)
	}

	return reservation, nil
}

// SetCalendarSync сохраняет ID события и флаг синхронизации, если статус и время брони
// не изменились с момента чтения. false - бронь успели изменить, запись не выполнена.
func (r *ReservationRepository) SetCalendarSync(ctx context.Context, id uuid.UUID, expected model.ReservationVersion, eventID *string, pending bool) (bool, error) {
	query := `
		UPDATE calendar_reservations
		SET google_event_id = $2, calendar_sync_pending = $3
		WHERE id = $1 AND status = $4 AND start_at = $5 AND end_at = $6
	`

	affected, err := r.ExecAffected(ctx, query, id, eventID, pending, string(expected.Status), expected.Start, expected.End)
	if err != nil {
		return false, fmt.Errorf("set calendar sync: %w", err)
	}

	return affected > 0, nil
}

// FlagCalendarSync ставит флаг повторной синхронизации независимо от состояния брони.
// eventID nil не затирает уже сохранённое событие.
func (r *ReservationRepository) FlagCalendarSync(ctx context.Context, id uuid.UUID, eventID *string) error {
	query := `
		UPDATE calendar_reservations
		SET google_event_id = COALESCE($2, google_event_id), calendar_sync_pending = true
		WHERE id = $1
	`

	affected, err := r.ExecAffected(ctx, query, id, eventID)
	if err != nil {
		return fmt.Errorf("flag calendar sync: %w", err)
	}

	if affected == 0 {
		return base.ErrNotFound
	}

	return nil
}

// ListCalendarSyncPending брони, которые не удалось отразить во внешнем календаре
func (r *ReservationRepository) ListCalendarSyncPending(ctx context.Context, limit int) ([]*model.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM calendar_reservations
		WHERE calendar_sync_pending = true
		ORDER BY updated_at
		LIMIT $1
	`

	rows, err := r.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list calendar sync pending: %w", err)
	}

	return collectReservations(rows)
}

func scanReservation(row pgx.Row) (*model.Reservation, error) {
	var reservation model.Reservation
	err := row.Scan(
		&reservation.ID,
		&reservation.CoachID,
		&reservation.StudentID,
		&reservation.StartDateTime,
		&reservation.EndDateTime,
		&reservation.SessionType,
		&reservation.Notes,
		&reservation.Status,
		&reservation.GoogleEventID,
		&reservation.CalendarSyncPending,
		&reservation.CreatedAt,
		&reservation.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

func collectReservations(rows pgx.Rows) ([]*model.Reservation, error) {
	defer rows.Close()

	var reservations []*model.Reservation
	for rows.Next() {
		reservation, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		reservations = append(reservations, reservation)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reservations: %w", err)
	}

	return reservations, nil
}

func statusStrings(statuses []model.ReservationStatus) []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, string(s))
	}
	return out
}
