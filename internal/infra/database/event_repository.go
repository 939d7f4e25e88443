package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/entity"
)

type EventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{DB: db}
}

const eventColumns = `id, title, description, starts_at, location, online, meeting_url, price_cents,
	max_participants, current_participants, status, created_at, updated_at`

func scanEvent(row scanner) (*entity.Event, error) {
	var (
		e                              entity.Event
		description, location, meeting sql.NullString
		maxParticipants                sql.NullInt64
	)
	err := row.Scan(&e.ID, &e.Title, &description, &e.StartsAt, &location, &e.Online, &meeting, &e.PriceCents,
		&maxParticipants, &e.CurrentParticipants, &e.Status, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	e.Description = description.String
	e.Location = location.String
	e.MeetingURL = meeting.String
	if maxParticipants.Valid {
		limit := int(maxParticipants.Int64)
		e.MaxParticipants = &limit
	}
	return &e, nil
}

func (r *EventRepository) Create(ctx context.Context, e *entity.Event) error {
	query := `
		INSERT INTO events (
			id, title, description, starts_at, location, online, meeting_url, price_cents,
			max_participants, current_participants, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.DB.ExecContext(ctx, query,
		e.ID, e.Title, nullString(e.Description), e.StartsAt, nullString(e.Location), e.Online,
		nullString(e.MeetingURL), e.PriceCents, e.MaxParticipants, e.CurrentParticipants, e.Status,
		e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("erro ao criar evento: %w", err)
	}
	return nil
}

func (r *EventRepository) FindByID(ctx context.Context, id string) (*entity.Event, error) {
	return scanEvent(r.DB.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
}

// ReserveSeat ocupa uma vaga num único UPDATE condicional; duas inscrições
// concorrentes nunca passam do limite.
func (r *EventRepository) ReserveSeat(ctx context.Context, id string) error {
	query := `
		UPDATE events SET current_participants = current_participants + 1, updated_at = NOW()
		WHERE id = $1
		  AND status = 'published'
		  AND (max_participants IS NULL OR current_participants < max_participants)
	`
	res, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("erro ao reservar vaga: %w", err)
	}
	ok, err := affected(res)
	if err != nil || ok {
		return err
	}

	e, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !e.IsPublished() {
		return entity.ErrEventNotPublished
	}
	return entity.ErrEventFull
}

func (r *EventRepository) ReleaseSeat(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE events SET current_participants = GREATEST(current_participants - 1, 0), updated_at = NOW() WHERE id = $1`, id)
	return err
}

func (r *EventRepository) UpdateStatus(ctx context.Context, id string, status entity.EventStatus) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE events SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	ok, err := affected(res)
	if err != nil {
		return err
	}
	if !ok {
		return entity.ErrNotFound
	}
	return nil
}

// ListUpcoming devolve eventos publicados que ainda não começaram.
func (r *EventRepository) ListUpcoming(ctx context.Context, now time.Time) ([]*entity.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE status = 'published' AND starts_at > $1 ORDER BY starts_at`
	return r.list(ctx, query, now)
}

func (r *EventRepository) ListStartingBetween(ctx context.Context, from, to time.Time) ([]*entity.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events
		WHERE status = 'published' AND starts_at >= $1 AND starts_at < $2 ORDER BY starts_at`
	return r.list(ctx, query, from, to)
}

func (r *EventRepository) list(ctx context.Context, query string, args ...any) ([]*entity.Event, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*entity.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
