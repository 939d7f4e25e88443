package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/entity"
)

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// OutboxRepository serve os dois lados: os casos de uso enfileiram, o relay e o
// consumer reivindicam e registram o resultado.
type OutboxRepository struct {
	DB *sql.DB
}

func NewOutboxRepository(db *sql.DB) *OutboxRepository {
	return &OutboxRepository{DB: db}
}

func insertOutbox(ctx context.Context, db execer, task *entity.OutboxTask) error {
	query := `
		INSERT INTO outbox_tasks (id, kind, payload, status, attempts, next_attempt_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
	`
	_, err := db.ExecContext(ctx, query, task.ID, task.Kind, string(task.Payload), task.Status, task.Attempts, task.NextAttemptAt, task.CreatedAt)
	if err != nil {
		return fmt.Errorf("erro ao enfileirar task %s: %w", task.Kind, err)
	}
	return nil
}

func (r *OutboxRepository) Enqueue(ctx context.Context, task *entity.OutboxTask) error {
	return insertOutbox(ctx, r.DB, task)
}

// ClaimDue pega tasks pendentes vencidas, e também dispatched cujo lease expirou
// (relay ou consumer caiu no meio). SKIP LOCKED deixa vários relays rodarem juntos.
// O locked_until devolvido vai na mensagem e é o token que o consumer apresenta.
func (r *OutboxRepository) ClaimDue(ctx context.Context, now time.Time, limit int, lease time.Duration) ([]*entity.OutboxTask, error) {
	query := `
		UPDATE outbox_tasks SET status = 'dispatched', locked_until = $2, updated_at = $1
		WHERE id IN (
			SELECT id FROM outbox_tasks
			WHERE (status = 'pending' AND next_attempt_at <= $1)
			   OR (status = 'dispatched' AND locked_until < $1)
			ORDER BY next_attempt_at
			LIMIT $3
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, kind, payload, status, attempts, next_attempt_at, last_error, locked_until, created_at
	`
	rows, err := r.DB.QueryContext(ctx, query, now, now.Add(lease), limit)
	if err != nil {
		return nil, fmt.Errorf("erro ao reivindicar tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*entity.OutboxTask
	for rows.Next() {
		var (
			t           entity.OutboxTask
			payload     []byte
			lastErr     sql.NullString
			lockedUntil sql.NullTime
		)
		if err := rows.Scan(&t.ID, &t.Kind, &payload, &t.Status, &t.Attempts, &t.NextAttemptAt, &lastErr, &lockedUntil, &t.CreatedAt); err != nil {
			return nil, err
		}
		t.Payload = payload
		t.LastError = lastErr.String
		if lockedUntil.Valid {
			t.LockedUntil = &lockedUntil.Time
		}
		tasks = append(tasks, &t)
	}
	return tasks, rows.Err()
}

func (r *OutboxRepository) Acquire(ctx context.Context, id string, lease, until time.Time) (*entity.OutboxTask, bool, error) {
	query := `
		UPDATE outbox_tasks SET locked_until = $3, updated_at = NOW()
		WHERE id = $1 AND status = 'dispatched' AND locked_until = $2
		RETURNING attempts, locked_until
	`
	var (
		attempts    int
		lockedUntil time.Time
	)
	err := r.DB.QueryRowContext(ctx, query, id, lease, until).Scan(&attempts, &lockedUntil)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("erro ao assumir task %s: %w", id, err)
	}
	return &entity.OutboxTask{ID: id, Status: entity.OutboxDispatched, Attempts: attempts, LockedUntil: &lockedUntil}, true, nil
}

func leaseResult(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return entity.ErrLeaseLost
	}
	return nil
}

func (r *OutboxRepository) MarkDone(ctx context.Context, id string, lease time.Time) error {
	query := `
		UPDATE outbox_tasks SET status = 'done', locked_until = NULL, last_error = NULL, updated_at = NOW()
		WHERE id = $1 AND status = 'dispatched' AND locked_until = $2
	`
	return leaseResult(r.DB.ExecContext(ctx, query, id, lease))
}

func (r *OutboxRepository) Reschedule(ctx context.Context, id string, lease time.Time, attempts int, next time.Time, lastErr string) error {
	query := `
		UPDATE outbox_tasks SET status = 'pending', attempts = $3, next_attempt_at = $4,
			last_error = $5, locked_until = NULL, updated_at = NOW()
		WHERE id = $1 AND status = 'dispatched' AND locked_until = $2
	`
	return leaseResult(r.DB.ExecContext(ctx, query, id, lease, attempts, next, lastErr))
}

func (r *OutboxRepository) MarkDead(ctx context.Context, id string, lease time.Time, attempts int, lastErr string) error {
	query := `
		UPDATE outbox_tasks SET status = 'dead', attempts = $3, last_error = $4, locked_until = NULL, updated_at = NOW()
		WHERE id = $1 AND status = 'dispatched' AND locked_until = $2
	`
	return leaseResult(r.DB.ExecContext(ctx, query, id, lease, attempts, lastErr))
}

// Stats conta as tasks por status; o relay publica no gauge outbox_tasks_by_status.
func (r *OutboxRepository) Stats(ctx context.Context) (map[entity.OutboxStatus]int, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT status, COUNT(*) FROM outbox_tasks GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := map[entity.OutboxStatus]int{}
	for rows.Next() {
		var (
			status entity.OutboxStatus
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}
