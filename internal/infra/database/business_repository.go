package database

import (
	"context"
	"database/sql"
	"time"
)

type BusinessRepository struct {
	DB *sql.DB
}

func NewBusinessRepository(db *sql.DB) *BusinessRepository {
	return &BusinessRepository{DB: db}
}

// DeactivateExpiredComplimentary desliga as cortesias vencidas e devolve os ids afetados.
func (r *BusinessRepository) DeactivateExpiredComplimentary(ctx context.Context, now time.Time) ([]string, error) {
	query := `
		UPDATE businesses SET is_complimentary = FALSE, subscription_active = FALSE, updated_at = $1
		WHERE is_complimentary AND complimentary_until < $1
		RETURNING id
	`
	rows, err := r.DB.QueryContext(ctx, query, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
