package database

import (
	"context"
	"database/sql"
)

// ProcessedPaymentRepository guarda os pagamentos já tratados pelo webhook.
type ProcessedPaymentRepository struct {
	DB *sql.DB
}

func NewProcessedPaymentRepository(db *sql.DB) *ProcessedPaymentRepository {
	return &ProcessedPaymentRepository{DB: db}
}

func (r *ProcessedPaymentRepository) MarkProcessed(ctx context.Context, paymentID, event string) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO processed_payments (payment_id, event) VALUES ($1, $2) ON CONFLICT (payment_id) DO NOTHING`,
		paymentID, event)
	if err != nil {
		return false, err
	}
	return affected(res)
}
