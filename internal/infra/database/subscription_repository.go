package database

import (
	"context"
	"database/sql"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/entity"
)

type SubscriptionRepository struct {
	DB *sql.DB
}

func NewSubscriptionRepository(db *sql.DB) *SubscriptionRepository {
	return &SubscriptionRepository{DB: db}
}

const subscriptionColumns = `id, lead_id, user_id, plan_id, name, email, tax_id, gateway_customer_id,
	gateway_subscription_id, amount_cents, status, invoice_url, created_at, updated_at`

func scanSubscription(row scanner) (*entity.Subscription, error) {
	var (
		sub                     entity.Subscription
		leadID, userID, invoice sql.NullString
	)
	err := row.Scan(&sub.ID, &leadID, &userID, &sub.PlanID, &sub.Name, &sub.Email, &sub.TaxID, &sub.GatewayCustomerID,
		&sub.GatewaySubscriptionID, &sub.AmountCents, &sub.Status, &invoice, &sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	sub.LeadID = leadID.String
	sub.UserID = userID.String
	sub.InvoiceURL = invoice.String
	return &sub, nil
}

func (r *SubscriptionRepository) Create(ctx context.Context, sub *entity.Subscription) error {
	query := `
		INSERT INTO subscriptions (
			id,
			lead_id,
			user_id,
			plan_id,
			name,
			email,
			tax_id,
			gateway_customer_id,
			gateway_subscription_id,
			amount_cents,
			status,
			invoice_url,
			created_at,
			updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	log.WithFields(log.Fields{
		"subscription_id": sub.ID,
		"plan_id":         sub.PlanID,
		"gateway_id":      sub.GatewaySubscriptionID,
	}).Debug("[REPO SUBSCRIPTION] salvando assinatura")

	_, err := r.DB.ExecContext(ctx, query,
		sub.ID,
		nullString(sub.LeadID),
		nullString(sub.UserID),
		sub.PlanID,
		sub.Name,
		sub.Email,
		sub.TaxID,
		sub.GatewayCustomerID,
		sub.GatewaySubscriptionID,
		sub.AmountCents,
		sub.Status,
		nullString(sub.InvoiceURL),
		sub.CreatedAt,
		sub.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("erro ao salvar assinatura: %w", err)
	}
	return nil
}

func (r *SubscriptionRepository) FindByID(ctx context.Context, id string) (*entity.Subscription, error) {
	return scanSubscription(r.DB.QueryRowContext(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions WHERE id = $1`, id))
}

func (r *SubscriptionRepository) FindByGatewaySubscriptionID(ctx context.Context, gatewayID string) (*entity.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE gateway_subscription_id = $1 ORDER BY created_at DESC LIMIT 1`
	return scanSubscription(r.DB.QueryRowContext(ctx, query, gatewayID))
}

func (r *SubscriptionRepository) UpdateStatus(ctx context.Context, id string, status string) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE subscriptions SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("erro ao atualizar status da assinatura: %w", err)
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
