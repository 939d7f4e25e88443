package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	SubscriptionPending   = "PENDING"
	SubscriptionActive    = "ACTIVE"
	SubscriptionCancelled = "CANCELLED"
)

type Subscription struct {
	ID                    string    `json:"id"`
	LeadID                string    `json:"lead_id,omitempty"`
	UserID                string    `json:"user_id,omitempty"`
	PlanID                string    `json:"plan_id"`
	Name                  string    `json:"name"`
	Email                 string    `json:"email"`
	TaxID                 string    `json:"tax_id"`
	GatewayCustomerID     string    `json:"gateway_customer_id"`
	GatewaySubscriptionID string    `json:"gateway_subscription_id"`
	AmountCents           int64     `json:"amount_cents"`
	Status                string    `json:"status"`
	InvoiceURL            string    `json:"invoice_url,omitempty"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// NewSubscription cria uma nova instância com ID e Timestamps
func NewSubscription(planID, name, email, taxID string, amountCents int64, now time.Time) *Subscription {
	return &Subscription{
		ID:          uuid.New().String(),
		PlanID:      planID,
		Name:        name,
		Email:       NormalizeEmail(email),
		TaxID:       NormalizeTaxID(taxID),
		AmountCents: amountCents,
		Status:      SubscriptionPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
