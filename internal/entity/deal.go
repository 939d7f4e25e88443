package entity

import (
	"time"

	"github.com/google/uuid"
)

// Tipos de produto
const (
	ProductPlan  = "plano"
	ProductEvent = "evento"
)

type Deal struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	LeadID      string     `json:"lead_id"`
	PipelineID  string     `json:"pipeline_id"`
	Stage       string     `json:"stage"`
	ProductType string     `json:"product_type"`
	ValueCents  int64      `json:"value_cents"`
	Won         *bool      `json:"won"` // nil = aberto
	ClosedAt    *time.Time `json:"closed_at,omitempty"`
	Metadata    Metadata   `json:"metadata,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func NewDeal(title, leadID, pipelineID, stage, productType string, valueCents int64, meta Metadata, now time.Time) *Deal {
	return &Deal{
		ID:          uuid.New().String(),
		Title:       title,
		LeadID:      leadID,
		PipelineID:  pipelineID,
		Stage:       stage,
		ProductType: productType,
		ValueCents:  valueCents,
		Metadata:    meta,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (d *Deal) IsOpen() bool { return d.Won == nil }

// DealUpdate são as mudanças de advanceDeal; campos nil ficam como estão.
type DealUpdate struct {
	Stage      *string
	Won        *bool
	ValueCents *int64
	ClosedAt   *time.Time
}

func (u DealUpdate) Empty() bool {
	return u.Stage == nil && u.Won == nil && u.ValueCents == nil
}
