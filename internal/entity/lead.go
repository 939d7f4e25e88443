package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type LeadStatus string

const (
	LeadNew       LeadStatus = "new"
	LeadContacted LeadStatus = "contacted"
	LeadQualified LeadStatus = "qualified"
	LeadConverted LeadStatus = "converted"
	LeadLost      LeadStatus = "lost"
	LeadActive    LeadStatus = "active"
)

// Origens conhecidas de lead
const (
	SourceReferral = "indicacao"
	SourceEvent    = "evento"
	SourceInternal = "interno"
	SourceSite     = "site"
	SourceCheckout = "checkout"
)

func (s LeadStatus) Valid() bool {
	switch s {
	case LeadNew, LeadContacted, LeadQualified, LeadConverted, LeadLost, LeadActive:
		return true
	}
	return false
}

type Lead struct {
	ID           string     `json:"id"`
	FullName     string     `json:"full_name"`
	Email        string     `json:"email"`
	Phone        string     `json:"phone,omitempty"`
	TaxID        string     `json:"tax_id,omitempty"`
	UserID       string     `json:"user_id,omitempty"`
	Source       string     `json:"source"`
	SourceDetail string     `json:"source_detail,omitempty"`
	Status       LeadStatus `json:"status"`

	FirstActivityType   string     `json:"first_activity_type,omitempty"`
	FirstActivityDate   *time.Time `json:"first_activity_date,omitempty"`
	FirstActivityPaid   bool       `json:"first_activity_paid"`
	FirstActivityOnline bool       `json:"first_activity_online"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewLead monta um lead novo (status new) com os dados da primeira atividade.
func NewLead(email, name, taxID, source, sourceDetail string, activityType string, paid, online bool, now time.Time) *Lead {
	first := now
	return &Lead{
		ID:                  uuid.New().String(),
		FullName:            strings.TrimSpace(name),
		Email:               NormalizeEmail(email),
		TaxID:               NormalizeTaxID(taxID),
		Source:              source,
		SourceDetail:        sourceDetail,
		Status:              LeadNew,
		FirstActivityType:   activityType,
		FirstActivityDate:   &first,
		FirstActivityPaid:   paid,
		FirstActivityOnline: online,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeTaxID deixa só os dígitos do CPF/CNPJ.
func NormalizeTaxID(taxID string) string {
	var b strings.Builder
	for _, r := range taxID {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
