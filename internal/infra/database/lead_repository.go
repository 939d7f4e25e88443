package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/entity"
)

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

const leadColumns = `id, full_name, email, phone, tax_id, user_id, source, source_detail, status,
	first_activity_type, first_activity_date, first_activity_paid, first_activity_online,
	created_at, updated_at`

func scanLead(row scanner) (*entity.Lead, error) {
	var (
		lead                                    entity.Lead
		phone, taxID, userID, detail, firstType sql.NullString
		firstDate                               sql.NullTime
	)
	err := row.Scan(
		&lead.ID, &lead.FullName, &lead.Email, &phone, &taxID, &userID, &lead.Source, &detail, &lead.Status,
		&firstType, &firstDate, &lead.FirstActivityPaid, &lead.FirstActivityOnline,
		&lead.CreatedAt, &lead.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	lead.Phone = phone.String
	lead.TaxID = taxID.String
	lead.UserID = userID.String
	lead.SourceDetail = detail.String
	lead.FirstActivityType = firstType.String
	if firstDate.Valid {
		lead.FirstActivityDate = &firstDate.Time
	}
	return &lead, nil
}

func (r *LeadRepository) FindByTaxID(ctx context.Context, taxID string) (*entity.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE tax_id = $1`
	return scanLead(r.DB.QueryRowContext(ctx, query, taxID))
}

// FindByEmail devolve o lead mais antigo com o e-mail, com ou sem CPF.
func (r *LeadRepository) FindByEmail(ctx context.Context, email string) (*entity.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE lower(email) = lower($1) ORDER BY created_at LIMIT 1`
	return scanLead(r.DB.QueryRowContext(ctx, query, email))
}

// Create não sobrescreve nada: conflito nos índices únicos vira entity.ErrLeadExists.
func (r *LeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	query := `
		INSERT INTO leads (
			id, full_name, email, phone, tax_id, user_id, source, source_detail, status,
			first_activity_type, first_activity_date, first_activity_paid, first_activity_online,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT DO NOTHING
	`
	res, err := r.DB.ExecContext(ctx, query,
		lead.ID,
		lead.FullName,
		lead.Email,
		nullString(lead.Phone),
		nullString(lead.TaxID),
		nullString(lead.UserID),
		lead.Source,
		nullString(lead.SourceDetail),
		lead.Status,
		nullString(lead.FirstActivityType),
		lead.FirstActivityDate,
		lead.FirstActivityPaid,
		lead.FirstActivityOnline,
		lead.CreatedAt,
		lead.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("erro ao criar lead: %w", err)
	}
	inserted, err := affected(res)
	if err != nil {
		return err
	}
	if !inserted {
		return entity.ErrLeadExists
	}
	return nil
}

func (r *LeadRepository) UpdateStatus(ctx context.Context, id string, status entity.LeadStatus) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE leads SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
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
