package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/entity"
)

type DealRepository struct {
	DB *sql.DB
}

func NewDealRepository(db *sql.DB) *DealRepository {
	return &DealRepository{DB: db}
}

const dealColumns = `id, title, lead_id, pipeline_id, stage, product_type, value_cents, won, closed_at, metadata, created_at, updated_at`

func scanDeal(row scanner) (*entity.Deal, error) {
	var (
		d        entity.Deal
		won      sql.NullBool
		closedAt sql.NullTime
		meta     []byte
	)
	err := row.Scan(&d.ID, &d.Title, &d.LeadID, &d.PipelineID, &d.Stage, &d.ProductType, &d.ValueCents,
		&won, &closedAt, &meta, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	if won.Valid {
		d.Won = &won.Bool
	}
	if closedAt.Valid {
		d.ClosedAt = &closedAt.Time
	}
	if d.Metadata, err = entity.DecodeMetadata(meta); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DealRepository) Create(ctx context.Context, d *entity.Deal) error {
	meta, err := metadataArg(d.Metadata)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO deals (id, title, lead_id, pipeline_id, stage, product_type, value_cents, won, closed_at, metadata, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err = r.DB.ExecContext(ctx, query,
		d.ID, d.Title, d.LeadID, d.PipelineID, d.Stage, d.ProductType, d.ValueCents,
		d.Won, d.ClosedAt, meta, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("erro ao criar deal: %w", err)
	}
	return nil
}

func (r *DealRepository) FindByID(ctx context.Context, id string) (*entity.Deal, error) {
	return scanDeal(r.DB.QueryRowContext(ctx, `SELECT `+dealColumns+` FROM deals WHERE id = $1`, id))
}

// FindOpen devolve o deal aberto mais recente do lead para o produto.
func (r *DealRepository) FindOpen(ctx context.Context, leadID, productType string) (*entity.Deal, error) {
	query := `SELECT ` + dealColumns + ` FROM deals
		WHERE lead_id = $1 AND product_type = $2 AND won IS NULL
		ORDER BY created_at DESC LIMIT 1`
	return scanDeal(r.DB.QueryRowContext(ctx, query, leadID, productType))
}

func (r *DealRepository) UpdateOpen(ctx context.Context, id string, upd entity.DealUpdate) error {
	query := `
		UPDATE deals SET
			stage       = COALESCE($2::text, stage),
			won         = COALESCE($3::boolean, won),
			value_cents = COALESCE($4::bigint, value_cents),
			closed_at   = COALESCE($5::timestamptz, closed_at),
			updated_at  = NOW()
		WHERE id = $1 AND won IS NULL
	`
	res, err := r.DB.ExecContext(ctx, query, id, upd.Stage, upd.Won, upd.ValueCents, upd.ClosedAt)
	if err != nil {
		return fmt.Errorf("erro ao atualizar deal: %w", err)
	}
	ok, err := affected(res)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}

	// nada mudou: ou não existe ou já estava fechado
	var exists bool
	if err := r.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM deals WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return entity.ErrNotFound
	}
	return entity.ErrAlreadyClosed
}

// CloseLatestOpen fecha o deal aberto mais recente. O stage só vira convertido
// quando o pipeline tem esse stage; SKIP LOCKED impede dois webhooks de fecharem o mesmo deal.
func (r *DealRepository) CloseLatestOpen(ctx context.Context, leadID, productType string, valueCents int64, closedAt time.Time) (*entity.Deal, error) {
	query := `
		UPDATE deals d SET
			won         = TRUE,
			closed_at   = $4,
			value_cents = CASE WHEN $3::bigint > 0 THEN $3::bigint ELSE d.value_cents END,
			stage       = CASE WHEN p.stages @> jsonb_build_array(jsonb_build_object('id', $5::text))
			                   THEN $5::text ELSE d.stage END,
			updated_at  = $4
		FROM pipelines p
		WHERE p.id = d.pipeline_id
		  AND d.id = (
			SELECT id FROM deals
			WHERE lead_id = $1 AND product_type = $2 AND won IS NULL
			ORDER BY created_at DESC
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		  )
		RETURNING d.id, d.title, d.lead_id, d.pipeline_id, d.stage, d.product_type, d.value_cents,
			d.won, d.closed_at, d.metadata, d.created_at, d.updated_at
	`
	return scanDeal(r.DB.QueryRowContext(ctx, query, leadID, productType, valueCents, closedAt, entity.StageConverted))
}
