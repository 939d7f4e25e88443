package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/entity"
)

// InteractionRepository só insere; o banco bloqueia UPDATE e DELETE por trigger.
type InteractionRepository struct {
	DB *sql.DB
}

func NewInteractionRepository(db *sql.DB) *InteractionRepository {
	return &InteractionRepository{DB: db}
}

func (r *InteractionRepository) Create(ctx context.Context, i *entity.Interaction) error {
	meta, err := metadataArg(i.Metadata)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO interactions (
			id, lead_id, user_id, tax_id, type, channel, description, metadata,
			activity_paid, activity_online, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = r.DB.ExecContext(ctx, query,
		i.ID,
		nullString(i.LeadID),
		nullString(i.UserID),
		nullString(i.TaxID),
		i.Type,
		i.Channel,
		nullString(i.Description),
		meta,
		i.ActivityPaid,
		i.ActivityOnline,
		i.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("erro ao gravar interação: %w", err)
	}
	return nil
}

// ListByLead devolve a linha do tempo do lead, da mais antiga para a mais nova.
func (r *InteractionRepository) ListByLead(ctx context.Context, leadID string) ([]*entity.Interaction, error) {
	query := `
		SELECT id, lead_id, user_id, tax_id, type, channel, description, metadata,
			activity_paid, activity_online, created_at
		FROM interactions WHERE lead_id = $1 ORDER BY created_at
	`
	rows, err := r.DB.QueryContext(ctx, query, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*entity.Interaction
	for rows.Next() {
		var (
			i                              entity.Interaction
			lead, user, taxID, description sql.NullString
			meta                           []byte
		)
		if err := rows.Scan(&i.ID, &lead, &user, &taxID, &i.Type, &i.Channel, &description, &meta,
			&i.ActivityPaid, &i.ActivityOnline, &i.CreatedAt); err != nil {
			return nil, err
		}
		i.LeadID = lead.String
		i.UserID = user.String
		i.TaxID = taxID.String
		i.Description = description.String
		if i.Metadata, err = entity.DecodeMetadata(meta); err != nil {
			return nil, err
		}
		out = append(out, &i)
	}
	return out, rows.Err()
}
