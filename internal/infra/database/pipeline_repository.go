package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/entity"
)

type PipelineRepository struct {
	DB *sql.DB
}

func NewPipelineRepository(db *sql.DB) *PipelineRepository {
	return &PipelineRepository{DB: db}
}

const pipelineColumns = `id, name, slug, kind, stages, active, created_at, updated_at`

func scanPipeline(row scanner) (*entity.Pipeline, error) {
	var (
		p      entity.Pipeline
		stages []byte
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Slug, &p.Kind, &stages, &p.Active, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, notFound(err)
	}
	if err := json.Unmarshal(stages, &p.Stages); err != nil {
		return nil, fmt.Errorf("stages inválidas no pipeline %s: %w", p.ID, err)
	}
	return &p, nil
}

func (r *PipelineRepository) FindByID(ctx context.Context, id string) (*entity.Pipeline, error) {
	return scanPipeline(r.DB.QueryRowContext(ctx, `SELECT `+pipelineColumns+` FROM pipelines WHERE id = $1`, id))
}

// FindActiveByKind devolve o pipeline ativo mais antigo do tipo.
func (r *PipelineRepository) FindActiveByKind(ctx context.Context, kind entity.PipelineKind) (*entity.Pipeline, error) {
	query := `SELECT ` + pipelineColumns + ` FROM pipelines WHERE kind = $1 AND active ORDER BY created_at LIMIT 1`
	return scanPipeline(r.DB.QueryRowContext(ctx, query, kind))
}

func (r *PipelineRepository) List(ctx context.Context) ([]*entity.Pipeline, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+pipelineColumns+` FROM pipelines ORDER BY kind, created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*entity.Pipeline
	for rows.Next() {
		p, err := scanPipeline(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PipelineRepository) Create(ctx context.Context, p *entity.Pipeline) error {
	_, err := r.insert(ctx, p, "")
	return err
}

// CreateIfMissing é usado pelo seed: slug existente não é tocado.
func (r *PipelineRepository) CreateIfMissing(ctx context.Context, p *entity.Pipeline) (bool, error) {
	return r.insert(ctx, p, "ON CONFLICT (slug) DO NOTHING")
}

func (r *PipelineRepository) insert(ctx context.Context, p *entity.Pipeline, onConflict string) (bool, error) {
	stages, err := json.Marshal(p.Stages)
	if err != nil {
		return false, err
	}
	query := `
		INSERT INTO pipelines (id, name, slug, kind, stages, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) ` + onConflict
	res, err := r.DB.ExecContext(ctx, query, p.ID, p.Name, p.Slug, p.Kind, string(stages), p.Active, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if _, dup := uniqueConstraint(err); dup {
			return false, fmt.Errorf("%w: slug %q already exists", entity.ErrInvalidPipeline, p.Slug)
		}
		return false, fmt.Errorf("erro ao criar pipeline: %w", err)
	}
	return affected(res)
}

func (r *PipelineRepository) Update(ctx context.Context, p *entity.Pipeline) error {
	stages, err := json.Marshal(p.Stages)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx,
		`UPDATE pipelines SET name = $2, stages = $3, active = $4, updated_at = $5 WHERE id = $1`,
		p.ID, p.Name, string(stages), p.Active, p.UpdatedAt,
	)
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
