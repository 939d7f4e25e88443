package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/entity"
)

type PlanRepository struct {
	DB *sql.DB
}

func NewPlanRepository(db *sql.DB) *PlanRepository {
	return &PlanRepository{DB: db}
}

func (r *PlanRepository) FindByID(ctx context.Context, id string) (*entity.Plan, error) {
	query := `SELECT id, name, price_cents, cycle, active FROM plans WHERE id = $1`

	var plan entity.Plan
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&plan.ID,
		&plan.Name,
		&plan.PriceCents,
		&plan.Cycle,
		&plan.Active,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrPlanNotFound
	}
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// CreateIfMissing é usado pelo seed; plano existente não é tocado.
func (r *PlanRepository) CreateIfMissing(ctx context.Context, plan *entity.Plan) (bool, error) {
	query := `
		INSERT INTO plans (id, name, price_cents, cycle, active)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING
	`
	res, err := r.DB.ExecContext(ctx, query, plan.ID, plan.Name, plan.PriceCents, plan.Cycle, plan.Active)
	if err != nil {
		return false, err
	}
	return affected(res)
}
