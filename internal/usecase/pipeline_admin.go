package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/entity"
)

type CreatePipelineInput struct {
	Name   string              `json:"name"`
	Slug   string              `json:"slug"`
	Kind   entity.PipelineKind `json:"kind"`
	Stages []entity.Stage      `json:"stages"`
}

type UpdatePipelineInput struct {
	Name   *string        `json:"name,omitempty"`
	Stages []entity.Stage `json:"stages,omitempty"`
	Active *bool          `json:"active,omitempty"`
}

type PipelineAdminUseCase struct {
	Repo PipelineRepository
	Now  func() time.Time
}

func NewPipelineAdminUseCase(repo PipelineRepository) *PipelineAdminUseCase {
	return &PipelineAdminUseCase{Repo: repo, Now: time.Now}
}

func (uc *PipelineAdminUseCase) List(ctx context.Context) ([]*entity.Pipeline, error) {
	pipelines, err := uc.Repo.List(ctx)
	if err != nil {
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "failed to list pipelines", Err: err}
	}
	return pipelines, nil
}

func (uc *PipelineAdminUseCase) Create(ctx context.Context, input CreatePipelineInput) (*entity.Pipeline, error) {
	slug := input.Slug
	if strings.TrimSpace(slug) == "" {
		slug = slugify(input.Name)
	}
	pipeline, err := entity.NewPipeline(input.Name, slug, input.Kind, input.Stages, uc.Now())
	if err != nil {
		return nil, &DomainError{Code: CodeValidation, Message: err.Error()}
	}
	if err := uc.Repo.Create(ctx, pipeline); err != nil {
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "failed to save pipeline", Err: err}
	}
	return pipeline, nil
}

func (uc *PipelineAdminUseCase) Update(ctx context.Context, id string, input UpdatePipelineInput) (*entity.Pipeline, error) {
	pipeline, err := uc.Repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, &DomainError{Code: CodeNotFound, Message: "pipeline not found"}
		}
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "failed to load pipeline", Err: err}
	}

	if input.Name != nil {
		pipeline.Name = strings.TrimSpace(*input.Name)
	}
	if input.Stages != nil {
		pipeline.Stages = input.Stages
	}
	if input.Active != nil {
		pipeline.Active = *input.Active
	}
	if err := pipeline.Validate(); err != nil {
		return nil, &DomainError{Code: CodeValidation, Message: err.Error()}
	}
	pipeline.Normalize()
	pipeline.UpdatedAt = uc.Now()

	if err := uc.Repo.Update(ctx, pipeline); err != nil {
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "failed to save pipeline", Err: err}
	}
	return pipeline, nil
}

func slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
