package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/entity"
)

type CreateDealInput struct {
	Title       string
	LeadID      string
	PipelineID  string
	Stage       string
	ProductType string
	ValueCents  int64
	Metadata    entity.Metadata
}

type AdvanceDealInput struct {
	Stage      *string `json:"stage,omitempty"`
	Won        *bool   `json:"won,omitempty"`
	ValueCents *int64  `json:"value_cents,omitempty"`
}

// DealManager cria deals e move-os pelas etapas do pipeline.
type DealManager struct {
	Pipelines PipelineRepository
	Deals     DealRepository
	Now       func() time.Time
}

func NewDealManager(pipelines PipelineRepository, deals DealRepository) *DealManager {
	return &DealManager{Pipelines: pipelines, Deals: deals, Now: time.Now}
}

func (m *DealManager) Create(ctx context.Context, in CreateDealInput) (string, error) {
	if in.LeadID == "" {
		return "", errors.New("deal sem lead")
	}
	pipeline, err := m.Pipelines.FindByID(ctx, in.PipelineID)
	if err != nil {
		return "", fmt.Errorf("pipeline %s: %w", in.PipelineID, err)
	}
	return m.create(ctx, pipeline, in)
}

// CreateInPipeline usa o pipeline ativo do tipo informado e a primeira
// etapa conhecida que existir nele (ou a primeira etapa do pipeline).
func (m *DealManager) CreateInPipeline(ctx context.Context, kind entity.PipelineKind, wellKnownStages []string, in CreateDealInput) (string, error) {
	if in.LeadID == "" {
		return "", errors.New("deal sem lead")
	}
	pipeline, err := m.Pipelines.FindActiveByKind(ctx, kind)
	if err != nil {
		return "", fmt.Errorf("pipeline %s: %w", kind, err)
	}
	in.PipelineID = pipeline.ID
	in.Stage = pipeline.ResolveStage(wellKnownStages...)
	return m.create(ctx, pipeline, in)
}

func (m *DealManager) create(ctx context.Context, pipeline *entity.Pipeline, in CreateDealInput) (string, error) {
	if !pipeline.Active {
		return "", entity.ErrPipelineInactive
	}
	stage := in.Stage
	if stage == "" {
		stage = pipeline.FirstStage()
	}
	if !pipeline.HasStage(stage) {
		return "", fmt.Errorf("%w: %s", entity.ErrInvalidStage, stage)
	}
	if in.Metadata != nil {
		if err := in.Metadata.Validate(); err != nil {
			return "", err
		}
	}

	deal := entity.NewDeal(in.Title, in.LeadID, pipeline.ID, stage, in.ProductType, in.ValueCents, in.Metadata, m.Now())
	if err := m.Deals.Create(ctx, deal); err != nil {
		return "", err
	}
	return deal.ID, nil
}

// OpenDeal devolve o deal aberto mais recente do lead para o produto.
func (m *DealManager) OpenDeal(ctx context.Context, leadID, productType string) (*entity.Deal, error) {
	return m.Deals.FindOpen(ctx, leadID, productType)
}

// Advance muda etapa, valor ou resultado. won=false é a perda explícita.
func (m *DealManager) Advance(ctx context.Context, dealID string, in AdvanceDealInput) error {
	deal, err := m.Deals.FindByID(ctx, dealID)
	if err != nil {
		return err
	}
	if !deal.IsOpen() {
		return entity.ErrAlreadyClosed
	}

	upd := entity.DealUpdate{Stage: in.Stage, Won: in.Won, ValueCents: in.ValueCents}
	if upd.Empty() {
		return nil
	}

	if in.Stage != nil || in.Won != nil {
		pipeline, err := m.Pipelines.FindByID(ctx, deal.PipelineID)
		if err != nil {
			return fmt.Errorf("pipeline %s: %w", deal.PipelineID, err)
		}
		if in.Stage != nil && !pipeline.HasStage(*in.Stage) {
			return fmt.Errorf("%w: %s", entity.ErrInvalidStage, *in.Stage)
		}
		if in.Won != nil && in.Stage == nil {
			terminal := entity.StageLost
			if *in.Won {
				terminal = entity.StageConverted
			}
			if pipeline.HasStage(terminal) {
				upd.Stage = &terminal
			}
		}
	}
	if in.Won != nil {
		now := m.Now()
		upd.ClosedAt = &now
	}

	return m.Deals.UpdateOpen(ctx, dealID, upd)
}

// CloseOpenDeal marca como ganho o deal aberto mais recente do lead para o produto.
// Sem deal aberto devolve entity.ErrNoOpenDeal; nenhum deal é criado retroativamente.
func (m *DealManager) CloseOpenDeal(ctx context.Context, leadID, productType string, valueCents int64) (*entity.Deal, error) {
	deal, err := m.Deals.CloseLatestOpen(ctx, leadID, productType, valueCents, m.Now())
	if errors.Is(err, entity.ErrNotFound) {
		return nil, entity.ErrNoOpenDeal
	}
	return deal, err
}
