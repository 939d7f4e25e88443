package database

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/entity"
)

//go:embed seed/pipelines.yaml
var defaultSeed []byte

type seedFile struct {
	Pipelines []struct {
		Name   string         `yaml:"name"`
		Slug   string         `yaml:"slug"`
		Kind   string         `yaml:"kind"`
		Stages []entity.Stage `yaml:"stages"`
	} `yaml:"pipelines"`
	Plans []struct {
		ID         string `yaml:"id"`
		Name       string `yaml:"name"`
		PriceCents int64  `yaml:"price_cents"`
		Cycle      string `yaml:"cycle"`
	} `yaml:"plans"`
}

// ParseSeed lê o YAML e valida cada pipeline.
func ParseSeed(data []byte, now time.Time) ([]*entity.Pipeline, []*entity.Plan, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, nil, fmt.Errorf("erro ao ler seed: %w", err)
	}

	pipelines := make([]*entity.Pipeline, 0, len(f.Pipelines))
	for _, p := range f.Pipelines {
		pipeline, err := entity.NewPipeline(p.Name, p.Slug, entity.PipelineKind(p.Kind), p.Stages, now)
		if err != nil {
			return nil, nil, fmt.Errorf("pipeline %s: %w", p.Slug, err)
		}
		pipelines = append(pipelines, pipeline)
	}

	plans := make([]*entity.Plan, 0, len(f.Plans))
	for _, p := range f.Plans {
		if p.ID == "" || p.PriceCents <= 0 {
			return nil, nil, fmt.Errorf("plano inválido no seed: %q", p.ID)
		}
		plans = append(plans, &entity.Plan{ID: p.ID, Name: p.Name, PriceCents: p.PriceCents, Cycle: p.Cycle, Active: true})
	}
	return pipelines, plans, nil
}

// Seed grava pipelines e planos padrão que ainda não existem (por slug / id).
func Seed(ctx context.Context, db *sql.DB) error {
	pipelines, plans, err := ParseSeed(defaultSeed, time.Now())
	if err != nil {
		return err
	}

	repo := NewPipelineRepository(db)
	for _, p := range pipelines {
		created, err := repo.CreateIfMissing(ctx, p)
		if err != nil {
			return err
		}
		if created {
			log.WithField("slug", p.Slug).Info("🌱 pipeline criado")
		}
	}

	planRepo := NewPlanRepository(db)
	for _, p := range plans {
		created, err := planRepo.CreateIfMissing(ctx, p)
		if err != nil {
			return fmt.Errorf("erro ao gravar plano %s: %w", p.ID, err)
		}
		if created {
			log.WithField("plan_id", p.ID).Info("🌱 plano criado")
		}
	}
	return nil
}
