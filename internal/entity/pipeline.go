package entity

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

type PipelineKind string

const (
	PipelineSales  PipelineKind = "sales"
	PipelineEvents PipelineKind = "events"
	PipelinePlans  PipelineKind = "plans"
)

// Ids de etapa usados pelos fluxos automáticos
const (
	StageLead       = "lead"
	StageInterest   = "interesse"
	StageRegistered = "inscrito"
	StageConfirmed  = "confirmado"
	StageProposal   = "proposta"
	StageConverted  = "convertido"
	StageLost       = "perdido"
)

func (k PipelineKind) Valid() bool {
	return k == PipelineSales || k == PipelineEvents || k == PipelinePlans
}

type Stage struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Color string `json:"color" yaml:"color"`
	Order int    `json:"order" yaml:"order"`
}

type Pipeline struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Slug      string       `json:"slug"`
	Kind      PipelineKind `json:"kind"`
	Stages    []Stage      `json:"stages"`
	Active    bool         `json:"active"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

func NewPipeline(name, slug string, kind PipelineKind, stages []Stage, now time.Time) (*Pipeline, error) {
	p := &Pipeline{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(name),
		Slug:      strings.TrimSpace(slug),
		Kind:      kind,
		Stages:    stages,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p.Normalize()
	return p, nil
}

func (p *Pipeline) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidPipeline)
	}
	if !p.Kind.Valid() {
		return fmt.Errorf("%w: kind %q", ErrInvalidPipeline, p.Kind)
	}
	if len(p.Stages) < 2 {
		return fmt.Errorf("%w: at least 2 stages are required", ErrInvalidPipeline)
	}
	seen := make(map[string]bool, len(p.Stages))
	for _, s := range p.Stages {
		if strings.TrimSpace(s.ID) == "" {
			return fmt.Errorf("%w: stage id is required", ErrInvalidPipeline)
		}
		if seen[s.ID] {
			return fmt.Errorf("%w: duplicated stage id %q", ErrInvalidPipeline, s.ID)
		}
		seen[s.ID] = true
	}
	return nil
}

// Normalize ordena as etapas e renumera order de forma contígua a partir de 1.
func (p *Pipeline) Normalize() {
	sort.SliceStable(p.Stages, func(i, j int) bool { return p.Stages[i].Order < p.Stages[j].Order })
	for i := range p.Stages {
		p.Stages[i].Order = i + 1
	}
}

func (p *Pipeline) HasStage(id string) bool {
	for _, s := range p.Stages {
		if s.ID == id {
			return true
		}
	}
	return false
}

// FirstStage devolve a etapa de menor order.
func (p *Pipeline) FirstStage() string {
	if len(p.Stages) == 0 {
		return ""
	}
	first := p.Stages[0]
	for _, s := range p.Stages[1:] {
		if s.Order < first.Order {
			first = s
		}
	}
	return first.ID
}

// ResolveStage devolve o primeiro id conhecido presente no pipeline,
// ou a primeira etapa quando nenhum existe.
func (p *Pipeline) ResolveStage(wellKnown ...string) string {
	for _, id := range wellKnown {
		if p.HasStage(id) {
			return id
		}
	}
	return p.FirstStage()
}
