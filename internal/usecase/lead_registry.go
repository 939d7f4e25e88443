package usecase

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/entity"
)

type LeadInput struct {
	Email          string
	Name           string
	Phone          string
	TaxID          string
	UserID         string
	Source         string
	SourceDetail   string
	ActivityType   string
	ActivityPaid   bool
	ActivityOnline bool
}

// LeadRegistry encontra ou cria o lead de um contato. Busca por CPF/CNPJ
// primeiro, depois por e-mail; nunca altera os dados de um lead existente.
type LeadRegistry struct {
	Repo LeadRepository
	Now  func() time.Time
}

func NewLeadRegistry(repo LeadRepository) *LeadRegistry {
	return &LeadRegistry{Repo: repo, Now: time.Now}
}

// FindOrCreate devolve o id do lead, ou "" se o backend falhar.
// Falhas são logadas aqui; quem chama segue o fluxo sem o lead.
func (r *LeadRegistry) FindOrCreate(ctx context.Context, in LeadInput) string {
	taxID := entity.NormalizeTaxID(in.TaxID)
	email := entity.NormalizeEmail(in.Email)
	logger := log.WithFields(log.Fields{"email": email, "source": in.Source})

	if taxID == "" && email == "" {
		logger.Warn("lead sem e-mail e sem CPF, ignorado")
		return ""
	}

	id, err := r.lookup(ctx, taxID, email)
	if err != nil {
		logger.WithError(err).Error("❌ erro ao buscar lead")
		return ""
	}
	if id != "" {
		return id
	}

	lead := entity.NewLead(email, in.Name, taxID, in.Source, in.SourceDetail, in.ActivityType, in.ActivityPaid, in.ActivityOnline, r.Now())
	lead.Phone = in.Phone
	lead.UserID = in.UserID

	err = r.Repo.Create(ctx, lead)
	switch {
	case err == nil:
		logger.WithField("lead_id", lead.ID).Info("lead criado")
		return lead.ID
	case errors.Is(err, entity.ErrLeadExists):
		// Outro request criou o mesmo lead entre a busca e o insert.
		id, err = r.lookup(ctx, taxID, email)
		if err != nil {
			logger.WithError(err).Error("❌ erro ao reler lead após conflito")
			return ""
		}
		return id
	default:
		logger.WithError(err).Error("❌ erro ao criar lead")
		return ""
	}
}

// Find só busca, sem criar. Devolve "" se não achar ou se falhar.
func (r *LeadRegistry) Find(ctx context.Context, taxID, email string) string {
	id, err := r.lookup(ctx, entity.NormalizeTaxID(taxID), entity.NormalizeEmail(email))
	if err != nil {
		log.WithError(err).WithField("email", email).Error("❌ erro ao buscar lead")
		return ""
	}
	return id
}

// UpdateStatus muda o status do ciclo de vida; falha só é logada.
func (r *LeadRegistry) UpdateStatus(ctx context.Context, leadID string, status entity.LeadStatus) {
	if leadID == "" || !status.Valid() {
		return
	}
	if err := r.Repo.UpdateStatus(ctx, leadID, status); err != nil {
		log.WithError(err).WithFields(log.Fields{"lead_id": leadID, "status": status}).Warn("falha ao atualizar status do lead")
	}
}

func (r *LeadRegistry) lookup(ctx context.Context, taxID, email string) (string, error) {
	if taxID != "" {
		lead, err := r.Repo.FindByTaxID(ctx, taxID)
		if err == nil {
			return lead.ID, nil
		}
		if !errors.Is(err, entity.ErrNotFound) {
			return "", err
		}
	}
	if email != "" {
		lead, err := r.Repo.FindByEmail(ctx, email)
		if err == nil {
			return lead.ID, nil
		}
		if !errors.Is(err, entity.ErrNotFound) {
			return "", err
		}
	}
	return "", nil
}
