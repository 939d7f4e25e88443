package usecase

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/entity"
)

type RecordInteractionInput struct {
	LeadID      string
	UserID      string
	TaxID       string
	Type        entity.InteractionType
	Channel     string
	Description string
	Metadata    entity.Metadata
	Paid        bool
	Online      bool
}

// InteractionRecorder grava interações append-only. Uma falha aqui nunca
// desfaz a ação de negócio que ela documenta.
type InteractionRecorder struct {
	Repo InteractionRepository
	Now  func() time.Time
}

func NewInteractionRecorder(repo InteractionRepository) *InteractionRecorder {
	return &InteractionRecorder{Repo: repo, Now: time.Now}
}

func (r *InteractionRecorder) Record(ctx context.Context, in RecordInteractionInput) bool {
	logger := log.WithFields(log.Fields{"lead_id": in.LeadID, "type": in.Type})

	if !in.Type.Known() {
		logger.Warn("tipo de interação desconhecido")
		return false
	}
	if in.LeadID == "" && in.UserID == "" && in.TaxID == "" {
		logger.Warn("interação sem lead, usuário ou CPF, ignorada")
		return false
	}

	channel := in.Channel
	if channel == "" {
		channel = entity.ChannelSystem
	}

	interaction := entity.NewInteraction(in.Type, channel, r.Now())
	interaction.LeadID = in.LeadID
	interaction.UserID = in.UserID
	interaction.TaxID = entity.NormalizeTaxID(in.TaxID)
	interaction.Description = in.Description
	interaction.Metadata = in.Metadata
	interaction.ActivityPaid = in.Paid
	interaction.ActivityOnline = in.Online

	if err := interaction.ValidateMetadata(); err != nil {
		logger.WithError(err).Warn("metadata inválido para a interação")
		return false
	}

	if err := r.Repo.Create(ctx, interaction); err != nil {
		logger.WithError(err).Error("❌ erro ao gravar interação")
		return false
	}
	return true
}
