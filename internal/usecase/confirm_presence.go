package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/entity"
)

type ConfirmPresenceOutput struct {
	AlreadyConfirmed bool   `json:"already_confirmed"`
	RegistrationID   string `json:"registration_id"`
	EventID          string `json:"event_id"`
	EventTitle       string `json:"event_title,omitempty"`
}

// ConfirmPresenceUseCase consome o token do link de confirmação. Repetir o
// mesmo token não gera interação, e-mail nem mudança de etapa.
type ConfirmPresenceUseCase struct {
	Registrations RegistrationRepository
	Events        EventRepository
	Deals         *DealManager
	Interactions  *InteractionRecorder
	Notifier      *Notifier
	Now           func() time.Time
}

func NewConfirmPresenceUseCase(regs RegistrationRepository, events EventRepository, deals *DealManager, interactions *InteractionRecorder, notifier *Notifier) *ConfirmPresenceUseCase {
	return &ConfirmPresenceUseCase{
		Registrations: regs,
		Events:        events,
		Deals:         deals,
		Interactions:  interactions,
		Notifier:      notifier,
		Now:           time.Now,
	}
}

func (uc *ConfirmPresenceUseCase) Execute(ctx context.Context, token string) (*ConfirmPresenceOutput, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, &DomainError{Code: CodeInvalidToken, Message: "token is required"}
	}

	reg, err := uc.Registrations.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, &DomainError{Code: CodeInvalidToken, Message: "invalid confirmation token"}
		}
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "failed to load registration", Err: err}
	}

	out := &ConfirmPresenceOutput{RegistrationID: reg.ID, EventID: reg.EventID}
	if reg.PresenceConfirmed() {
		out.AlreadyConfirmed = true
		return out, nil
	}
	if reg.Status == entity.RegistrationCancelled {
		return nil, &DomainError{Code: CodeRegistrationClosed, Message: "registration was cancelled"}
	}

	logger := log.WithFields(log.Fields{"registration_id": reg.ID, "event_id": reg.EventID})

	event, err := uc.Events.FindByID(ctx, reg.EventID)
	if err != nil {
		logger.WithError(err).Warn("evento não carregado, confirmação segue sem e-mail de boas-vindas")
		event = nil
	}

	var welcome *entity.OutboxTask
	if event != nil {
		out.EventTitle = event.Title
		welcome, err = uc.Notifier.EventEmail(TemplateWelcome, event, reg)
		if err != nil {
			logger.WithError(err).Warn("e-mail de boas-vindas não montado")
			welcome = nil
		}
	}

	confirmed, err := uc.Registrations.ConfirmPresence(ctx, reg.ID, uc.Now(), welcome)
	if err != nil {
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "failed to confirm presence", Err: err}
	}
	if !confirmed {
		// outra requisição com o mesmo token chegou antes
		out.AlreadyConfirmed = true
		return out, nil
	}
	logger.Info("✅ presença confirmada")

	uc.advanceDeal(ctx, reg)

	uc.Interactions.Record(ctx, RecordInteractionInput{
		LeadID:      reg.LeadID,
		TaxID:       reg.TaxID,
		Type:        entity.InteractionPresenceConfirmed,
		Channel:     entity.ChannelEmail,
		Description: fmt.Sprintf("Presença confirmada: %s", out.EventTitle),
		Metadata:    entity.PresenceConfirmedMeta{EventID: reg.EventID, RegistrationID: reg.ID},
		Paid:        reg.PaymentAmountCents > 0,
		Online:      event != nil && event.Online,
	})

	return out, nil
}

func (uc *ConfirmPresenceUseCase) advanceDeal(ctx context.Context, reg *entity.EventRegistration) {
	dealID := reg.DealID
	if dealID == "" && reg.LeadID != "" {
		deal, err := uc.Deals.OpenDeal(ctx, reg.LeadID, entity.ProductEvent)
		if err != nil {
			if !errors.Is(err, entity.ErrNotFound) {
				log.WithError(err).WithField("registration_id", reg.ID).Warn("falha ao buscar deal do evento")
			}
			return
		}
		dealID = deal.ID
	}
	if dealID == "" {
		return
	}

	stage := entity.StageConfirmed
	if err := uc.Deals.Advance(ctx, dealID, AdvanceDealInput{Stage: &stage}); err != nil {
		log.WithError(err).WithField("deal_id", dealID).Warn("falha ao mover deal para confirmado")
	}
}
