package usecase

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/entity"
)

type UpdateRegistrationStatusInput struct {
	RegistrationID string                    `json:"-"`
	Status         entity.RegistrationStatus `json:"status"`
	Reason         string                    `json:"reason"`
}

type UpdateRegistrationStatusUseCase struct {
	Registrations RegistrationRepository
	Events        EventRepository
	Deals         *DealManager
	Interactions  *InteractionRecorder
}

func NewUpdateRegistrationStatusUseCase(regs RegistrationRepository, events EventRepository, deals *DealManager, interactions *InteractionRecorder) *UpdateRegistrationStatusUseCase {
	return &UpdateRegistrationStatusUseCase{Registrations: regs, Events: events, Deals: deals, Interactions: interactions}
}

func (uc *UpdateRegistrationStatusUseCase) Execute(ctx context.Context, input UpdateRegistrationStatusInput) (*entity.EventRegistration, error) {
	reg, err := uc.Registrations.FindByID(ctx, input.RegistrationID)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, &DomainError{Code: CodeNotFound, Message: "registration not found"}
		}
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "failed to load registration", Err: err}
	}

	if !reg.Status.CanTransitionTo(input.Status) {
		return nil, &DomainError{
			Code:    CodeInvalidTransition,
			Message: fmt.Sprintf("cannot change registration from %s to %s", reg.Status, input.Status),
		}
	}

	if err := uc.Registrations.UpdateStatus(ctx, reg.ID, reg.Status, input.Status); err != nil {
		if errors.Is(err, entity.ErrInvalidTransition) {
			return nil, &DomainError{Code: CodeInvalidTransition, Message: "registration changed concurrently"}
		}
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "failed to update registration", Err: err}
	}
	reg.Status = input.Status

	logger := log.WithFields(log.Fields{"registration_id": reg.ID, "status": reg.Status})
	logger.Info("status da inscrição atualizado")

	if reg.Status == entity.RegistrationCancelled {
		if err := uc.Events.ReleaseSeat(ctx, reg.EventID); err != nil {
			logger.WithError(err).Error("❌ vaga não liberada")
		}
		if reg.DealID != "" {
			lost := false
			if err := uc.Deals.Advance(ctx, reg.DealID, AdvanceDealInput{Won: &lost}); err != nil && !errors.Is(err, entity.ErrAlreadyClosed) {
				logger.WithError(err).Warn("falha ao marcar deal como perdido")
			}
		}
		uc.Interactions.Record(ctx, RecordInteractionInput{
			LeadID:      reg.LeadID,
			TaxID:       reg.TaxID,
			Type:        entity.InteractionRegistrationCancelled,
			Channel:     entity.ChannelAdmin,
			Description: "Inscrição cancelada",
			Metadata:    entity.CancellationMeta{Reference: reg.ID, Reason: input.Reason},
		})
	}
	return reg, nil
}
