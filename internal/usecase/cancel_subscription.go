package usecase

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/entity"
)

type CancelSubscriptionInput struct {
	SubscriptionID string
	RequesterID    string
	IsAdmin        bool
	Reason         string
}

type CancelSubscriptionOutput struct {
	SubscriptionID   string `json:"subscription_id"`
	Status           string `json:"status"`
	AlreadyCancelled bool   `json:"already_cancelled"`
}

type CancelSubscriptionUseCase struct {
	Subscriptions SubscriptionRepository
	Gateway       PaymentGateway
	Interactions  *InteractionRecorder
	Deals         *DealManager
}

func NewCancelSubscriptionUseCase(subs SubscriptionRepository, gateway PaymentGateway, interactions *InteractionRecorder, deals *DealManager) *CancelSubscriptionUseCase {
	return &CancelSubscriptionUseCase{Subscriptions: subs, Gateway: gateway, Interactions: interactions, Deals: deals}
}

func (uc *CancelSubscriptionUseCase) Execute(ctx context.Context, input CancelSubscriptionInput) (*CancelSubscriptionOutput, error) {
	sub, err := uc.Subscriptions.FindByID(ctx, input.SubscriptionID)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, &DomainError{Code: CodeNotFound, Message: "subscription not found"}
		}
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "failed to load subscription", Err: err}
	}

	if !input.IsAdmin && (sub.UserID == "" || sub.UserID != input.RequesterID) {
		return nil, &DomainError{Code: CodeForbidden, Message: "subscription belongs to another user"}
	}

	if sub.Status == entity.SubscriptionCancelled {
		return &CancelSubscriptionOutput{SubscriptionID: sub.ID, Status: sub.Status, AlreadyCancelled: true}, nil
	}

	logger := log.WithFields(log.Fields{"subscription_id": sub.ID, "lead_id": sub.LeadID})

	if sub.GatewaySubscriptionID != "" {
		if err := uc.Gateway.CancelSubscription(ctx, sub.GatewaySubscriptionID); err != nil {
			logger.WithError(err).Error("❌ erro ao cancelar no gateway")
			return nil, &TechnicalError{Code: "GATEWAY_ERROR", Message: "failed to cancel subscription", Err: err}
		}
	}

	if err := uc.Subscriptions.UpdateStatus(ctx, sub.ID, entity.SubscriptionCancelled); err != nil {
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "failed to update subscription", Err: err}
	}
	logger.Info("🛑 assinatura cancelada")

	if sub.LeadID != "" {
		uc.Interactions.Record(ctx, RecordInteractionInput{
			LeadID:      sub.LeadID,
			UserID:      sub.UserID,
			Type:        entity.InteractionSubscriptionCancelled,
			Channel:     entity.ChannelWebsite,
			Description: fmt.Sprintf("Assinatura %s cancelada", sub.ID),
			Metadata:    entity.CancellationMeta{Reference: sub.ID, Reason: input.Reason},
			Online:      true,
		})
		uc.loseOpenDeal(ctx, sub.LeadID)
	}

	return &CancelSubscriptionOutput{SubscriptionID: sub.ID, Status: entity.SubscriptionCancelled}, nil
}

func (uc *CancelSubscriptionUseCase) loseOpenDeal(ctx context.Context, leadID string) {
	deal, err := uc.Deals.OpenDeal(ctx, leadID, entity.ProductPlan)
	if errors.Is(err, entity.ErrNotFound) {
		return
	}
	if err != nil {
		log.WithError(err).WithField("lead_id", leadID).Warn("falha ao buscar deal aberto")
		return
	}
	lost := false
	if err := uc.Deals.Advance(ctx, deal.ID, AdvanceDealInput{Won: &lost}); err != nil {
		log.WithError(err).WithField("deal_id", deal.ID).Warn("falha ao marcar deal como perdido")
	}
}
