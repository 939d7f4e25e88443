package usecase

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/entity"
)

type ConfirmPaymentInput struct {
	PaymentID   string
	LeadID      string
	TaxID       string
	Email       string
	ProductType string
	AmountCents int64
	Method      string
}

type ConfirmPaymentOutput struct {
	LeadID          string   `json:"lead_id,omitempty"`
	DealID          string   `json:"deal_id,omitempty"`
	DealClosed      bool     `json:"deal_closed"`
	CommissionCents int64    `json:"commission_cents,omitempty"`
	CRMFailures     []string `json:"-"`
}

// ConfirmPaymentUseCase faz a contabilidade de CRM de um pagamento confirmado:
// fecha o deal aberto, converte o lead, credita a embaixadora e registra a interação.
// Nada aqui desfaz o pagamento; falhas só são logadas.
type ConfirmPaymentUseCase struct {
	Leads        *LeadRegistry
	Deals        *DealManager
	Ambassadors  AmbassadorRepository
	Interactions *InteractionRecorder
}

func NewConfirmPaymentUseCase(leads *LeadRegistry, deals *DealManager, ambassadors AmbassadorRepository, interactions *InteractionRecorder) *ConfirmPaymentUseCase {
	return &ConfirmPaymentUseCase{Leads: leads, Deals: deals, Ambassadors: ambassadors, Interactions: interactions}
}

func (uc *ConfirmPaymentUseCase) Execute(ctx context.Context, input ConfirmPaymentInput) *ConfirmPaymentOutput {
	out := &ConfirmPaymentOutput{LeadID: input.LeadID}
	if out.LeadID == "" {
		out.LeadID = uc.Leads.Find(ctx, input.TaxID, input.Email)
	}
	logger := log.WithFields(log.Fields{"payment_id": input.PaymentID, "lead_id": out.LeadID, "product_type": input.ProductType})

	if out.LeadID != "" {
		deal, err := uc.Deals.CloseOpenDeal(ctx, out.LeadID, input.ProductType, input.AmountCents)
		switch {
		case err == nil:
			out.DealID = deal.ID
			out.DealClosed = true
			out.CommissionCents = uc.creditAmbassador(ctx, deal, input.AmountCents, &out.CRMFailures)
		case errors.Is(err, entity.ErrNoOpenDeal):
			logger.Info("nenhum deal aberto; pagamento registrado só como interação")
		default:
			logger.WithError(err).Error("❌ erro ao fechar deal")
			out.CRMFailures = append(out.CRMFailures, "close_deal")
		}

		uc.Leads.UpdateStatus(ctx, out.LeadID, entity.LeadConverted)
	} else {
		logger.Warn("pagamento sem lead no CRM")
	}

	ok := uc.Interactions.Record(ctx, RecordInteractionInput{
		LeadID:      out.LeadID,
		TaxID:       input.TaxID,
		Type:        entity.InteractionPaymentConfirmed,
		Channel:     entity.ChannelPayment,
		Description: fmt.Sprintf("Pagamento confirmado: %s", FormatBRL(input.AmountCents)),
		Metadata: entity.PaymentConfirmedMeta{
			PaymentID:   input.PaymentID,
			ProductType: input.ProductType,
			AmountCents: input.AmountCents,
			Method:      input.Method,
			DealID:      out.DealID,
		},
		Paid:   true,
		Online: true,
	})
	if !ok {
		out.CRMFailures = append(out.CRMFailures, "payment_interaction")
	}

	logger.WithFields(log.Fields{"deal_id": out.DealID, "deal_closed": out.DealClosed}).Info("💰 pagamento contabilizado no CRM")
	return out
}

func (uc *ConfirmPaymentUseCase) creditAmbassador(ctx context.Context, deal *entity.Deal, amountCents int64, failures *[]string) int64 {
	meta, ok := deal.Metadata.(entity.ReferralDealMeta)
	if !ok {
		return 0
	}
	commission := entity.CommissionFor(amountCents, meta.CommissionRate)
	if err := uc.Ambassadors.CreditSale(ctx, meta.AmbassadorID, commission); err != nil {
		log.WithError(err).WithFields(log.Fields{"ambassador_id": meta.AmbassadorID, "deal_id": deal.ID}).
			Error("❌ erro ao creditar comissão")
		*failures = append(*failures, "credit_commission")
		return 0
	}
	return commission
}
