package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/entity"
	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/infra/integration/asaas"
)

// Prefixos do externalReference das cobranças
const (
	RefPlanPrefix  = "plano:"
	RefEventPrefix = "evento:"
)

// Resultados do webhook
const (
	WebhookProcessed = "processed"
	WebhookIgnored   = "ignored"
	WebhookDuplicate = "duplicate"
)

type PaymentWebhookInput struct {
	Event                 string
	PaymentID             string
	GatewaySubscriptionID string
	ExternalReference     string
	ValueCents            int64
	BillingType           string
}

// PaymentWebhookInputFrom converte o corpo do webhook do Asaas.
func PaymentWebhookInputFrom(evt asaas.WebhookEvent) PaymentWebhookInput {
	return PaymentWebhookInput{
		Event:                 evt.Event,
		PaymentID:             evt.Payment.ID,
		GatewaySubscriptionID: evt.Payment.Subscription,
		ExternalReference:     evt.Payment.ExternalReference,
		ValueCents:            asaas.ReaisToCents(evt.Payment.Value),
		BillingType:           evt.Payment.BillingType,
	}
}

type PaymentWebhookOutput struct {
	Status       string                `json:"status"`
	ProductType  string                `json:"product_type,omitempty"`
	Confirmation *ConfirmPaymentOutput `json:"confirmation,omitempty"`
}

// PaymentWebhookUseCase aplica a ação primária (ativar assinatura ou marcar a
// inscrição paga), que é idempotente, e só então reivindica o pagamento para a
// contabilidade de CRM, que roda uma vez por pagamento.
type PaymentWebhookUseCase struct {
	Subscriptions SubscriptionRepository
	Registrations RegistrationRepository
	Events        EventRepository
	Processed     ProcessedPaymentRepository
	Confirm       *ConfirmPaymentUseCase
	Notifier      *Notifier
	Now           func() time.Time
}

func NewPaymentWebhookUseCase(
	subs SubscriptionRepository,
	regs RegistrationRepository,
	events EventRepository,
	processed ProcessedPaymentRepository,
	confirm *ConfirmPaymentUseCase,
	notifier *Notifier,
) *PaymentWebhookUseCase {
	return &PaymentWebhookUseCase{
		Subscriptions: subs,
		Registrations: regs,
		Events:        events,
		Processed:     processed,
		Confirm:       confirm,
		Notifier:      notifier,
		Now:           time.Now,
	}
}

func (uc *PaymentWebhookUseCase) Execute(ctx context.Context, input PaymentWebhookInput) (*PaymentWebhookOutput, error) {
	if input.Event != asaas.EventPaymentConfirmed && input.Event != asaas.EventPaymentReceived {
		return &PaymentWebhookOutput{Status: WebhookIgnored}, nil
	}
	if input.PaymentID == "" {
		return nil, &DomainError{Code: CodeValidation, Message: "payment id is required"}
	}

	logger := log.WithFields(log.Fields{"payment_id": input.PaymentID, "event": input.Event, "reference": input.ExternalReference})

	var confirm ConfirmPaymentInput
	switch {
	case strings.HasPrefix(input.ExternalReference, RefEventPrefix):
		regID := strings.TrimPrefix(input.ExternalReference, RefEventPrefix)
		in, err := uc.payRegistration(ctx, regID)
		if err != nil {
			return nil, err
		}
		if in == nil {
			return &PaymentWebhookOutput{Status: WebhookIgnored}, nil
		}
		confirm = *in
	case strings.HasPrefix(input.ExternalReference, RefPlanPrefix) || input.GatewaySubscriptionID != "":
		subID := strings.TrimPrefix(input.ExternalReference, RefPlanPrefix)
		if !strings.HasPrefix(input.ExternalReference, RefPlanPrefix) {
			subID = ""
		}
		in, err := uc.activateSubscription(ctx, subID, input.GatewaySubscriptionID)
		if err != nil {
			return nil, err
		}
		if in == nil {
			return &PaymentWebhookOutput{Status: WebhookIgnored}, nil
		}
		confirm = *in
	default:
		logger.Warn("webhook sem referência conhecida, ignorado")
		return &PaymentWebhookOutput{Status: WebhookIgnored}, nil
	}

	first, err := uc.Processed.MarkProcessed(ctx, input.PaymentID, input.Event)
	if err != nil {
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "failed to register payment", Err: err}
	}
	if !first {
		logger.Info("pagamento já processado")
		return &PaymentWebhookOutput{Status: WebhookDuplicate, ProductType: confirm.ProductType}, nil
	}

	confirm.PaymentID = input.PaymentID
	confirm.AmountCents = input.ValueCents
	confirm.Method = input.BillingType

	out := &PaymentWebhookOutput{
		Status:       WebhookProcessed,
		ProductType:  confirm.ProductType,
		Confirmation: uc.Confirm.Execute(ctx, confirm),
	}
	logger.Info("✅ webhook de pagamento processado")
	return out, nil
}

func (uc *PaymentWebhookUseCase) activateSubscription(ctx context.Context, subID, gatewaySubID string) (*ConfirmPaymentInput, error) {
	var (
		sub *entity.Subscription
		err error
	)
	if subID != "" {
		sub, err = uc.Subscriptions.FindByID(ctx, subID)
	} else {
		sub, err = uc.Subscriptions.FindByGatewaySubscriptionID(ctx, gatewaySubID)
	}
	if errors.Is(err, entity.ErrNotFound) {
		log.WithFields(log.Fields{"subscription_id": subID, "gateway_subscription_id": gatewaySubID}).Warn("assinatura do webhook não encontrada")
		return nil, nil
	}
	if err != nil {
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "failed to load subscription", Err: err}
	}

	if sub.Status != entity.SubscriptionActive {
		if err := uc.Subscriptions.UpdateStatus(ctx, sub.ID, entity.SubscriptionActive); err != nil {
			return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "failed to activate subscription", Err: err}
		}
		log.WithField("subscription_id", sub.ID).Info("✅ assinatura ativada")
	}

	return &ConfirmPaymentInput{
		LeadID:      sub.LeadID,
		TaxID:       sub.TaxID,
		Email:       sub.Email,
		ProductType: entity.ProductPlan,
	}, nil
}

func (uc *PaymentWebhookUseCase) payRegistration(ctx context.Context, regID string) (*ConfirmPaymentInput, error) {
	reg, err := uc.Registrations.FindByID(ctx, regID)
	if errors.Is(err, entity.ErrNotFound) {
		log.WithField("registration_id", regID).Warn("inscrição do webhook não encontrada")
		return nil, nil
	}
	if err != nil {
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "failed to load registration", Err: err}
	}

	changed, err := uc.Registrations.MarkPaid(ctx, reg.ID, uc.Now())
	if err != nil {
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "failed to mark registration paid", Err: err}
	}
	if changed {
		reg.Paid = true
		if reg.Status == entity.RegistrationPending {
			reg.Status = entity.RegistrationConfirmed
		}
		event, err := uc.Events.FindByID(ctx, reg.EventID)
		if err != nil {
			log.WithError(err).WithField("event_id", reg.EventID).Warn("evento não carregado, e-mail de pagamento não enviado")
		} else {
			uc.Notifier.EnqueueEventEmail(ctx, TemplatePaymentReceived, event, reg)
		}
	}

	return &ConfirmPaymentInput{
		LeadID:      reg.LeadID,
		TaxID:       reg.TaxID,
		Email:       reg.Email,
		ProductType: entity.ProductEvent,
	}, nil
}
