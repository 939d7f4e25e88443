package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/entity"
	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/infra/integration/asaas"
)

type CheckoutInput struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	TaxID       string `json:"tax_id"`
	Phone       string `json:"phone"`
	PlanID      string `json:"plan_id"`
	BillingType string `json:"billing_type"`
	UserID      string `json:"user_id"`
}

type CheckoutOutput struct {
	SubscriptionID        string   `json:"subscription_id"`
	GatewaySubscriptionID string   `json:"gateway_subscription_id"`
	Status                string   `json:"status"`
	InvoiceURL            string   `json:"invoice_url,omitempty"`
	LeadID                string   `json:"lead_id,omitempty"`
	DealID                string   `json:"deal_id,omitempty"`
	CRMFailures           []string `json:"-"`
}

// SubscribePlanUseCase é o checkout de plano: cliente no gateway, assinatura,
// persistência local e o rastro no CRM.
type SubscribePlanUseCase struct {
	Plans         PlanRepositoryInterface
	Subscriptions SubscriptionRepository
	Gateway       PaymentGateway
	Leads         *LeadRegistry
	Interactions  *InteractionRecorder
	Deals         *DealManager
	Now           func() time.Time
}

func NewSubscribePlanUseCase(
	plans PlanRepositoryInterface,
	subs SubscriptionRepository,
	gateway PaymentGateway,
	leads *LeadRegistry,
	interactions *InteractionRecorder,
	deals *DealManager,
) *SubscribePlanUseCase {
	return &SubscribePlanUseCase{
		Plans:         plans,
		Subscriptions: subs,
		Gateway:       gateway,
		Leads:         leads,
		Interactions:  interactions,
		Deals:         deals,
		Now:           time.Now,
	}
}

func (uc *SubscribePlanUseCase) Execute(ctx context.Context, input CheckoutInput) (*CheckoutOutput, error) {
	if errs := ValidateCheckoutInput(input); len(errs) > 0 {
		return nil, validationError(errs)
	}

	plan, err := uc.Plans.FindByID(ctx, input.PlanID)
	if err != nil {
		if errors.Is(err, entity.ErrPlanNotFound) || errors.Is(err, entity.ErrNotFound) {
			return nil, &DomainError{Code: CodePlanNotFound, Message: "plan not found"}
		}
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "failed to load plan", Err: err}
	}
	if !plan.Active {
		return nil, &DomainError{Code: CodePlanNotFound, Message: "plan is not available"}
	}

	logger := log.WithFields(log.Fields{"plan_id": plan.ID, "email": entity.NormalizeEmail(input.Email)})

	leadID := uc.Leads.FindOrCreate(ctx, LeadInput{
		Email:          input.Email,
		Name:           input.Name,
		Phone:          input.Phone,
		TaxID:          input.TaxID,
		UserID:         input.UserID,
		Source:         entity.SourceCheckout,
		SourceDetail:   plan.Name,
		ActivityType:   string(entity.InteractionCheckoutStarted),
		ActivityPaid:   true,
		ActivityOnline: true,
	})
	out := &CheckoutOutput{LeadID: leadID}
	if leadID == "" {
		out.CRMFailures = append(out.CRMFailures, "lead")
	}

	customerID, err := uc.Gateway.FindOrCreateCustomer(ctx, asaas.CustomerInput{
		Name:              input.Name,
		Email:             entity.NormalizeEmail(input.Email),
		CpfCnpj:           input.TaxID,
		MobilePhone:       input.Phone,
		ExternalReference: leadID,
	})
	if err != nil {
		logger.WithError(err).Error("❌ erro ao criar cliente no gateway")
		return nil, &TechnicalError{Code: "GATEWAY_ERROR", Message: "failed to create customer", Err: err}
	}

	sub := entity.NewSubscription(plan.ID, input.Name, input.Email, input.TaxID, plan.PriceCents, uc.Now())
	sub.LeadID = leadID
	sub.UserID = input.UserID
	sub.GatewayCustomerID = customerID

	tx := NewTransaction()
	tx.AddStep("create_gateway_subscription",
		func(ctx context.Context) error {
			gw, err := uc.Gateway.CreateSubscription(ctx, asaas.SubscriptionInput{
				CustomerID:        customerID,
				ValueCents:        plan.PriceCents,
				Cycle:             plan.Cycle,
				BillingType:       input.BillingType,
				Description:       fmt.Sprintf("Assinatura %s", plan.Name),
				ExternalReference: RefPlanPrefix + sub.ID,
			})
			if err != nil {
				return err
			}
			sub.GatewaySubscriptionID = gw.ID

			invoiceURL, err := uc.Gateway.SubscriptionInvoiceURL(ctx, gw.ID)
			if err != nil {
				logger.WithError(err).Warn("fatura da assinatura indisponível")
			}
			sub.InvoiceURL = invoiceURL
			return nil
		},
		func(ctx context.Context) error {
			return uc.Gateway.CancelSubscription(ctx, sub.GatewaySubscriptionID)
		},
	)
	tx.AddStep("persist_subscription",
		func(ctx context.Context) error { return uc.Subscriptions.Create(ctx, sub) },
		nil,
	)

	if err := tx.Execute(ctx); err != nil {
		logger.WithError(err).Error("❌ checkout falhou")
		return nil, &TechnicalError{Code: "CHECKOUT_FAILED", Message: "failed to create subscription", Err: err}
	}

	out.SubscriptionID = sub.ID
	out.GatewaySubscriptionID = sub.GatewaySubscriptionID
	out.Status = sub.Status
	out.InvoiceURL = sub.InvoiceURL

	if leadID != "" {
		ok := uc.Interactions.Record(ctx, RecordInteractionInput{
			LeadID:      leadID,
			UserID:      input.UserID,
			Type:        entity.InteractionCheckoutStarted,
			Channel:     entity.ChannelWebsite,
			Description: fmt.Sprintf("Checkout do plano %s", plan.Name),
			Metadata:    entity.CheckoutMeta{PlanID: plan.ID, SubscriptionID: sub.ID, AmountCents: plan.PriceCents},
			Paid:        true,
			Online:      true,
		})
		if !ok {
			out.CRMFailures = append(out.CRMFailures, "checkout_interaction")
		}

		dealID, err := uc.priceDeal(ctx, leadID, plan, sub)
		if err != nil {
			logger.WithError(err).WithField("lead_id", leadID).Error("❌ erro ao registrar deal do plano")
			out.CRMFailures = append(out.CRMFailures, "deal")
		}
		out.DealID = dealID
	}

	logger.WithField("subscription_id", sub.ID).Info("🛒 checkout criado")
	return out, nil
}

// priceDeal reaproveita o deal de plano aberto (ex.: o de indicação) e só cria
// um novo quando não existe nenhum.
func (uc *SubscribePlanUseCase) priceDeal(ctx context.Context, leadID string, plan *entity.Plan, sub *entity.Subscription) (string, error) {
	open, err := uc.Deals.OpenDeal(ctx, leadID, entity.ProductPlan)
	switch {
	case err == nil:
		price := plan.PriceCents
		return open.ID, uc.Deals.Advance(ctx, open.ID, AdvanceDealInput{ValueCents: &price})
	case !errors.Is(err, entity.ErrNotFound):
		return "", err
	}

	return uc.Deals.CreateInPipeline(ctx, entity.PipelinePlans, []string{entity.StageInterest}, CreateDealInput{
		Title:       fmt.Sprintf("Plano %s: %s", plan.Name, sub.Name),
		LeadID:      leadID,
		ProductType: entity.ProductPlan,
		ValueCents:  plan.PriceCents,
		Metadata:    entity.PlanDealMeta{PlanID: plan.ID, SubscriptionID: sub.ID},
	})
}
