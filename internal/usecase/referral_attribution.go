package usecase

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/entity"
)

// Motivos de não atribuição
const (
	ReasonNoCode        = "no_code"
	ReasonUnknownCode   = "unknown_code"
	ReasonInactive      = "inactive"
	ReasonSelfReferral  = "self_referral"
	ReasonLookupFailure = "lookup_failed"
)

type ReferralSignupInput struct {
	ReferralCode string `json:"referral_code"`
	UserID       string `json:"-"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	TaxID        string `json:"tax_id"`
	Phone        string `json:"phone"`
}

type ReferralSignupOutput struct {
	Attributed  bool     `json:"attributed"`
	Reason      string   `json:"reason,omitempty"`
	LeadID      string   `json:"lead_id,omitempty"`
	DealID      string   `json:"deal_id,omitempty"`
	CRMFailures []string `json:"-"`
}

// ReferralAttributionUseCase liga o cadastro de uma indicada à embaixadora.
// Atribuição, deal e crédito são independentes: um falhar não impede os outros.
type ReferralAttributionUseCase struct {
	Ambassadors  AmbassadorRepository
	Leads        *LeadRegistry
	Interactions *InteractionRecorder
	Deals        *DealManager
}

func NewReferralAttributionUseCase(
	ambassadors AmbassadorRepository,
	leads *LeadRegistry,
	interactions *InteractionRecorder,
	deals *DealManager,
) *ReferralAttributionUseCase {
	return &ReferralAttributionUseCase{
		Ambassadors:  ambassadors,
		Leads:        leads,
		Interactions: interactions,
		Deals:        deals,
	}
}

// TrackClick conta um clique no link de indicação. Código desconhecido ou
// inativo devolve entity.ErrNotFound.
func (uc *ReferralAttributionUseCase) TrackClick(ctx context.Context, code string) error {
	code = entity.NormalizeReferralCode(code)
	if code == "" {
		return entity.ErrNotFound
	}
	return uc.Ambassadors.IncrementClicks(ctx, code)
}

func (uc *ReferralAttributionUseCase) Execute(ctx context.Context, input ReferralSignupInput) (*ReferralSignupOutput, error) {
	if errs := ValidateReferralSignupInput(input); len(errs) > 0 {
		return nil, validationError(errs)
	}

	code := entity.NormalizeReferralCode(input.ReferralCode)
	if code == "" {
		return &ReferralSignupOutput{Reason: ReasonNoCode}, nil
	}

	logger := log.WithFields(log.Fields{"referral_code": code, "email": entity.NormalizeEmail(input.Email)})

	ambassador, err := uc.Ambassadors.FindByReferralCode(ctx, code)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			logger.Info("código de indicação desconhecido")
			return &ReferralSignupOutput{Reason: ReasonUnknownCode}, nil
		}
		logger.WithError(err).Error("❌ erro ao resolver código de indicação")
		return &ReferralSignupOutput{Reason: ReasonLookupFailure}, nil
	}
	if !ambassador.Active {
		logger.Info("embaixadora inativa, indicação ignorada")
		return &ReferralSignupOutput{Reason: ReasonInactive}, nil
	}
	if isSelfReferral(ambassador, input) {
		logger.Warn("auto-indicação ignorada")
		return &ReferralSignupOutput{Reason: ReasonSelfReferral}, nil
	}

	out := &ReferralSignupOutput{Attributed: true}

	// Atribuição: lead da indicada + interação
	out.LeadID = uc.Leads.FindOrCreate(ctx, LeadInput{
		Email:          input.Email,
		Name:           input.Name,
		Phone:          input.Phone,
		TaxID:          input.TaxID,
		UserID:         input.UserID,
		Source:         entity.SourceReferral,
		SourceDetail:   code,
		ActivityType:   string(entity.InteractionReferralSignup),
		ActivityOnline: true,
	})
	if out.LeadID == "" {
		out.CRMFailures = append(out.CRMFailures, "attribute")
	} else {
		ok := uc.Interactions.Record(ctx, RecordInteractionInput{
			LeadID:      out.LeadID,
			UserID:      input.UserID,
			Type:        entity.InteractionReferralSignup,
			Channel:     entity.ChannelWebsite,
			Description: fmt.Sprintf("Cadastro via indicação de %s", ambassador.Name),
			Metadata: entity.ReferralSignupMeta{
				AmbassadorID:   ambassador.ID,
				AmbassadorName: ambassador.Name,
				ReferralCode:   ambassador.ReferralCode,
			},
			Online: true,
		})
		if !ok {
			out.CRMFailures = append(out.CRMFailures, "attribute")
		}
	}

	// Deal no pipeline de vendas, valor 0 até a escolha do plano
	if out.LeadID != "" {
		dealID, err := uc.Deals.CreateInPipeline(ctx, entity.PipelineSales, []string{entity.StageLead}, CreateDealInput{
			Title:       fmt.Sprintf("Indicação: %s", input.Name),
			LeadID:      out.LeadID,
			ProductType: entity.ProductPlan,
			ValueCents:  0,
			Metadata: entity.ReferralDealMeta{
				AmbassadorID:   ambassador.ID,
				ReferralCode:   ambassador.ReferralCode,
				CommissionRate: ambassador.CommissionRate,
			},
		})
		if err != nil {
			logger.WithError(err).WithField("lead_id", out.LeadID).Error("❌ erro ao criar deal de indicação")
			out.CRMFailures = append(out.CRMFailures, "monetize")
		}
		out.DealID = dealID
	} else {
		out.CRMFailures = append(out.CRMFailures, "monetize")
	}

	// Crédito: lead interno da embaixadora + interação
	ambassadorLeadID := uc.Leads.FindOrCreate(ctx, LeadInput{
		Email:        ambassador.Email,
		Name:         ambassador.Name,
		TaxID:        ambassador.TaxID,
		UserID:       ambassador.UserID,
		Source:       entity.SourceInternal,
		SourceDetail: "embaixadora",
		ActivityType: string(entity.InteractionReferralGenerated),
	})
	credited := ambassadorLeadID != "" && uc.Interactions.Record(ctx, RecordInteractionInput{
		LeadID:      ambassadorLeadID,
		UserID:      ambassador.UserID,
		Type:        entity.InteractionReferralGenerated,
		Channel:     entity.ChannelSystem,
		Description: fmt.Sprintf("Indicou %s", input.Name),
		Metadata: entity.ReferralGeneratedMeta{
			ReferredLeadID: out.LeadID,
			ReferredName:   input.Name,
			ReferredEmail:  entity.NormalizeEmail(input.Email),
			ReferralCode:   ambassador.ReferralCode,
		},
	})
	if !credited {
		out.CRMFailures = append(out.CRMFailures, "credit")
	}

	logger.WithFields(log.Fields{
		"ambassador_id": ambassador.ID,
		"lead_id":       out.LeadID,
		"deal_id":       out.DealID,
		"failures":      len(out.CRMFailures),
	}).Info("🤝 indicação atribuída")

	return out, nil
}

func isSelfReferral(a *entity.Ambassador, input ReferralSignupInput) bool {
	if input.UserID != "" && a.UserID == input.UserID {
		return true
	}
	return a.Email != "" && a.Email == entity.NormalizeEmail(input.Email)
}
