package usecase

import (
	"context"

	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/entity"
)

type CaptureLeadInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	TaxID string `json:"tax_id"`
	Form  string `json:"form"`
	Page  string `json:"page"`
}

type CaptureLeadOutput struct {
	LeadID string `json:"lead_id"`
}

// CaptureLeadUseCase atende o formulário público. Aqui o lead é a ação
// primária, então falha ao gravá-lo vira erro para quem chamou.
type CaptureLeadUseCase struct {
	Leads        *LeadRegistry
	Interactions *InteractionRecorder
}

func NewCaptureLeadUseCase(leads *LeadRegistry, interactions *InteractionRecorder) *CaptureLeadUseCase {
	return &CaptureLeadUseCase{Leads: leads, Interactions: interactions}
}

func (uc *CaptureLeadUseCase) Execute(ctx context.Context, input CaptureLeadInput) (*CaptureLeadOutput, error) {
	if errs := ValidateCaptureLeadInput(input); len(errs) > 0 {
		return nil, validationError(errs)
	}

	form := input.Form
	if form == "" {
		form = "contato"
	}

	leadID := uc.Leads.FindOrCreate(ctx, LeadInput{
		Email:          input.Email,
		Name:           input.Name,
		Phone:          input.Phone,
		TaxID:          input.TaxID,
		Source:         entity.SourceSite,
		SourceDetail:   form,
		ActivityType:   string(entity.InteractionLeadCaptured),
		ActivityOnline: true,
	})
	if leadID == "" {
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "failed to save lead"}
	}

	uc.Interactions.Record(ctx, RecordInteractionInput{
		LeadID:      leadID,
		TaxID:       input.TaxID,
		Type:        entity.InteractionLeadCaptured,
		Channel:     entity.ChannelWebsite,
		Description: "Formulário " + form,
		Metadata:    entity.LeadCaptureMeta{Form: form, Page: input.Page},
		Online:      true,
	})

	return &CaptureLeadOutput{LeadID: leadID}, nil
}
