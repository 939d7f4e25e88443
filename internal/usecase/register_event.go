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

type RegisterEventInput struct {
	EventID     string `json:"-"`
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	TaxID       string `json:"tax_id"`
	UserID      string `json:"user_id"`
	BillingType string `json:"billing_type"`
}

type RegisterEventOutput struct {
	RegistrationID string                    `json:"registration_id"`
	Status         entity.RegistrationStatus `json:"status"`
	Paid           bool                      `json:"paid"`
	AmountCents    int64                     `json:"payment_amount_cents"`
	InvoiceURL     string                    `json:"invoice_url,omitempty"`
	LeadID         string                    `json:"lead_id,omitempty"`
	DealID         string                    `json:"deal_id,omitempty"`
	CRMFailures    []string                  `json:"-"`
}

// RegisterEventUseCase inscreve alguém num evento. Vaga, inscrição e cobrança
// formam a ação primária (desfeita em ordem reversa se algo falha); lead,
// interação, deal e e-mail são secundários.
type RegisterEventUseCase struct {
	Events        EventRepository
	Registrations RegistrationRepository
	Gateway       PaymentGateway
	Leads         *LeadRegistry
	Interactions  *InteractionRecorder
	Deals         *DealManager
	Notifier      *Notifier
	Now           func() time.Time
}

func NewRegisterEventUseCase(
	events EventRepository,
	regs RegistrationRepository,
	gateway PaymentGateway,
	leads *LeadRegistry,
	interactions *InteractionRecorder,
	deals *DealManager,
	notifier *Notifier,
) *RegisterEventUseCase {
	return &RegisterEventUseCase{
		Events:        events,
		Registrations: regs,
		Gateway:       gateway,
		Leads:         leads,
		Interactions:  interactions,
		Deals:         deals,
		Notifier:      notifier,
		Now:           time.Now,
	}
}

func (uc *RegisterEventUseCase) Execute(ctx context.Context, input RegisterEventInput) (*RegisterEventOutput, error) {
	if errs := ValidateRegisterEventInput(input); len(errs) > 0 {
		return nil, validationError(errs)
	}

	event, err := uc.Events.FindByID(ctx, input.EventID)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, &DomainError{Code: CodeEventNotFound, Message: "event not found"}
		}
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "failed to load event", Err: err}
	}
	if !event.IsPublished() {
		return nil, &DomainError{Code: CodeEventNotPublished, Message: entity.ErrEventNotPublished.Error()}
	}
	if event.IsFull() {
		return nil, &DomainError{Code: CodeEventFull, Message: entity.ErrEventFull.Error()}
	}
	if !event.IsFree() && entity.NormalizeTaxID(input.TaxID) == "" {
		return nil, validationError([]ValidationError{{"tax_id", "is required for paid events"}})
	}

	_, err = uc.Registrations.FindByEventAndEmail(ctx, event.ID, entity.NormalizeEmail(input.Email))
	switch {
	case err == nil:
		return nil, &DomainError{Code: CodeDuplicate, Message: entity.ErrDuplicateRegistration.Error()}
	case !errors.Is(err, entity.ErrNotFound):
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "failed to check registration", Err: err}
	}

	reg := entity.NewEventRegistration(event.ID, input.FullName, input.Email, input.Phone, input.TaxID, event.PriceCents, uc.Now())
	logger := log.WithFields(log.Fields{"event_id": event.ID, "registration_id": reg.ID, "email": reg.Email})

	tx := NewTransaction()
	tx.AddStep("reserve_seat",
		func(ctx context.Context) error { return uc.Events.ReserveSeat(ctx, event.ID) },
		func(ctx context.Context) error { return uc.Events.ReleaseSeat(ctx, event.ID) },
	)
	tx.AddStep("insert_registration",
		func(ctx context.Context) error { return uc.Registrations.Create(ctx, reg) },
		func(ctx context.Context) error { return uc.Registrations.Delete(ctx, reg.ID) },
	)
	if !event.IsFree() {
		tx.AddStep("create_payment",
			func(ctx context.Context) error { return uc.createPayment(ctx, event, reg, input) },
			nil,
		)
	}

	if err := tx.Execute(ctx); err != nil {
		switch {
		case errors.Is(err, entity.ErrEventFull):
			return nil, &DomainError{Code: CodeEventFull, Message: entity.ErrEventFull.Error()}
		case errors.Is(err, entity.ErrEventNotPublished):
			return nil, &DomainError{Code: CodeEventNotPublished, Message: entity.ErrEventNotPublished.Error()}
		case errors.Is(err, entity.ErrDuplicateRegistration):
			return nil, &DomainError{Code: CodeDuplicate, Message: entity.ErrDuplicateRegistration.Error()}
		}
		logger.WithError(err).Error("❌ inscrição falhou")
		return nil, &TechnicalError{Code: "REGISTRATION_FAILED", Message: "failed to register for event", Err: err}
	}
	logger.Info("🎟️ inscrição criada")

	out := &RegisterEventOutput{
		RegistrationID: reg.ID,
		Status:         reg.Status,
		Paid:           reg.Paid,
		AmountCents:    reg.PaymentAmountCents,
		InvoiceURL:     reg.InvoiceURL,
	}
	uc.trackInCRM(ctx, event, reg, input.UserID, out)

	if !uc.Notifier.EnqueueEventEmail(ctx, TemplateRegistrationConfirmation, event, reg) {
		out.CRMFailures = append(out.CRMFailures, "confirmation_email")
	}
	return out, nil
}

func (uc *RegisterEventUseCase) createPayment(ctx context.Context, event *entity.Event, reg *entity.EventRegistration, input RegisterEventInput) error {
	customerID, err := uc.Gateway.FindOrCreateCustomer(ctx, asaas.CustomerInput{
		Name:        reg.FullName,
		Email:       reg.Email,
		CpfCnpj:     reg.TaxID,
		MobilePhone: reg.Phone,
	})
	if err != nil {
		return err
	}

	payment, err := uc.Gateway.CreatePayment(ctx, asaas.PaymentInput{
		CustomerID:        customerID,
		ValueCents:        reg.PaymentAmountCents,
		BillingType:       input.BillingType,
		Description:       fmt.Sprintf("Inscrição: %s", event.Title),
		ExternalReference: RefEventPrefix + reg.ID,
	})
	if err != nil {
		return err
	}
	reg.GatewayPaymentID = payment.ID
	reg.InvoiceURL = payment.InvoiceURL

	// A cobrança já existe; o webhook acha a inscrição pelo externalReference.
	if err := uc.Registrations.SetPayment(ctx, reg.ID, payment.ID, payment.InvoiceURL); err != nil {
		log.WithError(err).WithField("registration_id", reg.ID).Warn("falha ao gravar dados da cobrança")
	}
	return nil
}

func (uc *RegisterEventUseCase) trackInCRM(ctx context.Context, event *entity.Event, reg *entity.EventRegistration, userID string, out *RegisterEventOutput) {
	paid := !event.IsFree()

	reg.LeadID = uc.Leads.FindOrCreate(ctx, LeadInput{
		Email:          reg.Email,
		Name:           reg.FullName,
		Phone:          reg.Phone,
		TaxID:          reg.TaxID,
		UserID:         userID,
		Source:         entity.SourceEvent,
		SourceDetail:   event.Title,
		ActivityType:   string(entity.InteractionEventRegistration),
		ActivityPaid:   paid,
		ActivityOnline: event.Online,
	})
	out.LeadID = reg.LeadID
	if reg.LeadID == "" {
		out.CRMFailures = append(out.CRMFailures, "lead", "deal")
		return
	}

	ok := uc.Interactions.Record(ctx, RecordInteractionInput{
		LeadID:      reg.LeadID,
		UserID:      userID,
		Type:        entity.InteractionEventRegistration,
		Channel:     entity.ChannelWebsite,
		Description: fmt.Sprintf("Inscrição no evento %s", event.Title),
		Metadata: entity.EventRegistrationMeta{
			EventID:        event.ID,
			EventTitle:     event.Title,
			RegistrationID: reg.ID,
			AmountCents:    reg.PaymentAmountCents,
		},
		Paid:   paid,
		Online: event.Online,
	})
	if !ok {
		out.CRMFailures = append(out.CRMFailures, "registration_interaction")
	}

	stages := []string{entity.StageRegistered}
	if paid {
		stages = []string{entity.StageInterest}
	}
	dealID, err := uc.Deals.CreateInPipeline(ctx, entity.PipelineEvents, stages, CreateDealInput{
		Title:       fmt.Sprintf("Evento %s: %s", event.Title, reg.FullName),
		LeadID:      reg.LeadID,
		ProductType: entity.ProductEvent,
		ValueCents:  event.PriceCents,
		Metadata:    entity.EventDealMeta{EventID: event.ID, RegistrationID: reg.ID},
	})
	if err != nil {
		log.WithError(err).WithField("registration_id", reg.ID).Error("❌ erro ao criar deal do evento")
		out.CRMFailures = append(out.CRMFailures, "deal")
	}
	reg.DealID = dealID
	out.DealID = dealID

	if err := uc.Registrations.SetCRMLinks(ctx, reg.ID, reg.LeadID, reg.DealID); err != nil {
		log.WithError(err).WithField("registration_id", reg.ID).Warn("falha ao vincular lead/deal à inscrição")
		out.CRMFailures = append(out.CRMFailures, "crm_links")
	}
}
