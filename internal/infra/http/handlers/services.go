package handlers

import (
	"context"

	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/entity"
	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/usecase"
)

// Contratos dos casos de uso que os handlers chamam.

type ReferralService interface {
	TrackClick(ctx context.Context, code string) error
	Execute(ctx context.Context, input usecase.ReferralSignupInput) (*usecase.ReferralSignupOutput, error)
}

type CaptureLeadService interface {
	Execute(ctx context.Context, input usecase.CaptureLeadInput) (*usecase.CaptureLeadOutput, error)
}

type RegisterEventService interface {
	Execute(ctx context.Context, input usecase.RegisterEventInput) (*usecase.RegisterEventOutput, error)
}

type ConfirmPresenceService interface {
	Execute(ctx context.Context, token string) (*usecase.ConfirmPresenceOutput, error)
}

type CheckoutService interface {
	Execute(ctx context.Context, input usecase.CheckoutInput) (*usecase.CheckoutOutput, error)
}

type CancelSubscriptionService interface {
	Execute(ctx context.Context, input usecase.CancelSubscriptionInput) (*usecase.CancelSubscriptionOutput, error)
}

type PaymentWebhookService interface {
	Execute(ctx context.Context, input usecase.PaymentWebhookInput) (*usecase.PaymentWebhookOutput, error)
}

type ReminderService interface {
	RunDailyReminders(ctx context.Context) (*usecase.ReminderReport, error)
	RunTwoHourReminders(ctx context.Context) (*usecase.ReminderReport, error)
}

type CleanupService interface {
	Execute(ctx context.Context) (*usecase.CleanupComplimentaryOutput, error)
}

type PipelineAdminService interface {
	List(ctx context.Context) ([]*entity.Pipeline, error)
	Create(ctx context.Context, input usecase.CreatePipelineInput) (*entity.Pipeline, error)
	Update(ctx context.Context, id string, input usecase.UpdatePipelineInput) (*entity.Pipeline, error)
}

type DealService interface {
	Advance(ctx context.Context, dealID string, in usecase.AdvanceDealInput) error
}

type AmbassadorAdminService interface {
	Create(ctx context.Context, input usecase.CreateAmbassadorInput) (*entity.Ambassador, error)
	SetActive(ctx context.Context, id string, active bool) error
	UpdatePaymentDetails(ctx context.Context, id string, input usecase.PaymentDetailsInput) (*entity.Ambassador, error)
}

type EventAdminService interface {
	Create(ctx context.Context, input usecase.CreateEventInput) (*entity.Event, error)
	SetStatus(ctx context.Context, id string, status entity.EventStatus) (*entity.Event, error)
}

type RegistrationStatusService interface {
	Execute(ctx context.Context, input usecase.UpdateRegistrationStatusInput) (*entity.EventRegistration, error)
}
