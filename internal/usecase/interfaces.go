package usecase

import (
	"context"
	"time"

	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/entity"
	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/infra/integration/asaas"
)

type LeadRepository interface {
	FindByTaxID(ctx context.Context, taxID string) (*entity.Lead, error)
	FindByEmail(ctx context.Context, email string) (*entity.Lead, error)
	// Create devolve entity.ErrLeadExists quando outro insert ganhou a corrida.
	Create(ctx context.Context, lead *entity.Lead) error
	UpdateStatus(ctx context.Context, id string, status entity.LeadStatus) error
}

type InteractionRepository interface {
	Create(ctx context.Context, i *entity.Interaction) error
}

type PipelineRepository interface {
	FindByID(ctx context.Context, id string) (*entity.Pipeline, error)
	FindActiveByKind(ctx context.Context, kind entity.PipelineKind) (*entity.Pipeline, error)
	List(ctx context.Context) ([]*entity.Pipeline, error)
	Create(ctx context.Context, p *entity.Pipeline) error
	Update(ctx context.Context, p *entity.Pipeline) error
}

type DealRepository interface {
	Create(ctx context.Context, d *entity.Deal) error
	FindByID(ctx context.Context, id string) (*entity.Deal, error)
	FindOpen(ctx context.Context, leadID, productType string) (*entity.Deal, error)
	// UpdateOpen só altera deals abertos; devolve entity.ErrAlreadyClosed caso contrário.
	UpdateOpen(ctx context.Context, id string, upd entity.DealUpdate) error
	// CloseLatestOpen fecha como ganho o deal aberto mais recente num único UPDATE.
	CloseLatestOpen(ctx context.Context, leadID, productType string, valueCents int64, closedAt time.Time) (*entity.Deal, error)
}

type AmbassadorRepository interface {
	FindByID(ctx context.Context, id string) (*entity.Ambassador, error)
	FindByReferralCode(ctx context.Context, code string) (*entity.Ambassador, error)
	Create(ctx context.Context, a *entity.Ambassador) error
	SetActive(ctx context.Context, id string, active bool) error
	UpdatePaymentDetails(ctx context.Context, a *entity.Ambassador) error
	// IncrementClicks só conta códigos ativos; devolve entity.ErrNotFound caso contrário.
	IncrementClicks(ctx context.Context, code string) error
	CreditSale(ctx context.Context, id string, commissionCents int64) error
}

type EventRepository interface {
	Create(ctx context.Context, e *entity.Event) error
	FindByID(ctx context.Context, id string) (*entity.Event, error)
	// ReserveSeat incrementa current_participants só se publicado e com vaga.
	ReserveSeat(ctx context.Context, id string) error
	ReleaseSeat(ctx context.Context, id string) error
	UpdateStatus(ctx context.Context, id string, status entity.EventStatus) error
	ListUpcoming(ctx context.Context, now time.Time) ([]*entity.Event, error)
	ListStartingBetween(ctx context.Context, from, to time.Time) ([]*entity.Event, error)
}

type RegistrationRepository interface {
	Create(ctx context.Context, r *entity.EventRegistration) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*entity.EventRegistration, error)
	FindByEventAndEmail(ctx context.Context, eventID, email string) (*entity.EventRegistration, error)
	FindByToken(ctx context.Context, token string) (*entity.EventRegistration, error)
	SetCRMLinks(ctx context.Context, id, leadID, dealID string) error
	SetPayment(ctx context.Context, id, paymentID, invoiceURL string) error
	// MarkPaid devolve false quando a inscrição já estava paga.
	MarkPaid(ctx context.Context, id string, now time.Time) (bool, error)
	UpdateStatus(ctx context.Context, id string, from, to entity.RegistrationStatus) error
	ListForReminder(ctx context.Context, eventID string, slot entity.ReminderSlot) ([]*entity.EventRegistration, error)
	ListForTwoHourReminder(ctx context.Context, eventID string) ([]*entity.EventRegistration, error)
	// Os Claim* marcam o timestamp (condicional a IS NULL) e gravam a task
	// na outbox na mesma transação. false = outro processo já marcou.
	ClaimReminder(ctx context.Context, id string, slot entity.ReminderSlot, now time.Time, task *entity.OutboxTask) (bool, error)
	ClaimTwoHourReminder(ctx context.Context, id string, now time.Time, task *entity.OutboxTask) (bool, error)
	ConfirmPresence(ctx context.Context, id string, now time.Time, welcome *entity.OutboxTask) (bool, error)
}

type OutboxRepository interface {
	Enqueue(ctx context.Context, task *entity.OutboxTask) error
}

// OutboxStore é o lado do worker: reivindica tasks vencidas e registra o resultado.
type OutboxStore interface {
	// ClaimDue marca até limit tasks como dispatched com lease; tasks cujo lease
	// venceu voltam a ser elegíveis.
	ClaimDue(ctx context.Context, now time.Time, limit int, lease time.Duration) ([]*entity.OutboxTask, error)
	// Acquire troca o lease publicado (lease) por until, só se a task ainda está
	// dispatched com aquele lease. false = cópia velha ou já consumida.
	Acquire(ctx context.Context, id string, lease, until time.Time) (*entity.OutboxTask, bool, error)
	// Os Mark* só valem para a task dispatched com o lease dado;
	// caso contrário devolvem entity.ErrLeaseLost.
	MarkDone(ctx context.Context, id string, lease time.Time) error
	// Reschedule devolve a task para pending com a próxima tentativa; dead encerra.
	Reschedule(ctx context.Context, id string, lease time.Time, attempts int, next time.Time, lastErr string) error
	MarkDead(ctx context.Context, id string, lease time.Time, attempts int, lastErr string) error
}

type EmailSender interface {
	Send(ctx context.Context, email entity.EmailTask) error
}

type PlanRepositoryInterface interface {
	FindByID(ctx context.Context, id string) (*entity.Plan, error)
}

type SubscriptionRepository interface {
	Create(ctx context.Context, sub *entity.Subscription) error
	FindByID(ctx context.Context, id string) (*entity.Subscription, error)
	FindByGatewaySubscriptionID(ctx context.Context, gatewayID string) (*entity.Subscription, error)
	UpdateStatus(ctx context.Context, id string, status string) error
}

type ProcessedPaymentRepository interface {
	// MarkProcessed devolve false se o pagamento já tinha sido processado.
	MarkProcessed(ctx context.Context, paymentID, event string) (bool, error)
}

type BusinessRepository interface {
	DeactivateExpiredComplimentary(ctx context.Context, now time.Time) ([]string, error)
}

type PaymentGateway interface {
	FindOrCreateCustomer(ctx context.Context, input asaas.CustomerInput) (string, error)
	CreateSubscription(ctx context.Context, input asaas.SubscriptionInput) (*asaas.SubscriptionOutput, error)
	CreatePayment(ctx context.Context, input asaas.PaymentInput) (*asaas.PaymentOutput, error)
	CancelSubscription(ctx context.Context, subscriptionID string) error
	SubscriptionInvoiceURL(ctx context.Context, subscriptionID string) (string, error)
}

// TemplateRenderer monta assunto e HTML de um template de e-mail.
type TemplateRenderer interface {
	Render(name string, data any) (subject string, html string, err error)
}
