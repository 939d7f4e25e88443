package main

import (
	"database/sql"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/config"
	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/infra/database"
	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/infra/integration/asaas"
	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/infra/mail"
	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/usecase"
)

// app junta repositórios e casos de uso; cada subcomando usa o que precisa.
type app struct {
	cfg *config.Config
	db  *sql.DB
	loc *time.Location

	outbox *database.OutboxRepository

	interactions *usecase.InteractionRecorder

	captureLead  *usecase.CaptureLeadUseCase
	referral     *usecase.ReferralAttributionUseCase
	register     *usecase.RegisterEventUseCase
	confirm      *usecase.ConfirmPresenceUseCase
	reminders    *usecase.EventRemindersUseCase
	checkout     *usecase.SubscribePlanUseCase
	cancel       *usecase.CancelSubscriptionUseCase
	webhook      *usecase.PaymentWebhookUseCase
	cleanup      *usecase.CleanupComplimentaryUseCase
	deals        *usecase.DealManager
	pipelines    *usecase.PipelineAdminUseCase
	ambassadors  *usecase.AmbassadorAdminUseCase
	events       *usecase.EventAdminUseCase
	registration *usecase.UpdateRegistrationStatusUseCase
}

func newApp(cfg *config.Config) (*app, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	db, err := database.NewDBConnection(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("falha ao conectar no banco: %w", err)
	}
	log.Info("✅ Banco conectado")

	renderer, err := mail.NewRenderer()
	if err != nil {
		db.Close()
		return nil, err
	}

	if cfg.AsaasAPIKey == "" {
		log.Warn("⚠️ ASAAS_API_KEY vazio: checkout e inscrições pagas vão falhar")
	}
	gateway := asaas.NewClient(cfg.AsaasAPIKey, cfg.AsaasURL)

	// 1. Repositórios
	leadRepo := database.NewLeadRepository(db)
	interactionRepo := database.NewInteractionRepository(db)
	pipelineRepo := database.NewPipelineRepository(db)
	dealRepo := database.NewDealRepository(db)
	ambassadorRepo := database.NewAmbassadorRepository(db)
	eventRepo := database.NewEventRepository(db)
	regRepo := database.NewRegistrationRepository(db)
	outboxRepo := database.NewOutboxRepository(db)
	planRepo := database.NewPlanRepository(db)
	subRepo := database.NewSubscriptionRepository(db)
	processedRepo := database.NewProcessedPaymentRepository(db)
	businessRepo := database.NewBusinessRepository(db)

	// 2. Blocos do CRM
	leads := usecase.NewLeadRegistry(leadRepo)
	interactions := usecase.NewInteractionRecorder(interactionRepo)
	deals := usecase.NewDealManager(pipelineRepo, dealRepo)
	notifier := usecase.NewNotifier(renderer, outboxRepo, cfg.PublicBaseURL, loc)

	// 3. Casos de uso
	confirmPayment := usecase.NewConfirmPaymentUseCase(leads, deals, ambassadorRepo, interactions)

	return &app{
		cfg:          cfg,
		db:           db,
		loc:          loc,
		outbox:       outboxRepo,
		interactions: interactions,
		captureLead:  usecase.NewCaptureLeadUseCase(leads, interactions),
		referral:     usecase.NewReferralAttributionUseCase(ambassadorRepo, leads, interactions, deals),
		register:     usecase.NewRegisterEventUseCase(eventRepo, regRepo, gateway, leads, interactions, deals, notifier),
		confirm:      usecase.NewConfirmPresenceUseCase(regRepo, eventRepo, deals, interactions, notifier),
		reminders:    usecase.NewEventRemindersUseCase(eventRepo, regRepo, notifier, loc),
		checkout:     usecase.NewSubscribePlanUseCase(planRepo, subRepo, gateway, leads, interactions, deals),
		cancel:       usecase.NewCancelSubscriptionUseCase(subRepo, gateway, interactions, deals),
		webhook:      usecase.NewPaymentWebhookUseCase(subRepo, regRepo, eventRepo, processedRepo, confirmPayment, notifier),
		cleanup:      usecase.NewCleanupComplimentaryUseCase(businessRepo),
		deals:        deals,
		pipelines:    usecase.NewPipelineAdminUseCase(pipelineRepo),
		ambassadors:  usecase.NewAmbassadorAdminUseCase(ambassadorRepo),
		events:       usecase.NewEventAdminUseCase(eventRepo),
		registration: usecase.NewUpdateRegistrationStatusUseCase(regRepo, eventRepo, deals, interactions),
	}, nil
}

func (a *app) Close() {
	a.db.Close()
}

// emailSender escolhe a API de e-mail quando há chave; senão SMTP.
func emailSender(cfg *config.Config) usecase.EmailSender {
	if cfg.MailAPIKey != "" {
		return mail.NewAPISender(cfg.MailAPIKey, cfg.MailAPIURL, cfg.MailFrom, cfg.MailFromName)
	}
	if cfg.SMTPHost == "" {
		log.Warn("⚠️ nenhum envio de e-mail configurado (MAIL_API_KEY / SMTP_HOST)")
	}
	return mail.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.MailFrom, cfg.MailFromName)
}
