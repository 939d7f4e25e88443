package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/infra/http/handlers"
	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/infra/http/middleware"
)

func newRouter(a *app, rabbitConn *amqp.Connection, limiter *handlers.RateLimiter) http.Handler {
	cfg := a.cfg
	secret := []byte(cfg.JWTSecret)

	health := handlers.NewHealthHandler(a.db, rabbitConn, cfg.AsaasAPIKey != "", cfg.MailConfigured())
	leadHandler := handlers.NewLeadHandler(a.captureLead, limiter)
	referralHandler := handlers.NewReferralHandler(a.referral, cfg.SignupURL, cfg.ReferralCookieDays)
	eventHandler := handlers.NewEventHandler(a.register, a.confirm)
	checkoutHandler := handlers.NewCheckoutHandler(a.checkout)
	subHandler := handlers.NewSubscriptionHandler(a.cancel)
	webhookHandler := handlers.NewWebhookHandler(a.webhook, cfg.AsaasWebhookToken)
	schedulerHandler := handlers.NewSchedulerHandler(a.reminders, a.cleanup)
	adminHandler := &handlers.AdminHandler{
		Pipelines:     a.pipelines,
		Deals:         a.deals,
		Ambassadors:   a.ambassadors,
		Events:        a.events,
		Registrations: a.registration,
	}

	r := chi.NewRouter()
	if cfg.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(chimw.RequestID)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.Metrics)

	r.Get("/health", health.Handle)
	r.Handle("/metrics", promhttp.Handler())

	// Público
	r.Post("/leads", leadHandler.CaptureLead)
	r.Get("/r/{code}", referralHandler.Click)
	r.Post("/events/{eventId}/registrations", eventHandler.Register)
	r.Get("/events/confirm", eventHandler.ConfirmPresence)
	r.Post("/webhooks/asaas", webhookHandler.Handle)
	r.With(middleware.OptionalAuth(secret)).Post("/checkout", checkoutHandler.Handle)

	// Usuária logada
	r.With(middleware.Auth(secret)).Post("/referrals/signup", referralHandler.Signup)
	r.With(middleware.Auth(secret)).Post("/subscriptions/{id}/cancel", subHandler.Cancel)

	// Agendador externo
	r.Route("/scheduler", func(r chi.Router) {
		r.With(middleware.StaticToken(cfg.SchedulerToken)).Post("/event-reminders", schedulerHandler.EventReminders)
		r.With(middleware.StaticToken(cfg.SchedulerToken)).Post("/two-hour-reminders", schedulerHandler.TwoHourReminders)
		r.With(middleware.Auth(secret), middleware.RequireRole(middleware.RoleAdmin)).
			Post("/cleanup-complimentary", schedulerHandler.CleanupComplimentary)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.Auth(secret))
		r.Use(middleware.RequireRole(middleware.RoleAdmin))

		r.Get("/pipelines", adminHandler.ListPipelines)
		r.Post("/pipelines", adminHandler.CreatePipeline)
		r.Patch("/pipelines/{id}", adminHandler.UpdatePipeline)
		r.Patch("/deals/{id}", adminHandler.AdvanceDeal)
		r.Post("/ambassadors", adminHandler.CreateAmbassador)
		r.Patch("/ambassadors/{id}/active", adminHandler.SetAmbassadorActive)
		r.Put("/ambassadors/{id}/payment", adminHandler.UpdateAmbassadorPayment)
		r.Post("/events", adminHandler.CreateEvent)
		r.Patch("/events/{id}/status", adminHandler.SetEventStatus)
		r.Patch("/registrations/{id}/status", adminHandler.UpdateRegistrationStatus)
	})

	return r
}
