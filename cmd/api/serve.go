package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/config"
	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/infra/http/handlers"
	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/infra/queue"
)

func serveCmd(cfg func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Sobe a API HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), cfg())
		},
	}
}

func runServe(ctx context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if cfg.AsaasWebhookToken == "" {
		log.Warn("⚠️ ASAAS_WEBHOOK_TOKEN vazio: webhook aceita qualquer chamada")
	}

	// A API só grava na outbox; o RabbitMQ aqui serve para o /health.
	rabbit, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
	if err != nil {
		log.WithError(err).Warn("⚠️ RabbitMQ indisponível, /health vai reportar")
	} else {
		defer rabbit.Close()
	}

	limiter := handlers.NewRateLimiter(cfg.LeadRateLimit, time.Minute)
	go limiter.Cleanup(ctx.Done())

	var router http.Handler
	if rabbit != nil {
		router = newRouter(a, rabbit.Conn, limiter)
	} else {
		router = newRouter(a, nil, limiter)
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", srv.Addr).Info("🔥 Portal API rodando")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("⚠️ desligando a API")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
