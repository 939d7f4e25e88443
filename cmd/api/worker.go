package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/config"
	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/infra/queue"
	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/infra/worker"
	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/usecase"
)

func workerCmd(cfg func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Publica a outbox no RabbitMQ e consome a fila de e-mails",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorker(cmd.Context(), cfg())
		},
	}
}

func runWorker(ctx context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	rabbit, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
	if err != nil {
		return err
	}
	defer rabbit.Close()
	log.Info("✅ RabbitMQ conectado")

	consumerCh, err := rabbit.Channel()
	if err != nil {
		return fmt.Errorf("falha ao abrir canal do consumidor: %w", err)
	}
	defer consumerCh.Close()

	relay := worker.NewOutboxRelay(a.outbox, queue.NewProducer(rabbit.Ch), cfg.OutboxPollInterval, cfg.OutboxBatchSize, cfg.OutboxLease)
	go relay.Start(ctx)

	processor := usecase.NewProcessOutboxTaskUseCase(a.outbox, emailSender(cfg), a.interactions, cfg.OutboxMaxAttempts, cfg.OutboxLease)
	return queue.NewWorker(consumerCh, processor).Start(ctx, queue.QueueName)
}
