package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	log "github.com/sirupsen/logrus"

	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/entity"
	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/infra/http/middleware"
	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/usecase"
)

// TaskProcessor é o caso de uso que executa uma task da outbox.
type TaskProcessor interface {
	Execute(ctx context.Context, task *entity.OutboxTask) (string, error)
}

// Acknowledger é o pedaço de amqp.Delivery que o worker usa.
type Acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

type Worker struct {
	Channel   *amqp.Channel
	Processor TaskProcessor
}

func NewWorker(ch *amqp.Channel, processor TaskProcessor) *Worker {
	return &Worker{
		Channel:   ch,
		Processor: processor,
	}
}

// Start consome a fila até o contexto acabar ou o canal fechar.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	if err := w.Channel.Qos(10, 0, false); err != nil {
		return fmt.Errorf("falha ao configurar prefetch: %w", err)
	}

	msgs, err := w.Channel.ConsumeWithContext(ctx,
		queueName, // fila
		"",        // consumer
		false,     // auto-ack (manual é mais seguro)
		false,     // exclusive
		false,     // no-local
		false,     // no-wait
		nil,       // args
	)
	if err != nil {
		return fmt.Errorf("falha ao registrar consumidor RabbitMQ: %w", err)
	}

	log.WithField("queue", queueName).Info(" [*] Worker rodando e aguardando na fila")

	for {
		select {
		case <-ctx.Done():
			log.Info("⚠️ [WORKER] encerrado")
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("canal do RabbitMQ fechado")
			}
			w.Handle(ctx, d.Body, &d)
		}
	}
}

// Handle processa uma mensagem. O retry é da outbox (reagendamento no banco),
// então a mensagem sai da fila com Ack; só mensagem podre vai para a DLQ.
func (w *Worker) Handle(ctx context.Context, body []byte, ack Acknowledger) {
	var msg TaskMessage
	if err := json.Unmarshal(body, &msg); err != nil || msg.ID == "" {
		log.WithError(err).Error("❌ [WORKER] JSON inválido, mandando para DLQ")
		middleware.RecordOutboxTask("unknown", "malformed")
		_ = ack.Nack(false, false)
		return
	}

	logger := log.WithFields(log.Fields{"task_id": msg.ID, "kind": msg.Kind})
	logger.Debug("📥 [WORKER] task recebida")

	result, err := w.Processor.Execute(ctx, msg.Task())
	switch {
	case errors.Is(err, usecase.ErrMalformedTask):
		logger.WithError(err).Error("❌ [WORKER] task malformada, mandando para DLQ")
		middleware.RecordOutboxTask(msg.Kind, "malformed")
		_ = ack.Nack(false, false)
	case err != nil:
		// falha ao gravar o resultado: o lease expira e o relay publica de novo
		logger.WithError(err).Error("❌ [WORKER] erro ao registrar resultado da task")
		middleware.RecordOutboxTask(msg.Kind, "error")
		_ = ack.Ack(false)
	default:
		middleware.RecordOutboxTask(msg.Kind, result)
		_ = ack.Ack(false)
	}
}
