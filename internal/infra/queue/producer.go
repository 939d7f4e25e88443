package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/entity"
)

// TaskMessage é o que trafega na fila: a task inteira, já com payload renderizado.
type TaskMessage struct {
	ID       string          `json:"id"`
	Kind     string          `json:"kind"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`

	// lease do dispatch que publicou esta mensagem
	LockedUntil *time.Time `json:"locked_until,omitempty"`
}

func NewTaskMessage(task *entity.OutboxTask) TaskMessage {
	return TaskMessage{ID: task.ID, Kind: task.Kind, Payload: task.Payload, Attempts: task.Attempts, LockedUntil: task.LockedUntil}
}

func (m TaskMessage) Task() *entity.OutboxTask {
	return &entity.OutboxTask{
		ID:          m.ID,
		Kind:        m.Kind,
		Payload:     m.Payload,
		Status:      entity.OutboxDispatched,
		Attempts:    m.Attempts,
		LockedUntil: m.LockedUntil,
	}
}

type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type RabbitMQProducer struct {
	Ch publisher
}

func NewProducer(ch *amqp.Channel) *RabbitMQProducer {
	return &RabbitMQProducer{Ch: ch}
}

func (p *RabbitMQProducer) PublishTask(ctx context.Context, task *entity.OutboxTask) error {
	body, err := json.Marshal(NewTaskMessage(task))
	if err != nil {
		return fmt.Errorf("erro ao converter task: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName, // ex.portal
		RoutingKey,   // k.outbox
		false,        // Mandatory
		false,        // Immediate
		amqp.Publishing{
			ContentType:  "application/json",
			MessageId:    task.ID,
			Type:         task.Kind,
			Body:         body,
			DeliveryMode: amqp.Persistent, // Mensagem salva no disco
		},
	)
	if err != nil {
		return fmt.Errorf("falha ao publicar no RabbitMQ: %w", err)
	}

	return nil
}
