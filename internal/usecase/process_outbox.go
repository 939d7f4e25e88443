package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/entity"
)

// ErrMalformedTask indica task que nunca vai dar certo; o consumidor manda para a DLQ.
var ErrMalformedTask = errors.New("malformed outbox task")

const (
	backoffBase = 30 * time.Second
	backoffCap  = time.Hour
)

// Resultado do processamento de uma task
const (
	TaskDone  = "done"
	TaskRetry = "retry"
	TaskDead  = "dead"

	// TaskSkipped é cópia velha ou repetida da mensagem: outro consumer já cuidou.
	TaskSkipped = "skipped"
)

// Backoff devolve a espera antes da próxima tentativa: 30s·2^(n-1), no máximo 1h.
func Backoff(attempts int) time.Duration {
	if attempts < 1 {
		attempts = 1
	}
	d := backoffBase
	for i := 1; i < attempts; i++ {
		d *= 2
		if d >= backoffCap {
			return backoffCap
		}
	}
	return d
}

// ProcessOutboxTaskUseCase executa uma task da outbox e registra o resultado.
type ProcessOutboxTaskUseCase struct {
	Outbox       OutboxStore
	Sender       EmailSender
	Interactions *InteractionRecorder
	MaxAttempts  int
	Lease        time.Duration // segura a task enquanto o e-mail sai
	Now          func() time.Time
}

func NewProcessOutboxTaskUseCase(outbox OutboxStore, sender EmailSender, interactions *InteractionRecorder, maxAttempts int, lease time.Duration) *ProcessOutboxTaskUseCase {
	if maxAttempts <= 0 {
		maxAttempts = 8
	}
	if lease <= 0 {
		lease = 5 * time.Minute
	}
	return &ProcessOutboxTaskUseCase{
		Outbox:       outbox,
		Sender:       sender,
		Interactions: interactions,
		MaxAttempts:  maxAttempts,
		Lease:        lease,
		Now:          time.Now,
	}
}

// Execute devolve o resultado (done/retry/dead). Erro só para task malformada
// ou falha ao gravar o resultado.
func (uc *ProcessOutboxTaskUseCase) Execute(ctx context.Context, task *entity.OutboxTask) (string, error) {
	if task.Kind != entity.TaskSendEmail {
		return "", fmt.Errorf("%w: kind %q", ErrMalformedTask, task.Kind)
	}
	var email entity.EmailTask
	if err := json.Unmarshal(task.Payload, &email); err != nil || email.To == "" {
		return "", fmt.Errorf("%w: %s", ErrMalformedTask, task.ID)
	}

	if task.LockedUntil == nil {
		return "", fmt.Errorf("%w: %s sem lease", ErrMalformedTask, task.ID)
	}

	// A mensagem pode ser cópia velha (lease vencido e republicado) ou repetida;
	// só quem troca o lease publicado envia.
	owned, ok, err := uc.Outbox.Acquire(ctx, task.ID, *task.LockedUntil, uc.Now().Add(uc.Lease).Truncate(time.Microsecond))
	if err != nil {
		return "", err
	}
	if !ok {
		log.WithField("task_id", task.ID).Info("⏭️ task já assumida por outra entrega, ignorada")
		return TaskSkipped, nil
	}
	lease := *owned.LockedUntil

	logger := log.WithFields(log.Fields{"task_id": task.ID, "template": email.Template, "attempt": owned.Attempts + 1})

	if sendErr := uc.Sender.Send(ctx, email); sendErr != nil {
		attempts := owned.Attempts + 1
		if attempts >= uc.MaxAttempts {
			logger.WithError(sendErr).Error("💀 e-mail desistido após esgotar tentativas")
			if err := uc.Outbox.MarkDead(ctx, task.ID, lease, attempts, sendErr.Error()); err != nil {
				return leaseLost(err)
			}
			return TaskDead, nil
		}

		next := uc.Now().Add(Backoff(attempts))
		logger.WithError(sendErr).WithField("next_attempt_at", next).Warn("⚠️ envio falhou, reagendado")
		if err := uc.Outbox.Reschedule(ctx, task.ID, lease, attempts, next, sendErr.Error()); err != nil {
			return leaseLost(err)
		}
		return TaskRetry, nil
	}

	if err := uc.Outbox.MarkDone(ctx, task.ID, lease); err != nil {
		if !errors.Is(err, entity.ErrLeaseLost) {
			return "", err
		}
		logger.Warn("⚠️ lease venceu durante o envio; a task pode sair de novo")
	} else {
		logger.Info("📧 e-mail enviado")
	}

	if email.LeadID != "" {
		uc.Interactions.Record(ctx, RecordInteractionInput{
			LeadID:      email.LeadID,
			Type:        entity.InteractionEmailSent,
			Channel:     entity.ChannelEmail,
			Description: email.Subject,
			Metadata: entity.EmailSentMeta{
				Template:       email.Template,
				Subject:        email.Subject,
				RegistrationID: email.RegistrationID,
				TaskID:         task.ID,
			},
		})
	}
	return TaskDone, nil
}

// leaseLost transforma perda de lease em skip: outra entrega já é dona da task.
func leaseLost(err error) (string, error) {
	if errors.Is(err, entity.ErrLeaseLost) {
		return TaskSkipped, nil
	}
	return "", err
}
