package worker

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/entity"
	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/infra/http/middleware"
	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/usecase"
)

// TaskPublisher entrega a task reivindicada ao broker.
type TaskPublisher interface {
	PublishTask(ctx context.Context, task *entity.OutboxTask) error
}

// OutboxStore é a outbox vista pelo relay: reivindica e conta por status.
type OutboxStore interface {
	usecase.OutboxStore
	Stats(ctx context.Context) (map[entity.OutboxStatus]int, error)
}

// OutboxRelay move tasks vencidas da outbox para o RabbitMQ.
type OutboxRelay struct {
	store        OutboxStore
	publisher    TaskPublisher
	tickInterval time.Duration
	batchSize    int
	lease        time.Duration
	now          func() time.Time
}

func NewOutboxRelay(store OutboxStore, publisher TaskPublisher, tickInterval time.Duration, batchSize int, lease time.Duration) *OutboxRelay {
	if tickInterval <= 0 {
		tickInterval = 5 * time.Second
	}
	if batchSize <= 0 {
		batchSize = 50
	}
	if lease <= 0 {
		lease = 5 * time.Minute
	}
	return &OutboxRelay{
		store:        store,
		publisher:    publisher,
		tickInterval: tickInterval,
		batchSize:    batchSize,
		lease:        lease,
		now:          time.Now,
	}
}

func (w *OutboxRelay) Start(ctx context.Context) {
	log.WithFields(log.Fields{"interval": w.tickInterval, "batch": w.batchSize}).Info("🕒 Outbox relay iniciado")

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	w.RelayOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Info("⚠️ Outbox relay encerrado")
			return
		case <-ticker.C:
			w.RelayOnce(ctx)
		}
	}
}

// RelayOnce reivindica um lote e publica. Task que não publicou fica dispatched
// até o lease vencer e volta no próximo lote.
func (w *OutboxRelay) RelayOnce(ctx context.Context) int {
	tasks, err := w.store.ClaimDue(ctx, w.now(), w.batchSize, w.lease)
	if err != nil {
		log.WithError(err).Error("❌ Erro ao reivindicar tasks da outbox")
		return 0
	}

	published := 0
	for _, task := range tasks {
		if err := w.publisher.PublishTask(ctx, task); err != nil {
			log.WithError(err).WithField("task_id", task.ID).Warn("⚠️ Falha ao publicar task, volta após o lease")
			continue
		}
		published++
	}

	if published > 0 {
		log.WithField("count", published).Info("✅ tasks publicadas")
	}
	w.refreshBacklog(ctx)
	return published
}

func (w *OutboxRelay) refreshBacklog(ctx context.Context) {
	stats, err := w.store.Stats(ctx)
	if err != nil {
		log.WithError(err).Warn("⚠️ Erro ao contar tasks da outbox")
		return
	}
	byStatus := make(map[string]int, len(stats))
	for status, n := range stats {
		byStatus[string(status)] = n
	}
	middleware.SetOutboxBacklog(byStatus)
}
