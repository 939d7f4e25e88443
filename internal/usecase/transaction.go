package usecase

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// Transaction executa passos em ordem; se um falha, desfaz os anteriores
// em ordem reversa com as compensações registradas.
type Transaction struct {
	steps []step
}

type step struct {
	name       string
	run        func(context.Context) error
	compensate func(context.Context) error
}

func NewTransaction() *Transaction {
	return &Transaction{}
}

// AddStep registra um passo; compensate pode ser nil.
func (t *Transaction) AddStep(name string, run, compensate func(context.Context) error) {
	t.steps = append(t.steps, step{name: name, run: run, compensate: compensate})
}

func (t *Transaction) Execute(ctx context.Context) error {
	for i, s := range t.steps {
		if err := s.run(ctx); err != nil {
			rolledBack := t.rollback(ctx, i)
			return fmt.Errorf("operation '%s' failed: %w (rolled back %d operations)", s.name, err, rolledBack)
		}
	}
	return nil
}

func (t *Transaction) rollback(ctx context.Context, failedAt int) int {
	rolledBack := 0
	for i := failedAt - 1; i >= 0; i-- {
		s := t.steps[i]
		if s.compensate == nil {
			continue
		}
		if err := s.compensate(ctx); err != nil {
			log.WithError(err).WithField("step", s.name).Error("⚠️ compensação falhou (risco de inconsistência)")
			continue
		}
		rolledBack++
	}
	return rolledBack
}
