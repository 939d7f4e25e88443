package usecase

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

type CleanupComplimentaryOutput struct {
	Deactivated []string `json:"deactivated"`
	Count       int      `json:"count"`
}

// CleanupComplimentaryUseCase desliga negócios cuja cortesia já venceu.
type CleanupComplimentaryUseCase struct {
	Businesses BusinessRepository
	Now        func() time.Time
}

func NewCleanupComplimentaryUseCase(businesses BusinessRepository) *CleanupComplimentaryUseCase {
	return &CleanupComplimentaryUseCase{Businesses: businesses, Now: time.Now}
}

func (uc *CleanupComplimentaryUseCase) Execute(ctx context.Context) (*CleanupComplimentaryOutput, error) {
	ids, err := uc.Businesses.DeactivateExpiredComplimentary(ctx, uc.Now())
	if err != nil {
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "failed to deactivate complimentary businesses", Err: err}
	}
	if ids == nil {
		ids = []string{}
	}
	log.WithField("count", len(ids)).Info("🧹 cortesias vencidas desativadas")
	return &CleanupComplimentaryOutput{Deactivated: ids, Count: len(ids)}, nil
}
