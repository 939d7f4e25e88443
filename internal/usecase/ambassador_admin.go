package usecase

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/entity"
)

const maxReferralCodeAttempts = 5

type CreateAmbassadorInput struct {
	UserID         string  `json:"user_id"`
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	TaxID          string  `json:"tax_id"`
	CommissionRate float64 `json:"commission_rate"`
}

type PaymentDetailsInput struct {
	PaymentPreference string             `json:"payment_preference"`
	PixKey            string             `json:"pix_key"`
	Bank              entity.BankDetails `json:"bank"`
}

type AmbassadorAdminUseCase struct {
	Repo AmbassadorRepository
	Now  func() time.Time
}

func NewAmbassadorAdminUseCase(repo AmbassadorRepository) *AmbassadorAdminUseCase {
	return &AmbassadorAdminUseCase{Repo: repo, Now: time.Now}
}

// Create emite um código novo; colisão com código já emitido sorteia de novo.
func (uc *AmbassadorAdminUseCase) Create(ctx context.Context, input CreateAmbassadorInput) (*entity.Ambassador, error) {
	if errs := ValidateCreateAmbassadorInput(input); len(errs) > 0 {
		return nil, validationError(errs)
	}

	for attempt := 1; attempt <= maxReferralCodeAttempts; attempt++ {
		ambassador, err := entity.NewAmbassador(input.UserID, input.Name, input.Email, input.TaxID, input.CommissionRate, uc.Now())
		if err != nil {
			return nil, &TechnicalError{Code: "CODE_GENERATION_FAILED", Message: "failed to generate referral code", Err: err}
		}

		err = uc.Repo.Create(ctx, ambassador)
		if err == nil {
			log.WithFields(log.Fields{"ambassador_id": ambassador.ID, "referral_code": ambassador.ReferralCode}).Info("✅ embaixadora cadastrada")
			return ambassador, nil
		}
		if !errors.Is(err, entity.ErrReferralCodeTaken) {
			return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "failed to save ambassador", Err: err}
		}
		log.WithField("attempt", attempt).Warn("código de indicação colidiu, sorteando outro")
	}
	return nil, &TechnicalError{Code: "CODE_GENERATION_FAILED", Message: "could not issue a unique referral code", Err: entity.ErrReferralCodeTaken}
}

// SetActive ativa ou desativa; embaixadoras nunca são apagadas.
func (uc *AmbassadorAdminUseCase) SetActive(ctx context.Context, id string, active bool) error {
	if err := uc.Repo.SetActive(ctx, id, active); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return &DomainError{Code: CodeNotFound, Message: "ambassador not found"}
		}
		return &TechnicalError{Code: "DATABASE_ERROR", Message: "failed to update ambassador", Err: err}
	}
	return nil
}

func (uc *AmbassadorAdminUseCase) UpdatePaymentDetails(ctx context.Context, id string, input PaymentDetailsInput) (*entity.Ambassador, error) {
	ambassador, err := uc.Repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, &DomainError{Code: CodeNotFound, Message: "ambassador not found"}
		}
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "failed to load ambassador", Err: err}
	}

	ambassador.PaymentPreference = input.PaymentPreference
	ambassador.PixKey = input.PixKey
	ambassador.Bank = input.Bank
	if err := ambassador.ValidatePayment(); err != nil {
		return nil, &DomainError{Code: CodeValidation, Message: err.Error()}
	}
	ambassador.UpdatedAt = uc.Now()

	if err := uc.Repo.UpdatePaymentDetails(ctx, ambassador); err != nil {
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "failed to save payment details", Err: err}
	}
	return ambassador, nil
}
