package entity

import (
	"crypto/rand"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	PaymentPix          = "pix"
	PaymentBankTransfer = "bank_transfer"

	referralCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	ReferralCodeLength   = 8
)

type BankDetails struct {
	BankName    string `json:"bank_name,omitempty"`
	Agency      string `json:"agency,omitempty"`
	Account     string `json:"account,omitempty"`
	AccountType string `json:"account_type,omitempty"`
}

type Ambassador struct {
	ID                     string      `json:"id"`
	UserID                 string      `json:"user_id"`
	Name                   string      `json:"name"`
	Email                  string      `json:"email"`
	TaxID                  string      `json:"tax_id,omitempty"`
	ReferralCode           string      `json:"referral_code"`
	CommissionRate         float64     `json:"commission_rate"`
	TotalClicks            int64       `json:"total_clicks"`
	TotalSales             int64       `json:"total_sales"`
	TotalEarningsCents     int64       `json:"total_earnings_cents"`
	PendingCommissionCents int64       `json:"pending_commission_cents"`
	Active                 bool        `json:"active"`
	PaymentPreference      string      `json:"payment_preference"`
	PixKey                 string      `json:"pix_key,omitempty"`
	Bank                   BankDetails `json:"bank"`
	CreatedAt              time.Time   `json:"created_at"`
	UpdatedAt              time.Time   `json:"updated_at"`
}

func NewAmbassador(userID, name, email, taxID string, rate float64, now time.Time) (*Ambassador, error) {
	code, err := GenerateReferralCode()
	if err != nil {
		return nil, err
	}
	a := &Ambassador{
		ID:                uuid.New().String(),
		UserID:            userID,
		Name:              strings.TrimSpace(name),
		Email:             NormalizeEmail(email),
		TaxID:             NormalizeTaxID(taxID),
		ReferralCode:      code,
		CommissionRate:    rate,
		Active:            true,
		PaymentPreference: PaymentPix,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	return a, nil
}

func (a *Ambassador) ValidatePayment() error {
	switch a.PaymentPreference {
	case PaymentPix:
		if strings.TrimSpace(a.PixKey) == "" {
			return errors.New("pix_key is required for pix payments")
		}
	case PaymentBankTransfer:
		if a.Bank.BankName == "" || a.Bank.Agency == "" || a.Bank.Account == "" {
			return errors.New("bank_name, agency and account are required for bank transfers")
		}
	default:
		return errors.New("payment_preference must be pix or bank_transfer")
	}
	return nil
}

// Commission calcula a comissão em centavos, arredondando para baixo.
func (a *Ambassador) Commission(valueCents int64) int64 {
	return CommissionFor(valueCents, a.CommissionRate)
}

func CommissionFor(valueCents int64, rate float64) int64 {
	if valueCents <= 0 || rate <= 0 {
		return 0
	}
	return int64(float64(valueCents) * rate / 100)
}

// GenerateReferralCode sorteia um código de 8 caracteres sem ambíguos (0/O, 1/I).
func GenerateReferralCode() (string, error) {
	buf := make([]byte, ReferralCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = referralCodeAlphabet[int(b)%len(referralCodeAlphabet)]
	}
	return string(buf), nil
}

func NormalizeReferralCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
