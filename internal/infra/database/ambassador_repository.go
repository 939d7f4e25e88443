package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/entity"
)

const referralCodeConstraint = "ambassadors_referral_code_key"

type AmbassadorRepository struct {
	DB *sql.DB
}

func NewAmbassadorRepository(db *sql.DB) *AmbassadorRepository {
	return &AmbassadorRepository{DB: db}
}

const ambassadorColumns = `id, user_id, name, email, tax_id, referral_code, commission_rate,
	total_clicks, total_sales, total_earnings_cents, pending_commission_cents, active,
	payment_preference, pix_key, bank_name, bank_agency, bank_account, bank_account_type,
	created_at, updated_at`

func scanAmbassador(row scanner) (*entity.Ambassador, error) {
	var (
		a                                       entity.Ambassador
		taxID, pix, bank, agency, account, kind sql.NullString
	)
	err := row.Scan(&a.ID, &a.UserID, &a.Name, &a.Email, &taxID, &a.ReferralCode, &a.CommissionRate,
		&a.TotalClicks, &a.TotalSales, &a.TotalEarningsCents, &a.PendingCommissionCents, &a.Active,
		&a.PaymentPreference, &pix, &bank, &agency, &account, &kind,
		&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	a.TaxID = taxID.String
	a.PixKey = pix.String
	a.Bank = entity.BankDetails{
		BankName:    bank.String,
		Agency:      agency.String,
		Account:     account.String,
		AccountType: kind.String,
	}
	return &a, nil
}

func (r *AmbassadorRepository) FindByID(ctx context.Context, id string) (*entity.Ambassador, error) {
	return scanAmbassador(r.DB.QueryRowContext(ctx, `SELECT `+ambassadorColumns+` FROM ambassadors WHERE id = $1`, id))
}

func (r *AmbassadorRepository) FindByReferralCode(ctx context.Context, code string) (*entity.Ambassador, error) {
	query := `SELECT ` + ambassadorColumns + ` FROM ambassadors WHERE referral_code = $1`
	return scanAmbassador(r.DB.QueryRowContext(ctx, query, entity.NormalizeReferralCode(code)))
}

func (r *AmbassadorRepository) Create(ctx context.Context, a *entity.Ambassador) error {
	query := `
		INSERT INTO ambassadors (
			id, user_id, name, email, tax_id, referral_code, commission_rate, active,
			payment_preference, pix_key, bank_name, bank_agency, bank_account, bank_account_type,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	_, err := r.DB.ExecContext(ctx, query,
		a.ID, a.UserID, a.Name, a.Email, nullString(a.TaxID), a.ReferralCode, a.CommissionRate, a.Active,
		a.PaymentPreference, nullString(a.PixKey),
		nullString(a.Bank.BankName), nullString(a.Bank.Agency), nullString(a.Bank.Account), nullString(a.Bank.AccountType),
		a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		if name, ok := uniqueConstraint(err); ok && name == referralCodeConstraint {
			return entity.ErrReferralCodeTaken
		}
		return fmt.Errorf("erro ao criar embaixadora: %w", err)
	}
	return nil
}

func (r *AmbassadorRepository) SetActive(ctx context.Context, id string, active bool) error {
	return r.exec(ctx, `UPDATE ambassadors SET active = $2, updated_at = NOW() WHERE id = $1`, id, active)
}

// UpdatePaymentDetails nunca toca referral_code; o trigger recusaria de qualquer forma.
func (r *AmbassadorRepository) UpdatePaymentDetails(ctx context.Context, a *entity.Ambassador) error {
	query := `
		UPDATE ambassadors SET
			payment_preference = $2, pix_key = $3,
			bank_name = $4, bank_agency = $5, bank_account = $6, bank_account_type = $7,
			updated_at = NOW()
		WHERE id = $1
	`
	return r.exec(ctx, query, a.ID, a.PaymentPreference, nullString(a.PixKey),
		nullString(a.Bank.BankName), nullString(a.Bank.Agency), nullString(a.Bank.Account), nullString(a.Bank.AccountType))
}

func (r *AmbassadorRepository) IncrementClicks(ctx context.Context, code string) error {
	query := `UPDATE ambassadors SET total_clicks = total_clicks + 1 WHERE referral_code = $1 AND active`
	return r.exec(ctx, query, entity.NormalizeReferralCode(code))
}

func (r *AmbassadorRepository) CreditSale(ctx context.Context, id string, commissionCents int64) error {
	query := `
		UPDATE ambassadors SET
			total_sales = total_sales + 1,
			pending_commission_cents = pending_commission_cents + $2,
			total_earnings_cents = total_earnings_cents + $2,
			updated_at = NOW()
		WHERE id = $1
	`
	return r.exec(ctx, query, id, commissionCents)
}

func (r *AmbassadorRepository) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	ok, err := affected(res)
	if err != nil {
		return err
	}
	if !ok {
		return entity.ErrNotFound
	}
	return nil
}
