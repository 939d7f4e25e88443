package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/entity"
)

// colunas de cada lembrete; nunca interpolar nada fora deste mapa
var reminderColumns = map[entity.ReminderSlot]string{
	entity.ReminderFirst:  "email_1_sent_at",
	entity.ReminderSecond: "email_2_sent_at",
	entity.ReminderThird:  "email_3_sent_at",
}

type RegistrationRepository struct {
	DB *sql.DB
}

func NewRegistrationRepository(db *sql.DB) *RegistrationRepository {
	return &RegistrationRepository{DB: db}
}

const registrationColumns = `id, event_id, full_name, email, phone, tax_id, payment_amount_cents, paid, status,
	email_1_sent_at, email_2_sent_at, email_3_sent_at, presence_confirmed_at, welcome_email_sent_at,
	reminder_2h_sent_at, confirmation_token, lead_id, deal_id, gateway_payment_id, invoice_url,
	created_at, updated_at`

func scanRegistration(row scanner) (*entity.EventRegistration, error) {
	var (
		r                                                 entity.EventRegistration
		phone, taxID, leadID, dealID, paymentID, invoice  sql.NullString
		email1, email2, email3, presence, welcome, twoHrs sql.NullTime
	)
	err := row.Scan(&r.ID, &r.EventID, &r.FullName, &r.Email, &phone, &taxID, &r.PaymentAmountCents, &r.Paid, &r.Status,
		&email1, &email2, &email3, &presence, &welcome,
		&twoHrs, &r.ConfirmationToken, &leadID, &dealID, &paymentID, &invoice,
		&r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	r.Phone = phone.String
	r.TaxID = taxID.String
	r.LeadID = leadID.String
	r.DealID = dealID.String
	r.GatewayPaymentID = paymentID.String
	r.InvoiceURL = invoice.String
	r.Email1SentAt = timePtr(email1)
	r.Email2SentAt = timePtr(email2)
	r.Email3SentAt = timePtr(email3)
	r.PresenceConfirmedAt = timePtr(presence)
	r.WelcomeEmailSentAt = timePtr(welcome)
	r.Reminder2hSentAt = timePtr(twoHrs)
	return &r, nil
}

func (r *RegistrationRepository) Create(ctx context.Context, reg *entity.EventRegistration) error {
	query := `
		INSERT INTO event_registrations (
			id, event_id, full_name, email, phone, tax_id, payment_amount_cents, paid, status,
			confirmation_token, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.DB.ExecContext(ctx, query,
		reg.ID, reg.EventID, reg.FullName, reg.Email, nullString(reg.Phone), nullString(reg.TaxID),
		reg.PaymentAmountCents, reg.Paid, reg.Status, reg.ConfirmationToken, reg.CreatedAt, reg.UpdatedAt,
	)
	if err != nil {
		if _, dup := uniqueConstraint(err); dup {
			return entity.ErrDuplicateRegistration
		}
		return fmt.Errorf("erro ao criar inscrição: %w", err)
	}
	return nil
}

func (r *RegistrationRepository) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM event_registrations WHERE id = $1`, id)
	return err
}

func (r *RegistrationRepository) FindByID(ctx context.Context, id string) (*entity.EventRegistration, error) {
	return scanRegistration(r.DB.QueryRowContext(ctx, `SELECT `+registrationColumns+` FROM event_registrations WHERE id = $1`, id))
}

func (r *RegistrationRepository) FindByEventAndEmail(ctx context.Context, eventID, email string) (*entity.EventRegistration, error) {
	query := `SELECT ` + registrationColumns + ` FROM event_registrations WHERE event_id = $1 AND lower(email) = lower($2)`
	return scanRegistration(r.DB.QueryRowContext(ctx, query, eventID, email))
}

func (r *RegistrationRepository) FindByToken(ctx context.Context, token string) (*entity.EventRegistration, error) {
	query := `SELECT ` + registrationColumns + ` FROM event_registrations WHERE confirmation_token = $1`
	return scanRegistration(r.DB.QueryRowContext(ctx, query, token))
}

func (r *RegistrationRepository) SetCRMLinks(ctx context.Context, id, leadID, dealID string) error {
	query := `
		UPDATE event_registrations SET
			lead_id = COALESCE($2::uuid, lead_id),
			deal_id = COALESCE($3::uuid, deal_id),
			updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.DB.ExecContext(ctx, query, id, nullString(leadID), nullString(dealID))
	return err
}

func (r *RegistrationRepository) SetPayment(ctx context.Context, id, paymentID, invoiceURL string) error {
	query := `UPDATE event_registrations SET gateway_payment_id = $2, invoice_url = $3, updated_at = NOW() WHERE id = $1`
	_, err := r.DB.ExecContext(ctx, query, id, nullString(paymentID), nullString(invoiceURL))
	return err
}

// MarkPaid confirma a inscrição pendente junto com o pagamento.
func (r *RegistrationRepository) MarkPaid(ctx context.Context, id string, now time.Time) (bool, error) {
	query := `
		UPDATE event_registrations SET
			paid = TRUE,
			status = CASE WHEN status = 'pending' THEN 'confirmed' ELSE status END,
			updated_at = $2
		WHERE id = $1 AND NOT paid
	`
	res, err := r.DB.ExecContext(ctx, query, id, now)
	if err != nil {
		return false, err
	}
	return affected(res)
}

func (r *RegistrationRepository) UpdateStatus(ctx context.Context, id string, from, to entity.RegistrationStatus) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE event_registrations SET status = $3, updated_at = NOW() WHERE id = $1 AND status = $2`, id, from, to)
	if err != nil {
		return err
	}
	ok, err := affected(res)
	if err != nil {
		return err
	}
	if !ok {
		return entity.ErrInvalidTransition
	}
	return nil
}

// ListForReminder já filtra pela progressão linear; o Claim confere de novo.
func (r *RegistrationRepository) ListForReminder(ctx context.Context, eventID string, slot entity.ReminderSlot) ([]*entity.EventRegistration, error) {
	col, ok := reminderColumns[slot]
	if !ok {
		return nil, fmt.Errorf("slot de lembrete inválido: %d", slot)
	}
	query := `SELECT ` + registrationColumns + ` FROM event_registrations
		WHERE event_id = $1
		  AND status <> 'cancelled'
		  AND presence_confirmed_at IS NULL
		  AND ` + col + ` IS NULL` + previousSlotClause(slot) + `
		ORDER BY created_at`
	return r.list(ctx, query, eventID)
}

func (r *RegistrationRepository) ListForTwoHourReminder(ctx context.Context, eventID string) ([]*entity.EventRegistration, error) {
	query := `SELECT ` + registrationColumns + ` FROM event_registrations
		WHERE event_id = $1
		  AND status <> 'cancelled'
		  AND presence_confirmed_at IS NOT NULL
		  AND reminder_2h_sent_at IS NULL
		ORDER BY created_at`
	return r.list(ctx, query, eventID)
}

func (r *RegistrationRepository) ClaimReminder(ctx context.Context, id string, slot entity.ReminderSlot, now time.Time, task *entity.OutboxTask) (bool, error) {
	col, ok := reminderColumns[slot]
	if !ok {
		return false, fmt.Errorf("slot de lembrete inválido: %d", slot)
	}
	query := `UPDATE event_registrations SET ` + col + ` = $2, updated_at = $2
		WHERE id = $1
		  AND status <> 'cancelled'
		  AND presence_confirmed_at IS NULL
		  AND ` + col + ` IS NULL` + previousSlotClause(slot)
	return r.claim(ctx, query, []any{id, now}, task)
}

func (r *RegistrationRepository) ClaimTwoHourReminder(ctx context.Context, id string, now time.Time, task *entity.OutboxTask) (bool, error) {
	query := `UPDATE event_registrations SET reminder_2h_sent_at = $2, updated_at = $2
		WHERE id = $1
		  AND status <> 'cancelled'
		  AND presence_confirmed_at IS NOT NULL
		  AND reminder_2h_sent_at IS NULL`
	return r.claim(ctx, query, []any{id, now}, task)
}

// ConfirmPresence grava a presença e, se houver, o e-mail de boas-vindas na
// mesma transação. false = presença já confirmada antes.
func (r *RegistrationRepository) ConfirmPresence(ctx context.Context, id string, now time.Time, welcome *entity.OutboxTask) (bool, error) {
	query := `UPDATE event_registrations SET
			presence_confirmed_at = $2,
			status = CASE WHEN status = 'pending' THEN 'confirmed' ELSE status END,
			welcome_email_sent_at = CASE WHEN $3::boolean THEN $2 ELSE welcome_email_sent_at END,
			updated_at = $2
		WHERE id = $1 AND presence_confirmed_at IS NULL AND status <> 'cancelled'`
	return r.claim(ctx, query, []any{id, now, welcome != nil}, welcome)
}

// claim roda o UPDATE condicional e, se ele pegou a linha, grava a task.
func (r *RegistrationRepository) claim(ctx context.Context, query string, args []any, task *entity.OutboxTask) (bool, error) {
	var claimed bool
	err := withTx(ctx, r.DB, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		if claimed, err = affected(res); err != nil || !claimed {
			return err
		}
		if task == nil {
			return nil
		}
		return insertOutbox(ctx, tx, task)
	})
	if err != nil {
		return false, fmt.Errorf("erro ao reivindicar inscrição: %w", err)
	}
	return claimed, nil
}

func (r *RegistrationRepository) list(ctx context.Context, query string, args ...any) ([]*entity.EventRegistration, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*entity.EventRegistration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, reg)
	}
	return out, rows.Err()
}

func previousSlotClause(slot entity.ReminderSlot) string {
	prev := slot.Previous()
	if prev == 0 {
		return ""
	}
	return "\n\t\t  AND " + reminderColumns[prev] + " IS NOT NULL"
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	return &t.Time
}
