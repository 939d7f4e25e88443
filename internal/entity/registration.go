package entity

import (
	"time"

	"github.com/google/uuid"
)

type RegistrationStatus string

const (
	RegistrationPending   RegistrationStatus = "pending"
	RegistrationConfirmed RegistrationStatus = "confirmed"
	RegistrationAttended  RegistrationStatus = "attended"
	RegistrationCancelled RegistrationStatus = "cancelled"
)

var registrationTransitions = map[RegistrationStatus][]RegistrationStatus{
	RegistrationPending:   {RegistrationConfirmed, RegistrationCancelled},
	RegistrationConfirmed: {RegistrationAttended, RegistrationCancelled},
}

func (s RegistrationStatus) CanTransitionTo(to RegistrationStatus) bool {
	for _, allowed := range registrationTransitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ReminderSlot é o lembrete 1, 2 ou 3 da sequência pré-evento.
type ReminderSlot int

const (
	ReminderFirst  ReminderSlot = 1
	ReminderSecond ReminderSlot = 2
	ReminderThird  ReminderSlot = 3
)

// ReminderSlotForDays mapeia 5/3/1 dias antes do evento para o slot correspondente.
func ReminderSlotForDays(days int) (ReminderSlot, bool) {
	switch days {
	case 5:
		return ReminderFirst, true
	case 3:
		return ReminderSecond, true
	case 1:
		return ReminderThird, true
	}
	return 0, false
}

func (s ReminderSlot) Valid() bool { return s >= ReminderFirst && s <= ReminderThird }

// Previous devolve o slot que precisa ter sido enviado antes; 0 para o primeiro.
func (s ReminderSlot) Previous() ReminderSlot {
	if s <= ReminderFirst {
		return 0
	}
	return s - 1
}

type EventRegistration struct {
	ID                  string             `json:"id"`
	EventID             string             `json:"event_id"`
	FullName            string             `json:"full_name"`
	Email               string             `json:"email"`
	Phone               string             `json:"phone,omitempty"`
	TaxID               string             `json:"tax_id,omitempty"`
	PaymentAmountCents  int64              `json:"payment_amount_cents"`
	Paid                bool               `json:"paid"`
	Status              RegistrationStatus `json:"status"`
	Email1SentAt        *time.Time         `json:"email_1_sent_at,omitempty"`
	Email2SentAt        *time.Time         `json:"email_2_sent_at,omitempty"`
	Email3SentAt        *time.Time         `json:"email_3_sent_at,omitempty"`
	PresenceConfirmedAt *time.Time         `json:"presence_confirmed_at,omitempty"`
	WelcomeEmailSentAt  *time.Time         `json:"welcome_email_sent_at,omitempty"`
	Reminder2hSentAt    *time.Time         `json:"reminder_2h_sent_at,omitempty"`
	ConfirmationToken   string             `json:"-"`
	LeadID              string             `json:"lead_id,omitempty"`
	DealID              string             `json:"deal_id,omitempty"`
	GatewayPaymentID    string             `json:"gateway_payment_id,omitempty"`
	InvoiceURL          string             `json:"invoice_url,omitempty"`
	CreatedAt           time.Time          `json:"created_at"`
	UpdatedAt           time.Time          `json:"updated_at"`
}

func NewEventRegistration(eventID, name, email, phone, taxID string, amountCents int64, now time.Time) *EventRegistration {
	status := RegistrationConfirmed
	if amountCents > 0 {
		status = RegistrationPending
	}
	return &EventRegistration{
		ID:                 uuid.New().String(),
		EventID:            eventID,
		FullName:           name,
		Email:              NormalizeEmail(email),
		Phone:              phone,
		TaxID:              NormalizeTaxID(taxID),
		PaymentAmountCents: amountCents,
		Status:             status,
		ConfirmationToken:  uuid.New().String(),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

func (r *EventRegistration) PresenceConfirmed() bool { return r.PresenceConfirmedAt != nil }

// ReminderSentAt devolve o timestamp do slot (nil se ainda não enviado).
func (r *EventRegistration) ReminderSentAt(slot ReminderSlot) *time.Time {
	switch slot {
	case ReminderFirst:
		return r.Email1SentAt
	case ReminderSecond:
		return r.Email2SentAt
	case ReminderThird:
		return r.Email3SentAt
	}
	return nil
}

// EligibleForReminder aplica a progressão linear: slot N só depois do N-1.
func (r *EventRegistration) EligibleForReminder(slot ReminderSlot) bool {
	if !slot.Valid() || r.Status == RegistrationCancelled || r.PresenceConfirmed() {
		return false
	}
	if r.ReminderSentAt(slot) != nil {
		return false
	}
	if prev := slot.Previous(); prev != 0 && r.ReminderSentAt(prev) == nil {
		return false
	}
	return true
}

func (r *EventRegistration) EligibleForTwoHourReminder() bool {
	return r.Status != RegistrationCancelled && r.PresenceConfirmed() && r.Reminder2hSentAt == nil
}
