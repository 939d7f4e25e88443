package entity

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Metadata é o payload tipado gravado em interactions.metadata e deals.metadata.
// No banco ele vira um envelope {"kind": "...", "data": {...}}.
type Metadata interface {
	Kind() string
	Validate() error
}

const (
	MetaReferralSignup    = "referral_signup"
	MetaReferralGenerated = "referral_generated"
	MetaEventRegistration = "event_registration"
	MetaPresenceConfirmed = "presence_confirmed"
	MetaEmailSent         = "email_sent"
	MetaPaymentConfirmed  = "payment_confirmed"
	MetaCheckout          = "checkout"
	MetaCancellation      = "cancellation"
	MetaLeadCapture       = "lead_capture"
	MetaReferralDeal      = "referral_deal"
	MetaEventDeal         = "event_deal"
	MetaPlanDeal          = "plan_deal"
	MetaLegacy            = "legacy"
)

type ReferralSignupMeta struct {
	AmbassadorID   string `json:"ambassador_id"`
	AmbassadorName string `json:"ambassador_name"`
	ReferralCode   string `json:"referral_code"`
}

func (ReferralSignupMeta) Kind() string { return MetaReferralSignup }

func (m ReferralSignupMeta) Validate() error {
	if m.AmbassadorID == "" || m.ReferralCode == "" {
		return errors.New("referral_signup: ambassador_id and referral_code are required")
	}
	return nil
}

type ReferralGeneratedMeta struct {
	ReferredLeadID string `json:"referred_lead_id,omitempty"`
	ReferredName   string `json:"referred_name"`
	ReferredEmail  string `json:"referred_email"`
	ReferralCode   string `json:"referral_code"`
}

func (ReferralGeneratedMeta) Kind() string { return MetaReferralGenerated }

func (m ReferralGeneratedMeta) Validate() error {
	if m.ReferralCode == "" || m.ReferredEmail == "" {
		return errors.New("referral_generated: referral_code and referred_email are required")
	}
	return nil
}

type EventRegistrationMeta struct {
	EventID        string `json:"event_id"`
	EventTitle     string `json:"event_title"`
	RegistrationID string `json:"registration_id"`
	AmountCents    int64  `json:"amount_cents"`
}

func (EventRegistrationMeta) Kind() string { return MetaEventRegistration }

func (m EventRegistrationMeta) Validate() error {
	if m.EventID == "" || m.RegistrationID == "" {
		return errors.New("event_registration: event_id and registration_id are required")
	}
	return nil
}

type PresenceConfirmedMeta struct {
	EventID        string `json:"event_id"`
	RegistrationID string `json:"registration_id"`
}

func (PresenceConfirmedMeta) Kind() string { return MetaPresenceConfirmed }

func (m PresenceConfirmedMeta) Validate() error {
	if m.RegistrationID == "" {
		return errors.New("presence_confirmed: registration_id is required")
	}
	return nil
}

type EmailSentMeta struct {
	Template       string `json:"template"`
	Subject        string `json:"subject"`
	RegistrationID string `json:"registration_id,omitempty"`
	TaskID         string `json:"task_id,omitempty"`
}

func (EmailSentMeta) Kind() string { return MetaEmailSent }

func (m EmailSentMeta) Validate() error {
	if m.Template == "" {
		return errors.New("email_sent: template is required")
	}
	return nil
}

type PaymentConfirmedMeta struct {
	PaymentID   string `json:"payment_id"`
	ProductType string `json:"product_type"`
	AmountCents int64  `json:"amount_cents"`
	Method      string `json:"method,omitempty"`
	DealID      string `json:"deal_id,omitempty"`
}

func (PaymentConfirmedMeta) Kind() string { return MetaPaymentConfirmed }

func (m PaymentConfirmedMeta) Validate() error {
	if m.PaymentID == "" || m.ProductType == "" {
		return errors.New("payment_confirmed: payment_id and product_type are required")
	}
	return nil
}

type CheckoutMeta struct {
	PlanID         string `json:"plan_id"`
	SubscriptionID string `json:"subscription_id"`
	AmountCents    int64  `json:"amount_cents"`
}

func (CheckoutMeta) Kind() string { return MetaCheckout }

func (m CheckoutMeta) Validate() error {
	if m.PlanID == "" {
		return errors.New("checkout: plan_id is required")
	}
	return nil
}

type CancellationMeta struct {
	Reference string `json:"reference"`
	Reason    string `json:"reason,omitempty"`
}

func (CancellationMeta) Kind() string { return MetaCancellation }

func (m CancellationMeta) Validate() error {
	if m.Reference == "" {
		return errors.New("cancellation: reference is required")
	}
	return nil
}

type LeadCaptureMeta struct {
	Form string `json:"form"`
	Page string `json:"page,omitempty"`
}

func (LeadCaptureMeta) Kind() string { return MetaLeadCapture }
func (LeadCaptureMeta) Validate() error { return nil }

// ReferralDealMeta fica no deal criado por indicação; é dele que sai a comissão.
type ReferralDealMeta struct {
	AmbassadorID   string  `json:"ambassador_id"`
	ReferralCode   string  `json:"referral_code"`
	CommissionRate float64 `json:"commission_rate"`
}

func (ReferralDealMeta) Kind() string { return MetaReferralDeal }

func (m ReferralDealMeta) Validate() error {
	if m.AmbassadorID == "" {
		return errors.New("referral_deal: ambassador_id is required")
	}
	if m.CommissionRate < 0 || m.CommissionRate > 100 {
		return errors.New("referral_deal: commission_rate must be between 0 and 100")
	}
	return nil
}

type EventDealMeta struct {
	EventID        string `json:"event_id"`
	RegistrationID string `json:"registration_id"`
}

func (EventDealMeta) Kind() string { return MetaEventDeal }

func (m EventDealMeta) Validate() error {
	if m.EventID == "" {
		return errors.New("event_deal: event_id is required")
	}
	return nil
}

type PlanDealMeta struct {
	PlanID         string `json:"plan_id"`
	SubscriptionID string `json:"subscription_id,omitempty"`
}

func (PlanDealMeta) Kind() string { return MetaPlanDeal }

func (m PlanDealMeta) Validate() error {
	if m.PlanID == "" {
		return errors.New("plan_deal: plan_id is required")
	}
	return nil
}

// LegacyMeta guarda JSON sem envelope ou de kind desconhecido, sem perder o conteúdo.
type LegacyMeta struct {
	Raw json.RawMessage `json:"-"`
}

func (LegacyMeta) Kind() string   { return MetaLegacy }
func (LegacyMeta) Validate() error { return nil }

type metadataEnvelope struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// EncodeMetadata serializa o envelope. Metadata nil vira NULL (nil, nil).
func EncodeMetadata(m Metadata) ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	if legacy, ok := m.(LegacyMeta); ok {
		if len(legacy.Raw) == 0 {
			return nil, nil
		}
		return legacy.Raw, nil
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("erro ao serializar metadata %s: %w", m.Kind(), err)
	}
	return json.Marshal(metadataEnvelope{Kind: m.Kind(), Data: data})
}

// DecodeMetadata lê o envelope; qualquer coisa fora do formato cai em LegacyMeta.
func DecodeMetadata(b []byte) (Metadata, error) {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	var env metadataEnvelope
	if err := json.Unmarshal(trimmed, &env); err != nil || env.Kind == "" || len(env.Data) == 0 {
		return LegacyMeta{Raw: append(json.RawMessage(nil), trimmed...)}, nil
	}

	var m Metadata
	switch env.Kind {
	case MetaReferralSignup:
		m = decodeInto[ReferralSignupMeta](env.Data)
	case MetaReferralGenerated:
		m = decodeInto[ReferralGeneratedMeta](env.Data)
	case MetaEventRegistration:
		m = decodeInto[EventRegistrationMeta](env.Data)
	case MetaPresenceConfirmed:
		m = decodeInto[PresenceConfirmedMeta](env.Data)
	case MetaEmailSent:
		m = decodeInto[EmailSentMeta](env.Data)
	case MetaPaymentConfirmed:
		m = decodeInto[PaymentConfirmedMeta](env.Data)
	case MetaCheckout:
		m = decodeInto[CheckoutMeta](env.Data)
	case MetaCancellation:
		m = decodeInto[CancellationMeta](env.Data)
	case MetaLeadCapture:
		m = decodeInto[LeadCaptureMeta](env.Data)
	case MetaReferralDeal:
		m = decodeInto[ReferralDealMeta](env.Data)
	case MetaEventDeal:
		m = decodeInto[EventDealMeta](env.Data)
	case MetaPlanDeal:
		m = decodeInto[PlanDealMeta](env.Data)
	}
	if m == nil {
		return LegacyMeta{Raw: append(json.RawMessage(nil), trimmed...)}, nil
	}
	return m, nil
}

func decodeInto[T Metadata](data json.RawMessage) Metadata {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil
	}
	return v
}
