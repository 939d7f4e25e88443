package entity

import (
	"time"

	"github.com/google/uuid"
)

type InteractionType string

const (
	InteractionReferralSignup        InteractionType = "referral_signup"
	InteractionReferralGenerated     InteractionType = "referral_generated"
	InteractionEventRegistration     InteractionType = "event_registration"
	InteractionPresenceConfirmed     InteractionType = "presence_confirmed"
	InteractionEmailSent             InteractionType = "email_sent"
	InteractionPaymentConfirmed      InteractionType = "payment_confirmed"
	InteractionCheckoutStarted       InteractionType = "checkout_started"
	InteractionSubscriptionCancelled InteractionType = "subscription_cancelled"
	InteractionRegistrationCancelled InteractionType = "registration_cancelled"
	InteractionLeadCaptured          InteractionType = "lead_captured"
)

// Canais
const (
	ChannelWebsite = "website"
	ChannelEmail   = "email"
	ChannelPayment = "payment"
	ChannelSystem  = "system"
	ChannelAdmin   = "admin"
)

var interactionMetaKinds = map[InteractionType]string{
	InteractionReferralSignup:        MetaReferralSignup,
	InteractionReferralGenerated:     MetaReferralGenerated,
	InteractionEventRegistration:     MetaEventRegistration,
	InteractionPresenceConfirmed:     MetaPresenceConfirmed,
	InteractionEmailSent:             MetaEmailSent,
	InteractionPaymentConfirmed:      MetaPaymentConfirmed,
	InteractionCheckoutStarted:       MetaCheckout,
	InteractionSubscriptionCancelled: MetaCancellation,
	InteractionRegistrationCancelled: MetaCancellation,
	InteractionLeadCaptured:          MetaLeadCapture,
}

func (t InteractionType) Known() bool {
	_, ok := interactionMetaKinds[t]
	return ok
}

// Interaction é append-only: nenhum repositório expõe update ou delete.
type Interaction struct {
	ID             string          `json:"id"`
	LeadID         string          `json:"lead_id,omitempty"`
	UserID         string          `json:"user_id,omitempty"`
	TaxID          string          `json:"tax_id,omitempty"`
	Type           InteractionType `json:"type"`
	Channel        string          `json:"channel"`
	Description    string          `json:"description,omitempty"`
	Metadata       Metadata        `json:"metadata,omitempty"`
	ActivityPaid   bool            `json:"activity_paid"`
	ActivityOnline bool            `json:"activity_online"`
	CreatedAt      time.Time       `json:"created_at"`
}

func NewInteraction(t InteractionType, channel string, now time.Time) *Interaction {
	return &Interaction{
		ID:        uuid.New().String(),
		Type:      t,
		Channel:   channel,
		CreatedAt: now,
	}
}

// ValidateMetadata exige que o kind do metadata combine com o tipo.
// Metadata nil ou legado passa.
func (i *Interaction) ValidateMetadata() error {
	if i.Metadata == nil || i.Metadata.Kind() == MetaLegacy {
		return nil
	}
	expected, ok := interactionMetaKinds[i.Type]
	if !ok || expected != i.Metadata.Kind() {
		return ErrMetadataMismatch
	}
	return i.Metadata.Validate()
}
