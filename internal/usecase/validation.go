package usecase

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var nonDigit = regexp.MustCompile(`\D`)

func validateName(field, name string) []ValidationError {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return []ValidationError{{field, "is required"}}
	case len(name) < 3:
		return []ValidationError{{field, "must have at least 3 characters"}}
	case len(name) > 200:
		return []ValidationError{{field, "must not exceed 200 characters"}}
	}
	return nil
}

func validateEmail(email string) []ValidationError {
	if strings.TrimSpace(email) == "" {
		return []ValidationError{{"email", "is required"}}
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return []ValidationError{{"email", "is invalid"}}
	}
	return nil
}

func validateOptionalTaxID(taxID string) []ValidationError {
	if strings.TrimSpace(taxID) == "" {
		return nil
	}
	if !isValidTaxID(taxID) {
		return []ValidationError{{"tax_id", "is invalid"}}
	}
	return nil
}

func validateOptionalPhone(phone string) []ValidationError {
	if strings.TrimSpace(phone) == "" {
		return nil
	}
	if !isValidPhoneNumber(phone) {
		return []ValidationError{{"phone", "must be a valid phone number"}}
	}
	return nil
}

func ValidateReferralSignupInput(input ReferralSignupInput) []ValidationError {
	var errors []ValidationError
	if strings.TrimSpace(input.UserID) == "" {
		errors = append(errors, ValidationError{"user_id", "is required"})
	}
	errors = append(errors, validateEmail(input.Email)...)
	if strings.TrimSpace(input.Name) == "" {
		errors = append(errors, ValidationError{"name", "is required"})
	}
	errors = append(errors, validateOptionalTaxID(input.TaxID)...)
	return errors
}

func ValidateRegisterEventInput(input RegisterEventInput) []ValidationError {
	var errors []ValidationError
	if strings.TrimSpace(input.EventID) == "" {
		errors = append(errors, ValidationError{"event_id", "is required"})
	}
	errors = append(errors, validateName("full_name", input.FullName)...)
	errors = append(errors, validateEmail(input.Email)...)
	errors = append(errors, validateOptionalPhone(input.Phone)...)
	errors = append(errors, validateOptionalTaxID(input.TaxID)...)
	return errors
}

func ValidateCheckoutInput(input CheckoutInput) []ValidationError {
	var errors []ValidationError
	errors = append(errors, validateName("name", input.Name)...)
	errors = append(errors, validateEmail(input.Email)...)

	if input.TaxID == "" {
		errors = append(errors, ValidationError{"tax_id", "is required"})
	} else if !isValidTaxID(input.TaxID) {
		errors = append(errors, ValidationError{"tax_id", "is invalid"})
	}

	errors = append(errors, validateOptionalPhone(input.Phone)...)

	if strings.TrimSpace(input.PlanID) == "" {
		errors = append(errors, ValidationError{"plan_id", "is required"})
	}

	switch input.BillingType {
	case "", "UNDEFINED", "PIX", "BOLETO", "CREDIT_CARD":
	default:
		errors = append(errors, ValidationError{"billing_type", "must be UNDEFINED, PIX, BOLETO or CREDIT_CARD"})
	}
	return errors
}

func ValidateCaptureLeadInput(input CaptureLeadInput) []ValidationError {
	var errors []ValidationError
	errors = append(errors, validateEmail(input.Email)...)
	errors = append(errors, validateOptionalPhone(input.Phone)...)
	errors = append(errors, validateOptionalTaxID(input.TaxID)...)
	return errors
}

func ValidateCreateEventInput(input CreateEventInput, now time.Time) []ValidationError {
	var errors []ValidationError
	errors = append(errors, validateName("title", input.Title)...)
	if input.StartsAt.IsZero() {
		errors = append(errors, ValidationError{"starts_at", "is required"})
	} else if !input.StartsAt.After(now) {
		errors = append(errors, ValidationError{"starts_at", "must be in the future"})
	}
	if input.PriceCents < 0 {
		errors = append(errors, ValidationError{"price_cents", "must not be negative"})
	}
	if input.MaxParticipants != nil && *input.MaxParticipants <= 0 {
		errors = append(errors, ValidationError{"max_participants", "must be greater than 0"})
	}
	if input.Online && strings.TrimSpace(input.MeetingURL) == "" {
		errors = append(errors, ValidationError{"meeting_url", "is required for online events"})
	}
	return errors
}

func ValidateCreateAmbassadorInput(input CreateAmbassadorInput) []ValidationError {
	var errors []ValidationError
	if strings.TrimSpace(input.UserID) == "" {
		errors = append(errors, ValidationError{"user_id", "is required"})
	}
	errors = append(errors, validateName("name", input.Name)...)
	errors = append(errors, validateEmail(input.Email)...)
	errors = append(errors, validateOptionalTaxID(input.TaxID)...)
	if input.CommissionRate < 0 || input.CommissionRate > 100 {
		errors = append(errors, ValidationError{"commission_rate", "must be between 0 and 100"})
	}
	return errors
}

// isValidTaxID aceita CPF (11 dígitos) ou CNPJ (14 dígitos).
func isValidTaxID(taxID string) bool {
	cleaned := nonDigit.ReplaceAllString(taxID, "")
	if len(cleaned) != 11 && len(cleaned) != 14 {
		return false
	}

	firstDigit := cleaned[0]
	for i := 1; i < len(cleaned); i++ {
		if cleaned[i] != firstDigit {
			return true
		}
	}
	return false
}

func isValidPhoneNumber(phone string) bool {
	cleaned := nonDigit.ReplaceAllString(phone, "")
	return len(cleaned) >= 10 && len(cleaned) <= 13
}
