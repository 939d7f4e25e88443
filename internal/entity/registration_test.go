package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewEventRegistrationStatus(t *testing.T) {
	now := time.Now()

	free := NewEventRegistration("ev-1", "Ana", " Ana@Example.com ", "", "", 0, now)
	assert.Equal(t, RegistrationConfirmed, free.Status)
	assert.Equal(t, "ana@example.com", free.Email)
	assert.NotEmpty(t, free.ConfirmationToken)

	paid := NewEventRegistration("ev-1", "Ana", "ana@example.com", "", "", 5000, now)
	assert.Equal(t, RegistrationPending, paid.Status)
	assert.NotEqual(t, free.ConfirmationToken, paid.ConfirmationToken)
}

func TestRegistrationTransitions(t *testing.T) {
	assert.True(t, RegistrationPending.CanTransitionTo(RegistrationConfirmed))
	assert.True(t, RegistrationPending.CanTransitionTo(RegistrationCancelled))
	assert.True(t, RegistrationConfirmed.CanTransitionTo(RegistrationAttended))
	assert.False(t, RegistrationPending.CanTransitionTo(RegistrationAttended))
	assert.False(t, RegistrationCancelled.CanTransitionTo(RegistrationConfirmed))
	assert.False(t, RegistrationAttended.CanTransitionTo(RegistrationCancelled))
}

func TestEligibleForReminder(t *testing.T) {
	sent := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		reg  EventRegistration
		slot ReminderSlot
		want bool
	}{
		{"primeiro lembrete", EventRegistration{Status: RegistrationConfirmed}, ReminderFirst, true},
		{"segundo sem o primeiro", EventRegistration{Status: RegistrationConfirmed}, ReminderSecond, false},
		{"segundo depois do primeiro", EventRegistration{Status: RegistrationConfirmed, Email1SentAt: &sent}, ReminderSecond, true},
		{"terceiro pulando o segundo", EventRegistration{Status: RegistrationConfirmed, Email1SentAt: &sent}, ReminderThird, false},
		{"slot já enviado", EventRegistration{Status: RegistrationConfirmed, Email1SentAt: &sent}, ReminderFirst, false},
		{"presença confirmada", EventRegistration{Status: RegistrationConfirmed, PresenceConfirmedAt: &sent}, ReminderFirst, false},
		{"cancelada", EventRegistration{Status: RegistrationCancelled}, ReminderFirst, false},
		{"slot inválido", EventRegistration{Status: RegistrationConfirmed}, ReminderSlot(4), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.reg.EligibleForReminder(tt.slot))
		})
	}
}

func TestEligibleForTwoHourReminder(t *testing.T) {
	at := time.Now()

	assert.False(t, (&EventRegistration{Status: RegistrationConfirmed}).EligibleForTwoHourReminder())
	assert.True(t, (&EventRegistration{Status: RegistrationConfirmed, PresenceConfirmedAt: &at}).EligibleForTwoHourReminder())
	assert.False(t, (&EventRegistration{Status: RegistrationConfirmed, PresenceConfirmedAt: &at, Reminder2hSentAt: &at}).EligibleForTwoHourReminder())
}

func TestReminderSlotForDays(t *testing.T) {
	for days, want := range map[int]ReminderSlot{5: ReminderFirst, 3: ReminderSecond, 1: ReminderThird} {
		slot, ok := ReminderSlotForDays(days)
		assert.True(t, ok)
		assert.Equal(t, want, slot)
	}
	for _, days := range []int{0, 2, 4, 6} {
		_, ok := ReminderSlotForDays(days)
		assert.False(t, ok, "dia %d não tem lembrete", days)
	}
}
