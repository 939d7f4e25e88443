package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/entity"
)

func registration(eventID string) RegisterEventInput {
	return RegisterEventInput{
		EventID:  eventID,
		FullName: "Joana Pereira",
		Email:    "joana@example.com",
		Phone:    "(51) 99999-0000",
		TaxID:    "987.654.321-00",
	}
}

func TestRegisterEvent_FreeEvent(t *testing.T) {
	env := newTestEnv(t)
	event := env.seedEvent("Café com Empreendedoras", testNow.Add(10*24*time.Hour), 0, intPtr(2))

	out, err := env.register.Execute(context.Background(), registration(event.ID))

	require.NoError(t, err)
	assert.Equal(t, entity.RegistrationConfirmed, out.Status)
	assert.Empty(t, out.CRMFailures)
	assert.Equal(t, 1, env.store.events[event.ID].CurrentParticipants)

	reg := env.store.regs[out.RegistrationID]
	require.NotNil(t, reg)
	assert.Equal(t, out.LeadID, reg.LeadID)
	assert.Equal(t, out.DealID, reg.DealID)

	lead := env.store.leads[out.LeadID]
	assert.Equal(t, entity.SourceEvent, lead.Source)
	assert.Equal(t, event.Title, lead.SourceDetail)

	deals := env.store.dealsOf(out.LeadID)
	require.Len(t, deals, 1)
	assert.Equal(t, entity.StageRegistered, deals[0].Stage)
	assert.Equal(t, entity.ProductEvent, deals[0].ProductType)

	assert.Len(t, env.store.interactionsOf(entity.InteractionEventRegistration), 1)

	emails := env.store.tasksFor(TemplateRegistrationConfirmation)
	require.Len(t, emails, 1)
	assert.Equal(t, "joana@example.com", emails[0].To)
	assert.Contains(t, emails[0].HTML, "https://portal.test/events/confirm?token="+reg.ConfirmationToken)
	assert.Empty(t, env.gateway.payments)
}

func TestRegisterEvent_PaidEvent(t *testing.T) {
	env := newTestEnv(t)
	event := env.seedEvent("Workshop de Finanças", testNow.Add(10*24*time.Hour), 15000, nil)

	out, err := env.register.Execute(context.Background(), registration(event.ID))

	require.NoError(t, err)
	assert.Equal(t, entity.RegistrationPending, out.Status)
	assert.False(t, out.Paid)
	assert.Equal(t, int64(15000), out.AmountCents)
	assert.Equal(t, "https://sandbox.asaas.com/i/pay_gw_1", out.InvoiceURL)

	require.Len(t, env.gateway.payments, 1)
	assert.Equal(t, RefEventPrefix+out.RegistrationID, env.gateway.payments[0].ExternalReference)
	assert.Equal(t, "pay_gw_1", env.store.regs[out.RegistrationID].GatewayPaymentID)

	deals := env.store.dealsOf(out.LeadID)
	require.Len(t, deals, 1)
	assert.Equal(t, entity.StageInterest, deals[0].Stage)
	assert.Equal(t, int64(15000), deals[0].ValueCents)
}

func TestRegisterEvent_Rejections(t *testing.T) {
	tests := []struct {
		name  string
		setup func(env *testEnv) RegisterEventInput
		code  string
	}{
		{
			name: "evento lotado",
			setup: func(env *testEnv) RegisterEventInput {
				event := env.seedEvent("Lotado", testNow.Add(48*time.Hour), 0, intPtr(1))
				event.CurrentParticipants = 1
				return registration(event.ID)
			},
			code: CodeEventFull,
		},
		{
			name: "evento em rascunho",
			setup: func(env *testEnv) RegisterEventInput {
				event := env.seedEvent("Rascunho", testNow.Add(48*time.Hour), 0, nil)
				event.Status = entity.EventDraft
				return registration(event.ID)
			},
			code: CodeEventNotPublished,
		},
		{
			name: "evento inexistente",
			setup: func(env *testEnv) RegisterEventInput {
				return registration("nao-existe")
			},
			code: CodeEventNotFound,
		},
		{
			name: "evento pago sem CPF",
			setup: func(env *testEnv) RegisterEventInput {
				event := env.seedEvent("Pago", testNow.Add(48*time.Hour), 5000, nil)
				in := registration(event.ID)
				in.TaxID = ""
				return in
			},
			code: CodeValidation,
		},
		{
			name: "e-mail inválido",
			setup: func(env *testEnv) RegisterEventInput {
				event := env.seedEvent("Aberto", testNow.Add(48*time.Hour), 0, nil)
				in := registration(event.ID)
				in.Email = "joana"
				return in
			},
			code: CodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			input := tt.setup(env)

			_, err := env.register.Execute(context.Background(), input)

			var de *DomainError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, tt.code, de.Code)
			assert.Zero(t, env.store.writes())
		})
	}
}

func TestRegisterEvent_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	event := env.seedEvent("Café", testNow.Add(10*24*time.Hour), 0, nil)

	_, err := env.register.Execute(context.Background(), registration(event.ID))
	require.NoError(t, err)

	again := registration(event.ID)
	again.Email = "JOANA@example.com"
	_, err = env.register.Execute(context.Background(), again)

	var de *DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, CodeDuplicate, de.Code)
	assert.Len(t, env.store.regs, 1)
	assert.Equal(t, 1, env.store.events[event.ID].CurrentParticipants)
}

func TestRegisterEvent_PaymentFailureRollsBack(t *testing.T) {
	env := newTestEnv(t)
	event := env.seedEvent("Workshop", testNow.Add(10*24*time.Hour), 15000, intPtr(10))
	env.gateway.paymentErr = errors.New("asaas fora do ar")

	_, err := env.register.Execute(context.Background(), registration(event.ID))

	var te *TechnicalError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, 0, env.store.events[event.ID].CurrentParticipants, "vaga devolvida")
	assert.Empty(t, env.store.regs, "inscrição removida")
	assert.Zero(t, env.store.writes(), "sem lead, deal ou e-mail")
}

func TestRegisterEvent_SecondaryFailuresDoNotFail(t *testing.T) {
	env := newTestEnv(t)
	event := env.seedEvent("Café", testNow.Add(10*24*time.Hour), 0, nil)
	env.store.failures["outbox.Enqueue"] = errors.New("outbox indisponível")
	env.store.failures["leads.Create"] = errors.New("constraint")

	out, err := env.register.Execute(context.Background(), registration(event.ID))

	require.NoError(t, err)
	assert.Equal(t, entity.RegistrationConfirmed, out.Status)
	assert.Empty(t, out.LeadID)
	assert.Equal(t, []string{"lead", "deal", "confirmation_email"}, out.CRMFailures)
	assert.Len(t, env.store.regs, 1)
}
