package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/entity"
)

func TestPipelineAdmin_CreateAndUpdate(t *testing.T) {
	env := newTestEnv(t)
	uc := NewPipelineAdminUseCase(memPipelines{env.store})
	uc.Now = func() time.Time { return testNow }

	created, err := uc.Create(context.Background(), CreatePipelineInput{
		Name: "Parcerias Corporativas",
		Kind: entity.PipelineSales,
		Stages: []entity.Stage{
			{ID: "contato", Name: "Contato", Order: 20},
			{ID: "reuniao", Name: "Reunião", Order: 10},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "parcerias-corporativas", created.Slug)
	assert.Equal(t, "reuniao", created.Stages[0].ID)
	assert.Equal(t, 2, created.Stages[1].Order)

	_, err = uc.Create(context.Background(), CreatePipelineInput{Name: "Curto", Kind: entity.PipelineSales, Stages: []entity.Stage{{ID: "so"}}})
	var de *DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, CodeValidation, de.Code)

	inactive := false
	updated, err := uc.Update(context.Background(), created.ID, UpdatePipelineInput{Active: &inactive})
	require.NoError(t, err)
	assert.False(t, updated.Active)
	assert.False(t, env.store.pipelines[created.ID].Active)

	_, err = uc.Update(context.Background(), "nao-existe", UpdatePipelineInput{Active: &inactive})
	require.ErrorAs(t, err, &de)
	assert.Equal(t, CodeNotFound, de.Code)
}

func TestAmbassadorAdmin(t *testing.T) {
	env := newTestEnv(t)
	uc := NewAmbassadorAdminUseCase(memAmbassadors{env.store})

	created, err := uc.Create(context.Background(), CreateAmbassadorInput{
		UserID:         "user-1",
		Name:           "Beatriz Lima",
		Email:          "beatriz@example.com",
		CommissionRate: 15,
	})
	require.NoError(t, err)
	assert.Len(t, created.ReferralCode, entity.ReferralCodeLength)
	assert.True(t, env.store.ambassadors[created.ID].Active)

	require.NoError(t, uc.SetActive(context.Background(), created.ID, false))
	assert.False(t, env.store.ambassadors[created.ID].Active)
	assert.True(t, IsDomainError(uc.SetActive(context.Background(), "nao-existe", true)))

	_, err = uc.UpdatePaymentDetails(context.Background(), created.ID, PaymentDetailsInput{PaymentPreference: entity.PaymentPix})
	assert.True(t, IsDomainError(err), "pix sem chave")

	updated, err := uc.UpdatePaymentDetails(context.Background(), created.ID, PaymentDetailsInput{PaymentPreference: entity.PaymentPix, PixKey: "beatriz@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "beatriz@example.com", updated.PixKey)
	assert.Equal(t, "beatriz@example.com", env.store.ambassadors[created.ID].PixKey)

	_, err = uc.Create(context.Background(), CreateAmbassadorInput{UserID: "user-2", Name: "Zé", Email: "ze@example.com", CommissionRate: 120})
	assert.True(t, IsDomainError(err))
}

func TestEventAdmin_StatusTransitions(t *testing.T) {
	env := newTestEnv(t)
	uc := NewEventAdminUseCase(memEvents{env.store})
	uc.Now = func() time.Time { return testNow }

	event, err := uc.Create(context.Background(), CreateEventInput{
		Title:      "Live de Marketing",
		StartsAt:   testNow.Add(72 * time.Hour),
		Online:     true,
		MeetingURL: "https://meet.example.com/abc",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.EventDraft, event.Status)

	published, err := uc.SetStatus(context.Background(), event.ID, entity.EventPublished)
	require.NoError(t, err)
	assert.Equal(t, entity.EventPublished, published.Status)

	_, err = uc.SetStatus(context.Background(), event.ID, entity.EventCancelled)
	require.NoError(t, err)

	_, err = uc.SetStatus(context.Background(), event.ID, entity.EventPublished)
	var de *DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, CodeInvalidTransition, de.Code)

	_, err = uc.Create(context.Background(), CreateEventInput{Title: "Online sem link", StartsAt: testNow.Add(time.Hour), Online: true})
	require.ErrorAs(t, err, &de)
	assert.Equal(t, CodeValidation, de.Code)

	_, err = uc.Create(context.Background(), CreateEventInput{Title: "No passado", StartsAt: testNow.Add(-time.Hour)})
	require.ErrorAs(t, err, &de)
	assert.Equal(t, CodeValidation, de.Code)
}

func TestUpdateRegistrationStatus_CancelReleasesSeatAndLosesDeal(t *testing.T) {
	env := newTestEnv(t)
	event := env.seedEvent("Café", testNow.Add(72*time.Hour), 0, intPtr(5))
	registered, err := env.register.Execute(context.Background(), registration(event.ID))
	require.NoError(t, err)

	uc := NewUpdateRegistrationStatusUseCase(memRegistrations{env.store}, memEvents{env.store}, env.deals, env.interactions)

	reg, err := uc.Execute(context.Background(), UpdateRegistrationStatusInput{
		RegistrationID: registered.RegistrationID,
		Status:         entity.RegistrationCancelled,
		Reason:         "desistiu",
	})

	require.NoError(t, err)
	assert.Equal(t, entity.RegistrationCancelled, reg.Status)
	assert.Equal(t, 0, env.store.events[event.ID].CurrentParticipants)
	assert.False(t, *env.store.dealsOf(registered.LeadID)[0].Won)
	assert.Len(t, env.store.interactionsOf(entity.InteractionRegistrationCancelled), 1)

	_, err = uc.Execute(context.Background(), UpdateRegistrationStatusInput{RegistrationID: registered.RegistrationID, Status: entity.RegistrationAttended})
	var de *DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, CodeInvalidTransition, de.Code)
}

func TestCaptureLead(t *testing.T) {
	env := newTestEnv(t)
	uc := NewCaptureLeadUseCase(env.leads, env.interactions)

	out, err := uc.Execute(context.Background(), CaptureLeadInput{Name: "Luiza", Email: "luiza@example.com", Page: "/sobre"})
	require.NoError(t, err)

	lead := env.store.leads[out.LeadID]
	assert.Equal(t, entity.SourceSite, lead.Source)
	assert.Equal(t, "contato", lead.SourceDetail)

	captured := env.store.interactionsOf(entity.InteractionLeadCaptured)
	require.Len(t, captured, 1)
	assert.Equal(t, entity.LeadCaptureMeta{Form: "contato", Page: "/sobre"}, captured[0].Metadata)

	again, err := uc.Execute(context.Background(), CaptureLeadInput{Email: "LUIZA@example.com", Form: "newsletter"})
	require.NoError(t, err)
	assert.Equal(t, out.LeadID, again.LeadID)
	assert.Len(t, env.store.leads, 1)

	_, err = uc.Execute(context.Background(), CaptureLeadInput{Email: "sem-arroba"})
	assert.True(t, IsDomainError(err))
}

func TestCleanupComplimentary(t *testing.T) {
	env := newTestEnv(t)
	expired := testNow.Add(-time.Hour)
	valid := testNow.Add(24 * time.Hour)
	env.store.businesses["b1"] = &entity.Business{ID: "b1", SubscriptionActive: true, IsComplimentary: true, ComplimentaryUntil: &expired}
	env.store.businesses["b2"] = &entity.Business{ID: "b2", SubscriptionActive: true, IsComplimentary: true, ComplimentaryUntil: &valid}
	env.store.businesses["b3"] = &entity.Business{ID: "b3", SubscriptionActive: true, ComplimentaryUntil: &expired}

	uc := NewCleanupComplimentaryUseCase(memBusinesses{env.store})
	uc.Now = func() time.Time { return testNow }

	out, err := uc.Execute(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"b1"}, out.Deactivated)
	assert.Equal(t, 1, out.Count)
	assert.False(t, env.store.businesses["b1"].SubscriptionActive)
	assert.True(t, env.store.businesses["b2"].SubscriptionActive)
	assert.True(t, env.store.businesses["b3"].SubscriptionActive)

	again, err := uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{}, again.Deactivated)
}
