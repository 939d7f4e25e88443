package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/entity"
)

func subscribed(t *testing.T, env *testEnv) *CheckoutOutput {
	t.Helper()
	env.seedPlan("premium", 9990)
	in := checkoutInput("premium")
	in.UserID = "user-carla"
	out, err := env.checkout.Execute(context.Background(), in)
	require.NoError(t, err)
	return out
}

func TestCancelSubscription_MarksDealLost(t *testing.T) {
	env := newTestEnv(t)
	sub := subscribed(t, env)

	out, err := env.cancel.Execute(context.Background(), CancelSubscriptionInput{
		SubscriptionID: sub.SubscriptionID,
		RequesterID:    "user-carla",
		Reason:         "mudança de planos",
	})

	require.NoError(t, err)
	assert.Equal(t, entity.SubscriptionCancelled, out.Status)
	assert.False(t, out.AlreadyCancelled)
	assert.Equal(t, []string{"sub_gw_1"}, env.gateway.cancelled)
	assert.Equal(t, entity.SubscriptionCancelled, env.store.subs[sub.SubscriptionID].Status)

	deal := env.store.dealsOf(sub.LeadID)[0]
	require.NotNil(t, deal.Won)
	assert.False(t, *deal.Won)
	assert.Equal(t, entity.StageLost, deal.Stage)

	cancelled := env.store.interactionsOf(entity.InteractionSubscriptionCancelled)
	require.Len(t, cancelled, 1)
	assert.Equal(t, "mudança de planos", cancelled[0].Metadata.(entity.CancellationMeta).Reason)

	again, err := env.cancel.Execute(context.Background(), CancelSubscriptionInput{SubscriptionID: sub.SubscriptionID, IsAdmin: true})
	require.NoError(t, err)
	assert.True(t, again.AlreadyCancelled)
	assert.Len(t, env.gateway.cancelled, 1)
}

func TestCancelSubscription_Authorization(t *testing.T) {
	env := newTestEnv(t)
	sub := subscribed(t, env)

	_, err := env.cancel.Execute(context.Background(), CancelSubscriptionInput{SubscriptionID: sub.SubscriptionID, RequesterID: "user-outra"})

	var de *DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, CodeForbidden, de.Code)
	assert.Empty(t, env.gateway.cancelled)

	_, err = env.cancel.Execute(context.Background(), CancelSubscriptionInput{SubscriptionID: "nao-existe", IsAdmin: true})
	require.ErrorAs(t, err, &de)
	assert.Equal(t, CodeNotFound, de.Code)

	out, err := env.cancel.Execute(context.Background(), CancelSubscriptionInput{SubscriptionID: sub.SubscriptionID, IsAdmin: true})
	require.NoError(t, err)
	assert.Equal(t, entity.SubscriptionCancelled, out.Status)
}
