package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/entity"
)

func checkoutInput(planID string) CheckoutInput {
	return CheckoutInput{
		Name:        "Carla Mendes",
		Email:       "carla@example.com",
		TaxID:       "222.333.444-55",
		PlanID:      planID,
		BillingType: "PIX",
	}
}

func TestSubscribePlan_CreatesDealInPlansPipeline(t *testing.T) {
	env := newTestEnv(t)
	env.seedPlan("premium", 9990)

	out, err := env.checkout.Execute(context.Background(), checkoutInput("premium"))

	require.NoError(t, err)
	assert.Equal(t, entity.SubscriptionPending, out.Status)
	assert.Equal(t, "sub_gw_1", out.GatewaySubscriptionID)
	assert.Equal(t, "https://sandbox.asaas.com/i/sub_gw_1", out.InvoiceURL)
	assert.Empty(t, out.CRMFailures)

	sub := env.store.subs[out.SubscriptionID]
	require.NotNil(t, sub)
	assert.Equal(t, out.LeadID, sub.LeadID)
	assert.Equal(t, "cus_222.333.444-55", sub.GatewayCustomerID)

	require.Len(t, env.gateway.subscriptions, 1)
	assert.Equal(t, RefPlanPrefix+sub.ID, env.gateway.subscriptions[0].ExternalReference)
	assert.Equal(t, int64(9990), env.gateway.subscriptions[0].ValueCents)

	deals := env.store.dealsOf(out.LeadID)
	require.Len(t, deals, 1)
	assert.Equal(t, out.DealID, deals[0].ID)
	assert.Equal(t, env.pipelineOf(entity.PipelinePlans).ID, deals[0].PipelineID)
	assert.Equal(t, entity.StageInterest, deals[0].Stage)
	assert.Equal(t, int64(9990), deals[0].ValueCents)

	assert.Len(t, env.store.interactionsOf(entity.InteractionCheckoutStarted), 1)
	assert.Equal(t, entity.SourceCheckout, env.store.leads[out.LeadID].Source)
}

func TestSubscribePlan_PersistenceFailureCancelsGatewaySubscription(t *testing.T) {
	env := newTestEnv(t)
	env.seedPlan("premium", 9990)
	env.store.failures["subscriptions.Create"] = errors.New("connection reset")

	_, err := env.checkout.Execute(context.Background(), checkoutInput("premium"))

	var te *TechnicalError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "CHECKOUT_FAILED", te.Code)
	assert.Equal(t, []string{"sub_gw_1"}, env.gateway.cancelled)
	assert.Empty(t, env.store.subs)
	assert.Empty(t, env.store.deals)
}

func TestSubscribePlan_GatewayFailureHasNothingToUndo(t *testing.T) {
	env := newTestEnv(t)
	env.seedPlan("premium", 9990)
	env.gateway.subErr = errors.New("502")

	_, err := env.checkout.Execute(context.Background(), checkoutInput("premium"))

	assert.True(t, IsTechnicalError(err))
	assert.Empty(t, env.gateway.cancelled)
	assert.Empty(t, env.store.subs)
}

func TestSubscribePlan_PlanRejections(t *testing.T) {
	env := newTestEnv(t)
	env.seedPlan("antigo", 1990).Active = false

	for _, planID := range []string{"nao-existe", "antigo"} {
		_, err := env.checkout.Execute(context.Background(), checkoutInput(planID))

		var de *DomainError
		require.ErrorAs(t, err, &de, planID)
		assert.Equal(t, CodePlanNotFound, de.Code, planID)
	}

	in := checkoutInput("antigo")
	in.TaxID = "111.111.111-11"
	_, err := env.checkout.Execute(context.Background(), in)
	var de *DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, CodeValidation, de.Code)

	assert.Zero(t, env.gateway.customers)
}
