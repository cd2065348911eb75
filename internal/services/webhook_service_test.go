package services

import (
	"encoding/json"
	"testing"
	"time"

	"vendinghive_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79"
)

func stripeEvent(t *testing.T, eventType string, payload interface{}) stripe.Event {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return stripe.Event{
		Type: stripe.EventType(eventType),
		Data: &stripe.EventData{Raw: raw},
	}
}

func activeStripeSub(userID string) *models.UserSubscription {
	end := time.Now().AddDate(0, 0, 3)
	return &models.UserSubscription{
		BaseModel:              models.BaseModel{ID: "sub-1"},
		UserID:                 userID,
		IsActive:               true,
		EndDate:                &end,
		StripeSubscriptionID:   "sub_gw_1",
		SearchesUsedThisPeriod: 9,
	}
}

func TestHandleStripeEvent_PaymentSucceeded(t *testing.T) {
	subRepo := newFakeSubscriptionRepo()
	subRepo.sub = activeStripeSub("u-1")
	svc := NewWebhookService(subRepo, &fakePaymentRepo{})

	event := stripeEvent(t, "invoice.payment_succeeded", map[string]interface{}{
		"subscription": map[string]interface{}{"id": "sub_gw_1"},
	})

	require.NoError(t, svc.HandleStripeEvent(event))

	assert.Equal(t, []string{"u-1"}, subRepo.usageResets)
	require.Len(t, subRepo.updated, 1)
	renewed := subRepo.updated[0]
	assert.True(t, renewed.IsActive)
	assert.True(t, renewed.EndDate.After(time.Now().AddDate(0, 0, models.BillingPeriodDays-1)),
		"end date must roll forward a full period")
}

func TestHandleStripeEvent_PaymentSucceededUnknownSubscription(t *testing.T) {
	subRepo := newFakeSubscriptionRepo()
	svc := NewWebhookService(subRepo, &fakePaymentRepo{})

	event := stripeEvent(t, "invoice.payment_succeeded", map[string]interface{}{
		"subscription": map[string]interface{}{"id": "sub_gw_unknown"},
	})

	// Unknown subscription is acknowledged so Stripe stops retrying.
	assert.NoError(t, svc.HandleStripeEvent(event))
	assert.Empty(t, subRepo.usageResets)
}

func TestHandleStripeEvent_PaymentSucceededWithoutSubscription(t *testing.T) {
	subRepo := newFakeSubscriptionRepo()
	svc := NewWebhookService(subRepo, &fakePaymentRepo{})

	// One-off invoices carry no subscription and are ignored.
	event := stripeEvent(t, "invoice.payment_succeeded", map[string]interface{}{})
	assert.NoError(t, svc.HandleStripeEvent(event))
	assert.Empty(t, subRepo.usageResets)
}

func TestHandleStripeEvent_PaymentFailed(t *testing.T) {
	subRepo := newFakeSubscriptionRepo()
	subRepo.sub = activeStripeSub("u-1")
	svc := NewWebhookService(subRepo, &fakePaymentRepo{})

	event := stripeEvent(t, "invoice.payment_failed", map[string]interface{}{
		"subscription":   map[string]interface{}{"id": "sub_gw_1"},
		"customer_email": "op@example.com",
	})

	// A failed invoice is logged only; Stripe retries on its own.
	require.NoError(t, svc.HandleStripeEvent(event))
	assert.Empty(t, subRepo.deactivated)
	assert.True(t, subRepo.sub.IsActive)
}

func TestHandleStripeEvent_SubscriptionDeleted(t *testing.T) {
	subRepo := newFakeSubscriptionRepo()
	subRepo.sub = activeStripeSub("u-1")
	svc := NewWebhookService(subRepo, &fakePaymentRepo{})

	event := stripeEvent(t, "customer.subscription.deleted", map[string]interface{}{
		"id": "sub_gw_1",
	})

	require.NoError(t, svc.HandleStripeEvent(event))

	assert.Equal(t, []string{"sub-1"}, subRepo.deactivated)
	require.Len(t, subRepo.updated, 1)
	assert.Empty(t, subRepo.updated[0].StripeSubscriptionID, "gateway pointer must clear for a clean resubscribe")
}

func TestHandleStripeEvent_UnknownTypeIsNoOp(t *testing.T) {
	subRepo := newFakeSubscriptionRepo()
	subRepo.sub = activeStripeSub("u-1")
	svc := NewWebhookService(subRepo, &fakePaymentRepo{})

	event := stripeEvent(t, "customer.created", map[string]interface{}{"id": "cus_1"})

	assert.NoError(t, svc.HandleStripeEvent(event))
	assert.Empty(t, subRepo.usageResets)
	assert.Empty(t, subRepo.deactivated)
	assert.Empty(t, subRepo.updated)
}
