package models

import (
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserLeadCredit_UseCredits(t *testing.T) {
	now := time.Now()

	t.Run("consumes from a fresh batch", func(t *testing.T) {
		credit := UserLeadCredit{CreditsPurchased: 10}

		assert.True(t, credit.UseCredits(3, now))
		assert.Equal(t, 3, credit.CreditsUsed)
		assert.Equal(t, 7, credit.CreditsRemaining())
	})

	t.Run("never exceeds the purchased amount", func(t *testing.T) {
		credit := UserLeadCredit{CreditsPurchased: 5, CreditsUsed: 4}

		assert.True(t, credit.UseCredits(1, now))
		assert.False(t, credit.UseCredits(1, now), "exhausted batch must refuse")
		assert.Equal(t, credit.CreditsPurchased, credit.CreditsUsed)
	})

	t.Run("refuses when the batch is too small", func(t *testing.T) {
		credit := UserLeadCredit{CreditsPurchased: 5, CreditsUsed: 3}

		assert.False(t, credit.UseCredits(3, now))
		assert.Equal(t, 3, credit.CreditsUsed, "failed call must not mutate")
	})

	t.Run("refuses an expired batch", func(t *testing.T) {
		expired := now.Add(-time.Hour)
		credit := UserLeadCredit{CreditsPurchased: 10, ExpiresAt: &expired}

		assert.False(t, credit.UseCredits(1, now))
		assert.Equal(t, 0, credit.CreditsUsed)
	})

	t.Run("refuses non-positive amounts", func(t *testing.T) {
		credit := UserLeadCredit{CreditsPurchased: 10}

		assert.False(t, credit.UseCredits(0, now))
		assert.False(t, credit.UseCredits(-1, now))
	})

	t.Run("batch without expiry never expires", func(t *testing.T) {
		credit := UserLeadCredit{CreditsPurchased: 1}

		assert.False(t, credit.IsExpired(now.Add(365*24*time.Hour)))
	})
}

func TestLeadCreditPackage_PricePerLead(t *testing.T) {
	pkg := LeadCreditPackage{
		Price:     decimal.NewFromFloat(14.99),
		LeadCount: 10,
	}
	assert.True(t, pkg.PricePerLead().Equal(decimal.NewFromFloat(1.50)))

	empty := LeadCreditPackage{Price: decimal.NewFromFloat(9.99)}
	assert.True(t, empty.PricePerLead().IsZero(), "zero lead count must not divide")
}

func TestPaymentHistory_StatusTransitions(t *testing.T) {
	pmt := PaymentHistory{Status: PaymentStatusPending}

	pmt.MarkCompleted("pi_123")
	assert.Equal(t, PaymentStatusCompleted, pmt.Status)
	assert.Equal(t, "pi_123", pmt.GatewayTransactionID)

	failed := PaymentHistory{Status: PaymentStatusPending}
	failed.MarkFailed("card_declined")
	assert.Equal(t, PaymentStatusFailed, failed.Status)
	assert.Equal(t, "card_declined", failed.FailureReason)
}

func TestPaymentHistory_TransactionIDUniqueIndex(t *testing.T) {
	field, ok := reflect.TypeOf(PaymentHistory{}).FieldByName("TransactionID")
	require.True(t, ok)
	assert.Contains(t, field.Tag.Get("gorm"), "uniqueIndex")
}
