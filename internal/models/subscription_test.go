package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSubscriptionPlan_DailyRate(t *testing.T) {
	plan := SubscriptionPlan{Price: decimal.NewFromFloat(59.99)}

	want := decimal.NewFromFloat(59.99).Div(decimal.NewFromInt(30))
	assert.True(t, plan.DailyRate().Equal(want))

	free := SubscriptionPlan{Name: PlanFree, Price: decimal.Zero}
	assert.True(t, free.DailyRate().IsZero())
	assert.True(t, free.IsFree())
}

func TestUserSubscription_UseSearch(t *testing.T) {
	future := time.Now().Add(24 * time.Hour)

	t.Run("consumes the quota one search at a time", func(t *testing.T) {
		sub := UserSubscription{
			IsActive: true,
			EndDate:  &future,
			Plan:     SubscriptionPlan{LeadsPerMonth: 3},
		}

		for i := 0; i < 3; i++ {
			assert.True(t, sub.UseSearch(), "search %d should fit the quota", i+1)
		}
		assert.False(t, sub.UseSearch(), "quota exhausted")
		assert.Equal(t, 3, sub.SearchesUsedThisPeriod)
		assert.Equal(t, 0, sub.SearchesLeftThisPeriod())
	})

	t.Run("refuses on an expired subscription", func(t *testing.T) {
		past := time.Now().Add(-time.Hour)
		sub := UserSubscription{
			IsActive: true,
			EndDate:  &past,
			Plan:     SubscriptionPlan{LeadsPerMonth: 10},
		}

		assert.False(t, sub.UseSearch())
		assert.Equal(t, 0, sub.SearchesUsedThisPeriod)
	})

	t.Run("refuses on an inactive subscription", func(t *testing.T) {
		sub := UserSubscription{
			IsActive: false,
			EndDate:  &future,
			Plan:     SubscriptionPlan{LeadsPerMonth: 10},
		}

		assert.False(t, sub.UseSearch())
	})
}
