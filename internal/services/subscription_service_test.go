package services

import (
	"testing"
	"time"

	"vendinghive_backend/internal/models"
	"vendinghive_backend/internal/services/dto"
	"vendinghive_backend/pkg/apperrors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func testPlans() (free, starter, pro *models.SubscriptionPlan) {
	free = &models.SubscriptionPlan{
		BaseModel: models.BaseModel{ID: "plan-free"},
		Name:      models.PlanFree,
		Price:     decimal.Zero,
		Currency:  "USD",
	}
	starter = &models.SubscriptionPlan{
		BaseModel: models.BaseModel{ID: "plan-starter"},
		Name:      models.PlanStarter,
		Price:     decimal.NewFromFloat(29.99),
		Currency:  "USD",
	}
	pro = &models.SubscriptionPlan{
		BaseModel: models.BaseModel{ID: "plan-pro"},
		Name:      models.PlanPro,
		Price:     decimal.NewFromFloat(59.99),
		Currency:  "USD",
	}
	return free, starter, pro
}

func newSubscriptionServiceForTest(user *models.User, subRepo *fakeSubscriptionRepo) (SubscriptionService, *fakePaymentRepo, *fakeCreditRepo, *fakeGateway) {
	payRepo := &fakePaymentRepo{}
	creditRepo := newFakeCreditRepo()
	gateway := &fakeGateway{}
	svc := NewSubscriptionService(newFakeUserRepo(user), subRepo, payRepo, creditRepo, gateway, &fakeEmailProvider{})
	return svc, payRepo, creditRepo, gateway
}

func TestCreateSubscription_FreePlan(t *testing.T) {
	free, _, _ := testPlans()
	user := &models.User{BaseModel: models.BaseModel{ID: "u-1"}, Email: "op@example.com"}
	subRepo := newFakeSubscriptionRepo(free)
	svc, payRepo, _, gateway := newSubscriptionServiceForTest(user, subRepo)

	resp, err := svc.CreateSubscription("u-1", &dto.CreateSubscriptionRequest{PlanID: free.ID})
	require.NoError(t, err)

	// No gateway involvement for a zero-price plan.
	assert.Empty(t, gateway.customers)
	assert.Empty(t, gateway.subscriptions)

	require.Len(t, payRepo.created, 1)
	pmt := payRepo.created[0]
	assert.Equal(t, models.PaymentStatusCompleted, pmt.Status)
	assert.True(t, pmt.Amount.IsZero())
	assert.Equal(t, models.GatewayManual, pmt.PaymentGateway)

	assert.Equal(t, string(models.PlanFree), resp.PlanName)
	assert.True(t, resp.IsActive)
}

func TestCreateSubscription_PaidPlanRequiresPaymentMethod(t *testing.T) {
	_, starter, _ := testPlans()
	user := &models.User{BaseModel: models.BaseModel{ID: "u-1"}, Email: "op@example.com"}
	subRepo := newFakeSubscriptionRepo(starter)
	svc, _, _, _ := newSubscriptionServiceForTest(user, subRepo)

	_, err := svc.CreateSubscription("u-1", &dto.CreateSubscriptionRequest{PlanID: starter.ID})
	assert.ErrorIs(t, err, apperrors.ErrPaymentMethodRequired)
}

func TestCreateSubscription_RejectsSecondActiveSubscription(t *testing.T) {
	_, starter, pro := testPlans()
	user := &models.User{BaseModel: models.BaseModel{ID: "u-1"}, Email: "op@example.com"}
	subRepo := newFakeSubscriptionRepo(starter, pro)

	end := time.Now().AddDate(0, 0, 15)
	subRepo.sub = &models.UserSubscription{
		BaseModel: models.BaseModel{ID: "sub-1"},
		UserID:    "u-1",
		PlanID:    starter.ID,
		Plan:      *starter,
		IsActive:  true,
		EndDate:   &end,
	}

	svc, _, _, _ := newSubscriptionServiceForTest(user, subRepo)

	_, err := svc.CreateSubscription("u-1", &dto.CreateSubscriptionRequest{
		PlanID:          pro.ID,
		PaymentMethodID: "pm_1",
	})
	assert.ErrorIs(t, err, apperrors.ErrActiveSubscriptionExists)
}

func TestCreateSubscription_PaidPlanHappyPath(t *testing.T) {
	_, starter, _ := testPlans()
	user := &models.User{BaseModel: models.BaseModel{ID: "u-1"}, Email: "op@example.com"}
	subRepo := newFakeSubscriptionRepo(starter)
	svc, payRepo, _, gateway := newSubscriptionServiceForTest(user, subRepo)

	resp, err := svc.CreateSubscription("u-1", &dto.CreateSubscriptionRequest{
		PlanID:          starter.ID,
		PaymentMethodID: "pm_1",
	})
	require.NoError(t, err)

	assert.Len(t, gateway.customers, 1)
	assert.Equal(t, []string{"pm_1"}, gateway.attached)
	require.Len(t, subRepo.activations, 1)
	assert.Equal(t, models.BillingPeriodDays, subRepo.activations[0].periodDays)

	require.Len(t, payRepo.created, 1)
	assert.Equal(t, models.PaymentStatusCompleted, payRepo.created[0].Status)
	assert.True(t, payRepo.created[0].Amount.Equal(starter.Price))

	assert.True(t, resp.IsActive)
	assert.NotEmpty(t, resp.StripeSubscriptionID)
}

func TestCreateSubscription_GatewayFailureLeavesNoSubscription(t *testing.T) {
	_, starter, _ := testPlans()
	user := &models.User{BaseModel: models.BaseModel{ID: "u-1"}, Email: "op@example.com"}
	subRepo := newFakeSubscriptionRepo(starter)
	svc, payRepo, _, gateway := newSubscriptionServiceForTest(user, subRepo)
	gateway.subscribeErr = assert.AnError

	_, err := svc.CreateSubscription("u-1", &dto.CreateSubscriptionRequest{
		PlanID:          starter.ID,
		PaymentMethodID: "pm_1",
	})
	assert.ErrorIs(t, err, apperrors.ErrPaymentGateway)

	assert.Empty(t, subRepo.activations, "no subscription row on gateway failure")
	require.Len(t, payRepo.created, 1)
	assert.Equal(t, models.PaymentStatusFailed, payRepo.created[0].Status)
}

func TestProrationAmount(t *testing.T) {
	_, starter, pro := testPlans()
	now := time.Now()

	t.Run("upgrade with 15 days remaining", func(t *testing.T) {
		end := now.Add(15 * 24 * time.Hour)
		got := ProrationAmount(starter, pro, &end, now)

		// (59.99/30 - 29.99/30) * 15 = 15.00
		want := decimal.NewFromFloat(15.00)
		assert.True(t, got.Equal(want), "got %s, want %s", got, want)
	})

	t.Run("downgrade is a signed credit", func(t *testing.T) {
		end := now.Add(15 * 24 * time.Hour)
		got := ProrationAmount(pro, starter, &end, now)

		// (29.99/30 - 59.99/30) * 15 = -15.00
		want := decimal.NewFromFloat(-15.00)
		assert.True(t, got.Equal(want), "got %s, want %s", got, want)
	})

	t.Run("downgrade with 10 days remaining", func(t *testing.T) {
		end := now.Add(10 * 24 * time.Hour)
		got := ProrationAmount(pro, starter, &end, now)

		want := decimal.NewFromFloat(-10.00)
		assert.True(t, got.Equal(want), "got %s, want %s", got, want)
	})

	t.Run("expired period charges the new plan in full", func(t *testing.T) {
		end := now.Add(-time.Hour)
		got := ProrationAmount(starter, pro, &end, now)
		assert.True(t, got.Equal(pro.Price))
	})

	t.Run("nil end date charges the new plan in full", func(t *testing.T) {
		got := ProrationAmount(starter, pro, nil, now)
		assert.True(t, got.Equal(pro.Price))
	})
}

func TestUpgradeSubscription(t *testing.T) {
	newActiveSub := func(plan *models.SubscriptionPlan, daysLeft int) *models.UserSubscription {
		// The extra minute keeps the whole-day count stable while the
		// service recomputes time.Now.
		end := time.Now().Add(time.Duration(daysLeft)*24*time.Hour + time.Minute)
		return &models.UserSubscription{
			BaseModel: models.BaseModel{ID: "sub-1"},
			UserID:    "u-1",
			PlanID:    plan.ID,
			Plan:      *plan,
			IsActive:  true,
			EndDate:   &end,
		}
	}

	t.Run("no active subscription", func(t *testing.T) {
		_, _, pro := testPlans()
		user := &models.User{BaseModel: models.BaseModel{ID: "u-1"}}
		svc, _, _, _ := newSubscriptionServiceForTest(user, newFakeSubscriptionRepo(pro))

		_, err := svc.UpgradeSubscription("u-1", &dto.UpgradeSubscriptionRequest{NewPlanID: pro.ID})
		assert.ErrorIs(t, err, apperrors.ErrNoActiveSubscription)
	})

	t.Run("same plan", func(t *testing.T) {
		_, starter, _ := testPlans()
		user := &models.User{BaseModel: models.BaseModel{ID: "u-1"}}
		subRepo := newFakeSubscriptionRepo(starter)
		subRepo.sub = newActiveSub(starter, 15)
		svc, _, _, _ := newSubscriptionServiceForTest(user, subRepo)

		_, err := svc.UpgradeSubscription("u-1", &dto.UpgradeSubscriptionRequest{NewPlanID: starter.ID})
		assert.ErrorIs(t, err, apperrors.ErrSamePlan)
	})

	t.Run("immediate upgrade charges the proration and applies", func(t *testing.T) {
		_, starter, pro := testPlans()
		user := &models.User{BaseModel: models.BaseModel{ID: "u-1"}, StripeCustomerID: "cus_1"}
		subRepo := newFakeSubscriptionRepo(starter, pro)
		subRepo.sub = newActiveSub(starter, 15)
		svc, payRepo, _, gateway := newSubscriptionServiceForTest(user, subRepo)

		resp, err := svc.UpgradeSubscription("u-1", &dto.UpgradeSubscriptionRequest{NewPlanID: pro.ID})
		require.NoError(t, err)

		assert.True(t, resp.AppliedNow)
		assert.Equal(t, string(models.RequestStatusCompleted), resp.Status)
		assert.True(t, resp.ProrationAmount.Equal(decimal.NewFromFloat(15.00)))

		require.Len(t, gateway.charges, 1)
		assert.True(t, gateway.charges[0].amount.Equal(decimal.NewFromFloat(15.00)))

		require.Len(t, payRepo.created, 1)
		assert.Equal(t, models.PaymentStatusCompleted, payRepo.created[0].Status)

		assert.Equal(t, []string{resp.RequestID}, subRepo.appliedUpgrades)
	})

	t.Run("immediate downgrade records a credit without charging", func(t *testing.T) {
		_, starter, pro := testPlans()
		user := &models.User{BaseModel: models.BaseModel{ID: "u-1"}, StripeCustomerID: "cus_1"}
		subRepo := newFakeSubscriptionRepo(starter, pro)
		subRepo.sub = newActiveSub(pro, 15)
		svc, payRepo, _, gateway := newSubscriptionServiceForTest(user, subRepo)

		resp, err := svc.UpgradeSubscription("u-1", &dto.UpgradeSubscriptionRequest{NewPlanID: starter.ID})
		require.NoError(t, err)

		assert.True(t, resp.AppliedNow)
		assert.True(t, resp.ProrationAmount.Equal(decimal.NewFromFloat(-15.00)))
		assert.Empty(t, gateway.charges, "a downgrade must not charge the gateway")

		require.Len(t, payRepo.created, 1)
		credit := payRepo.created[0]
		assert.Equal(t, models.PaymentStatusCompleted, credit.Status)
		assert.Equal(t, models.GatewayManual, credit.PaymentGateway)
		assert.True(t, credit.Amount.Equal(decimal.NewFromFloat(-15.00)))

		assert.Equal(t, []string{resp.RequestID}, subRepo.appliedUpgrades)
	})

	t.Run("failed charge leaves no upgrade request behind", func(t *testing.T) {
		_, starter, pro := testPlans()
		user := &models.User{BaseModel: models.BaseModel{ID: "u-1"}, StripeCustomerID: "cus_1"}
		subRepo := newFakeSubscriptionRepo(starter, pro)
		subRepo.sub = newActiveSub(starter, 15)
		svc, payRepo, _, gateway := newSubscriptionServiceForTest(user, subRepo)
		gateway.chargeErr = assert.AnError

		_, err := svc.UpgradeSubscription("u-1", &dto.UpgradeSubscriptionRequest{NewPlanID: pro.ID})
		assert.ErrorIs(t, err, apperrors.ErrPaymentGateway)

		// Nothing pending for the renewal worker to apply unpaid.
		assert.Empty(t, subRepo.upgradeRequests)
		assert.Empty(t, subRepo.appliedUpgrades)
		require.Len(t, payRepo.created, 1)
		assert.Equal(t, models.PaymentStatusFailed, payRepo.created[0].Status)
	})

	t.Run("unconfirmed charge leaves no upgrade request behind", func(t *testing.T) {
		_, starter, pro := testPlans()
		user := &models.User{BaseModel: models.BaseModel{ID: "u-1"}, StripeCustomerID: "cus_1"}
		subRepo := newFakeSubscriptionRepo(starter, pro)
		subRepo.sub = newActiveSub(starter, 15)
		svc, payRepo, _, gateway := newSubscriptionServiceForTest(user, subRepo)
		gateway.chargeStatus = "requires_payment_method"

		_, err := svc.UpgradeSubscription("u-1", &dto.UpgradeSubscriptionRequest{NewPlanID: pro.ID})
		assert.ErrorIs(t, err, apperrors.ErrPaymentGateway)

		assert.Empty(t, subRepo.upgradeRequests)
		assert.Empty(t, subRepo.appliedUpgrades)
		require.Len(t, payRepo.created, 1)
		assert.Equal(t, models.PaymentStatusFailed, payRepo.created[0].Status)
	})

	t.Run("future effective date leaves a pending request", func(t *testing.T) {
		_, starter, pro := testPlans()
		user := &models.User{BaseModel: models.BaseModel{ID: "u-1"}, StripeCustomerID: "cus_1"}
		subRepo := newFakeSubscriptionRepo(starter, pro)
		subRepo.sub = newActiveSub(starter, 15)
		svc, _, _, gateway := newSubscriptionServiceForTest(user, subRepo)

		future := time.Now().Add(5 * 24 * time.Hour)
		resp, err := svc.UpgradeSubscription("u-1", &dto.UpgradeSubscriptionRequest{
			NewPlanID:     pro.ID,
			EffectiveDate: &future,
		})
		require.NoError(t, err)

		assert.False(t, resp.AppliedNow)
		assert.Empty(t, gateway.charges, "deferred upgrade must not charge yet")
		assert.Empty(t, subRepo.appliedUpgrades)
		require.Len(t, subRepo.upgradeRequests, 1)
		assert.Equal(t, models.RequestStatusPending, subRepo.upgradeRequests[0].Status)
	})

	t.Run("pending request blocks another upgrade", func(t *testing.T) {
		_, starter, pro := testPlans()
		user := &models.User{BaseModel: models.BaseModel{ID: "u-1"}}
		subRepo := newFakeSubscriptionRepo(starter, pro)
		subRepo.sub = newActiveSub(starter, 15)
		subRepo.pendingUpgrade = &models.SubscriptionUpgradeRequest{Status: models.RequestStatusPending}
		svc, _, _, _ := newSubscriptionServiceForTest(user, subRepo)

		_, err := svc.UpgradeSubscription("u-1", &dto.UpgradeSubscriptionRequest{NewPlanID: pro.ID})
		assert.Error(t, err)
	})
}

func TestCancelSubscription(t *testing.T) {
	newActiveSub := func(plan *models.SubscriptionPlan) *models.UserSubscription {
		end := time.Now().AddDate(0, 0, 20)
		return &models.UserSubscription{
			BaseModel:            models.BaseModel{ID: "sub-1"},
			UserID:               "u-1",
			PlanID:               plan.ID,
			Plan:                 *plan,
			IsActive:             true,
			AutoRenew:            true,
			EndDate:              &end,
			StripeSubscriptionID: "sub_gw_1",
		}
	}

	t.Run("immediate cancellation deactivates now", func(t *testing.T) {
		_, starter, _ := testPlans()
		user := &models.User{BaseModel: models.BaseModel{ID: "u-1"}}
		subRepo := newFakeSubscriptionRepo(starter)
		subRepo.sub = newActiveSub(starter)
		svc, _, _, gateway := newSubscriptionServiceForTest(user, subRepo)

		resp, err := svc.CancelSubscription("u-1", &dto.CancelSubscriptionRequest{
			Reason:            "too_expensive",
			CancelImmediately: true,
		})
		require.NoError(t, err)

		assert.True(t, resp.CancelledNow)
		assert.Equal(t, []string{"sub-1"}, subRepo.deactivated)
		assert.Equal(t, []string{resp.RequestID}, subRepo.processedCancels)
		assert.Equal(t, []string{"sub_gw_1"}, gateway.cancelled)
	})

	t.Run("deferred cancellation keeps access until period end", func(t *testing.T) {
		_, starter, _ := testPlans()
		user := &models.User{BaseModel: models.BaseModel{ID: "u-1"}}
		subRepo := newFakeSubscriptionRepo(starter)
		subRepo.sub = newActiveSub(starter)
		svc, _, _, _ := newSubscriptionServiceForTest(user, subRepo)

		resp, err := svc.CancelSubscription("u-1", &dto.CancelSubscriptionRequest{
			Reason: "switching_service",
		})
		require.NoError(t, err)

		assert.False(t, resp.CancelledNow)
		assert.NotNil(t, resp.AccessUntil)
		assert.Empty(t, subRepo.deactivated, "access runs to period end")
		assert.False(t, subRepo.sub.AutoRenew)
	})

	t.Run("no subscription to cancel", func(t *testing.T) {
		user := &models.User{BaseModel: models.BaseModel{ID: "u-1"}}
		svc, _, _, _ := newSubscriptionServiceForTest(user, newFakeSubscriptionRepo())

		_, err := svc.CancelSubscription("u-1", &dto.CancelSubscriptionRequest{Reason: "other"})
		assert.ErrorIs(t, err, apperrors.ErrNoActiveSubscription)
	})

	t.Run("gateway failure leaves no cancellation request behind", func(t *testing.T) {
		_, starter, _ := testPlans()
		user := &models.User{BaseModel: models.BaseModel{ID: "u-1"}}
		subRepo := newFakeSubscriptionRepo(starter)
		subRepo.sub = newActiveSub(starter)
		svc, _, _, gateway := newSubscriptionServiceForTest(user, subRepo)
		gateway.cancelErr = assert.AnError

		_, err := svc.CancelSubscription("u-1", &dto.CancelSubscriptionRequest{
			Reason:            "too_expensive",
			CancelImmediately: true,
		})
		assert.ErrorIs(t, err, apperrors.ErrPaymentGateway)

		// The local row must stay active while the provider still bills.
		assert.Empty(t, subRepo.cancellations)
		assert.Empty(t, subRepo.deactivated)
		assert.True(t, subRepo.sub.IsActive)
	})
}

func TestPurchaseLeadCredits(t *testing.T) {
	user := &models.User{BaseModel: models.BaseModel{ID: "u-1"}, Email: "op@example.com", StripeCustomerID: "cus_1"}
	pkg := &models.LeadCreditPackage{
		BaseModel: models.BaseModel{ID: "pkg-1"},
		Name:      "Boost Pack",
		Price:     decimal.NewFromFloat(14.99),
		LeadCount: 10,
		IsActive:  true,
	}

	subRepo := newFakeSubscriptionRepo()
	payRepo := &fakePaymentRepo{}
	creditRepo := newFakeCreditRepo(pkg)
	creditRepo.totalRemaining = 10
	gateway := &fakeGateway{}
	svc := NewSubscriptionService(newFakeUserRepo(user), subRepo, payRepo, creditRepo, gateway, &fakeEmailProvider{})

	resp, err := svc.PurchaseLeadCredits("u-1", &dto.PurchaseCreditsRequest{PackageID: pkg.ID})
	require.NoError(t, err)

	require.Len(t, gateway.charges, 1)
	assert.True(t, gateway.charges[0].amount.Equal(pkg.Price))

	require.Len(t, creditRepo.granted, 1)
	credit := creditRepo.granted[0]
	assert.Equal(t, 10, credit.CreditsPurchased)
	assert.NotEmpty(t, credit.PaymentID, "payment and ledger rows must be linked")
	assert.NotNil(t, credit.ExpiresAt)

	assert.Equal(t, 10, resp.CreditsPurchased)
	assert.Equal(t, 10, resp.CreditsRemaining)
}

func TestPurchaseLeadCredits_UnconfirmedChargeGrantsNothing(t *testing.T) {
	user := &models.User{BaseModel: models.BaseModel{ID: "u-1"}, Email: "op@example.com", StripeCustomerID: "cus_1"}
	pkg := &models.LeadCreditPackage{
		BaseModel: models.BaseModel{ID: "pkg-1"},
		Name:      "Boost Pack",
		Price:     decimal.NewFromFloat(14.99),
		LeadCount: 10,
		IsActive:  true,
	}

	payRepo := &fakePaymentRepo{}
	creditRepo := newFakeCreditRepo(pkg)
	gateway := &fakeGateway{chargeStatus: "requires_payment_method"}
	svc := NewSubscriptionService(newFakeUserRepo(user), newFakeSubscriptionRepo(), payRepo, creditRepo, gateway, &fakeEmailProvider{})

	_, err := svc.PurchaseLeadCredits("u-1", &dto.PurchaseCreditsRequest{PackageID: pkg.ID})
	assert.ErrorIs(t, err, apperrors.ErrPaymentGateway)

	assert.Empty(t, creditRepo.granted, "an unconfirmed charge must not grant credits")
	require.Len(t, payRepo.created, 1)
	assert.Equal(t, models.PaymentStatusFailed, payRepo.created[0].Status)
}

func TestPaymentLedger_DuplicateTransactionIDRejected(t *testing.T) {
	repo := &fakePaymentRepo{}

	first := &models.PaymentHistory{UserID: "u-1", TransactionID: "txn_fixed", Status: models.PaymentStatusCompleted}
	require.NoError(t, repo.Create(first))

	dup := &models.PaymentHistory{UserID: "u-2", TransactionID: "txn_fixed", Status: models.PaymentStatusPending}
	assert.ErrorIs(t, repo.Create(dup), gorm.ErrDuplicatedKey)
	require.Len(t, repo.created, 1)
}

func TestResetMonthlyUsage_Idempotent(t *testing.T) {
	_, starter, _ := testPlans()
	user := &models.User{BaseModel: models.BaseModel{ID: "u-1"}}
	subRepo := newFakeSubscriptionRepo(starter)
	end := time.Now().AddDate(0, 0, 10)
	subRepo.sub = &models.UserSubscription{
		BaseModel:              models.BaseModel{ID: "sub-1"},
		UserID:                 "u-1",
		Plan:                   *starter,
		IsActive:               true,
		EndDate:                &end,
		SearchesUsedThisPeriod: 7,
	}
	svc, _, _, _ := newSubscriptionServiceForTest(user, subRepo)

	require.NoError(t, svc.ResetMonthlyUsage("u-1"))
	assert.Equal(t, 0, subRepo.sub.SearchesUsedThisPeriod)

	require.NoError(t, svc.ResetMonthlyUsage("u-1"))
	assert.Equal(t, 0, subRepo.sub.SearchesUsedThisPeriod)
}
