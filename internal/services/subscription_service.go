package services

import (
	"fmt"
	"time"

	"vendinghive_backend/internal/email"
	"vendinghive_backend/internal/logger"
	"vendinghive_backend/internal/models"
	"vendinghive_backend/internal/repositories"
	"vendinghive_backend/internal/services/dto"
	"vendinghive_backend/internal/services/payment"
	"vendinghive_backend/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type SubscriptionService interface {
	GetPlans() ([]models.SubscriptionPlan, error)
	GetUserSubscription(userID string) (*dto.SubscriptionResponse, error)
	CreateSubscription(userID string, req *dto.CreateSubscriptionRequest) (*dto.SubscriptionResponse, error)
	UpgradeSubscription(userID string, req *dto.UpgradeSubscriptionRequest) (*dto.UpgradeSubscriptionResponse, error)
	CancelSubscription(userID string, req *dto.CancelSubscriptionRequest) (*dto.CancelSubscriptionResponse, error)
	ResetMonthlyUsage(userID string) error
	GetUserUsageStats(userID string) (*dto.UsageStatsResponse, error)

	GetCreditPackages() ([]models.LeadCreditPackage, error)
	PurchaseLeadCredits(userID string, req *dto.PurchaseCreditsRequest) (*dto.PurchaseCreditsResponse, error)
	GetPaymentHistory(userID string, limit, offset int) (*dto.PaymentHistoryResponse, error)
}

type SubscriptionServiceImpl struct {
	userRepo         repositories.UserRepository
	subscriptionRepo repositories.SubscriptionRepository
	paymentRepo      repositories.PaymentRepository
	creditRepo       repositories.CreditRepository
	gateway          payment.Gateway
	emailProvider    email.Provider
}

func NewSubscriptionService(
	userRepo repositories.UserRepository,
	subscriptionRepo repositories.SubscriptionRepository,
	paymentRepo repositories.PaymentRepository,
	creditRepo repositories.CreditRepository,
	gateway payment.Gateway,
	emailProvider email.Provider,
) SubscriptionService {
	return &SubscriptionServiceImpl{
		userRepo:         userRepo,
		subscriptionRepo: subscriptionRepo,
		paymentRepo:      paymentRepo,
		creditRepo:       creditRepo,
		gateway:          gateway,
		emailProvider:    emailProvider,
	}
}

func (s *SubscriptionServiceImpl) GetPlans() ([]models.SubscriptionPlan, error) {
	plans, err := s.subscriptionRepo.FindAllPlans()
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return plans, nil
}

func (s *SubscriptionServiceImpl) GetUserSubscription(userID string) (*dto.SubscriptionResponse, error) {
	sub, err := s.subscriptionRepo.FindByUserID(userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrSubscriptionNotFound) {
			return nil, apperrors.ErrNoActiveSubscription
		}
		return nil, apperrors.InternalError(err)
	}
	return subscriptionToDTO(sub, ""), nil
}

// CreateSubscription subscribes the user to a plan. The free plan is
// handled entirely in-house with a zero-amount completed payment and no
// gateway call. Paid plans go through the billing provider.
func (s *SubscriptionServiceImpl) CreateSubscription(userID string, req *dto.CreateSubscriptionRequest) (*dto.SubscriptionResponse, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	plan, err := s.subscriptionRepo.FindPlanByID(req.PlanID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrPlanNotFound) {
			return nil, apperrors.NewNotFoundError("subscription", "Plan not found")
		}
		return nil, apperrors.InternalError(err)
	}

	if existing, err := s.subscriptionRepo.FindByUserID(userID); err == nil {
		if existing.IsActive && !existing.IsExpired() && !existing.Plan.IsFree() {
			return nil, apperrors.ErrActiveSubscriptionExists
		}
	}

	if plan.IsFree() {
		return s.activateFreePlan(userID, plan)
	}

	if req.PaymentMethodID == "" {
		return nil, apperrors.ErrPaymentMethodRequired
	}

	customerID, err := s.ensureGatewayCustomer(user)
	if err != nil {
		return nil, err
	}

	if err := s.gateway.AttachPaymentMethod(customerID, req.PaymentMethodID); err != nil {
		return nil, apperrors.ErrPaymentGateway.WithError(err)
	}

	gwSub, err := s.gateway.CreateSubscription(customerID, string(plan.Name), plan.Price, plan.Currency)
	if err != nil {
		s.recordFailedPayment(userID, plan.Price, plan.Currency, err.Error(), &plan.ID, nil)
		return nil, apperrors.ErrPaymentGateway.WithError(err)
	}

	sub, err := s.subscriptionRepo.ActivateSubscription(userID, plan.ID, gwSub.ID, models.BillingPeriodDays)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	pmt := &models.PaymentHistory{
		UserID:         userID,
		SubscriptionID: &sub.ID,
		Amount:         plan.Price,
		Currency:       plan.Currency,
		PaymentGateway: models.GatewayStripe,
		TransactionID:  newTransactionID(),
		Status:         models.PaymentStatusPending,
	}
	if gwSub.Status == "active" {
		pmt.MarkCompleted(gwSub.ID)
	}
	if err := s.paymentRepo.Create(pmt); err != nil {
		return nil, apperrors.InternalError(err)
	}

	s.notifyActivation(user.Email, plan, sub)

	return subscriptionToDTO(sub, gwSub.ClientSecret), nil
}

func (s *SubscriptionServiceImpl) activateFreePlan(userID string, plan *models.SubscriptionPlan) (*dto.SubscriptionResponse, error) {
	sub, err := s.subscriptionRepo.ActivateSubscription(userID, plan.ID, "", models.BillingPeriodDays)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	pmt := &models.PaymentHistory{
		UserID:         userID,
		SubscriptionID: &sub.ID,
		Amount:         decimal.Zero,
		Currency:       plan.Currency,
		PaymentGateway: models.GatewayManual,
		TransactionID:  newTransactionID(),
	}
	pmt.MarkCompleted("")
	if err := s.paymentRepo.Create(pmt); err != nil {
		return nil, apperrors.InternalError(err)
	}

	return subscriptionToDTO(sub, ""), nil
}

// UpgradeSubscription moves the user to a pricier plan, charging the
// prorated difference for the rest of the current period. A future
// effective date leaves a pending request for the renewal worker.
func (s *SubscriptionServiceImpl) UpgradeSubscription(userID string, req *dto.UpgradeSubscriptionRequest) (*dto.UpgradeSubscriptionResponse, error) {
	sub, err := s.subscriptionRepo.FindByUserID(userID)
	if err != nil || !sub.IsActive || sub.IsExpired() {
		return nil, apperrors.ErrNoActiveSubscription
	}

	newPlan, err := s.subscriptionRepo.FindPlanByID(req.NewPlanID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrPlanNotFound) {
			return nil, apperrors.NewNotFoundError("subscription", "Plan not found")
		}
		return nil, apperrors.InternalError(err)
	}

	if newPlan.ID == sub.PlanID {
		return nil, apperrors.ErrSamePlan
	}

	if pending, err := s.subscriptionRepo.FindPendingUpgradeByUserID(userID); err == nil && pending != nil {
		return nil, apperrors.ErrConflict(nil, "subscription", "An upgrade request is already pending")
	}

	now := time.Now()
	proration := ProrationAmount(&sub.Plan, newPlan, sub.EndDate, now)

	effectiveDate := now
	if req.EffectiveDate != nil && req.EffectiveDate.After(now) {
		effectiveDate = *req.EffectiveDate
	}

	applyNow := !effectiveDate.After(now)

	// An immediate switch that costs money is charged before any local
	// row exists, so a declined card leaves nothing for the renewal
	// worker to apply later.
	var charge *payment.ChargeResult
	if applyNow && proration.IsPositive() {
		user, err := s.userRepo.FindByID(userID)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		customerID, err := s.ensureGatewayCustomer(user)
		if err != nil {
			return nil, err
		}

		charge, err = s.gateway.Charge(customerID, req.PaymentMethodID, proration, newPlan.Currency,
			fmt.Sprintf("Prorated upgrade to %s", newPlan.Name))
		if err != nil {
			s.recordFailedPayment(userID, proration, newPlan.Currency, err.Error(), &sub.ID, nil)
			return nil, apperrors.ErrPaymentGateway.WithError(err)
		}
		if charge.Status != "succeeded" {
			err := fmt.Errorf("payment intent %s not confirmed: %s", charge.TransactionID, charge.Status)
			s.recordFailedPayment(userID, proration, newPlan.Currency, err.Error(), &sub.ID, nil)
			return nil, apperrors.ErrPaymentGateway.WithError(err)
		}
	}

	upgradeReq := &models.SubscriptionUpgradeRequest{
		UserID:                userID,
		CurrentSubscriptionID: sub.ID,
		RequestedPlanID:       newPlan.ID,
		Status:                models.RequestStatusPending,
		ProrationAmount:       &proration,
		EffectiveDate:         effectiveDate,
	}
	if err := s.subscriptionRepo.CreateUpgradeRequest(upgradeReq); err != nil {
		return nil, apperrors.InternalError(err)
	}

	if applyNow {
		if !proration.IsZero() {
			pmt := &models.PaymentHistory{
				UserID:         userID,
				SubscriptionID: &sub.ID,
				Amount:         proration,
				Currency:       newPlan.Currency,
				TransactionID:  newTransactionID(),
			}
			if proration.IsPositive() {
				pmt.PaymentGateway = models.GatewayStripe
				pmt.MarkCompleted(charge.TransactionID)
			} else {
				// Downgrade credit; no money moves through the gateway.
				pmt.PaymentGateway = models.GatewayManual
				pmt.MarkCompleted("")
			}
			if err := s.paymentRepo.Create(pmt); err != nil {
				return nil, apperrors.InternalError(err)
			}
		}

		if err := s.subscriptionRepo.ApplyUpgrade(upgradeReq.ID); err != nil {
			return nil, apperrors.InternalError(err)
		}
	}

	status := models.RequestStatusPending
	if applyNow {
		status = models.RequestStatusCompleted
	}

	return &dto.UpgradeSubscriptionResponse{
		RequestID:       upgradeReq.ID,
		Status:          string(status),
		ProrationAmount: proration,
		EffectiveDate:   effectiveDate,
		AppliedNow:      applyNow,
	}, nil
}

// ProrationAmount is the signed price difference for switching plans
// mid-period: (newDaily - oldDaily) x days remaining, on the flat
// 30-day month. Negative means a credit owed for a downgrade. A period
// already lapsed prices the switch at the new plan's full month.
func ProrationAmount(oldPlan, newPlan *models.SubscriptionPlan, endDate *time.Time, now time.Time) decimal.Decimal {
	if endDate == nil {
		return newPlan.Price
	}
	daysRemaining := int(endDate.Sub(now).Hours() / 24)
	if daysRemaining <= 0 {
		return newPlan.Price
	}

	return newPlan.DailyRate().Sub(oldPlan.DailyRate()).
		Mul(decimal.NewFromInt(int64(daysRemaining))).
		Round(2)
}

func (s *SubscriptionServiceImpl) CancelSubscription(userID string, req *dto.CancelSubscriptionRequest) (*dto.CancelSubscriptionResponse, error) {
	sub, err := s.subscriptionRepo.FindByUserID(userID)
	if err != nil || !sub.IsActive {
		return nil, apperrors.ErrNoActiveSubscription
	}

	now := time.Now()
	cancellationDate := now
	if !req.CancelImmediately && sub.EndDate != nil {
		cancellationDate = *sub.EndDate
	}

	// The gateway subscription goes first. A remote failure must not
	// leave a local request the worker would process while the provider
	// keeps billing.
	if sub.StripeSubscriptionID != "" {
		if err := s.gateway.CancelSubscription(sub.StripeSubscriptionID, req.CancelImmediately); err != nil {
			return nil, apperrors.ErrPaymentGateway.WithError(err)
		}
	}

	cancelReq := &models.SubscriptionCancellationRequest{
		UserID:            userID,
		SubscriptionID:    sub.ID,
		Reason:            models.CancellationReason(req.Reason),
		Feedback:          req.Feedback,
		CancelImmediately: req.CancelImmediately,
		CancellationDate:  &cancellationDate,
	}
	if err := s.subscriptionRepo.CreateCancellationRequest(cancelReq); err != nil {
		return nil, apperrors.InternalError(err)
	}

	resp := &dto.CancelSubscriptionResponse{
		RequestID:        cancelReq.ID,
		CancellationDate: &cancellationDate,
	}

	if req.CancelImmediately {
		if err := s.subscriptionRepo.DeactivateSubscription(sub.ID); err != nil {
			return nil, apperrors.InternalError(err)
		}
		if err := s.subscriptionRepo.MarkCancellationProcessed(cancelReq.ID); err != nil {
			return nil, apperrors.InternalError(err)
		}
		resp.CancelledNow = true
	} else {
		// Access runs until period end; the worker deactivates then.
		sub.AutoRenew = false
		if err := s.subscriptionRepo.Update(sub); err != nil {
			return nil, apperrors.InternalError(err)
		}
		resp.AccessUntil = sub.EndDate
	}

	return resp, nil
}

// ResetMonthlyUsage zeroes the search counter for a new billing period.
// Safe to call more than once.
func (s *SubscriptionServiceImpl) ResetMonthlyUsage(userID string) error {
	if err := s.subscriptionRepo.ResetMonthlyUsage(userID); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *SubscriptionServiceImpl) GetUserUsageStats(userID string) (*dto.UsageStatsResponse, error) {
	sub, err := s.subscriptionRepo.FindByUserID(userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrSubscriptionNotFound) {
			return nil, apperrors.ErrNoActiveSubscription
		}
		return nil, apperrors.InternalError(err)
	}

	credits, err := s.creditRepo.TotalRemainingCredits(userID, time.Now())
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	stats := &dto.UsageStatsResponse{
		PlanName:             string(sub.Plan.Name),
		SearchesUsed:         sub.SearchesUsedThisPeriod,
		SearchesLeft:         sub.SearchesLeftThisPeriod(),
		MonthlyQuota:         sub.Plan.LeadsPerMonth,
		LeadCreditsRemaining: credits,
		PeriodEndsAt:         sub.EndDate,
	}

	if pending, err := s.subscriptionRepo.FindPendingUpgradeByUserID(userID); err == nil && pending != nil {
		stats.PendingUpgradePlan = string(pending.RequestedPlan.Name)
		stats.PendingUpgradeDate = &pending.EffectiveDate
	}

	return stats, nil
}

// Lead credit packages

func (s *SubscriptionServiceImpl) GetCreditPackages() ([]models.LeadCreditPackage, error) {
	packages, err := s.creditRepo.FindActivePackages()
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return packages, nil
}

// PurchaseLeadCredits charges the package price and grants the credits.
// The payment row and the ledger row land in one transaction.
func (s *SubscriptionServiceImpl) PurchaseLeadCredits(userID string, req *dto.PurchaseCreditsRequest) (*dto.PurchaseCreditsResponse, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	pkg, err := s.creditRepo.FindPackageByID(req.PackageID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrPackageNotFound) {
			return nil, apperrors.NewNotFoundError("payment", "Credit package not found")
		}
		return nil, apperrors.InternalError(err)
	}
	if !pkg.IsActive {
		return nil, apperrors.NewNotFoundError("payment", "Credit package not found")
	}

	customerID, err := s.ensureGatewayCustomer(user)
	if err != nil {
		return nil, err
	}

	if req.PaymentMethodID != "" {
		if err := s.gateway.AttachPaymentMethod(customerID, req.PaymentMethodID); err != nil {
			return nil, apperrors.ErrPaymentGateway.WithError(err)
		}
	}

	charge, err := s.gateway.Charge(customerID, req.PaymentMethodID, pkg.Price, "USD",
		fmt.Sprintf("Lead credit package: %s", pkg.Name))
	if err != nil {
		s.recordFailedPayment(userID, pkg.Price, "USD", err.Error(), nil, &pkg.ID)
		return nil, apperrors.ErrPaymentGateway.WithError(err)
	}
	if charge.Status != "succeeded" {
		err := fmt.Errorf("payment intent %s not confirmed: %s", charge.TransactionID, charge.Status)
		s.recordFailedPayment(userID, pkg.Price, "USD", err.Error(), nil, &pkg.ID)
		return nil, apperrors.ErrPaymentGateway.WithError(err)
	}

	pmt := &models.PaymentHistory{
		UserID:         userID,
		PackageID:      &pkg.ID,
		Amount:         pkg.Price,
		Currency:       "USD",
		PaymentGateway: models.GatewayStripe,
		TransactionID:  newTransactionID(),
	}
	pmt.MarkCompleted(charge.TransactionID)

	expires := time.Now().AddDate(1, 0, 0)
	credit := &models.UserLeadCredit{
		UserID:           userID,
		PackageID:        pkg.ID,
		CreditsPurchased: pkg.LeadCount,
		ExpiresAt:        &expires,
	}

	if err := s.creditRepo.GrantCreditsWithPayment(credit, pmt); err != nil {
		return nil, apperrors.InternalError(err)
	}

	total, err := s.creditRepo.TotalRemainingCredits(userID, time.Now())
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.PurchaseCreditsResponse{
		PaymentID:        pmt.ID,
		TransactionID:    pmt.TransactionID,
		Amount:           pkg.Price,
		CreditsPurchased: pkg.LeadCount,
		CreditsRemaining: total,
		ClientSecret:     charge.ClientSecret,
	}, nil
}

func (s *SubscriptionServiceImpl) GetPaymentHistory(userID string, limit, offset int) (*dto.PaymentHistoryResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	payments, err := s.paymentRepo.FindByUserID(userID, limit, offset)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	total, err := s.paymentRepo.CountByUserID(userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	resp := &dto.PaymentHistoryResponse{Total: total}
	for _, p := range payments {
		resp.Payments = append(resp.Payments, dto.PaymentRecord{
			ID:            p.ID,
			Amount:        p.Amount,
			Currency:      p.Currency,
			Status:        string(p.Status),
			Gateway:       string(p.PaymentGateway),
			TransactionID: p.TransactionID,
			FailureReason: p.FailureReason,
			CreatedAt:     p.CreatedAt,
		})
	}
	return resp, nil
}

// Helpers

func (s *SubscriptionServiceImpl) ensureGatewayCustomer(user *models.User) (string, error) {
	if user.StripeCustomerID != "" {
		return user.StripeCustomerID, nil
	}

	customer, err := s.gateway.CreateCustomer(user.Email, user.ID)
	if err != nil {
		return "", apperrors.ErrPaymentGateway.WithError(err)
	}

	user.StripeCustomerID = customer.ID
	if err := s.userRepo.Update(user); err != nil {
		return "", apperrors.InternalError(err)
	}
	return customer.ID, nil
}

func (s *SubscriptionServiceImpl) recordFailedPayment(userID string, amount decimal.Decimal, currency, reason string, subscriptionID, packageID *string) {
	pmt := &models.PaymentHistory{
		UserID:         userID,
		SubscriptionID: subscriptionID,
		PackageID:      packageID,
		Amount:         amount,
		Currency:       currency,
		PaymentGateway: models.GatewayStripe,
		TransactionID:  newTransactionID(),
	}
	pmt.MarkFailed(reason)
	if err := s.paymentRepo.Create(pmt); err != nil {
		logger.WithError(err).Error("failed to record failed payment", "user_id", userID)
	}
}

func (s *SubscriptionServiceImpl) notifyActivation(emailAddr string, plan *models.SubscriptionPlan, sub *models.UserSubscription) {
	if s.emailProvider == nil {
		return
	}
	renewal := ""
	if sub.EndDate != nil {
		renewal = sub.EndDate.Format("January 2, 2006")
	}
	err := s.emailProvider.SendTemplate(
		[]string{emailAddr},
		fmt.Sprintf("Your %s plan is active", plan.Name),
		"subscription_activated",
		email.TemplateData{
			"PlanName":    string(plan.Name),
			"RenewalDate": renewal,
		},
	)
	if err != nil {
		logger.WithError(err).Warn("failed to send activation email")
	}
}

func newTransactionID() string {
	return "txn_" + uuid.NewString()
}

func subscriptionToDTO(sub *models.UserSubscription, clientSecret string) *dto.SubscriptionResponse {
	return &dto.SubscriptionResponse{
		ID:                   sub.ID,
		PlanID:               sub.PlanID,
		PlanName:             string(sub.Plan.Name),
		Price:                sub.Plan.Price.StringFixed(2),
		StartDate:            sub.StartDate,
		EndDate:              sub.EndDate,
		IsActive:             sub.IsActive,
		AutoRenew:            sub.AutoRenew,
		SearchesUsed:         sub.SearchesUsedThisPeriod,
		SearchesLeft:         sub.SearchesLeftThisPeriod(),
		StripeSubscriptionID: sub.StripeSubscriptionID,
		ClientSecret:         clientSecret,
	}
}
