package repositories

import (
	"errors"
	"time"

	"vendinghive_backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrPlanNotFound         = errors.New("subscription plan not found")
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrRequestNotFound      = errors.New("subscription request not found")
	ErrSearchExhausted      = errors.New("no searches or lead credits available")
)

type SubscriptionRepository interface {
	// Plan operations
	FindAllPlans() ([]models.SubscriptionPlan, error)
	FindPlanByID(id string) (*models.SubscriptionPlan, error)
	FindPlanByName(name models.PlanName) (*models.SubscriptionPlan, error)
	CreatePlan(plan *models.SubscriptionPlan) error
	UpdatePlan(plan *models.SubscriptionPlan) error

	// Subscription operations
	FindByUserID(userID string) (*models.UserSubscription, error)
	FindByStripeSubscriptionID(stripeSubID string) (*models.UserSubscription, error)
	Create(subscription *models.UserSubscription) error
	Update(subscription *models.UserSubscription) error
	ActivateSubscription(userID, planID string, stripeSubID string, periodDays int) (*models.UserSubscription, error)
	DeactivateSubscription(subscriptionID string) error
	ResetMonthlyUsage(userID string) error
	ConsumeSearch(userID string) (models.CreditSource, error)

	FindExpired(now time.Time) ([]models.UserSubscription, error)
	FindDueForRenewal(now time.Time) ([]models.UserSubscription, error)
	FindAll(limit, offset int) ([]models.UserSubscription, int64, error)
	CountActive() (int64, error)
	CountActiveByPlan() (map[string]int64, error)

	// Upgrade request operations
	CreateUpgradeRequest(req *models.SubscriptionUpgradeRequest) error
	FindPendingUpgradeByUserID(userID string) (*models.SubscriptionUpgradeRequest, error)
	FindDueUpgrades(now time.Time) ([]models.SubscriptionUpgradeRequest, error)
	ApplyUpgrade(requestID string) error
	UpdateUpgradeRequest(req *models.SubscriptionUpgradeRequest) error

	// Cancellation request operations
	CreateCancellationRequest(req *models.SubscriptionCancellationRequest) error
	MarkCancellationProcessed(requestID string) error
	FindUnprocessedCancellations(now time.Time) ([]models.SubscriptionCancellationRequest, error)
}

type SubscriptionRepositoryImpl struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &SubscriptionRepositoryImpl{db: db}
}

// Plan operations

func (r *SubscriptionRepositoryImpl) FindAllPlans() ([]models.SubscriptionPlan, error) {
	var plans []models.SubscriptionPlan
	err := r.db.Order("price ASC").Find(&plans).Error
	return plans, err
}

func (r *SubscriptionRepositoryImpl) FindPlanByID(id string) (*models.SubscriptionPlan, error) {
	var plan models.SubscriptionPlan
	err := r.db.First(&plan, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return &plan, nil
}

func (r *SubscriptionRepositoryImpl) FindPlanByName(name models.PlanName) (*models.SubscriptionPlan, error) {
	var plan models.SubscriptionPlan
	err := r.db.First(&plan, "name = ?", name).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return &plan, nil
}

func (r *SubscriptionRepositoryImpl) CreatePlan(plan *models.SubscriptionPlan) error {
	return r.db.Create(plan).Error
}

func (r *SubscriptionRepositoryImpl) UpdatePlan(plan *models.SubscriptionPlan) error {
	return r.db.Save(plan).Error
}

// Subscription operations

func (r *SubscriptionRepositoryImpl) FindByUserID(userID string) (*models.UserSubscription, error) {
	var subscription models.UserSubscription
	err := r.db.Preload("Plan").First(&subscription, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return &subscription, nil
}

func (r *SubscriptionRepositoryImpl) FindByStripeSubscriptionID(stripeSubID string) (*models.UserSubscription, error) {
	var subscription models.UserSubscription
	err := r.db.Preload("Plan").
		First(&subscription, "stripe_subscription_id = ? AND stripe_subscription_id <> ''", stripeSubID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return &subscription, nil
}

func (r *SubscriptionRepositoryImpl) Create(subscription *models.UserSubscription) error {
	return r.db.Create(subscription).Error
}

func (r *SubscriptionRepositoryImpl) Update(subscription *models.UserSubscription) error {
	result := r.db.Save(subscription)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSubscriptionNotFound
	}
	return nil
}

// ActivateSubscription creates or replaces the user's subscription record.
// Each user holds exactly one subscription row; switching plans rewrites it.
func (r *SubscriptionRepositoryImpl) ActivateSubscription(userID, planID string, stripeSubID string, periodDays int) (*models.UserSubscription, error) {
	var subscription *models.UserSubscription

	err := r.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		endDate := now.AddDate(0, 0, periodDays)

		var existing models.UserSubscription
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&existing, "user_id = ?", userID).Error

		switch {
		case err == nil:
			existing.PlanID = planID
			existing.StartDate = now
			existing.EndDate = &endDate
			existing.IsActive = true
			existing.SearchesUsedThisPeriod = 0
			existing.StripeSubscriptionID = stripeSubID
			existing.AutoRenew = true
			existing.CancelledAt = nil
			if err := tx.Save(&existing).Error; err != nil {
				return err
			}
			subscription = &existing
		case errors.Is(err, gorm.ErrRecordNotFound):
			fresh := models.UserSubscription{
				UserID:               userID,
				PlanID:               planID,
				StartDate:            now,
				EndDate:              &endDate,
				IsActive:             true,
				StripeSubscriptionID: stripeSubID,
				AutoRenew:            true,
			}
			if err := tx.Create(&fresh).Error; err != nil {
				return err
			}
			subscription = &fresh
		default:
			return err
		}

		return tx.Preload("Plan").First(subscription, "id = ?", subscription.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return subscription, nil
}

func (r *SubscriptionRepositoryImpl) DeactivateSubscription(subscriptionID string) error {
	now := time.Now()
	result := r.db.Model(&models.UserSubscription{}).
		Where("id = ?", subscriptionID).
		Updates(map[string]interface{}{
			"is_active":    false,
			"auto_renew":   false,
			"cancelled_at": now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSubscriptionNotFound
	}
	return nil
}

// ResetMonthlyUsage zeroes the period counter. Idempotent.
func (r *SubscriptionRepositoryImpl) ResetMonthlyUsage(userID string) error {
	return r.db.Model(&models.UserSubscription{}).
		Where("user_id = ?", userID).
		Update("searches_used_this_period", 0).Error
}

// ConsumeSearch spends one search atomically: plan quota first, then the
// oldest unexpired lead-credit block. Row locks keep concurrent searches
// from double-spending the last unit.
func (r *SubscriptionRepositoryImpl) ConsumeSearch(userID string) (models.CreditSource, error) {
	var source models.CreditSource

	err := r.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()

		var subscription models.UserSubscription
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Preload("Plan").
			First(&subscription, "user_id = ?", userID).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err == nil && subscription.UseSearch() {
			source = models.CreditSourcePlan
			return tx.Model(&models.UserSubscription{}).
				Where("id = ?", subscription.ID).
				Update("searches_used_this_period", subscription.SearchesUsedThisPeriod).Error
		}

		var credits []models.UserLeadCredit
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND credits_used < credits_purchased", userID).
			Where("expires_at IS NULL OR expires_at > ?", now).
			Order("expires_at ASC NULLS LAST").
			Find(&credits).Error; err != nil {
			return err
		}

		for i := range credits {
			if credits[i].UseCredits(1, now) {
				source = models.CreditSourceAddon
				return tx.Model(&models.UserLeadCredit{}).
					Where("id = ?", credits[i].ID).
					Update("credits_used", credits[i].CreditsUsed).Error
			}
		}

		return ErrSearchExhausted
	})
	if err != nil {
		return "", err
	}
	return source, nil
}

func (r *SubscriptionRepositoryImpl) FindExpired(now time.Time) ([]models.UserSubscription, error) {
	var subscriptions []models.UserSubscription
	err := r.db.Preload("Plan").
		Where("is_active = ? AND auto_renew = ? AND end_date IS NOT NULL AND end_date < ?", true, false, now).
		Find(&subscriptions).Error
	return subscriptions, err
}

func (r *SubscriptionRepositoryImpl) FindDueForRenewal(now time.Time) ([]models.UserSubscription, error) {
	var subscriptions []models.UserSubscription
	err := r.db.Preload("Plan").
		Where("is_active = ? AND auto_renew = ? AND end_date IS NOT NULL AND end_date < ?", true, true, now).
		Find(&subscriptions).Error
	return subscriptions, err
}

func (r *SubscriptionRepositoryImpl) FindAll(limit, offset int) ([]models.UserSubscription, int64, error) {
	var total int64
	if err := r.db.Model(&models.UserSubscription{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var subscriptions []models.UserSubscription
	err := r.db.Preload("Plan").
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&subscriptions).Error
	return subscriptions, total, err
}

func (r *SubscriptionRepositoryImpl) CountActive() (int64, error) {
	var count int64
	err := r.db.Model(&models.UserSubscription{}).
		Where("is_active = ?", true).
		Count(&count).Error
	return count, err
}

func (r *SubscriptionRepositoryImpl) CountActiveByPlan() (map[string]int64, error) {
	type row struct {
		Name  string
		Count int64
	}
	var rows []row
	err := r.db.Model(&models.UserSubscription{}).
		Select("subscription_plans.name AS name, COUNT(*) AS count").
		Joins("JOIN subscription_plans ON subscription_plans.id = user_subscriptions.plan_id").
		Where("user_subscriptions.is_active = ?", true).
		Group("subscription_plans.name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make(map[string]int64, len(rows))
	for _, r := range rows {
		result[r.Name] = r.Count
	}
	return result, nil
}

// Upgrade request operations

func (r *SubscriptionRepositoryImpl) CreateUpgradeRequest(req *models.SubscriptionUpgradeRequest) error {
	return r.db.Create(req).Error
}

func (r *SubscriptionRepositoryImpl) FindPendingUpgradeByUserID(userID string) (*models.SubscriptionUpgradeRequest, error) {
	var req models.SubscriptionUpgradeRequest
	err := r.db.Preload("RequestedPlan").
		Where("user_id = ? AND status = ?", userID, models.RequestStatusPending).
		Order("created_at DESC").
		First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	return &req, nil
}

func (r *SubscriptionRepositoryImpl) FindDueUpgrades(now time.Time) ([]models.SubscriptionUpgradeRequest, error) {
	var reqs []models.SubscriptionUpgradeRequest
	err := r.db.Preload("RequestedPlan").
		Where("status = ? AND effective_date <= ?", models.RequestStatusPending, now).
		Find(&reqs).Error
	return reqs, err
}

// ApplyUpgrade switches the user's subscription to the requested plan and
// marks the request completed, all in one transaction.
func (r *SubscriptionRepositoryImpl) ApplyUpgrade(requestID string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var req models.SubscriptionUpgradeRequest
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&req, "id = ?", requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRequestNotFound
			}
			return err
		}
		if req.Status != models.RequestStatusPending {
			return nil
		}

		var subscription models.UserSubscription
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&subscription, "user_id = ?", req.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSubscriptionNotFound
			}
			return err
		}

		now := time.Now()
		endDate := now.AddDate(0, 0, models.BillingPeriodDays)
		updates := map[string]interface{}{
			"plan_id":                   req.RequestedPlanID,
			"start_date":                now,
			"end_date":                  endDate,
			"is_active":                 true,
			"searches_used_this_period": 0,
		}
		if err := tx.Model(&subscription).Updates(updates).Error; err != nil {
			return err
		}

		return tx.Model(&req).Update("status", models.RequestStatusCompleted).Error
	})
}

func (r *SubscriptionRepositoryImpl) UpdateUpgradeRequest(req *models.SubscriptionUpgradeRequest) error {
	return r.db.Save(req).Error
}

// Cancellation request operations

func (r *SubscriptionRepositoryImpl) CreateCancellationRequest(req *models.SubscriptionCancellationRequest) error {
	return r.db.Create(req).Error
}

func (r *SubscriptionRepositoryImpl) MarkCancellationProcessed(requestID string) error {
	result := r.db.Model(&models.SubscriptionCancellationRequest{}).
		Where("id = ?", requestID).
		Update("is_processed", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRequestNotFound
	}
	return nil
}

func (r *SubscriptionRepositoryImpl) FindUnprocessedCancellations(now time.Time) ([]models.SubscriptionCancellationRequest, error) {
	var reqs []models.SubscriptionCancellationRequest
	err := r.db.
		Where("is_processed = ? AND cancellation_date <= ?", false, now).
		Find(&reqs).Error
	return reqs, err
}
