package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateSubscriptionRequest struct {
	PlanID          string `json:"plan_id" validate:"required,uuid4"`
	PaymentMethodID string `json:"payment_method_id"`
}

type SubscriptionResponse struct {
	ID                   string     `json:"id"`
	PlanID               string     `json:"plan_id"`
	PlanName             string     `json:"plan_name"`
	Price                string     `json:"price"`
	StartDate            time.Time  `json:"start_date"`
	EndDate              *time.Time `json:"end_date,omitempty"`
	IsActive             bool       `json:"is_active"`
	AutoRenew            bool       `json:"auto_renew"`
	SearchesUsed         int        `json:"searches_used_this_period"`
	SearchesLeft         int        `json:"searches_left_this_period"`
	StripeSubscriptionID string     `json:"stripe_subscription_id,omitempty"`
	ClientSecret         string     `json:"client_secret,omitempty"`
}

type UpgradeSubscriptionRequest struct {
	NewPlanID       string     `json:"new_plan_id" validate:"required,uuid4"`
	EffectiveDate   *time.Time `json:"effective_date,omitempty"`
	PaymentMethodID string     `json:"payment_method_id"`
}

type UpgradeSubscriptionResponse struct {
	RequestID       string          `json:"request_id"`
	Status          string          `json:"status"`
	ProrationAmount decimal.Decimal `json:"proration_amount"`
	EffectiveDate   time.Time       `json:"effective_date"`
	AppliedNow      bool            `json:"applied_now"`
}

type CancelSubscriptionRequest struct {
	Reason            string `json:"reason" validate:"required,oneof=too_expensive not_enough_features technical_issues switching_service business_closure other"`
	Feedback          string `json:"feedback" validate:"max=2000"`
	CancelImmediately bool   `json:"cancel_immediately"`
}

type CancelSubscriptionResponse struct {
	RequestID        string     `json:"request_id"`
	AccessUntil      *time.Time `json:"access_until,omitempty"`
	CancelledNow     bool       `json:"cancelled_now"`
	CancellationDate *time.Time `json:"cancellation_date,omitempty"`
}

type UsageStatsResponse struct {
	PlanName             string     `json:"plan_name"`
	SearchesUsed         int        `json:"searches_used_this_period"`
	SearchesLeft         int        `json:"searches_left_this_period"`
	MonthlyQuota         int        `json:"monthly_quota"`
	LeadCreditsRemaining int        `json:"lead_credits_remaining"`
	PeriodEndsAt         *time.Time `json:"period_ends_at,omitempty"`
	PendingUpgradePlan   string     `json:"pending_upgrade_plan,omitempty"`
	PendingUpgradeDate   *time.Time `json:"pending_upgrade_date,omitempty"`
}

type PurchaseCreditsRequest struct {
	PackageID       string `json:"package_id" validate:"required,uuid4"`
	PaymentMethodID string `json:"payment_method_id"`
}

type PurchaseCreditsResponse struct {
	PaymentID        string          `json:"payment_id"`
	TransactionID    string          `json:"transaction_id"`
	Amount           decimal.Decimal `json:"amount"`
	CreditsPurchased int             `json:"credits_purchased"`
	CreditsRemaining int             `json:"credits_remaining_total"`
	ClientSecret     string          `json:"client_secret,omitempty"`
}

type PaymentHistoryResponse struct {
	Payments []PaymentRecord `json:"payments"`
	Total    int64           `json:"total"`
}

type PaymentRecord struct {
	ID            string          `json:"id"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Status        string          `json:"status"`
	Gateway       string          `json:"gateway"`
	TransactionID string          `json:"transaction_id"`
	FailureReason string          `json:"failure_reason,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}
