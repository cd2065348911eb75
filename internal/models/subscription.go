package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BillingPeriodDays is the flat billing window. Proration uses the
// same 30-day month, not the calendar.
const BillingPeriodDays = 30

type SubscriptionPlan struct {
	BaseModel
	Name                 PlanName        `gorm:"type:varchar(20);uniqueIndex;not null" json:"name"`
	Price                decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	Currency             string          `gorm:"default:'USD'" json:"currency"`
	LeadsPerMonth        int             `gorm:"not null" json:"leads_per_month"`
	LeadsPerSearchRange  string          `json:"leads_per_search_range"` // e.g. "10-15"
	ScriptTemplatesCount int             `gorm:"not null" json:"script_templates_count"`
	RegenerationAllowed  bool            `gorm:"default:false" json:"regeneration_allowed"`
	Description          string          `json:"description"`
	IsActive             bool            `gorm:"default:true" json:"is_active"`
}

func (p *SubscriptionPlan) IsFree() bool {
	return p.Name == PlanFree
}

// IsPremium reports whether the plan carries unconditional AI Business
// Tools access.
func (p *SubscriptionPlan) IsPremium() bool {
	return p.Name == PlanElite || p.Name == PlanProfessional
}

// DailyRate is the plan price spread over the flat 30-day month.
func (p *SubscriptionPlan) DailyRate() decimal.Decimal {
	return p.Price.Div(decimal.NewFromInt(BillingPeriodDays))
}

type UserSubscription struct {
	BaseModel
	UserID                 string     `gorm:"uniqueIndex;not null" json:"user_id"`
	PlanID                 string     `gorm:"not null;index" json:"plan_id"`
	StartDate              time.Time  `gorm:"not null" json:"start_date"`
	EndDate                *time.Time `json:"end_date"`
	IsActive               bool       `gorm:"default:true;index" json:"is_active"`
	SearchesUsedThisPeriod int        `gorm:"default:0" json:"searches_used_this_period"`
	StripeSubscriptionID   string     `gorm:"index" json:"stripe_subscription_id,omitempty"`
	AutoRenew              bool       `gorm:"default:true" json:"auto_renew"`
	CancelledAt            *time.Time `json:"cancelled_at,omitempty"`

	// Relations
	Plan SubscriptionPlan `gorm:"foreignKey:PlanID" json:"plan"`
}

func (s *UserSubscription) IsExpired() bool {
	if s.EndDate == nil {
		return false
	}
	return time.Now().After(*s.EndDate)
}

// CanSearch reports whether the subscription quota still covers one
// more location search. Lead credits are handled separately.
func (s *UserSubscription) CanSearch() bool {
	return s.IsActive && !s.IsExpired() && s.SearchesUsedThisPeriod < s.Plan.LeadsPerMonth
}

// UseSearch consumes one search from the plan quota. The caller
// persists the change.
func (s *UserSubscription) UseSearch() bool {
	if !s.CanSearch() {
		return false
	}
	s.SearchesUsedThisPeriod++
	return true
}

func (s *UserSubscription) SearchesLeftThisPeriod() int {
	left := s.Plan.LeadsPerMonth - s.SearchesUsedThisPeriod
	if left < 0 {
		return 0
	}
	return left
}

// SubscriptionUpgradeRequest is the audit record of a plan change.
// Deferred requests (EffectiveDate in the future) are applied by the
// renewal worker.
type SubscriptionUpgradeRequest struct {
	BaseModel
	UserID                string           `gorm:"not null;index" json:"user_id"`
	CurrentSubscriptionID string           `gorm:"not null;index" json:"current_subscription_id"`
	RequestedPlanID       string           `gorm:"not null" json:"requested_plan_id"`
	Status                RequestStatus    `gorm:"type:varchar(20);default:'pending'" json:"status"`
	ProrationAmount       *decimal.Decimal `gorm:"type:numeric(10,2)" json:"proration_amount,omitempty"`
	EffectiveDate         time.Time        `gorm:"not null" json:"effective_date"`
	Notes                 string           `json:"notes"`

	RequestedPlan SubscriptionPlan `gorm:"foreignKey:RequestedPlanID" json:"requested_plan"`
}

type SubscriptionCancellationRequest struct {
	BaseModel
	UserID            string             `gorm:"not null;index" json:"user_id"`
	SubscriptionID    string             `gorm:"not null;index" json:"subscription_id"`
	Reason            CancellationReason `gorm:"type:varchar(50);not null" json:"reason"`
	Feedback          string             `json:"feedback"`
	CancelImmediately bool               `gorm:"default:false" json:"cancel_immediately"`
	CancellationDate  *time.Time         `json:"cancellation_date,omitempty"`
	IsProcessed       bool               `gorm:"default:false" json:"is_processed"`
}
