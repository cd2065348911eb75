package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// PaymentHistory is the immutable-once-completed payment ledger.
type PaymentHistory struct {
	BaseModel
	UserID               string          `gorm:"not null;index" json:"user_id"`
	SubscriptionID       *string         `gorm:"index" json:"subscription_id,omitempty"`
	PackageID            *string         `gorm:"index" json:"package_id,omitempty"`
	Amount               decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"amount"`
	Currency             string          `gorm:"default:'USD'" json:"currency"`
	PaymentGateway       PaymentGateway  `gorm:"type:varchar(20);not null" json:"payment_gateway"`
	TransactionID        string          `gorm:"uniqueIndex;not null" json:"transaction_id"`
	GatewayTransactionID string          `json:"gateway_transaction_id,omitempty"`
	Status               PaymentStatus   `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	FailureReason        string          `json:"failure_reason,omitempty"`
	Metadata             datatypes.JSON  `gorm:"type:jsonb" json:"metadata,omitempty"`
}

// MarkCompleted flips the status; the caller persists the row.
func (p *PaymentHistory) MarkCompleted(gatewayTransactionID string) {
	p.Status = PaymentStatusCompleted
	if gatewayTransactionID != "" {
		p.GatewayTransactionID = gatewayTransactionID
	}
}

func (p *PaymentHistory) MarkFailed(reason string) {
	p.Status = PaymentStatusFailed
	p.FailureReason = reason
}

// LeadCreditPackage is catalog data for purchasable add-on bundles.
type LeadCreditPackage struct {
	BaseModel
	Name        string          `gorm:"not null" json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	LeadCount   int             `gorm:"not null" json:"lead_count"`
	IsActive    bool            `gorm:"default:true" json:"is_active"`
}

func (p *LeadCreditPackage) PricePerLead() decimal.Decimal {
	if p.LeadCount == 0 {
		return decimal.Zero
	}
	return p.Price.Div(decimal.NewFromInt(int64(p.LeadCount))).Round(2)
}

// UserLeadCredit is one purchased credit batch. Batches are metered
// independently; there is no cross-batch consumption order.
type UserLeadCredit struct {
	BaseModel
	UserID           string     `gorm:"not null;index" json:"user_id"`
	PackageID        string     `gorm:"not null" json:"package_id"`
	PaymentID        string     `gorm:"not null" json:"payment_id"`
	CreditsPurchased int        `gorm:"not null" json:"credits_purchased"`
	CreditsUsed      int        `gorm:"default:0" json:"credits_used"`
	ExpiresAt        *time.Time `json:"expires_at,omitempty"`

	Package LeadCreditPackage `gorm:"foreignKey:PackageID" json:"package"`
}

func (c *UserLeadCredit) CreditsRemaining() int {
	remaining := c.CreditsPurchased - c.CreditsUsed
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (c *UserLeadCredit) IsExpired(now time.Time) bool {
	if c.ExpiresAt == nil {
		return false
	}
	return now.After(*c.ExpiresAt)
}

// UseCredits consumes amount credits from this batch. Returns false
// without mutating when the batch is expired or has too few credits
// left; CreditsUsed never exceeds CreditsPurchased.
func (c *UserLeadCredit) UseCredits(amount int, now time.Time) bool {
	if amount <= 0 {
		return false
	}
	if c.IsExpired(now) {
		return false
	}
	if c.CreditsRemaining() < amount {
		return false
	}
	c.CreditsUsed += amount
	return true
}
