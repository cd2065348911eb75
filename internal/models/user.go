package models

import (
	"fmt"
	"time"
)

// MaxFailedLoginAttempts is the threshold after which the account is
// locked for LockDuration.
const (
	MaxFailedLoginAttempts = 5
	LockDuration           = 5 * time.Minute
)

type User struct {
	BaseModel
	Email        string   `gorm:"uniqueIndex;not null" json:"email"`
	Username     string   `gorm:"uniqueIndex;not null" json:"username"`
	FirstName    string   `json:"first_name"`
	LastName     string   `json:"last_name"`
	CompanyName  string   `json:"company_name"`
	PasswordHash string   `gorm:"not null" json:"-"`
	Role         UserRole `gorm:"type:varchar(20);default:'operator'" json:"role"`
	IsActive     bool     `gorm:"default:true" json:"is_active"`
	IsVerified   bool     `gorm:"default:false" json:"is_verified"`

	StripeCustomerID string `gorm:"index" json:"-"`

	// Lockout state
	FailedLoginAttempts int        `gorm:"default:0" json:"-"`
	IsLocked            bool       `gorm:"default:false" json:"-"`
	LockExpiresAt       *time.Time `json:"-"`

	// Email verification and password reset
	VerificationToken string     `json:"-"`
	ResetToken        string     `json:"-"`
	ResetTokenExp     *time.Time `json:"-"`

	LastActivityAt *time.Time `json:"last_activity_at"`

	// Relations
	Subscription  *UserSubscription `gorm:"foreignKey:UserID" json:"subscription,omitempty"`
	RefreshTokens []RefreshToken    `gorm:"foreignKey:UserID" json:"-"`
}

type RefreshToken struct {
	BaseModel
	UserID    string    `gorm:"not null;index" json:"user_id"`
	Token     string    `gorm:"not null;uniqueIndex" json:"token"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
}

func (u *User) FullName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Username
	}
	return fmt.Sprintf("%s %s", u.FirstName, u.LastName)
}

// ActiveSubscription returns the user's subscription only when it is
// active and unexpired. Callers must use this instead of poking at the
// Subscription field directly.
func (u *User) ActiveSubscription() *UserSubscription {
	if u.Subscription == nil {
		return nil
	}
	if !u.Subscription.IsActive || u.Subscription.IsExpired() {
		return nil
	}
	return u.Subscription
}

// IsAccountLocked reports whether the lock is still in force. An
// expired lock is treated as open; the unlock itself is persisted by
// the auth service on the next login attempt.
func (u *User) IsAccountLocked(now time.Time) bool {
	if !u.IsLocked {
		return false
	}
	if u.LockExpiresAt != nil && now.After(*u.LockExpiresAt) {
		return false
	}
	return true
}

// RegisterFailedLogin bumps the failure counter and locks the account
// once the threshold is crossed.
func (u *User) RegisterFailedLogin(now time.Time) {
	u.FailedLoginAttempts++
	if u.FailedLoginAttempts >= MaxFailedLoginAttempts {
		u.IsLocked = true
		exp := now.Add(LockDuration)
		u.LockExpiresAt = &exp
	}
}

func (u *User) ResetFailedLogins() {
	u.FailedLoginAttempts = 0
	u.IsLocked = false
	u.LockExpiresAt = nil
}

// Anonymize soft-deletes the account: the email is replaced so the
// unique index frees up, and the account is deactivated.
func (u *User) Anonymize(now time.Time) {
	u.Email = fmt.Sprintf("deleted_%s_%d@vendinghive.invalid", u.ID, now.Unix())
	u.Username = fmt.Sprintf("deleted_%s", u.ID)
	u.FirstName = ""
	u.LastName = ""
	u.IsActive = false
}
