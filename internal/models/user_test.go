package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUser_Lockout(t *testing.T) {
	now := time.Now()

	t.Run("locks after the fifth failed attempt", func(t *testing.T) {
		user := User{}

		for i := 0; i < MaxFailedLoginAttempts-1; i++ {
			user.RegisterFailedLogin(now)
			assert.False(t, user.IsAccountLocked(now), "attempt %d must not lock", i+1)
		}

		user.RegisterFailedLogin(now)
		assert.True(t, user.IsAccountLocked(now))
		assert.NotNil(t, user.LockExpiresAt)
		assert.WithinDuration(t, now.Add(LockDuration), *user.LockExpiresAt, time.Second)
	})

	t.Run("lock expires after the lock window", func(t *testing.T) {
		user := User{}
		for i := 0; i < MaxFailedLoginAttempts; i++ {
			user.RegisterFailedLogin(now)
		}

		assert.True(t, user.IsAccountLocked(now.Add(LockDuration-time.Second)))
		assert.False(t, user.IsAccountLocked(now.Add(LockDuration+time.Second)))
	})

	t.Run("reset clears the counter and the lock", func(t *testing.T) {
		user := User{}
		for i := 0; i < MaxFailedLoginAttempts; i++ {
			user.RegisterFailedLogin(now)
		}

		user.ResetFailedLogins()
		assert.False(t, user.IsAccountLocked(now))
		assert.Equal(t, 0, user.FailedLoginAttempts)
		assert.Nil(t, user.LockExpiresAt)
	})
}

func TestUser_Anonymize(t *testing.T) {
	user := User{
		BaseModel: BaseModel{ID: "u-1"},
		Email:     "operator@example.com",
		Username:  "operator",
		FirstName: "Jane",
		LastName:  "Doe",
		IsActive:  true,
	}

	user.Anonymize(time.Now())

	assert.NotEqual(t, "operator@example.com", user.Email)
	assert.Contains(t, user.Email, "u-1")
	assert.Empty(t, user.FirstName)
	assert.Empty(t, user.LastName)
	assert.False(t, user.IsActive)
}

func TestUser_ActiveSubscription(t *testing.T) {
	future := time.Now().Add(24 * time.Hour)

	user := User{Subscription: &UserSubscription{IsActive: true, EndDate: &future}}
	assert.NotNil(t, user.ActiveSubscription())

	past := time.Now().Add(-24 * time.Hour)
	expired := User{Subscription: &UserSubscription{IsActive: true, EndDate: &past}}
	assert.Nil(t, expired.ActiveSubscription())

	assert.Nil(t, (&User{}).ActiveSubscription())
}
