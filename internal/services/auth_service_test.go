package services

import (
	"net/http"
	"testing"
	"time"

	"vendinghive_backend/internal/auth"
	"vendinghive_backend/internal/models"
	"vendinghive_backend/internal/services/dto"
	"vendinghive_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUser(t *testing.T, password string) *models.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	return &models.User{
		BaseModel:    models.BaseModel{ID: "u-1"},
		Email:        "op@example.com",
		Username:     "op",
		PasswordHash: hash,
		IsActive:     true,
		IsVerified:   true,
	}
}

func TestLogin_LockoutAfterFiveFailures(t *testing.T) {
	user := newTestUser(t, "correct-horse-9")
	userRepo := newFakeUserRepo(user)
	svc := NewAuthService(userRepo, newFakeSubscriptionRepo(), &fakeEmailProvider{})

	req := &dto.LoginRequest{Email: user.Email, Password: "wrong-password"}

	for i := 0; i < models.MaxFailedLoginAttempts-1; i++ {
		_, err := svc.Login(req)
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials, "attempt %d", i+1)
	}

	// The fifth failure trips the lock.
	_, err := svc.Login(req)
	require.ErrorIs(t, err, apperrors.ErrAccountLocked)
	assert.Equal(t, http.StatusLocked, apperrors.ErrAccountLocked.HTTPCode)

	// Even the correct password is refused while locked.
	_, err = svc.Login(&dto.LoginRequest{Email: user.Email, Password: "correct-horse-9"})
	assert.ErrorIs(t, err, apperrors.ErrAccountLocked)

	// Failed attempts were persisted along the way.
	assert.NotEmpty(t, userRepo.updated)
	assert.True(t, user.IsLocked)
}

func TestLogin_ExpiredLockReopensAccount(t *testing.T) {
	user := newTestUser(t, "correct-horse-9")
	user.FailedLoginAttempts = models.MaxFailedLoginAttempts
	user.IsLocked = true
	expired := time.Now().Add(-time.Minute)
	user.LockExpiresAt = &expired

	userRepo := newFakeUserRepo(user)
	svc := NewAuthService(userRepo, newFakeSubscriptionRepo(), &fakeEmailProvider{})

	// The wrong password on an expired lock counts as failure one, not
	// six; the account is not immediately re-locked.
	_, err := svc.Login(&dto.LoginRequest{Email: user.Email, Password: "wrong-password"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	assert.Equal(t, 1, user.FailedLoginAttempts)
	assert.False(t, user.IsLocked)
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo(), newFakeSubscriptionRepo(), &fakeEmailProvider{})

	_, err := svc.Login(&dto.LoginRequest{Email: "ghost@example.com", Password: "whatever1"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestLogin_InactiveAccount(t *testing.T) {
	user := newTestUser(t, "correct-horse-9")
	user.IsActive = false
	svc := NewAuthService(newFakeUserRepo(user), newFakeSubscriptionRepo(), &fakeEmailProvider{})

	// Deactivated accounts are indistinguishable from bad credentials.
	_, err := svc.Login(&dto.LoginRequest{Email: user.Email, Password: "correct-horse-9"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}
