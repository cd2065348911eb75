package apperrors

import (
	"net/http"
)

// Factories and predefined errors for the Vending Hive domains.

// ErrNotFound converts a repository-level "record not found" (for
// example gorm.ErrRecordNotFound) into a 404 AppError.
func ErrNotFound(err error) *AppError {
	return Wrap(err, CodeNotFound, "resource", "Resource not found", http.StatusNotFound)
}

func ErrAlreadyExists(err error) *AppError {
	return Wrap(err, CodeAlreadyExists, "resource", "Resource already exists", http.StatusConflict)
}

func ErrConflict(err error, domain, message string) *AppError {
	return Wrap(err, CodeConflict, domain, message, http.StatusConflict)
}

func ErrInvalidOperation(domain, message string) *AppError {
	return New(CodeInvalidOperation, domain, message, http.StatusBadRequest)
}

// --- Auth & account state ---

var ErrInvalidCredentials = New(
	CodeInvalidCredentials,
	"auth",
	"Invalid email or password",
	http.StatusUnauthorized,
)

var ErrInvalidToken = New(
	CodeInvalidToken,
	"auth",
	"Invalid or expired token",
	http.StatusUnauthorized,
)

var ErrEmailAlreadyExists = New(
	CodeAlreadyExists,
	"auth",
	"Email already in use",
	http.StatusConflict,
)

var ErrWeakPassword = New(
	CodeValidationFailed,
	"validation",
	"Password is too weak. Minimum 8 characters required.",
	http.StatusBadRequest,
)

// ErrAccountLocked maps to 423 Locked, the status the API returns for
// accounts held after repeated failed logins.
var ErrAccountLocked = New(
	CodeAccountLocked,
	"auth",
	"Account is temporarily locked due to failed login attempts",
	http.StatusLocked,
)

var ErrUserNotVerified = New(
	CodeForbidden,
	"auth",
	"Please verify your email address",
	http.StatusForbidden,
)

var ErrInsufficientPermissions = New(
	CodeForbidden,
	"auth",
	"Insufficient permissions",
	http.StatusForbidden,
)

// --- Subscriptions & payments ---

var ErrActiveSubscriptionExists = New(
	CodeConflict,
	"subscription",
	"User already has an active subscription",
	http.StatusConflict,
)

var ErrNoActiveSubscription = New(
	CodeInvalidOperation,
	"subscription",
	"No active subscription found",
	http.StatusBadRequest,
)

var ErrSamePlan = New(
	CodeInvalidOperation,
	"subscription",
	"Cannot change to the same plan",
	http.StatusBadRequest,
)

var ErrPaymentMethodRequired = New(
	CodePaymentRequired,
	"payment",
	"Payment method required for paid plans",
	http.StatusBadRequest,
)

// ErrPaymentGateway is the generic, non-leaking error returned when the
// payment provider rejects or fails a call.
var ErrPaymentGateway = New(
	CodeExternalServiceError,
	"payment",
	"Payment provider error",
	http.StatusServiceUnavailable,
)

var ErrSearchLimitReached = New(
	CodeLimitExceeded,
	"subscription",
	"Monthly search limit reached and no lead credits available",
	http.StatusForbidden,
)

// --- AI toolkit ---

var ErrBusinessToolsAccess = New(
	CodeForbidden,
	"ai_toolkit",
	"AI Business Tools access requires Elite/Professional subscription or a paid plan add-on",
	http.StatusForbidden,
)

var ErrScriptQuotaReached = New(
	CodeLimitExceeded,
	"ai_toolkit",
	"Script template quota for the current plan has been reached",
	http.StatusForbidden,
)

var ErrRegenerationNotAllowed = New(
	CodeForbidden,
	"ai_toolkit",
	"Script regeneration is not included in the current plan",
	http.StatusForbidden,
)
