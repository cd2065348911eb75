package payment

import (
	"errors"

	"github.com/shopspring/decimal"
)

var ErrGatewayUnavailable = errors.New("payment gateway unavailable")

// Customer is the gateway-side customer record.
type Customer struct {
	ID    string
	Email string
}

// Subscription is the gateway-side recurring billing object.
type Subscription struct {
	ID           string
	Status       string
	ClientSecret string
}

// ChargeResult is the outcome of a one-off charge.
type ChargeResult struct {
	TransactionID string
	Status        string
	ClientSecret  string
}

// Gateway abstracts the billing provider. The production implementation
// talks to Stripe; tests substitute a fake.
type Gateway interface {
	// CreateCustomer registers a customer with the provider.
	CreateCustomer(email, userID string) (*Customer, error)

	// AttachPaymentMethod attaches a payment method to the customer and
	// makes it the default for invoices.
	AttachPaymentMethod(customerID, paymentMethodID string) error

	// CreateSubscription starts a recurring subscription for the named
	// plan at the given monthly price.
	CreateSubscription(customerID, planName string, monthlyPrice decimal.Decimal, currency string) (*Subscription, error)

	// CancelSubscription cancels a subscription, either at period end or
	// immediately.
	CancelSubscription(subscriptionID string, immediately bool) error

	// Charge takes a one-off payment, used for lead credit packages and
	// proration differences. The intent is confirmed server-side; an
	// empty paymentMethodID charges the customer's saved default method
	// off-session. Callers must treat any status other than "succeeded"
	// as an unpaid charge.
	Charge(customerID, paymentMethodID string, amount decimal.Decimal, currency, description string) (*ChargeResult, error)
}
