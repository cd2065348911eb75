package payment

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
)

// StripeGateway implements Gateway on an explicitly constructed Stripe
// client. The API key lives on the client, never in a package global,
// so two gateways with different keys can coexist in one process.
type StripeGateway struct {
	sc *client.API
}

func NewStripeGateway(secretKey string) *StripeGateway {
	sc := &client.API{}
	sc.Init(secretKey, nil)
	return &StripeGateway{sc: sc}
}

func (g *StripeGateway) CreateCustomer(email, userID string) (*Customer, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(email),
		Metadata: map[string]string{
			"user_id": userID,
		},
	}

	cust, err := g.sc.Customers.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe create customer: %w", err)
	}

	return &Customer{ID: cust.ID, Email: email}, nil
}

func (g *StripeGateway) AttachPaymentMethod(customerID, paymentMethodID string) error {
	_, err := g.sc.PaymentMethods.Attach(paymentMethodID, &stripe.PaymentMethodAttachParams{
		Customer: stripe.String(customerID),
	})
	if err != nil {
		return fmt.Errorf("stripe attach payment method: %w", err)
	}

	_, err = g.sc.Customers.Update(customerID, &stripe.CustomerParams{
		InvoiceSettings: &stripe.CustomerInvoiceSettingsParams{
			DefaultPaymentMethod: stripe.String(paymentMethodID),
		},
	})
	if err != nil {
		return fmt.Errorf("stripe set default payment method: %w", err)
	}
	return nil
}

func (g *StripeGateway) CreateSubscription(customerID, planName string, monthlyPrice decimal.Decimal, currency string) (*Subscription, error) {
	product, err := g.sc.Products.New(&stripe.ProductParams{
		Name: stripe.String(fmt.Sprintf("Vending Hive %s Plan", planName)),
	})
	if err != nil {
		return nil, fmt.Errorf("stripe create product: %w", err)
	}

	price, err := g.sc.Prices.New(&stripe.PriceParams{
		Product:    stripe.String(product.ID),
		Currency:   stripe.String(currency),
		UnitAmount: stripe.Int64(toCents(monthlyPrice)),
		Recurring: &stripe.PriceRecurringParams{
			Interval: stripe.String("month"),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("stripe create price: %w", err)
	}

	params := &stripe.SubscriptionParams{
		Customer: stripe.String(customerID),
		Items: []*stripe.SubscriptionItemsParams{
			{Price: stripe.String(price.ID)},
		},
		PaymentBehavior: stripe.String("default_incomplete"),
	}
	params.AddExpand("latest_invoice.payment_intent")

	sub, err := g.sc.Subscriptions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe create subscription: %w", err)
	}

	result := &Subscription{
		ID:     sub.ID,
		Status: string(sub.Status),
	}
	if sub.LatestInvoice != nil && sub.LatestInvoice.PaymentIntent != nil {
		result.ClientSecret = sub.LatestInvoice.PaymentIntent.ClientSecret
	}
	return result, nil
}

func (g *StripeGateway) CancelSubscription(subscriptionID string, immediately bool) error {
	if immediately {
		_, err := g.sc.Subscriptions.Cancel(subscriptionID, &stripe.SubscriptionCancelParams{})
		if err != nil {
			return fmt.Errorf("stripe cancel subscription: %w", err)
		}
		return nil
	}

	_, err := g.sc.Subscriptions.Update(subscriptionID, &stripe.SubscriptionParams{
		CancelAtPeriodEnd: stripe.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("stripe schedule cancellation: %w", err)
	}
	return nil
}

func (g *StripeGateway) Charge(customerID, paymentMethodID string, amount decimal.Decimal, currency, description string) (*ChargeResult, error) {
	params := &stripe.PaymentIntentParams{
		Customer:    stripe.String(customerID),
		Amount:      stripe.Int64(toCents(amount)),
		Currency:    stripe.String(currency),
		Description: stripe.String(description),
		Confirm:     stripe.Bool(true),
	}
	if paymentMethodID != "" {
		params.PaymentMethod = stripe.String(paymentMethodID)
	} else {
		// Confirm against the customer's saved default payment method.
		params.OffSession = stripe.Bool(true)
	}

	intent, err := g.sc.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe confirm payment intent: %w", err)
	}

	return &ChargeResult{
		TransactionID: intent.ID,
		Status:        string(intent.Status),
		ClientSecret:  intent.ClientSecret,
	}, nil
}

func toCents(amount decimal.Decimal) int64 {
	return amount.Round(2).Mul(decimal.NewFromInt(100)).IntPart()
}
