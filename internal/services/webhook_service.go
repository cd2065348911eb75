package services

import (
	"encoding/json"
	"time"

	"vendinghive_backend/internal/logger"
	"vendinghive_backend/internal/models"
	"vendinghive_backend/internal/repositories"
	"vendinghive_backend/pkg/apperrors"

	"github.com/stripe/stripe-go/v79"
)

type WebhookService interface {
	HandleStripeEvent(event stripe.Event) error
}

type WebhookServiceImpl struct {
	subscriptionRepo repositories.SubscriptionRepository
	paymentRepo      repositories.PaymentRepository
}

func NewWebhookService(
	subscriptionRepo repositories.SubscriptionRepository,
	paymentRepo repositories.PaymentRepository,
) WebhookService {
	return &WebhookServiceImpl{
		subscriptionRepo: subscriptionRepo,
		paymentRepo:      paymentRepo,
	}
}

// HandleStripeEvent dispatches a verified Stripe event. Unrecognized
// event types are acknowledged without action so Stripe stops retrying
// them.
func (s *WebhookServiceImpl) HandleStripeEvent(event stripe.Event) error {
	switch event.Type {
	case "invoice.payment_succeeded":
		return s.handlePaymentSucceeded(event)
	case "invoice.payment_failed":
		return s.handlePaymentFailed(event)
	case "customer.subscription.deleted":
		return s.handleSubscriptionDeleted(event)
	default:
		logger.Debug("ignoring stripe event", "type", string(event.Type))
		return nil
	}
}

// handlePaymentSucceeded starts a fresh billing period: usage drops to
// zero and the end date moves forward.
func (s *WebhookServiceImpl) handlePaymentSucceeded(event stripe.Event) error {
	var invoice stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
		return apperrors.NewBadRequestError("Malformed invoice payload")
	}

	if invoice.Subscription == nil {
		return nil
	}

	sub, err := s.subscriptionRepo.FindByStripeSubscriptionID(invoice.Subscription.ID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrSubscriptionNotFound) {
			logger.Warn("stripe invoice for unknown subscription", "stripe_subscription_id", invoice.Subscription.ID)
			return nil
		}
		return apperrors.InternalError(err)
	}

	if err := s.subscriptionRepo.ResetMonthlyUsage(sub.UserID); err != nil {
		return apperrors.InternalError(err)
	}

	endDate := time.Now().AddDate(0, 0, models.BillingPeriodDays)
	sub.EndDate = &endDate
	sub.IsActive = true
	if err := s.subscriptionRepo.Update(sub); err != nil {
		return apperrors.InternalError(err)
	}

	logger.Info("subscription renewed via stripe invoice",
		"user_id", sub.UserID, "stripe_subscription_id", invoice.Subscription.ID)
	return nil
}

// handlePaymentFailed only records the failure. Stripe retries the
// invoice on its own schedule; access is revoked by
// customer.subscription.deleted if retries run out.
func (s *WebhookServiceImpl) handlePaymentFailed(event stripe.Event) error {
	var invoice stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
		return apperrors.NewBadRequestError("Malformed invoice payload")
	}

	subID := ""
	if invoice.Subscription != nil {
		subID = invoice.Subscription.ID
	}
	logger.Warn("stripe invoice payment failed",
		"stripe_subscription_id", subID, "customer_email", invoice.CustomerEmail)
	return nil
}

func (s *WebhookServiceImpl) handleSubscriptionDeleted(event stripe.Event) error {
	var stripeSub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &stripeSub); err != nil {
		return apperrors.NewBadRequestError("Malformed subscription payload")
	}

	sub, err := s.subscriptionRepo.FindByStripeSubscriptionID(stripeSub.ID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrSubscriptionNotFound) {
			return nil
		}
		return apperrors.InternalError(err)
	}

	if err := s.subscriptionRepo.DeactivateSubscription(sub.ID); err != nil {
		return apperrors.InternalError(err)
	}

	// Clear the gateway pointer so a resubscribe starts clean.
	sub.IsActive = false
	sub.StripeSubscriptionID = ""
	if err := s.subscriptionRepo.Update(sub); err != nil {
		return apperrors.InternalError(err)
	}

	logger.Info("subscription deactivated via stripe", "user_id", sub.UserID)
	return nil
}
