package workers

import (
	"context"
	"time"

	"vendinghive_backend/internal/logger"
	"vendinghive_backend/internal/models"
	"vendinghive_backend/internal/repositories"

	"github.com/robfig/cron/v3"
)

// SubscriptionWorker drives the billing lifecycle: expiring lapsed
// subscriptions, rolling renewals and applying deferred upgrades.
type SubscriptionWorker struct {
	subscriptionRepo repositories.SubscriptionRepository
	cron             *cron.Cron
}

func NewSubscriptionWorker(subscriptionRepo repositories.SubscriptionRepository) *SubscriptionWorker {
	return &SubscriptionWorker{
		subscriptionRepo: subscriptionRepo,
		cron:             cron.New(),
	}
}

func (w *SubscriptionWorker) Start(ctx context.Context) {
	// Hourly is frequent enough: everything here keys off dates, not
	// exact moments.
	_, _ = w.cron.AddFunc("@hourly", w.expireLapsedSubscriptions)
	_, _ = w.cron.AddFunc("@hourly", w.renewSubscriptions)
	_, _ = w.cron.AddFunc("@hourly", w.applyDueUpgrades)
	_, _ = w.cron.AddFunc("@hourly", w.processDueCancellations)
	w.cron.Start()

	go func() {
		<-ctx.Done()
		w.cron.Stop()
		logger.Info("subscription worker stopped")
	}()
}

// expireLapsedSubscriptions deactivates subscriptions past their end
// date with auto-renew off.
func (w *SubscriptionWorker) expireLapsedSubscriptions() {
	subs, err := w.subscriptionRepo.FindExpired(time.Now())
	if err != nil {
		logger.WorkerLog("subscription", "find expired", err)
		return
	}

	for _, sub := range subs {
		if err := w.subscriptionRepo.DeactivateSubscription(sub.ID); err != nil {
			logger.WorkerLog("subscription", "deactivate "+sub.ID, err)
			continue
		}
		logger.Info("subscription expired", "subscription_id", sub.ID, "user_id", sub.UserID)
	}
}

// renewSubscriptions rolls auto-renewing subscriptions into a new
// period. Free plans renew in-house; paid plans normally renew through
// the gateway webhook, and this path catches the ones Stripe does not
// manage (manual or comped subscriptions).
func (w *SubscriptionWorker) renewSubscriptions() {
	subs, err := w.subscriptionRepo.FindDueForRenewal(time.Now())
	if err != nil {
		logger.WorkerLog("subscription", "find due for renewal", err)
		return
	}

	for i := range subs {
		sub := &subs[i]
		if sub.StripeSubscriptionID != "" {
			// Stripe owns the billing cycle; the invoice webhook
			// extends the period when payment lands.
			continue
		}

		if err := w.subscriptionRepo.ResetMonthlyUsage(sub.UserID); err != nil {
			logger.WorkerLog("subscription", "reset usage "+sub.UserID, err)
			continue
		}

		endDate := time.Now().AddDate(0, 0, models.BillingPeriodDays)
		sub.EndDate = &endDate
		if err := w.subscriptionRepo.Update(sub); err != nil {
			logger.WorkerLog("subscription", "extend "+sub.ID, err)
			continue
		}
		logger.Info("subscription renewed", "subscription_id", sub.ID, "user_id", sub.UserID)
	}
}

// applyDueUpgrades completes deferred upgrade requests whose effective
// date has arrived.
func (w *SubscriptionWorker) applyDueUpgrades() {
	reqs, err := w.subscriptionRepo.FindDueUpgrades(time.Now())
	if err != nil {
		logger.WorkerLog("subscription", "find due upgrades", err)
		return
	}

	for _, req := range reqs {
		if err := w.subscriptionRepo.ApplyUpgrade(req.ID); err != nil {
			logger.WorkerLog("subscription", "apply upgrade "+req.ID, err)
			continue
		}
		logger.Info("deferred upgrade applied",
			"request_id", req.ID, "user_id", req.UserID,
			"plan", string(req.RequestedPlan.Name))
	}
}

// processDueCancellations deactivates subscriptions whose scheduled
// cancellation date has passed.
func (w *SubscriptionWorker) processDueCancellations() {
	reqs, err := w.subscriptionRepo.FindUnprocessedCancellations(time.Now())
	if err != nil {
		logger.WorkerLog("subscription", "find due cancellations", err)
		return
	}

	for _, req := range reqs {
		if err := w.subscriptionRepo.DeactivateSubscription(req.SubscriptionID); err != nil {
			if !repositoriesIsNotFound(err) {
				logger.WorkerLog("subscription", "cancel "+req.SubscriptionID, err)
				continue
			}
		}
		if err := w.subscriptionRepo.MarkCancellationProcessed(req.ID); err != nil {
			logger.WorkerLog("subscription", "mark cancellation "+req.ID, err)
			continue
		}
		logger.Info("scheduled cancellation processed",
			"request_id", req.ID, "user_id", req.UserID)
	}
}

func repositoriesIsNotFound(err error) bool {
	return err == repositories.ErrSubscriptionNotFound
}
