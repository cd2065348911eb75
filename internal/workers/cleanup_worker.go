package workers

import (
	"context"
	"time"

	"vendinghive_backend/internal/logger"
	"vendinghive_backend/internal/repositories"

	"github.com/robfig/cron/v3"
)

// CleanupWorker sweeps out expired refresh tokens and burned-out lead
// credit blocks.
type CleanupWorker struct {
	userRepo   repositories.UserRepository
	creditRepo repositories.CreditRepository
	cron       *cron.Cron
}

func NewCleanupWorker(userRepo repositories.UserRepository, creditRepo repositories.CreditRepository) *CleanupWorker {
	return &CleanupWorker{
		userRepo:   userRepo,
		creditRepo: creditRepo,
		cron:       cron.New(),
	}
}

func (w *CleanupWorker) Start(ctx context.Context) {
	_, _ = w.cron.AddFunc("@daily", w.cleanRefreshTokens)
	_, _ = w.cron.AddFunc("@daily", w.cleanResetTokens)
	_, _ = w.cron.AddFunc("@daily", w.expireLeadCredits)
	w.cron.Start()

	go func() {
		<-ctx.Done()
		w.cron.Stop()
		logger.Info("cleanup worker stopped")
	}()
}

func (w *CleanupWorker) cleanRefreshTokens() {
	removed, err := w.userRepo.CleanExpiredRefreshTokens()
	if err != nil {
		logger.WorkerLog("cleanup", "clean refresh tokens", err)
		return
	}
	if removed > 0 {
		logger.Info("expired refresh tokens removed", "count", removed)
	}
}

func (w *CleanupWorker) cleanResetTokens() {
	cleared, err := w.userRepo.ClearExpiredResetTokens(time.Now())
	if err != nil {
		logger.WorkerLog("cleanup", "clear reset tokens", err)
		return
	}
	if cleared > 0 {
		logger.Info("expired reset tokens cleared", "count", cleared)
	}
}

func (w *CleanupWorker) expireLeadCredits() {
	expired, err := w.creditRepo.ExpireOldCredits(time.Now())
	if err != nil {
		logger.WorkerLog("cleanup", "expire lead credits", err)
		return
	}
	if expired > 0 {
		logger.Info("lead credit blocks expired", "count", expired)
	}
}
