package services

import (
	"time"

	"vendinghive_backend/internal/models"
	"vendinghive_backend/internal/repositories"
	"vendinghive_backend/internal/services/dto"
	"vendinghive_backend/pkg/apperrors"
)

type AdminService interface {
	GetStats() (*dto.AdminStatsResponse, error)
	ListUsers(limit, offset int) ([]models.User, int64, error)
	ListSubscriptions(limit, offset int) ([]models.UserSubscription, int64, error)
}

type AdminServiceImpl struct {
	userRepo         repositories.UserRepository
	subscriptionRepo repositories.SubscriptionRepository
	paymentRepo      repositories.PaymentRepository
	locationRepo     repositories.LocationRepository
	coreRepo         repositories.CoreRepository
}

func NewAdminService(
	userRepo repositories.UserRepository,
	subscriptionRepo repositories.SubscriptionRepository,
	paymentRepo repositories.PaymentRepository,
	locationRepo repositories.LocationRepository,
	coreRepo repositories.CoreRepository,
) AdminService {
	return &AdminServiceImpl{
		userRepo:         userRepo,
		subscriptionRepo: subscriptionRepo,
		paymentRepo:      paymentRepo,
		locationRepo:     locationRepo,
		coreRepo:         coreRepo,
	}
}

func (s *AdminServiceImpl) GetStats() (*dto.AdminStatsResponse, error) {
	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	userStats, err := s.userRepo.GetUserStats(monthStart, now)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	dayStats, err := s.userRepo.GetUserStats(dayStart, now)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	activeSubscriptions, err := s.subscriptionRepo.CountActive()
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	byPlan, err := s.subscriptionRepo.CountActiveByPlan()
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	revenue, err := s.paymentRepo.SumCompletedBetween(monthStart, now)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	searches, err := s.locationRepo.CountSearchesBetween(monthStart, now)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	openTickets, err := s.coreRepo.CountTicketsByStatus(models.TicketStatusOpen)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.AdminStatsResponse{
		TotalUsers:          userStats.TotalUsers,
		NewUsersThisMonth:   userStats.NewUsers,
		ActiveUsersToday:    dayStats.ActiveUsers,
		ActiveSubscriptions: activeSubscriptions,
		SubscriptionsByPlan: byPlan,
		RevenueThisMonth:    revenue.StringFixed(2),
		SearchesThisMonth:   searches,
		OpenTickets:         openTickets,
	}, nil
}

func (s *AdminServiceImpl) ListUsers(limit, offset int) ([]models.User, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	users, err := s.userRepo.FindAll(limit, offset)
	if err != nil {
		return nil, 0, apperrors.InternalError(err)
	}
	total, err := s.userRepo.CountAll()
	if err != nil {
		return nil, 0, apperrors.InternalError(err)
	}
	return users, total, nil
}

func (s *AdminServiceImpl) ListSubscriptions(limit, offset int) ([]models.UserSubscription, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	subscriptions, total, err := s.subscriptionRepo.FindAll(limit, offset)
	if err != nil {
		return nil, 0, apperrors.InternalError(err)
	}
	return subscriptions, total, nil
}
