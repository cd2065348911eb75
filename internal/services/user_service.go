package services

import (
	"time"

	"vendinghive_backend/internal/models"
	"vendinghive_backend/internal/repositories"
	"vendinghive_backend/internal/services/dto"
	"vendinghive_backend/pkg/apperrors"
)

type UserService interface {
	GetProfile(userID string) (*models.User, error)
	UpdateProfile(userID string, req *dto.UpdateProfileRequest) (*models.User, error)
	DeleteAccount(userID string) error
	TouchActivity(userID string)
}

type UserServiceImpl struct {
	userRepo         repositories.UserRepository
	subscriptionRepo repositories.SubscriptionRepository
}

func NewUserService(
	userRepo repositories.UserRepository,
	subscriptionRepo repositories.SubscriptionRepository,
) UserService {
	return &UserServiceImpl{
		userRepo:         userRepo,
		subscriptionRepo: subscriptionRepo,
	}
}

func (s *UserServiceImpl) GetProfile(userID string) (*models.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.NewNotFoundError("user", "User not found")
		}
		return nil, apperrors.InternalError(err)
	}
	return user, nil
}

func (s *UserServiceImpl) UpdateProfile(userID string, req *dto.UpdateProfileRequest) (*models.User, error) {
	user, err := s.GetProfile(userID)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.CompanyName != nil {
		user.CompanyName = *req.CompanyName
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return user, nil
}

// DeleteAccount anonymizes the user and deactivates their subscription.
// Payment history stays intact for bookkeeping.
func (s *UserServiceImpl) DeleteAccount(userID string) error {
	user, err := s.GetProfile(userID)
	if err != nil {
		return err
	}

	if sub, err := s.subscriptionRepo.FindByUserID(userID); err == nil && sub.IsActive {
		if err := s.subscriptionRepo.DeactivateSubscription(sub.ID); err != nil {
			return apperrors.InternalError(err)
		}
	}

	user.Anonymize(time.Now())
	if err := s.userRepo.Update(user); err != nil {
		return apperrors.InternalError(err)
	}

	return s.userRepo.DeleteUserRefreshTokens(userID)
}

// TouchActivity best-effort updates last_activity_at.
func (s *UserServiceImpl) TouchActivity(userID string) {
	_ = s.userRepo.UpdateLastActivity(userID)
}
