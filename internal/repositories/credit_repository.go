package repositories

import (
	"errors"
	"time"

	"vendinghive_backend/internal/models"

	"gorm.io/gorm"
)

var ErrPackageNotFound = errors.New("lead credit package not found")

type CreditRepository interface {
	// Package operations
	FindActivePackages() ([]models.LeadCreditPackage, error)
	FindPackageByID(id string) (*models.LeadCreditPackage, error)
	CreatePackage(pkg *models.LeadCreditPackage) error

	// Credit ledger operations
	GrantCredits(credit *models.UserLeadCredit) error
	GrantCreditsWithPayment(credit *models.UserLeadCredit, payment *models.PaymentHistory) error
	FindActiveCredits(userID string, now time.Time) ([]models.UserLeadCredit, error)
	TotalRemainingCredits(userID string, now time.Time) (int, error)
	ExpireOldCredits(now time.Time) (int64, error)
}

type CreditRepositoryImpl struct {
	db *gorm.DB
}

func NewCreditRepository(db *gorm.DB) CreditRepository {
	return &CreditRepositoryImpl{db: db}
}

// Package operations

func (r *CreditRepositoryImpl) FindActivePackages() ([]models.LeadCreditPackage, error) {
	var packages []models.LeadCreditPackage
	err := r.db.Where("is_active = ?", true).Order("price ASC").Find(&packages).Error
	return packages, err
}

func (r *CreditRepositoryImpl) FindPackageByID(id string) (*models.LeadCreditPackage, error) {
	var pkg models.LeadCreditPackage
	err := r.db.First(&pkg, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPackageNotFound
		}
		return nil, err
	}
	return &pkg, nil
}

func (r *CreditRepositoryImpl) CreatePackage(pkg *models.LeadCreditPackage) error {
	return r.db.Create(pkg).Error
}

// Credit ledger operations

func (r *CreditRepositoryImpl) GrantCredits(credit *models.UserLeadCredit) error {
	return r.db.Create(credit).Error
}

// GrantCreditsWithPayment records the payment and the credit grant in one
// transaction so a crash between the two cannot leave paid-for credits
// missing from the ledger.
func (r *CreditRepositoryImpl) GrantCreditsWithPayment(credit *models.UserLeadCredit, payment *models.PaymentHistory) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(payment).Error; err != nil {
			return err
		}
		credit.PaymentID = payment.ID
		return tx.Create(credit).Error
	})
}

func (r *CreditRepositoryImpl) FindActiveCredits(userID string, now time.Time) ([]models.UserLeadCredit, error) {
	var credits []models.UserLeadCredit
	err := r.db.Preload("Package").
		Where("user_id = ? AND credits_used < credits_purchased", userID).
		Where("expires_at IS NULL OR expires_at > ?", now).
		Order("expires_at ASC NULLS LAST").
		Find(&credits).Error
	return credits, err
}

func (r *CreditRepositoryImpl) TotalRemainingCredits(userID string, now time.Time) (int, error) {
	var total int64
	err := r.db.Model(&models.UserLeadCredit{}).
		Select("COALESCE(SUM(credits_purchased - credits_used), 0)").
		Where("user_id = ? AND credits_used < credits_purchased", userID).
		Where("expires_at IS NULL OR expires_at > ?", now).
		Scan(&total).Error
	return int(total), err
}

// ExpireOldCredits burns whatever is left on expired blocks so remaining
// totals stay honest without filtering every read.
func (r *CreditRepositoryImpl) ExpireOldCredits(now time.Time) (int64, error) {
	result := r.db.Model(&models.UserLeadCredit{}).
		Where("expires_at IS NOT NULL AND expires_at <= ? AND credits_used < credits_purchased", now).
		Update("credits_used", gorm.Expr("credits_purchased"))
	return result.RowsAffected, result.Error
}
