package repositories

import (
	"errors"
	"time"

	"vendinghive_backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrPaymentNotFound = errors.New("payment not found")

type PaymentRepository interface {
	Create(payment *models.PaymentHistory) error
	Update(payment *models.PaymentHistory) error
	FindByID(id string) (*models.PaymentHistory, error)
	FindByTransactionID(transactionID string) (*models.PaymentHistory, error)
	FindByUserID(userID string, limit, offset int) ([]models.PaymentHistory, error)
	CountByUserID(userID string) (int64, error)

	// Admin / stats
	SumCompletedBetween(dateFrom, dateTo time.Time) (decimal.Decimal, error)
	CountByStatus(status models.PaymentStatus) (int64, error)
	FindRecent(limit int) ([]models.PaymentHistory, error)
}

type PaymentRepositoryImpl struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &PaymentRepositoryImpl{db: db}
}

func (r *PaymentRepositoryImpl) Create(payment *models.PaymentHistory) error {
	return r.db.Create(payment).Error
}

func (r *PaymentRepositoryImpl) Update(payment *models.PaymentHistory) error {
	result := r.db.Save(payment)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPaymentNotFound
	}
	return nil
}

func (r *PaymentRepositoryImpl) FindByID(id string) (*models.PaymentHistory, error) {
	var payment models.PaymentHistory
	err := r.db.First(&payment, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentRepositoryImpl) FindByTransactionID(transactionID string) (*models.PaymentHistory, error) {
	var payment models.PaymentHistory
	err := r.db.First(&payment, "transaction_id = ?", transactionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentRepositoryImpl) FindByUserID(userID string, limit, offset int) ([]models.PaymentHistory, error) {
	var payments []models.PaymentHistory
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&payments).Error
	return payments, err
}

func (r *PaymentRepositoryImpl) CountByUserID(userID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.PaymentHistory{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (r *PaymentRepositoryImpl) SumCompletedBetween(dateFrom, dateTo time.Time) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.db.Model(&models.PaymentHistory{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("status = ? AND created_at BETWEEN ? AND ?", models.PaymentStatusCompleted, dateFrom, dateTo).
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

func (r *PaymentRepositoryImpl) CountByStatus(status models.PaymentStatus) (int64, error) {
	var count int64
	err := r.db.Model(&models.PaymentHistory{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}

func (r *PaymentRepositoryImpl) FindRecent(limit int) ([]models.PaymentHistory, error) {
	var payments []models.PaymentHistory
	err := r.db.Order("created_at DESC").Limit(limit).Find(&payments).Error
	return payments, err
}
