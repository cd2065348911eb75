package repositories

import (
	"errors"
	"time"

	"vendinghive_backend/internal/models"

	"gorm.io/gorm"
)

var ErrSearchNotFound = errors.New("location search not found")

type LocationRepository interface {
	Create(search *models.LocationSearch) error
	FindByID(id, userID string) (*models.LocationSearch, error)
	FindByUserID(userID string, limit, offset int) ([]models.LocationSearch, error)
	CountByUserID(userID string) (int64, error)
	CountSearchesBetween(dateFrom, dateTo time.Time) (int64, error)
}

type LocationRepositoryImpl struct {
	db *gorm.DB
}

func NewLocationRepository(db *gorm.DB) LocationRepository {
	return &LocationRepositoryImpl{db: db}
}

func (r *LocationRepositoryImpl) Create(search *models.LocationSearch) error {
	return r.db.Create(search).Error
}

func (r *LocationRepositoryImpl) FindByID(id, userID string) (*models.LocationSearch, error) {
	var search models.LocationSearch
	err := r.db.First(&search, "id = ? AND user_id = ?", id, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSearchNotFound
		}
		return nil, err
	}
	return &search, nil
}

func (r *LocationRepositoryImpl) FindByUserID(userID string, limit, offset int) ([]models.LocationSearch, error) {
	var searches []models.LocationSearch
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&searches).Error
	return searches, err
}

func (r *LocationRepositoryImpl) CountByUserID(userID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.LocationSearch{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (r *LocationRepositoryImpl) CountSearchesBetween(dateFrom, dateTo time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.LocationSearch{}).
		Where("created_at BETWEEN ? AND ?", dateFrom, dateTo).
		Count(&count).Error
	return count, err
}
