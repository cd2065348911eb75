package repositories

import (
	"errors"

	"vendinghive_backend/internal/models"

	"gorm.io/gorm"
)

var ErrScriptNotFound = errors.New("script not found")

type AIToolkitRepository interface {
	// Script operations
	CreateScript(script *models.GeneratedScript) error
	UpdateScript(script *models.GeneratedScript) error
	FindScriptByID(id string) (*models.GeneratedScript, error)
	FindScriptsByUserID(userID string, limit, offset int) ([]models.GeneratedScript, error)
	CountScriptsByUserID(userID string) (int64, error)
	DeleteScript(id, userID string) error

	// Jarvis conversation operations
	CreateConversation(conv *models.JarvisConversation) error
	FindConversationsBySession(userID, sessionID string, limit int) ([]models.JarvisConversation, error)
	FindRecentSessions(userID string, limit int) ([]string, error)

	// Business calculation operations
	CreateCalculation(calc *models.BusinessCalculation) error
	FindCalculationsByUserID(userID string, calcType models.CalculationType, limit, offset int) ([]models.BusinessCalculation, error)
}

type AIToolkitRepositoryImpl struct {
	db *gorm.DB
}

func NewAIToolkitRepository(db *gorm.DB) AIToolkitRepository {
	return &AIToolkitRepositoryImpl{db: db}
}

// Script operations

func (r *AIToolkitRepositoryImpl) CreateScript(script *models.GeneratedScript) error {
	return r.db.Create(script).Error
}

func (r *AIToolkitRepositoryImpl) UpdateScript(script *models.GeneratedScript) error {
	result := r.db.Save(script)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrScriptNotFound
	}
	return nil
}

func (r *AIToolkitRepositoryImpl) FindScriptByID(id string) (*models.GeneratedScript, error) {
	var script models.GeneratedScript
	err := r.db.First(&script, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScriptNotFound
		}
		return nil, err
	}
	return &script, nil
}

func (r *AIToolkitRepositoryImpl) FindScriptsByUserID(userID string, limit, offset int) ([]models.GeneratedScript, error) {
	var scripts []models.GeneratedScript
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&scripts).Error
	return scripts, err
}

func (r *AIToolkitRepositoryImpl) CountScriptsByUserID(userID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.GeneratedScript{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (r *AIToolkitRepositoryImpl) DeleteScript(id, userID string) error {
	result := r.db.Delete(&models.GeneratedScript{}, "id = ? AND user_id = ?", id, userID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrScriptNotFound
	}
	return nil
}

// Jarvis conversation operations

func (r *AIToolkitRepositoryImpl) CreateConversation(conv *models.JarvisConversation) error {
	return r.db.Create(conv).Error
}

func (r *AIToolkitRepositoryImpl) FindConversationsBySession(userID, sessionID string, limit int) ([]models.JarvisConversation, error) {
	var convs []models.JarvisConversation
	err := r.db.Where("user_id = ? AND session_id = ?", userID, sessionID).
		Order("created_at ASC").
		Limit(limit).
		Find(&convs).Error
	return convs, err
}

func (r *AIToolkitRepositoryImpl) FindRecentSessions(userID string, limit int) ([]string, error) {
	var sessions []string
	err := r.db.Model(&models.JarvisConversation{}).
		Select("session_id").
		Where("user_id = ?", userID).
		Group("session_id").
		Order("MAX(created_at) DESC").
		Limit(limit).
		Pluck("session_id", &sessions).Error
	return sessions, err
}

// Business calculation operations

func (r *AIToolkitRepositoryImpl) CreateCalculation(calc *models.BusinessCalculation) error {
	return r.db.Create(calc).Error
}

func (r *AIToolkitRepositoryImpl) FindCalculationsByUserID(userID string, calcType models.CalculationType, limit, offset int) ([]models.BusinessCalculation, error) {
	var calcs []models.BusinessCalculation
	query := r.db.Where("user_id = ?", userID)
	if calcType != "" {
		query = query.Where("calculation_type = ?", calcType)
	}
	err := query.Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&calcs).Error
	return calcs, err
}
