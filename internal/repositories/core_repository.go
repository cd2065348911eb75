package repositories

import (
	"errors"
	"time"

	"vendinghive_backend/internal/models"

	"gorm.io/gorm"
)

var ErrTicketNotFound = errors.New("support ticket not found")

type CoreRepository interface {
	// System notifications
	CreateNotification(n *models.SystemNotification) error
	FindCurrentNotifications(now time.Time) ([]models.SystemNotification, error)

	// Support tickets
	CreateTicket(t *models.SupportTicket) error
	UpdateTicket(t *models.SupportTicket) error
	FindTicketByID(id string) (*models.SupportTicket, error)
	FindTicketsByUserID(userID string, limit, offset int) ([]models.SupportTicket, error)
	FindTicketsByStatus(status models.TicketStatus, limit, offset int) ([]models.SupportTicket, error)
	CountTicketsByStatus(status models.TicketStatus) (int64, error)
}

type CoreRepositoryImpl struct {
	db *gorm.DB
}

func NewCoreRepository(db *gorm.DB) CoreRepository {
	return &CoreRepositoryImpl{db: db}
}

// System notifications

func (r *CoreRepositoryImpl) CreateNotification(n *models.SystemNotification) error {
	return r.db.Create(n).Error
}

func (r *CoreRepositoryImpl) FindCurrentNotifications(now time.Time) ([]models.SystemNotification, error) {
	var notifications []models.SystemNotification
	err := r.db.
		Where("is_active = ?", true).
		Where("starts_at IS NULL OR starts_at <= ?", now).
		Where("ends_at IS NULL OR ends_at > ?", now).
		Order("created_at DESC").
		Find(&notifications).Error
	return notifications, err
}

// Support tickets

func (r *CoreRepositoryImpl) CreateTicket(t *models.SupportTicket) error {
	return r.db.Create(t).Error
}

func (r *CoreRepositoryImpl) UpdateTicket(t *models.SupportTicket) error {
	result := r.db.Save(t)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTicketNotFound
	}
	return nil
}

func (r *CoreRepositoryImpl) FindTicketByID(id string) (*models.SupportTicket, error) {
	var ticket models.SupportTicket
	err := r.db.First(&ticket, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}
	return &ticket, nil
}

func (r *CoreRepositoryImpl) FindTicketsByUserID(userID string, limit, offset int) ([]models.SupportTicket, error) {
	var tickets []models.SupportTicket
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&tickets).Error
	return tickets, err
}

func (r *CoreRepositoryImpl) FindTicketsByStatus(status models.TicketStatus, limit, offset int) ([]models.SupportTicket, error) {
	var tickets []models.SupportTicket
	err := r.db.Where("status = ?", status).
		Order("created_at ASC").
		Limit(limit).Offset(offset).
		Find(&tickets).Error
	return tickets, err
}

func (r *CoreRepositoryImpl) CountTicketsByStatus(status models.TicketStatus) (int64, error) {
	var count int64
	err := r.db.Model(&models.SupportTicket{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}
