package services

import (
	"time"

	"vendinghive_backend/internal/models"
	"vendinghive_backend/internal/repositories"
	"vendinghive_backend/internal/services/dto"
	"vendinghive_backend/pkg/apperrors"
)

type CoreService interface {
	GetCurrentNotifications() ([]dto.NotificationResponse, error)
	CreateTicket(userID string, req *dto.CreateTicketRequest) (*dto.TicketResponse, error)
	GetUserTickets(userID string, limit, offset int) ([]dto.TicketResponse, error)
	UpdateTicketStatus(ticketID string, status models.TicketStatus) (*dto.TicketResponse, error)
}

type CoreServiceImpl struct {
	coreRepo repositories.CoreRepository
}

func NewCoreService(coreRepo repositories.CoreRepository) CoreService {
	return &CoreServiceImpl{coreRepo: coreRepo}
}

func (s *CoreServiceImpl) GetCurrentNotifications() ([]dto.NotificationResponse, error) {
	notifications, err := s.coreRepo.FindCurrentNotifications(time.Now())
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	result := make([]dto.NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		result = append(result, dto.NotificationResponse{
			ID:      n.ID,
			Title:   n.Title,
			Message: n.Message,
			Level:   n.Level,
		})
	}
	return result, nil
}

func (s *CoreServiceImpl) CreateTicket(userID string, req *dto.CreateTicketRequest) (*dto.TicketResponse, error) {
	ticket := &models.SupportTicket{
		UserID:      userID,
		Subject:     req.Subject,
		Description: req.Description,
		Status:      models.TicketStatusOpen,
	}
	if err := s.coreRepo.CreateTicket(ticket); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return ticketToDTO(ticket), nil
}

func (s *CoreServiceImpl) GetUserTickets(userID string, limit, offset int) ([]dto.TicketResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	tickets, err := s.coreRepo.FindTicketsByUserID(userID, limit, offset)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	result := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		result = append(result, *ticketToDTO(&tickets[i]))
	}
	return result, nil
}

func (s *CoreServiceImpl) UpdateTicketStatus(ticketID string, status models.TicketStatus) (*dto.TicketResponse, error) {
	ticket, err := s.coreRepo.FindTicketByID(ticketID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrTicketNotFound) {
			return nil, apperrors.NewNotFoundError("core", "Ticket not found")
		}
		return nil, apperrors.InternalError(err)
	}

	ticket.Status = status
	if status == models.TicketStatusResolved && ticket.ResolvedAt == nil {
		now := time.Now()
		ticket.ResolvedAt = &now
	}

	if err := s.coreRepo.UpdateTicket(ticket); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return ticketToDTO(ticket), nil
}

func ticketToDTO(t *models.SupportTicket) *dto.TicketResponse {
	return &dto.TicketResponse{
		ID:          t.ID,
		Subject:     t.Subject,
		Description: t.Description,
		Status:      string(t.Status),
		ResolvedAt:  t.ResolvedAt,
		CreatedAt:   t.CreatedAt,
	}
}
