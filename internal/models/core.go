package models

import (
	"time"
)

// SystemNotification is an announcement shown to users between
// StartsAt and EndsAt.
type SystemNotification struct {
	BaseModel
	Title    string     `gorm:"not null" json:"title"`
	Message  string     `gorm:"type:text;not null" json:"message"`
	Level    string     `gorm:"type:varchar(20);default:'info'" json:"level"` // info, warning, critical
	StartsAt time.Time  `gorm:"not null" json:"starts_at"`
	EndsAt   *time.Time `json:"ends_at,omitempty"`
	IsActive bool       `gorm:"default:true" json:"is_active"`
}

func (n *SystemNotification) IsCurrent(now time.Time) bool {
	if !n.IsActive || now.Before(n.StartsAt) {
		return false
	}
	if n.EndsAt != nil && now.After(*n.EndsAt) {
		return false
	}
	return true
}

type SupportTicket struct {
	BaseModel
	UserID      string       `gorm:"not null;index" json:"user_id"`
	Subject     string       `gorm:"not null" json:"subject"`
	Description string       `gorm:"type:text;not null" json:"description"`
	Status      TicketStatus `gorm:"type:varchar(20);default:'open';index" json:"status"`
	ResolvedAt  *time.Time   `json:"resolved_at,omitempty"`
}
