package dto

import "time"

type CreateTicketRequest struct {
	Subject     string `json:"subject" validate:"required,max=200"`
	Description string `json:"description" validate:"required,max=5000"`
}

type UpdateTicketRequest struct {
	Status string `json:"status" validate:"required,oneof=open in_progress resolved closed"`
}

type TicketResponse struct {
	ID          string     `json:"id"`
	Subject     string     `json:"subject"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type WeatherResponse struct {
	City        string    `json:"city"`
	Description string    `json:"description"`
	TempC       float64   `json:"temp_c"`
	Humidity    int       `json:"humidity"`
	FetchedAt   time.Time `json:"fetched_at"`
}

type NotificationResponse struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Level   string `json:"level"`
}

type AdminStatsResponse struct {
	TotalUsers          int64            `json:"total_users"`
	NewUsersThisMonth   int64            `json:"new_users_this_month"`
	ActiveUsersToday    int64            `json:"active_users_today"`
	ActiveSubscriptions int64            `json:"active_subscriptions"`
	SubscriptionsByPlan map[string]int64 `json:"subscriptions_by_plan"`
	RevenueThisMonth    string           `json:"revenue_this_month"`
	SearchesThisMonth   int64            `json:"searches_this_month"`
	OpenTickets         int64            `json:"open_tickets"`
}
