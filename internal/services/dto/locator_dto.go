package dto

import "time"

type LocationSearchRequest struct {
	ZipCode     string `json:"zip_code" validate:"required,len=5,numeric"`
	RadiusMiles int    `json:"radius_miles" validate:"omitempty,gt=0,max=50"`
	MachineType string `json:"machine_type" validate:"max=100"`
}

type LocationResult struct {
	Name          string  `json:"name"`
	Category      string  `json:"category"`
	Address       string  `json:"address"`
	ZipCode       string  `json:"zip_code"`
	DistanceMiles float64 `json:"distance_miles"`
	FootTraffic   string  `json:"foot_traffic"`
	Phone         string  `json:"phone,omitempty"`
}

type LocationSearchResponse struct {
	SearchID     string           `json:"search_id"`
	ZipCode      string           `json:"zip_code"`
	RadiusMiles  int              `json:"radius_miles"`
	CreditSource string           `json:"credit_source"`
	ResultCount  int              `json:"result_count"`
	Results      []LocationResult `json:"results"`
	CreatedAt    time.Time        `json:"created_at"`
}

type SearchHistoryResponse struct {
	Searches []SearchHistoryEntry `json:"searches"`
	Total    int64                `json:"total"`
}

type SearchHistoryEntry struct {
	ID           string    `json:"id"`
	ZipCode      string    `json:"zip_code"`
	RadiusMiles  int       `json:"radius_miles"`
	MachineType  string    `json:"machine_type,omitempty"`
	ResultCount  int       `json:"result_count"`
	CreditSource string    `json:"credit_source"`
	CreatedAt    time.Time `json:"created_at"`
}
