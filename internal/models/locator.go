package models

import (
	"gorm.io/datatypes"
)

// CreditSource records which pool a location search consumed.
type CreditSource string

const (
	CreditSourcePlan  CreditSource = "plan_quota"
	CreditSourceAddon CreditSource = "lead_credits"
)

// LocationSearch is the stored result of one locator run.
type LocationSearch struct {
	BaseModel
	UserID       string         `gorm:"not null;index" json:"user_id"`
	ZipCode      string         `gorm:"type:varchar(10);not null" json:"zip_code"`
	RadiusMiles  int            `gorm:"default:5" json:"radius_miles"`
	MachineType  string         `json:"machine_type"`
	ResultCount  int            `gorm:"default:0" json:"result_count"`
	CreditSource CreditSource   `gorm:"type:varchar(20)" json:"credit_source"`
	Results      datatypes.JSON `gorm:"type:jsonb" json:"results,omitempty"`
}
