package models

import (
	"gorm.io/datatypes"
)

// GeneratedScript stores one generated sales script along with the
// inputs that produced it.
type GeneratedScript struct {
	BaseModel
	UserID             string         `gorm:"not null;index" json:"user_id"`
	ScriptType         ScriptType     `gorm:"type:varchar(20);not null" json:"script_type"`
	TargetLocationName string         `gorm:"not null" json:"target_location_name"`
	LocationCategory   string         `json:"location_category"`
	MachineType        string         `json:"machine_type"`
	Content            string         `gorm:"type:text;not null" json:"content"`
	RegenerationCount  int            `gorm:"default:0" json:"regeneration_count"`
	GeneratedByAI      bool           `gorm:"default:false" json:"generated_by_ai"`
	Metadata           datatypes.JSON `gorm:"type:jsonb" json:"metadata,omitempty"`
}

// JarvisConversation is one message/response turn in a chat session.
type JarvisConversation struct {
	BaseModel
	UserID           string         `gorm:"not null;index" json:"user_id"`
	SessionID        string         `gorm:"not null;index" json:"session_id"`
	ConversationType string         `gorm:"type:varchar(30);default:'general'" json:"conversation_type"`
	Message          string         `gorm:"type:text;not null" json:"message"`
	Response         string         `gorm:"type:text;not null" json:"response"`
	GeneratedByAI    bool           `gorm:"default:false" json:"generated_by_ai"`
	Metadata         datatypes.JSON `gorm:"type:jsonb" json:"metadata,omitempty"`
}

// BusinessCalculation is the append-only audit row for calculator
// invocations. Only Notes may change after creation.
type BusinessCalculation struct {
	BaseModel
	UserID             string          `gorm:"not null;index" json:"user_id"`
	CalculationType    CalculationType `gorm:"type:varchar(40);not null;index" json:"calculation_type"`
	InputParameters    datatypes.JSON  `gorm:"type:jsonb;not null" json:"input_parameters"`
	CalculationResults datatypes.JSON  `gorm:"type:jsonb;not null" json:"calculation_results"`
	Notes              string          `gorm:"type:text" json:"notes"`
}
