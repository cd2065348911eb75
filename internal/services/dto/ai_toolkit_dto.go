package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// Lead value estimator. Rates arrive as percentages (30 means 30%).

type LeadValueRequest struct {
	MonthlyRevenueGoal decimal.Decimal `json:"monthly_revenue_goal" validate:"required"`
	RevenuePerMachine  decimal.Decimal `json:"monthly_revenue_per_machine" validate:"required"`
	CommissionRate     decimal.Decimal `json:"commission_rate" validate:"required"`
	SuccessRate        decimal.Decimal `json:"success_rate" validate:"required"`
	CostPerLead        decimal.Decimal `json:"cost_per_lead" validate:"required"`
	Notes              string          `json:"notes" validate:"max=2000"`
}

type LeadValueResponse struct {
	CalculationID           string          `json:"calculation_id"`
	MachinesNeeded          int64           `json:"machines_needed"`
	LeadsNeededMonthly      int64           `json:"leads_needed_monthly"`
	MonthlyLeadCost         decimal.Decimal `json:"total_monthly_lead_cost"`
	NetMonthlyRevenue       decimal.Decimal `json:"net_monthly_revenue"`
	AnnualRevenueProjection decimal.Decimal `json:"annual_revenue_projection"`
	AnnualNetProfit         decimal.Decimal `json:"annual_net_profit"`
	ValuePerLead            decimal.Decimal `json:"value_per_lead"`
	ROIPercent              decimal.Decimal `json:"roi_percentage"`
	PaybackMonths           decimal.Decimal `json:"payback_period_months"`
	BreakEvenLeads          int64           `json:"break_even_leads"`
}

// Snack price calculator

type SnackPriceRequest struct {
	WholesaleCost       decimal.Decimal `json:"wholesale_cost" validate:"required"`
	SalePrice           decimal.Decimal `json:"sale_price" validate:"required"`
	SalesTaxRate        decimal.Decimal `json:"sales_tax_rate"`
	CommissionRate      decimal.Decimal `json:"commission_rate"`
	EstimatedDailyUnits int             `json:"estimated_daily_units" validate:"gte=0"`
	Notes               string          `json:"notes" validate:"max=2000"`
}

type SnackPriceResponse struct {
	CalculationID         string          `json:"calculation_id"`
	TaxPerUnit            decimal.Decimal `json:"tax_per_unit"`
	NetRevenuePerUnit     decimal.Decimal `json:"net_revenue_per_unit"`
	CommissionPerUnit     decimal.Decimal `json:"commission_per_unit"`
	OperatorProfitPerUnit decimal.Decimal `json:"operator_profit_per_unit"`
	MarginPercent         decimal.Decimal `json:"margin_percent"`
	DailyProfit           decimal.Decimal `json:"daily_profit"`
	MonthlyProfit         decimal.Decimal `json:"monthly_profit"`
	BreakEvenUnitsDaily   int64           `json:"break_even_units_daily"`
	BreakEvenDailyRevenue decimal.Decimal `json:"break_even_daily_revenue"`
	DaysToBreakEven       decimal.Decimal `json:"days_to_break_even"`
}

// Script generation

type GenerateScriptRequest struct {
	ScriptType         string `json:"script_type" validate:"required,oneof=cold_call email in_person"`
	TargetLocationName string `json:"target_location_name" validate:"required,max=200"`
	LocationCategory   string `json:"location_category" validate:"max=100"`
	MachineType        string `json:"machine_type" validate:"max=100"`
	ExtraContext       string `json:"extra_context" validate:"max=2000"`
}

type ScriptResponse struct {
	ID                 string    `json:"id"`
	ScriptType         string    `json:"script_type"`
	TargetLocationName string    `json:"target_location_name"`
	Content            string    `json:"content"`
	RegenerationCount  int       `json:"regeneration_count"`
	GeneratedByAI      bool      `json:"generated_by_ai"`
	CreatedAt          time.Time `json:"created_at"`
}

// Jarvis chat

type JarvisChatRequest struct {
	SessionID        string `json:"session_id"`
	Message          string `json:"message" validate:"required,max=4000"`
	ConversationType string `json:"conversation_type" validate:"omitempty,oneof=general business_advice location_strategy product_mix"`
}

type JarvisChatResponse struct {
	SessionID     string `json:"session_id"`
	Response      string `json:"response"`
	GeneratedByAI bool   `json:"generated_by_ai"`
}

type CalculationRecord struct {
	ID                 string      `json:"id"`
	CalculationType    string      `json:"calculation_type"`
	InputParameters    interface{} `json:"input_parameters"`
	CalculationResults interface{} `json:"calculation_results"`
	Notes              string      `json:"notes,omitempty"`
	CreatedAt          time.Time   `json:"created_at"`
}
