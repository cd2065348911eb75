package models

type UserRole string
type PlanName string
type PaymentStatus string
type PaymentGateway string
type RequestStatus string
type CancellationReason string
type TicketStatus string
type ScriptType string
type CalculationType string

const (
	UserRoleOperator UserRole = "operator"
	UserRoleAdmin    UserRole = "admin"

	PlanFree         PlanName = "FREE"
	PlanStarter      PlanName = "STARTER"
	PlanPro          PlanName = "PRO"
	PlanElite        PlanName = "ELITE"
	PlanProfessional PlanName = "PROFESSIONAL"

	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusCancelled PaymentStatus = "cancelled"
	PaymentStatusRefunded  PaymentStatus = "refunded"

	GatewayStripe PaymentGateway = "stripe"
	GatewayPayPal PaymentGateway = "paypal"
	GatewayManual PaymentGateway = "manual"

	RequestStatusPending   RequestStatus = "pending"
	RequestStatusApproved  RequestStatus = "approved"
	RequestStatusCompleted RequestStatus = "completed"
	RequestStatusCancelled RequestStatus = "cancelled"

	ReasonTooExpensive      CancellationReason = "too_expensive"
	ReasonNotEnoughFeatures CancellationReason = "not_enough_features"
	ReasonTechnicalIssues   CancellationReason = "technical_issues"
	ReasonSwitchingService  CancellationReason = "switching_service"
	ReasonBusinessClosure   CancellationReason = "business_closure"
	ReasonOther             CancellationReason = "other"

	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"

	ScriptTypeColdCall ScriptType = "cold_call"
	ScriptTypeEmail    ScriptType = "email"
	ScriptTypeInPerson ScriptType = "in_person"

	CalculationLeadValue    CalculationType = "lead_value_estimator"
	CalculationSnackPricing CalculationType = "snack_price_calculator"
)
