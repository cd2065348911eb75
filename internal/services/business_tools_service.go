package services

import (
	"encoding/json"

	"vendinghive_backend/internal/models"
	"vendinghive_backend/internal/repositories"
	"vendinghive_backend/internal/services/dto"
	"vendinghive_backend/pkg/apperrors"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

var (
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)

	// Estimated daily fixed costs backing the break-even analysis.
	fixedDailyCosts = decimal.NewFromFloat(5.00)

	// Sentinel for a break-even that is never reached.
	neverBreaksEven = decimal.NewFromInt(999)
)

type BusinessToolsService interface {
	EstimateLeadValue(userID string, req *dto.LeadValueRequest) (*dto.LeadValueResponse, error)
	CalculateSnackPrice(userID string, req *dto.SnackPriceRequest) (*dto.SnackPriceResponse, error)
	GetCalculationHistory(userID string, calcType string, limit, offset int) ([]dto.CalculationRecord, error)
}

type BusinessToolsServiceImpl struct {
	userRepo    repositories.UserRepository
	toolkitRepo repositories.AIToolkitRepository
}

func NewBusinessToolsService(
	userRepo repositories.UserRepository,
	toolkitRepo repositories.AIToolkitRepository,
) BusinessToolsService {
	return &BusinessToolsServiceImpl{
		userRepo:    userRepo,
		toolkitRepo: toolkitRepo,
	}
}

// ensureAccess gates the AI Business Tools behind a paid plan. Any
// active paid subscription qualifies; the free plan does not.
func (s *BusinessToolsServiceImpl) ensureAccess(userID string) error {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return apperrors.InternalError(err)
	}

	sub := user.ActiveSubscription()
	if sub == nil || sub.Plan.IsFree() {
		return apperrors.ErrBusinessToolsAccess
	}
	return nil
}

// EstimateLeadValue projects how many machines and leads a monthly
// revenue goal requires and what each lead is worth against it. All
// money math is decimal; whole-unit quantities round half up so the
// plan never calls for a fractional machine.
func (s *BusinessToolsServiceImpl) EstimateLeadValue(userID string, req *dto.LeadValueRequest) (*dto.LeadValueResponse, error) {
	if err := s.ensureAccess(userID); err != nil {
		return nil, err
	}

	if !req.MonthlyRevenueGoal.IsPositive() {
		return nil, apperrors.NewBadRequestError("monthly_revenue_goal must be positive")
	}
	if !req.RevenuePerMachine.IsPositive() {
		return nil, apperrors.NewBadRequestError("monthly_revenue_per_machine must be positive")
	}
	if !req.CommissionRate.IsPositive() || req.CommissionRate.GreaterThan(hundred) {
		return nil, apperrors.NewBadRequestError("commission_rate must be a percentage between 0 and 100")
	}
	if !req.SuccessRate.IsPositive() || req.SuccessRate.GreaterThan(hundred) {
		return nil, apperrors.NewBadRequestError("success_rate must be a percentage between 0 and 100")
	}
	if req.CostPerLead.IsNegative() {
		return nil, apperrors.NewBadRequestError("cost_per_lead cannot be negative")
	}

	commissionRate := req.CommissionRate.Div(hundred)
	successRate := req.SuccessRate.Div(hundred)

	revenuePerPlacement := req.RevenuePerMachine.Mul(commissionRate)
	machinesNeeded := req.MonthlyRevenueGoal.Div(revenuePerPlacement).Round(0)
	leadsNeeded := machinesNeeded.Div(successRate).Round(0)

	monthlyLeadCost := leadsNeeded.Mul(req.CostPerLead)
	netMonthlyRevenue := req.MonthlyRevenueGoal.Sub(monthlyLeadCost)

	roi := decimal.Zero
	if monthlyLeadCost.IsPositive() {
		roi = netMonthlyRevenue.Div(monthlyLeadCost).Mul(hundred).Round(1)
	}

	payback := neverBreaksEven
	if netMonthlyRevenue.IsPositive() && monthlyLeadCost.IsPositive() {
		payback = monthlyLeadCost.Div(netMonthlyRevenue).Round(1)
	}

	valuePerLead := decimal.Zero
	if leadsNeeded.IsPositive() {
		valuePerLead = req.MonthlyRevenueGoal.Div(leadsNeeded).Round(2)
	}

	breakEvenLeads := int64(0)
	if req.CostPerLead.IsPositive() {
		breakEvenLeads = monthlyLeadCost.Div(req.CostPerLead).IntPart()
	}

	annualRevenue := req.MonthlyRevenueGoal.Mul(twelve)
	annualNetProfit := annualRevenue.Sub(monthlyLeadCost.Mul(twelve))

	resp := &dto.LeadValueResponse{
		MachinesNeeded:          machinesNeeded.IntPart(),
		LeadsNeededMonthly:      leadsNeeded.IntPart(),
		MonthlyLeadCost:         monthlyLeadCost.Round(2),
		NetMonthlyRevenue:       netMonthlyRevenue.Round(2),
		AnnualRevenueProjection: annualRevenue.Round(2),
		AnnualNetProfit:         annualNetProfit.Round(2),
		ValuePerLead:            valuePerLead,
		ROIPercent:              roi,
		PaybackMonths:           payback,
		BreakEvenLeads:          breakEvenLeads,
	}

	calc, err := s.persistCalculation(userID, models.CalculationLeadValue, req, resp, req.Notes)
	if err != nil {
		return nil, err
	}
	resp.CalculationID = calc.ID
	return resp, nil
}

// CalculateSnackPrice breaks one vend into tax, commission and profit,
// then projects daily and monthly profit on the flat 30-day month.
func (s *BusinessToolsServiceImpl) CalculateSnackPrice(userID string, req *dto.SnackPriceRequest) (*dto.SnackPriceResponse, error) {
	if err := s.ensureAccess(userID); err != nil {
		return nil, err
	}

	if !req.SalePrice.IsPositive() {
		return nil, apperrors.NewBadRequestError("sale_price must be positive")
	}
	if req.WholesaleCost.IsNegative() {
		return nil, apperrors.NewBadRequestError("wholesale_cost cannot be negative")
	}
	if req.SalesTaxRate.IsNegative() || req.SalesTaxRate.GreaterThan(decimal.NewFromInt(1)) {
		return nil, apperrors.NewBadRequestError("sales_tax_rate must be between 0 and 1")
	}
	if req.CommissionRate.IsNegative() || req.CommissionRate.GreaterThan(decimal.NewFromInt(1)) {
		return nil, apperrors.NewBadRequestError("commission_rate must be between 0 and 1")
	}

	taxPerUnit := req.SalePrice.Mul(req.SalesTaxRate).Round(2)
	netRevenue := req.SalePrice.Sub(taxPerUnit)
	commission := netRevenue.Mul(req.CommissionRate).Round(2)
	operatorProfit := netRevenue.Sub(req.WholesaleCost).Sub(commission)

	margin := decimal.Zero
	if req.SalePrice.IsPositive() {
		margin = operatorProfit.Div(req.SalePrice).Mul(hundred).Round(2)
	}

	dailyProfit := operatorProfit.Mul(decimal.NewFromInt(int64(req.EstimatedDailyUnits))).Round(2)
	monthlyProfit := dailyProfit.Mul(decimal.NewFromInt(models.BillingPeriodDays)).Round(2)

	// Break-even against the estimated daily fixed costs. Units round
	// half up; a vend that loses money never breaks even.
	breakEvenUnits := neverBreaksEven
	if operatorProfit.IsPositive() {
		breakEvenUnits = fixedDailyCosts.Div(operatorProfit).Round(0)
	}
	breakEvenRevenue := breakEvenUnits.Mul(req.SalePrice).Round(2)
	daysToBreakEven := neverBreaksEven
	if dailyProfit.IsPositive() {
		daysToBreakEven = fixedDailyCosts.Div(dailyProfit).Round(1)
	}

	resp := &dto.SnackPriceResponse{
		TaxPerUnit:            taxPerUnit,
		NetRevenuePerUnit:     netRevenue,
		CommissionPerUnit:     commission,
		OperatorProfitPerUnit: operatorProfit,
		MarginPercent:         margin,
		DailyProfit:           dailyProfit,
		MonthlyProfit:         monthlyProfit,
		BreakEvenUnitsDaily:   breakEvenUnits.IntPart(),
		BreakEvenDailyRevenue: breakEvenRevenue,
		DaysToBreakEven:       daysToBreakEven,
	}

	calc, err := s.persistCalculation(userID, models.CalculationSnackPricing, req, resp, req.Notes)
	if err != nil {
		return nil, err
	}
	resp.CalculationID = calc.ID
	return resp, nil
}

func (s *BusinessToolsServiceImpl) GetCalculationHistory(userID string, calcType string, limit, offset int) ([]dto.CalculationRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	calcs, err := s.toolkitRepo.FindCalculationsByUserID(userID, models.CalculationType(calcType), limit, offset)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	records := make([]dto.CalculationRecord, 0, len(calcs))
	for _, c := range calcs {
		var input, results interface{}
		_ = json.Unmarshal(c.InputParameters, &input)
		_ = json.Unmarshal(c.CalculationResults, &results)
		records = append(records, dto.CalculationRecord{
			ID:                 c.ID,
			CalculationType:    string(c.CalculationType),
			InputParameters:    input,
			CalculationResults: results,
			Notes:              c.Notes,
			CreatedAt:          c.CreatedAt,
		})
	}
	return records, nil
}

func (s *BusinessToolsServiceImpl) persistCalculation(userID string, calcType models.CalculationType, input, results interface{}, notes string) (*models.BusinessCalculation, error) {
	inputJSON, err := json.Marshal(input)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	resultsJSON, err := json.Marshal(results)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	calc := &models.BusinessCalculation{
		UserID:             userID,
		CalculationType:    calcType,
		InputParameters:    datatypes.JSON(inputJSON),
		CalculationResults: datatypes.JSON(resultsJSON),
		Notes:              notes,
	}
	if err := s.toolkitRepo.CreateCalculation(calc); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return calc, nil
}
