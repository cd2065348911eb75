package services

import (
	"context"
	"fmt"
	"time"

	"vendinghive_backend/internal/email"
	"vendinghive_backend/internal/models"
	"vendinghive_backend/internal/repositories"
	"vendinghive_backend/internal/services/dto"
	"vendinghive_backend/internal/services/payment"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// The fakes embed the repository interfaces so only the methods a test
// exercises need an implementation; calling anything else panics and
// points at the missing stub.

type fakeUserRepo struct {
	repositories.UserRepository
	users   map[string]*models.User // keyed by both ID and email
	updated []*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: map[string]*models.User{}}
	for _, u := range users {
		repo.users[u.ID] = u
		repo.users[u.Email] = u
	}
	return repo
}

func (f *fakeUserRepo) FindByID(id string) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, repositories.ErrUserNotFound
}

func (f *fakeUserRepo) FindByEmail(email string) (*models.User, error) {
	if u, ok := f.users[email]; ok {
		return u, nil
	}
	return nil, repositories.ErrUserNotFound
}

func (f *fakeUserRepo) Update(user *models.User) error {
	f.updated = append(f.updated, user)
	return nil
}

type fakeSubscriptionRepo struct {
	repositories.SubscriptionRepository

	plans map[string]*models.SubscriptionPlan
	sub   *models.UserSubscription

	activations      []activation
	deactivated      []string
	usageResets      []string
	updated          []*models.UserSubscription
	upgradeRequests  []*models.SubscriptionUpgradeRequest
	appliedUpgrades  []string
	pendingUpgrade   *models.SubscriptionUpgradeRequest
	cancellations    []*models.SubscriptionCancellationRequest
	processedCancels []string

	consumeSource models.CreditSource
	consumeErr    error
	consumed      int
}

type activation struct {
	userID, planID, stripeSubID string
	periodDays                  int
}

func newFakeSubscriptionRepo(plans ...*models.SubscriptionPlan) *fakeSubscriptionRepo {
	repo := &fakeSubscriptionRepo{plans: map[string]*models.SubscriptionPlan{}}
	for _, p := range plans {
		repo.plans[p.ID] = p
	}
	return repo
}

func (f *fakeSubscriptionRepo) FindPlanByID(id string) (*models.SubscriptionPlan, error) {
	if p, ok := f.plans[id]; ok {
		return p, nil
	}
	return nil, repositories.ErrPlanNotFound
}

func (f *fakeSubscriptionRepo) FindByUserID(userID string) (*models.UserSubscription, error) {
	if f.sub == nil {
		return nil, repositories.ErrSubscriptionNotFound
	}
	return f.sub, nil
}

func (f *fakeSubscriptionRepo) FindByStripeSubscriptionID(stripeSubID string) (*models.UserSubscription, error) {
	if f.sub != nil && f.sub.StripeSubscriptionID == stripeSubID {
		return f.sub, nil
	}
	return nil, repositories.ErrSubscriptionNotFound
}

func (f *fakeSubscriptionRepo) ActivateSubscription(userID, planID, stripeSubID string, periodDays int) (*models.UserSubscription, error) {
	f.activations = append(f.activations, activation{userID, planID, stripeSubID, periodDays})

	plan := f.plans[planID]
	end := time.Now().AddDate(0, 0, periodDays)
	f.sub = &models.UserSubscription{
		BaseModel:            models.BaseModel{ID: fmt.Sprintf("sub-%d", len(f.activations))},
		UserID:               userID,
		PlanID:               planID,
		StartDate:            time.Now(),
		EndDate:              &end,
		IsActive:             true,
		AutoRenew:            true,
		StripeSubscriptionID: stripeSubID,
	}
	if plan != nil {
		f.sub.Plan = *plan
	}
	return f.sub, nil
}

func (f *fakeSubscriptionRepo) DeactivateSubscription(subscriptionID string) error {
	f.deactivated = append(f.deactivated, subscriptionID)
	return nil
}

func (f *fakeSubscriptionRepo) ResetMonthlyUsage(userID string) error {
	f.usageResets = append(f.usageResets, userID)
	if f.sub != nil && f.sub.UserID == userID {
		f.sub.SearchesUsedThisPeriod = 0
	}
	return nil
}

func (f *fakeSubscriptionRepo) Update(sub *models.UserSubscription) error {
	f.updated = append(f.updated, sub)
	return nil
}

func (f *fakeSubscriptionRepo) CreateUpgradeRequest(req *models.SubscriptionUpgradeRequest) error {
	req.ID = fmt.Sprintf("upg-%d", len(f.upgradeRequests)+1)
	f.upgradeRequests = append(f.upgradeRequests, req)
	return nil
}

func (f *fakeSubscriptionRepo) FindPendingUpgradeByUserID(userID string) (*models.SubscriptionUpgradeRequest, error) {
	if f.pendingUpgrade == nil {
		return nil, repositories.ErrRequestNotFound
	}
	return f.pendingUpgrade, nil
}

func (f *fakeSubscriptionRepo) ApplyUpgrade(requestID string) error {
	f.appliedUpgrades = append(f.appliedUpgrades, requestID)
	return nil
}

func (f *fakeSubscriptionRepo) CreateCancellationRequest(req *models.SubscriptionCancellationRequest) error {
	req.ID = fmt.Sprintf("cnl-%d", len(f.cancellations)+1)
	f.cancellations = append(f.cancellations, req)
	return nil
}

func (f *fakeSubscriptionRepo) MarkCancellationProcessed(requestID string) error {
	f.processedCancels = append(f.processedCancels, requestID)
	return nil
}

func (f *fakeSubscriptionRepo) ConsumeSearch(userID string) (models.CreditSource, error) {
	if f.consumeErr != nil {
		return "", f.consumeErr
	}
	f.consumed++
	return f.consumeSource, nil
}

type fakePaymentRepo struct {
	repositories.PaymentRepository
	created []*models.PaymentHistory
}

// Create mirrors the uniqueIndex on transaction_id.
func (f *fakePaymentRepo) Create(payment *models.PaymentHistory) error {
	for _, p := range f.created {
		if p.TransactionID == payment.TransactionID {
			return gorm.ErrDuplicatedKey
		}
	}
	payment.ID = fmt.Sprintf("pay-%d", len(f.created)+1)
	f.created = append(f.created, payment)
	return nil
}

func (f *fakePaymentRepo) FindByUserID(userID string, limit, offset int) ([]models.PaymentHistory, error) {
	out := make([]models.PaymentHistory, 0, len(f.created))
	for _, p := range f.created {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePaymentRepo) CountByUserID(userID string) (int64, error) {
	var n int64
	for _, p := range f.created {
		if p.UserID == userID {
			n++
		}
	}
	return n, nil
}

type fakeCreditRepo struct {
	repositories.CreditRepository
	packages       map[string]*models.LeadCreditPackage
	granted        []*models.UserLeadCredit
	totalRemaining int
}

func newFakeCreditRepo(packages ...*models.LeadCreditPackage) *fakeCreditRepo {
	repo := &fakeCreditRepo{packages: map[string]*models.LeadCreditPackage{}}
	for _, p := range packages {
		repo.packages[p.ID] = p
	}
	return repo
}

func (f *fakeCreditRepo) FindPackageByID(id string) (*models.LeadCreditPackage, error) {
	if p, ok := f.packages[id]; ok {
		return p, nil
	}
	return nil, repositories.ErrPackageNotFound
}

func (f *fakeCreditRepo) GrantCreditsWithPayment(credit *models.UserLeadCredit, payment *models.PaymentHistory) error {
	payment.ID = fmt.Sprintf("pay-credit-%d", len(f.granted)+1)
	credit.PaymentID = payment.ID
	f.granted = append(f.granted, credit)
	return nil
}

func (f *fakeCreditRepo) TotalRemainingCredits(userID string, now time.Time) (int, error) {
	return f.totalRemaining, nil
}

type fakeToolkitRepo struct {
	repositories.AIToolkitRepository
	calculations  []*models.BusinessCalculation
	scripts       []*models.GeneratedScript
	conversations []*models.JarvisConversation
	scriptCount   int64
}

func (f *fakeToolkitRepo) CreateCalculation(calc *models.BusinessCalculation) error {
	calc.ID = fmt.Sprintf("calc-%d", len(f.calculations)+1)
	f.calculations = append(f.calculations, calc)
	return nil
}

func (f *fakeToolkitRepo) CreateScript(script *models.GeneratedScript) error {
	script.ID = fmt.Sprintf("script-%d", len(f.scripts)+1)
	f.scripts = append(f.scripts, script)
	return nil
}

func (f *fakeToolkitRepo) CountScriptsByUserID(userID string) (int64, error) {
	return f.scriptCount, nil
}

func (f *fakeToolkitRepo) CreateConversation(conv *models.JarvisConversation) error {
	conv.ID = fmt.Sprintf("conv-%d", len(f.conversations)+1)
	f.conversations = append(f.conversations, conv)
	return nil
}

func (f *fakeToolkitRepo) FindConversationsBySession(userID, sessionID string, limit int) ([]models.JarvisConversation, error) {
	out := make([]models.JarvisConversation, 0, len(f.conversations))
	for _, c := range f.conversations {
		if c.UserID == userID && c.SessionID == sessionID {
			out = append(out, *c)
		}
	}
	return out, nil
}

type fakeLocationRepo struct {
	repositories.LocationRepository
	searches []*models.LocationSearch
}

func (f *fakeLocationRepo) Create(search *models.LocationSearch) error {
	search.ID = fmt.Sprintf("search-%d", len(f.searches)+1)
	f.searches = append(f.searches, search)
	return nil
}

// fakeGateway records billing calls and fails on demand.
type fakeGateway struct {
	customers     []string
	attached      []string
	subscriptions []string
	charges       []fakeCharge
	cancelled     []string

	subscribeErr error
	chargeErr    error
	cancelErr    error
	chargeStatus string // defaults to "succeeded"
}

type fakeCharge struct {
	customerID      string
	paymentMethodID string
	amount          decimal.Decimal
}

func (f *fakeGateway) CreateCustomer(email, userID string) (*payment.Customer, error) {
	id := fmt.Sprintf("cus_%d", len(f.customers)+1)
	f.customers = append(f.customers, id)
	return &payment.Customer{ID: id, Email: email}, nil
}

func (f *fakeGateway) AttachPaymentMethod(customerID, paymentMethodID string) error {
	f.attached = append(f.attached, paymentMethodID)
	return nil
}

func (f *fakeGateway) CreateSubscription(customerID, planName string, monthlyPrice decimal.Decimal, currency string) (*payment.Subscription, error) {
	if f.subscribeErr != nil {
		return nil, f.subscribeErr
	}
	id := fmt.Sprintf("sub_gw_%d", len(f.subscriptions)+1)
	f.subscriptions = append(f.subscriptions, id)
	return &payment.Subscription{ID: id, Status: "active"}, nil
}

func (f *fakeGateway) CancelSubscription(subscriptionID string, immediately bool) error {
	if f.cancelErr != nil {
		return f.cancelErr
	}
	f.cancelled = append(f.cancelled, subscriptionID)
	return nil
}

func (f *fakeGateway) Charge(customerID, paymentMethodID string, amount decimal.Decimal, currency, description string) (*payment.ChargeResult, error) {
	if f.chargeErr != nil {
		return nil, f.chargeErr
	}
	f.charges = append(f.charges, fakeCharge{customerID, paymentMethodID, amount})
	status := f.chargeStatus
	if status == "" {
		status = "succeeded"
	}
	return &payment.ChargeResult{TransactionID: fmt.Sprintf("pi_%d", len(f.charges)), Status: status}, nil
}

type fakeEmailProvider struct {
	sent []string
}

func (f *fakeEmailProvider) Send(msg *email.Email) error { return nil }
func (f *fakeEmailProvider) SendWithTemplate(templateName string, data email.TemplateData, msg *email.Email) error {
	f.sent = append(f.sent, templateName)
	return nil
}
func (f *fakeEmailProvider) SendVerification(to, token string) error {
	f.sent = append(f.sent, "verification")
	return nil
}
func (f *fakeEmailProvider) SendPasswordReset(to, token string) error {
	f.sent = append(f.sent, "password_reset")
	return nil
}
func (f *fakeEmailProvider) SendTemplate(to []string, subject, templateName string, data email.TemplateData) error {
	f.sent = append(f.sent, templateName)
	return nil
}
func (f *fakeEmailProvider) Validate() error { return nil }
func (f *fakeEmailProvider) Close() error    { return nil }

// fakeAIClient answers every prompt with a fixed completion.
type fakeAIClient struct {
	available bool
	response  string
	err       error
}

func (f *fakeAIClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeAIClient) Available() bool { return f.available }

// fakeLocationProvider returns a deterministic result list.
type fakeLocationProvider struct {
	results []dto.LocationResult
}

func (f *fakeLocationProvider) FindLocations(zipCode string, radiusMiles int, machineType string, limit int) ([]dto.LocationResult, error) {
	return f.results, nil
}
