package services

import (
	"context"
	"time"

	"kumoney/internal/entitlement"
	"kumoney/internal/models"
	"kumoney/internal/pagination"
)

// timeNow is the clock used by every service. Tests replace it.
var timeNow = time.Now

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	Register(email, password, name string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
}

// PackageServicer exposes the read-only subscription catalog.
type PackageServicer interface {
	ListPackages() ([]models.SubscriptionPackage, error)
	GetPackageByID(id string) (*models.SubscriptionPackage, error)
	GetPackageByName(name string) (*models.SubscriptionPackage, error)
}

// Grant is a paid order's entitlement change.
type Grant struct {
	UserID       string
	PackageName  string
	OrderType    models.OrderType
	PeriodMonths int
}

// EntitlementMutator applies paid grants to a user's subscription. It is
// invoked only by the order reconciler.
type EntitlementMutator interface {
	ApplyGrant(ctx context.Context, grant Grant) error
}

// ExpiryStatus describes when a subscription ends. All fields are empty for a
// subscription that never expires.
type ExpiryStatus struct {
	ExpiresAt     *time.Time `json:"expires_at"`
	IsExpired     bool       `json:"is_expired"`
	RemainingDays *int       `json:"remaining_days"`
}

// SubscriptionServicer defines the contract for entitlement reads and writes.
type SubscriptionServicer interface {
	EntitlementMutator
	GetSubscription(userID string) (*models.Subscription, error)
	GetExpiryStatus(userID string) (*ExpiryStatus, error)
}

// LimitKind names the usage dimension a mutation is checked against.
type LimitKind string

const (
	LimitAccountCount       LimitKind = "account-count"
	LimitCategoryCount      LimitKind = "category-count"
	LimitTransactionIncomes LimitKind = "transaction-incomes-amount"
	LimitTransactionExpense LimitKind = "transaction-expenses-amount"
	LimitAccountBalance     LimitKind = "account-total-balance"
)

// LimitCheck describes an attempted mutation. Attempted is the amount being
// added for amount kinds, or the new balance for LimitAccountBalance.
// AccountID is set when a balance check concerns an existing account.
type LimitCheck struct {
	Kind      LimitKind
	Attempted int64
	AccountID string
}

// LimitResult is the outcome of a limit check.
type LimitResult struct {
	Kind     LimitKind
	Decision entitlement.Decision
	// OldBalance is the stored balance of the account being updated.
	OldBalance int64
	// Skipped is set when the check did not apply, e.g. an unchanged balance.
	Skipped bool
}

// LimitServicer evaluates mutations against the user's entitlement.
type LimitServicer interface {
	CheckLimit(userID string, check LimitCheck) (*LimitResult, error)
}

// Payer identifies the user placing an order.
type Payer struct {
	UserID string
	Name   string
	Email  string
}

// CheckoutResult is returned to the client after an order is created.
type CheckoutResult struct {
	TransactionID string           `json:"transaction_id"`
	CheckoutURL   *string          `json:"checkout_url"`
	Amount        int64            `json:"amount"`
	ExpiresAt     time.Time        `json:"expires_at"`
	Package       string           `json:"package"`
	Period        int              `json:"period"`
	OrderType     models.OrderType `json:"order_type"`
}

// PaymentNotification is an asynchronous payment status update from the gateway.
type PaymentNotification struct {
	ExternalID    string
	Status        string
	Amount        int64
	PaidAmount    int64
	PaymentMethod string
	PaidAt        *time.Time
	InvoiceID     string
	Raw           string
}

// OrderServicer creates orders and reconciles their payment state.
type OrderServicer interface {
	CreateOrder(ctx context.Context, payer Payer, orderType models.OrderType, packageID string, period int) (*CheckoutResult, error)
	HandlePaymentNotification(ctx context.Context, n PaymentNotification) error
	GetOrderStatus(userID, transactionID string) (*models.Order, error)
	GetUserOrders(userID string, status *models.PaymentStatus, page pagination.PageRequest) (*pagination.PageResponse[models.Order], error)
	GetLastOrder(userID string) (*models.Order, error)
}

// AccountUpdateFields holds optional fields for updating an account.
// Only non-nil fields are applied.
type AccountUpdateFields struct {
	Title       *string
	Icon        *string
	Description *string
	Balance     *int64
}

// AccountServicer defines the contract for account-related business logic.
type AccountServicer interface {
	CreateAccount(userID, title, icon, description string, balance int64) (*models.Account, error)
	GetUserAccounts(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Account], error)
	GetAccountByID(userID, accountID string) (*models.Account, error)
	UpdateAccount(userID, accountID string, fields AccountUpdateFields) (*models.Account, error)
	DeleteAccount(userID, accountID string) error
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	CreateCategory(userID, title, icon string, categoryType models.CategoryType) (*models.Category, error)
	GetUserCategories(userID string, categoryType *models.CategoryType, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	GetCategoryByID(userID, categoryID string) (*models.Category, error)
	UpdateCategory(userID, categoryID string, title, icon *string) (*models.Category, error)
	DeleteCategory(userID, categoryID string) error
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate     *time.Time
	ToDate       *time.Time
	CategoryType *models.CategoryType
	CategoryID   *string
	AccountID    *string
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(userID, accountID, categoryID string, amount int64, note string, date time.Time) (*models.Transaction, error)
	GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(userID, transactionID string) (*models.Transaction, error)
	DeleteTransaction(userID, transactionID string) error
}

// DashboardFilter narrows the dashboard summary.
type DashboardFilter struct {
	FromDate  *time.Time
	ToDate    *time.Time
	AccountID *string
}

// DashboardSummary aggregates a user's balances and booked transactions.
type DashboardSummary struct {
	TotalBalance      int64 `json:"total_balance"`
	TotalIncome       int64 `json:"total_income"`
	TotalExpenses     int64 `json:"total_expenses"`
	TotalTransactions int64 `json:"total_transactions"`
}

// DashboardServicer computes the dashboard summary.
type DashboardServicer interface {
	GetSummary(userID string, filter DashboardFilter) (*DashboardSummary, error)
}
