package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"kumoney/internal/models"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// Catalog ids match the seed migration.
const (
	FreePackageID      = "0192a000-0000-7000-8000-000000000001"
	ProPackageID       = "0192a000-0000-7000-8000-000000000002"
	UnlimitedPackageID = "0192a000-0000-7000-8000-000000000003"
)

// SeedPackages inserts the free, pro and unlimited packages.
func SeedPackages(t *testing.T, db *gorm.DB) {
	t.Helper()

	packages := []models.SubscriptionPackage{
		{Base: models.Base{ID: FreePackageID}, Name: models.PlanFree, Price: 0,
			LimitCategory: 10, LimitAccount: 3, LimitIncomes: 10_000_000, LimitExpenses: 10_000_000, LimitOperation: 100},
		{Base: models.Base{ID: ProPackageID}, Name: models.PlanPro, Price: 25_000,
			LimitCategory: 50, LimitAccount: 10, LimitIncomes: 100_000_000, LimitExpenses: 100_000_000, LimitOperation: 1000},
		{Base: models.Base{ID: UnlimitedPackageID}, Name: models.PlanUnlimited, Price: 50_000},
	}
	if err := db.Create(&packages).Error; err != nil {
		t.Fatalf("failed to seed packages: %v", err)
	}
}

// GetPackage loads a seeded package by name.
func GetPackage(t *testing.T, db *gorm.DB, name string) *models.SubscriptionPackage {
	t.Helper()

	var pkg models.SubscriptionPackage
	if err := db.Where("name = ?", name).First(&pkg).Error; err != nil {
		t.Fatalf("failed to load package %q: %v", name, err)
	}
	return &pkg
}

// CreateTestUser creates a free-tier user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	return CreateTestUserWithStatus(t, db, models.PlanFree)
}

// CreateTestUserWithStatus creates a user on the given plan tier.
func CreateTestUserWithStatus(t *testing.T, db *gorm.DB, status string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	n := nextID()
	user := &models.User{
		Email:    fmt.Sprintf("user%d@test.com", n),
		Password: string(hash),
		Name:     fmt.Sprintf("Test User %d", n),
		Status:   status,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestSubscription creates a subscription for userID with the limits of
// the named package and the given expiry (nil never expires).
func CreateTestSubscription(t *testing.T, db *gorm.DB, userID, packageName string, expiresAt *time.Time) *models.Subscription {
	t.Helper()

	pkg := GetPackage(t, db, packageName)
	sub := &models.Subscription{
		UserID:    userID,
		ExpiresAt: expiresAt,
		IsActive:  true,
	}
	sub.SetLimits(pkg.Limits())
	if err := db.Create(sub).Error; err != nil {
		t.Fatalf("failed to create test subscription: %v", err)
	}
	return sub
}

// CreateTestAccount creates an account with the given balance.
func CreateTestAccount(t *testing.T, db *gorm.DB, userID string, balance int64) *models.Account {
	t.Helper()

	account := &models.Account{
		UserID:  userID,
		Title:   fmt.Sprintf("Test Wallet %d", nextID()),
		Icon:    "wallet",
		Balance: balance,
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test account: %v", err)
	}
	return account
}

// CreateTestCategory creates a category of the given type.
func CreateTestCategory(t *testing.T, db *gorm.DB, userID string, categoryType models.CategoryType) *models.Category {
	t.Helper()

	category := &models.Category{
		UserID: userID,
		Title:  fmt.Sprintf("Test Category %d", nextID()),
		Type:   categoryType,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestTransaction books a transaction row without touching balances.
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID string, account *models.Account, category *models.Category, amount int64) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		UserID:        userID,
		AccountID:     account.ID,
		CategoryID:    category.ID,
		Amount:        amount,
		PaymentDate:   time.Now(),
		CategoryTitle: category.Title,
		CategoryType:  category.Type,
		AccountTitle:  account.Title,
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestOrder creates an unpaid order for user against the named package.
func CreateTestOrder(t *testing.T, db *gorm.DB, user *models.User, packageName string, orderType models.OrderType, period int) *models.Order {
	t.Helper()

	pkg := GetPackage(t, db, packageName)
	order := &models.Order{
		UserID:           user.ID,
		OrderType:        orderType,
		PackageID:        pkg.ID,
		PackageName:      pkg.Name,
		PackagePrice:     pkg.Price,
		Amount:           pkg.Price * int64(period),
		PeriodType:       models.OrderPeriodMonth,
		PeriodValue:      period,
		ExpiredPaymentAt: time.Now().Add(models.OrderPaymentDeadline),
		CreatedByName:    user.Name,
		CreatedByEmail:   user.Email,
		SubscriptionRef:  models.OrderSubscriptionRef,
		PaymentMethod:    models.OrderPaymentMethod,
		PaymentStatus:    models.PaymentStatusUnpaid,
		TransactionID:    fmt.Sprintf("txn-%d", nextID()),
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("failed to create test order: %v", err)
	}
	return order
}
