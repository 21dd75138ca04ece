package services

import (
	"testing"
	"time"

	"kumoney/internal/models"
	"kumoney/internal/pagination"
	"kumoney/internal/testutil"
)

func TestCreateTransaction(t *testing.T) {
	t.Run("incomes_add_to_balance", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, user.ID, 1_000)
		category := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeIncomes)

		tx, err := svc.CreateTransaction(user.ID, account.ID, category.ID, 500, "bonus", time.Time{})
		testutil.AssertNoError(t, err)

		if tx.CategoryTitle != category.Title || tx.AccountTitle != account.Title || tx.CategoryType != models.CategoryTypeIncomes {
			t.Errorf("expected snapshot columns, got %+v", tx)
		}
		if tx.PaymentDate.IsZero() {
			t.Error("expected payment date to default to now")
		}
		if got := reloadAccount(t, db, account.ID).Balance; got != 1_500 {
			t.Errorf("expected balance 1500, got %d", got)
		}
	})

	t.Run("expenses_subtract_from_balance", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, user.ID, 1_000)
		category := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpenses)

		_, err := svc.CreateTransaction(user.ID, account.ID, category.ID, 1_200, "", time.Now())
		testutil.AssertNoError(t, err)

		if got := reloadAccount(t, db, account.ID).Balance; got != -200 {
			t.Errorf("expected balance -200, got %d", got)
		}
	})

	t.Run("validation", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, user.ID, 0)
		category := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpenses)
		foreignCategory := testutil.CreateTestCategory(t, db, other.ID, models.CategoryTypeExpenses)

		_, err := svc.CreateTransaction(user.ID, account.ID, category.ID, 0, "", time.Now())
		testutil.AssertAppError(t, err, "INVALID_AMOUNT")

		_, err = svc.CreateTransaction(user.ID, account.ID, "", 10, "", time.Now())
		testutil.AssertAppError(t, err, "CATEGORY_ID_REQUIRED")

		_, err = svc.CreateTransaction(user.ID, account.ID, foreignCategory.ID, 10, "", time.Now())
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")

		_, err = svc.CreateTransaction(user.ID, "0192a000-0000-7000-8000-0000000000ff", category.ID, 10, "", time.Now())
		testutil.AssertAppError(t, err, "ACCOUNT_NOT_FOUND")

		if got := reloadAccount(t, db, account.ID).Balance; got != 0 {
			t.Errorf("expected balance untouched, got %d", got)
		}
	})
}

func TestGetUserTransactions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTransactionService(db)
	user := testutil.CreateTestUser(t, db)
	account := testutil.CreateTestAccount(t, db, user.ID, 0)
	incomes := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeIncomes)
	expenses := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpenses)

	old := time.Now().AddDate(0, -2, 0)
	_, err := svc.CreateTransaction(user.ID, account.ID, incomes.ID, 100, "", old)
	testutil.AssertNoError(t, err)
	_, err = svc.CreateTransaction(user.ID, account.ID, expenses.ID, 40, "", time.Now())
	testutil.AssertNoError(t, err)

	t.Run("all", func(t *testing.T) {
		page, err := svc.GetUserTransactions(user.ID, pagination.PageRequest{}, TransactionFilter{})
		testutil.AssertNoError(t, err)
		if page.TotalItems != 2 {
			t.Fatalf("expected 2 transactions, got %d", page.TotalItems)
		}
		if page.Data[0].CategoryType != models.CategoryTypeExpenses {
			t.Error("expected newest transaction first")
		}
	})

	t.Run("by_type", func(t *testing.T) {
		ct := models.CategoryTypeIncomes
		page, err := svc.GetUserTransactions(user.ID, pagination.PageRequest{}, TransactionFilter{CategoryType: &ct})
		testutil.AssertNoError(t, err)
		if page.TotalItems != 1 || page.Data[0].Amount != 100 {
			t.Errorf("expected only the incomes transaction, got %+v", page.Data)
		}
	})

	t.Run("by_date", func(t *testing.T) {
		from := time.Now().AddDate(0, -1, 0)
		page, err := svc.GetUserTransactions(user.ID, pagination.PageRequest{}, TransactionFilter{FromDate: &from})
		testutil.AssertNoError(t, err)
		if page.TotalItems != 1 {
			t.Errorf("expected 1 recent transaction, got %d", page.TotalItems)
		}
	})
}

func TestDeleteTransaction(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTransactionService(db)
	user := testutil.CreateTestUser(t, db)
	account := testutil.CreateTestAccount(t, db, user.ID, 1_000)
	category := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpenses)

	tx, err := svc.CreateTransaction(user.ID, account.ID, category.ID, 300, "", time.Now())
	testutil.AssertNoError(t, err)

	other := testutil.CreateTestUser(t, db)
	err = svc.DeleteTransaction(other.ID, tx.ID)
	testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")

	testutil.AssertNoError(t, svc.DeleteTransaction(user.ID, tx.ID))
	if got := reloadAccount(t, db, account.ID).Balance; got != 1_000 {
		t.Errorf("expected balance restored to 1000, got %d", got)
	}

	_, err = svc.GetTransactionByID(user.ID, tx.ID)
	testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
}
