package services

import (
	"testing"

	"kumoney/internal/models"
	"kumoney/internal/pagination"
	"kumoney/internal/testutil"
)

func TestCreateCategory(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		category, err := svc.CreateCategory(user.ID, "Gaji", "briefcase", models.CategoryTypeIncomes)
		testutil.AssertNoError(t, err)

		if category.ID == "" {
			t.Fatal("expected category ID to be set")
		}
		if category.Type != models.CategoryTypeIncomes {
			t.Errorf("expected type incomes, got %s", category.Type)
		}
	})

	t.Run("invalid_type", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateCategory(user.ID, "Transfer", "", "transfer")
		testutil.AssertAppError(t, err, "INVALID_CATEGORY_TYPE")
	})

	t.Run("duplicate_title_same_type", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateCategory(user.ID, "Makan", "", models.CategoryTypeExpenses)
		testutil.AssertNoError(t, err)

		_, err = svc.CreateCategory(user.ID, "Makan", "", models.CategoryTypeExpenses)
		testutil.AssertAppError(t, err, "INVALID_INPUT")

		_, err = svc.CreateCategory(user.ID, "Makan", "", models.CategoryTypeIncomes)
		testutil.AssertNoError(t, err)
	})
}

func TestGetUserCategories(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewCategoryService(db)
	user := testutil.CreateTestUser(t, db)

	testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeIncomes)
	testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpenses)
	testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpenses)

	page, err := svc.GetUserCategories(user.ID, nil, pagination.PageRequest{})
	testutil.AssertNoError(t, err)
	if page.TotalItems != 3 {
		t.Errorf("expected 3 categories, got %d", page.TotalItems)
	}

	expenses := models.CategoryTypeExpenses
	page, err = svc.GetUserCategories(user.ID, &expenses, pagination.PageRequest{})
	testutil.AssertNoError(t, err)
	if page.TotalItems != 2 {
		t.Errorf("expected 2 expenses categories, got %d", page.TotalItems)
	}
}

func TestUpdateCategory(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewCategoryService(db)
	user := testutil.CreateTestUser(t, db)
	category := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpenses)

	title := "Transportasi"
	got, err := svc.UpdateCategory(user.ID, category.ID, &title, nil)
	testutil.AssertNoError(t, err)
	if got.Title != "Transportasi" {
		t.Errorf("expected title Transportasi, got %s", got.Title)
	}

	other := testutil.CreateTestUser(t, db)
	_, err = svc.UpdateCategory(other.ID, category.ID, &title, nil)
	testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
}

func TestDeleteCategory(t *testing.T) {
	t.Run("unused", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		category := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpenses)

		testutil.AssertNoError(t, svc.DeleteCategory(user.ID, category.ID))

		_, err := svc.GetCategoryByID(user.ID, category.ID)
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})

	t.Run("in_use", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, user.ID, 0)
		category := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpenses)
		testutil.CreateTestTransaction(t, db, user.ID, account, category, 100)

		err := svc.DeleteCategory(user.ID, category.ID)
		testutil.AssertAppError(t, err, "CATEGORY_IN_USE")
	})
}
