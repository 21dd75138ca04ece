package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "kumoney/internal/errors"
	"kumoney/internal/models"
	"kumoney/internal/pagination"
)

// transactionService books incomes and expenses against accounts.
type transactionService struct {
	db *gorm.DB
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB) TransactionServicer {
	return &transactionService{db: db}
}

// CreateTransaction books a transaction and applies it to the account balance:
// incomes add, expenses subtract.
func (s *transactionService) CreateTransaction(userID, accountID, categoryID string, amount int64, note string, date time.Time) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, apperrors.ErrInvalidAmount
	}
	if categoryID == "" {
		return nil, apperrors.ErrCategoryIDRequired
	}
	if date.IsZero() {
		date = timeNow()
	}

	var transaction *models.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		account, err := findAccount(tx, userID, accountID)
		if err != nil {
			return err
		}
		category, err := findCategory(tx, userID, categoryID)
		if err != nil {
			return err
		}
		if !category.Type.Valid() {
			return apperrors.ErrInvalidCategoryType
		}

		transaction = &models.Transaction{
			UserID:        userID,
			AccountID:     account.ID,
			CategoryID:    category.ID,
			Amount:        amount,
			Note:          note,
			PaymentDate:   date,
			CategoryTitle: category.Title,
			CategoryType:  category.Type,
			AccountTitle:  account.Title,
		}
		if err := tx.Create(transaction).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return adjustBalance(tx, account.ID, transaction.SignedAmount())
	})
	if err != nil {
		return nil, err
	}
	return transaction, nil
}

// GetUserTransactions retrieves a paginated, filtered list of a user's transactions.
func (s *transactionService) GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	base := s.db.Model(&models.Transaction{}).Where("user_id = ?", userID)
	base = applyTransactionFilters(base, filter)

	result, err := pagination.Find[models.Transaction](base, page, "payment_date DESC, created_at DESC")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.FromDate != nil {
		q = q.Where("payment_date >= ?", *f.FromDate)
	}
	if f.ToDate != nil {
		q = q.Where("payment_date <= ?", *f.ToDate)
	}
	if f.CategoryType != nil {
		q = q.Where("category_type = ?", *f.CategoryType)
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.AccountID != nil {
		q = q.Where("account_id = ?", *f.AccountID)
	}
	return q
}

// GetTransactionByID retrieves a transaction by ID for a specific user
func (s *transactionService) GetTransactionByID(userID, transactionID string) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.Where("id = ? AND user_id = ?", transactionID, userID).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// DeleteTransaction deletes a transaction and reverts its balance effect.
func (s *transactionService) DeleteTransaction(userID, transactionID string) error {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(transaction).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return adjustBalance(tx, transaction.AccountID, -transaction.SignedAmount())
	})
}
