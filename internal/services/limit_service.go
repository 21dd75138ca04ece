package services

import (
	"errors"

	"gorm.io/gorm"

	"kumoney/internal/entitlement"
	apperrors "kumoney/internal/errors"
	"kumoney/internal/models"
)

// limitService evaluates usage against entitlement limits. It never writes.
type limitService struct {
	db *gorm.DB
}

// NewLimitService creates a new LimitServicer.
func NewLimitService(db *gorm.DB) LimitServicer {
	return &limitService{db: db}
}

// CheckLimit evaluates check against the user's live usage. A user without a
// subscription is denied with NO_SUBSCRIPTION.
func (s *limitService) CheckLimit(userID string, check LimitCheck) (*LimitResult, error) {
	var sub models.Subscription
	if err := s.db.Where("user_id = ?", userID).First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNoSubscription
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	limits := sub.Limits()

	result := &LimitResult{Kind: check.Kind}
	switch check.Kind {
	case LimitAccountCount:
		count, err := s.count(&models.Account{}, userID)
		if err != nil {
			return nil, err
		}
		result.Decision = limits.Account.CheckCount(count)

	case LimitCategoryCount:
		count, err := s.count(&models.Category{}, userID)
		if err != nil {
			return nil, err
		}
		result.Decision = limits.Category.CheckCount(count)

	case LimitTransactionIncomes:
		// Incomes land in account balances, so the balance total is the usage.
		total, err := s.totalBalance(userID)
		if err != nil {
			return nil, err
		}
		result.Decision = limits.Incomes.CheckAmount(total, check.Attempted)

	case LimitTransactionExpense:
		var total int64
		if err := s.db.Model(&models.Transaction{}).
			Where("user_id = ? AND category_type = ?", userID, models.CategoryTypeExpenses).
			Select("COALESCE(SUM(amount), 0)").
			Scan(&total).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		result.Decision = limits.Expenses.CheckAmount(total, check.Attempted)

	case LimitAccountBalance:
		return s.checkBalance(userID, limits.Incomes, check, result)

	default:
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown limit kind "+string(check.Kind))
	}

	return result, nil
}

// checkBalance evaluates the total balance across all accounts. For an
// update, the account's old balance is replaced by the attempted one.
func (s *limitService) checkBalance(userID string, limit entitlement.Limit, check LimitCheck, result *LimitResult) (*LimitResult, error) {
	total, err := s.totalBalance(userID)
	if err != nil {
		return nil, err
	}

	current := total
	if check.AccountID != "" {
		var account models.Account
		if err := s.db.Where("id = ? AND user_id = ?", check.AccountID, userID).First(&account).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				result.Skipped = true
				result.Decision = entitlement.Decision{Allowed: true, Limit: limit, Current: total}
				return result, nil
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		result.OldBalance = account.Balance
		if account.Balance == check.Attempted {
			result.Skipped = true
			result.Decision = entitlement.Decision{Allowed: true, Limit: limit, Current: total - account.Balance, Attempted: check.Attempted}
			return result, nil
		}
		current = total - account.Balance
	}

	result.Decision = limit.CheckAmount(current, check.Attempted)
	return result, nil
}

func (s *limitService) totalBalance(userID string) (int64, error) {
	var total int64
	if err := s.db.Model(&models.Account{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(balance), 0)").
		Scan(&total).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return total, nil
}

func (s *limitService) count(model interface{}, userID string) (int64, error) {
	var count int64
	if err := s.db.Model(model).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count, nil
}

// Err converts a denied result into the client-facing limit error. It
// returns nil when the mutation is allowed.
func (r *LimitResult) Err() error {
	if r.Decision.Allowed {
		return nil
	}
	d := r.Decision
	limit := d.Limit.Value()

	switch r.Kind {
	case LimitAccountCount:
		return apperrors.WithDetails(apperrors.ErrAccountLimitReached, map[string]any{
			"limit":   limit,
			"current": d.Current,
		})
	case LimitCategoryCount:
		return apperrors.WithDetails(apperrors.ErrCategoryLimitReached, map[string]any{
			"limit":   limit,
			"current": d.Current,
		})
	case LimitTransactionIncomes, LimitTransactionExpense:
		txType := models.CategoryTypeIncomes
		if r.Kind == LimitTransactionExpense {
			txType = models.CategoryTypeExpenses
		}
		return apperrors.WithDetails(apperrors.ErrTransactionLimitReached, map[string]any{
			"type":         string(txType),
			"limit":        limit,
			"current":      d.Current,
			"new_amount":   d.Attempted,
			"after_update": d.After(),
		})
	case LimitAccountBalance:
		return apperrors.WithDetails(apperrors.ErrAccountBalanceLimitReached, map[string]any{
			"limit":                 limit,
			"current_total_balance": d.Current + r.OldBalance,
			"old_balance":           r.OldBalance,
			"new_balance":           d.Attempted,
			"new_total_balance":     d.After(),
			"remaining":             d.Remaining(),
		})
	default:
		return apperrors.ErrInternalServer
	}
}
