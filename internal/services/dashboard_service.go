package services

import (
	"gorm.io/gorm"

	apperrors "kumoney/internal/errors"
	"kumoney/internal/models"
)

type dashboardService struct {
	db *gorm.DB
}

// NewDashboardService creates a new DashboardServicer.
func NewDashboardService(db *gorm.DB) DashboardServicer {
	return &dashboardService{db: db}
}

// GetSummary totals balances and booked transactions. The date range narrows
// transactions only; TotalBalance is always the current balance.
func (s *dashboardService) GetSummary(userID string, filter DashboardFilter) (*DashboardSummary, error) {
	summary := &DashboardSummary{}

	balances := s.db.Model(&models.Account{}).Where("user_id = ?", userID)
	if filter.AccountID != nil {
		balances = balances.Where("id = ?", *filter.AccountID)
	}
	if err := balances.Select("COALESCE(SUM(balance), 0)").Scan(&summary.TotalBalance).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	txFilter := TransactionFilter{FromDate: filter.FromDate, ToDate: filter.ToDate, AccountID: filter.AccountID}

	type row struct {
		CategoryType models.CategoryType
		Total        int64
		Count        int64
	}
	var rows []row
	q := applyTransactionFilters(s.db.Model(&models.Transaction{}).Where("user_id = ?", userID), txFilter)
	if err := q.Select("category_type, COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count").
		Group("category_type").
		Scan(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	for _, r := range rows {
		switch r.CategoryType {
		case models.CategoryTypeIncomes:
			summary.TotalIncome = r.Total
		case models.CategoryTypeExpenses:
			summary.TotalExpenses = r.Total
		}
		summary.TotalTransactions += r.Count
	}

	return summary, nil
}
