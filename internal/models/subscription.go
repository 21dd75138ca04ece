package models

import (
	"time"

	"kumoney/internal/entitlement"
)

// MaxExpiredEmails caps how many expired notices a subscription receives.
const MaxExpiredEmails = 7

// Subscription is a user's single entitlement record. Limit columns store 0
// for unlimited; read them through Limits. A nil ExpiresAt never expires.
type Subscription struct {
	Base
	UserID        string     `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	ExpiresAt     *time.Time `gorm:"index" json:"expires_at"`
	IsActive      bool       `gorm:"not null;default:true;index" json:"is_active"`
	LimitCategory int64      `gorm:"type:bigint;not null;default:0" json:"limit_category"`
	LimitAccount  int64      `gorm:"type:bigint;not null;default:0" json:"limit_account"`
	LimitIncomes  int64      `gorm:"type:bigint;not null;default:0" json:"limit_incomes"`
	LimitExpenses int64      `gorm:"type:bigint;not null;default:0" json:"limit_expenses"`

	ExpiredEmailCount     int        `gorm:"not null;default:0" json:"-"`
	LastExpiringEmailSent *time.Time `json:"-"`
	LastExpiredEmailSent  *time.Time `json:"-"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}

// Limits decodes the stored limit columns.
func (s *Subscription) Limits() entitlement.Limits {
	return entitlement.Limits{
		Category: entitlement.FromStored(s.LimitCategory),
		Account:  entitlement.FromStored(s.LimitAccount),
		Incomes:  entitlement.FromStored(s.LimitIncomes),
		Expenses: entitlement.FromStored(s.LimitExpenses),
	}
}

// SetLimits encodes l into the stored limit columns.
func (s *Subscription) SetLimits(l entitlement.Limits) {
	s.LimitCategory = l.Category.Stored()
	s.LimitAccount = l.Account.Stored()
	s.LimitIncomes = l.Incomes.Stored()
	s.LimitExpenses = l.Expenses.Stored()
}

// IsExpired reports whether the subscription has an expiry at or before now.
func (s *Subscription) IsExpired(now time.Time) bool {
	return s.ExpiresAt != nil && !s.ExpiresAt.After(now)
}
