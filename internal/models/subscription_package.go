package models

import "kumoney/internal/entitlement"

// SubscriptionPackage is a read-only catalog entry seeded by migration.
type SubscriptionPackage struct {
	Base
	Name           string `gorm:"uniqueIndex;not null" json:"package"`
	Price          int64  `gorm:"type:bigint;not null" json:"price"`
	LimitCategory  int64  `gorm:"type:bigint;not null" json:"category"`
	LimitAccount   int64  `gorm:"type:bigint;not null" json:"account"`
	LimitIncomes   int64  `gorm:"type:bigint;not null" json:"incomes"`
	LimitExpenses  int64  `gorm:"type:bigint;not null" json:"expenses"`
	LimitOperation int64  `gorm:"type:bigint;not null" json:"operation"`
}

// Limits returns the limits the package grants.
func (p *SubscriptionPackage) Limits() entitlement.Limits {
	return entitlement.Limits{
		Category: entitlement.FromStored(p.LimitCategory),
		Account:  entitlement.FromStored(p.LimitAccount),
		Incomes:  entitlement.FromStored(p.LimitIncomes),
		Expenses: entitlement.FromStored(p.LimitExpenses),
	}
}
