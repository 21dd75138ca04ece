package models

import "time"

// Transaction is a single incomes or expenses entry against an account.
// The snapshot columns keep the titles as they were when it was booked.
type Transaction struct {
	Base
	UserID      string    `gorm:"type:uuid;not null;index" json:"user_id"`
	AccountID   string    `gorm:"type:uuid;not null;index" json:"account_id"`
	CategoryID  string    `gorm:"type:uuid;not null;index" json:"category_id"`
	Amount      int64     `gorm:"type:bigint;not null" json:"amount"`
	Note        string    `json:"note"`
	PaymentDate time.Time `gorm:"not null" json:"payment_date"`

	CategoryTitle string       `json:"category_title"`
	CategoryType  CategoryType `gorm:"not null" json:"category_type"`
	AccountTitle  string       `json:"account_title"`
}

// SignedAmount is the effect of the transaction on its account balance.
func (t *Transaction) SignedAmount() int64 {
	if t.CategoryType == CategoryTypeExpenses {
		return -t.Amount
	}
	return t.Amount
}
