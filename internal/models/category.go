package models

// CategoryType represents the type of category
type CategoryType string

const (
	CategoryTypeIncomes  CategoryType = "incomes"
	CategoryTypeExpenses CategoryType = "expenses"
)

// Valid reports whether the type is one the ledger can book.
func (t CategoryType) Valid() bool {
	return t == CategoryTypeIncomes || t == CategoryTypeExpenses
}

// Category represents a transaction category
type Category struct {
	Base
	UserID string       `gorm:"type:uuid;not null;index" json:"user_id"`
	Title  string       `gorm:"not null" json:"title"`
	Icon   string       `json:"icon"`
	Type   CategoryType `gorm:"not null" json:"type"`
}
