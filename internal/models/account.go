package models

// Account is a user's wallet.
type Account struct {
	Base
	UserID      string `gorm:"type:uuid;not null;index" json:"user_id"`
	Title       string `gorm:"not null" json:"title"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
	Balance     int64  `gorm:"type:bigint;not null;default:0" json:"balance"`
}
