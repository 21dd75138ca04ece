package models

// Plan tiers. A user's status is always the name of a subscription package.
const (
	PlanFree      = "free"
	PlanPro       = "pro"
	PlanUnlimited = "unlimited"
)

// User represents the user model in the database
type User struct {
	Base
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`
	Name     string `gorm:"not null" json:"name"`
	Status   string `gorm:"not null;default:'free'" json:"status"`

	Subscription *Subscription `gorm:"foreignKey:UserID" json:"subscription,omitempty"`
}

// IsFree reports whether the user is on the free tier.
func (u *User) IsFree() bool { return u.Status == PlanFree }
