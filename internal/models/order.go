package models

import "time"

// OrderType selects what a paid order grants.
type OrderType string

const (
	// OrderTypeUpgrade replaces limits and recomputes expiry.
	OrderTypeUpgrade OrderType = "upgrade"
	// OrderTypeExtends only pushes expiry.
	OrderTypeExtends OrderType = "extends"
)

// Valid reports whether t is a known order type.
func (t OrderType) Valid() bool {
	return t == OrderTypeUpgrade || t == OrderTypeExtends
}

// OrderPeriods are the purchasable subscription lengths in months.
var OrderPeriods = []int{1, 3, 6, 12}

// ValidOrderPeriod reports whether months is a purchasable length.
func ValidOrderPeriod(months int) bool {
	for _, p := range OrderPeriods {
		if p == months {
			return true
		}
	}
	return false
}

// PaymentStatus is the order state. unpaid is the only non-terminal state.
type PaymentStatus string

const (
	PaymentStatusUnpaid    PaymentStatus = "unpaid"
	PaymentStatusPaid      PaymentStatus = "paid"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusExpired   PaymentStatus = "expired"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

// Order defaults written on creation.
const (
	OrderPeriodMonth     = "month"
	OrderSubscriptionRef = "ku-money-upgrade"
	OrderPaymentMethod   = "xendit"
	OrderPaymentDeadline = 24 * time.Hour
	PaymentEntryType     = "payment"
)

// Order is one purchase attempt, correlated with the gateway by TransactionID.
type Order struct {
	Base
	UserID           string    `gorm:"type:uuid;not null;index" json:"user_id"`
	OrderType        OrderType `gorm:"not null" json:"order_type"`
	PackageID        string    `gorm:"type:uuid;not null" json:"package_id"`
	PackageName      string    `gorm:"not null" json:"package"`
	PackagePrice     int64     `gorm:"type:bigint;not null" json:"package_price"`
	Amount           int64     `gorm:"type:bigint;not null" json:"amount"`
	PeriodType       string    `gorm:"not null;default:'month'" json:"period_type"`
	PeriodValue      int       `gorm:"not null" json:"period"`
	ExpiredPaymentAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedByName    string    `json:"-"`
	CreatedByEmail   string    `json:"-"`

	SubscriptionRef string        `gorm:"not null" json:"-"`
	PaymentMethod   string        `json:"payment_method"`
	PaymentStatus   PaymentStatus `gorm:"not null;default:'unpaid';index" json:"status"`
	TransactionID   string        `gorm:"not null;uniqueIndex" json:"transaction_id"`
	CheckoutURL     *string       `json:"checkout_url"`
	InvoiceID       *string       `json:"-"`
	WebhookData     string        `gorm:"type:text" json:"-"`

	PaymentHistory []OrderPayment `gorm:"foreignKey:OrderID" json:"payment_history,omitempty"`
}

// OrderPayment is an append-only ledger entry for a captured payment.
type OrderPayment struct {
	Base
	OrderID       string    `gorm:"type:uuid;not null;index" json:"order_id"`
	Type          string    `gorm:"not null" json:"type"`
	Amount        int64     `gorm:"type:bigint;not null" json:"amount"`
	PaidAt        time.Time `json:"paid_at"`
	PaymentMethod string    `json:"payment_method"`
	InvoiceID     string    `json:"invoice_id"`
}
