package entitlement

import (
	"math"
	"time"
)

// UpgradeExpiry computes the expiry after an upgrade payment of months.
// Paid time stacks onto a live paid subscription; a free-tier or lapsed
// subscription starts a fresh clock at now.
func UpgradeExpiry(now time.Time, fromFree bool, current *time.Time, active bool, months int) time.Time {
	if !fromFree && active && current != nil && current.After(now) {
		return AddMonths(*current, months)
	}
	return AddMonths(now, months)
}

// ExtendExpiry computes the expiry after an extends payment of months. A
// lapsed subscription restarts at now. It returns false for a subscription
// that never expires.
func ExtendExpiry(now time.Time, current *time.Time, months int) (time.Time, bool) {
	if current == nil {
		return time.Time{}, false
	}
	if current.After(now) {
		return AddMonths(*current, months), true
	}
	return AddMonths(now, months), true
}

// RemainingDays is the number of started days between now and expiresAt,
// rounded up, and 0 once expired.
func RemainingDays(now, expiresAt time.Time) int {
	if !expiresAt.After(now) {
		return 0
	}
	return int(math.Ceil(expiresAt.Sub(now).Hours() / 24))
}
