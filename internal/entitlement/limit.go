// Package entitlement holds the pure rules of the subscription engine: limit
// values and the decisions made against them, and the calendar arithmetic
// used to compute subscription expiry.
package entitlement

import "fmt"

// Limit is either Unlimited or a finite maximum. The zero value is Max(0),
// which admits nothing; use Unlimited explicitly.
type Limit struct {
	max       int64
	unlimited bool
}

// Unlimited returns a limit that allows any usage.
func Unlimited() Limit { return Limit{unlimited: true} }

// Max returns a finite limit of n.
func Max(n int64) Limit { return Limit{max: n} }

// FromStored decodes the persisted integer form, where 0 stands for unlimited.
func FromStored(n int64) Limit {
	if n <= 0 {
		return Unlimited()
	}
	return Max(n)
}

// Stored encodes the limit for persistence.
func (l Limit) Stored() int64 {
	if l.unlimited {
		return 0
	}
	return l.max
}

// IsUnlimited reports whether the limit allows any usage.
func (l Limit) IsUnlimited() bool { return l.unlimited }

// Value returns the finite maximum. It is 0 for an unlimited limit.
func (l Limit) Value() int64 {
	if l.unlimited {
		return 0
	}
	return l.max
}

func (l Limit) String() string {
	if l.unlimited {
		return "unlimited"
	}
	return fmt.Sprintf("%d", l.max)
}

// Decision is the outcome of evaluating usage against a limit.
type Decision struct {
	Allowed   bool
	Limit     Limit
	Current   int64
	Attempted int64
}

// After is the usage that would result from admitting the attempt.
func (d Decision) After() int64 { return d.Current + d.Attempted }

// Remaining is how much headroom is left before the attempt, or -1 for an
// unlimited limit.
func (d Decision) Remaining() int64 {
	if d.Limit.IsUnlimited() {
		return -1
	}
	if r := d.Limit.max - d.Current; r > 0 {
		return r
	}
	return 0
}

// CheckCount admits one more item when fewer than the limit already exist.
func (l Limit) CheckCount(current int64) Decision {
	d := Decision{Limit: l, Current: current, Attempted: 1}
	d.Allowed = l.unlimited || current < l.max
	return d
}

// CheckAmount admits the attempt when the resulting aggregate does not exceed
// the limit. Reaching the limit exactly is allowed.
func (l Limit) CheckAmount(current, attempted int64) Decision {
	d := Decision{Limit: l, Current: current, Attempted: attempted}
	d.Allowed = l.unlimited || current+attempted <= l.max
	return d
}

// Limits is the set of limits granted by a package or subscription.
type Limits struct {
	Category Limit
	Account  Limit
	Incomes  Limit
	Expenses Limit
}
