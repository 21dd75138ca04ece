package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"kumoney/internal/entitlement"
	apperrors "kumoney/internal/errors"
	"kumoney/internal/models"
)

// subscriptionService owns the entitlement record. ApplyGrant is the only
// writer of limits and expiry.
type subscriptionService struct {
	db *gorm.DB
}

// NewSubscriptionService creates a new SubscriptionServicer.
func NewSubscriptionService(db *gorm.DB) SubscriptionServicer {
	return &subscriptionService{db: db}
}

// GetSubscription returns the user's entitlement.
func (s *subscriptionService) GetSubscription(userID string) (*models.Subscription, error) {
	var sub models.Subscription
	if err := s.db.Where("user_id = ?", userID).First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.WithMessage(apperrors.ErrNotFound, "subscription not found")
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &sub, nil
}

// GetExpiryStatus reports when the user's subscription ends. Remaining days
// are rounded up so a subscription ending later today still shows 1.
func (s *subscriptionService) GetExpiryStatus(userID string) (*ExpiryStatus, error) {
	sub, err := s.GetSubscription(userID)
	if err != nil {
		return nil, err
	}

	status := &ExpiryStatus{ExpiresAt: sub.ExpiresAt}
	if sub.ExpiresAt == nil {
		return status, nil
	}

	now := timeNow()
	days := entitlement.RemainingDays(now, *sub.ExpiresAt)
	status.IsExpired = sub.IsExpired(now)
	status.RemainingDays = &days
	return status, nil
}

// ApplyGrant applies a paid order to the user's subscription in a single
// transaction.
func (s *subscriptionService) ApplyGrant(ctx context.Context, grant Grant) error {
	if grant.PeriodMonths <= 0 {
		return apperrors.ErrInvalidPeriod
	}

	now := timeNow()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("id = ?", grant.UserID).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrUserNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		var sub models.Subscription
		found := true
		if err := tx.Where("user_id = ?", grant.UserID).First(&sub).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			found = false
		}

		switch grant.OrderType {
		case models.OrderTypeUpgrade:
			return s.upgrade(tx, now, &user, &sub, found, grant)
		case models.OrderTypeExtends:
			if !found {
				return apperrors.ErrNoActiveSubscription
			}
			return s.extend(tx, now, &sub, grant.PeriodMonths)
		default:
			return apperrors.ErrInvalidOrderType
		}
	})
}

func (s *subscriptionService) upgrade(tx *gorm.DB, now time.Time, user *models.User, sub *models.Subscription, found bool, grant Grant) error {
	pkg, err := findPackage(tx, "name = ?", grant.PackageName)
	if err != nil {
		return err
	}
	limits := pkg.Limits()

	var current *time.Time
	active := false
	if found {
		current, active = sub.ExpiresAt, sub.IsActive
	}
	expiresAt := entitlement.UpgradeExpiry(now, user.IsFree(), current, active, grant.PeriodMonths)

	if !found {
		*sub = models.Subscription{UserID: user.ID, ExpiresAt: &expiresAt, IsActive: true}
		sub.SetLimits(limits)
		if err := tx.Create(sub).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	} else {
		updates := renewal(expiresAt)
		updates["limit_category"] = limits.Category.Stored()
		updates["limit_account"] = limits.Account.Stored()
		updates["limit_incomes"] = limits.Incomes.Stored()
		updates["limit_expenses"] = limits.Expenses.Stored()
		if err := tx.Model(sub).Updates(updates).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	if err := tx.Model(user).Update("status", pkg.Name).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// extend pushes expiry and reactivates a lapsed subscription. Limits are
// untouched. Free subscriptions never expire and must be upgraded instead.
func (s *subscriptionService) extend(tx *gorm.DB, now time.Time, sub *models.Subscription, months int) error {
	expiresAt, ok := entitlement.ExtendExpiry(now, sub.ExpiresAt, months)
	if !ok {
		return apperrors.ErrNoActiveSubscription
	}
	if err := tx.Model(sub).Updates(renewal(expiresAt)).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// renewal is the column set written whenever a grant moves expiry forward.
// The expired notice counter restarts so a later lapse is swept again.
func renewal(expiresAt time.Time) map[string]interface{} {
	return map[string]interface{}{
		"expires_at":              expiresAt,
		"is_active":               true,
		"expired_email_count":     0,
		"last_expired_email_sent": nil,
	}
}
