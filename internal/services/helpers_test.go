package services

import (
	"testing"
	"time"

	"gorm.io/gorm"

	"kumoney/internal/logger"
	"kumoney/internal/models"
)

func init() {
	logger.Init("test")
}

// freezeTime pins the service clock to now for the duration of the test.
func freezeTime(t *testing.T, now time.Time) {
	t.Helper()
	prev := timeNow
	timeNow = func() time.Time { return now }
	t.Cleanup(func() { timeNow = prev })
}

func ptrTime(t time.Time) *time.Time { return &t }

func reloadSubscription(t *testing.T, db *gorm.DB, userID string) *models.Subscription {
	t.Helper()
	var sub models.Subscription
	if err := db.Where("user_id = ?", userID).First(&sub).Error; err != nil {
		t.Fatalf("failed to reload subscription: %v", err)
	}
	return &sub
}

func reloadUser(t *testing.T, db *gorm.DB, userID string) *models.User {
	t.Helper()
	var user models.User
	if err := db.Where("id = ?", userID).First(&user).Error; err != nil {
		t.Fatalf("failed to reload user: %v", err)
	}
	return &user
}

func reloadAccount(t *testing.T, db *gorm.DB, accountID string) *models.Account {
	t.Helper()
	var account models.Account
	if err := db.Where("id = ?", accountID).First(&account).Error; err != nil {
		t.Fatalf("failed to reload account: %v", err)
	}
	return &account
}

func assertTime(t *testing.T, label string, got *time.Time, want time.Time) {
	t.Helper()
	if got == nil {
		t.Fatalf("expected %s %s, got nil", label, want)
	}
	if !got.Equal(want) {
		t.Errorf("expected %s %s, got %s", label, want, got)
	}
}
