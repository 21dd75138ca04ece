// Package scheduler runs the background jobs of the API process.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"kumoney/internal/entitlement"
	"kumoney/internal/logger"
	"kumoney/internal/metrics"
	"kumoney/internal/models"
	"kumoney/internal/notifier"
)

const (
	passExpiring = "expiring"
	passExpired  = "expired"

	defaultSweepInterval = time.Minute
	claimTTL             = 48 * time.Hour
)

// SweeperConfig wires an ExpirySweeper. Redis is optional.
type SweeperConfig struct {
	DB       *gorm.DB
	Sender   notifier.Sender
	Location *time.Location
	Interval time.Duration
	Redis    *redis.Client
	Now      func() time.Time
}

// ExpirySweeper sends expiry reminders and deactivates lapsed subscriptions.
type ExpirySweeper struct {
	db       *gorm.DB
	sender   notifier.Sender
	loc      *time.Location
	interval time.Duration
	redis    *redis.Client
	now      func() time.Time
	log      *zap.SugaredLogger
}

// NewExpirySweeper creates a sweeper, filling in defaults for unset fields.
func NewExpirySweeper(cfg SweeperConfig) *ExpirySweeper {
	s := &ExpirySweeper{
		db:       cfg.DB,
		sender:   cfg.Sender,
		loc:      cfg.Location,
		interval: cfg.Interval,
		redis:    cfg.Redis,
		now:      cfg.Now,
		log:      logger.Named("sweeper"),
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.interval <= 0 {
		s.interval = defaultSweepInterval
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Start sweeps once immediately and then on every tick until ctx is done.
func (s *ExpirySweeper) Start(ctx context.Context) {
	s.log.Infow("Expiry sweeper started", "interval", s.interval.String(), "timezone", s.loc.String())
	s.RunOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("Expiry sweeper stopped")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce executes the expiring-soon pass followed by the expired pass.
func (s *ExpirySweeper) RunOnce(ctx context.Context) {
	now := s.now()
	if err := s.notifyExpiring(ctx, now); err != nil {
		s.log.Errorw("Expiring pass failed", "error", err)
	}
	if ctx.Err() != nil {
		return
	}
	if err := s.notifyExpired(ctx, now); err != nil {
		s.log.Errorw("Expired pass failed", "error", err)
	}
}

// notifyExpiring reminds owners of active subscriptions that expire tomorrow.
func (s *ExpirySweeper) notifyExpiring(ctx context.Context, now time.Time) error {
	start, end := entitlement.DayWindow(now, s.loc, 1)

	var subs []models.Subscription
	err := s.db.WithContext(ctx).
		Preload("User").
		Where("is_active = ? AND expires_at BETWEEN ? AND ?", true, start.UTC(), end.UTC()).
		Find(&subs).Error
	if err != nil {
		return err
	}

	for i := range subs {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		sub := &subs[i]
		if sub.LastExpiringEmailSent != nil && entitlement.SameDay(*sub.LastExpiringEmailSent, now, s.loc) {
			s.record(passExpiring, "skipped")
			continue
		}

		sent := s.deliver(ctx, passExpiring, sub, now, notifier.KindSubscriptionExpiring)
		if !sent {
			continue
		}

		err := s.db.WithContext(ctx).Model(&models.Subscription{}).
			Where("id = ?", sub.ID).
			Update("last_expiring_email_sent", now).Error
		if err != nil {
			s.log.Errorw("Failed to stamp expiring email", "subscription_id", sub.ID, "error", err)
		}
	}
	return nil
}

// notifyExpired notifies owners of lapsed paid subscriptions once per day,
// up to MaxExpiredEmails times, deactivating on the first notice.
func (s *ExpirySweeper) notifyExpired(ctx context.Context, now time.Time) error {
	var subs []models.Subscription
	err := s.db.WithContext(ctx).
		Preload("User").
		Where("expires_at < ? AND expired_email_count < ?", now.UTC(), models.MaxExpiredEmails).
		Find(&subs).Error
	if err != nil {
		return err
	}

	for i := range subs {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		sub := &subs[i]
		if sub.User != nil && sub.User.IsFree() {
			s.record(passExpired, "skipped")
			continue
		}
		if sub.LastExpiredEmailSent != nil && entitlement.SameDay(*sub.LastExpiredEmailSent, now, s.loc) {
			s.record(passExpired, "skipped")
			continue
		}

		sent := s.deliver(ctx, passExpired, sub, now, notifier.KindSubscriptionExpired)
		if !sent {
			continue
		}

		updates := map[string]interface{}{
			"expired_email_count":     gorm.Expr("expired_email_count + 1"),
			"last_expired_email_sent": now,
		}
		if sub.ExpiredEmailCount == 0 {
			updates["is_active"] = false
		}
		result := s.db.WithContext(ctx).Model(&models.Subscription{}).
			Where("id = ? AND expired_email_count = ?", sub.ID, sub.ExpiredEmailCount).
			Updates(updates)
		if result.Error != nil {
			s.log.Errorw("Failed to stamp expired email", "subscription_id", sub.ID, "error", result.Error)
			continue
		}
		if result.RowsAffected == 0 {
			s.log.Warnw("Expired email counter moved during sweep", "subscription_id", sub.ID)
		}
	}
	return nil
}

// deliver claims the item for today, renders and sends the email, and
// reports whether it went out. A failed send releases the claim.
func (s *ExpirySweeper) deliver(ctx context.Context, pass string, sub *models.Subscription, now time.Time, kind notifier.Kind) bool {
	if sub.User == nil || sub.ExpiresAt == nil {
		s.log.Warnw("Subscription without owner or expiry", "pass", pass, "subscription_id", sub.ID)
		s.record(pass, "skipped")
		return false
	}

	key := s.claimKey(pass, sub.ID, now)
	claimed, err := s.claim(ctx, key, now)
	if err != nil {
		s.log.Errorw("Failed to claim sweep item", "pass", pass, "subscription_id", sub.ID, "error", err)
		s.record(pass, "failed")
		return false
	}
	if !claimed {
		s.record(pass, "skipped")
		return false
	}

	msg := notifier.Message{
		To:   sub.User.Email,
		Kind: kind,
		Data: map[string]string{
			notifier.DataName:      sub.User.Name,
			notifier.DataExpiresAt: notifier.FormatDate(*sub.ExpiresAt, s.loc),
		},
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		s.log.Errorw("Failed to send expiry email",
			"pass", pass,
			"subscription_id", sub.ID,
			"user_id", sub.UserID,
			"error", err,
		)
		s.release(key)
		s.record(pass, "failed")
		return false
	}

	s.record(pass, "sent")
	return true
}

func (s *ExpirySweeper) claimKey(pass, subscriptionID string, now time.Time) string {
	return fmt.Sprintf("sweep:%s:%s:%s", pass, subscriptionID, now.In(s.loc).Format("2006-01-02"))
}

// claim takes the per-day redis marker so concurrent replicas do not both
// send. Without redis every item is claimable.
func (s *ExpirySweeper) claim(ctx context.Context, key string, now time.Time) (bool, error) {
	if s.redis == nil {
		return true, nil
	}
	return s.redis.SetNX(ctx, key, now.UTC().Format(time.RFC3339), claimTTL).Result()
}

func (s *ExpirySweeper) release(key string) {
	if s.redis == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.redis.Del(ctx, key).Err(); err != nil {
		s.log.Warnw("Failed to release sweep claim", "key", key, "error", err)
	}
}

func (s *ExpirySweeper) record(pass, outcome string) {
	metrics.SweeperEmails.WithLabelValues(pass, outcome).Inc()
}
