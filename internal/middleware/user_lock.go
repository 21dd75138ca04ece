package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "kumoney/internal/errors"
	"kumoney/internal/lock"
	"kumoney/internal/logger"
)

// DefaultLockWait bounds how long a request queues behind the same user's
// in-flight mutation.
const DefaultLockWait = 5 * time.Second

// UserLock serializes the caller's requests through locker so a limit check
// and the mutation it admits cannot interleave with another request from the
// same user. It must run after AuthMiddleware.
func UserLock(locker lock.Locker, wait time.Duration) gin.HandlerFunc {
	if wait <= 0 {
		wait = DefaultLockWait
	}
	return func(c *gin.Context) {
		userID := userIDFrom(c)
		if userID == "" {
			abortWithError(c, apperrors.ErrUnauthorized)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), wait)
		unlock, err := locker.Lock(ctx, "user:"+userID)
		cancel()
		if err != nil {
			logger.Named("lock").Warnw("Failed to acquire user lock", "user_id", userID, "error", err)
			abortWithError(c, apperrors.Wrap(apperrors.ErrUserBusy, err))
			return
		}
		defer unlock()

		c.Next()
	}
}
