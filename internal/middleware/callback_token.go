package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	apperrors "kumoney/internal/errors"
	"kumoney/internal/logger"
)

// CallbackTokenHeader carries the secret the payment gateway signs its
// notifications with.
const CallbackTokenHeader = "x-callback-token"

// CallbackTokenMiddleware rejects webhook calls whose x-callback-token header
// does not match token exactly. An empty token rejects every call.
func CallbackTokenMiddleware(token string) gin.HandlerFunc {
	if token == "" {
		logger.Named("webhook").Warn("XENDIT_CALLBACK_TOKEN is not set; payment webhooks will be rejected")
	}
	return func(c *gin.Context) {
		got := c.GetHeader(CallbackTokenHeader)
		if token == "" || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			logger.Named("webhook").Warnw("Rejected webhook with invalid callback token",
				"client_ip", c.ClientIP(),
				"token_present", got != "",
			)
			abortWithError(c, apperrors.ErrInvalidCallbackToken)
			return
		}
		c.Next()
	}
}
