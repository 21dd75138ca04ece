package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kumoney/internal/services"
)

// SubscriptionHandler reports the caller's entitlement.
type SubscriptionHandler struct {
	subscriptionService services.SubscriptionServicer
}

// NewSubscriptionHandler creates a new SubscriptionHandler
func NewSubscriptionHandler(subscriptionService services.SubscriptionServicer) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptionService: subscriptionService}
}

// GetSubscription returns the active subscription and its limits
// @Summary     Current subscription
// @Tags        subscriptions
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} models.Subscription "Subscription"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "No subscription"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /subscriptions [get]
func (h *SubscriptionHandler) GetSubscription(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	sub, err := h.subscriptionService.GetSubscription(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"subscription": sub})
}

// GetExpiryStatus reports whether and when the subscription ends
// @Summary     Subscription expiry status
// @Tags        subscriptions
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.ExpiryStatus "Expiry status"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "No subscription"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /subscriptions/expired [get]
func (h *SubscriptionHandler) GetExpiryStatus(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	status, err := h.subscriptionService.GetExpiryStatus(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}
