package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "kumoney/internal/errors"
	"kumoney/internal/logger"
	"kumoney/internal/payment"
	"kumoney/internal/services"
)

const maxWebhookBytes = 1 << 20

// WebhookHandler receives payment gateway callbacks. The callback token is
// checked by middleware before it runs.
type WebhookHandler struct {
	orderService services.OrderServicer
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(orderService services.OrderServicer) *WebhookHandler {
	return &WebhookHandler{orderService: orderService}
}

// HandleXendit reconciles an invoice callback
// @Summary     Xendit invoice callback
// @Tags        orders
// @Accept      json
// @Produce     json
// @Param       x-callback-token header string true "Callback verification token"
// @Success     200 {object} map[string]bool "Received"
// @Failure     400 {object} ErrorResponse "Invalid payload"
// @Failure     401 {object} ErrorResponse "Invalid callback token"
// @Failure     404 {object} ErrorResponse "Order not found"
// @Failure     413 {object} ErrorResponse "Payload too large"
// @Router      /orders/webhook/xendit [post]
func (h *WebhookHandler) HandleXendit(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBytes+1))
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInvalidWebhook, err))
		return
	}
	if len(body) > maxWebhookBytes {
		respondWithError(c, apperrors.ErrPayloadTooLarge)
		return
	}

	n, err := payment.ParseNotification(body)
	if err != nil {
		var verr *payment.ValidationError
		if errors.As(err, &verr) {
			logger.Named("webhook").Warnw("Rejected invoice callback", "problems", verr.Problems)
			respondWithError(c, apperrors.WithDetails(apperrors.ErrInvalidWebhook, map[string]any{"problems": verr.Problems}))
			return
		}
		respondWithError(c, apperrors.Wrap(apperrors.ErrInvalidWebhook, err))
		return
	}

	err = h.orderService.HandlePaymentNotification(c.Request.Context(), services.PaymentNotification{
		ExternalID:    n.ExternalID,
		Status:        n.Status,
		Amount:        n.Amount,
		PaidAmount:    n.PaidAmount,
		PaymentMethod: n.PaymentMethod,
		PaidAt:        n.PaidAt,
		InvoiceID:     n.InvoiceID,
		Raw:           n.Raw,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
