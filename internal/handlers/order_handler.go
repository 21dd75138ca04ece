package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "kumoney/internal/errors"
	"kumoney/internal/middleware"
	"kumoney/internal/models"
	"kumoney/internal/pagination"
	"kumoney/internal/services"
	"kumoney/internal/uuid"
)

// OrderHandler handles subscription purchases
type OrderHandler struct {
	orderService services.OrderServicer
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService services.OrderServicer) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// CreateOrderRequest represents the request payload for creating an order.
// order_type and period_value are checked by the order service so clients get
// INVALID_ORDER_TYPE and INVALID_PERIOD instead of a generic binding error.
type CreateOrderRequest struct {
	PackageID   string           `json:"package_id" binding:"required"`
	OrderType   models.OrderType `json:"order_type"`
	PeriodValue int              `json:"period_value"`
}

// OrderListQuery holds the my-orders query parameters.
type OrderListQuery struct {
	pagination.PageRequest
	Status string `form:"status" binding:"omitempty,payment_status"`
}

// CreateOrder starts a purchase
// @Summary     Create an order
// @Description Create an unpaid order and, for a priced package, a hosted checkout invoice
// @Tags        orders
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateOrderRequest true "Order details"
// @Success     201 {object} services.CheckoutResult "Order created"
// @Failure     400 {object} ErrorResponse "Invalid period or order type"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Package not found"
// @Failure     502 {object} ErrorResponse "Payment gateway error"
// @Router      /orders [post]
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	if !uuid.IsValid(req.PackageID) {
		respondWithError(c, apperrors.ErrPackageNotFound)
		return
	}

	payer := services.Payer{
		UserID: userID,
		Name:   c.GetString(middleware.NameKey),
		Email:  c.GetString(middleware.EmailKey),
	}
	result, err := h.orderService.CreateOrder(c.Request.Context(), payer, req.OrderType, req.PackageID, req.PeriodValue)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// GetOrderStatus returns one of the caller's orders
// @Summary     Order status
// @Tags        orders
// @Produce     json
// @Security    BearerAuth
// @Param       transactionId path string true "Order transaction ID"
// @Success     200 {object} models.Order "Order"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Order not found"
// @Router      /orders/status/{transactionId} [get]
func (h *OrderHandler) GetOrderStatus(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID := c.Param("transactionId")
	if !uuid.IsValid(transactionID) {
		respondWithError(c, apperrors.ErrOrderNotFound)
		return
	}

	order, err := h.orderService.GetOrderStatus(userID, transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}

// GetUserOrders lists the caller's orders, newest first
// @Summary     My orders
// @Tags        orders
// @Produce     json
// @Security    BearerAuth
// @Param       status    query string false "Filter by payment status"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Order] "Paginated orders"
// @Failure     400 {object} ErrorResponse "Invalid filter"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /orders/my-orders [get]
func (h *OrderHandler) GetUserOrders(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var query OrderListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var status *models.PaymentStatus
	if query.Status != "" {
		s := models.PaymentStatus(query.Status)
		status = &s
	}

	result, err := h.orderService.GetUserOrders(userID, status, query.PageRequest)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetLastOrder returns the caller's most recent order
// @Summary     Last order
// @Tags        orders
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} models.Order "Order"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "No orders"
// @Router      /orders/last [get]
func (h *OrderHandler) GetLastOrder(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	order, err := h.orderService.GetLastOrder(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}
