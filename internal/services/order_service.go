package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	apperrors "kumoney/internal/errors"
	"kumoney/internal/logger"
	"kumoney/internal/metrics"
	"kumoney/internal/models"
	"kumoney/internal/pagination"
	"kumoney/internal/payment"
	"kumoney/internal/uuid"
)

// gatewayStatuses maps invoice callback statuses to order states.
var gatewayStatuses = map[string]models.PaymentStatus{
	"PAID":      models.PaymentStatusPaid,
	"EXPIRED":   models.PaymentStatusExpired,
	"FAILED":    models.PaymentStatusFailed,
	"CANCELLED": models.PaymentStatusCancelled,
}

// orderService creates orders and reconciles gateway notifications. A paid
// transition is recorded at most once per order, and only that transition
// reaches the entitlement mutator.
type orderService struct {
	db        *gorm.DB
	gateway   payment.Gateway
	mutator   EntitlementMutator
	clientURL string
}

// NewOrderService creates a new OrderServicer.
func NewOrderService(db *gorm.DB, gateway payment.Gateway, mutator EntitlementMutator, clientURL string) OrderServicer {
	return &orderService{
		db:        db,
		gateway:   gateway,
		mutator:   mutator,
		clientURL: strings.TrimRight(clientURL, "/"),
	}
}

// CreateOrder persists an unpaid order and opens a checkout session for it.
// If the gateway call fails the order is removed again so no orphan unpaid
// order is left behind.
func (s *orderService) CreateOrder(ctx context.Context, payer Payer, orderType models.OrderType, packageID string, period int) (*CheckoutResult, error) {
	if !models.ValidOrderPeriod(period) {
		return nil, apperrors.ErrInvalidPeriod
	}
	if !orderType.Valid() {
		return nil, apperrors.ErrInvalidOrderType
	}

	pkg, err := findPackage(s.db, "id = ?", packageID)
	if err != nil {
		return nil, err
	}
	if orderType == models.OrderTypeExtends {
		if err := s.requireExtendable(ctx, payer.UserID); err != nil {
			return nil, err
		}
	}

	now := timeNow()
	order := &models.Order{
		UserID:           payer.UserID,
		OrderType:        orderType,
		PackageID:        pkg.ID,
		PackageName:      pkg.Name,
		PackagePrice:     pkg.Price,
		Amount:           pkg.Price * int64(period),
		PeriodType:       models.OrderPeriodMonth,
		PeriodValue:      period,
		ExpiredPaymentAt: now.Add(models.OrderPaymentDeadline),
		CreatedByName:    payer.Name,
		CreatedByEmail:   payer.Email,
		SubscriptionRef:  models.OrderSubscriptionRef,
		PaymentMethod:    models.OrderPaymentMethod,
		PaymentStatus:    models.PaymentStatusUnpaid,
		TransactionID:    uuid.NewTransactionID(),
	}
	if err := s.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if order.Amount > 0 {
		session, err := s.gateway.CreateCheckout(ctx, payment.CheckoutRequest{
			ExternalID:  order.TransactionID,
			Amount:      order.Amount,
			PayerEmail:  payer.Email,
			Description: orderDescription(pkg.Name, period),
			SuccessURL:  fmt.Sprintf("%s/payment/success?transactionId=%s", s.clientURL, order.TransactionID),
			FailureURL:  fmt.Sprintf("%s/payment/failed?transactionId=%s", s.clientURL, order.TransactionID),
		})
		if err != nil {
			if delErr := s.db.Unscoped().Delete(order).Error; delErr != nil {
				logger.Get().Errorw("failed to remove order after gateway error",
					"transaction_id", order.TransactionID, "error", delErr)
			}
			logger.Get().Warnw("payment gateway rejected checkout",
				"transaction_id", order.TransactionID,
				"user_id", payer.UserID,
				"error", err,
			)
			return nil, gatewayError(err)
		}

		order.CheckoutURL = &session.CheckoutURL
		order.InvoiceID = &session.InvoiceID
		if err := s.db.WithContext(ctx).Model(order).Updates(map[string]interface{}{
			"checkout_url": session.CheckoutURL,
			"invoice_id":   session.InvoiceID,
		}).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	logger.Get().Infow("order created",
		"transaction_id", order.TransactionID,
		"user_id", payer.UserID,
		"package", pkg.Name,
		"order_type", orderType,
		"amount", order.Amount,
	)

	return &CheckoutResult{
		TransactionID: order.TransactionID,
		CheckoutURL:   order.CheckoutURL,
		Amount:        order.Amount,
		ExpiresAt:     order.ExpiredPaymentAt,
		Package:       pkg.Name,
		Period:        period,
		OrderType:     orderType,
	}, nil
}

func orderDescription(packageName string, months int) string {
	unit := "Month"
	if months > 1 {
		unit = "Months"
	}
	return fmt.Sprintf("KU-Money %s Subscription - %d %s", strings.ToUpper(packageName), months, unit)
}

func gatewayError(err error) error {
	appErr := apperrors.Wrap(apperrors.ErrPaymentGateway, err)
	appErr.Code = payment.ErrorCode(err)
	appErr.Details = map[string]any{"retryable": true}

	var gwErr *payment.GatewayError
	if errors.As(err, &gwErr) && gwErr.Message != "" {
		appErr.Details["gateway_message"] = gwErr.Message
	}
	return appErr
}

// HandlePaymentNotification records a gateway status update. Redelivered and
// unknown statuses are acknowledged without effect.
func (s *orderService) HandlePaymentNotification(ctx context.Context, n PaymentNotification) error {
	var order models.Order
	if err := s.db.WithContext(ctx).Where("transaction_id = ?", n.ExternalID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Get().Warnw("payment notification for unknown order", "transaction_id", n.ExternalID, "status", n.Status)
			metrics.WebhookNotifications.WithLabelValues(statusLabel(n.Status), "unknown_order").Inc()
			return apperrors.ErrOrderNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	status, known := gatewayStatuses[strings.ToUpper(n.Status)]
	if !known {
		logger.Get().Warnw("ignoring unknown payment status", "transaction_id", n.ExternalID, "status", n.Status)
		metrics.WebhookNotifications.WithLabelValues("unknown", "ignored").Inc()
		return nil
	}

	if status == models.PaymentStatusPaid {
		return s.markPaid(ctx, &order, n)
	}
	return s.markClosed(ctx, &order, status, n)
}

// statusLabel bounds the metric label values to the known statuses.
func statusLabel(raw string) string {
	if status, ok := gatewayStatuses[strings.ToUpper(raw)]; ok {
		return string(status)
	}
	return "unknown"
}

// markPaid transitions the order to paid with a compare-and-set so a
// redelivered notification finds nothing to update.
func (s *orderService) markPaid(ctx context.Context, order *models.Order, n PaymentNotification) error {
	applied := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"payment_status": models.PaymentStatusPaid,
			"webhook_data":   n.Raw,
		}
		if n.PaymentMethod != "" {
			updates["payment_method"] = n.PaymentMethod
		}
		if n.InvoiceID != "" {
			updates["invoice_id"] = n.InvoiceID
		}

		res := tx.Model(&models.Order{}).
			Where("id = ? AND payment_status <> ?", order.ID, models.PaymentStatusPaid).
			Updates(updates)
		if res.Error != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
		}
		if res.RowsAffected == 0 {
			return nil
		}

		paidAt := timeNow()
		if n.PaidAt != nil {
			paidAt = *n.PaidAt
		}
		amount := n.PaidAmount
		if amount == 0 {
			amount = n.Amount
		}
		entry := &models.OrderPayment{
			OrderID:       order.ID,
			Type:          models.PaymentEntryType,
			Amount:        amount,
			PaidAt:        paidAt,
			PaymentMethod: n.PaymentMethod,
			InvoiceID:     n.InvoiceID,
		}
		if err := tx.Create(entry).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		applied = true
		return nil
	})
	if err != nil {
		return err
	}

	if !applied {
		logger.Get().Infow("duplicate paid notification", "transaction_id", order.TransactionID)
		metrics.WebhookNotifications.WithLabelValues(string(models.PaymentStatusPaid), "duplicate").Inc()
		return nil
	}
	metrics.WebhookNotifications.WithLabelValues(string(models.PaymentStatusPaid), "applied").Inc()

	// The payment is committed; the grant must not be lost to a client disconnect.
	grantCtx := context.WithoutCancel(ctx)
	if err := s.mutator.ApplyGrant(grantCtx, Grant{
		UserID:       order.UserID,
		PackageName:  order.PackageName,
		OrderType:    order.OrderType,
		PeriodMonths: order.PeriodValue,
	}); err != nil {
		logger.Get().Errorw("paid order without entitlement",
			"transaction_id", order.TransactionID,
			"user_id", order.UserID,
			"package", order.PackageName,
			"order_type", order.OrderType,
			"error", err,
		)
		metrics.EntitlementGrantFailures.Inc()
		return nil
	}

	logger.Get().Infow("entitlement granted",
		"transaction_id", order.TransactionID,
		"user_id", order.UserID,
		"package", order.PackageName,
		"order_type", order.OrderType,
	)
	return nil
}

// markClosed moves an unpaid order to a terminal non-paid state.
func (s *orderService) markClosed(ctx context.Context, order *models.Order, status models.PaymentStatus, n PaymentNotification) error {
	res := s.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND payment_status = ?", order.ID, models.PaymentStatusUnpaid).
		Updates(map[string]interface{}{
			"payment_status": status,
			"webhook_data":   n.Raw,
		})
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}

	outcome := "applied"
	if res.RowsAffected == 0 {
		outcome = "ignored"
		logger.Get().Infow("order already closed, ignoring notification",
			"transaction_id", order.TransactionID,
			"current_status", order.PaymentStatus,
			"status", status,
		)
	}
	metrics.WebhookNotifications.WithLabelValues(string(status), outcome).Inc()
	return nil
}

// GetOrderStatus returns one of the user's orders with its payment history.
func (s *orderService) GetOrderStatus(userID, transactionID string) (*models.Order, error) {
	var order models.Order
	if err := s.db.Preload("PaymentHistory").
		Where("transaction_id = ? AND user_id = ?", transactionID, userID).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &order, nil
}

// GetUserOrders lists the user's orders, newest first.
func (s *orderService) GetUserOrders(userID string, status *models.PaymentStatus, page pagination.PageRequest) (*pagination.PageResponse[models.Order], error) {
	base := s.db.Model(&models.Order{}).Where("user_id = ?", userID)
	if status != nil {
		base = base.Where("payment_status = ?", *status)
	}

	result, err := pagination.Find[models.Order](base, page, "created_at DESC")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}

// GetLastOrder returns the user's most recent order.
func (s *orderService) GetLastOrder(userID string) (*models.Order, error) {
	var order models.Order
	if err := s.db.Where("user_id = ?", userID).Order("created_at DESC").First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &order, nil
}

// requireExtendable refuses an extends order when there is no expiring
// subscription for the grant to push forward.
func (s *orderService) requireExtendable(ctx context.Context, userID string) error {
	var sub models.Subscription
	err := s.db.WithContext(ctx).Select("id", "expires_at").Where("user_id = ?", userID).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && sub.ExpiresAt == nil) {
		return apperrors.ErrNoActiveSubscription
	}
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
