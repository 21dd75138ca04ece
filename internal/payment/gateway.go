// Package payment integrates the invoicing gateway: creating hosted checkout
// sessions and decoding its asynchronous payment notifications.
package payment

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DefaultErrorCode is reported when the gateway gives no error code of its own.
const DefaultErrorCode = "XENDIT_ERROR"

// CheckoutRequest describes a hosted invoice keyed by ExternalID.
type CheckoutRequest struct {
	ExternalID  string
	Amount      int64
	PayerEmail  string
	Description string
	SuccessURL  string
	FailureURL  string
}

// CheckoutSession is the created invoice.
type CheckoutSession struct {
	InvoiceID   string
	CheckoutURL string
	Status      string
	ExpiresAt   time.Time
}

// Gateway creates checkout sessions with the payment provider.
type Gateway interface {
	CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
}

// GatewayError is a failed gateway call. Retryable marks transport failures,
// timeouts and 5xx responses.
type GatewayError struct {
	Code       string
	Message    string
	StatusCode int
	Retryable  bool
	Err        error
}

func (e *GatewayError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("payment gateway %s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("payment gateway %s: %s", e.Code, e.Message)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// ErrorCode extracts the gateway error code from err, or DefaultErrorCode.
func ErrorCode(err error) string {
	var gwErr *GatewayError
	if errors.As(err, &gwErr) && gwErr.Code != "" {
		return gwErr.Code
	}
	return DefaultErrorCode
}
