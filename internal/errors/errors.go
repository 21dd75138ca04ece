// Package errors provides custom error types for the KU Money API.
// All service-layer errors should use AppError so that responses carry a
// stable machine-readable code and never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
// Details carries extra client-facing fields such as limit and usage values.
type AppError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	Details    map[string]any `json:"details,omitempty"`
	StatusCode int            `json:"-"`
	Internal   error          `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Is reports whether target is an AppError with the same code, so wrapped
// copies of a sentinel still match it.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		Details:    sentinel.Details,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		Details:    sentinel.Details,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// WithDetails creates a new AppError carrying the given client-facing details.
func WithDetails(sentinel *AppError, details map[string]any) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		Details:    details,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized         = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials   = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	ErrInvalidCallbackToken = &AppError{Code: "INVALID_CALLBACK_TOKEN", Message: "Invalid callback token", StatusCode: http.StatusUnauthorized}
)

// General errors.
var (
	ErrInvalidInput    = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound        = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer  = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
	ErrUserBusy        = &AppError{Code: "REQUEST_IN_PROGRESS", Message: "Another request for this user is still in progress", StatusCode: http.StatusConflict}
	ErrPayloadTooLarge = &AppError{Code: "PAYLOAD_TOO_LARGE", Message: "Request body is too large", StatusCode: http.StatusRequestEntityTooLarge}
)

// User errors.
var (
	ErrUserNotFound   = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", StatusCode: http.StatusConflict}
)

// Account errors.
var (
	ErrAccountNotFound = &AppError{Code: "ACCOUNT_NOT_FOUND", Message: "Account not found", StatusCode: http.StatusNotFound}
)

// Category errors.
var (
	ErrCategoryNotFound    = &AppError{Code: "CATEGORY_NOT_FOUND", Message: "Category not found", StatusCode: http.StatusNotFound}
	ErrCategoryIDRequired  = &AppError{Code: "CATEGORY_ID_REQUIRED", Message: "Category ID is required", StatusCode: http.StatusBadRequest}
	ErrInvalidCategoryType = &AppError{Code: "INVALID_CATEGORY_TYPE", Message: "Invalid category type", StatusCode: http.StatusBadRequest}
	ErrCategoryInUse       = &AppError{Code: "CATEGORY_IN_USE", Message: "Category is used by existing transactions", StatusCode: http.StatusConflict}
)

// Transaction errors.
var (
	ErrTransactionNotFound = &AppError{Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found", StatusCode: http.StatusNotFound}
	ErrInvalidAmount       = &AppError{Code: "INVALID_AMOUNT", Message: "Amount must be greater than zero", StatusCode: http.StatusBadRequest}
)

// Subscription and limit errors.
var (
	ErrNoSubscription             = &AppError{Code: "NO_SUBSCRIPTION", Message: "No active subscription found", StatusCode: http.StatusForbidden}
	ErrAccountLimitReached        = &AppError{Code: "ACCOUNT_LIMIT_REACHED", Message: "Account limit reached for your subscription", StatusCode: http.StatusForbidden}
	ErrCategoryLimitReached       = &AppError{Code: "CATEGORY_LIMIT_REACHED", Message: "Category limit reached for your subscription", StatusCode: http.StatusForbidden}
	ErrTransactionLimitReached    = &AppError{Code: "TRANSACTION_LIMIT_REACHED", Message: "Transaction limit reached for your subscription", StatusCode: http.StatusForbidden}
	ErrAccountBalanceLimitReached = &AppError{Code: "ACCOUNT_BALANCE_LIMIT_REACHED", Message: "Total account balance limit reached for your subscription", StatusCode: http.StatusForbidden}
	ErrNoActiveSubscription       = &AppError{Code: "NO_ACTIVE_SUBSCRIPTION", Message: "No paid subscription to extend, upgrade instead", StatusCode: http.StatusConflict}
)

// Package and order errors.
var (
	ErrPackageNotFound  = &AppError{Code: "PACKAGE_NOT_FOUND", Message: "Subscription package not found", StatusCode: http.StatusNotFound}
	ErrInvalidPeriod    = &AppError{Code: "INVALID_PERIOD", Message: "Invalid period value. Must be 1, 3, 6, or 12", StatusCode: http.StatusBadRequest}
	ErrInvalidOrderType = &AppError{Code: "INVALID_ORDER_TYPE", Message: "Order type must be either \"extends\" or \"upgrade\"", StatusCode: http.StatusBadRequest}
	ErrOrderNotFound    = &AppError{Code: "ORDER_NOT_FOUND", Message: "Order not found", StatusCode: http.StatusNotFound}
	ErrPaymentGateway   = &AppError{Code: "XENDIT_ERROR", Message: "Failed to create payment invoice", StatusCode: http.StatusBadGateway}
	ErrInvalidWebhook   = &AppError{Code: "INVALID_WEBHOOK_PAYLOAD", Message: "Invalid webhook payload", StatusCode: http.StatusBadRequest}
)
