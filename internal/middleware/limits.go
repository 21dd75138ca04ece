package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	apperrors "kumoney/internal/errors"
	"kumoney/internal/logger"
	"kumoney/internal/metrics"
	"kumoney/internal/models"
	"kumoney/internal/services"
	"kumoney/internal/uuid"
)

// maxPeekBytes bounds how much of a request body a limit check buffers.
const maxPeekBytes = 1 << 20

type accountPayload struct {
	Balance *int64 `json:"balance"`
}

type transactionPayload struct {
	CategoryID string `json:"category_id"`
	Amount     int64  `json:"amount"`
}

// peekJSON decodes the request body into dst and restores it for the handler.
// An empty body leaves dst untouched. A body over maxPeekBytes is refused
// with ErrPayloadTooLarge.
func peekJSON(c *gin.Context, dst interface{}) error {
	if c.Request.Body == nil {
		return nil
	}
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxPeekBytes+1))
	if err != nil {
		return err
	}
	if len(body) > maxPeekBytes {
		return apperrors.ErrPayloadTooLarge
	}
	_ = c.Request.Body.Close()
	c.Request.Body = io.NopCloser(bytes.NewReader(body))
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	return json.Unmarshal(body, dst)
}

// enforce runs check and aborts the request when it is denied or fails.
func enforce(c *gin.Context, limits services.LimitServicer, check services.LimitCheck) bool {
	userID := userIDFrom(c)
	if userID == "" {
		abortWithError(c, apperrors.ErrUnauthorized)
		return false
	}

	result, err := limits.CheckLimit(userID, check)
	if err != nil {
		abortWithError(c, err)
		return false
	}
	if err := result.Err(); err != nil {
		metrics.LimitDenials.WithLabelValues(string(check.Kind)).Inc()
		logger.Named("limits").Infow("Mutation denied by subscription limit",
			"user_id", userID,
			"kind", check.Kind,
			"limit", result.Decision.Limit.String(),
			"current", result.Decision.Current,
			"attempted", result.Decision.Attempted,
		)
		abortWithError(c, err)
		return false
	}
	return true
}

func invalidBody(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrPayloadTooLarge) {
		abortWithError(c, err)
		return
	}
	abortWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid request body: "+err.Error()))
}

// AccountLimit gates account creation on the account count and on the total
// balance after adding the new account's opening balance.
func AccountLimit(limits services.LimitServicer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var payload accountPayload
		if err := peekJSON(c, &payload); err != nil {
			invalidBody(c, err)
			return
		}

		if !enforce(c, limits, services.LimitCheck{Kind: services.LimitAccountCount}) {
			return
		}

		var balance int64
		if payload.Balance != nil {
			balance = *payload.Balance
		}
		if !enforce(c, limits, services.LimitCheck{Kind: services.LimitAccountBalance, Attempted: balance}) {
			return
		}
		c.Next()
	}
}

// AccountBalanceLimit gates an account update that changes its balance. The
// account is taken from the :id path parameter.
func AccountBalanceLimit(limits services.LimitServicer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var payload accountPayload
		if err := peekJSON(c, &payload); err != nil {
			invalidBody(c, err)
			return
		}
		// A malformed id cannot match an account; the handler reports it.
		if payload.Balance == nil || !uuid.IsValid(c.Param("id")) {
			c.Next()
			return
		}

		check := services.LimitCheck{
			Kind:      services.LimitAccountBalance,
			Attempted: *payload.Balance,
			AccountID: c.Param("id"),
		}
		if !enforce(c, limits, check) {
			return
		}
		c.Next()
	}
}

// CategoryLimit gates category creation on the category count.
func CategoryLimit(limits services.LimitServicer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !enforce(c, limits, services.LimitCheck{Kind: services.LimitCategoryCount}) {
			return
		}
		c.Next()
	}
}

// TransactionLimit gates transaction creation on the incomes or expenses
// aggregate selected by the category's type. The category must belong to the
// caller.
func TransactionLimit(limits services.LimitServicer, categories services.CategoryServicer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var payload transactionPayload
		if err := peekJSON(c, &payload); err != nil {
			invalidBody(c, err)
			return
		}
		if payload.CategoryID == "" {
			abortWithError(c, apperrors.ErrCategoryIDRequired)
			return
		}
		if payload.Amount <= 0 {
			abortWithError(c, apperrors.ErrInvalidAmount)
			return
		}

		userID := userIDFrom(c)
		if userID == "" {
			abortWithError(c, apperrors.ErrUnauthorized)
			return
		}
		if !uuid.IsValid(payload.CategoryID) {
			abortWithError(c, apperrors.ErrCategoryNotFound)
			return
		}
		category, err := categories.GetCategoryByID(userID, payload.CategoryID)
		if err != nil {
			abortWithError(c, err)
			return
		}

		var kind services.LimitKind
		switch category.Type {
		case models.CategoryTypeIncomes:
			kind = services.LimitTransactionIncomes
		case models.CategoryTypeExpenses:
			kind = services.LimitTransactionExpense
		default:
			abortWithError(c, apperrors.ErrInvalidCategoryType)
			return
		}

		if !enforce(c, limits, services.LimitCheck{Kind: kind, Attempted: payload.Amount}) {
			return
		}
		c.Next()
	}
}
