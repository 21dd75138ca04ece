// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"kumoney/internal/models"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("category_type", validateCategoryType)
		_ = v.RegisterValidation("payment_status", validatePaymentStatus)
	}
}

func validateCategoryType(fl validator.FieldLevel) bool {
	return models.CategoryType(fl.Field().String()).Valid()
}

func validatePaymentStatus(fl validator.FieldLevel) bool {
	switch models.PaymentStatus(fl.Field().String()) {
	case models.PaymentStatusUnpaid, models.PaymentStatusPaid, models.PaymentStatusFailed,
		models.PaymentStatusExpired, models.PaymentStatusCancelled:
		return true
	}
	return false
}
