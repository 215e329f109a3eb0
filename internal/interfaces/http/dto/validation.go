package dto

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/scentpos/backend/internal/domain/finance"
	"github.com/scentpos/backend/internal/domain/report"
)

// RegisterValidations installs domain-aware validators on gin's binding
// engine. Must run once before routes are served.
func RegisterValidations() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	if err := v.RegisterValidation("expensecategory", validExpenseCategory); err != nil {
		return err
	}
	return v.RegisterValidation("trendbucket", validTrendBucket)
}

func validExpenseCategory(fl validator.FieldLevel) bool {
	return finance.ExpenseCategory(fl.Field().String()).IsValid()
}

func validTrendBucket(fl validator.FieldLevel) bool {
	return report.TrendBucket(fl.Field().String()).IsValid()
}
