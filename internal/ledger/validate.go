package ledger

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"CryptoTracker/internal/model"
)

// newValidator builds a validator that understands asset symbols.
func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("asset", func(fl validator.FieldLevel) bool {
		return model.Asset(fl.Field().String()).Valid()
	}); err != nil {
		panic(fmt.Sprintf("register asset validation: %v", err))
	}
	return v
}

// checkAmounts validates decimal fields without a float64 round trip.
func checkAmounts(tx *model.Transaction) error {
	if !tx.Quantity.IsPositive() {
		return fmt.Errorf("quantity must be positive, got %s", tx.Quantity)
	}
	if tx.Price.LessThan(decimal.Zero) {
		return fmt.Errorf("price must not be negative, got %s", tx.Price)
	}
	return nil
}
