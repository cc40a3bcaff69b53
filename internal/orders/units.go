package orders

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rgastelum/supplyline-backend/pkg/enums"
	pkgerrors "github.com/rgastelum/supplyline-backend/pkg/errors"
)

// ValidateQuantity enforces unit granularity: continuous units accept up to
// two decimal places, discrete units accept whole numbers only. Zero and
// negative quantities are always rejected.
func ValidateQuantity(unit enums.ProductUnit, qty decimal.Decimal) error {
	if qty.Sign() <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if unit.IsContinuous() {
		if !qty.Equal(qty.Round(2)) {
			return pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("quantity %s exceeds two decimal places for unit %s", qty.String(), unit))
		}
		return nil
	}
	if !qty.Equal(qty.Truncate(0)) {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("quantity %s must be a whole number for unit %s", qty.String(), unit))
	}
	return nil
}
