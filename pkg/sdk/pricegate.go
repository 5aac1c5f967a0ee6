package sdk

import (
	"github.com/shopspring/decimal"
	"github.com/turnstile-xyz/turnstile-sdk-go/pkg/errs"
)

// validatePrice enforces the caller's price ceiling against the quoted price.
// It must run before any payment is executed; never pay before validating the
// ceiling. Pure, no side effects.
func validatePrice(quoted, ceiling decimal.Decimal) error {
	if quoted.GreaterThan(ceiling) {
		return errs.Newf(errs.PriceTooHigh,
			"service price (%s) exceeds maxPrice (%s)", quoted, ceiling)
	}
	return nil
}
