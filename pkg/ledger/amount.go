package ledger

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// NativeDecimals is the number of decimal places of the EVM native unit.
const NativeDecimals = 18

// ToBaseUnits converts a display-unit amount into the ledger's smallest unit
// (amount * 10^decimals), truncating any precision beyond the base unit.
// Returns an error for negative amounts.
func ToBaseUnits(amount decimal.Decimal, decimals int32) (*big.Int, error) {
	if amount.IsNegative() {
		return nil, fmt.Errorf("amount must be non-negative, got %s", amount)
	}
	scaled := amount.Shift(decimals).Truncate(0)
	base, ok := new(big.Int).SetString(scaled.String(), 10)
	if !ok {
		return nil, fmt.Errorf("amount %s does not convert to base units", amount)
	}
	return base, nil
}

// FromBaseUnits converts a smallest-unit value back into the display unit as
// a decimal with full precision.
func FromBaseUnits(value *big.Int, decimals int32) decimal.Decimal {
	if value == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(value, 0).Shift(-decimals)
}
