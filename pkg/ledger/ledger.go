// Package ledger abstracts the external value-transfer system behind a narrow
// interface: balance queries, transfer submission, and settlement
// confirmation. The SDK consumes only this contract; any conforming ledger
// client satisfies it. An EVM-backed implementation is provided.
package ledger

import (
	"context"

	"github.com/shopspring/decimal"
)

// Ledger is the value-transfer contract consumed by the payment executor.
// Amounts are expressed in the ledger's display unit as decimals; conversion
// to base units is an implementation concern.
type Ledger interface {
	// BalanceOf returns the current spendable balance of the given address.
	BalanceOf(ctx context.Context, address string) (decimal.Decimal, error)

	// SubmitTransfer signs and broadcasts a single value transfer and returns
	// the settlement identifier (transaction hash or equivalent). Once this
	// returns successfully the transfer is irreversible from the caller's
	// side, even if confirmation is never observed.
	SubmitTransfer(ctx context.Context, from, to string, amount decimal.Decimal) (string, error)

	// ConfirmTransfer blocks until the ledger reports the transfer as
	// committed, returns an error if the ledger reports failure, and returns
	// the context error when the wait is cut short. A context error means the
	// transfer outcome is unknown, not that it failed.
	ConfirmTransfer(ctx context.Context, settlementID string) error
}
