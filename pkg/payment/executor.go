// Package payment executes the pay leg of a paid service call: it checks the
// payer's balance, submits a single value transfer to the provider, waits for
// settlement, and produces the receipt used as payment proof. It performs no
// retries; once a transfer is broadcast it is irreversible and resubmitting
// is never safe here.
package payment

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/turnstile-xyz/turnstile-sdk-go/pkg/errs"
	"github.com/turnstile-xyz/turnstile-sdk-go/pkg/ledger"
	"github.com/turnstile-xyz/turnstile-sdk-go/pkg/model"
	"go.uber.org/zap"
)

// Executor moves funds from payer to payee on the configured ledger and
// confirms settlement. Safe for concurrent use.
//
// Two concurrent payments from the same wallet can both pass the balance
// check against a stale balance and then race on the ledger. With per-payer
// serialization enabled (the default when constructed through sdk.New), the
// balance check and transfer submission run under a per-payer lock, closing
// that race at the cost of serializing submissions per wallet.
type Executor struct {
	ledger       ledger.Ledger
	balanceWait  time.Duration
	transferWait time.Duration
	confirmWait  time.Duration
	serialize    bool

	mu     sync.Mutex
	payers map[string]*sync.Mutex
}

// Option configures an Executor.
type Option func(*Executor)

// WithBalanceReadWait bounds the payer balance read.
func WithBalanceReadWait(d time.Duration) Option {
	return func(x *Executor) { x.balanceWait = d }
}

// WithTransferWait bounds the transfer submission (signing plus broadcast).
func WithTransferWait(d time.Duration) Option {
	return func(x *Executor) { x.transferWait = d }
}

// WithConfirmWait bounds the settlement confirmation wait. When the wait
// expires the payment outcome is unknown and Execute returns PaymentPending.
func WithConfirmWait(d time.Duration) Option {
	return func(x *Executor) { x.confirmWait = d }
}

// SerializePerPayer toggles per-payer serialization of the balance check and
// transfer submission.
func SerializePerPayer(on bool) Option {
	return func(x *Executor) { x.serialize = on }
}

// NewExecutor creates an Executor over the given ledger. Default waits are
// 12s for the balance read, 25s for the transfer submission, and 90s for
// settlement confirmation; per-payer serialization is off.
func NewExecutor(l ledger.Ledger, opts ...Option) *Executor {
	x := &Executor{
		ledger:       l,
		balanceWait:  12 * time.Second,
		transferWait: 25 * time.Second,
		confirmWait:  90 * time.Second,
		payers:       make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// Execute pays amount (in the service's display unit) from payer to payee and
// blocks until the ledger confirms settlement.
//
// Failure kinds:
//   - InsufficientBalance: balance below amount; no transaction submitted.
//   - NetworkError: balance read or submission failed, or the ledger reported
//     the transfer as failed.
//   - PaymentPending: the transfer was broadcast but the confirmation wait
//     expired; the payment may still land. The settlement identifier is
//     included so the caller can reconcile against the ledger. Never retry a
//     call after this error without reconciling first.
//
// Errors after broadcast are marked funds-moved (see errs.FundsMoved).
func (x *Executor) Execute(ctx context.Context, payer, payee string, amount decimal.Decimal, currency string) (*model.Receipt, error) {
	settlementID, err := x.submit(ctx, payer, payee, amount)
	if err != nil {
		return nil, err
	}

	confirmCtx, cancel := context.WithTimeout(ctx, x.confirmWait)
	defer cancel()

	if err := x.ledger.ConfirmTransfer(confirmCtx, settlementID); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			zap.L().Warn("confirmation wait expired, payment outcome unknown",
				zap.String("settlement_id", settlementID))
			return nil, errs.Newf(errs.PaymentPending,
				"confirmation wait expired for settlement %s; reconcile against the ledger before retrying", settlementID).
				WithFundsMoved()
		}
		return nil, errs.MarkFundsMoved(errs.Wrap(err, errs.NetworkError, "transfer failed to settle"))
	}

	zap.L().Info("payment settled",
		zap.String("settlement_id", settlementID),
		zap.String("payee", payee),
		zap.String("amount", amount.String()),
		zap.String("currency", currency))

	return &model.Receipt{
		SettlementID: settlementID,
		Amount:       amount,
		Currency:     currency,
		Payer:        payer,
		Payee:        payee,
	}, nil
}

// submit runs the balance check and transfer submission, under the payer's
// lock when serialization is enabled.
func (x *Executor) submit(ctx context.Context, payer, payee string, amount decimal.Decimal) (string, error) {
	if x.serialize {
		lock := x.payerLock(payer)
		lock.Lock()
		defer lock.Unlock()
	}

	balCtx, cancel := context.WithTimeout(ctx, x.balanceWait)
	balance, err := x.ledger.BalanceOf(balCtx, payer)
	cancel()
	if err != nil {
		return "", errs.Wrap(err, errs.NetworkError, "failed to read payer balance")
	}

	if balance.LessThan(amount) {
		return "", errs.Newf(errs.InsufficientBalance,
			"balance %s below required %s", balance, amount)
	}

	submitCtx, cancel := context.WithTimeout(ctx, x.transferWait)
	settlementID, err := x.ledger.SubmitTransfer(submitCtx, payer, payee, amount)
	cancel()
	if err != nil {
		// A failed submission may still have reached the network; treat the
		// outcome as unsafe to retry.
		return "", errs.MarkFundsMoved(errs.Wrap(err, errs.NetworkError, "failed to submit transfer"))
	}
	return settlementID, nil
}

func (x *Executor) payerLock(payer string) *sync.Mutex {
	x.mu.Lock()
	defer x.mu.Unlock()
	lock, ok := x.payers[payer]
	if !ok {
		lock = &sync.Mutex{}
		x.payers[payer] = lock
	}
	return lock
}
