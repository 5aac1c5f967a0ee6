package sdk

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/turnstile-xyz/turnstile-sdk-go/pkg/errs"
	"github.com/turnstile-xyz/turnstile-sdk-go/pkg/model"
	"go.uber.org/zap"
)

// Call performs one atomic pay-then-invoke transaction:
//
//  1. Resolve the service via the directory.
//  2. Validate the quoted price against the request ceiling.
//  3. Pay the provider on the ledger and wait for settlement.
//  4. Invoke the service endpoint carrying the settlement id as payment proof.
//  5. Assemble the unified response.
//
// Steps run strictly in this order; no step is skipped, reordered, or
// re-entered. Every failure is a typed *errs.Error (see package errs).
//
// Once step 3 succeeds there is no compensating transaction: a failure in
// step 4 returns Timeout or ServiceUnavailable, but the payment stands. This
// is a deliberate boundary imposed by ledger finality; use errs.FundsMoved to
// tell such failures apart from pre-payment ones.
func (c *Client) Call(ctx context.Context, req *model.CallRequest) (*model.ServiceResponse, error) {
	start := time.Now()
	callID := uuid.NewString()
	log := zap.L().With(
		zap.String("call_id", callID),
		zap.String("service_id", req.ServiceID),
	)

	if c.executor == nil {
		return nil, errs.New(errs.AuthenticationFailed, "wallet not configured for paid calls")
	}

	// Step 1: resolve the service and snapshot its price.
	svc, err := c.directory.Get(ctx, req.ServiceID)
	if err != nil {
		return nil, errs.Wrap(err, errs.ServiceUnavailable, "failed to resolve service")
	}
	log.Debug("service resolved",
		zap.String("endpoint", svc.Endpoint),
		zap.String("price", svc.PricePerCall.String()),
		zap.String("currency", svc.Currency))

	// Step 2: price gate, before any funds can move.
	if err := validatePrice(svc.PricePerCall, req.MaxPrice); err != nil {
		log.Info("call rejected by price gate",
			zap.String("price", svc.PricePerCall.String()),
			zap.String("max_price", req.MaxPrice.String()))
		return nil, err
	}

	if lim := c.limiterFor(svc); lim != nil && !lim.Allow() {
		return nil, errs.Newf(errs.RateLimitExceeded,
			"rate limit of %d calls/min reached for service %s", svc.RateLimit, svc.ID)
	}

	// Step 3: pay the provider. Irreversible once broadcast.
	receipt, err := c.executor.Execute(ctx, c.wallet, svc.Provider, svc.PricePerCall, svc.Currency)
	if err != nil {
		return nil, errs.Wrap(err, errs.ServiceUnavailable, "failed to execute payment")
	}
	log.Info("payment settled", zap.String("settlement_id", receipt.SettlementID))

	// Step 4: invoke with payment proof.
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = c.cfg.Timeouts.ServiceInvoke
	}
	payload, err := c.invoker.Invoke(ctx, svc.Endpoint, req.Params, receipt, timeout)
	if err != nil {
		log.Error("service invocation failed after payment",
			zap.String("settlement_id", receipt.SettlementID),
			zap.Error(err))
		return nil, errs.Wrap(err, errs.ServiceUnavailable, "failed to call service")
	}

	// Step 5: unified response. Price is the service's price at resolution
	// time, never a caller-supplied value.
	resp := &model.ServiceResponse{
		Data:         payload,
		Price:        svc.PricePerCall,
		Currency:     svc.Currency,
		SettlementID: receipt.SettlementID,
		Provider:     svc.Provider,
		CallID:       callID,
		Timestamp:    time.Now(),
		Latency:      time.Since(start),
	}
	log.Info("call completed", zap.Duration("latency", resp.Latency))
	return resp, nil
}
