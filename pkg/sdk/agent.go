package sdk

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/turnstile-xyz/turnstile-sdk-go/pkg/errs"
	"github.com/turnstile-xyz/turnstile-sdk-go/pkg/model"
	"go.uber.org/zap"
)

// defaultRetryAttempts is used when AutoRetry is enabled with a zero attempt count.
const defaultRetryAttempts = 3

// budgetWindow is the length of one agent spend-tracking window.
const budgetWindow = 24 * time.Hour

// Agent is a budget- and scope-restricted facade over the call pipeline,
// intended to bound autonomous spend. Every call uses the agent's fixed
// per-call price ceiling. Calls to services outside the allow-list are
// rejected with AuthenticationFailed before any directory or ledger traffic;
// once cumulative spend in the current 24h window reaches the daily budget,
// further calls are rejected with RateLimitExceeded.
//
// Spend accounting is conservative: confirmed responses add the price
// actually paid, and failures that may have moved funds (see errs.FundsMoved)
// add the per-call ceiling as an upper bound until reconciled.
//
// The budget check runs before the call, not atomically with it, so
// concurrent calls that each pass the check can together overshoot the
// budget by up to one per-call ceiling each. Size DailyBudget with that
// slack in mind when calls run concurrently.
type Agent struct {
	client *Client
	cfg    model.AgentConfig
	// allowed indexes cfg.Services; empty means no service is callable.
	allowed map[string]struct{}

	mu          sync.Mutex
	spent       decimal.Decimal
	windowStart time.Time
}

// NewAgent creates an agent bound to this client with its own budget state.
func (c *Client) NewAgent(cfg model.AgentConfig) *Agent {
	allowed := make(map[string]struct{}, len(cfg.Services))
	for _, id := range cfg.Services {
		allowed[id] = struct{}{}
	}
	return &Agent{
		client:      c,
		cfg:         cfg,
		allowed:     allowed,
		windowStart: time.Now(),
	}
}

// Spent returns the cumulative spend recorded in the current budget window.
func (a *Agent) Spent() decimal.Decimal {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rollWindowLocked()
	return a.spent
}

// Call invokes serviceID through the pipeline with the agent's per-call
// ceiling. When AutoRetry is enabled, failed calls are retried up to
// RetryAttempts times, but only for failures where no funds can have moved;
// a broadcast transfer is never blindly resubmitted.
func (a *Agent) Call(ctx context.Context, serviceID string, params map[string]any) (*model.ServiceResponse, error) {
	if _, ok := a.allowed[serviceID]; !ok {
		return nil, errs.Newf(errs.AuthenticationFailed,
			"service %s is not in the agent allow-list", serviceID)
	}
	if err := a.checkBudget(); err != nil {
		return nil, err
	}

	attempts := 1
	if a.cfg.AutoRetry {
		extra := a.cfg.RetryAttempts
		if extra <= 0 {
			extra = defaultRetryAttempts
		}
		attempts += extra
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		resp, err := a.client.Call(ctx, &model.CallRequest{
			ServiceID: serviceID,
			Params:    params,
			MaxPrice:  a.cfg.MaxPricePerCall,
		})
		if err == nil {
			a.recordSpend(resp.Price)
			return resp, nil
		}
		lastErr = err

		if errs.FundsMoved(err) {
			// The provider may have been paid; charge the ceiling as an upper
			// bound and surface the failure for reconciliation.
			a.recordSpend(a.cfg.MaxPricePerCall)
			return nil, err
		}
		if !a.retryable(err) || attempt == attempts {
			return nil, err
		}
		zap.L().Warn("agent call failed, retrying",
			zap.String("service_id", serviceID),
			zap.Int("attempt", attempt),
			zap.Error(err))
	}
	return nil, lastErr
}

// retryable reports whether a failure with no funds moved is worth retrying.
// Price and balance rejections are deterministic and excluded.
func (a *Agent) retryable(err error) bool {
	if !a.cfg.AutoRetry {
		return false
	}
	switch errs.KindOf(err) {
	case errs.NetworkError, errs.ServiceUnavailable:
		return true
	default:
		return false
	}
}

// checkBudget rejects the call once the current window's spend has reached
// the daily budget. A zero budget disables the cap.
func (a *Agent) checkBudget() error {
	if a.cfg.DailyBudget.IsZero() {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rollWindowLocked()
	if a.spent.GreaterThanOrEqual(a.cfg.DailyBudget) {
		return errs.Newf(errs.RateLimitExceeded,
			"daily budget %s exhausted (spent %s)", a.cfg.DailyBudget, a.spent)
	}
	return nil
}

func (a *Agent) recordSpend(amount decimal.Decimal) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rollWindowLocked()
	a.spent = a.spent.Add(amount)
}

// rollWindowLocked resets spend tracking when the 24h window has elapsed.
// Callers must hold a.mu.
func (a *Agent) rollWindowLocked() {
	if time.Since(a.windowStart) >= budgetWindow {
		a.spent = decimal.Zero
		a.windowStart = time.Now()
	}
}
