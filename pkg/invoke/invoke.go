// Package invoke performs the proof-carrying service invocation: it POSTs the
// caller's parameters to the service endpoint with the settlement identifier
// attached as payment proof, under a hard per-call deadline. It never
// retries; by the time this runs the provider has been paid, and re-invoking
// is not guaranteed idempotent on the provider side.
package invoke

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/turnstile-xyz/turnstile-sdk-go/pkg/errs"
	"github.com/turnstile-xyz/turnstile-sdk-go/pkg/model"
	"go.uber.org/zap"
)

// PaymentProofHeader carries the settlement identifier that authorizes a paid
// call at the service endpoint.
const PaymentProofHeader = "X-Payment-Proof"

// Invoker issues proof-carrying calls to service endpoints. Safe for
// concurrent use.
type Invoker struct {
	http *http.Client
}

// NewInvoker creates an Invoker. httpClient may be nil, in which case
// http.DefaultClient is used; per-call deadlines are applied via context, so
// the client needs no Timeout of its own.
func NewInvoker(httpClient *http.Client) *Invoker {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Invoker{http: httpClient}
}

// Invoke POSTs params as JSON to endpoint with the receipt's settlement
// identifier in the X-Payment-Proof header and returns the raw response
// payload. timeout is a hard deadline on the whole round trip.
//
// Failure kinds: Timeout when the deadline expires, ServiceUnavailable for a
// non-success status or any transport failure. All failures here occur after
// payment and are marked funds-moved.
func (i *Invoker) Invoke(ctx context.Context, endpoint string, params map[string]any, receipt *model.Receipt, timeout time.Duration) (json.RawMessage, error) {
	if params == nil {
		params = map[string]any{}
	}
	body, err := json.Marshal(params)
	if err != nil {
		return nil, errs.MarkFundsMoved(errs.Wrap(err, errs.ServiceUnavailable, "failed to encode call parameters"))
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, errs.MarkFundsMoved(errs.Wrap(err, errs.ServiceUnavailable, "failed to build service request"))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(PaymentProofHeader, receipt.SettlementID)

	resp, err := i.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			zap.L().Warn("service invocation timed out",
				zap.String("endpoint", endpoint),
				zap.String("settlement_id", receipt.SettlementID),
				zap.Duration("timeout", timeout))
			return nil, errs.MarkFundsMoved(errs.New(errs.Timeout, "service request timed out"))
		}
		return nil, errs.MarkFundsMoved(errs.Wrap(err, errs.ServiceUnavailable, "failed to call service"))
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			zap.L().Error("failed to close response body", zap.Error(err))
		}
	}()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, errs.MarkFundsMoved(errs.New(errs.Timeout, "service request timed out"))
		}
		return nil, errs.MarkFundsMoved(errs.Wrap(err, errs.ServiceUnavailable, "failed to read service response"))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errs.MarkFundsMoved(errs.Newf(errs.ServiceUnavailable,
			"service returned status %d", resp.StatusCode))
	}
	return payload, nil
}
