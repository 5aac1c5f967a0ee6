// Package sdk provides the high-level entry point for the Turnstile
// marketplace: service discovery, atomic pay-then-invoke calls, and
// budget-constrained agents.
//
// # Quick Start
//
// Create a client with configuration, then call a service:
//
//	import (
//		"github.com/turnstile-xyz/turnstile-sdk-go/pkg/config"
//		"github.com/turnstile-xyz/turnstile-sdk-go/pkg/model"
//		"github.com/turnstile-xyz/turnstile-sdk-go/pkg/sdk"
//	)
//
//	func main() {
//		cfg := &config.Config{
//			Environment: config.Devnet,
//			RPCAddr:     "https://rpc.devnet.example",
//			PrivateKey:  "YOUR_PRIVATE_KEY",
//		}
//
//		client, err := sdk.New(context.Background(), cfg)
//		if err != nil {
//			log.Fatal(err)
//		}
//		defer client.Close()
//
//		resp, err := client.Call(context.Background(), &model.CallRequest{
//			ServiceID: "sentiment-api",
//			Params:    map[string]any{"text": "great product"},
//			MaxPrice:  decimal.NewFromFloat(0.5),
//		})
//		if err != nil {
//			log.Fatal(err)
//		}
//		fmt.Printf("paid %s %s, got: %s\n", resp.Price, resp.Currency, resp.Data)
//	}
//
// # The call pipeline
//
// Client.Call composes three components in a fixed order:
//
//   - price gate: the quoted price is validated against the caller's ceiling
//     before anything else can spend money
//   - payment executor: balance check, single value transfer to the provider,
//     settlement confirmation
//   - proof-carrying invoker: POST to the service endpoint with the
//     settlement id in the X-Payment-Proof header, under a hard deadline
//
// A payment receipt exists if and only if funds left the wallet. Once the
// transfer is broadcast there is no rollback: invocation failures after
// payment are reported (Timeout, ServiceUnavailable) with the funds-moved
// marker set, never silently retried.
//
// # Errors
//
// Every failure crossing the SDK boundary is an *errs.Error with one kind
// from the closed taxonomy (InsufficientBalance, PriceTooHigh,
// ServiceUnavailable, Timeout, NetworkError, PaymentPending, ...). See
// package errs. PaymentPending deserves attention: it means the confirmation
// wait expired and the payment outcome is unknown; reconcile against the
// ledger before retrying, or you may pay twice.
//
// # Agents
//
// Client.NewAgent returns a restricted facade that pins a per-call price
// ceiling, enforces a service allow-list and a daily spend budget, and
// optionally retries failures that are provably pre-payment.
//
// # Thread safety
//
// The Client and its agents are safe for concurrent use. Concurrent calls
// share the wallet balance; payment submission is serialized per payer to
// keep two calls from spending the same funds against a stale balance.
package sdk
