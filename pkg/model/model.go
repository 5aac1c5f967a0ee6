// Package model defines the data structures exchanged with the Turnstile
// marketplace directory and returned by the SDK: service listings, call
// requests, payment receipts, and unified call responses. JSON tags mirror
// the directory wire format exactly.
package model

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Service describes a priced service as listed in the marketplace directory.
// It is an immutable snapshot taken at resolution time; the SDK never mutates
// it after fetching.
type Service struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Endpoint     string          `json:"endpoint"`
	PricePerCall decimal.Decimal `json:"pricePerCall"`
	Currency     string          `json:"currency"`
	Description  string          `json:"description"`
	Category     string          `json:"category"`
	// Provider is the payment destination identity (the provider's wallet address).
	Provider  string   `json:"provider"`
	RateLimit int      `json:"rateLimit,omitempty"` // calls per minute, 0 = unlimited
	Rating    float64  `json:"rating,omitempty"`
	CallCount int64    `json:"callCount,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

// CallRequest carries everything needed for one paid service invocation.
// Construct a fresh request per call; requests are not reused.
type CallRequest struct {
	// ServiceID identifies the target service in the directory.
	ServiceID string
	// Params is an opaque payload forwarded verbatim to the service endpoint.
	Params map[string]any
	// MaxPrice is the caller-imposed price ceiling. The call is rejected
	// before any payment if the quoted price exceeds it.
	MaxPrice decimal.Decimal
	// Timeout overrides the configured service-invocation timeout when > 0.
	Timeout time.Duration
}

// Receipt proves a settled payment. It exists if and only if funds left the
// payer's custody, is produced exactly once per successful payment, and is
// never reused across calls.
type Receipt struct {
	// SettlementID is the ledger's reference to the committed transfer
	// (transaction hash or equivalent), used as payment proof.
	SettlementID string
	Amount       decimal.Decimal
	Currency     string
	Payer        string
	Payee        string
}

// ServiceResponse is the terminal artifact of a successful paid call,
// correlating the service output with the payment that bought it.
type ServiceResponse struct {
	// Data is the raw JSON payload returned by the service.
	Data json.RawMessage
	// Price is the amount actually charged: the service's price at resolution
	// time, never a caller-supplied value.
	Price        decimal.Decimal
	Currency     string
	SettlementID string
	Provider     string
	// CallID correlates log lines and the response for this invocation.
	CallID    string
	Timestamp time.Time
	// Latency is wall-clock time from resolution start to invocation completion.
	Latency time.Duration
}

// ListOptions filters and orders a directory listing. Zero values are omitted
// from the query.
type ListOptions struct {
	Category string
	MaxPrice decimal.Decimal
	// SortBy is one of "price", "popularity", "rating".
	SortBy string
	Tags   []string
	Limit  int
	Offset int
}

// RegisterRequest describes a new service to publish in the directory.
type RegisterRequest struct {
	Name         string          `json:"name"`
	Endpoint     string          `json:"endpoint"`
	PricePerCall decimal.Decimal `json:"pricePerCall"`
	Currency     string          `json:"currency"`
	Description  string          `json:"description"`
	Category     string          `json:"category"`
	RateLimit    int             `json:"rateLimit,omitempty"`
	Tags         []string        `json:"tags,omitempty"`
}

// AgentConfig bounds an autonomous agent's spend and scope.
type AgentConfig struct {
	// MaxPricePerCall is the ceiling applied to every call the agent makes.
	MaxPricePerCall decimal.Decimal
	// DailyBudget caps cumulative confirmed spend per 24h window.
	DailyBudget decimal.Decimal
	// Services is the allow-list of service IDs the agent may call.
	Services []string
	// AutoRetry enables bounded retries for failures where no funds moved.
	AutoRetry bool
	// RetryAttempts is the maximum number of additional attempts (default 3
	// when AutoRetry is set and this is 0).
	RetryAttempts int
}
