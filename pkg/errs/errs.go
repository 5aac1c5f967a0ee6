// Package errs defines the single tagged error type that crosses the SDK
// boundary. Every failure returned by the client, the payment executor, or
// the invoker is an *Error carrying a Kind from the closed taxonomy below;
// collaborator failures (HTTP, ledger client) are wrapped at the point of use
// and never leak as raw errors.
package errs

import (
	"errors"
	"fmt"
)

// Kind identifies a failure class in the SDK error taxonomy.
type Kind string

const (
	// InsufficientBalance: the payer cannot cover the quoted price. No funds moved.
	InsufficientBalance Kind = "INSUFFICIENT_BALANCE"
	// PriceTooHigh: the quoted price exceeds the caller's ceiling. No funds moved.
	PriceTooHigh Kind = "PRICE_TOO_HIGH"
	// ServiceUnavailable: the directory or service endpoint is unreachable,
	// errored, or the service does not exist.
	ServiceUnavailable Kind = "SERVICE_UNAVAILABLE"
	// InvalidResponse: a collaborator returned a well-formed reply with a
	// malformed or missing payload, such as a 200 directory response without
	// a service object.
	InvalidResponse Kind = "INVALID_RESPONSE"
	// Timeout: the service invocation exceeded its deadline. The payment has
	// already settled; the service outcome is unknown.
	Timeout Kind = "TIMEOUT"
	// NetworkError: a transport-level failure talking to the directory or the ledger.
	NetworkError Kind = "NETWORK_ERROR"
	// PaymentPending: the transfer was broadcast but the confirmation wait
	// expired before the ledger reported an outcome. The payment may still
	// land; callers must reconcile against the ledger before retrying.
	PaymentPending Kind = "PAYMENT_PENDING"
	// AuthenticationFailed: the caller is not authorized for the operation,
	// including agent calls outside the configured allow-list.
	AuthenticationFailed Kind = "AUTHENTICATION_FAILED"
	// RateLimitExceeded: a collaborator rate limit or an agent spend cap was hit.
	RateLimitExceeded Kind = "RATE_LIMIT_EXCEEDED"
)

// Error is the tagged error returned across the SDK boundary.
//
// Detail preserves the underlying cause (if any) and participates in
// errors.Is/errors.As chains via Unwrap. fundsMoved records whether value may
// have left the payer's custody before the failure; the agent consults it to
// decide whether a retry is safe.
type Error struct {
	Kind    Kind
	Message string
	Detail  error

	fundsMoved bool
}

// New creates an *Error with the given kind and message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates an *Error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches kind and message to an underlying cause. If err is already an
// *Error it is returned unchanged, so typed failures are never double-wrapped
// on their way up the pipeline.
func Wrap(err error, kind Kind, message string) error {
	if err == nil {
		return nil
	}
	var typed *Error
	if errors.As(err, &typed) {
		return typed
	}
	return &Error{Kind: kind, Message: message, Detail: err}
}

func (e *Error) Error() string {
	if e.Detail != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Detail
}

// WithFundsMoved marks the error as having occurred after value may have left
// the payer's custody. Returns e for chaining.
func (e *Error) WithFundsMoved() *Error {
	e.fundsMoved = true
	return e
}

// KindOf returns the Kind carried by err, or the empty Kind when err is not
// an *Error.
func KindOf(err error) Kind {
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// MarkFundsMoved sets the funds-moved marker on err when it is an *Error and
// returns err unchanged otherwise.
func MarkFundsMoved(err error) error {
	var typed *Error
	if errors.As(err, &typed) {
		typed.fundsMoved = true
	}
	return err
}

// FundsMoved reports whether err occurred after a transfer may have been
// broadcast. When true, retrying the call risks paying twice.
func FundsMoved(err error) bool {
	var typed *Error
	if errors.As(err, &typed) {
		return typed.fundsMoved
	}
	return false
}
