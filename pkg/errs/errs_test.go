package errs

import (
	"errors"
	"fmt"
	"testing"
)

// TestWrapPassesThroughTypedErrors verifies that an error already carrying a
// Kind is returned unchanged instead of being double-wrapped.
func TestWrapPassesThroughTypedErrors(t *testing.T) {
	orig := New(PriceTooHigh, "price 3 exceeds ceiling 1")

	wrapped := Wrap(orig, ServiceUnavailable, "call failed")
	if wrapped != orig {
		t.Fatalf("expected pass-through of typed error, got %#v", wrapped)
	}
	if KindOf(wrapped) != PriceTooHigh {
		t.Fatalf("kind changed on pass-through: %s", KindOf(wrapped))
	}
}

// TestWrapPassesThroughNestedTypedErrors verifies pass-through also works when
// the typed error sits below fmt.Errorf %w wrapping.
func TestWrapPassesThroughNestedTypedErrors(t *testing.T) {
	orig := New(InsufficientBalance, "balance 1 below required 2")
	nested := fmt.Errorf("executing payment: %w", orig)

	wrapped := Wrap(nested, NetworkError, "payment failed")
	if KindOf(wrapped) != InsufficientBalance {
		t.Fatalf("expected InsufficientBalance, got %s", KindOf(wrapped))
	}
}

// TestWrapPreservesCause verifies that the underlying error stays reachable
// through errors.Is after wrapping.
func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	wrapped := Wrap(cause, NetworkError, "ledger unreachable")

	if !errors.Is(wrapped, cause) {
		t.Fatal("cause lost after wrapping")
	}
	if KindOf(wrapped) != NetworkError {
		t.Fatalf("unexpected kind: %s", KindOf(wrapped))
	}
}

func TestWrapNil(t *testing.T) {
	if err := Wrap(nil, NetworkError, "ignored"); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

// TestFundsMoved verifies the funds-moved marker survives wrapping and
// defaults to false for plain and foreign errors.
func TestFundsMoved(t *testing.T) {
	if FundsMoved(errors.New("plain")) {
		t.Fatal("plain error should not report funds moved")
	}
	if FundsMoved(New(NetworkError, "pre-broadcast failure")) {
		t.Fatal("unmarked error should not report funds moved")
	}

	marked := New(Timeout, "service did not answer").WithFundsMoved()
	if !FundsMoved(marked) {
		t.Fatal("marked error should report funds moved")
	}
	if !FundsMoved(fmt.Errorf("invoking: %w", marked)) {
		t.Fatal("marker lost under fmt wrapping")
	}
}

func TestErrorString(t *testing.T) {
	e := New(PriceTooHigh, "quoted 5 exceeds ceiling 2")
	if got := e.Error(); got != "PRICE_TOO_HIGH: quoted 5 exceeds ceiling 2" {
		t.Fatalf("unexpected message: %s", got)
	}

	withCause := Wrap(errors.New("dial tcp: refused"), NetworkError, "submit failed")
	if got := withCause.Error(); got != "NETWORK_ERROR: submit failed: dial tcp: refused" {
		t.Fatalf("unexpected message: %s", got)
	}
}
