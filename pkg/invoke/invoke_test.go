package invoke

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/turnstile-xyz/turnstile-sdk-go/pkg/errs"
	"github.com/turnstile-xyz/turnstile-sdk-go/pkg/model"
)

func receipt(id string) *model.Receipt {
	return &model.Receipt{SettlementID: id}
}

// TestInvokeCarriesPaymentProof verifies the settlement identifier travels in
// the X-Payment-Proof header and the params arrive verbatim.
func TestInvokeCarriesPaymentProof(t *testing.T) {
	var gotProof string
	var gotParams map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotProof = r.Header.Get(PaymentProofHeader)
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotParams)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"result":"ok"}`))
	}))
	defer srv.Close()

	inv := NewInvoker(nil)
	payload, err := inv.Invoke(context.Background(), srv.URL,
		map[string]any{"text": "hello"}, receipt("0xproof"), time.Second)
	if err != nil {
		t.Fatalf("Invoke returned error: %v", err)
	}

	if gotProof != "0xproof" {
		t.Fatalf("unexpected payment proof header: %q", gotProof)
	}
	if gotParams["text"] != "hello" {
		t.Fatalf("params not forwarded verbatim: %v", gotParams)
	}
	var result map[string]string
	if err := json.Unmarshal(payload, &result); err != nil || result["result"] != "ok" {
		t.Fatalf("unexpected payload: %s", payload)
	}
}

// TestInvokeTimeout verifies that a slow endpoint fails with Timeout and the
// funds-moved marker, since payment has already settled by invocation time.
func TestInvokeTimeout(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	inv := NewInvoker(nil)
	_, err := inv.Invoke(context.Background(), srv.URL, nil, receipt("0xproof"), 50*time.Millisecond)
	if !errs.Is(err, errs.Timeout) {
		t.Fatalf("expected Timeout, got %v", err)
	}
	if !errs.FundsMoved(err) {
		t.Fatal("invocation failures happen after payment")
	}
}

// TestInvokeErrorStatus verifies a non-success status maps to
// ServiceUnavailable.
func TestInvokeErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	inv := NewInvoker(nil)
	_, err := inv.Invoke(context.Background(), srv.URL, nil, receipt("0xproof"), time.Second)
	if !errs.Is(err, errs.ServiceUnavailable) {
		t.Fatalf("expected ServiceUnavailable, got %v", err)
	}
	if !errs.FundsMoved(err) {
		t.Fatal("invocation failures happen after payment")
	}
}

// TestInvokeUnreachableEndpoint verifies transport failures map to
// ServiceUnavailable.
func TestInvokeUnreachableEndpoint(t *testing.T) {
	inv := NewInvoker(nil)
	_, err := inv.Invoke(context.Background(), "http://127.0.0.1:1", nil, receipt("0xproof"), time.Second)
	if !errs.Is(err, errs.ServiceUnavailable) {
		t.Fatalf("expected ServiceUnavailable, got %v", err)
	}
}

// TestInvokeNilParams verifies nil params are sent as an empty JSON object.
func TestInvokeNilParams(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	inv := NewInvoker(nil)
	if _, err := inv.Invoke(context.Background(), srv.URL, nil, receipt("0xproof"), time.Second); err != nil {
		t.Fatalf("Invoke returned error: %v", err)
	}
	if gotBody != "{}" {
		t.Fatalf("expected empty object body, got %q", gotBody)
	}
}
