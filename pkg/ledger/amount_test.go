package ledger

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
)

// TestToBaseUnits verifies display-to-base conversion at 18 decimals,
// including truncation of sub-base precision.
func TestToBaseUnits(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		want   string
	}{
		{name: "whole", amount: "2", want: "2000000000000000000"},
		{name: "fraction", amount: "0.5", want: "500000000000000000"},
		{name: "zero", amount: "0", want: "0"},
		{name: "small", amount: "0.000000000000000001", want: "1"},
		{name: "sub-base truncates", amount: "0.0000000000000000015", want: "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToBaseUnits(decimal.RequireFromString(tt.amount), NativeDecimals)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.String() != tt.want {
				t.Fatalf("ToBaseUnits(%s) = %s, want %s", tt.amount, got, tt.want)
			}
		})
	}
}

func TestToBaseUnitsRejectsNegative(t *testing.T) {
	if _, err := ToBaseUnits(decimal.RequireFromString("-1"), NativeDecimals); err == nil {
		t.Fatal("expected error for negative amount")
	}
}

// TestFromBaseUnits verifies base-to-display conversion round-trips whole and
// fractional amounts and tolerates nil.
func TestFromBaseUnits(t *testing.T) {
	wei, ok := new(big.Int).SetString("1500000000000000000", 10)
	if !ok {
		t.Fatal("bad literal")
	}
	if got := FromBaseUnits(wei, NativeDecimals); !got.Equal(decimal.RequireFromString("1.5")) {
		t.Fatalf("FromBaseUnits = %s, want 1.5", got)
	}
	if got := FromBaseUnits(nil, NativeDecimals); !got.IsZero() {
		t.Fatalf("FromBaseUnits(nil) = %s, want 0", got)
	}
}

// TestParsePrivateKey verifies hex key parsing produces a checksummed address
// and rejects malformed input.
func TestParsePrivateKey(t *testing.T) {
	addr, key, err := ParsePrivateKey("fad9c8855b740a0b7ed4c221dbad0f33a83a49cad6b3fe8d5817ac83d38b6a19")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key == nil {
		t.Fatal("expected non-nil key")
	}
	if hex := addr.Hex(); len(hex) != 42 || hex[:2] != "0x" {
		t.Fatalf("unexpected address: %s", hex)
	}

	if _, _, err := ParsePrivateKey("not-a-key"); err == nil {
		t.Fatal("expected error for malformed key")
	}
}
