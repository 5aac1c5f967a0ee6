package config

import (
	"testing"
	"time"
)

// TestConfigValidate_AppliesDefaults verifies that Validate falls back to the
// Devnet environment and its directory URL when nothing is set.
func TestConfigValidate_AppliesDefaults(t *testing.T) {
	cfg := &Config{}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}

	if cfg.Environment != Devnet {
		t.Fatalf("expected default Devnet environment, got %#v", cfg.Environment)
	}
	if cfg.APIURL != "https://api.devnet.turnstile.xyz" {
		t.Fatalf("unexpected APIURL: %s", cfg.APIURL)
	}
}

// TestConfigValidate_OverrideWins verifies that an explicit APIURL replaces
// the environment default.
func TestConfigValidate_OverrideWins(t *testing.T) {
	cfg := &Config{
		Environment: Mainnet,
		APIURL:      "http://localhost:3000",
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if cfg.APIURL != "http://localhost:3000" {
		t.Fatalf("override lost: %s", cfg.APIURL)
	}
}

// TestConfigValidate_EnvironmentURLs verifies the static environment-to-URL
// mapping.
func TestConfigValidate_EnvironmentURLs(t *testing.T) {
	tests := []struct {
		name string
		env  Environment
		want string
	}{
		{name: "mainnet", env: Mainnet, want: "https://api.turnstile.xyz"},
		{name: "devnet", env: Devnet, want: "https://api.devnet.turnstile.xyz"},
		{name: "testnet", env: Testnet, want: "https://api.testnet.turnstile.xyz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Environment: tt.env}
			if err := cfg.Validate(); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.APIURL != tt.want {
				t.Fatalf("unexpected APIURL: %s", cfg.APIURL)
			}
		})
	}
}

// TestTimeoutsWithDefaults verifies that WithDefaults preserves explicitly set
// timeout values and fills in defaults for zero values.
func TestTimeoutsWithDefaults(t *testing.T) {
	in := Timeouts{
		ConfirmWait: 5 * time.Second,
	}

	out := in.WithDefaults()

	if out.ConfirmWait != 5*time.Second {
		t.Fatalf("explicit ConfirmWait overwritten: %v", out.ConfirmWait)
	}
	if out.Directory != 10*time.Second {
		t.Fatalf("unexpected Directory default: %v", out.Directory)
	}
	if out.BalanceRead != 12*time.Second {
		t.Fatalf("unexpected BalanceRead default: %v", out.BalanceRead)
	}
	if out.TransferWait != 25*time.Second {
		t.Fatalf("unexpected TransferWait default: %v", out.TransferWait)
	}
	if out.ServiceInvoke != 30*time.Second {
		t.Fatalf("unexpected ServiceInvoke default: %v", out.ServiceInvoke)
	}
}

// TestFromEnv verifies environment variable decoding and unknown-environment
// rejection.
func TestFromEnv(t *testing.T) {
	t.Setenv("TURNSTILE_ENVIRONMENT", "testnet")
	t.Setenv("TURNSTILE_RPC_ADDR", "http://localhost:8545")
	t.Setenv("TURNSTILE_DEBUG", "true")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv returned error: %v", err)
	}
	if cfg.Environment != Testnet {
		t.Fatalf("unexpected environment: %#v", cfg.Environment)
	}
	if cfg.RPCAddr != "http://localhost:8545" {
		t.Fatalf("unexpected RPCAddr: %s", cfg.RPCAddr)
	}
	if !cfg.Debug {
		t.Fatal("expected Debug to be set")
	}

	t.Setenv("TURNSTILE_ENVIRONMENT", "moonnet")
	if _, err := FromEnv(); err == nil {
		t.Fatal("expected error for unknown environment")
	}
}
