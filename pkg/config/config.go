// Package config defines the runtime configuration for the SDK: target
// marketplace environment, directory URL override, ledger RPC endpoint,
// wallet key, debug mode, and per-operation timeouts. It also provides
// validation and defaulting helpers.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Environment selects a named marketplace network. Each environment carries
// the default directory base URL used when Config.APIURL is empty.
type Environment struct {
	Name   string `json:"name"`
	APIURL string `json:"api_url"`
}

// Mainnet is the production Turnstile marketplace.
var Mainnet = Environment{
	Name:   "mainnet",
	APIURL: "https://api.turnstile.xyz",
}

// Devnet is the development marketplace environment.
var Devnet = Environment{
	Name:   "devnet",
	APIURL: "https://api.devnet.turnstile.xyz",
}

// Testnet is the test marketplace environment.
var Testnet = Environment{
	Name:   "testnet",
	APIURL: "https://api.testnet.turnstile.xyz",
}

// environments maps environment names to their definitions, for FromEnv.
var environments = map[string]Environment{
	Mainnet.Name: Mainnet,
	Devnet.Name:  Devnet,
	Testnet.Name: Testnet,
}

// Config holds all settings required to construct a client.
// Use Validate to fill implicit defaults and to check for required fields.
type Config struct {
	// Environment selects the marketplace network (defaults to Devnet).
	Environment Environment `json:"environment" yaml:"environment"`
	// APIURL overrides the environment's default directory base URL.
	APIURL string `json:"api_url" yaml:"api_url"`
	// RPCAddr is the ledger RPC endpoint URL (required for paid calls).
	RPCAddr string `json:"rpc_addr" yaml:"rpc_addr"`
	// PrivateKey is the hex-encoded ECDSA private key of the paying wallet
	// (optional if you only list or register services).
	PrivateKey string `json:"private_key" yaml:"private_key"`
	// Debug enables verbose logging.
	Debug bool `json:"debug" yaml:"debug"`
	// Timeouts configures per-operation timeouts. See Timeouts.WithDefaults.
	Timeouts Timeouts `json:"timeouts" yaml:"timeouts"`
}

// Timeouts controls SDK operation deadlines.
// Zero values will be replaced by sane defaults in WithDefaults.
type Timeouts struct {
	Directory     time.Duration // directory REST requests
	BalanceRead   time.Duration // ledger balance query
	TransferWait  time.Duration // transfer submission
	ConfirmWait   time.Duration // settlement confirmation wait
	ServiceInvoke time.Duration // paid service invocation round trip
}

// Validate normalizes the configuration by applying implicit defaults for
// Environment (defaults to Devnet) and APIURL (defaults to the environment's
// base URL). Returns an error when neither an environment nor an explicit
// APIURL resolves to a directory address.
func (c *Config) Validate() error {

	if c.Environment.Name == "" {
		c.Environment = Devnet
	}

	if c.APIURL == "" {
		c.APIURL = c.Environment.APIURL
	}

	if c.APIURL == "" {
		return errors.New("directory API URL is required")
	}

	return nil
}

// WithDefaults returns a copy of t with zero values replaced by defaults:
//
//	Directory:     10s
//	BalanceRead:   12s
//	TransferWait:  25s
//	ConfirmWait:   90s
//	ServiceInvoke: 30s
func (t Timeouts) WithDefaults() Timeouts {
	tt := t
	if tt.Directory == 0 {
		tt.Directory = 10 * time.Second
	}
	if tt.BalanceRead == 0 {
		tt.BalanceRead = 12 * time.Second
	}
	if tt.TransferWait == 0 {
		tt.TransferWait = 25 * time.Second
	}
	if tt.ConfirmWait == 0 {
		tt.ConfirmWait = 90 * time.Second
	}
	if tt.ServiceInvoke == 0 {
		tt.ServiceInvoke = 30 * time.Second
	}
	return tt
}

// envSpec mirrors Config for envconfig decoding (TURNSTILE_ prefix).
type envSpec struct {
	Environment string `envconfig:"ENVIRONMENT" default:"devnet"`
	APIURL      string `envconfig:"API_URL"`
	RPCAddr     string `envconfig:"RPC_ADDR"`
	PrivateKey  string `envconfig:"PRIVATE_KEY"`
	Debug       bool   `envconfig:"DEBUG"`
}

// FromEnv builds a Config from TURNSTILE_* environment variables:
// TURNSTILE_ENVIRONMENT, TURNSTILE_API_URL, TURNSTILE_RPC_ADDR,
// TURNSTILE_PRIVATE_KEY, TURNSTILE_DEBUG. Unknown environment names are
// rejected. The result is not yet validated; call Validate before use.
func FromEnv() (*Config, error) {
	var spec envSpec
	if err := envconfig.Process("turnstile", &spec); err != nil {
		return nil, err
	}

	env, ok := environments[spec.Environment]
	if !ok {
		return nil, fmt.Errorf("unknown environment %q", spec.Environment)
	}

	return &Config{
		Environment: env,
		APIURL:      spec.APIURL,
		RPCAddr:     spec.RPCAddr,
		PrivateKey:  spec.PrivateKey,
		Debug:       spec.Debug,
	}, nil
}
