package sdk

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/turnstile-xyz/turnstile-sdk-go/pkg/config"
	"github.com/turnstile-xyz/turnstile-sdk-go/pkg/directory"
	"github.com/turnstile-xyz/turnstile-sdk-go/pkg/errs"
	"github.com/turnstile-xyz/turnstile-sdk-go/pkg/invoke"
	"github.com/turnstile-xyz/turnstile-sdk-go/pkg/ledger"
	"github.com/turnstile-xyz/turnstile-sdk-go/pkg/model"
	"github.com/turnstile-xyz/turnstile-sdk-go/pkg/payment"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// init configures a default global zap logger for the SDK. Applications may
// replace it with zap.ReplaceGlobals(...) if they need custom logging.
func init() {
	c := zap.Config{
		Level:            zap.NewAtomicLevelAt(zap.InfoLevel),
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := c.Build()
	if err != nil {
		panic(err)
	}
	zap.ReplaceGlobals(logger)
}

// enableDebugLogging swaps the global logger for one at debug level.
func enableDebugLogging() {
	c := zap.Config{
		Level:            zap.NewAtomicLevelAt(zap.DebugLevel),
		Development:      true,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}
	if logger, err := c.Build(); err == nil {
		zap.ReplaceGlobals(logger)
	}
}

// Directory is the read/write contract of the marketplace directory consumed
// by the client. Test doubles can implement it to intercept resolution.
type Directory interface {
	List(ctx context.Context, opts model.ListOptions) ([]model.Service, error)
	Get(ctx context.Context, serviceID string) (*model.Service, error)
	Register(ctx context.Context, req *model.RegisterRequest) (*model.Service, error)
}

// PaymentExecutor moves funds from payer to payee and confirms settlement.
type PaymentExecutor interface {
	Execute(ctx context.Context, payer, payee string, amount decimal.Decimal, currency string) (*model.Receipt, error)
}

// ServiceInvoker performs the proof-carrying call to a service endpoint.
type ServiceInvoker interface {
	Invoke(ctx context.Context, endpoint string, params map[string]any, receipt *model.Receipt, timeout time.Duration) (json.RawMessage, error)
}

// Client is the Turnstile SDK entry point. It composes the directory client,
// the payment executor, and the service invoker into the single Call
// pipeline, and exposes the directory CRUD surface. Safe for concurrent use;
// concurrent calls share the wallet's balance, see payment.Executor.
type Client struct {
	cfg       *config.Config
	directory Directory
	executor  PaymentExecutor
	invoker   ServiceInvoker
	// wallet is the caller's public wallet address; empty in read-only mode.
	wallet string
	evm    *ledger.EVM

	// limiters tracks client-side rate limiters per service, derived from the
	// rateLimit each service advertises in the directory.
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// New initializes a Client with validated configuration.
//
// When a private key is configured, the ledger is dialed and paid calls are
// available; without one the client is read-only (listing and resolution
// still work, Call and Register fail). Payment submission is serialized per
// payer to close the stale-balance race between concurrent calls.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Timeouts = cfg.Timeouts.WithDefaults()

	if cfg.Debug {
		enableDebugLogging()
	}

	c := &Client{
		cfg:      cfg,
		invoker:  invoke.NewInvoker(nil),
		limiters: make(map[string]*rate.Limiter),
	}

	if cfg.PrivateKey != "" {
		if cfg.RPCAddr == "" {
			return nil, errs.New(errs.NetworkError, "RPC address is required for paid calls")
		}
		evm, err := ledger.Dial(ctx, cfg.RPCAddr, cfg.PrivateKey)
		if err != nil {
			return nil, errs.Wrap(err, errs.NetworkError, "failed to connect to ledger")
		}
		c.evm = evm
		c.wallet = evm.Address()
		c.executor = payment.NewExecutor(evm,
			payment.WithBalanceReadWait(cfg.Timeouts.BalanceRead),
			payment.WithTransferWait(cfg.Timeouts.TransferWait),
			payment.WithConfirmWait(cfg.Timeouts.ConfirmWait),
			payment.SerializePerPayer(true),
		)
	} else {
		zap.L().Warn("no private key configured, paid calls disabled")
	}

	c.directory = directory.New(cfg.APIURL, c.wallet, cfg.Timeouts.Directory, nil)
	return c, nil
}

// WalletAddress returns the caller's public wallet address, or the empty
// string in read-only mode.
func (c *Client) WalletAddress() string {
	return c.wallet
}

// Environment returns the configured marketplace environment name.
func (c *Client) Environment() string {
	return c.cfg.Environment.Name
}

// Close releases the ledger connection, if any.
func (c *Client) Close() {
	if c.evm != nil {
		c.evm.Close()
	}
}

// ListServices returns marketplace services matching the given options.
func (c *Client) ListServices(ctx context.Context, opts model.ListOptions) ([]model.Service, error) {
	return c.directory.List(ctx, opts)
}

// GetService resolves a service by ID.
func (c *Client) GetService(ctx context.Context, serviceID string) (*model.Service, error) {
	return c.directory.Get(ctx, serviceID)
}

// RegisterService publishes a new service in the directory on behalf of the
// configured wallet.
func (c *Client) RegisterService(ctx context.Context, req *model.RegisterRequest) (*model.Service, error) {
	return c.directory.Register(ctx, req)
}

// limiterFor returns the client-side rate limiter for the resolved service,
// creating it from the service's advertised per-minute rate limit on first
// use. Returns nil when the service declares no limit.
func (c *Client) limiterFor(svc *model.Service) *rate.Limiter {
	if svc.RateLimit <= 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	lim, ok := c.limiters[svc.ID]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(float64(svc.RateLimit)/60.0), svc.RateLimit)
		c.limiters[svc.ID] = lim
	}
	return lim
}
