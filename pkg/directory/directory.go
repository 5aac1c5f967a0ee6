// Package directory implements the client for the Turnstile marketplace
// directory REST API: listing services, resolving a service by ID, and
// registering new services. The directory is an external collaborator; this
// package only consumes its read/write contract and maps its failures into
// the SDK error taxonomy.
package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/turnstile-xyz/turnstile-sdk-go/pkg/errs"
	"github.com/turnstile-xyz/turnstile-sdk-go/pkg/model"
	"go.uber.org/zap"
)

const walletAddressHeader = "X-Wallet-Address"

// Client talks to one directory deployment. It is safe for concurrent use.
type Client struct {
	baseURL string
	// wallet is the caller's public wallet address, sent as the
	// X-Wallet-Address header on registration. May be empty for read-only use.
	wallet  string
	http    *http.Client
	timeout time.Duration
}

// New creates a directory client for the given base URL. timeout bounds each
// REST request; httpClient may be nil, in which case http.DefaultClient is used.
func New(baseURL, walletAddress string, timeout time.Duration, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		wallet:  walletAddress,
		http:    httpClient,
		timeout: timeout,
	}
}

// List returns services matching the given options.
//
// Query parameters follow the directory contract exactly: category, maxPrice,
// sortBy, tags (comma-joined), limit, offset; zero values are omitted.
func (c *Client) List(ctx context.Context, opts model.ListOptions) ([]model.Service, error) {
	q := url.Values{}
	if opts.Category != "" {
		q.Set("category", opts.Category)
	}
	if !opts.MaxPrice.IsZero() {
		q.Set("maxPrice", opts.MaxPrice.String())
	}
	if opts.SortBy != "" {
		q.Set("sortBy", opts.SortBy)
	}
	if len(opts.Tags) > 0 {
		q.Set("tags", strings.Join(opts.Tags, ","))
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Offset > 0 {
		q.Set("offset", strconv.Itoa(opts.Offset))
	}

	endpoint := c.baseURL + "/services"
	if enc := q.Encode(); enc != "" {
		endpoint += "?" + enc
	}

	status, body, err := c.do(ctx, http.MethodGet, endpoint, nil, nil)
	if err != nil {
		return nil, errs.Wrap(err, errs.NetworkError, "failed to list services")
	}
	if status != http.StatusOK {
		return nil, errs.Newf(errs.NetworkError, "failed to fetch services: status %d", status)
	}

	var payload struct {
		Services []model.Service `json:"services"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, errs.Wrap(err, errs.NetworkError, "failed to decode service list")
	}
	return payload.Services, nil
}

// Get resolves a single service by ID. A missing or errored service surfaces
// as ServiceUnavailable.
func (c *Client) Get(ctx context.Context, serviceID string) (*model.Service, error) {
	endpoint := c.baseURL + "/services/" + url.PathEscape(serviceID)

	status, body, err := c.do(ctx, http.MethodGet, endpoint, nil, nil)
	if err != nil {
		return nil, errs.Wrap(err, errs.ServiceUnavailable, fmt.Sprintf("failed to get service %s", serviceID))
	}
	if status != http.StatusOK {
		return nil, errs.Newf(errs.ServiceUnavailable, "service not found: %s", serviceID)
	}

	var payload struct {
		Service *model.Service `json:"service"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, errs.Wrap(err, errs.ServiceUnavailable, fmt.Sprintf("failed to decode service %s", serviceID))
	}
	if payload.Service == nil {
		return nil, errs.Newf(errs.InvalidResponse, "directory returned no service object for %s", serviceID)
	}
	return payload.Service, nil
}

// registerPayload mirrors model.RegisterRequest but encodes pricePerCall as a
// bare JSON number, which is what the directory expects.
type registerPayload struct {
	Name         string          `json:"name"`
	Endpoint     string          `json:"endpoint"`
	PricePerCall json.RawMessage `json:"pricePerCall"`
	Currency     string          `json:"currency"`
	Description  string          `json:"description"`
	Category     string          `json:"category"`
	RateLimit    int             `json:"rateLimit,omitempty"`
	Tags         []string        `json:"tags,omitempty"`
}

// Register publishes a new service in the directory on behalf of the
// configured wallet and returns the created listing.
func (c *Client) Register(ctx context.Context, req *model.RegisterRequest) (*model.Service, error) {
	reqBody, err := json.Marshal(registerPayload{
		Name:         req.Name,
		Endpoint:     req.Endpoint,
		PricePerCall: json.RawMessage(req.PricePerCall.String()),
		Currency:     req.Currency,
		Description:  req.Description,
		Category:     req.Category,
		RateLimit:    req.RateLimit,
		Tags:         req.Tags,
	})
	if err != nil {
		return nil, errs.Wrap(err, errs.NetworkError, "failed to encode registration")
	}

	headers := map[string]string{
		"Content-Type":      "application/json",
		walletAddressHeader: c.wallet,
	}
	status, body, err := c.do(ctx, http.MethodPost, c.baseURL+"/services", reqBody, headers)
	if err != nil {
		return nil, errs.Wrap(err, errs.NetworkError, "failed to register service")
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return nil, errs.Newf(errs.NetworkError, "failed to register service: status %d", status)
	}

	var payload struct {
		Service *model.Service `json:"service"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, errs.Wrap(err, errs.NetworkError, "failed to decode registered service")
	}
	if payload.Service == nil {
		return nil, errs.New(errs.InvalidResponse, "directory returned no service object for registration")
	}

	zap.L().Info("service registered",
		zap.String("id", payload.Service.ID),
		zap.String("name", payload.Service.Name))
	return payload.Service, nil
}

// do issues one request with the client's per-request timeout applied on top
// of the caller's context and returns the status code and full body. The body
// is always drained and closed so the connection can be reused regardless of
// call outcome.
func (c *Client) do(ctx context.Context, method, endpoint string, reqBody []byte, headers map[string]string) (int, []byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var bodyReader io.Reader
	if reqBody != nil {
		bodyReader = bytes.NewReader(reqBody)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return 0, nil, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			zap.L().Error("failed to close response body", zap.Error(err))
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, respBody, nil
}
