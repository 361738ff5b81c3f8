// Package httpclient wraps outbound store requests with a timeout, a
// single retry on server errors, and an allowlist guard on every URL.
package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"resty.dev/v3"

	"github.com/cartcompare/backend/internal/domain"
)

const (
	// DefaultUserAgent mimics a desktop browser; several store APIs
	// refuse requests without one.
	DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"

	DefaultTimeout = 10 * time.Second

	retryBackoff = 500 * time.Millisecond
)

// defaultAllowedHosts maps each store to the hosts its API calls may
// target. A hostname matches if it equals an entry or is a subdomain of
// one. Everything else is treated as misconfiguration, not retried.
var defaultAllowedHosts = map[domain.StoreName][]string{
	domain.StoreWoolworths: {"woolworths.com.au"},
	domain.StoreColes:      {"coles.com.au"},
	domain.StoreAldi:       {"api.aldi.com.au"},
	domain.StoreHarrisFarm: {"harrisfarm.com.au"},
}

// Options configure a single store request.
type Options struct {
	Store domain.StoreName
	// Headers are merged over the client defaults; caller values win.
	Headers map[string]string
}

// Client issues validated HTTPS GETs on behalf of store adapters.
type Client struct {
	rc     *resty.Client
	logger *zap.Logger

	hosts       map[domain.StoreName][]string
	allowHTTP   bool // test hook: permit plain http to loopback servers
	maxAttempts int
}

// New builds a client with the fixed default header set and timeout.
func New(timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	rc := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", DefaultUserAgent).
		SetHeader("Accept", "application/json")
	return &Client{
		rc:          rc,
		logger:      logger,
		hosts:       defaultAllowedHosts,
		maxAttempts: 2,
	}
}

func (c *Client) validateURL(rawURL string, store domain.StoreName) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %q", domain.ErrDisallowedURL, rawURL)
	}
	if parsed.Scheme != "https" && !(c.allowHTTP && parsed.Scheme == "http") {
		return fmt.Errorf("%w: disallowed scheme %q", domain.ErrDisallowedURL, parsed.Scheme)
	}
	host := parsed.Hostname()
	for _, allowed := range c.hosts[store] {
		if host == allowed || strings.HasSuffix(host, "."+allowed) {
			return nil
		}
	}
	return fmt.Errorf("%w: disallowed host %q for store %s", domain.ErrDisallowedURL, host, store)
}

// do runs the request with one retry on server-side or network failure.
// 4xx statuses and validation failures surface immediately.
func (c *Client) do(ctx context.Context, rawURL string, opts Options) (*resty.Response, error) {
	if err := c.validateURL(rawURL, opts.Store); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, &domain.StoreAPIError{
					Store: opts.Store, Retryable: true,
					Message: "request cancelled", Err: ctx.Err(),
				}
			case <-time.After(retryBackoff):
			}
		}

		req := c.rc.R().SetContext(ctx)
		for k, v := range opts.Headers {
			req.SetHeader(k, v)
		}
		resp, err := req.Get(rawURL)
		if err != nil {
			lastErr = &domain.StoreAPIError{
				Store: opts.Store, Retryable: true,
				Message: "network error", Err: err,
			}
			c.logger.Warn("store request failed",
				zap.String("store", string(opts.Store)),
				zap.Int("attempt", attempt),
				zap.Error(err))
			continue
		}
		if resp.IsError() {
			apiErr := &domain.StoreAPIError{
				Store:      opts.Store,
				StatusCode: resp.StatusCode(),
				Retryable:  resp.StatusCode() >= http.StatusInternalServerError,
				Message:    fmt.Sprintf("HTTP %d", resp.StatusCode()),
			}
			if !apiErr.Retryable {
				return nil, apiErr
			}
			lastErr = apiErr
			c.logger.Warn("store returned server error",
				zap.String("store", string(opts.Store)),
				zap.Int("status", resp.StatusCode()),
				zap.Int("attempt", attempt))
			continue
		}
		return resp, nil
	}
	return nil, lastErr
}

// GetJSON issues a GET and decodes the 2xx body into out. A body that is
// not valid JSON for out is a non-retryable fault.
func (c *Client) GetJSON(ctx context.Context, rawURL string, opts Options, out any) error {
	resp, err := c.do(ctx, rawURL, opts)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(resp.String()), out); err != nil {
		return &domain.StoreAPIError{
			Store: opts.Store, Retryable: false,
			Message: "malformed response body", Err: err,
		}
	}
	return nil
}

// GetHTML issues a GET and returns the raw body plus any cookies the
// server set. Redirects are followed transparently.
func (c *Client) GetHTML(ctx context.Context, rawURL string, opts Options) (string, []*http.Cookie, error) {
	resp, err := c.do(ctx, rawURL, opts)
	if err != nil {
		return "", nil, err
	}
	return resp.String(), resp.Cookies(), nil
}
