// Package ncbi provides the HTTP base client for NCBI E-utilities shared by
// the search and fetch calls: common parameters, rate limiting, a bounded
// retry on HTTP 429, and response size guards. Every failure it returns
// carries apperr.ErrRetrieval.
package ncbi

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/henrybloomingdale/pharma-papers/internal/apperr"
)

const (
	// DefaultBaseURL is the NCBI E-utilities base URL.
	DefaultBaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"
	// DefaultTool identifies this application to NCBI.
	DefaultTool = "pharma-papers"
	// DefaultEmail is the contact email sent to NCBI.
	DefaultEmail = "pharma-papers@users.noreply.github.com"
	// DefaultTimeout bounds a single HTTP exchange.
	DefaultTimeout = 30 * time.Second

	// Rate limits per NCBI policy.
	RateWithoutKey = 3  // requests per second without API key
	RateWithKey    = 10 // requests per second with API key

	// DefaultMaxResponseBytes is the maximum response body size (50 MB).
	DefaultMaxResponseBytes int64 = 50 * 1024 * 1024

	maxRetries   = 2
	maxRetryWait = 4 * time.Second
)

// RetryBaseWait is the first backoff step after an HTTP 429 without a
// Retry-After header. Tests shrink it.
var RetryBaseWait = 700 * time.Millisecond

// BaseClient is a shared HTTP client for NCBI E-utilities.
type BaseClient struct {
	BaseURL    string
	APIKey     string
	Tool       string
	Email      string
	HTTPClient *http.Client
	Limiter    *rate.Limiter
	MaxBytes   int64
	Logger     *slog.Logger
}

// Option configures a BaseClient.
type Option func(*BaseClient)

// WithBaseURL sets the base URL for requests.
func WithBaseURL(u string) Option {
	return func(c *BaseClient) { c.BaseURL = u }
}

// WithAPIKey sets the NCBI API key and adjusts the rate limit accordingly.
func WithAPIKey(key string) Option {
	return func(c *BaseClient) {
		c.APIKey = key
		if key != "" {
			c.Limiter = rate.NewLimiter(rate.Limit(RateWithKey), 1)
		}
	}
}

// WithTool sets the tool parameter for NCBI requests.
func WithTool(tool string) Option {
	return func(c *BaseClient) { c.Tool = tool }
}

// WithEmail sets the email parameter for NCBI requests.
func WithEmail(email string) Option {
	return func(c *BaseClient) { c.Email = email }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *BaseClient) { c.HTTPClient = hc }
}

// WithTimeout sets the timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *BaseClient) {
		if d > 0 {
			c.HTTPClient.Timeout = d
		}
	}
}

// WithMaxResponseBytes sets the maximum allowed response body size.
func WithMaxResponseBytes(n int64) Option {
	return func(c *BaseClient) { c.MaxBytes = n }
}

// WithLogger sets the logger used for per-request debug output.
func WithLogger(l *slog.Logger) Option {
	return func(c *BaseClient) {
		if l != nil {
			c.Logger = l
		}
	}
}

// NewBaseClient creates a new NCBI base client with the given options.
func NewBaseClient(opts ...Option) *BaseClient {
	c := &BaseClient{
		BaseURL:  DefaultBaseURL,
		Tool:     DefaultTool,
		Email:    DefaultEmail,
		MaxBytes: DefaultMaxResponseBytes,
		Limiter:  rate.NewLimiter(rate.Limit(RateWithoutKey), 1),
		HTTPClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		Logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DoGet performs a GET request with params in the query string.
func (c *BaseClient) DoGet(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	return c.do(ctx, http.MethodGet, endpoint, params)
}

// DoPost sends params as a form body. NCBI recommends POST for long ID lists.
func (c *BaseClient) DoPost(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	return c.do(ctx, http.MethodPost, endpoint, params)
}

func (c *BaseClient) do(ctx context.Context, method, endpoint string, params url.Values) ([]byte, error) {
	body, err := c.roundTrip(ctx, method, endpoint, params)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrRetrieval, endpoint, err)
	}
	return body, nil
}

func (c *BaseClient) roundTrip(ctx context.Context, method, endpoint string, params url.Values) ([]byte, error) {
	if params == nil {
		params = url.Values{}
	}
	if c.APIKey != "" {
		params.Set("api_key", c.APIKey)
	}
	if c.Tool != "" {
		params.Set("tool", c.Tool)
	}
	if c.Email != "" {
		params.Set("email", c.Email)
	}

	u, err := url.JoinPath(c.BaseURL, endpoint)
	if err != nil {
		return nil, fmt.Errorf("building URL: %w", err)
	}
	encoded := params.Encode()

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := c.Limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}

		req, err := newRequest(ctx, method, u, encoded)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}

		start := time.Now()
		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("executing request: %w", err)
		}
		c.Logger.Debug("ncbi_request",
			"method", method,
			"endpoint", endpoint,
			"status", resp.StatusCode,
			"attempt", attempt+1,
			"duration_ms", time.Since(start).Milliseconds(),
		)

		if resp.StatusCode == http.StatusTooManyRequests {
			if attempt >= maxRetries {
				resp.Body.Close()
				return nil, fmt.Errorf("NCBI rate limit exceeded (HTTP 429 after %d retries). Consider using an API key with --api-key or PUBMED_API_KEY env var", maxRetries)
			}

			wait := retryAfterDuration(resp.Header.Get("Retry-After"))
			resp.Body.Close()
			if wait <= 0 {
				wait = RetryBaseWait * time.Duration(1<<attempt)
				if wait > maxRetryWait {
					wait = maxRetryWait
				}
			}
			c.Logger.Debug("ncbi_rate_limited", "endpoint", endpoint, "wait_ms", wait.Milliseconds())
			if err := sleepWithContext(ctx, wait); err != nil {
				return nil, fmt.Errorf("rate limit retry canceled: %w", err)
			}
			continue
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("NCBI returned HTTP %d for %s", resp.StatusCode, endpoint)
		}

		// Read one byte past the limit to detect oversized bodies.
		body, err := io.ReadAll(io.LimitReader(resp.Body, c.MaxBytes+1))
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("reading response: %w", err)
		}
		if int64(len(body)) > c.MaxBytes {
			return nil, fmt.Errorf("response exceeds maximum size of %d bytes", c.MaxBytes)
		}

		return body, nil
	}

	return nil, fmt.Errorf("unreachable request loop")
}

func newRequest(ctx context.Context, method, u, encoded string) (*http.Request, error) {
	if method == http.MethodPost {
		req, err := http.NewRequestWithContext(ctx, method, u, strings.NewReader(encoded))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req, nil
	}
	return http.NewRequestWithContext(ctx, method, u+"?"+encoded, nil)
}

func retryAfterDuration(v string) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}

	if secs, err := strconv.Atoi(v); err == nil {
		if secs > 0 {
			return time.Duration(secs) * time.Second
		}
		return 0
	}

	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}

	return 0
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
