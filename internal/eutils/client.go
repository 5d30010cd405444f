package eutils

import (
	"github.com/henrybloomingdale/pharma-papers/internal/ncbi"
)

// Client is an HTTP client for the PubMed E-utilities endpoints.
// It embeds ncbi.BaseClient for rate limiting, common parameters,
// and response size guards.
type Client struct {
	*ncbi.BaseClient
}

// Option configures a Client (alias for ncbi.Option).
type Option = ncbi.Option

// Re-exported ncbi options.
var (
	WithBaseURL    = ncbi.WithBaseURL
	WithAPIKey     = ncbi.WithAPIKey
	WithTool       = ncbi.WithTool
	WithEmail      = ncbi.WithEmail
	WithHTTPClient = ncbi.WithHTTPClient
	WithTimeout    = ncbi.WithTimeout
	WithLogger     = ncbi.WithLogger
)

// NewClient creates a new E-utilities client with the given options.
func NewClient(opts ...Option) *Client {
	return &Client{BaseClient: ncbi.NewBaseClient(opts...)}
}
