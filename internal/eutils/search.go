package eutils

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/henrybloomingdale/pharma-papers/internal/apperr"
)

const (
	// DefaultLimit is the retmax sent when SearchOptions does not set one.
	DefaultLimit = 100
	// DefaultSort orders results the way the PubMed web UI does.
	DefaultSort = "relevance"
)

// esearchResponse represents the raw JSON response from ESearch.
type esearchResponse struct {
	Result *esearchResult `json:"esearchresult"`
}

type esearchResult struct {
	Count            string   `json:"count"`
	IDList           []string `json:"idlist"`
	QueryTranslation string   `json:"querytranslation"`
	Error            string   `json:"ERROR,omitempty"`
}

// Search performs an ESearch query against PubMed and returns matching PMIDs
// in relevance order. An empty ID list is not an error.
func (c *Client) Search(ctx context.Context, query string, opts *SearchOptions) (*SearchResult, error) {
	if query == "" {
		return nil, apperr.Wrap(apperr.ErrInvalidInput, "search", fmt.Errorf("search query cannot be empty"))
	}

	limit := DefaultLimit
	sort := DefaultSort
	if opts != nil {
		if opts.Limit > 0 {
			limit = opts.Limit
		}
		if opts.Sort != "" {
			sort = opts.Sort
		}
	}

	params := url.Values{}
	params.Set("db", "pubmed")
	params.Set("term", query)
	params.Set("retmode", "json")
	params.Set("retmax", strconv.Itoa(limit))
	params.Set("sort", sort)

	body, err := c.DoGet(ctx, "esearch.fcgi", params)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}

	var resp esearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, apperr.Wrap(apperr.ErrRetrieval, "parsing search response", err)
	}
	if resp.Result == nil {
		return nil, apperr.Wrap(apperr.ErrRetrieval, "parsing search response", fmt.Errorf("missing esearchresult"))
	}
	if resp.Result.Error != "" {
		return nil, apperr.Wrap(apperr.ErrRetrieval, "search", fmt.Errorf("NCBI error: %s", resp.Result.Error))
	}

	count, _ := strconv.Atoi(resp.Result.Count)
	ids := resp.Result.IDList
	if ids == nil {
		ids = []string{}
	}

	return &SearchResult{
		Count:            count,
		IDs:              ids,
		QueryTranslation: resp.Result.QueryTranslation,
	}, nil
}
