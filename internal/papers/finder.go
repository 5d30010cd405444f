package papers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/henrybloomingdale/pharma-papers/internal/apperr"
	"github.com/henrybloomingdale/pharma-papers/internal/eutils"
)

// sampleSize caps the affiliations logged when nothing matched.
const sampleSize = 10

var (
	// ErrNoMatches means the search returned no records.
	ErrNoMatches = errors.New("no papers found matching the query")
	// ErrNoIndustry means records were found but none had industry authors
	// and fallback was disabled.
	ErrNoIndustry = errors.New("no papers with pharmaceutical/biotech affiliations found")
)

// Searcher resolves a query to PubMed IDs.
type Searcher interface {
	Search(ctx context.Context, query string, opts *eutils.SearchOptions) (*eutils.SearchResult, error)
}

// Fetcher retrieves full records for PubMed IDs.
type Fetcher interface {
	Fetch(ctx context.Context, pmids []string) ([]eutils.Article, error)
}

// Finder runs search, fetch, classification and selection once.
type Finder struct {
	Searcher Searcher
	Fetcher  Fetcher
	// Fallback emits every fetched paper when none has industry authors.
	Fallback bool
	Logger   *slog.Logger
}

// Result is the outcome of a successful Find.
type Result struct {
	// Total is the number of hits PubMed reported, which may exceed the bound.
	Total   int
	Fetched int
	// Papers holds the selected papers in search order.
	Papers       []Paper
	UsedFallback bool
	// Sample holds up to ten affiliation strings seen during the run.
	Sample []string
}

// Find performs the whole pipeline for q. It never calls the Fetcher when
// the search yields no IDs. Empty outcomes return an error carrying
// apperr.ErrNoResults together with ErrNoMatches or ErrNoIndustry.
func (f *Finder) Find(ctx context.Context, q Query) (*Result, error) {
	log := f.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	log.Info("searching PubMed", "query", q.Term, "max_results", q.MaxResults)
	sr, err := f.Searcher.Search(ctx, q.Term, &eutils.SearchOptions{Limit: q.MaxResults})
	if err != nil {
		return nil, err
	}
	if len(sr.IDs) == 0 {
		return nil, apperr.Wrap(apperr.ErrNoResults, "search", ErrNoMatches)
	}
	log.Info("found papers matching the query", "count", len(sr.IDs), "total", sr.Count)

	articles, err := f.Fetcher.Fetch(ctx, sr.IDs)
	if err != nil {
		return nil, err
	}
	if len(articles) == 0 {
		return nil, apperr.Wrap(apperr.ErrNoResults, "fetch", ErrNoMatches)
	}

	res := &Result{Total: sr.Count, Fetched: len(articles)}
	all := make([]Paper, 0, len(articles))
	for _, a := range articles {
		log.Debug("processing paper", "pmid", a.PMID, "title", a.Title, "affiliations", a.AffiliationCount())
		for _, au := range a.Authors {
			for _, aff := range au.Affiliations {
				log.Debug("found affiliation", "pmid", a.PMID, "affiliation", aff)
				if len(res.Sample) < sampleSize {
					res.Sample = append(res.Sample, aff)
				}
			}
		}
		all = append(all, Classify(a))
	}

	selected, usedFallback := Select(all, f.Fallback)
	if len(selected) == 0 || usedFallback {
		log.Debug("no papers with company affiliations found, sample of affiliations follows")
		for i, aff := range res.Sample {
			log.Debug(fmt.Sprintf("  %d. %s", i+1, aff))
		}
	}
	if len(selected) == 0 {
		return nil, apperr.Wrap(apperr.ErrNoResults, "filter", ErrNoIndustry)
	}
	if usedFallback {
		log.Warn("no papers with pharmaceutical/biotech affiliations found, including all papers as fallback",
			"papers", len(selected))
	} else {
		log.Info("found papers with pharmaceutical/biotech affiliations", "count", len(selected))
	}

	res.Papers = selected
	res.UsedFallback = usedFallback
	return res, nil
}
