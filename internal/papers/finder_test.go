package papers

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/henrybloomingdale/pharma-papers/internal/apperr"
	"github.com/henrybloomingdale/pharma-papers/internal/eutils"
)

type fakeSearcher struct {
	result *eutils.SearchResult
	err    error
	opts   *eutils.SearchOptions
}

func (s *fakeSearcher) Search(_ context.Context, _ string, opts *eutils.SearchOptions) (*eutils.SearchResult, error) {
	s.opts = opts
	return s.result, s.err
}

type fakeFetcher struct {
	articles []eutils.Article
	err      error
	calls    int
}

func (f *fakeFetcher) Fetch(_ context.Context, _ []string) ([]eutils.Article, error) {
	f.calls++
	return f.articles, f.err
}

func academicArticle(pmid string) eutils.Article {
	return eutils.Article{
		PMID:    pmid,
		Title:   "Academic " + pmid,
		Authors: []eutils.Author{{LastName: "Lee", Affiliations: []string{"Stanford University, Stanford, CA"}}},
	}
}

func TestFind_NoIDsSkipsFetch(t *testing.T) {
	s := &fakeSearcher{result: &eutils.SearchResult{IDs: []string{}}}
	f := &fakeFetcher{}
	finder := &Finder{Searcher: s, Fetcher: f, Fallback: true}

	_, err := finder.Find(context.Background(), Query{Term: "nothing", MaxResults: 5})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrNoResults)
	assert.ErrorIs(t, err, ErrNoMatches)
	assert.Equal(t, 0, f.calls)
	assert.Equal(t, 5, s.opts.Limit)
}

func TestFind_FetchReturnsNothing(t *testing.T) {
	s := &fakeSearcher{result: &eutils.SearchResult{IDs: []string{"1"}}}
	f := &fakeFetcher{}
	finder := &Finder{Searcher: s, Fetcher: f, Fallback: true}

	_, err := finder.Find(context.Background(), Query{Term: "x", MaxResults: 1})
	assert.ErrorIs(t, err, ErrNoMatches)
	assert.Equal(t, 1, f.calls)
}

func TestFind_PropagatesErrors(t *testing.T) {
	boom := apperr.Wrap(apperr.ErrRetrieval, "efetch.fcgi", errors.New("connection reset"))

	finder := &Finder{
		Searcher: &fakeSearcher{result: &eutils.SearchResult{IDs: []string{"1"}}},
		Fetcher:  &fakeFetcher{err: boom},
	}
	_, err := finder.Find(context.Background(), Query{Term: "x", MaxResults: 1})
	assert.ErrorIs(t, err, apperr.ErrRetrieval)

	finder = &Finder{Searcher: &fakeSearcher{err: boom}, Fetcher: &fakeFetcher{}}
	_, err = finder.Find(context.Background(), Query{Term: "x", MaxResults: 1})
	assert.ErrorIs(t, err, apperr.ErrRetrieval)
}

func TestFind_KeepsIndustryPapers(t *testing.T) {
	articles := []eutils.Article{academicArticle("2"), pfizerArticle(), academicArticle("3")}
	finder := &Finder{
		Searcher: &fakeSearcher{result: &eutils.SearchResult{Count: 48213, IDs: []string{"2", "39000001", "3"}}},
		Fetcher:  &fakeFetcher{articles: articles},
		Fallback: true,
	}

	res, err := finder.Find(context.Background(), Query{Term: "cancer immunotherapy", MaxResults: 3})
	require.NoError(t, err)
	assert.False(t, res.UsedFallback)
	assert.Equal(t, 48213, res.Total)
	assert.Equal(t, 3, res.Fetched)
	require.Len(t, res.Papers, 1)
	assert.Equal(t, "39000001", res.Papers[0].PMID)
}

func TestFind_Fallback(t *testing.T) {
	var logs bytes.Buffer
	finder := &Finder{
		Searcher: &fakeSearcher{result: &eutils.SearchResult{IDs: []string{"1", "2"}}},
		Fetcher:  &fakeFetcher{articles: []eutils.Article{academicArticle("1"), academicArticle("2")}},
		Fallback: true,
		Logger:   slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})),
	}

	res, err := finder.Find(context.Background(), Query{Term: "plants", MaxResults: 2})
	require.NoError(t, err)
	assert.True(t, res.UsedFallback)
	require.Len(t, res.Papers, 2)
	for _, p := range res.Papers {
		assert.False(t, p.HasIndustry)
	}
	assert.Contains(t, logs.String(), "level=WARN")
	assert.Contains(t, logs.String(), "fallback")
	assert.Contains(t, logs.String(), "affiliations=1")
	assert.Equal(t, []string{"Stanford University, Stanford, CA", "Stanford University, Stanford, CA"}, res.Sample)
}

func TestFind_NoFallback(t *testing.T) {
	finder := &Finder{
		Searcher: &fakeSearcher{result: &eutils.SearchResult{IDs: []string{"1"}}},
		Fetcher:  &fakeFetcher{articles: []eutils.Article{academicArticle("1")}},
		Fallback: false,
	}

	_, err := finder.Find(context.Background(), Query{Term: "plants", MaxResults: 1})
	assert.ErrorIs(t, err, apperr.ErrNoResults)
	assert.ErrorIs(t, err, ErrNoIndustry)
}

func TestFind_SampleIsCapped(t *testing.T) {
	var articles []eutils.Article
	ids := make([]string, 0, 12)
	for i := range 12 {
		id := string(rune('a' + i))
		ids = append(ids, id)
		articles = append(articles, academicArticle(id))
	}
	finder := &Finder{
		Searcher: &fakeSearcher{result: &eutils.SearchResult{IDs: ids}},
		Fetcher:  &fakeFetcher{articles: articles},
		Fallback: true,
	}
	res, err := finder.Find(context.Background(), Query{Term: "x", MaxResults: 12})
	require.NoError(t, err)
	assert.Len(t, res.Sample, sampleSize)
	assert.Len(t, res.Papers, 12)
}
