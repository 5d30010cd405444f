// Package papers turns fetched PubMed records into classified papers and
// the flat rows written to CSV and the other output formats.
package papers

import (
	"fmt"
	"slices"
	"strings"

	"github.com/henrybloomingdale/pharma-papers/internal/affiliation"
	"github.com/henrybloomingdale/pharma-papers/internal/apperr"
	"github.com/henrybloomingdale/pharma-papers/internal/eutils"
)

const (
	// DefaultMaxResults bounds a search when the user does not.
	DefaultMaxResults = 100
	// MaxResultsLimit is the largest retmax ESearch honours.
	MaxResultsLimit = 10000
)

// Query is a validated search request.
type Query struct {
	Term       string
	MaxResults int
}

// NewQuery trims term and checks both fields.
func NewQuery(term string, maxResults int) (Query, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return Query{}, apperr.Wrap(apperr.ErrInvalidInput, "query", fmt.Errorf("search query cannot be empty"))
	}
	if maxResults < 1 || maxResults > MaxResultsLimit {
		return Query{}, apperr.Wrap(apperr.ErrInvalidInput, "query",
			fmt.Errorf("max results must be between 1 and %d, got %d", MaxResultsLimit, maxResults))
	}
	return Query{Term: term, MaxResults: maxResults}, nil
}

// Paper is one record with its industry classification applied.
type Paper struct {
	PMID            string `json:"pmid" yaml:"pmid"`
	Title           string `json:"title" yaml:"title"`
	PublicationDate string `json:"publication_date" yaml:"publication_date"`
	Journal         string `json:"journal,omitempty" yaml:"journal,omitempty"`
	DOI             string `json:"doi,omitempty" yaml:"doi,omitempty"`
	Year            string `json:"year,omitempty" yaml:"year,omitempty"`
	Volume          string `json:"volume,omitempty" yaml:"volume,omitempty"`
	Issue           string `json:"issue,omitempty" yaml:"issue,omitempty"`
	Pages           string `json:"pages,omitempty" yaml:"pages,omitempty"`

	Authors      []string `json:"authors" yaml:"authors"`
	Affiliations []string `json:"affiliations,omitempty" yaml:"affiliations,omitempty"`

	IndustryAuthors     []string `json:"industry_authors" yaml:"industry_authors"`
	CompanyAffiliations []string `json:"company_affiliations" yaml:"company_affiliations"`
	Companies           []string `json:"companies" yaml:"companies"`
	HasIndustry         bool     `json:"has_industry" yaml:"has_industry"`
	CorrespondingEmail  string   `json:"corresponding_email,omitempty" yaml:"corresponding_email,omitempty"`
}

// Classify applies the affiliation classifier to every author of a.
//
// An author counts as industrial when any of their affiliations does. The
// corresponding e-mail is the first non-academic address of an industrial
// author, else any address of an industrial author, else the first address
// anywhere in the record.
func Classify(a eutils.Article) Paper {
	p := Paper{
		PMID:            a.PMID,
		Title:           a.Title,
		PublicationDate: a.PublicationDate(),
		Journal:         a.Journal,
		DOI:             a.DOI,
		Year:            a.Year(),
		Volume:          a.Volume,
		Issue:           a.Issue,
		Pages:           a.Pages,
	}

	var industryCompanyMail, industryMail, firstMail string
	for _, au := range a.Authors {
		name := au.FullName()
		if name != "" {
			p.Authors = append(p.Authors, name)
		}

		industrial := false
		for _, aff := range au.Affiliations {
			p.Affiliations = appendUnique(p.Affiliations, aff)
			m := affiliation.Classify(aff)
			if !m.IsIndustry() {
				continue
			}
			industrial = true
			p.CompanyAffiliations = appendUnique(p.CompanyAffiliations, aff)
			for _, c := range m.Companies {
				p.Companies = appendUnique(p.Companies, c)
			}
		}

		emails := authorEmails(au)
		if firstMail == "" && len(emails) > 0 {
			firstMail = emails[0]
		}
		if !industrial {
			continue
		}
		p.HasIndustry = true
		if name != "" {
			p.IndustryAuthors = appendUnique(p.IndustryAuthors, name)
		}
		for _, e := range emails {
			if industryMail == "" {
				industryMail = e
			}
			if industryCompanyMail == "" && !affiliation.IsAcademicEmail(e) {
				industryCompanyMail = e
			}
		}
	}

	switch {
	case industryCompanyMail != "":
		p.CorrespondingEmail = industryCompanyMail
	case industryMail != "":
		p.CorrespondingEmail = industryMail
	default:
		p.CorrespondingEmail = firstMail
	}
	return p
}

// ClassifyAll classifies articles in order.
func ClassifyAll(articles []eutils.Article) []Paper {
	out := make([]Paper, 0, len(articles))
	for _, a := range articles {
		out = append(out, Classify(a))
	}
	return out
}

// Select keeps the papers with industry authors. When there are none and
// fallback is set, every paper is returned and usedFallback is true.
func Select(all []Paper, fallback bool) (selected []Paper, usedFallback bool) {
	for _, p := range all {
		if p.HasIndustry {
			selected = append(selected, p)
		}
	}
	if len(selected) > 0 {
		return selected, false
	}
	if fallback && len(all) > 0 {
		return all, true
	}
	return nil, false
}

func authorEmails(au eutils.Author) []string {
	var out []string
	for _, aff := range au.Affiliations {
		for _, e := range affiliation.ExtractEmails(aff) {
			out = appendUnique(out, e)
		}
	}
	for _, id := range au.Identifiers {
		if strings.Contains(id.Value, "@") {
			out = appendUnique(out, strings.TrimSpace(id.Value))
		}
	}
	return out
}

func appendUnique(list []string, s string) []string {
	if s == "" || slices.Contains(list, s) {
		return list
	}
	return append(list, s)
}
