// Package eutils provides the PubMed ESearch and EFetch calls.
package eutils

import "strings"

// SearchResult represents the result of an ESearch query.
type SearchResult struct {
	Count            int      `json:"count"`
	IDs              []string `json:"ids"`
	QueryTranslation string   `json:"query_translation"`
}

// SearchOptions configures a search query.
type SearchOptions struct {
	Limit int    `json:"limit,omitempty"`
	Sort  string `json:"sort,omitempty"`
}

// Article is one PubMed record as returned by EFetch.
// Date blocks are optional in the source XML and stay nil when absent.
type Article struct {
	PMID             string   `json:"pmid"`
	Title            string   `json:"title"`
	Authors          []Author `json:"authors"`
	Journal          string   `json:"journal"`
	JournalAbbrev    string   `json:"journal_abbrev"`
	Volume           string   `json:"volume,omitempty"`
	Issue            string   `json:"issue,omitempty"`
	Pages            string   `json:"pages,omitempty"`
	DOI              string   `json:"doi,omitempty"`
	PMCID            string   `json:"pmcid,omitempty"`
	PublicationTypes []string `json:"publication_types"`
	Language         string   `json:"language"`

	ArticleDate   *Date    `json:"article_date,omitempty"`
	PubDate       *PubDate `json:"pub_date,omitempty"`
	DateCompleted *Date    `json:"date_completed,omitempty"`
	DateRevised   *Date    `json:"date_revised,omitempty"`
}

// Author represents an article author.
type Author struct {
	LastName       string       `json:"last_name"`
	ForeName       string       `json:"fore_name"`
	Initials       string       `json:"initials"`
	CollectiveName string       `json:"collective_name,omitempty"`
	Affiliations   []string     `json:"affiliations,omitempty"`
	Identifiers    []Identifier `json:"identifiers,omitempty"`
}

// Identifier is an author identifier such as an ORCID.
type Identifier struct {
	Source string `json:"source"`
	Value  string `json:"value"`
}

// FullName returns "ForeName LastName", or CollectiveName if present.
func (a Author) FullName() string {
	if a.CollectiveName != "" {
		return a.CollectiveName
	}
	if a.ForeName == "" {
		return a.LastName
	}
	if a.LastName == "" {
		return a.ForeName
	}
	return a.ForeName + " " + a.LastName
}

// Date is a Year/Month/Day triple exactly as PubMed spells it.
// Month may be numeric ("03") or an abbreviation ("Mar").
type Date struct {
	Year  string `json:"year"`
	Month string `json:"month,omitempty"`
	Day   string `json:"day,omitempty"`
}

// PubDate is the journal issue date. Some records only carry a free-form
// MedlineDate such as "1998 Dec-1999 Jan".
type PubDate struct {
	Date
	MedlineDate string `json:"medline_date,omitempty"`
}

// Year returns the best known publication year, or "".
func (a Article) Year() string {
	if a.PubDate != nil {
		if a.PubDate.Year != "" {
			return a.PubDate.Year
		}
		if y := medlineYear(a.PubDate.MedlineDate); y != "" {
			return y
		}
	}
	if a.ArticleDate != nil {
		return a.ArticleDate.Year
	}
	return ""
}

// AffiliationCount returns the number of affiliation strings across authors.
func (a Article) AffiliationCount() int {
	n := 0
	for _, au := range a.Authors {
		for _, aff := range au.Affiliations {
			if strings.TrimSpace(aff) != "" {
				n++
			}
		}
	}
	return n
}
