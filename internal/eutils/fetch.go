package eutils

import (
	"context"
	"encoding/xml"
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strings"

	"github.com/henrybloomingdale/pharma-papers/internal/apperr"
)

// XML structures for parsing PubMed EFetch responses.

type pubmedArticleSet struct {
	XMLName  xml.Name        `xml:"PubmedArticleSet"`
	Articles []pubmedArticle `xml:"PubmedArticle"`
}

type pubmedArticle struct {
	Citation   medlineCitation `xml:"MedlineCitation"`
	PubmedData pubmedData      `xml:"PubmedData"`
}

type medlineCitation struct {
	PMID          xmlPMID    `xml:"PMID"`
	DateCompleted *xmlDate   `xml:"DateCompleted"`
	DateRevised   *xmlDate   `xml:"DateRevised"`
	Article       xmlArticle `xml:"Article"`
}

type xmlPMID struct {
	Value string `xml:",chardata"`
}

type xmlArticle struct {
	Journal             xmlJournal             `xml:"Journal"`
	ArticleTitle        markupText             `xml:"ArticleTitle"`
	Pagination          xmlPagination          `xml:"Pagination"`
	ELocationIDs        []xmlELocationID       `xml:"ELocationID"`
	AuthorList          xmlAuthorList          `xml:"AuthorList"`
	Language            []string               `xml:"Language"`
	PublicationTypeList xmlPublicationTypeList `xml:"PublicationTypeList"`
	ArticleDates        []xmlDate              `xml:"ArticleDate"`
}

type xmlJournal struct {
	JournalIssue    xmlJournalIssue `xml:"JournalIssue"`
	Title           string          `xml:"Title"`
	ISOAbbreviation string          `xml:"ISOAbbreviation"`
}

type xmlJournalIssue struct {
	Volume  string      `xml:"Volume"`
	Issue   string      `xml:"Issue"`
	PubDate *xmlPubDate `xml:"PubDate"`
}

type xmlDate struct {
	Year  string `xml:"Year"`
	Month string `xml:"Month"`
	Day   string `xml:"Day"`
}

type xmlPubDate struct {
	xmlDate
	MedlineDate string `xml:"MedlineDate"`
}

type xmlPagination struct {
	MedlinePgn string `xml:"MedlinePgn"`
}

type xmlELocationID struct {
	EIdType string `xml:"EIdType,attr"`
	Value   string `xml:",chardata"`
}

type xmlAuthorList struct {
	Authors []xmlAuthor `xml:"Author"`
}

type xmlAuthor struct {
	ValidYN         string               `xml:"ValidYN,attr"`
	LastName        string               `xml:"LastName"`
	ForeName        string               `xml:"ForeName"`
	Initials        string               `xml:"Initials"`
	CollectiveName  markupText           `xml:"CollectiveName"`
	Identifiers     []xmlIdentifier      `xml:"Identifier"`
	AffiliationInfo []xmlAffiliationInfo `xml:"AffiliationInfo"`
}

type xmlIdentifier struct {
	Source string `xml:"Source,attr"`
	Value  string `xml:",chardata"`
}

type xmlAffiliationInfo struct {
	Affiliation markupText `xml:"Affiliation"`
}

type xmlPublicationTypeList struct {
	Types []xmlPublicationType `xml:"PublicationType"`
}

type xmlPublicationType struct {
	Name string `xml:",chardata"`
}

type pubmedData struct {
	ArticleIDList xmlArticleIDList `xml:"ArticleIdList"`
}

type xmlArticleIDList struct {
	ArticleIDs []xmlArticleID `xml:"ArticleId"`
}

type xmlArticleID struct {
	IDType string `xml:"IdType,attr"`
	Value  string `xml:",chardata"`
}

// markupText captures element content that may hold inline tags such as
// <i>, <sup> or <b>, which PubMed allows in titles and affiliations.
type markupText struct {
	Inner string `xml:",innerxml"`
}

var tagRe = regexp.MustCompile(`<[^>]*>`)

// Text returns the content with tags removed, entities decoded, and
// whitespace collapsed.
func (m markupText) Text() string {
	s := tagRe.ReplaceAllString(m.Inner, "")
	s = html.UnescapeString(s)
	return strings.Join(strings.Fields(s), " ")
}

// Fetch retrieves full records for the given PMIDs in one batch request.
// Callers must not pass an empty list.
func (c *Client) Fetch(ctx context.Context, pmids []string) ([]Article, error) {
	if len(pmids) == 0 {
		return nil, apperr.Wrap(apperr.ErrInvalidInput, "fetch", fmt.Errorf("at least one PMID is required"))
	}

	params := url.Values{}
	params.Set("db", "pubmed")
	params.Set("id", strings.Join(pmids, ","))
	params.Set("rettype", "xml")
	params.Set("retmode", "xml")

	body, err := c.DoPost(ctx, "efetch.fcgi", params)
	if err != nil {
		return nil, fmt.Errorf("fetch request failed: %w", err)
	}

	articles, err := parseArticles(body)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrRetrieval, "fetch", err)
	}
	return articles, nil
}

// parseArticles parses PubMed XML into Article structs.
func parseArticles(data []byte) ([]Article, error) {
	var articleSet pubmedArticleSet
	if err := xml.Unmarshal(data, &articleSet); err != nil {
		return nil, fmt.Errorf("parsing PubMed XML: %w", err)
	}

	articles := make([]Article, 0, len(articleSet.Articles))
	for _, pa := range articleSet.Articles {
		articles = append(articles, convertArticle(pa))
	}

	return articles, nil
}

func convertArticle(pa pubmedArticle) Article {
	mc := pa.Citation
	xa := mc.Article

	a := Article{
		PMID:          strings.TrimSpace(mc.PMID.Value),
		Title:         xa.ArticleTitle.Text(),
		Journal:       xa.Journal.Title,
		JournalAbbrev: xa.Journal.ISOAbbreviation,
		Volume:        xa.Journal.JournalIssue.Volume,
		Issue:         xa.Journal.JournalIssue.Issue,
		Pages:         xa.Pagination.MedlinePgn,
		DateCompleted: mc.DateCompleted.toDate(),
		DateRevised:   mc.DateRevised.toDate(),
	}

	if pd := xa.Journal.JournalIssue.PubDate; pd != nil {
		a.PubDate = &PubDate{
			Date:        Date{Year: pd.Year, Month: pd.Month, Day: pd.Day},
			MedlineDate: pd.MedlineDate,
		}
	}
	if len(xa.ArticleDates) > 0 {
		a.ArticleDate = xa.ArticleDates[0].toDate()
	}

	if len(xa.Language) > 0 {
		a.Language = xa.Language[0]
	}

	for _, au := range xa.AuthorList.Authors {
		if au.ValidYN == "N" {
			continue
		}
		author := Author{
			LastName:       au.LastName,
			ForeName:       au.ForeName,
			Initials:       au.Initials,
			CollectiveName: au.CollectiveName.Text(),
		}
		for _, info := range au.AffiliationInfo {
			if text := info.Affiliation.Text(); text != "" {
				author.Affiliations = append(author.Affiliations, text)
			}
		}
		for _, id := range au.Identifiers {
			if v := strings.TrimSpace(id.Value); v != "" {
				author.Identifiers = append(author.Identifiers, Identifier{Source: id.Source, Value: v})
			}
		}
		a.Authors = append(a.Authors, author)
	}

	for _, loc := range xa.ELocationIDs {
		if loc.EIdType == "doi" {
			a.DOI = strings.TrimSpace(loc.Value)
		}
	}
	for _, aid := range pa.PubmedData.ArticleIDList.ArticleIDs {
		switch aid.IDType {
		case "doi":
			if a.DOI == "" {
				a.DOI = strings.TrimSpace(aid.Value)
			}
		case "pmc":
			a.PMCID = strings.TrimSpace(aid.Value)
		}
	}

	for _, pt := range xa.PublicationTypeList.Types {
		a.PublicationTypes = append(a.PublicationTypes, pt.Name)
	}

	return a
}

func (d *xmlDate) toDate() *Date {
	if d == nil || (d.Year == "" && d.Month == "" && d.Day == "") {
		return nil
	}
	return &Date{Year: d.Year, Month: d.Month, Day: d.Day}
}
