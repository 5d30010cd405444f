package papers

import "strings"

// Columns is the fixed header of every tabular output.
var Columns = []string{
	"PubmedID",
	"Title",
	"Publication Date",
	"Authors",
	"Non-academic Author(s)",
	"Company Affiliation(s)",
	"Company Name(s)",
	"Industry Affiliation",
	"Corresponding Author Email",
}

// ListSeparator joins list-valued fields in a Row.
const ListSeparator = "; "

// Row is the flat string projection of a Paper. Missing values are "".
type Row struct {
	PubmedID            string
	Title               string
	PublicationDate     string
	Authors             string
	NonAcademicAuthors  string
	CompanyAffiliations string
	CompanyNames        string
	IndustryAffiliation string
	CorrespondingEmail  string
}

// Row projects p onto the output columns.
func (p Paper) Row() Row {
	flag := "No"
	if p.HasIndustry {
		flag = "Yes"
	}
	return Row{
		PubmedID:            p.PMID,
		Title:               p.Title,
		PublicationDate:     p.PublicationDate,
		Authors:             strings.Join(p.Authors, ListSeparator),
		NonAcademicAuthors:  strings.Join(p.IndustryAuthors, ListSeparator),
		CompanyAffiliations: strings.Join(p.CompanyAffiliations, ListSeparator),
		CompanyNames:        strings.Join(p.Companies, ListSeparator),
		IndustryAffiliation: flag,
		CorrespondingEmail:  p.CorrespondingEmail,
	}
}

// Values returns the fields in Columns order.
func (r Row) Values() []string {
	return []string{
		r.PubmedID,
		r.Title,
		r.PublicationDate,
		r.Authors,
		r.NonAcademicAuthors,
		r.CompanyAffiliations,
		r.CompanyNames,
		r.IndustryAffiliation,
		r.CorrespondingEmail,
	}
}

// Rows projects every paper.
func Rows(ps []Paper) []Row {
	out := make([]Row, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Row())
	}
	return out
}
