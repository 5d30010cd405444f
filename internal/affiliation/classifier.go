// Package affiliation decides whether a free-text author affiliation names a
// pharmaceutical or biotech company.
//
// Classification is a pure function of the input string. Matching runs in
// three tiers: a recognised company name is decisive; otherwise academic
// words (university, institute, hospital, ...) win; otherwise a corporate
// legal form or industry word marks the affiliation as industrial.
// Strings that join several institutions with ';' are judged per part.
package affiliation

import (
	"regexp"
	"slices"
	"strings"
)

// Kind is the outcome of classifying one affiliation.
type Kind int

const (
	// KindUnknown means there was no affiliation text to judge.
	KindUnknown Kind = iota
	// KindAcademic is a university, institute, hospital or similar.
	KindAcademic
	// KindIndustry is a pharmaceutical, biotech or other company.
	KindIndustry
	// KindOther has text but no recognised indicator.
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindAcademic:
		return "academic"
	case KindIndustry:
		return "industry"
	case KindOther:
		return "other"
	default:
		return "unknown"
	}
}

// Match is the classification of one affiliation string.
type Match struct {
	Kind Kind
	// Companies holds the organisation names found, in text order.
	Companies []string
	// Indicator is the text that decided the outcome.
	Indicator string
}

// IsIndustry reports whether the affiliation is industrial.
func (m Match) IsIndustry() bool { return m.Kind == KindIndustry }

// Classify judges a single affiliation string.
func Classify(text string) Match {
	text = stripEmails(text)
	if text == "" {
		return Match{Kind: KindUnknown}
	}

	var out Match
	sawAcademic, sawOther := false, false
	for _, part := range strings.Split(text, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		m := classifyPart(part)
		switch m.Kind {
		case KindIndustry:
			if out.Kind != KindIndustry {
				out.Kind = KindIndustry
				out.Indicator = m.Indicator
			}
			for _, c := range m.Companies {
				if !slices.Contains(out.Companies, c) {
					out.Companies = append(out.Companies, c)
				}
			}
		case KindAcademic:
			if !sawAcademic {
				sawAcademic = true
				if out.Kind != KindIndustry {
					out.Indicator = m.Indicator
				}
			}
		case KindOther:
			sawOther = true
		}
	}

	switch {
	case out.Kind == KindIndustry:
		return out
	case sawAcademic:
		return Match{Kind: KindAcademic, Indicator: out.Indicator}
	case sawOther:
		return Match{Kind: KindOther}
	default:
		return Match{Kind: KindUnknown}
	}
}

func classifyPart(part string) Match {
	if names, indicator := namedIn(part); len(names) > 0 {
		return Match{Kind: KindIndustry, Companies: names, Indicator: indicator}
	}

	if re := firstMatch(academicIndicators, part); re != nil {
		return Match{Kind: KindAcademic, Indicator: re.FindString(part)}
	}

	segments := splitSegments(part)

	// Legal forms point at the organisation segment directly.
	for i, seg := range segments {
		if form := legalFormIn(seg); form != "" {
			name := seg
			if i > 0 && cleanName(seg) == "" {
				name = segments[i-1] + " " + seg
			}
			return industry(cleanName(name), form)
		}
	}
	unitIndicator := ""
	for _, seg := range segments {
		if re := firstMatch(industryTerms, seg); re != nil {
			if unitPrefix.MatchString(seg) {
				// "Department of Pharmaceutical Sciences" is not a company name.
				if unitIndicator == "" {
					unitIndicator = re.FindString(seg)
				}
				continue
			}
			return industry(cleanName(seg), re.FindString(seg))
		}
	}
	if unitIndicator != "" {
		return industry("", unitIndicator)
	}
	if re := firstMatch(rndTerms, part); re != nil {
		return industry("", re.FindString(part))
	}

	return Match{Kind: KindOther}
}

func industry(name, indicator string) Match {
	m := Match{Kind: KindIndustry, Indicator: strings.TrimSpace(indicator)}
	if name != "" {
		m.Companies = []string{name}
	}
	return m
}

// namedIn returns every recognised company in s ordered by position.
func namedIn(s string) ([]string, string) {
	type hit struct {
		pos  int
		name string
		text string
	}
	var hits []hit
	for _, c := range namedCompanies {
		if loc := findCompany(c, s); loc != nil {
			hits = append(hits, hit{pos: loc[0], name: c.name, text: s[loc[0]:loc[1]]})
		}
	}
	if len(hits) == 0 {
		return nil, ""
	}
	slices.SortStableFunc(hits, func(a, b hit) int { return a.pos - b.pos })
	names := make([]string, 0, len(hits))
	for _, h := range hits {
		names = append(names, h.name)
	}
	return names, hits[0].text
}

// findCompany returns the first hit for c outside its exception spans.
func findCompany(c company, s string) []int {
	except := companyExceptions[c.name]
	var skip [][]int
	if except != nil {
		skip = except.FindAllStringIndex(s, -1)
	}
	for _, loc := range c.re.FindAllStringIndex(s, -1) {
		if !slices.ContainsFunc(skip, func(sp []int) bool { return loc[0] >= sp[0] && loc[1] <= sp[1] }) {
			return loc
		}
	}
	return nil
}

// legalFormIn returns the first corporate legal form in seg. A dotted form
// directly after a single-letter initial is skipped.
func legalFormIn(seg string) string {
	for _, re := range legalForms {
		for _, loc := range re.FindAllStringSubmatchIndex(seg, -1) {
			if initialRe.MatchString(seg[:loc[0]]) {
				continue
			}
			start, end := loc[0], loc[1]
			if len(loc) > 2 && loc[2] >= 0 {
				start, end = loc[2], loc[3]
			}
			return strings.Trim(seg[start:end], " ,")
		}
	}
	return ""
}

func firstMatch(res []*regexp.Regexp, s string) *regexp.Regexp {
	for _, re := range res {
		if re.MatchString(s) {
			return re
		}
	}
	return nil
}

func splitSegments(part string) []string {
	raw := strings.Split(part, ",")
	out := make([]string, 0, len(raw))
	for _, seg := range raw {
		if seg = strings.TrimSpace(seg); seg != "" {
			out = append(out, seg)
		}
	}
	return out
}

// cleanName removes trailing legal forms and surrounding punctuation.
func cleanName(s string) string {
	for {
		s = strings.Trim(s, " \t.,;:()[]\"'-")
		next := trailingLegalForm.ReplaceAllString(s, "")
		if next == s {
			return s
		}
		s = next
	}
}

func stripEmails(text string) string {
	text = electronicAddressRe.ReplaceAllString(text, "")
	text = emailRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}
