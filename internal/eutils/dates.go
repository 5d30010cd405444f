package eutils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	medlineYearRe  = regexp.MustCompile(`\b(\d{4})\b`)
	medlineMonthRe = regexp.MustCompile(`^\d{4}\s+([A-Za-z]{3}|\d{1,2})\b`)
)

var monthNumbers = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

// PublicationDate returns the publication date as YYYY-MM-DD, preferring the
// electronic ArticleDate, then the journal PubDate, then the completion and
// revision dates. Missing month or day default to 01. It returns "" when no
// block carries a year.
func (a Article) PublicationDate() string {
	if d, ok := a.ArticleDate.iso(); ok {
		return d
	}
	if a.PubDate != nil {
		if d, ok := a.PubDate.Date.iso(); ok {
			return d
		}
		if d, ok := parseMedlineDate(a.PubDate.MedlineDate); ok {
			return d
		}
	}
	if d, ok := a.DateCompleted.iso(); ok {
		return d
	}
	if d, ok := a.DateRevised.iso(); ok {
		return d
	}
	return ""
}

func (d *Date) iso() (string, bool) {
	if d == nil {
		return "", false
	}
	year := strings.TrimSpace(d.Year)
	if len(year) != 4 {
		return "", false
	}
	if _, err := strconv.Atoi(year); err != nil {
		return "", false
	}
	return fmt.Sprintf("%s-%02d-%02d", year, parseMonth(d.Month), parseDay(d.Day)), true
}

// parseMonth accepts "3", "03", "Mar" or "March"; anything else is January.
func parseMonth(s string) int {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if n >= 1 && n <= 12 {
			return n
		}
		return 1
	}
	if len(s) >= 3 {
		if n, ok := monthNumbers[strings.ToLower(s[:3])]; ok {
			return n
		}
	}
	return 1
}

func parseDay(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 || n > 31 {
		return 1
	}
	return n
}

// parseMedlineDate recovers a date from values like "2019 Mar-Apr",
// "1998 Dec-1999 Jan" or "2020 Spring". The first month wins.
func parseMedlineDate(s string) (string, bool) {
	year := medlineYear(s)
	if year == "" {
		return "", false
	}
	month := 1
	if m := medlineMonthRe.FindStringSubmatch(strings.TrimSpace(s)); m != nil {
		month = parseMonth(m[1])
	}
	return fmt.Sprintf("%s-%02d-01", year, month), true
}

func medlineYear(s string) string {
	m := medlineYearRe.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return m[1]
}
