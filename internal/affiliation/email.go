package affiliation

import (
	"regexp"
	"strings"
)

var academicDomainRe = regexp.MustCompile(`(?i)(?:\.edu$|\.edu\.|\.ac\.|\.gov$|\.gov\.|univ|college|institut|school)`)

// ExtractEmails returns the e-mail addresses found in text, in order and
// without duplicates. Trailing sentence punctuation is not part of a match.
func ExtractEmails(text string) []string {
	found := emailRe.FindAllString(text, -1)
	if len(found) == 0 {
		return nil
	}
	out := make([]string, 0, len(found))
	seen := make(map[string]bool, len(found))
	for _, addr := range found {
		addr = strings.TrimRight(addr, ".")
		key := strings.ToLower(addr)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, addr)
	}
	return out
}

// IsAcademicEmail reports whether the domain of addr looks like a
// university, research institute or government body.
func IsAcademicEmail(addr string) bool {
	at := strings.LastIndex(addr, "@")
	if at < 0 {
		return false
	}
	return academicDomainRe.MatchString(addr[at+1:])
}
