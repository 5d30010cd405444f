package output

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/henrybloomingdale/pharma-papers/internal/papers"
)

// writeRIS exports papers as RIS citations. Company affiliations go in AD
// and company names in KW so citation managers can filter on them.
func writeRIS(out io.Writer, ps []papers.Paper) error {
	w := bufio.NewWriter(out)
	for i, p := range ps {
		writeRISTag(w, "TY", "JOUR")
		writeRISTag(w, "TI", p.Title)

		for _, name := range p.Authors {
			writeRISTag(w, "AU", name)
		}

		writeRISTag(w, "PY", p.Year)
		writeRISTag(w, "DA", strings.ReplaceAll(p.PublicationDate, "-", "/"))
		writeRISTag(w, "JO", p.Journal)
		writeRISTag(w, "VL", p.Volume)
		writeRISTag(w, "IS", p.Issue)

		startPage, endPage := splitPages(p.Pages)
		writeRISTag(w, "SP", startPage)
		writeRISTag(w, "EP", endPage)

		writeRISTag(w, "DO", p.DOI)
		for _, aff := range p.CompanyAffiliations {
			writeRISTag(w, "AD", aff)
		}
		for _, c := range p.Companies {
			writeRISTag(w, "KW", c)
		}
		if p.PMID != "" {
			writeRISTag(w, "ID", "PMID:"+p.PMID)
			writeRISTag(w, "UR", "https://pubmed.ncbi.nlm.nih.gov/"+p.PMID+"/")
		}
		writeRISTag(w, "ER", "")

		if i < len(ps)-1 {
			if _, err := w.WriteString("\n"); err != nil {
				return fmt.Errorf("writing RIS separator: %w", err)
			}
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing RIS output: %w", err)
	}
	return nil
}

func writeRISTag(w *bufio.Writer, tag, value string) {
	if tag == "ER" {
		_, _ = w.WriteString("ER  -\n")
		return
	}
	if strings.TrimSpace(value) == "" {
		return
	}
	_, _ = w.WriteString(tag + "  - " + sanitizeRISValue(value) + "\n")
}

func sanitizeRISValue(v string) string {
	v = strings.ReplaceAll(v, "\r\n", " ")
	v = strings.ReplaceAll(v, "\n", " ")
	v = strings.ReplaceAll(v, "\r", " ")
	return strings.TrimSpace(v)
}

func splitPages(pages string) (string, string) {
	pages = strings.TrimSpace(pages)
	if pages == "" {
		return "", ""
	}
	for _, sep := range []string{"-", "–", "—"} {
		if start, end, ok := strings.Cut(pages, sep); ok {
			return strings.TrimSpace(start), strings.TrimSpace(end)
		}
	}
	return pages, ""
}
