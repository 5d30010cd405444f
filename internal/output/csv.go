package output

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/henrybloomingdale/pharma-papers/internal/papers"
)

// writeCSV writes the fixed header and one row per paper with RFC 4180
// quoting.
func writeCSV(w io.Writer, ps []papers.Paper) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(papers.Columns); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, p := range ps {
		if err := cw.Write(p.Row().Values()); err != nil {
			return fmt.Errorf("writing CSV row for PMID %s: %w", p.PMID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing CSV: %w", err)
	}
	return nil
}
