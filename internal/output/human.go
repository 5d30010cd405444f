package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/henrybloomingdale/pharma-papers/internal/papers"
)

const (
	titleWidth   = 50
	companyWidth = 30
)

// truncate cuts s to maxLen runes, appending "…" if truncated.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-1]) + "…"
}

// writeTable renders a compact summary table followed by a count line.
func writeTable(w io.Writer, ps []papers.Paper) error {
	re := lipgloss.NewRenderer(w)
	cyan := re.NewStyle().Foreground(lipgloss.Color("6"))
	green := re.NewStyle().Foreground(lipgloss.Color("2"))
	dim := re.NewStyle().Faint(true)
	header := re.NewStyle().Bold(true).Foreground(lipgloss.Color("4"))

	rows := make([][]string, 0, len(ps))
	industry := 0
	for _, p := range ps {
		flag := dim.Render("No")
		if p.HasIndustry {
			flag = green.Render("Yes")
			industry++
		}
		rows = append(rows, []string{
			cyan.Render(p.PMID),
			truncate(p.Title, titleWidth),
			p.PublicationDate,
			truncate(strings.Join(p.Companies, papers.ListSeparator), companyWidth),
			flag,
			p.CorrespondingEmail,
		})
	}

	t := table.New().
		Headers("PMID", "Title", "Date", "Companies", "Industry", "Email").
		Rows(rows...).
		Border(lipgloss.NormalBorder()).
		BorderStyle(re.NewStyle().Foreground(lipgloss.Color("8"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return re.NewStyle()
		})

	if _, err := fmt.Fprintln(w, t.Render()); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d papers, %d with pharmaceutical/biotech affiliations\n", len(ps), industry)
	return err
}
