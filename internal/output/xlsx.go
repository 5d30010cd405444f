package output

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/henrybloomingdale/pharma-papers/internal/papers"
)

const sheetName = "Papers"

// writeXLSX writes the same columns as the CSV export into a single sheet
// with a bold, filterable header row.
func writeXLSX(w io.Writer, ps []papers.Paper) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	header := make([]any, len(papers.Columns))
	for i, c := range papers.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, p := range ps {
		vals := p.Row().Values()
		row := make([]any, len(vals))
		for j, v := range vals {
			row[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("writing row for PMID %s: %w", p.PMID, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}
	if err := f.SetRowStyle(sheetName, 1, 1, bold); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}

	last, err := excelize.CoordinatesToCellName(len(papers.Columns), len(ps)+1)
	if err != nil {
		return err
	}
	if err := f.AutoFilter(sheetName, "A1:"+last, nil); err != nil {
		return fmt.Errorf("adding filter: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}
