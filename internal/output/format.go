// Package output renders classified papers to the console or to a file.
package output

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/henrybloomingdale/pharma-papers/internal/apperr"
	"github.com/henrybloomingdale/pharma-papers/internal/papers"
)

// Format names an output encoding.
type Format string

const (
	FormatAuto  Format = ""
	FormatTable Format = "table"
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatXLSX  Format = "xlsx"
	FormatRIS   Format = "ris"
)

// Formats lists every accepted --format value.
var Formats = []Format{FormatTable, FormatCSV, FormatJSON, FormatYAML, FormatXLSX, FormatRIS}

// ParseFormat accepts a format name case-insensitively. The empty string
// selects FormatAuto.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "yml" {
		s = string(FormatYAML)
	}
	if s == "" {
		return FormatAuto, nil
	}
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	return FormatAuto, apperr.Wrap(apperr.ErrInvalidInput, "format", fmt.Errorf("unknown format %q", s))
}

// FormatForPath picks the file encoding from the extension. Anything
// unrecognised is CSV.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return FormatXLSX
	case ".ris":
		return FormatRIS
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatCSV
	}
}

// Options controls Write.
type Options struct {
	// Format forces an encoding. FormatAuto means table on the console and
	// extension-based for files.
	Format Format
	// Stdout receives console output.
	Stdout io.Writer
}

// Write emits ps to dest, or to opts.Stdout when dest is empty. File writes
// are atomic. Every failure carries apperr.ErrWrite. Nothing is written for
// an empty slice.
func Write(ctx context.Context, dest string, ps []papers.Paper, opts Options) error {
	if len(ps) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return apperr.Wrap(apperr.ErrWrite, "writing output", err)
	}

	if dest == "" {
		f := opts.Format
		if f == FormatAuto {
			f = FormatTable
		}
		if f == FormatXLSX {
			return apperr.Wrap(apperr.ErrInvalidInput, "writing output", fmt.Errorf("xlsx output needs a --file destination"))
		}
		w := opts.Stdout
		if w == nil {
			return apperr.Wrap(apperr.ErrWrite, "writing output", fmt.Errorf("no console writer"))
		}
		if err := encode(w, f, ps); err != nil {
			return apperr.Wrap(apperr.ErrWrite, "writing output", err)
		}
		return nil
	}

	f := opts.Format
	if f == FormatAuto || f == FormatTable {
		f = FormatForPath(dest)
	}
	return writeFile(dest, func(w io.Writer) error { return encode(w, f, ps) })
}

func encode(w io.Writer, f Format, ps []papers.Paper) error {
	switch f {
	case FormatTable:
		return writeTable(w, ps)
	case FormatCSV:
		return writeCSV(w, ps)
	case FormatJSON:
		return writeJSON(w, ps)
	case FormatYAML:
		return writeYAML(w, ps)
	case FormatXLSX:
		return writeXLSX(w, ps)
	case FormatRIS:
		return writeRIS(w, ps)
	default:
		return fmt.Errorf("unsupported format %q", f)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding YAML: %w", err)
	}
	return enc.Close()
}
