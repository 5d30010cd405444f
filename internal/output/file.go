package output

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/henrybloomingdale/pharma-papers/internal/apperr"
)

// writeFile renders into a temp file next to path and renames it into
// place, so a failed render never leaves a partial file behind.
func writeFile(path string, render func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".pharma-papers-*.tmp")
	if err != nil {
		return apperr.Wrap(apperr.ErrWrite, path, fmt.Errorf("creating temp file: %w", err))
	}
	tmpPath := tmp.Name()

	fail := func(err error) error {
		tmp.Close()
		os.Remove(tmpPath)
		return apperr.Wrap(apperr.ErrWrite, path, err)
	}

	bw := bufio.NewWriter(tmp)
	if err := render(bw); err != nil {
		return fail(err)
	}
	if err := bw.Flush(); err != nil {
		return fail(fmt.Errorf("flushing output: %w", err))
	}
	if err := tmp.Chmod(0o644); err != nil {
		return fail(fmt.Errorf("setting permissions: %w", err))
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return apperr.Wrap(apperr.ErrWrite, path, fmt.Errorf("closing temp file: %w", err))
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return apperr.Wrap(apperr.ErrWrite, path, fmt.Errorf("renaming temp file: %w", err))
	}
	return nil
}
