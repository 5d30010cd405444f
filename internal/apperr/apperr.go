// Package apperr defines the error kinds that end a run.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrRetrieval marks network, status, or decoding failures talking to NCBI.
	ErrRetrieval = errors.New("retrieval failed")
	// ErrWrite marks failures creating or writing the output destination.
	ErrWrite = errors.New("write failed")
	// ErrNoResults marks a run that produced nothing to emit.
	ErrNoResults = errors.New("no papers found")
	// ErrInvalidInput marks bad flags or configuration.
	ErrInvalidInput = errors.New("invalid input")
)

// Wrap attaches kind and operation context to err, keeping both matchable
// with errors.Is. It returns nil when err is nil.
func Wrap(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

// Is reports whether err carries kind.
func Is(err error, kind error) bool {
	return errors.Is(err, kind)
}

// Chain returns every message in err's wrap chain, outermost first.
// Joined errors are walked depth first.
func Chain(err error) []string {
	var out []string
	var walk func(error)
	walk = func(e error) {
		if e == nil {
			return
		}
		out = append(out, e.Error())
		switch u := e.(type) {
		case interface{ Unwrap() []error }:
			for _, inner := range u.Unwrap() {
				walk(inner)
			}
		case interface{ Unwrap() error }:
			walk(u.Unwrap())
		}
	}
	walk(err)
	return out
}
