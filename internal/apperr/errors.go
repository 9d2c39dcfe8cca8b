// Package apperr defines sentinel errors shared across packages.
package apperr

import "errors"

var (
	// ErrNotFound signals that a run or run artifact does not exist.
	ErrNotFound = errors.New("not found")
	// ErrStoreCorrupt signals that the findings file on disk is not
	// well-formed JSON. Every update re-reads the current structure,
	// so a corrupt file is unrecoverable for the run.
	ErrStoreCorrupt = errors.New("findings store corrupt")
	// ErrEmptyCompletion signals that the oracle returned no usable text.
	ErrEmptyCompletion = errors.New("empty completion")
)
