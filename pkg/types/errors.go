// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "errors"

// Sentinel errors shared by every paper source.
var (
	// ErrEmptyIdentifier is returned before any network call when the
	// identifier is empty or whitespace.
	ErrEmptyIdentifier = errors.New("identifier is empty")
	// ErrNotFound is returned when a source has no record or no PDF link
	// for the identifier.
	ErrNotFound = errors.New("paper not found")
	// ErrNoPDF is returned when a paper exists but has no downloadable PDF.
	ErrNoPDF = errors.New("no PDF available")
)
