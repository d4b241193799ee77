// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the paperfetch pipeline:
// the Paper record produced by every source and the per-stage configuration
// records consumed by the resolvers, downloader, and converters.
package types

import "time"

// Source tags identify which service produced a Paper.
const (
	SourceSciHub   = "scihub"
	SourceSemantic = "semantic"
)

// DefaultCutoffYear is the first publication year Sci-Hub no longer covers.
const DefaultCutoffYear = 2023

// Paper holds metadata for a single academic paper. Only ID is guaranteed to
// be set; every other field may be empty.
type Paper struct {
	// ID is the identifier the paper was requested or returned by
	// (a DOI for Sci-Hub, a Semantic Scholar paper ID otherwise).
	ID string `json:"id" yaml:"id"`

	// RequestedID is the identifier the caller asked for when the source
	// answered with a different one, e.g. ARXIV:2106.15928 resolving to a
	// Semantic Scholar paper ID.
	RequestedID string `json:"requested_id,omitempty" yaml:"requested_id,omitempty"`

	// Title is the paper title.
	Title string `json:"title" yaml:"title"`

	// Authors lists the paper authors in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Abstract is the paper abstract.
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// URL is the canonical landing page for the paper.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// PDFURL is a direct link to the PDF, empty when none is known.
	PDFURL string `json:"pdf_url,omitempty" yaml:"pdf_url,omitempty"`

	// PublishedDate is the publication date. The zero value means unknown.
	PublishedDate time.Time `json:"published_date,omitzero" yaml:"published_date,omitempty"`

	// Source identifies which service produced this record ("scihub", "semantic").
	Source string `json:"source" yaml:"source"`

	// Categories holds field-of-study tags.
	Categories []string `json:"categories,omitempty" yaml:"categories,omitempty"`

	// DOI is the Digital Object Identifier, if known.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// Citations is the citation count reported by the source.
	Citations int `json:"citations" yaml:"citations"`

	// PDFPath is the local filesystem path once the PDF has been downloaded.
	PDFPath string `json:"pdf_path,omitempty" yaml:"pdf_path,omitempty"`
}

// HasPDF reports whether a direct PDF link is known for the paper.
func (p Paper) HasPDF() bool {
	return p.PDFURL != ""
}

// PublishedBefore reports whether the paper was published strictly before
// cutoffYear. An unknown publication date reports false.
func (p Paper) PublishedBefore(cutoffYear int) bool {
	return PublishedBefore(p.PublishedDate, cutoffYear)
}

// PublishedBefore reports whether date falls in a year strictly earlier than
// cutoffYear. A zero date reports false.
func PublishedBefore(date time.Time, cutoffYear int) bool {
	if date.IsZero() {
		return false
	}
	return date.Year() < cutoffYear
}
