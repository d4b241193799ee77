// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch is the public boundary over paper sources. Its operations
// never return an error: failures come back as strings starting with
// ErrorMarker so callers can print or relay any result as-is.
package fetch

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/pdiddy/paperfetch/internal/convert"
	"github.com/pdiddy/paperfetch/internal/download"
	"github.com/pdiddy/paperfetch/internal/httputil"
	"github.com/pdiddy/paperfetch/pkg/types"
)

// ErrorMarker prefixes every failure string.
const ErrorMarker = "Error"

// Source is a place papers can be downloaded and read from.
type Source interface {
	Name() string
	DownloadPDF(ctx context.Context, id, dir string) (string, error)
	ReadPaper(ctx context.Context, id, dir string) (string, error)
}

// Download returns the local path of the downloaded PDF, or an error string.
func Download(ctx context.Context, src Source, id, dir string) string {
	path, err := src.DownloadPDF(ctx, id, dir)
	if err != nil {
		return Describe(err)
	}
	return path
}

// PaperSource is a Source that also reports the metadata it gathered while
// downloading.
type PaperSource interface {
	Source
	DownloadPaper(ctx context.Context, id, dir string) (*types.Paper, error)
}

// DownloadPaper is Download returning the paper record alongside the result
// string. The record is nil when the result is an error string. Sources
// without metadata yield a record holding only ID, Source, and PDFPath.
func DownloadPaper(ctx context.Context, src Source, id, dir string) (*types.Paper, string) {
	ps, ok := src.(PaperSource)
	if !ok {
		path, err := src.DownloadPDF(ctx, id, dir)
		if err != nil {
			return nil, Describe(err)
		}
		return &types.Paper{ID: strings.TrimSpace(id), Source: src.Name(), PDFPath: path}, path
	}

	paper, err := ps.DownloadPaper(ctx, id, dir)
	if err != nil {
		return nil, Describe(err)
	}
	return paper, paper.PDFPath
}

// Read returns the paper's Markdown with a metadata header, the
// "downloaded but unreadable" notice, or an error string.
func Read(ctx context.Context, src Source, id, dir string) string {
	md, err := src.ReadPaper(ctx, id, dir)
	if err != nil {
		return Describe(err)
	}
	return md
}

// IsError reports whether s is a failure string.
func IsError(s string) bool {
	return strings.HasPrefix(s, ErrorMarker)
}

// Describe renders err for the boundary. A PDF without extractable text is
// a soft result and is returned without the marker.
func Describe(err error) string {
	var noText *convert.NoTextError
	if errors.As(err, &noText) {
		return noText.Error()
	}
	return ErrorMarker + ": " + err.Error()
}

// Kind groups failures for logs and exit codes.
type Kind string

const (
	KindNone       Kind = ""
	KindInput      Kind = "input"
	KindNotFound   Kind = "not_found"
	KindTransport  Kind = "transport"
	KindContent    Kind = "content"
	KindExtraction Kind = "extraction"
	KindNoText     Kind = "no_text"
	KindInternal   Kind = "internal"
)

// Classify maps err onto a Kind.
func Classify(err error) Kind {
	var netErr net.Error
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, types.ErrEmptyIdentifier):
		return KindInput
	case errors.Is(err, types.ErrNotFound), errors.Is(err, types.ErrNoPDF):
		return KindNotFound
	case errors.Is(err, convert.ErrNoText):
		return KindNoText
	case errors.Is(err, download.ErrNotPDF), errors.Is(err, download.ErrTooLarge):
		return KindContent
	case errors.Is(err, convert.ErrConversion):
		return KindExtraction
	case errors.Is(err, httputil.ErrRetriesExhausted),
		errors.Is(err, httputil.ErrStatus),
		errors.Is(err, httputil.ErrStalled),
		errors.Is(err, download.ErrExhausted),
		errors.Is(err, download.ErrStatus),
		errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr):
		return KindTransport
	default:
		return KindInternal
	}
}
