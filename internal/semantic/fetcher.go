// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package semantic

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pdiddy/paperfetch/internal/convert"
	"github.com/pdiddy/paperfetch/internal/download"
	"github.com/pdiddy/paperfetch/pkg/types"
)

// Downloader fetches a URL into a local file.
type Downloader interface {
	Fetch(ctx context.Context, url, dest string) error
}

// Fetcher downloads open-access PDFs linked from Semantic Scholar.
type Fetcher struct {
	client     *Client
	downloader Downloader
	converter  convert.Converter
	log        zerolog.Logger
}

// NewFetcher wires a Fetcher. d is normally a *download.Chain.
func NewFetcher(client *Client, d Downloader, conv convert.Converter, log zerolog.Logger) *Fetcher {
	return &Fetcher{client: client, downloader: d, converter: conv, log: log}
}

// Name returns the source identifier.
func (f *Fetcher) Name() string { return types.SourceSemantic }

// DownloadPDF saves the open-access PDF for id in dir as semantic_<id>.pdf.
func (f *Fetcher) DownloadPDF(ctx context.Context, id, dir string) (string, error) {
	paper, err := f.DownloadPaper(ctx, id, dir)
	if err != nil {
		return "", err
	}
	return paper.PDFPath, nil
}

// ReadPaper downloads id and returns its Markdown with a metadata header.
func (f *Fetcher) ReadPaper(ctx context.Context, id, dir string) (string, error) {
	paper, err := f.DownloadPaper(ctx, id, dir)
	if err != nil {
		return "", err
	}

	md, err := convert.Extract(ctx, f.converter, paper.PDFPath, convert.HeaderFromPaper(*paper))
	if err != nil {
		return "", err
	}
	f.log.Info().Str("id", paper.ID).Int("chars", len(md)).Msg("extracted text")
	return md, nil
}

// DownloadPaper fetches the details for id, downloads its open-access PDF,
// and returns the paper with PDFPath set. Details are requested once. When
// id is not the canonical paper ID it is kept in RequestedID.
func (f *Fetcher) DownloadPaper(ctx context.Context, id, dir string) (*types.Paper, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("paper ID: %w", types.ErrEmptyIdentifier)
	}

	paper, err := f.client.Paper(ctx, id)
	if err != nil {
		return nil, err
	}
	if paper.PDFURL == "" {
		return nil, fmt.Errorf("%w: no PDF URL for paper %s", types.ErrNoPDF, id)
	}

	path := filepath.Join(dir, download.SemanticFilename(id))
	if err := f.downloader.Fetch(ctx, paper.PDFURL, path); err != nil {
		return nil, err
	}
	paper.PDFPath = path
	if paper.ID != id {
		paper.RequestedID = id
	}
	return paper, nil
}
