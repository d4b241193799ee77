// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scihub

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pdiddy/paperfetch/internal/convert"
	"github.com/pdiddy/paperfetch/internal/download"
	"github.com/pdiddy/paperfetch/internal/httputil"
	"github.com/pdiddy/paperfetch/pkg/types"
)

// maxPDFBytes caps a single PDF download held in memory for hashing.
// Tests lower it.
var maxPDFBytes int64 = 200 << 20

// Fetcher downloads and reads papers from Sci-Hub by DOI.
type Fetcher struct {
	resolver  *Resolver
	client    *httputil.Client
	converter convert.Converter
	log       zerolog.Logger
}

// New builds a Fetcher from cfg. An empty cfg.Mirror falls back to
// SCIHUB_MIRROR and then the default mirror.
func New(cfg types.SciHubConfig, conv convert.Converter, log zerolog.Logger, opts ...httputil.Option) *Fetcher {
	ua := cfg.UserAgent
	if ua == "" {
		ua = types.BrowserUserAgent
	}
	client := httputil.NewClient(httputil.ClientConfig{
		Timeout: cfg.Timeout,
		Headers: map[string]string{
			"User-Agent":      ua,
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
			"Accept-Language": "en-US,en;q=0.5",
		},
	}, append([]httputil.Option{httputil.WithLogger(log)}, opts...)...)

	mirror := types.MirrorFromEnv(cfg.Mirror)
	log.Info().Str("mirror", mirror).Msg("Sci-Hub initialized")

	return &Fetcher{
		resolver:  NewResolver(client, mirror, log),
		client:    client,
		converter: conv,
		log:       log,
	}
}

// Name returns the source identifier.
func (f *Fetcher) Name() string { return types.SourceSciHub }

// DownloadPDF resolves doi and saves the PDF in dir as
// scihub_<doi>_<hash>.pdf, returning the path.
func (f *Fetcher) DownloadPDF(ctx context.Context, doi, dir string) (string, error) {
	paper, err := f.DownloadPaper(ctx, doi, dir)
	if err != nil {
		return "", err
	}
	return paper.PDFPath, nil
}

// DownloadPaper is DownloadPDF returning the paper record. Sci-Hub has no
// metadata beyond the DOI, so only ID, DOI, Source, and PDFPath are set.
func (f *Fetcher) DownloadPaper(ctx context.Context, doi, dir string) (*types.Paper, error) {
	doi = strings.TrimSpace(doi)
	if doi == "" {
		return nil, fmt.Errorf("DOI: %w", types.ErrEmptyIdentifier)
	}

	pdfURL, err := f.resolver.PDFURL(ctx, doi)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Get(ctx, pdfURL, nil)
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", pdfURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: download failed with status %d", download.ErrStatus, resp.StatusCode)
	}

	content, err := io.ReadAll(io.LimitReader(resp.Body, maxPDFBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading PDF body: %w", err)
	}
	if int64(len(content)) > maxPDFBytes {
		return nil, fmt.Errorf("%w: %s is over %d bytes", download.ErrTooLarge, pdfURL, maxPDFBytes)
	}

	contentType := resp.Header.Get("Content-Type")
	if !download.LooksLikePDF(contentType, content) {
		return nil, fmt.Errorf("%w (Content-Type: %s)", download.ErrNotPDF, contentType)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating directory %s: %w", dir, err)
	}
	path := filepath.Join(dir, download.SciHubFilename(doi, content))
	if _, err := download.WriteAtomic(path, bytes.NewReader(content)); err != nil {
		return nil, err
	}

	f.log.Info().Str("doi", doi).Str("path", path).Int("bytes", len(content)).Msg("PDF downloaded")
	return &types.Paper{ID: doi, DOI: doi, Source: types.SourceSciHub, PDFPath: path}, nil
}

// ReadPaper downloads doi and returns its Markdown with a Sci-Hub header.
func (f *Fetcher) ReadPaper(ctx context.Context, doi, dir string) (string, error) {
	paper, err := f.DownloadPaper(ctx, doi, dir)
	if err != nil {
		return "", err
	}

	md, err := convert.Extract(ctx, f.converter, paper.PDFPath, convert.HeaderFromPaper(*paper))
	if err != nil {
		return "", err
	}
	f.log.Info().Str("doi", paper.DOI).Int("chars", len(md)).Msg("extracted text")
	return md, nil
}
