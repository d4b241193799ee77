// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package download retrieves PDF binaries through an ordered list of
// strategies: the external curl binary first, then a streamed HTTP GET.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/pdiddy/paperfetch/pkg/types"
)

// Sentinel errors for download operations.
var (
	// ErrUnavailable is returned by a strategy that cannot run on this system.
	ErrUnavailable = errors.New("download: strategy unavailable")
	// ErrTooSmall is returned when a downloaded file is too small to be a PDF.
	ErrTooSmall = errors.New("download: file too small")
	// ErrStatus is returned for non-200 HTTP responses.
	ErrStatus = errors.New("download: unexpected HTTP status")
	// ErrNotPDF is returned when content does not look like a PDF.
	ErrNotPDF = errors.New("download: response is not a PDF")
	// ErrTooLarge is returned when a response exceeds the size limit.
	ErrTooLarge = errors.New("download: file too large")
	// ErrExhausted is returned when every strategy failed.
	ErrExhausted = errors.New("download: all methods failed")
)

// Strategy fetches url into dest. Implementations must leave no partial
// file at dest on failure.
type Strategy interface {
	Name() string
	Fetch(ctx context.Context, url, dest string) error
}

// Chain tries strategies in order and stops at the first success.
type Chain struct {
	strategies []Strategy
	log        zerolog.Logger
}

// NewChain builds a Chain over strategies, tried in the given order.
func NewChain(log zerolog.Logger, strategies ...Strategy) *Chain {
	return &Chain{strategies: strategies, log: log}
}

// New builds the standard chain from cfg: curl (when enabled) then HTTP.
func New(cfg types.DownloadConfig, log zerolog.Logger) *Chain {
	var strategies []Strategy
	if cfg.UseCurl {
		strategies = append(strategies, NewCurlStrategy(cfg, log))
	}
	strategies = append(strategies, NewHTTPStrategy(cfg, log))
	return NewChain(log, strategies...)
}

// Fetch runs each strategy until one succeeds. The returned error wraps
// ErrExhausted and every per-strategy failure.
func (c *Chain) Fetch(ctx context.Context, url, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", filepath.Dir(dest), err)
	}

	var errs []error
	for _, s := range c.strategies {
		err := s.Fetch(ctx, url, dest)
		if err == nil {
			c.log.Info().Str("strategy", s.Name()).Str("path", dest).Msg("PDF downloaded")
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !errors.Is(err, ErrUnavailable) {
			c.log.Warn().Err(err).Str("strategy", s.Name()).Msg("download failed, trying next method")
		}
		errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
	}
	if len(errs) == 0 {
		return fmt.Errorf("%w for %s: no strategies configured", ErrExhausted, url)
	}
	return fmt.Errorf("%w for %s: %w", ErrExhausted, url, errors.Join(errs...))
}

// WriteAtomic copies r to a temporary file beside dest and renames it into
// place on success, so dest never holds a partial download.
func WriteAtomic(dest string, r io.Reader) (int64, error) {
	tmpFile, err := os.CreateTemp(filepath.Dir(dest), ".download-*.tmp")
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	n, copyErr := io.Copy(tmpFile, r)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("renaming temp file: %w", err)
	}
	return n, nil
}
