// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package download

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/paperfetch/internal/httputil"
	"github.com/pdiddy/paperfetch/pkg/types"
)

// sleep waits between HTTP attempts. Tests replace it to avoid real delays.
var sleep = func(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// HTTPStrategy streams the PDF with net/http, retrying timeouts and
// request errors with exponential backoff. The read timeout bounds each gap
// between reads, not the whole transfer.
type HTTPStrategy struct {
	client      *http.Client
	readTimeout time.Duration
	userAgent   string
	attempts  int
	baseDelay time.Duration
	log       zerolog.Logger
}

// NewHTTPStrategy builds an HTTP strategy with separate connect and read
// timeouts taken from cfg.
func NewHTTPStrategy(cfg types.DownloadConfig, log zerolog.Logger) *HTTPStrategy {
	connect := cfg.ConnectTimeout
	if connect <= 0 {
		connect = defaultConnectTimeout
	}
	read := cfg.ReadTimeout
	if read <= 0 {
		read = defaultReadTimeout
	}
	return newHTTPStrategy(&http.Client{Transport: httputil.NewTransport(connect, read)}, cfg, log)
}

const (
	defaultConnectTimeout = 30 * time.Second
	defaultReadTimeout    = 180 * time.Second
)

func newHTTPStrategy(client *http.Client, cfg types.DownloadConfig, log zerolog.Logger) *HTTPStrategy {
	s := &HTTPStrategy{
		client:      client,
		readTimeout: cfg.ReadTimeout,
		userAgent:   cfg.UserAgent,
		attempts:    cfg.MaxRetries,
		baseDelay:   cfg.BaseDelay,
		log:         log,
	}
	if s.readTimeout <= 0 {
		s.readTimeout = defaultReadTimeout
	}
	if s.attempts <= 0 {
		s.attempts = types.DefaultMaxRetries
	}
	if s.baseDelay <= 0 {
		s.baseDelay = types.DefaultRetryBaseDelay
	}
	return s
}

// Name returns the strategy identifier.
func (s *HTTPStrategy) Name() string { return "http" }

// Fetch downloads url into dest, making up to attempts tries.
func (s *HTTPStrategy) Fetch(ctx context.Context, url, dest string) error {
	var lastErr error
	for attempt := 0; attempt < s.attempts; attempt++ {
		lastErr = s.fetchOnce(ctx, url, dest)
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.log.Warn().Err(lastErr).
			Int("attempt", attempt+1).
			Int("attempts", s.attempts).
			Msg("HTTP download failed")

		if attempt < s.attempts-1 {
			if err := sleep(ctx, httputil.Backoff(attempt, s.baseDelay, 0)); err != nil {
				return err
			}
		}
	}
	return lastErr
}

func (s *HTTPStrategy) fetchOnce(ctx context.Context, url, dest string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}
	req.Header.Set("Accept", "application/pdf, */*;q=0.8")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request: %w", err)
	}
	body := httputil.IdleTimeout(resp.Body, s.readTimeout, cancel)
	defer body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: HTTP %d from %s", ErrStatus, resp.StatusCode, url)
	}

	if _, err := WriteAtomic(dest, body); err != nil {
		os.Remove(dest)
		return err
	}
	return nil
}
