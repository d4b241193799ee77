// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package download

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/paperfetch/pkg/types"
)

const binCurl = "curl"

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	Run(ctx context.Context, name string, args []string) (stderr string, err error)
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (osExecutor) Run(ctx context.Context, name string, args []string) (string, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	err := cmd.Run()
	return strings.TrimSpace(stderr.String()), err
}

// CurlStrategy downloads through the curl binary, which copes with some
// mirrors and CDNs better than net/http (redirect chains, flaky TLS).
type CurlStrategy struct {
	connectTimeout time.Duration
	maxTime        time.Duration
	minSize        int64
	retries        int
	retryDelay     time.Duration
	exec           executor
	log            zerolog.Logger
}

// NewCurlStrategy builds a curl strategy from cfg.
func NewCurlStrategy(cfg types.DownloadConfig, log zerolog.Logger) *CurlStrategy {
	s := &CurlStrategy{
		connectTimeout: cfg.ConnectTimeout,
		maxTime:        cfg.MaxTime,
		minSize:        cfg.MinSize,
		retries:        cfg.MaxRetries,
		retryDelay:     2 * time.Second,
		exec:           osExecutor{},
		log:            log,
	}
	if s.connectTimeout <= 0 {
		s.connectTimeout = 30 * time.Second
	}
	if s.maxTime <= 0 {
		s.maxTime = 300 * time.Second
	}
	if s.retries <= 0 {
		s.retries = types.DefaultMaxRetries
	}
	return s
}

// Name returns the strategy identifier.
func (s *CurlStrategy) Name() string { return binCurl }

// args builds the curl command line: follow redirects, fail on HTTP errors,
// stay silent, and let curl retry transient failures itself.
func (s *CurlStrategy) args(url, dest string) []string {
	return []string{
		"-L",
		"-o", dest,
		"--connect-timeout", seconds(s.connectTimeout),
		"--max-time", seconds(s.maxTime),
		"-f",
		"-s",
		"--retry", strconv.Itoa(s.retries),
		"--retry-delay", seconds(s.retryDelay),
		url,
	}
}

// Fetch runs curl into dest. Files of minSize bytes or fewer are treated as
// error pages and removed.
func (s *CurlStrategy) Fetch(ctx context.Context, url, dest string) error {
	if _, err := s.exec.LookPath(binCurl); err != nil {
		return fmt.Errorf("%w: %s not on PATH", ErrUnavailable, binCurl)
	}

	// Overall subprocess bound: curl's own max-time plus headroom for retries.
	ctx, cancel := context.WithTimeout(ctx, s.maxTime+time.Minute)
	defer cancel()

	stderr, err := s.exec.Run(ctx, binCurl, s.args(url, dest))
	if err != nil {
		os.Remove(dest)
		if ctx.Err() != nil {
			return fmt.Errorf("curl timed out: %w", ctx.Err())
		}
		if stderr != "" {
			return fmt.Errorf("curl failed: %w: %s", err, stderr)
		}
		return fmt.Errorf("curl failed: %w", err)
	}

	info, err := os.Stat(dest)
	if err != nil {
		return fmt.Errorf("curl produced no file: %w", err)
	}
	if info.Size() <= s.minSize {
		os.Remove(dest)
		return fmt.Errorf("%w: %d bytes", ErrTooSmall, info.Size())
	}

	s.log.Debug().Str("path", dest).Int64("bytes", info.Size()).Msg("curl download complete")
	return nil
}

func seconds(d time.Duration) string {
	return strconv.Itoa(int(d / time.Second))
}
