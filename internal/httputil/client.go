// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// ClientConfig configures a Client.
type ClientConfig struct {
	// Timeout bounds connecting, waiting for response headers, and each gap
	// between body reads. It does not bound a steady transfer.
	Timeout time.Duration

	// MinInterval is the minimum spacing between consecutive requests.
	// Zero disables pacing.
	MinInterval time.Duration

	// Headers are set on every request unless the request already has them.
	Headers map[string]string

	// APIKey, when non-empty, is sent in the x-api-key header.
	APIKey string

	// Retry bounds retries on 429 and transport failures.
	Retry Policy
}

// Client wraps http.Client with per-instance request pacing and retries.
// Pacing state lives in the instance; two Clients never share a limiter.
type Client struct {
	http    *http.Client
	limiter *rate.Limiter
	cfg     ClientConfig
	log     zerolog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client (tests pass an
// httptest server's client).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger attaches a logger for retry and pacing events.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// NewClient builds a Client from cfg.
func NewClient(cfg ClientConfig, opts ...Option) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	c := &Client{
		cfg: cfg,
		log: zerolog.Nop(),
	}
	if cfg.MinInterval > 0 {
		c.limiter = rate.NewLimiter(rate.Every(cfg.MinInterval), 1)
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{Transport: NewTransport(cfg.Timeout, cfg.Timeout)}
	}
	return c
}

// Wait blocks until the pacing interval since the previous request has
// elapsed. It is a no-op when pacing is disabled.
func (c *Client) Wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait: %w", err)
	}
	return nil
}

// Do sends req with default headers, pacing every attempt and retrying per
// the configured policy.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	for k, v := range c.cfg.Headers {
		if req.Header.Get(k) == "" {
			req.Header.Set(k, v)
		}
	}
	if c.cfg.APIKey != "" {
		req.Header.Set("x-api-key", c.cfg.APIKey)
	}

	policy := c.cfg.Retry
	policy.Pace = c.Wait

	reqCtx, cancel := context.WithCancel(ctx)
	resp, err := DoWithRetry(reqCtx, c.http, req, policy, c.log)
	if err != nil {
		cancel()
		return nil, err
	}
	resp.Body = IdleTimeout(resp.Body, c.cfg.Timeout, cancel)
	return resp, nil
}

// Get issues a GET to rawURL with params appended to its query string.
func (c *Client) Get(ctx context.Context, rawURL string, params url.Values) (*http.Response, error) {
	if len(params) > 0 {
		u, err := url.Parse(rawURL)
		if err != nil {
			return nil, fmt.Errorf("parsing URL %q: %w", rawURL, err)
		}
		q := u.Query()
		for k, vs := range params {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
		rawURL = u.String()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	return c.Do(ctx, req)
}
