// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the paced, retrying HTTP transport shared by the
// Sci-Hub and Semantic Scholar clients.
package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// ErrRetriesExhausted is returned when every attempt was rate limited or
// failed at the network level. No response is returned alongside it.
var ErrRetriesExhausted = errors.New("httputil: retries exhausted")

// ErrStatus marks an API response with an unexpected HTTP status.
var ErrStatus = errors.New("httputil: unexpected HTTP status")

// RetryBaseDelay is the backoff base used when a Policy leaves BaseDelay
// unset. Tests override this to avoid real sleeps.
var RetryBaseDelay = 1 * time.Second

const defaultMaxRetries = 3

// sleep waits for d or until ctx is done. Tests replace it to record waits.
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

// jitter returns a random duration in [0, base).
var jitter = func(base time.Duration) time.Duration {
	if base <= 0 {
		return 0
	}
	return rand.N(base)
}

// Policy bounds the retry loop of a single call.
type Policy struct {
	// MaxRetries is the number of retries after the first attempt. Zero
	// selects the default (3).
	MaxRetries int

	// BaseDelay is the first backoff interval. Zero selects RetryBaseDelay.
	BaseDelay time.Duration

	// Pace, when set, runs before every attempt (e.g. a rate limiter wait).
	Pace func(context.Context) error
}

func (p Policy) maxRetries() int {
	if p.MaxRetries <= 0 {
		return defaultMaxRetries
	}
	return p.MaxRetries
}

func (p Policy) baseDelay() time.Duration {
	if p.BaseDelay <= 0 {
		return RetryBaseDelay
	}
	return p.BaseDelay
}

// Backoff returns the wait before retry number attempt (0-based):
// base * 2^attempt plus jit. With jit drawn from [0, base) successive waits
// strictly increase.
func Backoff(attempt int, base, jit time.Duration) time.Duration {
	return base<<attempt + jit
}

// Retryable reports whether status is worth another attempt: 429 and the
// transient gateway and server errors.
func Retryable(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// DoWithRetry executes req and retries on HTTP 429 (Too Many Requests), on
// transient 5xx responses, and on transport errors, backing off
// exponentially with jitter between attempts.
//
// Any other status is returned to the caller untouched. On each retryable
// status the body is drained and closed before sleeping. If ctx is
// cancelled the function returns ctx.Err(). After MaxRetries retries it
// returns ErrRetriesExhausted and no response.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, policy Policy, log zerolog.Logger) (*http.Response, error) {
	maxRetries := policy.maxRetries()
	base := policy.baseDelay()

	for attempt := 0; ; attempt++ {
		if policy.Pace != nil {
			if err := policy.Pace(ctx); err != nil {
				return nil, err
			}
		}

		var reason string
		resp, err := client.Do(req.Clone(ctx))
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			reason = err.Error()
		case resp.StatusCode == http.StatusTooManyRequests:
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			reason = "rate limited (429)"
		case Retryable(resp.StatusCode):
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			reason = fmt.Sprintf("server error (%d)", resp.StatusCode)
		default:
			return resp, nil
		}

		if attempt >= maxRetries {
			log.Error().Str("url", req.URL.String()).Int("retries", maxRetries).Msg(reason)
			return nil, fmt.Errorf("%w after %d retries: %s", ErrRetriesExhausted, maxRetries, reason)
		}

		wait := Backoff(attempt, base, jitter(base))
		log.Warn().
			Str("url", req.URL.String()).
			Dur("wait", wait).
			Int("attempt", attempt+1).
			Int("max_retries", maxRetries).
			Msgf("%s, retrying", reason)

		if err := sleep(ctx, wait); err != nil {
			return nil, err
		}
	}
}
