// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync/atomic"
	"time"
)

// ErrStalled is returned by a body wrapped with IdleTimeout when no bytes
// arrive within the read timeout.
var ErrStalled = errors.New("httputil: response body stalled")

// NewTransport returns a transport that bounds dialing and the TLS handshake
// by connect and the wait for response headers by read. The body is not
// bounded here; wrap it with IdleTimeout.
func NewTransport(connect, read time.Duration) *http.Transport {
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: connect}).DialContext,
		TLSHandshakeTimeout:   connect,
		ResponseHeaderTimeout: read,
		ForceAttemptHTTP2:     true,
	}
}

// IdleTimeout wraps body so that a gap of more than timeout between reads
// calls cancel, which must cancel the request's context, and fails the read
// with ErrStalled. A steady transfer may take any amount of time. Close
// stops the timer and calls cancel.
func IdleTimeout(body io.ReadCloser, timeout time.Duration, cancel context.CancelFunc) io.ReadCloser {
	b := &idleBody{body: body, timeout: timeout, cancel: cancel}
	b.timer = time.AfterFunc(timeout, func() {
		b.stalled.Store(true)
		cancel()
	})
	return b
}

type idleBody struct {
	body    io.ReadCloser
	timeout time.Duration
	cancel  context.CancelFunc
	timer   *time.Timer
	stalled atomic.Bool
}

func (b *idleBody) Read(p []byte) (int, error) {
	n, err := b.body.Read(p)
	if b.stalled.Load() {
		return n, fmt.Errorf("%w: no data for %s", ErrStalled, b.timeout)
	}
	if n > 0 {
		b.timer.Reset(b.timeout)
	}
	return n, err
}

func (b *idleBody) Close() error {
	b.timer.Stop()
	b.cancel()
	return b.body.Close()
}
