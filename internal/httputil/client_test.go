// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientHeadersAndAPIKey(t *testing.T) {
	tests := []struct {
		name    string
		apiKey  string
		wantKey string
	}{
		{"with API key", "test-key-123", "test-key-123"},
		{"without API key", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var captured *http.Request
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				captured = r
				w.WriteHeader(http.StatusOK)
			}))
			defer ts.Close()

			c := NewClient(ClientConfig{
				Headers: map[string]string{"User-Agent": "paperfetch-test", "Accept": "application/json"},
				APIKey:  tt.apiKey,
			}, WithHTTPClient(ts.Client()))

			resp, err := c.Get(context.Background(), ts.URL+"/paper/x", url.Values{"fields": {"title,url"}})
			require.NoError(t, err)
			resp.Body.Close()

			assert.Equal(t, "paperfetch-test", captured.Header.Get("User-Agent"))
			assert.Equal(t, "application/json", captured.Header.Get("Accept"))
			assert.Equal(t, tt.wantKey, captured.Header.Get("x-api-key"))
			assert.Equal(t, "title,url", captured.URL.Query().Get("fields"))
		})
	}
}

func TestClientPacesConsecutiveRequests(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	interval := 80 * time.Millisecond
	c := NewClient(ClientConfig{MinInterval: interval}, WithHTTPClient(ts.Client()))

	var stamps []time.Time
	for i := 0; i < 3; i++ {
		resp, err := c.Get(context.Background(), ts.URL, nil)
		require.NoError(t, err)
		resp.Body.Close()
		stamps = append(stamps, time.Now())
	}

	for i := 1; i < len(stamps); i++ {
		// Allow a little scheduler slack below the nominal interval.
		assert.GreaterOrEqual(t, stamps[i].Sub(stamps[i-1]), interval-10*time.Millisecond)
	}
}

func TestClientInstancesDoNotSharePacing(t *testing.T) {
	a := NewClient(ClientConfig{MinInterval: time.Hour})
	b := NewClient(ClientConfig{MinInterval: time.Hour})

	require.NoError(t, a.Wait(context.Background()))
	// b's first token is still available even though a just consumed its own.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.NoError(t, b.Wait(ctx))
}

func TestClientNoPacingWhenIntervalZero(t *testing.T) {
	c := NewClient(ClientConfig{})
	for i := 0; i < 5; i++ {
		assert.NoError(t, c.Wait(context.Background()))
	}
}

func TestClientBodyIdleTimeout(t *testing.T) {
	tests := []struct {
		name    string
		chunks  int
		gap     time.Duration
		wantErr bool
	}{
		{"steady transfer longer than timeout", 10, 50 * time.Millisecond, false},
		{"stalled transfer", 1, 2 * time.Second, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				flusher := w.(http.Flusher)
				w.WriteHeader(http.StatusOK)
				flusher.Flush()
				for i := 0; i < tt.chunks; i++ {
					select {
					case <-r.Context().Done():
						return
					case <-time.After(tt.gap):
					}
					w.Write([]byte("x"))
					flusher.Flush()
				}
			}))
			defer ts.Close()

			c := NewClient(ClientConfig{Timeout: 200 * time.Millisecond})
			resp, err := c.Get(context.Background(), ts.URL, nil)
			require.NoError(t, err)
			defer resp.Body.Close()

			data, err := io.ReadAll(resp.Body)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrStalled)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, strings.Repeat("x", tt.chunks), string(data))
		})
	}
}
