// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishedBefore(t *testing.T) {
	tests := []struct {
		name   string
		date   time.Time
		cutoff int
		want   bool
	}{
		{"earlier year", time.Date(2022, 12, 31, 0, 0, 0, 0, time.UTC), 2023, true},
		{"same year", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), 2023, false},
		{"later year", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), 2023, false},
		{"absent date", time.Time{}, 2023, false},
		{"old paper", time.Date(2013, 7, 31, 0, 0, 0, 0, time.UTC), DefaultCutoffYear, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PublishedBefore(tt.date, tt.cutoff))
			assert.Equal(t, tt.want, Paper{ID: "x", PublishedDate: tt.date}.PublishedBefore(tt.cutoff))
		})
	}
}

func TestMirrorFromEnv(t *testing.T) {
	t.Run("explicit wins", func(t *testing.T) {
		t.Setenv(EnvSciHubMirror, "https://env.example")
		assert.Equal(t, "https://flag.example", MirrorFromEnv("https://flag.example/"))
	})
	t.Run("environment override", func(t *testing.T) {
		t.Setenv(EnvSciHubMirror, "https://sci-hub.st/")
		assert.Equal(t, "https://sci-hub.st", MirrorFromEnv(""))
	})
	t.Run("default mirror", func(t *testing.T) {
		t.Setenv(EnvSciHubMirror, "")
		assert.Equal(t, SciHubMirrors[0], MirrorFromEnv(""))
	})
}

func TestSemanticInterval(t *testing.T) {
	assert.Equal(t, time.Second, SemanticInterval("key"))
	assert.Equal(t, 500*time.Millisecond, SemanticInterval(""))
}

func TestDefaultConfigValidates(t *testing.T) {
	t.Setenv(EnvSciHubMirror, "")
	t.Setenv(EnvSemanticAPIKey, "k")

	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "k", cfg.Semantic.APIKey)
	assert.Equal(t, time.Second, cfg.Semantic.MinInterval)
	assert.Equal(t, int64(1000), cfg.Download.MinSize)
}

func TestConfigValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"bad mirror", func(c *Config) { c.SciHub.Mirror = "not a url" }, "Mirror"},
		{"unknown backend", func(c *Config) { c.Conversion.Backend = "ocr" }, "Backend"},
		{"too many retries", func(c *Config) { c.Semantic.MaxRetries = 50 }, "MaxRetries"},
		{"missing output dir", func(c *Config) { c.OutputDir = "" }, "OutputDir"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid configuration")
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestPaperJSONOmitsUnknownDate(t *testing.T) {
	data, err := json.Marshal(Paper{ID: "x", Source: SourceSemantic})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "published_date")
	assert.NotContains(t, string(data), "0001-01-01")

	data, err = json.Marshal(Paper{ID: "x", PublishedDate: time.Date(2018, 5, 1, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"published_date":"2018-05-01T00:00:00Z"`)
}
