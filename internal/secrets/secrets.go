// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys and credentials from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key name and the
// file contents (trimmed) are the value.
//
// Supported key files: semantic-scholar-api-key, scihub-mirror.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/paperfetch/pkg/types"
)

// Key file names.
const (
	KeySemanticScholar = "semantic-scholar-api-key"
	KeySciHubMirror    = "scihub-mirror"
)

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files produce a warning on stderr but do not abort.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// Apply fills configuration gaps from loaded secrets. Values already set in
// cfg win. The Sci-Hub mirror secret sits below SCIHUB_MIRROR, and the
// result is always a concrete mirror URL.
func Apply(cfg *types.Config, s map[string]string) {
	if cfg.Semantic.APIKey == "" {
		if key := s[KeySemanticScholar]; key != "" {
			cfg.Semantic.APIKey = key
			if cfg.Semantic.MinInterval == types.SemanticInterval("") {
				cfg.Semantic.MinInterval = types.SemanticInterval(key)
			}
		}
	}

	if cfg.SciHub.Mirror == "" && os.Getenv(types.EnvSciHubMirror) == "" {
		cfg.SciHub.Mirror = s[KeySciHubMirror]
	}
	cfg.SciHub.Mirror = types.MirrorFromEnv(cfg.SciHub.Mirror)
}
