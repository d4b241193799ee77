// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package library

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paperfetch/pkg/types"
)

// SidecarPath returns the metadata file path for a PDF: <pdf>.yaml.
func SidecarPath(pdfPath string) string {
	return pdfPath + ".yaml"
}

// WriteSidecar writes paper as YAML next to pdfPath and returns its path.
func WriteSidecar(paper types.Paper, pdfPath string) (string, error) {
	paper.PDFPath = pdfPath
	data, err := yaml.Marshal(paper)
	if err != nil {
		return "", fmt.Errorf("marshaling metadata: %w", err)
	}
	path := SidecarPath(pdfPath)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing metadata %s: %w", path, err)
	}
	return path, nil
}

// ReadSidecar reads the metadata written by WriteSidecar.
func ReadSidecar(pdfPath string) (*types.Paper, error) {
	data, err := os.ReadFile(SidecarPath(pdfPath))
	if err != nil {
		return nil, err
	}
	var paper types.Paper
	if err := yaml.Unmarshal(data, &paper); err != nil {
		return nil, fmt.Errorf("parsing metadata for %s: %w", pdfPath, err)
	}
	return &paper, nil
}
