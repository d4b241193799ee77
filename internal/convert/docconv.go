// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"

	"code.sajari.com/docconv/v2"
)

// DocconvConverter extracts text through docconv, which shells out to
// poppler's pdftotext for PDFs.
type DocconvConverter struct{}

// NewDocconvConverter returns a docconv-backed converter.
func NewDocconvConverter() *DocconvConverter { return &DocconvConverter{} }

// Convert returns the plain text body. docconv has no context support, so
// ctx is only checked before starting.
func (DocconvConverter) Convert(ctx context.Context, pdfPath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	res, err := docconv.ConvertPath(pdfPath)
	if err != nil {
		return "", fmt.Errorf("converting %s with docconv: %w", pdfPath, err)
	}
	return res.Body, nil
}
