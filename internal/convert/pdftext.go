// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFTextConverter reads the embedded text layer with a pure-Go parser.
// Scanned, image-only PDFs produce no text.
type PDFTextConverter struct{}

// NewPDFTextConverter returns the default converter.
func NewPDFTextConverter() *PDFTextConverter { return &PDFTextConverter{} }

// Convert emits one Markdown section per non-blank page, each preceded by a
// <!-- page N --> marker.
func (PDFTextConverter) Convert(ctx context.Context, pdfPath string) (md string, err error) {
	f, r, err := pdf.Open(pdfPath)
	if err != nil {
		return "", fmt.Errorf("opening PDF %s: %w", pdfPath, err)
	}
	defer f.Close()

	// The parser panics on some malformed files.
	defer func() {
		if rec := recover(); rec != nil {
			md, err = "", fmt.Errorf("parsing PDF %s: %v", pdfPath, rec)
		}
	}()

	fonts := make(map[string]*pdf.Font)
	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		for _, name := range p.Fonts() {
			if _, ok := fonts[name]; !ok {
				font := p.Font(name)
				fonts[name] = &font
			}
		}

		text, err := p.GetPlainText(fonts)
		if err != nil {
			return "", fmt.Errorf("reading page %d of %s: %w", i, pdfPath, err)
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		fmt.Fprintf(&b, "<!-- page %d -->\n\n%s\n\n", i, text)
	}
	return b.String(), nil
}
