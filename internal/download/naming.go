// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package download

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"os"
	"regexp"
	"strings"
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.\-]`)

// SanitizeID replaces every character outside [A-Za-z0-9_.-] with "_".
func SanitizeID(id string) string {
	return unsafeChars.ReplaceAllString(id, "_")
}

// SciHubFilename names a Sci-Hub download: the sanitized DOI plus a short
// content hash so distinct files for one DOI do not collide.
func SciHubFilename(doi string, content []byte) string {
	sum := md5.Sum(content)
	return fmt.Sprintf("scihub_%s_%s.pdf", SanitizeID(doi), hex.EncodeToString(sum[:])[:6])
}

// SemanticFilename names a Semantic Scholar download. Only path and scheme
// separators are replaced so prefixed IDs stay readable.
func SemanticFilename(paperID string) string {
	safe := strings.NewReplacer("/", "_", ":", "_").Replace(paperID)
	return "semantic_" + safe + ".pdf"
}

var pdfMagic = []byte("%PDF")

// LooksLikePDF reports whether a response is plausibly a PDF: either the
// Content-Type mentions pdf or the body starts with the %PDF magic.
func LooksLikePDF(contentType string, head []byte) bool {
	return strings.Contains(strings.ToLower(contentType), "pdf") || bytes.HasPrefix(head, pdfMagic)
}

// ValidatePDF checks that the file at path starts with the %PDF magic.
func ValidatePDF(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	head := make([]byte, len(pdfMagic))
	if n, _ := f.Read(head); n < len(pdfMagic) || !bytes.Equal(head, pdfMagic) {
		return fmt.Errorf("%w: %s", ErrNotPDF, path)
	}
	return nil
}
