// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package semantic

import (
	"regexp"
	"strings"
)

var disclaimerURL = regexp.MustCompile(`https?://[^\s,)"]+`)

// OpenAccessPDFURL returns the best PDF link for oa. The explicit url wins.
// Otherwise links in the disclaimer are scanned: doi.org and arxiv.org links
// are preferred (arXiv abstract pages are rewritten to their PDF), then the
// first link. It returns "" when nothing is found.
func OpenAccessPDFURL(oa *OpenAccessPDF) string {
	if oa == nil {
		return ""
	}
	if oa.URL != "" {
		return oa.URL
	}

	matches := disclaimerURL.FindAllString(oa.Disclaimer, -1)
	if len(matches) == 0 {
		return ""
	}
	for _, u := range matches {
		if !strings.Contains(u, "doi.org") && !strings.Contains(u, "arxiv.org") {
			continue
		}
		if strings.Contains(u, "arxiv.org/abs/") {
			return strings.Replace(u, "/abs/", "/pdf/", 1) + ".pdf"
		}
		return u
	}
	return matches[0]
}
