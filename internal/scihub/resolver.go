// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scihub resolves DOIs to PDF links on a Sci-Hub mirror and
// downloads them. Coverage ends with papers published before 2023.
package scihub

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/pdiddy/paperfetch/internal/httputil"
	"github.com/pdiddy/paperfetch/pkg/types"
)

// maxPageBytes caps how much of a mirror's HTML page is read.
const maxPageBytes = 5 << 20

var onclickHref = regexp.MustCompile(`location\.href='([^']+)'`)

// linkStrategy finds a candidate PDF link in a mirror page.
type linkStrategy struct {
	name string
	find func(doc *goquery.Document) (string, bool)
}

// linkStrategies are tried in order; the first match wins.
var linkStrategies = []linkStrategy{
	{"embed", func(doc *goquery.Document) (string, bool) {
		src, ok := doc.Find(`embed[type="application/pdf"][src]`).First().Attr("src")
		return src, ok && src != ""
	}},
	{"iframe", func(doc *goquery.Document) (string, bool) {
		src, ok := doc.Find("iframe").First().Attr("src")
		return src, ok && src != ""
	}},
	{"button", func(doc *goquery.Document) (string, bool) {
		var href string
		doc.Find("button[onclick]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			onclick := s.AttrOr("onclick", "")
			if !strings.Contains(strings.ToLower(onclick), "pdf") {
				return true
			}
			if m := onclickHref.FindStringSubmatch(onclick); m != nil {
				href = m[1]
				return false
			}
			return true
		})
		return href, href != ""
	}},
	{"link", func(doc *goquery.Document) (string, bool) {
		var href string
		doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			h := s.AttrOr("href", "")
			if strings.Contains(strings.ToLower(h), "pdf") {
				href = h
				return false
			}
			return true
		})
		return href, href != ""
	}},
}

// NormalizeURL makes a link found on a mirror page absolute: "//host/x"
// gains https:, "/x" gains the mirror base, anything else is unchanged.
func NormalizeURL(base, raw string) string {
	switch {
	case strings.HasPrefix(raw, "//"):
		return "https:" + raw
	case strings.HasPrefix(raw, "/"):
		return strings.TrimRight(base, "/") + raw
	default:
		return raw
	}
}

// FindPDFLink runs the link strategies over an HTML page and returns the
// normalized link, or false when nothing matches.
func FindPDFLink(base string, page io.Reader) (string, bool, error) {
	doc, err := goquery.NewDocumentFromReader(page)
	if err != nil {
		return "", false, fmt.Errorf("parsing mirror page: %w", err)
	}
	for _, s := range linkStrategies {
		if raw, ok := s.find(doc); ok {
			return NormalizeURL(base, raw), true, nil
		}
	}
	return "", false, nil
}

// Resolver maps a DOI to a direct PDF URL on one mirror.
type Resolver struct {
	client *httputil.Client
	mirror string
	log    zerolog.Logger
}

// NewResolver builds a Resolver for mirror using client.
func NewResolver(client *httputil.Client, mirror string, log zerolog.Logger) *Resolver {
	return &Resolver{client: client, mirror: strings.TrimRight(mirror, "/"), log: log}
}

// Mirror returns the base URL in use.
func (r *Resolver) Mirror() string { return r.mirror }

// PDFURL fetches the mirror page for doi and extracts the PDF link. It
// returns types.ErrNotFound for non-200 pages, "article not found" pages,
// and pages without a recognizable link. The link itself is not checked.
func (r *Resolver) PDFURL(ctx context.Context, doi string) (string, error) {
	pageURL := r.mirror + "/" + doi
	resp, err := r.client.Get(ctx, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		r.log.Warn().Int("status", resp.StatusCode).Str("doi", doi).Msg("Sci-Hub returned non-200")
		return "", fmt.Errorf("%w: Sci-Hub returned HTTP %d for %s", types.ErrNotFound, resp.StatusCode, doi)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", pageURL, err)
	}

	if bytes.Contains(bytes.ToLower(body), []byte("article not found")) {
		r.log.Warn().Str("doi", doi).Msg("article not found on Sci-Hub")
		return "", fmt.Errorf("%w: article %s not found on Sci-Hub", types.ErrNotFound, doi)
	}

	link, ok, err := FindPDFLink(r.mirror, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("%w: could not find PDF for DOI %s on Sci-Hub", types.ErrNotFound, doi)
	}
	r.log.Debug().Str("doi", doi).Str("url", link).Msg("resolved PDF link")
	return link, nil
}
