// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/paperfetch/pkg/types"
)

// Header is the metadata block placed above extracted Markdown.
type Header struct {
	Identifier string
	Title      string
	DOI        string
	Authors    []string
	Published  time.Time
	URL        string
	PDFPath    string
	Source     string
}

// HeaderFromPaper copies the display fields of p. The identifier is the one
// the paper was requested by.
func HeaderFromPaper(p types.Paper) Header {
	id := p.ID
	if p.RequestedID != "" {
		id = p.RequestedID
	}
	return Header{
		Identifier: id,
		Title:      p.Title,
		DOI:        p.DOI,
		Authors:    p.Authors,
		Published:  p.PublishedDate,
		URL:        p.URL,
		PDFPath:    p.PDFPath,
		Source:     p.Source,
	}
}

var sourceNames = map[string]string{
	types.SourceSciHub:   "Sci-Hub",
	types.SourceSemantic: "Semantic Scholar",
}

// Markdown renders the header. Empty fields are omitted; the identifier
// always appears, in the title line or its own line.
func (h Header) Markdown() string {
	var b strings.Builder

	if h.Title != "" {
		fmt.Fprintf(&b, "# %s\n\n", h.Title)
	} else {
		fmt.Fprintf(&b, "# Paper: %s\n\n", h.Identifier)
	}

	if h.Title != "" && h.Identifier != "" && h.Identifier != h.DOI {
		fmt.Fprintf(&b, "**Identifier**: %s\n", h.Identifier)
	}
	if h.DOI != "" {
		fmt.Fprintf(&b, "**DOI**: https://doi.org/%s\n", h.DOI)
	}
	if len(h.Authors) > 0 {
		fmt.Fprintf(&b, "**Authors**: %s\n", strings.Join(h.Authors, ", "))
	}
	if !h.Published.IsZero() {
		fmt.Fprintf(&b, "**Published**: %s\n", h.Published.Format("2006-01-02"))
	}
	if h.URL != "" {
		fmt.Fprintf(&b, "**URL**: %s\n", h.URL)
	}
	if h.PDFPath != "" {
		fmt.Fprintf(&b, "**PDF**: %s\n", h.PDFPath)
	}
	if h.Source != "" {
		name, ok := sourceNames[h.Source]
		if !ok {
			name = h.Source
		}
		fmt.Fprintf(&b, "**Source**: %s\n", name)
	}

	b.WriteString("\n---\n\n")
	return b.String()
}
