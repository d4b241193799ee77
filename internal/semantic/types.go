// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package semantic

import (
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/paperfetch/pkg/types"
)

// Semantic Scholar Graph API JSON structures. Optional fields are pointers
// or zero-default so absent and null keys decode the same way.

type searchResponse struct {
	Total  int        `json:"total"`
	Offset int        `json:"offset"`
	Data   []apiPaper `json:"data"`
}

type apiPaper struct {
	PaperID         string         `json:"paperId"`
	Title           *string        `json:"title"`
	Abstract        *string        `json:"abstract"`
	Year            *int           `json:"year"`
	CitationCount   *int           `json:"citationCount"`
	Authors         []apiAuthor    `json:"authors"`
	URL             string         `json:"url"`
	PublicationDate *string        `json:"publicationDate"`
	ExternalIDs     *ExternalIDs   `json:"externalIds"`
	FieldsOfStudy   []string       `json:"fieldsOfStudy"`
	OpenAccessPDF   *OpenAccessPDF `json:"openAccessPdf"`
}

type apiAuthor struct {
	AuthorID *string `json:"authorId"`
	Name     string  `json:"name"`
}

// ExternalIDs lists identifiers of a paper in other systems.
type ExternalIDs struct {
	DOI      string `json:"DOI"`
	ArXiv    string `json:"ArXiv"`
	PubMed   string `json:"PubMed"`
	ACL      string `json:"ACL"`
	CorpusID int    `json:"CorpusId"`
}

// OpenAccessPDF is the openAccessPdf object. When URL is empty the link is
// sometimes only present inside Disclaimer.
type OpenAccessPDF struct {
	URL        string `json:"url"`
	Status     string `json:"status"`
	Disclaimer string `json:"disclaimer"`
}

const untitled = "Untitled"

// toPaper converts an API record. Records without a paperId are rejected.
func (a apiPaper) toPaper() (types.Paper, bool) {
	if a.PaperID == "" {
		return types.Paper{}, false
	}

	p := types.Paper{
		ID:            a.PaperID,
		Title:         untitled,
		URL:           a.URL,
		PDFURL:        OpenAccessPDFURL(a.OpenAccessPDF),
		PublishedDate: parseDate(a.PublicationDate, a.Year),
		Source:        types.SourceSemantic,
		Categories:    a.FieldsOfStudy,
	}
	if a.Title != nil && strings.TrimSpace(*a.Title) != "" {
		p.Title = *a.Title
	}
	if a.Abstract != nil {
		p.Abstract = *a.Abstract
	}
	if a.CitationCount != nil {
		p.Citations = *a.CitationCount
	}
	if a.ExternalIDs != nil {
		p.DOI = a.ExternalIDs.DOI
	}
	for _, au := range a.Authors {
		if au.Name != "" {
			p.Authors = append(p.Authors, au.Name)
		}
	}
	return p, true
}

// parseDate reads a YYYY-MM-DD publication date, falling back to its
// leading year and then to the separate year field.
func parseDate(date *string, year *int) time.Time {
	if date != nil {
		s := strings.TrimSpace(*date)
		if t, err := time.Parse("2006-01-02", s); err == nil {
			return t
		}
		if len(s) >= 4 {
			if y, err := strconv.Atoi(s[:4]); err == nil {
				return yearStart(y)
			}
		}
	}
	if year != nil && *year > 0 {
		return yearStart(*year)
	}
	return time.Time{}
}

func yearStart(y int) time.Time {
	return time.Date(y, 1, 1, 0, 0, 0, 0, time.UTC)
}
