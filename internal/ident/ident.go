// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ident classifies paper identifiers and routes them to a source.
package ident

import (
	"regexp"
	"strings"

	"github.com/pdiddy/paperfetch/pkg/types"
)

// Type classifies an input identifier.
type Type int

const (
	TypeUnknown Type = iota
	TypeDOI
	TypeArxiv
	TypeSemantic
	TypeExternal
)

func (t Type) String() string {
	switch t {
	case TypeDOI:
		return "doi"
	case TypeArxiv:
		return "arxiv"
	case TypeSemantic:
		return "semantic"
	case TypeExternal:
		return "external"
	default:
		return "unknown"
	}
}

// arxivPattern matches arXiv IDs: "2301.07041", "arXiv:2301.07041", "2301.07041v2".
var arxivPattern = regexp.MustCompile(`^(?i:arxiv:)?(\d{4}\.\d{4,5}(?:v\d+)?)$`)

// doiPattern matches DOIs: "10.1145/1234567.1234568".
var doiPattern = regexp.MustCompile(`^10\.\d{4,9}/\S+$`)

// semanticPattern matches a 40-character Semantic Scholar paper ID.
var semanticPattern = regexp.MustCompile(`^[0-9a-f]{40}$`)

// externalPrefixes are the ID namespaces the Semantic Scholar Graph API
// accepts as "PREFIX:value".
var externalPrefixes = []string{"CorpusId", "MAG", "ACL", "PMID", "PMCID", "URL"}

// doiPrefixes are stripped before matching a DOI.
var doiPrefixes = []string{
	"https://doi.org/",
	"http://doi.org/",
	"https://dx.doi.org/",
	"http://dx.doi.org/",
	"doi.org/",
	"dx.doi.org/",
	"doi:",
}

// Classify determines the identifier type and returns the normalized form:
// DOIs lose any resolver URL or "doi:" prefix, arXiv IDs lose "arXiv:".
func Classify(identifier string) (Type, string) {
	identifier = strings.TrimSpace(identifier)

	if m := arxivPattern.FindStringSubmatch(identifier); m != nil {
		return TypeArxiv, m[1]
	}

	if doi := NormalizeDOI(identifier); doiPattern.MatchString(doi) {
		return TypeDOI, doi
	}

	if semanticPattern.MatchString(identifier) {
		return TypeSemantic, identifier
	}

	for _, p := range externalPrefixes {
		if len(identifier) > len(p)+1 && strings.EqualFold(identifier[:len(p)+1], p+":") {
			return TypeExternal, p + ":" + identifier[len(p)+1:]
		}
	}

	return TypeUnknown, identifier
}

// NormalizeDOI strips a doi.org resolver URL or "doi:" prefix,
// case-insensitively. Other input is returned trimmed.
func NormalizeDOI(s string) string {
	s = strings.TrimSpace(s)
	lower := strings.ToLower(s)
	for _, p := range doiPrefixes {
		if strings.HasPrefix(lower, p) {
			return s[len(p):]
		}
	}
	return s
}

// Route picks the source and source-specific identifier for an input.
// DOIs go to Sci-Hub; everything else goes to Semantic Scholar, with arXiv
// IDs given the ARXIV: prefix the Graph API expects.
func Route(identifier string) (source, id string) {
	t, norm := Classify(identifier)
	switch t {
	case TypeDOI:
		return types.SourceSciHub, norm
	case TypeArxiv:
		return types.SourceSemantic, "ARXIV:" + norm
	default:
		return types.SourceSemantic, norm
	}
}

// ForSource adapts identifier to source: Sci-Hub takes bare DOIs, and
// Semantic Scholar takes DOIs and arXiv IDs in prefixed form.
func ForSource(source, identifier string) string {
	t, norm := Classify(identifier)
	switch {
	case source == types.SourceSciHub && t == TypeDOI:
		return norm
	case source == types.SourceSemantic && t == TypeDOI:
		return "DOI:" + norm
	case source == types.SourceSemantic && t == TypeArxiv:
		return "ARXIV:" + norm
	default:
		return strings.TrimSpace(identifier)
	}
}
