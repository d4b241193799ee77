// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ident

import (
	"testing"

	"github.com/pdiddy/paperfetch/pkg/types"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantType Type
		wantNorm string
	}{
		{"bare DOI", "10.1038/nature12373", TypeDOI, "10.1038/nature12373"},
		{"doi.org URL", "https://doi.org/10.1038/nature12373", TypeDOI, "10.1038/nature12373"},
		{"dx.doi.org URL", "http://dx.doi.org/10.1145/1234567.1234568", TypeDOI, "10.1145/1234567.1234568"},
		{"bare doi.org host", "doi.org/10.1038/nature12373", TypeDOI, "10.1038/nature12373"},
		{"bare dx.doi.org host", "DX.DOI.ORG/10.1145/1234567.1234568", TypeDOI, "10.1145/1234567.1234568"},
		{"doi prefix", "DOI:10.1038/nature12373", TypeDOI, "10.1038/nature12373"},
		{"DOI with whitespace", "  10.1038/nature12373 ", TypeDOI, "10.1038/nature12373"},

		{"arXiv bare", "2301.07041", TypeArxiv, "2301.07041"},
		{"arXiv prefixed", "arXiv:2106.15928v2", TypeArxiv, "2106.15928v2"},
		{"arXiv upper prefix", "ARXIV:2106.15928", TypeArxiv, "2106.15928"},

		{"semantic scholar id", "649def34f8be52c8b66281af98ae884c09aef38b", TypeSemantic, "649def34f8be52c8b66281af98ae884c09aef38b"},
		{"corpus id", "corpusid:215416146", TypeExternal, "CorpusId:215416146"},
		{"pubmed id", "PMID:19872477", TypeExternal, "PMID:19872477"},

		{"DOI missing suffix", "10.1038/", TypeUnknown, "10.1038/"},
		{"short hex", "649def34", TypeUnknown, "649def34"},
		{"prefix only", "PMID:", TypeUnknown, "PMID:"},
		{"empty string", "", TypeUnknown, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotType, gotNorm := Classify(tt.input)
			if gotType != tt.wantType {
				t.Errorf("Classify(%q) type = %v, want %v", tt.input, gotType, tt.wantType)
			}
			if gotNorm != tt.wantNorm {
				t.Errorf("Classify(%q) norm = %q, want %q", tt.input, gotNorm, tt.wantNorm)
			}
		})
	}
}

func TestRoute(t *testing.T) {
	tests := []struct {
		input      string
		wantSource string
		wantID     string
	}{
		{"https://doi.org/10.1038/nature12373", types.SourceSciHub, "10.1038/nature12373"},
		{"doi.org/10.1038/nature12373", types.SourceSciHub, "10.1038/nature12373"},
		{"2106.15928", types.SourceSemantic, "ARXIV:2106.15928"},
		{"649def34f8be52c8b66281af98ae884c09aef38b", types.SourceSemantic, "649def34f8be52c8b66281af98ae884c09aef38b"},
		{"CorpusId:215416146", types.SourceSemantic, "CorpusId:215416146"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			source, id := Route(tt.input)
			if source != tt.wantSource || id != tt.wantID {
				t.Errorf("Route(%q) = (%q, %q), want (%q, %q)", tt.input, source, id, tt.wantSource, tt.wantID)
			}
		})
	}
}

func TestForSource(t *testing.T) {
	tests := []struct {
		source string
		input  string
		want   string
	}{
		{types.SourceSciHub, "doi:10.1038/nature12373", "10.1038/nature12373"},
		{types.SourceSciHub, "  ", ""},
		{types.SourceSemantic, "10.1038/nature12373", "DOI:10.1038/nature12373"},
		{types.SourceSemantic, "arXiv:2106.15928", "ARXIV:2106.15928"},
		{types.SourceSemantic, "649def34f8be52c8b66281af98ae884c09aef38b", "649def34f8be52c8b66281af98ae884c09aef38b"},
	}
	for _, tt := range tests {
		t.Run(tt.source+"/"+tt.input, func(t *testing.T) {
			if got := ForSource(tt.source, tt.input); got != tt.want {
				t.Errorf("ForSource(%q, %q) = %q, want %q", tt.source, tt.input, got, tt.want)
			}
		})
	}
}
