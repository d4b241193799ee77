// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert turns downloaded PDFs into Markdown with pluggable
// backends and prepends a metadata header built from the paper record.
package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paperfetch/internal/container"
	"github.com/pdiddy/paperfetch/pkg/types"
)

// markdownDir is the subdirectory of the output directory for Markdown files.
const markdownDir = "markdown"

// ErrConversion wraps failures reported by a conversion backend.
var ErrConversion = errors.New("convert: conversion failed")

// ErrNoText marks a PDF that converted without error but yielded no text.
// Callers treat it as a soft result, not a failure.
var ErrNoText = errors.New("convert: no text could be extracted")

// NoTextError carries the path of a PDF that produced no text.
type NoTextError struct {
	Path string
}

func (e *NoTextError) Error() string {
	return fmt.Sprintf("PDF downloaded to %s, but no text could be extracted.", e.Path)
}

// Is lets errors.Is(err, ErrNoText) match.
func (e *NoTextError) Is(target error) bool { return target == ErrNoText }

// Converter transforms a PDF file into Markdown text.
type Converter interface {
	// Convert reads a PDF at pdfPath and returns the Markdown content.
	Convert(ctx context.Context, pdfPath string) (string, error)
}

// New returns the converter for backend. rt is only consulted for the
// markitdown backend; when nil, a runtime is detected.
func New(ctx context.Context, backend types.ConversionBackend, rt container.Runtime) (Converter, error) {
	switch backend {
	case "", types.BackendPDFText:
		return NewPDFTextConverter(), nil
	case types.BackendDocconv:
		return NewDocconvConverter(), nil
	case types.BackendMarkitdown:
		if rt == nil {
			detected, err := container.DetectRuntime(ctx)
			if err != nil {
				return nil, err
			}
			rt = detected
		}
		return NewMarkitdownConverter(ctx, rt)
	default:
		return nil, fmt.Errorf("unknown conversion backend %q", backend)
	}
}

// Extract converts pdfPath with c and prepends h. Whitespace-only output
// yields a *NoTextError.
func Extract(ctx context.Context, c Converter, pdfPath string, h Header) (string, error) {
	body, err := c.Convert(ctx, pdfPath)
	if err != nil {
		return "", fmt.Errorf("%w for %s: %w", ErrConversion, pdfPath, err)
	}
	if strings.TrimSpace(body) == "" {
		return "", &NoTextError{Path: pdfPath}
	}
	return h.Markdown() + body, nil
}

// Status is the outcome of converting one paper to a Markdown file.
type Status string

const (
	StatusConverted Status = "converted"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// BatchResult holds the outcome of a batch conversion run.
type BatchResult struct {
	Converted int
	Skipped   int
	Failed    int
}

// Total returns the total number of papers processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Skipped + r.Failed
}

// HasFailures reports whether any papers failed conversion.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// MarkdownPath returns where ConvertPaper writes the Markdown for pdfPath.
func MarkdownPath(outDir, pdfPath string) string {
	base := strings.TrimSuffix(filepath.Base(pdfPath), filepath.Ext(pdfPath))
	return filepath.Join(outDir, markdownDir, base+".md")
}

// ConvertPaper converts one PDF to Markdown under outDir/markdown, adding
// YAML frontmatter. An existing Markdown file is left alone and reported
// as skipped.
func ConvertPaper(ctx context.Context, c Converter, paper types.Paper, outDir string, w io.Writer) Status {
	mdPath := MarkdownPath(outDir, paper.PDFPath)
	base := strings.TrimSuffix(filepath.Base(mdPath), ".md")

	if _, err := os.Stat(mdPath); err == nil {
		fmt.Fprintf(w, "skipped: %s (already exists)\n", base)
		return StatusSkipped
	}

	if err := os.MkdirAll(filepath.Dir(mdPath), 0o755); err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", base, err)
		return StatusFailed
	}

	content, err := Extract(ctx, c, paper.PDFPath, HeaderFromPaper(paper))
	if err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", base, err)
		return StatusFailed
	}

	fm, err := frontmatter(paper)
	if err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", base, err)
		return StatusFailed
	}

	if err := os.WriteFile(mdPath, []byte(fm+content), 0o644); err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", base, err)
		return StatusFailed
	}

	fmt.Fprintf(w, "converted: %s\n", base)
	return StatusConverted
}

// ConvertBatch processes papers through the converter, printing per-file
// status to w and returning a summary.
func ConvertBatch(ctx context.Context, c Converter, papers []types.Paper, outDir string, w io.Writer) BatchResult {
	var result BatchResult
	for _, p := range papers {
		switch ConvertPaper(ctx, c, p, outDir, w) {
		case StatusConverted:
			result.Converted++
		case StatusSkipped:
			result.Skipped++
		case StatusFailed:
			result.Failed++
		}
	}
	fmt.Fprintf(w, "\nBatch summary: %d converted, %d skipped, %d failed (total: %d)\n",
		result.Converted, result.Skipped, result.Failed, result.Total())
	return result
}

// ConvertPaths builds minimal Paper records from local PDF paths, with the
// ID taken from the file name, and delegates to ConvertBatch.
func ConvertPaths(ctx context.Context, c Converter, pdfPaths []string, outDir string, w io.Writer) BatchResult {
	papers := make([]types.Paper, len(pdfPaths))
	for i, p := range pdfPaths {
		papers[i] = types.Paper{
			ID:      strings.TrimSuffix(filepath.Base(p), filepath.Ext(p)),
			PDFPath: p,
		}
	}
	return ConvertBatch(ctx, c, papers, outDir, w)
}

type frontmatterFields struct {
	PaperID     string `yaml:"paper_id"`
	Title       string `yaml:"title,omitempty"`
	DOI         string `yaml:"doi,omitempty"`
	Source      string `yaml:"source,omitempty"`
	SourcePDF   string `yaml:"source_pdf"`
	ConvertedAt string `yaml:"converted_at"`
}

func frontmatter(paper types.Paper) (string, error) {
	data, err := yaml.Marshal(frontmatterFields{
		PaperID:     paper.ID,
		Title:       paper.Title,
		DOI:         paper.DOI,
		Source:      paper.Source,
		SourcePDF:   paper.PDFPath,
		ConvertedAt: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return "", fmt.Errorf("encoding frontmatter: %w", err)
	}
	return "---\n" + string(data) + "---\n\n", nil
}
