// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/paperfetch/pkg/types"
)

// fakeConverter implements Converter for testing. It returns canned Markdown
// or an error, depending on configuration.
type fakeConverter struct {
	output string
	err    error
	calls  int
}

func (f *fakeConverter) Convert(_ context.Context, _ string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.output, nil
}

// setupPDF creates a temporary PDF file and returns its path and the temp dir.
func setupPDF(t *testing.T) (pdfPath, tmpDir string) {
	t.Helper()
	tmpDir = t.TempDir()
	pdfPath = filepath.Join(tmpDir, "scihub_10.1038_nature12373_9a0364.pdf")
	if err := os.WriteFile(pdfPath, []byte("%PDF-1.4 fake"), 0o644); err != nil {
		t.Fatal(err)
	}
	return pdfPath, tmpDir
}

func TestConvertPaper(t *testing.T) {
	tests := []struct {
		name       string
		converter  *fakeConverter
		preCreate  bool // create output MD before running
		wantStatus Status
		wantLog    string
	}{
		{
			name:       "successful conversion",
			converter:  &fakeConverter{output: "Body text.\n"},
			wantStatus: StatusConverted,
			wantLog:    "converted:",
		},
		{
			name:       "skip existing markdown",
			converter:  &fakeConverter{output: "should not be called"},
			preCreate:  true,
			wantStatus: StatusSkipped,
			wantLog:    "skipped:",
		},
		{
			name:       "conversion failure",
			converter:  &fakeConverter{err: errors.New("container crashed")},
			wantStatus: StatusFailed,
			wantLog:    "failed:",
		},
		{
			name:       "no text is a failure for file output",
			converter:  &fakeConverter{output: "  \n\t"},
			wantStatus: StatusFailed,
			wantLog:    "no text could be extracted",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pdfPath, tmpDir := setupPDF(t)
			mdPath := MarkdownPath(tmpDir, pdfPath)

			if tt.preCreate {
				if err := os.MkdirAll(filepath.Dir(mdPath), 0o755); err != nil {
					t.Fatal(err)
				}
				if err := os.WriteFile(mdPath, []byte("existing"), 0o644); err != nil {
					t.Fatal(err)
				}
			}

			paper := types.Paper{ID: "10.1038/nature12373", PDFPath: pdfPath}
			var log bytes.Buffer

			status := ConvertPaper(context.Background(), tt.converter, paper, tmpDir, &log)

			if status != tt.wantStatus {
				t.Errorf("status = %q, want %q", status, tt.wantStatus)
			}
			if !strings.Contains(log.String(), tt.wantLog) {
				t.Errorf("log output %q does not contain %q", log.String(), tt.wantLog)
			}
			if tt.preCreate && tt.converter.calls != 0 {
				t.Errorf("converter called %d times for existing output", tt.converter.calls)
			}
		})
	}
}

func TestConvertPaper_Frontmatter(t *testing.T) {
	pdfPath, tmpDir := setupPDF(t)
	conv := &fakeConverter{output: "Some content."}
	paper := types.Paper{
		ID:      "10.1038/nature12373",
		DOI:     "10.1038/nature12373",
		Source:  types.SourceSciHub,
		PDFPath: pdfPath,
	}

	var log bytes.Buffer
	if status := ConvertPaper(context.Background(), conv, paper, tmpDir, &log); status != StatusConverted {
		t.Fatalf("expected StatusConverted, got %q (%s)", status, log.String())
	}

	data, err := os.ReadFile(MarkdownPath(tmpDir, pdfPath))
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	content := string(data)

	if !strings.HasPrefix(content, "---\n") {
		t.Error("output should start with YAML frontmatter delimiter")
	}
	for _, want := range []string{
		"paper_id: 10.1038/nature12373",
		"source: scihub",
		"source_pdf:",
		"converted_at:",
		"# Paper: 10.1038/nature12373",
		"**Source**: Sci-Hub",
		"Some content.",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("output missing %q:\n%s", want, content)
		}
	}
}

func TestConvertBatch(t *testing.T) {
	tmpDir := t.TempDir()
	rawDir := filepath.Join(tmpDir, "raw")
	if err := os.MkdirAll(rawDir, 0o755); err != nil {
		t.Fatal(err)
	}

	// a succeeds, b is pre-existing, c fails.
	for _, name := range []string{"a.pdf", "b.pdf", "c.pdf"} {
		if err := os.WriteFile(filepath.Join(rawDir, name), []byte("pdf"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	mdDir := filepath.Join(tmpDir, markdownDir)
	if err := os.MkdirAll(mdDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(mdDir, "b.md"), []byte("existing"), 0o644); err != nil {
		t.Fatal(err)
	}

	conv := &selectiveConverter{
		outputs: map[string]string{
			filepath.Join(rawDir, "a.pdf"): "Paper A",
			filepath.Join(rawDir, "b.pdf"): "Paper B",
		},
		errors: map[string]error{
			filepath.Join(rawDir, "c.pdf"): errors.New("bad pdf"),
		},
	}

	papers := []types.Paper{
		{ID: "a", PDFPath: filepath.Join(rawDir, "a.pdf")},
		{ID: "b", PDFPath: filepath.Join(rawDir, "b.pdf")},
		{ID: "c", PDFPath: filepath.Join(rawDir, "c.pdf")},
	}

	var log bytes.Buffer
	result := ConvertBatch(context.Background(), conv, papers, tmpDir, &log)

	if result.Converted != 1 {
		t.Errorf("converted = %d, want 1", result.Converted)
	}
	if result.Skipped != 1 {
		t.Errorf("skipped = %d, want 1", result.Skipped)
	}
	if result.Failed != 1 {
		t.Errorf("failed = %d, want 1", result.Failed)
	}
	if !result.HasFailures() {
		t.Error("HasFailures should be true")
	}
	if result.Total() != 3 {
		t.Errorf("total = %d, want 3", result.Total())
	}
	if !strings.Contains(log.String(), "Batch summary:") {
		t.Error("batch output should contain summary line")
	}
}

func TestConvertPaths(t *testing.T) {
	tmpDir := t.TempDir()
	pdfPath := filepath.Join(tmpDir, "test.pdf")
	if err := os.WriteFile(pdfPath, []byte("pdf"), 0o644); err != nil {
		t.Fatal(err)
	}

	var log bytes.Buffer
	result := ConvertPaths(context.Background(), &fakeConverter{output: "Test"}, []string{pdfPath}, tmpDir, &log)

	if result.Converted != 1 {
		t.Errorf("converted = %d, want 1", result.Converted)
	}
	if _, err := os.Stat(filepath.Join(tmpDir, markdownDir, "test.md")); err != nil {
		t.Errorf("expected output file: %v", err)
	}
}

// selectiveConverter returns different results per file path.
type selectiveConverter struct {
	outputs map[string]string
	errors  map[string]error
}

func (s *selectiveConverter) Convert(_ context.Context, pdfPath string) (string, error) {
	if err, ok := s.errors[pdfPath]; ok {
		return "", err
	}
	if out, ok := s.outputs[pdfPath]; ok {
		return out, nil
	}
	return "", errors.New("unexpected path: " + pdfPath)
}
