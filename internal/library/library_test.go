// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package library

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paperfetch/pkg/types"
)

func openTestLedger(t *testing.T) (*Ledger, string) {
	t.Helper()
	dir := t.TempDir()
	l, err := Open(filepath.Join(dir, "nested", DBFile))
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l, dir
}

func writePDF(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestRecordAndLookup(t *testing.T) {
	l, dir := openTestLedger(t)
	ctx := context.Background()
	path := writePDF(t, dir, "scihub_a.pdf", "%PDF-1.4 abc")

	paper := types.Paper{ID: "10.1038/nature12373", Source: types.SourceSciHub, Title: "Nanometre-scale thermometry"}
	e, err := l.Record(ctx, paper, path)
	require.NoError(t, err)

	_, err = uuid.Parse(e.ID)
	assert.NoError(t, err, "entry id should be a uuid")
	assert.Equal(t, int64(len("%PDF-1.4 abc")), e.Size)
	assert.Len(t, e.SHA256, 64)
	assert.WithinDuration(t, time.Now(), e.FetchedAt, time.Minute)
	assert.True(t, e.Exists())

	got, err := l.Lookup(ctx, types.SourceSciHub, "10.1038/nature12373")
	require.NoError(t, err)
	assert.Equal(t, e, got)

	_, err = l.Lookup(ctx, types.SourceSemantic, "10.1038/nature12373")
	assert.ErrorIs(t, err, ErrNotRecorded)
}

func TestRecordReplacesSameIdentifier(t *testing.T) {
	l, dir := openTestLedger(t)
	ctx := context.Background()
	paper := types.Paper{ID: "abc", Source: types.SourceSemantic}

	first, err := l.Record(ctx, paper, writePDF(t, dir, "one.pdf", "first"))
	require.NoError(t, err)
	second, err := l.Record(ctx, paper, writePDF(t, dir, "two.pdf", "second version"))
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, filepath.Join(dir, "two.pdf"), second.Path)

	entries, err := l.List(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestList(t *testing.T) {
	l, dir := openTestLedger(t)
	ctx := context.Background()

	for _, id := range []string{"b", "a"} {
		_, err := l.Record(ctx, types.Paper{ID: id, Source: types.SourceSemantic}, writePDF(t, dir, id+".pdf", id))
		require.NoError(t, err)
	}

	entries, err := l.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.ElementsMatch(t, []string{"a", "b"}, []string{entries[0].Identifier, entries[1].Identifier})
}

func TestRecordMissingFile(t *testing.T) {
	l, dir := openTestLedger(t)
	_, err := l.Record(context.Background(), types.Paper{ID: "x", Source: "scihub"}, filepath.Join(dir, "missing.pdf"))
	assert.Error(t, err)
}

func TestEntryExistsDetectsChange(t *testing.T) {
	l, dir := openTestLedger(t)
	path := writePDF(t, dir, "p.pdf", "original")
	e, err := l.Record(context.Background(), types.Paper{ID: "p", Source: "semantic"}, path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("truncated"+"!"), 0o644))
	assert.False(t, e.Exists())
	require.NoError(t, os.Remove(path))
	assert.False(t, e.Exists())
}

func TestSidecarRoundTrip(t *testing.T) {
	dir := t.TempDir()
	pdf := writePDF(t, dir, "semantic_x.pdf", "%PDF")
	paper := types.Paper{
		ID:            "x",
		Title:         "A Paper",
		Authors:       []string{"A. Author"},
		Source:        types.SourceSemantic,
		DOI:           "10.1/x",
		PublishedDate: time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC),
	}

	path, err := WriteSidecar(paper, pdf)
	require.NoError(t, err)
	assert.Equal(t, pdf+".yaml", path)

	got, err := ReadSidecar(pdf)
	require.NoError(t, err)
	paper.PDFPath = pdf
	assert.Equal(t, paper, *got)
}
