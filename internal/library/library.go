// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package library keeps a ledger of downloaded papers in SQLite and writes
// a YAML metadata sidecar next to each PDF.
package library

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/paperfetch/pkg/types"
)

// DBFile is the default ledger file name inside the output directory.
const DBFile = "library.db"

// ErrNotRecorded is returned by Lookup when no entry matches.
var ErrNotRecorded = errors.New("library: not recorded")

// Entry is one downloaded paper.
type Entry struct {
	ID         string    `json:"id" yaml:"id"`
	Identifier string    `json:"identifier" yaml:"identifier"`
	Source     string    `json:"source" yaml:"source"`
	Path       string    `json:"path" yaml:"path"`
	SHA256     string    `json:"sha256" yaml:"sha256"`
	Size       int64     `json:"size" yaml:"size"`
	Title      string    `json:"title,omitempty" yaml:"title,omitempty"`
	FetchedAt  time.Time `json:"fetched_at" yaml:"fetched_at"`
}

// Ledger records downloads in a SQLite database.
type Ledger struct {
	db *sql.DB
}

// Open opens or creates the ledger at path, creating parent directories
// and the schema as needed.
func Open(path string) (*Ledger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating library directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	l := &Ledger{db: db}
	if err := l.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return l, nil
}

// Close releases the database connection.
func (l *Ledger) Close() error {
	return l.db.Close()
}

func (l *Ledger) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS downloads (
			id TEXT PRIMARY KEY,
			identifier TEXT NOT NULL,
			source TEXT NOT NULL,
			path TEXT NOT NULL,
			sha256 TEXT NOT NULL,
			size INTEGER NOT NULL,
			title TEXT,
			fetched_at TEXT NOT NULL,
			UNIQUE(source, identifier)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_downloads_fetched_at ON downloads(fetched_at)`,
	}
	for _, stmt := range statements {
		if _, err := l.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record hashes the file at path and upserts an entry for paper. A repeat
// download of the same identifier replaces the earlier entry.
func (l *Ledger) Record(ctx context.Context, paper types.Paper, path string) (Entry, error) {
	sum, size, err := hashFile(path)
	if err != nil {
		return Entry{}, err
	}

	e := Entry{
		ID:         uuid.NewString(),
		Identifier: paper.ID,
		Source:     paper.Source,
		Path:       path,
		SHA256:     sum,
		Size:       size,
		Title:      paper.Title,
		FetchedAt:  time.Now().UTC().Truncate(time.Second),
	}

	_, err = l.db.ExecContext(ctx, `
		INSERT INTO downloads (id, identifier, source, path, sha256, size, title, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(source, identifier) DO UPDATE SET
			path = excluded.path,
			sha256 = excluded.sha256,
			size = excluded.size,
			title = excluded.title,
			fetched_at = excluded.fetched_at`,
		e.ID, e.Identifier, e.Source, e.Path, e.SHA256, e.Size, e.Title, e.FetchedAt.Format(time.RFC3339))
	if err != nil {
		return Entry{}, fmt.Errorf("recording %s: %w", paper.ID, err)
	}

	// On conflict the original row id is kept.
	return l.Lookup(ctx, e.Source, e.Identifier)
}

// Lookup returns the entry for identifier from source, or ErrNotRecorded.
func (l *Ledger) Lookup(ctx context.Context, source, identifier string) (Entry, error) {
	row := l.db.QueryRowContext(ctx, `
		SELECT id, identifier, source, path, sha256, size, COALESCE(title, ''), fetched_at
		FROM downloads WHERE source = ? AND identifier = ?`, source, identifier)

	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("%w: %s %s", ErrNotRecorded, source, identifier)
	}
	if err != nil {
		return Entry{}, fmt.Errorf("looking up %s: %w", identifier, err)
	}
	return e, nil
}

// List returns every entry, newest first.
func (l *Ledger) List(ctx context.Context) ([]Entry, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, identifier, source, path, sha256, size, COALESCE(title, ''), fetched_at
		FROM downloads ORDER BY fetched_at DESC, identifier`)
	if err != nil {
		return nil, fmt.Errorf("listing downloads: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning download: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Exists reports whether e's file is still on disk with the recorded size.
func (e Entry) Exists() bool {
	info, err := os.Stat(e.Path)
	return err == nil && info.Size() == e.Size
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (Entry, error) {
	var e Entry
	var fetched string
	if err := s.Scan(&e.ID, &e.Identifier, &e.Source, &e.Path, &e.SHA256, &e.Size, &e.Title, &fetched); err != nil {
		return Entry{}, err
	}
	t, err := time.Parse(time.RFC3339, fetched)
	if err != nil {
		return Entry{}, fmt.Errorf("parsing fetched_at %q: %w", fetched, err)
	}
	e.FetchedAt = t
	return e, nil
}

func hashFile(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return "", 0, fmt.Errorf("hashing %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}
