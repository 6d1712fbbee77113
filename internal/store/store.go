// Package store persists the recording project in SQLite so an unfinished
// deck survives a restart.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jwulff/vocabtrack/internal/clips"
)

const schema = `
	CREATE TABLE IF NOT EXISTS clips (
		id TEXT PRIMARY KEY,
		position INTEGER NOT NULL UNIQUE,
		createdAt REAL NOT NULL,
		pcm BLOB NOT NULL
	);

	CREATE TABLE IF NOT EXISTS settings (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		mode TEXT NOT NULL,
		selection INTEGER
	);
`

// Project is everything needed to restore an editor.
type Project struct {
	Clips     []clips.Clip
	Labels    []clips.Label
	Mode      clips.Mode
	Selection clips.Selection
}

// Len returns the number of clips in the project.
func (p Project) Len() int { return len(p.Clips) }

// Store provides access to the vocabtrack project database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path with WAL.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	return open(dsn)
}

// OpenMemory opens a private in-memory database.
func OpenMemory() (*Store, error) {
	return open(":memory:")
}

func open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A single connection keeps :memory: databases shared across calls.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save replaces the stored project.
func (s *Store) Save(p Project) error {
	if len(p.Clips) != len(p.Labels) {
		return fmt.Errorf("save project: %d clips but %d labels", len(p.Clips), len(p.Labels))
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM clips`); err != nil {
		return fmt.Errorf("clear clips: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO clips (id, position, createdAt, pcm) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, c := range p.Clips {
		l := p.Labels[i]
		if _, err := stmt.Exec(l.ID, i, unixFromTime(l.CreatedAt), c.Bytes()); err != nil {
			return fmt.Errorf("insert clip %d: %w", i, err)
		}
	}

	var sel sql.NullInt64
	if i, ok := p.Selection.Index(); ok {
		sel = sql.NullInt64{Int64: int64(i), Valid: true}
	}
	if _, err := tx.Exec(`
		INSERT INTO settings (id, mode, selection) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET mode = excluded.mode, selection = excluded.selection
	`, p.Mode.String(), sel); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Load returns the stored project. An empty database yields an empty
// project in append mode.
func (s *Store) Load() (Project, error) {
	var p Project

	rows, err := s.db.Query(`
		SELECT id, createdAt, pcm
		FROM clips
		ORDER BY position ASC
	`)
	if err != nil {
		return Project{}, fmt.Errorf("query clips: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l clips.Label
		var createdAt float64
		var pcm []byte
		if err := rows.Scan(&l.ID, &createdAt, &pcm); err != nil {
			return Project{}, fmt.Errorf("scan clip: %w", err)
		}
		l.CreatedAt = timeFromUnix(createdAt)
		p.Clips = append(p.Clips, clips.NewClip(pcm))
		p.Labels = append(p.Labels, l)
	}
	if err := rows.Err(); err != nil {
		return Project{}, fmt.Errorf("read clips: %w", err)
	}

	var mode string
	var sel sql.NullInt64
	err = s.db.QueryRow(`SELECT mode, selection FROM settings WHERE id = 1`).Scan(&mode, &sel)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return p, nil
	case err != nil:
		return Project{}, fmt.Errorf("scan settings: %w", err)
	}

	if p.Mode, err = clips.ParseMode(mode); err != nil {
		return Project{}, fmt.Errorf("stored mode: %w", err)
	}
	if sel.Valid && int(sel.Int64) < len(p.Clips) {
		p.Selection = clips.At(int(sel.Int64))
	}
	return p, nil
}

func unixFromTime(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

func timeFromUnix(ts float64) time.Time {
	sec := int64(ts)
	nsec := int64((ts - float64(sec)) * 1e9)
	return time.Unix(sec, nsec)
}

// Capture copies the editor's state into a project.
func Capture(e *clips.Editor) Project {
	cs, labels, mode, sel := e.Contents()
	return Project{Clips: cs, Labels: labels, Mode: mode, Selection: sel}
}

// Apply restores the project into e.
func (p Project) Apply(e *clips.Editor) {
	e.Restore(p.Clips, p.Labels, p.Mode, p.Selection)
}
