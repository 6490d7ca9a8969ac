// Package store provides the paper metadata store, a SQLite database
// holding the combined corpus records from both bibliographic sources.
package store

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// Source tags distinguishing the two corpora.
const (
	SourceScopus = "scopus"
	SourceArxiv  = "arxiv"
)

// Paper is one combined-corpus metadata record.
type Paper struct {
	ID       string // opaque identifier shared with the vector and neighbor tables
	Title    string
	Abstract string // empty when the source record carries none
	DOI      string
	SourceID string // source-specific identifier (Scopus EID or arXiv id)
	Source   string // SourceScopus or SourceArxiv
}

// HasAbstract reports whether the record carries an abstract.
func (p Paper) HasAbstract() bool {
	return p.Abstract != ""
}

// DB wraps the SQLite connection to the combined papers table.
type DB struct {
	db *sql.DB
}

const selectPaperFields = `id, title, abstract, doi, source_id, source`

// Open opens or creates the metadata database at the given path.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite doesn't support concurrent writes
	db.SetMaxOpenConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS papers (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			abstract TEXT,
			doi TEXT,
			source_id TEXT,
			source TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_papers_doi ON papers(doi) WHERE doi IS NOT NULL AND doi != '';
		CREATE INDEX IF NOT EXISTS idx_papers_source ON papers(source);
	`

	_, err := db.Exec(schema)
	return err
}

// Upsert inserts or replaces a paper record.
func (d *DB) Upsert(p Paper) error {
	_, err := d.db.Exec(`
		INSERT OR REPLACE INTO papers (id, title, abstract, doi, source_id, source)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.Title, nullable(p.Abstract), nullable(p.DOI), nullable(p.SourceID), p.Source)
	if err != nil {
		return fmt.Errorf("upserting paper %s: %w", p.ID, err)
	}
	return nil
}

// GetByID returns a single paper, or nil when absent.
func (d *DB) GetByID(id string) (*Paper, error) {
	row := d.db.QueryRow(`SELECT `+selectPaperFields+` FROM papers WHERE id = ?`, id)

	p, err := scanPaper(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying paper %s: %w", id, err)
	}
	return &p, nil
}

// GetByIDs returns the papers whose identifiers are in the given set.
// Identifiers with no record are simply absent from the result; set
// membership, not order, is guaranteed.
func (d *DB) GetByIDs(ids []string) ([]Paper, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(ids)-1) + "?"
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := d.db.Query(
		`SELECT `+selectPaperFields+` FROM papers WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("querying papers: %w", err)
	}
	defer rows.Close()

	var papers []Paper
	for rows.Next() {
		p, err := scanPaper(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning paper: %w", err)
		}
		papers = append(papers, p)
	}

	return papers, rows.Err()
}

// All returns every paper record, ordered by identifier.
func (d *DB) All() ([]Paper, error) {
	rows, err := d.db.Query(`SELECT ` + selectPaperFields + ` FROM papers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying papers: %w", err)
	}
	defer rows.Close()

	var papers []Paper
	for rows.Next() {
		p, err := scanPaper(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning paper: %w", err)
		}
		papers = append(papers, p)
	}

	return papers, rows.Err()
}

// Count returns the number of paper records.
func (d *DB) Count() (int, error) {
	var n int
	if err := d.db.QueryRow(`SELECT COUNT(*) FROM papers`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting papers: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanPaper(s scanner) (Paper, error) {
	var p Paper
	var abstract, doi, sourceID sql.NullString

	if err := s.Scan(&p.ID, &p.Title, &abstract, &doi, &sourceID, &p.Source); err != nil {
		return Paper{}, err
	}

	p.Abstract = abstract.String
	p.DOI = doi.String
	p.SourceID = sourceID.String
	return p, nil
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
