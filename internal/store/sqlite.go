// Package store persists harvested gene lists, hit documents and run
// records between pipeline stages.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/ppiankov/coreg/internal/model"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a requested record is absent
var ErrNotFound = errors.New("not found")

// Stage distinguishes the raw forward search from its classified copy
type Stage string

const (
	StageForward    Stage = "forward"
	StageReciprocal Stage = "reciprocal"
)

// DocKey addresses one hit document
type DocKey struct {
	QueryKey string
	GeneID   string
	Clade    string
	Mode     model.SearchMode
	Stage    Stage
}

// Run is the record of one pipeline invocation
type Run struct {
	ID         string    `db:"run_id"`
	QueryKey   string    `db:"query_key"`
	Clade      string    `db:"clade"`
	Mode       string    `db:"mode"`
	Threshold  float64   `db:"threshold"`
	Overwrite  string    `db:"overwrite"`
	StartedAt  time.Time `db:"started_at"`
	FinishedAt time.Time `db:"finished_at"`
	Failures   int       `db:"failures"`
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id      TEXT PRIMARY KEY,
	query_key   TEXT NOT NULL,
	clade       TEXT NOT NULL DEFAULT '',
	mode        TEXT NOT NULL DEFAULT '',
	threshold   REAL NOT NULL DEFAULT 0,
	overwrite   TEXT NOT NULL DEFAULT '',
	started_at  TIMESTAMP NOT NULL,
	finished_at TIMESTAMP NOT NULL,
	failures    INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS harvests (
	query_key  TEXT PRIMARY KEY,
	genes      TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS hit_documents (
	query_key  TEXT NOT NULL,
	gene_id    TEXT NOT NULL,
	clade      TEXT NOT NULL,
	mode       TEXT NOT NULL,
	stage      TEXT NOT NULL,
	db_error   INTEGER NOT NULL DEFAULT 0,
	body       TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	PRIMARY KEY (query_key, gene_id, clade, mode, stage)
);
`

// SQLiteStore is the document store backed by a single SQLite file
type SQLiteStore struct {
	db *sqlx.DB
}

// Open opens (creating if needed) the store at dbPath
func Open(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}
	db, err := sqlx.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveGenes stores the harvested gene list of a query, replacing any previous one
func (s *SQLiteStore) SaveGenes(queryKey string, genes []model.GeneQuery) error {
	body, err := json.Marshal(genes)
	if err != nil {
		return fmt.Errorf("encode genes: %w", err)
	}
	_, err = s.db.Exec(`INSERT INTO harvests (query_key, genes, created_at) VALUES (?, ?, ?)
		ON CONFLICT(query_key) DO UPDATE SET genes = excluded.genes, created_at = excluded.created_at`,
		queryKey, string(body), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save genes %s: %w", queryKey, err)
	}
	return nil
}

// LoadGenes returns the stored gene list of a query
func (s *SQLiteStore) LoadGenes(queryKey string) ([]model.GeneQuery, error) {
	var body string
	err := s.db.Get(&body, `SELECT genes FROM harvests WHERE query_key = ?`, queryKey)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("genes for %s: %w", queryKey, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load genes %s: %w", queryKey, err)
	}
	var genes []model.GeneQuery
	if err := json.Unmarshal([]byte(body), &genes); err != nil {
		return nil, fmt.Errorf("decode genes %s: %w", queryKey, err)
	}
	return genes, nil
}

// SaveDocument stores doc under key, replacing any previous version
func (s *SQLiteStore) SaveDocument(key DocKey, doc *model.HitDocument) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	_, err = s.db.Exec(`INSERT INTO hit_documents
		(query_key, gene_id, clade, mode, stage, db_error, body, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(query_key, gene_id, clade, mode, stage) DO UPDATE SET
			db_error = excluded.db_error, body = excluded.body, created_at = excluded.created_at`,
		key.QueryKey, key.GeneID, key.Clade, string(key.Mode), string(key.Stage),
		doc.DBError, string(body), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save document %s: %w", key, err)
	}
	return nil
}

// LoadDocument returns the document stored under key
func (s *SQLiteStore) LoadDocument(key DocKey) (*model.HitDocument, error) {
	var body string
	err := s.db.Get(&body, `SELECT body FROM hit_documents
		WHERE query_key = ? AND gene_id = ? AND clade = ? AND mode = ? AND stage = ?`,
		key.QueryKey, key.GeneID, key.Clade, string(key.Mode), string(key.Stage))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("document %s: %w", key, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load document %s: %w", key, err)
	}
	var doc model.HitDocument
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return nil, fmt.Errorf("decode document %s: %w", key, err)
	}
	return &doc, nil
}

// HasDocument reports whether a document is stored under key
func (s *SQLiteStore) HasDocument(key DocKey) (bool, error) {
	var n int
	err := s.db.Get(&n, `SELECT COUNT(*) FROM hit_documents
		WHERE query_key = ? AND gene_id = ? AND clade = ? AND mode = ? AND stage = ?`,
		key.QueryKey, key.GeneID, key.Clade, string(key.Mode), string(key.Stage))
	if err != nil {
		return false, fmt.Errorf("check document %s: %w", key, err)
	}
	return n > 0, nil
}

// DeleteDBErrors removes every forward and reciprocal document of a query
// whose forward search hit an NCBI database failure. It returns the keys
// removed.
func (s *SQLiteStore) DeleteDBErrors(queryKey string) ([]DocKey, error) {
	var rows []struct {
		GeneID string `db:"gene_id"`
		Clade  string `db:"clade"`
		Mode   string `db:"mode"`
	}
	err := s.db.Select(&rows, `SELECT DISTINCT gene_id, clade, mode FROM hit_documents
		WHERE query_key = ? AND db_error = 1 ORDER BY gene_id, clade, mode`, queryKey)
	if err != nil {
		return nil, fmt.Errorf("list db errors: %w", err)
	}

	tx, err := s.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var removed []DocKey
	for _, r := range rows {
		for _, stage := range []Stage{StageForward, StageReciprocal} {
			res, err := tx.Exec(`DELETE FROM hit_documents
				WHERE query_key = ? AND gene_id = ? AND clade = ? AND mode = ? AND stage = ?`,
				queryKey, r.GeneID, r.Clade, r.Mode, string(stage))
			if err != nil {
				return nil, fmt.Errorf("delete %s: %w", r.GeneID, err)
			}
			if n, _ := res.RowsAffected(); n > 0 {
				removed = append(removed, DocKey{
					QueryKey: queryKey, GeneID: r.GeneID, Clade: r.Clade,
					Mode: model.SearchMode(r.Mode), Stage: stage,
				})
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return removed, nil
}

// RecordRun inserts or updates a run record
func (s *SQLiteStore) RecordRun(r Run) error {
	_, err := s.db.NamedExec(`INSERT INTO runs
		(run_id, query_key, clade, mode, threshold, overwrite, started_at, finished_at, failures)
		VALUES (:run_id, :query_key, :clade, :mode, :threshold, :overwrite, :started_at, :finished_at, :failures)
		ON CONFLICT(run_id) DO UPDATE SET finished_at = excluded.finished_at, failures = excluded.failures`, r)
	if err != nil {
		return fmt.Errorf("record run %s: %w", r.ID, err)
	}
	return nil
}

// Runs lists the runs of a query, oldest first
func (s *SQLiteStore) Runs(queryKey string) ([]Run, error) {
	var runs []Run
	if err := s.db.Select(&runs, `SELECT * FROM runs WHERE query_key = ? ORDER BY started_at`, queryKey); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

func (k DocKey) String() string {
	return fmt.Sprintf("%s/%s/%s/%s/%s", k.QueryKey, k.GeneID, k.Clade, k.Mode, k.Stage)
}
