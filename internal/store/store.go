// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists analysis records and builds a retrieval index over
// them. The index is a SQLite database with an FTS5 full-text table kept in
// sync by triggers; the YAML records on disk stay the source of truth and the
// database can always be rebuilt from them.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-lens/pkg/types"
)

const (
	indexDir       = "index"
	dbFile         = "paperlens.db"
	analysisSuffix = "-analysis.yaml"
)

// Store manages the analysis index SQLite database.
type Store struct {
	db           *sql.DB
	knowledgeDir string
	analysesDir  string
	maxResults   int
}

// NewStore opens or creates the index database at knowledgeDir/index/ and
// creates the schema when missing. analysesDir is where Ingest looks for
// analysis records.
func NewStore(cfg types.StoreConfig, analysesDir string) (*Store, error) {
	dbDir := filepath.Join(cfg.KnowledgeDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{
		db:           db,
		knowledgeDir: cfg.KnowledgeDir,
		analysesDir:  analysesDir,
		maxResults:   maxResults,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS analyses (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			title TEXT,
			authors TEXT,
			abstract TEXT,
			keywords TEXT,
			summary TEXT,
			architecture_type TEXT,
			model_type TEXT,
			search_text TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_model_type ON analyses(model_type)`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_architecture_type ON analyses(architecture_type)`,
		`CREATE TABLE IF NOT EXISTS indexing_status (
			analysis_id TEXT PRIMARY KEY,
			file_mod_time TEXT
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='analyses_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE analyses_fts USING fts5(search_text, content=analyses, content_rowid=rowid)`,
			`CREATE TRIGGER analyses_ai AFTER INSERT ON analyses BEGIN
				INSERT INTO analyses_fts(rowid, search_text) VALUES (new.rowid, new.search_text);
			END`,
			`CREATE TRIGGER analyses_ad AFTER DELETE ON analyses BEGIN
				INSERT INTO analyses_fts(analyses_fts, rowid, search_text) VALUES('delete', old.rowid, old.search_text);
			END`,
			`CREATE TRIGGER analyses_au AFTER UPDATE ON analyses BEGIN
				INSERT INTO analyses_fts(analyses_fts, rowid, search_text) VALUES('delete', old.rowid, old.search_text);
				INSERT INTO analyses_fts(rowid, search_text) VALUES (new.rowid, new.search_text);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// Put indexes one analysis record under the given id, replacing any previous
// row for that id.
func (s *Store) Put(ctx context.Context, id string, analysis *types.PaperAnalysis) error {
	authorsJSON, _ := json.Marshal(analysis.Authors())
	keywordsJSON, _ := json.Marshal(analysis.Keywords)

	abstract := ""
	if analysis.Doc != nil {
		abstract = analysis.Doc.Abstract
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO analyses (id, title, authors, abstract, keywords, summary, architecture_type, model_type, search_text)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title=excluded.title, authors=excluded.authors, abstract=excluded.abstract,
			keywords=excluded.keywords, summary=excluded.summary,
			architecture_type=excluded.architecture_type, model_type=excluded.model_type,
			search_text=excluded.search_text`,
		id, analysis.Title(), string(authorsJSON), abstract,
		string(keywordsJSON), analysis.Summary,
		analysis.Technology.ArchitectureType, analysis.Technology.ModelType,
		searchText(analysis),
	)
	if err != nil {
		return fmt.Errorf("indexing analysis %s: %w", id, err)
	}
	return nil
}

// searchText builds the full-text search document for an analysis: title,
// keywords, summary, and abstract.
func searchText(analysis *types.PaperAnalysis) string {
	abstract := ""
	if analysis.Doc != nil {
		abstract = analysis.Doc.Abstract
	}
	return strings.Join([]string{
		analysis.Title(),
		strings.Join(analysis.Keywords, " "),
		analysis.Summary,
		abstract,
	}, "\n")
}

// IngestSummary holds counts from an index run.
type IngestSummary struct {
	Indexed int
	Updated int
	Skipped int
	Failed  int
}

// Total returns the number of records processed.
func (s IngestSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// Ingest reads analysis YAML records from the analyses directory and indexes
// them. File modification times drive incremental updates: unchanged records
// are skipped, changed ones replaced. On success it refreshes export.yaml.
func (s *Store) Ingest(ctx context.Context, w io.Writer) (IngestSummary, error) {
	entries, err := os.ReadDir(s.analysesDir)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("reading analyses directory %s: %w", s.analysesDir, err)
	}

	var summary IngestSummary

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), analysisSuffix) {
			continue
		}

		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		id := strings.TrimSuffix(entry.Name(), analysisSuffix)
		path := filepath.Join(s.analysesDir, entry.Name())

		info, err := entry.Info()
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", id, err)
			summary.Failed++
			continue
		}
		modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

		var storedModTime string
		err = s.db.QueryRowContext(ctx,
			`SELECT file_mod_time FROM indexing_status WHERE analysis_id = ?`, id,
		).Scan(&storedModTime)

		if err == nil && storedModTime == modTime {
			fmt.Fprintf(w, "skipped %s\n", id)
			summary.Skipped++
			continue
		}
		isUpdate := err == nil

		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", id, err)
			summary.Failed++
			continue
		}

		var analysis types.PaperAnalysis
		if err := yaml.Unmarshal(data, &analysis); err != nil {
			fmt.Fprintf(w, "failed  %s: parse error: %v\n", id, err)
			summary.Failed++
			continue
		}

		if err := s.ingestOne(ctx, id, &analysis, modTime); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", id, err)
			summary.Failed++
			continue
		}

		if isUpdate {
			fmt.Fprintf(w, "updated %s\n", id)
			summary.Updated++
		} else {
			fmt.Fprintf(w, "indexed %s\n", id)
			summary.Indexed++
		}
	}

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, failed: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Failed)

	if summary.Indexed > 0 || summary.Updated > 0 {
		if err := s.ExportYAML(ctx, QueryOptions{}); err != nil {
			fmt.Fprintf(w, "warning: export.yaml write failed: %v\n", err)
		}
	}

	return summary, nil
}

func (s *Store) ingestOne(ctx context.Context, id string, analysis *types.PaperAnalysis, modTime string) error {
	if err := s.Put(ctx, id, analysis); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO indexing_status (analysis_id, file_mod_time) VALUES (?, ?)
		 ON CONFLICT(analysis_id) DO UPDATE SET file_mod_time=excluded.file_mod_time`,
		id, modTime,
	)
	if err != nil {
		return fmt.Errorf("updating indexing status: %w", err)
	}
	return nil
}
