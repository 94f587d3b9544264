// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
)

// QueryOptions selects analyses from the index. Query runs a full-text
// search; the remaining fields filter on exact column values. An empty
// options value matches every indexed analysis.
type QueryOptions struct {
	Query            string
	ArchitectureType string
	ModelType        string
	MaxResults       int
}

// IsEmpty reports whether the options carry no constraints at all.
func (o QueryOptions) IsEmpty() bool {
	return o.Query == "" && o.ArchitectureType == "" && o.ModelType == "" && o.MaxResults == 0
}

// QueryResult is one indexed analysis returned by Query.
type QueryResult struct {
	ID               string   `json:"id" yaml:"id"`
	Title            string   `json:"title" yaml:"title"`
	Authors          []string `json:"authors,omitempty" yaml:"authors,omitempty"`
	Abstract         string   `json:"abstract,omitempty" yaml:"abstract,omitempty"`
	Keywords         []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	Summary          string   `json:"summary,omitempty" yaml:"summary,omitempty"`
	ArchitectureType string   `json:"architecture_type,omitempty" yaml:"architecture_type,omitempty"`
	ModelType        string   `json:"model_type,omitempty" yaml:"model_type,omitempty"`
}

// Query returns indexed analyses matching the options. Full-text matches are
// ordered by relevance rank; structured queries by id for stable output. The
// result count is capped at MaxResults, defaulting to the configured cap.
func (s *Store) Query(ctx context.Context, opts QueryOptions) ([]QueryResult, error) {
	limit := opts.MaxResults
	if limit <= 0 {
		limit = s.maxResults
	}

	var (
		query string
		args  []any
	)

	if opts.Query != "" {
		query = `SELECT a.id, a.title, a.authors, a.abstract, a.keywords, a.summary,
			a.architecture_type, a.model_type
			FROM analyses_fts f
			JOIN analyses a ON a.rowid = f.rowid
			WHERE analyses_fts MATCH ?`
		args = append(args, opts.Query)
		if opts.ArchitectureType != "" {
			query += ` AND a.architecture_type = ?`
			args = append(args, opts.ArchitectureType)
		}
		if opts.ModelType != "" {
			query += ` AND a.model_type = ?`
			args = append(args, opts.ModelType)
		}
		query += ` ORDER BY rank LIMIT ?`
	} else {
		query = `SELECT id, title, authors, abstract, keywords, summary,
			architecture_type, model_type
			FROM analyses WHERE 1=1`
		if opts.ArchitectureType != "" {
			query += ` AND architecture_type = ?`
			args = append(args, opts.ArchitectureType)
		}
		if opts.ModelType != "" {
			query += ` AND model_type = ?`
			args = append(args, opts.ModelType)
		}
		query += ` ORDER BY id LIMIT ?`
	}
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}
	defer rows.Close()

	var results []QueryResult
	for rows.Next() {
		result, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, rows.Err()
}

func scanResult(rows *sql.Rows) (QueryResult, error) {
	var (
		r                     QueryResult
		authorsJSON, keywords string
	)
	if err := rows.Scan(&r.ID, &r.Title, &authorsJSON, &r.Abstract, &keywords,
		&r.Summary, &r.ArchitectureType, &r.ModelType); err != nil {
		return QueryResult{}, fmt.Errorf("scanning result row: %w", err)
	}
	if authorsJSON != "" && authorsJSON != "null" {
		if err := json.Unmarshal([]byte(authorsJSON), &r.Authors); err != nil {
			return QueryResult{}, fmt.Errorf("parsing authors for %s: %w", r.ID, err)
		}
	}
	if keywords != "" && keywords != "null" {
		if err := json.Unmarshal([]byte(keywords), &r.Keywords); err != nil {
			return QueryResult{}, fmt.Errorf("parsing keywords for %s: %w", r.ID, err)
		}
	}
	return r, nil
}

// Trace returns a readable one-line form of each result, for progress output
// and debugging.
func Trace(results []QueryResult) string {
	var b strings.Builder
	for i, r := range results {
		fmt.Fprintf(&b, "%d. %s", i+1, r.Title)
		if r.ArchitectureType != "" {
			fmt.Fprintf(&b, " [%s]", r.ArchitectureType)
		}
		if len(r.Keywords) > 0 {
			fmt.Fprintf(&b, " (%s)", strings.Join(r.Keywords, ", "))
		}
		b.WriteString("\n")
	}
	return b.String()
}
