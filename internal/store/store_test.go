// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-lens/pkg/types"
)

// --- test helpers ---

func testSetup(t *testing.T) (*Store, string) {
	t.Helper()
	tmpDir := t.TempDir()

	analysesDir := filepath.Join(tmpDir, "analyses")
	if err := os.MkdirAll(analysesDir, 0o755); err != nil {
		t.Fatal(err)
	}

	cfg := types.StoreConfig{
		KnowledgeDir: filepath.Join(tmpDir, "knowledge"),
		MaxResults:   20,
	}
	store, err := NewStore(cfg, analysesDir)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	return store, tmpDir
}

func sampleAnalysis(title string) *types.PaperAnalysis {
	return &types.PaperAnalysis{
		Doc: &types.Document{
			Title:    title,
			Authors:  []string{"Smith, J.", "Doe, A."},
			Abstract: "We propose efficient sparse attention for long sequences.",
		},
		Technology: types.TechnologyAnalysis{
			MethodOverview:   "linear approximation of softmax attention",
			ArchitectureType: "MoE",
			ModelType:        "LLM",
		},
		Keywords: []string{"attention", "sparsity"},
		Summary:  "The paper reduces attention cost from quadratic to near linear.",
	}
}

func writeAnalysis(t *testing.T, tmpDir, id string, analysis *types.PaperAnalysis) string {
	t.Helper()
	data, err := yaml.Marshal(analysis)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(tmpDir, "analyses", id+analysisSuffix)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// ingestHelper writes one analysis record and ingests it.
func ingestHelper(t *testing.T, store *Store, tmpDir, id, title string) {
	t.Helper()
	writeAnalysis(t, tmpDir, id, sampleAnalysis(title))
	var buf strings.Builder
	if _, err := store.Ingest(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}
}

// --- schema tests ---

func TestNewStoreCreatesSchema(t *testing.T) {
	store, _ := testSetup(t)

	tables := []string{"analyses", "analyses_fts", "indexing_status"}
	for _, table := range tables {
		var count int
		err := store.db.QueryRow(
			`SELECT count(*) FROM sqlite_master WHERE type IN ('table','view') AND name = ?`, table,
		).Scan(&count)
		if err != nil {
			t.Fatalf("checking table %s: %v", table, err)
		}
		if count == 0 {
			t.Errorf("table %s does not exist", table)
		}
	}
}

func TestNewStoreCreatesDBFile(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "knowledge", indexDir, dbFile)

	cfg := types.StoreConfig{KnowledgeDir: filepath.Join(tmpDir, "knowledge")}
	store, err := NewStore(cfg, filepath.Join(tmpDir, "analyses"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Errorf("database file not created at %s", dbPath)
	}
}

// --- ingest tests ---

func TestIngest(t *testing.T) {
	tests := []struct {
		name        string
		records     int
		wantIndexed int
	}{
		{"single record", 1, 1},
		{"multiple records", 3, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, tmpDir := testSetup(t)

			for i := 0; i < tt.records; i++ {
				id := fmt.Sprintf("paper-%d", i)
				writeAnalysis(t, tmpDir, id, sampleAnalysis(fmt.Sprintf("Paper %d Title", i)))
			}

			var buf strings.Builder
			summary, err := store.Ingest(context.Background(), &buf)
			if err != nil {
				t.Fatalf("Ingest: %v", err)
			}
			if summary.Indexed != tt.wantIndexed {
				t.Errorf("Indexed = %d, want %d", summary.Indexed, tt.wantIndexed)
			}
			if summary.Failed != 0 {
				t.Errorf("Failed = %d, want 0; output: %s", summary.Failed, buf.String())
			}
		})
	}
}

func TestIngestStoresAllFields(t *testing.T) {
	store, tmpDir := testSetup(t)
	ingestHelper(t, store, tmpDir, "sparse-attention", "Sparse Attention at Scale")

	results, err := store.Query(context.Background(), QueryOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}

	r := results[0]
	if r.ID != "sparse-attention" {
		t.Errorf("ID = %q, want %q", r.ID, "sparse-attention")
	}
	if r.Title != "Sparse Attention at Scale" {
		t.Errorf("Title = %q", r.Title)
	}
	if len(r.Authors) != 2 || r.Authors[0] != "Smith, J." {
		t.Errorf("Authors = %v", r.Authors)
	}
	if r.Abstract == "" {
		t.Error("Abstract is empty")
	}
	if len(r.Keywords) != 2 || r.Keywords[0] != "attention" {
		t.Errorf("Keywords = %v", r.Keywords)
	}
	if r.Summary == "" {
		t.Error("Summary is empty")
	}
	if r.ArchitectureType != "MoE" {
		t.Errorf("ArchitectureType = %q, want MoE", r.ArchitectureType)
	}
	if r.ModelType != "LLM" {
		t.Errorf("ModelType = %q, want LLM", r.ModelType)
	}
}

func TestIngestSkipsNonAnalysisFiles(t *testing.T) {
	store, tmpDir := testSetup(t)

	path := filepath.Join(tmpDir, "analyses", "notes.yaml")
	if err := os.WriteFile(path, []byte("scratch: true"), 0o644); err != nil {
		t.Fatal(err)
	}

	var buf strings.Builder
	summary, err := store.Ingest(context.Background(), &buf)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Total() != 0 {
		t.Errorf("Total() = %d, want 0", summary.Total())
	}
}

func TestIngestCountsMalformedAsFailed(t *testing.T) {
	store, tmpDir := testSetup(t)

	path := filepath.Join(tmpDir, "analyses", "broken"+analysisSuffix)
	if err := os.WriteFile(path, []byte("document: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}

	var buf strings.Builder
	summary, err := store.Ingest(context.Background(), &buf)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Failed != 1 {
		t.Errorf("Failed = %d, want 1", summary.Failed)
	}
	if !strings.Contains(buf.String(), "failed") {
		t.Errorf("output should contain 'failed': %s", buf.String())
	}
}

func TestIngestWritesExportYAML(t *testing.T) {
	store, tmpDir := testSetup(t)
	ingestHelper(t, store, tmpDir, "paper-export", "Export Paper")

	path := filepath.Join(tmpDir, "knowledge", indexDir, "export.yaml")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("export.yaml not written after ingestion")
	}
}

// --- incremental update tests ---

func TestIngestSkipsUnchanged(t *testing.T) {
	store, tmpDir := testSetup(t)
	ingestHelper(t, store, tmpDir, "paper-skip", "Skipped Paper")

	// Second ingestion without modifying the file.
	var buf strings.Builder
	summary, err := store.Ingest(context.Background(), &buf)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", summary.Skipped)
	}
	if summary.Indexed != 0 {
		t.Errorf("Indexed = %d, want 0", summary.Indexed)
	}
	if !strings.Contains(buf.String(), "skipped") {
		t.Errorf("output should contain 'skipped': %s", buf.String())
	}
}

func TestIngestUpdatesChanged(t *testing.T) {
	store, tmpDir := testSetup(t)
	ingestHelper(t, store, tmpDir, "paper-update", "Old Title")

	updated := sampleAnalysis("New Title")
	updated.Summary = "Updated summary content."
	path := writeAnalysis(t, tmpDir, "paper-update", updated)

	// Touch the file to ensure mod time changes.
	future := time.Now().Add(time.Second)
	os.Chtimes(path, future, future)

	var buf strings.Builder
	summary, err := store.Ingest(context.Background(), &buf)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Updated != 1 {
		t.Errorf("Updated = %d, want 1", summary.Updated)
	}

	results, err := store.Query(context.Background(), QueryOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1 (old row should be replaced)", len(results))
	}
	if results[0].Title != "New Title" {
		t.Errorf("title = %q, want %q", results[0].Title, "New Title")
	}
	if results[0].Summary != "Updated summary content." {
		t.Errorf("summary = %q", results[0].Summary)
	}
}

func TestIngestSummaryOutput(t *testing.T) {
	store, tmpDir := testSetup(t)
	writeAnalysis(t, tmpDir, "paper1", sampleAnalysis("P1"))

	var buf strings.Builder
	_, err := store.Ingest(context.Background(), &buf)
	if err != nil {
		t.Fatal(err)
	}
	output := buf.String()

	if !strings.Contains(output, "indexed: 1") {
		t.Errorf("output should contain 'indexed: 1': %s", output)
	}
	if !strings.Contains(output, "skipped: 0") {
		t.Errorf("output should contain 'skipped: 0': %s", output)
	}
}

// --- full-text search tests ---

func TestQueryFullTextSearch(t *testing.T) {
	store, tmpDir := testSetup(t)
	ingestHelper(t, store, tmpDir, "fts-paper", "Sparse Attention at Scale")

	tests := []struct {
		name    string
		query   string
		wantHit bool
	}{
		{"title term", "sparse", true},
		{"summary term", "quadratic", true},
		{"keyword term", "sparsity", true},
		{"abstract term", "sequences", true},
		{"no match", "quantum entanglement xyzzy", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := store.Query(context.Background(), QueryOptions{Query: tt.query})
			if err != nil {
				t.Fatal(err)
			}
			if tt.wantHit && len(results) == 0 {
				t.Errorf("no results for %q", tt.query)
			}
			if !tt.wantHit && len(results) != 0 {
				t.Errorf("got %d results for %q, want 0", len(results), tt.query)
			}
		})
	}
}

func TestQueryRespectsMaxResults(t *testing.T) {
	store, tmpDir := testSetup(t)
	for i := 0; i < 5; i++ {
		writeAnalysis(t, tmpDir, fmt.Sprintf("paper-%d", i), sampleAnalysis(fmt.Sprintf("Paper %d", i)))
	}
	var buf strings.Builder
	if _, err := store.Ingest(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}

	results, err := store.Query(context.Background(), QueryOptions{
		Query:      "attention",
		MaxResults: 2,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) > 2 {
		t.Errorf("got %d results, want <= 2", len(results))
	}
}

// --- structured query tests ---

func TestQueryByArchitectureType(t *testing.T) {
	store, tmpDir := testSetup(t)

	moe := sampleAnalysis("MoE Paper")
	dense := sampleAnalysis("Dense Paper")
	dense.Technology.ArchitectureType = "Dense"
	writeAnalysis(t, tmpDir, "moe-paper", moe)
	writeAnalysis(t, tmpDir, "dense-paper", dense)
	var buf strings.Builder
	if _, err := store.Ingest(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}

	results, err := store.Query(context.Background(), QueryOptions{ArchitectureType: "Dense"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].Title != "Dense Paper" {
		t.Errorf("title = %q", results[0].Title)
	}
}

func TestQueryByModelType(t *testing.T) {
	store, tmpDir := testSetup(t)

	llm := sampleAnalysis("Language Paper")
	vision := sampleAnalysis("Vision Paper")
	vision.Technology.ModelType = "Vision"
	writeAnalysis(t, tmpDir, "llm-paper", llm)
	writeAnalysis(t, tmpDir, "vision-paper", vision)
	var buf strings.Builder
	if _, err := store.Ingest(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}

	results, err := store.Query(context.Background(), QueryOptions{ModelType: "Vision"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Title != "Vision Paper" {
		t.Errorf("results = %+v", results)
	}
}

func TestQueryCombined(t *testing.T) {
	store, tmpDir := testSetup(t)

	match := sampleAnalysis("Sparse MoE")
	other := sampleAnalysis("Sparse Dense")
	other.Technology.ArchitectureType = "Dense"
	writeAnalysis(t, tmpDir, "match", match)
	writeAnalysis(t, tmpDir, "other", other)
	var buf strings.Builder
	if _, err := store.Ingest(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}

	// FTS + architecture filter.
	results, err := store.Query(context.Background(), QueryOptions{
		Query:            "sparse",
		ArchitectureType: "MoE",
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].Title != "Sparse MoE" {
		t.Errorf("title = %q", results[0].Title)
	}
}

func TestQueryStructuredSortOrder(t *testing.T) {
	store, tmpDir := testSetup(t)
	writeAnalysis(t, tmpDir, "zzz-paper", sampleAnalysis("Z Paper"))
	writeAnalysis(t, tmpDir, "aaa-paper", sampleAnalysis("A Paper"))
	var buf strings.Builder
	if _, err := store.Ingest(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}

	results, err := store.Query(context.Background(), QueryOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	// Structured queries are sorted by id.
	if results[0].ID != "aaa-paper" || results[1].ID != "zzz-paper" {
		t.Errorf("order = %q, %q", results[0].ID, results[1].ID)
	}
}

func TestQueryOptionsIsEmpty(t *testing.T) {
	if !(QueryOptions{}).IsEmpty() {
		t.Error("empty QueryOptions should report IsEmpty() = true")
	}
	if (QueryOptions{Query: "x"}).IsEmpty() {
		t.Error("options with a query should not be empty")
	}
}

// --- trace tests ---

func TestTrace(t *testing.T) {
	results := []QueryResult{
		{Title: "Sparse MoE", ArchitectureType: "MoE", Keywords: []string{"routing", "gating"}},
		{Title: "Dense Baseline"},
	}
	text := Trace(results)

	for _, want := range []string{
		"1. Sparse MoE [MoE] (routing, gating)",
		"2. Dense Baseline",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("trace missing %q: %s", want, text)
		}
	}
}

// --- export tests ---

func TestExportYAML(t *testing.T) {
	store, tmpDir := testSetup(t)
	ingestHelper(t, store, tmpDir, "export-yaml-paper", "Export Paper")

	if err := store.ExportYAML(context.Background(), QueryOptions{}); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(tmpDir, "knowledge", indexDir, "export.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var entries []QueryResult
	if err := yaml.Unmarshal(data, &entries); err != nil {
		t.Fatalf("invalid YAML: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("got %d entries, want 1", len(entries))
	}
	if entries[0].Title != "Export Paper" {
		t.Errorf("title = %q", entries[0].Title)
	}
}

func TestExportJSON(t *testing.T) {
	store, tmpDir := testSetup(t)
	ingestHelper(t, store, tmpDir, "export-json-paper", "Export Paper")

	if err := store.ExportJSON(context.Background(), QueryOptions{}); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(tmpDir, "knowledge", indexDir, "export.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var entries []QueryResult
	if err := json.Unmarshal(data, &entries); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("got %d entries, want 1", len(entries))
	}
}

func TestExportFiltered(t *testing.T) {
	store, tmpDir := testSetup(t)

	moe := sampleAnalysis("MoE Paper")
	dense := sampleAnalysis("Dense Paper")
	dense.Technology.ArchitectureType = "Dense"
	writeAnalysis(t, tmpDir, "moe-paper", moe)
	writeAnalysis(t, tmpDir, "dense-paper", dense)
	var buf strings.Builder
	if _, err := store.Ingest(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}

	if err := store.ExportYAML(context.Background(), QueryOptions{ArchitectureType: "MoE"}); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(tmpDir, "knowledge", indexDir, "export.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var entries []QueryResult
	yaml.Unmarshal(data, &entries)
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries[0].ArchitectureType != "MoE" {
		t.Errorf("entry architecture = %q, want MoE", entries[0].ArchitectureType)
	}
}

// --- IngestSummary ---

func TestIngestSummaryTotal(t *testing.T) {
	s := IngestSummary{Indexed: 2, Updated: 1, Skipped: 3, Failed: 1}
	if s.Total() != 7 {
		t.Errorf("Total() = %d, want 7", s.Total())
	}
}
