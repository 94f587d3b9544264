// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-lens/internal/store"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the analysis index (ingest, query, export)",
	Long: `Store manages a local SQLite index built from saved analysis records.
Use subcommands to index records, search them, or export the index.`,
}

// --- ingest subcommand ---

var storeIngestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Index saved analysis records",
	Long: `Ingest reads analysis YAML records from the analyses directory, indexes
them into a SQLite database with FTS5 search, and writes an export file.
Unchanged records are skipped on subsequent runs.`,
	RunE: runStoreIngest,
}

func runStoreIngest(cmd *cobra.Command, args []string) error {
	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	summary, err := s.Ingest(context.Background(), os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d record(s) failed indexing", summary.Failed)
	}
	return nil
}

// --- query subcommand ---

var storeQueryCmd = &cobra.Command{
	Use:   "query [terms...]",
	Short: "Search the analysis index",
	Long: `Query searches the index with FTS5 full-text search over titles,
keywords, summaries, and abstracts, optionally filtered by architecture
or model type.`,
	RunE: runStoreQuery,
}

func runStoreQuery(cmd *cobra.Command, args []string) error {
	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	opts := queryOptsFromFlags(cmd, args)
	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide search terms, --architecture, or --model-type")
	}

	results, err := s.Query(context.Background(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}
	fmt.Print(store.Trace(results))
	fmt.Printf("\n%d results\n", len(results))
	return nil
}

// --- export subcommand ---

var storeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the analysis index to YAML or JSON",
	Long: `Export writes the full index (or a filtered subset) to
knowledge/index/export.yaml or export.json. Supports the same filter
flags as query for partial exports.`,
	RunE: runStoreExport,
}

func runStoreExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	opts := queryOptsFromFlags(cmd, args)

	switch format {
	case "yaml", "":
		if err := s.ExportYAML(context.Background(), opts); err != nil {
			return err
		}
		fmt.Println("Exported to knowledge/index/export.yaml")
	case "json":
		if err := s.ExportJSON(context.Background(), opts); err != nil {
			return err
		}
		fmt.Println("Exported to knowledge/index/export.json")
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}

	return nil
}

// --- shared helpers ---

func openStore(cmd *cobra.Command) (*store.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	if dir, _ := cmd.Flags().GetString("knowledge-dir"); dir != "" {
		cfg.Store.KnowledgeDir = dir
	}
	if dir, _ := cmd.Flags().GetString("analyses-dir"); dir != "" {
		cfg.Analyze.AnalysesDir = dir
	}
	if maxResults, _ := cmd.Flags().GetInt("max-results"); maxResults > 0 {
		cfg.Store.MaxResults = maxResults
	}

	return store.NewStore(cfg.Store, cfg.Analyze.AnalysesDir)
}

func queryOptsFromFlags(cmd *cobra.Command, args []string) store.QueryOptions {
	queryText, _ := cmd.Flags().GetString("query")
	if queryText == "" && len(args) > 0 {
		queryText = strings.Join(args, " ")
	}

	architecture, _ := cmd.Flags().GetString("architecture")
	modelType, _ := cmd.Flags().GetString("model-type")
	limit, _ := cmd.Flags().GetInt("limit")

	return store.QueryOptions{
		Query:            queryText,
		ArchitectureType: architecture,
		ModelType:        modelType,
		MaxResults:       limit,
	}
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	storeCmd.PersistentFlags().String("knowledge-dir", "", "base directory for the index (default from config)")
	storeCmd.PersistentFlags().String("analyses-dir", "", "directory holding analysis records (default from config)")
	storeCmd.PersistentFlags().Int("max-results", 0, "maximum number of query results (0 = use default)")

	// Query flags.
	storeQueryCmd.Flags().String("query", "", "full-text search query")
	storeQueryCmd.Flags().String("architecture", "", "filter by architecture type: MoE, Dense, Hybrid, Other")
	storeQueryCmd.Flags().String("model-type", "", "filter by model type: LLM, Multimodal, Vision, ...")
	storeQueryCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	storeQueryCmd.Flags().Bool("json", false, "output results as JSON")

	// Export flags.
	storeExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	storeExportCmd.Flags().String("query", "", "full-text search filter for partial export")
	storeExportCmd.Flags().String("architecture", "", "filter by architecture type for partial export")
	storeExportCmd.Flags().String("model-type", "", "filter by model type for partial export")
	storeExportCmd.Flags().Int("limit", 0, "maximum records to export (0 = all)")

	// Wire subcommands.
	storeCmd.AddCommand(storeIngestCmd)
	storeCmd.AddCommand(storeQueryCmd)
	storeCmd.AddCommand(storeExportCmd)

	rootCmd.AddCommand(storeCmd)
}
