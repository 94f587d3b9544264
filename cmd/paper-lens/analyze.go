// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-lens/internal/analyze"
	"github.com/pdiddy/paper-lens/internal/load"
	"github.com/pdiddy/paper-lens/internal/report"
	"github.com/pdiddy/paper-lens/pkg/types"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [documents...]",
	Short: "Produce a structured analysis record per document",
	Long: `Analyze reads each document, segments it into regions, and extracts a
structured analysis: research background, technical method, experimental
design, results, keywords, a summary, and per-section notes. Records are
saved as YAML in the analyses directory.

Arguments may be files, directories, or glob patterns. With --quick only
keywords and a short summary are extracted. With --report single a reading
notes report is also written per document.`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().Bool("quick", false, "keywords and a short summary only")
	analyzeCmd.Flags().String("analyses-dir", "", "directory for analysis records (default from config)")
	analyzeCmd.Flags().String("report", "", "also write a report per document: single")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide one or more documents (files, directories, or globs)")
	}

	reportKind, _ := cmd.Flags().GetString("report")
	if reportKind != "" && reportKind != string(types.ReportSingle) {
		return fmt.Errorf("unsupported report kind %q: analyze writes single reports only", reportKind)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if dir, _ := cmd.Flags().GetString("analyses-dir"); dir != "" {
		cfg.Analyze.AnalysesDir = dir
	}

	docs, err := load.LoadAll(args, os.Stdout)
	if err != nil {
		return err
	}

	analyzer, err := analyze.New(newHelper(cfg), cfg, os.Stdout)
	if err != nil {
		return err
	}

	ctx := context.Background()
	quick, _ := cmd.Flags().GetBool("quick")

	var analyses []*types.PaperAnalysis
	var failed int

	if quick {
		for _, doc := range docs {
			analysis, err := analyzer.AnalyzeQuick(ctx, doc)
			if err != nil {
				fmt.Fprintf(os.Stdout, "failed  %s: %v\n", doc.Title, err)
				failed++
				continue
			}
			path, err := analyze.SaveAnalysis(cfg.Analyze.AnalysesDir, analysis)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "analyzed %s -> %s\n", doc.Title, path)
			analyses = append(analyses, analysis)
		}
	} else {
		var summary analyze.BatchSummary
		analyses, summary = analyzer.AnalyzeAll(ctx, docs)
		failed = summary.Failed
	}

	if reportKind == string(types.ReportSingle) {
		gen := report.New(cfg.Report)
		for _, analysis := range analyses {
			rep, err := gen.Generate(types.ReportSingle, []*types.PaperAnalysis{analysis}, nil, "")
			if err != nil {
				return err
			}
			stem := strings.TrimSuffix(analyze.AnalysisFileName(analysis.Doc), "-analysis.yaml")
			path := filepath.Join(cfg.Report.OutputDir, stem+"-notes.md")
			if err := report.Save(rep, path); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "report written to %s\n", path)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d document(s) failed analysis", failed)
	}
	return nil
}
