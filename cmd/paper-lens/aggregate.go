// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-lens/internal/aggregate"
	"github.com/pdiddy/paper-lens/internal/analyze"
	"github.com/pdiddy/paper-lens/internal/load"
	"github.com/pdiddy/paper-lens/internal/report"
	"github.com/pdiddy/paper-lens/pkg/types"
)

var aggregateCmd = &cobra.Command{
	Use:   "aggregate [documents...]",
	Short: "Analyze a batch of documents and generate a cross-paper report",
	Long: `Aggregate runs the full pipeline over a batch: per-document analysis,
cross-document aggregation (comparison matrix, timeline, trends), and a
rendered report.

Without document arguments, saved analysis records are read from the
analyses directory instead of re-analyzing. With --custom-prompt the batch
passes are replaced by a single analysis driven by the given instruction.
The report kind defaults to comparison; use --report trend for a
timeline-centered layout.`,
	RunE: runAggregate,
}

func init() {
	aggregateCmd.Flags().String("analyses-dir", "", "read saved analysis records from this directory (default from config)")
	aggregateCmd.Flags().String("custom-prompt", "", "replace the batch passes with one instruction-driven analysis")
	aggregateCmd.Flags().String("report", "comparison", "report kind: comparison or trend")
	aggregateCmd.Flags().String("title", "", "report title (default derives from the batch)")
	aggregateCmd.Flags().String("output", "", "report file path (default under the report output directory)")

	rootCmd.AddCommand(aggregateCmd)
}

func runAggregate(cmd *cobra.Command, args []string) error {
	kindFlag, _ := cmd.Flags().GetString("report")
	kind := types.ReportKind(kindFlag)
	if kind != types.ReportComparison && kind != types.ReportTrend {
		return fmt.Errorf("unsupported report kind %q: use comparison or trend", kindFlag)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if dir, _ := cmd.Flags().GetString("analyses-dir"); dir != "" {
		cfg.Analyze.AnalysesDir = dir
	}

	helper := newHelper(cfg)
	ctx := context.Background()

	var analyses []*types.PaperAnalysis
	if len(args) > 0 {
		docs, err := load.LoadAll(args, os.Stdout)
		if err != nil {
			return err
		}
		analyzer, err := analyze.New(helper, cfg, os.Stdout)
		if err != nil {
			return err
		}
		var summary analyze.BatchSummary
		analyses, summary = analyzer.AnalyzeAll(ctx, docs)
		if summary.HasFailures() {
			return fmt.Errorf("%d document(s) failed analysis", summary.Failed)
		}
	} else {
		analyses, err = loadSavedAnalyses(cfg.Analyze.AnalysesDir)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "loaded %d saved analyses from %s\n", len(analyses), cfg.Analyze.AnalysesDir)
	}

	instruction, _ := cmd.Flags().GetString("custom-prompt")
	aggregator := aggregate.New(helper, cfg, os.Stdout)
	knowledge, err := aggregator.Aggregate(ctx, analyses, instruction)
	if err != nil {
		return err
	}

	title, _ := cmd.Flags().GetString("title")
	rep, err := report.New(cfg.Report).Generate(kind, analyses, knowledge, title)
	if err != nil {
		return err
	}

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		name := fmt.Sprintf("%s-report-%s.md", kind, time.Now().Format("20060102-150405"))
		output = filepath.Join(cfg.Report.OutputDir, name)
	}
	if err := report.Save(rep, output); err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "report written to %s\n", output)
	return nil
}

// loadSavedAnalyses reads every analysis record in dir, in file-name order.
func loadSavedAnalyses(dir string) ([]*types.PaperAnalysis, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading analyses directory %s: %w", dir, err)
	}

	var analyses []*types.PaperAnalysis
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), "-analysis.yaml") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", entry.Name(), err)
		}
		var analysis types.PaperAnalysis
		if err := yaml.Unmarshal(data, &analysis); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", entry.Name(), err)
		}
		analyses = append(analyses, &analysis)
	}

	if len(analyses) == 0 {
		return nil, fmt.Errorf("no analysis records in %s", dir)
	}
	return analyses, nil
}
