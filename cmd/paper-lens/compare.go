// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-lens/internal/aggregate"
	"github.com/pdiddy/paper-lens/internal/analyze"
	"github.com/pdiddy/paper-lens/internal/load"
)

var compareCmd = &cobra.Command{
	Use:   "compare <document> <document>",
	Short: "Run a head-to-head comparison of two documents",
	Long: `Compare analyzes exactly two documents and produces a detailed
head-to-head: similarities, differences, the advantages of each paper,
and a conclusion.`,
	Args: cobra.ExactArgs(2),
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	first, err := load.LoadDocument(args[0])
	if err != nil {
		return err
	}
	second, err := load.LoadDocument(args[1])
	if err != nil {
		return err
	}

	helper := newHelper(cfg)
	analyzer, err := analyze.New(helper, cfg, os.Stdout)
	if err != nil {
		return err
	}

	ctx := context.Background()
	firstAnalysis, err := analyzer.Analyze(ctx, first)
	if err != nil {
		return err
	}
	secondAnalysis, err := analyzer.Analyze(ctx, second)
	if err != nil {
		return err
	}

	comparison, err := aggregate.New(helper, cfg, os.Stdout).CompareTwo(ctx, firstAnalysis, secondAnalysis)
	if err != nil {
		return err
	}

	printList := func(heading string, items []string) {
		if len(items) == 0 {
			return
		}
		fmt.Printf("\n%s\n", heading)
		for _, item := range items {
			fmt.Printf("  - %s\n", item)
		}
	}

	fmt.Printf("\n%s vs %s\n", first.Title, second.Title)
	printList("Similarities:", comparison.Similarities)
	printList("Differences:", comparison.Differences)
	printList(fmt.Sprintf("Advantages of %q:", first.Title), comparison.Paper1Advantages)
	printList(fmt.Sprintf("Advantages of %q:", second.Title), comparison.Paper2Advantages)
	if comparison.Conclusion != "" {
		fmt.Printf("\nConclusion: %s\n", comparison.Conclusion)
	}
	return nil
}
