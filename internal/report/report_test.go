// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/paper-lens/pkg/types"
)

func fullAnalysis() *types.PaperAnalysis {
	return &types.PaperAnalysis{
		Doc: &types.Document{
			Title:    "Sparse Routing at Scale",
			Authors:  []string{"A. Author"},
			Abstract: "We study sparse routing.",
			Figures: []types.Figure{
				{Page: 2, Caption: "Router overview"},
				{Page: 4, Caption: "Throughput curves"},
			},
			Tables: []types.Table{
				{Page: 5, Caption: "Benchmark accuracy", Content: "model | score"},
			},
			Equations: []types.Equation{
				{Page: 3, Text: "y = g(x)", Number: "(1)"},
			},
		},
		Background: types.BackgroundAnalysis{
			ResearchField:     "efficient inference",
			ProblemDefinition: "dense models cost too much",
			Motivation:        "serve cheaply",
		},
		Technology: types.TechnologyAnalysis{
			MethodOverview: "sparse expert routing",
			Innovations:    []string{"learned router", "top-2 gating"},
			Architecture:   "MoE transformer",
			ModelType:      "LLM",
		},
		Experiment: types.ExperimentAnalysis{
			Datasets: []string{"BenchA"},
			Metrics:  []string{"exact match"},
		},
		Result: types.ResultAnalysis{
			MainResults: "accuracy up 3 points",
			KeyFindings: []string{"sparsity preserves quality"},
		},
		Keywords:   []string{"sparse routing", "moe"},
		Summary:    "The paper proposes sparse routing.",
		KeyFigures: []int{1},
		KeyTables:  []int{1},
		// Index 9 is out of range and must be ignored.
		KeyEquations: []int{1, 9},
	}
}

func secondAnalysis() *types.PaperAnalysis {
	return &types.PaperAnalysis{
		Doc:     &types.Document{Title: "Dense Baselines Revisited", Abstract: "Dense models reconsidered."},
		Summary: "Dense models remain competitive.",
	}
}

func newTestGenerator(language string) *Generator {
	g := New(types.ReportConfig{Language: language})
	g.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return g
}

func TestGenerateSingle(t *testing.T) {
	g := newTestGenerator("english")

	report, err := g.Generate(types.ReportSingle, []*types.PaperAnalysis{fullAnalysis()}, nil, "")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if report.Kind != types.ReportSingle {
		t.Errorf("Kind = %q", report.Kind)
	}
	if report.Title != "Reading Notes: Sparse Routing at Scale" {
		t.Errorf("Title = %q", report.Title)
	}
	if len(report.Papers) != 1 || report.Papers[0] != "Sparse Routing at Scale" {
		t.Errorf("Papers = %v", report.Papers)
	}

	for _, want := range []string{
		"# Sparse Routing at Scale",
		"**Authors:** A. Author",
		"**Keywords:** sparse routing, moe",
		"## Summary",
		"The paper proposes sparse routing.",
		"**Research Field:** efficient inference",
		"**Model Type:** LLM",
		"**Innovations:**",
		"  1. learned router",
		"  2. top-2 gating",
		"**Datasets:** BenchA",
		"**Main Results:** accuracy up 3 points",
	} {
		if !strings.Contains(report.Content, want) {
			t.Errorf("content missing %q", want)
		}
	}
}

func TestGenerateSingleResourceAppendix(t *testing.T) {
	g := newTestGenerator("english")

	report, err := g.Generate(types.ReportSingle, []*types.PaperAnalysis{fullAnalysis()}, nil, "")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	for _, want := range []string{
		"## Key Resources",
		"#### Key Figures",
		"**Router overview**",
		"#### Key Tables",
		"**Benchmark accuracy**",
		"model | score",
		"#### Key Equations",
		"(1): y = g(x)",
	} {
		if !strings.Contains(report.Content, want) {
			t.Errorf("content missing %q", want)
		}
	}

	// Only figure 1 is key; figure 2 must not appear.
	if strings.Contains(report.Content, "Throughput curves") {
		t.Error("non-key figure leaked into the appendix")
	}
}

func TestGenerateSingleEmptyFieldsOmitted(t *testing.T) {
	g := newTestGenerator("english")

	report, err := g.Generate(types.ReportSingle, []*types.PaperAnalysis{secondAnalysis()}, nil, "")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if strings.Contains(report.Content, "**Motivation:**") {
		t.Error("empty field rendered")
	}
	if strings.Contains(report.Content, "Key Resources") {
		t.Error("resource appendix rendered without key resources")
	}
}

func TestGenerateComparison(t *testing.T) {
	g := newTestGenerator("english")

	knowledge := &types.AggregatedKnowledge{
		OverallSummary: "the batch summary",
		ComparisonMatrix: []types.ComparisonItem{
			{Axis: "architecture", Papers: map[string]string{
				"Sparse Routing at Scale":  "MoE",
				"Dense Baselines Revisited": "Dense",
			}},
		},
		CommonThemes:   []string{"efficiency"},
		KeyDifferences: []string{"sparsity"},
	}

	analyses := []*types.PaperAnalysis{fullAnalysis(), secondAnalysis()}
	report, err := g.Generate(types.ReportComparison, analyses, knowledge, "")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if report.Title != "Paper Comparison Analysis (2 papers)" {
		t.Errorf("Title = %q", report.Title)
	}
	for _, want := range []string{
		"# Paper Comparison Analysis",
		"## Papers Analyzed",
		"1. **Sparse Routing at Scale**",
		"2. **Dense Baselines Revisited**",
		"## Overall Summary",
		"### architecture",
		"| Paper | Description |",
		"| Sparse Routing at Scale | MoE |",
		"## Common Themes",
		"- efficiency",
		"## Key Differences",
		"- sparsity",
		"## Individual Paper Summaries",
		"### Dense Baselines Revisited",
	} {
		if !strings.Contains(report.Content, want) {
			t.Errorf("content missing %q", want)
		}
	}
}

func TestGenerateComparisonCustomMode(t *testing.T) {
	g := newTestGenerator("english")

	// Custom-mode knowledge: only a summary, no batch sections.
	knowledge := &types.AggregatedKnowledge{
		OverallSummary: "custom answer",
		CustomAnalysis: "focus on evaluation",
	}

	report, err := g.Generate(types.ReportComparison,
		[]*types.PaperAnalysis{fullAnalysis(), secondAnalysis()}, knowledge, "")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if !strings.Contains(report.Content, "custom answer") {
		t.Error("content missing the custom summary")
	}
	if strings.Contains(report.Content, "## Comparison Matrix") {
		t.Error("custom-mode report rendered the comparison matrix section")
	}
}

func TestGenerateTrend(t *testing.T) {
	g := newTestGenerator("english")

	knowledge := &types.AggregatedKnowledge{
		OverallSummary: "the batch summary",
		Timeline: []types.TimelineItem{
			{PaperTitle: "Dense Baselines Revisited", Date: "2024", Contribution: "baseline", Order: 1},
			{PaperTitle: "Sparse Routing at Scale", Contribution: "sparsity", Order: 2},
		},
		Trends: []types.TrendItem{
			{Name: "scaling", Description: "models grow", Evidence: []string{"both papers"}},
		},
	}

	report, err := g.Generate(types.ReportTrend,
		[]*types.PaperAnalysis{fullAnalysis(), secondAnalysis()}, knowledge, "Custom Trend Title")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if report.Title != "Custom Trend Title" {
		t.Errorf("Title = %q", report.Title)
	}
	for _, want := range []string{
		"# Technology Trend Analysis",
		"## Technology Timeline",
		"**1. Dense Baselines Revisited** (2024)",
		"**2. Sparse Routing at Scale**",
		"   - sparsity",
		"## Identified Trends",
		"### scaling",
		"**Evidence:**",
		"- both papers",
	} {
		if !strings.Contains(report.Content, want) {
			t.Errorf("content missing %q", want)
		}
	}
}

func TestGenerateChineseLabels(t *testing.T) {
	g := newTestGenerator("chinese")

	report, err := g.Generate(types.ReportSingle, []*types.PaperAnalysis{fullAnalysis()}, nil, "")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(report.Content, "## 摘要") {
		t.Error("content missing the Chinese summary heading")
	}
	if !strings.Contains(report.Content, "**研究领域:** efficient inference") {
		t.Error("content missing the Chinese research-field label")
	}
}

func TestGenerateValidation(t *testing.T) {
	g := newTestGenerator("english")

	if _, err := g.Generate(types.ReportSingle, nil, nil, ""); err == nil {
		t.Error("single report accepted an empty batch")
	}
	if _, err := g.Generate(types.ReportComparison, []*types.PaperAnalysis{fullAnalysis()}, nil, ""); err == nil {
		t.Error("comparison report accepted a single analysis")
	}
	if _, err := g.Generate(types.ReportKind("weekly"), []*types.PaperAnalysis{fullAnalysis()}, nil, ""); err == nil {
		t.Error("unknown report kind accepted")
	}
}

func TestSave(t *testing.T) {
	g := newTestGenerator("english")
	report, err := g.Generate(types.ReportSingle, []*types.PaperAnalysis{fullAnalysis()}, nil, "")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	dir := t.TempDir()

	t.Run("markdown", func(t *testing.T) {
		path := filepath.Join(dir, "nested", "report.md")
		if err := Save(report, path); err != nil {
			t.Fatalf("Save: %v", err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("reading saved report: %v", err)
		}
		if string(data) != report.Content {
			t.Error("markdown save did not write the raw content")
		}
	})

	t.Run("json", func(t *testing.T) {
		path := filepath.Join(dir, "report.json")
		if err := Save(report, path); err != nil {
			t.Fatalf("Save: %v", err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("reading saved report: %v", err)
		}
		var decoded types.Report
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("saved JSON does not parse: %v", err)
		}
		if decoded.Title != report.Title || decoded.Kind != report.Kind {
			t.Errorf("decoded report = %+v", decoded)
		}
	})
}
