// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyze

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/pdiddy/paper-lens/internal/llm"
	"github.com/pdiddy/paper-lens/pkg/types"
)

const sampleFullText = `Sparse Routing at Scale

Abstract
We study sparse expert routing for large models.

1 Introduction
Language models keep growing and inference cost grows with them.

2 Related Work
Prior systems use dense layers throughout.

3 Method
We propose a sparse design built on expert routing.

The model has 100B total parameters and 10B activated parameters per token.

4 Experiments
We evaluate on two public benchmarks with exact-match accuracy.

5 Results
Accuracy improves by 3 points over the dense baseline.

6 Conclusion
Sparse routing reduces cost without hurting quality.
`

func sampleDocument() *types.Document {
	return &types.Document{
		Path:     "papers/sparse-routing.md",
		Title:    "Sparse Routing at Scale",
		Authors:  []string{"A. Author", "B. Author"},
		Abstract: "We study sparse expert routing for large models.",
		FullText: sampleFullText,
		Figures: []types.Figure{
			{Page: 2, Caption: "Router overview"},
			{Page: 4, Caption: "Throughput curves"},
		},
		Tables: []types.Table{
			{Page: 5, Caption: "Benchmark accuracy"},
		},
		Equations: []types.Equation{
			{Page: 3, Text: "y = sum_i g_i(x) e_i(x)", Number: "(1)"},
		},
	}
}

// fakeGateway answers each prompt kind with a fixed payload and records every
// prompt it sees. Responses are deterministic so repeated runs produce
// identical analyses.
type fakeGateway struct {
	mu      sync.Mutex
	prompts []string

	// failOn lists prompt markers that should return an error.
	failOn []string
}

func (g *fakeGateway) Chat(_ context.Context, messages []llm.Message) (string, error) {
	prompt := messages[len(messages)-1].Content

	g.mu.Lock()
	g.prompts = append(g.prompts, prompt)
	g.mu.Unlock()

	for _, marker := range g.failOn {
		if strings.Contains(prompt, marker) {
			return "", fmt.Errorf("backend down")
		}
	}

	switch {
	case strings.Contains(prompt, "research background"):
		return `{"research_field": "efficient inference", "problem_definition": "cost of dense models", "motivation": "serve large models cheaply", "existing_limitations": "dense layers waste compute", "research_goals": "activate few experts per token"}`, nil
	case strings.Contains(prompt, "technical methods"):
		return `{"method_overview": "sparse expert routing", "innovations": ["learned router"], "key_designs": ["top-2 gating"], "implementation_details": "router trained jointly", "architecture": "MoE transformer", "architecture_type": "MoE", "model_scale": "100B total, 10B activated per token", "model_type": "LLM", "application_scenarios": ["text generation"]}`, nil
	case strings.Contains(prompt, "experimental design"):
		return `{"datasets": ["BenchA", "BenchB"], "metrics": ["exact match"], "baselines": ["dense baseline"], "setup": "two public benchmarks", "ablation_studies": "router ablations"}`, nil
	case strings.Contains(prompt, "Analyze the results of this paper"):
		return `{"main_results": "accuracy up 3 points", "performance_improvements": "+3 over dense", "key_findings": ["sparsity preserves quality"], "limitations": "routing overhead", "future_work": "larger expert counts"}`, nil
	case strings.Contains(prompt, "core keywords"):
		return `{"keywords": ["sparse routing", "mixture of experts", "inference cost"]}`, nil
	case strings.Contains(prompt, "comprehensive summary"):
		return "The paper proposes sparse expert routing and validates it on two benchmarks.", nil
	case strings.Contains(prompt, "brief summary of this paper"):
		return "Brief: sparse routing cuts inference cost.", nil
	case strings.Contains(prompt, "identify the most important figures"):
		return `{"key_figures": [1], "key_tables": [1], "key_equations": [1], "reasoning": "router figure is central"}`, nil
	case strings.Contains(prompt, "Analyze this section"):
		return `{"key_points": ["one point"], "summary": "section summary", "keywords": ["routing"]}`, nil
	default:
		return "", fmt.Errorf("unexpected prompt: %.60s", prompt)
	}
}

func (g *fakeGateway) ChatStream(ctx context.Context, messages []llm.Message, emit func(string) error) error {
	text, err := g.Chat(ctx, messages)
	if err != nil {
		return err
	}
	return emit(text)
}

func (g *fakeGateway) promptCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.prompts)
}

func newTestAnalyzer(t *testing.T, gateway *fakeGateway, parallel bool) (*Analyzer, *bytes.Buffer) {
	t.Helper()

	cfg := types.DefaultPipelineConfig()
	cfg.Parallel.Enabled = parallel
	cfg.Analyze.AnalysesDir = t.TempDir()

	var buf bytes.Buffer
	a, err := New(llm.NewHelper(gateway), cfg, &buf)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a, &buf
}

func TestAnalyze(t *testing.T) {
	gateway := &fakeGateway{}
	a, buf := newTestAnalyzer(t, gateway, false)

	analysis, err := a.Analyze(context.Background(), sampleDocument())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if analysis.Background.ResearchField != "efficient inference" {
		t.Errorf("Background.ResearchField = %q", analysis.Background.ResearchField)
	}
	if analysis.Technology.ArchitectureType != "MoE" {
		t.Errorf("Technology.ArchitectureType = %q", analysis.Technology.ArchitectureType)
	}
	if len(analysis.Experiment.Datasets) != 2 {
		t.Errorf("Experiment.Datasets = %v", analysis.Experiment.Datasets)
	}
	if analysis.Result.MainResults != "accuracy up 3 points" {
		t.Errorf("Result.MainResults = %q", analysis.Result.MainResults)
	}
	if len(analysis.Keywords) != 3 {
		t.Errorf("Keywords = %v", analysis.Keywords)
	}
	if analysis.Summary == "" {
		t.Error("Summary is empty")
	}
	if len(analysis.KeyFigures) != 1 || analysis.KeyFigures[0] != 1 {
		t.Errorf("KeyFigures = %v", analysis.KeyFigures)
	}

	for _, kind := range []types.RegionKind{
		types.RegionAbstract, types.RegionIntroduction, types.RegionMethod,
		types.RegionExperiment, types.RegionResult, types.RegionConclusion,
	} {
		if _, ok := analysis.Sections[kind]; !ok {
			t.Errorf("Sections missing %s", kind)
		}
	}
	if _, ok := analysis.Sections[types.RegionRelatedWork]; ok {
		t.Error("Sections includes related_work, which is not a main section")
	}

	if strings.Contains(buf.String(), "warning") {
		t.Errorf("unexpected warnings:\n%s", buf.String())
	}
}

func TestAnalyzeDimensionFailureIsolated(t *testing.T) {
	gateway := &fakeGateway{failOn: []string{"experimental design"}}
	a, buf := newTestAnalyzer(t, gateway, false)

	analysis, err := a.Analyze(context.Background(), sampleDocument())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if analysis.Experiment.Setup != "" || len(analysis.Experiment.Datasets) != 0 {
		t.Errorf("Experiment = %+v, want the zero record", analysis.Experiment)
	}
	if analysis.Background.ResearchField == "" {
		t.Error("Background lost alongside the failed dimension")
	}
	if analysis.Result.MainResults == "" {
		t.Error("Result lost alongside the failed dimension")
	}
	if !strings.Contains(buf.String(), "experiment extraction failed") {
		t.Errorf("missing warning, got:\n%s", buf.String())
	}
}

func TestAnalyzeSummaryFailureAborts(t *testing.T) {
	gateway := &fakeGateway{failOn: []string{"comprehensive summary"}}
	a, _ := newTestAnalyzer(t, gateway, false)

	if _, err := a.Analyze(context.Background(), sampleDocument()); err == nil {
		t.Fatal("expected an error when summary generation fails")
	}
}

func TestAnalyzeKeywordFailureIsolated(t *testing.T) {
	gateway := &fakeGateway{failOn: []string{"core keywords"}}
	a, buf := newTestAnalyzer(t, gateway, false)

	analysis, err := a.Analyze(context.Background(), sampleDocument())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(analysis.Keywords) != 0 {
		t.Errorf("Keywords = %v, want none", analysis.Keywords)
	}
	if !strings.Contains(buf.String(), "keyword extraction failed") {
		t.Errorf("missing warning, got:\n%s", buf.String())
	}
}

func TestAnalyzeParallelMatchesSequential(t *testing.T) {
	runOnce := func(parallel bool) []byte {
		a, _ := newTestAnalyzer(t, &fakeGateway{}, parallel)
		analysis, err := a.Analyze(context.Background(), sampleDocument())
		if err != nil {
			t.Fatalf("Analyze (parallel=%v): %v", parallel, err)
		}
		data, err := json.Marshal(analysis)
		if err != nil {
			t.Fatalf("marshaling analysis: %v", err)
		}
		return data
	}

	sequential := runOnce(false)
	parallel := runOnce(true)
	if !bytes.Equal(sequential, parallel) {
		t.Error("parallel and sequential runs produced different analyses")
	}
}

func TestIdentifyKeyResourcesFallback(t *testing.T) {
	gateway := &fakeGateway{failOn: []string{"identify the most important figures"}}
	a, buf := newTestAnalyzer(t, gateway, false)

	doc := sampleDocument()
	doc.Figures = make([]types.Figure, 5)
	doc.Equations = make([]types.Equation, 7)

	analysis, err := a.Analyze(context.Background(), doc)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if want := []int{1, 2, 3}; !equalInts(analysis.KeyFigures, want) {
		t.Errorf("KeyFigures = %v, want %v", analysis.KeyFigures, want)
	}
	if want := []int{1}; !equalInts(analysis.KeyTables, want) {
		t.Errorf("KeyTables = %v, want %v", analysis.KeyTables, want)
	}
	if want := []int{1, 2, 3, 4, 5}; !equalInts(analysis.KeyEquations, want) {
		t.Errorf("KeyEquations = %v, want %v", analysis.KeyEquations, want)
	}
	if !strings.Contains(buf.String(), "key-resource selection failed") {
		t.Errorf("missing warning, got:\n%s", buf.String())
	}
}

func TestIdentifyKeyResourcesNoResources(t *testing.T) {
	gateway := &fakeGateway{}
	a, _ := newTestAnalyzer(t, gateway, false)

	doc := sampleDocument()
	doc.Figures = nil
	doc.Tables = nil
	doc.Equations = nil

	analysis, err := a.Analyze(context.Background(), doc)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(analysis.KeyFigures) != 0 || len(analysis.KeyTables) != 0 || len(analysis.KeyEquations) != 0 {
		t.Error("key resources selected for a document without any")
	}
	for _, prompt := range gateway.prompts {
		if strings.Contains(prompt, "identify the most important figures") {
			t.Error("resource selection prompt sent for a document without resources")
		}
	}
}

func TestAnalyzeQuick(t *testing.T) {
	gateway := &fakeGateway{}
	a, _ := newTestAnalyzer(t, gateway, false)

	analysis, err := a.AnalyzeQuick(context.Background(), sampleDocument())
	if err != nil {
		t.Fatalf("AnalyzeQuick: %v", err)
	}

	if analysis.Summary != "Brief: sparse routing cuts inference cost." {
		t.Errorf("Summary = %q", analysis.Summary)
	}
	if len(analysis.Keywords) != 3 {
		t.Errorf("Keywords = %v", analysis.Keywords)
	}
	// Keywords plus quick summary only.
	if got := gateway.promptCount(); got != 2 {
		t.Errorf("prompt count = %d, want 2", got)
	}
	if analysis.Background.ResearchField != "" {
		t.Error("quick analysis ran dimension extraction")
	}
}

func TestAnalyzeAll(t *testing.T) {
	gateway := &fakeGateway{}
	a, buf := newTestAnalyzer(t, gateway, false)

	good := sampleDocument()
	bad := sampleDocument()
	bad.Title = "Broken Paper"
	bad.Path = "papers/broken.md"

	gateway.failOn = []string{"Broken Paper"}

	analyses, summary := a.AnalyzeAll(context.Background(), []*types.Document{good, bad})

	if summary.Analyzed != 1 || summary.Failed != 1 {
		t.Errorf("summary = %+v", summary)
	}
	if summary.Total() != 2 || !summary.HasFailures() {
		t.Errorf("Total = %d, HasFailures = %v", summary.Total(), summary.HasFailures())
	}
	if len(analyses) != 1 {
		t.Fatalf("analyses = %d, want 1", len(analyses))
	}

	path := filepath.Join(a.cfg.AnalysesDir, "sparse-routing-analysis.yaml")
	if _, err := os.Stat(path); err != nil {
		t.Errorf("analysis record not written: %v", err)
	}
	if !strings.Contains(buf.String(), "failed  Broken Paper") {
		t.Errorf("missing failure line, got:\n%s", buf.String())
	}
}

func TestAnalysisFileName(t *testing.T) {
	tests := []struct {
		name string
		doc  types.Document
		want string
	}{
		{"from path", types.Document{Path: "papers/sparse-routing.md", Title: "Other"}, "sparse-routing-analysis.yaml"},
		{"from title", types.Document{Title: "Sparse Routing: At Scale!"}, "sparse-routing-at-scale-analysis.yaml"},
		{"empty", types.Document{}, "untitled-analysis.yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AnalysisFileName(&tt.doc); got != tt.want {
				t.Errorf("AnalysisFileName = %q, want %q", got, tt.want)
			}
		})
	}
}

func equalInts(got, want []int) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}
