// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package aggregate builds batch-level knowledge across analyzed documents:
// a per-axis comparison matrix, a development timeline, technology trends,
// and an overall summary. Axis, timeline, and trend failures degrade to
// warnings and empty sections; only an empty batch is an error.
package aggregate

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pdiddy/paper-lens/internal/fanout"
	"github.com/pdiddy/paper-lens/internal/llm"
	"github.com/pdiddy/paper-lens/pkg/types"
)

// Aggregator runs the cross-document aggregation stage.
type Aggregator struct {
	helper   *llm.Helper
	cfg      types.AggregateConfig
	report   types.ReportConfig
	parallel types.ParallelConfig
	w        io.Writer
}

// New builds an Aggregator from the pipeline configuration. Progress and
// warnings are written to w.
func New(helper *llm.Helper, cfg types.PipelineConfig, w io.Writer) *Aggregator {
	return &Aggregator{
		helper:   helper,
		cfg:      cfg.Aggregate,
		report:   cfg.Report,
		parallel: cfg.Parallel,
		w:        w,
	}
}

// Aggregate builds the batch-level knowledge record. A single-document batch
// short-circuits to that document's summary without any inference calls. A
// non-empty instruction switches to custom mode: one free-form analysis call
// and no comparison matrix, timeline, or trends.
func (g *Aggregator) Aggregate(ctx context.Context, analyses []*types.PaperAnalysis, instruction string) (*types.AggregatedKnowledge, error) {
	if len(analyses) == 0 {
		return nil, fmt.Errorf("no analyses to aggregate")
	}

	if len(analyses) == 1 {
		return &types.AggregatedKnowledge{
			Papers:         analyses,
			OverallSummary: analyses[0].Summary,
		}, nil
	}

	digest := papersDigest(analyses)

	if instruction != "" {
		return g.customAnalysis(ctx, analyses, digest, instruction)
	}
	return g.defaultAnalysis(ctx, analyses, digest)
}

// customAnalysis answers a free-form instruction over the batch digest.
func (g *Aggregator) customAnalysis(ctx context.Context, analyses []*types.PaperAnalysis, digest, instruction string) (*types.AggregatedKnowledge, error) {
	fmt.Fprintf(g.w, "custom analysis: %s\n", instruction)

	prompt, err := render(customAnalysisPromptTmpl, struct {
		Instruction string
		Digest      string
		Language    string
	}{instruction, digest, languageName(g.report.Language)})
	if err != nil {
		return nil, err
	}

	summary, err := g.helper.Ask(ctx, prompt, "")
	if err != nil {
		return nil, fmt.Errorf("custom analysis: %w", err)
	}

	return &types.AggregatedKnowledge{
		Papers:         analyses,
		OverallSummary: summary,
		CustomAnalysis: instruction,
	}, nil
}

// axisResult is the decoded payload of one comparison-axis call.
type axisResult struct {
	Comparison   map[string]string `json:"comparison"`
	Similarities []string          `json:"similarities"`
	Differences  []string          `json:"differences"`
	Analysis     string            `json:"analysis"`
}

type timelineResult struct {
	Timeline []struct {
		PaperTitle      string `json:"paper_title"`
		Date            string `json:"date"`
		KeyContribution string `json:"key_contribution"`
		Order           int    `json:"order"`
	} `json:"timeline"`
}

type trendsResult struct {
	Trends []struct {
		TrendName   string   `json:"trend_name"`
		Description string   `json:"description"`
		Evidence    []string `json:"evidence"`
		Papers      []string `json:"papers"`
	} `json:"trends"`
	CommonThemes     []string `json:"common_themes"`
	KeyDifferences   []string `json:"key_differences"`
	FutureDirections []string `json:"future_directions"`
}

// defaultAnalysis runs the full aggregation: every comparison axis, the
// timeline, and the trend pass fan out as independent tasks over the worker
// pool; their results are applied in a fixed order so parallel and sequential
// runs produce identical records. The overall summary runs last because it
// consumes the matrix and trends.
func (g *Aggregator) defaultAnalysis(ctx context.Context, analyses []*types.PaperAnalysis, digest string) (*types.AggregatedKnowledge, error) {
	knowledge := &types.AggregatedKnowledge{Papers: analyses}

	var (
		names   []string
		tasks   []func() error
		applies []func()
	)

	axisResults := make([]axisResult, len(g.cfg.ComparisonAxes))
	for i, axis := range g.cfg.ComparisonAxes {
		names = append(names, fmt.Sprintf("comparison axis %q", axis))
		tasks = append(tasks, func() error {
			return g.compareAxis(ctx, axis, digest, &axisResults[i])
		})
		applies = append(applies, func() {
			knowledge.ComparisonMatrix = append(knowledge.ComparisonMatrix, types.ComparisonItem{
				Axis:   axis,
				Papers: axisResults[i].Comparison,
			})
			knowledge.CommonThemes = append(knowledge.CommonThemes, axisResults[i].Similarities...)
			knowledge.KeyDifferences = append(knowledge.KeyDifferences, axisResults[i].Differences...)
		})
	}

	var timeline timelineResult
	if g.cfg.GenerateTimeline {
		names = append(names, "timeline")
		tasks = append(tasks, func() error {
			prompt, err := render(timelinePromptTmpl, struct{ Digest string }{digest})
			if err != nil {
				return err
			}
			return g.helper.ExtractJSON(ctx, prompt, &timeline)
		})
		applies = append(applies, func() {
			for _, item := range timeline.Timeline {
				knowledge.Timeline = append(knowledge.Timeline, types.TimelineItem{
					PaperTitle:   item.PaperTitle,
					Date:         item.Date,
					Contribution: item.KeyContribution,
					Order:        item.Order,
				})
			}
			sort.SliceStable(knowledge.Timeline, func(a, b int) bool {
				return knowledge.Timeline[a].Order < knowledge.Timeline[b].Order
			})
		})
	}

	var trends trendsResult
	if g.cfg.AnalyzeTrends {
		names = append(names, "trends")
		tasks = append(tasks, func() error {
			prompt, err := render(trendPromptTmpl, struct{ Digest string }{digest})
			if err != nil {
				return err
			}
			return g.helper.ExtractJSON(ctx, prompt, &trends)
		})
		applies = append(applies, func() {
			for _, item := range trends.Trends {
				knowledge.Trends = append(knowledge.Trends, types.TrendItem{
					Name:        item.TrendName,
					Description: item.Description,
					Evidence:    item.Evidence,
					Papers:      item.Papers,
				})
			}
			// Themes and differences from the axis passes win; the trend
			// pass only fills them in when every axis came back empty.
			if len(knowledge.CommonThemes) == 0 {
				knowledge.CommonThemes = trends.CommonThemes
			}
			if len(knowledge.KeyDifferences) == 0 {
				knowledge.KeyDifferences = trends.KeyDifferences
			}
		})
	}

	errs := fanout.Run(g.parallel.Enabled, g.parallel.MaxWorkers, tasks)
	for i, err := range errs {
		if err != nil {
			fmt.Fprintf(g.w, "warning: %s failed: %v\n", names[i], err)
			continue
		}
		applies[i]()
	}

	summary, err := g.overallSummary(ctx, digest, knowledge)
	if err != nil {
		return nil, fmt.Errorf("generating overall summary: %w", err)
	}
	knowledge.OverallSummary = summary

	return knowledge, nil
}

// compareAxis runs one comparison-axis call. The architecture axis uses its
// own stricter prompt.
func (g *Aggregator) compareAxis(ctx context.Context, axis, digest string, out *axisResult) error {
	var (
		prompt string
		err    error
	)
	if strings.EqualFold(axis, "architecture") {
		prompt, err = render(architectureComparisonPromptTmpl, struct{ Digest string }{digest})
	} else {
		prompt, err = render(comparisonPromptTmpl, struct{ Digest, Axis string }{digest, axis})
	}
	if err != nil {
		return err
	}
	return g.helper.ExtractJSON(ctx, prompt, out)
}

func (g *Aggregator) overallSummary(ctx context.Context, digest string, knowledge *types.AggregatedKnowledge) (string, error) {
	var comparison strings.Builder
	for _, item := range knowledge.ComparisonMatrix {
		fmt.Fprintf(&comparison, "\n%s:\n", item.Axis)
		for _, title := range sortedKeys(item.Papers) {
			fmt.Fprintf(&comparison, "  - %s: %s\n", title, item.Papers[title])
		}
	}

	var trends strings.Builder
	for _, trend := range knowledge.Trends {
		fmt.Fprintf(&trends, "\n- %s: %s\n", trend.Name, trend.Description)
	}

	prompt, err := render(overallSummaryPromptTmpl, struct {
		Digest     string
		Comparison string
		Trends     string
		Language   string
	}{clip(digest, 3000), clip(comparison.String(), 1500), clip(trends.String(), 1000), languageName(g.report.Language)})
	if err != nil {
		return "", err
	}

	return g.helper.Ask(ctx, prompt, "")
}

// TwoPaperComparison is the decoded result of a head-to-head comparison.
type TwoPaperComparison struct {
	Similarities     []string `json:"similarities"`
	Differences      []string `json:"differences"`
	Paper1Advantages []string `json:"paper1_advantages"`
	Paper2Advantages []string `json:"paper2_advantages"`
	Conclusion       string   `json:"conclusion"`
}

// CompareTwo runs a detailed head-to-head comparison of two analyses.
func (g *Aggregator) CompareTwo(ctx context.Context, first, second *types.PaperAnalysis) (*TwoPaperComparison, error) {
	prompt, err := render(compareTwoPromptTmpl, struct {
		Title1, Abstract1, Method1, Innovations1, Results1 string
		Title2, Abstract2, Method2, Innovations2, Results2 string
	}{
		Title1:       first.Title(),
		Abstract1:    docAbstract(first),
		Method1:      valueOr(first.Technology.MethodOverview, "N/A"),
		Innovations1: joinOr(first.Technology.Innovations, "N/A"),
		Results1:     valueOr(first.Result.MainResults, "N/A"),
		Title2:       second.Title(),
		Abstract2:    docAbstract(second),
		Method2:      valueOr(second.Technology.MethodOverview, "N/A"),
		Innovations2: joinOr(second.Technology.Innovations, "N/A"),
		Results2:     valueOr(second.Result.MainResults, "N/A"),
	})
	if err != nil {
		return nil, err
	}

	var out TwoPaperComparison
	if err := g.helper.ExtractJSON(ctx, prompt, &out); err != nil {
		return nil, fmt.Errorf("comparing %q and %q: %w", first.Title(), second.Title(), err)
	}
	return &out, nil
}

func docAbstract(a *types.PaperAnalysis) string {
	if a.Doc == nil {
		return ""
	}
	return a.Doc.Abstract
}

// languageName normalizes the configured report language to a prompt-ready
// name. Anything other than chinese falls back to English.
func languageName(language string) string {
	if strings.ToLower(language) == "chinese" {
		return "Chinese"
	}
	return "English"
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
