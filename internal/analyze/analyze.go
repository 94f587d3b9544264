// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package analyze orchestrates per-document analysis: it segments a document,
// builds bounded text windows, and fans independent inference tasks out over
// a shared worker pool. A failed dimension leaves its record at the zero
// value and is reported as a warning; it never aborts the document.
package analyze

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-lens/internal/fanout"
	"github.com/pdiddy/paper-lens/internal/llm"
	"github.com/pdiddy/paper-lens/internal/segment"
	"github.com/pdiddy/paper-lens/pkg/types"
)

// Analyzer runs the per-document analysis stage.
type Analyzer struct {
	helper   *llm.Helper
	cfg      types.AnalyzeConfig
	report   types.ReportConfig
	parallel types.ParallelConfig
	rules    *segment.RuleTable
	w        io.Writer
}

// New builds an Analyzer from the pipeline configuration. Progress and
// warnings are written to w.
func New(helper *llm.Helper, cfg types.PipelineConfig, w io.Writer) (*Analyzer, error) {
	rules, err := segment.NewRuleTable(cfg.Segment.Patterns)
	if err != nil {
		return nil, fmt.Errorf("building segmentation rules: %w", err)
	}
	return &Analyzer{
		helper:   helper,
		cfg:      cfg.Analyze,
		report:   cfg.Report,
		parallel: cfg.Parallel,
		rules:    rules,
		w:        w,
	}, nil
}

// BatchSummary holds counts from a batch analysis run.
type BatchSummary struct {
	Analyzed int
	Failed   int
}

// Total returns the number of documents processed.
func (s BatchSummary) Total() int {
	return s.Analyzed + s.Failed
}

// HasFailures reports whether any documents failed.
func (s BatchSummary) HasFailures() bool {
	return s.Failed > 0
}

// Analyze runs the full analysis of one document: dimension extraction,
// keywords, summary, key-resource selection, and per-region sub-analyses.
// Dimension, keyword, resource, and region failures degrade to warnings; a
// summary failure aborts the document.
func (a *Analyzer) Analyze(ctx context.Context, doc *types.Document) (*types.PaperAnalysis, error) {
	regions := segment.ByKind(segment.SegmentDocument(doc, a.rules))
	windows := buildWindows(doc, regions, a.cfg)

	analysis := &types.PaperAnalysis{Doc: doc}

	a.extractDimensions(ctx, doc, analysis, windows)

	if a.cfg.ExtractKeywords {
		keywords, err := a.extractKeywords(ctx, doc)
		if err != nil {
			fmt.Fprintf(a.w, "warning: keyword extraction failed for %q: %v\n", doc.Title, err)
		}
		analysis.Keywords = keywords
	}

	summary, err := a.generateSummary(ctx, doc, analysis)
	if err != nil {
		return nil, fmt.Errorf("generating summary for %q: %w", doc.Title, err)
	}
	analysis.Summary = summary

	a.identifyKeyResources(ctx, doc, analysis)

	analysis.Sections = a.analyzeSections(ctx, doc, regions)

	return analysis, nil
}

// AnalyzeQuick produces a reduced analysis: keywords and a brief summary
// only. No segmentation or dimension extraction runs.
func (a *Analyzer) AnalyzeQuick(ctx context.Context, doc *types.Document) (*types.PaperAnalysis, error) {
	analysis := &types.PaperAnalysis{Doc: doc}

	if a.cfg.ExtractKeywords {
		keywords, err := a.extractKeywords(ctx, doc)
		if err != nil {
			fmt.Fprintf(a.w, "warning: keyword extraction failed for %q: %v\n", doc.Title, err)
		}
		analysis.Keywords = keywords
	}

	prompt, err := render(quickSummaryPromptTmpl, struct {
		Title    string
		Abstract string
	}{doc.Title, doc.Abstract})
	if err != nil {
		return nil, err
	}

	summary, err := a.helper.Ask(ctx, prompt, "")
	if err != nil {
		return nil, fmt.Errorf("generating summary for %q: %w", doc.Title, err)
	}
	analysis.Summary = summary

	return analysis, nil
}

// AnalyzeAll analyzes each document in order and writes every successful
// analysis record to the analyses directory. A failed document is counted
// and skipped, never fatal for the batch.
func (a *Analyzer) AnalyzeAll(ctx context.Context, docs []*types.Document) ([]*types.PaperAnalysis, BatchSummary) {
	var (
		results []*types.PaperAnalysis
		summary BatchSummary
	)

	for _, doc := range docs {
		fmt.Fprintf(a.w, "analyzing %s\n", doc.Title)

		analysis, err := a.Analyze(ctx, doc)
		if err != nil {
			fmt.Fprintf(a.w, "failed  %s: %v\n", doc.Title, err)
			summary.Failed++
			continue
		}

		path, err := SaveAnalysis(a.cfg.AnalysesDir, analysis)
		if err != nil {
			fmt.Fprintf(a.w, "failed  %s: %v\n", doc.Title, err)
			summary.Failed++
			continue
		}

		fmt.Fprintf(a.w, "analyzed %s -> %s\n", doc.Title, path)
		results = append(results, analysis)
		summary.Analyzed++
	}

	return results, summary
}

// extractDimensions fans the configured dimensions out over the worker pool
// and applies each successful record to the analysis. Results and warnings
// are applied in dimension order regardless of completion order, so output
// is identical in parallel and sequential modes.
func (a *Analyzer) extractDimensions(ctx context.Context, doc *types.Document, analysis *types.PaperAnalysis, windows map[string]string) {
	var (
		names   []string
		tasks   []func() error
		applies []func()
	)

	for _, dim := range a.cfg.Dimensions {
		window, ok := windows[dim]
		if !ok {
			continue
		}

		switch dim {
		case "background":
			rec := new(types.BackgroundAnalysis)
			tasks = append(tasks, a.dimensionTask(ctx, dim, window, rec))
			applies = append(applies, func() { analysis.Background = *rec })
		case "technology":
			rec := new(types.TechnologyAnalysis)
			tasks = append(tasks, a.dimensionTask(ctx, dim, window, rec))
			applies = append(applies, func() { analysis.Technology = *rec })
		case "experiment":
			rec := new(types.ExperimentAnalysis)
			tasks = append(tasks, a.dimensionTask(ctx, dim, window, rec))
			applies = append(applies, func() { analysis.Experiment = *rec })
		case "result":
			rec := new(types.ResultAnalysis)
			tasks = append(tasks, a.dimensionTask(ctx, dim, window, rec))
			applies = append(applies, func() { analysis.Result = *rec })
		default:
			fmt.Fprintf(a.w, "warning: unknown dimension %q skipped\n", dim)
			continue
		}
		names = append(names, dim)
	}

	errs := fanout.Run(a.parallel.Enabled, a.parallel.MaxWorkers, tasks)
	for i, err := range errs {
		if err != nil {
			fmt.Fprintf(a.w, "warning: %s extraction failed for %q: %v\n", names[i], doc.Title, err)
			continue
		}
		applies[i]()
	}
}

// dimensionTask returns a task that extracts one dimension into rec. rec is
// written only by this task, so the fan-out needs no locking.
func (a *Analyzer) dimensionTask(ctx context.Context, dim, window string, rec any) func() error {
	return func() error {
		prompt, err := render(dimensionPrompts[dim], struct{ Content string }{window})
		if err != nil {
			return err
		}
		return a.helper.ExtractJSON(ctx, prompt, rec)
	}
}

func (a *Analyzer) extractKeywords(ctx context.Context, doc *types.Document) ([]string, error) {
	numKeywords := a.cfg.NumKeywords
	if numKeywords <= 0 {
		numKeywords = 10
	}

	prompt, err := render(keywordsPromptTmpl, struct {
		NumKeywords int
		Title       string
		Abstract    string
		Content     string
	}{numKeywords, doc.Title, doc.Abstract, clip(doc.FullText, 3000)})
	if err != nil {
		return nil, err
	}

	var out struct {
		Keywords []string `json:"keywords"`
	}
	if err := a.helper.ExtractJSON(ctx, prompt, &out); err != nil {
		return nil, err
	}
	return out.Keywords, nil
}

func (a *Analyzer) generateSummary(ctx context.Context, doc *types.Document, analysis *types.PaperAnalysis) (string, error) {
	language := strings.ToLower(a.report.Language)
	if language != "chinese" {
		language = "english"
	}
	languageName := "English"
	if language == "chinese" {
		languageName = "Chinese"
	}

	prompt, err := render(summaryPromptTmpl, struct {
		Language    string
		Title       string
		Abstract    string
		Background  string
		Technology  string
		Experiment  string
		Result      string
		DetailLevel string
	}{
		Language:    languageName,
		Title:       doc.Title,
		Abstract:    doc.Abstract,
		Background:  analysis.Background.Motivation,
		Technology:  analysis.Technology.MethodOverview,
		Experiment:  strings.Join(analysis.Experiment.Datasets, ", "),
		Result:      analysis.Result.MainResults,
		DetailLevel: summaryDetail(language, a.report.SummaryLevel),
	})
	if err != nil {
		return "", err
	}

	return a.helper.Ask(ctx, prompt, "")
}

// summaryDetail maps the configured summary level to the wording the summary
// prompt uses, in the report language.
func summaryDetail(language, level string) string {
	english := map[string]string{
		"brief":         "brief (200-300 words)",
		"detailed":      "detailed (400-600 words)",
		"comprehensive": "comprehensive (800-1000 words)",
	}
	chinese := map[string]string{
		"brief":         "简短（200-300字）",
		"detailed":      "详细（400-600字）",
		"comprehensive": "全面（800-1000字）",
	}

	m := english
	if language == "chinese" {
		m = chinese
	}
	if detail, ok := m[level]; ok {
		return detail
	}
	return m["detailed"]
}

// analyzeSections runs a sub-analysis for each whitelisted region, fanned out
// over the worker pool. A failed region is reported and omitted from the map.
func (a *Analyzer) analyzeSections(ctx context.Context, doc *types.Document, regions map[types.RegionKind]types.Region) map[types.RegionKind]types.SectionAnalysis {
	mainKinds := []types.RegionKind{
		types.RegionAbstract,
		types.RegionIntroduction,
		types.RegionMethod,
		types.RegionExperiment,
		types.RegionResult,
		types.RegionConclusion,
	}

	type sectionResult struct {
		kind    types.RegionKind
		content string
		out     struct {
			KeyPoints []string `json:"key_points"`
			Summary   string   `json:"summary"`
			Keywords  []string `json:"keywords"`
		}
	}

	var (
		slots []*sectionResult
		tasks []func() error
	)

	for _, kind := range mainKinds {
		region, ok := regions[kind]
		if !ok || region.Content == "" {
			continue
		}

		slot := &sectionResult{kind: kind, content: clip(region.Content, 2000)}
		slots = append(slots, slot)
		tasks = append(tasks, func() error {
			prompt, err := render(sectionPromptTmpl, struct {
				Kind    types.RegionKind
				Content string
			}{slot.kind, slot.content})
			if err != nil {
				return err
			}
			return a.helper.ExtractJSON(ctx, prompt, &slot.out)
		})
	}

	result := make(map[types.RegionKind]types.SectionAnalysis)

	errs := fanout.Run(a.parallel.Enabled, a.parallel.MaxWorkers, tasks)
	for i, err := range errs {
		slot := slots[i]
		if err != nil {
			fmt.Fprintf(a.w, "warning: section analysis failed for %q %s: %v\n", doc.Title, slot.kind, err)
			continue
		}
		result[slot.kind] = types.SectionAnalysis{
			Kind:            slot.kind,
			OriginalContent: slot.content,
			KeyPoints:       slot.out.KeyPoints,
			Summary:         slot.out.Summary,
			Keywords:        slot.out.Keywords,
		}
	}

	return result
}

// slugPattern matches runs of characters that do not belong in a file name.
var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// AnalysisFileName derives the analysis record file name for a document: the
// source file stem when a path is known, otherwise a slug of the title.
func AnalysisFileName(doc *types.Document) string {
	stem := ""
	if doc.Path != "" {
		base := filepath.Base(doc.Path)
		stem = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if stem == "" {
		stem = strings.Trim(slugPattern.ReplaceAllString(strings.ToLower(doc.Title), "-"), "-")
	}
	if stem == "" {
		stem = "untitled"
	}
	return stem + "-analysis.yaml"
}

// SaveAnalysis writes the analysis record as YAML into dir and returns the
// file path.
func SaveAnalysis(dir string, analysis *types.PaperAnalysis) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating analyses directory: %w", err)
	}

	data, err := yaml.Marshal(analysis)
	if err != nil {
		return "", fmt.Errorf("marshaling analysis: %w", err)
	}

	path := filepath.Join(dir, AnalysisFileName(analysis.Doc))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing analysis %s: %w", path, err)
	}
	return path, nil
}
