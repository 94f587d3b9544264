// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report renders analysis records into Markdown reports. Rendering is
// purely local: every inference call happened in earlier stages, so a report
// can be regenerated from stored records at any time.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pdiddy/paper-lens/pkg/types"
)

// labels maps section label keys to their text per report language.
var labels = map[string]map[string]string{
	"english": {
		"authors":                  "Authors",
		"keywords":                 "Keywords",
		"summary":                  "Summary",
		"research_background":      "Research Background",
		"research_field":           "Research Field",
		"problem":                  "Problem",
		"motivation":               "Motivation",
		"existing_limitations":     "Existing Limitations",
		"technical_method":         "Technical Method",
		"method_overview":          "Method Overview",
		"innovations":              "Innovations",
		"key_designs":              "Key Designs",
		"architecture":             "Architecture",
		"experiments":              "Experiments",
		"datasets":                 "Datasets",
		"metrics":                  "Metrics",
		"baselines":                "Baselines",
		"setup":                    "Setup",
		"ablation_studies":         "Ablation Studies",
		"results":                  "Results",
		"main_results":             "Main Results",
		"performance_improvements": "Performance Improvements",
		"key_findings":             "Key Findings",
		"limitations":              "Limitations",
		"future_work":              "Future Work",
		"papers_analyzed":          "Papers Analyzed",
		"overall_summary":          "Overall Summary",
		"comparison_matrix":        "Comparison Matrix",
		"paper":                    "Paper",
		"description":              "Description",
		"common_themes":            "Common Themes",
		"key_differences":          "Key Differences",
		"individual_summaries":     "Individual Paper Summaries",
		"technology_timeline":      "Technology Timeline",
		"identified_trends":        "Identified Trends",
		"evidence":                 "Evidence",
		"comparison_title":         "Paper Comparison Analysis",
		"trend_title":              "Technology Trend Analysis",
		"key_resources":            "Key Resources",
		"key_figures":              "Key Figures",
		"key_tables":               "Key Tables",
		"key_equations":            "Key Equations",
	},
	"chinese": {
		"authors":                  "作者",
		"keywords":                 "关键词",
		"summary":                  "摘要",
		"research_background":      "研究背景",
		"research_field":           "研究领域",
		"problem":                  "问题定义",
		"motivation":               "研究动机",
		"existing_limitations":     "现有方法的局限性",
		"technical_method":         "技术方法",
		"method_overview":          "方法概述",
		"innovations":              "创新点",
		"key_designs":              "关键设计",
		"architecture":             "架构",
		"experiments":              "实验",
		"datasets":                 "数据集",
		"metrics":                  "评估指标",
		"baselines":                "基线方法",
		"setup":                    "实验设置",
		"ablation_studies":         "消融实验",
		"results":                  "结果",
		"main_results":             "主要结果",
		"performance_improvements": "性能提升",
		"key_findings":             "主要发现",
		"limitations":              "局限性",
		"future_work":              "未来工作",
		"papers_analyzed":          "分析的论文",
		"overall_summary":          "总体概述",
		"comparison_matrix":        "对比矩阵",
		"paper":                    "论文",
		"description":              "描述",
		"common_themes":            "共同主题",
		"key_differences":          "关键差异",
		"individual_summaries":     "各论文摘要",
		"technology_timeline":      "技术时间线",
		"identified_trends":        "识别的趋势",
		"evidence":                 "证据",
		"comparison_title":         "论文对比分析",
		"trend_title":              "技术趋势分析",
		"key_resources":            "关键资源",
		"key_figures":              "关键图片",
		"key_tables":               "关键表格",
		"key_equations":            "关键公式",
	},
}

// Generator renders reports in the configured language.
type Generator struct {
	cfg types.ReportConfig
	t   map[string]string

	// now supplies report timestamps. Tests substitute a fixed clock.
	now func() time.Time
}

// New builds a Generator. Unknown languages fall back to English.
func New(cfg types.ReportConfig) *Generator {
	language := strings.ToLower(cfg.Language)
	if language != "chinese" {
		language = "english"
	}
	return &Generator{
		cfg: cfg,
		t:   labels[language],
		now: time.Now,
	}
}

// Generate renders a report of the given kind over the analyses and, for the
// batch kinds, the aggregated knowledge. An empty title derives one from the
// kind and batch size.
func (g *Generator) Generate(kind types.ReportKind, analyses []*types.PaperAnalysis, knowledge *types.AggregatedKnowledge, title string) (*types.Report, error) {
	var content string

	switch kind {
	case types.ReportSingle:
		if len(analyses) == 0 {
			return nil, fmt.Errorf("single report needs one analysis")
		}
		if title == "" {
			title = "Reading Notes: " + analyses[0].Title()
		}
		content = g.renderSingle(analyses[0])

	case types.ReportComparison:
		if len(analyses) < 2 {
			return nil, fmt.Errorf("comparison report needs at least two analyses")
		}
		if title == "" {
			title = fmt.Sprintf("Paper Comparison Analysis (%d papers)", len(analyses))
		}
		content = g.renderComparison(analyses, knowledge)

	case types.ReportTrend:
		if len(analyses) == 0 {
			return nil, fmt.Errorf("trend report needs at least one analysis")
		}
		if title == "" {
			title = fmt.Sprintf("Technology Trend Analysis (%d papers)", len(analyses))
		}
		content = g.renderTrend(analyses, knowledge)

	default:
		return nil, fmt.Errorf("unknown report kind %q", kind)
	}

	titles := make([]string, len(analyses))
	for i, a := range analyses {
		titles[i] = a.Title()
	}

	return &types.Report{
		Kind:        kind,
		Title:       title,
		Content:     content,
		GeneratedAt: g.now(),
		Papers:      titles,
	}, nil
}

func (g *Generator) renderSingle(a *types.PaperAnalysis) string {
	var b builder

	b.line("# %s\n", a.Title())
	if authors := a.Authors(); len(authors) > 0 {
		b.line("**%s:** %s\n", g.t["authors"], strings.Join(authors, ", "))
	}
	if len(a.Keywords) > 0 {
		b.line("**%s:** %s\n", g.t["keywords"], strings.Join(a.Keywords, ", "))
	}
	b.blank()

	b.line("## %s\n", g.t["summary"])
	summary := a.Summary
	if summary == "" && a.Doc != nil {
		summary = a.Doc.Abstract
	}
	b.line("%s", summary)
	b.blank()

	b.line("## %s\n", g.t["research_background"])
	b.field(g.t["research_field"], a.Background.ResearchField)
	b.field(g.t["problem"], a.Background.ProblemDefinition)
	b.field(g.t["motivation"], a.Background.Motivation)
	b.field(g.t["existing_limitations"], a.Background.ExistingLimitations)
	b.blank()

	b.line("## %s\n", g.t["technical_method"])
	b.field("Model Type", a.Technology.ModelType)
	if len(a.Technology.ApplicationScenarios) > 0 {
		b.field("Application Scenarios", strings.Join(a.Technology.ApplicationScenarios, ", "))
	}
	b.field(g.t["method_overview"], a.Technology.MethodOverview)
	b.numbered(g.t["innovations"], a.Technology.Innovations)
	b.numbered(g.t["key_designs"], a.Technology.KeyDesigns)
	b.field(g.t["architecture"], a.Technology.Architecture)
	b.blank()

	b.line("## %s\n", g.t["experiments"])
	b.field(g.t["datasets"], strings.Join(a.Experiment.Datasets, ", "))
	b.field(g.t["metrics"], strings.Join(a.Experiment.Metrics, ", "))
	b.field(g.t["baselines"], strings.Join(a.Experiment.Baselines, ", "))
	b.field(g.t["setup"], a.Experiment.Setup)
	b.field(g.t["ablation_studies"], a.Experiment.AblationStudies)
	b.blank()

	b.line("## %s\n", g.t["results"])
	b.field(g.t["main_results"], a.Result.MainResults)
	b.field(g.t["performance_improvements"], a.Result.PerformanceImprovements)
	b.numbered(g.t["key_findings"], a.Result.KeyFindings)
	b.field(g.t["limitations"], a.Result.Limitations)
	b.field(g.t["future_work"], a.Result.FutureWork)
	b.blank()

	g.renderResources(&b, []*types.PaperAnalysis{a})

	return b.String()
}

func (g *Generator) renderComparison(analyses []*types.PaperAnalysis, knowledge *types.AggregatedKnowledge) string {
	var b builder

	b.line("# %s\n", g.t["comparison_title"])

	b.line("## %s\n", g.t["papers_analyzed"])
	for i, a := range analyses {
		b.line("%d. **%s**", i+1, a.Title())
		if authors := a.Authors(); len(authors) > 0 {
			b.line("   - %s: %s", g.t["authors"], strings.Join(authors, ", "))
		}
	}
	b.blank()

	if knowledge != nil {
		if knowledge.OverallSummary != "" {
			b.line("## %s\n", g.t["overall_summary"])
			b.line("%s", knowledge.OverallSummary)
			b.blank()
		}

		if len(knowledge.ComparisonMatrix) > 0 {
			b.line("## %s\n", g.t["comparison_matrix"])
			for _, item := range knowledge.ComparisonMatrix {
				b.line("### %s\n", item.Axis)
				b.line("| %s | %s |", g.t["paper"], g.t["description"])
				b.line("|-------|-------------|")
				for _, title := range sortedKeys(item.Papers) {
					b.line("| %s | %s |", title, item.Papers[title])
				}
				b.blank()
			}
		}

		g.renderThemes(&b, knowledge)
	}

	b.line("## %s\n", g.t["individual_summaries"])
	for _, a := range analyses {
		b.line("### %s\n", a.Title())
		b.field("Model Type", a.Technology.ModelType)
		if len(a.Technology.ApplicationScenarios) > 0 {
			b.field("Application Scenarios", strings.Join(a.Technology.ApplicationScenarios, ", "))
		}
		summary := a.Summary
		if summary == "" && a.Doc != nil {
			summary = clipText(a.Doc.Abstract, 500) + "..."
		}
		b.line("%s", summary)
		b.blank()
	}

	g.renderResources(&b, analyses)

	return b.String()
}

func (g *Generator) renderTrend(analyses []*types.PaperAnalysis, knowledge *types.AggregatedKnowledge) string {
	var b builder

	b.line("# %s\n", g.t["trend_title"])

	b.line("## %s\n", g.t["papers_analyzed"])
	for i, a := range analyses {
		b.line("%d. %s", i+1, a.Title())
	}
	b.blank()

	if knowledge != nil {
		if knowledge.OverallSummary != "" {
			b.line("## %s\n", g.t["overall_summary"])
			b.line("%s", knowledge.OverallSummary)
			b.blank()
		}

		if len(knowledge.Timeline) > 0 {
			b.line("## %s\n", g.t["technology_timeline"])
			for _, item := range knowledge.Timeline {
				date := ""
				if item.Date != "" {
					date = fmt.Sprintf(" (%s)", item.Date)
				}
				b.line("**%d. %s**%s", item.Order, item.PaperTitle, date)
				b.line("   - %s", item.Contribution)
				b.blank()
			}
		}

		if len(knowledge.Trends) > 0 {
			b.line("## %s\n", g.t["identified_trends"])
			for _, trend := range knowledge.Trends {
				b.line("### %s\n", trend.Name)
				b.line("%s\n", trend.Description)
				if len(trend.Evidence) > 0 {
					b.line("**%s:**", g.t["evidence"])
					for _, ev := range trend.Evidence {
						b.line("- %s", ev)
					}
				}
				b.blank()
			}
		}

		g.renderThemes(&b, knowledge)
	}

	return b.String()
}

func (g *Generator) renderThemes(b *builder, knowledge *types.AggregatedKnowledge) {
	if len(knowledge.CommonThemes) > 0 {
		b.line("## %s\n", g.t["common_themes"])
		for _, theme := range knowledge.CommonThemes {
			b.line("- %s", theme)
		}
		b.blank()
	}
	if len(knowledge.KeyDifferences) > 0 {
		b.line("## %s\n", g.t["key_differences"])
		for _, diff := range knowledge.KeyDifferences {
			b.line("- %s", diff)
		}
		b.blank()
	}
}

// renderResources appends the key-resource appendix: the figures, tables, and
// equations each analysis marked as key, pulled from the source documents by
// their 1-based indices. Out-of-range indices are ignored.
func (g *Generator) renderResources(b *builder, analyses []*types.PaperAnalysis) {
	var withResources []*types.PaperAnalysis
	for _, a := range analyses {
		if a.Doc != nil && (len(a.KeyFigures) > 0 || len(a.KeyTables) > 0 || len(a.KeyEquations) > 0) {
			withResources = append(withResources, a)
		}
	}
	if len(withResources) == 0 {
		return
	}

	b.line("---\n")
	b.line("## %s\n", g.t["key_resources"])

	for _, a := range withResources {
		b.line("### %s\n", a.Title())

		if figures := pick(a.Doc.Figures, a.KeyFigures); len(figures) > 0 {
			b.line("#### %s\n", g.t["key_figures"])
			for _, fig := range figures {
				caption := fig.Caption
				if caption == "" {
					caption = fmt.Sprintf("Figure on page %d", fig.Page)
				}
				b.line("**%s**\n", caption)
			}
		}

		if tables := pick(a.Doc.Tables, a.KeyTables); len(tables) > 0 {
			b.line("#### %s\n", g.t["key_tables"])
			for _, table := range tables {
				caption := table.Caption
				if caption == "" {
					caption = fmt.Sprintf("Table on page %d", table.Page)
				}
				b.line("**%s**\n", caption)
				if table.Content != "" {
					b.line("```\n%s\n```\n", table.Content)
				}
			}
		}

		if equations := pick(a.Doc.Equations, a.KeyEquations); len(equations) > 0 {
			b.line("#### %s\n", g.t["key_equations"])
			for _, eq := range equations {
				if eq.Number != "" {
					b.line("%s: %s\n", eq.Number, eq.Text)
				} else {
					b.line("%s\n", eq.Text)
				}
			}
		}
	}
}

// Save writes a report to path. The extension selects the format: .json
// serializes the full record, anything else writes the Markdown content.
func Save(report *types.Report, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating report directory: %w", err)
		}
	}

	var data []byte
	if strings.EqualFold(filepath.Ext(path), ".json") {
		var err error
		data, err = json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling report: %w", err)
		}
	} else {
		data = []byte(report.Content)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing report %s: %w", path, err)
	}
	return nil
}

// pick selects items by 1-based indices, skipping any out of range.
func pick[T any](items []T, indices []int) []T {
	var out []T
	for _, idx := range indices {
		if idx >= 1 && idx <= len(items) {
			out = append(out, items[idx-1])
		}
	}
	return out
}

// builder accumulates Markdown lines.
type builder struct {
	lines []string
}

func (b *builder) line(format string, args ...any) {
	b.lines = append(b.lines, fmt.Sprintf(format, args...))
}

func (b *builder) blank() {
	b.lines = append(b.lines, "")
}

// field emits a bold "label: value" line, skipping empty values.
func (b *builder) field(label, value string) {
	if value != "" {
		b.line("**%s:** %s\n", label, value)
	}
}

// numbered emits a bold label followed by a numbered list, skipping empty lists.
func (b *builder) numbered(label string, items []string) {
	if len(items) == 0 {
		return
	}
	b.line("**%s:**", label)
	for i, item := range items {
		b.line("  %d. %s", i+1, item)
	}
	b.blank()
}

func (b *builder) String() string {
	return strings.Join(b.lines, "\n")
}

func clipText(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
