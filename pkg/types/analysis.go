// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// The four dimension records below are deliberately flat: every field that a
// model response may omit is declared with an explicit zero default, so
// consumers read fields unconditionally instead of probing for presence.
// A failed extraction leaves the whole record at its zero value.

// BackgroundAnalysis captures the research-background dimension of a document.
type BackgroundAnalysis struct {
	ResearchField       string `json:"research_field" yaml:"research_field"`
	ProblemDefinition   string `json:"problem_definition" yaml:"problem_definition"`
	Motivation          string `json:"motivation" yaml:"motivation"`
	ExistingLimitations string `json:"existing_limitations" yaml:"existing_limitations"`
	ResearchGoals       string `json:"research_goals" yaml:"research_goals"`
}

// TechnologyAnalysis captures the technical-method dimension, including the
// architecture metadata the aggregator's architecture axis depends on.
type TechnologyAnalysis struct {
	MethodOverview        string   `json:"method_overview" yaml:"method_overview"`
	Innovations           []string `json:"innovations" yaml:"innovations"`
	KeyDesigns            []string `json:"key_designs" yaml:"key_designs"`
	ImplementationDetails string   `json:"implementation_details" yaml:"implementation_details"`
	Architecture          string   `json:"architecture" yaml:"architecture"`

	// ArchitectureType is one of MoE, Dense, Hybrid, or Other.
	ArchitectureType string `json:"architecture_type" yaml:"architecture_type"`

	// ModelScale is free text, e.g. "671B total, 37B activated per token".
	ModelScale string `json:"model_scale" yaml:"model_scale"`

	// ModelType is the primary model category: LLM, Multimodal, Vision,
	// Audio, Code, Reasoning, or Other.
	ModelType string `json:"model_type" yaml:"model_type"`

	ApplicationScenarios []string `json:"application_scenarios" yaml:"application_scenarios"`
}

// ExperimentAnalysis captures the experimental-design dimension.
type ExperimentAnalysis struct {
	Datasets       []string `json:"datasets" yaml:"datasets"`
	Metrics        []string `json:"metrics" yaml:"metrics"`
	Baselines      []string `json:"baselines" yaml:"baselines"`
	Setup          string   `json:"setup" yaml:"setup"`
	AblationStudies string  `json:"ablation_studies" yaml:"ablation_studies"`
}

// ResultAnalysis captures the results dimension.
type ResultAnalysis struct {
	MainResults             string   `json:"main_results" yaml:"main_results"`
	PerformanceImprovements string   `json:"performance_improvements" yaml:"performance_improvements"`
	KeyFindings             []string `json:"key_findings" yaml:"key_findings"`
	Limitations             string   `json:"limitations" yaml:"limitations"`
	FutureWork              string   `json:"future_work" yaml:"future_work"`
}

// SectionAnalysis is the per-region sub-analysis produced for whitelisted
// region kinds.
type SectionAnalysis struct {
	Kind            RegionKind `json:"kind" yaml:"kind"`
	OriginalContent string     `json:"original_content" yaml:"original_content"`
	KeyPoints       []string   `json:"key_points" yaml:"key_points"`
	Summary         string     `json:"summary" yaml:"summary"`
	Keywords        []string   `json:"keywords" yaml:"keywords"`
}

// PaperAnalysis is the complete per-document analysis record. It is created
// once by the analyzer and never mutated afterwards.
type PaperAnalysis struct {
	// Doc references the analyzed document. Owned by the caller for the
	// lifetime of one pipeline run.
	Doc *Document `json:"document" yaml:"document"`

	Background BackgroundAnalysis `json:"background" yaml:"background"`
	Technology TechnologyAnalysis `json:"technology" yaml:"technology"`
	Experiment ExperimentAnalysis `json:"experiment" yaml:"experiment"`
	Result     ResultAnalysis     `json:"result" yaml:"result"`

	Keywords []string `json:"keywords" yaml:"keywords"`
	Summary  string   `json:"summary" yaml:"summary"`

	// Sections holds per-region sub-analyses keyed by region kind.
	Sections map[RegionKind]SectionAnalysis `json:"sections" yaml:"sections"`

	// KeyFigures, KeyTables, and KeyEquations are 1-based indices into the
	// document's resource slices identifying the resources worth surfacing
	// in a report.
	KeyFigures   []int `json:"key_figures" yaml:"key_figures"`
	KeyTables    []int `json:"key_tables" yaml:"key_tables"`
	KeyEquations []int `json:"key_equations" yaml:"key_equations"`
}

// Title returns the analyzed document's title.
func (a *PaperAnalysis) Title() string {
	if a.Doc == nil {
		return ""
	}
	return a.Doc.Title
}

// Authors returns the analyzed document's author list.
func (a *PaperAnalysis) Authors() []string {
	if a.Doc == nil {
		return nil
	}
	return a.Doc.Authors
}
