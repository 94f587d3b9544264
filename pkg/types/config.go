package types

import "time"

// LLMConfig holds settings for the remote text-generation gateway.
type LLMConfig struct {
	// Provider selects the client: openai, anthropic, deepseek, zhipu, or ollama.
	Provider string `json:"provider" yaml:"provider"`

	// Model is the model identifier (e.g. "gpt-4o").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key. Usually supplied via .secrets/.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// APIBase overrides the provider's default endpoint base URL.
	APIBase string `json:"api_base,omitempty" yaml:"api_base,omitempty"`

	// Temperature is the sampling temperature (default 0.3).
	Temperature float64 `json:"temperature" yaml:"temperature"`

	// MaxTokens bounds the response length (default 4096).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`

	// Timeout is the per-request HTTP timeout (default 120s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// MaxRetries is the number of attempts per call (default 3). Retry
	// state is per-call; callers only observe success or the final error.
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// RetryDelay is the fixed delay between attempts (default 2s).
	RetryDelay time.Duration `json:"retry_delay" yaml:"retry_delay"`
}

// SegmentConfig holds settings for the segmentation stage.
type SegmentConfig struct {
	// Patterns maps a region kind to extra line-matching rules appended to
	// the built-in table. The table is read-only after pipeline start.
	Patterns map[string][]string `json:"patterns,omitempty" yaml:"patterns,omitempty"`
}

// AnalyzeConfig holds settings for the per-document analysis stage.
type AnalyzeConfig struct {
	// Dimensions lists the analysis dimensions to extract
	// (default background, technology, experiment, result).
	Dimensions []string `json:"dimensions" yaml:"dimensions"`

	// MaxWindow caps the characters of document text sent per dimension
	// (default 2000).
	MaxWindow int `json:"max_window" yaml:"max_window"`

	// ExtractKeywords controls whether the keyword pass runs (default true).
	ExtractKeywords bool `json:"extract_keywords" yaml:"extract_keywords"`

	// NumKeywords is the number of keywords requested (default 10).
	NumKeywords int `json:"num_keywords" yaml:"num_keywords"`

	// SignalTerms are the paragraph-scan terms that pull architecture and
	// scale paragraphs into the technology window. Empty uses the built-in
	// list.
	SignalTerms []string `json:"signal_terms,omitempty" yaml:"signal_terms,omitempty"`

	// AnalysesDir is the directory where analysis records are written
	// (default "output/analyses").
	AnalysesDir string `json:"analyses_dir" yaml:"analyses_dir"`
}

// AggregateConfig holds settings for the cross-document aggregation stage.
type AggregateConfig struct {
	// ComparisonAxes lists the comparison axes evaluated across the batch
	// (default architecture, training_method, performance).
	ComparisonAxes []string `json:"comparison_axes" yaml:"comparison_axes"`

	// GenerateTimeline controls the timeline pass (default true).
	GenerateTimeline bool `json:"generate_timeline" yaml:"generate_timeline"`

	// AnalyzeTrends controls the trend pass (default true).
	AnalyzeTrends bool `json:"analyze_trends" yaml:"analyze_trends"`
}

// ReportConfig holds settings for report generation.
type ReportConfig struct {
	// Language selects the report and summary language: english or chinese.
	Language string `json:"language" yaml:"language"`

	// SummaryLevel selects summary depth: brief, detailed, or comprehensive.
	SummaryLevel string `json:"summary_level" yaml:"summary_level"`

	// OutputDir is the directory for saved reports (default "output/reports").
	OutputDir string `json:"output_dir" yaml:"output_dir"`
}

// StoreConfig holds settings for the SQLite analysis store.
type StoreConfig struct {
	// KnowledgeDir is the base directory for the store (contains index/).
	KnowledgeDir string `json:"knowledge_dir" yaml:"knowledge_dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// ParallelConfig bounds the worker pool shared by a pipeline run.
type ParallelConfig struct {
	// Enabled switches fan-out groups between concurrent and sequential
	// execution. Both modes produce identical output.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// MaxWorkers bounds simultaneous in-flight inference calls (default 4).
	MaxWorkers int `json:"max_workers" yaml:"max_workers"`
}

// PipelineConfig groups all stage configurations. A single value is built at
// startup and threaded into constructors; nothing reads configuration through
// package state.
type PipelineConfig struct {
	LLM       LLMConfig       `json:"llm" yaml:"llm"`
	Segment   SegmentConfig   `json:"segment" yaml:"segment"`
	Analyze   AnalyzeConfig   `json:"analyze" yaml:"analyze"`
	Aggregate AggregateConfig `json:"aggregate" yaml:"aggregate"`
	Report    ReportConfig    `json:"report" yaml:"report"`
	Store     StoreConfig     `json:"store" yaml:"store"`
	Parallel  ParallelConfig  `json:"parallel" yaml:"parallel"`
}

// DefaultPipelineConfig returns the configuration used when no config file is
// present.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		LLM: LLMConfig{
			Provider:    "openai",
			Model:       "gpt-4o",
			Temperature: 0.3,
			MaxTokens:   4096,
			Timeout:     120 * time.Second,
			MaxRetries:  3,
			RetryDelay:  2 * time.Second,
		},
		Analyze: AnalyzeConfig{
			Dimensions:      []string{"background", "technology", "experiment", "result"},
			MaxWindow:       2000,
			ExtractKeywords: true,
			NumKeywords:     10,
			AnalysesDir:     "output/analyses",
		},
		Aggregate: AggregateConfig{
			ComparisonAxes:   []string{"architecture", "training_method", "performance"},
			GenerateTimeline: true,
			AnalyzeTrends:    true,
		},
		Report: ReportConfig{
			Language:     "english",
			SummaryLevel: "detailed",
			OutputDir:    "output/reports",
		},
		Store: StoreConfig{
			KnowledgeDir: "knowledge",
			MaxResults:   20,
		},
		Parallel: ParallelConfig{
			Enabled:    true,
			MaxWorkers: 4,
		},
	}
}
