// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ComparisonItem is one row of the cross-document comparison matrix: a single
// comparison axis with one description per document title. The title set is
// always a subset of the batch's document titles; rows are independent of one
// another.
type ComparisonItem struct {
	// Axis is the comparison axis name, e.g. "architecture" or "performance".
	Axis string `json:"axis" yaml:"axis"`

	// Papers maps document title to that document's description on this axis.
	Papers map[string]string `json:"papers" yaml:"papers"`
}

// TimelineItem places one document on the inferred development timeline.
type TimelineItem struct {
	PaperTitle string `json:"paper_title" yaml:"paper_title"`

	// Date is advisory only: an inferred "YYYY" or "YYYY-MM" string, never
	// used for ordering.
	Date string `json:"date,omitempty" yaml:"date,omitempty"`

	Contribution string `json:"contribution" yaml:"contribution"`

	// Order defines the display ordering. It reflects logical development
	// of the technology, not publication chronology. Ties keep input order.
	Order int `json:"order" yaml:"order"`
}

// TrendItem is one technology trend observed across the batch.
type TrendItem struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Evidence    []string `json:"evidence" yaml:"evidence"`
	Papers      []string `json:"papers" yaml:"papers"`
}

// AggregatedKnowledge is the batch-level record built by the aggregator.
//
// When CustomAnalysis is non-empty the aggregate was produced in custom mode:
// ComparisonMatrix, Timeline, and Trends are all empty and reporting suppresses
// the per-axis sections.
type AggregatedKnowledge struct {
	// Papers holds the batch's analysis records in input order.
	Papers []*PaperAnalysis `json:"papers" yaml:"papers"`

	Timeline         []TimelineItem   `json:"timeline" yaml:"timeline"`
	ComparisonMatrix []ComparisonItem `json:"comparison_matrix" yaml:"comparison_matrix"`
	CommonThemes     []string         `json:"common_themes" yaml:"common_themes"`
	KeyDifferences   []string         `json:"key_differences" yaml:"key_differences"`
	Trends           []TrendItem      `json:"trends" yaml:"trends"`
	OverallSummary   string           `json:"overall_summary" yaml:"overall_summary"`

	// CustomAnalysis records the free-form instruction when custom mode was
	// used, empty otherwise.
	CustomAnalysis string `json:"custom_analysis,omitempty" yaml:"custom_analysis,omitempty"`
}
