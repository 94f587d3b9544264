// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ReportKind selects the report layout.
type ReportKind string

const (
	ReportSingle     ReportKind = "single"
	ReportComparison ReportKind = "comparison"
	ReportTrend      ReportKind = "trend"
)

// Report is a rendered analysis report ready for saving.
type Report struct {
	Kind        ReportKind `json:"kind" yaml:"kind"`
	Title       string     `json:"title" yaml:"title"`
	Content     string     `json:"content" yaml:"content"`
	GeneratedAt time.Time  `json:"generated_at" yaml:"generated_at"`

	// Papers lists the titles of the documents the report covers.
	Papers []string `json:"papers" yaml:"papers"`
}
