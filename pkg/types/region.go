// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// RegionKind identifies the semantic role of a contiguous span of document text.
type RegionKind string

const (
	RegionAbstract     RegionKind = "abstract"
	RegionIntroduction RegionKind = "introduction"
	RegionRelatedWork  RegionKind = "related_work"
	RegionMethod       RegionKind = "method"
	RegionExperiment   RegionKind = "experiment"
	RegionResult       RegionKind = "result"
	RegionDiscussion   RegionKind = "discussion"
	RegionConclusion   RegionKind = "conclusion"
	RegionReferences   RegionKind = "references"
	RegionAppendix     RegionKind = "appendix"
)

// Region is a typed span of document text produced by the segmenter.
// Consumers treat regions as read-only.
type Region struct {
	// Kind is the semantic type of the region.
	Kind RegionKind `json:"kind" yaml:"kind"`

	// Title is the boundary line that opened the region, as it appears in
	// the source (numbering included).
	Title string `json:"title" yaml:"title"`

	// Content is every line between this region's boundary and the next,
	// both exclusive. When the same kind is discovered more than once the
	// contents are concatenated with a blank-line separator in discovery
	// order.
	Content string `json:"content" yaml:"content"`

	// Level is the numbering depth of the boundary line: "2" is 1,
	// "2.1" is 2, "2.1.1" is 3. Unnumbered boundaries are level 1.
	Level int `json:"level" yaml:"level"`
}
