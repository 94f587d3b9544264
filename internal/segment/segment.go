// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package segment partitions raw document text into ordered, semantically
// typed regions. Segmentation is a pure function of its inputs: no I/O, no
// clock, no randomness, so identical text and rules always yield byte-identical
// regions.
package segment

import (
	"regexp"
	"strings"

	"github.com/pdiddy/paper-lens/pkg/types"
)

// numberPrefix matches leading section numbering like "2. " or "3.1 ".
var numberPrefix = regexp.MustCompile(`^[\d.]+\s*`)

// levelPatterns derive the numbering depth of a boundary line. Checked
// deepest-first so "2.1.1 Title" does not stop at the "2." match.
var (
	levelThree = regexp.MustCompile(`^\d+\.\d+\.\d+\s+`)
	levelTwo   = regexp.MustCompile(`^\d+\.\d+\s+`)
	levelOne   = regexp.MustCompile(`^\d+\s+`)
)

// boundary records one matched boundary line during the scan.
type boundary struct {
	kind  types.RegionKind
	title string
	line  int
	level int
}

// Segment scans text line by line and returns the typed regions delimited by
// boundary lines, in discovery order. A region's content is every line between
// its boundary (exclusive) and the next boundary (exclusive); text before the
// first boundary belongs to no region. Regions of the same kind found more
// than once are concatenated with a blank-line separator, never replaced.
// Text with no matching boundary yields an empty slice; that is not an error.
func Segment(text string, rules *RuleTable) []types.Region {
	if rules == nil {
		rules = DefaultRules()
	}

	lines := strings.Split(text, "\n")

	var boundaries []boundary
	for i, line := range lines {
		trimmed := strings.ToLower(strings.TrimSpace(line))
		if trimmed == "" {
			continue
		}
		if kind, ok := rules.match(trimmed); ok {
			boundaries = append(boundaries, boundary{
				kind:  kind,
				title: strings.TrimSpace(line),
				line:  i,
				level: Level(trimmed),
			})
		}
	}

	var regions []types.Region
	index := make(map[types.RegionKind]int) // kind → position in regions

	for i, b := range boundaries {
		end := len(lines)
		if i+1 < len(boundaries) {
			end = boundaries[i+1].line
		}
		content := strings.TrimSpace(strings.Join(lines[b.line+1:end], "\n"))

		if at, ok := index[b.kind]; ok {
			regions[at].Content += "\n\n" + content
			continue
		}

		index[b.kind] = len(regions)
		regions = append(regions, types.Region{
			Kind:    b.kind,
			Title:   b.title,
			Content: content,
			Level:   b.level,
		})
	}

	return regions
}

// SegmentDocument segments a document's full text and synthesizes an abstract
// region from the document metadata when the text itself carries no abstract
// heading. The synthesized region is appended so discovered regions keep
// their positions.
func SegmentDocument(doc *types.Document, rules *RuleTable) []types.Region {
	regions := Segment(doc.FullText, rules)

	for _, r := range regions {
		if r.Kind == types.RegionAbstract {
			return regions
		}
	}
	if doc.Abstract != "" {
		regions = append(regions, types.Region{
			Kind:    types.RegionAbstract,
			Title:   "Abstract",
			Content: doc.Abstract,
			Level:   1,
		})
	}
	return regions
}

// ByKind indexes regions by kind. Safe because Segment never emits two
// regions of the same kind.
func ByKind(regions []types.Region) map[types.RegionKind]types.Region {
	m := make(map[types.RegionKind]types.Region, len(regions))
	for _, r := range regions {
		m[r.Kind] = r
	}
	return m
}

// Level returns the numbering depth of a boundary line: "2" is 1, "2.1" is 2,
// "2.1.1" is 3. Lines without numbering are level 1.
func Level(line string) int {
	switch {
	case levelThree.MatchString(line):
		return 3
	case levelTwo.MatchString(line):
		return 2
	case levelOne.MatchString(line):
		return 1
	default:
		return 1
	}
}

// stripNumbering removes a leading numbering prefix such as "2. " or "3.1 ".
func stripNumbering(line string) string {
	return numberPrefix.ReplaceAllString(line, "")
}
