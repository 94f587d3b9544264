// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package aggregate

import (
	"fmt"
	"strings"

	"github.com/pdiddy/paper-lens/pkg/types"
)

// papersDigest condenses the batch's analysis records into the shared text
// block every aggregation prompt receives. Each document contributes its
// title, authors, a bounded abstract, and the analysis fields the comparison
// axes lean on. Architecture metadata is always listed so the architecture
// axis never has to re-derive it from prose.
func papersDigest(analyses []*types.PaperAnalysis) string {
	parts := make([]string, 0, len(analyses))

	for i, a := range analyses {
		abstract := ""
		if a.Doc != nil {
			abstract = clip(a.Doc.Abstract, 500)
		}

		var arch strings.Builder
		if a.Technology.Architecture != "" {
			fmt.Fprintf(&arch, "\nArchitecture: %s", a.Technology.Architecture)
		}
		fmt.Fprintf(&arch, "\nArchitecture Type: %s", a.Technology.ArchitectureType)
		fmt.Fprintf(&arch, "\nModel Scale: %s", a.Technology.ModelScale)

		parts = append(parts, fmt.Sprintf(`Paper %d: %s
Authors: %s
Abstract: %s...

Research Background: %s
Core Method: %s%s
Innovations: %s
Main Results: %s
Keywords: %s
`,
			i+1, a.Title(),
			joinOr(a.Authors(), "Unknown"),
			abstract,
			valueOr(a.Background.Motivation, "N/A"),
			valueOr(a.Technology.MethodOverview, "N/A"),
			arch.String(),
			joinOr(a.Technology.Innovations, "N/A"),
			valueOr(a.Result.MainResults, "N/A"),
			joinOr(a.Keywords, "N/A"),
		))
	}

	return strings.Join(parts, "\n---\n")
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func joinOr(items []string, fallback string) string {
	if len(items) == 0 {
		return fallback
	}
	return strings.Join(items, ", ")
}

// clip bounds s to at most n bytes. Non-positive n means no bound.
func clip(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n]
}
