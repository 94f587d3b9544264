// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyze

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/paper-lens/pkg/types"
)

// identifyKeyResources asks the model which figures, tables, and equations
// matter for a report and stores their 1-based indices on the analysis. When
// the call or its decoding fails, the leading few of each resource are
// selected instead so a report always has something to show.
func (a *Analyzer) identifyKeyResources(ctx context.Context, doc *types.Document, analysis *types.PaperAnalysis) {
	inventory := resourceInventory(doc)
	if inventory == "" {
		return
	}

	technology := analysis.Technology.MethodOverview
	if technology == "" {
		technology = "N/A"
	}
	results := analysis.Result.MainResults
	if results == "" {
		results = "N/A"
	}

	prompt, err := render(keyResourcesPromptTmpl, struct {
		Title      string
		Summary    string
		Technology string
		Results    string
		Resources  string
	}{doc.Title, clip(analysis.Summary, 500), technology, results, inventory})
	if err == nil {
		var out struct {
			KeyFigures   []int  `json:"key_figures"`
			KeyTables    []int  `json:"key_tables"`
			KeyEquations []int  `json:"key_equations"`
			Reasoning    string `json:"reasoning"`
		}
		if err = a.helper.ExtractJSON(ctx, prompt, &out); err == nil {
			analysis.KeyFigures = out.KeyFigures
			analysis.KeyTables = out.KeyTables
			analysis.KeyEquations = out.KeyEquations
			return
		}
	}

	fmt.Fprintf(a.w, "warning: key-resource selection failed for %q: %v\n", doc.Title, err)
	analysis.KeyFigures = leadingIndices(len(doc.Figures), 3)
	analysis.KeyTables = leadingIndices(len(doc.Tables), 3)
	analysis.KeyEquations = leadingIndices(len(doc.Equations), 5)
}

// resourceInventory lists the document's figures, tables, and equations with
// their 1-based indices, or returns "" when the document has none.
func resourceInventory(doc *types.Document) string {
	var lines []string

	if len(doc.Figures) > 0 {
		lines = append(lines, fmt.Sprintf("\n**Available Figures (%d total):**", len(doc.Figures)))
		for i, fig := range doc.Figures {
			lines = append(lines, fmt.Sprintf("  Figure %d: %s (Page %d)", i+1, fig.Caption, fig.Page))
		}
	}

	if len(doc.Tables) > 0 {
		lines = append(lines, fmt.Sprintf("\n**Available Tables (%d total):**", len(doc.Tables)))
		for i, table := range doc.Tables {
			caption := table.Caption
			if caption == "" {
				caption = fmt.Sprintf("Table on page %d", table.Page)
			}
			lines = append(lines, fmt.Sprintf("  Table %d: %s", i+1, caption))
		}
	}

	if len(doc.Equations) > 0 {
		lines = append(lines, fmt.Sprintf("\n**Available Equations (%d total):**", len(doc.Equations)))
		for i, eq := range doc.Equations {
			label := eq.Number
			if label == "" {
				label = fmt.Sprintf("Equation %d", i+1)
			}
			lines = append(lines, fmt.Sprintf("  %s: %s...", label, clip(eq.Text, 80)))
		}
	}

	return strings.Join(lines, "\n")
}

// leadingIndices returns [1, 2, ..., min(n, limit)].
func leadingIndices(n, limit int) []int {
	if n > limit {
		n = limit
	}
	indices := make([]int, 0, n)
	for i := 1; i <= n; i++ {
		indices = append(indices, i)
	}
	return indices
}
