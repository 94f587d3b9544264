// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyze

import (
	"strings"

	"github.com/pdiddy/paper-lens/pkg/types"
)

const defaultMaxWindow = 2000

// defaultSignalTerms flag paragraphs that carry architecture, heritage, or
// scale information. The technology window pulls such paragraphs in even when
// they fall outside the leading method text.
var defaultSignalTerms = []string{
	"base model", "built on", "based on", "starting from",
	"initialized from", "inherit", "extend",
	"architecture", "moe", "mixture-of-experts", "mixture of experts",
	"dense", "sparse", "transformer", "attention",
	"parameters", "param", "billion", "million",
	"total parameters", "activated parameters",
	"expert", "routing", "gating", "load balancing",
}

// clip bounds s to at most n bytes. Non-positive n means no bound.
func clip(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n]
}

// buildWindows assembles the bounded text window for each analysis dimension
// from the document and its regions. Windows are a pure function of their
// inputs.
func buildWindows(doc *types.Document, regions map[types.RegionKind]types.Region, cfg types.AnalyzeConfig) map[string]string {
	maxWindow := cfg.MaxWindow
	if maxWindow <= 0 {
		maxWindow = defaultMaxWindow
	}

	windows := make(map[string]string, 4)

	// Background: abstract plus the openings of introduction and related work.
	backgroundParts := []string{doc.Abstract}
	if r, ok := regions[types.RegionIntroduction]; ok {
		backgroundParts = append(backgroundParts, clip(r.Content, 2000))
	}
	if r, ok := regions[types.RegionRelatedWork]; ok {
		backgroundParts = append(backgroundParts, clip(r.Content, 1000))
	}
	windows["background"] = strings.Join(backgroundParts, "\n\n")

	windows["technology"] = clip(technologyWindow(doc, regions, cfg.SignalTerms), maxWindow)

	// Experiment: the experiment region, or the document opening as a stand-in.
	if r, ok := regions[types.RegionExperiment]; ok {
		windows["experiment"] = clip(r.Content, maxWindow)
	} else {
		windows["experiment"] = clip(doc.FullText, maxWindow)
	}

	// Result: results plus conclusion, or the abstract as a stand-in.
	var resultParts []string
	if r, ok := regions[types.RegionResult]; ok {
		resultParts = append(resultParts, r.Content)
	}
	if r, ok := regions[types.RegionConclusion]; ok {
		resultParts = append(resultParts, r.Content)
	}
	if len(resultParts) > 0 {
		windows["result"] = clip(strings.Join(resultParts, "\n\n"), maxWindow)
	} else {
		windows["result"] = clip(doc.Abstract, maxWindow)
	}

	return windows
}

// technologyWindow builds the technology dimension window: the leading method
// text plus any later paragraphs that mention a signal term, up to a soft
// accumulation cap. Falls back to the abstract when no method region exists.
func technologyWindow(doc *types.Document, regions map[types.RegionKind]types.Region, signalTerms []string) string {
	method, ok := regions[types.RegionMethod]
	if !ok {
		if r, ok := regions[types.RegionAbstract]; ok && r.Content != "" {
			return r.Content
		}
		return doc.Abstract
	}

	terms := signalTerms
	if len(terms) == 0 {
		terms = defaultSignalTerms
	}

	prefix := clip(method.Content, 1500)
	parts := []string{prefix}
	total := len(prefix)

	for _, para := range strings.Split(method.Content, "\n\n") {
		if !containsAnyTerm(strings.ToLower(para), terms) {
			continue
		}
		// Paragraphs already covered by the leading text are skipped.
		if strings.Contains(prefix, para) {
			continue
		}
		excerpt := clip(para, 500)
		parts = append(parts, excerpt)
		total += len(excerpt)
		if total > 2500 {
			break
		}
	}

	return strings.Join(parts, "\n\n")
}

func containsAnyTerm(lower string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}
