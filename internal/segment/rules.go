// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package segment

import (
	"fmt"
	"regexp"

	"github.com/pdiddy/paper-lens/pkg/types"
)

// Rule is one compiled line-matching rule for a region kind.
type Rule struct {
	Kind    types.RegionKind
	Pattern *regexp.Regexp
}

// RuleTable is the ordered set of boundary rules the segmenter scans with.
// Ordering matters: the first matching rule wins. Tables are read-only after
// construction and safe for concurrent use.
type RuleTable struct {
	rules []Rule
}

// kindOrder fixes the scan order of the built-in table. Keeping it explicit
// (rather than ranging over a map) makes segmentation deterministic.
var kindOrder = []types.RegionKind{
	types.RegionAbstract,
	types.RegionIntroduction,
	types.RegionRelatedWork,
	types.RegionMethod,
	types.RegionExperiment,
	types.RegionResult,
	types.RegionDiscussion,
	types.RegionConclusion,
	types.RegionReferences,
	types.RegionAppendix,
}

// defaultPatterns maps each region kind to its boundary-line patterns. The
// patterns match a lowercased line after numeric-prefix stripping, anchored
// at the start.
var defaultPatterns = map[types.RegionKind][]string{
	types.RegionAbstract: {
		`^abstract\s*$`,
	},
	types.RegionIntroduction: {
		`^(?:\d+\.?\s*)?introduction\s*$`,
		`^1\s+introduction`,
	},
	types.RegionRelatedWork: {
		`^(?:\d+\.?\s*)?related\s+work\s*$`,
		`^(?:\d+\.?\s*)?background\s*$`,
		`^(?:\d+\.?\s*)?preliminaries?\s*$`,
	},
	types.RegionMethod: {
		`^(?:\d+\.?\s*)?method(?:ology|s)?\s*$`,
		`^(?:\d+\.?\s*)?approach\s*$`,
		`^(?:\d+\.?\s*)?(?:our\s+)?model\s*$`,
		`^(?:\d+\.?\s*)?proposed\s+method\s*$`,
		`^(?:\d+\.?\s*)?framework\s*$`,
		`^(?:\d+\.?\s*)?architecture\s*$`,
	},
	types.RegionExperiment: {
		`^(?:\d+\.?\s*)?experiments?\s*$`,
		`^(?:\d+\.?\s*)?evaluation\s*$`,
		`^(?:\d+\.?\s*)?experimental\s+(?:setup|results?)\s*$`,
	},
	types.RegionResult: {
		`^(?:\d+\.?\s*)?results?\s*$`,
		`^(?:\d+\.?\s*)?findings?\s*$`,
	},
	types.RegionDiscussion: {
		`^(?:\d+\.?\s*)?discussion\s*$`,
		`^(?:\d+\.?\s*)?analysis\s*$`,
	},
	types.RegionConclusion: {
		`^(?:\d+\.?\s*)?conclusions?\s*$`,
		`^(?:\d+\.?\s*)?summary\s*$`,
		`^(?:\d+\.?\s*)?concluding\s+remarks?\s*$`,
	},
	types.RegionReferences: {
		`^references?\s*$`,
		`^bibliography\s*$`,
	},
	types.RegionAppendix: {
		`^(?:appendix|appendices)\s*`,
	},
}

// DefaultRules returns the built-in rule table.
func DefaultRules() *RuleTable {
	table, err := NewRuleTable(nil)
	if err != nil {
		// The built-in patterns are compile-tested; this cannot happen.
		panic(err)
	}
	return table
}

// NewRuleTable compiles the built-in table plus any extra patterns from
// configuration. Extra patterns for a known kind are appended after the
// built-ins for that kind; patterns for unknown kinds are rejected.
func NewRuleTable(extra map[string][]string) (*RuleTable, error) {
	known := make(map[types.RegionKind]bool, len(kindOrder))
	for _, k := range kindOrder {
		known[k] = true
	}
	for kind := range extra {
		if !known[types.RegionKind(kind)] {
			return nil, fmt.Errorf("unknown region kind %q in segment patterns", kind)
		}
	}

	var rules []Rule
	for _, kind := range kindOrder {
		patterns := append([]string{}, defaultPatterns[kind]...)
		patterns = append(patterns, extra[string(kind)]...)
		for _, p := range patterns {
			re, err := regexp.Compile("(?i)" + p)
			if err != nil {
				return nil, fmt.Errorf("compiling pattern %q for %s: %w", p, kind, err)
			}
			rules = append(rules, Rule{Kind: kind, Pattern: re})
		}
	}
	return &RuleTable{rules: rules}, nil
}

// match returns the region kind of the first rule matching the line, testing
// both the numeric-prefix-stripped form and the raw lowercased form, or ""
// when no rule matches.
func (t *RuleTable) match(line string) (types.RegionKind, bool) {
	stripped := stripNumbering(line)
	for _, r := range t.rules {
		if r.Pattern.MatchString(stripped) || r.Pattern.MatchString(line) {
			return r.Kind, true
		}
	}
	return "", false
}
