// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package decode recovers structured JSON payloads from free-text model
// responses. Models wrap their answers in prose, code fences, or both, so
// decoding tries an ordered list of strategies and the first success wins.
package decode

import (
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"strings"
)

// excerptLen bounds the raw-text excerpt carried by a decode Error.
const excerptLen = 200

// Error reports that no strategy could recover a JSON payload. It carries a
// truncated excerpt of the raw response for diagnostics.
type Error struct {
	Excerpt string
}

func (e *Error) Error() string {
	return fmt.Sprintf("no JSON payload in response: %q", e.Excerpt)
}

// fencePattern matches a ``` code fence with an optional json tag and
// captures the interior.
var fencePattern = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)\\s*```")

// Into decodes the JSON payload hidden in raw into v, trying each strategy
// independently:
//
//  1. the entire trimmed text as JSON;
//  2. the interior of the first fenced code block;
//  3. the substring from the first '{' to the last '}'.
//
// Unknown keys are ignored and missing keys leave v's fields at their zero
// values, so a partial payload still decodes. On total failure Into returns
// a *Error; callers treat that as a per-task failure, never as fatal.
func Into(raw string, v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("decode target must be a non-nil pointer, got %T", v)
	}

	for _, candidate := range candidates(raw) {
		// Decode into a fresh value so a strategy that fails partway never
		// leaks fields into the next strategy's result.
		fresh := reflect.New(rv.Type().Elem())
		if err := json.Unmarshal([]byte(candidate), fresh.Interface()); err == nil {
			rv.Elem().Set(fresh.Elem())
			return nil
		}
	}
	return &Error{Excerpt: excerpt(raw)}
}

// Map decodes the payload into a generic key/value map.
func Map(raw string) (map[string]any, error) {
	var m map[string]any
	if err := Into(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// candidates returns the substrings each strategy would parse, in strategy
// order. Strategies that do not apply contribute nothing.
func candidates(raw string) []string {
	out := []string{strings.TrimSpace(raw)}

	if m := fencePattern.FindStringSubmatch(raw); m != nil {
		out = append(out, m[1])
	}

	first := strings.IndexByte(raw, '{')
	last := strings.LastIndexByte(raw, '}')
	if first >= 0 && last > first {
		out = append(out, raw[first:last+1])
	}

	return out
}

func excerpt(raw string) string {
	if len(raw) <= excerptLen {
		return raw
	}
	return raw[:excerptLen]
}
