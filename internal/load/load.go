// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package load reads source documents from disk. A document is a plain-text
// or Markdown file, optionally paired with a <name>.meta.yaml sidecar that
// supplies the metadata the text itself cannot carry: authors, a curated
// abstract, and figure, table, and equation descriptors.
package load

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-lens/pkg/types"
)

// textExtensions lists the file extensions treated as documents.
var textExtensions = map[string]bool{
	".md":  true,
	".txt": true,
}

// sidecar mirrors the <name>.meta.yaml layout.
type sidecar struct {
	Title     string           `yaml:"title"`
	Authors   []string         `yaml:"authors"`
	Abstract  string           `yaml:"abstract"`
	Figures   []types.Figure   `yaml:"figures"`
	Tables    []types.Table    `yaml:"tables"`
	Equations []types.Equation `yaml:"equations"`
}

// ResolvePaths expands each argument into document file paths. An argument
// may be a file, a directory (scanned non-recursively), or a glob pattern.
// Results are deduplicated and sorted so batch order is stable across runs.
func ResolvePaths(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var paths []string

	add := func(p string) {
		if !textExtensions[strings.ToLower(filepath.Ext(p))] {
			return
		}
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		switch {
		case err == nil && info.IsDir():
			entries, err := os.ReadDir(arg)
			if err != nil {
				return nil, fmt.Errorf("reading directory %s: %w", arg, err)
			}
			for _, entry := range entries {
				if !entry.IsDir() {
					add(filepath.Join(arg, entry.Name()))
				}
			}
		case err == nil:
			add(arg)
		default:
			// Not a plain path; try it as a glob pattern.
			matches, globErr := filepath.Glob(arg)
			if globErr != nil {
				return nil, fmt.Errorf("bad pattern %q: %w", arg, globErr)
			}
			if len(matches) == 0 {
				return nil, fmt.Errorf("no documents match %q", arg)
			}
			for _, m := range matches {
				add(m)
			}
		}
	}

	sort.Strings(paths)
	return paths, nil
}

// LoadDocument reads one document file and its metadata sidecar, when
// present. The title falls back to the first Markdown heading, then to the
// file name.
func LoadDocument(path string) (*types.Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading document %s: %w", path, err)
	}

	doc := &types.Document{
		Path:     path,
		FullText: string(content),
	}

	meta, err := readSidecar(sidecarPath(path))
	if err != nil {
		return nil, err
	}
	if meta != nil {
		doc.Title = meta.Title
		doc.Authors = meta.Authors
		doc.Abstract = meta.Abstract
		doc.Figures = meta.Figures
		doc.Tables = meta.Tables
		doc.Equations = meta.Equations
	}

	if doc.Title == "" {
		doc.Title = titleFromText(doc.FullText)
	}
	if doc.Title == "" {
		base := filepath.Base(path)
		doc.Title = strings.TrimSuffix(base, filepath.Ext(base))
	}

	return doc, nil
}

// LoadAll loads every resolved document, reporting progress to w. A document
// that fails to load aborts the batch; partial batches would silently skew
// every cross-document result downstream.
func LoadAll(args []string, w io.Writer) ([]*types.Document, error) {
	paths, err := ResolvePaths(args)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no documents found")
	}

	docs := make([]*types.Document, 0, len(paths))
	for _, path := range paths {
		doc, err := LoadDocument(path)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(w, "loaded %s (%d bytes)\n", path, len(doc.FullText))
		docs = append(docs, doc)
	}
	return docs, nil
}

// sidecarPath returns the metadata path for a document: document.md pairs
// with document.meta.yaml.
func sidecarPath(docPath string) string {
	return strings.TrimSuffix(docPath, filepath.Ext(docPath)) + ".meta.yaml"
}

// readSidecar parses a metadata sidecar. A missing file is not an error;
// a malformed one is.
func readSidecar(path string) (*sidecar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading metadata %s: %w", path, err)
	}

	var meta sidecar
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parsing metadata %s: %w", path, err)
	}
	return &meta, nil
}

// titleFromText returns the first Markdown heading, or the first non-empty
// line when the text has no headings.
func titleFromText(text string) string {
	firstLine := ""
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "#") {
			return strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
		}
		if firstLine == "" {
			firstLine = trimmed
		}
	}
	return firstLine
}
