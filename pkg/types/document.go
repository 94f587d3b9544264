// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the plain data structures shared across pipeline stages.
package types

// Figure describes one figure in a source document.
type Figure struct {
	// Page is the 1-based page number where the figure appears.
	Page int `json:"page" yaml:"page"`

	// Caption is the figure caption, possibly empty.
	Caption string `json:"caption" yaml:"caption"`

	// ImageData holds the rendered figure bytes when the document source
	// supplies them. How the bytes were produced is outside this pipeline.
	ImageData []byte `json:"image_data,omitempty" yaml:"image_data,omitempty"`
}

// Table describes one table in a source document.
type Table struct {
	Page    int    `json:"page" yaml:"page"`
	Caption string `json:"caption" yaml:"caption"`

	// Content is the extracted table text. Empty when extraction failed and
	// only a screenshot is available.
	Content   string `json:"content" yaml:"content"`
	ImageData []byte `json:"image_data,omitempty" yaml:"image_data,omitempty"`
}

// Equation describes one display equation in a source document.
type Equation struct {
	Page int `json:"page" yaml:"page"`

	// Text is the equation in LaTeX or plain-text form.
	Text string `json:"text" yaml:"text"`

	// Number is the equation label as printed, e.g. "(1)". Empty when unnumbered.
	Number  string `json:"number,omitempty" yaml:"number,omitempty"`
	Caption string `json:"caption,omitempty" yaml:"caption,omitempty"`
}

// Reference is one bibliography entry from a source document.
type Reference struct {
	Index   int      `json:"index" yaml:"index"`
	Text    string   `json:"text" yaml:"text"`
	Title   string   `json:"title,omitempty" yaml:"title,omitempty"`
	Authors []string `json:"authors,omitempty" yaml:"authors,omitempty"`
	Year    string   `json:"year,omitempty" yaml:"year,omitempty"`
}

// Document holds the raw content of one source document as produced by the
// document source collaborator. It is immutable once loaded: every stage
// downstream reads it and none writes to it.
type Document struct {
	// Path is the local filesystem path the document was loaded from.
	Path string `json:"path" yaml:"path"`

	// Title is the document title.
	Title string `json:"title" yaml:"title"`

	// Authors lists the authors in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Abstract is the document abstract as supplied by the source. The
	// segmenter synthesizes an abstract region from it when the full text
	// carries no abstract heading of its own.
	Abstract string `json:"abstract" yaml:"abstract"`

	// FullText is the complete extracted text.
	FullText string `json:"full_text" yaml:"full_text"`

	// Figures, Tables, and Equations are ordered resource descriptors.
	// Indices into these slices are the identity used by key-resource
	// selection, so order is load order and never changes.
	Figures   []Figure   `json:"figures,omitempty" yaml:"figures,omitempty"`
	Tables    []Table    `json:"tables,omitempty" yaml:"tables,omitempty"`
	Equations []Equation `json:"equations,omitempty" yaml:"equations,omitempty"`

	// References is the parsed bibliography, when available.
	References []Reference `json:"references,omitempty" yaml:"references,omitempty"`
}
