// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Document is one research paper entering the analysis pipeline. It is
// immutable once loaded: the orchestrator owns it for the duration of a
// run and never writes back into it.
type Document struct {
	// ID uniquely identifies the document within the batch. For Zotero
	// sources this is the item key; for local sources it is the file slug.
	ID string `json:"id" yaml:"id"`

	// AttachmentKey is the Zotero child attachment key used to locate the
	// PDF in the storage directory. Empty for local sources.
	AttachmentKey string `json:"attachment_key,omitempty" yaml:"attachment_key,omitempty"`

	// Title is the paper title.
	Title string `json:"title" yaml:"title"`

	// Authors lists the paper authors in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Year is the publication year ("N/A" when unknown).
	Year string `json:"year,omitempty" yaml:"year,omitempty"`

	// Text is the full paper body after PDF conversion and reference
	// stripping. Every document must carry a non-empty Text before it
	// enters the pipeline.
	Text string `json:"-" yaml:"-"`

	// Extraction is a previously produced Stage-1 extraction, if any.
	// When present the analyzer skips Stage 1 and reuses it for Stage 2.
	Extraction string `json:"-" yaml:"-"`
}
