// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// AnalysisStatus is the terminal state of one document's analysis.
type AnalysisStatus string

const (
	// StatusSuccess means every requested output was produced.
	StatusSuccess AnalysisStatus = "success"
	// StatusPartial means Stage 1 succeeded but only some of the
	// requested Stage-2 outputs were produced.
	StatusPartial AnalysisStatus = "partial"
	// StatusFailed means no requested output was produced.
	StatusFailed AnalysisStatus = "failed"
)

// AnalysisArtifact is the per-document output bundle. The analyzer
// creates it; thereafter the orchestrator owns it and it is never
// mutated again.
type AnalysisArtifact struct {
	// DocumentID is the ID of the source document.
	DocumentID string `json:"document_id" yaml:"document_id"`

	// Title and Authors are carried from the document for addressing
	// outputs in the result sinks.
	Title   string   `json:"title" yaml:"title"`
	Authors []string `json:"authors,omitempty" yaml:"authors,omitempty"`

	// Extraction is the Stage-1 output: a lossless-but-compressed
	// restatement of the source text. Retained even when Stage 2 fails
	// so a later run can resume from it.
	Extraction string `json:"extraction,omitempty" yaml:"extraction,omitempty"`

	// Summary is the Stage-2 structured summary, when requested and produced.
	Summary string `json:"summary,omitempty" yaml:"summary,omitempty"`

	// Slides is the Stage-2 Marp slide deck, when requested and produced.
	Slides string `json:"slides,omitempty" yaml:"slides,omitempty"`

	// Status is the terminal analysis status.
	Status AnalysisStatus `json:"status" yaml:"status"`

	// Error holds the underlying error text verbatim when Status is not
	// success.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// BatchEntry pairs a document with its artifact in input order.
type BatchEntry struct {
	DocumentID string           `json:"document_id" yaml:"document_id"`
	Title      string           `json:"title" yaml:"title"`
	Artifact   AnalysisArtifact `json:"artifact" yaml:"artifact"`
}

// BatchReport is the outcome of one orchestrator run: one entry per input
// document, in input order, plus aggregate counts.
type BatchReport struct {
	RunID      string       `json:"run_id" yaml:"run_id"`
	StartedAt  time.Time    `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time    `json:"finished_at" yaml:"finished_at"`
	Entries    []BatchEntry `json:"entries" yaml:"entries"`

	Succeeded int `json:"succeeded" yaml:"succeeded"`
	Partial   int `json:"partial" yaml:"partial"`
	Failed    int `json:"failed" yaml:"failed"`
}

// Total returns the number of documents processed.
func (r *BatchReport) Total() int {
	return r.Succeeded + r.Partial + r.Failed
}

// HasFailures reports whether any document ended partial or failed.
func (r *BatchReport) HasFailures() bool {
	return r.Partial > 0 || r.Failed > 0
}
