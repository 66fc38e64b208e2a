// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by boundary clients.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "paper-reader/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// OutputMode selects which Stage-2 outputs are requested per document.
type OutputMode string

const (
	ModeSummary OutputMode = "summary"
	ModeSlides  OutputMode = "slides"
	ModeBoth    OutputMode = "both"
)

// WantsSummary reports whether the mode requests a summary.
func (m OutputMode) WantsSummary() bool { return m == ModeSummary || m == ModeBoth }

// WantsSlides reports whether the mode requests a slide deck.
func (m OutputMode) WantsSlides() bool { return m == ModeSlides || m == ModeBoth }

// Valid reports whether the mode is one of summary, slides, or both.
func (m OutputMode) Valid() bool {
	return m == ModeSummary || m == ModeSlides || m == ModeBoth
}

// GenAIConfig holds settings for the remote text-generation service.
type GenAIConfig struct {
	// FastModel is the low-latency tier used for Stage-1 extraction
	// (e.g. "gemini-2.0-flash-exp").
	FastModel string `json:"fast_model" yaml:"fast_model"`

	// ProModel is the high-quality tier used for Stage-2 generation
	// (e.g. "gemini-2.0-pro-exp"). This is the tier expected to hit
	// rate limits.
	ProModel string `json:"pro_model" yaml:"pro_model"`

	// APIKey authenticates against the generation service.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BaseURL overrides the service endpoint. When set together with
	// Provider "openai" it selects an OpenAI-compatible server.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// Provider selects the backend: "gemini" (default) or "openai".
	Provider string `json:"provider,omitempty" yaml:"provider,omitempty"`

	// MaxAttempts is the total attempt ceiling for the advanced tier
	// (default 5).
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts"`

	// RetryWait is the fixed wait between advanced-tier attempts
	// (default 40s).
	RetryWait time.Duration `json:"retry_wait" yaml:"retry_wait"`

	// CallSpacing is the minimum spacing between any two generation
	// calls, independent of retries (default 4s).
	CallSpacing time.Duration `json:"call_spacing" yaml:"call_spacing"`
}

// AnalysisConfig holds settings for the two-stage analysis pipeline.
type AnalysisConfig struct {
	GenAI GenAIConfig `json:"genai" yaml:"genai"`

	// Mode selects which Stage-2 outputs to produce.
	Mode OutputMode `json:"mode" yaml:"mode"`
}

// LibraryConfig holds settings for the Zotero document source.
type LibraryConfig struct {
	HTTPConfig `yaml:",inline"`

	// LibraryID is the Zotero library identifier.
	LibraryID string `json:"library_id" yaml:"library_id"`

	// LibraryType is "user" or "group".
	LibraryType string `json:"library_type" yaml:"library_type"`

	// APIKey is the Zotero Web API key.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// StoragePath is the local Zotero storage directory holding PDF
	// attachments under per-attachment subdirectories.
	StoragePath string `json:"storage_path" yaml:"storage_path"`
}

// StorageConfig holds settings for the result sinks.
type StorageConfig struct {
	// OutputDir is the directory for per-paper output folders
	// (summary.md, slides.md, extraction.md).
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// IndexDir is the directory holding the artifact SQLite database.
	IndexDir string `json:"index_dir" yaml:"index_dir"`
}

// NotionConfig holds settings for the optional Notion result sink.
type NotionConfig struct {
	HTTPConfig `yaml:",inline"`

	// Token is the Notion integration token. The sink is disabled when
	// Token or DatabaseID is empty.
	Token string `json:"token,omitempty" yaml:"token,omitempty"`

	// DatabaseID is the Notion database holding one page per paper.
	DatabaseID string `json:"database_id,omitempty" yaml:"database_id,omitempty"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Library  LibraryConfig  `json:"library" yaml:"library"`
	Analysis AnalysisConfig `json:"analysis" yaml:"analysis"`
	Storage  StorageConfig  `json:"storage" yaml:"storage"`
	Notion   NotionConfig   `json:"notion" yaml:"notion"`
}
