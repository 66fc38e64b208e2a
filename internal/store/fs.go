// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists analysis artifacts: a filesystem sink writing
// per-paper Markdown outputs and a SQLite index supporting artifact
// queries and failed-subset re-runs.
package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/tsato-cnlab/paper-reader/pkg/types"
)

const (
	summaryFile    = "summary.md"
	slidesFile     = "slides.md"
	extractionFile = "extraction.md"
	artifactFile   = "artifact.yaml"
)

// invalidFilenameChars are stripped from titles when building folder names.
var invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)

// FileSink writes each document's outputs under OutputDir/<safe-title>/.
type FileSink struct {
	OutputDir string
}

// NewFileSink builds a filesystem sink rooted at dir.
func NewFileSink(dir string) *FileSink {
	return &FileSink{OutputDir: dir}
}

// Persist writes whichever outputs the artifact carries (summary, slides,
// extraction) plus an artifact.yaml metadata record. Documents that
// produced nothing still get the metadata record so failures are visible
// on disk.
func (s *FileSink) Persist(_ context.Context, doc types.Document, art types.AnalysisArtifact) error {
	name := art.Title
	if strings.TrimSpace(name) == "" {
		name = doc.ID
	}
	folder := filepath.Join(s.OutputDir, SafeFilename(name))
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return fmt.Errorf("creating output folder %s: %w", folder, err)
	}

	outputs := map[string]string{
		summaryFile:    art.Summary,
		slidesFile:     art.Slides,
		extractionFile: art.Extraction,
	}
	for file, content := range outputs {
		if content == "" {
			continue
		}
		if err := os.WriteFile(filepath.Join(folder, file), []byte(content), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", file, err)
		}
	}

	// Metadata record without the bulky texts.
	meta := art
	meta.Extraction = ""
	meta.Summary = ""
	meta.Slides = ""
	data, err := yaml.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshaling artifact metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(folder, artifactFile), data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", artifactFile, err)
	}
	return nil
}

// SafeFilename sanitizes a paper title into a filesystem-safe folder
// name: invalid characters removed, spaces underscored, length capped.
func SafeFilename(name string) string {
	name = invalidFilenameChars.ReplaceAllString(name, "")
	name = strings.ReplaceAll(strings.TrimSpace(name), " ", "_")
	if len(name) > 100 {
		name = name[:100]
	}
	if name == "" {
		return "untitled"
	}
	return name
}
