// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert turns PDF attachments into plain text ready for the
// analysis pipeline.
package convert

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// Converter transforms a PDF file into text. The pipeline only depends on
// this interface; tests substitute fixture-backed implementations.
type Converter interface {
	// Convert reads the PDF at pdfPath and returns its text content.
	Convert(pdfPath string) (string, error)
}

// PDFConverter extracts plain text with the pure-Go pdf reader.
type PDFConverter struct{}

// Convert reads the whole document's plain text.
func (PDFConverter) Convert(pdfPath string) (string, error) {
	f, reader, err := pdf.Open(pdfPath)
	if err != nil {
		return "", fmt.Errorf("opening PDF %s: %w", pdfPath, err)
	}
	defer f.Close()

	content, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extracting text from %s: %w", pdfPath, err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(content); err != nil {
		return "", fmt.Errorf("reading text from %s: %w", pdfPath, err)
	}
	return buf.String(), nil
}
