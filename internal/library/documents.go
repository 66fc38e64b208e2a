// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package library

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tsato-cnlab/paper-reader/internal/convert"
	"github.com/tsato-cnlab/paper-reader/pkg/types"
)

// LoadDocuments fetches the items of a Zotero collection, locates each
// PDF in local storage, converts it to text, and returns the documents
// ready for analysis. Items without a resolvable PDF or with empty
// converted text are reported on w and left out: every document that
// enters the pipeline carries a full text body.
func (c *Client) LoadDocuments(ctx context.Context, collectionKey string, conv convert.Converter, w io.Writer) ([]types.Document, error) {
	items, err := c.CollectionItems(ctx, collectionKey)
	if err != nil {
		return nil, err
	}

	var docs []types.Document
	for _, item := range items {
		pdfPath, err := FindPDF(c.cfg.StoragePath, item.AttachmentKey)
		if err != nil {
			fmt.Fprintf(w, "skipped %s: %v\n", item.Title, err)
			continue
		}

		text, err := conv.Convert(pdfPath)
		if err != nil {
			fmt.Fprintf(w, "skipped %s: %v\n", item.Title, err)
			continue
		}

		text = convert.CleanText(text)
		if text == "" {
			fmt.Fprintf(w, "skipped %s: no text after conversion\n", item.Title)
			continue
		}

		docs = append(docs, types.Document{
			ID:            item.Key,
			AttachmentKey: item.AttachmentKey,
			Title:         item.Title,
			Authors:       item.Authors,
			Year:          item.Year,
			Text:          text,
		})
	}
	return docs, nil
}

// FindPDF locates the PDF for an attachment key under the Zotero storage
// directory: storage/{attachmentKey}/*.pdf.
func FindPDF(storagePath, attachmentKey string) (string, error) {
	if attachmentKey == "" {
		return "", fmt.Errorf("no PDF attachment")
	}

	itemDir := filepath.Join(storagePath, attachmentKey)
	if _, err := os.Stat(itemDir); err != nil {
		return "", fmt.Errorf("attachment directory %s: %w", itemDir, err)
	}

	matches, err := filepath.Glob(filepath.Join(itemDir, "*.pdf"))
	if err != nil {
		return "", fmt.Errorf("searching %s: %w", itemDir, err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no PDF in %s", itemDir)
	}
	return matches[0], nil
}

// LoadLocal reads converted paper texts (.md or .txt) from a directory,
// one document per file. The file slug becomes the document ID; a leading
// Markdown H1 becomes the title when present.
func LoadLocal(dir string) ([]types.Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading input directory %s: %w", dir, err)
	}

	var docs []types.Document
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".md" && ext != ".txt" {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", entry.Name(), err)
		}

		text := convert.CleanText(string(data))
		if text == "" {
			continue
		}

		slug := strings.TrimSuffix(entry.Name(), ext)
		docs = append(docs, types.Document{
			ID:    slug,
			Title: titleOf(text, slug),
			Text:  text,
		})
	}
	return docs, nil
}

// titleOf returns the first Markdown H1 heading, or fallback.
func titleOf(text, fallback string) string {
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(trimmed, "# "))
		}
	}
	return fallback
}
