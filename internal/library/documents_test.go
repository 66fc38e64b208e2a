// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package library

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// fixedConverter returns canned text per PDF path.
type fixedConverter struct {
	texts map[string]string
	err   error
}

func (c *fixedConverter) Convert(pdfPath string) (string, error) {
	if c.err != nil {
		return "", c.err
	}
	return c.texts[filepath.Base(pdfPath)], nil
}

func TestLoadDocuments(t *testing.T) {
	ts := fakeZotero(t)
	defer ts.Close()
	withFakeAPI(t, ts.URL)

	// Storage only holds a PDF for ITEM1's attachment.
	storage := t.TempDir()
	attDir := filepath.Join(storage, "ATT1")
	if err := os.MkdirAll(attDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(attDir, "paper.pdf"), []byte("%PDF"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := testLibraryConfig()
	cfg.StoragePath = storage
	client := NewClient(cfg)

	conv := &fixedConverter{texts: map[string]string{
		"paper.pdf": "Body text.\n\n## References\n\n[1] X.",
	}}

	var buf strings.Builder
	docs, err := client.LoadDocuments(context.Background(), "COLL1", conv, &buf)
	if err != nil {
		t.Fatalf("LoadDocuments: %v", err)
	}

	if len(docs) != 1 {
		t.Fatalf("got %d documents, want 1", len(docs))
	}
	doc := docs[0]
	if doc.ID != "ITEM1" || doc.AttachmentKey != "ATT1" {
		t.Errorf("document = %+v", doc)
	}
	// Reference tail stripped before the text enters the pipeline.
	if doc.Text != "Body text." {
		t.Errorf("Text = %q, want cleaned body", doc.Text)
	}
	// The item without a PDF is reported, not dropped silently.
	if !strings.Contains(buf.String(), "skipped Paper Three") {
		t.Errorf("output = %q, want a skipped line for the PDF-less item", buf.String())
	}
}

func TestLoadDocumentsSkipsEmptyConversion(t *testing.T) {
	ts := fakeZotero(t)
	defer ts.Close()
	withFakeAPI(t, ts.URL)

	storage := t.TempDir()
	attDir := filepath.Join(storage, "ATT1")
	if err := os.MkdirAll(attDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(attDir, "paper.pdf"), []byte("%PDF"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := testLibraryConfig()
	cfg.StoragePath = storage
	client := NewClient(cfg)

	conv := &fixedConverter{texts: map[string]string{"paper.pdf": "   \n  "}}

	var buf strings.Builder
	docs, err := client.LoadDocuments(context.Background(), "COLL1", conv, &buf)
	if err != nil {
		t.Fatalf("LoadDocuments: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("got %d documents, want 0", len(docs))
	}
	if !strings.Contains(buf.String(), "no text after conversion") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestLoadDocumentsConverterFailure(t *testing.T) {
	ts := fakeZotero(t)
	defer ts.Close()
	withFakeAPI(t, ts.URL)

	storage := t.TempDir()
	attDir := filepath.Join(storage, "ATT1")
	if err := os.MkdirAll(attDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(attDir, "paper.pdf"), []byte("%PDF"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := testLibraryConfig()
	cfg.StoragePath = storage
	client := NewClient(cfg)

	conv := &fixedConverter{err: fmt.Errorf("corrupt PDF")}

	var buf strings.Builder
	docs, err := client.LoadDocuments(context.Background(), "COLL1", conv, &buf)
	if err != nil {
		t.Fatalf("a conversion failure must not abort the load: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("got %d documents, want 0", len(docs))
	}
	if !strings.Contains(buf.String(), "corrupt PDF") {
		t.Errorf("output = %q, want the conversion error reported", buf.String())
	}
}

func TestFindPDF(t *testing.T) {
	storage := t.TempDir()
	attDir := filepath.Join(storage, "KEY1")
	if err := os.MkdirAll(attDir, 0o755); err != nil {
		t.Fatal(err)
	}
	pdfPath := filepath.Join(attDir, "document.pdf")
	if err := os.WriteFile(pdfPath, []byte("%PDF"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := FindPDF(storage, "KEY1")
	if err != nil {
		t.Fatalf("FindPDF: %v", err)
	}
	if got != pdfPath {
		t.Errorf("FindPDF = %q, want %q", got, pdfPath)
	}

	if _, err := FindPDF(storage, ""); err == nil {
		t.Error("empty attachment key should fail")
	}
	if _, err := FindPDF(storage, "MISSING"); err == nil {
		t.Error("missing attachment directory should fail")
	}

	emptyDir := filepath.Join(storage, "KEY2")
	if err := os.MkdirAll(emptyDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if _, err := FindPDF(storage, "KEY2"); err == nil {
		t.Error("directory without a PDF should fail")
	}
}

func TestLoadLocal(t *testing.T) {
	dir := t.TempDir()

	files := map[string]string{
		"paper-one.md":  "# Attention Is All You Need\n\nBody.\n\n## References\n\n[1] X.",
		"paper-two.txt": "Plain text body without a heading.",
		"notes.json":    `{"ignored": true}`,
		"empty.md":      "   ",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	docs, err := LoadLocal(dir)
	if err != nil {
		t.Fatalf("LoadLocal: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("got %d documents, want 2: %+v", len(docs), docs)
	}

	byID := map[string]string{}
	for _, d := range docs {
		byID[d.ID] = d.Title
	}
	// H1 becomes the title; otherwise the slug is used.
	if byID["paper-one"] != "Attention Is All You Need" {
		t.Errorf("paper-one title = %q", byID["paper-one"])
	}
	if byID["paper-two"] != "paper-two" {
		t.Errorf("paper-two title = %q", byID["paper-two"])
	}

	for _, d := range docs {
		if strings.Contains(d.Text, "## References") {
			t.Errorf("%s: references not stripped", d.ID)
		}
	}
}

func TestLoadLocalMissingDirectory(t *testing.T) {
	_, err := LoadLocal(filepath.Join(t.TempDir(), "nope"))
	if err == nil {
		t.Fatal("expected error for missing directory")
	}
}
