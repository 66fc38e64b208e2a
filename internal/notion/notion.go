// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package notion pushes analysis results into a Notion database. The
// database is expected to hold one page per paper with a "Title" title
// property and a "Status" select property; the summary is appended to the
// page body as blocks.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tsato-cnlab/paper-reader/internal/httputil"
	"github.com/tsato-cnlab/paper-reader/pkg/types"
)

// notionAPIBase is the Notion API endpoint. Package-level var for test
// substitution.
var notionAPIBase = "https://api.notion.com"

const notionVersion = "2022-06-28"

// maxBlocksPerAppend is the Notion API limit on children per append call.
const maxBlocksPerAppend = 100

// Sink updates Notion pages with analysis outcomes. It implements the
// orchestrator's ResultSink.
type Sink struct {
	HTTP       *http.Client
	Token      string
	DatabaseID string
}

// NewSink builds a Notion sink from configuration.
func NewSink(cfg types.NotionConfig) *Sink {
	return &Sink{
		HTTP:       &http.Client{Timeout: cfg.Timeout},
		Token:      cfg.Token,
		DatabaseID: cfg.DatabaseID,
	}
}

// Persist finds the page matching the document title, updates its Status
// property, and appends the summary as page blocks when present.
func (s *Sink) Persist(ctx context.Context, doc types.Document, art types.AnalysisArtifact) error {
	title := art.Title
	if strings.TrimSpace(title) == "" {
		title = doc.ID
	}

	pageID, err := s.findPage(ctx, title)
	if err != nil {
		return fmt.Errorf("finding Notion page for %q: %w", title, err)
	}

	if err := s.updateStatus(ctx, pageID, art); err != nil {
		return fmt.Errorf("updating Notion page for %q: %w", title, err)
	}

	if art.Summary != "" {
		if err := s.appendSummary(ctx, pageID, art.Summary); err != nil {
			return fmt.Errorf("appending summary for %q: %w", title, err)
		}
	}
	return nil
}

type queryResponse struct {
	Results []struct {
		ID string `json:"id"`
	} `json:"results"`
}

// findPage queries the database for an exact title match, then falls back
// to a contains match on the title's first word.
func (s *Sink) findPage(ctx context.Context, title string) (string, error) {
	pageID, err := s.queryByTitle(ctx, "equals", title)
	if err != nil {
		return "", err
	}
	if pageID == "" {
		firstWord := title
		if fields := strings.Fields(title); len(fields) > 0 {
			firstWord = fields[0]
		}
		pageID, err = s.queryByTitle(ctx, "contains", firstWord)
		if err != nil {
			return "", err
		}
	}
	if pageID == "" {
		return "", fmt.Errorf("no page found")
	}
	return pageID, nil
}

func (s *Sink) queryByTitle(ctx context.Context, operator, value string) (string, error) {
	body := map[string]any{
		"filter": map[string]any{
			"property": "Title",
			"title":    map[string]any{operator: value},
		},
		"page_size": 1,
	}

	var resp queryResponse
	url := fmt.Sprintf("%s/v1/databases/%s/query", notionAPIBase, s.DatabaseID)
	if err := s.do(ctx, http.MethodPost, url, body, &resp); err != nil {
		return "", err
	}
	if len(resp.Results) == 0 {
		return "", nil
	}
	return resp.Results[0].ID, nil
}

func (s *Sink) updateStatus(ctx context.Context, pageID string, art types.AnalysisArtifact) error {
	properties := map[string]any{
		"Status": map[string]any{
			"select": map[string]any{"name": string(art.Status)},
		},
	}
	if art.Error != "" {
		properties["Error"] = map[string]any{
			"rich_text": richText(truncate(art.Error, maxRichTextLen)),
		}
	}

	url := fmt.Sprintf("%s/v1/pages/%s", notionAPIBase, pageID)
	return s.do(ctx, http.MethodPatch, url, map[string]any{"properties": properties}, nil)
}

func (s *Sink) appendSummary(ctx context.Context, pageID, summary string) error {
	blocks := summaryBlocks(summary)

	url := fmt.Sprintf("%s/v1/blocks/%s/children", notionAPIBase, pageID)
	for len(blocks) > 0 {
		chunk := blocks
		if len(chunk) > maxBlocksPerAppend {
			chunk = chunk[:maxBlocksPerAppend]
		}
		if err := s.do(ctx, http.MethodPatch, url, map[string]any{"children": chunk}, nil); err != nil {
			return err
		}
		blocks = blocks[len(chunk):]
	}
	return nil
}

func (s *Sink) do(ctx context.Context, method, url string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.Token)
	req.Header.Set("Notion-Version", notionVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := httputil.DoWithRetry(ctx, s.HTTP, req, 0)
	if err != nil {
		return fmt.Errorf("Notion API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("Notion API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding Notion response: %w", err)
		}
	}
	return nil
}
