// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// geminiBaseURL is the Gemini API endpoint base. Package-level var for
// test substitution.
var geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiClient calls the Gemini generateContent API. It implements
// Client; one Generate call maps to one HTTP request, with throttling
// surfaced as *ThrottleError and other failures as *RemoteError.
type GeminiClient struct {
	APIKey string
	// BaseURL overrides the default endpoint when non-empty.
	BaseURL string
	Client  *http.Client
}

// geminiRequest is the generateContent request body.
type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

// geminiResponse is the generateContent response body.
type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// geminiErrorResponse is the error envelope returned on non-2xx statuses.
type geminiErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Generate sends prompt to the named model and returns the concatenated
// text parts of the first candidate.
func (c *GeminiClient) Generate(ctx context.Context, model, prompt string) (string, error) {
	base := c.BaseURL
	if base == "" {
		base = geminiBaseURL
	}
	endpoint := fmt.Sprintf("%s/models/%s:generateContent", base, url.PathEscape(model))

	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.APIKey)

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling Gemini API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", geminiError(resp)
	}

	var gResp geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&gResp); err != nil {
		return "", fmt.Errorf("decoding Gemini response: %w", err)
	}

	if len(gResp.Candidates) == 0 {
		return "", &RemoteError{Status: resp.StatusCode, Message: "no candidates in response"}
	}

	var b strings.Builder
	for _, part := range gResp.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}
	if b.Len() == 0 {
		return "", &RemoteError{Status: resp.StatusCode, Message: "empty candidate content"}
	}
	return b.String(), nil
}

// geminiError maps a non-2xx response to the error taxonomy. HTTP 429 and
// the RESOURCE_EXHAUSTED status are throttling; everything else is fatal.
func geminiError(resp *http.Response) error {
	raw, _ := io.ReadAll(resp.Body)

	message := strings.TrimSpace(string(raw))
	status := ""
	var eResp geminiErrorResponse
	if err := json.Unmarshal(raw, &eResp); err == nil && eResp.Error.Message != "" {
		message = eResp.Error.Message
		status = eResp.Error.Status
	}

	if resp.StatusCode == http.StatusTooManyRequests || status == "RESOURCE_EXHAUSTED" {
		return &ThrottleError{Status: resp.StatusCode, Message: message}
	}
	return &RemoteError{Status: resp.StatusCode, Message: message}
}
