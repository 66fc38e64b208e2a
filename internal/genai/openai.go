// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package genai

import (
	"context"
	"errors"
	"net/http"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIClient implements Client against any OpenAI-compatible chat
// completions endpoint, using the official openai-go SDK.
type OpenAIClient struct {
	opts []option.RequestOption
}

// NewOpenAIClient builds a client for the given key. baseURL is optional
// and selects a non-default compatible server.
func NewOpenAIClient(apiKey, baseURL string) *OpenAIClient {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAIClient{opts: opts}
}

// Generate sends prompt as a single user message to the named model.
func (c *OpenAIClient) Generate(ctx context.Context, model, prompt string) (string, error) {
	client := openai.NewClient(c.opts...)

	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", mapOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", &RemoteError{Message: "empty choices in response"}
	}
	return resp.Choices[0].Message.Content, nil
}

// mapOpenAIError converts SDK errors into the shared taxonomy. Transport
// errors pass through unchanged so timeout classification still applies.
func mapOpenAIError(err error) error {
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	if apiErr.StatusCode == http.StatusTooManyRequests {
		return &ThrottleError{Status: apiErr.StatusCode, Message: apiErr.Error()}
	}
	return &RemoteError{Status: apiErr.StatusCode, Message: apiErr.Error()}
}
