// Package gemini implements report generation on the Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"google.golang.org/genai"

	"github.com/couchcryptid/conference-travel-agent/internal/domain"
)

// Client implements domain.ReportGenerator using the Gemini API.
type Client struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

// NewClient creates a Gemini report generation client.
func NewClient(ctx context.Context, apiKey, model string, logger *slog.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &Client{
		client: client,
		model:  model,
		logger: logger,
	}, nil
}

// GenerateReport produces a markdown report for the prompt. With webSearch
// enabled the model may ground its answer in Google Search results and
// fetched URLs.
func (c *Client) GenerateReport(ctx context.Context, prompt string, webSearch bool) (string, error) {
	contents := []*genai.Content{
		{
			Parts: []*genai.Part{{Text: prompt}},
			Role:  "user",
		},
	}

	config := &genai.GenerateContentConfig{}
	if webSearch {
		config.Tools = []*genai.Tool{
			{
				URLContext:   &genai.URLContext{},
				GoogleSearch: &genai.GoogleSearch{},
			},
		}
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", domain.ErrEmptyReport
	}

	c.logger.Debug("report generated", "model", c.model, "bytes", len(text))
	return text, nil
}
