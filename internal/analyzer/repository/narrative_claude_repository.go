package repository

import (
	"context"
	"fmt"
	"strings"
)

const anthropicVersion = "2023-06-01"

type claudeMessagesRequest struct {
	Model     string        `json:"model"`
	System    string        `json:"system"`
	MaxTokens int           `json:"max_tokens"`
	Messages  []chatMessage `json:"messages"`
}

type claudeMessagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

type claudeNarrativeRepository struct {
	narrativeClient
}

func (r *claudeNarrativeRepository) Generate(ctx context.Context, prompt string) (string, error) {
	payload := claudeMessagesRequest{
		Model:     r.cfg.Model,
		System:    SystemPrompt,
		MaxTokens: narrativeMaxTokens,
		Messages:  []chatMessage{{Role: "user", Content: prompt}},
	}
	headers := map[string]string{
		"x-api-key":         r.cfg.APIKey,
		"anthropic-version": anthropicVersion,
	}

	var resp claudeMessagesResponse
	if err := r.postJSON(ctx, r.cfg.BaseURL, headers, payload, &resp); err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "" || block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("no text content in response: %w", ErrSchemaMismatch)
	}
	return cleanText(sb.String()), nil
}
