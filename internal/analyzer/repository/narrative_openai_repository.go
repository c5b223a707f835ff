package repository

import (
	"context"
	"fmt"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	// Baidu ERNIE returns the text under result.
	Result string `json:"result"`
}

// openAICompatibleNarrativeRepository covers every provider that speaks the
// chat completions shape: OpenAI, GLM, Qwen, Kimi, Ollama, Baidu and custom endpoints.
type openAICompatibleNarrativeRepository struct {
	narrativeClient
}

func (r *openAICompatibleNarrativeRepository) Generate(ctx context.Context, prompt string) (string, error) {
	payload := chatCompletionRequest{
		Model: r.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: SystemPrompt},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   narrativeMaxTokens,
		Temperature: narrativeTemperature,
	}

	var resp chatCompletionResponse
	if err := r.postJSON(ctx, r.cfg.BaseURL, bearer(r.cfg.APIKey), payload, &resp); err != nil {
		return "", err
	}

	if len(resp.Choices) > 0 {
		return cleanText(resp.Choices[0].Message.Content), nil
	}
	if resp.Result != "" {
		return cleanText(resp.Result), nil
	}
	return "", fmt.Errorf("no choices in response: %w", ErrSchemaMismatch)
}
