package repository

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

type geminiNarrativeRepository struct {
	narrativeClient
	client *genai.Client
}

func newGeminiNarrativeRepository(ctx context.Context, base narrativeClient) (NarrativeRepository, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      base.cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  base.httpClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: base.cfg.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &geminiNarrativeRepository{narrativeClient: base, client: client}, nil
}

func (r *geminiNarrativeRepository) Generate(ctx context.Context, prompt string) (string, error) {
	if err := r.wait(ctx); err != nil {
		return "", err
	}

	resp, err := r.client.Models.GenerateContent(ctx, r.cfg.Model,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(SystemPrompt, genai.RoleUser),
			Temperature:       genai.Ptr[float32](narrativeTemperature),
			MaxOutputTokens:   narrativeMaxTokens,
		})
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return "", &StatusError{StatusCode: apiErr.Code, Body: apiErr.Status + ": " + apiErr.Message}
		}
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text := cleanText(resp.Text())
	if text == "" {
		return "", fmt.Errorf("empty candidate text: %w", ErrSchemaMismatch)
	}
	return text, nil
}
