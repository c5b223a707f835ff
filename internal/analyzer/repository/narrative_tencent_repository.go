package repository

import (
	"context"
	"fmt"
)

type hunyuanMessage struct {
	Role    string `json:"Role"`
	Content string `json:"Content"`
}

type hunyuanRequest struct {
	Model       string           `json:"Model"`
	Messages    []hunyuanMessage `json:"Messages"`
	Temperature float64          `json:"Temperature"`
	TopP        float64          `json:"TopP"`
}

type hunyuanResponse struct {
	Response struct {
		Choices []struct {
			Message hunyuanMessage `json:"Message"`
		} `json:"Choices"`
		Error *struct {
			Code    string `json:"Code"`
			Message string `json:"Message"`
		} `json:"Error"`
	} `json:"Response"`
}

// tencentNarrativeRepository speaks the Hunyuan capitalized request shape.
type tencentNarrativeRepository struct {
	narrativeClient
}

func (r *tencentNarrativeRepository) Generate(ctx context.Context, prompt string) (string, error) {
	payload := hunyuanRequest{
		Model: r.cfg.Model,
		Messages: []hunyuanMessage{
			{Role: "system", Content: SystemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: narrativeTemperature,
		TopP:        0.9,
	}

	var resp hunyuanResponse
	if err := r.postJSON(ctx, r.cfg.BaseURL, bearer(r.cfg.APIKey), payload, &resp); err != nil {
		return "", err
	}
	if e := resp.Response.Error; e != nil {
		return "", &StatusError{StatusCode: hunyuanStatus(e.Code), Body: e.Code + ": " + e.Message}
	}
	if len(resp.Response.Choices) == 0 {
		return "", fmt.Errorf("no choices in response: %w", ErrSchemaMismatch)
	}
	return cleanText(resp.Response.Choices[0].Message.Content), nil
}

// hunyuanStatus maps Tencent Cloud error codes, which arrive with HTTP 200, onto HTTP semantics.
func hunyuanStatus(code string) int {
	switch code {
	case "AuthFailure", "AuthFailure.SignatureFailure", "AuthFailure.SecretIdNotFound", "UnauthorizedOperation":
		return 401
	case "LimitExceeded", "RequestLimitExceeded":
		return 429
	case "ResourceInsufficient", "FailedOperation.InsufficientBalance":
		return 402
	case "InternalError":
		return 500
	default:
		return 400
	}
}
