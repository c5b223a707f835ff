package repository

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang-stock-analyzer/internal/analyzer/dto"
	"golang-stock-analyzer/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNarrative(t *testing.T, kind dto.ProviderKind, handler http.HandlerFunc) NarrativeRepository {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	repo, err := NewNarrativeRepository(context.Background(), dto.ProviderConfig{
		Kind:    kind,
		APIKey:  "test-key",
		BaseURL: srv.URL,
		Timeout: 5 * time.Second,
	}, nil, logger.NewNop())
	require.NoError(t, err)
	return repo
}

func decodeBody(t *testing.T, r *http.Request) map[string]interface{} {
	t.Helper()
	raw, err := io.ReadAll(r.Body)
	require.NoError(t, err)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

func TestNewNarrativeRepositoryDefaults(t *testing.T) {
	repo, err := NewNarrativeRepository(context.Background(), dto.ProviderConfig{Kind: dto.ProviderKimi}, nil, logger.NewNop())
	require.NoError(t, err)
	assert.Equal(t, dto.ProviderKimi, repo.Provider())
	assert.Equal(t, "moonshot-v1-8k", repo.Model())

	_, err = NewNarrativeRepository(context.Background(), dto.ProviderConfig{Kind: "mystery"}, nil, logger.NewNop())
	assert.ErrorIs(t, err, ErrUnsupportedProvider)
}

func TestSupportedProviders(t *testing.T) {
	providers := SupportedProviders()
	require.Len(t, providers, 10)
	assert.Equal(t, dto.ProviderOpenAI, providers[0].Provider)
	assert.Equal(t, dto.ProviderCustom, providers[9].Provider)

	assert.True(t, RequiresAPIKey(dto.ProviderClaude))
	assert.False(t, RequiresAPIKey(dto.ProviderOllama))
	assert.False(t, RequiresAPIKey("mystery"))
}

func TestOpenAICompatibleGenerate(t *testing.T) {
	repo := newTestNarrative(t, dto.ProviderOpenAI, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		body := decodeBody(t, r)
		assert.Equal(t, "gpt-4o-mini", body["model"])
		assert.Equal(t, float64(narrativeMaxTokens), body["max_tokens"])
		messages := body["messages"].([]interface{})
		require.Len(t, messages, 2)
		assert.Equal(t, "system", messages[0].(map[string]interface{})["role"])
		assert.Equal(t, "the prompt", messages[1].(map[string]interface{})["content"])

		_, _ = w.Write([]byte("{\"choices\":[{\"message\":{\"content\":\"```markdown\\nSolid outlook.\\n```\"}}]}"))
	})

	text, err := repo.Generate(context.Background(), "the prompt")
	require.NoError(t, err)
	assert.Equal(t, "Solid outlook.", text)
}

func TestOpenAICompatibleResultField(t *testing.T) {
	repo := newTestNarrative(t, dto.ProviderBaidu, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result":"ERNIE says hold."}`))
	})

	text, err := repo.Generate(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "ERNIE says hold.", text)
}

func TestOpenAICompatibleNoChoices(t *testing.T) {
	repo := newTestNarrative(t, dto.ProviderQwen, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})

	_, err := repo.Generate(context.Background(), "p")
	assert.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestNarrativeStatusError(t *testing.T) {
	repo := newTestNarrative(t, dto.ProviderGLM, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid key"}`))
	})

	_, err := repo.Generate(context.Background(), "p")
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
	assert.Contains(t, statusErr.Body, "invalid key")
}

func TestClaudeGenerate(t *testing.T) {
	repo := newTestNarrative(t, dto.ProviderClaude, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
		assert.Empty(t, r.Header.Get("Authorization"))
		body := decodeBody(t, r)
		assert.Equal(t, SystemPrompt, body["system"])
		assert.Len(t, body["messages"], 1)

		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"Part one. "},{"type":"text","text":"Part two."}]}`))
	})

	text, err := repo.Generate(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "Part one. Part two.", text)
}

func TestClaudeEmptyContent(t *testing.T) {
	repo := newTestNarrative(t, dto.ProviderClaude, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"content":[]}`))
	})

	_, err := repo.Generate(context.Background(), "p")
	assert.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestTencentGenerate(t *testing.T) {
	repo := newTestNarrative(t, dto.ProviderTencent, func(w http.ResponseWriter, r *http.Request) {
		body := decodeBody(t, r)
		assert.Equal(t, "hunyuan-standard", body["Model"])
		assert.Contains(t, body, "Messages")
		_, _ = w.Write([]byte(`{"Response":{"Choices":[{"Message":{"Role":"assistant","Content":"Hunyuan view."}}]}}`))
	})

	text, err := repo.Generate(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "Hunyuan view.", text)
}

func TestTencentErrorEnvelope(t *testing.T) {
	repo := newTestNarrative(t, dto.ProviderTencent, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Response":{"Error":{"Code":"AuthFailure","Message":"bad secret"}}}`))
	})

	_, err := repo.Generate(context.Background(), "p")
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
}

func TestGeminiGenerate(t *testing.T) {
	repo := newTestNarrative(t, dto.ProviderGemini, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "models/gemini-2.0-flash:generateContent"), r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Gemini view."}]}}]}`))
	})

	text, err := repo.Generate(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "Gemini view.", text)
}

func TestGeminiAPIError(t *testing.T) {
	repo := newTestNarrative(t, dto.ProviderGemini, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"message":"quota exceeded","status":"RESOURCE_EXHAUSTED"}}`))
	})

	_, err := repo.Generate(context.Background(), "p")
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
	assert.Contains(t, statusErr.Body, "RESOURCE_EXHAUSTED")
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "body", cleanText("  body \n"))
	assert.Equal(t, "body", cleanText("```\nbody\n```"))
	assert.Equal(t, "line1\nline2", cleanText("```md\nline1\nline2\n```"))
}
