package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang-stock-analyzer/internal/analyzer/dto"
	"golang-stock-analyzer/pkg/logger"

	"golang.org/x/time/rate"
)

const (
	narrativeMaxTokens   = 4000
	narrativeTemperature = 0.7
)

type providerDefaults struct {
	name    string
	baseURL string
	model   string
	keyless bool
}

var narrativeProviders = map[dto.ProviderKind]providerDefaults{
	dto.ProviderOpenAI:  {name: "OpenAI", baseURL: "https://api.openai.com/v1/chat/completions", model: "gpt-4o-mini"},
	dto.ProviderClaude:  {name: "Anthropic Claude", baseURL: "https://api.anthropic.com/v1/messages", model: "claude-3-5-sonnet-latest"},
	dto.ProviderGemini:  {name: "Google Gemini", baseURL: "", model: "gemini-2.0-flash"},
	dto.ProviderBaidu:   {name: "Baidu ERNIE", baseURL: "https://aip.baidubce.com/rpc/2.0/ai_custom/v1/wenxinworkshop/chat/completions", model: "ERNIE-Bot-4"},
	dto.ProviderTencent: {name: "Tencent Hunyuan", baseURL: "https://hunyuan.tencentcloudapi.com", model: "hunyuan-standard"},
	dto.ProviderGLM:     {name: "Zhipu GLM", baseURL: "https://open.bigmodel.cn/api/paas/v4/chat/completions", model: "glm-4"},
	dto.ProviderQwen:    {name: "Alibaba Qwen", baseURL: "https://dashscope.aliyuncs.com/compatible-mode/v1/chat/completions", model: "qwen-turbo"},
	dto.ProviderKimi:    {name: "Moonshot Kimi", baseURL: "https://api.moonshot.cn/v1/chat/completions", model: "moonshot-v1-8k"},
	dto.ProviderOllama:  {name: "Ollama", baseURL: "http://localhost:11434/v1/chat/completions", model: "llama3", keyless: true},
	dto.ProviderCustom:  {name: "Custom OpenAI-compatible", baseURL: "http://localhost:8000/v1/chat/completions", model: "default", keyless: true},
}

// ErrUnsupportedProvider is returned for an unknown provider kind.
var ErrUnsupportedProvider = errors.New("unsupported narrative provider")

// SupportedProviders lists the provider kinds in a stable order.
func SupportedProviders() []dto.ProviderInfo {
	order := []dto.ProviderKind{
		dto.ProviderOpenAI, dto.ProviderClaude, dto.ProviderGemini, dto.ProviderBaidu, dto.ProviderTencent,
		dto.ProviderGLM, dto.ProviderQwen, dto.ProviderKimi, dto.ProviderOllama, dto.ProviderCustom,
	}
	out := make([]dto.ProviderInfo, 0, len(order))
	for _, kind := range order {
		d := narrativeProviders[kind]
		out = append(out, dto.ProviderInfo{
			Provider:       kind,
			Name:           d.name,
			DefaultBaseURL: d.baseURL,
			DefaultModel:   d.model,
			RequiresAPIKey: !d.keyless,
		})
	}
	return out
}

// RequiresAPIKey reports whether kind needs a key to be usable.
func RequiresAPIKey(kind dto.ProviderKind) bool {
	d, ok := narrativeProviders[kind]
	return ok && !d.keyless
}

// NewNarrativeRepository builds the provider variant tagged by cfg.Kind. A
// nil limiter means no client side rate limit.
func NewNarrativeRepository(ctx context.Context, cfg dto.ProviderConfig, limiter *rate.Limiter, log *logger.Logger) (NarrativeRepository, error) {
	defaults, ok := narrativeProviders[cfg.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProvider, cfg.Kind)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaults.baseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaults.model
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	base := narrativeClient{
		cfg:            cfg,
		log:            log,
		httpClient:     &http.Client{Timeout: cfg.Timeout},
		requestLimiter: limiter,
	}

	switch cfg.Kind {
	case dto.ProviderClaude:
		return &claudeNarrativeRepository{narrativeClient: base}, nil
	case dto.ProviderGemini:
		return newGeminiNarrativeRepository(ctx, base)
	case dto.ProviderTencent:
		return &tencentNarrativeRepository{narrativeClient: base}, nil
	default:
		return &openAICompatibleNarrativeRepository{narrativeClient: base}, nil
	}
}

// narrativeClient holds what every provider variant shares.
type narrativeClient struct {
	cfg            dto.ProviderConfig
	log            *logger.Logger
	httpClient     *http.Client
	requestLimiter *rate.Limiter
}

func (c *narrativeClient) Provider() dto.ProviderKind { return c.cfg.Kind }

func (c *narrativeClient) Model() string { return c.cfg.Model }

func (c *narrativeClient) wait(ctx context.Context) error {
	if c.requestLimiter == nil {
		return nil
	}
	if err := c.requestLimiter.Wait(ctx); err != nil {
		c.log.ErrorContext(ctx, "Failed to wait for request limit", logger.StringField("provider", string(c.cfg.Kind)), logger.ErrorField(err))
		return fmt.Errorf("failed to wait for request limit: %w", err)
	}
	return nil
}

// postJSON sends payload and decodes a 2xx body into out. Non-2xx responses
// return *StatusError.
func (c *narrativeClient) postJSON(ctx context.Context, url string, headers map[string]string, payload, out interface{}) error {
	if err := c.wait(ctx); err != nil {
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request to %s: %w", c.cfg.Kind, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.WarnContext(ctx, "Received non-2xx response from narrative provider",
			logger.StringField("provider", string(c.cfg.Kind)),
			logger.IntField("status_code", resp.StatusCode))
		return &StatusError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %v: %w", err, ErrSchemaMismatch)
	}
	return nil
}

func bearer(key string) map[string]string {
	if key == "" {
		return nil
	}
	return map[string]string{"Authorization": "Bearer " + key}
}

// cleanText trims whitespace and a surrounding markdown code fence.
func cleanText(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if i := strings.IndexByte(s, '\n'); i >= 0 {
			s = s[i+1:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}
