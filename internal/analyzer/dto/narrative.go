package dto

import (
	"errors"
	"fmt"
	"time"
)

// ProviderKind tags one remote text-generation API shape.
type ProviderKind string

const (
	ProviderOpenAI  ProviderKind = "openai"
	ProviderClaude  ProviderKind = "claude"
	ProviderGemini  ProviderKind = "gemini"
	ProviderBaidu   ProviderKind = "baidu"
	ProviderTencent ProviderKind = "tencent"
	ProviderGLM     ProviderKind = "glm"
	ProviderQwen    ProviderKind = "qwen"
	ProviderKimi    ProviderKind = "kimi"
	ProviderOllama  ProviderKind = "ollama"
	ProviderCustom  ProviderKind = "custom"
)

// ProviderConfig selects and configures a narrative provider.
type ProviderConfig struct {
	Kind    ProviderKind
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// ProviderInfo describes a supported provider for listing endpoints.
type ProviderInfo struct {
	Provider       ProviderKind `json:"provider"`
	Name           string       `json:"name"`
	DefaultBaseURL string       `json:"default_base_url"`
	DefaultModel   string       `json:"default_model"`
	RequiresAPIKey bool         `json:"requires_api_key"`
}

// NarrativeSummary is the provider-independent input to narrative generation.
type NarrativeSummary struct {
	Symbol      string
	Name        string
	Market      Market
	PriceInfo   PriceInfo
	Technical   TechnicalDetail
	Fundamental FundamentalSnapshot
	Sentiment   SentimentDetail
	Scores      ScoreBreakdown
	DataQuality DataQuality
}

// Narrative is generated commentary with the provider identity that produced it.
type Narrative struct {
	Text     string
	Provider string
	Model    string
}

// NarrativeFailure sub-classifies a NarrativeError.
type NarrativeFailure string

const (
	NarrativeDisabled      NarrativeFailure = "disabled"
	NarrativeTransport     NarrativeFailure = "transport"
	NarrativeAuth          NarrativeFailure = "auth"
	NarrativeQuota         NarrativeFailure = "quota"
	NarrativeUpstream      NarrativeFailure = "upstream"
	NarrativeEmptyResponse NarrativeFailure = "empty_response"
	NarrativeUnsupported   NarrativeFailure = "unsupported_provider"
)

// NarrativeError is the cause carried by a KindNarrative AnalysisError.
type NarrativeError struct {
	Failure  NarrativeFailure
	Provider ProviderKind
	Err      error
}

func (e *NarrativeError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s narrative %s", e.Provider, e.Failure)
	}
	return fmt.Sprintf("%s narrative %s: %v", e.Provider, e.Failure, e.Err)
}

func (e *NarrativeError) Unwrap() error { return e.Err }

// NarrativeFailureOf returns the sub-kind of a narrative error, or "" when err is not one.
func NarrativeFailureOf(err error) NarrativeFailure {
	var ne *NarrativeError
	if errors.As(err, &ne) {
		return ne.Failure
	}
	return ""
}
