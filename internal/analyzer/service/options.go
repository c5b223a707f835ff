package service

import (
	"strings"

	"golang-stock-analyzer/internal/analyzer/config"
	"golang-stock-analyzer/internal/analyzer/dto"
)

// DefaultAnalyzeOptions builds the options every request starts from.
func DefaultAnalyzeOptions(cfg *config.Config) dto.AnalyzeOptions {
	return dto.AnalyzeOptions{
		Weights: dto.Weights{
			Technical:   cfg.Analysis.Weights.Technical,
			Fundamental: cfg.Analysis.Weights.Fundamental,
			Sentiment:   cfg.Analysis.Weights.Sentiment,
		},
		LookbackDays:    cfg.Analysis.TechnicalPeriodDays,
		SentimentDays:   cfg.Analysis.SentimentPeriodDays,
		EnableNarrative: cfg.AI.Enabled,
		Provider: dto.ProviderConfig{
			Kind:    dto.ProviderKind(strings.ToLower(strings.TrimSpace(cfg.AI.Provider))),
			APIKey:  cfg.AI.APIKey,
			BaseURL: cfg.AI.BaseURL,
			Model:   cfg.AI.Model,
			Timeout: cfg.AI.Timeout,
		},
	}
}

// WithOverrides returns a copy of opts with the request's optional fields applied.
func WithOverrides(opts dto.AnalyzeOptions, enableNarrative *bool, weights *dto.Weights) dto.AnalyzeOptions {
	if enableNarrative != nil {
		opts.EnableNarrative = *enableNarrative
	}
	if weights != nil {
		opts.Weights = *weights
	}
	return opts
}
