package repository

import (
	"context"

	"golang-stock-analyzer/internal/analyzer/dto"
	"golang-stock-analyzer/internal/entity"
)

// MarketDataRepository fetches the raw data categories for one symbol. Each
// category can fail independently.
type MarketDataRepository interface {
	FetchPrices(ctx context.Context, symbol dto.Symbol, lookbackDays int) (dto.PriceSeries, error)
	FetchFundamentals(ctx context.Context, symbol dto.Symbol) (dto.FundamentalSnapshot, error)
	FetchNews(ctx context.Context, symbol dto.Symbol, lookbackDays int) (dto.SentimentSnapshot, error)
	FetchName(ctx context.Context, symbol dto.Symbol) (string, error)
}

// NarrativeRepository sends a prompt to one text-generation provider.
type NarrativeRepository interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Provider() dto.ProviderKind
	Model() string
}

// AnalysisHistoryRepository persists completed analyses.
type AnalysisHistoryRepository interface {
	Save(ctx context.Context, result dto.AnalysisResult) error
	Query(ctx context.Context, filter dto.HistoryFilter) ([]dto.AnalysisResult, error)
	GetByID(ctx context.Context, id uint) (dto.AnalysisResult, error)
}

// BatchRunRepository persists finished batch summaries.
type BatchRunRepository interface {
	Save(ctx context.Context, task dto.BatchTask) error
	GetByTaskID(ctx context.Context, taskID string) (*entity.BatchRun, error)
}

// ProgressPublisher relays progress events outside the process.
type ProgressPublisher interface {
	Publish(ctx context.Context, event dto.ProgressEvent) error
}
