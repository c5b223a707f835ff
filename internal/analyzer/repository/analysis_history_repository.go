package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"golang-stock-analyzer/internal/analyzer/dto"
	"golang-stock-analyzer/internal/entity"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type analysisHistoryRepository struct {
	db *gorm.DB
}

// NewAnalysisHistoryRepository creates a new GORM-based analysis history repository.
func NewAnalysisHistoryRepository(db *gorm.DB) AnalysisHistoryRepository {
	return &analysisHistoryRepository{db: db}
}

// Save inserts one result. Any failure is returned as a SinkError.
func (r *analysisHistoryRepository) Save(ctx context.Context, result dto.AnalysisResult) error {
	record, err := toAnalysisHistory(result)
	if err != nil {
		return dto.NewError(dto.KindSink, result.Symbol.String(), "", err)
	}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return dto.NewError(dto.KindSink, result.Symbol.String(), "", fmt.Errorf("failed to save analysis history: %w", err))
	}
	return nil
}

// Query returns saved results, newest first.
func (r *analysisHistoryRepository) Query(ctx context.Context, filter dto.HistoryFilter) ([]dto.AnalysisResult, error) {
	query := r.db.WithContext(ctx).Model(&entity.AnalysisHistory{})
	if filter.Symbol != "" {
		query = query.Where("symbol = ?", filter.Symbol)
	}
	if filter.From != nil {
		query = query.Where("analyzed_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("analyzed_at <= ?", *filter.To)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = dto.DefaultHistoryLimit
	}
	if limit > dto.MaxHistoryLimit {
		limit = dto.MaxHistoryLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	var records []entity.AnalysisHistory
	if err := query.Order("analyzed_at DESC").Order("id DESC").Limit(limit).Offset(offset).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query analysis history: %w", err)
	}

	results := make([]dto.AnalysisResult, 0, len(records))
	for _, record := range records {
		result, err := toAnalysisResult(record)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

// GetByID returns one saved result. A missing row is reported as
// dto.ErrAnalysisNotFound.
func (r *analysisHistoryRepository) GetByID(ctx context.Context, id uint) (dto.AnalysisResult, error) {
	var record entity.AnalysisHistory
	if err := r.db.WithContext(ctx).First(&record, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AnalysisResult{}, dto.ErrAnalysisNotFound
		}
		return dto.AnalysisResult{}, fmt.Errorf("failed to get analysis history %d: %w", id, err)
	}
	return toAnalysisResult(record)
}

func toAnalysisHistory(result dto.AnalysisResult) (*entity.AnalysisHistory, error) {
	record := &entity.AnalysisHistory{
		Symbol:         result.Symbol.String(),
		Market:         string(result.Market),
		Name:           result.Name,
		CurrentPrice:   result.PriceInfo.CurrentPrice,
		OverallScore:   result.Scores.Overall,
		Recommendation: string(result.Scores.Recommendation),
		Narrative:      result.Narrative,
		AIProvider:     result.AIProvider,
		AIModel:        result.AIModel,
		AnalyzedAt:     result.AnalyzedAt,
	}

	columns := []struct {
		dst *datatypes.JSON
		src interface{}
	}{
		{&record.PriceInfo, result.PriceInfo},
		{&record.Scores, result.Scores},
		{&record.Technical, result.Technical},
		{&record.Fundamental, result.Fundamental},
		{&record.Sentiment, result.Sentiment},
		{&record.DataQuality, result.DataQuality},
	}
	for _, c := range columns {
		b, err := json.Marshal(c.src)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal history column: %w", err)
		}
		*c.dst = datatypes.JSON(b)
	}
	return record, nil
}

func toAnalysisResult(record entity.AnalysisHistory) (dto.AnalysisResult, error) {
	symbol, err := dto.ParseSymbol(record.Symbol)
	if err != nil {
		return dto.AnalysisResult{}, fmt.Errorf("invalid stored symbol %q: %w", record.Symbol, err)
	}
	result := dto.AnalysisResult{
		ID:         record.ID,
		Symbol:     symbol,
		Name:       record.Name,
		Market:     dto.Market(record.Market),
		Narrative:  record.Narrative,
		AIProvider: record.AIProvider,
		AIModel:    record.AIModel,
		AnalyzedAt: record.AnalyzedAt,
	}

	columns := []struct {
		src datatypes.JSON
		dst interface{}
	}{
		{record.PriceInfo, &result.PriceInfo},
		{record.Scores, &result.Scores},
		{record.Technical, &result.Technical},
		{record.Fundamental, &result.Fundamental},
		{record.Sentiment, &result.Sentiment},
		{record.DataQuality, &result.DataQuality},
	}
	for _, c := range columns {
		if len(c.src) == 0 {
			continue
		}
		if err := json.Unmarshal(c.src, c.dst); err != nil {
			return dto.AnalysisResult{}, fmt.Errorf("failed to unmarshal history column: %w", err)
		}
	}
	return result, nil
}
