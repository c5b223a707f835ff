package service

import (
	"context"
	"time"

	"golang-stock-analyzer/internal/analyzer/dto"
	"golang-stock-analyzer/internal/analyzer/repository"
	"golang-stock-analyzer/internal/analyzer/scoring"
	"golang-stock-analyzer/pkg/logger"

	"go.uber.org/zap"
)

const maxHeadlines = 10

// AnalysisService runs the single-symbol pipeline.
type AnalysisService interface {
	// Analyze runs the pipeline and saves the result to history.
	Analyze(ctx context.Context, raw string, opts dto.AnalyzeOptions) (dto.AnalysisResult, error)
	// Run runs the pipeline without touching history.
	Run(ctx context.Context, raw string, opts dto.AnalyzeOptions) (dto.AnalysisResult, error)
	History(ctx context.Context, filter dto.HistoryFilter) ([]dto.AnalysisResult, error)
	HistoryByID(ctx context.Context, id uint) (dto.AnalysisResult, error)
}

type analysisService struct {
	log         *logger.Logger
	marketData  MarketDataService
	narrative   NarrativeService
	historyRepo repository.AnalysisHistoryRepository
	now         func() time.Time
}

// NewAnalysisService creates the pipeline. historyRepo may be nil when no sink is configured.
func NewAnalysisService(log *logger.Logger, marketData MarketDataService, narrative NarrativeService, historyRepo repository.AnalysisHistoryRepository) AnalysisService {
	return &analysisService{
		log:         log,
		marketData:  marketData,
		narrative:   narrative,
		historyRepo: historyRepo,
		now:         time.Now,
	}
}

func (s *analysisService) Analyze(ctx context.Context, raw string, opts dto.AnalyzeOptions) (dto.AnalysisResult, error) {
	result, err := s.Run(ctx, raw, opts)
	if err != nil {
		return dto.AnalysisResult{}, err
	}
	if s.historyRepo != nil {
		if err := s.historyRepo.Save(ctx, result); err != nil {
			s.log.ErrorContext(ctx, "Failed to save analysis history",
				zap.String("symbol", result.Symbol.String()),
				zap.String("kind", string(dto.KindOf(err))),
				zap.Error(err))
		}
	}
	return result, nil
}

func (s *analysisService) Run(ctx context.Context, raw string, opts dto.AnalyzeOptions) (dto.AnalysisResult, error) {
	symbol, err := dto.ParseSymbol(raw)
	if err != nil {
		return dto.AnalysisResult{}, err
	}

	data, err := s.marketData.Fetch(ctx, symbol, opts.LookbackDays, opts.SentimentDays)
	if err != nil {
		if dto.IsKind(err, dto.KindDataUnavailable) {
			return dto.AnalysisResult{}, err
		}
		return dto.AnalysisResult{}, dto.NewError(dto.KindDataUnavailable, symbol.String(), "", err)
	}

	weights, adjusted := scoring.NormalizeWeights(opts.Weights)
	if adjusted {
		s.log.WarnContext(ctx, "Scoring weights normalized",
			zap.String("symbol", symbol.String()),
			logger.Field("requested", opts.Weights),
			logger.Field("normalized", weights))
	}

	technical, technicalScore := scoring.Technical(data.Prices)
	scores := scoring.Combine(technicalScore,
		scoring.FundamentalScore(data.Fundamentals),
		scoring.SentimentScore(data.Sentiment),
		weights)

	result := dto.AnalysisResult{
		Symbol:      symbol,
		Name:        data.Name,
		Market:      symbol.Market(),
		PriceInfo:   scoring.PriceInfoOf(data.Prices, symbol.Market()),
		Technical:   technical,
		Fundamental: data.Fundamentals,
		Sentiment:   scoring.SentimentDetailOf(data.Sentiment, maxHeadlines),
		Scores:      scores,
		DataQuality: data.Quality,
		AnalyzedAt:  s.now().UTC(),
	}

	if opts.EnableNarrative && s.narrative != nil {
		narrative, err := s.narrative.Generate(ctx, summaryOf(result), opts.Provider)
		if err != nil {
			s.log.WarnContext(ctx, "Narrative unavailable",
				zap.String("symbol", symbol.String()),
				zap.String("failure", string(dto.NarrativeFailureOf(err))),
				zap.Error(err))
		} else {
			text := narrative.Text
			result.Narrative = &text
			result.AIProvider = narrative.Provider
			result.AIModel = narrative.Model
		}
	}

	s.log.DebugContext(ctx, "Analysis completed",
		zap.String("symbol", symbol.String()),
		logger.Float64Field("overall", scores.Overall),
		zap.String("recommendation", string(scores.Recommendation)))
	return result, nil
}

func (s *analysisService) History(ctx context.Context, filter dto.HistoryFilter) ([]dto.AnalysisResult, error) {
	if filter.Symbol != "" {
		symbol, err := dto.ParseSymbol(filter.Symbol)
		if err != nil {
			return nil, err
		}
		filter.Symbol = symbol.String()
	}
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return nil, dto.NewError(dto.KindValidation, "", "from must not be after to", nil)
	}
	if s.historyRepo == nil {
		return []dto.AnalysisResult{}, nil
	}
	return s.historyRepo.Query(ctx, filter)
}

func (s *analysisService) HistoryByID(ctx context.Context, id uint) (dto.AnalysisResult, error) {
	if id == 0 {
		return dto.AnalysisResult{}, dto.NewError(dto.KindValidation, "", "id must be positive", nil)
	}
	if s.historyRepo == nil {
		return dto.AnalysisResult{}, dto.ErrAnalysisNotFound
	}
	return s.historyRepo.GetByID(ctx, id)
}

func summaryOf(r dto.AnalysisResult) dto.NarrativeSummary {
	return dto.NarrativeSummary{
		Symbol:      r.Symbol.String(),
		Name:        r.Name,
		Market:      r.Market,
		PriceInfo:   r.PriceInfo,
		Technical:   r.Technical,
		Fundamental: r.Fundamental,
		Sentiment:   r.Sentiment,
		Scores:      r.Scores,
		DataQuality: r.DataQuality,
	}
}
