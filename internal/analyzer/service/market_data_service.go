package service

import (
	"context"
	"errors"
	"sync"

	"golang-stock-analyzer/internal/analyzer/dto"
	"golang-stock-analyzer/internal/analyzer/repository"
	"golang-stock-analyzer/pkg/logger"
	"golang-stock-analyzer/pkg/utils"

	"go.uber.org/zap"
)

// MarketDataService assembles everything the pipeline needs for one symbol.
type MarketDataService interface {
	Fetch(ctx context.Context, symbol dto.Symbol, lookbackDays, sentimentDays int) (dto.MarketData, error)
}

type marketDataService struct {
	remote    repository.MarketDataRepository
	synthetic repository.MarketDataRepository
	log       *logger.Logger
}

// NewMarketDataService creates the fallback composite. A nil remote means
// every category is served by synthetic.
func NewMarketDataService(remote, synthetic repository.MarketDataRepository, log *logger.Logger) MarketDataService {
	return &marketDataService{
		remote:    remote,
		synthetic: synthetic,
		log:       log,
	}
}

const (
	categoryPrice       = "price"
	categoryFundamental = "fundamental"
	categoryNews        = "news"
	categoryName        = "name"
)

// Fetch tries each category remote first, falling back to synthetic per
// category. It fails with DataUnavailable only when no category could be
// produced by either variant.
func (s *marketDataService) Fetch(ctx context.Context, symbol dto.Symbol, lookbackDays, sentimentDays int) (dto.MarketData, error) {
	data := dto.MarketData{Symbol: symbol}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs = make(map[string]error)
	)
	fail := func(category string, err error) {
		mu.Lock()
		errs[category] = err
		mu.Unlock()
	}

	wg.Add(4)
	utils.GoSafe(s.log, func() {
		defer wg.Done()
		series, quality, err := s.fetchPrices(ctx, symbol, lookbackDays)
		if err != nil {
			fail(categoryPrice, err)
			return
		}
		data.Prices, data.Quality.Price = series, quality
	})
	utils.GoSafe(s.log, func() {
		defer wg.Done()
		fundamentals, quality, err := s.fetchFundamentals(ctx, symbol)
		if err != nil {
			fail(categoryFundamental, err)
			return
		}
		data.Fundamentals, data.Quality.Fundamental = fundamentals, quality
	})
	utils.GoSafe(s.log, func() {
		defer wg.Done()
		sentiment, quality, err := s.fetchNews(ctx, symbol, sentimentDays)
		if err != nil {
			fail(categoryNews, err)
			return
		}
		data.Sentiment, data.Quality.Sentiment = sentiment, quality
	})
	utils.GoSafe(s.log, func() {
		defer wg.Done()
		name, err := s.fetchName(ctx, symbol)
		if err != nil {
			fail(categoryName, err)
			return
		}
		data.Name = name
	})
	wg.Wait()

	// Success always sets a quality, so an empty one also covers a recovered panic.
	priceErr := data.Quality.Price == ""
	fundamentalErr := data.Quality.Fundamental == ""
	newsErr := data.Quality.Sentiment == ""
	if priceErr && fundamentalErr && newsErr {
		return dto.MarketData{}, dto.NewError(dto.KindDataUnavailable, symbol.String(), "no data category could be fetched",
			errors.Join(errs[categoryPrice], errs[categoryFundamental], errs[categoryNews]))
	}

	// A category lost by both variants is reported as partial, with empty data.
	if priceErr {
		data.Quality.Price = dto.QualityPartiallyMissing
	}
	if fundamentalErr {
		data.Quality.Fundamental = dto.QualityPartiallyMissing
		data.Fundamentals = dto.FundamentalSnapshot{Metrics: map[string]float64{}}
	}
	if newsErr {
		data.Quality.Sentiment = dto.QualityPartiallyMissing
	}
	if data.Name == "" {
		data.Name = symbol.Code()
	}
	return data, nil
}

func (s *marketDataService) fetchPrices(ctx context.Context, symbol dto.Symbol, lookbackDays int) (dto.PriceSeries, dto.Quality, error) {
	if s.remote != nil {
		raw, err := s.remote.FetchPrices(ctx, symbol, lookbackDays)
		if err == nil {
			series, dropped := dto.NormalizeSeries(raw)
			if dropped > 0 {
				s.log.DebugContext(ctx, "Dropped duplicate price rows", zap.String("symbol", symbol.String()), zap.Int("dropped", dropped))
				return series, dto.QualityPartiallyMissing, nil
			}
			return series, dto.QualityReal, nil
		}
		s.logFallback(ctx, symbol, categoryPrice, err)
	}

	raw, err := s.synthetic.FetchPrices(ctx, symbol, lookbackDays)
	if err != nil {
		return nil, "", err
	}
	series, _ := dto.NormalizeSeries(raw)
	return series, dto.QualitySynthetic, nil
}

func (s *marketDataService) fetchFundamentals(ctx context.Context, symbol dto.Symbol) (dto.FundamentalSnapshot, dto.Quality, error) {
	if s.remote != nil {
		snap, err := s.remote.FetchFundamentals(ctx, symbol)
		if err == nil {
			if snap.KnownMetricCount()*2 < len(dto.KnownMetrics) {
				return snap, dto.QualityPartiallyMissing, nil
			}
			return snap, dto.QualityReal, nil
		}
		s.logFallback(ctx, symbol, categoryFundamental, err)
	}

	snap, err := s.synthetic.FetchFundamentals(ctx, symbol)
	if err != nil {
		return dto.FundamentalSnapshot{}, "", err
	}
	return snap, dto.QualitySynthetic, nil
}

func (s *marketDataService) fetchNews(ctx context.Context, symbol dto.Symbol, sentimentDays int) (dto.SentimentSnapshot, dto.Quality, error) {
	if s.remote != nil {
		snap, err := s.remote.FetchNews(ctx, symbol, sentimentDays)
		if err == nil {
			return snap, dto.QualityReal, nil
		}
		s.logFallback(ctx, symbol, categoryNews, err)
	}

	snap, err := s.synthetic.FetchNews(ctx, symbol, sentimentDays)
	if err != nil {
		return dto.SentimentSnapshot{}, "", err
	}
	return snap, dto.QualitySynthetic, nil
}

func (s *marketDataService) fetchName(ctx context.Context, symbol dto.Symbol) (string, error) {
	if s.remote != nil {
		name, err := s.remote.FetchName(ctx, symbol)
		if err == nil {
			return name, nil
		}
		s.logFallback(ctx, symbol, categoryName, err)
	}
	return s.synthetic.FetchName(ctx, symbol)
}

func (s *marketDataService) logFallback(ctx context.Context, symbol dto.Symbol, category string, err error) {
	s.log.WarnContext(ctx, "Remote market data unavailable, using synthetic",
		zap.String("symbol", symbol.String()),
		zap.String("category", category),
		zap.Error(err))
}
