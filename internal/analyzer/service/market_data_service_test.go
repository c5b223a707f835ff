package service

import (
	"context"
	"testing"

	"golang-stock-analyzer/internal/analyzer/dto"
	"golang-stock-analyzer/internal/analyzer/repository"
	"golang-stock-analyzer/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMarketData(remote repository.MarketDataRepository) MarketDataService {
	return NewMarketDataService(remote, repository.NewSyntheticMarketDataRepository(testAnchor), logger.NewNop())
}

func TestMarketDataAllRemote(t *testing.T) {
	data, err := newTestMarketData(newFakeMarketRepo()).Fetch(context.Background(), dto.MustParseSymbol("600036"), 120, 30)
	require.NoError(t, err)
	assert.True(t, data.Quality.AllReal())
	assert.Equal(t, "Remote 600036", data.Name)
	assert.Len(t, data.Prices, 120)
}

func TestMarketDataPerCategoryFallback(t *testing.T) {
	remote := newFakeMarketRepo()
	remote.failFund = true

	data, err := newTestMarketData(remote).Fetch(context.Background(), dto.MustParseSymbol("600036"), 120, 30)
	require.NoError(t, err)
	assert.Equal(t, dto.QualityReal, data.Quality.Price)
	assert.Equal(t, dto.QualitySynthetic, data.Quality.Fundamental)
	assert.Equal(t, dto.QualityReal, data.Quality.Sentiment)
	assert.Equal(t, len(dto.KnownMetrics), data.Fundamentals.KnownMetricCount())
}

func TestMarketDataRemoteUnreachable(t *testing.T) {
	data, err := newTestMarketData(failingMarketRepo()).Fetch(context.Background(), dto.MustParseSymbol("00700"), 90, 30)
	require.NoError(t, err)
	assert.Equal(t, dto.DataQuality{Price: dto.QualitySynthetic, Fundamental: dto.QualitySynthetic, Sentiment: dto.QualitySynthetic}, data.Quality)
	assert.Equal(t, "Tencent Holdings", data.Name)
}

func TestMarketDataWithoutRemote(t *testing.T) {
	data, err := newTestMarketData(nil).Fetch(context.Background(), dto.MustParseSymbol("AAPL"), 60, 30)
	require.NoError(t, err)
	assert.Equal(t, dto.QualitySynthetic, data.Quality.Price)
	assert.Equal(t, "Apple Inc.", data.Name)
}

func TestMarketDataPartiallyMissing(t *testing.T) {
	remote := newFakeMarketRepo()
	remote.duplicateFirst = true
	remote.metrics = map[string]float64{dto.MetricPE: 12}

	data, err := newTestMarketData(remote).Fetch(context.Background(), dto.MustParseSymbol("000001"), 120, 30)
	require.NoError(t, err)
	assert.Equal(t, dto.QualityPartiallyMissing, data.Quality.Price)
	assert.Len(t, data.Prices, 120)
	assert.Equal(t, dto.QualityPartiallyMissing, data.Quality.Fundamental)
	assert.Equal(t, dto.QualityReal, data.Quality.Sentiment)
}

func TestMarketDataUnavailable(t *testing.T) {
	svc := NewMarketDataService(failingMarketRepo(), failingMarketRepo(), logger.NewNop())

	_, err := svc.Fetch(context.Background(), dto.MustParseSymbol("000001"), 120, 30)
	require.Error(t, err)
	assert.Equal(t, dto.KindDataUnavailable, dto.KindOf(err))
}

func TestMarketDataSingleCategoryLost(t *testing.T) {
	synthetic := newFakeMarketRepo()
	synthetic.failNews = true
	remote := newFakeMarketRepo()
	remote.failNews = true
	svc := NewMarketDataService(remote, synthetic, logger.NewNop())

	data, err := svc.Fetch(context.Background(), dto.MustParseSymbol("000001"), 120, 30)
	require.NoError(t, err)
	assert.Equal(t, dto.QualityPartiallyMissing, data.Quality.Sentiment)
	assert.Zero(t, data.Sentiment.Volume)
	assert.Equal(t, dto.QualityReal, data.Quality.Price)
}
