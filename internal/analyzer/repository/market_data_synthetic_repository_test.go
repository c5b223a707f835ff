package repository

import (
	"context"
	"testing"
	"time"

	"golang-stock-analyzer/internal/analyzer/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var syntheticAnchor = time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC)

func TestSyntheticDeterministic(t *testing.T) {
	ctx := context.Background()
	symbol := dto.MustParseSymbol("600036")
	a := NewSyntheticMarketDataRepository(syntheticAnchor)
	b := NewSyntheticMarketDataRepository(syntheticAnchor)

	pa, err := a.FetchPrices(ctx, symbol, 120)
	require.NoError(t, err)
	pb, err := b.FetchPrices(ctx, symbol, 120)
	require.NoError(t, err)
	assert.Equal(t, pa, pb)

	fa, err := a.FetchFundamentals(ctx, symbol)
	require.NoError(t, err)
	fb, err := b.FetchFundamentals(ctx, symbol)
	require.NoError(t, err)
	assert.Equal(t, fa, fb)

	na, err := a.FetchNews(ctx, symbol, 30)
	require.NoError(t, err)
	nb, err := b.FetchNews(ctx, symbol, 30)
	require.NoError(t, err)
	assert.Equal(t, na, nb)

	other, err := a.FetchPrices(ctx, dto.MustParseSymbol("000001"), 120)
	require.NoError(t, err)
	assert.NotEqual(t, pa[len(pa)-1].Close, other[len(other)-1].Close)
}

func TestSyntheticPricesShape(t *testing.T) {
	series, err := NewSyntheticMarketDataRepository(syntheticAnchor).FetchPrices(context.Background(), dto.MustParseSymbol("AAPL"), 90)
	require.NoError(t, err)
	require.Len(t, series, 90)

	for i, p := range series {
		assert.GreaterOrEqual(t, p.High, p.Low)
		assert.GreaterOrEqual(t, p.High, p.Close)
		assert.LessOrEqual(t, p.Low, p.Close)
		assert.Positive(t, p.Volume)
		if i > 0 {
			assert.True(t, p.Date.After(series[i-1].Date))
		}
		assert.NotEqual(t, time.Saturday, p.Date.Weekday())
		assert.NotEqual(t, time.Sunday, p.Date.Weekday())
	}
	assert.False(t, series[len(series)-1].Date.After(syntheticAnchor))
}

func TestSyntheticFundamentalsComplete(t *testing.T) {
	snap, err := NewSyntheticMarketDataRepository(syntheticAnchor).FetchFundamentals(context.Background(), dto.MustParseSymbol("00700"))
	require.NoError(t, err)
	assert.Equal(t, len(dto.KnownMetrics), snap.KnownMetricCount())
	assert.NotNil(t, snap.RevenueGrowth)
	assert.NotNil(t, snap.EarningsGrowth)
}

func TestSyntheticNews(t *testing.T) {
	snap, err := NewSyntheticMarketDataRepository(syntheticAnchor).FetchNews(context.Background(), dto.MustParseSymbol("000001"), 30)
	require.NoError(t, err)
	assert.Equal(t, syntheticNewsCount, snap.Volume)
	assert.Equal(t, 0.5, snap.Confidence)
	assert.GreaterOrEqual(t, snap.MeanPolarity, -1.0)
	assert.LessOrEqual(t, snap.MeanPolarity, 1.0)
}

func TestSyntheticName(t *testing.T) {
	repo := NewSyntheticMarketDataRepository(syntheticAnchor)
	name, err := repo.FetchName(context.Background(), dto.MustParseSymbol("600519"))
	require.NoError(t, err)
	assert.Equal(t, "Kweichow Moutai", name)

	name, err = repo.FetchName(context.Background(), dto.MustParseSymbol("300750"))
	require.NoError(t, err)
	assert.Equal(t, "300750 Holdings", name)
}

func TestSyntheticRespectsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewSyntheticMarketDataRepository(syntheticAnchor).FetchPrices(ctx, dto.MustParseSymbol("600036"), 30)
	assert.ErrorIs(t, err, context.Canceled)
}
