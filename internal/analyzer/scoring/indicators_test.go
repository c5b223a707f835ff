package scoring

import (
	"math"
	"testing"
	"time"

	"golang-stock-analyzer/internal/analyzer/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// generateTrendSeries builds n bars starting at start and moving by step per bar.
func generateTrendSeries(n int, start, step float64) dto.PriceSeries {
	series := make(dto.PriceSeries, n)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		c := start + step*float64(i)
		series[i] = dto.PricePoint{
			Date:   base.AddDate(0, 0, i),
			Open:   c - step/2,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 1_000_000,
		}
	}
	return series
}

// generateWaveSeries oscillates around 100 so indicators sit mid-range.
func generateWaveSeries(n int) dto.PriceSeries {
	series := make(dto.PriceSeries, n)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		c := 100 + 5*math.Sin(float64(i)/3)
		series[i] = dto.PricePoint{Date: base.AddDate(0, 0, i), Open: c, High: c + 1, Low: c - 1, Close: c, Volume: int64(1_000_000 + i*1000)}
	}
	return series
}

func TestSMA(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		period   int
		expected float64
	}{
		{name: "last three", values: []float64{10, 20, 30, 40}, period: 3, expected: 30},
		{name: "full window", values: []float64{10, 20, 30, 40, 50}, period: 5, expected: 30},
		{name: "insufficient data", values: []float64{10, 20}, period: 5, expected: 0},
		{name: "zero period", values: []float64{10}, period: 0, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, SMA(tt.values, tt.period), 1e-9)
		})
	}
}

func TestEMASeries(t *testing.T) {
	ema := EMASeries([]float64{10, 10, 10}, 3)
	assert.Equal(t, []float64{10, 10, 10}, ema)

	ema = EMASeries([]float64{10, 20}, 3)
	require.Len(t, ema, 2)
	assert.InDelta(t, 15, ema[1], 1e-9)

	assert.Nil(t, EMASeries(nil, 3))
}

func TestRSI(t *testing.T) {
	tests := []struct {
		name   string
		closes []float64
		minRSI float64
		maxRSI float64
	}{
		{name: "uptrend", closes: generateTrendSeries(30, 50, 1).Closes(), minRSI: 99.9, maxRSI: 100},
		{name: "downtrend", closes: generateTrendSeries(30, 100, -1).Closes(), minRSI: 0, maxRSI: 0.1},
		{name: "flat", closes: generateTrendSeries(30, 100, 0).Closes(), minRSI: 50, maxRSI: 50},
		{name: "short history", closes: []float64{1, 2, 3}, minRSI: 50, maxRSI: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rsi := RSI(tt.closes, 14)
			assert.GreaterOrEqual(t, rsi, tt.minRSI)
			assert.LessOrEqual(t, rsi, tt.maxRSI)
		})
	}
}

func TestMACDState(t *testing.T) {
	up := MACD(generateTrendSeries(80, 50, 1).Closes(), 12, 26, 9)
	assert.Greater(t, up.Line, 0.0)
	assert.Contains(t, []string{MACDBullish, MACDGoldenCross}, up.State())

	down := MACD(generateTrendSeries(80, 200, -1).Closes(), 12, 26, 9)
	assert.Less(t, down.Line, 0.0)
	assert.Contains(t, []string{MACDBearish, MACDDeathCross}, down.State())

	assert.Equal(t, MACDGoldenCross, MACDResult{Histogram: 0.2, PrevHistogram: -0.1}.State())
	assert.Equal(t, MACDDeathCross, MACDResult{Histogram: -0.2, PrevHistogram: 0.1}.State())
	assert.Equal(t, MACDNeutral, MACDResult{}.State())
	assert.Equal(t, MACDResult{}, MACD([]float64{1, 2}, 12, 26, 9))
}

func TestBollinger(t *testing.T) {
	upper, middle, lower, pos := Bollinger(generateTrendSeries(30, 100, 0).Closes(), 20, 2)
	assert.Equal(t, 100.0, upper)
	assert.Equal(t, 100.0, middle)
	assert.Equal(t, 100.0, lower)
	assert.Equal(t, 0.5, pos)

	_, _, _, pos = Bollinger(generateTrendSeries(30, 50, 1).Closes(), 20, 2)
	assert.Greater(t, pos, 0.8)
}

func TestOscillators(t *testing.T) {
	s := generateTrendSeries(60, 50, 1)
	h, l, c := s.Highs(), s.Lows(), s.Closes()

	wr := WilliamsR(h, l, c, 14)
	assert.InDelta(t, -100.0/15, wr, 1e-9, "close one point under the 14 bar high")

	k, d := Stochastic(h, l, c, 14, 3)
	assert.Greater(t, k, 80.0)
	assert.Greater(t, d, 80.0)

	assert.Greater(t, CCI(h, l, c, 20), 100.0)
	assert.InDelta(t, 2.0, ATR(h, l, c, 14), 1e-9)

	adx := ADX(h, l, c, 14)
	assert.Greater(t, adx.ADX, 25.0)
	assert.Greater(t, adx.PlusDI, adx.MinusDI)

	assert.Equal(t, ADXResult{}, ADX(h[:10], l[:10], c[:10], 14))
	assert.Equal(t, -50.0, WilliamsR(h[:3], l[:3], c[:3], 14))
}

func TestAnnualizedVolatility(t *testing.T) {
	assert.Zero(t, AnnualizedVolatility(generateTrendSeries(30, 100, 0).Closes()))
	assert.Greater(t, AnnualizedVolatility(generateWaveSeries(60).Closes()), 0.0)
	assert.Zero(t, AnnualizedVolatility([]float64{1, 2}))
}
