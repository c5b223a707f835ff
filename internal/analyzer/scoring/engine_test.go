package scoring

import (
	"math/rand"
	"testing"

	"golang-stock-analyzer/internal/analyzer/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func TestTechnicalRequiresHistory(t *testing.T) {
	detail, score := Technical(generateWaveSeries(MinTechnicalHistory - 1))
	assert.Nil(t, score)
	assert.False(t, detail.Available)
	assert.Equal(t, MinTechnicalHistory-1, detail.HistoryLength)

	detail, score = Technical(generateWaveSeries(MinTechnicalHistory))
	require.NotNil(t, score)
	assert.True(t, detail.Available)
	assert.GreaterOrEqual(t, *score, 0.0)
	assert.LessOrEqual(t, *score, 100.0)
}

func TestTechnicalDirection(t *testing.T) {
	_, up := Technical(generateTrendSeries(120, 50, 0.5))
	_, down := Technical(generateTrendSeries(120, 200, -0.5))
	require.NotNil(t, up)
	require.NotNil(t, down)

	detail, _ := Technical(generateTrendSeries(120, 50, 0.5))
	assert.Equal(t, TrendBullish, detail.MATrend)
	assert.Equal(t, StrengthStrong, detail.TrendStrength)
	assert.NotEqual(t, *up, *down)
}

func TestFundamentalScore(t *testing.T) {
	tests := []struct {
		name     string
		snapshot dto.FundamentalSnapshot
		expected float64
	}{
		{name: "no metrics is neutral", snapshot: dto.FundamentalSnapshot{}, expected: 50},
		{name: "cheap pe", snapshot: dto.FundamentalSnapshot{Metrics: map[string]float64{dto.MetricPE: 4}}, expected: 100},
		{name: "expensive pe", snapshot: dto.FundamentalSnapshot{Metrics: map[string]float64{dto.MetricPE: 80}}, expected: 0},
		{name: "negative pe", snapshot: dto.FundamentalSnapshot{Metrics: map[string]float64{dto.MetricPE: -3}}, expected: 0},
		{name: "zero roe is present", snapshot: dto.FundamentalSnapshot{Metrics: map[string]float64{dto.MetricROE: 0}}, expected: 0},
		{
			name:     "averages only present metrics",
			snapshot: dto.FundamentalSnapshot{Metrics: map[string]float64{dto.MetricROE: 25, dto.MetricDebtRatio: 80}},
			expected: 50,
		},
		{
			name:     "optional fields",
			snapshot: dto.FundamentalSnapshot{RevenueGrowth: ptr(40), DebtToEquity: ptr(2)},
			expected: 50,
		},
		{
			name:     "midpoint",
			snapshot: dto.FundamentalSnapshot{Metrics: map[string]float64{dto.MetricNetMargin: 15, dto.MetricDividendYield: 3}},
			expected: 50,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, FundamentalScore(tt.snapshot), 1e-9)
		})
	}
}

func TestSentimentScore(t *testing.T) {
	tests := []struct {
		name     string
		snapshot dto.SentimentSnapshot
		expected float64
	}{
		{name: "no news", snapshot: dto.SentimentSnapshot{MeanPolarity: 0.9}, expected: 50},
		{name: "full confidence positive", snapshot: dto.SentimentSnapshot{MeanPolarity: 1, Volume: 10}, expected: 100},
		{name: "full confidence negative", snapshot: dto.SentimentSnapshot{MeanPolarity: -1, Volume: 25}, expected: 0},
		{name: "half volume dampens", snapshot: dto.SentimentSnapshot{MeanPolarity: 1, Volume: 5}, expected: 75},
		{name: "neutral", snapshot: dto.SentimentSnapshot{MeanPolarity: 0, Volume: 20}, expected: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, SentimentScore(tt.snapshot), 1e-9)
		})
	}
}

func TestNormalizeWeights(t *testing.T) {
	w, adjusted := NormalizeWeights(DefaultWeights())
	assert.False(t, adjusted)
	assert.Equal(t, DefaultWeights(), w)

	w, adjusted = NormalizeWeights(dto.Weights{Technical: 1, Fundamental: 1, Sentiment: 2})
	assert.True(t, adjusted)
	assert.InDelta(t, 0.25, w.Technical, 1e-12)
	assert.InDelta(t, 0.25, w.Fundamental, 1e-12)
	assert.InDelta(t, 0.5, w.Sentiment, 1e-12)

	w, adjusted = NormalizeWeights(dto.Weights{})
	assert.True(t, adjusted)
	assert.Equal(t, DefaultWeights(), w)

	w, adjusted = NormalizeWeights(dto.Weights{Technical: -1, Fundamental: 1})
	assert.True(t, adjusted)
	assert.Equal(t, dto.Weights{Fundamental: 1}, w)
}

func TestCombineDefaultWeighting(t *testing.T) {
	tech, fund, sent := 72.5, 61.0, 38.0
	b := Combine(&tech, fund, sent, DefaultWeights())

	assert.InDelta(t, 0.5*tech+0.3*fund+0.2*sent, b.Overall, 1e-12)
	require.NotNil(t, b.Technical)
	assert.Equal(t, tech, *b.Technical)
	assert.Equal(t, DefaultWeights(), b.Weights)
}

func TestCombineRenormalizesWithoutTechnical(t *testing.T) {
	fund, sent := 80.0, 30.0
	b := Combine(nil, fund, sent, DefaultWeights())

	assert.Nil(t, b.Technical)
	assert.InDelta(t, (0.3*fund+0.2*sent)/0.5, b.Overall, 1e-9)
	assert.Zero(t, b.Weights.Technical)
	assert.InDelta(t, 1.0, b.Weights.Sum(), 1e-12)

	// Changing the would-be technical input has no effect once it is unavailable.
	other := Combine(nil, fund, sent, dto.Weights{Technical: 0.9, Fundamental: 0.06, Sentiment: 0.04})
	assert.InDelta(t, b.Overall, other.Overall, 1e-9)

	onlyTech := Combine(nil, fund, sent, dto.Weights{Technical: 1})
	assert.InDelta(t, 55.0, onlyTech.Overall, 1e-9)
}

func TestCombineIsConvex(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		a, b := rng.Float64(), rng.Float64()
		if a > b {
			a, b = b, a
		}
		w := dto.Weights{Technical: a, Fundamental: b - a, Sentiment: 1 - b}
		tech := rng.Float64() * 100
		fund := rng.Float64() * 100
		sent := rng.Float64() * 100

		got := Combine(&tech, fund, sent, w).Overall
		lo := minOf(tech, fund, sent)
		hi := maxOf(tech, fund, sent)
		assert.GreaterOrEqual(t, got, lo-1e-9)
		assert.LessOrEqual(t, got, hi+1e-9)
		assert.GreaterOrEqual(t, got, 0.0)
		assert.LessOrEqual(t, got, 100.0)
	}
}

func TestRecommendationFor(t *testing.T) {
	tests := []struct {
		overall  float64
		expected dto.Recommendation
	}{
		{100, dto.StrongBuy},
		{80, dto.StrongBuy},
		{79.99, dto.Buy},
		{60, dto.Buy},
		{59.99, dto.Hold},
		{40, dto.Hold},
		{39.99, dto.Sell},
		{20, dto.Sell},
		{19.99, dto.StrongSell},
		{0, dto.StrongSell},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, RecommendationFor(tt.overall), "overall=%v", tt.overall)
	}
}

func TestScoreDeterministic(t *testing.T) {
	series := generateWaveSeries(120)
	fund := dto.FundamentalSnapshot{Metrics: map[string]float64{dto.MetricPE: 15, dto.MetricPB: 2, dto.MetricROE: 12}}
	sent := dto.Summarize([]dto.NewsItem{{Polarity: 0.3}, {Polarity: -0.1}, {Polarity: 0.6}})

	first := Score(series, fund, sent, DefaultWeights())
	second := Score(series, fund, sent, DefaultWeights())
	assert.Equal(t, first, second)
	require.NotNil(t, first.Technical)
}

func TestPriceInfoOf(t *testing.T) {
	series := generateTrendSeries(30, 100, 1)
	series[len(series)-1].Volume = 3_000_000

	info := PriceInfoOf(series, dto.MarketHongKong)
	assert.Equal(t, "HKD", info.Currency)
	assert.Equal(t, 129.0, info.CurrentPrice)
	assert.InDelta(t, 1.0/128*100, info.ChangePercent, 1e-9)
	assert.InDelta(t, 3_000_000/1_100_000.0, info.VolumeRatio, 1e-9)

	empty := PriceInfoOf(nil, dto.MarketUS)
	assert.Equal(t, 1.0, empty.VolumeRatio)
	assert.Equal(t, "USD", empty.Currency)
}

func TestSentimentDetailOf(t *testing.T) {
	items := []dto.NewsItem{{Title: "a", Polarity: 0.5}, {Title: "b", Polarity: 0.4}, {Title: "c", Polarity: 0.3}}
	detail := SentimentDetailOf(dto.Summarize(items), 2)

	assert.Equal(t, TrendBullish, detail.Trend)
	assert.Len(t, detail.Headlines, 2)
	assert.InDelta(t, 0.3, detail.Confidence, 1e-12)
}

func minOf(vs ...float64) float64 {
	m := vs[0]
	for _, v := range vs[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxOf(vs ...float64) float64 {
	m := vs[0]
	for _, v := range vs[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
