package repository

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"time"

	"golang-stock-analyzer/internal/analyzer/dto"
	"golang-stock-analyzer/pkg/utils"
)

const syntheticNewsCount = 20

var syntheticNames = map[string]string{
	"000001": "Ping An Bank",
	"000002": "China Vanke",
	"600000": "Shanghai Pudong Development Bank",
	"600036": "China Merchants Bank",
	"600519": "Kweichow Moutai",
	"000858": "Wuliangye Yibin",
	"00700":  "Tencent Holdings",
	"09988":  "Alibaba Group",
	"03690":  "Meituan",
	"AAPL":   "Apple Inc.",
	"MSFT":   "Microsoft Corporation",
	"GOOGL":  "Alphabet Inc.",
	"TSLA":   "Tesla, Inc.",
	"NVDA":   "NVIDIA Corporation",
}

var syntheticHeadlines = []string{
	"%s reports quarterly results",
	"Analysts revise outlook for %s",
	"%s announces share buyback plan",
	"Sector rotation weighs on %s",
	"%s management hosts investor day",
	"Institutional holders adjust %s positions",
	"%s faces regulatory review",
	"%s expands into new markets",
}

// syntheticMarketDataRepository derives plausible data from the symbol
// alone. The same symbol always yields the same data for one instance.
type syntheticMarketDataRepository struct {
	anchor time.Time
}

// NewSyntheticMarketDataRepository creates a generator whose price history ends at anchor's day.
func NewSyntheticMarketDataRepository(anchor time.Time) MarketDataRepository {
	return &syntheticMarketDataRepository{anchor: utils.TruncateDay(anchor)}
}

func seedFor(symbol dto.Symbol, category string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(symbol.Code()))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(category))
	return int64(h.Sum64() & math.MaxInt64)
}

func marketProfile(m dto.Market) (minPrice, maxPrice, dailyVol float64) {
	switch m {
	case dto.MarketHongKong:
		return 20, 400, 0.022
	case dto.MarketUS:
		return 50, 500, 0.018
	default:
		return 5, 60, 0.02
	}
}

func (r *syntheticMarketDataRepository) FetchPrices(ctx context.Context, symbol dto.Symbol, lookbackDays int) (dto.PriceSeries, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if lookbackDays <= 0 {
		return nil, fmt.Errorf("lookback must be positive, got %d", lookbackDays)
	}

	rng := rand.New(rand.NewSource(seedFor(symbol, "price")))
	lo, hi, vol := marketProfile(symbol.Market())
	price := lo + rng.Float64()*(hi-lo)
	drift := (rng.Float64() - 0.5) * vol / 5
	baseVolume := 1e6 + rng.Float64()*9e6

	dates := utils.BusinessDaysBack(r.anchor, lookbackDays)
	series := make(dto.PriceSeries, len(dates))
	for i, date := range dates {
		open := price
		ret := drift + rng.NormFloat64()*vol
		closePrice := math.Max(0.01, open*(1+ret))
		spread := math.Abs(rng.NormFloat64()) * vol * open / 2
		high := math.Max(open, closePrice) + spread
		low := math.Max(0.01, math.Min(open, closePrice)-spread)
		volume := int64(baseVolume * (0.5 + rng.Float64()))

		series[i] = dto.PricePoint{
			Date:   date,
			Open:   round2(open),
			High:   round2(high),
			Low:    round2(low),
			Close:  round2(closePrice),
			Volume: volume,
		}
		price = closePrice
	}
	return series, nil
}

func (r *syntheticMarketDataRepository) FetchFundamentals(ctx context.Context, symbol dto.Symbol) (dto.FundamentalSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return dto.FundamentalSnapshot{}, err
	}
	rng := rand.New(rand.NewSource(seedFor(symbol, "fundamental")))
	between := func(lo, hi float64) float64 { return round2(lo + rng.Float64()*(hi-lo)) }

	peLo, peHi := 8.0, 35.0
	if symbol.Market() == dto.MarketUS {
		peLo, peHi = 12, 45
	}
	beta := between(0.6, 1.6)
	de := between(0.1, 1.8)
	cr := between(0.8, 2.8)
	revenue := between(-10, 30)
	earnings := between(-15, 35)

	ratings := []string{"Buy", "Overweight", "Hold", "Underweight"}
	return dto.FundamentalSnapshot{
		Metrics: map[string]float64{
			dto.MetricPE:            between(peLo, peHi),
			dto.MetricPB:            between(0.8, 6),
			dto.MetricROE:           between(3, 25),
			dto.MetricNetMargin:     between(2, 30),
			dto.MetricDividendYield: between(0, 5),
			dto.MetricDebtRatio:     between(25, 75),
		},
		Industry:       "Synthetic",
		Sector:         string(symbol.Market()),
		AnalystRating:  ratings[rng.Intn(len(ratings))],
		Beta:           &beta,
		DebtToEquity:   &de,
		CurrentRatio:   &cr,
		RevenueGrowth:  &revenue,
		EarningsGrowth: &earnings,
	}, nil
}

func (r *syntheticMarketDataRepository) FetchNews(ctx context.Context, symbol dto.Symbol, lookbackDays int) (dto.SentimentSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return dto.SentimentSnapshot{}, err
	}
	if lookbackDays <= 0 {
		lookbackDays = 30
	}
	rng := rand.New(rand.NewSource(seedFor(symbol, "news")))
	bias := (rng.Float64() - 0.5) * 0.6

	items := make([]dto.NewsItem, syntheticNewsCount)
	for i := range items {
		polarity := math.Max(-1, math.Min(1, bias+(rng.Float64()-0.5)))
		items[i] = dto.NewsItem{
			Title:       fmt.Sprintf(syntheticHeadlines[rng.Intn(len(syntheticHeadlines))], symbol.Code()),
			Source:      "synthetic",
			PublishedAt: r.anchor.AddDate(0, 0, -(i*lookbackDays)/syntheticNewsCount),
			Polarity:    round2(polarity),
		}
	}
	snap := dto.Summarize(items)
	snap.Confidence = 0.5
	return snap, nil
}

func (r *syntheticMarketDataRepository) FetchName(ctx context.Context, symbol dto.Symbol) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if name, ok := syntheticNames[symbol.Code()]; ok {
		return name, nil
	}
	return symbol.Code() + " Holdings", nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
