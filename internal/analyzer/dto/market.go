package dto

import (
	"sort"
	"time"
)

// PricePoint is one daily bar.
type PricePoint struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// PriceSeries is a chronological sequence of bars with unique dates.
type PriceSeries []PricePoint

// NormalizeSeries sorts points by date and drops repeated dates, keeping the
// first occurrence. It returns the series and the number of dropped points.
func NormalizeSeries(points []PricePoint) (PriceSeries, int) {
	sorted := make([]PricePoint, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	out := make(PriceSeries, 0, len(sorted))
	for _, p := range sorted {
		if n := len(out); n > 0 && out[n-1].Date.Equal(p.Date) {
			continue
		}
		out = append(out, p)
	}
	return out, len(points) - len(out)
}

// Closes returns the closing prices.
func (s PriceSeries) Closes() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Close
	}
	return out
}

// Highs returns the high prices.
func (s PriceSeries) Highs() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.High
	}
	return out
}

// Lows returns the low prices.
func (s PriceSeries) Lows() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Low
	}
	return out
}

// Volumes returns the traded volumes as floats.
func (s PriceSeries) Volumes() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = float64(p.Volume)
	}
	return out
}

// Fundamental metric names.
const (
	MetricPE            = "pe_ratio"
	MetricPB            = "pb_ratio"
	MetricROE           = "roe"
	MetricNetMargin     = "net_margin"
	MetricDividendYield = "dividend_yield"
	MetricDebtRatio     = "debt_ratio"
)

// KnownMetrics lists the metric names the scorer understands.
var KnownMetrics = []string{MetricPE, MetricPB, MetricROE, MetricNetMargin, MetricDividendYield, MetricDebtRatio}

// FundamentalSnapshot holds named financial metrics. A metric absent from
// Metrics is missing, never zero.
type FundamentalSnapshot struct {
	Metrics        map[string]float64 `json:"metrics"`
	Industry       string             `json:"industry,omitempty"`
	Sector         string             `json:"sector,omitempty"`
	AnalystRating  string             `json:"analyst_rating,omitempty"`
	Beta           *float64           `json:"beta,omitempty"`
	DebtToEquity   *float64           `json:"debt_to_equity,omitempty"`
	CurrentRatio   *float64           `json:"current_ratio,omitempty"`
	RevenueGrowth  *float64           `json:"revenue_growth,omitempty"`
	EarningsGrowth *float64           `json:"earnings_growth,omitempty"`
	TargetPrice    *float64           `json:"target_price,omitempty"`
}

// Metric returns the named metric and whether it is present.
func (f FundamentalSnapshot) Metric(name string) (float64, bool) {
	v, ok := f.Metrics[name]
	return v, ok
}

// KnownMetricCount counts how many of KnownMetrics are present.
func (f FundamentalSnapshot) KnownMetricCount() int {
	n := 0
	for _, name := range KnownMetrics {
		if _, ok := f.Metrics[name]; ok {
			n++
		}
	}
	return n
}

// NewsItem is one news article with a polarity score in [-1,1].
type NewsItem struct {
	Title       string    `json:"title"`
	Content     string    `json:"content,omitempty"`
	Source      string    `json:"source,omitempty"`
	PublishedAt time.Time `json:"published_at"`
	Polarity    float64   `json:"polarity"`
}

// SentimentSnapshot aggregates recent news.
type SentimentSnapshot struct {
	Items        []NewsItem `json:"items,omitempty"`
	MeanPolarity float64    `json:"mean_polarity"`
	Volume       int        `json:"volume"`
	Confidence   float64    `json:"confidence"`
}

// Summarize aggregates items into a snapshot. Polarities are clamped to
// [-1,1]. Confidence is left for the caller to fill when a provider supplies it.
func Summarize(news []NewsItem) SentimentSnapshot {
	snap := SentimentSnapshot{Volume: len(news)}
	if len(news) == 0 {
		return snap
	}
	items := make([]NewsItem, len(news))
	copy(items, news)
	snap.Items = items

	sum := 0.0
	for i := range items {
		if items[i].Polarity > 1 {
			items[i].Polarity = 1
		} else if items[i].Polarity < -1 {
			items[i].Polarity = -1
		}
		sum += items[i].Polarity
	}
	snap.MeanPolarity = sum / float64(len(items))
	return snap
}

// Quality records where one data category came from.
type Quality string

const (
	QualityReal             Quality = "Real"
	QualitySynthetic        Quality = "Synthetic"
	QualityPartiallyMissing Quality = "PartiallyMissing"
)

// DataQuality records provenance for each data category of one analysis.
type DataQuality struct {
	Price       Quality `json:"price"`
	Fundamental Quality `json:"fundamental"`
	Sentiment   Quality `json:"sentiment"`
}

// AllReal reports whether every category came from the remote provider intact.
func (q DataQuality) AllReal() bool {
	return q.Price == QualityReal && q.Fundamental == QualityReal && q.Sentiment == QualityReal
}

// MarketData is everything fetched for one symbol.
type MarketData struct {
	Symbol       Symbol
	Name         string
	Prices       PriceSeries
	Fundamentals FundamentalSnapshot
	Sentiment    SentimentSnapshot
	Quality      DataQuality
}
