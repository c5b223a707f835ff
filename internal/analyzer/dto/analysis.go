package dto

import "time"

// Recommendation is the tier derived from the overall score.
type Recommendation string

const (
	StrongBuy  Recommendation = "StrongBuy"
	Buy        Recommendation = "Buy"
	Hold       Recommendation = "Hold"
	Sell       Recommendation = "Sell"
	StrongSell Recommendation = "StrongSell"
)

// Weights are the externally configured sub-score weights.
type Weights struct {
	Technical   float64 `json:"technical"`
	Fundamental float64 `json:"fundamental"`
	Sentiment   float64 `json:"sentiment"`
}

// Sum returns the total weight.
func (w Weights) Sum() float64 {
	return w.Technical + w.Fundamental + w.Sentiment
}

// ScoreBreakdown is the scoring engine output. Technical is nil when the
// price history was too short to compute it.
type ScoreBreakdown struct {
	Technical      *float64       `json:"technical"`
	Fundamental    float64        `json:"fundamental"`
	Sentiment      float64        `json:"sentiment"`
	Overall        float64        `json:"overall"`
	Recommendation Recommendation `json:"recommendation"`
	Weights        Weights        `json:"weights"`
}

// PriceInfo summarizes the latest price action.
type PriceInfo struct {
	CurrentPrice  float64 `json:"current_price"`
	ChangePercent float64 `json:"change_percent"`
	VolumeRatio   float64 `json:"volume_ratio"`
	Volatility    float64 `json:"volatility"`
	Currency      string  `json:"currency"`
}

// TechnicalDetail holds indicator values behind the technical sub-score.
type TechnicalDetail struct {
	Available     bool    `json:"available"`
	HistoryLength int     `json:"history_length"`
	MA5           float64 `json:"ma5"`
	MA10          float64 `json:"ma10"`
	MA20          float64 `json:"ma20"`
	MA60          float64 `json:"ma60"`
	MATrend       string  `json:"ma_trend"`
	RSI           float64 `json:"rsi"`
	MACDLine      float64 `json:"macd_line"`
	MACDSignal    float64 `json:"macd_signal"`
	MACDHistogram float64 `json:"macd_histogram"`
	MACDState     string  `json:"macd_state"`
	BBUpper       float64 `json:"bb_upper"`
	BBMiddle      float64 `json:"bb_middle"`
	BBLower       float64 `json:"bb_lower"`
	BBPosition    float64 `json:"bb_position"`
	WilliamsR     float64 `json:"williams_r"`
	CCI           float64 `json:"cci"`
	StochasticK   float64 `json:"stochastic_k"`
	StochasticD   float64 `json:"stochastic_d"`
	ADX           float64 `json:"adx"`
	ATR           float64 `json:"atr"`
	TrendStrength string  `json:"trend_strength"`
	VolumeStatus  string  `json:"volume_status"`
}

// SentimentDetail is the sentiment summary kept on a result.
type SentimentDetail struct {
	MeanPolarity float64    `json:"mean_polarity"`
	Volume       int        `json:"volume"`
	Confidence   float64    `json:"confidence"`
	Trend        string     `json:"trend"`
	Headlines    []NewsItem `json:"headlines,omitempty"`
}

// AnalysisResult is the complete output of one pipeline run. It is not
// modified after the pipeline returns it. ID is set only on results read
// back from history.
type AnalysisResult struct {
	ID          uint                `json:"id,omitempty"`
	Symbol      Symbol              `json:"symbol"`
	Name        string              `json:"name"`
	Market      Market              `json:"market"`
	PriceInfo   PriceInfo           `json:"price_info"`
	Technical   TechnicalDetail     `json:"technical"`
	Fundamental FundamentalSnapshot `json:"fundamental"`
	Sentiment   SentimentDetail     `json:"sentiment"`
	Scores      ScoreBreakdown      `json:"scores"`
	Narrative   *string             `json:"narrative"`
	DataQuality DataQuality         `json:"data_quality"`
	AIProvider  string              `json:"ai_provider,omitempty"`
	AIModel     string              `json:"ai_model,omitempty"`
	AnalyzedAt  time.Time           `json:"analyzed_at"`
}

// AnalyzeOptions configures one pipeline run. Notify only applies to batches
// and requests a summary notification when the batch finishes.
type AnalyzeOptions struct {
	Weights         Weights        `json:"weights"`
	LookbackDays    int            `json:"lookback_days"`
	SentimentDays   int            `json:"sentiment_days"`
	EnableNarrative bool           `json:"enable_narrative"`
	Provider        ProviderConfig `json:"-"`
	Notify          bool           `json:"-"`
}
