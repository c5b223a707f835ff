package scoring

import (
	"math"

	"golang-stock-analyzer/internal/analyzer/dto"
	"golang-stock-analyzer/pkg/common"
)

// Recommendation thresholds over the overall score.
const (
	ThresholdStrongBuy = 80.0
	ThresholdBuy       = 60.0
	ThresholdHold      = 40.0
	ThresholdSell      = 20.0
)

const weightTolerance = 1e-9

// DefaultWeights returns the 0.5/0.3/0.2 weighting.
func DefaultWeights() dto.Weights {
	return dto.Weights{
		Technical:   common.DefaultTechnicalWeight,
		Fundamental: common.DefaultFundamentalWeight,
		Sentiment:   common.DefaultSentimentWeight,
	}
}

// NormalizeWeights scales w to sum to 1. Negative components count as zero
// and a non-positive total falls back to DefaultWeights. adjusted reports
// whether the returned weights differ from w.
func NormalizeWeights(w dto.Weights) (normalized dto.Weights, adjusted bool) {
	clean := dto.Weights{
		Technical:   math.Max(0, w.Technical),
		Fundamental: math.Max(0, w.Fundamental),
		Sentiment:   math.Max(0, w.Sentiment),
	}
	sum := clean.Sum()
	if sum <= 0 || math.IsNaN(sum) || math.IsInf(sum, 0) {
		return DefaultWeights(), true
	}
	if clean == w && math.Abs(sum-1) <= weightTolerance {
		return w, false
	}
	return dto.Weights{
		Technical:   clean.Technical / sum,
		Fundamental: clean.Fundamental / sum,
		Sentiment:   clean.Sentiment / sum,
	}, true
}

// RecommendationFor maps an overall score onto the fixed ladder.
func RecommendationFor(overall float64) dto.Recommendation {
	switch {
	case overall >= ThresholdStrongBuy:
		return dto.StrongBuy
	case overall >= ThresholdBuy:
		return dto.Buy
	case overall >= ThresholdHold:
		return dto.Hold
	case overall >= ThresholdSell:
		return dto.Sell
	default:
		return dto.StrongSell
	}
}

// Score computes the sub-scores and their weighted combination. Weights are
// normalized first; an unavailable technical sub-score gets zero effective
// weight and the remaining weights are re-normalized. The result is a pure
// function of its inputs.
func Score(series dto.PriceSeries, fundamentals dto.FundamentalSnapshot, sentiment dto.SentimentSnapshot, weights dto.Weights) dto.ScoreBreakdown {
	_, technical := Technical(series)
	return Combine(technical, FundamentalScore(fundamentals), SentimentScore(sentiment), weights)
}

// Combine weights already computed sub-scores.
func Combine(technical *float64, fundamental, sentiment float64, weights dto.Weights) dto.ScoreBreakdown {
	w, _ := NormalizeWeights(weights)

	effective := w
	if technical == nil {
		rest := w.Fundamental + w.Sentiment
		if rest <= 0 {
			// Only technical carried weight and it is unavailable.
			effective = dto.Weights{Fundamental: 0.5, Sentiment: 0.5}
		} else {
			effective = dto.Weights{Fundamental: w.Fundamental / rest, Sentiment: w.Sentiment / rest}
		}
	}

	var overall float64
	if technical != nil {
		overall = effective.Technical * *technical
	}
	overall += effective.Fundamental * fundamental
	overall += effective.Sentiment * sentiment
	overall = clamp(overall, 0, 100)

	var tech *float64
	if technical != nil {
		v := *technical
		tech = &v
	}
	return dto.ScoreBreakdown{
		Technical:      tech,
		Fundamental:    fundamental,
		Sentiment:      sentiment,
		Overall:        overall,
		Recommendation: RecommendationFor(overall),
		Weights:        effective,
	}
}
