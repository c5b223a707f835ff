package repository

import (
	"fmt"
	"sort"
	"strings"

	"golang-stock-analyzer/internal/analyzer/dto"
)

// SystemPrompt frames every narrative request.
const SystemPrompt = "You are a senior equity analyst with deep market experience. Provide professional, objective and well reasoned stock commentary."

func formatOptional(v *float64, format string) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf(format, *v)
}

// BuildAnalysisPrompt renders the numeric analysis into the prompt sent to every provider.
func BuildAnalysisPrompt(s dto.NarrativeSummary) string {
	var metrics strings.Builder
	names := make([]string, 0, len(s.Fundamental.Metrics))
	for name := range s.Fundamental.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		metrics.WriteString(fmt.Sprintf("- %s: %.2f\n", name, s.Fundamental.Metrics[name]))
	}
	if metrics.Len() == 0 {
		metrics.WriteString("- no fundamental metrics available\n")
	}

	var headlines strings.Builder
	for i, n := range s.Sentiment.Headlines {
		headlines.WriteString(fmt.Sprintf("%d. [%s] %s (polarity %.2f)\n", i+1, n.PublishedAt.Format("2006-01-02"), n.Title, n.Polarity))
	}
	if headlines.Len() == 0 {
		headlines.WriteString("No recent headlines.\n")
	}

	technical := "Technical indicators unavailable (insufficient price history)."
	if s.Technical.Available {
		technical = fmt.Sprintf(`- MA5/MA10/MA20/MA60: %.2f / %.2f / %.2f / %.2f (trend: %s)
- RSI(14): %.2f
- MACD: line %.4f, signal %.4f, histogram %.4f (%s)
- Bollinger: upper %.2f, middle %.2f, lower %.2f, position %.2f
- Williams %%R: %.2f, CCI: %.2f, Stochastic K/D: %.2f / %.2f
- ADX: %.2f (%s trend), ATR: %.2f, volume: %s`,
			s.Technical.MA5, s.Technical.MA10, s.Technical.MA20, s.Technical.MA60, s.Technical.MATrend,
			s.Technical.RSI,
			s.Technical.MACDLine, s.Technical.MACDSignal, s.Technical.MACDHistogram, s.Technical.MACDState,
			s.Technical.BBUpper, s.Technical.BBMiddle, s.Technical.BBLower, s.Technical.BBPosition,
			s.Technical.WilliamsR, s.Technical.CCI, s.Technical.StochasticK, s.Technical.StochasticD,
			s.Technical.ADX, s.Technical.TrendStrength, s.Technical.ATR, s.Technical.VolumeStatus)
	}

	promptTemplate := `Analyze the stock %s (%s), market %s, quoted in %s.

Price:
- Current price: %.2f
- Change: %.2f%%
- Volume ratio vs 20 day average: %.2f
- Annualized volatility: %.2f%%

Technical:
%s

Fundamentals (industry: %s, analyst rating: %s, beta: %s, revenue growth: %s, earnings growth: %s):
%s
News sentiment: mean polarity %.2f over %d articles (%s).
%s
Scores (0-100): technical %s, fundamental %.1f, sentiment %.1f, overall %.1f, recommendation %s.
Data provenance: price %s, fundamental %s, sentiment %s.

Write a concise report with these sections: overall assessment, technical view, fundamental view, sentiment and catalysts, risks, and an action suggestion consistent with the recommendation. Mention when data is synthetic.`

	return fmt.Sprintf(promptTemplate,
		s.Name, s.Symbol, s.Market, s.PriceInfo.Currency,
		s.PriceInfo.CurrentPrice, s.PriceInfo.ChangePercent, s.PriceInfo.VolumeRatio, s.PriceInfo.Volatility,
		technical,
		nonEmpty(s.Fundamental.Industry), nonEmpty(s.Fundamental.AnalystRating),
		formatOptional(s.Fundamental.Beta, "%.2f"),
		formatOptional(s.Fundamental.RevenueGrowth, "%.1f%%"),
		formatOptional(s.Fundamental.EarningsGrowth, "%.1f%%"),
		metrics.String(),
		s.Sentiment.MeanPolarity, s.Sentiment.Volume, s.Sentiment.Trend,
		headlines.String(),
		formatOptional(s.Scores.Technical, "%.1f"), s.Scores.Fundamental, s.Scores.Sentiment, s.Scores.Overall, s.Scores.Recommendation,
		s.DataQuality.Price, s.DataQuality.Fundamental, s.DataQuality.Sentiment,
	)
}

func nonEmpty(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
