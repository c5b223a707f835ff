package scoring

import "golang-stock-analyzer/internal/analyzer/dto"

// SentimentFullConfidenceVolume is the news count at which polarity is trusted fully.
const SentimentFullConfidenceVolume = 10

// SentimentScore maps mean polarity to 0..100 and pulls it toward 50 when
// there is little news.
func SentimentScore(s dto.SentimentSnapshot) float64 {
	raw := 50 + 50*clamp(s.MeanPolarity, -1, 1)
	return 50 + (raw-50)*volumeConfidence(s.Volume)
}

func volumeConfidence(volume int) float64 {
	if volume <= 0 {
		return 0
	}
	if volume >= SentimentFullConfidenceVolume {
		return 1
	}
	return float64(volume) / SentimentFullConfidenceVolume
}

// SentimentDetailOf summarizes s for a result, keeping at most maxHeadlines items.
func SentimentDetailOf(s dto.SentimentSnapshot, maxHeadlines int) dto.SentimentDetail {
	detail := dto.SentimentDetail{
		MeanPolarity: s.MeanPolarity,
		Volume:       s.Volume,
		Confidence:   s.Confidence,
	}
	if detail.Confidence == 0 {
		detail.Confidence = volumeConfidence(s.Volume)
	}
	switch {
	case s.MeanPolarity > 0.1:
		detail.Trend = TrendBullish
	case s.MeanPolarity < -0.1:
		detail.Trend = TrendBearish
	default:
		detail.Trend = TrendNeutral
	}
	if n := len(s.Items); n > 0 {
		if n > maxHeadlines {
			n = maxHeadlines
		}
		detail.Headlines = append([]dto.NewsItem(nil), s.Items[:n]...)
	}
	return detail
}
