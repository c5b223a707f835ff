package scoring

import (
	"math"

	"golang-stock-analyzer/internal/analyzer/dto"
)

// MinTechnicalHistory is the number of bars the longest moving average needs.
const MinTechnicalHistory = 60

const (
	rsiPeriod        = 14
	macdFast         = 12
	macdSlow         = 26
	macdSignalPeriod = 9
	bollingerPeriod  = 20
	bollingerWidth   = 2.0
	williamsPeriod   = 14
	cciPeriod        = 20
	stochKPeriod     = 14
	stochDPeriod     = 3
	adxPeriod        = 14
	atrPeriod        = 14
	volumeAvgPeriod  = 20
)

// Indicator sub-weights; they sum to 1.
const (
	weightMATrend    = 0.25
	weightRSI        = 0.20
	weightMACD       = 0.20
	weightBollinger  = 0.15
	weightWilliams   = 0.05
	weightCCI        = 0.05
	weightStochastic = 0.05
	weightADX        = 0.05
)

// Trend and volume labels.
const (
	TrendBullish     = "bullish"
	TrendBearish     = "bearish"
	TrendNeutral     = "neutral"
	StrengthStrong   = "strong"
	StrengthModerate = "moderate"
	StrengthWeak     = "weak"
	VolumeHeavy      = "heavy"
	VolumeLight      = "light"
	VolumeNormal     = "normal"
)

// Technical computes the indicator detail and the technical sub-score. The
// score is nil when the series is shorter than MinTechnicalHistory.
func Technical(series dto.PriceSeries) (dto.TechnicalDetail, *float64) {
	detail := dto.TechnicalDetail{HistoryLength: len(series)}
	if len(series) < MinTechnicalHistory {
		return detail, nil
	}

	closes, highs, lows := series.Closes(), series.Highs(), series.Lows()
	last := closes[len(closes)-1]

	detail.Available = true
	detail.MA5 = SMA(closes, 5)
	detail.MA10 = SMA(closes, 10)
	detail.MA20 = SMA(closes, 20)
	detail.MA60 = SMA(closes, 60)
	detail.RSI = RSI(closes, rsiPeriod)

	macd := MACD(closes, macdFast, macdSlow, macdSignalPeriod)
	detail.MACDLine, detail.MACDSignal, detail.MACDHistogram = macd.Line, macd.Signal, macd.Histogram
	detail.MACDState = macd.State()

	detail.BBUpper, detail.BBMiddle, detail.BBLower, detail.BBPosition = Bollinger(closes, bollingerPeriod, bollingerWidth)
	detail.WilliamsR = WilliamsR(highs, lows, closes, williamsPeriod)
	detail.CCI = CCI(highs, lows, closes, cciPeriod)
	detail.StochasticK, detail.StochasticD = Stochastic(highs, lows, closes, stochKPeriod, stochDPeriod)
	adx := ADX(highs, lows, closes, adxPeriod)
	detail.ADX = adx.ADX
	detail.ATR = ATR(highs, lows, closes, atrPeriod)
	detail.TrendStrength = trendStrength(adx.ADX)
	detail.VolumeStatus = volumeStatus(series.Volumes())

	maSignal := maTrendSignal(last, detail.MA5, detail.MA20, detail.MA60)
	switch {
	case maSignal > 0.3:
		detail.MATrend = TrendBullish
	case maSignal < -0.3:
		detail.MATrend = TrendBearish
	default:
		detail.MATrend = TrendNeutral
	}

	combined := weightMATrend*maSignal +
		weightRSI*rsiSignal(detail.RSI) +
		weightMACD*macdSignal(detail.MACDState) +
		weightBollinger*bollingerSignal(detail.BBPosition) +
		weightWilliams*williamsSignal(detail.WilliamsR) +
		weightCCI*cciSignal(detail.CCI) +
		weightStochastic*stochasticSignal(detail.StochasticK, detail.StochasticD) +
		weightADX*adxSignal(adx)

	score := clamp(50+50*combined, 0, 100)
	return detail, &score
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// maTrendSignal averages the price/MA20, MA5/MA20 and MA20/MA60 alignment.
func maTrendSignal(price, ma5, ma20, ma60 float64) float64 {
	return (sign(price-ma20) + sign(ma5-ma20) + sign(ma20-ma60)) / 3
}

// rsiSignal treats oversold as bullish and overbought as bearish.
func rsiSignal(rsi float64) float64 {
	switch {
	case rsi <= 30:
		return 1
	case rsi >= 70:
		return -1
	default:
		return (rsi - 50) / 40
	}
}

func macdSignal(state string) float64 {
	switch state {
	case MACDGoldenCross:
		return 1
	case MACDDeathCross:
		return -1
	case MACDBullish:
		return 0.5
	case MACDBearish:
		return -0.5
	default:
		return 0
	}
}

func bollingerSignal(position float64) float64 {
	return clamp((0.5-position)*2, -1, 1)
}

func williamsSignal(r float64) float64 {
	switch {
	case r <= -80:
		return 1
	case r >= -20:
		return -1
	default:
		return 0
	}
}

func cciSignal(cci float64) float64 {
	return clamp(-cci/200, -1, 1)
}

func stochasticSignal(k, d float64) float64 {
	switch {
	case k <= 20:
		return 1
	case k >= 80:
		return -1
	default:
		return 0.5 * sign(k-d)
	}
}

func adxSignal(a ADXResult) float64 {
	if a.ADX <= 25 {
		return 0
	}
	return sign(a.PlusDI-a.MinusDI) * math.Min(1, a.ADX/50)
}

func trendStrength(adx float64) string {
	switch {
	case adx > 40:
		return StrengthStrong
	case adx > 25:
		return StrengthModerate
	default:
		return StrengthWeak
	}
}

func volumeStatus(volumes []float64) string {
	if len(volumes) < volumeAvgPeriod {
		return VolumeNormal
	}
	avg := SMA(volumes, volumeAvgPeriod)
	if avg == 0 {
		return VolumeNormal
	}
	ratio := volumes[len(volumes)-1] / avg
	switch {
	case ratio > 1.5:
		return VolumeHeavy
	case ratio < 0.5:
		return VolumeLight
	default:
		return VolumeNormal
	}
}

// PriceInfoOf summarizes the latest bar of series.
func PriceInfoOf(series dto.PriceSeries, market dto.Market) dto.PriceInfo {
	info := dto.PriceInfo{Currency: market.Currency(), VolumeRatio: 1}
	if len(series) == 0 {
		return info
	}
	closes := series.Closes()
	n := len(closes)
	info.CurrentPrice = closes[n-1]
	if n > 1 && closes[n-2] != 0 {
		info.ChangePercent = (closes[n-1] - closes[n-2]) / closes[n-2] * 100
	}
	volumes := series.Volumes()
	period := volumeAvgPeriod
	if n < period {
		period = n
	}
	if avg := SMA(volumes, period); avg > 0 {
		info.VolumeRatio = volumes[n-1] / avg
	}
	info.Volatility = AnnualizedVolatility(closes)
	return info
}
