// Package scoring computes technical indicators and the weighted
// technical/fundamental/sentiment score of an instrument.
//
// All series are chronological: index 0 is the oldest value and the last
// index is the most recent.
package scoring

import "math"

// SMA returns the simple moving average of the last period values, 0 when there is not enough data.
func SMA(values []float64, period int) float64 {
	if period <= 0 || len(values) < period {
		return 0
	}
	sum := 0.0
	for _, v := range values[len(values)-period:] {
		sum += v
	}
	return sum / float64(period)
}

// EMASeries returns the exponential moving average at every index, seeded with the first value.
func EMASeries(values []float64, period int) []float64 {
	if len(values) == 0 || period <= 0 {
		return nil
	}
	k := 2.0 / float64(period+1)
	out := make([]float64, len(values))
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = values[i]*k + out[i-1]*(1-k)
	}
	return out
}

// RSI returns the relative strength index over the last period changes. It
// is 50 when there is not enough history and 100 when there were no losses.
func RSI(closes []float64, period int) float64 {
	if period <= 0 || len(closes) < period+1 {
		return 50
	}
	var gains, losses float64
	start := len(closes) - period
	for i := start; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}
	if losses == 0 {
		if gains == 0 {
			return 50
		}
		return 100
	}
	rs := (gains / float64(period)) / (losses / float64(period))
	return 100 - 100/(1+rs)
}

// MACDResult holds the latest MACD values and the previous histogram.
type MACDResult struct {
	Line          float64
	Signal        float64
	Histogram     float64
	PrevHistogram float64
}

// MACD computes the fast/slow EMA difference and its signal line.
func MACD(closes []float64, fast, slow, signal int) MACDResult {
	if len(closes) < slow {
		return MACDResult{}
	}
	fastEMA := EMASeries(closes, fast)
	slowEMA := EMASeries(closes, slow)
	line := make([]float64, len(closes))
	for i := range closes {
		line[i] = fastEMA[i] - slowEMA[i]
	}
	sig := EMASeries(line, signal)

	n := len(closes) - 1
	res := MACDResult{
		Line:      line[n],
		Signal:    sig[n],
		Histogram: line[n] - sig[n],
	}
	if n > 0 {
		res.PrevHistogram = line[n-1] - sig[n-1]
	}
	return res
}

// MACD crossover states.
const (
	MACDGoldenCross = "golden_cross"
	MACDDeathCross  = "death_cross"
	MACDBullish     = "bullish"
	MACDBearish     = "bearish"
	MACDNeutral     = "neutral"
)

// State classifies the crossover of the latest bar.
func (m MACDResult) State() string {
	switch {
	case m.Histogram > 0 && m.PrevHistogram <= 0:
		return MACDGoldenCross
	case m.Histogram < 0 && m.PrevHistogram >= 0:
		return MACDDeathCross
	case m.Histogram > 0:
		return MACDBullish
	case m.Histogram < 0:
		return MACDBearish
	default:
		return MACDNeutral
	}
}

// Bollinger returns the upper, middle and lower bands and where the last
// close sits between them (0 lower band, 1 upper band, 0.5 when flat).
func Bollinger(closes []float64, period int, width float64) (upper, middle, lower, position float64) {
	if len(closes) < period {
		return 0, 0, 0, 0.5
	}
	middle = SMA(closes, period)
	std := stdDev(closes[len(closes)-period:], middle)
	upper = middle + width*std
	lower = middle - width*std
	position = 0.5
	if upper > lower {
		position = (closes[len(closes)-1] - lower) / (upper - lower)
	}
	return upper, middle, lower, position
}

// ATR returns the average true range over the last period bars.
func ATR(highs, lows, closes []float64, period int) float64 {
	n := len(closes)
	if n < period+1 || len(highs) != n || len(lows) != n {
		return 0
	}
	sum := 0.0
	for i := n - period; i < n; i++ {
		sum += trueRange(highs[i], lows[i], closes[i-1])
	}
	return sum / float64(period)
}

// WilliamsR returns Williams %R in [-100, 0], -50 when the range is flat.
func WilliamsR(highs, lows, closes []float64, period int) float64 {
	if len(closes) < period {
		return -50
	}
	hh, ll := extremes(highs[len(highs)-period:], lows[len(lows)-period:])
	if hh == ll {
		return -50
	}
	return (hh - closes[len(closes)-1]) / (hh - ll) * -100
}

// CCI returns the commodity channel index of the typical price.
func CCI(highs, lows, closes []float64, period int) float64 {
	n := len(closes)
	if n < period {
		return 0
	}
	tp := make([]float64, period)
	for i := 0; i < period; i++ {
		j := n - period + i
		tp[i] = (highs[j] + lows[j] + closes[j]) / 3
	}
	mean := SMA(tp, period)
	dev := 0.0
	for _, v := range tp {
		dev += math.Abs(v - mean)
	}
	dev /= float64(period)
	if dev == 0 {
		return 0
	}
	return (tp[period-1] - mean) / (0.015 * dev)
}

// Stochastic returns %K for the last bar and %D as the mean of the last dPeriod %K values.
func Stochastic(highs, lows, closes []float64, kPeriod, dPeriod int) (k, d float64) {
	n := len(closes)
	if n < kPeriod+dPeriod-1 {
		return 50, 50
	}
	ks := make([]float64, dPeriod)
	for i := 0; i < dPeriod; i++ {
		end := n - dPeriod + i + 1
		hh, ll := extremes(highs[end-kPeriod:end], lows[end-kPeriod:end])
		if hh == ll {
			ks[i] = 50
			continue
		}
		ks[i] = (closes[end-1] - ll) / (hh - ll) * 100
	}
	return ks[dPeriod-1], SMA(ks, dPeriod)
}

// ADXResult holds the average directional index and the directional indicators.
type ADXResult struct {
	ADX     float64
	PlusDI  float64
	MinusDI float64
}

// ADX computes Wilder's average directional index.
func ADX(highs, lows, closes []float64, period int) ADXResult {
	n := len(closes)
	if n < 2*period+1 {
		return ADXResult{}
	}

	tr := make([]float64, n)
	plusDM := make([]float64, n)
	minusDM := make([]float64, n)
	for i := 1; i < n; i++ {
		up := highs[i] - highs[i-1]
		down := lows[i-1] - lows[i]
		if up > down && up > 0 {
			plusDM[i] = up
		}
		if down > up && down > 0 {
			minusDM[i] = down
		}
		tr[i] = trueRange(highs[i], lows[i], closes[i-1])
	}

	var trS, plusS, minusS float64
	for i := 1; i <= period; i++ {
		trS += tr[i]
		plusS += plusDM[i]
		minusS += minusDM[i]
	}

	p := float64(period)
	di := func() (float64, float64, float64) {
		if trS == 0 {
			return 0, 0, 0
		}
		plus := 100 * plusS / trS
		minus := 100 * minusS / trS
		if plus+minus == 0 {
			return plus, minus, 0
		}
		return plus, minus, 100 * math.Abs(plus-minus) / (plus + minus)
	}

	dxs := make([]float64, 0, n-period)
	plus, minus, dx := di()
	dxs = append(dxs, dx)
	for i := period + 1; i < n; i++ {
		trS = trS - trS/p + tr[i]
		plusS = plusS - plusS/p + plusDM[i]
		minusS = minusS - minusS/p + minusDM[i]
		plus, minus, dx = di()
		dxs = append(dxs, dx)
	}

	adx := 0.0
	for i := 0; i < period; i++ {
		adx += dxs[i]
	}
	adx /= p
	for i := period; i < len(dxs); i++ {
		adx = (adx*(p-1) + dxs[i]) / p
	}
	return ADXResult{ADX: adx, PlusDI: plus, MinusDI: minus}
}

// AnnualizedVolatility returns the annualized standard deviation of daily returns in percent.
func AnnualizedVolatility(closes []float64) float64 {
	if len(closes) < 3 {
		return 0
	}
	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			continue
		}
		returns = append(returns, closes[i]/closes[i-1]-1)
	}
	if len(returns) < 2 {
		return 0
	}
	mean := SMA(returns, len(returns))
	return stdDev(returns, mean) * math.Sqrt(252) * 100
}

func trueRange(high, low, prevClose float64) float64 {
	return math.Max(high-low, math.Max(math.Abs(high-prevClose), math.Abs(low-prevClose)))
}

func extremes(highs, lows []float64) (hh, ll float64) {
	hh, ll = math.Inf(-1), math.Inf(1)
	for i := range highs {
		hh = math.Max(hh, highs[i])
		ll = math.Min(ll, lows[i])
	}
	return hh, ll
}

func stdDev(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
