package scoring

import "golang-stock-analyzer/internal/analyzer/dto"

// bound maps a raw metric onto 0..100 between lo and hi. inverted bounds
// score lower values higher.
type bound struct {
	lo, hi   float64
	inverted bool
}

func (b bound) normalize(v float64) float64 {
	s := clamp((v-b.lo)/(b.hi-b.lo), 0, 1) * 100
	if b.inverted {
		return 100 - s
	}
	return s
}

var metricBounds = map[string]bound{
	dto.MetricPE:            {lo: 5, hi: 60, inverted: true},
	dto.MetricPB:            {lo: 0.5, hi: 10, inverted: true},
	dto.MetricROE:           {lo: 0, hi: 25},
	dto.MetricNetMargin:     {lo: 0, hi: 30},
	dto.MetricDividendYield: {lo: 0, hi: 6},
	dto.MetricDebtRatio:     {lo: 20, hi: 80, inverted: true},
}

var (
	growthBound       = bound{lo: -20, hi: 40}
	currentRatioBound = bound{lo: 0.5, hi: 3}
	debtToEquityBound = bound{lo: 0, hi: 2, inverted: true}
)

// FundamentalScore averages the normalized value of every metric present in
// f. It is 50 when no metric is available.
func FundamentalScore(f dto.FundamentalSnapshot) float64 {
	var sum float64
	var n int

	// Iterate in a fixed order so floating point summation is reproducible.
	for _, name := range dto.KnownMetrics {
		v, ok := f.Metric(name)
		if !ok {
			continue
		}
		if name == dto.MetricPE && v <= 0 {
			sum += 0
		} else {
			sum += metricBounds[name].normalize(v)
		}
		n++
	}

	optional := []struct {
		v *float64
		b bound
	}{
		{f.RevenueGrowth, growthBound},
		{f.EarningsGrowth, growthBound},
		{f.CurrentRatio, currentRatioBound},
		{f.DebtToEquity, debtToEquityBound},
	}
	for _, o := range optional {
		if o.v == nil {
			continue
		}
		sum += o.b.normalize(*o.v)
		n++
	}

	if n == 0 {
		return 50
	}
	return sum / float64(n)
}
