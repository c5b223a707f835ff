package dto

// RemotePriceBar is one bar of the market data service price endpoint.
type RemotePriceBar struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// RemoteFinancialIndicator is a named metric of the fundamental endpoint.
type RemoteFinancialIndicator struct {
	Name  string   `json:"name"`
	Value *float64 `json:"value"`
	Unit  string   `json:"unit"`
}

// RemoteFundamentalResponse is the fundamental endpoint body.
type RemoteFundamentalResponse struct {
	FinancialIndicators []RemoteFinancialIndicator `json:"financial_indicators"`
	Valuation           map[string]*float64        `json:"valuation"`
	Industry            string                     `json:"industry"`
	Sector              string                     `json:"sector"`
	PerformanceForecast struct {
		RevenueGrowthForecast  *float64 `json:"revenue_growth_forecast"`
		EarningsGrowthForecast *float64 `json:"earnings_growth_forecast"`
		TargetPrice            *float64 `json:"target_price"`
		AnalystRating          string   `json:"analyst_rating"`
	} `json:"performance_forecasts"`
	RiskAssessment struct {
		Beta         *float64 `json:"beta"`
		DebtToEquity *float64 `json:"debt_to_equity"`
		CurrentRatio *float64 `json:"current_ratio"`
	} `json:"risk_assessment"`
}

// RemoteNewsItem is one article of the news endpoint.
type RemoteNewsItem struct {
	Title     string  `json:"title"`
	Content   string  `json:"content"`
	Date      string  `json:"date"`
	Source    string  `json:"source"`
	Type      string  `json:"type"`
	Relevance float64 `json:"relevance"`
	Sentiment float64 `json:"sentiment"`
}

// RemoteNewsResponse is the news endpoint body.
type RemoteNewsResponse struct {
	News      []RemoteNewsItem `json:"news"`
	Sentiment *struct {
		OverallSentiment float64 `json:"overall_sentiment"`
		ConfidenceScore  float64 `json:"confidence_score"`
		TotalAnalyzed    int     `json:"total_analyzed"`
	} `json:"sentiment"`
}

// RemoteNameResponse is the name endpoint body.
type RemoteNameResponse struct {
	Name string `json:"name"`
}
