package dto

import "time"

// TradingSession is one continuous trading window in exchange local time.
type TradingSession struct {
	Open  string `json:"open"`
	Close string `json:"close"`
}

// MarketTimeInfo reports the trading status of a market at one instant.
type MarketTimeInfo struct {
	Market         Market           `json:"market"`
	Timezone       string           `json:"timezone"`
	IsOpen         bool             `json:"is_open"`
	IsTradingDay   bool             `json:"is_trading_day"`
	CurrentTime    time.Time        `json:"current_time"`
	LocalTime      string           `json:"local_time"`
	CurrentSession *TradingSession  `json:"current_session,omitempty"`
	NextOpen       *time.Time       `json:"next_open,omitempty"`
	NextClose      *time.Time       `json:"next_close,omitempty"`
	Sessions       []TradingSession `json:"sessions"`
}

// HealthResponse is the body of the health endpoint.
type HealthResponse struct {
	Status string            `json:"status"`
	Time   time.Time         `json:"time"`
	Checks map[string]string `json:"checks,omitempty"`
}

// TestProviderRequest selects the provider to check. Empty fields fall back
// to the configured defaults.
type TestProviderRequest struct {
	Provider ProviderKind `json:"provider"`
	APIKey   string       `json:"api_key,omitempty"`
	BaseURL  string       `json:"base_url,omitempty"`
	Model    string       `json:"model,omitempty"`
}

// TestProviderResponse reports the outcome of a provider check.
type TestProviderResponse struct {
	OK       bool             `json:"ok"`
	Provider string           `json:"provider"`
	Model    string           `json:"model,omitempty"`
	Latency  string           `json:"latency"`
	Failure  NarrativeFailure `json:"failure,omitempty"`
}
