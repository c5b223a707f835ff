package config

import (
	"time"

	"golang-stock-analyzer/pkg/common"
	"golang-stock-analyzer/pkg/config"
)

// Analysis holds orchestrator and scoring settings.
type Analysis struct {
	MaxWorkers          int           `mapstructure:"max_workers"`
	BatchDeadline       time.Duration `mapstructure:"batch_deadline"`
	TaskRetention       time.Duration `mapstructure:"task_retention"`
	SubscriberBuffer    int           `mapstructure:"subscriber_buffer"`
	TechnicalPeriodDays int           `mapstructure:"technical_period_days"`
	SentimentPeriodDays int           `mapstructure:"sentiment_period_days"`
	Weights             Weights       `mapstructure:"weights"`
}

// Weights holds the sub-score weights.
type Weights struct {
	Technical   float64 `mapstructure:"technical"`
	Fundamental float64 `mapstructure:"fundamental"`
	Sentiment   float64 `mapstructure:"sentiment"`
}

// MarketData holds the remote market data service settings.
type MarketData struct {
	UseRemote           bool          `mapstructure:"use_remote"`
	BaseURL             string        `mapstructure:"base_url"`
	Timeout             time.Duration `mapstructure:"timeout"`
	MaxRequestPerSecond int           `mapstructure:"max_request_per_second"`
	PriceCacheTTL       time.Duration `mapstructure:"price_cache_ttl"`
	FundamentalCacheTTL time.Duration `mapstructure:"fundamental_cache_ttl"`
	NewsCacheTTL        time.Duration `mapstructure:"news_cache_ttl"`
	NameCacheTTL        time.Duration `mapstructure:"name_cache_ttl"`
}

// AI holds narrative provider settings.
type AI struct {
	Enabled             bool          `mapstructure:"enabled"`
	Provider            string        `mapstructure:"provider"`
	APIKey              string        `mapstructure:"api_key"`
	BaseURL             string        `mapstructure:"base_url"`
	Model               string        `mapstructure:"model"`
	Timeout             time.Duration `mapstructure:"timeout"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
}

// Telegram holds configuration for the Telegram notifier.
type Telegram struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

// Scheduler holds the watchlist cron settings.
type Scheduler struct {
	Enabled   bool     `mapstructure:"enabled"`
	Cron      string   `mapstructure:"cron"`
	Timezone  string   `mapstructure:"timezone"`
	Watchlist []string `mapstructure:"watchlist"`
}

// Config holds the full configuration for the analysis service.
type Config struct {
	App        config.App      `mapstructure:"app"`
	Logger     config.Logger   `mapstructure:"logger"`
	Database   config.Database `mapstructure:"database"`
	Redis      config.Redis    `mapstructure:"redis"`
	API        config.API      `mapstructure:"api"`
	Analysis   Analysis        `mapstructure:"analysis"`
	MarketData MarketData      `mapstructure:"market_data"`
	AI         AI              `mapstructure:"ai"`
	Telegram   Telegram        `mapstructure:"telegram"`
	Scheduler  Scheduler       `mapstructure:"scheduler"`
}

// Defaults returns the values applied before the config file is read.
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		"app.name":                           "stock-analyzer",
		"logger.level":                       "info",
		"logger.encoding":                    "json",
		"api.port":                           8080,
		"analysis.max_workers":               10,
		"analysis.batch_deadline":            "10m",
		"analysis.task_retention":            "1h",
		"analysis.subscriber_buffer":         64,
		"analysis.technical_period_days":     120,
		"analysis.sentiment_period_days":     30,
		"analysis.weights.technical":         common.DefaultTechnicalWeight,
		"analysis.weights.fundamental":       common.DefaultFundamentalWeight,
		"analysis.weights.sentiment":         common.DefaultSentimentWeight,
		"market_data.use_remote":             true,
		"market_data.timeout":                "30s",
		"market_data.max_request_per_second": 10,
		"market_data.price_cache_ttl":        "5m",
		"market_data.fundamental_cache_ttl":  "1h",
		"market_data.news_cache_ttl":         "30m",
		"market_data.name_cache_ttl":         "24h",
		"ai.provider":                        "openai",
		"ai.timeout":                         "30s",
		"ai.max_request_per_minute":          60,
		"scheduler.cron":                     "30 15 * * 1-5",
		"scheduler.timezone":                 "Asia/Shanghai",
	}
}

// Load loads the analysis service configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg, Defaults()); err != nil {
		return nil, err
	}
	return &cfg, nil
}
