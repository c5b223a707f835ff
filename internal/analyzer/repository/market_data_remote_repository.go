package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang-stock-analyzer/internal/analyzer/config"
	"golang-stock-analyzer/internal/analyzer/dto"
	"golang-stock-analyzer/pkg/logger"

	"github.com/PuerkitoBio/goquery"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const remoteDateLayout = "2006-01-02"

type remoteMarketDataRepository struct {
	cfg            config.MarketData
	log            *logger.Logger
	httpClient     *http.Client
	requestLimiter *rate.Limiter
	cache          *cache.Cache
}

// NewRemoteMarketDataRepository creates the HTTP client for the market data service.
func NewRemoteMarketDataRepository(cfg config.MarketData, log *logger.Logger) MarketDataRepository {
	perSecond := cfg.MaxRequestPerSecond
	if perSecond <= 0 {
		perSecond = 10
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &remoteMarketDataRepository{
		cfg: cfg,
		log: log,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		requestLimiter: rate.NewLimiter(rate.Limit(perSecond), perSecond),
		cache:          cache.New(cache.NoExpiration, 10*time.Minute),
	}
}

func (r *remoteMarketDataRepository) endpoint(symbol dto.Symbol, resource string) string {
	var prefix string
	switch symbol.Market() {
	case dto.MarketHongKong:
		prefix = "hk/"
	case dto.MarketUS:
		prefix = "us/"
	}
	return fmt.Sprintf("%s/api/stock/%s%s/%s", strings.TrimRight(r.cfg.BaseURL, "/"), prefix, url.PathEscape(symbol.Code()), resource)
}

func (r *remoteMarketDataRepository) FetchPrices(ctx context.Context, symbol dto.Symbol, lookbackDays int) (dto.PriceSeries, error) {
	key := fmt.Sprintf("price:%s:%d", symbol.String(), lookbackDays)
	if v, ok := r.cache.Get(key); ok {
		return v.(dto.PriceSeries), nil
	}

	var bars []dto.RemotePriceBar
	if err := r.getJSON(ctx, r.endpoint(symbol, fmt.Sprintf("price?days=%d", lookbackDays)), &bars); err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("empty price history: %w", ErrSchemaMismatch)
	}

	points := make([]dto.PricePoint, 0, len(bars))
	for _, b := range bars {
		date, err := time.Parse(remoteDateLayout, b.Date)
		if err != nil {
			return nil, fmt.Errorf("invalid bar date %q: %w", b.Date, ErrSchemaMismatch)
		}
		points = append(points, dto.PricePoint{Date: date, Open: b.Open, High: b.High, Low: b.Low, Close: b.Close, Volume: b.Volume})
	}

	// Duplicates are kept here; the caller decides how to grade them.
	series := dto.PriceSeries(points)
	r.store(key, series, r.cfg.PriceCacheTTL)
	return series, nil
}

func (r *remoteMarketDataRepository) FetchFundamentals(ctx context.Context, symbol dto.Symbol) (dto.FundamentalSnapshot, error) {
	key := "fundamental:" + symbol.String()
	if v, ok := r.cache.Get(key); ok {
		return v.(dto.FundamentalSnapshot), nil
	}

	var resp dto.RemoteFundamentalResponse
	if err := r.getJSON(ctx, r.endpoint(symbol, "fundamental"), &resp); err != nil {
		return dto.FundamentalSnapshot{}, err
	}

	snap := dto.FundamentalSnapshot{
		Metrics:        make(map[string]float64),
		Industry:       resp.Industry,
		Sector:         resp.Sector,
		AnalystRating:  resp.PerformanceForecast.AnalystRating,
		Beta:           resp.RiskAssessment.Beta,
		DebtToEquity:   resp.RiskAssessment.DebtToEquity,
		CurrentRatio:   resp.RiskAssessment.CurrentRatio,
		RevenueGrowth:  resp.PerformanceForecast.RevenueGrowthForecast,
		EarningsGrowth: resp.PerformanceForecast.EarningsGrowthForecast,
		TargetPrice:    resp.PerformanceForecast.TargetPrice,
	}
	for name, v := range resp.Valuation {
		if v != nil {
			snap.Metrics[metricKey(name)] = *v
		}
	}
	for _, ind := range resp.FinancialIndicators {
		if ind.Value != nil && ind.Name != "" {
			snap.Metrics[metricKey(ind.Name)] = *ind.Value
		}
	}
	if len(snap.Metrics) == 0 && snap.RevenueGrowth == nil && snap.EarningsGrowth == nil {
		return dto.FundamentalSnapshot{}, fmt.Errorf("no fundamental metrics: %w", ErrSchemaMismatch)
	}

	r.store(key, snap, r.cfg.FundamentalCacheTTL)
	return snap, nil
}

func (r *remoteMarketDataRepository) FetchNews(ctx context.Context, symbol dto.Symbol, lookbackDays int) (dto.SentimentSnapshot, error) {
	key := fmt.Sprintf("news:%s:%d", symbol.String(), lookbackDays)
	if v, ok := r.cache.Get(key); ok {
		return v.(dto.SentimentSnapshot), nil
	}

	var resp dto.RemoteNewsResponse
	if err := r.getJSON(ctx, r.endpoint(symbol, fmt.Sprintf("news?days=%d", lookbackDays)), &resp); err != nil {
		return dto.SentimentSnapshot{}, err
	}
	if resp.News == nil {
		return dto.SentimentSnapshot{}, fmt.Errorf("missing news array: %w", ErrSchemaMismatch)
	}

	items := make([]dto.NewsItem, 0, len(resp.News))
	for _, n := range resp.News {
		published, err := time.Parse(remoteDateLayout, n.Date)
		if err != nil {
			published, _ = time.Parse(time.RFC3339, n.Date)
		}
		items = append(items, dto.NewsItem{
			Title:       strings.TrimSpace(n.Title),
			Content:     plainText(n.Content),
			Source:      n.Source,
			PublishedAt: published,
			Polarity:    n.Sentiment,
		})
	}

	snap := dto.Summarize(items)
	if resp.Sentiment != nil {
		snap.Confidence = resp.Sentiment.ConfidenceScore
	}
	r.store(key, snap, r.cfg.NewsCacheTTL)
	return snap, nil
}

func (r *remoteMarketDataRepository) FetchName(ctx context.Context, symbol dto.Symbol) (string, error) {
	key := "name:" + symbol.String()
	if v, ok := r.cache.Get(key); ok {
		return v.(string), nil
	}

	var resp dto.RemoteNameResponse
	endpoint := fmt.Sprintf("%s/api/stock/%s/name", strings.TrimRight(r.cfg.BaseURL, "/"), url.PathEscape(symbol.Code()))
	if err := r.getJSON(ctx, endpoint, &resp); err != nil {
		return "", err
	}
	name := strings.TrimSpace(resp.Name)
	if name == "" {
		return "", fmt.Errorf("empty name: %w", ErrSchemaMismatch)
	}
	r.store(key, name, r.cfg.NameCacheTTL)
	return name, nil
}

func (r *remoteMarketDataRepository) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	fields := []zap.Field{
		zap.String("url", endpoint),
		zap.Int("max_request_per_second", r.cfg.MaxRequestPerSecond),
	}

	if err := r.requestLimiter.Wait(ctx); err != nil {
		r.log.ErrorContext(ctx, "Failed to wait for request limit", append(fields, zap.Error(err))...)
		return fmt.Errorf("failed to wait for request limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		r.log.DebugContext(ctx, "Market data request failed", append(fields, zap.Error(err))...)
		return fmt.Errorf("market data request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read market data response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		r.log.DebugContext(ctx, "Received non-2xx response from market data service", append(fields, zap.Int("status_code", resp.StatusCode))...)
		return &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode market data response: %v: %w", err, ErrSchemaMismatch)
	}
	return nil
}

// store caches v for ttl; a non-positive ttl disables caching for that category.
func (r *remoteMarketDataRepository) store(key string, v interface{}, ttl time.Duration) {
	if ttl > 0 {
		r.cache.Set(key, v, ttl)
	}
}

// metricKey maps the service's metric labels onto the scorer's names.
func metricKey(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.NewReplacer(" ", "_", "/", "_", "-", "_").Replace(key)
	switch key {
	case "pe", "p_e", "pe_ttm":
		return dto.MetricPE
	case "pb", "p_b":
		return dto.MetricPB
	case "return_on_equity":
		return dto.MetricROE
	case "net_profit_margin", "net_margin_ratio":
		return dto.MetricNetMargin
	case "dividend", "dividend_yield_ratio":
		return dto.MetricDividendYield
	case "debt_to_asset", "asset_liability_ratio":
		return dto.MetricDebtRatio
	}
	return key
}

// plainText strips any HTML markup from news content.
func plainText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.TrimSpace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
