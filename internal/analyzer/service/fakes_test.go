package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang-stock-analyzer/internal/analyzer/dto"
	"golang-stock-analyzer/internal/analyzer/repository"
	"golang-stock-analyzer/internal/entity"
	"golang-stock-analyzer/pkg/logger"

	"golang.org/x/time/rate"
)

var testAnchor = time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC)

var errRemoteDown = errors.New("remote down")

// fakeMarketRepo serves synthetic data with per-category failures.
type fakeMarketRepo struct {
	inner          repository.MarketDataRepository
	failPrice      bool
	failFund       bool
	failNews       bool
	failName       bool
	duplicateFirst bool
	metrics        map[string]float64
}

func newFakeMarketRepo() *fakeMarketRepo {
	return &fakeMarketRepo{inner: repository.NewSyntheticMarketDataRepository(testAnchor.AddDate(0, 0, -7))}
}

func (f *fakeMarketRepo) FetchPrices(ctx context.Context, symbol dto.Symbol, lookbackDays int) (dto.PriceSeries, error) {
	if f.failPrice {
		return nil, errRemoteDown
	}
	series, err := f.inner.FetchPrices(ctx, symbol, lookbackDays)
	if err != nil || !f.duplicateFirst {
		return series, err
	}
	return append(dto.PriceSeries{series[0]}, series...), nil
}

func (f *fakeMarketRepo) FetchFundamentals(ctx context.Context, symbol dto.Symbol) (dto.FundamentalSnapshot, error) {
	if f.failFund {
		return dto.FundamentalSnapshot{}, errRemoteDown
	}
	if f.metrics != nil {
		return dto.FundamentalSnapshot{Metrics: f.metrics}, nil
	}
	return f.inner.FetchFundamentals(ctx, symbol)
}

func (f *fakeMarketRepo) FetchNews(ctx context.Context, symbol dto.Symbol, lookbackDays int) (dto.SentimentSnapshot, error) {
	if f.failNews {
		return dto.SentimentSnapshot{}, errRemoteDown
	}
	return f.inner.FetchNews(ctx, symbol, lookbackDays)
}

func (f *fakeMarketRepo) FetchName(ctx context.Context, symbol dto.Symbol) (string, error) {
	if f.failName {
		return "", errRemoteDown
	}
	return "Remote " + symbol.Code(), nil
}

func failingMarketRepo() *fakeMarketRepo {
	f := newFakeMarketRepo()
	f.failPrice, f.failFund, f.failNews, f.failName = true, true, true, true
	return f
}

// fakeNarrativeRepo returns scripted responses in order, repeating the last one.
type fakeNarrativeRepo struct {
	mu        sync.Mutex
	responses []fakeNarrativeResponse
	calls     int
	prompts   []string
}

type fakeNarrativeResponse struct {
	text string
	err  error
}

func (f *fakeNarrativeRepo) Generate(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.calls
	f.prompts = append(f.prompts, prompt)
	if i >= len(f.responses) {
		i = len(f.responses) - 1
	}
	f.calls++
	return f.responses[i].text, f.responses[i].err
}

func (f *fakeNarrativeRepo) Provider() dto.ProviderKind { return dto.ProviderOpenAI }

func (f *fakeNarrativeRepo) Model() string { return "test-model" }

func (f *fakeNarrativeRepo) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func factoryFor(repo repository.NarrativeRepository) NarrativeRepositoryFactory {
	return func(ctx context.Context, cfg dto.ProviderConfig, limiter *rate.Limiter, log *logger.Logger) (repository.NarrativeRepository, error) {
		return repo, nil
	}
}

func newTestNarrativeService(repo repository.NarrativeRepository) *narrativeService {
	svc := NewNarrativeService(logger.NewNop(), 0, factoryFor(repo)).(*narrativeService)
	svc.retryBackoff = 0
	return svc
}

// fakeHistoryRepo records saved results.
type fakeHistoryRepo struct {
	mu    sync.Mutex
	saved []dto.AnalysisResult
	err   error
}

func (f *fakeHistoryRepo) Save(ctx context.Context, result dto.AnalysisResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, result)
	return nil
}

func (f *fakeHistoryRepo) Query(ctx context.Context, filter dto.HistoryFilter) ([]dto.AnalysisResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []dto.AnalysisResult
	for _, r := range f.saved {
		if filter.Symbol == "" || r.Symbol.String() == filter.Symbol {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeHistoryRepo) GetByID(ctx context.Context, id uint) (dto.AnalysisResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id == 0 || int(id) > len(f.saved) {
		return dto.AnalysisResult{}, dto.ErrAnalysisNotFound
	}
	result := f.saved[id-1]
	result.ID = id
	return result, nil
}

func (f *fakeHistoryRepo) Saved() []dto.AnalysisResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]dto.AnalysisResult(nil), f.saved...)
}

// fakeBatchRunRepo records finished batches.
type fakeBatchRunRepo struct {
	mu    sync.Mutex
	saved []dto.BatchTask
}

func (f *fakeBatchRunRepo) Save(ctx context.Context, task dto.BatchTask) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, task)
	return nil
}

func (f *fakeBatchRunRepo) GetByTaskID(ctx context.Context, taskID string) (*entity.BatchRun, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, task := range f.saved {
		if task.TaskID != taskID {
			continue
		}
		var failed []string
		for symbol, status := range task.Statuses {
			if status.State == dto.SymbolFailed {
				failed = append(failed, symbol)
			}
		}
		return &entity.BatchRun{
			TaskID:        task.TaskID,
			Status:        string(task.Status),
			Symbols:       append([]string(nil), task.Symbols...),
			FailedSymbols: failed,
			Total:         task.Total(),
			Completed:     task.Completed,
			Failed:        task.Failed,
			StartedAt:     task.StartedAt,
			FinishedAt:    task.FinishedAt,
		}, nil
	}
	return nil, dto.ErrTaskNotFound
}

func (f *fakeBatchRunRepo) Saved() []dto.BatchTask {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]dto.BatchTask(nil), f.saved...)
}

// fakePublisher records every relayed event in order.
type fakePublisher struct {
	mu     sync.Mutex
	events []dto.ProgressEvent
}

func (f *fakePublisher) Publish(ctx context.Context, event dto.ProgressEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakePublisher) Events() []dto.ProgressEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]dto.ProgressEvent(nil), f.events...)
}

// fakeNotifier records sent messages.
type fakeNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (f *fakeNotifier) SendMessage(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, text)
	return nil
}

func (f *fakeNotifier) Messages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.messages...)
}

// gatedAnalysis blocks every Run until the gate is closed, then delegates.
type gatedAnalysis struct {
	AnalysisService
	gate    chan struct{}
	started chan string
	panicOn string
}

func (g *gatedAnalysis) Run(ctx context.Context, raw string, opts dto.AnalyzeOptions) (dto.AnalysisResult, error) {
	if g.started != nil {
		g.started <- raw
	}
	if g.gate != nil {
		<-g.gate
	}
	if raw == g.panicOn {
		panic("pipeline exploded")
	}
	return g.AnalysisService.Run(ctx, raw, opts)
}

func newPipeline(narrative NarrativeService, history repository.AnalysisHistoryRepository) *analysisService {
	market := NewMarketDataService(nil, repository.NewSyntheticMarketDataRepository(testAnchor), logger.NewNop())
	svc := NewAnalysisService(logger.NewNop(), market, narrative, history).(*analysisService)
	svc.now = func() time.Time { return testAnchor.Add(8 * time.Hour) }
	return svc
}

func testOptions() dto.AnalyzeOptions {
	return dto.AnalyzeOptions{
		Weights:       dto.Weights{Technical: 0.5, Fundamental: 0.3, Sentiment: 0.2},
		LookbackDays:  120,
		SentimentDays: 30,
	}
}
