package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"golang-stock-analyzer/internal/analyzer/dto"
	"golang-stock-analyzer/internal/analyzer/repository"
	"golang-stock-analyzer/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	narrativeMaxAttempts  = 2
	narrativeRetryBackoff = 500 * time.Millisecond

	connectionTestPrompt = "Reply with the single word OK."
)

// NarrativeRepositoryFactory builds the provider variant for one configuration.
type NarrativeRepositoryFactory func(ctx context.Context, cfg dto.ProviderConfig, limiter *rate.Limiter, log *logger.Logger) (repository.NarrativeRepository, error)

// NarrativeService turns a numeric analysis into commentary.
type NarrativeService interface {
	Generate(ctx context.Context, summary dto.NarrativeSummary, cfg dto.ProviderConfig) (dto.Narrative, error)
	// TestConnection sends a minimal prompt through the same path as Generate.
	TestConnection(ctx context.Context, cfg dto.ProviderConfig) (dto.Narrative, error)
}

type narrativeService struct {
	log          *logger.Logger
	limiter      *rate.Limiter
	newRepo      NarrativeRepositoryFactory
	retryBackoff time.Duration
}

// NewNarrativeService creates the service. maxRequestPerMinute <= 0 disables
// the shared client side limit.
func NewNarrativeService(log *logger.Logger, maxRequestPerMinute int, newRepo NarrativeRepositoryFactory) NarrativeService {
	var limiter *rate.Limiter
	if maxRequestPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(maxRequestPerMinute)), maxRequestPerMinute)
	}
	if newRepo == nil {
		newRepo = repository.NewNarrativeRepository
	}
	return &narrativeService{
		log:          log,
		limiter:      limiter,
		newRepo:      newRepo,
		retryBackoff: narrativeRetryBackoff,
	}
}

// Generate calls the configured provider. A transient failure is retried
// once; everything else returns a KindNarrative error at once.
func (s *narrativeService) Generate(ctx context.Context, summary dto.NarrativeSummary, cfg dto.ProviderConfig) (dto.Narrative, error) {
	return s.generate(ctx, summary.Symbol, repository.BuildAnalysisPrompt(summary), cfg)
}

func (s *narrativeService) TestConnection(ctx context.Context, cfg dto.ProviderConfig) (dto.Narrative, error) {
	return s.generate(ctx, "", connectionTestPrompt, cfg)
}

func (s *narrativeService) generate(ctx context.Context, symbol, prompt string, cfg dto.ProviderConfig) (dto.Narrative, error) {
	fields := []zap.Field{
		zap.String("symbol", symbol),
		zap.String("provider", string(cfg.Kind)),
	}

	if cfg.Kind == "" {
		return dto.Narrative{}, s.fail(symbol, cfg.Kind, dto.NarrativeDisabled, errors.New("no provider configured"))
	}
	if repository.RequiresAPIKey(cfg.Kind) && cfg.APIKey == "" {
		return dto.Narrative{}, s.fail(symbol, cfg.Kind, dto.NarrativeDisabled, errors.New("no api key configured"))
	}

	repo, err := s.newRepo(ctx, cfg, s.limiter, s.log)
	if err != nil {
		if errors.Is(err, repository.ErrUnsupportedProvider) {
			return dto.Narrative{}, s.fail(symbol, cfg.Kind, dto.NarrativeUnsupported, err)
		}
		return dto.Narrative{}, s.fail(symbol, cfg.Kind, dto.NarrativeTransport, err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	var lastErr error
	for attempt := 1; attempt <= narrativeMaxAttempts; attempt++ {
		text, err := s.attempt(ctx, repo, prompt, timeout)
		if err == nil {
			if strings.TrimSpace(text) == "" {
				return dto.Narrative{}, s.fail(symbol, cfg.Kind, dto.NarrativeEmptyResponse, errors.New("provider returned no text"))
			}
			s.log.DebugContext(ctx, "Narrative generated", append(fields, zap.Int("attempt", attempt))...)
			return dto.Narrative{Text: text, Provider: string(repo.Provider()), Model: repo.Model()}, nil
		}
		lastErr = err

		retry := ctx.Err() == nil && attempt < narrativeMaxAttempts && isTransient(err)
		s.log.WarnContext(ctx, "Narrative attempt failed", append(fields, zap.Int("attempt", attempt), zap.Bool("retry", retry), zap.Error(err))...)
		if !retry {
			break
		}

		select {
		case <-time.After(s.retryBackoff):
		case <-ctx.Done():
			return dto.Narrative{}, s.fail(symbol, cfg.Kind, dto.NarrativeTransport, ctx.Err())
		}
	}

	return dto.Narrative{}, s.fail(symbol, cfg.Kind, classifyNarrativeFailure(lastErr), lastErr)
}

func (s *narrativeService) attempt(ctx context.Context, repo repository.NarrativeRepository, prompt string, timeout time.Duration) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return repo.Generate(attemptCtx, prompt)
}

func (s *narrativeService) fail(symbol string, kind dto.ProviderKind, failure dto.NarrativeFailure, err error) error {
	return dto.NewError(dto.KindNarrative, symbol, "", &dto.NarrativeError{Failure: failure, Provider: kind, Err: err})
}

// isTransient reports whether one more attempt may succeed.
func isTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}

	var statusErr *repository.StatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.StatusCode == http.StatusTooManyRequests:
			return !mentionsQuota(statusErr.Body)
		case statusErr.StatusCode == http.StatusRequestTimeout,
			statusErr.StatusCode >= http.StatusInternalServerError:
			return true
		default:
			return false
		}
	}

	if errors.Is(err, repository.ErrSchemaMismatch) {
		return false
	}

	// The attempt deadline, as opposed to the caller's, counts as a transport timeout.
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

func classifyNarrativeFailure(err error) dto.NarrativeFailure {
	var statusErr *repository.StatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.StatusCode == http.StatusUnauthorized, statusErr.StatusCode == http.StatusForbidden:
			return dto.NarrativeAuth
		case statusErr.StatusCode == http.StatusPaymentRequired:
			return dto.NarrativeQuota
		case statusErr.StatusCode == http.StatusTooManyRequests && mentionsQuota(statusErr.Body):
			return dto.NarrativeQuota
		default:
			return dto.NarrativeUpstream
		}
	}
	if errors.Is(err, repository.ErrSchemaMismatch) {
		return dto.NarrativeEmptyResponse
	}
	return dto.NarrativeTransport
}

func mentionsQuota(body string) bool {
	lower := strings.ToLower(body)
	return strings.Contains(lower, "quota") || strings.Contains(lower, "insufficient_balance") || strings.Contains(lower, "billing")
}

// FallbackNarrative renders a deterministic summary of the scores for use
// when no provider is available. It is never recorded as provider output.
func FallbackNarrative(summary dto.NarrativeSummary) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (%s) scores %.1f overall, rated %s.", summary.Name, summary.Symbol, summary.Scores.Overall, summary.Scores.Recommendation)

	if summary.Scores.Technical != nil {
		fmt.Fprintf(&sb, " Technical %.1f with a %s moving average trend", *summary.Scores.Technical, summary.Technical.MATrend)
		if summary.Technical.RSI > 70 {
			sb.WriteString(" and an overbought RSI.")
		} else if summary.Technical.RSI < 30 {
			sb.WriteString(" and an oversold RSI.")
		} else {
			fmt.Fprintf(&sb, " and RSI at %.1f.", summary.Technical.RSI)
		}
	} else {
		sb.WriteString(" Technical indicators are unavailable for lack of history.")
	}

	fmt.Fprintf(&sb, " Fundamental %.1f, sentiment %.1f from %d articles trending %s.",
		summary.Scores.Fundamental, summary.Scores.Sentiment, summary.Sentiment.Volume, summary.Sentiment.Trend)
	if summary.PriceInfo.CurrentPrice > 0 {
		fmt.Fprintf(&sb, " Last price %.2f %s (%+.2f%%).", summary.PriceInfo.CurrentPrice, summary.PriceInfo.Currency, summary.PriceInfo.ChangePercent)
	}
	if !summary.DataQuality.AllReal() {
		sb.WriteString(" Some inputs are synthetic or incomplete.")
	}
	return sb.String()
}
