package scheduler

import (
	"context"
	"fmt"
	"time"

	"golang-stock-analyzer/internal/analyzer/dto"
	"golang-stock-analyzer/internal/analyzer/service"
	"golang-stock-analyzer/pkg/logger"
	"golang-stock-analyzer/pkg/utils"

	"github.com/robfig/cron/v3"
)

// WatchlistScheduler submits the configured watchlist as a batch on a cron
// schedule. Finished batches are summarized to Telegram.
type WatchlistScheduler struct {
	cron         *cron.Cron
	batchService service.BatchService
	watchlist    []string
	opts         dto.AnalyzeOptions
	logger       *logger.Logger
}

// NewWatchlistScheduler parses expr with the standard five field syntax in
// the given time zone.
func NewWatchlistScheduler(expr, timezone string, watchlist []string, batchService service.BatchService, opts dto.AnalyzeOptions, logger *logger.Logger) (*WatchlistScheduler, error) {
	if len(watchlist) == 0 {
		return nil, fmt.Errorf("watchlist is empty")
	}
	loc := time.UTC
	if timezone != "" {
		var err error
		if loc, err = time.LoadLocation(timezone); err != nil {
			return nil, fmt.Errorf("invalid scheduler timezone %q: %w", timezone, err)
		}
	}

	s := &WatchlistScheduler{
		cron: cron.New(
			cron.WithParser(cron.NewParser(cron.Minute|cron.Hour|cron.Dom|cron.Month|cron.Dow|cron.Descriptor)),
			cron.WithLocation(loc),
		),
		batchService: batchService,
		watchlist:    append([]string(nil), watchlist...),
		opts:         opts,
		logger:       logger,
	}
	s.opts.Notify = true

	if _, err := s.cron.AddFunc(expr, func() { s.RunOnce(context.Background()) }); err != nil {
		return nil, fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}
	return s, nil
}

// Start runs the schedule in its own goroutine.
func (s *WatchlistScheduler) Start() {
	s.cron.Start()
	s.logger.Info("Watchlist scheduler started", logger.IntField("symbols", len(s.watchlist)))
}

// Stop stops the schedule and waits for a running submission to return.
func (s *WatchlistScheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("Watchlist scheduler stopped")
}

// RunOnce submits the watchlist now.
func (s *WatchlistScheduler) RunOnce(ctx context.Context) string {
	if !utils.ShouldContinue(ctx, s.logger) {
		return ""
	}
	taskID, err := s.batchService.SubmitBatch(ctx, s.watchlist, s.opts)
	if err != nil {
		s.logger.Error("Failed to submit watchlist batch", logger.ErrorField(err))
		return ""
	}
	s.logger.Info("Watchlist batch submitted", logger.StringField("task_id", taskID))
	return taskID
}
