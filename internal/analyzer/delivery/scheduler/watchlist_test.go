package scheduler

import (
	"context"
	"sync"
	"testing"

	"golang-stock-analyzer/internal/analyzer/dto"
	"golang-stock-analyzer/internal/analyzer/service"
	"golang-stock-analyzer/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingBatchService struct {
	service.BatchService
	mu      sync.Mutex
	symbols [][]string
	opts    []dto.AnalyzeOptions
	err     error
}

func (r *recordingBatchService) SubmitBatch(ctx context.Context, symbols []string, opts dto.AnalyzeOptions) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return "", r.err
	}
	r.symbols = append(r.symbols, symbols)
	r.opts = append(r.opts, opts)
	return "task-1", nil
}

func TestNewWatchlistScheduler(t *testing.T) {
	batch := &recordingBatchService{}
	tests := []struct {
		name      string
		expr      string
		timezone  string
		watchlist []string
		wantErr   bool
	}{
		{name: "weekday close", expr: "30 15 * * 1-5", timezone: "Asia/Shanghai", watchlist: []string{"600036"}},
		{name: "descriptor", expr: "@daily", watchlist: []string{"AAPL"}},
		{name: "seconds field rejected", expr: "0 30 15 * * 1-5", watchlist: []string{"AAPL"}, wantErr: true},
		{name: "bad timezone", expr: "@daily", timezone: "Mars/Olympus", watchlist: []string{"AAPL"}, wantErr: true},
		{name: "empty watchlist", expr: "@daily", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewWatchlistScheduler(tt.expr, tt.timezone, tt.watchlist, batch, dto.AnalyzeOptions{}, logger.NewNop())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			s.Start()
			s.Stop()
		})
	}
}

func TestWatchlistRunOnce(t *testing.T) {
	batch := &recordingBatchService{}
	watchlist := []string{"600036", "AAPL"}
	s, err := NewWatchlistScheduler("@daily", "", watchlist, batch, dto.AnalyzeOptions{LookbackDays: 120}, logger.NewNop())
	require.NoError(t, err)

	watchlist[0] = "changed"
	assert.Equal(t, "task-1", s.RunOnce(context.Background()))

	require.Len(t, batch.symbols, 1)
	assert.Equal(t, []string{"600036", "AAPL"}, batch.symbols[0])
	assert.True(t, batch.opts[0].Notify)
	assert.Equal(t, 120, batch.opts[0].LookbackDays)

	batch.err = service.ErrShuttingDown
	assert.Empty(t, s.RunOnce(context.Background()))
}

func TestWatchlistRunOnceCancelled(t *testing.T) {
	batch := &recordingBatchService{}
	s, err := NewWatchlistScheduler("@daily", "", []string{"AAPL"}, batch, dto.AnalyzeOptions{}, logger.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Empty(t, s.RunOnce(ctx))
	assert.Empty(t, batch.symbols)
}
