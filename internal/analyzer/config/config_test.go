package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
analysis:
  max_workers: 4
ai:
  enabled: true
  provider: claude
scheduler:
  watchlist: ["000001", "AAPL"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Analysis.MaxWorkers)
	assert.Equal(t, 10*time.Minute, cfg.Analysis.BatchDeadline)
	assert.Equal(t, 120, cfg.Analysis.TechnicalPeriodDays)
	assert.InDelta(t, 0.5, cfg.Analysis.Weights.Technical, 1e-12)
	assert.InDelta(t, 0.3, cfg.Analysis.Weights.Fundamental, 1e-12)
	assert.InDelta(t, 0.2, cfg.Analysis.Weights.Sentiment, 1e-12)
	assert.Equal(t, 30*time.Second, cfg.MarketData.Timeout)
	assert.Equal(t, 5*time.Minute, cfg.MarketData.PriceCacheTTL)
	assert.True(t, cfg.AI.Enabled)
	assert.Equal(t, "claude", cfg.AI.Provider)
	assert.Equal(t, []string{"000001", "AAPL"}, cfg.Scheduler.Watchlist)
	assert.Equal(t, "30 15 * * 1-5", cfg.Scheduler.Cron)
	assert.Equal(t, "Asia/Shanghai", cfg.Scheduler.Timezone)
}
