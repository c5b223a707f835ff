package service

import (
	"testing"
	"time"

	"golang-stock-analyzer/internal/analyzer/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarketTime(t *testing.T) {
	utc := func(day, hour, min int) time.Time {
		return time.Date(2024, 6, day, hour, min, 0, 0, time.UTC)
	}

	tests := []struct {
		name        string
		market      dto.Market
		now         time.Time
		wantOpen    bool
		wantTrading bool
		wantSession string
		wantNext    *time.Time
		wantClose   *time.Time
	}{
		{
			name:        "a-shares morning session",
			market:      dto.MarketAShares,
			now:         utc(14, 2, 0),
			wantOpen:    true,
			wantTrading: true,
			wantSession: "09:30",
			wantClose:   ptr(utc(14, 3, 30)),
		},
		{
			name:        "a-shares lunch break",
			market:      dto.MarketAShares,
			now:         utc(14, 4, 0),
			wantTrading: true,
			wantNext:    ptr(utc(14, 5, 0)),
			wantClose:   ptr(utc(14, 7, 0)),
		},
		{
			name:        "a-shares friday after close",
			market:      dto.MarketAShares,
			now:         utc(14, 8, 0),
			wantTrading: true,
			wantNext:    ptr(utc(17, 1, 30)),
			wantClose:   ptr(utc(17, 3, 30)),
		},
		{
			name:      "hong kong saturday",
			market:    dto.MarketHongKong,
			now:       utc(15, 3, 0),
			wantNext:  ptr(utc(17, 1, 30)),
			wantClose: ptr(utc(17, 4, 0)),
		},
		{
			name:        "us regular session",
			market:      dto.MarketUS,
			now:         utc(14, 14, 0),
			wantOpen:    true,
			wantTrading: true,
			wantSession: "09:30",
			wantClose:   ptr(utc(14, 20, 0)),
		},
		{
			name:        "us pre-market",
			market:      dto.MarketUS,
			now:         utc(14, 12, 0),
			wantTrading: true,
			wantNext:    ptr(utc(14, 13, 30)),
			wantClose:   ptr(utc(14, 20, 0)),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := MarketTime(tt.market, tt.now)
			assert.Equal(t, tt.market, info.Market)
			assert.Equal(t, tt.wantOpen, info.IsOpen)
			assert.Equal(t, tt.wantTrading, info.IsTradingDay)
			assert.Equal(t, tt.now, info.CurrentTime)
			assert.NotEmpty(t, info.Sessions)
			if tt.wantSession != "" {
				require.NotNil(t, info.CurrentSession)
				assert.Equal(t, tt.wantSession, info.CurrentSession.Open)
			} else {
				assert.Nil(t, info.CurrentSession)
			}
			assert.Equal(t, tt.wantNext, info.NextOpen)
			assert.Equal(t, tt.wantClose, info.NextClose)
		})
	}
}

func TestMarketTimeLocalClock(t *testing.T) {
	info := MarketTime(dto.MarketAShares, time.Date(2024, 6, 14, 2, 0, 0, 0, time.UTC))
	assert.Equal(t, "Asia/Shanghai", info.Timezone)
	assert.Equal(t, "2024-06-14 10:00:00 CST", info.LocalTime)
}

func ptr(t time.Time) *time.Time { return &t }
