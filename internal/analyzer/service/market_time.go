package service

import (
	"time"

	"golang-stock-analyzer/internal/analyzer/dto"
	"golang-stock-analyzer/pkg/utils"
)

var tradingSessions = map[dto.Market][]dto.TradingSession{
	dto.MarketAShares:  {{Open: "09:30", Close: "11:30"}, {Open: "13:00", Close: "15:00"}},
	dto.MarketHongKong: {{Open: "09:30", Close: "12:00"}, {Open: "13:00", Close: "16:00"}},
	dto.MarketUS:       {{Open: "09:30", Close: "16:00"}},
}

// MarketTime reports whether market is trading at now and when its next
// session opens or the current one closes. Weekends are the only closed days.
func MarketTime(market dto.Market, now time.Time) dto.MarketTimeInfo {
	loc := utils.MarketLocation(string(market))
	local := now.In(loc)
	sessions := tradingSessions[market]

	info := dto.MarketTimeInfo{
		Market:       market,
		Timezone:     loc.String(),
		IsTradingDay: isTradingDay(local),
		CurrentTime:  now.UTC(),
		LocalTime:    local.Format("2006-01-02 15:04:05 MST"),
		Sessions:     append([]dto.TradingSession(nil), sessions...),
	}
	if len(sessions) == 0 {
		return info
	}

	if info.IsTradingDay {
		for i, s := range sessions {
			opensAt, closesAt := sessionBounds(local, s)
			if local.Before(opensAt) {
				info.NextOpen, info.NextClose = utcPtr(opensAt), utcPtr(closesAt)
				return info
			}
			if local.Before(closesAt) {
				info.IsOpen = true
				info.CurrentSession = &info.Sessions[i]
				info.NextClose = utcPtr(closesAt)
				return info
			}
		}
	}

	day := local.AddDate(0, 0, 1)
	for !isTradingDay(day) {
		day = day.AddDate(0, 0, 1)
	}
	opensAt, closesAt := sessionBounds(day, sessions[0])
	info.NextOpen, info.NextClose = utcPtr(opensAt), utcPtr(closesAt)
	return info
}

func isTradingDay(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// sessionBounds places s on the calendar day of day, in day's location.
func sessionBounds(day time.Time, s dto.TradingSession) (time.Time, time.Time) {
	return clockOn(day, s.Open), clockOn(day, s.Close)
}

func clockOn(day time.Time, hhmm string) time.Time {
	c, err := time.Parse("15:04", hhmm)
	if err != nil {
		return day
	}
	y, m, d := day.Date()
	return time.Date(y, m, d, c.Hour(), c.Minute(), 0, 0, day.Location())
}

func utcPtr(t time.Time) *time.Time {
	u := t.UTC()
	return &u
}
