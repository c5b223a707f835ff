package utils

import (
	"time"
	_ "time/tzdata"
)

// MarketLocation returns the exchange time zone for a market code, UTC when unknown.
func MarketLocation(market string) *time.Location {
	var name string
	switch market {
	case "a_shares", "hk":
		name = "Asia/Shanghai"
	case "us":
		name = "America/New_York"
	default:
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// TruncateDay strips the clock part of t in UTC.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// BusinessDaysBack returns n weekdays ending at (and including, when it is a weekday) end, oldest first.
func BusinessDaysBack(end time.Time, n int) []time.Time {
	if n <= 0 {
		return nil
	}
	days := make([]time.Time, n)
	d := TruncateDay(end)
	for i := n - 1; i >= 0; {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			days[i] = d
			i--
		}
		d = d.AddDate(0, 0, -1)
	}
	return days
}
