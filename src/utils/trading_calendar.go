package utils

import (
	"log"
	"strings"
	"time"

	"github.com/scmhub/calendar"
)

// ShanghaiLocation is the exchange timezone of both A-share markets.
var ShanghaiLocation = mustLoadLocation("Asia/Shanghai")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		// tzdata missing in minimal containers
		return time.FixedZone("CST", 8*60*60)
	}
	return loc
}

// -----------------------------------------------------------------------------

// TradingCalendar calculates trading days using scmhub/calendar.
type TradingCalendar struct {
	Calendar *calendar.Calendar
	Fallback bool
	Timezone *time.Location
}

// -----------------------------------------------------------------------------

// GetCalendar returns the calendar of the exchange a code trades on:
// XSHG for sh codes, XSHE for sz codes.
func GetCalendar(code string) *TradingCalendar {
	mic := "xshg"
	if strings.HasPrefix(Qualify(code), MarketShenzhen) {
		mic = "xshe"
	}

	cal := calendar.GetCalendar(mic)
	if cal == nil && mic == "xshe" {
		// Both exchanges share holidays
		cal = calendar.GetCalendar("xshg")
	}

	if cal == nil {
		log.Printf("WARNING: Failed to load calendar for MIC '%s'. Using simple fallback (Mon-Fri 09:30-11:30, 13:00-15:00 Asia/Shanghai).", mic)
		return &TradingCalendar{Fallback: true, Timezone: ShanghaiLocation}
	}

	loc := cal.Loc
	if loc == nil {
		loc = ShanghaiLocation
	}
	return &TradingCalendar{Calendar: cal, Fallback: false, Timezone: loc}
}

// -----------------------------------------------------------------------------

func (tc *TradingCalendar) IsTradingDay(date time.Time) bool {
	if tc.Timezone != nil {
		date = date.In(tc.Timezone)
	}

	if tc.Fallback {
		weekday := date.Weekday()
		return weekday != time.Saturday && weekday != time.Sunday
	}
	return tc.Calendar.IsBusinessDay(date)
}

// -----------------------------------------------------------------------------

// IsOpenOnMinute checks if the market is open at a specific minute.
func (tc *TradingCalendar) IsOpenOnMinute(t time.Time) bool {
	if tc.Timezone != nil {
		t = t.In(tc.Timezone)
	}

	if tc.Fallback {
		if !tc.IsTradingDay(t) {
			return false
		}
		minutes := t.Hour()*60 + t.Minute()
		morning := minutes >= 9*60+30 && minutes < 11*60+30
		afternoon := minutes >= 13*60 && minutes < 15*60
		return morning || afternoon
	}

	return tc.Calendar.IsOpen(t)
}
