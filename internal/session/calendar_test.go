package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"StockPrep/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMICForSymbol(t *testing.T) {
	assert.Equal(t, "xnys", MICForSymbol("AAPL"))
	assert.Equal(t, "xlon", MICForSymbol("vod.l"))
	assert.Equal(t, "xhkg", MICForSymbol("0700.HK"))
	assert.Equal(t, "xtks", MICForSymbol("7203.T"))
}

func TestWeekdays_MissingSessions(t *testing.T) {
	cal := Weekdays()
	bars := []model.Bar{
		{Date: date(2024, 3, 1)},  // Fri
		{Date: date(2024, 3, 4)},  // Mon, weekend skipped
		{Date: date(2024, 3, 7)},  // Thu, Tue+Wed missing
		{Date: date(2024, 3, 11)}, // Mon, Fri missing
	}
	assert.Equal(t, 3, cal.MissingSessions(bars))
	assert.False(t, cal.IsTradingDay(date(2024, 3, 2)))
	assert.True(t, cal.IsTradingDay(date(2024, 3, 1)))
}

func TestForSymbol_NYSEHoliday(t *testing.T) {
	cal := ForSymbol("AAPL", "")
	if cal.Fallback {
		t.Skip("exchange calendar unavailable")
	}
	// 2024-07-04 Independence Day
	assert.False(t, cal.IsTradingDay(date(2024, 7, 4)))
	assert.True(t, cal.IsTradingDay(date(2024, 7, 5)))
	bars := []model.Bar{{Date: date(2024, 7, 3)}, {Date: date(2024, 7, 5)}}
	assert.Equal(t, 0, cal.MissingSessions(bars))
}
