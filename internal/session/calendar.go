package session

import (
	"log"
	"strings"
	"time"

	"github.com/scmhub/calendar"

	"StockPrep/internal/model"
)

// suffixMIC maps ticker suffixes to ISO 10383 exchange codes.
var suffixMIC = []struct {
	suffix string
	mic    string
}{
	{".L", "xlon"},
	{".PA", "xpar"},
	{".DE", "xfra"},
	{".AS", "xams"},
	{".MI", "xmil"},
	{".SW", "xswx"},
	{".TO", "xtse"},
	{".T", "xtks"},
	{".HK", "xhkg"},
	{".AX", "xasx"},
	{".SS", "xshg"},
	{".SZ", "xshe"},
}

// Calendar answers whether a date is an exchange trading day.
type Calendar struct {
	MIC      string
	Calendar *calendar.Calendar
	Fallback bool // Mon-Fri only, no holidays
	Location *time.Location
}

// MICForSymbol picks the exchange for a ticker by suffix, defaulting to NYSE.
func MICForSymbol(symbol string) string {
	s := strings.ToUpper(symbol)
	for _, m := range suffixMIC {
		if strings.HasSuffix(s, m.suffix) {
			return m.mic
		}
	}
	return "xnys"
}

// ForSymbol returns the calendar for mic, or for the symbol's exchange when
// mic is empty. Unknown exchanges fall back to NYSE, then to Mon-Fri.
func ForSymbol(symbol, mic string) *Calendar {
	if mic == "" {
		mic = MICForSymbol(symbol)
	}
	mic = strings.ToLower(mic)
	cal := calendar.GetCalendar(mic)
	if cal == nil && mic != "xnys" {
		log.Printf("[WARN] no calendar for MIC %q, using xnys", mic)
		mic = "xnys"
		cal = calendar.GetCalendar(mic)
	}
	if cal == nil {
		log.Printf("[WARN] no calendar for MIC %q, using Mon-Fri", mic)
		return &Calendar{MIC: mic, Fallback: true, Location: time.UTC}
	}
	return &Calendar{MIC: mic, Calendar: cal, Location: cal.Loc}
}

// Weekdays returns a Mon-Fri calendar without holidays.
func Weekdays() *Calendar {
	return &Calendar{MIC: "weekdays", Fallback: true, Location: time.UTC}
}

// IsTradingDay reports whether the calendar date of d is a session.
func (c *Calendar) IsTradingDay(d time.Time) bool {
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	// Anchor at local noon so the calendar date survives the zone change.
	y, m, day := d.Date()
	local := time.Date(y, m, day, 12, 0, 0, 0, loc)
	if c.Fallback {
		wd := local.Weekday()
		return wd != time.Saturday && wd != time.Sunday
	}
	return c.Calendar.IsBusinessDay(local)
}

// MissingSessions counts trading days strictly between consecutive bars that
// have no record. Gaps are only counted, never filled.
func (c *Calendar) MissingSessions(bars []model.Bar) int {
	missing := 0
	for i := 1; i < len(bars); i++ {
		for d := bars[i-1].Date.AddDate(0, 0, 1); d.Before(bars[i].Date); d = d.AddDate(0, 0, 1) {
			if c.IsTradingDay(d) {
				missing++
			}
		}
	}
	return missing
}
