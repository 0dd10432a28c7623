package analytics

import "time"

// Period is the look-back token accepted by the organiser endpoints.
type Period string

const (
	Period7Days  Period = "7d"
	Period30Days Period = "30d"
	Period90Days Period = "90d"
	Period1Year  Period = "1y"
)

const dateLayout = "2006-01-02"

// ParsePeriod maps unknown or empty tokens to 30d.
func ParsePeriod(s string) Period {
	switch p := Period(s); p {
	case Period7Days, Period30Days, Period90Days, Period1Year:
		return p
	}
	return Period30Days
}

// Start is the beginning of the period ending at now. A year is a calendar year, so it spans 366
// days when it crosses a leap day.
func (p Period) Start(now time.Time) time.Time {
	now = now.UTC()
	switch p {
	case Period7Days:
		return now.AddDate(0, 0, -7)
	case Period90Days:
		return now.AddDate(0, 0, -90)
	case Period1Year:
		return now.AddDate(-1, 0, 0)
	}
	return now.AddDate(0, 0, -30)
}

// Window is the closed time range [Start, End].
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func WindowFor(p Period, now time.Time) Window {
	return Window{Start: p.Start(now), End: now.UTC()}
}

func LastDays(days int, now time.Time) Window {
	now = now.UTC()
	return Window{Start: now.AddDate(0, 0, -days), End: now}
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Dates lists every calendar day (UTC) touched by the window, first to last, inclusive.
func (w Window) Dates() []string {
	start := truncateDay(w.Start)
	end := truncateDay(w.End)

	var dates []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(dateLayout))
	}
	return dates
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func dayKey(t time.Time) string {
	return t.UTC().Format(dateLayout)
}
