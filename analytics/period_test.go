package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParsePeriod(t *testing.T) {
	assert.Equal(t, Period7Days, ParsePeriod("7d"))
	assert.Equal(t, Period1Year, ParsePeriod("1y"))
	assert.Equal(t, Period30Days, ParsePeriod(""))
	assert.Equal(t, Period30Days, ParsePeriod("2w"))
}

func TestWindowDatesCoverEveryDayInclusive(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 30, 0, 0, time.UTC)
	days := map[Period]int{Period7Days: 7, Period30Days: 30, Period90Days: 90, Period1Year: 366}
	for p, n := range days {
		w := WindowFor(p, now)
		dates := w.Dates()

		assert.Len(t, dates, n+1, "period %s", p)
		assert.Equal(t, w.Start.Format(dateLayout), dates[0])
		assert.Equal(t, "2024-03-10", dates[len(dates)-1])
	}
}

func TestYearIsCalendarYear(t *testing.T) {
	leap := WindowFor(Period1Year, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2023, 3, 10, 0, 0, 0, 0, time.UTC), leap.Start)
	assert.Len(t, leap.Dates(), 367)

	common := WindowFor(Period1Year, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), common.Start)
	assert.Len(t, common.Dates(), 366)
}

func TestWindowDatesAcrossMonthBoundary(t *testing.T) {
	w := Window{
		Start: time.Date(2024, 2, 27, 23, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 3, 1, 1, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, []string{"2024-02-27", "2024-02-28", "2024-02-29", "2024-03-01"}, w.Dates())
}

func TestWindowContainsIsClosed(t *testing.T) {
	w := LastDays(7, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC))
	assert.True(t, w.Contains(w.Start))
	assert.True(t, w.Contains(w.End))
	assert.False(t, w.Contains(w.End.Add(time.Second)))
}
