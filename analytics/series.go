package analytics

import "time"

// Sale is a purchase transaction as seen by the aggregations.
type Sale struct {
	EventID       string
	Amount        float64
	Status        string
	PaymentMethod string
	CreatedAt     time.Time
}

// Occurrence is any dated fact tied to an event: a ticket issued, a view, a like.
type Occurrence struct {
	EventID   string
	CreatedAt time.Time
}

type DailyPoint struct {
	Date        string  `json:"date"`
	Revenue     float64 `json:"revenue"`
	TicketsSold int64   `json:"ticketsSold"`
}

// DailySeries buckets sales and tickets by UTC day over every day of the window. Days without
// activity are present with zero values.
func DailySeries(w Window, sales []Sale, tickets []Occurrence) []DailyPoint {
	revenue := make(map[string]float64)
	for _, s := range sales {
		revenue[dayKey(s.CreatedAt)] += s.Amount
	}
	sold := countByDay(tickets)

	dates := w.Dates()
	series := make([]DailyPoint, len(dates))
	for i, d := range dates {
		series[i] = DailyPoint{Date: d, Revenue: revenue[d], TicketsSold: sold[d]}
	}
	return series
}

// DailyCounts is the dense per-day count of occurrences over the window.
func DailyCounts(w Window, occ []Occurrence) []float64 {
	byDay := countByDay(occ)
	dates := w.Dates()
	counts := make([]float64, len(dates))
	for i, d := range dates {
		counts[i] = float64(byDay[d])
	}
	return counts
}

func countByDay(occ []Occurrence) map[string]int64 {
	m := make(map[string]int64)
	for _, o := range occ {
		m[dayKey(o.CreatedAt)]++
	}
	return m
}

func revenues(series []DailyPoint) []float64 {
	v := make([]float64, len(series))
	for i, p := range series {
		v[i] = p.Revenue
	}
	return v
}

func ticketCounts(series []DailyPoint) []float64 {
	v := make([]float64, len(series))
	for i, p := range series {
		v[i] = float64(p.TicketsSold)
	}
	return v
}
