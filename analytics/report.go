package analytics

import "time"

const topEventsLimit = 5

// EventStats is the slice of an event row the aggregations need.
type EventStats struct {
	ID           string
	Title        string
	Status       string
	Date         time.Time
	TotalTickets int64
	Views        int64
	Shares       int64
}

// Input holds the rows fetched for one organiser over one window. Sales must already be restricted
// to completed purchases.
type Input struct {
	Window  Window
	Events  []EventStats
	Sales   []Sale
	Tickets []Occurrence
	Views   []Occurrence
	Likes   []Occurrence
}

type Metrics struct {
	TotalRevenue       float64 `json:"totalRevenue"`
	TotalTicketsSold   int64   `json:"totalTicketsSold"`
	TotalViews         int64   `json:"totalViews"`
	TotalLikes         int64   `json:"totalLikes"`
	ConversionRate     float64 `json:"conversionRate"`
	RevenueGrowth      float64 `json:"revenueGrowth"`
	AverageTicketPrice float64 `json:"averageTicketPrice"`
	EventsCount        int     `json:"eventsCount"`
}

type EventAnalytics struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Date           time.Time `json:"date"`
	Status         string    `json:"status"`
	Revenue        float64   `json:"revenue"`
	TicketsSold    int64     `json:"ticketsSold"`
	TotalTickets   int64     `json:"totalTickets"`
	Views          int64     `json:"views"`
	Likes          int64     `json:"likes"`
	Shares         int64     `json:"shares"`
	ConversionRate float64   `json:"conversionRate"`
	Performance    string    `json:"performance"`
}

// TrendingMetric compares the second half of the window with the first. Metrics the data cannot
// support are returned with Available false and no value.
type TrendingMetric struct {
	Label     string   `json:"label"`
	Value     *float64 `json:"value"`
	Change    *float64 `json:"change"`
	Unit      string   `json:"unit,omitempty"`
	Trend     string   `json:"trend,omitempty"`
	Available bool     `json:"available"`
}

type Report struct {
	Metrics         Metrics          `json:"metrics"`
	TrendingMetrics []TrendingMetric `json:"trendingMetrics"`
	ChartData       []DailyPoint     `json:"chartData"`
	EventAnalytics  []EventAnalytics `json:"eventAnalytics"`
	TopEvents       []EventAnalytics `json:"topEvents"`
	Period          Period           `json:"period"`
	DateRange       Window           `json:"dateRange"`
}

func BuildReport(p Period, in Input) Report {
	series := DailySeries(in.Window, in.Sales, in.Tickets)

	var totalRevenue float64
	revenueByEvent := make(map[string]float64)
	for _, s := range in.Sales {
		totalRevenue += s.Amount
		revenueByEvent[s.EventID] += s.Amount
	}
	ticketsByEvent := countByEvent(in.Tickets)
	likesByEvent := countByEvent(in.Likes)

	totalTickets := int64(len(in.Tickets))
	totalViews := int64(len(in.Views))

	metrics := Metrics{
		TotalRevenue:       Round(totalRevenue, 2),
		TotalTicketsSold:   totalTickets,
		TotalViews:         totalViews,
		TotalLikes:         int64(len(in.Likes)),
		ConversionRate:     Round(ConversionRate(totalTickets, totalViews), 2),
		RevenueGrowth:      Round(HalfGrowth(revenues(series)), 1),
		AverageTicketPrice: Round(Average(totalRevenue, totalTickets), 2),
		EventsCount:        len(in.Events),
	}

	perEvent := make([]EventAnalytics, len(in.Events))
	for i, e := range in.Events {
		sold := ticketsByEvent[e.ID]
		conv := ConversionRate(sold, e.Views)
		perEvent[i] = EventAnalytics{
			ID:             e.ID,
			Title:          e.Title,
			Date:           e.Date,
			Status:         e.Status,
			Revenue:        Round(revenueByEvent[e.ID], 2),
			TicketsSold:    sold,
			TotalTickets:   e.TotalTickets,
			Views:          e.Views,
			Likes:          likesByEvent[e.ID],
			Shares:         e.Shares,
			ConversionRate: Round(conv, 2),
			Performance:    PerformanceLabel(conv),
		}
	}

	return Report{
		Metrics:         metrics,
		TrendingMetrics: trending(in, series),
		ChartData:       series,
		EventAnalytics:  perEvent,
		TopEvents:       TopN(perEvent, topEventsLimit, func(e EventAnalytics) float64 { return e.Revenue }),
		Period:          p,
		DateRange:       in.Window,
	}
}

func PerformanceLabel(conversionRate float64) string {
	switch {
	case conversionRate >= 10:
		return "excellent"
	case conversionRate >= 5:
		return "good"
	}
	return "needs_attention"
}

func trending(in Input, series []DailyPoint) []TrendingMetric {
	views := DailyCounts(in.Window, in.Views)
	tickets := ticketCounts(series)
	revenue := revenues(series)
	mid := len(series) / 2

	totalViews := sum(views)
	totalTickets := sum(tickets)
	totalRevenue := sum(revenue)

	firstConv := ConversionRate(int64(sum(tickets[:mid])), int64(sum(views[:mid])))
	secondConv := ConversionRate(int64(sum(tickets[mid:])), int64(sum(views[mid:])))
	firstAvg := Average(sum(revenue[:mid]), int64(sum(tickets[:mid])))
	secondAvg := Average(sum(revenue[mid:]), int64(sum(tickets[mid:])))

	return []TrendingMetric{
		metric("Event Views", totalViews, HalfGrowth(views), "percent"),
		metric("Conversion Rate", ConversionRate(int64(totalTickets), int64(totalViews)), secondConv-firstConv, "points"),
		metric("Avg Ticket Price", Average(totalRevenue, int64(totalTickets)), secondAvg-firstAvg, "currency"),
		{Label: "Customer Retention", Available: false},
	}
}

func metric(label string, value, change float64, unit string) TrendingMetric {
	v := Round(value, 2)
	c := Round(change, 1)
	trend := "flat"
	if c > 0 {
		trend = "up"
	} else if c < 0 {
		trend = "down"
	}
	return TrendingMetric{Label: label, Value: &v, Change: &c, Unit: unit, Trend: trend, Available: true}
}

func countByEvent(occ []Occurrence) map[string]int64 {
	m := make(map[string]int64)
	for _, o := range occ {
		m[o.EventID]++
	}
	return m
}
