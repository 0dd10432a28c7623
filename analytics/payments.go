package analytics

import (
	"sort"
	"time"
)

const (
	PlatformFeeRate = 0.03
	PayoutFeeRate   = 0.02

	StatusCompleted  = "completed"
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusFailed     = "failed"
)

type Payout struct {
	Amount      float64
	Fees        float64
	NetAmount   float64
	Status      string
	RequestedAt time.Time
}

type PaymentSummary struct {
	TotalRevenue            float64 `json:"totalRevenue"`
	NetRevenue              float64 `json:"netRevenue"`
	PlatformFee             float64 `json:"platformFee"`
	TotalTransactions       int     `json:"totalTransactions"`
	CompletedTransactions   int     `json:"completedTransactions"`
	PendingAmount           float64 `json:"pendingAmount"`
	TotalPayouts            float64 `json:"totalPayouts"`
	PendingPayouts          float64 `json:"pendingPayouts"`
	AvailableBalance        float64 `json:"availableBalance"`
	AverageTransactionValue float64 `json:"averageTransactionValue"`
}

type MethodShare struct {
	Method     string  `json:"method"`
	Count      int     `json:"count"`
	Amount     float64 `json:"amount"`
	Percentage float64 `json:"percentage"`
}

type EventRevenue struct {
	EventID      string  `json:"eventId"`
	Title        string  `json:"title"`
	Revenue      float64 `json:"revenue"`
	Transactions int     `json:"transactions"`
}

// SummarizePayments aggregates sales of any status and payouts of one organiser. A payout reserves
// its gross amount unless it failed, so AvailableBalance subtracts pending and processing payouts as
// well as completed ones. Payout totals report net amounts.
func SummarizePayments(sales []Sale, payouts []Payout) PaymentSummary {
	var s PaymentSummary
	s.TotalTransactions = len(sales)

	for _, sale := range sales {
		switch sale.Status {
		case StatusCompleted:
			s.TotalRevenue += sale.Amount
			s.CompletedTransactions++
		case StatusPending:
			s.PendingAmount += sale.Amount
		}
	}
	s.PlatformFee = s.TotalRevenue * PlatformFeeRate
	s.NetRevenue = s.TotalRevenue - s.PlatformFee
	s.AverageTransactionValue = Average(s.TotalRevenue, int64(s.CompletedTransactions))

	var reserved float64
	for _, p := range payouts {
		s.TotalPayouts += p.NetAmount
		switch p.Status {
		case StatusPending, StatusProcessing:
			s.PendingPayouts += p.NetAmount
		}
		if p.Status != StatusFailed {
			reserved += p.Amount
		}
	}
	s.AvailableBalance = s.NetRevenue - reserved
	if s.AvailableBalance < 0 {
		s.AvailableBalance = 0
	}

	s.TotalRevenue = Round(s.TotalRevenue, 2)
	s.NetRevenue = Round(s.NetRevenue, 2)
	s.PlatformFee = Round(s.PlatformFee, 2)
	s.PendingAmount = Round(s.PendingAmount, 2)
	s.TotalPayouts = Round(s.TotalPayouts, 2)
	s.PendingPayouts = Round(s.PendingPayouts, 2)
	s.AvailableBalance = Round(s.AvailableBalance, 2)
	s.AverageTransactionValue = Round(s.AverageTransactionValue, 2)
	return s
}

// PayoutFees returns the fee and the net amount the organiser receives for a payout of amount.
func PayoutFees(amount float64) (fees, net float64) {
	fees = Round(amount*PayoutFeeRate, 2)
	return fees, Round(amount-fees, 2)
}

// PaymentMethodBreakdown groups completed sales by payment method, largest amount first.
func PaymentMethodBreakdown(sales []Sale) []MethodShare {
	byMethod := make(map[string]*MethodShare)
	var order []string
	var total float64
	for _, s := range sales {
		if s.Status != StatusCompleted {
			continue
		}
		method := s.PaymentMethod
		if method == "" {
			method = "unknown"
		}
		m, ok := byMethod[method]
		if !ok {
			m = &MethodShare{Method: method}
			byMethod[method] = m
			order = append(order, method)
		}
		m.Count++
		m.Amount += s.Amount
		total += s.Amount
	}

	shares := make([]MethodShare, 0, len(order))
	for _, method := range order {
		m := byMethod[method]
		m.Percentage = Round(Percentage(m.Amount, total), 1)
		m.Amount = Round(m.Amount, 2)
		shares = append(shares, *m)
	}
	sort.SliceStable(shares, func(i, j int) bool { return shares[i].Amount > shares[j].Amount })
	return shares
}

// RevenueByEvent ranks events by completed revenue and keeps the top five.
func RevenueByEvent(sales []Sale, titles map[string]string) []EventRevenue {
	byEvent := make(map[string]*EventRevenue)
	var order []string
	for _, s := range sales {
		if s.Status != StatusCompleted {
			continue
		}
		e, ok := byEvent[s.EventID]
		if !ok {
			e = &EventRevenue{EventID: s.EventID, Title: titles[s.EventID]}
			byEvent[s.EventID] = e
			order = append(order, s.EventID)
		}
		e.Revenue += s.Amount
		e.Transactions++
	}

	list := make([]EventRevenue, 0, len(order))
	for _, id := range order {
		e := byEvent[id]
		e.Revenue = Round(e.Revenue, 2)
		list = append(list, *e)
	}
	return TopN(list, topEventsLimit, func(e EventRevenue) float64 { return e.Revenue })
}

// Completed filters sales down to completed ones.
func Completed(sales []Sale) []Sale {
	var out []Sale
	for _, s := range sales {
		if s.Status == StatusCompleted {
			out = append(out, s)
		}
	}
	return out
}
