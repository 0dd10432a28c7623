package organiser

import (
	"context"
	"regexp"
	"rovify-backend/analytics"
	"rovify-backend/model"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var transactionFields = []string{
	"id", "user_id", "event_id", "ticket_id", "type", "amount", "currency", "status", "payment_method",
	"completed_at", "created_at", "title",
}

func TestPaymentsPageIsSeparateFromWindowSummary(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	mock.MatchExpectationsInOrder(false)

	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	start := now.AddDate(0, 0, -7)
	o := NewOrganiser(nil, nil, nil, testKey, false)
	o.now = func() time.Time { return now }

	expectOrganiser(mock, true)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT t.event_id, t.amount`)).WithArgs(organiserID, start).
		WillReturnRows(sqlmock.NewRows([]string{"event_id", "amount", "status", "payment_method", "created_at"}).
			AddRow("e1", 100.0, "completed", "card", now.Add(-time.Hour)).
			AddRow("e1", 60.0, "completed", "crypto", now.AddDate(0, 0, -2)).
			AddRow("e2", 40.0, "pending", "card", now.AddDate(0, 0, -1)))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT amount, fees, net_amount, status, requested_at FROM payment_payouts`)).
		WithArgs(organiserID, start).
		WillReturnRows(payoutRows().AddRow(50, 1, 49, "completed", now.AddDate(0, 0, -1)))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, organiser_id, amount, fees, net_amount`)).WithArgs(organiserID, start).
		WillReturnRows(sqlmock.NewRows([]string{"id", "organiser_id", "amount", "fees", "net_amount", "currency", "payout_method", "status", "notes", "requested_at", "processed_at"}).
			AddRow("p1", organiserID, 50.0, 1.0, 49.0, "USD", "bank_transfer", "completed", nil, now.AddDate(0, 0, -1), now))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, title FROM events WHERE organiser_id = $1`)).WithArgs(organiserID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}).AddRow("e1", "Launch").AddRow("e2", "Encore"))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM transactions t JOIN events e ON e.id = t.event_id WHERE e.organiser_id = $1 AND t.created_at >= $2 AND t.status = $3`)).
		WithArgs(organiserID, start, "completed").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(regexp.QuoteMeta(`AND t.status = $3 ORDER BY t.created_at DESC LIMIT $4 OFFSET $5`)).
		WithArgs(organiserID, start, "completed", 1, 1).
		WillReturnRows(sqlmock.NewRows(transactionFields).
			AddRow("t2", "u1", "e1", nil, "purchase", 60.0, "USD", "completed", "crypto", now, now.AddDate(0, 0, -2), "Launch"))

	p, err := o.Payments(context.Background(), db, model.PaymentsFilter{
		OrganiserID: organiserID, Status: "completed", Period: "7d", Page: 2, Limit: 1,
	})
	require.NoError(t, err)

	require.Len(t, p.Transactions, 1)
	assert.Equal(t, "t2", p.Transactions[0].ID)
	assert.Equal(t, model.Pagination{Page: 2, Limit: 1, Total: 2, TotalPages: 2}, p.Pagination)

	assert.Equal(t, 3, p.Summary.TotalTransactions, "the summary covers every sale in the window, not the page")
	assert.Equal(t, 160.0, p.Summary.TotalRevenue)
	assert.Equal(t, 40.0, p.Summary.PendingAmount)
	assert.Equal(t, 49.0, p.Summary.TotalPayouts)
	assert.Equal(t, 105.2, p.Summary.AvailableBalance)

	require.Len(t, p.PaymentMethods, 2)
	assert.Equal(t, "card", p.PaymentMethods[0].Method)
	require.Len(t, p.RevenueByEvent, 1)
	assert.Equal(t, "Launch", p.RevenueByEvent[0].Title)
	assert.Len(t, p.Payouts, 1)
	assert.Len(t, p.ChartData, 8)
	assert.Equal(t, analytics.Period7Days, p.Period)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentsAllStatusesDropsStatusFilter(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	mock.MatchExpectationsInOrder(false)

	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	start := now.AddDate(0, 0, -30)
	o := NewOrganiser(nil, nil, nil, testKey, false)
	o.now = func() time.Time { return now }

	expectOrganiser(mock, true)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT t.event_id, t.amount`)).WillReturnRows(saleRows())
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT amount, fees, net_amount, status, requested_at FROM payment_payouts`)).
		WillReturnRows(payoutRows())
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, organiser_id, amount`)).WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, title FROM events`)).WillReturnRows(sqlmock.NewRows([]string{"id", "title"}))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM transactions`)+`.*t.created_at >= \$2$`).
		WithArgs(organiserID, start).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta(`t.created_at >= $2 ORDER BY t.created_at DESC LIMIT $3 OFFSET $4`)).
		WithArgs(organiserID, start, defaultPaymentsLimit, 0).
		WillReturnRows(sqlmock.NewRows(transactionFields))

	p, err := o.Payments(context.Background(), db, model.PaymentsFilter{OrganiserID: organiserID, Status: "all"})
	require.NoError(t, err)
	assert.NotNil(t, p.Transactions)
	assert.NotNil(t, p.Payouts)
	assert.Equal(t, analytics.Period30Days, p.Period)
	assert.NoError(t, mock.ExpectationsWereMet())
}
