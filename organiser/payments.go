package organiser

import (
	"context"
	"database/sql"
	"fmt"
	"rovify-backend/activity"
	"rovify-backend/analytics"
	"rovify-backend/database"
	"rovify-backend/model"
	"rovify-backend/response"
	"rovify-backend/verification"
	"rovify-backend/workerpool"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	defaultPaymentsLimit = 20

	ActionRequestPayout  = "request_payout"
	ActionSendPayoutCode = "send_payout_code"
)

type Payments struct {
	Transactions   []model.Transaction      `json:"transactions"`
	Payouts        []model.Payout           `json:"payouts"`
	Pagination     model.Pagination         `json:"pagination"`
	Summary        analytics.PaymentSummary `json:"summary"`
	PaymentMethods []analytics.MethodShare  `json:"paymentMethods"`
	RevenueByEvent []analytics.EventRevenue `json:"revenueByEvent"`
	ChartData      []analytics.DailyPoint   `json:"chartData"`
	Period         analytics.Period         `json:"period"`
}

// Payments reports transactions and payouts over the period.
func (o *Organiser) Payments(ctx context.Context, db *sql.DB, f model.PaymentsFilter) (*Payments, error) {
	if err := RequireOrganiser(ctx, db, f.OrganiserID); err != nil {
		return nil, err
	}
	f.Page, f.Limit = pageOf(f.Page, f.Limit, defaultPaymentsLimit)
	status := f.Status
	if status == "all" {
		status = ""
	}

	p := analytics.ParsePeriod(f.Period)
	w := analytics.WindowFor(p, o.clock())
	out := &Payments{Period: p}

	var (
		sold        []analytics.Sale
		paid        []analytics.Payout
		titles      map[string]string
		transaction []model.Transaction
		total       int64
	)
	err := workerpool.Run(ctx, fanOut,
		func(ctx context.Context) (err error) {
			sold, err = sales(ctx, db, f.OrganiserID, "", "", w.Start)
			return
		},
		func(ctx context.Context) (err error) {
			paid, err = payouts(ctx, db, f.OrganiserID, w.Start)
			return
		},
		func(ctx context.Context) (err error) {
			out.Payouts, err = payoutList(ctx, db, f.OrganiserID, w.Start)
			return
		},
		func(ctx context.Context) (err error) {
			titles, err = eventTitles(ctx, db, f.OrganiserID)
			return
		},
		func(ctx context.Context) (err error) {
			transaction, total, err = transactionPage(ctx, db, f.OrganiserID, status, w.Start, f.Page, f.Limit)
			return
		},
	)
	if err != nil {
		return nil, fmt.Errorf("payments: %w", err)
	}

	out.Transactions = transaction
	out.Pagination = model.NewPagination(f.Page, f.Limit, total)
	out.Summary = analytics.SummarizePayments(sold, paid)
	out.PaymentMethods = analytics.PaymentMethodBreakdown(sold)
	out.RevenueByEvent = analytics.RevenueByEvent(sold, titles)
	out.ChartData = analytics.DailySeries(w, analytics.Completed(sold), nil)
	return out, nil
}

// RequestPayout reserves amount from the organiser's lifetime available balance. The balance check
// and the insert run in one transaction holding a lock on the organiser row.
func (o *Organiser) RequestPayout(ctx context.Context, db *sql.DB, organiserID string, a *model.PaymentAction) (*model.Payout, error) {
	if err := RequireOrganiser(ctx, db, organiserID); err != nil {
		return nil, err
	}
	a.PayoutMethod = strings.TrimSpace(a.PayoutMethod)
	if a.Amount <= 0 || a.PayoutMethod == "" {
		return nil, response.BadRequest("A positive amount and payoutMethod are required", "requestPayout: invalid amount or method")
	}

	if o.RequireOTP {
		if strings.TrimSpace(a.VerificationCode) == "" {
			return nil, response.BadRequest("Verification code is required", "requestPayout: missing verification code")
		}
		if o.Codes == nil {
			return nil, response.ServiceUnavailable("Payout verification is not available")
		}
		if err := o.Codes.Verify(ctx, verification.PurposePayout, organiserID, strings.TrimSpace(a.VerificationCode)); err != nil {
			return nil, err
		}
	}

	fees, net := analytics.PayoutFees(a.Amount)
	currency := strings.ToUpper(strings.TrimSpace(a.Currency))
	if currency == "" {
		currency = "USD"
	}
	payout := model.Payout{
		ID:           uuid.NewString(),
		OrganiserID:  organiserID,
		Amount:       analytics.Round(a.Amount, 2),
		Fees:         fees,
		NetAmount:    net,
		Currency:     currency,
		PayoutMethod: a.PayoutMethod,
		Status:       analytics.StatusPending,
		RequestedAt:  o.clock(),
	}
	if notes := strings.TrimSpace(a.Notes); notes != "" {
		payout.Notes = &notes
	}

	err := database.WithTx(ctx, db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, organiserID); err != nil {
			return err
		}

		sold, err := sales(ctx, tx, organiserID, "", "", time.Time{})
		if err != nil {
			return err
		}
		paid, err := payouts(ctx, tx, organiserID, time.Time{})
		if err != nil {
			return err
		}
		available := analytics.SummarizePayments(sold, paid).AvailableBalance
		if payout.Amount > available {
			return response.BadRequest("Insufficient available balance",
				fmt.Sprintf("requestPayout: requested %.2f, available %.2f", payout.Amount, available))
		}

		err = database.Insert(ctx, tx, "payment_payouts",
			[]string{"id", "organiser_id", "amount", "fees", "net_amount", "currency", "payout_method", "status", "notes", "requested_at"},
			[]interface{}{payout.ID, payout.OrganiserID, payout.Amount, payout.Fees, payout.NetAmount, payout.Currency,
				payout.PayoutMethod, payout.Status, payout.Notes, payout.RequestedAt})
		if err != nil {
			return err
		}
		return activity.Log(ctx, tx, activity.Entry{
			UserID:        organiserID,
			Type:          activity.PayoutRequested,
			ReferenceType: "payout",
			ReferenceID:   payout.ID,
			Metadata: map[string]interface{}{
				"amount":        payout.Amount,
				"net_amount":    payout.NetAmount,
				"payout_method": payout.PayoutMethod,
			},
		})
	})
	if err != nil {
		if _, ok := err.(response.ErrorResponse); ok {
			return nil, err
		}
		return nil, fmt.Errorf("requestPayout: %w", err)
	}
	return &payout, nil
}

// SendPayoutCode texts a payout verification code to the organiser's business phone.
func (o *Organiser) SendPayoutCode(ctx context.Context, db *sql.DB, organiserID string) error {
	if err := RequireOrganiser(ctx, db, organiserID); err != nil {
		return err
	}
	if o.Codes == nil {
		return response.ServiceUnavailable("Payout verification is not available")
	}

	var phone sql.NullString
	err := db.QueryRowContext(ctx, `SELECT business_phone FROM organiser_settings WHERE organiser_id = $1`, organiserID).Scan(&phone)
	if err != nil && !database.IsNoRows(err) {
		return fmt.Errorf("sendPayoutCode: %w", err)
	}
	if strings.TrimSpace(phone.String) == "" {
		return response.BadRequest("Add a business phone number to receive verification codes", "sendPayoutCode: no business phone")
	}

	if err := o.Codes.Send(ctx, verification.PurposePayout, organiserID, strings.TrimSpace(phone.String)); err != nil {
		if _, ok := err.(response.ErrorResponse); ok {
			return err
		}
		return fmt.Errorf("sendPayoutCode: %w", err)
	}
	return nil
}

func payoutList(ctx context.Context, db *sql.DB, organiserID string, since time.Time) ([]model.Payout, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, organiser_id, amount, fees, net_amount, currency, payout_method, status, notes, requested_at, processed_at
		FROM payment_payouts WHERE organiser_id = $1 AND requested_at >= $2
		ORDER BY requested_at DESC`, organiserID, since)
	if err != nil {
		return nil, fmt.Errorf("payoutList: %w", err)
	}
	defer rows.Close()

	out := []model.Payout{}
	for rows.Next() {
		var p model.Payout
		err := rows.Scan(&p.ID, &p.OrganiserID, &p.Amount, &p.Fees, &p.NetAmount, &p.Currency, &p.PayoutMethod, &p.Status,
			&p.Notes, &p.RequestedAt, &p.ProcessedAt)
		if err != nil {
			return nil, fmt.Errorf("payoutList: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func eventTitles(ctx context.Context, db *sql.DB, organiserID string) (map[string]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, title FROM events WHERE organiser_id = $1`, organiserID)
	if err != nil {
		return nil, fmt.Errorf("eventTitles: %w", err)
	}
	defer rows.Close()

	titles := make(map[string]string)
	for rows.Next() {
		var id, title string
		if err := rows.Scan(&id, &title); err != nil {
			return nil, fmt.Errorf("eventTitles: %w", err)
		}
		titles[id] = title
	}
	return titles, rows.Err()
}

func transactionPage(ctx context.Context, db *sql.DB, organiserID, status string, since time.Time, page, limit int) ([]model.Transaction, int64, error) {
	where := `e.organiser_id = $1 AND t.created_at >= $2`
	args := []interface{}{organiserID, since}
	if status != "" {
		args = append(args, status)
		where += fmt.Sprintf(` AND t.status = $%d`, len(args))
	}
	const from = ` FROM transactions t JOIN events e ON e.id = t.event_id WHERE `

	total, err := database.Count(ctx, db, `SELECT COUNT(*)`+from+where, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("transactionPage: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s%s%s ORDER BY t.created_at DESC LIMIT $%d OFFSET $%d`,
		transactionColumns, from, where, len(args)+1, len(args)+2)
	rows, err := db.QueryContext(ctx, query, append(args, limit, (page-1)*limit)...)
	if err != nil {
		return nil, 0, fmt.Errorf("transactionPage: %w", err)
	}
	defer rows.Close()

	out := []model.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("transactionPage: %w", err)
		}
		out = append(out, t)
	}
	return out, total, rows.Err()
}
