package organiser

import (
	"context"
	"database/sql"
	"fmt"
	"rovify-backend/analytics"
	"rovify-backend/database"
	"rovify-backend/event"
	"rovify-backend/model"
	"rovify-backend/response"
	"time"
)

const fanOut = 6

// PayoutVault keeps bank details outside Postgres.
type PayoutVault interface {
	WritePayoutDetails(ctx context.Context, organiserID string, details map[string]interface{}) error
	HasPayoutDetails(ctx context.Context, organiserID string) (bool, error)
}

// CodeVerifier sends and checks one-time codes.
type CodeVerifier interface {
	Send(ctx context.Context, purpose, subject, phone string) error
	Verify(ctx context.Context, purpose, subject, code string) error
}

// Organiser serves the organiser dashboard area. Vault and Codes are optional: without a vault
// bank details cannot be saved, and without a verifier payout codes cannot be sent.
type Organiser struct {
	Events     *event.Event
	Vault      PayoutVault
	Codes      CodeVerifier
	APIKeyKey  []byte
	RequireOTP bool

	now func() time.Time
}

func NewOrganiser(events *event.Event, vault PayoutVault, codes CodeVerifier, apiKeyKey []byte, requireOTP bool) *Organiser {
	return &Organiser{
		Events:     events,
		Vault:      vault,
		Codes:      codes,
		APIKeyKey:  apiKeyKey,
		RequireOTP: requireOTP,
		now:        time.Now,
	}
}

// RequireOrganiser returns 403 unless userID belongs to an organiser account.
func RequireOrganiser(ctx context.Context, db database.Querier, userID string) error {
	var isOrganiser bool
	err := db.QueryRowContext(ctx, `SELECT is_organiser FROM users WHERE id = $1`, userID).Scan(&isOrganiser)
	if database.IsNoRows(err) {
		return response.NotOrganiser()
	}
	if err != nil {
		return fmt.Errorf("requireOrganiser: %w", err)
	}
	if !isOrganiser {
		return response.NotOrganiser()
	}
	return nil
}

// CreateEvent creates an event owned by the organiser.
func (o *Organiser) CreateEvent(ctx context.Context, db *sql.DB, organiserID string, in *model.EventInput) (*model.Event, error) {
	if err := RequireOrganiser(ctx, db, organiserID); err != nil {
		return nil, err
	}
	return o.Events.Create(ctx, db, organiserID, in)
}

func (o *Organiser) clock() time.Time {
	if o.now == nil {
		return time.Now().UTC()
	}
	return o.now().UTC()
}

const saleColumns = `t.event_id, t.amount, t.status, COALESCE(t.payment_method, ''), t.created_at`

// sales returns purchase transactions of the organiser's events created at or after since.
// An empty status matches every status.
func sales(ctx context.Context, db database.Querier, organiserID, eventID, status string, since time.Time) ([]analytics.Sale, error) {
	query := `SELECT ` + saleColumns + `
		FROM transactions t JOIN events e ON e.id = t.event_id
		WHERE e.organiser_id = $1 AND t.type = 'purchase' AND t.created_at >= $2`
	args := []interface{}{organiserID, since}
	if eventID != "" {
		args = append(args, eventID)
		query += fmt.Sprintf(` AND t.event_id = $%d`, len(args))
	}
	if status != "" {
		args = append(args, status)
		query += fmt.Sprintf(` AND t.status = $%d`, len(args))
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sales: %w", err)
	}
	defer rows.Close()

	var out []analytics.Sale
	for rows.Next() {
		var s analytics.Sale
		if err := rows.Scan(&s.EventID, &s.Amount, &s.Status, &s.PaymentMethod, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("sales: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func payouts(ctx context.Context, db database.Querier, organiserID string, since time.Time) ([]analytics.Payout, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT amount, fees, net_amount, status, requested_at FROM payment_payouts
		WHERE organiser_id = $1 AND requested_at >= $2`, organiserID, since)
	if err != nil {
		return nil, fmt.Errorf("payouts: %w", err)
	}
	defer rows.Close()

	var out []analytics.Payout
	for rows.Next() {
		var p analytics.Payout
		if err := rows.Scan(&p.Amount, &p.Fees, &p.NetAmount, &p.Status, &p.RequestedAt); err != nil {
			return nil, fmt.Errorf("payouts: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// occurrences runs a query selecting (event id, created_at) pairs.
func occurrences(ctx context.Context, db database.Querier, query string, args ...interface{}) ([]analytics.Occurrence, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("occurrences: %w", err)
	}
	defer rows.Close()

	var out []analytics.Occurrence
	for rows.Next() {
		var o analytics.Occurrence
		if err := rows.Scan(&o.EventID, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("occurrences: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func pageOf(page, limit, defLimit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defLimit
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}
