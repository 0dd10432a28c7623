package organiser

import (
	"context"
	"database/sql"
	"fmt"
	"rovify-backend/analytics"
	"rovify-backend/database"
	"rovify-backend/workerpool"

	"github.com/google/uuid"
)

// Analytics builds the organiser report over the period, optionally for a single event.
func (o *Organiser) Analytics(ctx context.Context, db *sql.DB, organiserID, period, eventID string) (*analytics.Report, error) {
	if err := RequireOrganiser(ctx, db, organiserID); err != nil {
		return nil, err
	}
	if eventID != "" {
		if _, err := uuid.Parse(eventID); err != nil {
			return nil, notFoundEvent(eventID)
		}
	}

	p := analytics.ParsePeriod(period)
	in := analytics.Input{Window: analytics.WindowFor(p, o.clock())}
	since := in.Window.Start

	// Each fetch joins events on the organiser, so rows of other organisers never leak in.
	scope := `e.organiser_id = $1 AND x.created_at >= $2`
	args := []interface{}{organiserID, since}
	if eventID != "" {
		scope += ` AND e.id = $3`
		args = append(args, eventID)
	}

	err := workerpool.Run(ctx, fanOut,
		func(ctx context.Context) (err error) {
			in.Events, err = organiserEvents(ctx, db, organiserID, eventID)
			return
		},
		func(ctx context.Context) (err error) {
			in.Sales, err = sales(ctx, db, organiserID, eventID, analytics.StatusCompleted, since)
			return
		},
		func(ctx context.Context) (err error) {
			in.Tickets, err = occurrences(ctx, db, `
				SELECT x.event_id, x.created_at FROM tickets x JOIN events e ON e.id = x.event_id
				WHERE `+scope, args...)
			return
		},
		func(ctx context.Context) (err error) {
			in.Views, err = occurrences(ctx, db, `
				SELECT e.id, x.created_at FROM analytics_events x JOIN events e ON e.id::text = x.event_data->>'event_id'
				WHERE x.event_type = 'event_view' AND `+scope, args...)
			return
		},
		func(ctx context.Context) (err error) {
			in.Likes, err = occurrences(ctx, db, `
				SELECT x.event_id, x.created_at FROM event_likes x JOIN events e ON e.id = x.event_id
				WHERE `+scope, args...)
			return
		},
	)
	if err != nil {
		return nil, fmt.Errorf("analytics: %w", err)
	}
	if eventID != "" && len(in.Events) == 0 {
		return nil, notFoundEvent(eventID)
	}

	report := analytics.BuildReport(p, in)
	return &report, nil
}

func organiserEvents(ctx context.Context, db database.Querier, organiserID, eventID string) ([]analytics.EventStats, error) {
	query := `SELECT id, title, status, date, total_tickets, views, shares FROM events WHERE organiser_id = $1`
	args := []interface{}{organiserID}
	if eventID != "" {
		query += ` AND id = $2`
		args = append(args, eventID)
	}
	query += ` ORDER BY date`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("organiserEvents: %w", err)
	}
	defer rows.Close()

	var out []analytics.EventStats
	for rows.Next() {
		var e analytics.EventStats
		if err := rows.Scan(&e.ID, &e.Title, &e.Status, &e.Date, &e.TotalTickets, &e.Views, &e.Shares); err != nil {
			return nil, fmt.Errorf("organiserEvents: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
