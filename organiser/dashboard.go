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
	"rovify-backend/workerpool"
	"time"
)

const (
	recentLimit   = 5
	upcomingLimit = 5
	streakWindow  = 366
)

type eventCounts struct {
	total, published, draft, completed, upcoming, views int64
}

func countEvents(ctx context.Context, db database.Querier, organiserID string, now time.Time) (eventCounts, error) {
	var c eventCounts
	err := db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'published'),
			COUNT(*) FILTER (WHERE status = 'draft'),
			COUNT(*) FILTER (WHERE status = 'completed'),
			COUNT(*) FILTER (WHERE status = 'published' AND date > $2),
			COALESCE(SUM(views), 0)
		FROM events WHERE organiser_id = $1`, organiserID, now).
		Scan(&c.total, &c.published, &c.draft, &c.completed, &c.upcoming, &c.views)
	if err != nil {
		return c, fmt.Errorf("countEvents: %w", err)
	}
	return c, nil
}

func countAttendees(ctx context.Context, db database.Querier, organiserID string) (int64, error) {
	return database.Count(ctx, db, `
		SELECT COUNT(*) FROM event_attendees a JOIN events e ON e.id = a.event_id
		WHERE e.organiser_id = $1`, organiserID)
}

// Dashboard summarises the organiser's events, revenue and progress.
func (o *Organiser) Dashboard(ctx context.Context, db *sql.DB, organiserID string) (*model.Dashboard, error) {
	if err := RequireOrganiser(ctx, db, organiserID); err != nil {
		return nil, err
	}

	now := o.clock()
	var (
		counts     eventCounts
		attendees  int64
		rating     float64
		recent     []model.Transaction
		upcoming   []model.Event
		sold       []analytics.Sale
		activityAt []time.Time
	)

	err := workerpool.Run(ctx, fanOut,
		func(ctx context.Context) (err error) {
			counts, err = countEvents(ctx, db, organiserID, now)
			return
		},
		func(ctx context.Context) (err error) {
			attendees, err = countAttendees(ctx, db, organiserID)
			return
		},
		func(ctx context.Context) error {
			return db.QueryRowContext(ctx, `
				SELECT COALESCE(AVG(r.rating), 0) FROM reviews r JOIN events e ON e.id = r.event_id
				WHERE e.organiser_id = $1`, organiserID).Scan(&rating)
		},
		func(ctx context.Context) (err error) {
			sold, err = sales(ctx, db, organiserID, "", analytics.StatusCompleted, now.AddDate(0, 0, -60))
			return
		},
		func(ctx context.Context) (err error) {
			recent, err = recentTransactions(ctx, db, organiserID, recentLimit)
			return
		},
		func(ctx context.Context) (err error) {
			upcoming, err = upcomingEvents(ctx, db, organiserID, now)
			return
		},
		func(ctx context.Context) (err error) {
			activityAt, err = activityDates(ctx, db, organiserID, now.AddDate(0, 0, -streakWindow))
			return
		},
	)
	if err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}

	revenue, _, growth := analytics.RevenueComparison(sold, now)
	level, progress := analytics.OrganiserLevel(counts.total)

	return &model.Dashboard{
		Stats: model.DashboardStats{
			TotalEvents:     counts.total,
			PublishedEvents: counts.published,
			DraftEvents:     counts.draft,
			CompletedEvents: counts.completed,
			UpcomingEvents:  counts.upcoming,
			TotalAttendees:  attendees,
			TotalRevenue:    revenue,
			RevenueGrowth:   growth,
			AverageRating:   analytics.Round(rating, 1),
			TotalViews:      counts.views,
		},
		Gamification: model.OrganiserLevel{
			Level:         level,
			LevelProgress: progress,
			Points:        analytics.Points(attendees, counts.published, counts.completed),
			StreakDays:    analytics.Streak(activityAt, now),
		},
		RecentActivity: recent,
		UpcomingEvents: upcoming,
	}, nil
}

const transactionColumns = `t.id, t.user_id, t.event_id, t.ticket_id, t.type, t.amount, t.currency, t.status, t.payment_method,
	t.completed_at, t.created_at, e.title`

func scanTransaction(rows *sql.Rows) (model.Transaction, error) {
	var t model.Transaction
	err := rows.Scan(&t.ID, &t.UserID, &t.EventID, &t.TicketID, &t.Type, &t.Amount, &t.Currency, &t.Status, &t.PaymentMethod,
		&t.CompletedAt, &t.CreatedAt, &t.EventTitle)
	return t, err
}

func recentTransactions(ctx context.Context, db database.Querier, organiserID string, limit int) ([]model.Transaction, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions t JOIN events e ON e.id = t.event_id
		WHERE e.organiser_id = $1
		ORDER BY t.created_at DESC LIMIT $2`, organiserID, limit)
	if err != nil {
		return nil, fmt.Errorf("recentTransactions: %w", err)
	}
	defer rows.Close()

	out := []model.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("recentTransactions: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func upcomingEvents(ctx context.Context, db database.Querier, organiserID string, now time.Time) ([]model.Event, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+event.Columns+` FROM events e
		WHERE e.organiser_id = $1 AND e.status = 'published' AND e.date > $2
		ORDER BY e.date LIMIT $3`, organiserID, now, upcomingLimit)
	if err != nil {
		return nil, fmt.Errorf("upcomingEvents: %w", err)
	}
	defer rows.Close()

	out := []model.Event{}
	for rows.Next() {
		e, err := event.Scan(rows)
		if err != nil {
			return nil, fmt.Errorf("upcomingEvents: %w", err)
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

func activityDates(ctx context.Context, db database.Querier, userID string, since time.Time) ([]time.Time, error) {
	rows, err := db.QueryContext(ctx, `SELECT created_at FROM user_activity WHERE user_id = $1 AND created_at >= $2`, userID, since)
	if err != nil {
		return nil, fmt.Errorf("activityDates: %w", err)
	}
	defer rows.Close()

	var out []time.Time
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("activityDates: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func notFoundEvent(id string) response.ErrorResponse {
	return response.ResourceNotFound("Event not found", fmt.Sprintf("organiser: no event %s", id))
}
