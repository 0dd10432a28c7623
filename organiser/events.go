package organiser

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"rovify-backend/analytics"
	"rovify-backend/event"
	"rovify-backend/model"
	"rovify-backend/workerpool"
	"strings"
	"time"
)

const defaultEventLimit = 10

var sortColumns = map[string]string{
	"created_at":   "e.created_at",
	"date":         "e.date",
	"title":        "e.title",
	"views":        "e.views",
	"sold_tickets": "e.sold_tickets",
}

// EventList pages through the organiser's events with revenue, rating and attendance folded in.
func (o *Organiser) EventList(ctx context.Context, db *sql.DB, f model.OrganiserEventFilter) (*model.OrganiserEventList, error) {
	if err := RequireOrganiser(ctx, db, f.OrganiserID); err != nil {
		return nil, err
	}
	f.Page, f.Limit = pageOf(f.Page, f.Limit, defaultEventLimit)

	sortBy, ok := sortColumns[f.SortBy]
	if !ok {
		sortBy = sortColumns["created_at"]
	}
	order := "DESC"
	if strings.EqualFold(f.SortOrder, "asc") {
		order = "ASC"
	}

	where := `e.organiser_id = $1`
	args := []interface{}{f.OrganiserID}
	if f.Status != "" && f.Status != "all" {
		args = append(args, f.Status)
		where += fmt.Sprintf(` AND e.status = $%d`, len(args))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		args = append(args, "%"+s+"%")
		where += fmt.Sprintf(` AND e.title ILIKE $%d`, len(args))
	}

	now := o.clock()
	list := &model.OrganiserEventList{Events: []model.OrganiserEvent{}}
	var total int64

	err := workerpool.Run(ctx, fanOut,
		func(ctx context.Context) error {
			return db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events e WHERE `+where, args...).Scan(&total)
		},
		func(ctx context.Context) error {
			query := fmt.Sprintf(`
				SELECT %s, COALESCE(rev.amount, 0), COALESCE(rat.rating, 0), COALESCE(att.n, 0)
				FROM events e
				LEFT JOIN (
					SELECT event_id, SUM(amount) AS amount FROM transactions
					WHERE type = 'purchase' AND status = 'completed' GROUP BY event_id
				) rev ON rev.event_id = e.id
				LEFT JOIN (SELECT event_id, AVG(rating) AS rating FROM reviews GROUP BY event_id) rat ON rat.event_id = e.id
				LEFT JOIN (SELECT event_id, COUNT(*) AS n FROM event_attendees GROUP BY event_id) att ON att.event_id = e.id
				WHERE %s
				ORDER BY %s %s, e.id
				LIMIT $%d OFFSET $%d`, event.Columns, where, sortBy, order, len(args)+1, len(args)+2)
			rows, err := db.QueryContext(ctx, query, append(args, f.Limit, (f.Page-1)*f.Limit)...)
			if err != nil {
				return err
			}
			defer rows.Close()
			for rows.Next() {
				var oe model.OrganiserEvent
				e, err := event.Scan(rows, &oe.Revenue, &oe.AverageRating, &oe.Attendees)
				if err != nil {
					return err
				}
				oe.Event = *e
				list.Events = append(list.Events, decorate(oe, now))
			}
			return rows.Err()
		},
		func(ctx context.Context) error {
			counts, err := countEvents(ctx, db, f.OrganiserID, now)
			if err != nil {
				return err
			}
			list.Summary.TotalEvents = counts.total
			list.Summary.PublishedEvents = counts.published
			list.Summary.DraftEvents = counts.draft
			list.Summary.TotalViews = counts.views
			return nil
		},
		func(ctx context.Context) error {
			return db.QueryRowContext(ctx, `
				SELECT COALESCE(SUM(t.amount), 0) FROM transactions t JOIN events e ON e.id = t.event_id
				WHERE e.organiser_id = $1 AND t.type = 'purchase' AND t.status = 'completed'`, f.OrganiserID).
				Scan(&list.Summary.TotalRevenue)
		},
		func(ctx context.Context) (err error) {
			list.Summary.TotalAttendees, err = countAttendees(ctx, db, f.OrganiserID)
			return
		},
	)
	if err != nil {
		return nil, fmt.Errorf("eventList: %w", err)
	}

	list.Summary.TotalRevenue = analytics.Round(list.Summary.TotalRevenue, 2)
	list.Pagination = model.NewPagination(f.Page, f.Limit, total)
	return list, nil
}

func decorate(oe model.OrganiserEvent, now time.Time) model.OrganiserEvent {
	oe.Revenue = analytics.Round(oe.Revenue, 2)
	oe.AverageRating = analytics.Round(oe.AverageRating, 1)
	oe.ConversionRate = analytics.Round(analytics.ConversionRate(oe.SoldTickets, oe.Views), 1)
	oe.DaysUntil = int(math.Ceil(oe.Date.Sub(now).Hours() / 24))
	oe.Capacity = oe.TotalTickets
	if oe.VenueCapacity != nil {
		oe.Capacity = *oe.VenueCapacity
	}
	return oe
}
