package organiser

import (
	"context"
	"database/sql"
	"fmt"
	"rovify-backend/database"
	"rovify-backend/event"
	"rovify-backend/model"
	"rovify-backend/workerpool"
	"strings"
)

const (
	defaultAttendeeLimit = 20
	topInterestsLimit    = 10
)

// Attendees pages through the people registered for the organiser's events. Ticket, attendance
// history and connection status are fetched with one query each for the whole page.
func (o *Organiser) Attendees(ctx context.Context, db *sql.DB, f model.AttendeeFilter) (*model.AttendeeList, error) {
	if err := RequireOrganiser(ctx, db, f.OrganiserID); err != nil {
		return nil, err
	}
	f.Page, f.Limit = pageOf(f.Page, f.Limit, defaultAttendeeLimit)

	scope := `e.organiser_id = $1`
	scopeArgs := []interface{}{f.OrganiserID}
	if f.EventID != "" {
		scopeArgs = append(scopeArgs, f.EventID)
		scope += fmt.Sprintf(` AND a.event_id::text = $%d`, len(scopeArgs))
	}

	where := scope
	args := append([]interface{}{}, scopeArgs...)
	if f.Status != "" {
		args = append(args, f.Status)
		where += fmt.Sprintf(` AND a.status = $%d`, len(args))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		args = append(args, "%"+s+"%")
		n := len(args)
		where += fmt.Sprintf(` AND (u.name ILIKE $%d OR u.username ILIKE $%d OR u.email ILIKE $%d)`, n, n, n)
	}

	const from = ` FROM event_attendees a JOIN events e ON e.id = a.event_id JOIN users u ON u.id = a.user_id WHERE `

	list := &model.AttendeeList{Attendees: []model.Attendee{}}
	list.Demographics.TopInterests = []model.InterestCount{}
	var total int64

	err := workerpool.Run(ctx, fanOut,
		func(ctx context.Context) (err error) {
			total, err = database.Count(ctx, db, `SELECT COUNT(*)`+from+where, args...)
			return
		},
		func(ctx context.Context) error {
			query := fmt.Sprintf(`SELECT a.id, a.event_id, e.title, a.status, a.created_at,
				u.id, u.name, u.username, u.email, u.image, u.verified, u.interests%s%s
				ORDER BY a.created_at DESC LIMIT $%d OFFSET $%d`, from, where, len(args)+1, len(args)+2)
			rows, err := db.QueryContext(ctx, query, append(args, f.Limit, (f.Page-1)*f.Limit)...)
			if err != nil {
				return err
			}
			defer rows.Close()
			for rows.Next() {
				var a model.Attendee
				err := rows.Scan(&a.ID, &a.EventID, &a.EventTitle, &a.Status, &a.RegisteredAt,
					&a.User.ID, &a.User.Name, &a.User.Username, &a.User.Email, &a.User.Image, &a.User.Verified,
					database.Array(&a.Interests))
				if err != nil {
					return err
				}
				list.Attendees = append(list.Attendees, a)
			}
			return rows.Err()
		},
		func(ctx context.Context) error {
			return db.QueryRowContext(ctx, `
				SELECT COUNT(*),
					COUNT(*) FILTER (WHERE a.status = 'going'),
					COUNT(*) FILTER (WHERE a.status = 'interested'),
					COUNT(*) FILTER (WHERE a.status = 'attended')`+from+scope, scopeArgs...).
				Scan(&list.Summary.Total, &list.Summary.Going, &list.Summary.Interested, &list.Summary.Attended)
		},
		func(ctx context.Context) error {
			rows, err := db.QueryContext(ctx, fmt.Sprintf(`
				SELECT i.interest, COUNT(*)%s%s
				GROUP BY i.interest ORDER BY COUNT(*) DESC, i.interest LIMIT %d`,
				` FROM event_attendees a JOIN events e ON e.id = a.event_id JOIN users u ON u.id = a.user_id
				CROSS JOIN LATERAL unnest(u.interests) AS i(interest) WHERE `, scope, topInterestsLimit), scopeArgs...)
			if err != nil {
				return err
			}
			defer rows.Close()
			for rows.Next() {
				var ic model.InterestCount
				if err := rows.Scan(&ic.Interest, &ic.Count); err != nil {
					return err
				}
				list.Demographics.TopInterests = append(list.Demographics.TopInterests, ic)
			}
			return rows.Err()
		},
	)
	if err != nil {
		return nil, fmt.Errorf("attendees: %w", err)
	}

	if err := enrichAttendees(ctx, db, f.OrganiserID, list.Attendees); err != nil {
		return nil, fmt.Errorf("attendees: %w", err)
	}
	list.Pagination = model.NewPagination(f.Page, f.Limit, total)
	return list, nil
}

// enrichAttendees fills ticket, eventsAttended and connectionStatus for a page of attendees.
func enrichAttendees(ctx context.Context, db *sql.DB, organiserID string, attendees []model.Attendee) error {
	if len(attendees) == 0 {
		return nil
	}

	userIDs := make([]string, 0, len(attendees))
	eventIDs := make([]string, 0, len(attendees))
	for _, a := range attendees {
		userIDs = append(userIDs, a.User.ID)
		eventIDs = append(eventIDs, a.EventID)
	}

	tickets := make(map[string]*model.Ticket)
	attended := make(map[string]int64)
	connections := make(map[string]string)

	err := workerpool.Run(ctx, 3,
		func(ctx context.Context) error {
			rows, err := db.QueryContext(ctx, `
				SELECT `+event.TicketColumns+` FROM tickets
				WHERE owner_id = ANY($1) AND event_id = ANY($2)
				ORDER BY created_at DESC`, userIDs, eventIDs)
			if err != nil {
				return err
			}
			defer rows.Close()
			for rows.Next() {
				t, err := event.ScanTicket(rows)
				if err != nil {
					return err
				}
				if t.OwnerID == nil || t.EventID == nil {
					continue
				}
				key := *t.OwnerID + "/" + *t.EventID
				if _, ok := tickets[key]; !ok {
					tickets[key] = t
				}
			}
			return rows.Err()
		},
		func(ctx context.Context) error {
			rows, err := db.QueryContext(ctx, `
				SELECT user_id, COUNT(*) FROM event_attendees
				WHERE user_id = ANY($1) AND status = 'attended'
				GROUP BY user_id`, userIDs)
			if err != nil {
				return err
			}
			defer rows.Close()
			for rows.Next() {
				var (
					id string
					n  int64
				)
				if err := rows.Scan(&id, &n); err != nil {
					return err
				}
				attended[id] = n
			}
			return rows.Err()
		},
		func(ctx context.Context) error {
			rows, err := db.QueryContext(ctx, `
				SELECT CASE WHEN requester_id = $1 THEN addressee_id ELSE requester_id END, status
				FROM user_connections
				WHERE (requester_id = $1 AND addressee_id = ANY($2)) OR (addressee_id = $1 AND requester_id = ANY($2))`,
				organiserID, userIDs)
			if err != nil {
				return err
			}
			defer rows.Close()
			for rows.Next() {
				var id, status string
				if err := rows.Scan(&id, &status); err != nil {
					return err
				}
				connections[id] = status
			}
			return rows.Err()
		},
	)
	if err != nil {
		return fmt.Errorf("enrichAttendees: %w", err)
	}

	for i := range attendees {
		a := &attendees[i]
		a.Ticket = tickets[a.User.ID+"/"+a.EventID]
		a.EventsAttended = attended[a.User.ID]
		if status, ok := connections[a.User.ID]; ok {
			a.ConnectionStatus = &status
		}
	}
	return nil
}
