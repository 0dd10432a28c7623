package event

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"rovify-backend/activity"
	"rovify-backend/chain"
	"rovify-backend/database"
	"rovify-backend/model"
	"rovify-backend/pinata"
	"rovify-backend/response"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
	viewEventType    = "event_view"
)

var validStatuses = map[string]bool{
	model.EventStatusDraft:     true,
	model.EventStatusPublished: true,
	model.EventStatusCompleted: true,
	model.EventStatusCancelled: true,
}

var (
	performanceCols = []string{"id", "event_id", "updated_at"}
	viewCols        = []string{"id", "event_type", "user_id", "event_data", "created_at"}
)

// Event serves event reads and writes. Pinner and Chain back the NFT ticket operations.
type Event struct {
	Pinner pinata.Pinner
	Chain  chain.Reader
}

func NewEvent(pinner pinata.Pinner, reader chain.Reader) *Event {
	return &Event{Pinner: pinner, Chain: reader}
}

// List returns events matching f ordered by date. Status defaults to published.
func (ev *Event) List(ctx context.Context, db *sql.DB, f model.EventFilter) ([]model.Event, error) {
	if f.Status == "" {
		f.Status = model.EventStatusPublished
	}
	if f.Limit <= 0 {
		f.Limit = defaultListLimit
	}
	if f.Limit > maxListLimit {
		f.Limit = maxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	conds := []string{"e.status = $1"}
	args := []interface{}{f.Status}
	if f.OrganiserID != "" {
		args = append(args, f.OrganiserID)
		conds = append(conds, fmt.Sprintf("e.organiser_id = $%d", len(args)))
	}
	if f.Category != "" {
		args = append(args, f.Category)
		conds = append(conds, fmt.Sprintf("e.category = $%d", len(args)))
	}
	args = append(args, f.Limit, f.Offset)

	query := fmt.Sprintf(`SELECT %s FROM events e WHERE %s ORDER BY e.date ASC LIMIT $%d OFFSET $%d`,
		Columns, strings.Join(conds, " AND "), len(args)-1, len(args))

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list: unable to query events: %w", err)
	}
	defer rows.Close()

	events := []model.Event{}
	for rows.Next() {
		e, err := Scan(rows)
		if err != nil {
			return nil, fmt.Errorf("list: unable to scan event: %w", err)
		}
		events = append(events, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	return events, nil
}

// Create inserts an event owned by organiserID together with its performance row and an
// event_created activity, all in one transaction.
func (ev *Event) Create(ctx context.Context, db *sql.DB, organiserID string, in *model.EventInput) (*model.Event, error) {
	if in.Title == nil || strings.TrimSpace(*in.Title) == "" || in.Date == nil || in.Location == nil || len(*in.Location) == 0 {
		return nil, response.BadRequest("Missing required fields: title, date, location", "create: missing fields")
	}

	status := model.EventStatusDraft
	if in.Status != nil {
		if !validStatuses[*in.Status] {
			return nil, response.InvalidData(fmt.Sprintf("create: invalid status: %s", *in.Status))
		}
		status = *in.Status
	}

	now := time.Now().UTC()
	e := &model.Event{
		ID:          uuid.NewString(),
		OrganiserID: &organiserID,
		Title:       strings.TrimSpace(*in.Title),
		Date:        in.Date.UTC(),
		Location:    *in.Location,
		Price:       json.RawMessage(`{}`),
		Status:      status,
		Tags:        []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if status == model.EventStatusPublished {
		e.PublishedAt = &now
	}

	cols := []string{"id", "organiser_id", "title", "date", "location", "status", "published_at", "created_at", "updated_at"}
	values := []interface{}{e.ID, organiserID, e.Title, e.Date, []byte(e.Location), e.Status, e.PublishedAt, now, now}
	moreCols, moreValues := inputColumns(in, e)
	cols = append(cols, moreCols...)
	values = append(values, moreValues...)

	err := database.WithTx(ctx, db, func(tx *sql.Tx) error {
		if err := database.Insert(ctx, tx, "events", cols, values); err != nil {
			return err
		}
		if err := database.Insert(ctx, tx, "event_performance", performanceCols, []interface{}{uuid.NewString(), e.ID, now}); err != nil {
			return err
		}
		return activity.Log(ctx, tx, activity.Entry{
			UserID:        organiserID,
			Type:          activity.EventCreated,
			ReferenceType: "event",
			ReferenceID:   e.ID,
			Metadata:      map[string]string{"title": e.Title},
		})
	})
	if err != nil {
		return nil, fmt.Errorf("create: %w", err)
	}
	return e, nil
}

// Get returns an event with its organiser, tickets, engagement counts and reviews. Every call
// counts as a view: the counter is incremented in the same statement that reads the row and a
// view record is kept for analytics.
func (ev *Event) Get(ctx context.Context, db *sql.DB, viewerID, id string) (*model.EventDetail, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, response.ResourceNotFound("Event not found", fmt.Sprintf("get: invalid id %q", id))
	}
	id = uid.String()

	row := db.QueryRowContext(ctx, `UPDATE events e SET views = e.views + 1 WHERE e.id = $1 RETURNING `+Columns, id)
	e, err := Scan(row)
	if database.IsNoRows(err) {
		return nil, response.ResourceNotFound("Event not found", fmt.Sprintf("get: no event %s", id))
	}
	if err != nil {
		return nil, fmt.Errorf("get: unable to fetch event: %w", err)
	}

	data := []byte(`{"event_id":"` + id + `"}`)
	var viewer interface{}
	if viewerID != "" {
		viewer = viewerID
	}
	if err := database.Insert(ctx, db, "analytics_events", viewCols, []interface{}{uuid.NewString(), viewEventType, viewer, data, time.Now().UTC()}); err != nil {
		return nil, fmt.Errorf("get: %w", err)
	}

	detail := &model.EventDetail{Event: *e, Tickets: []model.Ticket{}, Reviews: []model.Review{}}
	if e.OrganiserID != nil {
		detail.Organiser, err = organiser(ctx, db, *e.OrganiserID)
		if err != nil {
			return nil, fmt.Errorf("get: %w", err)
		}
	}

	if detail.Tickets, err = tickets(ctx, db, id); err != nil {
		return nil, fmt.Errorf("get: %w", err)
	}
	if detail.LikesCount, err = database.Count(ctx, db, `SELECT COUNT(*) FROM event_likes WHERE event_id = $1`, id); err != nil {
		return nil, fmt.Errorf("get: likes: %w", err)
	}
	if detail.SavedCount, err = database.Count(ctx, db, `SELECT COUNT(*) FROM saved_events WHERE event_id = $1`, id); err != nil {
		return nil, fmt.Errorf("get: saved: %w", err)
	}
	if detail.Reviews, err = reviews(ctx, db, id); err != nil {
		return nil, fmt.Errorf("get: %w", err)
	}
	return detail, nil
}

// Update applies in to an event owned by actorID. Identity and creation time cannot change.
func (ev *Event) Update(ctx context.Context, db *sql.DB, actorID, id string, in *model.EventInput) (*model.Event, error) {
	if err := requireOwner(ctx, db, actorID, id); err != nil {
		return nil, err
	}

	in.OrganiserID = nil
	cols, values := inputColumns(in, nil)
	if in.Title != nil {
		if strings.TrimSpace(*in.Title) == "" {
			return nil, response.InvalidData("update: empty title")
		}
		cols, values = append(cols, "title"), append(values, strings.TrimSpace(*in.Title))
	}
	if in.Date != nil {
		cols, values = append(cols, "date"), append(values, in.Date.UTC())
	}
	if in.Location != nil {
		cols, values = append(cols, "location"), append(values, []byte(*in.Location))
	}
	if in.Status != nil {
		if !validStatuses[*in.Status] {
			return nil, response.InvalidData(fmt.Sprintf("update: invalid status: %s", *in.Status))
		}
		cols, values = append(cols, "status"), append(values, *in.Status)
		if *in.Status == model.EventStatusPublished {
			cols, values = append(cols, "published_at"), append(values, time.Now().UTC())
		}
	}

	if len(cols) > 0 {
		cols, values = append(cols, "updated_at"), append(values, time.Now().UTC())
		if _, err := database.Update(ctx, db, "events", cols, values, []string{"id"}, []interface{}{id}); err != nil {
			return nil, fmt.Errorf("update: %w", err)
		}
	}

	e, err := Scan(db.QueryRowContext(ctx, `SELECT `+Columns+` FROM events e WHERE e.id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("update: unable to reload event: %w", err)
	}
	return e, nil
}

func (ev *Event) Delete(ctx context.Context, db *sql.DB, actorID, id string) error {
	if err := requireOwner(ctx, db, actorID, id); err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete: unable to delete event %s: %w", id, err)
	}
	return nil
}

func requireOwner(ctx context.Context, db database.Querier, actorID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return response.ResourceNotFound("Event not found", fmt.Sprintf("requireOwner: invalid id %q", id))
	}

	var owner *string
	err := db.QueryRowContext(ctx, `SELECT organiser_id FROM events WHERE id = $1`, id).Scan(&owner)
	if database.IsNoRows(err) {
		return response.ResourceNotFound("Event not found", fmt.Sprintf("requireOwner: no event %s", id))
	}
	if err != nil {
		return fmt.Errorf("requireOwner: %w", err)
	}
	if owner == nil || *owner != actorID {
		return response.Forbidden("Only the event organiser can modify this event")
	}
	return nil
}

// inputColumns maps the optional descriptive fields of in. When e is set the values are also
// copied onto it.
func inputColumns(in *model.EventInput, e *model.Event) ([]string, []interface{}) {
	var (
		cols   []string
		values []interface{}
	)
	add := func(col string, v interface{}) {
		cols = append(cols, col)
		values = append(values, v)
	}

	if in.Description != nil {
		add("description", *in.Description)
	}
	if in.Category != nil {
		add("category", *in.Category)
	}
	if in.Subcategory != nil {
		add("subcategory", *in.Subcategory)
	}
	if in.Image != nil {
		add("image", *in.Image)
	}
	if in.Tags != nil {
		add("tags", *in.Tags)
	}
	if in.EndDate != nil {
		add("end_date", in.EndDate.UTC())
	}
	if in.Price != nil {
		add("price", []byte(*in.Price))
	}
	if in.TotalTickets != nil {
		add("total_tickets", *in.TotalTickets)
	}
	if in.VenueCapacity != nil {
		add("venue_capacity", *in.VenueCapacity)
	}
	if in.MaxTicketsPerUser != nil {
		add("max_tickets_per_user", *in.MaxTicketsPerUser)
	}
	if in.HasNFTTickets != nil {
		add("has_nft_tickets", *in.HasNFTTickets)
	}
	if in.ContractAddress != nil {
		add("contract_address", *in.ContractAddress)
	}
	if in.ContractEventID != nil {
		add("contract_event_id", *in.ContractEventID)
	}

	if e != nil {
		e.Description, e.Category, e.Subcategory, e.Image = in.Description, in.Category, in.Subcategory, in.Image
		e.EndDate, e.VenueCapacity, e.MaxTicketsPerUser = in.EndDate, in.VenueCapacity, in.MaxTicketsPerUser
		e.ContractAddress, e.ContractEventID = in.ContractAddress, in.ContractEventID
		if in.Tags != nil {
			e.Tags = *in.Tags
		}
		if in.Price != nil {
			e.Price = *in.Price
		}
		if in.TotalTickets != nil {
			e.TotalTickets = *in.TotalTickets
		}
		if in.HasNFTTickets != nil {
			e.HasNFTTickets = *in.HasNFTTickets
		}
	}
	return cols, values
}

func organiser(ctx context.Context, db database.Querier, id string) (*model.UserSummary, error) {
	var u model.UserSummary
	err := db.QueryRowContext(ctx, `SELECT id, name, username, email, image, verified FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.Name, &u.Username, &u.Email, &u.Image, &u.Verified)
	if database.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("organiser: %w", err)
	}
	return &u, nil
}

// TicketColumns is the select list ScanTicket expects.
const TicketColumns = `id, event_id, owner_id, type, tier_name, price, currency, status, is_nft, contract_address, token_id, purchase_date, created_at`

// ScanTicket reads a row selected with TicketColumns.
func ScanTicket(s scanner) (*model.Ticket, error) {
	var t model.Ticket
	err := s.Scan(&t.ID, &t.EventID, &t.OwnerID, &t.Type, &t.TierName, &t.Price, &t.Currency, &t.Status,
		&t.IsNFT, &t.ContractAddress, &t.TokenID, &t.PurchaseDate, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func tickets(ctx context.Context, db database.Querier, eventID string) ([]model.Ticket, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+TicketColumns+` FROM tickets WHERE event_id = $1 ORDER BY created_at`, eventID)
	if err != nil {
		return nil, fmt.Errorf("tickets: %w", err)
	}
	defer rows.Close()

	out := []model.Ticket{}
	for rows.Next() {
		t, err := ScanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("tickets: %w", err)
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func reviews(ctx context.Context, db database.Querier, eventID string) ([]model.Review, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT r.id, r.user_id, r.rating, r.comment, r.created_at, u.id, u.name, u.username, u.image
		FROM reviews r LEFT JOIN users u ON u.id = r.user_id
		WHERE r.event_id = $1 ORDER BY r.created_at DESC`, eventID)
	if err != nil {
		return nil, fmt.Errorf("reviews: %w", err)
	}
	defer rows.Close()

	out := []model.Review{}
	for rows.Next() {
		var (
			r      model.Review
			userID *string
			u      model.UserSummary
		)
		if err := rows.Scan(&r.ID, &r.UserID, &r.Rating, &r.Comment, &r.CreatedAt, &userID, &u.Name, &u.Username, &u.Image); err != nil {
			return nil, fmt.Errorf("reviews: %w", err)
		}
		if userID != nil {
			u.ID = *userID
			r.User = &u
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
