package profile

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"rovify-backend/activity"
	"rovify-backend/database"
	"rovify-backend/event"
	"rovify-backend/model"
	"rovify-backend/response"
	"rovify-backend/user"
	"rovify-backend/workerpool"
	"time"
)

const (
	profileActivityLimit = 50
	profileWalletLimit   = 20
	fanOut               = 4
	maxPageLimit         = 100
)

// Profile serves the signed-in user's own profile area.
type Profile struct{}

func NewProfile() *Profile {
	return &Profile{}
}

// Get assembles the profile page. The independent reads run concurrently.
func (p *Profile) Get(ctx context.Context, db *sql.DB, userID string) (*model.Profile, error) {
	out := &model.Profile{}
	var (
		eventsAttended, eventsCreated int64
		totalSpent                    float64
	)

	err := workerpool.Run(ctx, fanOut,
		func(ctx context.Context) error {
			usr, err := user.Scan(db.QueryRowContext(ctx, `SELECT `+user.Columns+` FROM users WHERE id = $1`, userID))
			if database.IsNoRows(err) {
				return response.ResourceNotFound("User not found", fmt.Sprintf("get: no user %s", userID))
			}
			out.User = usr
			return err
		},
		func(ctx context.Context) (err error) {
			out.Preferences, err = preferences(ctx, db, userID)
			return
		},
		func(ctx context.Context) (err error) {
			out.Collections, err = p.Collections(ctx, db, userID)
			return
		},
		func(ctx context.Context) (err error) {
			out.Achievements, err = p.Achievements(ctx, db, userID)
			return
		},
		func(ctx context.Context) error {
			page, err := p.Activity(ctx, db, userID, model.ActivityFilter{Limit: profileActivityLimit})
			if err == nil {
				out.Activity = page.Activities
			}
			return err
		},
		func(ctx context.Context) (err error) {
			out.Connections, err = p.Connections(ctx, db, userID, model.ConnectionAccepted)
			return
		},
		func(ctx context.Context) (err error) {
			out.Wallet, _, err = walletTransactions(ctx, db, userID, "", profileWalletLimit, 0)
			return
		},
		func(ctx context.Context) (err error) {
			out.Tickets, err = ownedTickets(ctx, db, userID)
			return
		},
		func(ctx context.Context) (err error) {
			eventsAttended, err = database.Count(ctx, db, `SELECT COUNT(*) FROM event_attendees WHERE user_id = $1 AND status = 'attended'`, userID)
			return
		},
		func(ctx context.Context) (err error) {
			eventsCreated, err = database.Count(ctx, db, `SELECT COUNT(*) FROM events WHERE organiser_id = $1`, userID)
			return
		},
		func(ctx context.Context) error {
			return db.QueryRowContext(ctx, `
				SELECT COALESCE(SUM(usd_value), 0) FROM user_wallet_transactions
				WHERE user_id = $1 AND transaction_type = 'event_purchase' AND status = 'completed'`, userID).Scan(&totalSpent)
		},
	)
	if err != nil {
		if _, ok := err.(response.ErrorResponse); ok {
			return nil, err
		}
		return nil, fmt.Errorf("get: %w", err)
	}

	out.Stats = model.ProfileStats{
		EventsAttended:    eventsAttended,
		EventsCreated:     eventsCreated,
		Followers:         out.User.FollowersCount,
		Following:         out.User.FollowingCount,
		TotalSpent:        totalSpent,
		AchievementsCount: len(out.Achievements),
		CollectionsCount:  len(out.Collections),
	}
	return out, nil
}

// Update writes the profile fields and preference details and logs profile_updated in one
// transaction. Identity and privileged fields are not part of model.ProfileUpdate.
func (p *Profile) Update(ctx context.Context, db *sql.DB, userID string, upd *model.ProfileUpdate) (*model.Profile, error) {
	fields := updatedFields(upd)
	if len(fields) == 0 {
		return nil, response.BadRequest("No fields to update", "update: empty body")
	}

	err := database.WithTx(ctx, db, func(tx *sql.Tx) error {
		if err := user.Apply(ctx, tx, userID, &upd.UserUpdate); err != nil {
			return err
		}
		if upd.Preferences != nil {
			if err := savePreferences(ctx, tx, userID, upd.Preferences); err != nil {
				return err
			}
		}
		return activity.Log(ctx, tx, activity.Entry{
			UserID:   userID,
			Type:     activity.ProfileUpdated,
			Metadata: map[string]interface{}{"updated_fields": fields},
		})
	})
	if err != nil {
		if _, ok := err.(response.ErrorResponse); ok {
			return nil, err
		}
		return nil, fmt.Errorf("update: %w", err)
	}
	return p.Get(ctx, db, userID)
}

const preferenceColumns = `theme, language, timezone, email_notifications, push_notifications, privacy_settings,
	display_preferences, event_preferences`

func preferences(ctx context.Context, db database.Querier, userID string) (*model.Preferences, error) {
	var (
		prefs                                  model.Preferences
		email, push, privacy, display, eventsP []byte
	)
	err := db.QueryRowContext(ctx, `SELECT `+preferenceColumns+` FROM user_preference_details WHERE user_id = $1`, userID).
		Scan(&prefs.Theme, &prefs.Language, &prefs.Timezone, &email, &push, &privacy, &display, &eventsP)
	if database.IsNoRows(err) {
		return model.DefaultPreferences(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("preferences: %w", err)
	}

	defaults := model.DefaultPreferences()
	prefs.EmailNotifications = orDefault(email, defaults.EmailNotifications)
	prefs.PushNotifications = orDefault(push, defaults.PushNotifications)
	prefs.PrivacySettings = orDefault(privacy, defaults.PrivacySettings)
	prefs.DisplayPreferences = orDefault(display, defaults.DisplayPreferences)
	prefs.EventPreferences = orDefault(eventsP, defaults.EventPreferences)
	return &prefs, nil
}

// Preferences returns the stored preference details, or the defaults when none were saved.
func Preferences(ctx context.Context, db database.Querier, userID string) (*model.Preferences, error) {
	return preferences(ctx, db, userID)
}

func savePreferences(ctx context.Context, ex database.Execer, userID string, in *model.PreferencesInput) error {
	cols := []string{"user_id"}
	values := []interface{}{userID}
	add := func(col string, v interface{}) {
		cols = append(cols, col)
		values = append(values, v)
	}
	addJSON := func(col string, raw *json.RawMessage) {
		if raw != nil && json.Valid(*raw) {
			add(col, []byte(*raw))
		}
	}

	if in.Theme != nil {
		add("theme", *in.Theme)
	}
	if in.Language != nil {
		add("language", *in.Language)
	}
	if in.Timezone != nil {
		add("timezone", *in.Timezone)
	}
	addJSON("email_notifications", in.EmailNotifications)
	addJSON("push_notifications", in.PushNotifications)
	addJSON("privacy_settings", in.PrivacySettings)
	addJSON("display_preferences", in.DisplayPreferences)
	addJSON("event_preferences", in.EventPreferences)
	add("updated_at", time.Now().UTC())

	if err := database.Upsert(ctx, ex, "user_preference_details", cols, values, []string{"user_id"}); err != nil {
		return fmt.Errorf("savePreferences: %w", err)
	}
	return nil
}

func ownedTickets(ctx context.Context, db database.Querier, userID string) ([]model.Ticket, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+event.TicketColumns+` FROM tickets WHERE owner_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("ownedTickets: %w", err)
	}
	defer rows.Close()

	out := []model.Ticket{}
	for rows.Next() {
		t, err := event.ScanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("ownedTickets: %w", err)
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func updatedFields(upd *model.ProfileUpdate) []string {
	u := upd.UserUpdate
	candidates := []struct {
		name string
		set  bool
	}{
		{"name", u.Name != nil},
		{"username", u.Username != nil},
		{"bio", u.Bio != nil},
		{"image", u.Image != nil},
		{"twitter", u.Twitter != nil},
		{"instagram", u.Instagram != nil},
		{"website", u.Website != nil},
		{"wallet_address", u.WalletAddress != nil},
		{"interests", u.Interests != nil},
		{"preferences", upd.Preferences != nil},
	}

	var fields []string
	for _, c := range candidates {
		if c.set {
			fields = append(fields, c.name)
		}
	}
	return fields
}

func orDefault(raw []byte, def json.RawMessage) json.RawMessage {
	if len(raw) == 0 || string(raw) == "{}" {
		return def
	}
	return raw
}

func limitOr(limit, def int) int {
	if limit <= 0 {
		return def
	}
	if limit > maxPageLimit {
		return maxPageLimit
	}
	return limit
}
