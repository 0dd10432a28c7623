package organiser

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"rovify-backend/activity"
	"rovify-backend/codec"
	"rovify-backend/database"
	"rovify-backend/model"
	"rovify-backend/profile"
	"rovify-backend/response"
	"rovify-backend/user"
	"rovify-backend/workerpool"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	SectionProfile       = "profile"
	SectionBusiness      = "business"
	SectionNotifications = "notifications"
	SectionBranding      = "branding"
	SectionPayout        = "payout"
	SectionAPI           = "api"

	apiKeyPrefix = "rvf_"
)

var (
	defaultPayoutPreferences       = json.RawMessage(`{"method":"bank_transfer","schedule":"weekly","minimum_amount":100}`)
	defaultNotificationPreferences = json.RawMessage(`{"new_registration":true,"payment_received":true,"event_reminder":true,"marketing_updates":false}`)
	defaultBrandingSettings        = json.RawMessage(`{"logo":"","primary_color":"#f97316","secondary_color":"#fb923c","custom_css":""}`)
	defaultAPISettings             = json.RawMessage(`{"webhook_url":"","api_key_enabled":false,"allowed_origins":[]}`)
)

func defaultSettings(organiserID string) *model.OrganiserSettings {
	return &model.OrganiserSettings{
		OrganiserID:             organiserID,
		BusinessType:            "individual",
		BusinessAddress:         json.RawMessage(`{}`),
		PayoutPreferences:       defaultPayoutPreferences,
		NotificationPreferences: defaultNotificationPreferences,
		BrandingSettings:        defaultBrandingSettings,
		APISettings:             defaultAPISettings,
	}
}

// SettingsResult is returned by UpdateSettings. APIKey is only set when a key was just generated
// and is never shown again.
type SettingsResult struct {
	Section  string                   `json:"section"`
	Settings *model.OrganiserSettings `json:"settings"`
	APIKey   string                   `json:"apiKey,omitempty"`
}

func (o *Organiser) Settings(ctx context.Context, db *sql.DB, organiserID string) (*model.SettingsView, error) {
	if err := RequireOrganiser(ctx, db, organiserID); err != nil {
		return nil, err
	}

	view := &model.SettingsView{}
	err := workerpool.Run(ctx, fanOut,
		func(ctx context.Context) (err error) {
			view.Profile, err = user.Scan(db.QueryRowContext(ctx, `SELECT `+user.Columns+` FROM users WHERE id = $1`, organiserID))
			return
		},
		func(ctx context.Context) (err error) {
			view.Settings, err = o.settings(ctx, db, organiserID)
			return
		},
		func(ctx context.Context) (err error) {
			view.Preferences, err = profile.Preferences(ctx, db, organiserID)
			return
		},
		func(ctx context.Context) (err error) {
			view.PaymentMethods, err = paymentMethods(ctx, db, organiserID)
			return
		},
	)
	if err != nil {
		return nil, fmt.Errorf("settings: %w", err)
	}
	return view, nil
}

func (o *Organiser) settings(ctx context.Context, db database.Querier, organiserID string) (*model.OrganiserSettings, error) {
	s := defaultSettings(organiserID)
	var address, payout, notifications, branding, api []byte
	err := db.QueryRowContext(ctx, `
		SELECT id, business_name, business_type, business_phone, tax_id, business_address, payout_preferences,
			notification_preferences, branding_settings, api_settings
		FROM organiser_settings WHERE organiser_id = $1`, organiserID).
		Scan(&s.ID, &s.BusinessName, &s.BusinessType, &s.BusinessPhone, &s.TaxID, &address, &payout, &notifications, &branding, &api)
	if err != nil && !database.IsNoRows(err) {
		return nil, fmt.Errorf("settings: %w", err)
	}
	if err == nil {
		s.BusinessAddress = address
		s.PayoutPreferences = payout
		s.NotificationPreferences = notifications
		s.BrandingSettings = branding
		s.APISettings = api
	}

	if o.Vault != nil {
		s.HasPayoutDetails, err = o.Vault.HasPayoutDetails(ctx, organiserID)
		if err != nil {
			return nil, fmt.Errorf("settings: %w", err)
		}
	}
	return s, nil
}

type businessSection struct {
	BusinessName    *string          `json:"business_name"`
	BusinessType    *string          `json:"business_type"`
	BusinessPhone   *string          `json:"business_phone"`
	TaxID           *string          `json:"tax_id"`
	BusinessAddress *json.RawMessage `json:"business_address"`
}

type apiSection struct {
	WebhookURL     string   `json:"webhook_url"`
	APIKeyEnabled  bool     `json:"api_key_enabled"`
	AllowedOrigins []string `json:"allowed_origins"`
}

// UpdateSettings writes one section and logs settings_updated in the same transaction.
func (o *Organiser) UpdateSettings(ctx context.Context, db *sql.DB, organiserID string, upd *model.SettingsUpdate) (*SettingsResult, error) {
	if err := RequireOrganiser(ctx, db, organiserID); err != nil {
		return nil, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(upd.Data, &fields); err != nil || len(fields) == 0 {
		return nil, response.BadRequest("data must be a non-empty object", "updateSettings: invalid data")
	}
	updated := make([]string, 0, len(fields))
	for k := range fields {
		updated = append(updated, k)
	}
	sort.Strings(updated)

	result := &SettingsResult{Section: upd.Section}
	var write func(tx *sql.Tx) error

	switch upd.Section {
	case SectionProfile:
		var u model.UserUpdate
		if err := json.Unmarshal(upd.Data, &u); err != nil {
			return nil, response.InvalidBody()
		}
		write = func(tx *sql.Tx) error { return user.Apply(ctx, tx, organiserID, &u) }

	case SectionBusiness:
		var b businessSection
		if err := json.Unmarshal(upd.Data, &b); err != nil {
			return nil, response.InvalidBody()
		}
		cols, values := businessColumns(&b)
		if len(cols) == 0 {
			return nil, response.BadRequest("No business fields to update", "updateSettings: empty business section")
		}
		write = func(tx *sql.Tx) error { return upsertSettings(ctx, tx, organiserID, cols, values) }

	case SectionNotifications, SectionBranding:
		col := "notification_preferences"
		if upd.Section == SectionBranding {
			col = "branding_settings"
		}
		write = func(tx *sql.Tx) error {
			return upsertSettings(ctx, tx, organiserID, []string{col}, []interface{}{[]byte(upd.Data)})
		}

	case SectionPayout:
		var details map[string]interface{}
		if raw, ok := fields["bank_details"]; ok {
			if err := json.Unmarshal(raw, &details); err != nil {
				return nil, response.InvalidData("bank_details must be an object")
			}
			delete(fields, "bank_details")
		}
		if details != nil {
			if o.Vault == nil {
				return nil, response.ServiceUnavailable("Bank details cannot be stored right now")
			}
			if err := o.Vault.WritePayoutDetails(ctx, organiserID, details); err != nil {
				return nil, fmt.Errorf("updateSettings: %w", err)
			}
		}
		prefs, err := json.Marshal(fields)
		if err != nil {
			return nil, fmt.Errorf("updateSettings: %w", err)
		}
		write = func(tx *sql.Tx) error {
			if len(fields) == 0 {
				return nil
			}
			return upsertSettings(ctx, tx, organiserID, []string{"payout_preferences"}, []interface{}{prefs})
		}

	case SectionAPI:
		var a apiSection
		if err := json.Unmarshal(upd.Data, &a); err != nil {
			return nil, response.InvalidBody()
		}
		if a.AllowedOrigins == nil {
			a.AllowedOrigins = []string{}
		}
		settingsJSON, err := json.Marshal(a)
		if err != nil {
			return nil, fmt.Errorf("updateSettings: %w", err)
		}
		write = func(tx *sql.Tx) error {
			var encrypted interface{}
			if a.APIKeyEnabled {
				var current sql.NullString
				err := tx.QueryRowContext(ctx, `SELECT api_key_encrypted FROM organiser_settings WHERE organiser_id = $1`, organiserID).Scan(&current)
				if err != nil && !database.IsNoRows(err) {
					return err
				}
				encrypted = nullString(current)
				if !current.Valid {
					key, sealed, err := o.newAPIKey()
					if err != nil {
						return err
					}
					result.APIKey, encrypted = key, sealed
				}
			}
			return upsertSettings(ctx, tx, organiserID, []string{"api_settings", "api_key_encrypted"}, []interface{}{settingsJSON, encrypted})
		}

	default:
		return nil, response.BadRequest("Invalid settings section", fmt.Sprintf("updateSettings: section %q", upd.Section))
	}

	err := database.WithTx(ctx, db, func(tx *sql.Tx) error {
		if err := write(tx); err != nil {
			return err
		}
		return activity.Log(ctx, tx, activity.Entry{
			UserID:        organiserID,
			Type:          activity.SettingsUpdated,
			ReferenceType: "settings",
			Metadata:      map[string]interface{}{"section": upd.Section, "updated_fields": updated},
		})
	})
	if err != nil {
		if _, ok := err.(response.ErrorResponse); ok {
			return nil, err
		}
		return nil, fmt.Errorf("updateSettings: %w", err)
	}

	result.Settings, err = o.settings(ctx, db, organiserID)
	if err != nil {
		return nil, fmt.Errorf("updateSettings: %w", err)
	}
	return result, nil
}

func (o *Organiser) newAPIKey() (key, sealed string, err error) {
	raw := make([]byte, 24)
	if _, err := rand.Read(raw); err != nil {
		return "", "", fmt.Errorf("newAPIKey: %w", err)
	}
	key = apiKeyPrefix + hex.EncodeToString(raw)
	sealed, err = codec.Encrypt(o.APIKeyKey, []byte(key))
	if err != nil {
		return "", "", fmt.Errorf("newAPIKey: %w", err)
	}
	return key, sealed, nil
}

func upsertSettings(ctx context.Context, ex database.Execer, organiserID string, cols []string, values []interface{}) error {
	now := time.Now().UTC()
	cols = append([]string{"id", "organiser_id"}, append(cols, "created_at", "updated_at")...)
	values = append([]interface{}{uuid.NewString(), organiserID}, append(values, now, now)...)
	return database.Upsert(ctx, ex, "organiser_settings", cols, values, []string{"organiser_id"})
}

func businessColumns(b *businessSection) ([]string, []interface{}) {
	var (
		cols   []string
		values []interface{}
	)
	if b.BusinessName != nil {
		cols, values = append(cols, "business_name"), append(values, strings.TrimSpace(*b.BusinessName))
	}
	if b.BusinessType != nil {
		cols, values = append(cols, "business_type"), append(values, *b.BusinessType)
	}
	if b.BusinessPhone != nil {
		cols, values = append(cols, "business_phone"), append(values, strings.TrimSpace(*b.BusinessPhone))
	}
	if b.TaxID != nil {
		cols, values = append(cols, "tax_id"), append(values, *b.TaxID)
	}
	if b.BusinessAddress != nil && json.Valid(*b.BusinessAddress) {
		cols, values = append(cols, "business_address"), append(values, []byte(*b.BusinessAddress))
	}
	return cols, values
}

func paymentMethods(ctx context.Context, db database.Querier, userID string) ([]model.PaymentMethod, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, type, provider, is_default, metadata, created_at FROM payment_methods
		WHERE user_id = $1 ORDER BY is_default DESC, created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("paymentMethods: %w", err)
	}
	defer rows.Close()

	out := []model.PaymentMethod{}
	for rows.Next() {
		var (
			m        model.PaymentMethod
			metadata []byte
		)
		if err := rows.Scan(&m.ID, &m.Type, &m.Provider, &m.IsDefault, &metadata, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("paymentMethods: %w", err)
		}
		m.Metadata = metadata
		out = append(out, m)
	}
	return out, rows.Err()
}

func nullString(s sql.NullString) interface{} {
	if !s.Valid {
		return nil
	}
	return s.String
}
