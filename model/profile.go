package model

import (
	"encoding/json"
	"time"
)

type Activity struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id"`
	ActivityType  string          `json:"activity_type"`
	ReferenceType *string         `json:"reference_type,omitempty"`
	ReferenceID   *string         `json:"reference_id,omitempty"`
	Metadata      json.RawMessage `json:"metadata"`
	CreatedAt     time.Time       `json:"created_at"`
}

type ActivityFilter struct {
	Type   string
	Limit  int
	Offset int
}

type ActivityPage struct {
	Activities []Activity `json:"activities"`
	Total      int64      `json:"total"`
	HasMore    bool       `json:"hasMore"`
}

type Notification struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Type          string    `json:"type"`
	Title         string    `json:"title"`
	Message       *string   `json:"message,omitempty"`
	ReferenceType *string   `json:"reference_type,omitempty"`
	ReferenceID   *string   `json:"reference_id,omitempty"`
	Read          bool      `json:"read"`
	CreatedAt     time.Time `json:"created_at"`
}

type Collection struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Color       string    `json:"color"`
	Icon        string    `json:"icon"`
	IsDefault   bool      `json:"is_default"`
	IsPublic    bool      `json:"is_public"`
	EventIDs    []string  `json:"event_ids"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CollectionInput struct {
	Name        *string   `json:"name,omitempty"`
	Description *string   `json:"description,omitempty"`
	Color       *string   `json:"color,omitempty"`
	Icon        *string   `json:"icon,omitempty"`
	IsPublic    *bool     `json:"is_public,omitempty"`
	EventIDs    *[]string `json:"event_ids,omitempty"`
}

type Achievement struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	AchievementType string          `json:"achievement_type"`
	Title           string          `json:"title"`
	Description     *string         `json:"description,omitempty"`
	Icon            string          `json:"icon"`
	Points          int64           `json:"points"`
	Metadata        json.RawMessage `json:"metadata"`
	UnlockedAt      time.Time       `json:"unlocked_at"`
}

type AchievementInput struct {
	AchievementType string          `json:"achievement_type"`
	Title           string          `json:"title"`
	Description     *string         `json:"description,omitempty"`
	Icon            string          `json:"icon,omitempty"`
	Points          int64           `json:"points,omitempty"`
	Metadata        json.RawMessage `json:"metadata,omitempty"`
}

const (
	ConnectionPending  = "pending"
	ConnectionAccepted = "accepted"
	ConnectionDeclined = "declined"
	ConnectionBlocked  = "blocked"
)

type Connection struct {
	ID          string       `json:"id"`
	RequesterID string       `json:"requester_id"`
	AddresseeID string       `json:"addressee_id"`
	Status      string       `json:"status"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	OtherUser   *UserSummary `json:"user,omitempty"`
	IsRequester bool         `json:"isRequester"`
}

type ConnectionRequest struct {
	AddresseeID string `json:"addressee_id"`
}

type ConnectionUpdate struct {
	Status string `json:"status"`
}

type WalletTransaction struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	TransactionType string    `json:"transaction_type"`
	Amount          float64   `json:"amount"`
	Currency        string    `json:"currency"`
	USDValue        *float64  `json:"usd_value,omitempty"`
	Status          string    `json:"status"`
	Description     *string   `json:"description,omitempty"`
	ReferenceID     *string   `json:"reference_id,omitempty"`
	TransactionHash *string   `json:"transaction_hash,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

type WalletInput struct {
	TransactionType string   `json:"transaction_type"`
	Amount          float64  `json:"amount"`
	Currency        string   `json:"currency"`
	USDValue        *float64 `json:"usd_value,omitempty"`
	Description     *string  `json:"description,omitempty"`
	ReferenceID     *string  `json:"reference_id,omitempty"`
	TransactionHash *string  `json:"transaction_hash,omitempty"`
}

type WalletStats struct {
	Balance          float64 `json:"balance"`
	TotalDeposits    float64 `json:"totalDeposits"`
	TotalWithdrawals float64 `json:"totalWithdrawals"`
	TotalSpent       float64 `json:"totalSpent"`
}

type Wallet struct {
	Transactions []WalletTransaction `json:"transactions"`
	Stats        WalletStats         `json:"stats"`
	Total        int64               `json:"total"`
	HasMore      bool                `json:"hasMore"`
}

type Preferences struct {
	Theme              string          `json:"theme"`
	Language           string          `json:"language"`
	Timezone           string          `json:"timezone"`
	EmailNotifications json.RawMessage `json:"email_notifications"`
	PushNotifications  json.RawMessage `json:"push_notifications"`
	PrivacySettings    json.RawMessage `json:"privacy_settings"`
	DisplayPreferences json.RawMessage `json:"display_preferences"`
	EventPreferences   json.RawMessage `json:"event_preferences"`
}

// DefaultPreferences is returned for users who never saved preference details.
func DefaultPreferences() *Preferences {
	return &Preferences{
		Theme:              "light",
		Language:           "en",
		Timezone:           "UTC",
		EmailNotifications: json.RawMessage(`{"events":true,"friends":true,"security":true,"marketing":false}`),
		PushNotifications:  json.RawMessage(`{"events":true,"friends":true,"reminders":true}`),
		PrivacySettings:    json.RawMessage(`{"show_friends":true,"show_activity":true,"profile_public":true}`),
		DisplayPreferences: json.RawMessage(`{"currency":"USD","date_format":"MM/dd/yyyy","time_format":"12h"}`),
		EventPreferences:   json.RawMessage(`{"show_weather":true,"reminder_times":[24,2],"auto_add_to_calendar":false}`),
	}
}

type PreferencesInput struct {
	Theme              *string          `json:"theme,omitempty"`
	Language           *string          `json:"language,omitempty"`
	Timezone           *string          `json:"timezone,omitempty"`
	EmailNotifications *json.RawMessage `json:"email_notifications,omitempty"`
	PushNotifications  *json.RawMessage `json:"push_notifications,omitempty"`
	PrivacySettings    *json.RawMessage `json:"privacy_settings,omitempty"`
	DisplayPreferences *json.RawMessage `json:"display_preferences,omitempty"`
	EventPreferences   *json.RawMessage `json:"event_preferences,omitempty"`
}

type ProfileUpdate struct {
	UserUpdate
	Preferences *PreferencesInput `json:"preferences,omitempty"`
}

type ProfileStats struct {
	EventsAttended    int64   `json:"eventsAttended"`
	EventsCreated     int64   `json:"eventsCreated"`
	Followers         int64   `json:"followers"`
	Following         int64   `json:"following"`
	TotalSpent        float64 `json:"totalSpent"`
	AchievementsCount int     `json:"achievementsCount"`
	CollectionsCount  int     `json:"collectionsCount"`
}

type Profile struct {
	User         *User               `json:"user"`
	Preferences  *Preferences        `json:"preferences"`
	Collections  []Collection        `json:"collections"`
	Achievements []Achievement       `json:"achievements"`
	Activity     []Activity          `json:"activity"`
	Connections  []Connection        `json:"connections"`
	Wallet       []WalletTransaction `json:"walletTransactions"`
	Tickets      []Ticket            `json:"tickets"`
	Stats        ProfileStats        `json:"stats"`
}
