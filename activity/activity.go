package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"rovify-backend/database"
	"time"

	"github.com/google/uuid"
)

const (
	EventCreated        = "event_created"
	PayoutRequested     = "payout_requested"
	SettingsUpdated     = "settings_updated"
	ProfileUpdated      = "profile_updated"
	AchievementUnlocked = "achievement_unlocked"
	CollectionCreated   = "collection_created"
	FriendAdded         = "friend_added"

	NotificationFriendRequest  = "friend_request"
	NotificationFriendAccepted = "friend_accepted"
)

var (
	activityCols     = []string{"id", "user_id", "activity_type", "reference_type", "reference_id", "metadata", "created_at"}
	notificationCols = []string{"id", "user_id", "type", "title", "message", "reference_type", "reference_id", "created_at"}
)

// Entry is one row of a user's activity feed.
type Entry struct {
	UserID        string
	Type          string
	ReferenceType string
	ReferenceID   string
	Metadata      interface{}
}

// Log appends e to the activity feed using ex, so callers can make it part of a larger transaction.
func Log(ctx context.Context, ex database.Execer, e Entry) error {
	meta := []byte("{}")
	if e.Metadata != nil {
		b, err := json.Marshal(e.Metadata)
		if err != nil {
			return fmt.Errorf("log: unable to marshal metadata: %w", err)
		}
		meta = b
	}

	values := []interface{}{uuid.NewString(), e.UserID, e.Type, nullable(e.ReferenceType), nullable(e.ReferenceID), meta, time.Now().UTC()}
	if err := database.Insert(ctx, ex, "user_activity", activityCols, values); err != nil {
		return fmt.Errorf("log: %s: %w", e.Type, err)
	}
	return nil
}

type Notification struct {
	UserID        string
	Type          string
	Title         string
	Message       string
	ReferenceType string
	ReferenceID   string
}

func Notify(ctx context.Context, ex database.Execer, n Notification) error {
	values := []interface{}{uuid.NewString(), n.UserID, n.Type, n.Title, nullable(n.Message), nullable(n.ReferenceType), nullable(n.ReferenceID), time.Now().UTC()}
	if err := database.Insert(ctx, ex, "notifications", notificationCols, values); err != nil {
		return fmt.Errorf("notify: %s: %w", n.Type, err)
	}
	return nil
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
