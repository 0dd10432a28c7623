package profile

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"rovify-backend/activity"
	"rovify-backend/database"
	"rovify-backend/model"
	"rovify-backend/response"
	"strings"
)

const (
	activityColumns      = `id, user_id, activity_type, reference_type, reference_id, metadata, created_at`
	defaultActivityLimit = 50
)

// Activity pages through the user's feed, newest first, optionally narrowed to one type.
func (p *Profile) Activity(ctx context.Context, db database.Querier, userID string, f model.ActivityFilter) (*model.ActivityPage, error) {
	limit := limitOr(f.Limit, defaultActivityLimit)
	if f.Offset < 0 {
		f.Offset = 0
	}

	where := `WHERE user_id = $1`
	args := []interface{}{userID}
	if f.Type != "" {
		where += ` AND activity_type = $2`
		args = append(args, f.Type)
	}

	total, err := database.Count(ctx, db, `SELECT COUNT(*) FROM user_activity `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("activity: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM user_activity %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		activityColumns, where, len(args)+1, len(args)+2)
	rows, err := db.QueryContext(ctx, query, append(args, limit, f.Offset)...)
	if err != nil {
		return nil, fmt.Errorf("activity: %w", err)
	}
	defer rows.Close()

	page := &model.ActivityPage{Activities: []model.Activity{}, Total: total}
	for rows.Next() {
		var (
			a        model.Activity
			metadata []byte
		)
		if err := rows.Scan(&a.ID, &a.UserID, &a.ActivityType, &a.ReferenceType, &a.ReferenceID, &metadata, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("activity: %w", err)
		}
		a.Metadata = orDefault(metadata, []byte(`{}`))
		page.Activities = append(page.Activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("activity: %w", err)
	}
	page.HasMore = int64(f.Offset+len(page.Activities)) < total
	return page, nil
}

// ActivityInput is a client-reported feed entry.
type ActivityInput struct {
	ActivityType  string          `json:"activity_type"`
	ReferenceType string          `json:"reference_type,omitempty"`
	ReferenceID   string          `json:"reference_id,omitempty"`
	Metadata      json.RawMessage `json:"metadata,omitempty"`
}

func (p *Profile) LogActivity(ctx context.Context, db *sql.DB, userID string, in *ActivityInput) error {
	in.ActivityType = strings.TrimSpace(in.ActivityType)
	if in.ActivityType == "" {
		return response.BadRequest("activity_type is required", "logActivity: missing activity_type")
	}
	if len(in.Metadata) > 0 && !json.Valid(in.Metadata) {
		return response.InvalidBody()
	}

	var metadata interface{}
	if len(in.Metadata) > 0 {
		metadata = in.Metadata
	}
	err := activity.Log(ctx, db, activity.Entry{
		UserID:        userID,
		Type:          in.ActivityType,
		ReferenceType: in.ReferenceType,
		ReferenceID:   in.ReferenceID,
		Metadata:      metadata,
	})
	if err != nil {
		return fmt.Errorf("logActivity: %w", err)
	}
	return nil
}
