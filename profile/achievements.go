package profile

import (
	"context"
	"database/sql"
	"fmt"
	"rovify-backend/activity"
	"rovify-backend/database"
	"rovify-backend/model"
	"rovify-backend/response"
	"strings"
	"time"

	"github.com/google/uuid"
)

const achievementColumns = `id, user_id, achievement_type, title, description, icon, points, metadata, unlocked_at`

func (p *Profile) Achievements(ctx context.Context, db database.Querier, userID string) ([]model.Achievement, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+achievementColumns+` FROM user_achievements WHERE user_id = $1 ORDER BY unlocked_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("achievements: %w", err)
	}
	defer rows.Close()

	out := []model.Achievement{}
	for rows.Next() {
		var (
			a        model.Achievement
			metadata []byte
		)
		if err := rows.Scan(&a.ID, &a.UserID, &a.AchievementType, &a.Title, &a.Description, &a.Icon, &a.Points, &metadata, &a.UnlockedAt); err != nil {
			return nil, fmt.Errorf("achievements: %w", err)
		}
		a.Metadata = orDefault(metadata, []byte(`{}`))
		out = append(out, a)
	}
	return out, rows.Err()
}

// UnlockAchievement records an achievement once per user and type.
func (p *Profile) UnlockAchievement(ctx context.Context, db *sql.DB, userID string, in *model.AchievementInput) (*model.Achievement, error) {
	in.AchievementType = strings.TrimSpace(in.AchievementType)
	in.Title = strings.TrimSpace(in.Title)
	if in.AchievementType == "" || in.Title == "" {
		return nil, response.BadRequest("achievement_type and title are required", "unlockAchievement: missing fields")
	}

	n, err := database.Count(ctx, db, `SELECT COUNT(*) FROM user_achievements WHERE user_id = $1 AND achievement_type = $2`, userID, in.AchievementType)
	if err != nil {
		return nil, fmt.Errorf("unlockAchievement: %w", err)
	}
	if n > 0 {
		return nil, achievementExists(in.AchievementType)
	}

	a := model.Achievement{
		ID:              uuid.NewString(),
		UserID:          userID,
		AchievementType: in.AchievementType,
		Title:           in.Title,
		Description:     in.Description,
		Icon:            in.Icon,
		Points:          in.Points,
		Metadata:        orDefault(in.Metadata, []byte(`{}`)),
		UnlockedAt:      time.Now().UTC(),
	}
	if a.Icon == "" {
		a.Icon = "award"
	}

	err = database.WithTx(ctx, db, func(tx *sql.Tx) error {
		err := database.Insert(ctx, tx, "user_achievements",
			strings.Split(achievementColumns, ", "),
			[]interface{}{a.ID, a.UserID, a.AchievementType, a.Title, a.Description, a.Icon, a.Points, []byte(a.Metadata), a.UnlockedAt})
		if database.IsUniqueViolation(err) {
			return achievementExists(in.AchievementType)
		}
		if err != nil {
			return err
		}
		return activity.Log(ctx, tx, activity.Entry{
			UserID:        userID,
			Type:          activity.AchievementUnlocked,
			ReferenceType: "achievement",
			ReferenceID:   a.ID,
			Metadata:      map[string]interface{}{"achievement_type": a.AchievementType, "points": a.Points},
		})
	})
	if err != nil {
		if _, ok := err.(response.ErrorResponse); ok {
			return nil, err
		}
		return nil, fmt.Errorf("unlockAchievement: %w", err)
	}
	return &a, nil
}

func achievementExists(kind string) response.ErrorResponse {
	return response.BadRequest("Achievement already unlocked", fmt.Sprintf("unlockAchievement: %s already unlocked", kind))
}
