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

const collectionColumns = `id, user_id, name, description, color, icon, is_default, is_public, event_ids, created_at, updated_at`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanCollection(s scanner) (*model.Collection, error) {
	var c model.Collection
	err := s.Scan(&c.ID, &c.UserID, &c.Name, &c.Description, &c.Color, &c.Icon, &c.IsDefault, &c.IsPublic,
		database.Array(&c.EventIDs), &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if c.EventIDs == nil {
		c.EventIDs = []string{}
	}
	return &c, nil
}

func (p *Profile) Collections(ctx context.Context, db database.Querier, userID string) ([]model.Collection, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+collectionColumns+` FROM user_collections WHERE user_id = $1 ORDER BY is_default DESC, created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("collections: %w", err)
	}
	defer rows.Close()

	out := []model.Collection{}
	for rows.Next() {
		c, err := scanCollection(rows)
		if err != nil {
			return nil, fmt.Errorf("collections: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (p *Profile) Collection(ctx context.Context, db database.Querier, userID, id string) (*model.Collection, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, collectionNotFound(id)
	}

	c, err := scanCollection(db.QueryRowContext(ctx, `SELECT `+collectionColumns+` FROM user_collections WHERE id = $1 AND user_id = $2`, id, userID))
	if database.IsNoRows(err) {
		return nil, collectionNotFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("collection: %w", err)
	}
	return c, nil
}

func (p *Profile) CreateCollection(ctx context.Context, db *sql.DB, userID string, in *model.CollectionInput) (*model.Collection, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, response.BadRequest("Collection name is required", "createCollection: missing name")
	}

	now := time.Now().UTC()
	c := model.Collection{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        strings.TrimSpace(*in.Name),
		Description: in.Description,
		Color:       "#6366f1",
		Icon:        "bookmark",
		EventIDs:    []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.Color != nil {
		c.Color = *in.Color
	}
	if in.Icon != nil {
		c.Icon = *in.Icon
	}
	if in.IsPublic != nil {
		c.IsPublic = *in.IsPublic
	}
	if in.EventIDs != nil {
		c.EventIDs = *in.EventIDs
	}

	err := database.WithTx(ctx, db, func(tx *sql.Tx) error {
		err := database.Insert(ctx, tx, "user_collections", strings.Split(collectionColumns, ", "), []interface{}{
			c.ID, c.UserID, c.Name, c.Description, c.Color, c.Icon, c.IsDefault, c.IsPublic, c.EventIDs, c.CreatedAt, c.UpdatedAt,
		})
		if err != nil {
			return err
		}
		return activity.Log(ctx, tx, activity.Entry{
			UserID:        userID,
			Type:          activity.CollectionCreated,
			ReferenceType: "collection",
			ReferenceID:   c.ID,
			Metadata:      map[string]interface{}{"name": c.Name},
		})
	})
	if err != nil {
		return nil, fmt.Errorf("createCollection: %w", err)
	}
	return &c, nil
}

func (p *Profile) UpdateCollection(ctx context.Context, db *sql.DB, userID, id string, in *model.CollectionInput) (*model.Collection, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, collectionNotFound(id)
	}

	var (
		cols   []string
		values []interface{}
	)
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, response.BadRequest("Collection name is required", "updateCollection: empty name")
		}
		cols, values = append(cols, "name"), append(values, strings.TrimSpace(*in.Name))
	}
	if in.Description != nil {
		cols, values = append(cols, "description"), append(values, *in.Description)
	}
	if in.Color != nil {
		cols, values = append(cols, "color"), append(values, *in.Color)
	}
	if in.Icon != nil {
		cols, values = append(cols, "icon"), append(values, *in.Icon)
	}
	if in.IsPublic != nil {
		cols, values = append(cols, "is_public"), append(values, *in.IsPublic)
	}
	if in.EventIDs != nil {
		cols, values = append(cols, "event_ids"), append(values, *in.EventIDs)
	}
	if len(cols) == 0 {
		return nil, response.BadRequest("No fields to update", "updateCollection: empty body")
	}
	cols, values = append(cols, "updated_at"), append(values, time.Now().UTC())

	n, err := database.Update(ctx, db, "user_collections", cols, values, []string{"id", "user_id"}, []interface{}{id, userID})
	if err != nil {
		return nil, fmt.Errorf("updateCollection: %w", err)
	}
	if n == 0 {
		return nil, collectionNotFound(id)
	}
	return p.Collection(ctx, db, userID, id)
}

// DeleteCollection removes a collection. The default collection cannot be deleted.
func (p *Profile) DeleteCollection(ctx context.Context, db *sql.DB, userID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return collectionNotFound(id)
	}

	var isDefault bool
	err := db.QueryRowContext(ctx, `SELECT is_default FROM user_collections WHERE id = $1 AND user_id = $2`, id, userID).Scan(&isDefault)
	if database.IsNoRows(err) {
		return collectionNotFound(id)
	}
	if err != nil {
		return fmt.Errorf("deleteCollection: %w", err)
	}
	if isDefault {
		return response.BadRequest("Cannot delete default collection", fmt.Sprintf("deleteCollection: %s is the default collection", id))
	}

	if _, err := db.ExecContext(ctx, `DELETE FROM user_collections WHERE id = $1 AND user_id = $2`, id, userID); err != nil {
		return fmt.Errorf("deleteCollection: %w", err)
	}
	return nil
}

func collectionNotFound(id string) response.ErrorResponse {
	return response.ResourceNotFound("Collection not found", fmt.Sprintf("collection: no collection %s", id))
}
