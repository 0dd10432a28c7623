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

const connectionColumns = `c.id, c.requester_id, c.addressee_id, c.status, c.created_at, c.updated_at`

// Connections lists the user's connections in the given status along with the user on the other
// side. The status defaults to accepted.
func (p *Profile) Connections(ctx context.Context, db database.Querier, userID, status string) ([]model.Connection, error) {
	if status == "" {
		status = model.ConnectionAccepted
	}

	rows, err := db.QueryContext(ctx, `
		SELECT `+connectionColumns+`, u.id, u.name, u.username, u.image, u.verified
		FROM user_connections c
		JOIN users u ON u.id = CASE WHEN c.requester_id = $1 THEN c.addressee_id ELSE c.requester_id END
		WHERE (c.requester_id = $1 OR c.addressee_id = $1) AND c.status = $2
		ORDER BY c.updated_at DESC`, userID, status)
	if err != nil {
		return nil, fmt.Errorf("connections: %w", err)
	}
	defer rows.Close()

	out := []model.Connection{}
	for rows.Next() {
		var (
			c     model.Connection
			other model.UserSummary
		)
		err := rows.Scan(&c.ID, &c.RequesterID, &c.AddresseeID, &c.Status, &c.CreatedAt, &c.UpdatedAt,
			&other.ID, &other.Name, &other.Username, &other.Image, &other.Verified)
		if err != nil {
			return nil, fmt.Errorf("connections: %w", err)
		}
		c.OtherUser = &other
		c.IsRequester = c.RequesterID == userID
		out = append(out, c)
	}
	return out, rows.Err()
}

// RequestConnection creates a pending connection and notifies the addressee.
func (p *Profile) RequestConnection(ctx context.Context, db *sql.DB, userID, addresseeID string) (*model.Connection, error) {
	addresseeID = strings.TrimSpace(addresseeID)
	if addresseeID == "" {
		return nil, response.BadRequest("addressee_id is required", "requestConnection: missing addressee_id")
	}
	if addresseeID == userID {
		return nil, response.BadRequest("Cannot connect to yourself", "requestConnection: self connection")
	}
	if _, err := uuid.Parse(addresseeID); err != nil {
		return nil, response.ResourceNotFound("User not found", fmt.Sprintf("requestConnection: no user %s", addresseeID))
	}

	var requesterName sql.NullString
	err := db.QueryRowContext(ctx, `SELECT COALESCE(name, username, '') FROM users WHERE id = $1`, userID).Scan(&requesterName)
	if err != nil && !database.IsNoRows(err) {
		return nil, fmt.Errorf("requestConnection: %w", err)
	}

	n, err := database.Count(ctx, db, `SELECT COUNT(*) FROM users WHERE id = $1`, addresseeID)
	if err != nil {
		return nil, fmt.Errorf("requestConnection: %w", err)
	}
	if n == 0 {
		return nil, response.ResourceNotFound("User not found", fmt.Sprintf("requestConnection: no user %s", addresseeID))
	}

	n, err = database.Count(ctx, db, `
		SELECT COUNT(*) FROM user_connections
		WHERE (requester_id = $1 AND addressee_id = $2) OR (requester_id = $2 AND addressee_id = $1)`, userID, addresseeID)
	if err != nil {
		return nil, fmt.Errorf("requestConnection: %w", err)
	}
	if n > 0 {
		return nil, response.Conflict("Connection already exists")
	}

	now := time.Now().UTC()
	c := model.Connection{
		ID:          uuid.NewString(),
		RequesterID: userID,
		AddresseeID: addresseeID,
		Status:      model.ConnectionPending,
		CreatedAt:   now,
		UpdatedAt:   now,
		IsRequester: true,
	}

	err = database.WithTx(ctx, db, func(tx *sql.Tx) error {
		err := database.Insert(ctx, tx, "user_connections",
			[]string{"id", "requester_id", "addressee_id", "status", "created_at", "updated_at"},
			[]interface{}{c.ID, c.RequesterID, c.AddresseeID, c.Status, c.CreatedAt, c.UpdatedAt})
		if database.IsUniqueViolation(err) {
			return response.Conflict("Connection already exists")
		}
		if err != nil {
			return err
		}
		return activity.Notify(ctx, tx, activity.Notification{
			UserID:        addresseeID,
			Type:          activity.NotificationFriendRequest,
			Title:         "New connection request",
			Message:       fmt.Sprintf("%s wants to connect with you", displayName(requesterName.String)),
			ReferenceType: "connection",
			ReferenceID:   c.ID,
		})
	})
	if err != nil {
		if _, ok := err.(response.ErrorResponse); ok {
			return nil, err
		}
		return nil, fmt.Errorf("requestConnection: %w", err)
	}
	return &c, nil
}

// UpdateConnection moves a connection to accepted, declined or blocked. Only the addressee may
// accept or decline; either side may block. Follower counters track accepted connections and are
// adjusted in the same transaction as the status change.
func (p *Profile) UpdateConnection(ctx context.Context, db *sql.DB, userID, id, status string) (*model.Connection, error) {
	switch status {
	case model.ConnectionAccepted, model.ConnectionDeclined, model.ConnectionBlocked:
	default:
		return nil, response.BadRequest("Invalid status", fmt.Sprintf("updateConnection: status %q", status))
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, connectionNotFound(id)
	}

	var c *model.Connection
	err := database.WithTx(ctx, db, func(tx *sql.Tx) error {
		var err error
		c, err = lockConnection(ctx, tx, id)
		if err != nil {
			return err
		}
		if c.RequesterID != userID && c.AddresseeID != userID {
			return response.Forbidden("You are not part of this connection")
		}
		if status != model.ConnectionBlocked && c.AddresseeID != userID {
			return response.Forbidden("Only the recipient can respond to a connection request")
		}
		if c.Status == status {
			return nil
		}

		wasAccepted := c.Status == model.ConnectionAccepted
		c.Status = status
		c.UpdatedAt = time.Now().UTC()
		_, err = database.Update(ctx, tx, "user_connections",
			[]string{"status", "updated_at"}, []interface{}{c.Status, c.UpdatedAt},
			[]string{"id"}, []interface{}{c.ID})
		if err != nil {
			return err
		}

		switch {
		case !wasAccepted && status == model.ConnectionAccepted:
			return accept(ctx, tx, c)
		case wasAccepted:
			return adjustCounters(ctx, tx, c, -1)
		}
		return nil
	})
	if err != nil {
		if _, ok := err.(response.ErrorResponse); ok {
			return nil, err
		}
		return nil, fmt.Errorf("updateConnection: %w", err)
	}
	c.IsRequester = c.RequesterID == userID
	return c, nil
}

// RemoveConnection deletes a connection either party belongs to.
func (p *Profile) RemoveConnection(ctx context.Context, db *sql.DB, userID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return connectionNotFound(id)
	}

	err := database.WithTx(ctx, db, func(tx *sql.Tx) error {
		c, err := lockConnection(ctx, tx, id)
		if err != nil {
			return err
		}
		if c.RequesterID != userID && c.AddresseeID != userID {
			return response.Forbidden("You are not part of this connection")
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM user_connections WHERE id = $1`, id); err != nil {
			return err
		}
		if c.Status == model.ConnectionAccepted {
			return adjustCounters(ctx, tx, c, -1)
		}
		return nil
	})
	if err != nil {
		if _, ok := err.(response.ErrorResponse); ok {
			return err
		}
		return fmt.Errorf("removeConnection: %w", err)
	}
	return nil
}

func lockConnection(ctx context.Context, tx *sql.Tx, id string) (*model.Connection, error) {
	var c model.Connection
	err := tx.QueryRowContext(ctx, `SELECT `+connectionColumns+` FROM user_connections c WHERE c.id = $1 FOR UPDATE`, id).
		Scan(&c.ID, &c.RequesterID, &c.AddresseeID, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if database.IsNoRows(err) {
		return nil, connectionNotFound(id)
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func accept(ctx context.Context, tx *sql.Tx, c *model.Connection) error {
	if err := adjustCounters(ctx, tx, c, 1); err != nil {
		return err
	}
	for _, pair := range [][2]string{{c.RequesterID, c.AddresseeID}, {c.AddresseeID, c.RequesterID}} {
		err := activity.Log(ctx, tx, activity.Entry{
			UserID:        pair[0],
			Type:          activity.FriendAdded,
			ReferenceType: "user",
			ReferenceID:   pair[1],
			Metadata:      map[string]interface{}{"connection_id": c.ID},
		})
		if err != nil {
			return err
		}
	}
	return activity.Notify(ctx, tx, activity.Notification{
		UserID:        c.RequesterID,
		Type:          activity.NotificationFriendAccepted,
		Title:         "Connection accepted",
		Message:       "Your connection request was accepted",
		ReferenceType: "connection",
		ReferenceID:   c.ID,
	})
}

// adjustCounters moves the requester's following and the addressee's followers by delta,
// never below zero.
func adjustCounters(ctx context.Context, tx *sql.Tx, c *model.Connection, delta int) error {
	if _, err := tx.ExecContext(ctx, `UPDATE users SET following_count = GREATEST(following_count + $1, 0) WHERE id = $2`, delta, c.RequesterID); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx, `UPDATE users SET followers_count = GREATEST(followers_count + $1, 0) WHERE id = $2`, delta, c.AddresseeID)
	return err
}

func displayName(name string) string {
	if name == "" {
		return "Someone"
	}
	return name
}

func connectionNotFound(id string) response.ErrorResponse {
	return response.ResourceNotFound("Connection not found", fmt.Sprintf("connection: no connection %s", id))
}
