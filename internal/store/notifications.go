package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/gegenstand/internal/model"
)

// CreateNotification records a fired reminder for an item.
func CreateNotification(ctx context.Context, db *sql.DB, itemID int64, message string) (*model.Notification, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO notifications (message, item_id) VALUES (?, ?)`,
		message, itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("creating notification: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting notification id: %w", err)
	}

	return GetNotification(ctx, db, id)
}

// GetNotification returns a notification by ID, or nil if it does not exist.
func GetNotification(ctx context.Context, db *sql.DB, id int64) (*model.Notification, error) {
	n := &model.Notification{}
	err := db.QueryRowContext(ctx,
		`SELECT id, message, item_id, created_at, seen FROM notifications WHERE id = ?`, id,
	).Scan(&n.ID, &n.Message, &n.ItemID, &n.CreatedAt, &n.Seen)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting notification: %w", err)
	}
	return n, nil
}

// ListNotifications returns notifications newest first, optionally only the
// unseen ones.
func ListNotifications(ctx context.Context, db *sql.DB, unseenOnly bool) ([]model.Notification, error) {
	query := `SELECT id, message, item_id, created_at, seen FROM notifications`
	if unseenOnly {
		query += ` WHERE seen = 0`
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	defer rows.Close()

	var notifications []model.Notification
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.Message, &n.ItemID, &n.CreatedAt, &n.Seen); err != nil {
			return nil, fmt.Errorf("scanning notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// MarkNotificationSeen sets the seen flag. It reports whether the notification
// exists; marking an already seen notification again is not an error.
func MarkNotificationSeen(ctx context.Context, db *sql.DB, id int64) (bool, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE notifications SET seen = 1 WHERE id = ?`, id,
	)
	if err != nil {
		return false, fmt.Errorf("marking notification seen: %w", err)
	}
	return affected(result)
}
