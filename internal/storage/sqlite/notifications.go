package sqlite

import (
	"context"

	"github.com/mmynk/messmonitor/internal/models"
	"github.com/mmynk/messmonitor/internal/storage"
)

const notificationColumns = `id, title, message, type, created_at, created_by, is_read, border_uid, timestamp`

func scanNotification(row rowScanner) (*models.Notification, error) {
	n := &models.Notification{}
	var typ string
	if err := row.Scan(&n.ID, &n.Title, &n.Message, &typ, &n.CreatedAt, &n.CreatedBy, &n.IsRead, &n.BorderUID, &n.Timestamp); err != nil {
		return nil, err
	}
	n.Type = models.NotificationType(typ)
	return n, nil
}

// AddNotification persists a new notification, assigning its ID and timestamp.
func (s *SQLiteStore) AddNotification(ctx context.Context, n *models.Notification) error {
	if n.ID == "" {
		n.ID = newID()
	}
	n.Timestamp = s.stamp()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notifications (`+notificationColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.Title, n.Message, string(n.Type), n.CreatedAt, n.CreatedBy, n.IsRead, n.BorderUID, n.Timestamp,
	)
	if err != nil {
		return wrap("add", storage.Notifications, err)
	}

	s.feed.Publish(storage.Notifications)
	return nil
}

// GetNotification retrieves a notification by ID.
func (s *SQLiteStore) GetNotification(ctx context.Context, id string) (*models.Notification, error) {
	n, err := scanNotification(s.db.QueryRowContext(ctx,
		`SELECT `+notificationColumns+` FROM notifications WHERE id = ?`, id,
	))
	if err != nil {
		return nil, wrap("get", storage.Notifications, err)
	}
	return n, nil
}

// MarkNotificationRead flips is_read to true.
func (s *SQLiteStore) MarkNotificationRead(ctx context.Context, id string) error {
	if err := execOne(s.db.ExecContext(ctx, "UPDATE notifications SET is_read = 1 WHERE id = ?", id)); err != nil {
		return wrap("update", storage.Notifications, err)
	}

	s.feed.Publish(storage.Notifications)
	return nil
}

// ListNotificationsByMember retrieves one member's notifications, newest first.
func (s *SQLiteStore) ListNotificationsByMember(ctx context.Context, borderUID string) ([]models.Notification, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+notificationColumns+` FROM notifications WHERE border_uid = ? ORDER BY timestamp DESC`,
		borderUID,
	)
	if err != nil {
		return nil, wrap("list", storage.Notifications, err)
	}
	defer rows.Close()

	notifications := []models.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, wrap("list", storage.Notifications, err)
		}
		notifications = append(notifications, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list", storage.Notifications, err)
	}

	return notifications, nil
}
