package storage

import (
	"context"
	"log/slog"

	"github.com/mmynk/messmonitor/internal/models"
)

// NotificationSource is what ListenNotifications reads from.
type NotificationSource interface {
	Watcher
	ListNotificationsByMember(ctx context.Context, borderUID string) ([]models.Notification, error)
}

// ListenNotifications subscribes to one member's notifications. It never
// reports an error: failed loads arrive as empty snapshots, and an empty
// borderUID yields a single empty snapshot without querying the store.
func ListenNotifications(ctx context.Context, src NotificationSource, borderUID string, logger *slog.Logger) (<-chan Snapshot[models.Notification], func()) {
	if borderUID == "" {
		logger.Warn("No borderUid provided for notification listener")
		return Static(ctx, Snapshot[models.Notification]{Items: []models.Notification{}})
	}

	load := func(ctx context.Context) ([]models.Notification, error) {
		items, err := src.ListNotificationsByMember(ctx, borderUID)
		if err != nil {
			if ctx.Err() == nil {
				logger.Error("Notification listener query failed", "border_uid", borderUID, "error", err)
			}
			return []models.Notification{}, nil
		}
		return items, nil
	}
	return Subscribe(ctx, src, Notifications, load)
}
